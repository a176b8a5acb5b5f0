package orders

import (
	ordersvc "fracton-backend/internal/application/orders"
	"fracton-backend/internal/middleware"
	"fracton-backend/internal/pkg/ledgererr"
	"fracton-backend/internal/pkg/response"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Handlers holds dependencies for order book endpoints.
type Handlers struct {
	Service *ordersvc.Service
}

// CreateOrder POST /api/v1/orders — seller escrows tokens into a pending sell order.
func (h *Handlers) CreateOrder(c *fiber.Ctx) error {
	actor := middleware.GetActor(c)
	if actor == nil {
		return response.Unauthorized(c, "Unauthorized")
	}
	var body struct {
		AssetID       string `json:"asset_id"`
		TokenAmount   int64  `json:"token_amount"`
		PricePerToken string `json:"price_per_token"`
	}
	if err := c.BodyParser(&body); err != nil {
		return response.Error(c, "asset_id, token_amount and price_per_token are required", fiber.StatusBadRequest, nil)
	}
	assetID, err := uuid.Parse(body.AssetID)
	if err != nil {
		return response.Error(c, "Invalid UUID format for asset_id", fiber.StatusBadRequest, nil)
	}
	price, err := decimal.NewFromString(body.PricePerToken)
	if err != nil {
		return response.Error(c, "Invalid price_per_token", fiber.StatusBadRequest, nil)
	}

	order, err := h.Service.CreateOrder(c.Context(), ordersvc.CreateOrderInput{
		SellerID:      actor.UserID,
		AssetID:       assetID,
		TokenAmount:   body.TokenAmount,
		PricePerToken: price,
	})
	if err != nil {
		return response.Error(c, err.Error(), ledgererr.HTTPStatus(err, fiber.StatusInternalServerError), nil)
	}
	return response.SuccessCreated(c, "Order created successfully", order, nil)
}

// ApproveOrder POST /api/v1/orders/:order_id/approve — admin review.
func (h *Handlers) ApproveOrder(c *fiber.Ctx) error {
	orderID, err := uuid.Parse(c.Params("order_id"))
	if err != nil {
		return response.Error(c, "Invalid UUID format for order_id", fiber.StatusBadRequest, nil)
	}
	order, err := h.Service.ApproveOrder(c.Context(), orderID)
	if err != nil {
		return response.Error(c, err.Error(), ledgererr.HTTPStatus(err, fiber.StatusInternalServerError), nil)
	}
	return response.Success(c, "Order approved", order, nil)
}

// RejectOrder POST /api/v1/orders/:order_id/reject — admin review, escrow returns to seller.
func (h *Handlers) RejectOrder(c *fiber.Ctx) error {
	orderID, err := uuid.Parse(c.Params("order_id"))
	if err != nil {
		return response.Error(c, "Invalid UUID format for order_id", fiber.StatusBadRequest, nil)
	}
	order, err := h.Service.RejectOrder(c.Context(), orderID)
	if err != nil {
		return response.Error(c, err.Error(), ledgererr.HTTPStatus(err, fiber.StatusInternalServerError), nil)
	}
	return response.Success(c, "Order rejected", order, nil)
}

// CancelOrder POST /api/v1/orders/:order_id/cancel — seller withdraws, escrow returns.
func (h *Handlers) CancelOrder(c *fiber.Ctx) error {
	actor := middleware.GetActor(c)
	if actor == nil {
		return response.Unauthorized(c, "Unauthorized")
	}
	orderID, err := uuid.Parse(c.Params("order_id"))
	if err != nil {
		return response.Error(c, "Invalid UUID format for order_id", fiber.StatusBadRequest, nil)
	}
	order, err := h.Service.CancelOrder(c.Context(), orderID, actor.UserID)
	if err != nil {
		return response.Error(c, err.Error(), ledgererr.HTTPStatus(err, fiber.StatusInternalServerError), nil)
	}
	return response.Success(c, "Order cancelled", order, nil)
}

// FillOrder POST /api/v1/orders/:order_id/fill — buyer takes the full order.
func (h *Handlers) FillOrder(c *fiber.Ctx) error {
	actor := middleware.GetActor(c)
	if actor == nil {
		return response.Unauthorized(c, "Unauthorized")
	}
	orderID, err := uuid.Parse(c.Params("order_id"))
	if err != nil {
		return response.Error(c, "Invalid UUID format for order_id", fiber.StatusBadRequest, nil)
	}
	order, err := h.Service.FillOrder(c.Context(), orderID, actor.UserID)
	if err != nil {
		return response.Error(c, err.Error(), ledgererr.HTTPStatus(err, fiber.StatusInternalServerError), nil)
	}
	return response.Success(c, "Order filled successfully", order, nil)
}

// ListBook GET /api/v1/orders/book — open, approved orders visible to buyers.
func (h *Handlers) ListBook(c *fiber.Ctx) error {
	orders, err := h.Service.ListBook(c.Context())
	if err != nil {
		return response.Error(c, "Internal Server Error", fiber.StatusInternalServerError, nil)
	}
	return response.Success(c, "Order book retrieved", orders, nil)
}

// MyOrders GET /api/v1/orders/mine — all orders placed by the caller.
func (h *Handlers) MyOrders(c *fiber.Ctx) error {
	actor := middleware.GetActor(c)
	if actor == nil {
		return response.Unauthorized(c, "Unauthorized")
	}
	orders, err := h.Service.ListBySeller(c.Context(), actor.UserID)
	if err != nil {
		return response.Error(c, "Internal Server Error", fiber.StatusInternalServerError, nil)
	}
	return response.Success(c, "Orders retrieved", orders, nil)
}

// ListPending GET /api/v1/orders/pending — orders awaiting admin review.
func (h *Handlers) ListPending(c *fiber.Ctx) error {
	orders, err := h.Service.ListPendingApproval(c.Context())
	if err != nil {
		return response.Error(c, "Internal Server Error", fiber.StatusInternalServerError, nil)
	}
	return response.Success(c, "Pending orders retrieved", orders, nil)
}

// GetOrder GET /api/v1/orders/:order_id
func (h *Handlers) GetOrder(c *fiber.Ctx) error {
	orderID, err := uuid.Parse(c.Params("order_id"))
	if err != nil {
		return response.Error(c, "Invalid UUID format for order_id", fiber.StatusBadRequest, nil)
	}
	order, err := h.Service.GetOrder(c.Context(), orderID)
	if err != nil {
		return response.Error(c, err.Error(), ledgererr.HTTPStatus(err, fiber.StatusInternalServerError), nil)
	}
	return response.Success(c, "Order retrieved", order, nil)
}
