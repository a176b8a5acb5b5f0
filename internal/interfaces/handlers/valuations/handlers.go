package valuations

import (
	valsvc "fracton-backend/internal/application/valuations"
	"fracton-backend/internal/middleware"
	"fracton-backend/internal/pkg/constants"
	"fracton-backend/internal/pkg/ledgererr"
	"fracton-backend/internal/pkg/response"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

// Handlers holds dependencies for valuation endpoints.
type Handlers struct {
	Service *valsvc.Service
}

// Portfolio GET /api/v1/valuations/portfolio — the caller's holdings at book and market value.
func (h *Handlers) Portfolio(c *fiber.Ctx) error {
	actor := middleware.GetActor(c)
	if actor == nil {
		return response.Unauthorized(c, "Unauthorized")
	}
	report, err := h.Service.Portfolio(c.Context(), actor.UserID)
	if err != nil {
		return response.Error(c, "Internal Server Error", fiber.StatusInternalServerError, nil)
	}
	return response.Success(c, "Portfolio retrieved", report, nil)
}

// UserPortfolio GET /api/v1/valuations/portfolio/:user_id — admin view of any investor.
func (h *Handlers) UserPortfolio(c *fiber.Ctx) error {
	actor := middleware.GetActor(c)
	if actor == nil {
		return response.Unauthorized(c, "Unauthorized")
	}
	userID, err := uuid.Parse(c.Params("user_id"))
	if err != nil {
		return response.Error(c, "Invalid UUID format for user_id", fiber.StatusBadRequest, nil)
	}
	if actor.Role != constants.Admin && actor.UserID != userID {
		return response.Error(c, "Forbidden", fiber.StatusForbidden, nil)
	}
	report, err := h.Service.Portfolio(c.Context(), userID)
	if err != nil {
		return response.Error(c, "Internal Server Error", fiber.StatusInternalServerError, nil)
	}
	return response.Success(c, "Portfolio retrieved", report, nil)
}

// LatestPrice GET /api/v1/valuations/latest-price/:asset_id — most recent realized trade price.
func (h *Handlers) LatestPrice(c *fiber.Ctx) error {
	assetID, err := uuid.Parse(c.Params("asset_id"))
	if err != nil {
		return response.Error(c, "Invalid UUID format for asset_id", fiber.StatusBadRequest, nil)
	}
	price, err := h.Service.LatestTradePrice(c.Context(), assetID)
	if err != nil {
		return response.Error(c, err.Error(), ledgererr.HTTPStatus(err, fiber.StatusInternalServerError), nil)
	}
	return response.Success(c, "Latest price retrieved", fiber.Map{
		"asset_id": assetID,
		"price":    price,
	}, nil)
}
