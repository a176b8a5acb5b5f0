package assets

import (
	assetsvc "fracton-backend/internal/application/assets"
	valsvc "fracton-backend/internal/application/valuations"
	"fracton-backend/internal/pkg/ledgererr"
	"fracton-backend/internal/pkg/response"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Handlers holds dependencies for asset registry endpoints.
type Handlers struct {
	Service    *assetsvc.Service
	Valuations *valsvc.Service
}

// CreateAsset POST /api/v1/assets — admin registers a tokenizable asset.
func (h *Handlers) CreateAsset(c *fiber.Ctx) error {
	var body struct {
		Type        string `json:"type"`
		Title       string `json:"title"`
		Description string `json:"description"`
		TotalSupply int64  `json:"total_supply"`
		NavPrice    string `json:"nav_price"`
	}
	if err := c.BodyParser(&body); err != nil {
		return response.Error(c, "Type, title, total_supply and nav_price are required", fiber.StatusBadRequest, nil)
	}
	nav, err := decimal.NewFromString(body.NavPrice)
	if err != nil {
		return response.Error(c, "Invalid nav_price", fiber.StatusBadRequest, nil)
	}

	asset, err := h.Service.CreateAsset(c.Context(), assetsvc.CreateAssetInput{
		Type:        body.Type,
		Title:       body.Title,
		Description: body.Description,
		TotalSupply: body.TotalSupply,
		NavPrice:    nav,
	})
	if err != nil {
		return response.Error(c, err.Error(), ledgererr.HTTPStatus(err, fiber.StatusInternalServerError), nil)
	}
	return response.SuccessCreated(c, "Asset created successfully", asset, nil)
}

// ListAssets GET /api/v1/assets
func (h *Handlers) ListAssets(c *fiber.Ctx) error {
	assets, err := h.Service.ListAssets(c.Context())
	if err != nil {
		return response.Error(c, "Internal Server Error", fiber.StatusInternalServerError, nil)
	}
	return response.Success(c, "Assets retrieved", assets, nil)
}

// GetAsset GET /api/v1/assets/:asset_id
func (h *Handlers) GetAsset(c *fiber.Ctx) error {
	assetID, err := uuid.Parse(c.Params("asset_id"))
	if err != nil {
		return response.Error(c, "Invalid UUID format for asset_id", fiber.StatusBadRequest, nil)
	}
	asset, err := h.Service.GetAsset(c.Context(), assetID)
	if err != nil {
		return response.Error(c, err.Error(), ledgererr.HTTPStatus(err, fiber.StatusInternalServerError), nil)
	}
	return response.Success(c, "Asset retrieved", asset, nil)
}

// ReviseNav PATCH /api/v1/assets/:asset_id/nav — admin revaluation, history is always appended.
func (h *Handlers) ReviseNav(c *fiber.Ctx) error {
	assetID, err := uuid.Parse(c.Params("asset_id"))
	if err != nil {
		return response.Error(c, "Invalid UUID format for asset_id", fiber.StatusBadRequest, nil)
	}
	var body struct {
		NavPrice string `json:"nav_price"`
		Reason   string `json:"reason"`
	}
	if err := c.BodyParser(&body); err != nil || body.NavPrice == "" {
		return response.Error(c, "nav_price is required", fiber.StatusBadRequest, nil)
	}
	nav, err := decimal.NewFromString(body.NavPrice)
	if err != nil {
		return response.Error(c, "Invalid nav_price", fiber.StatusBadRequest, nil)
	}

	asset, entry, err := h.Service.ReviseNav(c.Context(), assetID, nav, body.Reason)
	if err != nil {
		return response.Error(c, err.Error(), ledgererr.HTTPStatus(err, fiber.StatusInternalServerError), nil)
	}
	return response.Success(c, "NAV revised successfully", fiber.Map{
		"asset":   asset,
		"history": entry,
	}, nil)
}

// NavHistory GET /api/v1/assets/:asset_id/nav-history
func (h *Handlers) NavHistory(c *fiber.Ctx) error {
	assetID, err := uuid.Parse(c.Params("asset_id"))
	if err != nil {
		return response.Error(c, "Invalid UUID format for asset_id", fiber.StatusBadRequest, nil)
	}
	series, err := h.Valuations.NavSeries(c.Context(), assetID)
	if err != nil {
		return response.Error(c, err.Error(), ledgererr.HTTPStatus(err, fiber.StatusInternalServerError), nil)
	}
	return response.Success(c, "NAV history retrieved", series, nil)
}

// PriceHistory GET /api/v1/assets/:asset_id/price-history
func (h *Handlers) PriceHistory(c *fiber.Ctx) error {
	assetID, err := uuid.Parse(c.Params("asset_id"))
	if err != nil {
		return response.Error(c, "Invalid UUID format for asset_id", fiber.StatusBadRequest, nil)
	}
	series, err := h.Valuations.PriceSeries(c.Context(), assetID)
	if err != nil {
		return response.Error(c, err.Error(), ledgererr.HTTPStatus(err, fiber.StatusInternalServerError), nil)
	}
	return response.Success(c, "Price history retrieved", series, nil)
}
