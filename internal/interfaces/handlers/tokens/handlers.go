package tokens

import (
	ledgersvc "fracton-backend/internal/application/ledger"
	"fracton-backend/internal/middleware"
	"fracton-backend/internal/pkg/constants"
	"fracton-backend/internal/pkg/ledgererr"
	"fracton-backend/internal/pkg/response"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

// Handlers holds dependencies for token ledger endpoints.
type Handlers struct {
	Service *ledgersvc.Service
}

// Mint POST /api/v1/tokens/mint — admin issues tokens out of unallocated supply.
func (h *Handlers) Mint(c *fiber.Ctx) error {
	var body struct {
		AssetID string `json:"asset_id"`
		OwnerID string `json:"owner_id"`
		Amount  int64  `json:"amount"`
	}
	if err := c.BodyParser(&body); err != nil {
		return response.Error(c, "asset_id, owner_id and amount are required", fiber.StatusBadRequest, nil)
	}
	assetID, err := uuid.Parse(body.AssetID)
	if err != nil {
		return response.Error(c, "Invalid UUID format for asset_id", fiber.StatusBadRequest, nil)
	}
	ownerID, err := uuid.Parse(body.OwnerID)
	if err != nil {
		return response.Error(c, "Invalid UUID format for owner_id", fiber.StatusBadRequest, nil)
	}

	token, err := h.Service.Mint(c.Context(), assetID, ownerID, body.Amount)
	if err != nil {
		return response.Error(c, err.Error(), ledgererr.HTTPStatus(err, fiber.StatusInternalServerError), nil)
	}
	return response.SuccessCreated(c, "Tokens minted successfully", token, nil)
}

// Revoke POST /api/v1/tokens/:token_id/revoke — admin claws back tokens to supply.
func (h *Handlers) Revoke(c *fiber.Ctx) error {
	tokenID, err := uuid.Parse(c.Params("token_id"))
	if err != nil {
		return response.Error(c, "Invalid UUID format for token_id", fiber.StatusBadRequest, nil)
	}
	var body struct {
		Amount int64 `json:"amount"`
	}
	if err := c.BodyParser(&body); err != nil {
		return response.Error(c, "amount is required", fiber.StatusBadRequest, nil)
	}

	if err := h.Service.Revoke(c.Context(), tokenID, body.Amount); err != nil {
		return response.Error(c, err.Error(), ledgererr.HTTPStatus(err, fiber.StatusInternalServerError), nil)
	}
	return response.Success(c, "Tokens revoked successfully", nil, nil)
}

// SetAmount PATCH /api/v1/tokens/:token_id/amount — admin balance correction.
func (h *Handlers) SetAmount(c *fiber.Ctx) error {
	tokenID, err := uuid.Parse(c.Params("token_id"))
	if err != nil {
		return response.Error(c, "Invalid UUID format for token_id", fiber.StatusBadRequest, nil)
	}
	var body struct {
		Amount *int64 `json:"amount"`
		Reason string `json:"reason"`
	}
	if err := c.BodyParser(&body); err != nil || body.Amount == nil {
		return response.Error(c, "amount is required", fiber.StatusBadRequest, nil)
	}

	token, err := h.Service.AdminSetAmount(c.Context(), tokenID, *body.Amount, body.Reason)
	if err != nil {
		return response.Error(c, err.Error(), ledgererr.HTTPStatus(err, fiber.StatusInternalServerError), nil)
	}
	return response.Success(c, "Token amount updated", token, nil)
}

// SetFrozen PATCH /api/v1/tokens/:token_id/freeze — compliance hold on one balance.
func (h *Handlers) SetFrozen(c *fiber.Ctx) error {
	tokenID, err := uuid.Parse(c.Params("token_id"))
	if err != nil {
		return response.Error(c, "Invalid UUID format for token_id", fiber.StatusBadRequest, nil)
	}
	var body struct {
		Frozen *bool `json:"frozen"`
	}
	if err := c.BodyParser(&body); err != nil || body.Frozen == nil {
		return response.Error(c, "Frozen flag is required", fiber.StatusBadRequest, nil)
	}

	token, err := h.Service.SetTokenFrozen(c.Context(), tokenID, *body.Frozen)
	if err != nil {
		return response.Error(c, err.Error(), ledgererr.HTTPStatus(err, fiber.StatusInternalServerError), nil)
	}
	msg := "Token frozen"
	if !*body.Frozen {
		msg = "Token unfrozen"
	}
	return response.Success(c, msg, token, nil)
}

// MyTokens GET /api/v1/tokens/mine — the caller's balances.
func (h *Handlers) MyTokens(c *fiber.Ctx) error {
	actor := middleware.GetActor(c)
	if actor == nil {
		return response.Unauthorized(c, "Unauthorized")
	}
	tokens, err := h.Service.ListOwnerTokens(c.Context(), actor.UserID)
	if err != nil {
		return response.Error(c, "Internal Server Error", fiber.StatusInternalServerError, nil)
	}
	return response.Success(c, "Tokens retrieved", tokens, nil)
}

// GetToken GET /api/v1/tokens/:token_id — owner or admin.
func (h *Handlers) GetToken(c *fiber.Ctx) error {
	tokenID, err := uuid.Parse(c.Params("token_id"))
	if err != nil {
		return response.Error(c, "Invalid UUID format for token_id", fiber.StatusBadRequest, nil)
	}
	actor := middleware.GetActor(c)
	if actor == nil {
		return response.Unauthorized(c, "Unauthorized")
	}
	token, err := h.Service.GetToken(c.Context(), tokenID)
	if err != nil {
		return response.Error(c, err.Error(), ledgererr.HTTPStatus(err, fiber.StatusInternalServerError), nil)
	}
	if actor.Role != constants.Admin && token.OwnerID != actor.UserID {
		return response.Error(c, "Forbidden", fiber.StatusForbidden, nil)
	}
	return response.Success(c, "Token retrieved", token, nil)
}

// AssetTransfers GET /api/v1/tokens/transfers/:asset_id — audit trail for one asset (admin).
func (h *Handlers) AssetTransfers(c *fiber.Ctx) error {
	assetID, err := uuid.Parse(c.Params("asset_id"))
	if err != nil {
		return response.Error(c, "Invalid UUID format for asset_id", fiber.StatusBadRequest, nil)
	}
	transfers, err := h.Service.ListTransfers(c.Context(), assetID)
	if err != nil {
		return response.Error(c, "Internal Server Error", fiber.StatusInternalServerError, nil)
	}
	return response.Success(c, "Transfers retrieved", transfers, nil)
}

// MyTransfers GET /api/v1/tokens/transfers — the caller's audit trail.
func (h *Handlers) MyTransfers(c *fiber.Ctx) error {
	actor := middleware.GetActor(c)
	if actor == nil {
		return response.Unauthorized(c, "Unauthorized")
	}
	transfers, err := h.Service.ListUserTransfers(c.Context(), actor.UserID)
	if err != nil {
		return response.Error(c, "Internal Server Error", fiber.StatusInternalServerError, nil)
	}
	return response.Success(c, "Transfers retrieved", transfers, nil)
}
