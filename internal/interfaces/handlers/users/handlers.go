package users

import (
	usersvc "fracton-backend/internal/application/users"
	"fracton-backend/internal/middleware"
	"fracton-backend/internal/pkg/constants"
	"fracton-backend/internal/pkg/ledgererr"
	"fracton-backend/internal/pkg/response"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

// Handlers holds dependencies for user endpoints.
type Handlers struct {
	Service *usersvc.Service
	Config  middleware.SessionConfig
}

// Register POST /api/v1/users/register — public investor registration, KYC pending.
func (h *Handlers) Register(c *fiber.Ctx) error {
	var body usersvc.RegisterInput
	if err := c.BodyParser(&body); err != nil {
		return response.Error(c, "Fullname, email and password are required", fiber.StatusBadRequest, nil)
	}

	user, err := h.Service.Register(c.Context(), body)
	if err != nil {
		return response.Error(c, err.Error(), ledgererr.HTTPStatus(err, fiber.StatusInternalServerError), nil)
	}
	return response.SuccessCreated(c, "User registered successfully", fiber.Map{
		"user_id":    user.UserID.String(),
		"fullname":   user.Fullname,
		"email":      user.Email,
		"role":       user.Role,
		"kyc_status": user.KycStatus,
	}, nil)
}

// ViewUser GET /api/v1/users/:user_id — self, or any user for admins.
func (h *Handlers) ViewUser(c *fiber.Ctx) error {
	userID, err := uuid.Parse(c.Params("user_id"))
	if err != nil {
		return response.Error(c, "Invalid UUID format for user_id", fiber.StatusBadRequest, nil)
	}
	actor := middleware.GetActor(c)
	if actor == nil {
		return response.Unauthorized(c, "Unauthorized")
	}
	if actor.Role != constants.Admin && actor.UserID != userID {
		return response.Error(c, "Forbidden", fiber.StatusForbidden, nil)
	}

	user, err := h.Service.ViewUser(c.Context(), userID)
	if err != nil {
		return response.Error(c, err.Error(), ledgererr.HTTPStatus(err, fiber.StatusInternalServerError), nil)
	}
	return response.Success(c, "User retrieved", user, nil)
}

// SetKycStatus PATCH /api/v1/users/:user_id/kyc — admin KYC transition.
func (h *Handlers) SetKycStatus(c *fiber.Ctx) error {
	userID, err := uuid.Parse(c.Params("user_id"))
	if err != nil {
		return response.Error(c, "Invalid UUID format for user_id", fiber.StatusBadRequest, nil)
	}
	var body struct {
		Status string `json:"status"`
	}
	if err := c.BodyParser(&body); err != nil || body.Status == "" {
		return response.Error(c, "KYC status is required", fiber.StatusBadRequest, nil)
	}

	user, err := h.Service.SetKycStatus(c.Context(), userID, body.Status)
	if err != nil {
		return response.Error(c, err.Error(), ledgererr.HTTPStatus(err, fiber.StatusInternalServerError), nil)
	}
	return response.Success(c, "KYC status updated", user, nil)
}

// SetFrozen PATCH /api/v1/users/:user_id/freeze — admin account-level hold.
func (h *Handlers) SetFrozen(c *fiber.Ctx) error {
	userID, err := uuid.Parse(c.Params("user_id"))
	if err != nil {
		return response.Error(c, "Invalid UUID format for user_id", fiber.StatusBadRequest, nil)
	}
	var body struct {
		Frozen *bool `json:"frozen"`
	}
	if err := c.BodyParser(&body); err != nil || body.Frozen == nil {
		return response.Error(c, "Frozen flag is required", fiber.StatusBadRequest, nil)
	}

	user, err := h.Service.SetFrozen(c.Context(), userID, *body.Frozen)
	if err != nil {
		return response.Error(c, err.Error(), ledgererr.HTTPStatus(err, fiber.StatusInternalServerError), nil)
	}
	msg := "Account frozen"
	if !*body.Frozen {
		msg = "Account unfrozen"
	}
	return response.Success(c, msg, user, nil)
}
