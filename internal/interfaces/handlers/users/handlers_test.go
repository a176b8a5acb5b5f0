package users

import (
	"bytes"
	"encoding/json"
	"net/http/httptest"
	"testing"

	usersvc "fracton-backend/internal/application/users"
	"fracton-backend/internal/domain"

	"github.com/glebarez/sqlite"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func setupUserHandlers(t *testing.T) (*Handlers, *gorm.DB) {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&domain.User{}))
	return &Handlers{Service: &usersvc.Service{DB: db}}, db
}

func withSession(app *fiber.App, userID uuid.UUID, role string) {
	app.Use(func(c *fiber.Ctx) error {
		c.Locals("user", map[string]interface{}{
			"user_id": userID.String(),
			"role":    role,
		})
		return c.Next()
	})
}

func TestRegisterHandler_Success(t *testing.T) {
	h, db := setupUserHandlers(t)
	app := fiber.New()
	app.Post("/register", h.Register)

	body, _ := json.Marshal(map[string]string{
		"fullname": "Ada Osei",
		"email":    "ada@example.com",
		"password": "str0ng!pass",
	})
	req := httptest.NewRequest("POST", "/register", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusCreated, resp.StatusCode)

	var count int64
	require.NoError(t, db.Model(&domain.User{}).Count(&count).Error)
	assert.Equal(t, int64(1), count)
}

func TestRegisterHandler_WeakPassword(t *testing.T) {
	h, _ := setupUserHandlers(t)
	app := fiber.New()
	app.Post("/register", h.Register)

	body, _ := json.Marshal(map[string]string{
		"fullname": "Ada Osei",
		"email":    "ada@example.com",
		"password": "weak",
	})
	req := httptest.NewRequest("POST", "/register", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
}

func TestViewUserHandler_SelfAndForbidden(t *testing.T) {
	h, db := setupUserHandlers(t)

	u := &domain.User{
		Fullname: "Ada Osei", Email: "ada@example.com",
		PasswordHash: "x", Role: "investor", KycStatus: domain.KycPending,
	}
	require.NoError(t, db.Create(u).Error)

	selfApp := fiber.New()
	withSession(selfApp, u.UserID, "investor")
	selfApp.Get("/users/:user_id", h.ViewUser)

	req := httptest.NewRequest("GET", "/users/"+u.UserID.String(), nil)
	resp, err := selfApp.Test(req)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)

	otherApp := fiber.New()
	withSession(otherApp, uuid.New(), "investor")
	otherApp.Get("/users/:user_id", h.ViewUser)

	req = httptest.NewRequest("GET", "/users/"+u.UserID.String(), nil)
	resp, err = otherApp.Test(req)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusForbidden, resp.StatusCode)
}

func TestSetKycStatusHandler(t *testing.T) {
	h, db := setupUserHandlers(t)

	u := &domain.User{
		Fullname: "Ada Osei", Email: "ada@example.com",
		PasswordHash: "x", Role: "investor", KycStatus: domain.KycPending,
	}
	require.NoError(t, db.Create(u).Error)

	app := fiber.New()
	withSession(app, uuid.New(), "admin")
	app.Patch("/users/:user_id/kyc", h.SetKycStatus)

	body, _ := json.Marshal(map[string]string{"status": "approved"})
	req := httptest.NewRequest("PATCH", "/users/"+u.UserID.String()+"/kyc", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)

	var reloaded domain.User
	require.NoError(t, db.First(&reloaded, "user_id = ?", u.UserID).Error)
	assert.Equal(t, domain.KycApproved, reloaded.KycStatus)

	body, _ = json.Marshal(map[string]string{"status": "verified"})
	req = httptest.NewRequest("PATCH", "/users/"+u.UserID.String()+"/kyc", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	resp, err = app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
}
