package orders

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http/httptest"
	"testing"

	ledgersvc "fracton-backend/internal/application/ledger"
	ordersvc "fracton-backend/internal/application/orders"
	"fracton-backend/internal/domain"

	"github.com/glebarez/sqlite"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func setupOrderHandlers(t *testing.T) (*Handlers, *gorm.DB) {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(
		&domain.User{}, &domain.Asset{}, &domain.Token{},
		&domain.Transfer{}, &domain.Order{},
		&domain.NavHistory{}, &domain.PriceHistory{},
	))
	return &Handlers{Service: &ordersvc.Service{DB: db}}, db
}

func sessionApp(user *domain.User) *fiber.App {
	app := fiber.New()
	if user != nil {
		app.Use(func(c *fiber.Ctx) error {
			c.Locals("user", map[string]interface{}{
				"user_id":  user.UserID.String(),
				"fullname": user.Fullname,
				"email":    user.Email,
				"role":     user.Role,
			})
			return c.Next()
		})
	}
	return app
}

func seedTradingPair(t *testing.T, db *gorm.DB) (*domain.User, *domain.Asset) {
	u := &domain.User{
		Fullname: "Seller", Email: uuid.New().String() + "@example.com",
		PasswordHash: "x", Role: "investor", KycStatus: domain.KycApproved,
	}
	require.NoError(t, db.Create(u).Error)
	a := &domain.Asset{
		Type: domain.AssetTypeRealEstate, Title: "Harbor View",
		TotalSupply: 1000, RemainingSupply: 1000,
		NavPrice: decimal.RequireFromString("100.00"),
	}
	require.NoError(t, db.Create(a).Error)
	ls := &ledgersvc.Service{DB: db}
	_, err := ls.Mint(context.Background(), a.AssetID, u.UserID, 200)
	require.NoError(t, err)
	return u, a
}

func TestCreateOrderHandler_Unauthorized(t *testing.T) {
	h, _ := setupOrderHandlers(t)
	app := sessionApp(nil)
	app.Post("/orders", h.CreateOrder)

	body, _ := json.Marshal(map[string]interface{}{})
	req := httptest.NewRequest("POST", "/orders", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)
}

func TestCreateOrderHandler_InvalidAssetID(t *testing.T) {
	h, db := setupOrderHandlers(t)
	seller, _ := seedTradingPair(t, db)
	app := sessionApp(seller)
	app.Post("/orders", h.CreateOrder)

	body, _ := json.Marshal(map[string]interface{}{
		"asset_id": "not-a-uuid", "token_amount": 10, "price_per_token": "10.00",
	})
	req := httptest.NewRequest("POST", "/orders", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
}

func TestCreateOrderHandler_Success(t *testing.T) {
	h, db := setupOrderHandlers(t)
	seller, asset := seedTradingPair(t, db)
	app := sessionApp(seller)
	app.Post("/orders", h.CreateOrder)

	body, _ := json.Marshal(map[string]interface{}{
		"asset_id":        asset.AssetID.String(),
		"token_amount":    50,
		"price_per_token": "110.00",
	})
	req := httptest.NewRequest("POST", "/orders", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusCreated, resp.StatusCode)

	var result map[string]interface{}
	json.NewDecoder(resp.Body).Decode(&result)
	assert.Equal(t, "success", result["status"])
	data, _ := result["data"].(map[string]interface{})
	assert.Equal(t, "OPEN", data["status"])
	assert.Equal(t, "PENDING", data["approval_status"])
}

func TestCreateOrderHandler_InsufficientBalanceConflict(t *testing.T) {
	h, db := setupOrderHandlers(t)
	seller, asset := seedTradingPair(t, db)
	app := sessionApp(seller)
	app.Post("/orders", h.CreateOrder)

	body, _ := json.Marshal(map[string]interface{}{
		"asset_id":        asset.AssetID.String(),
		"token_amount":    500,
		"price_per_token": "110.00",
	})
	req := httptest.NewRequest("POST", "/orders", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusConflict, resp.StatusCode)
}

func TestFillOrderHandler_FullFlow(t *testing.T) {
	h, db := setupOrderHandlers(t)
	seller, asset := seedTradingPair(t, db)

	buyer := &domain.User{
		Fullname: "Buyer", Email: uuid.New().String() + "@example.com",
		PasswordHash: "x", Role: "investor", KycStatus: domain.KycApproved,
	}
	require.NoError(t, db.Create(buyer).Error)

	order, err := h.Service.CreateOrder(context.Background(), ordersvc.CreateOrderInput{
		SellerID: seller.UserID, AssetID: asset.AssetID,
		TokenAmount: 50, PricePerToken: decimal.RequireFromString("110.00"),
	})
	require.NoError(t, err)
	_, err = h.Service.ApproveOrder(context.Background(), order.OrderID)
	require.NoError(t, err)

	app := sessionApp(buyer)
	app.Post("/orders/:order_id/fill", h.FillOrder)

	req := httptest.NewRequest("POST", "/orders/"+order.OrderID.String()+"/fill", nil)
	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)

	var result map[string]interface{}
	json.NewDecoder(resp.Body).Decode(&result)
	data, _ := result["data"].(map[string]interface{})
	assert.Equal(t, "FILLED", data["status"])
}

func TestCancelOrderHandler_NotSellerForbidden(t *testing.T) {
	h, db := setupOrderHandlers(t)
	seller, asset := seedTradingPair(t, db)

	other := &domain.User{
		Fullname: "Other", Email: uuid.New().String() + "@example.com",
		PasswordHash: "x", Role: "investor", KycStatus: domain.KycApproved,
	}
	require.NoError(t, db.Create(other).Error)

	order, err := h.Service.CreateOrder(context.Background(), ordersvc.CreateOrderInput{
		SellerID: seller.UserID, AssetID: asset.AssetID,
		TokenAmount: 10, PricePerToken: decimal.RequireFromString("100.00"),
	})
	require.NoError(t, err)

	app := sessionApp(other)
	app.Post("/orders/:order_id/cancel", h.CancelOrder)

	req := httptest.NewRequest("POST", "/orders/"+order.OrderID.String()+"/cancel", nil)
	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusForbidden, resp.StatusCode)
}

func TestGetOrderHandler_NotFound(t *testing.T) {
	h, db := setupOrderHandlers(t)
	seller, _ := seedTradingPair(t, db)
	app := sessionApp(seller)
	app.Get("/orders/:order_id", h.GetOrder)

	req := httptest.NewRequest("GET", "/orders/"+uuid.New().String(), nil)
	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusNotFound, resp.StatusCode)
}
