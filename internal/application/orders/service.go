// Package orders is the sell-order state machine. Tokens backing an open order
// are escrowed: debited from the seller at creation and only returned on
// cancel/reject, or credited to the buyer on fill. Because of the early debit,
// a fill never re-checks the seller's balance.
package orders

import (
	"context"
	"encoding/json"

	"fracton-backend/internal/application/compliance"
	"fracton-backend/internal/application/ledger"
	"fracton-backend/internal/application/notifications"
	"fracton-backend/internal/domain"
	"fracton-backend/internal/infrastructure/database"
	"fracton-backend/internal/pkg/ledgererr"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type Service struct {
	DB       *gorm.DB
	Gate     compliance.Gate
	Notifier notifications.Notifier
}

type CreateOrderInput struct {
	SellerID      uuid.UUID
	AssetID       uuid.UUID
	TokenAmount   int64
	PricePerToken decimal.Decimal
}

// CreateOrder escrows the seller's tokens and opens a PENDING order awaiting
// admin approval. The cost basis removed from the seller's balance is captured
// on the order so cancellation restores exactly that value.
func (s *Service) CreateOrder(ctx context.Context, in CreateOrderInput) (*domain.Order, error) {
	if in.TokenAmount <= 0 {
		return nil, ledgererr.Validation("Token amount must be positive")
	}
	if !in.PricePerToken.IsPositive() {
		return nil, ledgererr.Validation("Price per token must be positive")
	}

	var order *domain.Order
	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if _, err := s.Gate.RequireTradable(tx, in.SellerID); err != nil {
			return err
		}

		var token domain.Token
		if err := database.ForUpdate(tx).
			Where("asset_id = ? AND owner_id = ?", in.AssetID, in.SellerID).
			First(&token).Error; err != nil {
			if err == gorm.ErrRecordNotFound {
				return ledgererr.InsufficientBalance("No balance held for this asset")
			}
			return err
		}
		if token.Frozen {
			return ledgererr.Compliance("Token balance is frozen")
		}
		if token.Amount < in.TokenAmount {
			return ledgererr.InsufficientBalance("Balance %d is less than order amount %d", token.Amount, in.TokenAmount)
		}

		asset, err := lockAsset(tx, in.AssetID)
		if err != nil {
			return err
		}

		escrowBasis := proportionalBasis(&token, in.TokenAmount)
		if err := ledger.DebitToken(tx, &token, in.TokenAmount, escrowBasis); err != nil {
			return err
		}

		order = &domain.Order{
			SellerID:        in.SellerID,
			AssetID:         in.AssetID,
			TokenAmount:     in.TokenAmount,
			PricePerToken:   in.PricePerToken,
			EscrowCostBasis: escrowBasis,
			Status:          domain.OrderStatusOpen,
			ApprovalStatus:  domain.ApprovalPending,
		}
		if err := tx.Create(order).Error; err != nil {
			return err
		}
		return ledger.CheckSumInvariant(tx, asset)
	})
	if err != nil {
		return nil, err
	}
	return order, nil
}

// ApproveOrder makes a pending order visible to buyers.
func (s *Service) ApproveOrder(ctx context.Context, orderID uuid.UUID) (*domain.Order, error) {
	var order *domain.Order
	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var err error
		order, err = lockOrder(tx, orderID)
		if err != nil {
			return err
		}
		if order.Status != domain.OrderStatusOpen || order.ApprovalStatus != domain.ApprovalPending {
			return ledgererr.OrderState("Order is %s/%s, approval requires OPEN/PENDING", order.Status, order.ApprovalStatus)
		}
		order.ApprovalStatus = domain.ApprovalApproved
		return tx.Model(&domain.Order{}).Where("order_id = ?", orderID).
			Update("approval_status", domain.ApprovalApproved).Error
	})
	if err != nil {
		return nil, err
	}
	return order, nil
}

// RejectOrder refuses a pending order and returns the escrow to the seller.
// Terminal: the order moves to CANCELLED.
func (s *Service) RejectOrder(ctx context.Context, orderID uuid.UUID) (*domain.Order, error) {
	return s.releaseEscrow(ctx, orderID, nil, true)
}

// CancelOrder is the seller withdrawing their own open order; the escrowed
// amount and its original cost basis return to the seller's balance.
func (s *Service) CancelOrder(ctx context.Context, orderID, callerID uuid.UUID) (*domain.Order, error) {
	return s.releaseEscrow(ctx, orderID, &callerID, false)
}

func (s *Service) releaseEscrow(ctx context.Context, orderID uuid.UUID, callerID *uuid.UUID, rejected bool) (*domain.Order, error) {
	var order *domain.Order
	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var err error
		order, err = lockOrder(tx, orderID)
		if err != nil {
			return err
		}
		if order.Status != domain.OrderStatusOpen {
			return ledgererr.OrderState("Order is %s; only OPEN orders can be cancelled", order.Status)
		}
		if callerID != nil && order.SellerID != *callerID {
			return ledgererr.Compliance("Only the seller can cancel this order")
		}
		if rejected && order.ApprovalStatus != domain.ApprovalPending {
			return ledgererr.OrderState("Order approval is %s, rejection requires PENDING", order.ApprovalStatus)
		}

		asset, err := lockAsset(tx, order.AssetID)
		if err != nil {
			return err
		}
		// Escrow return restores the basis captured at creation, never a value
		// re-derived from the current NAV.
		if _, err := ledger.CreditToken(tx, order.AssetID, order.SellerID, order.TokenAmount, order.EscrowCostBasis); err != nil {
			return err
		}

		updates := map[string]interface{}{"status": domain.OrderStatusCancelled}
		order.Status = domain.OrderStatusCancelled
		if rejected {
			updates["approval_status"] = domain.ApprovalRejected
			order.ApprovalStatus = domain.ApprovalRejected
		}
		if err := tx.Model(&domain.Order{}).Where("order_id = ?", orderID).Updates(updates).Error; err != nil {
			return err
		}
		return ledger.CheckSumInvariant(tx, asset)
	})
	if err != nil {
		return nil, err
	}
	return order, nil
}

// FillOrder settles an approved open order in full against one buyer: buyer is
// credited, the order terminates FILLED, and TRADE transfer plus price history
// rows are appended. Seller eligibility is re-checked here because it can
// change between creation and fill.
func (s *Service) FillOrder(ctx context.Context, orderID, buyerID uuid.UUID) (*domain.Order, error) {
	var order *domain.Order
	var asset *domain.Asset
	var seller, buyer *domain.User
	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var err error
		order, err = lockOrder(tx, orderID)
		if err != nil {
			return err
		}
		if order.Status != domain.OrderStatusOpen {
			return ledgererr.OrderState("Order is %s; only OPEN orders can be filled", order.Status)
		}
		if order.ApprovalStatus != domain.ApprovalApproved {
			return ledgererr.OrderState("Order is not approved for trading")
		}
		if order.SellerID == buyerID {
			return ledgererr.SelfTrade()
		}
		buyer, err = s.Gate.RequireTradable(tx, buyerID)
		if err != nil {
			return err
		}
		seller, err = s.Gate.RequireUser(tx, order.SellerID)
		if err != nil {
			return err
		}
		if seller.KycStatus != domain.KycApproved || seller.Frozen {
			return ledgererr.SellerIneligible("Seller is no longer eligible to trade")
		}
		asset, err = lockAsset(tx, order.AssetID)
		if err != nil {
			return err
		}

		tradeValue := order.PricePerToken.Mul(decimal.NewFromInt(order.TokenAmount))
		if _, err := ledger.CreditToken(tx, order.AssetID, buyerID, order.TokenAmount, tradeValue); err != nil {
			return err
		}

		order.Status = domain.OrderStatusFilled
		order.BuyerID = &buyerID
		if err := tx.Model(&domain.Order{}).Where("order_id = ?", orderID).
			Updates(map[string]interface{}{
				"status":   domain.OrderStatusFilled,
				"buyer_id": buyerID,
			}).Error; err != nil {
			return err
		}

		metaBytes, _ := json.Marshal(map[string]interface{}{
			"order_id":        order.OrderID,
			"price_per_token": order.PricePerToken,
		})
		if err := appendTradeTransfer(tx, order, buyerID, datatypes.JSON(metaBytes)); err != nil {
			return err
		}
		if err := tx.Create(&domain.PriceHistory{
			AssetID: order.AssetID,
			Price:   order.PricePerToken,
			Volume:  order.TokenAmount,
			OrderID: order.OrderID,
		}).Error; err != nil {
			return err
		}
		return ledger.CheckSumInvariant(tx, asset)
	})
	if err != nil {
		return nil, err
	}

	if s.Notifier != nil {
		price := order.PricePerToken.StringFixed(2)
		amount, title := order.TokenAmount, asset.Title
		sellerEmail, buyerEmail := seller.Email, buyer.Email
		notifications.Dispatch("order_filled", func(ctx context.Context) error {
			if err := s.Notifier.NotifyOrderFilled(ctx, sellerEmail, title, amount, price); err != nil {
				return err
			}
			return s.Notifier.NotifyOrderFilled(ctx, buyerEmail, title, amount, price)
		})
	}
	return order, nil
}

// GetOrder returns one order by id.
func (s *Service) GetOrder(ctx context.Context, orderID uuid.UUID) (*domain.Order, error) {
	var order domain.Order
	if err := s.DB.WithContext(ctx).Where("order_id = ?", orderID).First(&order).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, ledgererr.NotFound("Order not found")
		}
		return nil, err
	}
	return &order, nil
}

// ListBook returns the buyer-visible order book: open, approved orders.
func (s *Service) ListBook(ctx context.Context) ([]domain.Order, error) {
	var out []domain.Order
	if err := s.DB.WithContext(ctx).
		Where("status = ? AND approval_status = ?", domain.OrderStatusOpen, domain.ApprovalApproved).
		Order(`"createdAt" DESC`).Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

// ListBySeller returns all orders placed by one seller.
func (s *Service) ListBySeller(ctx context.Context, sellerID uuid.UUID) ([]domain.Order, error) {
	var out []domain.Order
	if err := s.DB.WithContext(ctx).Where("seller_id = ?", sellerID).
		Order(`"createdAt" DESC`).Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

// ListPendingApproval returns open orders awaiting admin review.
func (s *Service) ListPendingApproval(ctx context.Context) ([]domain.Order, error) {
	var out []domain.Order
	if err := s.DB.WithContext(ctx).
		Where("status = ? AND approval_status = ?", domain.OrderStatusOpen, domain.ApprovalPending).
		Order(`"createdAt" ASC`).Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

func lockOrder(tx *gorm.DB, orderID uuid.UUID) (*domain.Order, error) {
	var order domain.Order
	if err := database.ForUpdate(tx).Where("order_id = ?", orderID).First(&order).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, ledgererr.NotFound("Order not found")
		}
		return nil, err
	}
	return &order, nil
}

func lockAsset(tx *gorm.DB, assetID uuid.UUID) (*domain.Asset, error) {
	var asset domain.Asset
	if err := database.ForUpdate(tx).Where("asset_id = ?", assetID).First(&asset).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, ledgererr.NotFound("Asset not found")
		}
		return nil, err
	}
	return &asset, nil
}

func proportionalBasis(token *domain.Token, amount int64) decimal.Decimal {
	if amount >= token.Amount {
		return token.CostBasis
	}
	return token.CostBasis.
		Mul(decimal.NewFromInt(amount)).
		Div(decimal.NewFromInt(token.Amount)).
		Round(2)
}

func appendTradeTransfer(tx *gorm.DB, order *domain.Order, buyerID uuid.UUID, meta datatypes.JSON) error {
	sellerID := order.SellerID
	return tx.Create(&domain.Transfer{
		AssetID:     order.AssetID,
		FromUserID:  &sellerID,
		ToUserID:    &buyerID,
		TokenAmount: order.TokenAmount,
		Reason:      domain.ReasonTrade,
		Metadata:    meta,
	}).Error
}
