package domain

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Order lifecycle status. FILLED and CANCELLED are terminal.
const (
	OrderStatusOpen      = "OPEN"
	OrderStatusFilled    = "FILLED"
	OrderStatusCancelled = "CANCELLED"
)

// Admin approval state for open orders. Only APPROVED orders are visible to buyers.
const (
	ApprovalPending  = "PENDING"
	ApprovalApproved = "APPROVED"
	ApprovalRejected = "REJECTED"
)

// Order is a sell-side offer backed by escrowed tokens: the seller's balance is
// debited at creation and only returned on CANCELLED/REJECTED. EscrowCostBasis
// captures the cost basis removed from the seller's Token row at creation so
// cancellation restores exactly that value regardless of NAV drift.
type Order struct {
	OrderID         uuid.UUID       `gorm:"column:order_id;type:uuid;primaryKey" json:"order_id"`
	SellerID        uuid.UUID       `gorm:"column:seller_id;type:uuid;not null;index" json:"seller_id"`
	BuyerID         *uuid.UUID      `gorm:"column:buyer_id;type:uuid" json:"buyer_id"`
	AssetID         uuid.UUID       `gorm:"column:asset_id;type:uuid;not null;index" json:"asset_id"`
	TokenAmount     int64           `gorm:"column:token_amount;not null" json:"token_amount"`
	PricePerToken   decimal.Decimal `gorm:"column:price_per_token;type:decimal(18,2);not null" json:"price_per_token"`
	EscrowCostBasis decimal.Decimal `gorm:"column:escrow_cost_basis;type:decimal(18,2);not null;default:0" json:"escrow_cost_basis"`
	Status          string          `gorm:"column:status;type:varchar(20);not null;default:'OPEN'" json:"status"`
	ApprovalStatus  string          `gorm:"column:approval_status;type:varchar(20);not null;default:'PENDING'" json:"approval_status"`
	CreatedAt       time.Time       `gorm:"column:createdAt" json:"createdAt"`
	UpdatedAt       time.Time       `gorm:"column:updatedAt" json:"updatedAt"`
}

func (Order) TableName() string {
	return "orders"
}

func (o *Order) BeforeCreate(tx *gorm.DB) error {
	if o.OrderID == uuid.Nil {
		o.OrderID = uuid.New()
	}
	return nil
}
