package domain

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// NavHistory is the append-only series of administrative NAV revaluations.
// Kept strictly separate from PriceHistory: book value analytics depend on the
// administrative stream never mixing with market-realized trade prices.
type NavHistory struct {
	NavID     uuid.UUID       `gorm:"column:nav_id;type:uuid;primaryKey" json:"nav_id"`
	AssetID   uuid.UUID       `gorm:"column:asset_id;type:uuid;not null;index" json:"asset_id"`
	NavPrice  decimal.Decimal `gorm:"column:nav_price;type:decimal(18,2);not null" json:"nav_price"`
	Reason    string          `gorm:"column:reason" json:"reason"`
	CreatedAt time.Time       `gorm:"column:createdAt" json:"createdAt"`
}

func (NavHistory) TableName() string {
	return "nav_history"
}

func (n *NavHistory) BeforeCreate(tx *gorm.DB) error {
	if n.NavID == uuid.Nil {
		n.NavID = uuid.New()
	}
	return nil
}

// PriceHistory is the append-only series of market-realized trade prices, one
// row per filled order.
type PriceHistory struct {
	PriceID   uuid.UUID       `gorm:"column:price_id;type:uuid;primaryKey" json:"price_id"`
	AssetID   uuid.UUID       `gorm:"column:asset_id;type:uuid;not null;index" json:"asset_id"`
	Price     decimal.Decimal `gorm:"column:price;type:decimal(18,2);not null" json:"price"`
	Volume    int64           `gorm:"column:volume;not null" json:"volume"`
	OrderID   uuid.UUID       `gorm:"column:order_id;type:uuid;not null" json:"order_id"`
	CreatedAt time.Time       `gorm:"column:createdAt" json:"createdAt"`
}

func (PriceHistory) TableName() string {
	return "price_history"
}

func (p *PriceHistory) BeforeCreate(tx *gorm.DB) error {
	if p.PriceID == uuid.Nil {
		p.PriceID = uuid.New()
	}
	return nil
}
