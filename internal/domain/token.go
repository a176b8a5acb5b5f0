package domain

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Token is the ledger balance for one (asset, owner) pair. At most one row per
// pair (enforced by the unique index); the row is deleted when Amount reaches
// exactly zero and re-created on the next credit.
type Token struct {
	TokenID   uuid.UUID       `gorm:"column:token_id;type:uuid;primaryKey" json:"token_id"`
	AssetID   uuid.UUID       `gorm:"column:asset_id;type:uuid;not null;uniqueIndex:idx_tokens_asset_owner" json:"asset_id"`
	OwnerID   uuid.UUID       `gorm:"column:owner_id;type:uuid;not null;uniqueIndex:idx_tokens_asset_owner" json:"owner_id"`
	Amount    int64           `gorm:"column:amount;not null;default:0" json:"amount"`
	CostBasis decimal.Decimal `gorm:"column:cost_basis;type:decimal(18,2);not null;default:0" json:"cost_basis"`
	Frozen    bool            `gorm:"column:frozen;not null;default:false" json:"frozen"`
	CreatedAt time.Time       `gorm:"column:createdAt" json:"createdAt"`
	UpdatedAt time.Time       `gorm:"column:updatedAt" json:"updatedAt"`
}

func (Token) TableName() string {
	return "tokens"
}

func (t *Token) BeforeCreate(tx *gorm.DB) error {
	if t.TokenID == uuid.Nil {
		t.TokenID = uuid.New()
	}
	return nil
}
