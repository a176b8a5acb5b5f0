package domain

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// Transfer reason codes. Every balance-changing event appends exactly one
// Transfer row tagged with the reason of the triggering operation.
const (
	ReasonMint        = "MINT"
	ReasonTransfer    = "TRANSFER"
	ReasonTrade       = "TRADE"
	ReasonFreeze      = "FREEZE"
	ReasonUnfreeze    = "UNFREEZE"
	ReasonAdminRevoke = "ADMIN_REVOKE"
)

// Transfer is the append-only audit record of one balance-changing event.
// FromUserID nil means the system supply pool (mint source); ToUserID nil means
// the supply pool (revoke sink). Rows are never updated or deleted.
type Transfer struct {
	TransferID  uuid.UUID      `gorm:"column:transfer_id;type:uuid;primaryKey" json:"transfer_id"`
	AssetID     uuid.UUID      `gorm:"column:asset_id;type:uuid;not null;index" json:"asset_id"`
	FromUserID  *uuid.UUID     `gorm:"column:from_user_id;type:uuid" json:"from_user_id"`
	ToUserID    *uuid.UUID     `gorm:"column:to_user_id;type:uuid" json:"to_user_id"`
	TokenAmount int64          `gorm:"column:token_amount;not null" json:"token_amount"`
	Reason      string         `gorm:"column:reason;type:varchar(20);not null" json:"reason"`
	Metadata    datatypes.JSON `gorm:"column:metadata" json:"metadata"`
	CreatedAt   time.Time      `gorm:"column:createdAt" json:"createdAt"`
}

func (Transfer) TableName() string {
	return "transfers"
}

func (t *Transfer) BeforeCreate(tx *gorm.DB) error {
	if t.TransferID == uuid.Nil {
		t.TransferID = uuid.New()
	}
	return nil
}
