package domain

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Asset types supported by the registry.
const (
	AssetTypeRealEstate = "real_estate"
	AssetTypeCommodity  = "commodity"
	AssetTypeLoan       = "loan"
)

// ValidAssetTypes is the set of allowed DB enum values for asset type.
var ValidAssetTypes = []string{AssetTypeRealEstate, AssetTypeCommodity, AssetTypeLoan}

// IsValidAssetType returns true if t is one of the allowed asset types.
func IsValidAssetType(t string) bool {
	for _, v := range ValidAssetTypes {
		if v == t {
			return true
		}
	}
	return false
}

// Asset is a tokenizable real-world asset. TotalSupply is fixed at creation;
// RemainingSupply moves on mint/revoke and must stay within [0, TotalSupply].
// Assets are never deleted: historical transfers reference them forever.
type Asset struct {
	AssetID         uuid.UUID       `gorm:"column:asset_id;type:uuid;primaryKey" json:"asset_id"`
	Type            string          `gorm:"column:type;type:varchar(20);not null" json:"type"`
	Title           string          `gorm:"column:title;not null" json:"title"`
	Description     string          `gorm:"column:description" json:"description"`
	TotalSupply     int64           `gorm:"column:total_supply;not null" json:"total_supply"`
	RemainingSupply int64           `gorm:"column:remaining_supply;not null" json:"remaining_supply"`
	NavPrice        decimal.Decimal `gorm:"column:nav_price;type:decimal(18,2);not null" json:"nav_price"`
	CreatedAt       time.Time       `gorm:"column:createdAt" json:"createdAt"`
	UpdatedAt       time.Time       `gorm:"column:updatedAt" json:"updatedAt"`
}

func (Asset) TableName() string {
	return "assets"
}

// BeforeCreate: never insert zero UUID for primary key; generate random when not set.
func (a *Asset) BeforeCreate(tx *gorm.DB) error {
	if a.AssetID == uuid.Nil {
		a.AssetID = uuid.New()
	}
	return nil
}
