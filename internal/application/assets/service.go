// Package assets is the registry of tokenizable real-world assets and their
// supply and valuation accounting.
package assets

import (
	"context"

	"fracton-backend/internal/domain"
	"fracton-backend/internal/infrastructure/database"
	"fracton-backend/internal/pkg/ledgererr"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type Service struct {
	DB *gorm.DB
}

type CreateAssetInput struct {
	Type        string
	Title       string
	Description string
	TotalSupply int64
	NavPrice    decimal.Decimal
}

// CreateAsset registers a new asset with remaining supply equal to total
// supply, and seeds the NAV history with the initial valuation.
func (s *Service) CreateAsset(ctx context.Context, in CreateAssetInput) (*domain.Asset, error) {
	if !domain.IsValidAssetType(in.Type) {
		return nil, ledgererr.Validation("Invalid asset type %q", in.Type)
	}
	if in.Title == "" {
		return nil, ledgererr.Validation("Title is required")
	}
	if in.TotalSupply <= 0 {
		return nil, ledgererr.Validation("Total supply must be positive")
	}
	if !in.NavPrice.IsPositive() {
		return nil, ledgererr.Validation("NAV price must be positive")
	}

	asset := &domain.Asset{
		Type:            in.Type,
		Title:           in.Title,
		Description:     in.Description,
		TotalSupply:     in.TotalSupply,
		RemainingSupply: in.TotalSupply,
		NavPrice:        in.NavPrice,
	}
	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(asset).Error; err != nil {
			return err
		}
		return tx.Create(&domain.NavHistory{
			AssetID:  asset.AssetID,
			NavPrice: in.NavPrice,
			Reason:   "Initial valuation",
		}).Error
	})
	if err != nil {
		return nil, err
	}
	return asset, nil
}

// ReviseNav appends a NAV history row and updates the asset's current NAV in
// one transaction. The history append is never skipped.
func (s *Service) ReviseNav(ctx context.Context, assetID uuid.UUID, newNav decimal.Decimal, reason string) (*domain.Asset, *domain.NavHistory, error) {
	if !newNav.IsPositive() {
		return nil, nil, ledgererr.Validation("NAV price must be positive")
	}

	var asset domain.Asset
	var entry domain.NavHistory
	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := database.ForUpdate(tx).Where("asset_id = ?", assetID).First(&asset).Error; err != nil {
			if err == gorm.ErrRecordNotFound {
				return ledgererr.NotFound("Asset not found")
			}
			return err
		}
		entry = domain.NavHistory{
			AssetID:  asset.AssetID,
			NavPrice: newNav,
			Reason:   reason,
		}
		if err := tx.Create(&entry).Error; err != nil {
			return err
		}
		asset.NavPrice = newNav
		return tx.Model(&domain.Asset{}).Where("asset_id = ?", assetID).
			Update("nav_price", newNav).Error
	})
	if err != nil {
		return nil, nil, err
	}
	return &asset, &entry, nil
}

// AdjustRemainingSupply applies delta to the locked asset row inside the
// caller's transaction. Fails hard if the result would leave remaining supply
// outside [0, totalSupply].
func AdjustRemainingSupply(tx *gorm.DB, asset *domain.Asset, delta int64) error {
	next := asset.RemainingSupply + delta
	if next < 0 || next > asset.TotalSupply {
		return ledgererr.Invariant("Remaining supply %d out of range [0, %d]", next, asset.TotalSupply)
	}
	asset.RemainingSupply = next
	return tx.Model(&domain.Asset{}).Where("asset_id = ?", asset.AssetID).
		Update("remaining_supply", next).Error
}

// GetAsset returns one asset by id.
func (s *Service) GetAsset(ctx context.Context, assetID uuid.UUID) (*domain.Asset, error) {
	var asset domain.Asset
	if err := s.DB.WithContext(ctx).Where("asset_id = ?", assetID).First(&asset).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, ledgererr.NotFound("Asset not found")
		}
		return nil, err
	}
	return &asset, nil
}

// ListAssets returns all registered assets, newest first.
func (s *Service) ListAssets(ctx context.Context) ([]domain.Asset, error) {
	var out []domain.Asset
	if err := s.DB.WithContext(ctx).Order(`"createdAt" DESC`).Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}
