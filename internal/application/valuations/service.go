// Package valuations reads the two append-only valuation streams. NAV
// revaluations (administrative appraisals) and realized trade prices are kept
// structurally separate: book-vs-market analytics depend on never merging them.
package valuations

import (
	"context"

	"fracton-backend/internal/domain"
	"fracton-backend/internal/pkg/ledgererr"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type Service struct {
	DB *gorm.DB
}

// NavSeries returns the NAV revaluation history for one asset, oldest first.
func (s *Service) NavSeries(ctx context.Context, assetID uuid.UUID) ([]domain.NavHistory, error) {
	if err := s.requireAsset(ctx, assetID); err != nil {
		return nil, err
	}
	var out []domain.NavHistory
	if err := s.DB.WithContext(ctx).Where("asset_id = ?", assetID).
		Order(`"createdAt" ASC`).Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

// PriceSeries returns realized trade prices for one asset, oldest first.
func (s *Service) PriceSeries(ctx context.Context, assetID uuid.UUID) ([]domain.PriceHistory, error) {
	if err := s.requireAsset(ctx, assetID); err != nil {
		return nil, err
	}
	var out []domain.PriceHistory
	if err := s.DB.WithContext(ctx).Where("asset_id = ?", assetID).
		Order(`"createdAt" ASC`).Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

// LatestTradePrice returns the most recent realized price, or nil when the
// asset has never traded.
func (s *Service) LatestTradePrice(ctx context.Context, assetID uuid.UUID) (*decimal.Decimal, error) {
	var row domain.PriceHistory
	err := s.DB.WithContext(ctx).Where("asset_id = ?", assetID).
		Order(`"createdAt" DESC`).First(&row).Error
	if err == gorm.ErrRecordNotFound {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &row.Price, nil
}

// PortfolioPosition is one holding valued at book (cost basis) and market
// (current NAV).
type PortfolioPosition struct {
	AssetID     uuid.UUID       `json:"asset_id"`
	AssetTitle  string          `json:"asset_title"`
	AssetType   string          `json:"asset_type"`
	Amount      int64           `json:"amount"`
	Frozen      bool            `json:"frozen"`
	CostBasis   decimal.Decimal `json:"cost_basis"`
	NavPrice    decimal.Decimal `json:"nav_price"`
	MarketValue decimal.Decimal `json:"market_value"`
	GainLoss    decimal.Decimal `json:"gain_loss"`
}

// PortfolioReport is the valuation summary for one owner.
type PortfolioReport struct {
	Positions        []PortfolioPosition `json:"positions"`
	TotalCostBasis   decimal.Decimal     `json:"total_cost_basis"`
	TotalMarketValue decimal.Decimal     `json:"total_market_value"`
	TotalGainLoss    decimal.Decimal     `json:"total_gain_loss"`
}

// Portfolio values all of one owner's balances at current NAV against their
// cumulative acquisition cost. Read-only; never mutates ledger state.
func (s *Service) Portfolio(ctx context.Context, ownerID uuid.UUID) (*PortfolioReport, error) {
	var tokens []domain.Token
	if err := s.DB.WithContext(ctx).Where("owner_id = ?", ownerID).Find(&tokens).Error; err != nil {
		return nil, err
	}

	report := &PortfolioReport{
		Positions:        make([]PortfolioPosition, 0, len(tokens)),
		TotalCostBasis:   decimal.Zero,
		TotalMarketValue: decimal.Zero,
		TotalGainLoss:    decimal.Zero,
	}
	for _, t := range tokens {
		var asset domain.Asset
		if err := s.DB.WithContext(ctx).Where("asset_id = ?", t.AssetID).First(&asset).Error; err != nil {
			return nil, err
		}
		market := asset.NavPrice.Mul(decimal.NewFromInt(t.Amount))
		pos := PortfolioPosition{
			AssetID:     asset.AssetID,
			AssetTitle:  asset.Title,
			AssetType:   asset.Type,
			Amount:      t.Amount,
			Frozen:      t.Frozen,
			CostBasis:   t.CostBasis,
			NavPrice:    asset.NavPrice,
			MarketValue: market,
			GainLoss:    market.Sub(t.CostBasis),
		}
		report.Positions = append(report.Positions, pos)
		report.TotalCostBasis = report.TotalCostBasis.Add(t.CostBasis)
		report.TotalMarketValue = report.TotalMarketValue.Add(market)
	}
	report.TotalGainLoss = report.TotalMarketValue.Sub(report.TotalCostBasis)
	return report, nil
}

func (s *Service) requireAsset(ctx context.Context, assetID uuid.UUID) error {
	var asset domain.Asset
	if err := s.DB.WithContext(ctx).Select("asset_id").Where("asset_id = ?", assetID).First(&asset).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return ledgererr.NotFound("Asset not found")
		}
		return err
	}
	return nil
}
