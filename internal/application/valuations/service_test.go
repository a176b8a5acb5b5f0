package valuations

import (
	"context"
	"testing"

	"fracton-backend/internal/domain"
	"fracton-backend/internal/pkg/ledgererr"

	"github.com/glebarez/sqlite"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func setupValuationsTest(t *testing.T) (*Service, *gorm.DB) {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(
		&domain.Asset{}, &domain.Token{},
		&domain.NavHistory{}, &domain.PriceHistory{},
	))
	return &Service{DB: db}, db
}

func makeAsset(t *testing.T, db *gorm.DB, title, nav string) *domain.Asset {
	a := &domain.Asset{
		Type:            domain.AssetTypeRealEstate,
		Title:           title,
		TotalSupply:     1000,
		RemainingSupply: 1000,
		NavPrice:        decimal.RequireFromString(nav),
	}
	require.NoError(t, db.Create(a).Error)
	return a
}

func TestNavSeries_UnknownAsset(t *testing.T) {
	svc, _ := setupValuationsTest(t)
	_, err := svc.NavSeries(context.Background(), uuid.New())
	require.Error(t, err)
	assert.True(t, ledgererr.IsKind(err, ledgererr.KindNotFound))
}

func TestLatestTradePrice_NilWhenNeverTraded(t *testing.T) {
	svc, db := setupValuationsTest(t)
	asset := makeAsset(t, db, "Untraded", "10.00")

	price, err := svc.LatestTradePrice(context.Background(), asset.AssetID)
	require.NoError(t, err)
	assert.Nil(t, price)

	require.NoError(t, db.Create(&domain.PriceHistory{
		AssetID: asset.AssetID, Price: decimal.RequireFromString("12.00"),
		Volume: 5, OrderID: uuid.New(),
	}).Error)
	require.NoError(t, db.Create(&domain.PriceHistory{
		AssetID: asset.AssetID, Price: decimal.RequireFromString("13.50"),
		Volume: 3, OrderID: uuid.New(),
	}).Error)

	price, err = svc.LatestTradePrice(context.Background(), asset.AssetID)
	require.NoError(t, err)
	require.NotNil(t, price)
	assert.True(t, price.Equal(decimal.RequireFromString("13.50")))
}

func TestPortfolio_BookVersusMarket(t *testing.T) {
	svc, db := setupValuationsTest(t)
	owner := uuid.New()

	a1 := makeAsset(t, db, "Harbor View", "25.00")
	a2 := makeAsset(t, db, "Copper Pool", "40.00")

	// 100 tokens bought at an average of 20.00, now worth 25.00.
	require.NoError(t, db.Create(&domain.Token{
		AssetID: a1.AssetID, OwnerID: owner, Amount: 100,
		CostBasis: decimal.RequireFromString("2000.00"),
	}).Error)
	// 10 tokens bought at 45.00, now worth 40.00.
	require.NoError(t, db.Create(&domain.Token{
		AssetID: a2.AssetID, OwnerID: owner, Amount: 10,
		CostBasis: decimal.RequireFromString("450.00"),
	}).Error)

	report, err := svc.Portfolio(context.Background(), owner)
	require.NoError(t, err)
	require.Len(t, report.Positions, 2)

	assert.True(t, report.TotalCostBasis.Equal(decimal.RequireFromString("2450.00")), "book %s", report.TotalCostBasis)
	assert.True(t, report.TotalMarketValue.Equal(decimal.RequireFromString("2900.00")), "market %s", report.TotalMarketValue)
	assert.True(t, report.TotalGainLoss.Equal(decimal.RequireFromString("450.00")), "pnl %s", report.TotalGainLoss)

	for _, pos := range report.Positions {
		if pos.AssetID == a1.AssetID {
			assert.True(t, pos.GainLoss.Equal(decimal.RequireFromString("500.00")))
		} else {
			assert.True(t, pos.GainLoss.Equal(decimal.RequireFromString("-50.00")))
		}
	}
}

func TestPortfolio_EmptyOwner(t *testing.T) {
	svc, _ := setupValuationsTest(t)

	report, err := svc.Portfolio(context.Background(), uuid.New())
	require.NoError(t, err)
	assert.Empty(t, report.Positions)
	assert.True(t, report.TotalGainLoss.IsZero())
}
