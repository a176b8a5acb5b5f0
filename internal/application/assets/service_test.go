package assets

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

func setupAssetsTest(t *testing.T) (*Service, *gorm.DB) {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&domain.Asset{}, &domain.NavHistory{}))
	return &Service{DB: db}, db
}

func TestCreateAsset_SeedsNavHistory(t *testing.T) {
	svc, db := setupAssetsTest(t)

	asset, err := svc.CreateAsset(context.Background(), CreateAssetInput{
		Type:        domain.AssetTypeRealEstate,
		Title:       "Harbor View Apartments",
		Description: "48-unit residential block",
		TotalSupply: 10000,
		NavPrice:    decimal.RequireFromString("25.00"),
	})
	require.NoError(t, err)
	assert.Equal(t, int64(10000), asset.RemainingSupply)

	var history []domain.NavHistory
	require.NoError(t, db.Where("asset_id = ?", asset.AssetID).Find(&history).Error)
	require.Len(t, history, 1)
	assert.True(t, history[0].NavPrice.Equal(decimal.RequireFromString("25.00")))
	assert.Equal(t, "Initial valuation", history[0].Reason)
}

func TestCreateAsset_Validation(t *testing.T) {
	svc, _ := setupAssetsTest(t)

	cases := []CreateAssetInput{
		{Type: "yacht", Title: "Bad Type", TotalSupply: 100, NavPrice: decimal.RequireFromString("1.00")},
		{Type: domain.AssetTypeLoan, Title: "", TotalSupply: 100, NavPrice: decimal.RequireFromString("1.00")},
		{Type: domain.AssetTypeLoan, Title: "Zero Supply", TotalSupply: 0, NavPrice: decimal.RequireFromString("1.00")},
		{Type: domain.AssetTypeLoan, Title: "Zero NAV", TotalSupply: 100, NavPrice: decimal.Zero},
	}
	for _, in := range cases {
		_, err := svc.CreateAsset(context.Background(), in)
		require.Error(t, err, "input %+v", in)
		assert.True(t, ledgererr.IsKind(err, ledgererr.KindValidation))
	}
}

func TestReviseNav_AppendsHistoryAndUpdatesAsset(t *testing.T) {
	svc, db := setupAssetsTest(t)

	asset, err := svc.CreateAsset(context.Background(), CreateAssetInput{
		Type:        domain.AssetTypeCommodity,
		Title:       "Copper Warehouse Receipts",
		TotalSupply: 500,
		NavPrice:    decimal.RequireFromString("40.00"),
	})
	require.NoError(t, err)

	updated, entry, err := svc.ReviseNav(context.Background(), asset.AssetID,
		decimal.RequireFromString("42.50"), "Quarterly appraisal")
	require.NoError(t, err)
	assert.True(t, updated.NavPrice.Equal(decimal.RequireFromString("42.50")))
	assert.Equal(t, "Quarterly appraisal", entry.Reason)

	var history []domain.NavHistory
	require.NoError(t, db.Where("asset_id = ?", asset.AssetID).Order(`"createdAt" ASC`).Find(&history).Error)
	require.Len(t, history, 2)
}

func TestReviseNav_UnknownAsset(t *testing.T) {
	svc, _ := setupAssetsTest(t)

	_, _, err := svc.ReviseNav(context.Background(), uuid.New(),
		decimal.RequireFromString("10.00"), "no such asset")
	require.Error(t, err)
	assert.True(t, ledgererr.IsKind(err, ledgererr.KindNotFound))
}

func TestAdjustRemainingSupply_Bounds(t *testing.T) {
	svc, db := setupAssetsTest(t)

	asset, err := svc.CreateAsset(context.Background(), CreateAssetInput{
		Type:        domain.AssetTypeLoan,
		Title:       "Bridge Loan Tranche A",
		TotalSupply: 100,
		NavPrice:    decimal.RequireFromString("1.00"),
	})
	require.NoError(t, err)

	require.Error(t, AdjustRemainingSupply(db, asset, -101))
	require.Error(t, AdjustRemainingSupply(db, asset, 1))
	require.NoError(t, AdjustRemainingSupply(db, asset, -100))
	assert.Equal(t, int64(0), asset.RemainingSupply)
}
