package ledger

import (
	"fracton-backend/internal/domain"
	"fracton-backend/internal/infrastructure/database"
	"fracton-backend/internal/pkg/ledgererr"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// lockAsset reads the asset row under FOR UPDATE so supply checks and the
// subsequent write happen against the same value.
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

// lockToken reads one balance row under FOR UPDATE.
func lockToken(tx *gorm.DB, tokenID uuid.UUID) (*domain.Token, error) {
	var token domain.Token
	if err := database.ForUpdate(tx).Where("token_id = ?", tokenID).First(&token).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, ledgererr.NotFound("Token not found")
		}
		return nil, err
	}
	return &token, nil
}

// CreditToken adds amount and costDelta to the (asset, owner) balance,
// creating the row when absent. Exactly one row per pair ever exists.
func CreditToken(tx *gorm.DB, assetID, ownerID uuid.UUID, amount int64, costDelta decimal.Decimal) (*domain.Token, error) {
	var token domain.Token
	err := database.ForUpdate(tx).
		Where("asset_id = ? AND owner_id = ?", assetID, ownerID).First(&token).Error
	if err == gorm.ErrRecordNotFound {
		token = domain.Token{
			AssetID:   assetID,
			OwnerID:   ownerID,
			Amount:    amount,
			CostBasis: costDelta,
		}
		if err := tx.Create(&token).Error; err != nil {
			return nil, err
		}
		return &token, nil
	}
	if err != nil {
		return nil, err
	}

	token.Amount += amount
	token.CostBasis = token.CostBasis.Add(costDelta)
	if err := tx.Model(&domain.Token{}).Where("token_id = ?", token.TokenID).
		Updates(map[string]interface{}{
			"amount":     token.Amount,
			"cost_basis": token.CostBasis,
		}).Error; err != nil {
		return nil, err
	}
	return &token, nil
}

// DebitToken removes amount and costDelta from an already-locked balance row,
// deleting the row when the amount reaches exactly zero. The caller validates
// sufficiency first.
func DebitToken(tx *gorm.DB, token *domain.Token, amount int64, costDelta decimal.Decimal) error {
	if amount > token.Amount {
		return ledgererr.InsufficientBalance("Cannot debit %d tokens from a balance of %d", amount, token.Amount)
	}
	token.Amount -= amount
	token.CostBasis = token.CostBasis.Sub(costDelta)
	if token.Amount == 0 {
		return tx.Delete(&domain.Token{}, "token_id = ?", token.TokenID).Error
	}
	return tx.Model(&domain.Token{}).Where("token_id = ?", token.TokenID).
		Updates(map[string]interface{}{
			"amount":     token.Amount,
			"cost_basis": token.CostBasis,
		}).Error
}

// proportionalCost is the share of the token's cost basis attributable to
// amount. Debiting the full balance moves the full basis so no rounding
// residue is left behind.
func proportionalCost(token *domain.Token, amount int64) decimal.Decimal {
	if amount >= token.Amount {
		return token.CostBasis
	}
	return token.CostBasis.
		Mul(decimal.NewFromInt(amount)).
		Div(decimal.NewFromInt(token.Amount)).
		Round(2)
}

// appendTransfer writes one immutable audit row. Every balance change in the
// ledger funnels through here with the reason of the triggering operation.
func appendTransfer(tx *gorm.DB, assetID uuid.UUID, from, to *uuid.UUID, amount int64, reason string, meta datatypes.JSON) error {
	if amount <= 0 {
		return ledgererr.Invariant("Transfer amount must be positive, got %d", amount)
	}
	return tx.Create(&domain.Transfer{
		AssetID:     assetID,
		FromUserID:  from,
		ToUserID:    to,
		TokenAmount: amount,
		Reason:      reason,
		Metadata:    meta,
	}).Error
}

// CheckSumInvariant re-validates the sum rule inside the mutating transaction:
// circulating token amounts plus escrowed open-order amounts plus remaining
// supply must equal total supply. A failure means a bug or a race and must
// roll the transaction back.
func CheckSumInvariant(tx *gorm.DB, asset *domain.Asset) error {
	var circulating int64
	if err := tx.Model(&domain.Token{}).
		Where("asset_id = ?", asset.AssetID).
		Select("COALESCE(SUM(amount), 0)").Scan(&circulating).Error; err != nil {
		return err
	}
	var escrowed int64
	if err := tx.Model(&domain.Order{}).
		Where("asset_id = ? AND status = ?", asset.AssetID, domain.OrderStatusOpen).
		Select("COALESCE(SUM(token_amount), 0)").Scan(&escrowed).Error; err != nil {
		return err
	}
	if circulating+escrowed+asset.RemainingSupply != asset.TotalSupply {
		return ledgererr.Invariant(
			"Supply mismatch for asset %s: circulating %d + escrowed %d + remaining %d != total %d",
			asset.AssetID, circulating, escrowed, asset.RemainingSupply, asset.TotalSupply)
	}
	return nil
}
