// Package ledger holds the per-(asset, owner) balance records and the
// invariant-preserving mutations on them: mint, revoke, admin corrections and
// freeze toggles. Peer-to-peer moves are never done here; they go through the
// order book so every trade carries a price and an audit entry.
package ledger

import (
	"context"
	"encoding/json"

	"fracton-backend/internal/application/assets"
	"fracton-backend/internal/application/compliance"
	"fracton-backend/internal/application/notifications"
	"fracton-backend/internal/domain"
	"fracton-backend/internal/pkg/ledgererr"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type Service struct {
	DB       *gorm.DB
	Gate     compliance.Gate
	Notifier notifications.Notifier
}

// Mint credits amount tokens of an asset to a KYC-approved owner out of the
// unallocated supply. One transaction: token credit, supply decrement, MINT
// transfer, sum-rule check.
func (s *Service) Mint(ctx context.Context, assetID, ownerID uuid.UUID, amount int64) (*domain.Token, error) {
	if amount <= 0 {
		return nil, ledgererr.Validation("Mint amount must be positive")
	}

	var token *domain.Token
	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if _, err := s.Gate.RequireTradable(tx, ownerID); err != nil {
			return err
		}
		asset, err := lockAsset(tx, assetID)
		if err != nil {
			return err
		}
		if asset.RemainingSupply < amount {
			return ledgererr.InsufficientSupply("Asset has %d tokens remaining, cannot mint %d", asset.RemainingSupply, amount)
		}

		cost := asset.NavPrice.Mul(decimal.NewFromInt(amount))
		token, err = CreditToken(tx, assetID, ownerID, amount, cost)
		if err != nil {
			return err
		}
		if err := assets.AdjustRemainingSupply(tx, asset, -amount); err != nil {
			return err
		}
		if err := appendTransfer(tx, assetID, nil, &ownerID, amount, domain.ReasonMint, nil); err != nil {
			return err
		}
		return CheckSumInvariant(tx, asset)
	})
	if err != nil {
		return nil, err
	}
	return token, nil
}

// Revoke is the administrative, non-consensual removal of tokens from a
// balance. The amount returns to the asset's unallocated supply and the owner
// is notified after commit.
func (s *Service) Revoke(ctx context.Context, tokenID uuid.UUID, amount int64) error {
	if amount <= 0 {
		return ledgererr.Validation("Revoke amount must be positive")
	}

	var owner *domain.User
	var asset *domain.Asset
	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		token, err := lockToken(tx, tokenID)
		if err != nil {
			return err
		}
		if amount > token.Amount {
			return ledgererr.InsufficientBalance("Cannot revoke %d tokens from a balance of %d", amount, token.Amount)
		}
		asset, err = lockAsset(tx, token.AssetID)
		if err != nil {
			return err
		}
		owner, err = s.Gate.RequireUser(tx, token.OwnerID)
		if err != nil {
			return err
		}

		if err := DebitToken(tx, token, amount, proportionalCost(token, amount)); err != nil {
			return err
		}
		if err := assets.AdjustRemainingSupply(tx, asset, amount); err != nil {
			return err
		}
		if err := appendTransfer(tx, token.AssetID, &token.OwnerID, nil, amount, domain.ReasonAdminRevoke, nil); err != nil {
			return err
		}
		return CheckSumInvariant(tx, asset)
	})
	if err != nil {
		return err
	}

	if s.Notifier != nil {
		email, title, n := owner.Email, asset.Title, amount
		notifications.Dispatch("tokens_revoked", func(ctx context.Context) error {
			return s.Notifier.NotifyTokensRevoked(ctx, email, title, n)
		})
	}
	return nil
}

// AdminSetAmount is a direct correction tool: it sets the balance to newAmount
// and applies the same supply rebalancing and transfer logging as mint/revoke
// depending on the sign of the delta.
func (s *Service) AdminSetAmount(ctx context.Context, tokenID uuid.UUID, newAmount int64, reason string) (*domain.Token, error) {
	if newAmount < 0 {
		return nil, ledgererr.Validation("New amount cannot be negative")
	}

	var out *domain.Token
	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		token, err := lockToken(tx, tokenID)
		if err != nil {
			return err
		}
		asset, err := lockAsset(tx, token.AssetID)
		if err != nil {
			return err
		}

		delta := newAmount - token.Amount
		if delta == 0 {
			out = token
			return nil
		}

		var meta datatypes.JSON
		if reason != "" {
			b, _ := json.Marshal(map[string]interface{}{"note": reason, "old_amount": token.Amount, "new_amount": newAmount})
			meta = datatypes.JSON(b)
		}

		if delta > 0 {
			if asset.RemainingSupply < delta {
				return ledgererr.InsufficientSupply("Asset has %d tokens remaining, cannot add %d", asset.RemainingSupply, delta)
			}
			cost := asset.NavPrice.Mul(decimal.NewFromInt(delta))
			out, err = CreditToken(tx, token.AssetID, token.OwnerID, delta, cost)
			if err != nil {
				return err
			}
			if err := assets.AdjustRemainingSupply(tx, asset, -delta); err != nil {
				return err
			}
			if err := appendTransfer(tx, token.AssetID, nil, &token.OwnerID, delta, domain.ReasonMint, meta); err != nil {
				return err
			}
		} else {
			down := -delta
			if err := DebitToken(tx, token, down, proportionalCost(token, down)); err != nil {
				return err
			}
			if err := assets.AdjustRemainingSupply(tx, asset, down); err != nil {
				return err
			}
			if err := appendTransfer(tx, token.AssetID, &token.OwnerID, nil, down, domain.ReasonAdminRevoke, meta); err != nil {
				return err
			}
			out = token
		}
		return CheckSumInvariant(tx, asset)
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// SetTokenFrozen toggles the compliance hold on one balance. The toggle is
// logged as a FREEZE/UNFREEZE transfer carrying the current amount.
func (s *Service) SetTokenFrozen(ctx context.Context, tokenID uuid.UUID, frozen bool) (*domain.Token, error) {
	var out *domain.Token
	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		token, err := lockToken(tx, tokenID)
		if err != nil {
			return err
		}
		if token.Frozen == frozen {
			out = token
			return nil
		}
		token.Frozen = frozen
		if err := tx.Model(&domain.Token{}).Where("token_id = ?", tokenID).
			Update("frozen", frozen).Error; err != nil {
			return err
		}
		reason := domain.ReasonFreeze
		if !frozen {
			reason = domain.ReasonUnfreeze
		}
		if err := appendTransfer(tx, token.AssetID, &token.OwnerID, &token.OwnerID, token.Amount, reason, nil); err != nil {
			return err
		}
		out = token
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// GetToken returns one balance row by id.
func (s *Service) GetToken(ctx context.Context, tokenID uuid.UUID) (*domain.Token, error) {
	var token domain.Token
	if err := s.DB.WithContext(ctx).Where("token_id = ?", tokenID).First(&token).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, ledgererr.NotFound("Token not found")
		}
		return nil, err
	}
	return &token, nil
}

// ListOwnerTokens returns all balances held by one owner.
func (s *Service) ListOwnerTokens(ctx context.Context, ownerID uuid.UUID) ([]domain.Token, error) {
	var out []domain.Token
	if err := s.DB.WithContext(ctx).Where("owner_id = ?", ownerID).Order(`"createdAt" DESC`).Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

// ListTransfers returns the audit trail for one asset, newest first.
func (s *Service) ListTransfers(ctx context.Context, assetID uuid.UUID) ([]domain.Transfer, error) {
	var out []domain.Transfer
	if err := s.DB.WithContext(ctx).Where("asset_id = ?", assetID).Order(`"createdAt" DESC`).Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

// ListUserTransfers returns transfers where the user is sender or receiver.
func (s *Service) ListUserTransfers(ctx context.Context, userID uuid.UUID) ([]domain.Transfer, error) {
	var out []domain.Transfer
	if err := s.DB.WithContext(ctx).
		Where("from_user_id = ? OR to_user_id = ?", userID, userID).
		Order(`"createdAt" DESC`).Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}
