// Package compliance is the single guard consulted by every mutating ledger
// operation. KYC and freeze checks live here instead of being duplicated per
// route handler.
package compliance

import (
	"fracton-backend/internal/domain"
	"fracton-backend/internal/pkg/ledgererr"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Gate performs KYC/freeze checks against the users table. Call it with the
// transaction handle of the operation so eligibility is read under the same
// isolation as the ledger mutation.
type Gate struct{}

// RequireUser loads the user or fails with NotFound.
func (Gate) RequireUser(tx *gorm.DB, userID uuid.UUID) (*domain.User, error) {
	var u domain.User
	if err := tx.Where("user_id = ?", userID).First(&u).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, ledgererr.NotFound("User not found")
		}
		return nil, err
	}
	return &u, nil
}

// RequireTradable loads the user and fails with ComplianceError unless KYC is
// approved and the account is not frozen.
func (g Gate) RequireTradable(tx *gorm.DB, userID uuid.UUID) (*domain.User, error) {
	u, err := g.RequireUser(tx, userID)
	if err != nil {
		return nil, err
	}
	if u.KycStatus != domain.KycApproved {
		return nil, ledgererr.Compliance("User KYC status is %s, trading requires approval", u.KycStatus)
	}
	if u.Frozen {
		return nil, ledgererr.Compliance("Account is frozen")
	}
	return u, nil
}
