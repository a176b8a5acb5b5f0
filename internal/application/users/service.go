// Package users manages investor accounts and the compliance attributes on
// them: KYC status and the account-level freeze.
package users

import (
	"context"
	"strings"

	"fracton-backend/internal/application/notifications"
	"fracton-backend/internal/domain"
	"fracton-backend/internal/pkg/constants"
	"fracton-backend/internal/pkg/ledgererr"
	"fracton-backend/internal/pkg/validation"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

type Service struct {
	DB       *gorm.DB
	Rdb      *redis.Client
	Notifier notifications.Notifier
}

type RegisterInput struct {
	Fullname string `json:"fullname"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Register creates an investor account with KYC pending. Trading stays locked
// until an admin approves KYC.
func (s *Service) Register(ctx context.Context, in RegisterInput) (*domain.User, error) {
	if strings.TrimSpace(in.Fullname) == "" {
		return nil, ledgererr.Validation("Full name is required")
	}
	trimmed := strings.TrimSpace(in.Fullname)
	if !validation.IsValidFullname(trimmed) {
		return nil, ledgererr.Validation("Full name contains invalid characters")
	}
	if in.Email == "" || !validation.IsValidEmail(in.Email) {
		return nil, ledgererr.Validation("Invalid email format")
	}
	if !validation.IsValidPassword(in.Password) {
		return nil, ledgererr.Validation("Password must be at least 8 characters with a letter, a number and a special character")
	}

	email := strings.TrimSpace(strings.ToLower(in.Email))
	var existing domain.User
	err := s.DB.WithContext(ctx).Where("email = ?", email).First(&existing).Error
	if err == nil {
		return nil, ledgererr.Validation("Email already registered")
	}
	if err != gorm.ErrRecordNotFound {
		return nil, err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), 10)
	if err != nil {
		return nil, err
	}

	u := &domain.User{
		Fullname:     trimmed,
		Email:        email,
		PasswordHash: string(hash),
		Role:         constants.Investor,
		KycStatus:    domain.KycPending,
	}
	if err := s.DB.WithContext(ctx).Create(u).Error; err != nil {
		return nil, err
	}
	return u, nil
}

// SetKycStatus is the admin transition of a user's verification state. A
// rejection also destroys the user's active sessions. The user is notified
// best-effort after the update.
func (s *Service) SetKycStatus(ctx context.Context, userID uuid.UUID, status string) (*domain.User, error) {
	if !domain.IsValidKycStatus(status) {
		return nil, ledgererr.Validation("Invalid KYC status %q", status)
	}
	u, err := s.find(ctx, userID)
	if err != nil {
		return nil, err
	}
	u.KycStatus = status
	if err := s.DB.WithContext(ctx).Model(&domain.User{}).
		Where("user_id = ?", userID).Update("kyc_status", status).Error; err != nil {
		return nil, err
	}
	// A rejected investor loses trading rights immediately, sessions included.
	if status == domain.KycRejected && s.Rdb != nil {
		DestroyUserSessions(ctx, s.Rdb, userID.String())
	}

	if s.Notifier != nil {
		email, fullname := u.Email, u.Fullname
		notifications.Dispatch("kyc_changed", func(ctx context.Context) error {
			return s.Notifier.NotifyKycChanged(ctx, email, fullname, status)
		})
	}
	return u, nil
}

// SetFrozen toggles the account-level compliance hold. Freezing also destroys
// the user's active sessions so a frozen investor is logged out immediately.
func (s *Service) SetFrozen(ctx context.Context, userID uuid.UUID, frozen bool) (*domain.User, error) {
	u, err := s.find(ctx, userID)
	if err != nil {
		return nil, err
	}
	u.Frozen = frozen
	if err := s.DB.WithContext(ctx).Model(&domain.User{}).
		Where("user_id = ?", userID).Update("frozen", frozen).Error; err != nil {
		return nil, err
	}
	if frozen && s.Rdb != nil {
		DestroyUserSessions(ctx, s.Rdb, userID.String())
	}

	if s.Notifier != nil {
		email, fullname := u.Email, u.Fullname
		notifications.Dispatch("account_frozen", func(ctx context.Context) error {
			return s.Notifier.NotifyAccountFrozen(ctx, email, fullname, frozen)
		})
	}
	return u, nil
}

// ViewUser returns one user by id.
func (s *Service) ViewUser(ctx context.Context, userID uuid.UUID) (*domain.User, error) {
	return s.find(ctx, userID)
}

func (s *Service) find(ctx context.Context, userID uuid.UUID) (*domain.User, error) {
	var u domain.User
	if err := s.DB.WithContext(ctx).Where("user_id = ?", userID).First(&u).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, ledgererr.NotFound("User not found")
		}
		return nil, err
	}
	return &u, nil
}
