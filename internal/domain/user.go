package domain

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// KYC verification states gating trading eligibility.
const (
	KycPending  = "pending"
	KycApproved = "approved"
	KycRejected = "rejected"
)

// ValidKycStatuses is the set of allowed DB enum values for kyc_status.
var ValidKycStatuses = []string{KycPending, KycApproved, KycRejected}

// IsValidKycStatus returns true if s is one of the allowed enum values.
func IsValidKycStatus(s string) bool {
	for _, v := range ValidKycStatuses {
		if v == s {
			return true
		}
	}
	return false
}

// User is the authenticated caller identity: role tags authorization, KycStatus
// and Frozen gate every mutating ledger operation.
type User struct {
	UserID       uuid.UUID      `gorm:"column:user_id;type:uuid;primaryKey" json:"user_id"`
	Fullname     string         `gorm:"column:fullname;not null" json:"fullname"`
	Email        string         `gorm:"column:email;not null;uniqueIndex" json:"email"`
	PasswordHash string         `gorm:"column:password_hash;not null" json:"-"`
	Role         string         `gorm:"column:role;not null;default:investor" json:"role"`
	KycStatus    string         `gorm:"column:kyc_status;type:varchar(20);not null;default:pending" json:"kyc_status"`
	Frozen       bool           `gorm:"column:frozen;not null;default:false" json:"frozen"`
	CreatedAt    time.Time      `json:"createdAt"`
	UpdatedAt    time.Time      `json:"updatedAt"`
	DeletedAt    gorm.DeletedAt `gorm:"index" json:"-"`
}

func (User) TableName() string {
	return "users"
}

func (u *User) BeforeCreate(tx *gorm.DB) error {
	if u.UserID == uuid.Nil {
		u.UserID = uuid.New()
	}
	return nil
}
