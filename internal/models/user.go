package models

import (
	"time"

	"github.com/lib/pq"
	"gorm.io/gorm"
)

// Roles
const (
	RoleHost      = "host"
	RoleOrganizer = "organizer"
	RoleGig       = "gig"
	RoleAdmin     = "admin"
)

// User statuses
const (
	UserStatusActive  = "active"
	UserStatusBlocked = "blocked"
)

type User struct {
	gorm.Model
	Name         string     `gorm:"not null" json:"name"`
	Email        string     `gorm:"uniqueIndex;not null" json:"email"`
	Phone        string     `gorm:"uniqueIndex;not null" json:"phone"`
	Password     string     `gorm:"not null" json:"-"`
	Role         string     `gorm:"not null;index" json:"role"`
	Status       string     `gorm:"default:'active'" json:"status"`
	KYCStatus    string     `gorm:"default:'not_submitted'" json:"kyc_status"`
	TokenVersion int        `gorm:"default:1" json:"-"`
	LastLoginAt  *time.Time `json:"last_login_at,omitempty"`

	// Profile
	City    string         `json:"city"`
	Bio     string         `json:"bio"`
	Company string         `json:"company,omitempty"`
	Skills  pq.StringArray `gorm:"type:text[]" json:"skills,omitempty"`

	// Payout account
	BankAccountName   string `json:"bank_account_name,omitempty"`
	BankAccountNumber string `json:"-"`
	BankIFSC          string `json:"bank_ifsc,omitempty"`
}

// HasPayoutAccount reports whether withdrawals have somewhere to go.
func (u *User) HasPayoutAccount() bool {
	return u.BankAccountName != "" && u.BankAccountNumber != "" && u.BankIFSC != ""
}

// MaskedAccountNumber returns the account number with all but the last four digits hidden.
func (u *User) MaskedAccountNumber() string {
	n := u.BankAccountNumber
	if len(n) <= 4 {
		return n
	}
	masked := make([]byte, len(n))
	for i := range masked {
		masked[i] = 'X'
	}
	copy(masked[len(n)-4:], n[len(n)-4:])
	return string(masked)
}

// IsValidSignupRole reports whether role may be chosen at registration.
func IsValidSignupRole(role string) bool {
	switch role {
	case RoleHost, RoleOrganizer, RoleGig:
		return true
	}
	return false
}
