package models

import (
	"time"

	"gorm.io/gorm"
)

// Wallet statuses
const (
	WalletStatusActive = "active"
	WalletStatusFrozen = "frozen"
)

type Wallet struct {
	ID        uint      `gorm:"primarykey" json:"id"`
	UserID    uint      `gorm:"uniqueIndex;not null" json:"user_id"`
	Balance   int64     `gorm:"default:0;not null" json:"balance"`
	Currency  string    `gorm:"default:'INR'" json:"currency"`
	Status    string    `gorm:"default:'active'" json:"status"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (w *Wallet) BeforeCreate(tx *gorm.DB) error {
	// Ensure balance starts at 0
	w.Balance = 0
	return nil
}
