package models

import (
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Wallet is keyed by the patient's email; the portal has no patient accounts.
type Wallet struct {
	ID        uint            `gorm:"primaryKey" json:"id"`
	Email     string          `gorm:"size:255;uniqueIndex;not null" json:"email"`
	Balance   decimal.Decimal `gorm:"type:decimal(14,2);not null;default:0" json:"balance"`
	Currency  string          `gorm:"size:3;default:'INR'" json:"currency"`
	CreatedAt time.Time       `json:"created_at"`
	UpdatedAt time.Time       `json:"updated_at"`
	DeletedAt gorm.DeletedAt  `gorm:"index" json:"-"`

	Transactions []WalletTransaction `gorm:"foreignKey:WalletID" json:"-"`
}

func (Wallet) TableName() string {
	return "wallets"
}
