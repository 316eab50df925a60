package models

import (
	"time"

	"github.com/shopspring/decimal"
)

const (
	TransactionCredit = "credit"
	TransactionDebit  = "debit"
)

// WalletTransaction is append-only: rows are never updated or deleted.
// Amount is always positive; Type carries the direction.
type WalletTransaction struct {
	ID          string          `gorm:"primaryKey;size:36" json:"id"`
	WalletID    uint            `gorm:"not null;index" json:"-"`
	Amount      decimal.Decimal `gorm:"type:decimal(14,2);not null" json:"amount"`
	Type        string          `gorm:"size:10;not null;index" json:"type"`
	Description string          `gorm:"size:255" json:"description"`
	Reference   string          `gorm:"size:128;index" json:"-"` // payment provider ref, if any
	CreatedAt   time.Time       `gorm:"index" json:"timestamp"`
}

func (WalletTransaction) TableName() string {
	return "wallet_transactions"
}
