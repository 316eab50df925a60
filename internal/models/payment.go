package models

import (
	"time"

	"gorm.io/gorm"
)

const (
	PaymentPending   = "PENDING"
	PaymentCompleted = "COMPLETED"
	PaymentFailed    = "FAILED"

	PaymentKindCheckout = "CHECKOUT_SESSION"
	PaymentKindIntent   = "PAYMENT_INTENT"
)

type Payment struct {
	ID          uint           `gorm:"primaryKey" json:"id"`
	Email       string         `gorm:"size:255;not null;index" json:"email"`
	AmountMinor int64          `gorm:"not null" json:"amount_minor"`
	Currency    string         `gorm:"size:3;default:'inr'" json:"currency"`
	Provider    string         `gorm:"size:50;not null" json:"provider"`
	Kind        string         `gorm:"size:30;not null" json:"kind"`
	ProviderRef string         `gorm:"size:255;uniqueIndex" json:"provider_ref"`
	Status      string         `gorm:"size:20;not null;index" json:"status"`
	CompletedAt *time.Time     `json:"completed_at"`
	CreatedAt   time.Time      `json:"created_at"`
	UpdatedAt   time.Time      `json:"updated_at"`
	DeletedAt   gorm.DeletedAt `gorm:"index" json:"-"`
}

func (Payment) TableName() string {
	return "payments"
}
