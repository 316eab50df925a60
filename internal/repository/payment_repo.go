package repository

import (
	"errors"
	"time"

	"healthoasis/internal/models"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// ErrPaymentAlreadyCompleted is returned when a webhook repeats a completion.
var ErrPaymentAlreadyCompleted = errors.New("payment already completed")

type PaymentRepository struct {
	db      *gorm.DB
	wallets *WalletRepository
}

func NewPaymentRepository(db *gorm.DB, wallets *WalletRepository) *PaymentRepository {
	return &PaymentRepository{db: db, wallets: wallets}
}

func (r *PaymentRepository) Create(p *models.Payment) error {
	return r.db.Create(p).Error
}

func (r *PaymentRepository) GetByProviderRef(ref string) (*models.Payment, error) {
	var p models.Payment
	err := r.db.Where("provider_ref = ?", ref).First(&p).Error
	if err != nil {
		return nil, err
	}
	return &p, nil
}

// Complete marks the payment COMPLETED and credits the payer's wallet once.
// A second call for the same reference returns ErrPaymentAlreadyCompleted and
// changes nothing.
func (r *PaymentRepository) Complete(ref string) (*models.Payment, error) {
	var out models.Payment
	err := r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).Where("provider_ref = ?", ref).First(&out).Error; err != nil {
			return err
		}
		if out.Status == models.PaymentCompleted {
			return ErrPaymentAlreadyCompleted
		}
		now := time.Now().UTC()
		out.Status = models.PaymentCompleted
		out.CompletedAt = &now
		if err := tx.Save(&out).Error; err != nil {
			return err
		}
		amount := decimal.New(out.AmountMinor, -2)
		_, err := r.wallets.credit(tx, out.Email, amount, "Wallet top-up", out.ProviderRef)
		return err
	})
	if err != nil {
		return nil, err
	}
	return &out, nil
}

func (r *PaymentRepository) MarkFailed(ref string) error {
	return r.db.Model(&models.Payment{}).
		Where("provider_ref = ? AND status = ?", ref, models.PaymentPending).
		Update("status", models.PaymentFailed).Error
}
