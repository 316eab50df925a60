package repository

import (
	"errors"
	"time"

	"healthoasis/internal/models"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

var ErrInsufficientBalance = errors.New("insufficient wallet balance")

type WalletRepository struct {
	db *gorm.DB
}

func NewWalletRepository(db *gorm.DB) *WalletRepository {
	return &WalletRepository{db: db}
}

func (r *WalletRepository) GetByEmail(email string) (*models.Wallet, error) {
	var w models.Wallet
	err := r.db.Where("email = ?", email).First(&w).Error
	if err != nil {
		return nil, err
	}
	return &w, nil
}

func (r *WalletRepository) GetOrCreate(email string) (*models.Wallet, error) {
	w, err := r.GetByEmail(email)
	if err == nil {
		return w, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}
	w = &models.Wallet{Email: email, Balance: decimal.Zero, Currency: "INR"}
	if err := r.db.Create(w).Error; err != nil {
		return nil, err
	}
	return w, nil
}

// Transactions returns the wallet history newest first.
func (r *WalletRepository) Transactions(walletID uint, limit int) ([]models.WalletTransaction, error) {
	var list []models.WalletTransaction
	q := r.db.Where("wallet_id = ?", walletID).Order("created_at DESC")
	if limit > 0 {
		q = q.Limit(limit)
	}
	err := q.Find(&list).Error
	return list, err
}

// Credit adds amount to the wallet and appends the matching transaction in
// one DB transaction.
func (r *WalletRepository) Credit(email string, amount decimal.Decimal, description, reference string) (*models.WalletTransaction, error) {
	var out *models.WalletTransaction
	err := r.db.Transaction(func(tx *gorm.DB) error {
		t, err := r.credit(tx, email, amount, description, reference)
		out = t
		return err
	})
	return out, err
}

// Debit checks sufficiency under a row lock before subtracting.
func (r *WalletRepository) Debit(email string, amount decimal.Decimal, description string) (*models.WalletTransaction, error) {
	var out *models.WalletTransaction
	err := r.db.Transaction(func(tx *gorm.DB) error {
		var w models.Wallet
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).Where("email = ?", email).First(&w).Error; err != nil {
			return err
		}
		if w.Balance.LessThan(amount) {
			return ErrInsufficientBalance
		}
		if err := tx.Model(&w).Update("balance", gorm.Expr("balance - ?", amount)).Error; err != nil {
			return err
		}
		t := &models.WalletTransaction{
			ID:          uuid.NewString(),
			WalletID:    w.ID,
			Amount:      amount,
			Type:        models.TransactionDebit,
			Description: description,
			CreatedAt:   time.Now().UTC(),
		}
		if err := tx.Create(t).Error; err != nil {
			return err
		}
		out = t
		return nil
	})
	return out, err
}

func (r *WalletRepository) credit(tx *gorm.DB, email string, amount decimal.Decimal, description, reference string) (*models.WalletTransaction, error) {
	var w models.Wallet
	err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).Where("email = ?", email).First(&w).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		w = models.Wallet{Email: email, Balance: decimal.Zero, Currency: "INR"}
		err = tx.Create(&w).Error
	}
	if err != nil {
		return nil, err
	}
	if err := tx.Model(&w).Update("balance", gorm.Expr("balance + ?", amount)).Error; err != nil {
		return nil, err
	}
	t := &models.WalletTransaction{
		ID:          uuid.NewString(),
		WalletID:    w.ID,
		Amount:      amount,
		Type:        models.TransactionCredit,
		Description: description,
		Reference:   reference,
		CreatedAt:   time.Now().UTC(),
	}
	if err := tx.Create(t).Error; err != nil {
		return nil, err
	}
	return t, nil
}
