package handler

import (
	"errors"
	"net/http"
	"strings"

	"healthoasis/config"
	"healthoasis/internal/auth"
	"healthoasis/internal/middleware"
	"healthoasis/internal/models"
	"healthoasis/internal/repository"
	"healthoasis/internal/validator"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

const walletHistoryLimit = 100

type WalletStore interface {
	GetOrCreate(email string) (*models.Wallet, error)
	Transactions(walletID uint, limit int) ([]models.WalletTransaction, error)
	Debit(email string, amount decimal.Decimal, description string) (*models.WalletTransaction, error)
}

type WalletHandler struct {
	wallets WalletStore
	jwt     *config.JWTConfig
	log     logrus.FieldLogger
}

func NewWalletHandler(wallets WalletStore, jwtCfg *config.JWTConfig, log logrus.FieldLogger) *WalletHandler {
	return &WalletHandler{wallets: wallets, jwt: jwtCfg, log: log}
}

type walletView struct {
	Email        string                     `json:"email"`
	Balance      decimal.Decimal            `json:"balance"`
	Currency     string                     `json:"currency"`
	Transactions []models.WalletTransaction `json:"transactions"`
}

// Login opens (or creates) the wallet for an email. There is no password;
// the token only scopes later wallet calls to that email.
func (h *WalletHandler) Login(c *gin.Context) {
	var req struct {
		Email string `json:"email"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}
	email := strings.ToLower(strings.TrimSpace(req.Email))
	if !validator.IsEmail(email) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "a valid email is required"})
		return
	}
	view, err := h.load(email)
	if err != nil {
		h.log.WithError(err).Error("wallet login")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "wallet error"})
		return
	}
	token, err := auth.GenerateWalletToken(h.jwt, email)
	if err != nil {
		h.log.WithError(err).Error("sign wallet token")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "wallet error"})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"message": "Wallet loaded",
		"token":   token,
		"wallet":  view,
	})
}

func (h *WalletHandler) Get(c *gin.Context) {
	view, err := h.load(middleware.GetWalletEmail(c))
	if err != nil {
		h.log.WithError(err).Error("load wallet")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "wallet error"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"wallet": view})
}

func (h *WalletHandler) Withdraw(c *gin.Context) {
	var req struct {
		Amount         decimal.Decimal `json:"amount"`
		AccountDetails string          `json:"account_details"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}
	var v validator.Validator
	v.Check(req.Amount.IsPositive(), "amount must be greater than zero")
	v.Check(req.Amount.Equal(req.Amount.Round(2)), "amount must have at most two decimal places")
	v.Check(validator.MinRunes(req.AccountDetails, 5), "account_details must be at least 5 characters")
	if v.HasErrors() {
		c.JSON(http.StatusBadRequest, gin.H{"error": v.Error(), "errors": v.Errors})
		return
	}

	email := middleware.GetWalletEmail(c)
	tx, err := h.wallets.Debit(email, req.Amount, "Withdrawal to "+maskAccount(req.AccountDetails))
	switch {
	case errors.Is(err, repository.ErrInsufficientBalance):
		c.JSON(http.StatusBadRequest, gin.H{"error": "insufficient balance"})
		return
	case errors.Is(err, gorm.ErrRecordNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "wallet not found"})
		return
	case err != nil:
		h.log.WithError(err).Error("wallet withdraw")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "withdrawal failed"})
		return
	}
	view, err := h.load(email)
	if err != nil {
		c.JSON(http.StatusOK, gin.H{"message": "Withdrawal successful", "transaction": tx})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Withdrawal successful", "transaction": tx, "wallet": view})
}

func (h *WalletHandler) load(email string) (*walletView, error) {
	w, err := h.wallets.GetOrCreate(email)
	if err != nil {
		return nil, err
	}
	txs, err := h.wallets.Transactions(w.ID, walletHistoryLimit)
	if err != nil {
		return nil, err
	}
	if txs == nil {
		txs = []models.WalletTransaction{}
	}
	return &walletView{Email: w.Email, Balance: w.Balance, Currency: w.Currency, Transactions: txs}, nil
}

func maskAccount(s string) string {
	s = strings.TrimSpace(s)
	r := []rune(s)
	if len(r) <= 4 {
		return s
	}
	return strings.Repeat("*", len(r)-4) + string(r[len(r)-4:])
}
