package handler

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strings"

	"healthoasis/config"
	"healthoasis/internal/models"
	"healthoasis/internal/repository"
	"healthoasis/internal/validator"
	"healthoasis/pkg/payment"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
	"github.com/stripe/stripe-go/v76"
	"github.com/stripe/stripe-go/v76/webhook"
	"gorm.io/gorm"
)

const topUpDescription = "HealthOasis wallet top-up"

type PaymentStore interface {
	Create(p *models.Payment) error
	Complete(ref string) (*models.Payment, error)
	MarkFailed(ref string) error
}

type PaymentHandler struct {
	provider payment.Provider
	payments PaymentStore
	cfg      *config.Config
	log      logrus.FieldLogger
}

func NewPaymentHandler(provider payment.Provider, payments PaymentStore, cfg *config.Config, log logrus.FieldLogger) *PaymentHandler {
	return &PaymentHandler{provider: provider, payments: payments, cfg: cfg, log: log}
}

// CreateCheckoutSession takes the amount in minor units.
func (h *PaymentHandler) CreateCheckoutSession(c *gin.Context) {
	var req struct {
		Email  string `json:"email"`
		Amount int64  `json:"amount"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}
	email := strings.ToLower(strings.TrimSpace(req.Email))
	var v validator.Validator
	v.Check(validator.IsEmail(email), "a valid email is required")
	v.Check(req.Amount > 0, "amount must be greater than zero")
	if v.HasErrors() {
		c.JSON(http.StatusBadRequest, gin.H{"error": v.Error()})
		return
	}

	sess, err := h.provider.CreateCheckoutSession(c.Request.Context(), payment.CheckoutRequest{
		Email:       email,
		AmountMinor: req.Amount,
		Currency:    h.cfg.Stripe.Currency,
		Description: topUpDescription,
		SuccessURL:  h.cfg.Stripe.SuccessURL,
		CancelURL:   h.cfg.Stripe.CancelURL,
	})
	if err != nil {
		h.log.WithError(err).Error("create checkout session")
		c.JSON(http.StatusBadGateway, gin.H{"error": "payment provider error"})
		return
	}
	if !h.record(c, email, req.Amount, models.PaymentKindCheckout, sess.ID) {
		return
	}
	c.JSON(http.StatusOK, gin.H{"id": sess.ID, "url": sess.URL})
}

// CreatePaymentIntent takes the amount in major units.
func (h *PaymentHandler) CreatePaymentIntent(c *gin.Context) {
	var req struct {
		Email  string          `json:"email"`
		Amount decimal.Decimal `json:"amount"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}
	email := strings.ToLower(strings.TrimSpace(req.Email))
	var v validator.Validator
	v.Check(validator.IsEmail(email), "a valid email is required")
	v.Check(req.Amount.IsPositive(), "amount must be greater than zero")
	v.Check(req.Amount.Equal(req.Amount.Round(2)), "amount must have at most two decimal places")
	if v.HasErrors() {
		c.JSON(http.StatusBadRequest, gin.H{"error": v.Error()})
		return
	}
	minor := req.Amount.Shift(2).IntPart()

	intent, err := h.provider.CreatePaymentIntent(c.Request.Context(), payment.IntentRequest{
		Email:       email,
		AmountMinor: minor,
		Currency:    h.cfg.Stripe.Currency,
		Description: topUpDescription,
	})
	if err != nil {
		h.log.WithError(err).Error("create payment intent")
		c.JSON(http.StatusBadGateway, gin.H{"error": "payment provider error"})
		return
	}
	if !h.record(c, email, minor, models.PaymentKindIntent, intent.ID) {
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"clientSecret":   intent.ClientSecret,
		"publishableKey": h.cfg.Stripe.PublishableKey,
	})
}

func (h *PaymentHandler) record(c *gin.Context, email string, minor int64, kind, ref string) bool {
	err := h.payments.Create(&models.Payment{
		Email:       email,
		AmountMinor: minor,
		Currency:    h.cfg.Stripe.Currency,
		Provider:    h.provider.Name(),
		Kind:        kind,
		ProviderRef: ref,
		Status:      models.PaymentPending,
	})
	if err != nil {
		h.log.WithError(err).WithField("ref", ref).Error("record payment")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to record payment"})
		return false
	}
	return true
}

// Webhook settles pending payments. With the Stripe provider it takes Stripe
// events verified against Stripe-Signature. Otherwise it expects
// {"reference": "...", "status": "COMPLETED"|"FAILED"} signed with
// X-Webhook-Signature when a secret is configured. Unknown and repeated
// references are acknowledged so the sender stops retrying.
func (h *PaymentHandler) Webhook(c *gin.Context) {
	body, err := io.ReadAll(c.Request.Body)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid body"})
		return
	}
	if h.provider.Name() == payment.ProviderStripe {
		h.stripeWebhook(c, body)
		return
	}

	if secret := h.cfg.Payment.WebhookSecret; secret != "" {
		if !payment.VerifySignature(secret, body, c.GetHeader("X-Webhook-Signature")) {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid signature"})
			return
		}
	} else if h.cfg.IsProduction() {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "webhook not configured"})
		return
	}

	var payload struct {
		Reference string `json:"reference"`
		Status    string `json:"status"`
	}
	if err := json.Unmarshal(body, &payload); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid json"})
		return
	}
	if payload.Reference == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "reference required"})
		return
	}

	switch strings.ToUpper(payload.Status) {
	case models.PaymentCompleted:
		if !h.complete(c, payload.Reference) {
			return
		}
	case models.PaymentFailed:
		if !h.fail(c, payload.Reference) {
			return
		}
	}
	c.JSON(http.StatusOK, gin.H{"received": true})
}

func (h *PaymentHandler) stripeWebhook(c *gin.Context, body []byte) {
	secret := h.cfg.Stripe.WebhookSecret
	if secret == "" {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "webhook not configured"})
		return
	}
	// Endpoints pinned to another API version still carry the fields read below.
	event, err := webhook.ConstructEventWithOptions(body, c.GetHeader("Stripe-Signature"), secret,
		webhook.ConstructEventOptions{IgnoreAPIVersionMismatch: true})
	if err != nil {
		h.log.WithError(err).Warn("stripe webhook rejected")
		c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid signature"})
		return
	}
	if event.Data == nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "event has no object"})
		return
	}

	ok := true
	switch event.Type {
	case stripe.EventTypeCheckoutSessionCompleted, stripe.EventTypeCheckoutSessionAsyncPaymentSucceeded:
		var sess stripe.CheckoutSession
		if err := json.Unmarshal(event.Data.Raw, &sess); err != nil || sess.ID == "" {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid checkout session"})
			return
		}
		// card payments are paid on completion; delayed methods settle with async_payment_succeeded
		if sess.PaymentStatus == stripe.CheckoutSessionPaymentStatusPaid {
			ok = h.complete(c, sess.ID)
		}
	case stripe.EventTypeCheckoutSessionAsyncPaymentFailed:
		var sess stripe.CheckoutSession
		if err := json.Unmarshal(event.Data.Raw, &sess); err != nil || sess.ID == "" {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid checkout session"})
			return
		}
		ok = h.fail(c, sess.ID)
	case stripe.EventTypePaymentIntentSucceeded, stripe.EventTypePaymentIntentPaymentFailed:
		var pi stripe.PaymentIntent
		if err := json.Unmarshal(event.Data.Raw, &pi); err != nil || pi.ID == "" {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid payment intent"})
			return
		}
		if event.Type == stripe.EventTypePaymentIntentSucceeded {
			ok = h.complete(c, pi.ID)
		} else {
			ok = h.fail(c, pi.ID)
		}
	default:
		h.log.WithField("type", event.Type).Debug("stripe event ignored")
	}
	if ok {
		c.JSON(http.StatusOK, gin.H{"received": true})
	}
}

// complete credits the wallet for ref. It reports false after writing an
// error response.
func (h *PaymentHandler) complete(c *gin.Context, ref string) bool {
	entry := h.log.WithField("ref", ref)
	p, err := h.payments.Complete(ref)
	switch {
	case errors.Is(err, repository.ErrPaymentAlreadyCompleted):
		entry.Info("duplicate completion ignored")
	case errors.Is(err, gorm.ErrRecordNotFound):
		entry.Warn("completion for unknown payment")
	case err != nil:
		entry.WithError(err).Error("complete payment")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "update failed"})
		return false
	default:
		entry.WithField("email", p.Email).Info("wallet credited")
	}
	return true
}

func (h *PaymentHandler) fail(c *gin.Context, ref string) bool {
	if err := h.payments.MarkFailed(ref); err != nil {
		h.log.WithError(err).WithField("ref", ref).Error("mark payment failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "update failed"})
		return false
	}
	return true
}
