// Package client talks to the HealthOasis REST API on behalf of the portal.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"

	"healthoasis/internal/models"

	"github.com/shopspring/decimal"
)

// APIError is a non-2xx response.
type APIError struct {
	Status  int
	Message string
}

func (e *APIError) Error() string { return e.Message }

type Transaction struct {
	ID          string          `json:"id"`
	Amount      decimal.Decimal `json:"amount"`
	Type        string          `json:"type"`
	Description string          `json:"description"`
	Timestamp   time.Time       `json:"timestamp"`
}

type WalletData struct {
	Email        string          `json:"email"`
	Balance      decimal.Decimal `json:"balance"`
	Transactions []Transaction   `json:"transactions"`
}

type Appointment struct {
	Date       string `json:"appointment_date"`
	Time       string `json:"appointment_time"`
	FullName   string `json:"fullname"`
	Email      string `json:"email"`
	Phone      string `json:"phone"`
	Message    string `json:"message"`
	Department string `json:"department"`
}

type Message struct {
	FullName string `json:"full_name"`
	Email    string `json:"email_address"`
	Subject  string `json:"subject"`
	Text     string `json:"message_text"`
}

type CallEnd struct {
	DoctorID uint      `json:"doctorId,omitempty"`
	RoomID   string    `json:"roomId,omitempty"`
	EndTime  time.Time `json:"endTime"`
	Duration int       `json:"duration"`
}

type CheckoutSession struct {
	ID  string `json:"id"`
	URL string `json:"url"`
}

type PaymentIntent struct {
	ClientSecret   string `json:"clientSecret"`
	PublishableKey string `json:"publishableKey"`
}

// Client is bound to one resolved API base URL.
type Client struct {
	baseURL string
	http    *http.Client

	mu          sync.RWMutex
	walletToken string
}

func New(baseURL string, httpClient *http.Client) *Client {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 30 * time.Second}
	}
	return &Client{baseURL: strings.TrimRight(baseURL, "/"), http: httpClient}
}

func (c *Client) BaseURL() string { return c.baseURL }

func (c *Client) Departments(ctx context.Context) ([]models.Department, error) {
	var out []models.Department
	return out, c.do(ctx, http.MethodGet, "/api/departments", nil, &out)
}

func (c *Client) Doctors(ctx context.Context) ([]models.Doctor, error) {
	var out []models.Doctor
	return out, c.do(ctx, http.MethodGet, "/api/doctors", nil, &out)
}

func (c *Client) Doctor(ctx context.Context, id uint) (*models.Doctor, error) {
	var out models.Doctor
	if err := c.do(ctx, http.MethodGet, "/api/doctors/"+strconv.FormatUint(uint64(id), 10), nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) WorkingHours(ctx context.Context) ([]models.WorkingHour, error) {
	var out []models.WorkingHour
	return out, c.do(ctx, http.MethodGet, "/api/working-hours", nil, &out)
}

func (c *Client) ContactInfo(ctx context.Context) ([]models.ContactInfo, error) {
	var out []models.ContactInfo
	return out, c.do(ctx, http.MethodGet, "/api/contact-info", nil, &out)
}

func (c *Client) BookAppointment(ctx context.Context, a Appointment) error {
	return c.do(ctx, http.MethodPost, "/api/appointments", a, nil)
}

func (c *Client) SendMessage(ctx context.Context, m Message) error {
	return c.do(ctx, http.MethodPost, "/api/messages", m, nil)
}

// LoginWallet opens the wallet for email and keeps the returned token for
// Wallet.
func (c *Client) LoginWallet(ctx context.Context, email string) (*WalletData, error) {
	var out struct {
		Message string     `json:"message"`
		Token   string     `json:"token"`
		Wallet  WalletData `json:"wallet"`
	}
	if err := c.do(ctx, http.MethodPost, "/api/wallet/login", map[string]string{"email": email}, &out); err != nil {
		return nil, err
	}
	c.mu.Lock()
	c.walletToken = out.Token
	c.mu.Unlock()
	return normalise(out.Wallet), nil
}

// Wallet re-reads the wallet opened by the last LoginWallet.
func (c *Client) Wallet(ctx context.Context) (*WalletData, error) {
	var out struct {
		Wallet WalletData `json:"wallet"`
	}
	if err := c.do(ctx, http.MethodGet, "/api/wallet", nil, &out); err != nil {
		return nil, err
	}
	return normalise(out.Wallet), nil
}

func (c *Client) StartVideoCall(ctx context.Context, doctorID uint, roomID string, start time.Time) error {
	body := map[string]any{"doctorId": doctorID, "startTime": start}
	if roomID != "" {
		body["roomId"] = roomID
	}
	return c.do(ctx, http.MethodPost, "/api/video-calls", body, nil)
}

func (c *Client) EndVideoCall(ctx context.Context, end CallEnd) error {
	return c.do(ctx, http.MethodPost, "/api/video-calls/end", end, nil)
}

// InviteDoctor returns the room the doctor was invited to.
func (c *Client) InviteDoctor(ctx context.Context, doctorEmail, patientName, patientID string) (string, error) {
	var out struct {
		RoomID string `json:"roomId"`
	}
	err := c.do(ctx, http.MethodPost, "/api/video-call/invite", map[string]string{
		"doctorEmail": doctorEmail,
		"patientName": patientName,
		"patientId":   patientID,
	}, &out)
	return out.RoomID, err
}

func (c *Client) NotifyDoctor(ctx context.Context, doctorID uint, patientName, roomID string) error {
	return c.do(ctx, http.MethodPost, "/api/notify-doctor", map[string]any{
		"doctorId":    doctorID,
		"patientName": patientName,
		"roomId":      roomID,
	}, nil)
}

// CreateCheckoutSession takes the amount in minor units.
func (c *Client) CreateCheckoutSession(ctx context.Context, email string, amountMinor int64) (*CheckoutSession, error) {
	var out CheckoutSession
	if err := c.do(ctx, http.MethodPost, "/api/stripe/create-checkout-session", map[string]any{"email": email, "amount": amountMinor}, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) CreatePaymentIntent(ctx context.Context, email string, amount decimal.Decimal) (*PaymentIntent, error) {
	var out PaymentIntent
	if err := c.do(ctx, http.MethodPost, "/api/enhanced-wallet/create-payment-intent", map[string]any{"email": email, "amount": amount}, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) do(ctx context.Context, method, path string, in, out any) error {
	var body io.Reader
	if in != nil {
		b, err := json.Marshal(in)
		if err != nil {
			return err
		}
		body = bytes.NewReader(b)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return err
	}
	req.Header.Set("Accept", "application/json")
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	c.mu.RLock()
	if c.walletToken != "" {
		req.Header.Set("Authorization", "Bearer "+c.walletToken)
	}
	c.mu.RUnlock()

	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return err
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return newAPIError(resp.StatusCode, respBody)
	}
	if out == nil || len(respBody) == 0 {
		return nil
	}
	if err := json.Unmarshal(respBody, out); err != nil {
		return fmt.Errorf("decode %s %s: %w", method, path, err)
	}
	return nil
}

func newAPIError(status int, body []byte) *APIError {
	var payload struct {
		Message string `json:"message"`
		Error   string `json:"error"`
	}
	if json.Unmarshal(body, &payload) == nil {
		if payload.Message != "" {
			return &APIError{Status: status, Message: payload.Message}
		}
		if payload.Error != "" {
			return &APIError{Status: status, Message: payload.Error}
		}
	}
	return &APIError{Status: status, Message: fmt.Sprintf("API Error: %d %s", status, http.StatusText(status))}
}

func normalise(w WalletData) *WalletData {
	if w.Transactions == nil {
		w.Transactions = []Transaction{}
	}
	return &w
}
