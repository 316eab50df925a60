package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
)

// DefaultAPIBaseURL is the only fallback host for the portal client.
const DefaultAPIBaseURL = "http://localhost:3000"

type Config struct {
	Server     ServerConfig
	Database   DatabaseConfig
	Redis      RedisConfig
	JWT        JWTConfig
	Cloudinary CloudinaryConfig
	Firebase   FirebaseConfig
	SMTP       SMTPConfig
	Stripe     StripeConfig
	Payment    PaymentConfig
	Portal     PortalConfig
}

type ServerConfig struct {
	Port         string
	Env          string
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
	// PublicURL is used to build links sent to doctors (video call invites).
	PublicURL      string
	AllowedOrigins []string
}

type DatabaseConfig struct {
	DSN             string
	MaxIdleConns    int
	MaxOpenConns    int
	ConnMaxLifetime time.Duration
}

type RedisConfig struct {
	Addr     string
	Password string
	DB       int
	TTL      time.Duration
}

type JWTConfig struct {
	WalletSecret string
	DoctorSecret string
	WalletExpiry time.Duration
	DoctorExpiry time.Duration
	Issuer       string
}

type CloudinaryConfig struct {
	CloudName string
	APIKey    string
	APISecret string
}

type FirebaseConfig struct {
	ServiceAccountPath string
}

type SMTPConfig struct {
	Host     string
	Port     int
	Username string
	Password string
	From     string
}

type StripeConfig struct {
	SecretKey      string
	PublishableKey string
	Currency       string
	SuccessURL     string
	CancelURL      string
	WebhookSecret  string
}

type PaymentConfig struct {
	WebhookSecret string
}

// PortalConfig is consumed by the portal client and the wallet store.
type PortalConfig struct {
	APIBaseURL    string
	SocketURL     string
	SessionFile   string
	WithdrawDelay time.Duration
}

func (c *Config) IsProduction() bool {
	return c.Server.Env == "production"
}

// Load resolves configuration once. Values come from the environment, seeded
// from a .env file when one is present. Defaults are development-only.
func Load() *Config {
	if err := godotenv.Load(); err != nil {
		logrus.WithError(err).Debug("no .env file loaded")
	}

	apiBase := strings.TrimRight(getString("HEALTHOASIS_API_URL", DefaultAPIBaseURL), "/")

	return &Config{
		Server: ServerConfig{
			Port:           getString("PORT", "3000"),
			Env:            getString("APP_ENV", "development"),
			ReadTimeout:    getDuration("SERVER_READ_TIMEOUT", 10*time.Second),
			WriteTimeout:   getDuration("SERVER_WRITE_TIMEOUT", 10*time.Second),
			PublicURL:      strings.TrimRight(getString("PUBLIC_URL", "http://localhost:5173"), "/"),
			AllowedOrigins: getList("CORS_ORIGINS", []string{"*"}),
		},
		Database: DatabaseConfig{
			DSN:             getString("DB_DSN", "healthoasis:healthoasis@tcp(localhost:3306)/healthoasis?charset=utf8mb4&parseTime=True&loc=Local"),
			MaxIdleConns:    getInt("DB_MAX_IDLE_CONNS", 10),
			MaxOpenConns:    getInt("DB_MAX_OPEN_CONNS", 100),
			ConnMaxLifetime: getDuration("DB_CONN_MAX_LIFETIME", time.Hour),
		},
		Redis: RedisConfig{
			Addr:     getString("REDIS_ADDR", "localhost:6379"),
			Password: getString("REDIS_PASS", ""),
			DB:       getInt("REDIS_DB", 0),
			TTL:      getDuration("CATALOG_CACHE_TTL", 5*time.Minute),
		},
		JWT: JWTConfig{
			WalletSecret: getString("JWT_WALLET_SECRET", "change-me-wallet"),
			DoctorSecret: getString("JWT_DOCTOR_SECRET", "change-me-doctor"),
			WalletExpiry: getDuration("JWT_WALLET_EXPIRY", 24*time.Hour),
			DoctorExpiry: getDuration("JWT_DOCTOR_EXPIRY", 12*time.Hour),
			Issuer:       "healthoasis",
		},
		Cloudinary: CloudinaryConfig{
			CloudName: getString("CLOUDINARY_CLOUD_NAME", ""),
			APIKey:    getString("CLOUDINARY_API_KEY", ""),
			APISecret: getString("CLOUDINARY_API_SECRET", ""),
		},
		Firebase: FirebaseConfig{
			ServiceAccountPath: getString("FIREBASE_SERVICE_ACCOUNT_PATH", ""),
		},
		SMTP: SMTPConfig{
			Host:     getString("SMTP_HOST", ""),
			Port:     getInt("SMTP_PORT", 25),
			Username: getString("SMTP_USERNAME", ""),
			Password: getString("SMTP_PASSWORD", ""),
			From:     getString("SMTP_FROM", "HealthOasis <no-reply@healthoasis.local>"),
		},
		Stripe: StripeConfig{
			SecretKey:      getString("STRIPE_SECRET_KEY", ""),
			PublishableKey: getString("STRIPE_PUBLISHABLE_KEY", ""),
			Currency:       strings.ToLower(getString("STRIPE_CURRENCY", "inr")),
			SuccessURL:     getString("STRIPE_SUCCESS_URL", "http://localhost:5173/wallet?payment=success"),
			CancelURL:      getString("STRIPE_CANCEL_URL", "http://localhost:5173/wallet?payment=cancelled"),
			WebhookSecret:  getString("STRIPE_WEBHOOK_SECRET", ""),
		},
		Payment: PaymentConfig{
			WebhookSecret: getString("PAYMENT_WEBHOOK_SECRET", ""),
		},
		Portal: PortalConfig{
			APIBaseURL:    apiBase,
			SocketURL:     strings.TrimRight(getString("HEALTHOASIS_SOCKET_URL", apiBase), "/"),
			SessionFile:   getString("HEALTHOASIS_SESSION_FILE", ""),
			WithdrawDelay: getDuration("HEALTHOASIS_WITHDRAW_DELAY", time.Second),
		},
	}
}

func getString(key, fallback string) string {
	if v, ok := os.LookupEnv(key); ok && strings.TrimSpace(v) != "" {
		return strings.TrimSpace(v)
	}
	return fallback
}

func getList(key string, fallback []string) []string {
	v := getString(key, "")
	if v == "" {
		return fallback
	}
	var out []string
	for _, p := range strings.Split(v, ",") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

func getInt(key string, fallback int) int {
	v := getString(key, "")
	if v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		logrus.WithFields(logrus.Fields{"key": key, "value": v}).Warn("invalid integer in environment, using default")
		return fallback
	}
	return n
}

func getDuration(key string, fallback time.Duration) time.Duration {
	v := getString(key, "")
	if v == "" {
		return fallback
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		logrus.WithFields(logrus.Fields{"key": key, "value": v}).Warn("invalid duration in environment, using default")
		return fallback
	}
	return d
}
