package auth

import (
	"errors"
	"strconv"
	"time"

	"healthoasis/config"

	"github.com/golang-jwt/jwt/v5"
)

const (
	ScopeWallet = "wallet"
	ScopeDoctor = "doctor"
)

type Claims struct {
	DoctorID uint   `json:"doctor_id,omitempty"`
	Email    string `json:"email"`
	Scope    string `json:"scope"`
	jwt.RegisteredClaims
}

var ErrInvalidToken = errors.New("invalid token")

// GenerateWalletToken issues a token scoped to a single wallet email.
func GenerateWalletToken(cfg *config.JWTConfig, email string) (string, error) {
	return sign(cfg.WalletSecret, Claims{
		Email:            email,
		Scope:            ScopeWallet,
		RegisteredClaims: registered(cfg, email, cfg.WalletExpiry),
	})
}

func GenerateDoctorToken(cfg *config.JWTConfig, doctorID uint, email string) (string, error) {
	return sign(cfg.DoctorSecret, Claims{
		DoctorID:         doctorID,
		Email:            email,
		Scope:            ScopeDoctor,
		RegisteredClaims: registered(cfg, strconv.FormatUint(uint64(doctorID), 10), cfg.DoctorExpiry),
	})
}

func ParseWalletToken(cfg *config.JWTConfig, tokenString string) (*Claims, error) {
	return parse(cfg.WalletSecret, ScopeWallet, tokenString)
}

func ParseDoctorToken(cfg *config.JWTConfig, tokenString string) (*Claims, error) {
	return parse(cfg.DoctorSecret, ScopeDoctor, tokenString)
}

func registered(cfg *config.JWTConfig, subject string, ttl time.Duration) jwt.RegisteredClaims {
	now := time.Now()
	return jwt.RegisteredClaims{
		Subject:   subject,
		ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		IssuedAt:  jwt.NewNumericDate(now),
		Issuer:    cfg.Issuer,
	}
}

func sign(secret string, claims Claims) (string, error) {
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(secret))
}

func parse(secret, scope, tokenString string) (*Claims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(t *jwt.Token) (interface{}, error) {
		return []byte(secret), nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil {
		return nil, ErrInvalidToken
	}
	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid || claims.Scope != scope {
		return nil, ErrInvalidToken
	}
	return claims, nil
}
