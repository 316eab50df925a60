package auth

import (
	"testing"
	"time"

	"healthoasis/config"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testJWTConfig() *config.JWTConfig {
	return &config.JWTConfig{
		WalletSecret: "wallet-secret",
		DoctorSecret: "doctor-secret",
		WalletExpiry: time.Hour,
		DoctorExpiry: time.Hour,
		Issuer:       "healthoasis-test",
	}
}

func TestWalletTokenRoundTrip(t *testing.T) {
	cfg := testJWTConfig()
	tok, err := GenerateWalletToken(cfg, "a@b.com")
	require.NoError(t, err)

	claims, err := ParseWalletToken(cfg, tok)
	require.NoError(t, err)
	assert.Equal(t, "a@b.com", claims.Email)
	assert.Equal(t, ScopeWallet, claims.Scope)
}

func TestDoctorTokenRejectedAsWalletToken(t *testing.T) {
	cfg := testJWTConfig()
	cfg.DoctorSecret = cfg.WalletSecret
	tok, err := GenerateDoctorToken(cfg, 7, "doc@healthoasis.local")
	require.NoError(t, err)

	_, err = ParseWalletToken(cfg, tok)
	assert.ErrorIs(t, err, ErrInvalidToken)

	claims, err := ParseDoctorToken(cfg, tok)
	require.NoError(t, err)
	assert.Equal(t, uint(7), claims.DoctorID)
}

func TestExpiredToken(t *testing.T) {
	cfg := testJWTConfig()
	cfg.WalletExpiry = -time.Minute
	tok, err := GenerateWalletToken(cfg, "a@b.com")
	require.NoError(t, err)

	_, err = ParseWalletToken(cfg, tok)
	assert.ErrorIs(t, err, ErrInvalidToken)
}
