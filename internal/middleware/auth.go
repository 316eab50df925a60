package middleware

import (
	"net/http"
	"strconv"
	"strings"

	"healthoasis/config"
	"healthoasis/internal/auth"

	"github.com/gin-gonic/gin"
)

const (
	ctxWalletEmail = "wallet_email"
	ctxDoctorID    = "doctor_id"
)

func bearer(c *gin.Context) (string, bool) {
	header := c.GetHeader("Authorization")
	if header == "" {
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "missing authorization header"})
		return "", false
	}
	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || parts[0] != "Bearer" {
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid authorization format"})
		return "", false
	}
	return parts[1], true
}

// WalletAuth validates a wallet token and stores its email in the context.
func WalletAuth(cfg *config.JWTConfig) gin.HandlerFunc {
	return func(c *gin.Context) {
		tok, ok := bearer(c)
		if !ok {
			return
		}
		claims, err := auth.ParseWalletToken(cfg, tok)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid or expired token"})
			return
		}
		c.Set(ctxWalletEmail, claims.Email)
		c.Next()
	}
}

// DoctorAuth validates a doctor token.
func DoctorAuth(cfg *config.JWTConfig) gin.HandlerFunc {
	return func(c *gin.Context) {
		tok, ok := bearer(c)
		if !ok {
			return
		}
		claims, err := auth.ParseDoctorToken(cfg, tok)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid or expired token"})
			return
		}
		c.Set(ctxDoctorID, claims.DoctorID)
		c.Next()
	}
}

// SameDoctor rejects requests whose :id path param is not the token's doctor.
func SameDoctor() gin.HandlerFunc {
	return func(c *gin.Context) {
		id, err := strconv.ParseUint(c.Param("id"), 10, 64)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "invalid doctor id"})
			return
		}
		if uint(id) != GetDoctorID(c) {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "forbidden"})
			return
		}
		c.Next()
	}
}

func GetWalletEmail(c *gin.Context) string {
	return c.GetString(ctxWalletEmail)
}

func GetDoctorID(c *gin.Context) uint {
	v, _ := c.Get(ctxDoctorID)
	id, _ := v.(uint)
	return id
}
