package auth

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// The core never authenticates: a session token only carries a stable
// guest identity across reconnects, so two visits can present the same
// display name. Connections without a token are served just as well.

// Claims represents the guest session claims.
type Claims struct {
	GuestID string `json:"guest_id"`
	jwt.RegisteredClaims
}

// SessionConfig holds session token configuration.
type SessionConfig struct {
	Secret []byte
	Issuer string
	TTL    time.Duration
}

// NewSessionConfig builds a session config, generating a random secret
// when none is configured. A generated secret does not survive a
// restart, which matches the ephemeral state model of the server.
func NewSessionConfig(secret, issuer string, ttl time.Duration) *SessionConfig {
	if secret == "" {
		buf := make([]byte, 32)
		_, _ = rand.Read(buf)
		secret = hex.EncodeToString(buf)
	}
	return &SessionConfig{
		Secret: []byte(secret),
		Issuer: issuer,
		TTL:    ttl,
	}
}

// MintGuestToken issues a token for a fresh anonymous guest identity.
func MintGuestToken(cfg *SessionConfig) (token, guestID string, err error) {
	guestID = "guest-" + uuid.NewString()[:8]

	now := time.Now()
	claims := Claims{
		GuestID: guestID,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    cfg.Issuer,
			Subject:   guestID,
			ExpiresAt: jwt.NewNumericDate(now.Add(cfg.TTL)),
			IssuedAt:  jwt.NewNumericDate(now),
		},
	}

	token, err = jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(cfg.Secret)
	if err != nil {
		return "", "", fmt.Errorf("sign token: %w", err)
	}
	return token, guestID, nil
}

// ValidateToken parses and validates a session token.
func ValidateToken(cfg *SessionConfig, tokenString string) (*Claims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return cfg.Secret, nil
	})
	if err != nil {
		return nil, fmt.Errorf("parse token: %w", err)
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid {
		return nil, fmt.Errorf("invalid token claims")
	}
	if cfg.Issuer != "" && claims.Issuer != cfg.Issuer {
		return nil, fmt.Errorf("invalid issuer")
	}
	if claims.GuestID == "" {
		return nil, fmt.Errorf("missing guest id")
	}

	return claims, nil
}
