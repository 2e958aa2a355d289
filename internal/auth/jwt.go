package auth

import (
	"errors"
	"fmt"
	"time"

	"eventhub/internal/models"

	"github.com/golang-jwt/jwt/v5"
)

var ErrInvalidToken = errors.New("invalid or expired token")

// Claims carries the identity payload embedded in issued tokens.
type Claims struct {
	UserID int64  `json:"id"`
	Email  string `json:"email"`
	Role   string `json:"role"`
	jwt.RegisteredClaims
}

// TokenManager issues and verifies HS256 tokens with a shared secret.
type TokenManager struct {
	secret   []byte
	ttl      time.Duration // register/login tokens
	shortTTL time.Duration // OAuth/reset tokens
}

func NewTokenManager(secret string, ttl, shortTTL time.Duration) *TokenManager {
	return &TokenManager{secret: []byte(secret), ttl: ttl, shortTTL: shortTTL}
}

// Issue returns a long-lived token for password-based register/login.
func (m *TokenManager) Issue(user *models.User) (string, error) {
	return m.sign(user, m.ttl)
}

// IssueShort returns a short-lived token for OAuth handshakes and password resets.
func (m *TokenManager) IssueShort(user *models.User) (string, error) {
	return m.sign(user, m.shortTTL)
}

func (m *TokenManager) sign(user *models.User, ttl time.Duration) (string, error) {
	now := time.Now()
	claims := Claims{
		UserID: user.ID,
		Email:  user.Email,
		Role:   user.Role,
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(m.secret)
	if err != nil {
		return "", fmt.Errorf("sign token: %w", err)
	}
	return signed, nil
}

// Parse verifies the signature and expiry and returns the claims.
func (m *TokenManager) Parse(tokenString string) (*Claims, error) {
	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return m.secret, nil
	})
	if err != nil || !token.Valid {
		return nil, ErrInvalidToken
	}
	return claims, nil
}
