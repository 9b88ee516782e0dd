package token

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/trusthire/trusthire/internal/domain"
)

// Claims are the session token claims. Role is embedded so the auth
// middleware can gate employer-only routes without a database read.
type Claims struct {
	jwt.RegisteredClaims
	UserID uuid.UUID   `json:"user_id"`
	Role   domain.Role `json:"role"`
}

// Session describes a parsed, valid token.
type Session struct {
	UserID    uuid.UUID
	Role      domain.Role
	JTI       string
	ExpiresAt time.Time
}

// Manager issues and parses HMAC-signed session tokens.
type Manager struct {
	secret []byte
	ttl    time.Duration
}

func NewManager(secret string, ttl time.Duration) *Manager {
	return &Manager{secret: []byte(secret), ttl: ttl}
}

// Issue creates a session token for the given user.
func (m *Manager) Issue(userID uuid.UUID, role domain.Role) (string, error) {
	now := time.Now()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(m.ttl)),
		},
		UserID: userID,
		Role:   role,
	})

	signed, err := token.SignedString(m.secret)
	if err != nil {
		return "", fmt.Errorf("failed to sign token: %w", err)
	}
	return signed, nil
}

// Parse validates a token and returns the session it carries.
func (m *Manager) Parse(tokenString string) (Session, error) {
	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("wrong signing method %v", t.Header["alg"])
		}
		return m.secret, nil
	})
	if err != nil {
		return Session{}, fmt.Errorf("failed to parse token: %w", err)
	}
	if !token.Valid {
		return Session{}, fmt.Errorf("token is invalid")
	}

	var expiresAt time.Time
	if claims.ExpiresAt != nil {
		expiresAt = claims.ExpiresAt.Time
	}

	return Session{
		UserID:    claims.UserID,
		Role:      claims.Role,
		JTI:       claims.ID,
		ExpiresAt: expiresAt,
	}, nil
}
