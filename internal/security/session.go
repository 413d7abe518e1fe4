package security

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"swimschool/internal/models"
)

// ErrInvalidToken is returned for any token that fails parsing or verification
var ErrInvalidToken = errors.New("invalid session token")

// SessionClaims identify a signed-in demo user
type SessionClaims struct {
	jwt.RegisteredClaims
	TenantID int64       `json:"tid"`
	UserID   int64       `json:"uid"`
	Role     models.Role `json:"role"`
}

// SessionManager signs and verifies session tokens
type SessionManager struct {
	secret   []byte
	duration time.Duration
	now      func() time.Time
}

// NewSessionManager creates a session manager signing with secret
func NewSessionManager(secret string, duration time.Duration) *SessionManager {
	return &SessionManager{secret: []byte(secret), duration: duration, now: time.Now}
}

// GenerateSessionID creates a new UUID for session identification
func GenerateSessionID() string {
	return uuid.New().String()
}

// Issue signs a token for user
func (m *SessionManager) Issue(user models.User) (string, *SessionClaims, error) {
	now := m.now()
	claims := &SessionClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        GenerateSessionID(),
			Subject:   fmt.Sprintf("%d", user.ID),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(m.duration)),
		},
		TenantID: user.TenantID,
		UserID:   user.ID,
		Role:     user.Role,
	}

	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(m.secret)
	if err != nil {
		return "", nil, fmt.Errorf("failed to sign session token: %w", err)
	}
	return token, claims, nil
}

// Validate parses token and checks its signature and expiry
func (m *SessionManager) Validate(token string) (*SessionClaims, error) {
	parser := jwt.NewParser(jwt.WithValidMethods([]string{"HS256"}), jwt.WithTimeFunc(m.now))
	claims := &SessionClaims{}

	parsed, err := parser.ParseWithClaims(token, claims, func(*jwt.Token) (interface{}, error) {
		return m.secret, nil
	})
	if err != nil || !parsed.Valid {
		return nil, ErrInvalidToken
	}
	return claims, nil
}
