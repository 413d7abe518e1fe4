package service

import (
	"context"
	"crypto/subtle"
	"errors"
	"fmt"
	"strings"

	"swimschool/internal/config"
	"swimschool/internal/models"
	"swimschool/internal/repository"
	"swimschool/internal/security"
	"swimschool/internal/state"
	"swimschool/internal/validation"
)

var (
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrStudentNotFound    = errors.New("student not found")
)

// Session is the result of a successful demo login
type Session struct {
	Token  string
	Claims *security.SessionClaims
	User   models.Member
}

// AuthService handles the demo logins. The coach logs in with one configured
// email/password pair and every student shares one password, so this is not
// a security boundary.
type AuthService struct {
	store           *state.Store
	userRepo        *repository.UserRepository
	sessions        *security.SessionManager
	coachEmail      string
	coachHash       string
	studentPassword string
}

// NewAuthService creates a new auth service. The coach password is hashed
// once here so logins compare against a bcrypt hash.
func NewAuthService(store *state.Store, userRepo *repository.UserRepository, sessions *security.SessionManager, cfg *config.Config) (*AuthService, error) {
	hash, err := security.HashPassword(cfg.CoachPassword)
	if err != nil {
		return nil, fmt.Errorf("failed to hash coach password: %w", err)
	}

	return &AuthService{
		store:           store,
		userRepo:        userRepo,
		sessions:        sessions,
		coachEmail:      cfg.CoachEmail,
		coachHash:       hash,
		studentPassword: cfg.StudentPassword,
	}, nil
}

// CoachLogin checks the coach credentials and signs in as the tenant owner
func (s *AuthService) CoachLogin(ctx context.Context, email, password string) (*Session, error) {
	if err := validation.ValidateEmail(email); err != nil {
		return nil, err
	}

	if !strings.EqualFold(strings.TrimSpace(email), s.coachEmail) || !security.CheckPassword(password, s.coachHash) {
		return nil, ErrInvalidCredentials
	}

	tenant := s.store.Tenant()
	if tenant == nil {
		return nil, state.ErrNoTenant
	}

	owner, err := s.userRepo.GetOwner(ctx, tenant.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to get owner: %w", err)
	}
	if owner == nil {
		return nil, fmt.Errorf("tenant %d has no owner: %w", tenant.ID, ErrInvalidCredentials)
	}

	return s.signIn(ctx, owner)
}

// StudentLogin signs in as a client of the tenant using the shared student password
func (s *AuthService) StudentLogin(ctx context.Context, studentID int64, password string) (*Session, error) {
	tenant := s.store.Tenant()
	if tenant == nil {
		return nil, state.ErrNoTenant
	}

	user, err := s.userRepo.GetByID(ctx, studentID)
	if err != nil {
		return nil, fmt.Errorf("failed to get student: %w", err)
	}
	if user == nil || user.TenantID != tenant.ID || user.Role != models.RoleClient {
		return nil, ErrStudentNotFound
	}

	if subtle.ConstantTimeCompare([]byte(password), []byte(s.studentPassword)) != 1 {
		return nil, ErrInvalidCredentials
	}

	return s.signIn(ctx, user)
}

// ValidateToken checks a session token and returns its claims
func (s *AuthService) ValidateToken(token string) (*security.SessionClaims, error) {
	return s.sessions.Validate(token)
}

func (s *AuthService) signIn(ctx context.Context, user *models.User) (*Session, error) {
	member, err := user.Member()
	if err != nil {
		return nil, err
	}

	if err := s.store.SetCurrentUser(ctx, user.ID); err != nil {
		return nil, fmt.Errorf("failed to set current user: %w", err)
	}

	token, claims, err := s.sessions.Issue(*user)
	if err != nil {
		return nil, err
	}

	return &Session{Token: token, Claims: claims, User: member}, nil
}
