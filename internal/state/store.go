package state

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"swimschool/internal/media"
	"swimschool/internal/models"
	"swimschool/internal/repository"
)

var (
	// ErrNoTenant is returned by mutations before a tenant has been loaded
	ErrNoTenant = errors.New("no tenant loaded")
	// ErrNoCurrentUser is returned by mutations that record who acted
	ErrNoCurrentUser = errors.New("no current user")
	// ErrNotFound is returned when a referenced record does not exist in the tenant
	ErrNotFound = errors.New("record not found")
)

// Notifier delivers a notification outside the app
type Notifier interface {
	NotifyUser(ctx context.Context, user models.User, n models.Notification) error
}

// Presigner issues upload URLs for progress media
type Presigner interface {
	PresignUpload(ctx context.Context, key, contentType string) (*media.Upload, error)
}

// Snapshot is the tenant working set. A snapshot is replaced wholesale on
// every refresh and must be treated as read-only.
type Snapshot struct {
	LoadedAt    time.Time
	Tenant      *models.Tenant
	CurrentUser models.Member

	Clients []models.Client
	Staff   []models.Member
	Parents []models.Parent

	Bookings          []models.Booking
	Participants      []models.BookingParticipant
	ServiceTypes      []models.ServiceType
	Resources         []models.Resource
	RecurringPatterns []models.RecurringPattern

	SkillCategories []models.SkillCategory
	Skills          []models.Skill
	Assessments     []models.SkillAssessment

	Goals         []models.Goal
	Badges        []models.Badge
	StudentBadges []models.StudentBadge
	Streaks       []models.AttendanceStreak
	PersonalBests []models.PersonalBest

	Media         []models.ProgressMedia
	Feedback      []models.LessonFeedback
	LessonNotes   []models.LessonNote
	Notifications []models.Notification
	Messages      []models.Message

	Invoices       []models.Invoice
	InvoiceItems   []models.InvoiceItem
	CreditPackages []models.CreditPackage
	ClientCredits  []models.ClientCredit
	Expenses       []models.Expense
	AuditLogs      []models.AuditLog
}

// Client finds a client in the snapshot
func (s *Snapshot) Client(id int64) (models.Client, bool) {
	for _, c := range s.Clients {
		if c.ID == id {
			return c, true
		}
	}
	return models.Client{}, false
}

// Option configures a Store
type Option func(*Store)

// WithNotifier delivers notifications by email
func WithNotifier(n Notifier) Option {
	return func(s *Store) { s.notifier = n }
}

// WithPresigner issues upload URLs for media without one
func WithPresigner(p Presigner) Option {
	return func(s *Store) { s.presigner = p }
}

// WithClock replaces time.Now
func WithClock(now func() time.Time) Option {
	return func(s *Store) { s.now = now }
}

// WithTenantID loads the given tenant instead of the first one
func WithTenantID(id int64) Option {
	return func(s *Store) { s.tenantID = id }
}

// WithLogger replaces slog.Default
func WithLogger(l *slog.Logger) Option {
	return func(s *Store) { s.logger = l }
}

// Store is the application state cache: it holds the tenant working set in
// memory and mediates every write. The mutex only guards the in-memory
// fields; writes are not serialized against each other.
type Store struct {
	repos     *repository.Repositories
	notifier  Notifier
	presigner Presigner
	now       func() time.Time
	logger    *slog.Logger
	tenantID  int64

	mu            sync.RWMutex
	initialized   bool
	tenant        *models.Tenant
	currentUserID int64
	snapshot      *Snapshot
	subscribers   map[int]func(*Snapshot)
	nextSub       int
}

// New creates an uninitialized store
func New(repos *repository.Repositories, opts ...Option) *Store {
	s := &Store{
		repos:       repos,
		now:         time.Now,
		logger:      slog.Default(),
		snapshot:    &Snapshot{},
		subscribers: make(map[int]func(*Snapshot)),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Initialize loads the tenant and its owner and refreshes the working set.
// With no tenant the store is marked initialized with empty state. A tenant
// chosen by WithTenantID must exist. Calling it again re-fetches everything.
func (s *Store) Initialize(ctx context.Context) error {
	tenant, err := s.loadTenant(ctx)
	if err != nil {
		s.logger.Error("failed to load tenant", "error", err)
		s.reset(true)
		return err
	}

	if tenant == nil {
		s.logger.Info("no tenant found, starting empty")
		s.reset(true)
		return nil
	}

	var ownerID int64
	owner, err := s.repos.Users.GetOwner(ctx, tenant.ID)
	if err != nil {
		s.logger.Error("failed to load owner", "tenant_id", tenant.ID, "error", err)
	} else if owner != nil {
		ownerID = owner.ID
	}

	s.mu.Lock()
	s.initialized = true
	s.tenant = tenant
	if s.currentUserID == 0 {
		s.currentUserID = ownerID
	}
	s.mu.Unlock()

	if err := s.RefreshData(ctx); err != nil {
		s.logger.Error("failed to load tenant data", "tenant_id", tenant.ID, "error", err)
		return err
	}
	return nil
}

func (s *Store) loadTenant(ctx context.Context) (*models.Tenant, error) {
	if s.tenantID == 0 {
		return s.repos.Tenants.First(ctx)
	}
	tenant, err := s.repos.Tenants.GetByID(ctx, s.tenantID)
	if err != nil {
		return nil, err
	}
	if tenant == nil {
		return nil, fmt.Errorf("tenant %d: %w", s.tenantID, ErrNotFound)
	}
	return tenant, nil
}

// Initialized reports whether Initialize has completed
func (s *Store) Initialized() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.initialized
}

// Teardown drops the working set and every subscriber
func (s *Store) Teardown() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.initialized = false
	s.tenant = nil
	s.currentUserID = 0
	s.snapshot = &Snapshot{}
	s.subscribers = make(map[int]func(*Snapshot))
}

func (s *Store) reset(initialized bool) {
	s.mu.Lock()
	s.initialized = initialized
	s.tenant = nil
	s.currentUserID = 0
	snap := &Snapshot{LoadedAt: s.now()}
	s.snapshot = snap
	subs := s.subscriberList()
	s.mu.Unlock()

	for _, fn := range subs {
		fn(snap)
	}
}

// Snapshot returns the current working set
func (s *Store) Snapshot() *Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.snapshot
}

// Subscribe registers fn to receive every new snapshot. The returned func unsubscribes.
func (s *Store) Subscribe(fn func(*Snapshot)) func() {
	s.mu.Lock()
	id := s.nextSub
	s.nextSub++
	s.subscribers[id] = fn
	s.mu.Unlock()

	return func() {
		s.mu.Lock()
		delete(s.subscribers, id)
		s.mu.Unlock()
	}
}

// subscriberList must be called with mu held
func (s *Store) subscriberList() []func(*Snapshot) {
	subs := make([]func(*Snapshot), 0, len(s.subscribers))
	for _, fn := range s.subscribers {
		subs = append(subs, fn)
	}
	return subs
}

// SetCurrentUser makes userID the acting user for later mutations
func (s *Store) SetCurrentUser(ctx context.Context, userID int64) error {
	tenant, err := s.requireTenant()
	if err != nil {
		return err
	}

	user, err := s.repos.Users.GetByID(ctx, userID)
	if err != nil {
		return err
	}
	if user == nil || user.TenantID != tenant.ID {
		return fmt.Errorf("user %d: %w", userID, ErrNotFound)
	}

	s.mu.Lock()
	s.currentUserID = userID
	s.mu.Unlock()

	return s.RefreshData(ctx)
}

// Tenant returns the loaded tenant, or nil
func (s *Store) Tenant() *models.Tenant {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.tenant
}

func (s *Store) requireTenant() (*models.Tenant, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.tenant == nil {
		return nil, ErrNoTenant
	}
	return s.tenant, nil
}

// requireActor returns the tenant and the acting user's ID
func (s *Store) requireActor() (*models.Tenant, int64, error) {
	tenant, err := s.requireTenant()
	if err != nil {
		return nil, 0, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.currentUserID == 0 {
		return nil, 0, ErrNoCurrentUser
	}
	return tenant, s.currentUserID, nil
}

func (s *Store) actorID() *int64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.currentUserID == 0 {
		return nil
	}
	id := s.currentUserID
	return &id
}

// audit records a mutation. A failure is logged, never returned.
func (s *Store) audit(ctx context.Context, tenantID int64, action, entityType string, entityID int64, details string) {
	entry := &models.AuditLog{
		TenantID:   tenantID,
		UserID:     s.actorID(),
		Action:     action,
		EntityType: entityType,
		EntityID:   entityID,
		Details:    details,
		CreatedAt:  s.now(),
	}
	if err := s.repos.AuditLogs.Create(ctx, entry); err != nil {
		s.logger.Warn("failed to write audit log", "entity_type", entityType, "entity_id", entityID, "error", err)
	}
}
