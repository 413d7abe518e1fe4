package repository

import (
	"context"
	"fmt"

	"swimschool/internal/database"
	"swimschool/internal/models"
)

const serviceTypeColumns = `id, tenant_id, name, description, duration_minutes, price, min_participants,
	max_participants, color, active, created_at, updated_at`

// ServiceTypeRepository handles database operations for lesson products
type ServiceTypeRepository struct {
	db database.DBTX
}

// NewServiceTypeRepository creates a new service type repository
func NewServiceTypeRepository(db database.DBTX) *ServiceTypeRepository {
	return &ServiceTypeRepository{db: db}
}

// Create inserts a new service type
func (r *ServiceTypeRepository) Create(ctx context.Context, s *models.ServiceType) error {
	query := `INSERT INTO service_types (tenant_id, name, description, duration_minutes, price, min_participants,
		max_participants, color, active, created_at, updated_at)
		VALUES (:tenant_id, :name, :description, :duration_minutes, :price, :min_participants,
		:max_participants, :color, :active, :created_at, :updated_at)`
	id, err := r.db.NamedInsert(ctx, query, s)
	if err != nil {
		return fmt.Errorf("failed to create service type: %w", err)
	}
	s.ID = id
	return nil
}

// GetByID returns a service type by ID, or nil
func (r *ServiceTypeRepository) GetByID(ctx context.Context, id int64) (*models.ServiceType, error) {
	s, err := getOne[models.ServiceType](ctx, r.db, "SELECT "+serviceTypeColumns+" FROM service_types WHERE id = ?", id)
	if err != nil {
		return nil, fmt.Errorf("failed to get service type: %w", err)
	}
	return s, nil
}

// ListByTenant returns a tenant's service types
func (r *ServiceTypeRepository) ListByTenant(ctx context.Context, tenantID int64) ([]models.ServiceType, error) {
	query := "SELECT " + serviceTypeColumns + " FROM service_types WHERE tenant_id = ? ORDER BY id"
	rows, err := selectAll[models.ServiceType](ctx, r.db, query, tenantID)
	if err != nil {
		return nil, fmt.Errorf("failed to list service types: %w", err)
	}
	return rows, nil
}

// Update saves the editable fields of a service type
func (r *ServiceTypeRepository) Update(ctx context.Context, s *models.ServiceType) error {
	query := `UPDATE service_types SET name = :name, description = :description, duration_minutes = :duration_minutes,
		price = :price, min_participants = :min_participants, max_participants = :max_participants,
		color = :color, active = :active, updated_at = :updated_at
		WHERE id = :id AND tenant_id = :tenant_id`
	result, err := r.db.NamedExec(ctx, query, s)
	if err != nil {
		return fmt.Errorf("failed to update service type: %w", err)
	}
	if err := affected(result); err != nil {
		return fmt.Errorf("failed to update service type %d: %w", s.ID, err)
	}
	return nil
}

// ResourceRepository handles database operations for pools and lanes
type ResourceRepository struct {
	db database.DBTX
}

// NewResourceRepository creates a new resource repository
func NewResourceRepository(db database.DBTX) *ResourceRepository {
	return &ResourceRepository{db: db}
}

// Create inserts a new pool or lane
func (r *ResourceRepository) Create(ctx context.Context, res *models.Resource) error {
	query := `INSERT INTO resources (tenant_id, name, kind, capacity, created_at)
		VALUES (:tenant_id, :name, :kind, :capacity, :created_at)`
	id, err := r.db.NamedInsert(ctx, query, res)
	if err != nil {
		return fmt.Errorf("failed to create resource: %w", err)
	}
	res.ID = id
	return nil
}

// ListByTenant returns a tenant's resources
func (r *ResourceRepository) ListByTenant(ctx context.Context, tenantID int64) ([]models.Resource, error) {
	query := "SELECT id, tenant_id, name, kind, capacity, created_at FROM resources WHERE tenant_id = ? ORDER BY id"
	rows, err := selectAll[models.Resource](ctx, r.db, query, tenantID)
	if err != nil {
		return nil, fmt.Errorf("failed to list resources: %w", err)
	}
	return rows, nil
}

const recurringColumns = `id, tenant_id, service_type_id, instructor_id, client_id, day_of_week, start_clock,
	duration_minutes, start_date, end_date, active, created_at`

// RecurringPatternRepository handles database operations for weekly lesson slots
type RecurringPatternRepository struct {
	db database.DBTX
}

// NewRecurringPatternRepository creates a new recurring pattern repository
func NewRecurringPatternRepository(db database.DBTX) *RecurringPatternRepository {
	return &RecurringPatternRepository{db: db}
}

// Create inserts a new weekly lesson slot
func (r *RecurringPatternRepository) Create(ctx context.Context, p *models.RecurringPattern) error {
	query := `INSERT INTO recurring_patterns (tenant_id, service_type_id, instructor_id, client_id, day_of_week,
		start_clock, duration_minutes, start_date, end_date, active, created_at)
		VALUES (:tenant_id, :service_type_id, :instructor_id, :client_id, :day_of_week,
		:start_clock, :duration_minutes, :start_date, :end_date, :active, :created_at)`
	id, err := r.db.NamedInsert(ctx, query, p)
	if err != nil {
		return fmt.Errorf("failed to create recurring pattern: %w", err)
	}
	p.ID = id
	return nil
}

// ListByTenant returns a tenant's recurring patterns
func (r *RecurringPatternRepository) ListByTenant(ctx context.Context, tenantID int64) ([]models.RecurringPattern, error) {
	query := "SELECT " + recurringColumns + " FROM recurring_patterns WHERE tenant_id = ? ORDER BY id"
	rows, err := selectAll[models.RecurringPattern](ctx, r.db, query, tenantID)
	if err != nil {
		return nil, fmt.Errorf("failed to list recurring patterns: %w", err)
	}
	return rows, nil
}
