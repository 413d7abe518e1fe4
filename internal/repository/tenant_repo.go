package repository

import (
	"context"
	"fmt"

	"swimschool/internal/database"
	"swimschool/internal/models"
)

const tenantColumns = "id, name, primary_color, secondary_color, timezone, currency, coaching_type, created_at, updated_at"

// TenantRepository handles database operations for tenants
type TenantRepository struct {
	db database.DBTX
}

// NewTenantRepository creates a new tenant repository
func NewTenantRepository(db database.DBTX) *TenantRepository {
	return &TenantRepository{db: db}
}

// Create inserts a tenant and sets its ID
func (r *TenantRepository) Create(ctx context.Context, t *models.Tenant) error {
	query := `INSERT INTO tenants (name, primary_color, secondary_color, timezone, currency, coaching_type, created_at, updated_at)
		VALUES (:name, :primary_color, :secondary_color, :timezone, :currency, :coaching_type, :created_at, :updated_at)`
	id, err := r.db.NamedInsert(ctx, query, t)
	if err != nil {
		return fmt.Errorf("failed to create tenant: %w", err)
	}
	t.ID = id
	return nil
}

// GetByID retrieves a tenant by ID
func (r *TenantRepository) GetByID(ctx context.Context, id int64) (*models.Tenant, error) {
	t, err := getOne[models.Tenant](ctx, r.db, "SELECT "+tenantColumns+" FROM tenants WHERE id = ?", id)
	if err != nil {
		return nil, fmt.Errorf("failed to get tenant: %w", err)
	}
	return t, nil
}

// First returns the oldest tenant, or nil when none exists
func (r *TenantRepository) First(ctx context.Context) (*models.Tenant, error) {
	t, err := getOne[models.Tenant](ctx, r.db, "SELECT "+tenantColumns+" FROM tenants ORDER BY id LIMIT 1")
	if err != nil {
		return nil, fmt.Errorf("failed to get first tenant: %w", err)
	}
	return t, nil
}

// Update saves branding and locale fields
func (r *TenantRepository) Update(ctx context.Context, t *models.Tenant) error {
	query := `UPDATE tenants SET name = :name, primary_color = :primary_color, secondary_color = :secondary_color,
		timezone = :timezone, currency = :currency, coaching_type = :coaching_type, updated_at = :updated_at
		WHERE id = :id`
	result, err := r.db.NamedExec(ctx, query, t)
	if err != nil {
		return fmt.Errorf("failed to update tenant: %w", err)
	}
	if err := affected(result); err != nil {
		return fmt.Errorf("failed to update tenant %d: %w", t.ID, err)
	}
	return nil
}
