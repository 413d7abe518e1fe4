package repository

import (
	"context"
	"fmt"
	"strings"

	"swimschool/internal/database"
	"swimschool/internal/models"
)

const userColumns = `id, tenant_id, role, first_name, last_name, email, phone, status, password_hash,
	notify_email, notify_sms, emergency_contact_name, emergency_contact_phone, emergency_contact_relation,
	date_of_birth, swim_level, parent_id, notes, created_at, updated_at`

// UserRepository handles database operations for every person record
type UserRepository struct {
	db database.DBTX
}

// NewUserRepository creates a new user repository
func NewUserRepository(db database.DBTX) *UserRepository {
	return &UserRepository{db: db}
}

// Create inserts a user and sets its ID
func (r *UserRepository) Create(ctx context.Context, u *models.User) error {
	query := `INSERT INTO users (tenant_id, role, first_name, last_name, email, phone, status, password_hash,
		notify_email, notify_sms, emergency_contact_name, emergency_contact_phone, emergency_contact_relation,
		date_of_birth, swim_level, parent_id, notes, created_at, updated_at)
		VALUES (:tenant_id, :role, :first_name, :last_name, :email, :phone, :status, :password_hash,
		:notify_email, :notify_sms, :emergency_contact_name, :emergency_contact_phone, :emergency_contact_relation,
		:date_of_birth, :swim_level, :parent_id, :notes, :created_at, :updated_at)`
	id, err := r.db.NamedInsert(ctx, query, u)
	if err != nil {
		return fmt.Errorf("failed to create user: %w", err)
	}
	u.ID = id
	return nil
}

// GetByID retrieves a user by ID
func (r *UserRepository) GetByID(ctx context.Context, id int64) (*models.User, error) {
	u, err := getOne[models.User](ctx, r.db, "SELECT "+userColumns+" FROM users WHERE id = ?", id)
	if err != nil {
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	return u, nil
}

// GetByEmail retrieves a tenant user by email, case-insensitively
func (r *UserRepository) GetByEmail(ctx context.Context, tenantID int64, email string) (*models.User, error) {
	query := "SELECT " + userColumns + " FROM users WHERE tenant_id = ? AND LOWER(email) = ? ORDER BY id LIMIT 1"
	u, err := getOne[models.User](ctx, r.db, query, tenantID, strings.ToLower(email))
	if err != nil {
		return nil, fmt.Errorf("failed to get user by email: %w", err)
	}
	return u, nil
}

// GetOwner returns the first owner of a tenant
func (r *UserRepository) GetOwner(ctx context.Context, tenantID int64) (*models.User, error) {
	query := "SELECT " + userColumns + " FROM users WHERE tenant_id = ? AND role = ? ORDER BY id LIMIT 1"
	u, err := getOne[models.User](ctx, r.db, query, tenantID, models.RoleOwner)
	if err != nil {
		return nil, fmt.Errorf("failed to get owner: %w", err)
	}
	return u, nil
}

// ListByTenant returns every user of a tenant
func (r *UserRepository) ListByTenant(ctx context.Context, tenantID int64) ([]models.User, error) {
	users, err := selectAll[models.User](ctx, r.db, "SELECT "+userColumns+" FROM users WHERE tenant_id = ? ORDER BY id", tenantID)
	if err != nil {
		return nil, fmt.Errorf("failed to list users: %w", err)
	}
	return users, nil
}

// ListByRole returns the tenant's users holding any of roles
func (r *UserRepository) ListByRole(ctx context.Context, tenantID int64, roles ...models.Role) ([]models.User, error) {
	if len(roles) == 0 {
		return []models.User{}, nil
	}
	placeholders := strings.TrimSuffix(strings.Repeat("?, ", len(roles)), ", ")
	query := "SELECT " + userColumns + " FROM users WHERE tenant_id = ? AND role IN (" + placeholders + ") ORDER BY id"

	args := make([]interface{}, 0, len(roles)+1)
	args = append(args, tenantID)
	for _, role := range roles {
		args = append(args, role)
	}

	users, err := selectAll[models.User](ctx, r.db, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list users by role: %w", err)
	}
	return users, nil
}

// Update saves every mutable column of a user
func (r *UserRepository) Update(ctx context.Context, u *models.User) error {
	query := `UPDATE users SET first_name = :first_name, last_name = :last_name, email = :email, phone = :phone,
		status = :status, notify_email = :notify_email, notify_sms = :notify_sms,
		emergency_contact_name = :emergency_contact_name, emergency_contact_phone = :emergency_contact_phone,
		emergency_contact_relation = :emergency_contact_relation, date_of_birth = :date_of_birth,
		swim_level = :swim_level, parent_id = :parent_id, notes = :notes, updated_at = :updated_at
		WHERE id = :id AND tenant_id = :tenant_id`
	result, err := r.db.NamedExec(ctx, query, u)
	if err != nil {
		return fmt.Errorf("failed to update user: %w", err)
	}
	if err := affected(result); err != nil {
		return fmt.Errorf("failed to update user %d: %w", u.ID, err)
	}
	return nil
}

// Delete removes a user outright. Rows referencing it are left in place.
func (r *UserRepository) Delete(ctx context.Context, tenantID, id int64) error {
	result, err := r.db.Exec(ctx, "DELETE FROM users WHERE id = ? AND tenant_id = ?", id, tenantID)
	if err != nil {
		return fmt.Errorf("failed to delete user: %w", err)
	}
	if err := affected(result); err != nil {
		return fmt.Errorf("failed to delete user %d: %w", id, err)
	}
	return nil
}
