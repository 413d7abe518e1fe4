package state

import (
	"context"
	"fmt"

	"swimschool/internal/models"
	"swimschool/internal/validation"
)

// AddClient creates a client in the current tenant and returns its ID
func (s *Store) AddClient(ctx context.Context, c models.Client) (int64, error) {
	tenant, err := s.requireTenant()
	if err != nil {
		return 0, err
	}
	if err := validation.Struct(c); err != nil {
		return 0, err
	}

	now := s.now()
	c.TenantID = tenant.ID
	c.CreatedAt = now
	c.UpdatedAt = now
	if c.Status == "" {
		c.Status = models.ClientActive
	}

	u := c.User()
	if err := s.repos.Users.Create(ctx, &u); err != nil {
		return 0, err
	}

	s.audit(ctx, tenant.ID, models.AuditCreate, "client", u.ID, c.FullName())
	return u.ID, s.RefreshData(ctx)
}

// UpdateClient replaces a client's fields, keeping its creation time
func (s *Store) UpdateClient(ctx context.Context, c models.Client) error {
	tenant, err := s.requireTenant()
	if err != nil {
		return err
	}
	if err := validation.Struct(c); err != nil {
		return err
	}

	existing, err := s.clientRow(ctx, tenant.ID, c.ID)
	if err != nil {
		return err
	}

	c.TenantID = tenant.ID
	c.CreatedAt = existing.CreatedAt
	c.UpdatedAt = s.now()
	if c.Status == "" {
		c.Status = existing.Status
	}

	u := c.User()
	if err := s.repos.Users.Update(ctx, &u); err != nil {
		return err
	}

	s.audit(ctx, tenant.ID, models.AuditUpdate, "client", c.ID, c.FullName())
	return s.RefreshData(ctx)
}

// DeleteClient removes a client. Their bookings, assessments and other
// student records are left in place.
func (s *Store) DeleteClient(ctx context.Context, id int64) error {
	tenant, err := s.requireTenant()
	if err != nil {
		return err
	}
	if _, err := s.clientRow(ctx, tenant.ID, id); err != nil {
		return err
	}

	if err := s.repos.Users.Delete(ctx, tenant.ID, id); err != nil {
		return err
	}

	s.audit(ctx, tenant.ID, models.AuditDelete, "client", id, "")
	return s.RefreshData(ctx)
}

func (s *Store) clientRow(ctx context.Context, tenantID, id int64) (*models.User, error) {
	u, err := s.repos.Users.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if u == nil || u.TenantID != tenantID || u.Role != models.RoleClient {
		return nil, fmt.Errorf("client %d: %w", id, ErrNotFound)
	}
	return u, nil
}
