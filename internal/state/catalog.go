package state

import (
	"context"
	"fmt"

	"swimschool/internal/models"
	"swimschool/internal/validation"
)

// AddServiceType adds a bookable lesson product
func (s *Store) AddServiceType(ctx context.Context, st models.ServiceType) (int64, error) {
	tenant, err := s.requireTenant()
	if err != nil {
		return 0, err
	}
	if st.MinParticipants == 0 {
		st.MinParticipants = 1
	}
	if st.MaxParticipants == 0 {
		st.MaxParticipants = st.MinParticipants
	}
	if err := validation.Struct(st); err != nil {
		return 0, err
	}

	now := s.now()
	st.TenantID = tenant.ID
	st.CreatedAt = now
	st.UpdatedAt = now

	if err := s.repos.ServiceTypes.Create(ctx, &st); err != nil {
		return 0, err
	}

	s.audit(ctx, tenant.ID, models.AuditCreate, "service_type", st.ID, st.Name)
	return st.ID, s.RefreshData(ctx)
}

// AddResource adds a pool or lane
func (s *Store) AddResource(ctx context.Context, r models.Resource) (int64, error) {
	tenant, err := s.requireTenant()
	if err != nil {
		return 0, err
	}
	if err := validation.Struct(r); err != nil {
		return 0, err
	}

	r.TenantID = tenant.ID
	r.CreatedAt = s.now()

	if err := s.repos.Resources.Create(ctx, &r); err != nil {
		return 0, err
	}

	s.audit(ctx, tenant.ID, models.AuditCreate, "resource", r.ID, r.Name)
	return r.ID, s.RefreshData(ctx)
}

// AddRecurringPattern stores a weekly lesson slot. Bookings are not generated from it.
func (s *Store) AddRecurringPattern(ctx context.Context, p models.RecurringPattern) (int64, error) {
	tenant, err := s.requireTenant()
	if err != nil {
		return 0, err
	}
	if err := validation.Struct(p); err != nil {
		return 0, err
	}

	now := s.now()
	p.TenantID = tenant.ID
	p.CreatedAt = now
	if p.StartDate.IsZero() {
		p.StartDate = now
	}

	if err := s.repos.RecurringPatterns.Create(ctx, &p); err != nil {
		return 0, err
	}

	s.audit(ctx, tenant.ID, models.AuditCreate, "recurring_pattern", p.ID,
		fmt.Sprintf("client %d day %d %s", p.ClientID, p.DayOfWeek, p.StartClock))
	return p.ID, s.RefreshData(ctx)
}
