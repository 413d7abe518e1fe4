package state

import (
	"context"
	"fmt"

	"swimschool/internal/models"
)

// RefreshData re-reads every collection for the current tenant and publishes
// a new snapshot to subscribers.
func (s *Store) RefreshData(ctx context.Context) error {
	tenant, err := s.requireTenant()
	if err != nil {
		return err
	}

	snap, err := s.load(ctx, tenant)
	if err != nil {
		return err
	}

	s.mu.Lock()
	if s.tenant == nil || s.tenant.ID != tenant.ID {
		// torn down or switched while loading
		s.mu.Unlock()
		return nil
	}
	snap.CurrentUser = findMember(snap, s.currentUserID)
	s.snapshot = snap
	subs := s.subscriberList()
	s.mu.Unlock()

	for _, fn := range subs {
		fn(snap)
	}
	return nil
}

func (s *Store) load(ctx context.Context, tenant *models.Tenant) (*Snapshot, error) {
	r := s.repos
	id := tenant.ID
	snap := &Snapshot{LoadedAt: s.now(), Tenant: tenant}

	// reload the tenant row so branding edits show up
	fresh, err := r.Tenants.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to load tenant: %w", err)
	}
	if fresh != nil {
		snap.Tenant = fresh
	}

	users, err := r.Users.ListByTenant(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to load users: %w", err)
	}
	snap.Clients = []models.Client{}
	snap.Staff = []models.Member{}
	snap.Parents = []models.Parent{}
	for _, u := range users {
		m, err := u.Member()
		if err != nil {
			s.logger.Warn("skipping user", "user_id", u.ID, "error", err)
			continue
		}
		switch v := m.(type) {
		case models.Client:
			snap.Clients = append(snap.Clients, v)
		case models.Parent:
			snap.Parents = append(snap.Parents, v)
		default:
			snap.Staff = append(snap.Staff, m)
		}
	}

	loaders := []struct {
		name string
		fn   func() error
	}{
		{"bookings", func() (err error) { snap.Bookings, err = r.Bookings.ListByTenant(ctx, id); return }},
		{"participants", func() (err error) { snap.Participants, err = r.Participants.ListByTenant(ctx, id); return }},
		{"service types", func() (err error) { snap.ServiceTypes, err = r.ServiceTypes.ListByTenant(ctx, id); return }},
		{"resources", func() (err error) { snap.Resources, err = r.Resources.ListByTenant(ctx, id); return }},
		{"recurring patterns", func() (err error) { snap.RecurringPatterns, err = r.RecurringPatterns.ListByTenant(ctx, id); return }},
		{"skill categories", func() (err error) { snap.SkillCategories, err = r.Skills.ListCategories(ctx, id); return }},
		{"skills", func() (err error) { snap.Skills, err = r.Skills.ListSkills(ctx, id); return }},
		{"assessments", func() (err error) { snap.Assessments, err = r.Assessments.ListByTenant(ctx, id); return }},
		{"goals", func() (err error) { snap.Goals, err = r.Goals.ListByTenant(ctx, id); return }},
		{"badges", func() (err error) { snap.Badges, err = r.Badges.ListByTenant(ctx, id); return }},
		{"student badges", func() (err error) { snap.StudentBadges, err = r.Badges.ListStudentBadges(ctx, id); return }},
		{"streaks", func() (err error) { snap.Streaks, err = r.Streaks.ListByTenant(ctx, id); return }},
		{"personal bests", func() (err error) { snap.PersonalBests, err = r.PersonalBests.ListByTenant(ctx, id); return }},
		{"media", func() (err error) { snap.Media, err = r.Media.ListByTenant(ctx, id); return }},
		{"feedback", func() (err error) { snap.Feedback, err = r.Feedback.ListByTenant(ctx, id); return }},
		{"lesson notes", func() (err error) { snap.LessonNotes, err = r.LessonNotes.ListByTenant(ctx, id); return }},
		{"notifications", func() (err error) { snap.Notifications, err = r.Notifications.ListByTenant(ctx, id); return }},
		{"messages", func() (err error) { snap.Messages, err = r.Messages.ListByTenant(ctx, id); return }},
		{"invoices", func() (err error) { snap.Invoices, err = r.Invoices.ListByTenant(ctx, id); return }},
		{"invoice items", func() (err error) { snap.InvoiceItems, err = r.Invoices.ListItems(ctx, id); return }},
		{"credit packages", func() (err error) { snap.CreditPackages, err = r.Credits.ListPackages(ctx, id); return }},
		{"client credits", func() (err error) { snap.ClientCredits, err = r.Credits.ListClientCredits(ctx, id); return }},
		{"expenses", func() (err error) { snap.Expenses, err = r.Expenses.ListByTenant(ctx, id); return }},
		{"audit logs", func() (err error) { snap.AuditLogs, err = r.AuditLogs.ListByTenant(ctx, id); return }},
	}
	for _, l := range loaders {
		if err := l.fn(); err != nil {
			return nil, fmt.Errorf("failed to load %s: %w", l.name, err)
		}
	}

	return snap, nil
}

func findMember(snap *Snapshot, userID int64) models.Member {
	if userID == 0 {
		return nil
	}
	for _, m := range snap.Staff {
		if m.Base().ID == userID {
			return m
		}
	}
	for _, c := range snap.Clients {
		if c.ID == userID {
			return c
		}
	}
	for _, p := range snap.Parents {
		if p.ID == userID {
			return p
		}
	}
	return nil
}
