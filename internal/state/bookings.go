package state

import (
	"context"
	"fmt"

	"swimschool/internal/models"
	"swimschool/internal/validation"
)

// AddBooking creates a booking and then one participant row per client. The
// two writes are separate: if a participant write fails the booking stays
// and the error is returned without a refresh.
func (s *Store) AddBooking(ctx context.Context, b models.Booking, clientIDs []int64) (int64, error) {
	tenant, err := s.requireTenant()
	if err != nil {
		return 0, err
	}
	if err := validation.Struct(b); err != nil {
		return 0, err
	}

	now := s.now()
	b.TenantID = tenant.ID
	b.CreatedAt = now
	b.UpdatedAt = now
	if b.Status == "" {
		b.Status = models.BookingPending
	}
	if b.PaymentStatus == "" {
		b.PaymentStatus = models.PaymentPending
	}

	if err := s.repos.Bookings.Create(ctx, &b); err != nil {
		return 0, err
	}

	for _, clientID := range clientIDs {
		p := &models.BookingParticipant{
			TenantID:         tenant.ID,
			BookingID:        b.ID,
			ClientID:         clientID,
			AttendanceStatus: models.AttendanceRegistered,
			CreatedAt:        now,
			UpdatedAt:        now,
		}
		if err := s.repos.Participants.Create(ctx, p); err != nil {
			return b.ID, fmt.Errorf("booking %d created but participant %d failed: %w", b.ID, clientID, err)
		}
	}

	s.audit(ctx, tenant.ID, models.AuditCreate, "booking", b.ID, fmt.Sprintf("%d participants", len(clientIDs)))
	return b.ID, s.RefreshData(ctx)
}

// UpdateBooking replaces a booking's fields, keeping its creation time
func (s *Store) UpdateBooking(ctx context.Context, b models.Booking) error {
	tenant, err := s.requireTenant()
	if err != nil {
		return err
	}
	if err := validation.Struct(b); err != nil {
		return err
	}

	existing, err := s.bookingRow(ctx, tenant.ID, b.ID)
	if err != nil {
		return err
	}

	b.TenantID = tenant.ID
	b.CreatedAt = existing.CreatedAt
	b.UpdatedAt = s.now()
	if b.Status == "" {
		b.Status = existing.Status
	}
	if b.PaymentStatus == "" {
		b.PaymentStatus = existing.PaymentStatus
	}

	if err := s.repos.Bookings.Update(ctx, &b); err != nil {
		return err
	}

	s.audit(ctx, tenant.ID, models.AuditUpdate, "booking", b.ID, "")
	return s.RefreshData(ctx)
}

// UpdateBookingStatus moves a booking to status. An empty paymentStatus keeps
// the current one. Completing a booking marks its participants attended and
// recomputes their streaks and badges; a no-show marks them absent. Moving a
// completed booking to any other status resets attendance to registered and
// recomputes streaks. Badges already earned are kept.
func (s *Store) UpdateBookingStatus(ctx context.Context, id int64, status, paymentStatus string) error {
	tenant, err := s.requireTenant()
	if err != nil {
		return err
	}

	existing, err := s.bookingRow(ctx, tenant.ID, id)
	if err != nil {
		return err
	}

	check := *existing
	check.Status = status
	if paymentStatus != "" {
		check.PaymentStatus = paymentStatus
	}
	if err := validation.Struct(check); err != nil {
		return err
	}

	now := s.now()
	if err := s.repos.Bookings.UpdateStatus(ctx, id, check.Status, check.PaymentStatus, now); err != nil {
		return err
	}

	wasCompleted := existing.Status == models.BookingCompleted
	switch {
	case status == models.BookingCompleted:
		if err := s.repos.Participants.UpdateAttendance(ctx, id, models.AttendanceAttended, now); err != nil {
			return err
		}
		if err := s.refreshParticipants(ctx, tenant, id, true); err != nil {
			return err
		}
	case status == models.BookingNoShow:
		if err := s.repos.Participants.UpdateAttendance(ctx, id, models.AttendanceAbsent, now); err != nil {
			return err
		}
		if wasCompleted {
			if err := s.refreshParticipants(ctx, tenant, id, false); err != nil {
				return err
			}
		}
	case wasCompleted:
		if err := s.repos.Participants.UpdateAttendance(ctx, id, models.AttendanceRegistered, now); err != nil {
			return err
		}
		if err := s.refreshParticipants(ctx, tenant, id, false); err != nil {
			return err
		}
	}

	s.audit(ctx, tenant.ID, models.AuditUpdate, "booking", id, "status "+status)
	return s.RefreshData(ctx)
}

// refreshParticipants recomputes the streak of every participant of a booking
// and, when awardBadges is set, checks them for new badges.
func (s *Store) refreshParticipants(ctx context.Context, tenant *models.Tenant, bookingID int64, awardBadges bool) error {
	participants, err := s.repos.Participants.ListByBooking(ctx, bookingID)
	if err != nil {
		return err
	}
	return s.refreshStudents(ctx, tenant, participants, awardBadges)
}

func (s *Store) refreshStudents(ctx context.Context, tenant *models.Tenant, participants []models.BookingParticipant, awardBadges bool) error {
	for _, p := range participants {
		if _, err := s.updateStreak(ctx, tenant, p.ClientID); err != nil {
			return err
		}
		if !awardBadges {
			continue
		}
		if _, err := s.checkAndAwardBadges(ctx, tenant, p.ClientID); err != nil {
			return err
		}
	}
	return nil
}

// DeleteBooking removes a booking and its participants. Deleting a completed
// booking recomputes the former participants' streaks.
func (s *Store) DeleteBooking(ctx context.Context, id int64) error {
	tenant, err := s.requireTenant()
	if err != nil {
		return err
	}
	existing, err := s.bookingRow(ctx, tenant.ID, id)
	if err != nil {
		return err
	}

	var participants []models.BookingParticipant
	if existing.Status == models.BookingCompleted {
		if participants, err = s.repos.Participants.ListByBooking(ctx, id); err != nil {
			return err
		}
	}

	if err := s.repos.Bookings.Delete(ctx, tenant.ID, id); err != nil {
		return err
	}
	if err := s.refreshStudents(ctx, tenant, participants, false); err != nil {
		return err
	}

	s.audit(ctx, tenant.ID, models.AuditDelete, "booking", id, "")
	return s.RefreshData(ctx)
}

func (s *Store) bookingRow(ctx context.Context, tenantID, id int64) (*models.Booking, error) {
	b, err := s.repos.Bookings.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if b == nil || b.TenantID != tenantID {
		return nil, fmt.Errorf("booking %d: %w", id, ErrNotFound)
	}
	return b, nil
}
