package repository

import (
	"context"
	"fmt"
	"time"

	"swimschool/internal/database"
	"swimschool/internal/models"
)

const bookingColumns = `id, tenant_id, service_type_id, instructor_id, resource_id, recurring_pattern_id,
	start_time, end_time, status, price, payment_status, notes, created_at, updated_at`

const participantColumns = "id, tenant_id, booking_id, client_id, attendance_status, created_at, updated_at"

// BookingRepository handles database operations for bookings
type BookingRepository struct {
	db           database.DBTX
	participants *ParticipantRepository
}

// NewBookingRepository creates a new booking repository
func NewBookingRepository(db database.DBTX, participants *ParticipantRepository) *BookingRepository {
	return &BookingRepository{db: db, participants: participants}
}

// Create inserts a booking and sets its ID. Participants are written separately.
func (r *BookingRepository) Create(ctx context.Context, b *models.Booking) error {
	query := `INSERT INTO bookings (tenant_id, service_type_id, instructor_id, resource_id, recurring_pattern_id,
		start_time, end_time, status, price, payment_status, notes, created_at, updated_at)
		VALUES (:tenant_id, :service_type_id, :instructor_id, :resource_id, :recurring_pattern_id,
		:start_time, :end_time, :status, :price, :payment_status, :notes, :created_at, :updated_at)`
	id, err := r.db.NamedInsert(ctx, query, b)
	if err != nil {
		return fmt.Errorf("failed to create booking: %w", err)
	}
	b.ID = id
	return nil
}

// GetByID retrieves a booking by ID
func (r *BookingRepository) GetByID(ctx context.Context, id int64) (*models.Booking, error) {
	b, err := getOne[models.Booking](ctx, r.db, "SELECT "+bookingColumns+" FROM bookings WHERE id = ?", id)
	if err != nil {
		return nil, fmt.Errorf("failed to get booking: %w", err)
	}
	return b, nil
}

// ListByTenant returns every booking of a tenant ordered by start time
func (r *BookingRepository) ListByTenant(ctx context.Context, tenantID int64) ([]models.Booking, error) {
	query := "SELECT " + bookingColumns + " FROM bookings WHERE tenant_id = ? ORDER BY start_time, id"
	bookings, err := selectAll[models.Booking](ctx, r.db, query, tenantID)
	if err != nil {
		return nil, fmt.Errorf("failed to list bookings: %w", err)
	}
	return bookings, nil
}

// ListByStatus returns the tenant's bookings in one status
func (r *BookingRepository) ListByStatus(ctx context.Context, tenantID int64, status string) ([]models.Booking, error) {
	query := "SELECT " + bookingColumns + " FROM bookings WHERE tenant_id = ? AND status = ? ORDER BY start_time, id"
	bookings, err := selectAll[models.Booking](ctx, r.db, query, tenantID, status)
	if err != nil {
		return nil, fmt.Errorf("failed to list bookings by status: %w", err)
	}
	return bookings, nil
}

// ListByInstructor returns the bookings taught by one instructor
func (r *BookingRepository) ListByInstructor(ctx context.Context, instructorID int64) ([]models.Booking, error) {
	query := "SELECT " + bookingColumns + " FROM bookings WHERE instructor_id = ? ORDER BY start_time, id"
	bookings, err := selectAll[models.Booking](ctx, r.db, query, instructorID)
	if err != nil {
		return nil, fmt.Errorf("failed to list bookings by instructor: %w", err)
	}
	return bookings, nil
}

// Update saves every mutable column of a booking
func (r *BookingRepository) Update(ctx context.Context, b *models.Booking) error {
	query := `UPDATE bookings SET service_type_id = :service_type_id, instructor_id = :instructor_id,
		resource_id = :resource_id, start_time = :start_time, end_time = :end_time, status = :status,
		price = :price, payment_status = :payment_status, notes = :notes, updated_at = :updated_at
		WHERE id = :id AND tenant_id = :tenant_id`
	result, err := r.db.NamedExec(ctx, query, b)
	if err != nil {
		return fmt.Errorf("failed to update booking: %w", err)
	}
	if err := affected(result); err != nil {
		return fmt.Errorf("failed to update booking %d: %w", b.ID, err)
	}
	return nil
}

// UpdateStatus changes the lesson and payment status of a booking
func (r *BookingRepository) UpdateStatus(ctx context.Context, id int64, status, paymentStatus string, updatedAt time.Time) error {
	query := "UPDATE bookings SET status = ?, payment_status = ?, updated_at = ? WHERE id = ?"
	result, err := r.db.Exec(ctx, query, status, paymentStatus, updatedAt, id)
	if err != nil {
		return fmt.Errorf("failed to update booking status: %w", err)
	}
	if err := affected(result); err != nil {
		return fmt.Errorf("failed to update booking status %d: %w", id, err)
	}
	return nil
}

// Delete removes a booking's participants and then the booking itself
func (r *BookingRepository) Delete(ctx context.Context, tenantID, id int64) error {
	if err := r.participants.DeleteByBooking(ctx, id); err != nil {
		return err
	}

	result, err := r.db.Exec(ctx, "DELETE FROM bookings WHERE id = ? AND tenant_id = ?", id, tenantID)
	if err != nil {
		return fmt.Errorf("failed to delete booking: %w", err)
	}
	if err := affected(result); err != nil {
		return fmt.Errorf("failed to delete booking %d: %w", id, err)
	}
	return nil
}

// ParticipantRepository handles database operations for booking participants
type ParticipantRepository struct {
	db database.DBTX
}

// NewParticipantRepository creates a new participant repository
func NewParticipantRepository(db database.DBTX) *ParticipantRepository {
	return &ParticipantRepository{db: db}
}

// Create inserts a participant row and sets its ID
func (r *ParticipantRepository) Create(ctx context.Context, p *models.BookingParticipant) error {
	query := `INSERT INTO booking_participants (tenant_id, booking_id, client_id, attendance_status, created_at, updated_at)
		VALUES (:tenant_id, :booking_id, :client_id, :attendance_status, :created_at, :updated_at)`
	id, err := r.db.NamedInsert(ctx, query, p)
	if err != nil {
		return fmt.Errorf("failed to create participant: %w", err)
	}
	p.ID = id
	return nil
}

// ListByTenant returns every participant row of a tenant
func (r *ParticipantRepository) ListByTenant(ctx context.Context, tenantID int64) ([]models.BookingParticipant, error) {
	query := "SELECT " + participantColumns + " FROM booking_participants WHERE tenant_id = ? ORDER BY id"
	rows, err := selectAll[models.BookingParticipant](ctx, r.db, query, tenantID)
	if err != nil {
		return nil, fmt.Errorf("failed to list participants: %w", err)
	}
	return rows, nil
}

// ListByBooking returns the participants of one booking
func (r *ParticipantRepository) ListByBooking(ctx context.Context, bookingID int64) ([]models.BookingParticipant, error) {
	query := "SELECT " + participantColumns + " FROM booking_participants WHERE booking_id = ? ORDER BY id"
	rows, err := selectAll[models.BookingParticipant](ctx, r.db, query, bookingID)
	if err != nil {
		return nil, fmt.Errorf("failed to list participants by booking: %w", err)
	}
	return rows, nil
}

// ListByClient returns every participation of one client
func (r *ParticipantRepository) ListByClient(ctx context.Context, clientID int64) ([]models.BookingParticipant, error) {
	query := "SELECT " + participantColumns + " FROM booking_participants WHERE client_id = ? ORDER BY id"
	rows, err := selectAll[models.BookingParticipant](ctx, r.db, query, clientID)
	if err != nil {
		return nil, fmt.Errorf("failed to list participants by client: %w", err)
	}
	return rows, nil
}

// UpdateAttendance sets the attendance status of every participant row of a booking
func (r *ParticipantRepository) UpdateAttendance(ctx context.Context, bookingID int64, status string, updatedAt time.Time) error {
	query := "UPDATE booking_participants SET attendance_status = ?, updated_at = ? WHERE booking_id = ?"
	if _, err := r.db.Exec(ctx, query, status, updatedAt, bookingID); err != nil {
		return fmt.Errorf("failed to update attendance: %w", err)
	}
	return nil
}

// DeleteByBooking removes every participant of a booking
func (r *ParticipantRepository) DeleteByBooking(ctx context.Context, bookingID int64) error {
	if _, err := r.db.Exec(ctx, "DELETE FROM booking_participants WHERE booking_id = ?", bookingID); err != nil {
		return fmt.Errorf("failed to delete participants: %w", err)
	}
	return nil
}
