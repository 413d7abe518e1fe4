package models

import "time"

// Booking statuses
const (
	BookingPending   = "pending"
	BookingConfirmed = "confirmed"
	BookingCancelled = "cancelled"
	BookingCompleted = "completed"
	BookingNoShow    = "no_show"
)

// Payment statuses
const (
	PaymentPending  = "pending"
	PaymentPaid     = "paid"
	PaymentRefunded = "refunded"
)

// Attendance statuses on a participant row
const (
	AttendanceRegistered = "registered"
	AttendanceAttended   = "attended"
	AttendanceAbsent     = "absent"
)

// Booking is one scheduled lesson
type Booking struct {
	ID                 int64     `db:"id" json:"id"`
	TenantID           int64     `db:"tenant_id" json:"tenantId"`
	ServiceTypeID      int64     `db:"service_type_id" json:"serviceTypeId" validate:"required"`
	InstructorID       int64     `db:"instructor_id" json:"instructorId" validate:"required"`
	ResourceID         *int64    `db:"resource_id" json:"resourceId,omitempty"`
	RecurringPatternID *int64    `db:"recurring_pattern_id" json:"recurringPatternId,omitempty"`
	StartTime          time.Time `db:"start_time" json:"startTime" validate:"required"`
	EndTime            time.Time `db:"end_time" json:"endTime" validate:"required,gtfield=StartTime"`
	Status             string    `db:"status" json:"status" validate:"omitempty,oneof=pending confirmed cancelled completed no_show"`
	Price              float64   `db:"price" json:"price" validate:"gte=0"`
	PaymentStatus      string    `db:"payment_status" json:"paymentStatus" validate:"omitempty,oneof=pending paid refunded"`
	Notes              string    `db:"notes" json:"notes"`
	CreatedAt          time.Time `db:"created_at" json:"createdAt"`
	UpdatedAt          time.Time `db:"updated_at" json:"updatedAt"`
}

// IsPast reports whether the lesson started before now
func (b Booking) IsPast(now time.Time) bool {
	return b.StartTime.Before(now)
}

// BookingParticipant links a booking to one client
type BookingParticipant struct {
	ID               int64     `db:"id" json:"id"`
	TenantID         int64     `db:"tenant_id" json:"tenantId"`
	BookingID        int64     `db:"booking_id" json:"bookingId"`
	ClientID         int64     `db:"client_id" json:"clientId"`
	AttendanceStatus string    `db:"attendance_status" json:"attendanceStatus"`
	CreatedAt        time.Time `db:"created_at" json:"createdAt"`
	UpdatedAt        time.Time `db:"updated_at" json:"updatedAt"`
}

// ServiceType is a bookable lesson product
type ServiceType struct {
	ID              int64     `db:"id" json:"id"`
	TenantID        int64     `db:"tenant_id" json:"tenantId"`
	Name            string    `db:"name" json:"name" validate:"required,max=100"`
	Description     string    `db:"description" json:"description"`
	DurationMinutes int       `db:"duration_minutes" json:"durationMinutes" validate:"required,gt=0"`
	Price           float64   `db:"price" json:"price" validate:"gte=0"`
	MinParticipants int       `db:"min_participants" json:"minParticipants" validate:"gte=1"`
	MaxParticipants int       `db:"max_participants" json:"maxParticipants" validate:"gtefield=MinParticipants"`
	Color           string    `db:"color" json:"color"`
	Active          bool      `db:"active" json:"active"`
	CreatedAt       time.Time `db:"created_at" json:"createdAt"`
	UpdatedAt       time.Time `db:"updated_at" json:"updatedAt"`
}

// Resource is a pool or lane a lesson can be held in
type Resource struct {
	ID        int64     `db:"id" json:"id"`
	TenantID  int64     `db:"tenant_id" json:"tenantId"`
	Name      string    `db:"name" json:"name" validate:"required"`
	Kind      string    `db:"kind" json:"kind"`
	Capacity  int       `db:"capacity" json:"capacity" validate:"gte=1"`
	CreatedAt time.Time `db:"created_at" json:"createdAt"`
}

// RecurringPattern describes a weekly lesson slot for one client
type RecurringPattern struct {
	ID              int64      `db:"id" json:"id"`
	TenantID        int64      `db:"tenant_id" json:"tenantId"`
	ServiceTypeID   int64      `db:"service_type_id" json:"serviceTypeId" validate:"required"`
	InstructorID    int64      `db:"instructor_id" json:"instructorId" validate:"required"`
	ClientID        int64      `db:"client_id" json:"clientId" validate:"required"`
	DayOfWeek       int        `db:"day_of_week" json:"dayOfWeek" validate:"gte=0,lte=6"`
	StartClock      string     `db:"start_clock" json:"startClock" validate:"required,datetime=15:04"`
	DurationMinutes int        `db:"duration_minutes" json:"durationMinutes" validate:"gt=0"`
	StartDate       time.Time  `db:"start_date" json:"startDate"`
	EndDate         *time.Time `db:"end_date" json:"endDate,omitempty"`
	Active          bool       `db:"active" json:"active"`
	CreatedAt       time.Time  `db:"created_at" json:"createdAt"`
}
