package models

import "time"

// ProgressMedia is a photo or video attached to a student's progress
type ProgressMedia struct {
	ID        int64     `db:"id" json:"id"`
	TenantID  int64     `db:"tenant_id" json:"tenantId"`
	StudentID int64     `db:"student_id" json:"studentId" validate:"required"`
	BookingID *int64    `db:"booking_id" json:"bookingId,omitempty"`
	MediaType string    `db:"media_type" json:"mediaType" validate:"required,oneof=photo video"`
	URL       string    `db:"url" json:"url" validate:"omitempty,url"`
	ObjectKey string    `db:"object_key" json:"objectKey"`
	Caption   string    `db:"caption" json:"caption"`
	CreatedAt time.Time `db:"created_at" json:"createdAt"`
}

// LessonFeedback is a student's rating of a lesson
type LessonFeedback struct {
	ID        int64     `db:"id" json:"id"`
	TenantID  int64     `db:"tenant_id" json:"tenantId"`
	BookingID int64     `db:"booking_id" json:"bookingId" validate:"required"`
	StudentID int64     `db:"student_id" json:"studentId" validate:"required"`
	Rating    int       `db:"rating" json:"rating" validate:"gte=1,lte=5"`
	Comment   string    `db:"comment" json:"comment"`
	CreatedAt time.Time `db:"created_at" json:"createdAt"`
}

// LessonNote is an instructor note on a booking, optionally about one student
type LessonNote struct {
	ID        int64     `db:"id" json:"id"`
	TenantID  int64     `db:"tenant_id" json:"tenantId"`
	BookingID int64     `db:"booking_id" json:"bookingId" validate:"required"`
	StudentID *int64    `db:"student_id" json:"studentId,omitempty"`
	AuthorID  int64     `db:"author_id" json:"authorId"`
	Content   string    `db:"content" json:"content" validate:"required"`
	CreatedAt time.Time `db:"created_at" json:"createdAt"`
}
