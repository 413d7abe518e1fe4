package repository

import (
	"context"
	"fmt"

	"swimschool/internal/database"
	"swimschool/internal/models"
)

// MediaRepository handles progress photos and videos
type MediaRepository struct {
	db database.DBTX
}

// NewMediaRepository creates a new media repository
func NewMediaRepository(db database.DBTX) *MediaRepository {
	return &MediaRepository{db: db}
}

// Create inserts a progress photo or video
func (r *MediaRepository) Create(ctx context.Context, m *models.ProgressMedia) error {
	query := `INSERT INTO progress_media (tenant_id, student_id, booking_id, media_type, url, object_key, caption, created_at)
		VALUES (:tenant_id, :student_id, :booking_id, :media_type, :url, :object_key, :caption, :created_at)`
	id, err := r.db.NamedInsert(ctx, query, m)
	if err != nil {
		return fmt.Errorf("failed to create media: %w", err)
	}
	m.ID = id
	return nil
}

// ListByTenant returns a tenant's progress media
func (r *MediaRepository) ListByTenant(ctx context.Context, tenantID int64) ([]models.ProgressMedia, error) {
	query := `SELECT id, tenant_id, student_id, booking_id, media_type, url, object_key, caption, created_at
		FROM progress_media WHERE tenant_id = ? ORDER BY id`
	rows, err := selectAll[models.ProgressMedia](ctx, r.db, query, tenantID)
	if err != nil {
		return nil, fmt.Errorf("failed to list media: %w", err)
	}
	return rows, nil
}

// FeedbackRepository handles lesson ratings
type FeedbackRepository struct {
	db database.DBTX
}

// NewFeedbackRepository creates a new feedback repository
func NewFeedbackRepository(db database.DBTX) *FeedbackRepository {
	return &FeedbackRepository{db: db}
}

// Create inserts lesson feedback
func (r *FeedbackRepository) Create(ctx context.Context, f *models.LessonFeedback) error {
	query := `INSERT INTO lesson_feedback (tenant_id, booking_id, student_id, rating, comment, created_at)
		VALUES (:tenant_id, :booking_id, :student_id, :rating, :comment, :created_at)`
	id, err := r.db.NamedInsert(ctx, query, f)
	if err != nil {
		return fmt.Errorf("failed to create feedback: %w", err)
	}
	f.ID = id
	return nil
}

// ListByTenant returns a tenant's lesson feedback
func (r *FeedbackRepository) ListByTenant(ctx context.Context, tenantID int64) ([]models.LessonFeedback, error) {
	query := `SELECT id, tenant_id, booking_id, student_id, rating, comment, created_at
		FROM lesson_feedback WHERE tenant_id = ? ORDER BY id`
	rows, err := selectAll[models.LessonFeedback](ctx, r.db, query, tenantID)
	if err != nil {
		return nil, fmt.Errorf("failed to list feedback: %w", err)
	}
	return rows, nil
}

// LessonNoteRepository handles instructor notes on bookings
type LessonNoteRepository struct {
	db database.DBTX
}

// NewLessonNoteRepository creates a new lesson note repository
func NewLessonNoteRepository(db database.DBTX) *LessonNoteRepository {
	return &LessonNoteRepository{db: db}
}

// Create inserts a lesson note
func (r *LessonNoteRepository) Create(ctx context.Context, n *models.LessonNote) error {
	query := `INSERT INTO lesson_notes (tenant_id, booking_id, student_id, author_id, content, created_at)
		VALUES (:tenant_id, :booking_id, :student_id, :author_id, :content, :created_at)`
	id, err := r.db.NamedInsert(ctx, query, n)
	if err != nil {
		return fmt.Errorf("failed to create lesson note: %w", err)
	}
	n.ID = id
	return nil
}

// ListByTenant returns a tenant's lesson notes
func (r *LessonNoteRepository) ListByTenant(ctx context.Context, tenantID int64) ([]models.LessonNote, error) {
	query := `SELECT id, tenant_id, booking_id, student_id, author_id, content, created_at
		FROM lesson_notes WHERE tenant_id = ? ORDER BY id`
	rows, err := selectAll[models.LessonNote](ctx, r.db, query, tenantID)
	if err != nil {
		return nil, fmt.Errorf("failed to list lesson notes: %w", err)
	}
	return rows, nil
}
