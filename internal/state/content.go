package state

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"swimschool/internal/media"
	"swimschool/internal/models"
	"swimschool/internal/validation"
)

// AddLessonNote attaches a note written by the current user to a booking
func (s *Store) AddLessonNote(ctx context.Context, n models.LessonNote) (int64, error) {
	tenant, actorID, err := s.requireActor()
	if err != nil {
		return 0, err
	}
	if err := validation.Struct(n); err != nil {
		return 0, err
	}

	n.TenantID = tenant.ID
	n.AuthorID = actorID
	n.CreatedAt = s.now()

	if err := s.repos.LessonNotes.Create(ctx, &n); err != nil {
		return 0, err
	}

	s.audit(ctx, tenant.ID, models.AuditCreate, "lesson_note", n.ID, fmt.Sprintf("booking %d", n.BookingID))
	return n.ID, s.RefreshData(ctx)
}

// AddFeedback records a student's rating of a lesson
func (s *Store) AddFeedback(ctx context.Context, f models.LessonFeedback) (int64, error) {
	tenant, err := s.requireTenant()
	if err != nil {
		return 0, err
	}
	if err := validation.Struct(f); err != nil {
		return 0, err
	}

	f.TenantID = tenant.ID
	f.CreatedAt = s.now()

	if err := s.repos.Feedback.Create(ctx, &f); err != nil {
		return 0, err
	}

	s.audit(ctx, tenant.ID, models.AuditCreate, "lesson_feedback", f.ID, fmt.Sprintf("rating %d", f.Rating))
	return f.ID, s.RefreshData(ctx)
}

// AddMedia stores a progress photo or video. When m has no URL and a
// presigner is configured, an upload URL is issued for filename and returned;
// the caller PUTs the file there.
func (s *Store) AddMedia(ctx context.Context, m models.ProgressMedia, filename, contentType string) (int64, *media.Upload, error) {
	tenant, err := s.requireTenant()
	if err != nil {
		return 0, nil, err
	}
	if err := validation.Struct(m); err != nil {
		return 0, nil, err
	}

	var upload *media.Upload
	if m.URL == "" && s.presigner != nil && filename != "" {
		key := media.ObjectKey(tenant.ID, m.StudentID, m.MediaType, filename)
		upload, err = s.presigner.PresignUpload(ctx, key, contentType)
		if err != nil {
			return 0, nil, err
		}
		m.ObjectKey = upload.Key
		m.URL, _, _ = strings.Cut(upload.URL, "?")
	}

	m.TenantID = tenant.ID
	m.CreatedAt = s.now()

	if err := s.repos.Media.Create(ctx, &m); err != nil {
		return 0, nil, err
	}

	s.audit(ctx, tenant.ID, models.AuditCreate, "progress_media", m.ID, m.MediaType)
	return m.ID, upload, s.RefreshData(ctx)
}

// AddNotification stores an in-app notification and, when a notifier is
// configured and the user opted in, emails it. Delivery failures are logged.
func (s *Store) AddNotification(ctx context.Context, n models.Notification) (int64, error) {
	tenant, err := s.requireTenant()
	if err != nil {
		return 0, err
	}
	if err := validation.Struct(n); err != nil {
		return 0, err
	}

	n.TenantID = tenant.ID
	n.IsRead = false
	n.CreatedAt = s.now()

	if err := s.repos.Notifications.Create(ctx, &n); err != nil {
		return 0, err
	}

	s.deliver(ctx, tenant.ID, n)
	s.audit(ctx, tenant.ID, models.AuditCreate, "notification", n.ID, n.Kind)
	return n.ID, s.RefreshData(ctx)
}

func (s *Store) deliver(ctx context.Context, tenantID int64, n models.Notification) {
	if s.notifier == nil {
		return
	}

	user, err := s.repos.Users.GetByID(ctx, n.UserID)
	if err != nil {
		s.logger.Warn("failed to load notification recipient", "user_id", n.UserID, "error", err)
		return
	}
	if user == nil || user.TenantID != tenantID || !user.NotifyEmail || user.Email == "" {
		return
	}

	if err := s.notifier.NotifyUser(ctx, *user, n); err != nil {
		s.logger.Warn("failed to email notification", "notification_id", n.ID, "user_id", user.ID, "error", err)
	}
}

// MarkNotificationRead flags a notification as read
func (s *Store) MarkNotificationRead(ctx context.Context, id int64) error {
	tenant, err := s.requireTenant()
	if err != nil {
		return err
	}

	if err := s.repos.Notifications.MarkRead(ctx, tenant.ID, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return ErrNotFound
		}
		return err
	}

	s.audit(ctx, tenant.ID, models.AuditUpdate, "notification", id, "read")
	return s.RefreshData(ctx)
}

// SendMessage delivers a direct message from the current user
func (s *Store) SendMessage(ctx context.Context, m models.Message) (int64, error) {
	tenant, actorID, err := s.requireActor()
	if err != nil {
		return 0, err
	}
	if err := validation.Struct(m); err != nil {
		return 0, err
	}

	m.TenantID = tenant.ID
	m.SenderID = actorID
	m.ReadAt = nil
	m.CreatedAt = s.now()

	if err := s.repos.Messages.Create(ctx, &m); err != nil {
		return 0, err
	}

	s.audit(ctx, tenant.ID, models.AuditCreate, "message", m.ID, fmt.Sprintf("to %d", m.RecipientID))
	return m.ID, s.RefreshData(ctx)
}

// MarkMessageRead stamps a message as read now
func (s *Store) MarkMessageRead(ctx context.Context, id int64) error {
	tenant, err := s.requireTenant()
	if err != nil {
		return err
	}

	if err := s.repos.Messages.MarkRead(ctx, tenant.ID, id, s.now()); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return ErrNotFound
		}
		return err
	}

	s.audit(ctx, tenant.ID, models.AuditUpdate, "message", id, "read")
	return s.RefreshData(ctx)
}
