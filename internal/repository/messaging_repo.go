package repository

import (
	"context"
	"fmt"
	"time"

	"swimschool/internal/database"
	"swimschool/internal/models"
)

// NotificationRepository handles in-app notifications
type NotificationRepository struct {
	db database.DBTX
}

// NewNotificationRepository creates a new notification repository
func NewNotificationRepository(db database.DBTX) *NotificationRepository {
	return &NotificationRepository{db: db}
}

// Create inserts a new notification
func (r *NotificationRepository) Create(ctx context.Context, n *models.Notification) error {
	query := `INSERT INTO notifications (tenant_id, user_id, kind, title, body, is_read, created_at)
		VALUES (:tenant_id, :user_id, :kind, :title, :body, :is_read, :created_at)`
	id, err := r.db.NamedInsert(ctx, query, n)
	if err != nil {
		return fmt.Errorf("failed to create notification: %w", err)
	}
	n.ID = id
	return nil
}

// ListByTenant returns a tenant's notifications
func (r *NotificationRepository) ListByTenant(ctx context.Context, tenantID int64) ([]models.Notification, error) {
	query := `SELECT id, tenant_id, user_id, kind, title, body, is_read, created_at
		FROM notifications WHERE tenant_id = ? ORDER BY id`
	rows, err := selectAll[models.Notification](ctx, r.db, query, tenantID)
	if err != nil {
		return nil, fmt.Errorf("failed to list notifications: %w", err)
	}
	return rows, nil
}

// MarkRead flags a notification as read
func (r *NotificationRepository) MarkRead(ctx context.Context, tenantID, id int64) error {
	result, err := r.db.Exec(ctx, "UPDATE notifications SET is_read = ? WHERE id = ? AND tenant_id = ?", true, id, tenantID)
	if err != nil {
		return fmt.Errorf("failed to mark notification read: %w", err)
	}
	if err := affected(result); err != nil {
		return fmt.Errorf("failed to mark notification %d read: %w", id, err)
	}
	return nil
}

// MessageRepository handles direct messages
type MessageRepository struct {
	db database.DBTX
}

// NewMessageRepository creates a new message repository
func NewMessageRepository(db database.DBTX) *MessageRepository {
	return &MessageRepository{db: db}
}

// Create inserts a new message
func (r *MessageRepository) Create(ctx context.Context, m *models.Message) error {
	query := `INSERT INTO messages (tenant_id, sender_id, recipient_id, subject, body, read_at, created_at)
		VALUES (:tenant_id, :sender_id, :recipient_id, :subject, :body, :read_at, :created_at)`
	id, err := r.db.NamedInsert(ctx, query, m)
	if err != nil {
		return fmt.Errorf("failed to create message: %w", err)
	}
	m.ID = id
	return nil
}

// ListByTenant returns a tenant's messages
func (r *MessageRepository) ListByTenant(ctx context.Context, tenantID int64) ([]models.Message, error) {
	query := `SELECT id, tenant_id, sender_id, recipient_id, subject, body, read_at, created_at
		FROM messages WHERE tenant_id = ? ORDER BY id`
	rows, err := selectAll[models.Message](ctx, r.db, query, tenantID)
	if err != nil {
		return nil, fmt.Errorf("failed to list messages: %w", err)
	}
	return rows, nil
}

// MarkRead stamps a message as read
func (r *MessageRepository) MarkRead(ctx context.Context, tenantID, id int64, readAt time.Time) error {
	result, err := r.db.Exec(ctx, "UPDATE messages SET read_at = ? WHERE id = ? AND tenant_id = ?", readAt, id, tenantID)
	if err != nil {
		return fmt.Errorf("failed to mark message read: %w", err)
	}
	if err := affected(result); err != nil {
		return fmt.Errorf("failed to mark message %d read: %w", id, err)
	}
	return nil
}

// AuditLogRepository handles the mutation trail
type AuditLogRepository struct {
	db database.DBTX
}

// NewAuditLogRepository creates a new audit log repository
func NewAuditLogRepository(db database.DBTX) *AuditLogRepository {
	return &AuditLogRepository{db: db}
}

// Create inserts an audit log entry
func (r *AuditLogRepository) Create(ctx context.Context, l *models.AuditLog) error {
	query := `INSERT INTO audit_logs (tenant_id, user_id, action, entity_type, entity_id, details, created_at)
		VALUES (:tenant_id, :user_id, :action, :entity_type, :entity_id, :details, :created_at)`
	id, err := r.db.NamedInsert(ctx, query, l)
	if err != nil {
		return fmt.Errorf("failed to create audit log: %w", err)
	}
	l.ID = id
	return nil
}

// ListByTenant returns a tenant's audit log
func (r *AuditLogRepository) ListByTenant(ctx context.Context, tenantID int64) ([]models.AuditLog, error) {
	query := `SELECT id, tenant_id, user_id, action, entity_type, entity_id, details, created_at
		FROM audit_logs WHERE tenant_id = ? ORDER BY id`
	rows, err := selectAll[models.AuditLog](ctx, r.db, query, tenantID)
	if err != nil {
		return nil, fmt.Errorf("failed to list audit logs: %w", err)
	}
	return rows, nil
}

// ListByEntity returns the trail of one record
func (r *AuditLogRepository) ListByEntity(ctx context.Context, entityType string, entityID int64) ([]models.AuditLog, error) {
	query := `SELECT id, tenant_id, user_id, action, entity_type, entity_id, details, created_at
		FROM audit_logs WHERE entity_type = ? AND entity_id = ? ORDER BY id`
	rows, err := selectAll[models.AuditLog](ctx, r.db, query, entityType, entityID)
	if err != nil {
		return nil, fmt.Errorf("failed to list audit logs by entity: %w", err)
	}
	return rows, nil
}
