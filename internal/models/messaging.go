package models

import "time"

// Notification is an in-app notice for one user
type Notification struct {
	ID        int64     `db:"id" json:"id"`
	TenantID  int64     `db:"tenant_id" json:"tenantId"`
	UserID    int64     `db:"user_id" json:"userId" validate:"required"`
	Kind      string    `db:"kind" json:"kind"`
	Title     string    `db:"title" json:"title" validate:"required,max=200"`
	Body      string    `db:"body" json:"body"`
	IsRead    bool      `db:"is_read" json:"isRead"`
	CreatedAt time.Time `db:"created_at" json:"createdAt"`
}

// Message is a direct message between two users
type Message struct {
	ID          int64      `db:"id" json:"id"`
	TenantID    int64      `db:"tenant_id" json:"tenantId"`
	SenderID    int64      `db:"sender_id" json:"senderId"`
	RecipientID int64      `db:"recipient_id" json:"recipientId" validate:"required"`
	Subject     string     `db:"subject" json:"subject"`
	Body        string     `db:"body" json:"body" validate:"required"`
	ReadAt      *time.Time `db:"read_at" json:"readAt,omitempty"`
	CreatedAt   time.Time  `db:"created_at" json:"createdAt"`
}

// Audit actions
const (
	AuditCreate = "create"
	AuditUpdate = "update"
	AuditDelete = "delete"
)

// AuditLog records one mutation
type AuditLog struct {
	ID         int64     `db:"id" json:"id"`
	TenantID   int64     `db:"tenant_id" json:"tenantId"`
	UserID     *int64    `db:"user_id" json:"userId,omitempty"`
	Action     string    `db:"action" json:"action"`
	EntityType string    `db:"entity_type" json:"entityType"`
	EntityID   int64     `db:"entity_id" json:"entityId"`
	Details    string    `db:"details" json:"details"`
	CreatedAt  time.Time `db:"created_at" json:"createdAt"`
}
