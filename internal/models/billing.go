package models

import "time"

// Invoice statuses
const (
	InvoiceDraft = "draft"
	InvoiceSent  = "sent"
	InvoicePaid  = "paid"
)

type Invoice struct {
	ID        int64      `db:"id" json:"id"`
	TenantID  int64      `db:"tenant_id" json:"tenantId"`
	ClientID  int64      `db:"client_id" json:"clientId" validate:"required"`
	Number    string     `db:"number" json:"number" validate:"required"`
	Status    string     `db:"status" json:"status" validate:"omitempty,oneof=draft sent paid"`
	IssuedAt  time.Time  `db:"issued_at" json:"issuedAt"`
	DueAt     *time.Time `db:"due_at" json:"dueAt,omitempty"`
	Total     float64    `db:"total" json:"total"`
	CreatedAt time.Time  `db:"created_at" json:"createdAt"`
	UpdatedAt time.Time  `db:"updated_at" json:"updatedAt"`
}

type InvoiceItem struct {
	ID          int64   `db:"id" json:"id"`
	TenantID    int64   `db:"tenant_id" json:"tenantId"`
	InvoiceID   int64   `db:"invoice_id" json:"invoiceId"`
	BookingID   *int64  `db:"booking_id" json:"bookingId,omitempty"`
	Description string  `db:"description" json:"description" validate:"required"`
	Quantity    int     `db:"quantity" json:"quantity" validate:"gte=1"`
	UnitPrice   float64 `db:"unit_price" json:"unitPrice" validate:"gte=0"`
	Amount      float64 `db:"amount" json:"amount"`
}

// CreditPackage is a prepaid bundle of lessons
type CreditPackage struct {
	ID        int64     `db:"id" json:"id"`
	TenantID  int64     `db:"tenant_id" json:"tenantId"`
	Name      string    `db:"name" json:"name" validate:"required"`
	Credits   int       `db:"credits" json:"credits" validate:"gt=0"`
	Price     float64   `db:"price" json:"price" validate:"gte=0"`
	ValidDays int       `db:"valid_days" json:"validDays" validate:"gte=0"`
	Active    bool      `db:"active" json:"active"`
	CreatedAt time.Time `db:"created_at" json:"createdAt"`
}

// ClientCredit is a package purchased by a client
type ClientCredit struct {
	ID          int64      `db:"id" json:"id"`
	TenantID    int64      `db:"tenant_id" json:"tenantId"`
	ClientID    int64      `db:"client_id" json:"clientId" validate:"required"`
	PackageID   int64      `db:"package_id" json:"packageId" validate:"required"`
	Remaining   int        `db:"remaining" json:"remaining" validate:"gte=0"`
	PurchasedAt time.Time  `db:"purchased_at" json:"purchasedAt"`
	ExpiresAt   *time.Time `db:"expires_at" json:"expiresAt,omitempty"`
}

type Expense struct {
	ID          int64     `db:"id" json:"id"`
	TenantID    int64     `db:"tenant_id" json:"tenantId"`
	Category    string    `db:"category" json:"category" validate:"required"`
	Description string    `db:"description" json:"description"`
	Amount      float64   `db:"amount" json:"amount" validate:"gt=0"`
	IncurredAt  time.Time `db:"incurred_at" json:"incurredAt"`
	CreatedAt   time.Time `db:"created_at" json:"createdAt"`
}
