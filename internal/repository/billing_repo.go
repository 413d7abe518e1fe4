package repository

import (
	"context"
	"fmt"

	"swimschool/internal/database"
	"swimschool/internal/models"
)

// InvoiceRepository handles invoices and their line items
type InvoiceRepository struct {
	db database.DBTX
}

// NewInvoiceRepository creates a new invoice repository
func NewInvoiceRepository(db database.DBTX) *InvoiceRepository {
	return &InvoiceRepository{db: db}
}

// Create inserts a new invoice
func (r *InvoiceRepository) Create(ctx context.Context, inv *models.Invoice) error {
	query := `INSERT INTO invoices (tenant_id, client_id, number, status, issued_at, due_at, total, created_at, updated_at)
		VALUES (:tenant_id, :client_id, :number, :status, :issued_at, :due_at, :total, :created_at, :updated_at)`
	id, err := r.db.NamedInsert(ctx, query, inv)
	if err != nil {
		return fmt.Errorf("failed to create invoice: %w", err)
	}
	inv.ID = id
	return nil
}

// CreateItem inserts one line of an invoice
func (r *InvoiceRepository) CreateItem(ctx context.Context, item *models.InvoiceItem) error {
	query := `INSERT INTO invoice_items (tenant_id, invoice_id, booking_id, description, quantity, unit_price, amount)
		VALUES (:tenant_id, :invoice_id, :booking_id, :description, :quantity, :unit_price, :amount)`
	id, err := r.db.NamedInsert(ctx, query, item)
	if err != nil {
		return fmt.Errorf("failed to create invoice item: %w", err)
	}
	item.ID = id
	return nil
}

// ListByTenant returns a tenant's invoices
func (r *InvoiceRepository) ListByTenant(ctx context.Context, tenantID int64) ([]models.Invoice, error) {
	query := `SELECT id, tenant_id, client_id, number, status, issued_at, due_at, total, created_at, updated_at
		FROM invoices WHERE tenant_id = ? ORDER BY id`
	rows, err := selectAll[models.Invoice](ctx, r.db, query, tenantID)
	if err != nil {
		return nil, fmt.Errorf("failed to list invoices: %w", err)
	}
	return rows, nil
}

// ListItems returns the line items of every invoice in a tenant
func (r *InvoiceRepository) ListItems(ctx context.Context, tenantID int64) ([]models.InvoiceItem, error) {
	query := `SELECT id, tenant_id, invoice_id, booking_id, description, quantity, unit_price, amount
		FROM invoice_items WHERE tenant_id = ? ORDER BY invoice_id, id`
	rows, err := selectAll[models.InvoiceItem](ctx, r.db, query, tenantID)
	if err != nil {
		return nil, fmt.Errorf("failed to list invoice items: %w", err)
	}
	return rows, nil
}

// CreditRepository handles credit packages and client balances
type CreditRepository struct {
	db database.DBTX
}

// NewCreditRepository creates a new credit repository
func NewCreditRepository(db database.DBTX) *CreditRepository {
	return &CreditRepository{db: db}
}

// CreatePackage inserts a new credit package
func (r *CreditRepository) CreatePackage(ctx context.Context, p *models.CreditPackage) error {
	query := `INSERT INTO credit_packages (tenant_id, name, credits, price, valid_days, active, created_at)
		VALUES (:tenant_id, :name, :credits, :price, :valid_days, :active, :created_at)`
	id, err := r.db.NamedInsert(ctx, query, p)
	if err != nil {
		return fmt.Errorf("failed to create credit package: %w", err)
	}
	p.ID = id
	return nil
}

// GetPackage returns a credit package by ID, or nil
func (r *CreditRepository) GetPackage(ctx context.Context, id int64) (*models.CreditPackage, error) {
	query := "SELECT id, tenant_id, name, credits, price, valid_days, active, created_at FROM credit_packages WHERE id = ?"
	p, err := getOne[models.CreditPackage](ctx, r.db, query, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get credit package: %w", err)
	}
	return p, nil
}

// ListPackages returns a tenant's credit packages
func (r *CreditRepository) ListPackages(ctx context.Context, tenantID int64) ([]models.CreditPackage, error) {
	query := "SELECT id, tenant_id, name, credits, price, valid_days, active, created_at FROM credit_packages WHERE tenant_id = ? ORDER BY id"
	rows, err := selectAll[models.CreditPackage](ctx, r.db, query, tenantID)
	if err != nil {
		return nil, fmt.Errorf("failed to list credit packages: %w", err)
	}
	return rows, nil
}

// CreateClientCredit records credits bought by a client
func (r *CreditRepository) CreateClientCredit(ctx context.Context, c *models.ClientCredit) error {
	query := `INSERT INTO client_credits (tenant_id, client_id, package_id, remaining, purchased_at, expires_at)
		VALUES (:tenant_id, :client_id, :package_id, :remaining, :purchased_at, :expires_at)`
	id, err := r.db.NamedInsert(ctx, query, c)
	if err != nil {
		return fmt.Errorf("failed to create client credit: %w", err)
	}
	c.ID = id
	return nil
}

// ListClientCredits returns every client credit balance in a tenant
func (r *CreditRepository) ListClientCredits(ctx context.Context, tenantID int64) ([]models.ClientCredit, error) {
	query := `SELECT id, tenant_id, client_id, package_id, remaining, purchased_at, expires_at
		FROM client_credits WHERE tenant_id = ? ORDER BY id`
	rows, err := selectAll[models.ClientCredit](ctx, r.db, query, tenantID)
	if err != nil {
		return nil, fmt.Errorf("failed to list client credits: %w", err)
	}
	return rows, nil
}

// ExpenseRepository handles academy expenses
type ExpenseRepository struct {
	db database.DBTX
}

// NewExpenseRepository creates a new expense repository
func NewExpenseRepository(db database.DBTX) *ExpenseRepository {
	return &ExpenseRepository{db: db}
}

// Create inserts a new expense
func (r *ExpenseRepository) Create(ctx context.Context, e *models.Expense) error {
	query := `INSERT INTO expenses (tenant_id, category, description, amount, incurred_at, created_at)
		VALUES (:tenant_id, :category, :description, :amount, :incurred_at, :created_at)`
	id, err := r.db.NamedInsert(ctx, query, e)
	if err != nil {
		return fmt.Errorf("failed to create expense: %w", err)
	}
	e.ID = id
	return nil
}

// ListByTenant returns a tenant's expenses
func (r *ExpenseRepository) ListByTenant(ctx context.Context, tenantID int64) ([]models.Expense, error) {
	query := `SELECT id, tenant_id, category, description, amount, incurred_at, created_at
		FROM expenses WHERE tenant_id = ? ORDER BY incurred_at, id`
	rows, err := selectAll[models.Expense](ctx, r.db, query, tenantID)
	if err != nil {
		return nil, fmt.Errorf("failed to list expenses: %w", err)
	}
	return rows, nil
}
