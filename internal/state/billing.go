package state

import (
	"context"
	"fmt"
	"time"

	"swimschool/internal/models"
	"swimschool/internal/validation"
)

// AddInvoice creates an invoice and its line items. Item amounts and the
// invoice total are computed here. Like AddBooking the writes are separate.
func (s *Store) AddInvoice(ctx context.Context, inv models.Invoice, items []models.InvoiceItem) (int64, error) {
	tenant, err := s.requireTenant()
	if err != nil {
		return 0, err
	}
	if err := validation.Struct(inv); err != nil {
		return 0, err
	}
	for _, item := range items {
		if err := validation.Struct(item); err != nil {
			return 0, err
		}
	}

	now := s.now()
	inv.TenantID = tenant.ID
	inv.CreatedAt = now
	inv.UpdatedAt = now
	if inv.IssuedAt.IsZero() {
		inv.IssuedAt = now
	}
	if inv.Status == "" {
		inv.Status = models.InvoiceDraft
	}
	inv.Total = 0
	for i := range items {
		items[i].Amount = float64(items[i].Quantity) * items[i].UnitPrice
		inv.Total += items[i].Amount
	}

	if err := s.repos.Invoices.Create(ctx, &inv); err != nil {
		return 0, err
	}
	for i := range items {
		items[i].TenantID = tenant.ID
		items[i].InvoiceID = inv.ID
		if err := s.repos.Invoices.CreateItem(ctx, &items[i]); err != nil {
			return inv.ID, fmt.Errorf("invoice %d created but item %d failed: %w", inv.ID, i, err)
		}
	}

	s.audit(ctx, tenant.ID, models.AuditCreate, "invoice", inv.ID, inv.Number)
	return inv.ID, s.RefreshData(ctx)
}

// AddExpense records a business expense
func (s *Store) AddExpense(ctx context.Context, e models.Expense) (int64, error) {
	tenant, err := s.requireTenant()
	if err != nil {
		return 0, err
	}
	if err := validation.Struct(e); err != nil {
		return 0, err
	}

	now := s.now()
	e.TenantID = tenant.ID
	e.CreatedAt = now
	if e.IncurredAt.IsZero() {
		e.IncurredAt = now
	}

	if err := s.repos.Expenses.Create(ctx, &e); err != nil {
		return 0, err
	}

	s.audit(ctx, tenant.ID, models.AuditCreate, "expense", e.ID, e.Category)
	return e.ID, s.RefreshData(ctx)
}

// AddCreditPackage adds a prepaid lesson bundle to the catalog
func (s *Store) AddCreditPackage(ctx context.Context, p models.CreditPackage) (int64, error) {
	tenant, err := s.requireTenant()
	if err != nil {
		return 0, err
	}
	if err := validation.Struct(p); err != nil {
		return 0, err
	}

	p.TenantID = tenant.ID
	p.CreatedAt = s.now()

	if err := s.repos.Credits.CreatePackage(ctx, &p); err != nil {
		return 0, err
	}

	s.audit(ctx, tenant.ID, models.AuditCreate, "credit_package", p.ID, p.Name)
	return p.ID, s.RefreshData(ctx)
}

// AddClientCredit sells a package to a client. The client starts with the
// package's full credit count, expiring after its validity period if it has one.
func (s *Store) AddClientCredit(ctx context.Context, clientID, packageID int64) (int64, error) {
	tenant, err := s.requireTenant()
	if err != nil {
		return 0, err
	}

	pkg, err := s.repos.Credits.GetPackage(ctx, packageID)
	if err != nil {
		return 0, err
	}
	if pkg == nil || pkg.TenantID != tenant.ID {
		return 0, fmt.Errorf("credit package %d: %w", packageID, ErrNotFound)
	}
	if _, err := s.clientRow(ctx, tenant.ID, clientID); err != nil {
		return 0, err
	}

	now := s.now()
	c := models.ClientCredit{
		TenantID:    tenant.ID,
		ClientID:    clientID,
		PackageID:   packageID,
		Remaining:   pkg.Credits,
		PurchasedAt: now,
	}
	if pkg.ValidDays > 0 {
		expires := now.Add(time.Duration(pkg.ValidDays) * 24 * time.Hour)
		c.ExpiresAt = &expires
	}

	if err := s.repos.Credits.CreateClientCredit(ctx, &c); err != nil {
		return 0, err
	}

	s.audit(ctx, tenant.ID, models.AuditCreate, "client_credit", c.ID, pkg.Name)
	return c.ID, s.RefreshData(ctx)
}
