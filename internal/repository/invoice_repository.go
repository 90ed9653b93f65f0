package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/cinemahub/cinema-booking/internal/model"
)

// InvoiceRepo provides CRUD operations for invoices. Each operation is
// transactional at single-row granularity only; the saga layer sequences
// multi-entity work and accepts the gaps that come with that.
type InvoiceRepo struct {
	db *sql.DB
}

// NewInvoiceRepo returns an InvoiceRepo bound to the given database.
func NewInvoiceRepo(db *sql.DB) *InvoiceRepo { return &InvoiceRepo{db: db} }

const invoiceColumns = `id, customer_id, employee_id, promotion_id, created_at, payment_method, total, status`

func scanInvoice(row interface{ Scan(...any) error }) (*model.Invoice, error) {
	var inv model.Invoice
	var promo sql.NullInt64
	err := row.Scan(&inv.ID, &inv.CustomerID, &inv.EmployeeID, &promo,
		&inv.CreatedAt, &inv.PaymentMethod, &inv.Total, &inv.Status)
	if err != nil {
		return nil, err
	}
	if promo.Valid {
		p := uint64(promo.Int64)
		inv.PromotionID = &p
	}
	return &inv, nil
}

// Create inserts a new invoice and returns the stored row, including the
// generated id and database-side timestamp.
func (r *InvoiceRepo) Create(ctx context.Context, inv *model.Invoice) (*model.Invoice, error) {
	const q = `INSERT INTO invoices (customer_id, employee_id, promotion_id, payment_method, total, status)
	           VALUES (?, ?, ?, ?, ?, ?)`
	var promo any
	if inv.PromotionID != nil {
		promo = *inv.PromotionID
	}
	result, err := r.db.ExecContext(ctx, q, inv.CustomerID, inv.EmployeeID, promo,
		inv.PaymentMethod, inv.Total, inv.Status)
	if err != nil {
		return nil, err
	}
	id, err := result.LastInsertId()
	if err != nil {
		return nil, err
	}
	return r.FindByID(ctx, uint64(id))
}

// FindByID returns the invoice with the given id, or ErrInvoiceNotFound.
func (r *InvoiceRepo) FindByID(ctx context.Context, id uint64) (*model.Invoice, error) {
	const q = `SELECT ` + invoiceColumns + ` FROM invoices WHERE id = ?`
	inv, err := scanInvoice(r.db.QueryRowContext(ctx, q, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrInvoiceNotFound
	}
	return inv, err
}

// FindAll returns every invoice, newest first.
func (r *InvoiceRepo) FindAll(ctx context.Context) ([]model.Invoice, error) {
	const q = `SELECT ` + invoiceColumns + ` FROM invoices ORDER BY id DESC`
	return r.list(ctx, q)
}

// FindByCustomer returns every invoice belonging to a customer, newest first.
func (r *InvoiceRepo) FindByCustomer(ctx context.Context, customerID uint64) ([]model.Invoice, error) {
	const q = `SELECT ` + invoiceColumns + ` FROM invoices WHERE customer_id = ? ORDER BY id DESC`
	return r.list(ctx, q, customerID)
}

func (r *InvoiceRepo) list(ctx context.Context, q string, args ...any) ([]model.Invoice, error) {
	rows, err := r.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()
	var out []model.Invoice
	for rows.Next() {
		inv, err := scanInvoice(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *inv)
	}
	return out, rows.Err()
}

// Delete removes the invoice row. Deleting an id that no longer exists
// returns ErrInvoiceNotFound so the cancellation saga can report which step
// went wrong.
func (r *InvoiceRepo) Delete(ctx context.Context, id uint64) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM invoices WHERE id = ?`, id)
	if err != nil {
		return err
	}
	if n, err := result.RowsAffected(); err == nil && n == 0 {
		return ErrInvoiceNotFound
	}
	return nil
}
