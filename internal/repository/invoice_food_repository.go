package repository

import (
	"context"
	"database/sql"

	"github.com/cinemahub/cinema-booking/internal/model"
)

// InvoiceFoodRepo stores concession line items. Lifetime is bounded by the
// owning invoice: cancellation deletes line items before the invoice.
type InvoiceFoodRepo struct {
	db *sql.DB
}

// NewInvoiceFoodRepo returns an InvoiceFoodRepo bound to the given database.
func NewInvoiceFoodRepo(db *sql.DB) *InvoiceFoodRepo { return &InvoiceFoodRepo{db: db} }

// Create inserts one line item and populates its generated id.
func (r *InvoiceFoodRepo) Create(ctx context.Context, item *model.InvoiceFood) error {
	const q = `INSERT INTO invoice_foods (invoice_id, food_id, quantity) VALUES (?, ?, ?)`
	result, err := r.db.ExecContext(ctx, q, item.InvoiceID, item.FoodID, item.Quantity)
	if err != nil {
		return err
	}
	id, err := result.LastInsertId()
	if err != nil {
		return err
	}
	item.ID = uint64(id)
	return nil
}

// FindByInvoiceID lists the line items attached to an invoice.
func (r *InvoiceFoodRepo) FindByInvoiceID(ctx context.Context, invoiceID uint64) ([]model.InvoiceFood, error) {
	const q = `SELECT id, invoice_id, food_id, quantity FROM invoice_foods WHERE invoice_id = ?`
	rows, err := r.db.QueryContext(ctx, q, invoiceID)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()
	var out []model.InvoiceFood
	for rows.Next() {
		var f model.InvoiceFood
		if err := rows.Scan(&f.ID, &f.InvoiceID, &f.FoodID, &f.Quantity); err != nil {
			return nil, err
		}
		out = append(out, f)
	}
	return out, rows.Err()
}

// DeleteByInvoiceID removes every line item belonging to an invoice. An
// invoice without line items deletes zero rows, which is not an error.
func (r *InvoiceFoodRepo) DeleteByInvoiceID(ctx context.Context, invoiceID uint64) error {
	_, err := r.db.ExecContext(ctx, `DELETE FROM invoice_foods WHERE invoice_id = ?`, invoiceID)
	return err
}
