package repository

import (
	"context"
	"database/sql"

	"github.com/cinemahub/cinema-booking/internal/model"
)

// ScheduleRepo stores seat-slot rows. The read side feeds the aggregation
// engine; the only write applied on behalf of a peer is SetInvoiceID, driven
// exclusively by linkage messages.
type ScheduleRepo struct {
	db *sql.DB
}

// NewScheduleRepo returns a ScheduleRepo bound to the given database.
func NewScheduleRepo(db *sql.DB) *ScheduleRepo { return &ScheduleRepo{db: db} }

const scheduleColumns = `id, movie_id, date, time, seat_id, invoice_id`

func scanSchedule(row interface{ Scan(...any) error }) (*model.Schedule, error) {
	var s model.Schedule
	var inv sql.NullInt64
	if err := row.Scan(&s.ID, &s.MovieID, &s.Date, &s.Time, &s.SeatID, &inv); err != nil {
		return nil, err
	}
	if inv.Valid {
		v := uint64(inv.Int64)
		s.InvoiceID = &v
	}
	return &s, nil
}

// FindAll returns every seat-slot ordered by date, time and seat.
func (r *ScheduleRepo) FindAll(ctx context.Context) ([]model.Schedule, error) {
	const q = `SELECT ` + scheduleColumns + ` FROM schedules ORDER BY date, time, seat_id`
	return r.list(ctx, q)
}

// FindByMovieID returns every seat-slot for a movie.
func (r *ScheduleRepo) FindByMovieID(ctx context.Context, movieID uint64) ([]model.Schedule, error) {
	const q = `SELECT ` + scheduleColumns + ` FROM schedules WHERE movie_id = ? ORDER BY date, time, seat_id`
	return r.list(ctx, q, movieID)
}

// FindByInvoiceID returns the seat-slots currently linked to an invoice.
func (r *ScheduleRepo) FindByInvoiceID(ctx context.Context, invoiceID uint64) ([]model.Schedule, error) {
	const q = `SELECT ` + scheduleColumns + ` FROM schedules WHERE invoice_id = ?`
	return r.list(ctx, q, invoiceID)
}

func (r *ScheduleRepo) list(ctx context.Context, q string, args ...any) ([]model.Schedule, error) {
	rows, err := r.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()
	var out []model.Schedule
	for rows.Next() {
		s, err := scanSchedule(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *s)
	}
	return out, rows.Err()
}

// CreateBulk inserts one seat-slot per seat id for the given movie, date and
// time, all unlinked. Used when a screening is opened for sale.
func (r *ScheduleRepo) CreateBulk(ctx context.Context, movieID uint64, date, timeOfDay string, seatIDs []uint64) error {
	if len(seatIDs) == 0 {
		return nil
	}
	query := `INSERT INTO schedules (movie_id, date, time, seat_id, invoice_id) VALUES `
	args := make([]any, 0, len(seatIDs)*4)
	for i, seatID := range seatIDs {
		if i > 0 {
			query += ","
		}
		query += "(?, ?, ?, ?, NULL)"
		args = append(args, movieID, date, timeOfDay, seatID)
	}
	_, err := r.db.ExecContext(ctx, query, args...)
	return err
}

// SetInvoiceID points the slot identified by its natural key at invoiceID,
// or clears the link when invoiceID is nil. The update is set-to-value, so
// applying the same message twice leaves the row in the same state; that is
// what makes redelivered linkage messages safe.
func (r *ScheduleRepo) SetInvoiceID(ctx context.Context, movieID uint64, date, timeOfDay string, seatID uint64, invoiceID *uint64) error {
	const q = `UPDATE schedules SET invoice_id = ? WHERE movie_id = ? AND date = ? AND time = ? AND seat_id = ?`
	var inv any
	if invoiceID != nil {
		inv = *invoiceID
	}
	result, err := r.db.ExecContext(ctx, q, inv, movieID, date, timeOfDay, seatID)
	if err != nil {
		return err
	}
	// RowsAffected is 0 both for a missing row and for a no-op re-apply with
	// MySQL's default CLIENT_FOUND_ROWS off, so existence needs its own probe.
	if n, err := result.RowsAffected(); err == nil && n == 0 {
		var id uint64
		probe := r.db.QueryRowContext(ctx,
			`SELECT id FROM schedules WHERE movie_id = ? AND date = ? AND time = ? AND seat_id = ?`,
			movieID, date, timeOfDay, seatID)
		if err := probe.Scan(&id); err == sql.ErrNoRows {
			return ErrScheduleNotFound
		} else if err != nil {
			return err
		}
	}
	return nil
}
