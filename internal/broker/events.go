package broker

// ScheduleLinkage tells the schedule service to point one seat-slot at an
// invoice, or away from one. InvoiceID nil means unlink. The message names
// the slot by its natural key (movie, date, time, seat) so the consumer can
// apply it as a plain set-to-value update: re-delivery of the same message
// is a no-op, which is what makes at-least-once delivery safe here.
type ScheduleLinkage struct {
	MovieID   uint64  `json:"movie_id"`
	Date      string  `json:"date"`
	Time      string  `json:"time"`
	SeatID    uint64  `json:"seat_id"`
	InvoiceID *uint64 `json:"invoice_id"`
}

// InvoiceCreated is published on EntityCreatedQueue after an invoice commits
// so that downstream consumers can mirror the sale without querying back.
type InvoiceCreated struct {
	InvoiceID  uint64   `json:"invoice_id"`
	CustomerID uint64   `json:"customer_id"`
	EmployeeID uint64   `json:"employee_id"`
	Total      int64    `json:"total"`
	SeatIDs    []uint64 `json:"seat_ids"`
	CreatedAt  string   `json:"created_at"`
}
