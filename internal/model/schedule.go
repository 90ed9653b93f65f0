package model

// Schedule represents one bookable seat-slot: a seat offered for a movie on
// a given date and time. Rows are owned by the schedule service; the only
// cross-service mutation allowed is setting or clearing InvoiceID, and that
// happens exclusively through linkage messages, never by direct writes.
//
// Date uses "2006-01-02" and Time "15:04:05", matching the DATE and TIME
// columns and the wire format of linkage messages.
type Schedule struct {
	ID        uint64  `json:"id"`         // schedules.id
	MovieID   uint64  `json:"movie_id"`   // schedules.movie_id
	Date      string  `json:"date"`       // schedules.date
	Time      string  `json:"time"`       // schedules.time
	SeatID    uint64  `json:"seat_id"`    // schedules.seat_id
	InvoiceID *uint64 `json:"invoice_id"` // schedules.invoice_id (nullable)
}
