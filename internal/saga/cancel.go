package saga

import (
	"context"
	"fmt"
	"log"

	"github.com/cinemahub/cinema-booking/internal/broker"
)

// Step identifies where in the cancellation sequence a failure occurred.
type Step string

const (
	StepFindInvoice     Step = "find-invoice"
	StepDeleteLineItems Step = "delete-line-items"
	StepDeleteInvoice   Step = "delete-invoice"
	StepPublishUnlink   Step = "publish-unlink"
)

// StepError reports which cancellation step failed and why. It unwraps to
// the underlying cause so callers can still match repository sentinels with
// errors.Is.
type StepError struct {
	Step Step
	Err  error
}

func (e *StepError) Error() string { return fmt.Sprintf("cancel %s: %v", e.Step, e.Err) }
func (e *StepError) Unwrap() error { return e.Err }

// CancelRequest identifies the invoice to tear down and the seat-slot to
// unlink. The seat context mirrors the linkage message that booked it.
type CancelRequest struct {
	InvoiceID uint64
	MovieID   uint64
	Date      string
	Time      string
	SeatID    uint64
}

// Every field is required: without a complete seat context the unlink
// message could never be applied, leaving the seat pointing at a deleted
// invoice.
func (r CancelRequest) validate() error {
	switch {
	case r.InvoiceID == 0:
		return fmt.Errorf("%w: invoice id is required", ErrInvalidRequest)
	case r.MovieID == 0 || r.SeatID == 0 || r.Date == "" || r.Time == "":
		return fmt.Errorf("%w: seat context is incomplete", ErrInvalidRequest)
	}
	return nil
}

// Cancel tears a booking down in strict referential order: line items, then
// the invoice, then the unlink message. The message goes last so a failed
// local step never leaves a freed seat pointing at a still-existing invoice.
// Every failure comes back as a *StepError naming the step; an unlink
// publish failure is reported the same way but the completed deletes stand,
// consistent with messages never aborting a saga.
func (b *Booking) Cancel(ctx context.Context, req CancelRequest) error {
	if err := req.validate(); err != nil {
		return err
	}

	if _, err := b.invoices.FindByID(ctx, req.InvoiceID); err != nil {
		return &StepError{Step: StepFindInvoice, Err: err}
	}
	if err := b.lineItems.DeleteByInvoiceID(ctx, req.InvoiceID); err != nil {
		return &StepError{Step: StepDeleteLineItems, Err: err}
	}
	if err := b.invoices.Delete(ctx, req.InvoiceID); err != nil {
		return &StepError{Step: StepDeleteInvoice, Err: err}
	}

	unlink := broker.ScheduleLinkage{
		MovieID:   req.MovieID,
		Date:      req.Date,
		Time:      req.Time,
		SeatID:    req.SeatID,
		InvoiceID: nil,
	}
	if err := b.publisher.Publish(ctx, broker.LinkageQueue, unlink); err != nil {
		return &StepError{Step: StepPublishUnlink, Err: err}
	}
	log.Printf("saga: invoice %d cancelled, seat %d unlinked", req.InvoiceID, req.SeatID)
	return nil
}
