// Package saga implements the booking write path: a sequence of local
// commits followed by asynchronous messages, standing in for the
// cross-service transaction that does not exist in this topology. The local
// invoice commit is the source of truth; linkage messages propagate it to
// the schedule service and may lag or, in the worst case, be lost (an
// accepted gap closed by reconciliation, not by rollback).
package saga

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/cinemahub/cinema-booking/internal/broker"
	"github.com/cinemahub/cinema-booking/internal/model"
)

// ErrInvalidRequest rejects a malformed booking before any write or publish
// is attempted.
var ErrInvalidRequest = errors.New("invalid booking request")

// InvoiceStore is the slice of the invoice repository the saga needs.
type InvoiceStore interface {
	Create(ctx context.Context, inv *model.Invoice) (*model.Invoice, error)
	FindByID(ctx context.Context, id uint64) (*model.Invoice, error)
	Delete(ctx context.Context, id uint64) error
}

// LineItemStore persists concession line items.
type LineItemStore interface {
	Create(ctx context.Context, item *model.InvoiceFood) error
	DeleteByInvoiceID(ctx context.Context, invoiceID uint64) error
}

// Publisher delivers fire-and-forget messages to a named queue.
// *broker.Publisher satisfies it.
type Publisher interface {
	Publish(ctx context.Context, queue string, payload any) error
}

// Booking coordinates invoice creation and cancellation.
type Booking struct {
	invoices  InvoiceStore
	lineItems LineItemStore
	publisher Publisher
}

// NewBooking wires the saga to its collaborators.
func NewBooking(invoices InvoiceStore, lineItems LineItemStore, publisher Publisher) *Booking {
	return &Booking{invoices: invoices, lineItems: lineItems, publisher: publisher}
}

// ShowContext names the screening the booked seats belong to. Together with
// a seat id it forms the natural key of a seat-slot in the schedule service.
type ShowContext struct {
	MovieID uint64 `json:"movie_id"`
	Date    string `json:"date"`
	Time    string `json:"time"`
}

// FoodOrder is one concession position of a booking request.
type FoodOrder struct {
	FoodID   uint64 `json:"food_id"`
	Quantity uint32 `json:"quantity"`
}

// BookingRequest is the payment request entering the saga.
type BookingRequest struct {
	CustomerID    uint64      `json:"customer_id"`
	EmployeeID    uint64      `json:"employee_id"`
	PromotionID   *uint64     `json:"promotion_id"`
	PaymentMethod string      `json:"payment_method"`
	Total         int64       `json:"total"`
	SeatIDs       []uint64    `json:"seat_ids"`
	Foods         []FoodOrder `json:"foods"`
	Show          ShowContext `json:"show"`
}

func (r *BookingRequest) validate() error {
	switch {
	case r == nil:
		return fmt.Errorf("%w: empty body", ErrInvalidRequest)
	case r.CustomerID == 0:
		return fmt.Errorf("%w: customer id is required", ErrInvalidRequest)
	case r.EmployeeID == 0:
		return fmt.Errorf("%w: employee id is required", ErrInvalidRequest)
	case r.Total <= 0:
		return fmt.Errorf("%w: total must be positive", ErrInvalidRequest)
	case len(r.SeatIDs) == 0:
		return fmt.Errorf("%w: at least one seat id is required", ErrInvalidRequest)
	case r.Show.MovieID == 0 || r.Show.Date == "" || r.Show.Time == "":
		return fmt.Errorf("%w: show context is incomplete", ErrInvalidRequest)
	}
	for _, seatID := range r.SeatIDs {
		if seatID == 0 {
			return fmt.Errorf("%w: seat id must be positive", ErrInvalidRequest)
		}
	}
	return nil
}

// BookingResult reports what the saga committed and propagated. Warnings
// carry partial failures (a line item that could not be written, a message
// that could not be handed to the broker); the invoice itself stands in
// either case.
type BookingResult struct {
	Invoice  *model.Invoice `json:"invoice"`
	SeatIDs  []uint64       `json:"seat_ids"`
	Warnings []string       `json:"warnings,omitempty"`
}

// Create runs the booking saga:
//
//	validate -> commit invoice -> commit line items -> publish one linkage
//	message per seat -> publish creation notification
//
// The invoice is committed before anything is published so that a broker
// outage leaves a reconcilable record instead of a paid-for booking with no
// trace. Line-item and publish failures after the commit degrade the result
// to partial success; nothing is rolled back.
func (b *Booking) Create(ctx context.Context, req *BookingRequest) (*BookingResult, error) {
	if err := req.validate(); err != nil {
		return nil, err
	}

	invoice, err := b.invoices.Create(ctx, &model.Invoice{
		CustomerID:    req.CustomerID,
		EmployeeID:    req.EmployeeID,
		PromotionID:   req.PromotionID,
		PaymentMethod: req.PaymentMethod,
		Total:         req.Total,
		Status:        model.StatusCompleted,
	})
	if err != nil {
		return nil, fmt.Errorf("create invoice: %w", err)
	}
	log.Printf("saga: invoice %d created for customer %d", invoice.ID, invoice.CustomerID)

	var warnings []string
	for _, food := range req.Foods {
		item := model.InvoiceFood{InvoiceID: invoice.ID, FoodID: food.FoodID, Quantity: food.Quantity}
		if err := b.lineItems.Create(ctx, &item); err != nil {
			log.Printf("saga: line item (invoice %d, food %d) failed: %v", invoice.ID, food.FoodID, err)
			warnings = append(warnings, fmt.Sprintf("line item for food %d was not recorded", food.FoodID))
		}
	}

	// One message per seat keeps payloads bounded and lets the consumer
	// apply each slot independently and idempotently.
	for _, seatID := range req.SeatIDs {
		msg := broker.ScheduleLinkage{
			MovieID:   req.Show.MovieID,
			Date:      req.Show.Date,
			Time:      req.Show.Time,
			SeatID:    seatID,
			InvoiceID: &invoice.ID,
		}
		if err := b.publisher.Publish(ctx, broker.LinkageQueue, msg); err != nil {
			warnings = append(warnings, fmt.Sprintf("seat %d linkage was not delivered", seatID))
		}
	}

	created := broker.InvoiceCreated{
		InvoiceID:  invoice.ID,
		CustomerID: invoice.CustomerID,
		EmployeeID: invoice.EmployeeID,
		Total:      invoice.Total,
		SeatIDs:    req.SeatIDs,
		CreatedAt:  invoice.CreatedAt.UTC().Format(time.RFC3339),
	}
	// Best-effort notification; the publisher already logged any failure.
	_ = b.publisher.Publish(ctx, broker.EntityCreatedQueue, created)

	return &BookingResult{Invoice: invoice, SeatIDs: req.SeatIDs, Warnings: warnings}, nil
}
