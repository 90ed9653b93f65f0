package saga_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cinemahub/cinema-booking/internal/broker"
	"github.com/cinemahub/cinema-booking/internal/model"
	"github.com/cinemahub/cinema-booking/internal/saga"
)

// recorder logs collaborator calls in program order so tests can assert the
// saga's sequencing, not just its final state.
type recorder struct {
	mu    sync.Mutex
	calls []string
}

func (r *recorder) add(call string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.calls = append(r.calls, call)
}

func (r *recorder) log() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.calls...)
}

type fakeInvoices struct {
	rec       *recorder
	createErr error
	findErr   error
	deleteErr error
	created   []model.Invoice
}

func (f *fakeInvoices) Create(_ context.Context, inv *model.Invoice) (*model.Invoice, error) {
	f.rec.add("invoice.create")
	if f.createErr != nil {
		return nil, f.createErr
	}
	stored := *inv
	stored.ID = uint64(len(f.created) + 101)
	stored.CreatedAt = time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)
	f.created = append(f.created, stored)
	return &stored, nil
}

func (f *fakeInvoices) FindByID(_ context.Context, id uint64) (*model.Invoice, error) {
	f.rec.add("invoice.find")
	if f.findErr != nil {
		return nil, f.findErr
	}
	return &model.Invoice{ID: id, Status: model.StatusCompleted}, nil
}

func (f *fakeInvoices) Delete(_ context.Context, _ uint64) error {
	f.rec.add("invoice.delete")
	return f.deleteErr
}

type fakeLineItems struct {
	rec       *recorder
	createErr error
	deleteErr error
	items     []model.InvoiceFood
}

func (f *fakeLineItems) Create(_ context.Context, item *model.InvoiceFood) error {
	f.rec.add("lineitem.create")
	if f.createErr != nil {
		return f.createErr
	}
	f.items = append(f.items, *item)
	return nil
}

func (f *fakeLineItems) DeleteByInvoiceID(_ context.Context, _ uint64) error {
	f.rec.add("lineitem.delete")
	return f.deleteErr
}

type published struct {
	queue   string
	payload any
}

type fakePublisher struct {
	rec  *recorder
	err  error
	msgs []published
}

func (f *fakePublisher) Publish(_ context.Context, queue string, payload any) error {
	f.rec.add("publish:" + queue)
	if f.err != nil {
		return f.err
	}
	f.msgs = append(f.msgs, published{queue: queue, payload: payload})
	return nil
}

func newFixture() (*saga.Booking, *recorder, *fakeInvoices, *fakeLineItems, *fakePublisher) {
	rec := &recorder{}
	invoices := &fakeInvoices{rec: rec}
	lineItems := &fakeLineItems{rec: rec}
	publisher := &fakePublisher{rec: rec}
	return saga.NewBooking(invoices, lineItems, publisher), rec, invoices, lineItems, publisher
}

func validRequest() *saga.BookingRequest {
	return &saga.BookingRequest{
		CustomerID:    7,
		EmployeeID:    3,
		PaymentMethod: "CASH",
		Total:         250000,
		SeatIDs:       []uint64{12, 13},
		Foods:         []saga.FoodOrder{{FoodID: 5, Quantity: 2}},
		Show:          saga.ShowContext{MovieID: 9, Date: "2024-06-15", Time: "19:30:00"},
	}
}

func linkagesOf(p *fakePublisher) []broker.ScheduleLinkage {
	var out []broker.ScheduleLinkage
	for _, m := range p.msgs {
		if m.queue == broker.LinkageQueue {
			out = append(out, m.payload.(broker.ScheduleLinkage))
		}
	}
	return out
}

func TestCreateBooking(t *testing.T) {
	b, _, invoices, lineItems, publisher := newFixture()

	result, err := b.Create(context.Background(), validRequest())
	require.NoError(t, err)
	require.NotNil(t, result.Invoice)
	assert.Empty(t, result.Warnings)

	// Exactly one invoice, committed as Completed.
	require.Len(t, invoices.created, 1)
	assert.Equal(t, model.StatusCompleted, invoices.created[0].Status)
	assert.EqualValues(t, 7, invoices.created[0].CustomerID)
	assert.EqualValues(t, 250000, invoices.created[0].Total)

	// Exactly one line item, bound to the new invoice.
	require.Len(t, lineItems.items, 1)
	assert.Equal(t, invoices.created[0].ID, lineItems.items[0].InvoiceID)
	assert.EqualValues(t, 5, lineItems.items[0].FoodID)
	assert.EqualValues(t, 2, lineItems.items[0].Quantity)

	// One linkage message per seat, each naming the new invoice id.
	linkages := linkagesOf(publisher)
	require.Len(t, linkages, 2)
	seats := []uint64{linkages[0].SeatID, linkages[1].SeatID}
	assert.ElementsMatch(t, []uint64{12, 13}, seats)
	for _, l := range linkages {
		require.NotNil(t, l.InvoiceID)
		assert.Equal(t, invoices.created[0].ID, *l.InvoiceID)
		assert.EqualValues(t, 9, l.MovieID)
		assert.Equal(t, "2024-06-15", l.Date)
		assert.Equal(t, "19:30:00", l.Time)
	}
}

func TestCreateBookingCommitsBeforePublishing(t *testing.T) {
	b, rec, _, _, _ := newFixture()

	_, err := b.Create(context.Background(), validRequest())
	require.NoError(t, err)

	log := rec.log()
	require.NotEmpty(t, log)
	assert.Equal(t, "invoice.create", log[0])
	assert.Equal(t, "lineitem.create", log[1])
	for _, call := range log[2:] {
		assert.Contains(t, call, "publish:")
	}
}

func TestCreateBookingNilRequestWritesNothing(t *testing.T) {
	b, rec, _, _, _ := newFixture()

	result, err := b.Create(context.Background(), nil)
	assert.Nil(t, result)
	assert.ErrorIs(t, err, saga.ErrInvalidRequest)
	assert.Empty(t, rec.log(), "invalid request must touch no collaborator")
}

func TestCreateBookingValidation(t *testing.T) {
	cases := []struct {
		name   string
		mutate func(r *saga.BookingRequest)
	}{
		{"missing customer", func(r *saga.BookingRequest) { r.CustomerID = 0 }},
		{"missing employee", func(r *saga.BookingRequest) { r.EmployeeID = 0 }},
		{"non-positive total", func(r *saga.BookingRequest) { r.Total = 0 }},
		{"no seats", func(r *saga.BookingRequest) { r.SeatIDs = nil }},
		{"zero seat id", func(r *saga.BookingRequest) { r.SeatIDs = []uint64{12, 0} }},
		{"incomplete show", func(r *saga.BookingRequest) { r.Show.Date = "" }},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			b, rec, _, _, _ := newFixture()
			req := validRequest()
			tc.mutate(req)
			_, err := b.Create(context.Background(), req)
			assert.ErrorIs(t, err, saga.ErrInvalidRequest)
			assert.Empty(t, rec.log())
		})
	}
}

func TestCreateBookingLineItemFailureIsPartialSuccess(t *testing.T) {
	b, _, invoices, lineItems, publisher := newFixture()
	lineItems.createErr = errors.New("deadlock")

	result, err := b.Create(context.Background(), validRequest())
	require.NoError(t, err, "invoice commit stands despite line item failure")
	require.Len(t, invoices.created, 1)
	require.Len(t, result.Warnings, 1)
	assert.Contains(t, result.Warnings[0], "food 5")

	// Linkage still propagates: the seats were paid for.
	assert.Len(t, linkagesOf(publisher), 2)
}

func TestCreateBookingPublishFailureDoesNotFailSaga(t *testing.T) {
	b, _, invoices, _, publisher := newFixture()
	publisher.err = errors.New("broker unavailable")

	result, err := b.Create(context.Background(), validRequest())
	require.NoError(t, err)
	require.Len(t, invoices.created, 1)
	assert.Len(t, result.Warnings, 2, "one warning per undelivered seat linkage")
}

func TestCreateBookingPersistenceFailureAborts(t *testing.T) {
	b, rec, invoices, _, publisher := newFixture()
	cause := errors.New("disk full")
	invoices.createErr = cause

	result, err := b.Create(context.Background(), validRequest())
	assert.Nil(t, result)
	assert.ErrorIs(t, err, cause)
	assert.Equal(t, []string{"invoice.create"}, rec.log(), "nothing runs after a failed commit")
	assert.Empty(t, publisher.msgs)
}
