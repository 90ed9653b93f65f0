package saga_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cinemahub/cinema-booking/internal/broker"
	"github.com/cinemahub/cinema-booking/internal/repository"
	"github.com/cinemahub/cinema-booking/internal/saga"
)

func cancelRequest() saga.CancelRequest {
	return saga.CancelRequest{
		InvoiceID: 101,
		MovieID:   9,
		Date:      "2024-06-15",
		Time:      "19:30:00",
		SeatID:    12,
	}
}

// Ordering is the contract here: line items before invoice before unlink,
// verified through the call log rather than final state.
func TestCancelOrdering(t *testing.T) {
	b, rec, _, _, publisher := newFixture()

	err := b.Cancel(context.Background(), cancelRequest())
	require.NoError(t, err)

	assert.Equal(t, []string{
		"invoice.find",
		"lineitem.delete",
		"invoice.delete",
		"publish:" + broker.LinkageQueue,
	}, rec.log())

	require.Len(t, publisher.msgs, 1)
	unlink := publisher.msgs[0].payload.(broker.ScheduleLinkage)
	assert.Nil(t, unlink.InvoiceID, "unlink clears the invoice reference")
	assert.EqualValues(t, 12, unlink.SeatID)
	assert.EqualValues(t, 9, unlink.MovieID)
}

// A cancel missing any part of the seat context must delete nothing: the
// unlink it would publish could never be applied, so the deletes would
// orphan the seat linkage.
func TestCancelValidation(t *testing.T) {
	cases := []struct {
		name   string
		mutate func(r *saga.CancelRequest)
	}{
		{"zero invoice id", func(r *saga.CancelRequest) { r.InvoiceID = 0 }},
		{"missing movie id", func(r *saga.CancelRequest) { r.MovieID = 0 }},
		{"missing seat id", func(r *saga.CancelRequest) { r.SeatID = 0 }},
		{"missing date", func(r *saga.CancelRequest) { r.Date = "" }},
		{"missing time", func(r *saga.CancelRequest) { r.Time = "" }},
		{"invoice id only", func(r *saga.CancelRequest) { *r = saga.CancelRequest{InvoiceID: 101} }},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			b, rec, _, _, publisher := newFixture()
			req := cancelRequest()
			tc.mutate(&req)
			err := b.Cancel(context.Background(), req)
			assert.ErrorIs(t, err, saga.ErrInvalidRequest)
			assert.Empty(t, rec.log(), "invalid request must touch no collaborator")
			assert.Empty(t, publisher.msgs)
		})
	}
}

func TestCancelInvoiceNotFound(t *testing.T) {
	b, rec, invoices, _, _ := newFixture()
	invoices.findErr = repository.ErrInvoiceNotFound

	err := b.Cancel(context.Background(), cancelRequest())

	var step *saga.StepError
	require.ErrorAs(t, err, &step)
	assert.Equal(t, saga.StepFindInvoice, step.Step)
	assert.ErrorIs(t, err, repository.ErrInvoiceNotFound)
	assert.Equal(t, []string{"invoice.find"}, rec.log(), "no deletes, no publish")
}

func TestCancelLineItemDeleteFailure(t *testing.T) {
	b, rec, _, lineItems, _ := newFixture()
	lineItems.deleteErr = errors.New("lock timeout")

	err := b.Cancel(context.Background(), cancelRequest())

	var step *saga.StepError
	require.ErrorAs(t, err, &step)
	assert.Equal(t, saga.StepDeleteLineItems, step.Step)
	assert.Equal(t, []string{"invoice.find", "lineitem.delete"}, rec.log(),
		"invoice survives and no unlink is sent when an earlier step fails")
}

func TestCancelInvoiceDeleteFailure(t *testing.T) {
	b, rec, invoices, _, _ := newFixture()
	invoices.deleteErr = errors.New("constraint violation")

	err := b.Cancel(context.Background(), cancelRequest())

	var step *saga.StepError
	require.ErrorAs(t, err, &step)
	assert.Equal(t, saga.StepDeleteInvoice, step.Step)
	assert.Equal(t, []string{"invoice.find", "lineitem.delete", "invoice.delete"}, rec.log())
}

func TestCancelUnlinkPublishFailureIsReported(t *testing.T) {
	b, rec, _, _, publisher := newFixture()
	publisher.err = errors.New("broker unavailable")

	err := b.Cancel(context.Background(), cancelRequest())

	var step *saga.StepError
	require.ErrorAs(t, err, &step)
	assert.Equal(t, saga.StepPublishUnlink, step.Step)
	// The deletes happened; only propagation is pending.
	assert.Equal(t, []string{
		"invoice.find",
		"lineitem.delete",
		"invoice.delete",
		"publish:" + broker.LinkageQueue,
	}, rec.log())
}
