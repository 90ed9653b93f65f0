package queue

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cinemahub/cinema-booking/internal/broker"
	"github.com/cinemahub/cinema-booking/internal/repository"
)

// memApplier mimics the set-to-value semantics of the schedule table.
type memApplier struct {
	applied int
	slots   map[string]*uint64
}

func newMemApplier(keys ...string) *memApplier {
	slots := make(map[string]*uint64, len(keys))
	for _, k := range keys {
		slots[k] = nil
	}
	return &memApplier{slots: slots}
}

func slotKey(movieID uint64, date, timeOfDay string, seatID uint64) string {
	return fmt.Sprintf("%d|%s|%s|%d", movieID, date, timeOfDay, seatID)
}

func (m *memApplier) SetInvoiceID(_ context.Context, movieID uint64, date, timeOfDay string, seatID uint64, invoiceID *uint64) error {
	m.applied++
	key := slotKey(movieID, date, timeOfDay, seatID)
	if _, ok := m.slots[key]; !ok {
		return repository.ErrScheduleNotFound
	}
	m.slots[key] = invoiceID
	return nil
}

func marshal(t *testing.T, msg broker.ScheduleLinkage) []byte {
	t.Helper()
	body, err := json.Marshal(msg)
	require.NoError(t, err)
	return body
}

func TestHandleLinkageLinksSeat(t *testing.T) {
	applier := newMemApplier(slotKey(9, "2024-06-15", "19:30:00", 12))
	invoiceID := uint64(101)
	body := marshal(t, broker.ScheduleLinkage{
		MovieID: 9, Date: "2024-06-15", Time: "19:30:00", SeatID: 12, InvoiceID: &invoiceID,
	})

	require.NoError(t, handleLinkage(context.Background(), applier, body))
	linked := applier.slots[slotKey(9, "2024-06-15", "19:30:00", 12)]
	require.NotNil(t, linked)
	assert.EqualValues(t, 101, *linked)
}

// Redelivery safety: applying the same unlink twice leaves the seat
// unlinked both times and errors neither time.
func TestHandleLinkageUnlinkIsIdempotent(t *testing.T) {
	key := slotKey(9, "2024-06-15", "19:30:00", 12)
	applier := newMemApplier(key)
	invoiceID := uint64(101)
	applier.slots[key] = &invoiceID

	unlink := marshal(t, broker.ScheduleLinkage{
		MovieID: 9, Date: "2024-06-15", Time: "19:30:00", SeatID: 12, InvoiceID: nil,
	})

	require.NoError(t, handleLinkage(context.Background(), applier, unlink))
	assert.Nil(t, applier.slots[key])

	require.NoError(t, handleLinkage(context.Background(), applier, unlink))
	assert.Nil(t, applier.slots[key])
	assert.Equal(t, 2, applier.applied)
}

// Undecodable and incomplete messages are poison: they can never succeed,
// so they must carry errBadMessage and be dropped rather than requeued.
func TestHandleLinkageMalformedBody(t *testing.T) {
	applier := newMemApplier()
	err := handleLinkage(context.Background(), applier, []byte(`{not json`))
	assert.ErrorIs(t, err, errBadMessage)
	assert.Zero(t, applier.applied, "nothing is applied from an undecodable message")
}

func TestHandleLinkageIncompleteMessage(t *testing.T) {
	applier := newMemApplier()
	body := marshal(t, broker.ScheduleLinkage{MovieID: 9, SeatID: 12})
	err := handleLinkage(context.Background(), applier, body)
	assert.ErrorIs(t, err, errBadMessage)
	assert.Zero(t, applier.applied)
}

// A message for a slot that does not exist is dropped, not retried: the row
// will not materialize on redelivery.
func TestHandleLinkageMissingSlotIsDropped(t *testing.T) {
	applier := newMemApplier()
	invoiceID := uint64(101)
	body := marshal(t, broker.ScheduleLinkage{
		MovieID: 9, Date: "2024-06-15", Time: "19:30:00", SeatID: 77, InvoiceID: &invoiceID,
	})
	assert.NoError(t, handleLinkage(context.Background(), applier, body))
}

// An infrastructure failure in the applier is not poison: the error must
// propagate without errBadMessage so the delivery gets requeued and the
// linkage is retried once the database is back.
func TestHandleLinkageApplierFailureIsRetryable(t *testing.T) {
	cause := errors.New("db gone")
	err := handleLinkage(context.Background(), applierFunc(func() error { return cause }), marshal(t, broker.ScheduleLinkage{
		MovieID: 9, Date: "2024-06-15", Time: "19:30:00", SeatID: 12,
	}))
	assert.ErrorIs(t, err, cause)
	assert.NotErrorIs(t, err, errBadMessage)
}

type applierFunc func() error

func (f applierFunc) SetInvoiceID(context.Context, uint64, string, string, uint64, *uint64) error {
	return f()
}
