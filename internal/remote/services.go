package remote

import (
	"context"

	"github.com/cinemahub/cinema-booking/internal/model"
)

// One typed client per peer service. Each wraps the generic Client with the
// peer's route shapes so callers never build paths themselves.

// CustomerClient reads customers from the customer service.
type CustomerClient struct{ c *Client }

func NewCustomerClient(base string) *CustomerClient { return &CustomerClient{NewClient(base)} }

func (s *CustomerClient) FetchByID(ctx context.Context, id uint64) (*model.Customer, error) {
	return fetchOne[model.Customer](ctx, s.c, "/api/customers", id)
}

// EmployeeClient reads employees from the employee service.
type EmployeeClient struct{ c *Client }

func NewEmployeeClient(base string) *EmployeeClient { return &EmployeeClient{NewClient(base)} }

func (s *EmployeeClient) FetchByID(ctx context.Context, id uint64) (*model.Employee, error) {
	return fetchOne[model.Employee](ctx, s.c, "/api/employees", id)
}

// MovieClient reads movies from the movie service.
type MovieClient struct{ c *Client }

func NewMovieClient(base string) *MovieClient { return &MovieClient{NewClient(base)} }

func (s *MovieClient) FetchByID(ctx context.Context, id uint64) (*model.Movie, error) {
	return fetchOne[model.Movie](ctx, s.c, "/api/movies", id)
}

// TheaterClient reads the seat/room/theater ownership chain from the theater
// service. Besides plain by-id lookups it exposes the two hop shortcuts the
// peer provides (room by seat, theater by room) which keep batched joins to
// one round per hop.
type TheaterClient struct{ c *Client }

func NewTheaterClient(base string) *TheaterClient { return &TheaterClient{NewClient(base)} }

func (s *TheaterClient) SeatByID(ctx context.Context, id uint64) (*model.Seat, error) {
	return fetchOne[model.Seat](ctx, s.c, "/api/seats", id)
}

func (s *TheaterClient) RoomByID(ctx context.Context, id uint64) (*model.Room, error) {
	return fetchOne[model.Room](ctx, s.c, "/api/rooms", id)
}

func (s *TheaterClient) TheaterByID(ctx context.Context, id uint64) (*model.Theater, error) {
	return fetchOne[model.Theater](ctx, s.c, "/api/theaters", id)
}

func (s *TheaterClient) RoomBySeatID(ctx context.Context, seatID uint64) (*model.Room, error) {
	return fetchOne[model.Room](ctx, s.c, "/api/seats/room", seatID)
}

func (s *TheaterClient) TheaterByRoomID(ctx context.Context, roomID uint64) (*model.Theater, error) {
	return fetchOne[model.Theater](ctx, s.c, "/api/rooms/theater", roomID)
}

// SeatsByRoom lists every seat owned by a room.
func (s *TheaterClient) SeatsByRoom(ctx context.Context, roomID uint64) ([]model.Seat, error) {
	return fetchList[model.Seat](ctx, s.c, "/api/rooms/seats", roomID)
}

// ScheduleClient reads seat-slots from the schedule service.
type ScheduleClient struct{ c *Client }

func NewScheduleClient(base string) *ScheduleClient { return &ScheduleClient{NewClient(base)} }

// ByInvoiceID lists the seat-slots linked to an invoice. An invoice whose
// linkage messages have not been consumed yet legitimately has none.
func (s *ScheduleClient) ByInvoiceID(ctx context.Context, invoiceID uint64) ([]model.Schedule, error) {
	return fetchList[model.Schedule](ctx, s.c, "/api/schedules/invoice", invoiceID)
}

// InvoiceClient reads invoices; used by the schedule read side to resolve the
// optional invoice link on booked slots.
type InvoiceClient struct{ c *Client }

func NewInvoiceClient(base string) *InvoiceClient { return &InvoiceClient{NewClient(base)} }

func (s *InvoiceClient) FetchByID(ctx context.Context, id uint64) (*model.Invoice, error) {
	return fetchOne[model.Invoice](ctx, s.c, "/api/invoices", id)
}
