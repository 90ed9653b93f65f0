package aggregate

import (
	"context"
	"log"

	"github.com/cinemahub/cinema-booking/internal/join"
	"github.com/cinemahub/cinema-booking/internal/model"
)

// ScheduleSource reads the locally mirrored seat-slot rows.
type ScheduleSource interface {
	FindAll(ctx context.Context) ([]model.Schedule, error)
	FindByMovieID(ctx context.Context, movieID uint64) ([]model.Schedule, error)
}

// MovieLookup fetches movies from the movie service.
type MovieLookup interface {
	FetchByID(ctx context.Context, id uint64) (*model.Movie, error)
}

// VenueLookup fetches the seat/room/theater chain from the theater service.
type VenueLookup interface {
	SeatByID(ctx context.Context, id uint64) (*model.Seat, error)
	RoomByID(ctx context.Context, id uint64) (*model.Room, error)
	TheaterByID(ctx context.Context, id uint64) (*model.Theater, error)
	RoomBySeatID(ctx context.Context, seatID uint64) (*model.Room, error)
	TheaterByRoomID(ctx context.Context, roomID uint64) (*model.Theater, error)
}

// InvoiceLookup fetches invoices for the optional invoice link on booked
// slots.
type InvoiceLookup interface {
	FetchByID(ctx context.Context, id uint64) (*model.Invoice, error)
}

// Schedules aggregates seat-slots with their movie, venue chain and
// optional invoice.
type Schedules struct {
	source   ScheduleSource
	movies   MovieLookup
	venue    VenueLookup
	invoices InvoiceLookup
	cache    *Cache
}

// NewSchedules wires the schedule aggregator. cache may be nil, which
// disables overview caching.
func NewSchedules(source ScheduleSource, movies MovieLookup, venue VenueLookup, invoices InvoiceLookup, cache *Cache) *Schedules {
	return &Schedules{source: source, movies: movies, venue: venue, invoices: invoices, cache: cache}
}

// ScheduleView is the full seat-slot projection. Movie, Seat, Room and
// Theater are always present (rows missing any of them are dropped);
// Invoice is present only for booked slots whose invoice resolved.
type ScheduleView struct {
	ID        uint64         `json:"id"`
	Date      string         `json:"date"`
	Time      string         `json:"time"`
	InvoiceID *uint64        `json:"invoice_id"`
	Movie     *model.Movie   `json:"movie"`
	Seat      *model.Seat    `json:"seat"`
	Room      *model.Room    `json:"room"`
	Theater   *model.Theater `json:"theater"`
	Invoice   *model.Invoice `json:"invoice,omitempty"`
}

// List returns every seat-slot with the venue chain resolved. The chain is
// dependent (room needs the resolved seat, theater the resolved room), but
// each hop is still batched: one concurrent round per hop over the distinct
// ids that hop produced, never one call per row.
func (a *Schedules) List(ctx context.Context) ([]ScheduleView, error) {
	rows, err := a.source.FindAll(ctx)
	if err != nil {
		return nil, err
	}

	seatIDs := join.Keys(rows, func(s model.Schedule) (uint64, bool) { return s.SeatID, true })
	seats := join.Resolve(ctx, seatIDs, a.venue.SeatByID)

	roomIDs := make([]uint64, 0, len(seats))
	for _, seat := range seats {
		roomIDs = append(roomIDs, seat.RoomID)
	}
	rooms := join.Resolve(ctx, roomIDs, a.venue.RoomByID)

	theaterIDs := make([]uint64, 0, len(rooms))
	for _, room := range rooms {
		theaterIDs = append(theaterIDs, room.TheaterID)
	}
	theaters := join.Resolve(ctx, theaterIDs, a.venue.TheaterByID)

	movieIDs := join.Keys(rows, func(s model.Schedule) (uint64, bool) { return s.MovieID, true })
	movies := join.Resolve(ctx, movieIDs, a.movies.FetchByID)

	invoiceIDs := join.Keys(rows, func(s model.Schedule) (uint64, bool) {
		if s.InvoiceID == nil {
			return 0, false
		}
		return *s.InvoiceID, true
	})
	invoices := join.Resolve(ctx, invoiceIDs, a.invoices.FetchByID)

	views := make([]ScheduleView, 0, len(rows))
	for _, row := range rows {
		view := ScheduleView{ID: row.ID, Date: row.Date, Time: row.Time, InvoiceID: row.InvoiceID}
		view.Movie = movies[row.MovieID]
		view.Seat = seats[row.SeatID]
		if view.Seat != nil {
			view.Room = rooms[view.Seat.RoomID]
		}
		if view.Room != nil {
			view.Theater = theaters[view.Room.TheaterID]
		}
		if view.Movie == nil || view.Seat == nil || view.Room == nil || view.Theater == nil {
			log.Printf("aggregate: incomplete venue chain for schedule %d, row dropped", row.ID)
			continue
		}
		if row.InvoiceID != nil {
			// Tolerated missing: the linkage may simply not have been
			// consumed yet, or the invoice service may be down.
			view.Invoice = invoices[*row.InvoiceID]
		}
		views = append(views, view)
	}
	return views, nil
}

// OverviewRow is one distinct screening in the condensed overview.
type OverviewRow struct {
	TheaterName string `json:"theater_name"`
	RoomName    string `json:"room_name"`
	MovieTitle  string `json:"movie_title"`
	Date        string `json:"date"`
	Time        string `json:"time"`
}

const overviewCacheKey = "schedules:overview"

// Overview condenses all seat-slots into distinct screenings (theater,
// room, movie, date, time). It uses the peer's hop shortcuts so the whole
// response costs three concurrent rounds: room-by-seat over distinct seat
// ids, theater-by-room over distinct room ids, movie over distinct movie
// ids. Rows missing any piece are dropped. Results are cached briefly in
// redis because this is the landing-page query.
func (a *Schedules) Overview(ctx context.Context) ([]OverviewRow, error) {
	var cached []OverviewRow
	if a.cache.Get(ctx, overviewCacheKey, &cached) {
		return cached, nil
	}

	rows, err := a.source.FindAll(ctx)
	if err != nil {
		return nil, err
	}

	seatIDs := join.Keys(rows, func(s model.Schedule) (uint64, bool) { return s.SeatID, true })
	rooms := join.Resolve(ctx, seatIDs, a.venue.RoomBySeatID)

	roomIDs := make([]uint64, 0, len(rooms))
	for _, room := range rooms {
		roomIDs = append(roomIDs, room.ID)
	}
	theaters := join.Resolve(ctx, roomIDs, a.venue.TheaterByRoomID)

	movieIDs := join.Keys(rows, func(s model.Schedule) (uint64, bool) { return s.MovieID, true })
	movies := join.Resolve(ctx, movieIDs, a.movies.FetchByID)

	seen := make(map[OverviewRow]struct{})
	out := make([]OverviewRow, 0)
	for _, row := range rows {
		room := rooms[row.SeatID]
		movie := movies[row.MovieID]
		var theater *model.Theater
		if room != nil {
			theater = theaters[room.ID]
		}
		if room == nil || theater == nil || movie == nil {
			log.Printf("aggregate: overview row for schedule %d incomplete, dropped", row.ID)
			continue
		}
		entry := OverviewRow{
			TheaterName: theater.Name,
			RoomName:    room.Name,
			MovieTitle:  movie.Title,
			Date:        row.Date,
			Time:        row.Time,
		}
		if _, dup := seen[entry]; dup {
			continue
		}
		seen[entry] = struct{}{}
		out = append(out, entry)
	}

	a.cache.Set(ctx, overviewCacheKey, out)
	return out, nil
}

// VenueView is the strict seat -> room -> theater projection.
type VenueView struct {
	Seat    model.Seat    `json:"seat"`
	Room    model.Room    `json:"room"`
	Theater model.Theater `json:"theater"`
}

// SeatVenue resolves the venue chain for one seat. The hops are genuinely
// dependent and the chain is two lookups deep, so sequential calls are fine
// here. Absence anywhere in the chain is ErrNotFound; transport failures
// propagate for the handler to map.
func (a *Schedules) SeatVenue(ctx context.Context, seatID uint64) (*VenueView, error) {
	seat, err := a.venue.SeatByID(ctx, seatID)
	if err != nil {
		return nil, err
	}
	if seat == nil {
		return nil, ErrNotFound
	}
	room, err := a.venue.RoomByID(ctx, seat.RoomID)
	if err != nil {
		return nil, err
	}
	if room == nil {
		return nil, ErrNotFound
	}
	theater, err := a.venue.TheaterByID(ctx, room.TheaterID)
	if err != nil {
		return nil, err
	}
	if theater == nil {
		return nil, ErrNotFound
	}
	return &VenueView{Seat: *seat, Room: *room, Theater: *theater}, nil
}
