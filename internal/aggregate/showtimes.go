package aggregate

import (
	"context"
	"log"

	"github.com/cinemahub/cinema-booking/internal/join"
	"github.com/cinemahub/cinema-booking/internal/model"
)

// Showtimes groups a movie's seat-slots by date, theater and room so a
// client can render a showtime picker without flattening thousands of seat
// rows itself.
type Showtimes struct {
	Movie model.Movie    `json:"movie"`
	Dates []DateShowtime `json:"dates"`
}

// DateShowtime lists the theaters screening the movie on one date.
type DateShowtime struct {
	Date     string            `json:"date"`
	Theaters []TheaterShowtime `json:"theaters"`
}

// TheaterShowtime lists the rooms of one theater with their start times.
type TheaterShowtime struct {
	TheaterID   uint64         `json:"theater_id"`
	TheaterName string         `json:"theater_name"`
	Rooms       []RoomShowtime `json:"rooms"`
}

// RoomShowtime is one room's distinct start times.
type RoomShowtime struct {
	RoomID   uint64   `json:"room_id"`
	RoomName string   `json:"room_name"`
	Times    []string `json:"times"`
}

// ByMovie builds the showtime tree for one movie. The movie itself is the
// subject (absent -> ErrNotFound); the venue chain is resolved with the
// same batched hop rounds as Overview, and incomplete rows are skipped.
// Grouping preserves first-appearance order of dates, theaters and rooms.
func (a *Schedules) ByMovie(ctx context.Context, movieID uint64) (*Showtimes, error) {
	movie, err := a.movies.FetchByID(ctx, movieID)
	if err != nil {
		return nil, err
	}
	if movie == nil {
		return nil, ErrNotFound
	}

	rows, err := a.source.FindByMovieID(ctx, movieID)
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

	result := &Showtimes{Movie: *movie}
	dateIdx := make(map[string]int)
	for _, row := range rows {
		room := rooms[row.SeatID]
		var theater *model.Theater
		if room != nil {
			theater = theaters[room.ID]
		}
		if room == nil || theater == nil {
			log.Printf("aggregate: venue missing for schedule %d, skipped in showtimes", row.ID)
			continue
		}

		di, ok := dateIdx[row.Date]
		if !ok {
			di = len(result.Dates)
			dateIdx[row.Date] = di
			result.Dates = append(result.Dates, DateShowtime{Date: row.Date})
		}
		date := &result.Dates[di]

		ti := -1
		for i := range date.Theaters {
			if date.Theaters[i].TheaterID == theater.ID {
				ti = i
				break
			}
		}
		if ti < 0 {
			ti = len(date.Theaters)
			date.Theaters = append(date.Theaters, TheaterShowtime{TheaterID: theater.ID, TheaterName: theater.Name})
		}
		th := &date.Theaters[ti]

		ri := -1
		for i := range th.Rooms {
			if th.Rooms[i].RoomID == room.ID {
				ri = i
				break
			}
		}
		if ri < 0 {
			ri = len(th.Rooms)
			th.Rooms = append(th.Rooms, RoomShowtime{RoomID: room.ID, RoomName: room.Name})
		}
		rm := &th.Rooms[ri]

		dup := false
		for _, t := range rm.Times {
			if t == row.Time {
				dup = true
				break
			}
		}
		if !dup {
			rm.Times = append(rm.Times, row.Time)
		}
	}
	return result, nil
}
