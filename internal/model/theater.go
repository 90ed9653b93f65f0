package model

// Theater, Room and Seat form the three-level ownership chain inside the
// theater service (a theater owns rooms, a room owns seats). This service
// only ever reads them, via remote lookups.

// Theater is the top of the venue chain.
type Theater struct {
	ID      uint64 `json:"id"`
	Name    string `json:"name"`
	Address string `json:"address"`
}

// Room is a screening room inside a theater.
type Room struct {
	ID        uint64 `json:"id"`
	TheaterID uint64 `json:"theater_id"`
	Name      string `json:"name"`
}

// Seat is a physical seat inside a room.
type Seat struct {
	ID     uint64 `json:"id"`
	RoomID uint64 `json:"room_id"`
	Row    string `json:"row"`
	Number uint32 `json:"number"`
	Status string `json:"status"`
}
