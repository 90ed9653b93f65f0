package model

// Movie is the slice of the movie service's entity that read projections
// need. Additional fields the peer returns are ignored on decode.
type Movie struct {
	ID       uint64 `json:"id"`
	Title    string `json:"title"`
	MovieURL string `json:"movie_url"`
}
