package scrobbles

// Record is one album from a user's listening history.
type Record struct {
	Artist    string `json:"artist"`
	Title     string `json:"title"`
	PlayCount int    `json:"play_count"`
}
