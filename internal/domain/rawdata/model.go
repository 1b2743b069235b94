package rawdata

import "time"

// Payload is one raw provider response kept for replay and auditing.
type Payload struct {
	Platform    string
	LeagueID    string
	Season      int
	View        string
	PayloadJSON []byte
	PayloadHash string
	FetchedAt   time.Time
}
