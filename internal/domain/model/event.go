package model

import "time"

// RatingEvent is a rating submission queued for a player.
type RatingEvent struct {
	EventID  string    // idempotency key supplied by the client
	PlayerID string    // player being rated
	Skills   Skills    // full replacement vector
	TS       time.Time // submission time
}
