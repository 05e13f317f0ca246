package models

import (
	"time"

	"github.com/uptrace/bun"
)

type HoldStatus string

const (
	HoldActive    HoldStatus = "HOLD"
	HoldReleased  HoldStatus = "RELEASED"
	HoldExpired   HoldStatus = "EXPIRED"
	HoldConverted HoldStatus = "CONVERTED"
)

// SeatHold is a time-boxed soft reservation of a seat for a segment.
// It ends in exactly one terminal state: RELEASED by its owner,
// EXPIRED by the sweeper, or CONVERTED by a successful purchase.
type SeatHold struct {
	bun.BaseModel `bun:"table:seat_holds,alias:hold"`

	ID           string     `bun:"id,pk" json:"id"`
	TripID       string     `bun:"trip_id,notnull" json:"trip_id"`
	SeatNumber   string     `bun:"seat_number,notnull" json:"seat_number"`
	FromPosition int        `bun:"from_position,notnull" json:"from_position"`
	ToPosition   int        `bun:"to_position,notnull" json:"to_position"`
	ExpiresAt    time.Time  `bun:"expires_at,notnull" json:"expires_at"`
	Status       HoldStatus `bun:"status,notnull" json:"status"`
	HolderID     string     `bun:"holder_id,notnull" json:"holder_id"`
	CreatedAt    time.Time  `bun:"created_at,notnull" json:"created_at"`
}

func (h *SeatHold) Terminal() bool {
	return h.Status != HoldActive
}
