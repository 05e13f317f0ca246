package models

import (
	"time"

	"github.com/uptrace/bun"
)

type OverbookingStatus string

const (
	OverbookingPending  OverbookingStatus = "PENDING"
	OverbookingApproved OverbookingStatus = "APPROVED"
	OverbookingRejected OverbookingStatus = "REJECTED"
	OverbookingExpired  OverbookingStatus = "EXPIRED"
)

// OverbookingRequest asks a dispatcher to sell beyond nominal
// capacity. The ticket draft (seat, segment, passenger, payment) is
// carried on the request; TicketID is filled in once a dispatcher
// approves and the ticket is issued.
type OverbookingRequest struct {
	bun.BaseModel `bun:"table:overbooking_requests,alias:obr"`

	ID            string            `bun:"id,pk" json:"id"`
	TripID        string            `bun:"trip_id,notnull" json:"trip_id"`
	TicketID      string            `bun:"ticket_id,nullzero" json:"ticket_id,omitempty"`
	SeatNumber    string            `bun:"seat_number,notnull" json:"seat_number"`
	FromPosition  int               `bun:"from_position,notnull" json:"from_position"`
	ToPosition    int               `bun:"to_position,notnull" json:"to_position"`
	PassengerID   string            `bun:"passenger_id,notnull" json:"passenger_id"`
	PaymentMethod string            `bun:"payment_method,notnull" json:"payment_method"`
	RequestedBy   string            `bun:"requested_by,notnull" json:"requested_by"`
	ApprovedBy    string            `bun:"approved_by,nullzero" json:"approved_by,omitempty"`
	Status        OverbookingStatus `bun:"status,notnull" json:"status"`
	Reason        string            `bun:"reason,notnull" json:"reason"`
	RequestedAt   time.Time         `bun:"requested_at,notnull" json:"requested_at"`
	ApprovedAt    time.Time         `bun:"approved_at,nullzero" json:"approved_at,omitempty"`
	ExpiresAt     time.Time         `bun:"expires_at,notnull" json:"expires_at"`
}
