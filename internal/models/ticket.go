package models

import (
	"time"

	"github.com/uptrace/bun"
)

type TicketStatus string

const (
	TicketSold      TicketStatus = "SOLD"
	TicketUsed      TicketStatus = "USED"
	TicketNoShow    TicketStatus = "NO_SHOW"
	TicketCancelled TicketStatus = "CANCELLED"
)

type CancellationPolicy string

const (
	FullRefund    CancellationPolicy = "FULL_REFUND"
	PartialRefund CancellationPolicy = "PARTIAL_REFUND"
	NoRefund      CancellationPolicy = "NO_REFUND"
)

// Ticket is a sold seat segment. It is created SOLD (directly or via
// hold conversion) and ends in USED, NO_SHOW or CANCELLED; all three
// are terminal. RefundAmount is negative for a no-show fee charge.
type Ticket struct {
	bun.BaseModel `bun:"table:tickets,alias:ticket"`

	ID            string             `bun:"id,pk" json:"id"`
	TripID        string             `bun:"trip_id,notnull" json:"trip_id"`
	SeatNumber    string             `bun:"seat_number,notnull" json:"seat_number"`
	FromPosition  int                `bun:"from_position,notnull" json:"from_position"`
	ToPosition    int                `bun:"to_position,notnull" json:"to_position"`
	PassengerID   string             `bun:"passenger_id,notnull" json:"passenger_id"`
	Price         float64            `bun:"price,notnull" json:"price"`
	PaymentMethod string             `bun:"payment_method,notnull" json:"payment_method"`
	Status        TicketStatus       `bun:"status,notnull" json:"status"`
	BoardingCode  string             `bun:"boarding_code,unique,notnull" json:"boarding_code"`
	Overbooked    bool               `bun:"overbooked,notnull,default:false" json:"overbooked"`
	Policy        CancellationPolicy `bun:"cancellation_policy,nullzero" json:"cancellation_policy,omitempty"`
	RefundAmount  float64            `bun:"refund_amount,nullzero" json:"refund_amount,omitempty"`
	CreatedAt     time.Time          `bun:"created_at,notnull" json:"created_at"`
	CancelledAt   time.Time          `bun:"cancelled_at,nullzero" json:"cancelled_at,omitempty"`
}

func (t *Ticket) Terminal() bool {
	return t.Status != TicketSold
}

// Active reports whether the ticket still occupies its segment in the
// overlap universe. CANCELLED and NO_SHOW free the segment.
func (t *Ticket) Active() bool {
	return t.Status == TicketSold || t.Status == TicketUsed
}
