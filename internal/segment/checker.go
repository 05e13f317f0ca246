package segment

import (
	"context"

	"ms-reservation/internal/models"
	"ms-reservation/internal/utils"
)

// SeatState classifies a seat against a requested segment for the
// overview display.
type SeatState string

const (
	SeatAvailable SeatState = "available"
	SeatHeld      SeatState = "held"
	SeatOccupied  SeatState = "occupied"
)

type SeatOverview struct {
	SeatNumber string    `json:"seat_number"`
	SeatClass  string    `json:"seat_class"`
	State      SeatState `json:"state"`
}

type DBLayer interface {
	StopPositions(ctx context.Context, routeID string) ([]int, error)
	ActiveHolds(ctx context.Context, tripID, seatNumber string) ([]models.SeatHold, error)
	ActiveTickets(ctx context.Context, tripID, seatNumber string) ([]models.Ticket, error)
	ActiveHoldsByTrip(ctx context.Context, tripID string) ([]models.SeatHold, error)
	ActiveTicketsByTrip(ctx context.Context, tripID string) ([]models.Ticket, error)
	SeatsByBus(ctx context.Context, busID string) ([]models.Seat, error)
}

type Checker struct {
	DB DBLayer
}

func NewChecker(db DBLayer) *Checker {
	return &Checker{DB: db}
}

// Overlaps reports whether the half-open ranges [aFrom,aTo) and
// [bFrom,bTo) share any segment. A shared boundary is not an overlap.
func Overlaps(aFrom, aTo, bFrom, bTo int) bool {
	return aFrom < bTo && bFrom < aTo
}

// ValidateSegment rejects malformed requests before any lookup: the
// range must be non-empty and both positions must be stops on the
// trip's route.
func (c *Checker) ValidateSegment(ctx context.Context, trip *models.Trip, fromPos, toPos int) error {
	if fromPos >= toPos {
		return utils.Validationf("invalid segment [%d,%d): from must be before to", fromPos, toPos)
	}

	positions, err := c.DB.StopPositions(ctx, trip.RouteID)
	if err != nil {
		return err
	}

	fromOK, toOK := false, false
	for _, p := range positions {
		if p == fromPos {
			fromOK = true
		}
		if p == toPos {
			toOK = true
		}
	}
	if !fromOK || !toOK {
		return utils.Validationf("segment [%d,%d) has stops not on route %s", fromPos, toPos, trip.RouteID)
	}
	return nil
}

// SeatAvailable collects every active hold and ticket for the
// (trip, seat) pair and tests interval overlap against the requested
// range. The returned reason names the conflicting kind so a client
// can retry with a different seat or segment.
func (c *Checker) SeatAvailable(ctx context.Context, tripID, seatNumber string, fromPos, toPos int) (bool, string, error) {
	holds, err := c.DB.ActiveHolds(ctx, tripID, seatNumber)
	if err != nil {
		return false, "", err
	}
	for _, h := range holds {
		if Overlaps(h.FromPosition, h.ToPosition, fromPos, toPos) {
			return false, "segment already held", nil
		}
	}

	tickets, err := c.DB.ActiveTickets(ctx, tripID, seatNumber)
	if err != nil {
		return false, "", err
	}
	for _, t := range tickets {
		if Overlaps(t.FromPosition, t.ToPosition, fromPos, toPos) {
			return false, "segment already sold", nil
		}
	}

	return true, "", nil
}

// ClassifySeats answers held/occupied/available per seat of the
// trip's bus for the requested segment. Only holds and tickets whose
// range overlaps the segment count; tickets win over holds when a seat
// carries both.
func (c *Checker) ClassifySeats(ctx context.Context, trip *models.Trip, fromPos, toPos int) ([]SeatOverview, error) {
	seats, err := c.DB.SeatsByBus(ctx, trip.BusID)
	if err != nil {
		return nil, err
	}

	holds, err := c.DB.ActiveHoldsByTrip(ctx, trip.ID)
	if err != nil {
		return nil, err
	}
	tickets, err := c.DB.ActiveTicketsByTrip(ctx, trip.ID)
	if err != nil {
		return nil, err
	}

	held := make(map[string]bool, len(holds))
	for _, h := range holds {
		if Overlaps(h.FromPosition, h.ToPosition, fromPos, toPos) {
			held[h.SeatNumber] = true
		}
	}
	occupied := make(map[string]bool, len(tickets))
	for _, t := range tickets {
		if Overlaps(t.FromPosition, t.ToPosition, fromPos, toPos) {
			occupied[t.SeatNumber] = true
		}
	}

	overview := make([]SeatOverview, 0, len(seats))
	for _, seat := range seats {
		state := SeatAvailable
		switch {
		case occupied[seat.Number]:
			state = SeatOccupied
		case held[seat.Number]:
			state = SeatHeld
		}
		overview = append(overview, SeatOverview{
			SeatNumber: seat.Number,
			SeatClass:  seat.SeatClass,
			State:      state,
		})
	}
	return overview, nil
}
