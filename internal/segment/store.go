package segment

import (
	"context"
	"time"

	"github.com/uptrace/bun"

	"ms-reservation/internal/models"
)

// Store reads the shared inventory tables that the checker reasons
// over. Writes belong to the holds and tickets packages.
type Store struct {
	Bun *bun.DB
}

func NewStore(db *bun.DB) *Store {
	return &Store{Bun: db}
}

func (s *Store) StopPositions(ctx context.Context, routeID string) ([]int, error) {
	var positions []int
	err := s.Bun.NewSelect().
		Column("position").
		Table("stops").
		Where("route_id = ?", routeID).
		Order("position ASC").
		Scan(ctx, &positions)
	if err != nil {
		return nil, err
	}
	return positions, nil
}

// ActiveHolds returns HOLD rows whose expiry has not passed. A hold
// past expiry no longer blocks a sale even before the sweeper flips
// it; conversion re-checks expiry inside its own transaction.
func (s *Store) ActiveHolds(ctx context.Context, tripID, seatNumber string) ([]models.SeatHold, error) {
	var holds []models.SeatHold
	err := s.Bun.NewSelect().
		Model(&holds).
		Where("trip_id = ?", tripID).
		Where("seat_number = ?", seatNumber).
		Where("status = ?", models.HoldActive).
		Where("expires_at > ?", time.Now()).
		Scan(ctx)
	if err != nil {
		return nil, err
	}
	return holds, nil
}

func (s *Store) ActiveTickets(ctx context.Context, tripID, seatNumber string) ([]models.Ticket, error) {
	var tickets []models.Ticket
	err := s.Bun.NewSelect().
		Model(&tickets).
		Where("trip_id = ?", tripID).
		Where("seat_number = ?", seatNumber).
		Where("status IN (?)", bun.In([]models.TicketStatus{models.TicketSold, models.TicketUsed})).
		Scan(ctx)
	if err != nil {
		return nil, err
	}
	return tickets, nil
}

func (s *Store) ActiveHoldsByTrip(ctx context.Context, tripID string) ([]models.SeatHold, error) {
	var holds []models.SeatHold
	err := s.Bun.NewSelect().
		Model(&holds).
		Where("trip_id = ?", tripID).
		Where("status = ?", models.HoldActive).
		Where("expires_at > ?", time.Now()).
		Scan(ctx)
	if err != nil {
		return nil, err
	}
	return holds, nil
}

func (s *Store) ActiveTicketsByTrip(ctx context.Context, tripID string) ([]models.Ticket, error) {
	var tickets []models.Ticket
	err := s.Bun.NewSelect().
		Model(&tickets).
		Where("trip_id = ?", tripID).
		Where("status IN (?)", bun.In([]models.TicketStatus{models.TicketSold, models.TicketUsed})).
		Scan(ctx)
	if err != nil {
		return nil, err
	}
	return tickets, nil
}

func (s *Store) SeatsByBus(ctx context.Context, busID string) ([]models.Seat, error) {
	var seats []models.Seat
	err := s.Bun.NewSelect().
		Model(&seats).
		Where("bus_id = ?", busID).
		Order("number ASC").
		Scan(ctx)
	if err != nil {
		return nil, err
	}
	return seats, nil
}
