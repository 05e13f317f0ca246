package tickets

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/uptrace/bun"

	"ms-reservation/internal/models"
	"ms-reservation/internal/utils"
)

// Store is the bun-backed DBLayer.
type Store struct {
	Bun *bun.DB
}

func NewStore(db *bun.DB) *Store {
	return &Store{Bun: db}
}

func (s *Store) CreateTicket(ctx context.Context, ticket models.Ticket) error {
	if _, err := s.Bun.NewInsert().Model(&ticket).Exec(ctx); err != nil {
		return fmt.Errorf("insert ticket: %w", err)
	}
	return nil
}

func (s *Store) GetTicketByID(ctx context.Context, id string) (*models.Ticket, error) {
	ticket := new(models.Ticket)
	err := s.Bun.NewSelect().Model(ticket).Where("ticket.id = ?", id).Scan(ctx)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, utils.NotFoundf("ticket %s not found", id)
	}
	if err != nil {
		return nil, fmt.Errorf("select ticket: %w", err)
	}
	return ticket, nil
}

func (s *Store) GetTicketByBoardingCode(ctx context.Context, code string) (*models.Ticket, error) {
	ticket := new(models.Ticket)
	err := s.Bun.NewSelect().Model(ticket).Where("ticket.boarding_code = ?", code).Scan(ctx)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, utils.NotFoundf("no ticket for boarding code %s", code)
	}
	if err != nil {
		return nil, fmt.Errorf("select ticket by boarding code: %w", err)
	}
	return ticket, nil
}

// UpdateTicket writes a SOLD→terminal transition. The status guard
// makes the losing side of a concurrent transition fail instead of
// overwriting a terminal row.
func (s *Store) UpdateTicket(ctx context.Context, ticket models.Ticket) error {
	res, err := s.Bun.NewUpdate().
		Model(&ticket).
		Column("status", "cancellation_policy", "refund_amount", "cancelled_at").
		WherePK().
		Where("status = ?", models.TicketSold).
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("update ticket: %w", err)
	}
	if affected, _ := res.RowsAffected(); affected == 0 {
		return utils.Conflictf("ticket %s is missing or already terminal", ticket.ID)
	}
	return nil
}

func (s *Store) TicketsByTripAndStatus(ctx context.Context, tripID string, status models.TicketStatus) ([]models.Ticket, error) {
	var tickets []models.Ticket
	err := s.Bun.NewSelect().
		Model(&tickets).
		Where("ticket.trip_id = ?", tripID).
		Where("ticket.status = ?", status).
		Order("ticket.created_at ASC").
		Scan(ctx)
	if err != nil {
		return nil, fmt.Errorf("select tickets for trip %s: %w", tripID, err)
	}
	return tickets, nil
}

// CountActive counts SOLD and USED tickets. A boarded passenger still
// occupies a seat for capacity purposes.
func (s *Store) CountActive(ctx context.Context, tripID string) (int, error) {
	count, err := s.Bun.NewSelect().
		Model((*models.Ticket)(nil)).
		Where("ticket.trip_id = ?", tripID).
		Where("ticket.status IN (?)", bun.In([]models.TicketStatus{models.TicketSold, models.TicketUsed})).
		Count(ctx)
	if err != nil {
		return 0, fmt.Errorf("count active tickets: %w", err)
	}
	return count, nil
}
