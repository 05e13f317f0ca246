package tickets

import (
	"context"
	"fmt"
	"time"

	"ms-reservation/internal/cancellation"
	"ms-reservation/internal/logger"
	"ms-reservation/internal/models"
	"ms-reservation/internal/notify"
	"ms-reservation/internal/utils"
)

type DBLayer interface {
	CreateTicket(ctx context.Context, ticket models.Ticket) error
	GetTicketByID(ctx context.Context, id string) (*models.Ticket, error)
	GetTicketByBoardingCode(ctx context.Context, code string) (*models.Ticket, error)
	UpdateTicket(ctx context.Context, ticket models.Ticket) error
	TicketsByTripAndStatus(ctx context.Context, tripID string, status models.TicketStatus) ([]models.Ticket, error)
	CountActive(ctx context.Context, tripID string) (int, error)
}

type TripGetter interface {
	Get(ctx context.Context, id string) (*models.Trip, error)
}

type AvailabilityChecker interface {
	ValidateSegment(ctx context.Context, trip *models.Trip, fromPos, toPos int) error
	SeatAvailable(ctx context.Context, tripID, seatNumber string, fromPos, toPos int) (bool, string, error)
}

type FareLookup interface {
	Price(ctx context.Context, routeID string, fromPos, toPos int) (float64, error)
}

type SegmentLocker interface {
	Acquire(ctx context.Context, tripID, seatNumber, ownerID string) (bool, error)
	Release(ctx context.Context, tripID, seatNumber, ownerID string) error
}

// Service drives the ticket state machine: SOLD at creation, then one
// terminal transition to USED, NO_SHOW or CANCELLED.
type Service struct {
	DB       DBLayer
	Trips    TripGetter
	Checker  AvailabilityChecker
	Fare     FareLookup
	Locks    SegmentLocker
	Resolver *cancellation.Resolver
	Notify   notify.Dispatcher
	Logger   *logger.Logger
}

type CreateRequest struct {
	TripID        string  `json:"trip_id"`
	SeatNumber    string  `json:"seat_number"`
	FromPosition  int     `json:"from_position"`
	ToPosition    int     `json:"to_position"`
	PassengerID   string  `json:"passenger_id"`
	PaymentMethod string  `json:"payment_method"`
	PriceOverride float64 `json:"-"`

	// Overbooked tickets skip only the aggregate capacity cap; the
	// same-seat segment overlap check still applies.
	Overbooked bool `json:"-"`
}

func NewService(db DBLayer, trips TripGetter, checker AvailabilityChecker, fare FareLookup,
	locks SegmentLocker, resolver *cancellation.Resolver, dispatch notify.Dispatcher, log *logger.Logger) *Service {
	return &Service{
		DB:       db,
		Trips:    trips,
		Checker:  checker,
		Fare:     fare,
		Locks:    locks,
		Resolver: resolver,
		Notify:   dispatch,
		Logger:   log,
	}
}

// Create issues a SOLD ticket. The availability-check-then-insert
// section is serialized per (trip, seat) by the segment lock.
func (s *Service) Create(ctx context.Context, req CreateRequest) (*models.Ticket, error) {
	trip, err := s.Trips.Get(ctx, req.TripID)
	if err != nil {
		return nil, err
	}
	if !trip.SellsTickets() {
		return nil, utils.Conflictf("trip %s is %s, tickets can only be sold for SCHEDULED or BOARDING trips",
			trip.ID, trip.Status)
	}

	if err := s.Checker.ValidateSegment(ctx, trip, req.FromPosition, req.ToPosition); err != nil {
		return nil, err
	}

	price := req.PriceOverride
	if price == 0 {
		price, err = s.Fare.Price(ctx, trip.RouteID, req.FromPosition, req.ToPosition)
		if err != nil {
			return nil, fmt.Errorf("fare lookup: %w", err)
		}
	}

	lockOwner := utils.GenerateID()
	ok, err := s.Locks.Acquire(ctx, req.TripID, req.SeatNumber, lockOwner)
	if err != nil {
		return nil, fmt.Errorf("acquire segment lock: %w", err)
	}
	if !ok {
		return nil, utils.Conflictf("seat %s on trip %s is being booked by another request", req.SeatNumber, req.TripID)
	}
	defer s.Locks.Release(context.Background(), req.TripID, req.SeatNumber, lockOwner)

	if !req.Overbooked {
		sold, err := s.DB.CountActive(ctx, req.TripID)
		if err != nil {
			return nil, err
		}
		if trip.Bus != nil && sold >= trip.Bus.Capacity {
			return nil, utils.Conflictf("trip %s is at capacity (%d sold)", req.TripID, sold)
		}
	}

	available, reason, err := s.Checker.SeatAvailable(ctx, req.TripID, req.SeatNumber, req.FromPosition, req.ToPosition)
	if err != nil {
		return nil, err
	}
	if !available {
		return nil, utils.Conflictf("seat %s on trip %s: %s", req.SeatNumber, req.TripID, reason)
	}

	ticket := models.Ticket{
		ID:            utils.GenerateID(),
		TripID:        req.TripID,
		SeatNumber:    req.SeatNumber,
		FromPosition:  req.FromPosition,
		ToPosition:    req.ToPosition,
		PassengerID:   req.PassengerID,
		Price:         price,
		PaymentMethod: req.PaymentMethod,
		Status:        models.TicketSold,
		BoardingCode:  utils.GenerateBoardingCode(),
		Overbooked:    req.Overbooked,
		CreatedAt:     time.Now(),
	}

	if err := s.DB.CreateTicket(ctx, ticket); err != nil {
		return nil, err
	}

	s.Logger.LogTicket("CREATE", ticket.ID, fmt.Sprintf("seat %s [%d,%d) trip %s price %.2f",
		ticket.SeatNumber, ticket.FromPosition, ticket.ToPosition, ticket.TripID, ticket.Price))
	s.Notify.TicketIssued(ticket)

	return &ticket, nil
}

func (s *Service) Get(ctx context.Context, id string) (*models.Ticket, error) {
	return s.DB.GetTicketByID(ctx, id)
}

func (s *Service) GetByBoardingCode(ctx context.Context, code string) (*models.Ticket, error) {
	return s.DB.GetTicketByBoardingCode(ctx, code)
}

// MarkUsed is the boarding-desk action. Only SOLD tickets on a
// BOARDING or DEPARTED trip can board.
func (s *Service) MarkUsed(ctx context.Context, id string) (*models.Ticket, error) {
	ticket, err := s.DB.GetTicketByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if ticket.Status != models.TicketSold {
		return nil, utils.Transitionf("ticket %s is %s, only SOLD tickets can board", id, ticket.Status)
	}

	trip, err := s.Trips.Get(ctx, ticket.TripID)
	if err != nil {
		return nil, err
	}
	if trip.Status != models.TripBoarding && trip.Status != models.TripDeparted {
		return nil, utils.Conflictf("trip %s is %s, boarding is not open", trip.ID, trip.Status)
	}

	ticket.Status = models.TicketUsed
	if err := s.DB.UpdateTicket(ctx, *ticket); err != nil {
		return nil, err
	}
	s.Logger.LogTicket("BOARD", ticket.ID, "marked USED")
	return ticket, nil
}

// MarkNoShow transitions a SOLD ticket to NO_SHOW and frees its
// segment. The no-show reconciler is the single writer of this
// transition; no HTTP route reaches it. The fee is recorded as a
// negative refund amount.
func (s *Service) MarkNoShow(ctx context.Context, id string, fee float64) (*models.Ticket, error) {
	ticket, err := s.DB.GetTicketByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if ticket.Status != models.TicketSold {
		return nil, utils.Transitionf("ticket %s is %s, only SOLD tickets can be marked no-show", id, ticket.Status)
	}

	ticket.Status = models.TicketNoShow
	ticket.RefundAmount = -fee
	if err := s.DB.UpdateTicket(ctx, *ticket); err != nil {
		return nil, err
	}

	s.Logger.LogTicket("NO_SHOW", ticket.ID, fmt.Sprintf("seat %s freed, fee %.2f", ticket.SeatNumber, fee))
	s.Notify.SeatFreed(ticket.TripID, ticket.SeatNumber, ticket.FromPosition, ticket.ToPosition)
	return ticket, nil
}

// Cancel applies the cancellation policy in force at call time,
// records the refund and frees the segment.
func (s *Service) Cancel(ctx context.Context, id string) (*models.Ticket, error) {
	ticket, err := s.DB.GetTicketByID(ctx, id)
	if err != nil {
		return nil, err
	}
	trip, err := s.Trips.Get(ctx, ticket.TripID)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	ok, reason := s.Resolver.CanCancel(ticket, trip, now)
	if !ok {
		return nil, utils.Transitionf("cannot cancel ticket %s: %s", id, reason)
	}

	policy := s.Resolver.Determine(trip.DepartureAt, now)
	refund := s.Resolver.Refund(ctx, ticket.Price, policy)

	ticket.Status = models.TicketCancelled
	ticket.CancelledAt = now
	ticket.Policy = policy
	ticket.RefundAmount = refund

	if err := s.DB.UpdateTicket(ctx, *ticket); err != nil {
		return nil, err
	}

	s.Logger.LogTicket("CANCEL", ticket.ID, fmt.Sprintf("policy %s refund %.2f", policy, refund))
	s.Notify.TicketCancelled(*ticket, refund)
	s.Notify.SeatFreed(ticket.TripID, ticket.SeatNumber, ticket.FromPosition, ticket.ToPosition)
	return ticket, nil
}

// OccupancyRate is sold seats over bus capacity.
func (s *Service) OccupancyRate(ctx context.Context, tripID string) (float64, error) {
	trip, err := s.Trips.Get(ctx, tripID)
	if err != nil {
		return 0, err
	}
	if trip.Bus == nil || trip.Bus.Capacity == 0 {
		return 0, nil
	}
	sold, err := s.DB.CountActive(ctx, tripID)
	if err != nil {
		return 0, err
	}
	return float64(sold) / float64(trip.Bus.Capacity), nil
}

func (s *Service) SoldTickets(ctx context.Context, tripID string) ([]models.Ticket, error) {
	return s.DB.TicketsByTripAndStatus(ctx, tripID, models.TicketSold)
}
