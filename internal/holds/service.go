package holds

import (
	"context"
	"fmt"
	"time"

	"ms-reservation/internal/logger"
	"ms-reservation/internal/models"
	"ms-reservation/internal/settings"
	"ms-reservation/internal/utils"
)

type DBLayer interface {
	InsertHold(ctx context.Context, hold models.SeatHold) error
	GetHold(ctx context.Context, id string) (*models.SeatHold, error)
	UpdateHoldStatus(ctx context.Context, id string, status models.HoldStatus) error
	ConvertToTicket(ctx context.Context, holdID string, ticket models.Ticket) error
	ExpireOldHolds(ctx context.Context, now time.Time) (int64, error)
	PurgeExpiredBefore(ctx context.Context, cutoff time.Time) (int64, error)
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

type Dispatcher interface {
	TicketIssued(ticket models.Ticket)
}

const defaultTxTimeout = 5 * time.Second

// Service manages time-boxed seat holds. A hold reserves a seat
// segment without payment; it ends RELEASED, EXPIRED or CONVERTED.
type Service struct {
	DB       DBLayer
	Trips    TripGetter
	Checker  AvailabilityChecker
	Fare     FareLookup
	Locks    SegmentLocker
	Settings settings.Reader
	Notify   Dispatcher
	Logger   *logger.Logger

	// TxTimeout bounds the lock-acquire-through-commit section of
	// Create and Convert so a stalled caller cannot pin a segment.
	TxTimeout time.Duration
}

func (s *Service) txTimeout() time.Duration {
	if s.TxTimeout > 0 {
		return s.TxTimeout
	}
	return defaultTxTimeout
}

type CreateRequest struct {
	TripID       string `json:"trip_id"`
	SeatNumber   string `json:"seat_number"`
	FromPosition int    `json:"from_position"`
	ToPosition   int    `json:"to_position"`
	HolderID     string `json:"holder_id"`
}

type ConvertRequest struct {
	PassengerID   string `json:"passenger_id"`
	PaymentMethod string `json:"payment_method"`
}

func NewService(db DBLayer, trips TripGetter, checker AvailabilityChecker, fare FareLookup,
	locks SegmentLocker, cfg settings.Reader, dispatch Dispatcher, log *logger.Logger) *Service {
	return &Service{
		DB:       db,
		Trips:    trips,
		Checker:  checker,
		Fare:     fare,
		Locks:    locks,
		Settings: cfg,
		Notify:   dispatch,
		Logger:   log,
	}
}

// Create places a hold on a seat segment. The check-then-insert
// section is serialized per (trip, seat) by the segment lock.
func (s *Service) Create(ctx context.Context, req CreateRequest) (*models.SeatHold, error) {
	trip, err := s.Trips.Get(ctx, req.TripID)
	if err != nil {
		return nil, err
	}
	now := time.Now()
	if !trip.SellsTickets() || !now.Before(trip.DepartureAt) {
		return nil, utils.Conflictf("trip %s is not accepting holds", trip.ID)
	}

	if err := s.Checker.ValidateSegment(ctx, trip, req.FromPosition, req.ToPosition); err != nil {
		return nil, err
	}

	ctx, cancel := context.WithTimeout(ctx, s.txTimeout())
	defer cancel()

	lockOwner := utils.GenerateID()
	ok, err := s.Locks.Acquire(ctx, req.TripID, req.SeatNumber, lockOwner)
	if err != nil {
		return nil, fmt.Errorf("acquire segment lock: %w", err)
	}
	if !ok {
		return nil, utils.Conflictf("seat %s on trip %s is being booked by another request", req.SeatNumber, req.TripID)
	}
	defer s.Locks.Release(context.Background(), req.TripID, req.SeatNumber, lockOwner)

	available, reason, err := s.Checker.SeatAvailable(ctx, req.TripID, req.SeatNumber, req.FromPosition, req.ToPosition)
	if err != nil {
		return nil, err
	}
	if !available {
		return nil, utils.Conflictf("seat %s on trip %s: %s", req.SeatNumber, req.TripID, reason)
	}

	duration := s.Settings.GetDuration(ctx, settings.KeyHoldDurationMinutes, 10*time.Minute)
	hold := models.SeatHold{
		ID:           utils.GenerateID(),
		TripID:       req.TripID,
		SeatNumber:   req.SeatNumber,
		FromPosition: req.FromPosition,
		ToPosition:   req.ToPosition,
		ExpiresAt:    now.Add(duration),
		Status:       models.HoldActive,
		HolderID:     req.HolderID,
		CreatedAt:    now,
	}

	if err := s.DB.InsertHold(ctx, hold); err != nil {
		return nil, err
	}

	s.Logger.LogHold("CREATE", hold.ID, fmt.Sprintf("seat %s [%d,%d) trip %s expires %s",
		hold.SeatNumber, hold.FromPosition, hold.ToPosition, hold.TripID, hold.ExpiresAt.Format(time.RFC3339)))
	return &hold, nil
}

func (s *Service) Get(ctx context.Context, id string) (*models.SeatHold, error) {
	return s.DB.GetHold(ctx, id)
}

// Release frees a hold before expiry. Releasing an already RELEASED or
// EXPIRED hold is a no-op; a CONVERTED hold cannot be released.
func (s *Service) Release(ctx context.Context, id string) (*models.SeatHold, error) {
	hold, err := s.DB.GetHold(ctx, id)
	if err != nil {
		return nil, err
	}
	switch hold.Status {
	case models.HoldReleased, models.HoldExpired:
		return hold, nil
	case models.HoldConverted:
		return nil, utils.Transitionf("hold %s is already converted to a ticket", id)
	}

	if err := s.DB.UpdateHoldStatus(ctx, id, models.HoldReleased); err != nil {
		return nil, err
	}
	hold.Status = models.HoldReleased
	s.Logger.LogHold("RELEASE", hold.ID, fmt.Sprintf("seat %s trip %s freed", hold.SeatNumber, hold.TripID))
	return hold, nil
}

// Convert turns an active hold into a SOLD ticket. The hold's segment
// and seat carry over; the hold is re-checked and flipped to CONVERTED
// in the same transaction that inserts the ticket, so a concurrent
// expiry sweep or second convert loses cleanly.
func (s *Service) Convert(ctx context.Context, id string, req ConvertRequest) (*models.Ticket, error) {
	hold, err := s.DB.GetHold(ctx, id)
	if err != nil {
		return nil, err
	}
	now := time.Now()
	if hold.Status != models.HoldActive {
		return nil, utils.Transitionf("hold %s is %s, only active holds convert", id, hold.Status)
	}
	if !now.Before(hold.ExpiresAt) {
		return nil, utils.Conflictf("hold %s expired at %s", id, hold.ExpiresAt.Format(time.RFC3339))
	}

	trip, err := s.Trips.Get(ctx, hold.TripID)
	if err != nil {
		return nil, err
	}
	if !trip.SellsTickets() {
		return nil, utils.Conflictf("trip %s is %s, tickets can only be sold for SCHEDULED or BOARDING trips",
			trip.ID, trip.Status)
	}

	price, err := s.Fare.Price(ctx, trip.RouteID, hold.FromPosition, hold.ToPosition)
	if err != nil {
		return nil, fmt.Errorf("fare lookup: %w", err)
	}

	ctx, cancel := context.WithTimeout(ctx, s.txTimeout())
	defer cancel()

	lockOwner := utils.GenerateID()
	ok, err := s.Locks.Acquire(ctx, hold.TripID, hold.SeatNumber, lockOwner)
	if err != nil {
		return nil, fmt.Errorf("acquire segment lock: %w", err)
	}
	if !ok {
		return nil, utils.Conflictf("seat %s on trip %s is being booked by another request", hold.SeatNumber, hold.TripID)
	}
	defer s.Locks.Release(context.Background(), hold.TripID, hold.SeatNumber, lockOwner)

	ticket := models.Ticket{
		ID:            utils.GenerateID(),
		TripID:        hold.TripID,
		SeatNumber:    hold.SeatNumber,
		FromPosition:  hold.FromPosition,
		ToPosition:    hold.ToPosition,
		PassengerID:   req.PassengerID,
		Price:         price,
		PaymentMethod: req.PaymentMethod,
		Status:        models.TicketSold,
		BoardingCode:  utils.GenerateBoardingCode(),
		CreatedAt:     now,
	}

	if err := s.DB.ConvertToTicket(ctx, id, ticket); err != nil {
		return nil, err
	}

	s.Logger.LogHold("CONVERT", hold.ID, fmt.Sprintf("issued ticket %s seat %s trip %s",
		ticket.ID, ticket.SeatNumber, ticket.TripID))
	s.Notify.TicketIssued(ticket)
	return &ticket, nil
}

// ExpireStale flips overdue active holds to EXPIRED in bulk.
func (s *Service) ExpireStale(ctx context.Context, now time.Time) (int64, error) {
	expired, err := s.DB.ExpireOldHolds(ctx, now)
	if err != nil {
		return 0, err
	}
	if expired > 0 {
		s.Logger.LogSweep("hold-expiry", fmt.Sprintf("expired %d overdue holds", expired))
	}
	return expired, nil
}

// PurgeStale hard-deletes EXPIRED holds older than the configured
// retention window.
func (s *Service) PurgeStale(ctx context.Context, now time.Time) (int64, error) {
	days := s.Settings.GetInt(ctx, settings.KeyHoldCleanupAfterDays, 7)
	cutoff := now.AddDate(0, 0, -days)
	purged, err := s.DB.PurgeExpiredBefore(ctx, cutoff)
	if err != nil {
		return 0, err
	}
	if purged > 0 {
		s.Logger.LogSweep("hold-cleanup", fmt.Sprintf("purged %d expired holds older than %d days", purged, days))
	}
	return purged, nil
}
