package overbooking

import (
	"context"
	"fmt"
	"time"

	"ms-reservation/internal/logger"
	"ms-reservation/internal/models"
	"ms-reservation/internal/settings"
	"ms-reservation/internal/tickets"
	"ms-reservation/internal/utils"
)

type DBLayer interface {
	InsertRequest(ctx context.Context, req models.OverbookingRequest) error
	GetRequest(ctx context.Context, id string) (*models.OverbookingRequest, error)
	UpdateRequest(ctx context.Context, req models.OverbookingRequest) error
	ExpirePendingBefore(ctx context.Context, now time.Time) (int64, error)
}

type TripGetter interface {
	Get(ctx context.Context, id string) (*models.Trip, error)
}

type TicketIssuer interface {
	Create(ctx context.Context, req tickets.CreateRequest) (*models.Ticket, error)
	OccupancyRate(ctx context.Context, tripID string) (float64, error)
}

// Service runs the overbooking approval workflow. A request captures a
// ticket draft; approval issues the real ticket with the capacity cap
// relaxed. Same-seat segment overlap is never relaxed.
type Service struct {
	DB       DBLayer
	Trips    TripGetter
	Tickets  TicketIssuer
	Settings settings.Reader
	Logger   *logger.Logger
}

type RequestInput struct {
	TripID        string `json:"trip_id"`
	SeatNumber    string `json:"seat_number"`
	FromPosition  int    `json:"from_position"`
	ToPosition    int    `json:"to_position"`
	PassengerID   string `json:"passenger_id"`
	PaymentMethod string `json:"payment_method"`
	Reason        string `json:"reason"`
	RequestedBy   string `json:"-"`
}

func NewService(db DBLayer, trips TripGetter, issuer TicketIssuer, cfg settings.Reader, log *logger.Logger) *Service {
	return &Service{
		DB:       db,
		Trips:    trips,
		Tickets:  issuer,
		Settings: cfg,
		Logger:   log,
	}
}

// CanOverbook reports whether the trip may take overbooking requests:
// occupancy below the configured ceiling and the trip not yet departed.
func (s *Service) CanOverbook(ctx context.Context, tripID string) (bool, string, error) {
	trip, err := s.Trips.Get(ctx, tripID)
	if err != nil {
		return false, "", err
	}
	if !trip.SellsTickets() {
		return false, fmt.Sprintf("trip is %s", trip.Status), nil
	}

	maxRate := s.Settings.GetFloat(ctx, settings.KeyOverbookingMaxRate, 1.1)
	occupancy, err := s.Tickets.OccupancyRate(ctx, tripID)
	if err != nil {
		return false, "", err
	}
	if occupancy >= maxRate {
		return false, fmt.Sprintf("occupancy %.2f is at the overbooking ceiling %.2f", occupancy, maxRate), nil
	}
	return true, "", nil
}

// Request files a PENDING overbooking request. The request expires at
// the earlier of departure minus five minutes and the configured TTL.
func (s *Service) Request(ctx context.Context, in RequestInput) (*models.OverbookingRequest, error) {
	trip, err := s.Trips.Get(ctx, in.TripID)
	if err != nil {
		return nil, err
	}

	ok, reason, err := s.CanOverbook(ctx, in.TripID)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, utils.Conflictf("trip %s cannot be overbooked: %s", in.TripID, reason)
	}

	now := time.Now()
	ttl := s.Settings.GetDuration(ctx, settings.KeyOverbookingTTLMinutes, 30*time.Minute)
	expiresAt := now.Add(ttl)
	if cutoff := trip.DepartureAt.Add(-5 * time.Minute); cutoff.Before(expiresAt) {
		expiresAt = cutoff
	}
	if !now.Before(expiresAt) {
		return nil, utils.Conflictf("trip %s departs too soon for an overbooking request", in.TripID)
	}

	req := models.OverbookingRequest{
		ID:            utils.GenerateID(),
		TripID:        in.TripID,
		SeatNumber:    in.SeatNumber,
		FromPosition:  in.FromPosition,
		ToPosition:    in.ToPosition,
		PassengerID:   in.PassengerID,
		PaymentMethod: in.PaymentMethod,
		Status:        models.OverbookingPending,
		Reason:        in.Reason,
		RequestedBy:   in.RequestedBy,
		RequestedAt:   now,
		ExpiresAt:     expiresAt,
	}
	if err := s.DB.InsertRequest(ctx, req); err != nil {
		return nil, err
	}

	s.Logger.LogTicket("OVERBOOK_REQUEST", req.ID, fmt.Sprintf("trip %s seat %s expires %s",
		req.TripID, req.SeatNumber, req.ExpiresAt.Format(time.RFC3339)))
	return &req, nil
}

func (s *Service) Get(ctx context.Context, id string) (*models.OverbookingRequest, error) {
	return s.DB.GetRequest(ctx, id)
}

// Approve issues the drafted ticket with the capacity cap bypassed. A
// request found past its expiry is flipped to EXPIRED on the spot.
func (s *Service) Approve(ctx context.Context, id, approverID string) (*models.Ticket, error) {
	req, err := s.DB.GetRequest(ctx, id)
	if err != nil {
		return nil, err
	}
	if req.Status != models.OverbookingPending {
		return nil, utils.Transitionf("overbooking request %s is %s, only PENDING requests can be approved", id, req.Status)
	}

	now := time.Now()
	if !now.Before(req.ExpiresAt) {
		req.Status = models.OverbookingExpired
		if uerr := s.DB.UpdateRequest(ctx, *req); uerr != nil {
			return nil, uerr
		}
		return nil, utils.Conflictf("overbooking request %s expired at %s", id, req.ExpiresAt.Format(time.RFC3339))
	}

	ticket, err := s.Tickets.Create(ctx, tickets.CreateRequest{
		TripID:        req.TripID,
		SeatNumber:    req.SeatNumber,
		FromPosition:  req.FromPosition,
		ToPosition:    req.ToPosition,
		PassengerID:   req.PassengerID,
		PaymentMethod: req.PaymentMethod,
		Overbooked:    true,
	})
	if err != nil {
		return nil, err
	}

	req.Status = models.OverbookingApproved
	req.ApprovedBy = approverID
	req.ApprovedAt = now
	req.TicketID = ticket.ID
	if err := s.DB.UpdateRequest(ctx, *req); err != nil {
		return nil, err
	}

	s.Logger.LogTicket("OVERBOOK_APPROVE", req.ID, fmt.Sprintf("ticket %s issued by %s", ticket.ID, approverID))
	return ticket, nil
}

// Reject closes a PENDING request without issuing a ticket.
func (s *Service) Reject(ctx context.Context, id, approverID, reason string) (*models.OverbookingRequest, error) {
	req, err := s.DB.GetRequest(ctx, id)
	if err != nil {
		return nil, err
	}
	if req.Status != models.OverbookingPending {
		return nil, utils.Transitionf("overbooking request %s is %s, only PENDING requests can be rejected", id, req.Status)
	}

	req.Status = models.OverbookingRejected
	req.ApprovedBy = approverID
	req.ApprovedAt = time.Now()
	if reason != "" {
		req.Reason = reason
	}
	if err := s.DB.UpdateRequest(ctx, *req); err != nil {
		return nil, err
	}

	s.Logger.LogTicket("OVERBOOK_REJECT", req.ID, fmt.Sprintf("rejected by %s", approverID))
	return req, nil
}

// ExpireStale flips overdue PENDING requests to EXPIRED in bulk. Safe
// to run alongside Approve: both guard on the PENDING status.
func (s *Service) ExpireStale(ctx context.Context, now time.Time) (int64, error) {
	expired, err := s.DB.ExpirePendingBefore(ctx, now)
	if err != nil {
		return 0, err
	}
	if expired > 0 {
		s.Logger.LogSweep("overbooking-expiry", fmt.Sprintf("expired %d overdue requests", expired))
	}
	return expired, nil
}
