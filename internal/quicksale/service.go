package quicksale

import (
	"context"
	"fmt"
	"math"
	"time"

	"ms-reservation/internal/logger"
	"ms-reservation/internal/models"
	"ms-reservation/internal/segment"
	"ms-reservation/internal/settings"
	"ms-reservation/internal/tickets"
	"ms-reservation/internal/utils"
)

type TripGetter interface {
	Get(ctx context.Context, id string) (*models.Trip, error)
}

type SeatClassifier interface {
	ClassifySeats(ctx context.Context, trip *models.Trip, fromPos, toPos int) ([]segment.SeatOverview, error)
}

type TicketIssuer interface {
	Create(ctx context.Context, req tickets.CreateRequest) (*models.Ticket, error)
}

type FareLookup interface {
	Price(ctx context.Context, routeID string, fromPos, toPos int) (float64, error)
}

// Service sells last-minute discounted seats during the final window
// before departure, mainly seats freed by the no-show reconciler.
type Service struct {
	Trips    TripGetter
	Segments SeatClassifier
	Tickets  TicketIssuer
	Fare     FareLookup
	Settings settings.Reader
	Logger   *logger.Logger
}

type Offer struct {
	SeatNumber      string  `json:"seat_number"`
	SeatClass       string  `json:"seat_class"`
	FromPosition    int     `json:"from_position"`
	ToPosition      int     `json:"to_position"`
	RegularPrice    float64 `json:"regular_price"`
	DiscountedPrice float64 `json:"discounted_price"`
}

type CreateRequest struct {
	TripID        string `json:"trip_id"`
	SeatNumber    string `json:"seat_number"`
	FromPosition  int    `json:"from_position"`
	ToPosition    int    `json:"to_position"`
	PassengerID   string `json:"passenger_id"`
	PaymentMethod string `json:"payment_method"`
}

func NewService(trips TripGetter, classifier SeatClassifier, issuer TicketIssuer,
	fare FareLookup, cfg settings.Reader, log *logger.Logger) *Service {
	return &Service{
		Trips:    trips,
		Segments: classifier,
		Tickets:  issuer,
		Fare:     fare,
		Settings: cfg,
		Logger:   log,
	}
}

// windowOpen reports whether quick sale is open for the trip: BOARDING
// status and inside the final window before departure.
func (s *Service) windowOpen(ctx context.Context, trip *models.Trip, now time.Time) (bool, string) {
	if trip.Status != models.TripBoarding {
		return false, fmt.Sprintf("trip is %s, quick sale runs during boarding", trip.Status)
	}
	window := s.Settings.GetDuration(ctx, settings.KeyQuickSaleWindowMinutes, 10*time.Minute)
	opensAt := trip.DepartureAt.Add(-window)
	if now.Before(opensAt) {
		return false, fmt.Sprintf("quick sale opens at %s", opensAt.Format(time.RFC3339))
	}
	if !now.Before(trip.DepartureAt) {
		return false, "trip has departed"
	}
	return true, ""
}

// ListOffers returns the available seats for the segment at the
// discounted quick-sale price.
func (s *Service) ListOffers(ctx context.Context, tripID string, fromPos, toPos int) ([]Offer, error) {
	trip, err := s.Trips.Get(ctx, tripID)
	if err != nil {
		return nil, err
	}
	now := time.Now()
	if ok, reason := s.windowOpen(ctx, trip, now); !ok {
		return nil, utils.Conflictf("quick sale unavailable for trip %s: %s", tripID, reason)
	}

	overviews, err := s.Segments.ClassifySeats(ctx, trip, fromPos, toPos)
	if err != nil {
		return nil, err
	}

	regular, err := s.Fare.Price(ctx, trip.RouteID, fromPos, toPos)
	if err != nil {
		return nil, fmt.Errorf("fare lookup: %w", err)
	}
	discountPct := s.Settings.GetFloat(ctx, settings.KeyQuickSaleDiscountPct, 20)
	discounted := math.Round(regular*(100-discountPct)) / 100

	var offers []Offer
	for _, o := range overviews {
		if o.State != segment.SeatAvailable {
			continue
		}
		offers = append(offers, Offer{
			SeatNumber:      o.SeatNumber,
			SeatClass:       o.SeatClass,
			FromPosition:    fromPos,
			ToPosition:      toPos,
			RegularPrice:    regular,
			DiscountedPrice: discounted,
		})
	}
	return offers, nil
}

// Create sells a quick-sale ticket at the discounted price. The
// regular issue path still runs all availability checks.
func (s *Service) Create(ctx context.Context, req CreateRequest) (*models.Ticket, error) {
	trip, err := s.Trips.Get(ctx, req.TripID)
	if err != nil {
		return nil, err
	}
	now := time.Now()
	if ok, reason := s.windowOpen(ctx, trip, now); !ok {
		return nil, utils.Conflictf("quick sale unavailable for trip %s: %s", req.TripID, reason)
	}

	regular, err := s.Fare.Price(ctx, trip.RouteID, req.FromPosition, req.ToPosition)
	if err != nil {
		return nil, fmt.Errorf("fare lookup: %w", err)
	}
	discountPct := s.Settings.GetFloat(ctx, settings.KeyQuickSaleDiscountPct, 20)
	discounted := math.Round(regular*(100-discountPct)) / 100

	ticket, err := s.Tickets.Create(ctx, tickets.CreateRequest{
		TripID:        req.TripID,
		SeatNumber:    req.SeatNumber,
		FromPosition:  req.FromPosition,
		ToPosition:    req.ToPosition,
		PassengerID:   req.PassengerID,
		PaymentMethod: req.PaymentMethod,
		PriceOverride: discounted,
	})
	if err != nil {
		return nil, err
	}

	s.Logger.LogTicket("QUICK_SALE", ticket.ID, fmt.Sprintf("seat %s trip %s price %.2f (%.0f%% off)",
		ticket.SeatNumber, ticket.TripID, ticket.Price, discountPct))
	return ticket, nil
}
