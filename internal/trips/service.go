package trips

import (
	"context"
	"fmt"
	"time"

	"ms-reservation/internal/logger"
	"ms-reservation/internal/models"
	"ms-reservation/internal/settings"
	"ms-reservation/internal/utils"
)

const defaultBoardingLeadMinutes = 30

type DBLayer interface {
	GetTrip(ctx context.Context, id string) (*models.Trip, error)
	TripsByStatus(ctx context.Context, status models.TripStatus) ([]models.Trip, error)
	UpdateTripStatus(ctx context.Context, id string, status models.TripStatus) error
}

// Service owns the trip state machine. The scheduler drives the two
// monotonic time-based transitions; ARRIVED, CANCELLED and
// reactivation stay manual operator actions.
type Service struct {
	DB       DBLayer
	Settings settings.Reader
	Logger   *logger.Logger
}

func NewService(db DBLayer, cfg settings.Reader, log *logger.Logger) *Service {
	return &Service{DB: db, Settings: cfg, Logger: log}
}

func (s *Service) Get(ctx context.Context, id string) (*models.Trip, error) {
	trip, err := s.DB.GetTrip(ctx, id)
	if err != nil {
		return nil, err
	}
	return trip, nil
}

func (s *Service) ByStatus(ctx context.Context, status models.TripStatus) ([]models.Trip, error) {
	return s.DB.TripsByStatus(ctx, status)
}

// AdvanceStatuses applies SCHEDULED→BOARDING at departure minus the
// boarding lead and BOARDING→DEPARTED at departure time. Failures are
// isolated per trip so one bad row never aborts the batch.
func (s *Service) AdvanceStatuses(ctx context.Context, now time.Time) (int, error) {
	lead := s.Settings.GetDuration(ctx, settings.KeyBoardingLeadMinutes, defaultBoardingLeadMinutes*time.Minute)

	updated := 0

	scheduled, err := s.DB.TripsByStatus(ctx, models.TripScheduled)
	if err != nil {
		return 0, fmt.Errorf("list scheduled trips: %w", err)
	}
	for _, trip := range scheduled {
		if trip.DepartureAt.After(now) && !trip.DepartureAt.After(now.Add(lead)) {
			if err := s.DB.UpdateTripStatus(ctx, trip.ID, models.TripBoarding); err != nil {
				s.Logger.Error("TRIP", fmt.Sprintf("Failed to move trip %s to BOARDING: %v", trip.ID, err))
				continue
			}
			s.Logger.Info("TRIP", fmt.Sprintf("Trip %s now BOARDING (departs %s)", trip.ID, trip.DepartureAt.Format(time.RFC3339)))
			updated++
		}
	}

	boarding, err := s.DB.TripsByStatus(ctx, models.TripBoarding)
	if err != nil {
		return updated, fmt.Errorf("list boarding trips: %w", err)
	}
	for _, trip := range boarding {
		if !trip.DepartureAt.After(now) {
			if err := s.DB.UpdateTripStatus(ctx, trip.ID, models.TripDeparted); err != nil {
				s.Logger.Error("TRIP", fmt.Sprintf("Failed to move trip %s to DEPARTED: %v", trip.ID, err))
				continue
			}
			s.Logger.Info("TRIP", fmt.Sprintf("Trip %s DEPARTED (scheduled %s)", trip.ID, trip.DepartureAt.Format(time.RFC3339)))
			updated++
		}
	}

	return updated, nil
}

func (s *Service) MarkArrived(ctx context.Context, id string) error {
	trip, err := s.DB.GetTrip(ctx, id)
	if err != nil {
		return err
	}
	if trip.Status != models.TripDeparted {
		return utils.Transitionf("trip %s is %s, only DEPARTED trips can arrive", id, trip.Status)
	}
	return s.DB.UpdateTripStatus(ctx, id, models.TripArrived)
}

func (s *Service) Cancel(ctx context.Context, id string) error {
	trip, err := s.DB.GetTrip(ctx, id)
	if err != nil {
		return err
	}
	if trip.Status != models.TripScheduled && trip.Status != models.TripBoarding {
		return utils.Transitionf("trip %s is %s, only SCHEDULED or BOARDING trips can be cancelled", id, trip.Status)
	}
	return s.DB.UpdateTripStatus(ctx, id, models.TripCancelled)
}

func (s *Service) Reactivate(ctx context.Context, id string) error {
	trip, err := s.DB.GetTrip(ctx, id)
	if err != nil {
		return err
	}
	if trip.Status != models.TripCancelled {
		return utils.Transitionf("trip %s is %s, only CANCELLED trips can be reactivated", id, trip.Status)
	}
	return s.DB.UpdateTripStatus(ctx, id, models.TripScheduled)
}
