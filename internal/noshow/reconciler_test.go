package noshow_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"ms-reservation/internal/logger"
	"ms-reservation/internal/models"
	"ms-reservation/internal/noshow"
)

type MockTripSource struct {
	mock.Mock
}

func (m *MockTripSource) ByStatus(ctx context.Context, status models.TripStatus) ([]models.Trip, error) {
	args := m.Called(status)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.Trip), args.Error(1)
}

type MockTicketSource struct {
	mock.Mock
}

func (m *MockTicketSource) SoldTickets(ctx context.Context, tripID string) ([]models.Ticket, error) {
	args := m.Called(tripID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.Ticket), args.Error(1)
}

func (m *MockTicketSource) MarkNoShow(ctx context.Context, id string, fee float64) (*models.Ticket, error) {
	args := m.Called(id, fee)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Ticket), args.Error(1)
}

type staticSettings struct{}

func (staticSettings) GetString(_ context.Context, _, def string) string         { return def }
func (staticSettings) GetInt(_ context.Context, _ string, def int) int           { return def }
func (staticSettings) GetFloat(_ context.Context, _ string, def float64) float64 { return def }
func (staticSettings) GetDuration(_ context.Context, _ string, def time.Duration) time.Duration {
	return def
}

func newReconciler(trips *MockTripSource, tickets *MockTicketSource) *noshow.Reconciler {
	return noshow.NewReconciler(trips, tickets, staticSettings{}, logger.NewLogger())
}

func TestFeeIsLargerOfFixedAndPercentage(t *testing.T) {
	r := newReconciler(new(MockTripSource), new(MockTicketSource))
	ctx := context.Background()

	// 10% of 80000 is 8000, below the 10000 floor.
	assert.Equal(t, 10000.0, r.Fee(ctx, 80000))
	// 10% of 250000 is 25000, above the floor.
	assert.Equal(t, 25000.0, r.Fee(ctx, 250000))
}

func TestSweepFlagsSoldTicketsInsideWindow(t *testing.T) {
	trips := new(MockTripSource)
	tickets := new(MockTicketSource)
	now := time.Now()

	trips.On("ByStatus", models.TripBoarding).Return([]models.Trip{
		{ID: "inside", Status: models.TripBoarding, DepartureAt: now.Add(3 * time.Minute)},
		{ID: "outside", Status: models.TripBoarding, DepartureAt: now.Add(12 * time.Minute)},
	}, nil)
	tickets.On("SoldTickets", "inside").Return([]models.Ticket{
		{ID: "t1", Price: 80000, Status: models.TicketSold},
		{ID: "t2", Price: 250000, Status: models.TicketSold},
	}, nil)
	tickets.On("MarkNoShow", "t1", 10000.0).Return(&models.Ticket{ID: "t1"}, nil)
	tickets.On("MarkNoShow", "t2", 25000.0).Return(&models.Ticket{ID: "t2"}, nil)

	flagged, err := newReconciler(trips, tickets).Sweep(context.Background(), now)
	assert.NoError(t, err)
	assert.Equal(t, 2, flagged)
	tickets.AssertNotCalled(t, "SoldTickets", "outside")
	tickets.AssertExpectations(t)
}

func TestSweepIsolatesPerTicketFailures(t *testing.T) {
	trips := new(MockTripSource)
	tickets := new(MockTicketSource)
	now := time.Now()

	trips.On("ByStatus", models.TripBoarding).Return([]models.Trip{
		{ID: "trip1", Status: models.TripBoarding, DepartureAt: now.Add(2 * time.Minute)},
	}, nil)
	tickets.On("SoldTickets", "trip1").Return([]models.Ticket{
		{ID: "bad", Price: 80000, Status: models.TicketSold},
		{ID: "good", Price: 80000, Status: models.TicketSold},
	}, nil)
	tickets.On("MarkNoShow", "bad", 10000.0).Return(nil, errors.New("row locked"))
	tickets.On("MarkNoShow", "good", 10000.0).Return(&models.Ticket{ID: "good"}, nil)

	flagged, err := newReconciler(trips, tickets).Sweep(context.Background(), now)
	assert.NoError(t, err)
	assert.Equal(t, 1, flagged)
	tickets.AssertExpectations(t)
}

func TestSweepSkipsTripsBeforeWindowOpens(t *testing.T) {
	trips := new(MockTripSource)
	tickets := new(MockTicketSource)
	now := time.Now()

	trips.On("ByStatus", models.TripBoarding).Return([]models.Trip{
		{ID: "early", Status: models.TripBoarding, DepartureAt: now.Add(6 * time.Minute)},
	}, nil)

	flagged, err := newReconciler(trips, tickets).Sweep(context.Background(), now)
	assert.NoError(t, err)
	assert.Zero(t, flagged)
	tickets.AssertNotCalled(t, "SoldTickets", mock.Anything)
}
