package api_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ms-reservation/internal/api"
	"ms-reservation/internal/auth"
	"ms-reservation/internal/cancellation"
	"ms-reservation/internal/logger"
	"ms-reservation/internal/models"
	"ms-reservation/internal/notify"
	"ms-reservation/internal/overbooking"
	"ms-reservation/internal/tickets"
	"ms-reservation/internal/trips"
	"ms-reservation/internal/utils"
)

const testSecret = "api-test-secret"

// Hand-rolled fixed-state stubs: the routing tests only need a few
// read paths to respond.

type stubTripDB struct {
	trip *models.Trip
}

func (s stubTripDB) GetTrip(_ context.Context, id string) (*models.Trip, error) {
	if s.trip == nil || s.trip.ID != id {
		return nil, utils.NotFoundf("trip %s", id)
	}
	return s.trip, nil
}

func (s stubTripDB) TripsByStatus(context.Context, models.TripStatus) ([]models.Trip, error) {
	return nil, nil
}

func (s stubTripDB) UpdateTripStatus(context.Context, string, models.TripStatus) error {
	return nil
}

type stubTicketDB struct {
	ticket *models.Ticket
	active int
}

func (s stubTicketDB) CreateTicket(context.Context, models.Ticket) error { return nil }

func (s stubTicketDB) GetTicketByID(_ context.Context, id string) (*models.Ticket, error) {
	if s.ticket == nil || s.ticket.ID != id {
		return nil, utils.NotFoundf("ticket %s", id)
	}
	return s.ticket, nil
}

func (s stubTicketDB) GetTicketByBoardingCode(_ context.Context, code string) (*models.Ticket, error) {
	return nil, utils.NotFoundf("boarding code %s", code)
}

func (s stubTicketDB) UpdateTicket(context.Context, models.Ticket) error { return nil }

func (s stubTicketDB) TicketsByTripAndStatus(context.Context, string, models.TicketStatus) ([]models.Ticket, error) {
	return nil, nil
}

func (s stubTicketDB) CountActive(context.Context, string) (int, error) { return s.active, nil }

type stubChecker struct{}

func (stubChecker) ValidateSegment(context.Context, *models.Trip, int, int) error { return nil }
func (stubChecker) SeatAvailable(context.Context, string, string, int, int) (bool, string, error) {
	return true, "", nil
}

type stubFare struct{}

func (stubFare) Price(context.Context, string, int, int) (float64, error) { return 50000, nil }

type stubLocker struct{}

func (stubLocker) Acquire(context.Context, string, string, string) (bool, error) { return true, nil }
func (stubLocker) Release(context.Context, string, string, string) error         { return nil }

type stubOverbookingDB struct{}

func (stubOverbookingDB) InsertRequest(context.Context, models.OverbookingRequest) error { return nil }
func (stubOverbookingDB) GetRequest(_ context.Context, id string) (*models.OverbookingRequest, error) {
	return nil, utils.NotFoundf("overbooking request %s", id)
}
func (stubOverbookingDB) UpdateRequest(context.Context, models.OverbookingRequest) error { return nil }
func (stubOverbookingDB) ExpirePendingBefore(context.Context, time.Time) (int64, error) {
	return 0, nil
}

type staticSettings struct{}

func (staticSettings) GetString(_ context.Context, _, def string) string         { return def }
func (staticSettings) GetInt(_ context.Context, _ string, def int) int           { return def }
func (staticSettings) GetFloat(_ context.Context, _ string, def float64) float64 { return def }
func (staticSettings) GetDuration(_ context.Context, _ string, def time.Duration) time.Duration {
	return def
}

func newTestRouter(t *testing.T) http.Handler {
	t.Helper()
	log := logger.NewLogger()

	trip := &models.Trip{
		ID: "trip1", RouteID: "route1", BusID: "bus1",
		Status: models.TripScheduled, DepartureAt: time.Now().Add(24 * time.Hour),
		Bus: &models.Bus{ID: "bus1", Capacity: 40},
	}
	tripService := trips.NewService(stubTripDB{trip: trip}, staticSettings{}, log)
	ticketService := tickets.NewService(
		stubTicketDB{active: 30}, tripService, stubChecker{}, stubFare{}, stubLocker{},
		cancellation.NewResolver(staticSettings{}), notify.Noop{}, log,
	)
	overbookingService := overbooking.NewService(stubOverbookingDB{}, tripService, ticketService, staticSettings{}, log)

	h := &api.Handler{
		Tickets:     ticketService,
		Trips:       tripService,
		Overbooking: overbookingService,
		Logger:      log,
	}
	return h.Routes(auth.Middleware(testSecret, nil))
}

func signToken(t *testing.T, role string) string {
	t.Helper()
	claims := auth.Claims{
		Role: role,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   "user1",
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(testSecret))
	require.NoError(t, err)
	return signed
}

func TestHealthIsOpen(t *testing.T) {
	router := newTestRouter(t)

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestAPIRequiresToken(t *testing.T) {
	router := newTestRouter(t)

	req := httptest.NewRequest(http.MethodGet, "/v1/trips/trip1/occupancy", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestPassengerCannotSellTickets(t *testing.T) {
	router := newTestRouter(t)

	req := httptest.NewRequest(http.MethodPost, "/v1/tickets/", nil)
	req.Header.Set("Authorization", "Bearer "+signToken(t, auth.RolePassenger))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusForbidden, rec.Code)
}

func TestTripOccupancy(t *testing.T) {
	router := newTestRouter(t)

	req := httptest.NewRequest(http.MethodGet, "/v1/trips/trip1/occupancy", nil)
	req.Header.Set("Authorization", "Bearer "+signToken(t, auth.RoleAgent))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)

	var body utils.APIResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&body))
	data, ok := body.Data.(map[string]interface{})
	require.True(t, ok)
	assert.InDelta(t, 0.75, data["occupancy_rate"], 0.001)
	assert.Equal(t, true, data["can_overbook"])
}

func TestUnknownTicketIs404(t *testing.T) {
	router := newTestRouter(t)

	req := httptest.NewRequest(http.MethodGet, "/v1/tickets/missing", nil)
	req.Header.Set("Authorization", "Bearer "+signToken(t, auth.RoleAgent))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusNotFound, rec.Code)
}
