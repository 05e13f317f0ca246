package segment_test

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/sqlitedialect"
	"github.com/uptrace/bun/driver/sqliteshim"

	"ms-reservation/internal/models"
	"ms-reservation/internal/segment"
)

func setupStore(t *testing.T) *segment.Store {
	t.Helper()

	sqldb, err := sql.Open(sqliteshim.ShimName, "file::memory:?cache=shared")
	require.NoError(t, err)
	t.Cleanup(func() { sqldb.Close() })

	bunDB := bun.NewDB(sqldb, sqlitedialect.New())
	ctx := context.Background()
	for _, model := range []interface{}{
		(*models.Stop)(nil), (*models.Seat)(nil), (*models.SeatHold)(nil), (*models.Ticket)(nil),
	} {
		require.NoError(t, bunDB.ResetModel(ctx, model))
	}
	return segment.NewStore(bunDB)
}

func TestStopPositionsOrdered(t *testing.T) {
	store := setupStore(t)
	ctx := context.Background()

	stops := []models.Stop{
		{ID: "s3", RouteID: "route1", Name: "C", Position: 3},
		{ID: "s0", RouteID: "route1", Name: "A", Position: 0},
		{ID: "s1", RouteID: "route1", Name: "B", Position: 1},
		{ID: "sx", RouteID: "other", Name: "X", Position: 9},
	}
	_, err := store.Bun.NewInsert().Model(&stops).Exec(ctx)
	require.NoError(t, err)

	positions, err := store.StopPositions(ctx, "route1")
	require.NoError(t, err)
	assert.Equal(t, []int{0, 1, 3}, positions)
}

func TestActiveHoldsExcludesExpiredAndTerminal(t *testing.T) {
	store := setupStore(t)
	ctx := context.Background()
	now := time.Now()

	holds := []models.SeatHold{
		{ID: "h1", TripID: "trip1", SeatNumber: "1A", FromPosition: 0, ToPosition: 2,
			Status: models.HoldActive, ExpiresAt: now.Add(5 * time.Minute), HolderID: "u1", CreatedAt: now},
		// overdue but not yet swept: must not block
		{ID: "h2", TripID: "trip1", SeatNumber: "1A", FromPosition: 2, ToPosition: 4,
			Status: models.HoldActive, ExpiresAt: now.Add(-time.Minute), HolderID: "u2", CreatedAt: now},
		{ID: "h3", TripID: "trip1", SeatNumber: "1A", FromPosition: 0, ToPosition: 4,
			Status: models.HoldReleased, ExpiresAt: now.Add(5 * time.Minute), HolderID: "u3", CreatedAt: now},
	}
	_, err := store.Bun.NewInsert().Model(&holds).Exec(ctx)
	require.NoError(t, err)

	active, err := store.ActiveHolds(ctx, "trip1", "1A")
	require.NoError(t, err)
	require.Len(t, active, 1)
	assert.Equal(t, "h1", active[0].ID)
}

func TestActiveTicketsCountsSoldAndUsed(t *testing.T) {
	store := setupStore(t)
	ctx := context.Background()
	now := time.Now()

	tickets := []models.Ticket{
		{ID: "t1", TripID: "trip1", SeatNumber: "1A", FromPosition: 0, ToPosition: 2,
			PassengerID: "p1", Price: 100, PaymentMethod: "cash", Status: models.TicketSold,
			BoardingCode: "BRD-1", CreatedAt: now},
		{ID: "t2", TripID: "trip1", SeatNumber: "1A", FromPosition: 2, ToPosition: 4,
			PassengerID: "p2", Price: 100, PaymentMethod: "cash", Status: models.TicketUsed,
			BoardingCode: "BRD-2", CreatedAt: now},
		{ID: "t3", TripID: "trip1", SeatNumber: "1A", FromPosition: 0, ToPosition: 4,
			PassengerID: "p3", Price: 100, PaymentMethod: "cash", Status: models.TicketCancelled,
			BoardingCode: "BRD-3", CreatedAt: now},
	}
	_, err := store.Bun.NewInsert().Model(&tickets).Exec(ctx)
	require.NoError(t, err)

	active, err := store.ActiveTickets(ctx, "trip1", "1A")
	require.NoError(t, err)
	assert.Len(t, active, 2)
	for _, ticket := range active {
		assert.NotEqual(t, models.TicketCancelled, ticket.Status)
	}
}
