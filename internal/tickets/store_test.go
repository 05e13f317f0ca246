package tickets_test

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
	"ms-reservation/internal/tickets"
	"ms-reservation/internal/utils"
)

func setupStore(t *testing.T) *tickets.Store {
	t.Helper()

	sqldb, err := sql.Open(sqliteshim.ShimName, "file::memory:?cache=shared")
	require.NoError(t, err)
	t.Cleanup(func() { sqldb.Close() })

	bunDB := bun.NewDB(sqldb, sqlitedialect.New())
	require.NoError(t, bunDB.ResetModel(context.Background(), (*models.Ticket)(nil)))
	return tickets.NewStore(bunDB)
}

func soldTicket(id string) models.Ticket {
	return models.Ticket{
		ID: id, TripID: "trip1", SeatNumber: "1A", FromPosition: 0, ToPosition: 2,
		PassengerID: "p1", Price: 80000, PaymentMethod: "card", Status: models.TicketSold,
		BoardingCode: "BRD-" + id, CreatedAt: time.Now(),
	}
}

func TestUpdateTicketPersistsTransition(t *testing.T) {
	store := setupStore(t)
	ctx := context.Background()

	require.NoError(t, store.CreateTicket(ctx, soldTicket("t1")))

	ticket, err := store.GetTicketByID(ctx, "t1")
	require.NoError(t, err)
	ticket.Status = models.TicketUsed
	require.NoError(t, store.UpdateTicket(ctx, *ticket))

	got, err := store.GetTicketByID(ctx, "t1")
	require.NoError(t, err)
	assert.Equal(t, models.TicketUsed, got.Status)
}

func TestUpdateTicketPersistsCancellationColumns(t *testing.T) {
	store := setupStore(t)
	ctx := context.Background()

	require.NoError(t, store.CreateTicket(ctx, soldTicket("t1")))

	ticket, err := store.GetTicketByID(ctx, "t1")
	require.NoError(t, err)
	now := time.Now()
	ticket.Status = models.TicketCancelled
	ticket.Policy = models.PartialRefund
	ticket.RefundAmount = 40000
	ticket.CancelledAt = now
	require.NoError(t, store.UpdateTicket(ctx, *ticket))

	got, err := store.GetTicketByID(ctx, "t1")
	require.NoError(t, err)
	assert.Equal(t, models.TicketCancelled, got.Status)
	assert.Equal(t, models.PartialRefund, got.Policy)
	assert.Equal(t, 40000.0, got.RefundAmount)
	assert.WithinDuration(t, now, got.CancelledAt, time.Second)
}

// A transition that loses the race to another writer must fail and
// leave the terminal row intact, fee included.
func TestUpdateTicketCannotOverwriteTerminalRow(t *testing.T) {
	store := setupStore(t)
	ctx := context.Background()

	require.NoError(t, store.CreateTicket(ctx, soldTicket("t1")))

	// Stale read before the other writer lands.
	stale, err := store.GetTicketByID(ctx, "t1")
	require.NoError(t, err)

	noShow, err := store.GetTicketByID(ctx, "t1")
	require.NoError(t, err)
	noShow.Status = models.TicketNoShow
	noShow.RefundAmount = -5000
	require.NoError(t, store.UpdateTicket(ctx, *noShow))

	stale.Status = models.TicketCancelled
	stale.Policy = models.FullRefund
	stale.RefundAmount = 80000
	err = store.UpdateTicket(ctx, *stale)
	assert.True(t, utils.IsConflict(err))

	got, err := store.GetTicketByID(ctx, "t1")
	require.NoError(t, err)
	assert.Equal(t, models.TicketNoShow, got.Status)
	assert.Equal(t, -5000.0, got.RefundAmount)
}

func TestUpdateMissingTicketConflicts(t *testing.T) {
	store := setupStore(t)

	ghost := soldTicket("nope")
	ghost.Status = models.TicketUsed
	err := store.UpdateTicket(context.Background(), ghost)
	assert.True(t, utils.IsConflict(err))
}

func TestGetTicketByBoardingCode(t *testing.T) {
	store := setupStore(t)
	ctx := context.Background()

	require.NoError(t, store.CreateTicket(ctx, soldTicket("t1")))

	got, err := store.GetTicketByBoardingCode(ctx, "BRD-t1")
	require.NoError(t, err)
	assert.Equal(t, "t1", got.ID)

	_, err = store.GetTicketByBoardingCode(ctx, "BRD-none")
	assert.True(t, utils.IsNotFound(err))
}

func TestCountActiveCountsSoldAndUsed(t *testing.T) {
	store := setupStore(t)
	ctx := context.Background()

	sold := soldTicket("t-sold")
	require.NoError(t, store.CreateTicket(ctx, sold))

	used := soldTicket("t-used")
	used.SeatNumber = "1B"
	used.Status = models.TicketUsed
	require.NoError(t, store.CreateTicket(ctx, used))

	cancelled := soldTicket("t-cancelled")
	cancelled.SeatNumber = "2A"
	cancelled.Status = models.TicketCancelled
	require.NoError(t, store.CreateTicket(ctx, cancelled))

	other := soldTicket("t-other-trip")
	other.TripID = "trip2"
	require.NoError(t, store.CreateTicket(ctx, other))

	count, err := store.CountActive(ctx, "trip1")
	require.NoError(t, err)
	assert.Equal(t, 2, count)
}
