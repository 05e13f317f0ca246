package migrations_test

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/pgdialect"
	"github.com/uptrace/bun/driver/pgdriver"

	"ms-reservation/internal/database/migrations"
	"ms-reservation/internal/models"
)

// Runs the full migration chain against a throwaway postgres
// container. Set INTEGRATION_TESTS=1 to enable.
func TestMigrationsAgainstPostgres(t *testing.T) {
	if os.Getenv("INTEGRATION_TESTS") == "" {
		t.Skip("set INTEGRATION_TESTS=1 to run container-backed tests")
	}

	ctx := context.Background()
	container, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: testcontainers.ContainerRequest{
			Image:        "postgres:16-alpine",
			ExposedPorts: []string{"5432/tcp"},
			Env: map[string]string{
				"POSTGRES_USER":     "reservation",
				"POSTGRES_PASSWORD": "reservation",
				"POSTGRES_DB":       "reservation",
			},
			WaitingFor: wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).WithStartupTimeout(time.Minute),
		},
		Started: true,
	})
	require.NoError(t, err)
	t.Cleanup(func() { _ = container.Terminate(ctx) })

	host, err := container.Host(ctx)
	require.NoError(t, err)
	port, err := container.MappedPort(ctx, "5432/tcp")
	require.NoError(t, err)

	dsn := fmt.Sprintf("postgres://reservation:reservation@%s:%s/reservation?sslmode=disable", host, port.Port())
	sqldb := sql.OpenDB(pgdriver.NewConnector(pgdriver.WithDSN(dsn)))
	t.Cleanup(func() { sqldb.Close() })
	require.NoError(t, sqldb.PingContext(ctx))

	bunDB := bun.NewDB(sqldb, pgdialect.New())

	runner := migrations.NewRunner(bunDB, migrations.Options{
		MigrationsDir: filepath.Join("..", "..", "..", "migrations"),
	})
	require.NoError(t, runner.MigrateUp())

	version, err := runner.Version()
	require.NoError(t, err)
	assert.EqualValues(t, 2, version)

	// The second migration seeds the business settings.
	var seeded []models.Setting
	require.NoError(t, bunDB.NewSelect().Model(&seeded).Scan(ctx))
	assert.Len(t, seeded, 12)

	// The boarding code unique index must reject duplicates.
	route := models.Route{ID: "r1", Origin: "A", Destination: "B"}
	_, err = bunDB.NewInsert().Model(&route).Exec(ctx)
	require.NoError(t, err)
	bus := models.Bus{ID: "b1", Plate: "INT-001", Capacity: 4}
	_, err = bunDB.NewInsert().Model(&bus).Exec(ctx)
	require.NoError(t, err)
	trip := models.Trip{
		ID: "tr1", RouteID: "r1", BusID: "b1", Date: time.Now().Format("2006-01-02"),
		Status: models.TripScheduled, DepartureAt: time.Now().Add(time.Hour),
	}
	_, err = bunDB.NewInsert().Model(&trip).Exec(ctx)
	require.NoError(t, err)

	first := models.Ticket{
		ID: "t1", TripID: "tr1", SeatNumber: "1A", FromPosition: 0, ToPosition: 1,
		PassengerID: "p1", Price: 50000, PaymentMethod: "cash",
		Status: models.TicketSold, BoardingCode: "BP-DUP", CreatedAt: time.Now(),
	}
	_, err = bunDB.NewInsert().Model(&first).Exec(ctx)
	require.NoError(t, err)

	second := first
	second.ID = "t2"
	second.SeatNumber = "1B"
	_, err = bunDB.NewInsert().Model(&second).Exec(ctx)
	assert.Error(t, err)

	require.NoError(t, runner.MigrateDown())
	version, err = runner.Version()
	require.NoError(t, err)
	assert.Zero(t, version)
}
