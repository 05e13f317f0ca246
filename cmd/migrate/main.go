// Command migrate applies the SQL migrations and optionally seeds a
// demo network for local development.
package main

import (
	"context"
	"database/sql"
	"flag"
	"log"
	"time"

	"github.com/joho/godotenv"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/pgdialect"
	"github.com/uptrace/bun/driver/pgdriver"

	"ms-reservation/internal/config"
	"ms-reservation/internal/database/migrations"
	"ms-reservation/internal/models"
	"ms-reservation/internal/utils"
)

func main() {
	down := flag.Bool("down", false, "roll back all migrations")
	seed := flag.Bool("seed", false, "insert a demo route, bus and trips after migrating")
	dir := flag.String("dir", "./migrations", "migrations directory")
	flag.Parse()

	_ = godotenv.Load()
	cfg := config.Load()

	connector := pgdriver.NewConnector(pgdriver.WithDSN(cfg.Database.DSN))
	sqldb := sql.OpenDB(connector)
	defer sqldb.Close()

	ctx := context.Background()
	if err := sqldb.PingContext(ctx); err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}

	db := bun.NewDB(sqldb, pgdialect.New())
	runner := migrations.NewRunner(db, migrations.Options{MigrationsDir: *dir})
	defer runner.Close()

	if *down {
		log.Println("Rolling back migrations...")
		if err := runner.MigrateDown(); err != nil {
			log.Fatalf("Migration down failed: %v", err)
		}
		log.Println("Done.")
		return
	}

	log.Println("Applying migrations...")
	if err := runner.MigrateUp(); err != nil {
		log.Fatalf("Migration up failed: %v", err)
	}
	version, err := runner.Version()
	if err != nil {
		log.Fatalf("Failed to read schema version: %v", err)
	}
	log.Printf("Schema at version %d", version)

	if *seed {
		log.Println("Seeding demo network...")
		if err := seedDemo(ctx, db); err != nil {
			log.Fatalf("Seeding failed: %v", err)
		}
	}
	log.Println("Done.")
}

func seedDemo(ctx context.Context, db *bun.DB) error {
	route := models.Route{ID: "route-demo", Origin: "Bogotá", Destination: "Medellín"}
	if _, err := db.NewInsert().Model(&route).On("CONFLICT (id) DO NOTHING").Exec(ctx); err != nil {
		return err
	}

	stops := []models.Stop{
		{ID: "stop-demo-0", RouteID: route.ID, Name: "Bogotá Terminal", Position: 0},
		{ID: "stop-demo-1", RouteID: route.ID, Name: "La Vega", Position: 1},
		{ID: "stop-demo-2", RouteID: route.ID, Name: "Honda", Position: 2},
		{ID: "stop-demo-3", RouteID: route.ID, Name: "Doradal", Position: 3},
		{ID: "stop-demo-4", RouteID: route.ID, Name: "Medellín Terminal", Position: 4},
	}
	if _, err := db.NewInsert().Model(&stops).On("CONFLICT (id) DO NOTHING").Exec(ctx); err != nil {
		return err
	}

	bus := models.Bus{ID: "bus-demo", Plate: "XYZ-123", Capacity: 4}
	if _, err := db.NewInsert().Model(&bus).On("CONFLICT (id) DO NOTHING").Exec(ctx); err != nil {
		return err
	}

	seats := []models.Seat{
		{ID: "seat-demo-1", BusID: bus.ID, Number: "1A", SeatClass: "standard"},
		{ID: "seat-demo-2", BusID: bus.ID, Number: "1B", SeatClass: "standard"},
		{ID: "seat-demo-3", BusID: bus.ID, Number: "2A", SeatClass: "premium"},
		{ID: "seat-demo-4", BusID: bus.ID, Number: "2B", SeatClass: "premium"},
	}
	if _, err := db.NewInsert().Model(&seats).On("CONFLICT (id) DO NOTHING").Exec(ctx); err != nil {
		return err
	}

	fares := []models.FareRule{
		{ID: "fare-demo-full", RouteID: route.ID, FromPosition: 0, ToPosition: 4, BasePrice: 80000},
		{ID: "fare-demo-half", RouteID: route.ID, FromPosition: 0, ToPosition: 2, BasePrice: 45000},
	}
	if _, err := db.NewInsert().Model(&fares).On("CONFLICT (id) DO NOTHING").Exec(ctx); err != nil {
		return err
	}

	departure := time.Now().Add(48 * time.Hour).Truncate(time.Hour)
	trip := models.Trip{
		ID:              utils.GenerateID(),
		RouteID:         route.ID,
		BusID:           bus.ID,
		Date:            departure.Format("2006-01-02"),
		DepartureAt:     departure,
		ArrivalEstimate: departure.Add(9 * time.Hour),
		Status:          models.TripScheduled,
	}
	_, err := db.NewInsert().Model(&trip).Exec(ctx)
	return err
}
