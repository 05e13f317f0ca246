package noshow

import (
	"context"
	"fmt"
	"math"
	"time"

	"ms-reservation/internal/logger"
	"ms-reservation/internal/models"
	"ms-reservation/internal/settings"
)

type TripSource interface {
	ByStatus(ctx context.Context, status models.TripStatus) ([]models.Trip, error)
}

type TicketSource interface {
	SoldTickets(ctx context.Context, tripID string) ([]models.Ticket, error)
	MarkNoShow(ctx context.Context, id string, fee float64) (*models.Ticket, error)
}

// Reconciler flags SOLD tickets on boarding trips as NO_SHOW once the
// no-show window before departure opens, freeing the seats for quick
// sale. It is the only writer of the NO_SHOW transition.
type Reconciler struct {
	Trips    TripSource
	Tickets  TicketSource
	Settings settings.Reader
	Logger   *logger.Logger
}

func NewReconciler(trips TripSource, tickets TicketSource, cfg settings.Reader, log *logger.Logger) *Reconciler {
	return &Reconciler{
		Trips:    trips,
		Tickets:  tickets,
		Settings: cfg,
		Logger:   log,
	}
}

// Fee is the larger of the fixed fee and the percentage of the ticket
// price.
func (r *Reconciler) Fee(ctx context.Context, price float64) float64 {
	fixed := r.Settings.GetFloat(ctx, settings.KeyNoShowFeeFixed, 10000)
	pct := r.Settings.GetFloat(ctx, settings.KeyNoShowFeePercentage, 10)
	byPct := math.Round(price*pct) / 100
	return math.Max(fixed, byPct)
}

// Sweep walks every BOARDING trip inside the no-show window and flags
// its remaining SOLD tickets. Failures are isolated per ticket.
func (r *Reconciler) Sweep(ctx context.Context, now time.Time) (int, error) {
	window := r.Settings.GetDuration(ctx, settings.KeyNoShowWindowMinutes, 5*time.Minute)

	boarding, err := r.Trips.ByStatus(ctx, models.TripBoarding)
	if err != nil {
		return 0, fmt.Errorf("list boarding trips: %w", err)
	}

	flagged := 0
	for _, trip := range boarding {
		opensAt := trip.DepartureAt.Add(-window)
		if now.Before(opensAt) {
			continue
		}

		sold, err := r.Tickets.SoldTickets(ctx, trip.ID)
		if err != nil {
			r.Logger.Error("NO_SHOW", fmt.Sprintf("Failed to list sold tickets for trip %s: %v", trip.ID, err))
			continue
		}
		for _, ticket := range sold {
			fee := r.Fee(ctx, ticket.Price)
			if _, err := r.Tickets.MarkNoShow(ctx, ticket.ID, fee); err != nil {
				r.Logger.Error("NO_SHOW", fmt.Sprintf("Failed to flag ticket %s: %v", ticket.ID, err))
				continue
			}
			flagged++
		}
	}

	if flagged > 0 {
		r.Logger.LogSweep("no-show", fmt.Sprintf("flagged %d tickets", flagged))
	}
	return flagged, nil
}
