package cancellation

import (
	"context"
	"math"
	"time"

	"ms-reservation/internal/models"
	"ms-reservation/internal/settings"
)

const (
	fullRefundHours   = 24
	noRefundHours     = 2
	defaultPartialPct = 50.0
)

// Resolver maps time-to-departure to a refund policy and amount.
// h >= 24 full refund, 2 <= h < 24 partial at the configured
// percentage, h < 2 nothing.
type Resolver struct {
	Settings settings.Reader
}

func NewResolver(cfg settings.Reader) *Resolver {
	return &Resolver{Settings: cfg}
}

func (r *Resolver) Determine(departureAt, now time.Time) models.CancellationPolicy {
	hours := departureAt.Sub(now).Hours()
	switch {
	case hours >= fullRefundHours:
		return models.FullRefund
	case hours >= noRefundHours:
		return models.PartialRefund
	default:
		return models.NoRefund
	}
}

// Refund applies a policy to the ticket price, rounded to cents.
func (r *Resolver) Refund(ctx context.Context, price float64, policy models.CancellationPolicy) float64 {
	switch policy {
	case models.FullRefund:
		return price
	case models.PartialRefund:
		pct := r.Settings.GetFloat(ctx, settings.KeyCancelPartialPercentage, defaultPartialPct)
		return math.Round(price*pct) / 100
	default:
		return 0
	}
}

// CanCancel reports whether the ticket may still be cancelled and, if
// not, the reason shown to the caller.
func (r *Resolver) CanCancel(ticket *models.Ticket, trip *models.Trip, now time.Time) (bool, string) {
	switch ticket.Status {
	case models.TicketUsed:
		return false, "ticket already used"
	case models.TicketCancelled:
		return false, "ticket already cancelled"
	case models.TicketNoShow:
		return false, "ticket marked as no-show"
	}
	if now.After(trip.DepartureAt) {
		return false, "trip already departed"
	}
	return true, ""
}
