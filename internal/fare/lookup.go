package fare

import (
	"context"
	"database/sql"
	"errors"

	"github.com/uptrace/bun"

	"ms-reservation/internal/models"
	"ms-reservation/internal/settings"
)

const defaultBasePrice = 50000

// Lookup resolves the price of a route segment. It is a pure read:
// called once before a ticket insert, never inside the write
// transaction.
type Lookup struct {
	Bun      *bun.DB
	Settings settings.Reader
}

func NewLookup(db *bun.DB, cfg settings.Reader) *Lookup {
	return &Lookup{Bun: db, Settings: cfg}
}

// Price returns the fare-rule price covering [fromPos,toPos) on the
// route, falling back to the configured default when no rule matches.
func (l *Lookup) Price(ctx context.Context, routeID string, fromPos, toPos int) (float64, error) {
	var rule models.FareRule
	err := l.Bun.NewSelect().
		Model(&rule).
		Where("route_id = ?", routeID).
		Where("from_position <= ?", fromPos).
		Where("to_position >= ?", toPos).
		Order("base_price ASC").
		Limit(1).
		Scan(ctx)
	if errors.Is(err, sql.ErrNoRows) {
		return l.Settings.GetFloat(ctx, settings.KeyDefaultFare, defaultBasePrice), nil
	}
	if err != nil {
		return 0, err
	}
	return rule.BasePrice, nil
}
