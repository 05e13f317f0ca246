package settings

import (
	"context"
	"database/sql"
	"errors"
	"strconv"
	"time"

	"github.com/uptrace/bun"

	"ms-reservation/internal/models"
	"ms-reservation/internal/utils"
)

// Well-known setting keys. Every lookup carries its own default so a
// missing row never breaks a caller.
const (
	KeyHoldDurationMinutes     = "hold.duration.minutes"
	KeyHoldCleanupAfterDays    = "hold.cleanup.after.days"
	KeyCancelPartialPercentage = "cancellation.partial.percentage"
	KeyNoShowFeeFixed          = "no.show.fee.fixed"
	KeyNoShowFeePercentage     = "no.show.fee.percentage"
	KeyNoShowWindowMinutes     = "no.show.window.minutes"
	KeyOverbookingMaxRate      = "overbooking.max.rate"
	KeyOverbookingTTLMinutes   = "overbooking.ttl.minutes"
	KeyQuickSaleWindowMinutes  = "quick.sale.window.minutes"
	KeyQuickSaleDiscountPct    = "quick.sale.discount.percentage"
	KeyBoardingLeadMinutes     = "trip.boarding.lead.minutes"
	KeyDefaultFare             = "fare.default.price"
)

// Reader is the typed view the services consume.
type Reader interface {
	GetString(ctx context.Context, key, def string) string
	GetInt(ctx context.Context, key string, def int) int
	GetFloat(ctx context.Context, key string, def float64) float64
	GetDuration(ctx context.Context, key string, def time.Duration) time.Duration
}

type Store struct {
	Bun *bun.DB
}

func NewStore(db *bun.DB) *Store {
	return &Store{Bun: db}
}

func (s *Store) GetString(ctx context.Context, key, def string) string {
	var setting models.Setting
	err := s.Bun.NewSelect().
		Model(&setting).
		Where("key = ?", key).
		Limit(1).
		Scan(ctx)
	if err != nil {
		return def
	}
	return setting.Value
}

func (s *Store) GetInt(ctx context.Context, key string, def int) int {
	raw := s.GetString(ctx, key, "")
	if raw == "" {
		return def
	}
	parsed, err := strconv.Atoi(raw)
	if err != nil {
		return def
	}
	return parsed
}

func (s *Store) GetFloat(ctx context.Context, key string, def float64) float64 {
	raw := s.GetString(ctx, key, "")
	if raw == "" {
		return def
	}
	parsed, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return def
	}
	return parsed
}

// GetDuration reads a minutes-valued setting.
func (s *Store) GetDuration(ctx context.Context, key string, def time.Duration) time.Duration {
	minutes := s.GetInt(ctx, key, -1)
	if minutes < 0 {
		return def
	}
	return time.Duration(minutes) * time.Minute
}

func (s *Store) Set(ctx context.Context, key, value string) error {
	setting := models.Setting{Key: key, Value: value}
	_, err := s.Bun.NewInsert().
		Model(&setting).
		On("CONFLICT (key) DO UPDATE").
		Set("value = EXCLUDED.value").
		Exec(ctx)
	return err
}

func (s *Store) Get(ctx context.Context, key string) (*models.Setting, error) {
	var setting models.Setting
	err := s.Bun.NewSelect().
		Model(&setting).
		Where("key = ?", key).
		Limit(1).
		Scan(ctx)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, utils.NotFoundf("setting %s", key)
	}
	if err != nil {
		return nil, err
	}
	return &setting, nil
}

func (s *Store) List(ctx context.Context) ([]models.Setting, error) {
	var all []models.Setting
	err := s.Bun.NewSelect().
		Model(&all).
		Order("key").
		Scan(ctx)
	if err != nil {
		return nil, err
	}
	return all, nil
}
