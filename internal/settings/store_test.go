package settings_test

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
	"ms-reservation/internal/settings"
	"ms-reservation/internal/utils"
)

func setupStore(t *testing.T) *settings.Store {
	t.Helper()

	sqldb, err := sql.Open(sqliteshim.ShimName, "file::memory:?cache=shared")
	require.NoError(t, err)
	t.Cleanup(func() { sqldb.Close() })

	bunDB := bun.NewDB(sqldb, sqlitedialect.New())
	require.NoError(t, bunDB.ResetModel(context.Background(), (*models.Setting)(nil)))
	return settings.NewStore(bunDB)
}

func TestTypedGettersFallBackToDefaults(t *testing.T) {
	store := setupStore(t)
	ctx := context.Background()

	assert.Equal(t, "fallback", store.GetString(ctx, "missing", "fallback"))
	assert.Equal(t, 10, store.GetInt(ctx, settings.KeyHoldDurationMinutes, 10))
	assert.Equal(t, 1.1, store.GetFloat(ctx, settings.KeyOverbookingMaxRate, 1.1))
	assert.Equal(t, 15*time.Minute, store.GetDuration(ctx, settings.KeyNoShowWindowMinutes, 15*time.Minute))
}

func TestTypedGettersReadStoredValues(t *testing.T) {
	store := setupStore(t)
	ctx := context.Background()

	require.NoError(t, store.Set(ctx, settings.KeyHoldDurationMinutes, "20"))
	require.NoError(t, store.Set(ctx, settings.KeyOverbookingMaxRate, "1.25"))

	assert.Equal(t, 20, store.GetInt(ctx, settings.KeyHoldDurationMinutes, 10))
	assert.Equal(t, 20*time.Minute, store.GetDuration(ctx, settings.KeyHoldDurationMinutes, 10*time.Minute))
	assert.Equal(t, 1.25, store.GetFloat(ctx, settings.KeyOverbookingMaxRate, 1.1))
}

func TestMalformedValueFallsBackToDefault(t *testing.T) {
	store := setupStore(t)
	ctx := context.Background()

	require.NoError(t, store.Set(ctx, settings.KeyHoldDurationMinutes, "soon"))
	assert.Equal(t, 10, store.GetInt(ctx, settings.KeyHoldDurationMinutes, 10))
}

func TestSetUpserts(t *testing.T) {
	store := setupStore(t)
	ctx := context.Background()

	require.NoError(t, store.Set(ctx, settings.KeyQuickSaleDiscountPct, "20"))
	require.NoError(t, store.Set(ctx, settings.KeyQuickSaleDiscountPct, "25"))

	setting, err := store.Get(ctx, settings.KeyQuickSaleDiscountPct)
	require.NoError(t, err)
	assert.Equal(t, "25", setting.Value)

	all, err := store.List(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 1)
}

func TestGetMissingKeyIsNotFound(t *testing.T) {
	store := setupStore(t)

	_, err := store.Get(context.Background(), "nothing.here")
	assert.True(t, utils.IsNotFound(err))
}
