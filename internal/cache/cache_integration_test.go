//go:build integration

package cache_test

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"tailorbooks-backend/internal/cache"
	"tailorbooks-backend/internal/domain"
	"tailorbooks-backend/internal/ports"
	"tailorbooks-backend/internal/testhelpers"
)

func TestSettingsCacheAndLocker(t *testing.T) {
	ctx := context.Background()
	rdb, err := cache.NewRedisClient(ctx, testhelpers.StartRedis(t))
	require.NoError(t, err)
	t.Cleanup(func() { _ = rdb.Close() })

	settings := cache.NewSettingsCache(rdb, time.Minute, slog.New(slog.NewTextHandler(io.Discard, nil)))
	_, ok := settings.Get(ctx, 1)
	assert.False(t, ok)

	want := domain.BusinessSettings{BusinessName: "Stitch & Co", CurrencyCode: "NGN", ReportingYear: 2024, LowStockAlerts: true}
	settings.Set(ctx, 1, want)
	got, ok := settings.Get(ctx, 1)
	require.True(t, ok)
	assert.Equal(t, want, *got)

	settings.Invalidate(ctx, 1)
	_, ok = settings.Get(ctx, 1)
	assert.False(t, ok)

	locker := cache.NewLocker(rdb)
	release, err := locker.Acquire(ctx, "payment:1:id:7", 5*time.Second)
	require.NoError(t, err)

	_, err = locker.Acquire(ctx, "payment:1:id:7", 5*time.Second)
	require.ErrorIs(t, err, ports.ErrLockHeld)

	require.NoError(t, release(ctx))
	again, err := locker.Acquire(ctx, "payment:1:id:7", 5*time.Second)
	require.NoError(t, err)
	require.NoError(t, again(ctx))

	require.NoError(t, cache.Pinger{Client: rdb}.Health(ctx))
}
