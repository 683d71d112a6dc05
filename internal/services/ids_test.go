package services

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"example.com/salesops/config"
)

func testOpsConfig() config.OpsConfig {
	return config.OpsConfig{
		CustomerIDPrefix: "PK",
		CustomerIDDigits: 2,
		OrderType:        "ASK",
		SKUDigits:        5,
		Timezone:         "Asia/Tokyo",
	}
}

func TestNextCustomerID(t *testing.T) {
	gen, err := NewIDGenerator(testOpsConfig(), newMemCounterStore())
	require.NoError(t, err)

	ctx := context.Background()
	id, err := gen.NextCustomerID(ctx)
	require.NoError(t, err)
	require.Equal(t, "PK01", id)

	id, err = gen.NextCustomerID(ctx)
	require.NoError(t, err)
	require.Equal(t, "PK02", id)
}

func TestNextOrderIDScopedPerCustomerAndDate(t *testing.T) {
	gen, err := NewIDGenerator(testOpsConfig(), newMemCounterStore())
	require.NoError(t, err)

	ctx := context.Background()
	jst, err := time.LoadLocation("Asia/Tokyo")
	require.NoError(t, err)
	day1 := time.Date(2025, 1, 1, 10, 0, 0, 0, jst)
	day2 := time.Date(2025, 1, 2, 10, 0, 0, 0, jst)

	id, err := gen.NextOrderID(ctx, "PK01", day1)
	require.NoError(t, err)
	require.Equal(t, "PK01-ASK-20250101-01", id)

	id, err = gen.NextOrderID(ctx, "PK01", day1)
	require.NoError(t, err)
	require.Equal(t, "PK01-ASK-20250101-02", id)

	// A new date restarts the sequence.
	id, err = gen.NextOrderID(ctx, "PK01", day2)
	require.NoError(t, err)
	require.Equal(t, "PK01-ASK-20250102-01", id)

	// So does a different customer on the same date.
	id, err = gen.NextOrderID(ctx, "PK02", day1)
	require.NoError(t, err)
	require.Equal(t, "PK02-ASK-20250101-01", id)
}

func TestNextOrderIDUsesBusinessTimezone(t *testing.T) {
	gen, err := NewIDGenerator(testOpsConfig(), newMemCounterStore())
	require.NoError(t, err)

	// 2025-01-01 20:00 UTC is already 2025-01-02 in Tokyo.
	utcEvening := time.Date(2025, 1, 1, 20, 0, 0, 0, time.UTC)
	id, err := gen.NextOrderID(context.Background(), "PK01", utcEvening)
	require.NoError(t, err)
	require.Equal(t, "PK01-ASK-20250102-01", id)
}

func TestNextSKUCode(t *testing.T) {
	gen, err := NewIDGenerator(testOpsConfig(), newMemCounterStore())
	require.NoError(t, err)

	code, err := gen.NextSKUCode(context.Background())
	require.NoError(t, err)
	require.Equal(t, "SKU00001", code)
}

func TestNewIDGeneratorRejectsBadTimezone(t *testing.T) {
	cfg := testOpsConfig()
	cfg.Timezone = "Mars/Olympus"
	_, err := NewIDGenerator(cfg, newMemCounterStore())
	require.Error(t, err)
}
