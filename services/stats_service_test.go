package services

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func TestSumRevenue(t *testing.T) {
	rows := []BookingRow{
		{Price: 19.99},
		{Price: 19.99},
		{Price: 0},
		{Price: 150.50},
	}

	total := SumRevenue(rows)

	assert.True(t, total.Equal(decimal.RequireFromString("190.48")),
		"expected 190.48, got %s", total.String())
}

func TestSumRevenue_Empty(t *testing.T) {
	assert.True(t, SumRevenue(nil).IsZero())
}

func TestSumRevenue_NoFloatDrift(t *testing.T) {
	// 0.1 added ten times must be exactly 1.00
	rows := make([]BookingRow, 10)
	for i := range rows {
		rows[i] = BookingRow{Price: 0.1}
	}

	assert.Equal(t, "1.00", SumRevenue(rows).StringFixed(2))
}

func TestMonthlyBuckets(t *testing.T) {
	now := time.Date(2026, time.August, 31, 12, 0, 0, 0, time.UTC)

	rows := []BookingRow{
		{Created: time.Date(2026, time.August, 1, 9, 0, 0, 0, time.UTC)},
		{Created: time.Date(2026, time.August, 30, 9, 0, 0, 0, time.UTC)},
		{Created: time.Date(2026, time.June, 15, 9, 0, 0, 0, time.UTC)},
		// outside the trailing window, must be excluded
		{Created: time.Date(2025, time.December, 1, 9, 0, 0, 0, time.UTC)},
	}

	buckets := MonthlyBuckets(rows, 6, now)

	assert.Len(t, buckets, 6)
	assert.Equal(t, MonthBucket{Month: "2026-03", Count: 0}, buckets[0])
	assert.Equal(t, MonthBucket{Month: "2026-06", Count: 1}, buckets[3])
	assert.Equal(t, MonthBucket{Month: "2026-08", Count: 2}, buckets[5])
}

func TestMonthlyBuckets_EmptyRows(t *testing.T) {
	now := time.Date(2026, time.February, 10, 0, 0, 0, 0, time.UTC)

	buckets := MonthlyBuckets(nil, 3, now)

	assert.Equal(t, []MonthBucket{
		{Month: "2025-12", Count: 0},
		{Month: "2026-01", Count: 0},
		{Month: "2026-02", Count: 0},
	}, buckets)
}

func TestMonthlyBuckets_YearBoundary(t *testing.T) {
	now := time.Date(2026, time.January, 5, 0, 0, 0, 0, time.UTC)

	rows := []BookingRow{
		{Created: time.Date(2025, time.December, 31, 23, 59, 0, 0, time.UTC)},
		{Created: time.Date(2026, time.January, 1, 0, 1, 0, 0, time.UTC)},
	}

	buckets := MonthlyBuckets(rows, 2, now)

	assert.Equal(t, []MonthBucket{
		{Month: "2025-12", Count: 1},
		{Month: "2026-01", Count: 1},
	}, buckets)
}

func TestMonthlyBuckets_DefaultsWindow(t *testing.T) {
	now := time.Date(2026, time.August, 31, 0, 0, 0, 0, time.UTC)

	assert.Len(t, MonthlyBuckets(nil, 0, now), 6)
	assert.Len(t, MonthlyBuckets(nil, -3, now), 6)
}
