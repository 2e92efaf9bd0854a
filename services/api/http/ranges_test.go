package http

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zephyrlab/weatherhub/internal/models"
)

func TestParseRangeFilterWindows(t *testing.T) {
	now := time.Date(2026, 3, 14, 9, 30, 0, 0, time.Local)

	cases := []struct {
		raw  string
		span time.Duration
	}{
		{"", time.Minute},
		{"1m", time.Minute},
		{"30m", 30 * time.Minute},
		{"2h", 2 * time.Hour},
		{"7d", 7 * 24 * time.Hour},
	}

	for _, tc := range cases {
		t.Run("range="+tc.raw, func(t *testing.T) {
			f := parseRangeFilter(tc.raw, now)
			require.NotNil(t, f.From)
			require.NotNil(t, f.To)
			assert.Equal(t, now.Add(-tc.span), *f.From)
			assert.Equal(t, now, *f.To)
		})
	}
}

func TestParseRangeFilterAll(t *testing.T) {
	now := time.Date(2026, 3, 14, 9, 30, 0, 0, time.Local)

	f := parseRangeFilter("all", now)
	assert.Nil(t, f.From, "all has no lower bound")
	require.NotNil(t, f.To)
	assert.Equal(t, now, *f.To)
}

func TestParseRangeFilterLiteralStart(t *testing.T) {
	now := time.Date(2026, 3, 14, 9, 30, 0, 0, time.Local)

	f := parseRangeFilter("2026-03-14 08:00:00", now)
	require.NotNil(t, f.From)
	assert.Equal(t, "2026-03-14 08:00:00", models.FormatTime(*f.From))
	assert.Equal(t, now, *f.To)

	f = parseRangeFilter("2026-03-13", now)
	require.NotNil(t, f.From)
	assert.Equal(t, "2026-03-13 00:00:00", models.FormatTime(*f.From))
}

func TestParseRangeFilterFallsBackToOneHour(t *testing.T) {
	now := time.Date(2026, 3, 14, 9, 30, 0, 0, time.Local)

	for _, raw := range []string{"garbage", "xm", "0m", "-5h", "m", "14:00"} {
		f := parseRangeFilter(raw, now)
		require.NotNil(t, f.From, "range=%s", raw)
		assert.Equal(t, now.Add(-time.Hour), *f.From, "range=%s", raw)
	}
}
