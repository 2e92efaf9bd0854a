package http

import (
	"strconv"
	"strings"
	"time"

	"github.com/zephyrlab/weatherhub/internal/models"
	"github.com/zephyrlab/weatherhub/internal/store"
)

const (
	fallbackRange  = time.Hour
	dateOnlyLayout = "2006-01-02"
)

// parseRangeFilter turns the range query parameter into time bounds.
// "Nm", "Nh" and "Nd" select a trailing window, "all" everything up to
// now, and a literal timestamp or date becomes the lower bound.
// Anything unreadable falls back to the last hour instead of failing
// the request.
func parseRangeFilter(raw string, now time.Time) store.Filter {
	raw = strings.TrimSpace(raw)

	if raw == "" {
		return window(now, time.Minute)
	}

	if raw == "all" {
		to := now
		return store.Filter{To: &to}
	}

	if len(raw) > 1 {
		if span, ok := parseWindow(raw); ok {
			return window(now, span)
		}
	}

	for _, layout := range []string{models.TimeLayout, dateOnlyLayout} {
		if start, err := time.ParseInLocation(layout, raw, time.Local); err == nil {
			to := now
			return store.Filter{From: &start, To: &to}
		}
	}

	return window(now, fallbackRange)
}

func window(now time.Time, span time.Duration) store.Filter {
	from, to := now.Add(-span), now
	return store.Filter{From: &from, To: &to}
}

func parseWindow(raw string) (time.Duration, bool) {
	n, err := strconv.Atoi(raw[:len(raw)-1])
	if err != nil || n <= 0 {
		return 0, false
	}

	switch raw[len(raw)-1] {
	case 'm':
		return time.Duration(n) * time.Minute, true
	case 'h':
		return time.Duration(n) * time.Hour, true
	case 'd':
		return time.Duration(n) * 24 * time.Hour, true
	default:
		return 0, false
	}
}
