package stats

import (
	"testing"
	"time"
)

func TestParseFlexibleTimestamp(t *testing.T) {
	native := time.Date(2026, 2, 10, 8, 30, 0, 0, time.UTC)

	cases := []struct {
		name  string
		value any
		want  time.Time
		ok    bool
	}{
		{"native timestamp", native, native, true},
		{"native pointer", &native, native, true},
		{"seconds object int", map[string]any{"_seconds": int64(1770000000)}, time.Unix(1770000000, 0).UTC(), true},
		{"seconds object float", map[string]any{"_seconds": float64(1770000000)}, time.Unix(1770000000, 0).UTC(), true},
		{"seconds with nanos", map[string]any{"_seconds": int64(100), "_nanoseconds": int64(5)}, time.Unix(100, 5).UTC(), true},
		{"iso string", "2026-02-10T08:30:00Z", native, true},
		{"date-only string", "2026-02-10", time.Date(2026, 2, 10, 0, 0, 0, 0, time.UTC), true},
		{"garbage string", "not-a-date", time.Time{}, false},
		{"empty string", "", time.Time{}, false},
		{"nil", nil, time.Time{}, false},
		{"object without seconds", map[string]any{"seconds": int64(5)}, time.Time{}, false},
		{"number", float64(1770000000), time.Time{}, false},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, ok := ParseFlexibleTimestamp(tc.value)
			if ok != tc.ok {
				t.Fatalf("ok = %v, want %v", ok, tc.ok)
			}
			if ok && !got.Equal(tc.want) {
				t.Fatalf("got %v, want %v", got, tc.want)
			}
		})
	}
}

func TestParseAmount(t *testing.T) {
	cases := []struct {
		name  string
		value any
		want  float64
		ok    bool
	}{
		{"float", 120.5, 120.5, true},
		{"int", 50, 50, true},
		{"int64", int64(7), 7, true},
		{"numeric string", "99.95", 99.95, true},
		{"padded string", "  42 ", 42, true},
		{"missing", nil, 0, true},
		{"garbage string", "N/A", 0, false},
		{"empty string", "", 0, false},
		{"bool", true, 0, false},
		{"nan string", "NaN", 0, false},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, ok := ParseAmount(tc.value)
			if ok != tc.ok {
				t.Fatalf("ok = %v, want %v", ok, tc.ok)
			}
			if got != tc.want {
				t.Fatalf("got %v, want %v", got, tc.want)
			}
		})
	}
}

func TestNormalizeCurrency(t *testing.T) {
	cases := []struct {
		value any
		want  string
	}{
		{"usd", "USD"},
		{" eur ", "EUR"},
		{"NGN", "NGN"},
		{"", "USD"},
		{nil, "USD"},
		{12, "USD"},
	}
	for _, tc := range cases {
		if got := NormalizeCurrency(tc.value); got != tc.want {
			t.Errorf("NormalizeCurrency(%v) = %q, want %q", tc.value, got, tc.want)
		}
	}
}

func TestIsPayout(t *testing.T) {
	cases := []struct {
		txType, status string
		want           bool
	}{
		{"payout", "pending", true},
		{"withdrawal", "completed", true},
		{"Payout", "", true},
		{"transfer", "sent", true},
		{"transfer", "Sent", true},
		{"transfer", "completed", false},
		{"deposit", "pending", false},
		{"", "", false},
	}
	for _, tc := range cases {
		if got := IsPayout(tc.txType, tc.status); got != tc.want {
			t.Errorf("IsPayout(%q, %q) = %v, want %v", tc.txType, tc.status, got, tc.want)
		}
	}
}
