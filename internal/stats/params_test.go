package stats

import (
	"errors"
	"testing"
	"time"
)

var testNow = time.Date(2026, 3, 15, 12, 0, 0, 0, time.UTC)

func TestResolveWindowDefaults(t *testing.T) {
	w, err := ResolveWindow("", "", "", testNow)
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}

	if w.Start != nil {
		t.Errorf("expected open-ended start, got %v", w.Start)
	}
	if !w.End.Equal(testNow) {
		t.Errorf("expected end %v, got %v", testNow, w.End)
	}

	// With no explicit range the comparison window is exactly days 31-60
	// before now.
	wantPrevEnd := testNow.Add(-30 * 24 * time.Hour)
	wantPrevStart := testNow.Add(-60 * 24 * time.Hour)
	if !w.PrevEnd.Equal(wantPrevEnd) {
		t.Errorf("prevEnd = %v, want %v", w.PrevEnd, wantPrevEnd)
	}
	if !w.PrevStart.Equal(wantPrevStart) {
		t.Errorf("prevStart = %v, want %v", w.PrevStart, wantPrevStart)
	}
	if w.FiltersCurrency() {
		t.Errorf("expected no currency filter, got %q", w.Currency)
	}
}

func TestResolveWindowExplicitRange(t *testing.T) {
	start := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	end := time.Date(2026, 3, 11, 0, 0, 0, 0, time.UTC)

	w, err := ResolveWindow("2026-03-01", "2026-03-11", "", testNow)
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}

	if w.Start == nil || !w.Start.Equal(start) {
		t.Fatalf("start = %v, want %v", w.Start, start)
	}
	if !w.End.Equal(end) {
		t.Fatalf("end = %v, want %v", w.End, end)
	}

	// Previous period: contiguous, non-overlapping, same length, ending 1ms
	// before the requested start.
	wantPrevEnd := start.Add(-time.Millisecond)
	wantPrevStart := start.Add(-end.Sub(start) - time.Millisecond)
	if !w.PrevEnd.Equal(wantPrevEnd) {
		t.Errorf("prevEnd = %v, want %v", w.PrevEnd, wantPrevEnd)
	}
	if !w.PrevStart.Equal(wantPrevStart) {
		t.Errorf("prevStart = %v, want %v", w.PrevStart, wantPrevStart)
	}
	if got, want := w.PrevEnd.Sub(w.PrevStart), end.Sub(start); got != want {
		t.Errorf("previous period length = %v, want %v", got, want)
	}
	if !w.PrevEnd.Before(start) {
		t.Errorf("previous period overlaps current: prevEnd %v, start %v", w.PrevEnd, start)
	}
}

func TestResolveWindowCurrencyFilter(t *testing.T) {
	cases := []struct {
		raw  string
		want string
	}{
		{"", ""},
		{"ALL", ""},
		{"all", ""},
		{"eur", "EUR"},
		{" gbp ", "GBP"},
	}
	for _, tc := range cases {
		w, err := ResolveWindow("", "", tc.raw, testNow)
		if err != nil {
			t.Fatalf("ResolveWindow(%q): %v", tc.raw, err)
		}
		if w.Currency != tc.want {
			t.Errorf("currency %q normalized to %q, want %q", tc.raw, w.Currency, tc.want)
		}
	}
}

func TestResolveWindowInvalidDates(t *testing.T) {
	if _, err := ResolveWindow("yesterday", "", "", testNow); !errors.Is(err, ErrInvalidDate) {
		t.Errorf("invalid startDate: got %v, want ErrInvalidDate", err)
	}
	if _, err := ResolveWindow("", "13/01/2026", "", testNow); !errors.Is(err, ErrInvalidDate) {
		t.Errorf("invalid endDate: got %v, want ErrInvalidDate", err)
	}
}

func TestResolveWindowAcceptsRFC3339(t *testing.T) {
	w, err := ResolveWindow("2026-03-01T09:30:00Z", "2026-03-02T09:30:00Z", "", testNow)
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if w.Start == nil || w.Start.Hour() != 9 {
		t.Fatalf("expected RFC3339 start to keep time of day, got %v", w.Start)
	}
}
