package stats

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/payvost/adminstats/internal/domain"
)

// ErrInvalidDate marks a startDate/endDate query value that cannot be parsed.
var ErrInvalidDate = errors.New("invalid date parameter")

const (
	// defaultPeriod is the implicit comparison window when the caller gives
	// no explicit range: the previous period covers days 31-60 before now.
	// The current period deliberately keeps no lower bound in that case.
	defaultPeriod = 30 * 24 * time.Hour

	// trailingActiveWindow bounds the lastActive check for the active-user
	// count. It is fixed at 30 days regardless of the requested period.
	trailingActiveWindow = 30 * 24 * time.Hour
)

// ResolveWindow validates the shared query parameters and derives the
// current and previous aggregation periods.
//
// With both dates present the previous period is the contiguous,
// non-overlapping window of equal length ending 1ms before the requested
// start. With no startDate the current period is unbounded below while the
// previous period is pinned to days 31-60 before now; the asymmetry is part
// of the dashboard contract.
func ResolveWindow(startRaw, endRaw, currencyRaw string, now time.Time) (domain.Window, error) {
	end := now
	if endRaw != "" {
		ts, ok := parseTimeString(endRaw)
		if !ok {
			return domain.Window{}, fmt.Errorf("%w: endDate %q", ErrInvalidDate, endRaw)
		}
		end = ts
	}

	var start *time.Time
	if startRaw != "" {
		ts, ok := parseTimeString(startRaw)
		if !ok {
			return domain.Window{}, fmt.Errorf("%w: startDate %q", ErrInvalidDate, startRaw)
		}
		start = &ts
	}

	w := domain.Window{
		Start:    start,
		End:      end,
		Currency: normalizeCurrencyFilter(currencyRaw),
		Now:      now,
	}

	if start != nil {
		length := end.Sub(*start)
		w.PrevEnd = start.Add(-time.Millisecond)
		w.PrevStart = start.Add(-length - time.Millisecond)
	} else {
		w.PrevEnd = now.Add(-defaultPeriod)
		w.PrevStart = now.Add(-2 * defaultPeriod)
	}

	return w, nil
}

// normalizeCurrencyFilter maps the free-text currency parameter onto a
// normalized filter value; empty means no filtering.
func normalizeCurrencyFilter(raw string) string {
	c := strings.ToUpper(strings.TrimSpace(raw))
	if c == "" || c == "ALL" {
		return ""
	}
	return c
}
