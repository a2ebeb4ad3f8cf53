package domain

import "time"

// Window is the resolved query window for an aggregation request. Start is
// nil when the caller gave no lower bound, meaning "all time up to End".
// The previous period is always concrete: either the window immediately
// preceding an explicit range, or the fixed 31-60 days-ago window when no
// range was given.
type Window struct {
	Start     *time.Time
	End       time.Time
	PrevStart time.Time
	PrevEnd   time.Time
	Currency  string // normalized ISO code, empty when unfiltered
	Now       time.Time
}

// FiltersCurrency reports whether a currency filter is active.
func (w Window) FiltersCurrency() bool {
	return w.Currency != ""
}

// InCurrentPeriod reports whether ts falls inside the requested period.
func (w Window) InCurrentPeriod(ts time.Time) bool {
	if w.Start != nil && ts.Before(*w.Start) {
		return false
	}
	return !ts.After(w.End)
}

// InPreviousPeriod reports whether ts falls inside the comparison period.
func (w Window) InPreviousPeriod(ts time.Time) bool {
	return !ts.Before(w.PrevStart) && !ts.After(w.PrevEnd)
}

// ScanBounds returns the single range used to query each user's transaction
// sub-collection. One query per user covers both periods; the fold assigns
// each transaction to a period afterwards. The lower bound is open when the
// caller gave no explicit start, matching the "all time up to end" semantics
// of the primary period.
func (w Window) ScanBounds() (start *time.Time, end time.Time) {
	if w.Start == nil {
		return nil, w.End
	}
	prev := w.PrevStart
	return &prev, w.End
}
