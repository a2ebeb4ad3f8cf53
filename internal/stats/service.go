package stats

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"sort"
	"time"

	"github.com/payvost/adminstats/internal/domain"
	"github.com/payvost/adminstats/internal/store"
)

// maxCurrencySlices bounds the currency-distribution chart; currencies
// beyond the top four by volume collapse into a synthetic OTHER slice.
const maxCurrencySlices = 4

// Clock supplies the current time; nil means time.Now.
type Clock func() time.Time

// Service computes the dashboard aggregates. Every method is a read-only,
// single-pass fold over the scanner output; accumulators live on the stack
// of the request, never in shared state.
type Service struct {
	scanner *Scanner
	logger  *slog.Logger
	clock   Clock
}

// NewService constructs a Service instance.
func NewService(scanner *Scanner, logger *slog.Logger, clock Clock) *Service {
	if clock == nil {
		clock = time.Now
	}
	return &Service{
		scanner: scanner,
		logger:  logger,
		clock:   clock,
	}
}

// Now returns the service's notion of the current time.
func (s *Service) Now() time.Time {
	return s.clock()
}

// Overview aggregates the cross-user financial summary for the requested
// window, with period-over-period growth against the previous window.
func (s *Service) Overview(ctx context.Context, w domain.Window) (domain.Overview, error) {
	scans, err := s.scanner.Scan(ctx, bothPeriodsQuery(w))
	if err != nil {
		return domain.Overview{}, err
	}

	var cur, prev accumulator
	activeCutoff := w.Now.Add(-trailingActiveWindow)
	activeUsers := 0

	for _, scan := range scans {
		if la, ok := ParseFlexibleTimestamp(scan.User.Data["lastActive"]); ok && !la.Before(activeCutoff) {
			activeUsers++
		}
		for _, tx := range scan.Transactions {
			f, ok := s.foldable(tx, w)
			if !ok {
				continue
			}
			inCur, inPrev := classifyPeriods(f, w)
			if inCur {
				cur.add(f.amount, f.payout)
			}
			if inPrev {
				prev.add(f.amount, f.payout)
			}
		}
	}

	return domain.Overview{
		TotalVolume:         cur.volume,
		ActiveUsers:         activeUsers,
		TotalUsers:          len(scans),
		TotalPayouts:        cur.payouts,
		AvgTransactionValue: cur.avg(),
		TransactionCount:    cur.count,
		Growth: domain.Growth{
			Volume: growthPct(cur.volume, prev.volume),
			// Previous-period active users are not tracked; the growth
			// figure is a fixed placeholder.
			ActiveUsers: 0,
			Payouts:     growthPct(cur.payouts, prev.payouts),
			AvgValue:    growthPct(cur.avg(), prev.avg()),
		},
	}, nil
}

// VolumeOverTime buckets the current window's volume and payouts by
// calendar month. With an explicit range every month in the range appears,
// zero-filled; with an open-ended window only months present in the data do.
func (s *Service) VolumeOverTime(ctx context.Context, w domain.Window) ([]domain.MonthlyVolume, error) {
	scans, err := s.scanner.Scan(ctx, currentPeriodQuery(w))
	if err != nil {
		return nil, err
	}

	type bucket struct {
		volume  float64
		payouts float64
	}
	buckets := make(map[monthKey]*bucket)

	for _, scan := range scans {
		for _, tx := range scan.Transactions {
			f, ok := s.foldable(tx, w)
			if !ok || !f.tsOK {
				continue
			}
			if inCur, _ := classifyPeriods(f, w); !inCur {
				continue
			}
			k := monthKeyOf(f.ts)
			b := buckets[k]
			if b == nil {
				b = &bucket{}
				buckets[k] = b
			}
			b.volume += f.amount
			if f.payout {
				b.payouts += f.amount
			}
		}
	}

	var keys []monthKey
	if w.Start != nil {
		for k := monthKeyOf(*w.Start); k <= monthKeyOf(w.End); k++ {
			keys = append(keys, k)
		}
	} else {
		for k := range buckets {
			keys = append(keys, k)
		}
		sort.Slice(keys, func(i, j int) bool { return keys[i] < keys[j] })
	}

	out := make([]domain.MonthlyVolume, 0, len(keys))
	for _, k := range keys {
		var vol, pay float64
		if b := buckets[k]; b != nil {
			vol, pay = b.volume, b.payouts
		}
		out = append(out, domain.MonthlyVolume{
			Month:   k.label(),
			Volume:  int64(math.Round(vol)),
			Payouts: int64(math.Round(pay)),
		})
	}
	return out, nil
}

// CurrencyDistribution sums the current window's volume per normalized
// currency, keeping the top four and collapsing the rest into OTHER.
func (s *Service) CurrencyDistribution(ctx context.Context, w domain.Window) ([]domain.CurrencySlice, error) {
	scans, err := s.scanner.Scan(ctx, currentPeriodQuery(w))
	if err != nil {
		return nil, err
	}

	totals := make(map[string]float64)
	for _, scan := range scans {
		for _, tx := range scan.Transactions {
			f, ok := s.foldable(tx, w)
			if !ok {
				continue
			}
			if inCur, _ := classifyPeriods(f, w); !inCur {
				continue
			}
			totals[f.currency] += f.amount
		}
	}

	names := make([]string, 0, len(totals))
	for name := range totals {
		names = append(names, name)
	}
	sort.Slice(names, func(i, j int) bool {
		if totals[names[i]] != totals[names[j]] {
			return totals[names[i]] > totals[names[j]]
		}
		return names[i] < names[j]
	})

	out := make([]domain.CurrencySlice, 0, len(names))
	if len(names) > maxCurrencySlices {
		var other float64
		for i, name := range names {
			if i < maxCurrencySlices {
				out = append(out, domain.CurrencySlice{Name: name, Value: int64(math.Round(totals[name]))})
				continue
			}
			other += totals[name]
		}
		out = append(out, domain.CurrencySlice{Name: "OTHER", Value: int64(math.Round(other))})
		return out, nil
	}

	for _, name := range names {
		out = append(out, domain.CurrencySlice{Name: name, Value: int64(math.Round(totals[name]))})
	}
	return out, nil
}

// RecentTransactions gathers the most recent transactions across all users
// within the window, newest first, trimmed to limit. Total reports how many
// matching transactions were found before trimming.
func (s *Service) RecentTransactions(ctx context.Context, w domain.Window, limit int) (domain.RecentTransactionsResult, error) {
	q := currentPeriodQuery(w)
	q.OrderDesc = true
	q.Limit = limit
	scans, err := s.scanner.Scan(ctx, q)
	if err != nil {
		return domain.RecentTransactionsResult{}, err
	}

	type row struct {
		tx   domain.RecentTransaction
		ts   time.Time
		tsOK bool
	}
	var rows []row

	for _, scan := range scans {
		email := stringField(scan.User.Data, "email")
		customer := stringField(scan.User.Data, "displayName")
		if customer == "" {
			customer = email
		}
		if customer == "" {
			customer = "Unknown"
		}

		for _, tx := range scan.Transactions {
			f, ok := s.foldable(tx, w)
			if !ok {
				continue
			}
			if inCur, _ := classifyPeriods(f, w); !inCur {
				continue
			}
			date := ""
			if f.tsOK {
				date = f.ts.Format(time.RFC3339)
			}
			rows = append(rows, row{
				tx: domain.RecentTransaction{
					ID:          tx.ID,
					Customer:    customer,
					Email:       email,
					Amount:      f.amount,
					Currency:    f.currency,
					Status:      stringField(tx.Data, "status"),
					Type:        stringField(tx.Data, "type"),
					Date:        date,
					Description: stringField(tx.Data, "description"),
				},
				ts:   f.ts,
				tsOK: f.tsOK,
			})
		}
	}

	sort.SliceStable(rows, func(i, j int) bool {
		if rows[i].tsOK != rows[j].tsOK {
			return rows[i].tsOK
		}
		return rows[i].ts.After(rows[j].ts)
	})

	total := len(rows)
	if limit > 0 && len(rows) > limit {
		rows = rows[:limit]
	}

	txs := make([]domain.RecentTransaction, len(rows))
	for i, r := range rows {
		txs[i] = r.tx
	}
	return domain.RecentTransactionsResult{Transactions: txs, Total: total}, nil
}

// accumulator carries the running sums of one aggregation period.
type accumulator struct {
	volume  float64
	payouts float64
	count   int
}

func (a *accumulator) add(amount float64, payout bool) {
	a.volume += amount
	a.count++
	if payout {
		a.payouts += amount
	}
}

func (a accumulator) avg() float64 {
	if a.count > 0 {
		return a.volume / float64(a.count)
	}
	return 0
}

// foldedTx is a transaction normalized for folding.
type foldedTx struct {
	amount   float64
	currency string
	payout   bool
	ts       time.Time
	tsOK     bool
}

// foldable normalizes a raw transaction document and applies the currency
// filter. A transaction whose amount cannot be parsed contributes zero but
// is still counted; see DESIGN.md for the policy.
func (s *Service) foldable(tx store.TransactionDoc, w domain.Window) (foldedTx, bool) {
	currency := NormalizeCurrency(tx.Data["currency"])
	if w.FiltersCurrency() && currency != w.Currency {
		return foldedTx{}, false
	}

	amount, ok := ParseAmount(tx.Data["amount"])
	if !ok {
		s.logger.Warn("unparseable transaction amount",
			"userId", tx.UserID, "txId", tx.ID, "amount", fmt.Sprintf("%v", tx.Data["amount"]))
	}

	ts, tsOK := ParseFlexibleTimestamp(tx.Data["createdAt"])
	return foldedTx{
		amount:   amount,
		currency: currency,
		payout:   IsPayout(stringField(tx.Data, "type"), stringField(tx.Data, "status")),
		ts:       ts,
		tsOK:     tsOK,
	}, true
}

// classifyPeriods assigns a normalized transaction to the current and/or
// previous period. With no explicit start the two overlap: the current
// period is all time up to end, so previous-period transactions count in
// both, exactly as two separate unbounded-and-bounded queries would report.
func classifyPeriods(f foldedTx, w domain.Window) (inCurrent, inPrevious bool) {
	if f.tsOK {
		return w.InCurrentPeriod(f.ts), w.InPreviousPeriod(f.ts)
	}
	// A legacy-encoded timestamp only survives an unbounded query; it
	// belongs to the open-ended current period and can never be placed in
	// the previous one.
	return w.Start == nil, false
}

// currentPeriodQuery bounds a scan to the requested period. With no
// explicit start the query carries no bounds at all: the store cannot
// range-filter legacy-encoded timestamps, so the open-ended period fetches
// everything and the fold applies the end bound.
func currentPeriodQuery(w domain.Window) store.TransactionQuery {
	if w.Start == nil {
		return store.TransactionQuery{}
	}
	start := *w.Start
	end := w.End
	return store.TransactionQuery{Start: &start, End: &end}
}

// bothPeriodsQuery widens the scan to cover the previous period as well, so
// a single query per user feeds both accumulator sets.
func bothPeriodsQuery(w domain.Window) store.TransactionQuery {
	if w.Start == nil {
		return store.TransactionQuery{}
	}
	start, end := w.ScanBounds()
	return store.TransactionQuery{Start: start, End: &end}
}

// growthPct returns the period-over-period change in percent. A zero or
// negative previous value yields 0; the dashboard never renders null or
// infinite growth.
func growthPct(current, previous float64) float64 {
	if previous > 0 {
		return (current - previous) / previous * 100
	}
	return 0
}

// monthKey orders calendar months; year*12 + zero-based month.
type monthKey int

func monthKeyOf(ts time.Time) monthKey {
	return monthKey(ts.Year()*12 + int(ts.Month()) - 1)
}

func (k monthKey) label() string {
	year := int(k) / 12
	month := time.Month(int(k)%12 + 1)
	return fmt.Sprintf("%s %d", month.String(), year)
}
