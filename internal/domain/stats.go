package domain

// Growth holds period-over-period percentage changes for the overview
// metrics. A zero previous-period value yields 0, never null or infinity;
// the dashboard chart contract depends on that.
type Growth struct {
	Volume      float64
	ActiveUsers float64
	Payouts     float64
	AvgValue    float64
}

// Overview is the computed cross-user summary returned by the stats endpoint.
type Overview struct {
	TotalVolume         float64
	ActiveUsers         int
	TotalUsers          int
	TotalPayouts        float64
	AvgTransactionValue float64
	TransactionCount    int
	Growth              Growth
}

// MonthlyVolume is one calendar-month bucket of the volume-over-time chart.
// Volume and payouts are rounded to the nearest whole unit.
type MonthlyVolume struct {
	Month   string
	Volume  int64
	Payouts int64
}

// CurrencySlice is one entry of the currency-distribution chart. Currencies
// beyond the top four by volume collapse into a synthetic "OTHER" slice.
type CurrencySlice struct {
	Name  string
	Value int64
}

// RecentTransaction is a single row of the admin transactions table.
type RecentTransaction struct {
	ID          string
	Customer    string
	Email       string
	Amount      float64
	Currency    string
	Status      string
	Type        string
	Date        string
	Description string
}

// RecentTransactionsResult pairs the trimmed rows with the total number of
// matching transactions found across all users.
type RecentTransactionsResult struct {
	Transactions []RecentTransaction
	Total        int
}
