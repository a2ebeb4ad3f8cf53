package server

import (
	"encoding/csv"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/payvost/adminstats/internal/domain"
	"github.com/payvost/adminstats/internal/stats"
)

// StatsHandlers exposes the HTTP handlers for the dashboard endpoints.
type StatsHandlers struct {
	logger       *slog.Logger
	service      *stats.Service
	development  bool
	defaultLimit int
}

// NewStatsHandlers constructs a StatsHandlers instance.
func NewStatsHandlers(logger *slog.Logger, svc *stats.Service, development bool, defaultLimit int) *StatsHandlers {
	if defaultLimit <= 0 {
		defaultLimit = 10
	}
	return &StatsHandlers{
		logger:       logger,
		service:      svc,
		development:  development,
		defaultLimit: defaultLimit,
	}
}

func (h *StatsHandlers) handleStats(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		methodNotAllowed(w, http.MethodGet)
		return
	}

	window, ok := h.resolveWindow(w, r)
	if !ok {
		return
	}

	overview, err := h.service.Overview(r.Context(), window)
	if err != nil {
		h.serveScanFailure(w, "failed to compute stats", err)
		return
	}

	respondJSON(w, http.StatusOK, statsResponse{
		TotalVolume:         overview.TotalVolume,
		ActiveUsers:         overview.ActiveUsers,
		TotalUsers:          overview.TotalUsers,
		TotalPayouts:        overview.TotalPayouts,
		AvgTransactionValue: overview.AvgTransactionValue,
		TransactionCount:    overview.TransactionCount,
		Growth: growthResponse{
			Volume:      overview.Growth.Volume,
			ActiveUsers: overview.Growth.ActiveUsers,
			Payouts:     overview.Growth.Payouts,
			AvgValue:    overview.Growth.AvgValue,
		},
	})
}

func (h *StatsHandlers) handleVolumeOverTime(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		methodNotAllowed(w, http.MethodGet)
		return
	}

	window, ok := h.resolveWindow(w, r)
	if !ok {
		return
	}

	months, err := h.service.VolumeOverTime(r.Context(), window)
	if err != nil {
		h.serveScanFailure(w, "failed to compute volume over time", err)
		return
	}

	resp := volumeOverTimeResponse{Data: make([]monthEntry, 0, len(months))}
	for _, m := range months {
		resp.Data = append(resp.Data, monthEntry{Month: m.Month, Volume: m.Volume, Payouts: m.Payouts})
	}
	respondJSON(w, http.StatusOK, resp)
}

func (h *StatsHandlers) handleCurrencyDistribution(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		methodNotAllowed(w, http.MethodGet)
		return
	}

	window, ok := h.resolveWindow(w, r)
	if !ok {
		return
	}

	slices, err := h.service.CurrencyDistribution(r.Context(), window)
	if err != nil {
		h.serveScanFailure(w, "failed to compute currency distribution", err)
		return
	}

	resp := currencyDistributionResponse{Data: make([]currencyEntry, 0, len(slices))}
	for _, s := range slices {
		resp.Data = append(resp.Data, currencyEntry{Name: s.Name, Value: s.Value})
	}
	respondJSON(w, http.StatusOK, resp)
}

func (h *StatsHandlers) handleTransactions(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		methodNotAllowed(w, http.MethodGet)
		return
	}

	window, ok := h.resolveWindow(w, r)
	if !ok {
		return
	}

	limit := parseInt(r.URL.Query().Get("limit"), h.defaultLimit)
	if limit <= 0 {
		limit = h.defaultLimit
	}

	result, err := h.service.RecentTransactions(r.Context(), window, limit)
	if err != nil {
		h.serveScanFailure(w, "failed to fetch transactions", err)
		return
	}

	if strings.EqualFold(r.URL.Query().Get("format"), "csv") {
		h.serveTransactionsCSV(w, result.Transactions)
		return
	}

	resp := transactionsResponse{
		Transactions: make([]transactionEntry, 0, len(result.Transactions)),
		Total:        result.Total,
	}
	for _, tx := range result.Transactions {
		resp.Transactions = append(resp.Transactions, transactionEntry{
			ID:          tx.ID,
			Customer:    tx.Customer,
			Email:       tx.Email,
			Amount:      tx.Amount,
			Currency:    tx.Currency,
			Status:      tx.Status,
			Type:        tx.Type,
			Date:        tx.Date,
			Description: tx.Description,
		})
	}
	respondJSON(w, http.StatusOK, resp)
}

func (h *StatsHandlers) serveTransactionsCSV(w http.ResponseWriter, txs []domain.RecentTransaction) {
	w.Header().Set("Content-Type", "text/csv")
	w.Header().Set("Content-Disposition", `attachment; filename="transactions.csv"`)

	writer := csv.NewWriter(w)
	_ = writer.Write([]string{"id", "customer", "email", "amount", "currency", "status", "type", "date", "description"})
	for _, tx := range txs {
		_ = writer.Write([]string{
			tx.ID,
			tx.Customer,
			tx.Email,
			strconv.FormatFloat(tx.Amount, 'f', -1, 64),
			tx.Currency,
			tx.Status,
			tx.Type,
			tx.Date,
			tx.Description,
		})
	}
	writer.Flush()
}

// resolveWindow parses the shared startDate/endDate/currency parameters.
// On failure it writes a 400 response and reports false.
func (h *StatsHandlers) resolveWindow(w http.ResponseWriter, r *http.Request) (domain.Window, bool) {
	query := r.URL.Query()
	window, err := stats.ResolveWindow(
		query.Get("startDate"),
		query.Get("endDate"),
		query.Get("currency"),
		h.service.Now(),
	)
	if err != nil {
		if errors.Is(err, stats.ErrInvalidDate) {
			writeError(w, http.StatusBadRequest, err.Error(), "")
			return domain.Window{}, false
		}
		h.serveScanFailure(w, "failed to resolve parameters", err)
		return domain.Window{}, false
	}
	return window, true
}

// serveScanFailure is the per-request catch for store failures: a generic
// 500 with the error chain exposed only in development.
func (h *StatsHandlers) serveScanFailure(w http.ResponseWriter, msg string, err error) {
	h.logger.Error(msg, "error", err)
	details := ""
	if h.development {
		details = err.Error()
	}
	writeError(w, http.StatusInternalServerError, msg, details)
}

// --- Response DTOs ---

type growthResponse struct {
	Volume      float64 `json:"volume"`
	ActiveUsers float64 `json:"activeUsers"`
	Payouts     float64 `json:"payouts"`
	AvgValue    float64 `json:"avgValue"`
}

type statsResponse struct {
	TotalVolume         float64        `json:"totalVolume"`
	ActiveUsers         int            `json:"activeUsers"`
	TotalUsers          int            `json:"totalUsers"`
	TotalPayouts        float64        `json:"totalPayouts"`
	AvgTransactionValue float64        `json:"avgTransactionValue"`
	TransactionCount    int            `json:"transactionCount"`
	Growth              growthResponse `json:"growth"`
}

type monthEntry struct {
	Month   string `json:"month"`
	Volume  int64  `json:"volume"`
	Payouts int64  `json:"payouts"`
}

type volumeOverTimeResponse struct {
	Data []monthEntry `json:"data"`
}

type currencyEntry struct {
	Name  string `json:"name"`
	Value int64  `json:"value"`
}

type currencyDistributionResponse struct {
	Data []currencyEntry `json:"data"`
}

type transactionEntry struct {
	ID          string  `json:"id"`
	Customer    string  `json:"customer"`
	Email       string  `json:"email"`
	Amount      float64 `json:"amount"`
	Currency    string  `json:"currency"`
	Status      string  `json:"status"`
	Type        string  `json:"type"`
	Date        string  `json:"date"`
	Description string  `json:"description"`
}

type transactionsResponse struct {
	Transactions []transactionEntry `json:"transactions"`
	Total        int                `json:"total"`
}

type errorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
	Details string `json:"details,omitempty"`
}

// --- Helpers ---

func parseInt(value string, fallback int) int {
	if value == "" {
		return fallback
	}
	if v, err := strconv.Atoi(value); err == nil {
		return v
	}
	return fallback
}

func writeError(w http.ResponseWriter, status int, msg, details string) {
	respondJSON(w, status, errorResponse{
		Error:   http.StatusText(status),
		Message: msg,
		Details: details,
	})
}

func methodNotAllowed(w http.ResponseWriter, allowed ...string) {
	w.Header().Set("Allow", strings.Join(allowed, ", "))
	writeError(w, http.StatusMethodNotAllowed, "method not allowed", "")
}
