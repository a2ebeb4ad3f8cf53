package stats

import (
	"encoding/json"
	"math"
	"strconv"
	"strings"
	"time"
)

// Transaction and user documents predate any schema enforcement, so the same
// field can arrive in several encodings depending on which client wrote it.
// Everything in this file is a pure normalization helper over raw field
// values.

// ParseFlexibleTimestamp normalizes the three timestamp encodings present in
// the store: a native timestamp, a serialized {_seconds[, _nanoseconds]}
// object, or an ISO date string. The second return value is false when the
// value is absent or cannot be interpreted as a point in time.
func ParseFlexibleTimestamp(value any) (time.Time, bool) {
	switch v := value.(type) {
	case time.Time:
		return v.UTC(), true
	case *time.Time:
		if v == nil {
			return time.Time{}, false
		}
		return v.UTC(), true
	case map[string]any:
		secs, ok := numericValue(v["_seconds"])
		if !ok {
			return time.Time{}, false
		}
		nanos, _ := numericValue(v["_nanoseconds"])
		return time.Unix(int64(secs), int64(nanos)).UTC(), true
	case string:
		return parseTimeString(v)
	default:
		return time.Time{}, false
	}
}

func parseTimeString(s string) (time.Time, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, false
	}
	for _, layout := range []string{
		time.RFC3339Nano,
		time.RFC3339,
		"2006-01-02T15:04:05",
		"2006-01-02",
	} {
		if ts, err := time.Parse(layout, s); err == nil {
			return ts.UTC(), true
		}
	}
	return time.Time{}, false
}

// ParseAmount reads a monetary amount permissively: native numbers, numeric
// strings, and JSON numbers are accepted; an absent value is a clean zero.
// Values that cannot be read as a finite number report ok=false so the fold
// can apply its invalid-amount policy instead of propagating NaN.
func ParseAmount(value any) (float64, bool) {
	if value == nil {
		return 0, true
	}
	if f, ok := numericValue(value); ok {
		return f, true
	}
	if s, ok := value.(string); ok {
		f, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
		if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
			return 0, false
		}
		return f, true
	}
	return 0, false
}

// NormalizeCurrency upper-cases the transaction currency and defaults to USD
// when the field is absent, empty, or not a string.
func NormalizeCurrency(value any) string {
	s, _ := value.(string)
	s = strings.ToUpper(strings.TrimSpace(s))
	if s == "" {
		return "USD"
	}
	return s
}

// IsPayout reports the payout classification: a transaction is a payout iff
// its type is payout/withdrawal or its status is sent.
func IsPayout(txType, status string) bool {
	return strings.EqualFold(txType, "payout") ||
		strings.EqualFold(txType, "withdrawal") ||
		strings.EqualFold(status, "sent")
}

func numericValue(value any) (float64, bool) {
	switch v := value.(type) {
	case float64:
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return 0, false
		}
		return v, true
	case float32:
		return float64(v), true
	case int:
		return float64(v), true
	case int32:
		return float64(v), true
	case int64:
		return float64(v), true
	case json.Number:
		f, err := v.Float64()
		if err != nil {
			return 0, false
		}
		return f, true
	default:
		return 0, false
	}
}

func stringField(data map[string]any, key string) string {
	s, _ := data[key].(string)
	return s
}
