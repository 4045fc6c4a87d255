package core

import (
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// DateLayout is the ISO calendar date exchanged with the backend.
const DateLayout = "2006-01-02"

// FormatScore renders a risk score with exactly two decimals.
func FormatScore(score float64) string {
	return decimal.NewFromFloat(score).StringFixed(2)
}

// FormatAmount renders an amount in its shortest exact form (150.5, not 150.50).
func FormatAmount(amount float64) string {
	return decimal.NewFromFloat(amount).String()
}

// FormatDate renders an ISO date (optionally with a time part) as M/D/YYYY.
func FormatDate(s string) string {
	s = strings.TrimSpace(s)
	if len(s) >= len(DateLayout) {
		if t, err := time.Parse(DateLayout, s[:len(DateLayout)]); err == nil {
			return t.Format("1/2/2006")
		}
	}
	return "Invalid Date"
}

// Today returns the current UTC date in DateLayout.
func Today() string {
	return time.Now().UTC().Format(DateLayout)
}

// ParseDecimal reads a numeric form value. Empty or malformed input yields 0;
// range checks are left to the input widget and the backend.
func ParseDecimal(s string) float64 {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0
	}
	d, err := decimal.NewFromString(strings.ReplaceAll(s, ",", "."))
	if err != nil {
		return 0
	}
	return d.InexactFloat64()
}

// ParseID reads a numeric identity, 0 when absent or malformed.
func ParseID(s string) int64 {
	id, err := strconv.ParseInt(strings.TrimSpace(s), 10, 64)
	if err != nil || id < 0 {
		return 0
	}
	return id
}
