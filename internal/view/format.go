package view

import (
	"math"
	"time"

	"github.com/dustin/go-humanize"
)

// Placeholder is shown for optional fields that have no value.
const Placeholder = "—"

// Currency renders an amount the way the console shows money: a "K" prefix
// and thousands grouping, with at most two decimals.
func Currency(v float64) string {
	return "K" + humanize.Commaf(math.Round(v*100)/100)
}

// Count renders an integer with thousands grouping.
func Count(n int) string {
	return humanize.Comma(int64(n))
}

// Date renders a calendar date as "Jan 2, 2006".
func Date(t time.Time) string {
	if t.IsZero() {
		return Placeholder
	}
	return t.Format("Jan 2, 2006")
}

// Optional renders s, or the placeholder when s is nil or empty.
func Optional(s *string) string {
	if s == nil || *s == "" {
		return Placeholder
	}
	return *s
}

// OptionalInt is Optional for numbers.
func OptionalInt(n *int) string {
	if n == nil {
		return Placeholder
	}
	return Count(*n)
}
