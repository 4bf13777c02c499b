// Package format turns raw values into the display strings used by the web
// client and the report exports (es-CO conventions), and generates
// invitation codes.
package format

import (
	"math"

	"github.com/dustin/go-humanize"
)

// Zero is what Currency renders for a zero or missing amount.
const Zero = "$0"

// Currency renders a peso amount with dot grouping and no decimals: $50.000.
func Currency(amount int64) string {
	if amount < 0 {
		return "-$" + humanize.FormatInteger("#.###,", int(-amount))
	}
	return "$" + humanize.FormatInteger("#.###,", int(amount))
}

// CurrencyValue is Currency for untyped input. Nil, non-numeric and
// non-finite values render as Zero; fractional amounts are rounded.
func CurrencyValue(v any) string {
	switch n := v.(type) {
	case int:
		return Currency(int64(n))
	case int32:
		return Currency(int64(n))
	case int64:
		return Currency(n)
	case uint32:
		return Currency(int64(n))
	case float32:
		return CurrencyValue(float64(n))
	case float64:
		if math.IsNaN(n) || math.IsInf(n, 0) {
			return Zero
		}
		return Currency(int64(math.Round(n)))
	default:
		return Zero
	}
}
