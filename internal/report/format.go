// Package report renders statistics, profitability analyses and exports for
// people: markdown for the terminal and chat, XLSX for spreadsheets.
package report

import (
	"fmt"
	"math"
	"time"

	"github.com/dustin/go-humanize"
)

// Rupiah formats an amount the way Indonesian invoices do: Rp 7.500.000.
func Rupiah(amount float64) string {
	if amount < 0 {
		return "-Rp " + humanize.FormatFloat("#.###,", -amount)
	}
	return "Rp " + humanize.FormatFloat("#.###,", amount)
}

// Number formats a quantity with dot thousand separators and up to two
// decimals.
func Number(v float64) string {
	if v == math.Trunc(v) {
		return humanize.FormatFloat("#.###,", v)
	}
	return humanize.FormatFloat("#.###,##", v)
}

// Percent formats a percentage with one decimal.
func Percent(v float64) string {
	return fmt.Sprintf("%.1f%%", v)
}

// PeriodLabel turns 2024-03 into "March 2024". Unparseable periods are
// returned unchanged.
func PeriodLabel(period string) string {
	t, err := time.Parse("2006-01", period)
	if err != nil {
		return period
	}
	return t.Format("January 2006")
}
