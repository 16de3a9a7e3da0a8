// Package analytics derives statistics and profitability figures from harvest
// and budget records. Every function is pure: it reads a snapshot of records
// and never touches storage.
package analytics

import (
	"fmt"
	"slices"
	"sort"

	"golang.org/x/text/cases"

	"farm-planner/internal/budget"
	"farm-planner/internal/harvest"
)

// None is reported for categorical results over an empty set.
const None = "none"

// Criteria narrows a set of harvest records. Zero-valued fields match every
// record.
type Criteria struct {
	CropType string
	Year     int
	Quality  harvest.Quality
	// Period is a calendar month formatted as YYYY-MM.
	Period string
}

// Filter returns the records matching every criterion, in input order. Crop
// types are compared with Unicode case folding.
func Filter(records []harvest.Record, c Criteria) []harvest.Record {
	fold := cases.Fold()
	crop := fold.String(c.CropType)

	matched := []harvest.Record{}
	for _, r := range records {
		if c.CropType != "" && fold.String(r.CropType) != crop {
			continue
		}
		if c.Quality != "" && r.Quality != c.Quality {
			continue
		}
		if c.Year != 0 || c.Period != "" {
			t, ok := r.HarvestTime()
			if !ok {
				continue
			}
			if c.Year != 0 && t.Year() != c.Year {
				continue
			}
			if c.Period != "" && monthKey(t.Year(), int(t.Month())) != c.Period {
				continue
			}
		}
		matched = append(matched, r)
	}
	return matched
}

// Periods lists the distinct harvest months, newest first.
func Periods(records []harvest.Record) []string {
	seen := make(map[string]bool)
	for _, r := range records {
		if t, ok := r.HarvestTime(); ok {
			seen[monthKey(t.Year(), int(t.Month()))] = true
		}
	}
	return sortedKeys(seen, true)
}

// CropTypes lists the distinct crop types, sorted.
func CropTypes(records []harvest.Record) []string {
	seen := make(map[string]bool)
	for _, r := range records {
		seen[r.CropType] = true
	}
	return sortedKeys(seen, false)
}

// Years lists the distinct harvest years, newest first.
func Years(records []harvest.Record) []int {
	seen := make(map[int]bool)
	for _, r := range records {
		if t, ok := r.HarvestTime(); ok {
			seen[t.Year()] = true
		}
	}
	years := make([]int, 0, len(seen))
	for y := range seen {
		years = append(years, y)
	}
	sort.Sort(sort.Reverse(sort.IntSlice(years)))
	return years
}

// MatchBudget returns the first plan whose crop type equals cropType, or nil.
// Crop types are compared the way Filter compares them. Plans are not scoped
// to a period, so the first match wins even when several plans exist for the
// same crop.
func MatchBudget(plans []budget.Plan, cropType string) *budget.Plan {
	fold := cases.Fold()
	crop := fold.String(cropType)
	for i := range plans {
		if fold.String(plans[i].CropType) == crop {
			p := plans[i]
			return &p
		}
	}
	return nil
}

// ratio returns n/d, or 0 when d is 0.
func ratio(n, d float64) float64 {
	if d == 0 {
		return 0
	}
	return n / d
}

func monthKey(year, month int) string {
	return fmt.Sprintf("%04d-%02d", year, month)
}

func sortedKeys(set map[string]bool, reverse bool) []string {
	keys := make([]string, 0, len(set))
	for k := range set {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	if reverse {
		slices.Reverse(keys)
	}
	return keys
}
