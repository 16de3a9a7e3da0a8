package analytics

import (
	"slices"
	"strings"

	"farm-planner/internal/harvest"
	"farm-planner/internal/money"
)

var qualityScores = map[harvest.Quality]float64{
	harvest.QualityVeryGood: 4,
	harvest.QualityGood:     3,
	harvest.QualityMedium:   2,
	harvest.QualityPoor:     1,
}

// Summary holds the statistics of a set of harvest records.
type Summary struct {
	Count                  int     `json:"count"`
	TotalQuantity          float64 `json:"totalQuantity"`
	TotalRevenue           float64 `json:"totalRevenue"`
	TotalCost              float64 `json:"totalCost"`
	TotalLandArea          float64 `json:"totalLandArea"`
	AveragePrice           float64 `json:"averagePrice"`
	ProductivityPerHectare float64 `json:"productivityPerHectare"`
	DistinctLands          int     `json:"distinctLandCount"`
	MostFrequentCrop       string  `json:"mostFrequentCrop"`
	AverageQualityScore    float64 `json:"averageQualityScore"`
	AverageQuality         string  `json:"averageQualityLabel"`
}

// Summarize computes totals and averages over records. An empty set yields
// zero figures and None for the categorical fields.
func Summarize(records []harvest.Record) Summary {
	s := Summary{Count: len(records), MostFrequentCrop: None, AverageQuality: None}
	if len(records) == 0 {
		return s
	}

	var quantities, revenues, costs, areas []float64
	lands := make(map[string]bool)
	var qualityTotal float64
	for _, r := range records {
		quantities = append(quantities, r.Quantity)
		revenues = append(revenues, r.TotalSaleAmount)
		costs = append(costs, r.HarvestCost)
		areas = append(areas, r.LandArea)
		lands[r.LandName] = true
		// Ungraded records score 0 but still count towards the average.
		qualityTotal += qualityScores[r.Quality]
	}

	s.TotalQuantity = money.Sum(quantities...)
	s.TotalRevenue = money.Sum(revenues...)
	s.TotalCost = money.Sum(costs...)
	s.TotalLandArea = money.Sum(areas...)
	s.AveragePrice = ratio(s.TotalRevenue, s.TotalQuantity)
	s.ProductivityPerHectare = ratio(s.TotalQuantity, s.TotalLandArea)
	s.DistinctLands = len(lands)
	s.MostFrequentCrop = mostFrequentCrop(records)
	s.AverageQualityScore = qualityTotal / float64(len(records))
	s.AverageQuality = qualityLabel(s.AverageQualityScore)
	return s
}

// mostFrequentCrop breaks ties in favour of the crop seen first.
func mostFrequentCrop(records []harvest.Record) string {
	counts := make(map[string]int)
	var order []string
	for _, r := range records {
		if counts[r.CropType] == 0 {
			order = append(order, r.CropType)
		}
		counts[r.CropType]++
	}
	best := None
	bestCount := 0
	for _, crop := range order {
		if counts[crop] > bestCount {
			best, bestCount = crop, counts[crop]
		}
	}
	return best
}

func qualityLabel(score float64) string {
	switch {
	case score >= 3.5:
		return string(harvest.QualityVeryGood)
	case score >= 2.5:
		return string(harvest.QualityGood)
	case score >= 1.5:
		return string(harvest.QualityMedium)
	case score >= 1:
		return string(harvest.QualityPoor)
	default:
		return None
	}
}

// Group aggregates the records sharing a key.
type Group struct {
	Key           string  `json:"key"`
	TotalQuantity float64 `json:"totalQuantity"`
	TotalRevenue  float64 `json:"totalRevenue"`
	Count         int     `json:"count"`
}

// Groups is ordered by the first occurrence of each key in the input.
type Groups []Group

// Sorted returns a copy ordered by key.
func (g Groups) Sorted() Groups {
	sorted := slices.Clone(g)
	slices.SortFunc(sorted, func(a, b Group) int { return strings.Compare(a.Key, b.Key) })
	return sorted
}

// UnknownMonth keys records whose harvest date cannot be parsed.
const UnknownMonth = "unknown"

// GroupByCrop aggregates records per crop type.
func GroupByCrop(records []harvest.Record) Groups {
	return groupBy(records, func(r harvest.Record) string { return r.CropType })
}

// GroupByMonth aggregates records per harvest month, keyed YYYY-MM.
func GroupByMonth(records []harvest.Record) Groups {
	return groupBy(records, func(r harvest.Record) string {
		t, ok := r.HarvestTime()
		if !ok {
			return UnknownMonth
		}
		return monthKey(t.Year(), int(t.Month()))
	})
}

func groupBy(records []harvest.Record, key func(harvest.Record) string) Groups {
	groups := Groups{}
	index := make(map[string]int)
	for _, r := range records {
		k := key(r)
		i, ok := index[k]
		if !ok {
			i = len(groups)
			index[k] = i
			groups = append(groups, Group{Key: k})
		}
		g := &groups[i]
		g.TotalQuantity = money.Sum(g.TotalQuantity, r.Quantity)
		g.TotalRevenue = money.Sum(g.TotalRevenue, r.TotalSaleAmount)
		g.Count++
	}
	return groups
}
