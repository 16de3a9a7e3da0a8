// Package harvest models logged harvest events.
package harvest

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"farm-planner/internal/money"
	"farm-planner/internal/validation"
)

// Quality is the graded quality of a harvest.
type Quality string

const (
	QualityVeryGood Quality = "very-good"
	QualityGood     Quality = "good"
	QualityMedium   Quality = "medium"
	QualityPoor     Quality = "poor"
)

// Qualities lists the grades from best to worst.
var Qualities = []Quality{QualityVeryGood, QualityGood, QualityMedium, QualityPoor}

// Valid reports whether q is one of the known grades.
func (q Quality) Valid() bool {
	for _, known := range Qualities {
		if q == known {
			return true
		}
	}
	return false
}

// Record is one harvest event.
type Record struct {
	ID              string    `json:"id"`
	LandName        string    `json:"landName"`
	CropType        string    `json:"cropType"`
	Variety         string    `json:"variety"`
	LandArea        float64   `json:"landArea"`
	PlantingDate    string    `json:"plantingDate"`
	HarvestDate     string    `json:"harvestDate"`
	Quantity        float64   `json:"quantity"`
	Unit            string    `json:"unit"`
	Quality         Quality   `json:"qualityGrade"`
	UnitPrice       float64   `json:"unitPrice"`
	TotalSaleAmount float64   `json:"totalSaleAmount"`
	HarvestCost     float64   `json:"harvestCost"`
	Weather         string    `json:"weather"`
	PlantCondition  string    `json:"plantCondition"`
	HarvestMethod   string    `json:"harvestMethod"`
	Notes           string    `json:"notes"`
	CreatedAt       time.Time `json:"createdAt"`
}

// HarvestTime parses the harvest date. ok is false when it cannot be parsed.
func (r Record) HarvestTime() (t time.Time, ok bool) {
	t, err := ParseDate(r.HarvestDate)
	return t, err == nil
}

// Input is the editable part of a record. The sale total is not part of it:
// it is always derived from quantity and unit price.
type Input struct {
	LandName       string  `json:"landName"`
	CropType       string  `json:"cropType"`
	Variety        string  `json:"variety"`
	LandArea       float64 `json:"landArea"`
	PlantingDate   string  `json:"plantingDate"`
	HarvestDate    string  `json:"harvestDate"`
	Quantity       float64 `json:"quantity"`
	Unit           string  `json:"unit"`
	Quality        Quality `json:"qualityGrade"`
	UnitPrice      float64 `json:"unitPrice"`
	HarvestCost    float64 `json:"harvestCost"`
	Weather        string  `json:"weather"`
	PlantCondition string  `json:"plantCondition"`
	HarvestMethod  string  `json:"harvestMethod"`
	Notes          string  `json:"notes"`
}

// Validate checks the input the way the harvest form does.
func (in Input) Validate() error {
	if strings.TrimSpace(in.LandName) == "" || strings.TrimSpace(in.CropType) == "" ||
		strings.TrimSpace(in.HarvestDate) == "" || in.Quantity == 0 {
		return validation.New("", "land name, crop type, harvest date and harvest quantity are required")
	}
	if in.Quantity < 0 {
		return validation.New("quantity", "harvest quantity must be greater than 0")
	}
	if in.LandArea < 0 {
		return validation.New("landArea", "land area cannot be negative")
	}
	if in.UnitPrice < 0 {
		return validation.New("unitPrice", "unit price cannot be negative")
	}
	if in.HarvestCost < 0 {
		return validation.New("harvestCost", "harvest cost cannot be negative")
	}
	if in.Quality != "" && !in.Quality.Valid() {
		return validation.New("qualityGrade", fmt.Sprintf("unknown quality grade %q", in.Quality))
	}
	if _, err := ParseDate(in.HarvestDate); err != nil {
		return validation.New("harvestDate", fmt.Sprintf("invalid harvest date %q", in.HarvestDate))
	}
	if in.PlantingDate != "" {
		if _, err := ParseDate(in.PlantingDate); err != nil {
			return validation.New("plantingDate", fmt.Sprintf("invalid planting date %q", in.PlantingDate))
		}
	}
	return nil
}

// NewRecord validates in and builds a record with a fresh time-ordered id.
func NewRecord(in Input, now time.Time) (Record, error) {
	if err := in.Validate(); err != nil {
		return Record{}, err
	}
	id, err := uuid.NewV7()
	if err != nil {
		return Record{}, fmt.Errorf("failed to generate record id: %w", err)
	}
	rec := Record{ID: id.String(), CreatedAt: now.UTC()}
	rec.apply(in)
	return rec, nil
}

// Edit returns rec with in applied. The id and creation time are kept.
func (r Record) Edit(in Input) (Record, error) {
	if err := in.Validate(); err != nil {
		return Record{}, err
	}
	r.apply(in)
	return r, nil
}

func (r *Record) apply(in Input) {
	r.LandName = strings.TrimSpace(in.LandName)
	r.CropType = strings.TrimSpace(in.CropType)
	r.Variety = in.Variety
	r.LandArea = in.LandArea
	r.PlantingDate = in.PlantingDate
	r.HarvestDate = in.HarvestDate
	r.Quantity = in.Quantity
	r.Unit = in.Unit
	r.Quality = in.Quality
	r.UnitPrice = in.UnitPrice
	r.TotalSaleAmount = money.Multiply(in.Quantity, in.UnitPrice)
	r.HarvestCost = in.HarvestCost
	r.Weather = in.Weather
	r.PlantCondition = in.PlantCondition
	r.HarvestMethod = in.HarvestMethod
	r.Notes = in.Notes
}

// ParseDate accepts a calendar date (2006-01-02) or an RFC 3339 timestamp.
func ParseDate(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	if t, err := time.Parse(time.DateOnly, s); err == nil {
		return t, nil
	}
	return time.Parse(time.RFC3339, s)
}
