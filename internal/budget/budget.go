// Package budget models itemized cost estimates for a crop and land area.
package budget

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"farm-planner/internal/money"
	"farm-planner/internal/validation"
)

// Category groups budget items.
type Category string

const (
	CategorySeed       Category = "seed"
	CategoryFertilizer Category = "fertilizer"
	CategoryPesticide  Category = "pesticide"
	CategoryEquipment  Category = "equipment"
	CategoryLabor      Category = "labor"
	CategoryIrrigation Category = "irrigation"
	CategoryOther      Category = "other"
)

// Categories lists every category.
var Categories = []Category{
	CategorySeed, CategoryFertilizer, CategoryPesticide, CategoryEquipment,
	CategoryLabor, CategoryIrrigation, CategoryOther,
}

// Valid reports whether c is a known category.
func (c Category) Valid() bool {
	for _, known := range Categories {
		if c == known {
			return true
		}
	}
	return false
}

// StatusDraft is the only status a budget plan has.
const StatusDraft = "draft"

var (
	// ErrEmptyPlan is returned when saving a plan without items.
	ErrEmptyPlan = errors.New("add at least one budget item before saving")
	// ErrItemNotFound is returned for an unknown item id.
	ErrItemNotFound = errors.New("budget item not found")
)

// Item is one line of a budget plan.
type Item struct {
	ID         string   `json:"id"`
	Category   Category `json:"category"`
	Name       string   `json:"itemName"`
	Unit       string   `json:"unit"`
	Quantity   float64  `json:"quantity"`
	UnitPrice  float64  `json:"unitPrice"`
	TotalPrice float64  `json:"totalPrice"`
	Notes      string   `json:"notes"`
}

// ItemInput is the editable part of an item.
type ItemInput struct {
	Category  Category `json:"category"`
	Name      string   `json:"itemName"`
	Unit      string   `json:"unit"`
	Quantity  float64  `json:"quantity"`
	UnitPrice float64  `json:"unitPrice"`
	Notes     string   `json:"notes"`
}

// Validate checks an item the way the budget form does.
func (in ItemInput) Validate() error {
	if in.Category == "" || strings.TrimSpace(in.Name) == "" || in.Quantity == 0 {
		return validation.New("", "category, item name and quantity are required")
	}
	if !in.Category.Valid() {
		return validation.New("category", fmt.Sprintf("unknown category %q", in.Category))
	}
	if in.Quantity < 0 {
		return validation.New("quantity", "quantity must be greater than 0")
	}
	if in.UnitPrice < 0 {
		return validation.New("unitPrice", "unit price cannot be negative")
	}
	return nil
}

// Plan is a named budget owning an ordered list of items.
type Plan struct {
	ID          string    `json:"id"`
	Name        string    `json:"budgetName"`
	CropType    string    `json:"cropType"`
	LandArea    float64   `json:"landArea"`
	Items       []Item    `json:"items"`
	TotalBudget float64   `json:"totalBudget"`
	CreatedAt   time.Time `json:"createdAt"`
	Status      string    `json:"status"`
}

// NewPlan creates an empty draft plan.
func NewPlan(name, cropType string, landArea float64, now time.Time) (*Plan, error) {
	if strings.TrimSpace(name) == "" || strings.TrimSpace(cropType) == "" || landArea == 0 {
		return nil, validation.New("", "budget name, crop type and land area are required")
	}
	if landArea < 0 {
		return nil, validation.New("landArea", "land area must be greater than 0")
	}
	id, err := uuid.NewV7()
	if err != nil {
		return nil, fmt.Errorf("failed to generate plan id: %w", err)
	}
	return &Plan{
		ID:        id.String(),
		Name:      strings.TrimSpace(name),
		CropType:  strings.TrimSpace(cropType),
		LandArea:  landArea,
		Items:     []Item{},
		CreatedAt: now.UTC(),
		Status:    StatusDraft,
	}, nil
}

// AddItem appends an item and recomputes the total.
func (p *Plan) AddItem(in ItemInput) (Item, error) {
	if err := in.Validate(); err != nil {
		return Item{}, err
	}
	id, err := uuid.NewV7()
	if err != nil {
		return Item{}, fmt.Errorf("failed to generate item id: %w", err)
	}
	item := newItem(id.String(), in)
	p.Items = append(p.Items, item)
	p.recompute()
	return item, nil
}

// UpdateItem replaces an item in place and recomputes the total.
func (p *Plan) UpdateItem(id string, in ItemInput) (Item, error) {
	if err := in.Validate(); err != nil {
		return Item{}, err
	}
	for i := range p.Items {
		if p.Items[i].ID == id {
			p.Items[i] = newItem(id, in)
			p.recompute()
			return p.Items[i], nil
		}
	}
	return Item{}, fmt.Errorf("%w: %s", ErrItemNotFound, id)
}

// RemoveItem deletes an item and recomputes the total.
func (p *Plan) RemoveItem(id string) error {
	for i := range p.Items {
		if p.Items[i].ID == id {
			p.Items = append(p.Items[:i], p.Items[i+1:]...)
			p.recompute()
			return nil
		}
	}
	return fmt.Errorf("%w: %s", ErrItemNotFound, id)
}

// CategoryTotals sums item totals per category, in Categories order,
// omitting categories without items.
func (p *Plan) CategoryTotals() []CategoryTotal {
	sums := make(map[Category][]float64)
	for _, item := range p.Items {
		sums[item.Category] = append(sums[item.Category], item.TotalPrice)
	}
	var totals []CategoryTotal
	for _, c := range Categories {
		if values, ok := sums[c]; ok {
			totals = append(totals, CategoryTotal{Category: c, Total: money.Sum(values...)})
		}
	}
	return totals
}

// CategoryTotal is the budget share of one category.
type CategoryTotal struct {
	Category Category
	Total    float64
}

func (p *Plan) recompute() {
	totals := make([]float64, len(p.Items))
	for i, item := range p.Items {
		totals[i] = item.TotalPrice
	}
	p.TotalBudget = money.Sum(totals...)
}

func newItem(id string, in ItemInput) Item {
	return Item{
		ID:         id,
		Category:   in.Category,
		Name:       strings.TrimSpace(in.Name),
		Unit:       in.Unit,
		Quantity:   in.Quantity,
		UnitPrice:  in.UnitPrice,
		TotalPrice: money.Multiply(in.Quantity, in.UnitPrice),
		Notes:      in.Notes,
	}
}
