// Package plan models planting plans and the final plans composed from them.
package plan

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"farm-planner/internal/draft"
	"farm-planner/internal/validation"
)

// PlantingPlan is a scheduled planting that a final plan is built from.
type PlantingPlan struct {
	ID                  string    `json:"id"`
	Name                string    `json:"name"`
	CropType            string    `json:"cropType"`
	RequiredLandArea    float64   `json:"requiredLandArea"`
	PlannedPlantingDate string    `json:"plannedPlantingDate"`
	Status              string    `json:"status"`
	EstimatedCost       float64   `json:"estimatedCost"`
	CreatedAt           time.Time `json:"createdAt"`
}

// PlantingInput is the editable part of a planting plan.
type PlantingInput struct {
	Name                string  `json:"name"`
	CropType            string  `json:"cropType"`
	RequiredLandArea    float64 `json:"requiredLandArea"`
	PlannedPlantingDate string  `json:"plannedPlantingDate"`
	EstimatedCost       float64 `json:"estimatedCost"`
}

// NewPlantingPlan validates in and builds a planned planting.
func NewPlantingPlan(in PlantingInput, now time.Time) (PlantingPlan, error) {
	if strings.TrimSpace(in.Name) == "" || strings.TrimSpace(in.CropType) == "" {
		return PlantingPlan{}, validation.New("", "plan name and crop type are required")
	}
	if in.RequiredLandArea <= 0 {
		return PlantingPlan{}, validation.New("requiredLandArea", "land area must be greater than 0")
	}
	if in.EstimatedCost < 0 {
		return PlantingPlan{}, validation.New("estimatedCost", "estimated cost cannot be negative")
	}
	if in.PlannedPlantingDate != "" {
		if _, err := time.Parse(time.DateOnly, in.PlannedPlantingDate); err != nil {
			return PlantingPlan{}, validation.New("plannedPlantingDate",
				fmt.Sprintf("invalid planting date %q", in.PlannedPlantingDate))
		}
	}
	id, err := uuid.NewV7()
	if err != nil {
		return PlantingPlan{}, fmt.Errorf("failed to generate plan id: %w", err)
	}
	return PlantingPlan{
		ID:                  id.String(),
		Name:                strings.TrimSpace(in.Name),
		CropType:            strings.TrimSpace(in.CropType),
		RequiredLandArea:    in.RequiredLandArea,
		PlannedPlantingDate: in.PlannedPlantingDate,
		Status:              "planned",
		EstimatedCost:       in.EstimatedCost,
		CreatedAt:           now.UTC(),
	}, nil
}

// Status is the approval state of a final plan.
type Status string

const (
	StatusDraft    Status = "draft"
	StatusApproved Status = "approved"
	StatusRejected Status = "rejected"
)

// ErrInvalidTransition is returned when a final plan has already left draft.
var ErrInvalidTransition = draft.ErrInvalidTransition

// FinalPlan combines a planting plan with reviewed requirements.
type FinalPlan struct {
	ID            string     `json:"id"`
	Name          string     `json:"name"`
	CropType      string     `json:"cropType"`
	LandArea      float64    `json:"landArea"`
	PlantingDate  string     `json:"plantingDate"`
	Requirements  string     `json:"requirements"`
	EstimatedCost float64    `json:"estimatedCost"`
	ApprovalNotes string     `json:"approvalNotes"`
	Status        Status     `json:"status"`
	ApprovedBy    string     `json:"approvedBy,omitempty"`
	ApprovedAt    *time.Time `json:"approvedAt,omitempty"`
	CreatedAt     time.Time  `json:"createdAt"`
	PlantingID    string     `json:"plantingPlanId"`
	DraftID       string     `json:"draftId"`
}

// Compose builds a final plan in draft state. The draft must be verified or
// approved, and its verified text is preferred over the generated one.
func Compose(p PlantingPlan, d draft.Draft, notes string, now time.Time) (FinalPlan, error) {
	if !d.Usable() {
		return FinalPlan{}, validation.New("draftId",
			fmt.Sprintf("draft is %s; only verified or approved drafts can be used", d.CurrentStatus()))
	}
	if strings.TrimSpace(notes) == "" {
		return FinalPlan{}, validation.New("approvalNotes", "approval notes are required")
	}
	id, err := uuid.NewV7()
	if err != nil {
		return FinalPlan{}, fmt.Errorf("failed to generate plan id: %w", err)
	}
	return FinalPlan{
		ID:            id.String(),
		Name:          p.Name,
		CropType:      p.CropType,
		LandArea:      p.RequiredLandArea,
		PlantingDate:  p.PlannedPlantingDate,
		Requirements:  d.Text(),
		EstimatedCost: p.EstimatedCost,
		ApprovalNotes: notes,
		Status:        StatusDraft,
		CreatedAt:     now.UTC(),
		PlantingID:    p.ID,
		DraftID:       d.ID,
	}, nil
}

// Approve moves the plan out of draft and records who approved it.
func (f *FinalPlan) Approve(approver string, now time.Time) error {
	return f.decide(StatusApproved, approver, now)
}

// Reject moves the plan out of draft and records who rejected it.
func (f *FinalPlan) Reject(approver string, now time.Time) error {
	return f.decide(StatusRejected, approver, now)
}

func (f *FinalPlan) decide(to Status, approver string, now time.Time) error {
	if f.Status != StatusDraft {
		return fmt.Errorf("%w: plan is already %s", ErrInvalidTransition, f.Status)
	}
	if strings.TrimSpace(approver) == "" {
		return validation.New("approvedBy", "approver is required")
	}
	at := now.UTC()
	f.Status = to
	f.ApprovedBy = approver
	f.ApprovedAt = &at
	return nil
}
