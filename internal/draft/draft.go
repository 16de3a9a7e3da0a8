// Package draft models AI-produced requirement drafts and their review states.
package draft

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"farm-planner/internal/validation"
)

// Status is the review state of a draft.
type Status string

const (
	StatusUnverified Status = "unverified"
	StatusVerified   Status = "verified"
	StatusApproved   Status = "approved"
	StatusRejected   Status = "rejected"
)

// Terminal reports whether no further transition is allowed.
func (s Status) Terminal() bool {
	return s == StatusApproved || s == StatusRejected
}

// Valid reports whether s is a known status.
func (s Status) Valid() bool {
	switch s {
	case StatusUnverified, StatusVerified, StatusApproved, StatusRejected:
		return true
	}
	return false
}

// ErrInvalidTransition is returned when a status change is not allowed.
var ErrInvalidTransition = errors.New("invalid status transition")

// Draft is a generated or human-edited requirements text for a crop and area.
type Draft struct {
	ID            string     `json:"id"`
	CropType      string     `json:"cropType"`
	LandArea      float64    `json:"landArea"`
	Draft         string     `json:"draft"`
	Model         string     `json:"model,omitempty"`
	CreatedAt     time.Time  `json:"createdAt"`
	Status        Status     `json:"status"`
	VerifiedAt    *time.Time `json:"verifiedAt,omitempty"`
	VerifiedDraft string     `json:"verifiedDraft,omitempty"`
}

// New builds an unverified draft from generated text.
func New(cropType string, landArea float64, text, model string, now time.Time) (Draft, error) {
	if strings.TrimSpace(text) == "" {
		return Draft{}, validation.New("draft", "there is no draft to save")
	}
	id, err := uuid.NewV7()
	if err != nil {
		return Draft{}, fmt.Errorf("failed to generate draft id: %w", err)
	}
	return Draft{
		ID:        id.String(),
		CropType:  cropType,
		LandArea:  landArea,
		Draft:     text,
		Model:     model,
		CreatedAt: now.UTC(),
		Status:    StatusUnverified,
	}, nil
}

// Text returns the verified text when present, otherwise the generated one.
func (d Draft) Text() string {
	if d.VerifiedDraft != "" {
		return d.VerifiedDraft
	}
	return d.Draft
}

// CurrentStatus treats drafts saved before review states existed as unverified.
func (d Draft) CurrentStatus() Status {
	if d.Status == "" {
		return StatusUnverified
	}
	return d.Status
}

// Usable reports whether the draft may back a final plan.
func (d Draft) Usable() bool {
	s := d.CurrentStatus()
	return s == StatusVerified || s == StatusApproved
}

// Verify stores the edited text and marks the draft verified.
func (d *Draft) Verify(edited string, now time.Time) error {
	if strings.TrimSpace(edited) == "" {
		return validation.New("verifiedDraft", "the edited draft cannot be empty")
	}
	if err := d.transition(StatusVerified); err != nil {
		return err
	}
	at := now.UTC()
	d.VerifiedDraft = edited
	d.VerifiedAt = &at
	return nil
}

// Approve marks the draft approved.
func (d *Draft) Approve(now time.Time) error {
	return d.close(StatusApproved, now)
}

// Reject marks the draft rejected.
func (d *Draft) Reject(now time.Time) error {
	return d.close(StatusRejected, now)
}

func (d *Draft) close(to Status, now time.Time) error {
	if err := d.transition(to); err != nil {
		return err
	}
	at := now.UTC()
	d.VerifiedAt = &at
	return nil
}

func (d *Draft) transition(to Status) error {
	from := d.CurrentStatus()
	if from.Terminal() {
		return fmt.Errorf("%w: draft is already %s", ErrInvalidTransition, from)
	}
	d.Status = to
	return nil
}
