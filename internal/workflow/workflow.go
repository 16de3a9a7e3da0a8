// Package workflow moves drafts and final plans through their review states.
package workflow

import (
	"context"
	"time"

	"go.uber.org/zap"

	"farm-planner/internal/draft"
	"farm-planner/internal/plan"
)

// ErrInvalidTransition is returned for any change out of a terminal state.
var ErrInvalidTransition = draft.ErrInvalidTransition

// Controller applies review decisions and persists them.
type Controller struct {
	drafts *draft.Repository
	plans  *plan.Repository
	logger *zap.Logger
	now    func() time.Time
}

// NewController creates a new Controller.
func NewController(drafts *draft.Repository, plans *plan.Repository, logger *zap.Logger) *Controller {
	return &Controller{
		drafts: drafts,
		plans:  plans,
		logger: logger,
		now:    time.Now,
	}
}

// Verify stores the reviewer's edited text and marks the draft verified.
func (c *Controller) Verify(ctx context.Context, draftID, edited string) (draft.Draft, error) {
	d, err := c.drafts.Update(ctx, draftID, func(d *draft.Draft) error {
		return d.Verify(edited, c.now())
	})
	if err != nil {
		return draft.Draft{}, err
	}
	c.logger.Info("draft verified", zap.String("draft_id", d.ID), zap.String("crop_type", d.CropType))
	return d, nil
}

// Approve marks a draft approved.
func (c *Controller) Approve(ctx context.Context, draftID string) (draft.Draft, error) {
	d, err := c.drafts.Update(ctx, draftID, func(d *draft.Draft) error {
		return d.Approve(c.now())
	})
	if err != nil {
		return draft.Draft{}, err
	}
	c.logger.Info("draft approved", zap.String("draft_id", d.ID))
	return d, nil
}

// Reject marks a draft rejected.
func (c *Controller) Reject(ctx context.Context, draftID string) (draft.Draft, error) {
	d, err := c.drafts.Update(ctx, draftID, func(d *draft.Draft) error {
		return d.Reject(c.now())
	})
	if err != nil {
		return draft.Draft{}, err
	}
	c.logger.Info("draft rejected", zap.String("draft_id", d.ID))
	return d, nil
}

// Compose combines a planting plan with a verified or approved draft into a
// final plan awaiting a decision.
func (c *Controller) Compose(ctx context.Context, plantingID, draftID, notes string) (plan.FinalPlan, error) {
	p, err := c.plans.GetPlanting(ctx, plantingID)
	if err != nil {
		return plan.FinalPlan{}, err
	}
	d, err := c.drafts.Get(ctx, draftID)
	if err != nil {
		return plan.FinalPlan{}, err
	}
	final, err := plan.Compose(p, d, notes, c.now())
	if err != nil {
		return plan.FinalPlan{}, err
	}
	if err := c.plans.AddFinal(ctx, final); err != nil {
		return plan.FinalPlan{}, err
	}
	c.logger.Info("final plan composed",
		zap.String("plan_id", final.ID),
		zap.String("planting_plan_id", p.ID),
		zap.String("draft_id", d.ID))
	return final, nil
}

// ApprovePlan approves a final plan on behalf of approver.
func (c *Controller) ApprovePlan(ctx context.Context, planID, approver string) (plan.FinalPlan, error) {
	f, err := c.plans.UpdateFinal(ctx, planID, func(f *plan.FinalPlan) error {
		return f.Approve(approver, c.now())
	})
	if err != nil {
		return plan.FinalPlan{}, err
	}
	c.logger.Info("final plan approved", zap.String("plan_id", f.ID), zap.String("approver", approver))
	return f, nil
}

// RejectPlan rejects a final plan on behalf of approver.
func (c *Controller) RejectPlan(ctx context.Context, planID, approver string) (plan.FinalPlan, error) {
	f, err := c.plans.UpdateFinal(ctx, planID, func(f *plan.FinalPlan) error {
		return f.Reject(approver, c.now())
	})
	if err != nil {
		return plan.FinalPlan{}, err
	}
	c.logger.Info("final plan rejected", zap.String("plan_id", f.ID), zap.String("approver", approver))
	return f, nil
}
