// Package app holds the use cases shared by the CLI, the HTTP API and the
// Telegram bot.
package app

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"farm-planner/internal/analytics"
	"farm-planner/internal/auth"
	"farm-planner/internal/budget"
	"farm-planner/internal/draft"
	"farm-planner/internal/drafting"
	"farm-planner/internal/harvest"
	"farm-planner/internal/llm"
	"farm-planner/internal/plan"
	"farm-planner/internal/report"
	"farm-planner/internal/store"
	"farm-planner/internal/validation"
	"farm-planner/internal/workflow"
)

// draftingAgent names draft generation in the usage metrics.
const draftingAgent = "drafting"

// UsageRecorder stores token usage of generation calls.
type UsageRecorder interface {
	RecordUsage(ctx context.Context, agentName string, usage llm.TokenUsage, latency time.Duration, success bool) error
}

// App holds the application's dependencies.
type App struct {
	harvests  *harvest.Repository
	budgets   *budget.Repository
	drafts    *draft.Repository
	plans     *plan.Repository
	workflow  *workflow.Controller
	generator *drafting.Generator
	usage     UsageRecorder
	approvers *auth.Approvers
	logger    *zap.Logger
	now       func() time.Time
}

// NewApp creates and initializes a new App instance. usage may be nil.
func NewApp(s store.Store, textGen llm.TextGenerator, usage UsageRecorder, approvers *auth.Approvers, logger *zap.Logger) *App {
	drafts := draft.NewRepository(s)
	plans := plan.NewRepository(s)
	return &App{
		harvests:  harvest.NewRepository(s),
		budgets:   budget.NewRepository(s),
		drafts:    drafts,
		plans:     plans,
		workflow:  workflow.NewController(drafts, plans, logger),
		generator: drafting.NewGenerator(textGen),
		usage:     usage,
		approvers: approvers,
		logger:    logger,
		now:       time.Now,
	}
}

// RecordHarvest validates and stores a new harvest.
func (a *App) RecordHarvest(ctx context.Context, in harvest.Input) (harvest.Record, error) {
	rec, err := a.harvests.Create(ctx, in)
	if err != nil {
		return harvest.Record{}, err
	}
	a.logger.Info("harvest recorded",
		zap.String("id", rec.ID),
		zap.String("crop_type", rec.CropType),
		zap.Float64("total_sale_amount", rec.TotalSaleAmount))
	return rec, nil
}

// Harvest returns one harvest.
func (a *App) Harvest(ctx context.Context, id string) (harvest.Record, error) {
	return a.harvests.Get(ctx, id)
}

// UpdateHarvest replaces the editable fields of a harvest.
func (a *App) UpdateHarvest(ctx context.Context, id string, in harvest.Input) (harvest.Record, error) {
	return a.harvests.Update(ctx, id, in)
}

// DeleteHarvest removes a harvest.
func (a *App) DeleteHarvest(ctx context.Context, id string) error {
	return a.harvests.Delete(ctx, id)
}

// Harvests lists the harvests matching c.
func (a *App) Harvests(ctx context.Context, c analytics.Criteria) ([]harvest.Record, error) {
	records, err := a.harvests.List(ctx)
	if err != nil {
		return nil, err
	}
	return analytics.Filter(records, c), nil
}

// Statistics is the statistics view of a filtered set of harvests.
type Statistics struct {
	Summary analytics.Summary `json:"summary"`
	ByCrop  analytics.Groups  `json:"byCrop"`
	ByMonth analytics.Groups  `json:"byMonth"`
	Shown   int               `json:"shown"`
	Total   int               `json:"total"`
}

// Statistics summarizes and groups the harvests matching c.
func (a *App) Statistics(ctx context.Context, c analytics.Criteria) (Statistics, error) {
	records, err := a.harvests.List(ctx)
	if err != nil {
		return Statistics{}, err
	}
	filtered := analytics.Filter(records, c)
	return Statistics{
		Summary: analytics.Summarize(filtered),
		ByCrop:  analytics.GroupByCrop(filtered),
		ByMonth: analytics.GroupByMonth(filtered),
		Shown:   len(filtered),
		Total:   len(records),
	}, nil
}

// AnalysisOptions lists the values the filters can take.
type AnalysisOptions struct {
	Periods   []string `json:"periods"`
	CropTypes []string `json:"cropTypes"`
	Years     []int    `json:"years"`
}

// Options returns the periods, crop types and years present in the harvests.
func (a *App) Options(ctx context.Context) (AnalysisOptions, error) {
	records, err := a.harvests.List(ctx)
	if err != nil {
		return AnalysisOptions{}, err
	}
	return AnalysisOptions{
		Periods:   analytics.Periods(records),
		CropTypes: analytics.CropTypes(records),
		Years:     analytics.Years(records),
	}, nil
}

// ProfitLoss analyses the harvests of one month and crop type against the
// first budget plan for that crop. It returns analytics.ErrNoData when no
// harvest matches.
func (a *App) ProfitLoss(ctx context.Context, period, cropType string) (analytics.ProfitLoss, error) {
	period, cropType = strings.TrimSpace(period), strings.TrimSpace(cropType)
	if period == "" || cropType == "" {
		return analytics.ProfitLoss{}, validation.New("", "select a period and crop type first")
	}
	if _, err := time.Parse("2006-01", period); err != nil {
		return analytics.ProfitLoss{}, validation.New("period", fmt.Sprintf("period %q must look like 2024-03", period))
	}

	var records []harvest.Record
	var plans []budget.Plan
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		records, err = a.harvests.List(gctx)
		return err
	})
	g.Go(func() error {
		var err error
		plans, err = a.budgets.List(gctx)
		return err
	})
	if err := g.Wait(); err != nil {
		return analytics.ProfitLoss{}, err
	}

	matched := analytics.Filter(records, analytics.Criteria{Period: period, CropType: cropType})
	return analytics.AnalyzeProfitLoss(matched, analytics.MatchBudget(plans, cropType))
}

// NewBudget starts an empty budget plan. It is not stored until saved.
func (a *App) NewBudget(name, cropType string, landArea float64) (*budget.Plan, error) {
	return a.budgets.New(name, cropType, landArea)
}

// SaveBudget stores a budget plan. Plans without items are rejected.
func (a *App) SaveBudget(ctx context.Context, p *budget.Plan) error {
	if err := a.budgets.Save(ctx, p); err != nil {
		return err
	}
	a.logger.Info("budget saved", zap.String("id", p.ID), zap.Float64("total_budget", p.TotalBudget))
	return nil
}

// Budgets lists every budget plan.
func (a *App) Budgets(ctx context.Context) ([]budget.Plan, error) {
	return a.budgets.List(ctx)
}

// Budget returns one budget plan for editing.
func (a *App) Budget(ctx context.Context, id string) (*budget.Plan, error) {
	return a.budgets.Get(ctx, id)
}

// DeleteBudget removes a budget plan.
func (a *App) DeleteBudget(ctx context.Context, id string) error {
	return a.budgets.Delete(ctx, id)
}

// GenerateDraft asks the generator for a requirements draft and stores it
// unverified. Every upstream attempt is recorded in the usage metrics.
func (a *App) GenerateDraft(ctx context.Context, p drafting.Prompt) (draft.Draft, error) {
	res, err := a.generator.Generate(ctx, p)
	var svcErr *llm.ServiceError
	if err == nil || errors.As(err, &svcErr) {
		a.recordUsage(ctx, res, err == nil)
	}
	if err != nil {
		a.logger.Warn("draft generation failed", zap.String("crop_type", p.CropType), zap.Error(err))
		return draft.Draft{}, err
	}

	d, err := draft.New(strings.TrimSpace(p.CropType), p.LandArea, res.Text, res.Usage.Model, a.now())
	if err != nil {
		return draft.Draft{}, err
	}
	if err := a.drafts.Add(ctx, d); err != nil {
		return draft.Draft{}, err
	}
	a.logger.Info("draft generated",
		zap.String("id", d.ID),
		zap.String("model", res.Usage.Model),
		zap.Int("total_tokens", res.Usage.TotalTokens),
		zap.Duration("latency", res.Latency))
	return d, nil
}

func (a *App) recordUsage(ctx context.Context, res drafting.Result, success bool) {
	if a.usage == nil {
		return
	}
	if err := a.usage.RecordUsage(ctx, draftingAgent, res.Usage, res.Latency, success); err != nil {
		a.logger.Warn("failed to record usage", zap.Error(err))
	}
}

// Drafts lists drafts, optionally only those in the given states.
func (a *App) Drafts(ctx context.Context, statuses ...draft.Status) ([]draft.Draft, error) {
	if len(statuses) == 0 {
		return a.drafts.List(ctx)
	}
	return a.drafts.ListByStatus(ctx, statuses...)
}

// Draft returns one draft.
func (a *App) Draft(ctx context.Context, id string) (draft.Draft, error) {
	return a.drafts.Get(ctx, id)
}

// DeleteDraft removes a draft.
func (a *App) DeleteDraft(ctx context.Context, id string) error {
	return a.drafts.Delete(ctx, id)
}

// VerifyDraft stores the reviewer's edited text.
func (a *App) VerifyDraft(ctx context.Context, id, edited string) (draft.Draft, error) {
	return a.workflow.Verify(ctx, id, edited)
}

// ApproveDraft approves a draft.
func (a *App) ApproveDraft(ctx context.Context, id string) (draft.Draft, error) {
	return a.workflow.Approve(ctx, id)
}

// RejectDraft rejects a draft.
func (a *App) RejectDraft(ctx context.Context, id string) (draft.Draft, error) {
	return a.workflow.Reject(ctx, id)
}

// AddPlantingPlan stores a new planting plan.
func (a *App) AddPlantingPlan(ctx context.Context, in plan.PlantingInput) (plan.PlantingPlan, error) {
	p, err := plan.NewPlantingPlan(in, a.now())
	if err != nil {
		return plan.PlantingPlan{}, err
	}
	if err := a.plans.AddPlanting(ctx, p); err != nil {
		return plan.PlantingPlan{}, err
	}
	return p, nil
}

// PlantingPlans lists every planting plan.
func (a *App) PlantingPlans(ctx context.Context) ([]plan.PlantingPlan, error) {
	return a.plans.ListPlanting(ctx)
}

// ComposeFinalPlan combines a planting plan and a reviewed draft.
func (a *App) ComposeFinalPlan(ctx context.Context, plantingID, draftID, notes string) (plan.FinalPlan, error) {
	return a.workflow.Compose(ctx, plantingID, draftID, notes)
}

// FinalPlans lists every final plan.
func (a *App) FinalPlans(ctx context.Context) ([]plan.FinalPlan, error) {
	return a.plans.ListFinal(ctx)
}

// DeleteFinalPlan removes a final plan.
func (a *App) DeleteFinalPlan(ctx context.Context, id string) error {
	return a.plans.DeleteFinal(ctx, id)
}

// ApproveFinalPlan approves a final plan. The approver comes from token when
// approver tokens are enabled, otherwise from name.
func (a *App) ApproveFinalPlan(ctx context.Context, id, token, name string) (plan.FinalPlan, error) {
	approver, err := a.approvers.Resolve(token, name)
	if err != nil {
		return plan.FinalPlan{}, err
	}
	return a.workflow.ApprovePlan(ctx, id, approver)
}

// RejectFinalPlan rejects a final plan. The approver is resolved as for
// ApproveFinalPlan.
func (a *App) RejectFinalPlan(ctx context.Context, id, token, name string) (plan.FinalPlan, error) {
	approver, err := a.approvers.Resolve(token, name)
	if err != nil {
		return plan.FinalPlan{}, err
	}
	return a.workflow.RejectPlan(ctx, id, approver)
}

// ExportWorkbook writes every harvest and budget plan as XLSX.
func (a *App) ExportWorkbook(ctx context.Context, w io.Writer) error {
	var records []harvest.Record
	var plans []budget.Plan
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		records, err = a.harvests.List(gctx)
		return err
	})
	g.Go(func() error {
		var err error
		plans, err = a.budgets.List(gctx)
		return err
	})
	if err := g.Wait(); err != nil {
		return err
	}
	return report.WriteWorkbook(w, records, plans)
}
