package api

import (
	"bytes"
	"net/http"
	"strconv"
	"strings"

	"github.com/labstack/echo/v4"

	"farm-planner/internal/analytics"
	"farm-planner/internal/budget"
	"farm-planner/internal/draft"
	"farm-planner/internal/drafting"
	"farm-planner/internal/harvest"
	"farm-planner/internal/metrics"
	"farm-planner/internal/plan"
	"farm-planner/internal/validation"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

func (s *Server) health(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]any{
		"status": "ok",
		"system": metrics.GetSysHealth(s.dataDir),
	})
}

func (s *Server) dailyUsage(c echo.Context) error {
	if s.usage == nil {
		return echo.NewHTTPError(http.StatusServiceUnavailable, "usage metrics are not available")
	}
	days, err := intParam(c, "days", 7)
	if err != nil {
		return err
	}
	usage, err := s.usage.GetDailyUsage(c.Request().Context(), days)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, usage)
}

func (s *Server) export(c echo.Context) error {
	var buf bytes.Buffer
	if err := s.app.ExportWorkbook(c.Request().Context(), &buf); err != nil {
		return err
	}
	c.Response().Header().Set(echo.HeaderContentDisposition, `attachment; filename="farm-report.xlsx"`)
	return c.Blob(http.StatusOK, xlsxContentType, buf.Bytes())
}

// Harvests

func (s *Server) listHarvests(c echo.Context) error {
	criteria, err := criteriaFrom(c)
	if err != nil {
		return err
	}
	records, err := s.app.Harvests(c.Request().Context(), criteria)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, records)
}

func (s *Server) createHarvest(c echo.Context) error {
	var in harvest.Input
	if err := c.Bind(&in); err != nil {
		return err
	}
	rec, err := s.app.RecordHarvest(c.Request().Context(), in)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, rec)
}

func (s *Server) getHarvest(c echo.Context) error {
	rec, err := s.app.Harvest(c.Request().Context(), c.Param("id"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, rec)
}

func (s *Server) updateHarvest(c echo.Context) error {
	var in harvest.Input
	if err := c.Bind(&in); err != nil {
		return err
	}
	rec, err := s.app.UpdateHarvest(c.Request().Context(), c.Param("id"), in)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, rec)
}

func (s *Server) deleteHarvest(c echo.Context) error {
	if err := s.app.DeleteHarvest(c.Request().Context(), c.Param("id")); err != nil {
		return err
	}
	return c.NoContent(http.StatusNoContent)
}

// Statistics

func (s *Server) statsOptions(c echo.Context) error {
	opts, err := s.app.Options(c.Request().Context())
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, opts)
}

func (s *Server) statsSummary(c echo.Context) error {
	criteria, err := criteriaFrom(c)
	if err != nil {
		return err
	}
	stats, err := s.app.Statistics(c.Request().Context(), criteria)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, map[string]any{
		"summary": stats.Summary,
		"shown":   stats.Shown,
		"total":   stats.Total,
	})
}

func (s *Server) statsByCrop(c echo.Context) error {
	criteria, err := criteriaFrom(c)
	if err != nil {
		return err
	}
	stats, err := s.app.Statistics(c.Request().Context(), criteria)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, stats.ByCrop.Sorted())
}

func (s *Server) statsByMonth(c echo.Context) error {
	criteria, err := criteriaFrom(c)
	if err != nil {
		return err
	}
	stats, err := s.app.Statistics(c.Request().Context(), criteria)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, stats.ByMonth.Sorted())
}

type profitResponse struct {
	analytics.ProfitLoss
	MarginRating analytics.Rating `json:"marginRating"`
	ROIRating    analytics.Rating `json:"roiRating"`
}

func (s *Server) profit(c echo.Context) error {
	pl, err := s.app.ProfitLoss(c.Request().Context(), c.QueryParam("period"), c.QueryParam("crop"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, profitResponse{
		ProfitLoss:   pl,
		MarginRating: analytics.Classify(pl.ProfitMargin, analytics.Margin),
		ROIRating:    analytics.Classify(pl.ROI, analytics.ROI),
	})
}

// Budgets

type createBudgetRequest struct {
	Name     string             `json:"budgetName"`
	CropType string             `json:"cropType"`
	LandArea float64            `json:"landArea"`
	Items    []budget.ItemInput `json:"items"`
}

func (s *Server) listBudgets(c echo.Context) error {
	plans, err := s.app.Budgets(c.Request().Context())
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, plans)
}

func (s *Server) createBudget(c echo.Context) error {
	var req createBudgetRequest
	if err := c.Bind(&req); err != nil {
		return err
	}
	p, err := s.app.NewBudget(req.Name, req.CropType, req.LandArea)
	if err != nil {
		return err
	}
	for _, in := range req.Items {
		if _, err := p.AddItem(in); err != nil {
			return err
		}
	}
	if err := s.app.SaveBudget(c.Request().Context(), p); err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, p)
}

func (s *Server) getBudget(c echo.Context) error {
	p, err := s.app.Budget(c.Request().Context(), c.Param("id"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, p)
}

func (s *Server) deleteBudget(c echo.Context) error {
	if err := s.app.DeleteBudget(c.Request().Context(), c.Param("id")); err != nil {
		return err
	}
	return c.NoContent(http.StatusNoContent)
}

func (s *Server) addBudgetItem(c echo.Context) error {
	var in budget.ItemInput
	if err := c.Bind(&in); err != nil {
		return err
	}
	ctx := c.Request().Context()
	p, err := s.app.Budget(ctx, c.Param("id"))
	if err != nil {
		return err
	}
	if _, err := p.AddItem(in); err != nil {
		return err
	}
	if err := s.app.SaveBudget(ctx, p); err != nil {
		return err
	}
	return c.JSON(http.StatusOK, p)
}

func (s *Server) updateBudgetItem(c echo.Context) error {
	var in budget.ItemInput
	if err := c.Bind(&in); err != nil {
		return err
	}
	ctx := c.Request().Context()
	p, err := s.app.Budget(ctx, c.Param("id"))
	if err != nil {
		return err
	}
	if _, err := p.UpdateItem(c.Param("itemID"), in); err != nil {
		return err
	}
	if err := s.app.SaveBudget(ctx, p); err != nil {
		return err
	}
	return c.JSON(http.StatusOK, p)
}

func (s *Server) removeBudgetItem(c echo.Context) error {
	ctx := c.Request().Context()
	p, err := s.app.Budget(ctx, c.Param("id"))
	if err != nil {
		return err
	}
	if err := p.RemoveItem(c.Param("itemID")); err != nil {
		return err
	}
	if err := s.app.SaveBudget(ctx, p); err != nil {
		return err
	}
	return c.JSON(http.StatusOK, p)
}

// Drafts

type verifyRequest struct {
	Draft string `json:"verifiedDraft"`
}

func (s *Server) listDrafts(c echo.Context) error {
	var statuses []draft.Status
	if raw := c.QueryParam("status"); raw != "" {
		for _, part := range strings.Split(raw, ",") {
			st := draft.Status(strings.TrimSpace(part))
			if !st.Valid() {
				return validation.New("status", "unknown draft status "+strconv.Quote(string(st)))
			}
			statuses = append(statuses, st)
		}
	}
	drafts, err := s.app.Drafts(c.Request().Context(), statuses...)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, drafts)
}

func (s *Server) generateDraft(c echo.Context) error {
	var p drafting.Prompt
	if err := c.Bind(&p); err != nil {
		return err
	}
	d, err := s.app.GenerateDraft(c.Request().Context(), p)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, d)
}

func (s *Server) getDraft(c echo.Context) error {
	d, err := s.app.Draft(c.Request().Context(), c.Param("id"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, d)
}

func (s *Server) deleteDraft(c echo.Context) error {
	if err := s.app.DeleteDraft(c.Request().Context(), c.Param("id")); err != nil {
		return err
	}
	return c.NoContent(http.StatusNoContent)
}

func (s *Server) verifyDraft(c echo.Context) error {
	var req verifyRequest
	if err := c.Bind(&req); err != nil {
		return err
	}
	d, err := s.app.VerifyDraft(c.Request().Context(), c.Param("id"), req.Draft)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, d)
}

func (s *Server) approveDraft(c echo.Context) error {
	d, err := s.app.ApproveDraft(c.Request().Context(), c.Param("id"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, d)
}

func (s *Server) rejectDraft(c echo.Context) error {
	d, err := s.app.RejectDraft(c.Request().Context(), c.Param("id"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, d)
}

// Plans

type composeRequest struct {
	PlantingID string `json:"plantingPlanId"`
	DraftID    string `json:"draftId"`
	Notes      string `json:"approvalNotes"`
}

type decisionRequest struct {
	Approver string `json:"approver"`
}

func (s *Server) listPlantingPlans(c echo.Context) error {
	plans, err := s.app.PlantingPlans(c.Request().Context())
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, plans)
}

func (s *Server) createPlantingPlan(c echo.Context) error {
	var in plan.PlantingInput
	if err := c.Bind(&in); err != nil {
		return err
	}
	p, err := s.app.AddPlantingPlan(c.Request().Context(), in)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, p)
}

func (s *Server) listFinalPlans(c echo.Context) error {
	plans, err := s.app.FinalPlans(c.Request().Context())
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, plans)
}

func (s *Server) composeFinalPlan(c echo.Context) error {
	var req composeRequest
	if err := c.Bind(&req); err != nil {
		return err
	}
	f, err := s.app.ComposeFinalPlan(c.Request().Context(), req.PlantingID, req.DraftID, req.Notes)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, f)
}

func (s *Server) deleteFinalPlan(c echo.Context) error {
	if err := s.app.DeleteFinalPlan(c.Request().Context(), c.Param("id")); err != nil {
		return err
	}
	return c.NoContent(http.StatusNoContent)
}

func (s *Server) approveFinalPlan(c echo.Context) error {
	name, err := approverName(c)
	if err != nil {
		return err
	}
	token := c.Request().Header.Get(echo.HeaderAuthorization)
	f, err := s.app.ApproveFinalPlan(c.Request().Context(), c.Param("id"), token, name)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, f)
}

func (s *Server) rejectFinalPlan(c echo.Context) error {
	name, err := approverName(c)
	if err != nil {
		return err
	}
	token := c.Request().Header.Get(echo.HeaderAuthorization)
	f, err := s.app.RejectFinalPlan(c.Request().Context(), c.Param("id"), token, name)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, f)
}

// approverName reads the approver from the query string, or from an optional
// JSON body.
func approverName(c echo.Context) (string, error) {
	if name := c.QueryParam("approver"); name != "" {
		return name, nil
	}
	if c.Request().ContentLength == 0 {
		return "", nil
	}
	var req decisionRequest
	if err := c.Bind(&req); err != nil {
		return "", err
	}
	return req.Approver, nil
}

func criteriaFrom(c echo.Context) (analytics.Criteria, error) {
	year, err := intParam(c, "year", 0)
	if err != nil {
		return analytics.Criteria{}, err
	}
	quality := harvest.Quality(c.QueryParam("quality"))
	if quality != "" && !quality.Valid() {
		return analytics.Criteria{}, validation.New("quality", "unknown quality grade "+strconv.Quote(string(quality)))
	}
	return analytics.Criteria{
		CropType: c.QueryParam("crop"),
		Year:     year,
		Quality:  quality,
		Period:   c.QueryParam("period"),
	}, nil
}

func intParam(c echo.Context, name string, def int) (int, error) {
	raw := c.QueryParam(name)
	if raw == "" {
		return def, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n < 0 {
		return 0, validation.New(name, name+" must be a non-negative number")
	}
	return n, nil
}
