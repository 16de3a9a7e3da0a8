package api

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
	"go.uber.org/zap"

	"farm-planner/internal/app"
	"farm-planner/internal/auth"
	"farm-planner/internal/budget"
	"farm-planner/internal/draft"
	"farm-planner/internal/harvest"
	"farm-planner/internal/llm"
	"farm-planner/internal/metrics"
	"farm-planner/internal/plan"
	"farm-planner/internal/store"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

type stubGenerator struct {
	text string
	err  error
}

func (g *stubGenerator) GenerateContent(ctx context.Context, req llm.Request) (llm.ContentResponse, error) {
	if g.err != nil {
		return llm.ContentResponse{}, g.err
	}
	return llm.ContentResponse{Content: g.text, Usage: llm.TokenUsage{Model: "stub"}}, nil
}

type stubUsage struct{}

func (stubUsage) GetDailyUsage(ctx context.Context, days int) ([]metrics.DailyUsage, error) {
	return []metrics.DailyUsage{{Date: "2024-03-10", TotalExecution: days}}, nil
}

func newTestServer(t *testing.T, gen llm.TextGenerator, secret string) *Server {
	t.Helper()
	a := app.NewApp(store.NewMemory(), gen, nil, auth.NewApprovers(secret), zap.NewNop())
	return NewServer(a, stubUsage{}, t.TempDir(), zap.NewNop())
}

func do(t *testing.T, s *Server, method, target, body string, headers ...string) *httptest.ResponseRecorder {
	t.Helper()
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, target, nil)
	} else {
		req = httptest.NewRequest(method, target, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	}
	for i := 0; i+1 < len(headers); i += 2 {
		req.Header.Set(headers[i], headers[i+1])
	}
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, req)
	return rec
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &v), rec.Body.String())
	return v
}

const riceHarvest = `{"landName":"North","cropType":"Rice","landArea":2,"harvestDate":"2024-03-10",
	"quantity":1500,"unit":"kg","qualityGrade":"good","unitPrice":5000,"harvestCost":700000}`

func TestHarvestsAndStatistics(t *testing.T) {
	s := newTestServer(t, &stubGenerator{}, "")

	rec := do(t, s, http.MethodPost, "/harvests", riceHarvest)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	created := decode[harvest.Record](t, rec)
	assert.Equal(t, 7500000.0, created.TotalSaleAmount)

	t.Run("ValidationIs400", func(t *testing.T) {
		rec := do(t, s, http.MethodPost, "/harvests", `{"landName":"North","cropType":"Rice","harvestDate":"2024-03-10","quantity":-1}`)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
		body := decode[errorResponse](t, rec)
		assert.Equal(t, "quantity", body.Field)
	})

	t.Run("MalformedJSONIs400", func(t *testing.T) {
		rec := do(t, s, http.MethodPost, "/harvests", `{"landName":`)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("Summary", func(t *testing.T) {
		rec := do(t, s, http.MethodGet, "/stats/summary?crop=rice&year=2024", "")
		require.Equal(t, http.StatusOK, rec.Code)
		body := decode[struct {
			Summary struct {
				Count        int     `json:"count"`
				TotalRevenue float64 `json:"totalRevenue"`
			} `json:"summary"`
			Shown int `json:"shown"`
		}](t, rec)
		assert.Equal(t, 1, body.Shown)
		assert.Equal(t, 7500000.0, body.Summary.TotalRevenue)
	})

	t.Run("BadYear", func(t *testing.T) {
		rec := do(t, s, http.MethodGet, "/stats/by-crop?year=last", "")
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("UpdateAndDelete", func(t *testing.T) {
		updated := strings.Replace(riceHarvest, `"quantity":1500`, `"quantity":1000`, 1)
		rec := do(t, s, http.MethodPut, "/harvests/"+created.ID, updated)
		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
		assert.Equal(t, 5000000.0, decode[harvest.Record](t, rec).TotalSaleAmount)

		rec = do(t, s, http.MethodDelete, "/harvests/"+created.ID, "")
		assert.Equal(t, http.StatusNoContent, rec.Code)
		rec = do(t, s, http.MethodGet, "/harvests/"+created.ID, "")
		assert.Equal(t, http.StatusNotFound, rec.Code)
	})
}

func TestProfit(t *testing.T) {
	s := newTestServer(t, &stubGenerator{}, "")
	require.Equal(t, http.StatusCreated, do(t, s, http.MethodPost, "/harvests", riceHarvest).Code)

	rec := do(t, s, http.MethodPost, "/budgets", `{"budgetName":"Rice","cropType":"Rice","landArea":2}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code, "a budget needs items")

	rec = do(t, s, http.MethodPost, "/budgets", `{"budgetName":"Rice","cropType":"Rice","landArea":2,
		"items":[{"category":"seed","itemName":"IR64","quantity":100,"unitPrice":10000}]}`)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	created := decode[budget.Plan](t, rec)
	require.Len(t, created.Items, 1)
	itemPath := "/budgets/" + created.ID + "/items/" + created.Items[0].ID

	rec = do(t, s, http.MethodPut, itemPath, `{"category":"seed","itemName":"IR64","quantity":0,"unitPrice":10000}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	rec = do(t, s, http.MethodPut, "/budgets/"+created.ID+"/items/missing", `{"category":"seed","itemName":"IR64","quantity":1,"unitPrice":1}`)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = do(t, s, http.MethodPut, itemPath, `{"category":"seed","itemName":"IR64","quantity":120,"unitPrice":10000}`)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	updated := decode[budget.Plan](t, rec)
	assert.Equal(t, 1200000.0, updated.TotalBudget)
	assert.Equal(t, created.Items[0].ID, updated.Items[0].ID)

	rec = do(t, s, http.MethodPut, itemPath, `{"category":"seed","itemName":"IR64","quantity":100,"unitPrice":10000}`)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	rec = do(t, s, http.MethodGet, "/profit?period=2024-03&crop=Rice", "")
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	body := decode[profitResponse](t, rec)
	assert.Equal(t, 6500000.0, body.NetProfit)
	assert.Equal(t, 1000000.0, body.PlannedBudget)
	assert.Equal(t, 650.0, body.ROI)
	assert.NotEmpty(t, body.ROIRating)

	rec = do(t, s, http.MethodGet, "/profit?period=2023-01&crop=Rice", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
	rec = do(t, s, http.MethodGet, "/profit?crop=Rice", "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestDraftWorkflow(t *testing.T) {
	s := newTestServer(t, &stubGenerator{text: "Seed: 50 kg"}, "")

	rec := do(t, s, http.MethodPost, "/drafts", `{"cropType":"Rice","landArea":2}`)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	d := decode[draft.Draft](t, rec)

	rec = do(t, s, http.MethodPost, "/planting-plans", `{"name":"Rice 2024","cropType":"Rice","requiredLandArea":2}`)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	pp := decode[plan.PlantingPlan](t, rec)

	compose := `{"plantingPlanId":"` + pp.ID + `","draftId":"` + d.ID + `","approvalNotes":"ok"}`
	rec = do(t, s, http.MethodPost, "/final-plans", compose)
	assert.Equal(t, http.StatusBadRequest, rec.Code, "unverified draft")

	rec = do(t, s, http.MethodPost, "/drafts/"+d.ID+"/verify", `{"verifiedDraft":"Seed: 60 kg"}`)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	rec = do(t, s, http.MethodGet, "/drafts?status=verified", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Len(t, decode[[]draft.Draft](t, rec), 1)

	rec = do(t, s, http.MethodPost, "/final-plans", compose)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	f := decode[plan.FinalPlan](t, rec)

	rec = do(t, s, http.MethodPost, "/final-plans/"+f.ID+"/approve?approver=siti", "")
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, "siti", decode[plan.FinalPlan](t, rec).ApprovedBy)

	rec = do(t, s, http.MethodPost, "/final-plans/"+f.ID+"/reject", `{"approver":"siti"}`)
	assert.Equal(t, http.StatusConflict, rec.Code)

	rec = do(t, s, http.MethodPost, "/drafts/missing/approve", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestApproverToken(t *testing.T) {
	s := newTestServer(t, &stubGenerator{text: "Seed"}, "s3cret")

	rec := do(t, s, http.MethodPost, "/drafts", `{"cropType":"Corn","landArea":1}`)
	require.Equal(t, http.StatusCreated, rec.Code)
	d := decode[draft.Draft](t, rec)
	require.Equal(t, http.StatusOK, do(t, s, http.MethodPost, "/drafts/"+d.ID+"/approve", "").Code)

	rec = do(t, s, http.MethodPost, "/planting-plans", `{"name":"Corn","cropType":"Corn","requiredLandArea":1}`)
	pp := decode[plan.PlantingPlan](t, rec)
	rec = do(t, s, http.MethodPost, "/final-plans", `{"plantingPlanId":"`+pp.ID+`","draftId":"`+d.ID+`","approvalNotes":"go"}`)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	f := decode[plan.FinalPlan](t, rec)

	rec = do(t, s, http.MethodPost, "/final-plans/"+f.ID+"/approve?approver=mallory", "")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	token, err := auth.NewApprovers("s3cret").Issue("budi", time.Hour)
	require.NoError(t, err)
	rec = do(t, s, http.MethodPost, "/final-plans/"+f.ID+"/approve", "", "Authorization", "Bearer "+token)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, "budi", decode[plan.FinalPlan](t, rec).ApprovedBy)
}

func TestGenerationErrors(t *testing.T) {
	t.Run("MissingCredentialIs503", func(t *testing.T) {
		s := newTestServer(t, &stubGenerator{err: llm.ErrMissingCredential}, "")
		rec := do(t, s, http.MethodPost, "/drafts", `{"cropType":"Rice","landArea":2}`)
		assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	})

	t.Run("ServiceErrorIs502", func(t *testing.T) {
		s := newTestServer(t, &stubGenerator{err: &llm.ServiceError{StatusCode: 500, Message: "boom"}}, "")
		rec := do(t, s, http.MethodPost, "/drafts", `{"cropType":"Rice","landArea":2}`)
		assert.Equal(t, http.StatusBadGateway, rec.Code)
		assert.Contains(t, decode[errorResponse](t, rec).Error, "boom")
	})
}

func TestHealthUsageAndExport(t *testing.T) {
	s := newTestServer(t, &stubGenerator{}, "")

	rec := do(t, s, http.MethodGet, "/health", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"status":"ok"`)

	rec = do(t, s, http.MethodGet, "/usage?days=3", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 3, decode[[]metrics.DailyUsage](t, rec)[0].TotalExecution)

	rec = do(t, s, http.MethodGet, "/export", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, xlsxContentType, rec.Header().Get("Content-Type"))
	assert.NotZero(t, rec.Body.Len())
}

func TestRunShutsDown(t *testing.T) {
	s := newTestServer(t, &stubGenerator{}, "")
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- s.Run(ctx, "127.0.0.1:0") }()

	time.Sleep(50 * time.Millisecond)
	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("server did not shut down")
	}
}
