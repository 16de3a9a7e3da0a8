package telegram

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"farm-planner/internal/app"
	"farm-planner/internal/auth"
	"farm-planner/internal/harvest"
	"farm-planner/internal/llm"
	"farm-planner/internal/store"
)

type fakeAPI struct {
	mu   sync.Mutex
	sent []tgbotapi.MessageConfig
}

func (f *fakeAPI) Send(c tgbotapi.Chattable) (tgbotapi.Message, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if msg, ok := c.(tgbotapi.MessageConfig); ok {
		f.sent = append(f.sent, msg)
	}
	return tgbotapi.Message{}, nil
}

func (f *fakeAPI) HandleUpdate(r *http.Request) (*tgbotapi.Update, error) {
	var update tgbotapi.Update
	if err := json.NewDecoder(r.Body).Decode(&update); err != nil {
		return nil, err
	}
	return &update, nil
}

func (f *fakeAPI) texts() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []string
	for _, m := range f.sent {
		out = append(out, m.Text)
	}
	return out
}

type fixedGenerator struct{ text string }

func (g fixedGenerator) GenerateContent(ctx context.Context, req llm.Request) (llm.ContentResponse, error) {
	if g.text == "" {
		return llm.ContentResponse{}, llm.ErrMissingCredential
	}
	return llm.ContentResponse{Content: g.text, Usage: llm.TokenUsage{Model: "fixed"}}, nil
}

const allowedUser = 42

func newTestBot(t *testing.T, gen llm.TextGenerator) (*Bot, *fakeAPI, *app.App) {
	t.Helper()
	a := app.NewApp(store.NewMemory(), gen, nil, auth.NewApprovers(""), zap.NewNop())
	api := &fakeAPI{}
	return newBot(api, a, nil, []int64{allowedUser}, t.TempDir(), zap.NewNop()), api, a
}

func message(from int64, text string) *tgbotapi.Update {
	return &tgbotapi.Update{Message: &tgbotapi.Message{
		From: &tgbotapi.User{ID: from},
		Chat: &tgbotapi.Chat{ID: from},
		Text: text,
	}}
}

func seedHarvest(t *testing.T, a *app.App) {
	t.Helper()
	_, err := a.RecordHarvest(context.Background(), harvest.Input{
		LandName: "North", CropType: "Rice", LandArea: 2, HarvestDate: "2024-03-10",
		Quantity: 1500, Unit: "kg", UnitPrice: 5000, HarvestCost: 700000, Quality: harvest.QualityGood,
	})
	require.NoError(t, err)
}

func TestAllowList(t *testing.T) {
	b, api, _ := newTestBot(t, fixedGenerator{})

	b.handleUpdate(context.Background(), message(7, "/summary"))
	assert.Empty(t, api.texts())

	b.handleUpdate(context.Background(), message(allowedUser, "/summary"))
	require.Len(t, api.texts(), 1)
	assert.Equal(t, tgbotapi.ModeMarkdown, api.sent[0].ParseMode)
}

func TestCommands(t *testing.T) {
	ctx := context.Background()
	b, _, a := newTestBot(t, fixedGenerator{text: "Seed: 50 kg"})
	seedHarvest(t, a)

	t.Run("Summary", func(t *testing.T) {
		reply := b.answer(ctx, "/summary Rice 2024")
		assert.Contains(t, reply, "Rice 2024")
		assert.Contains(t, reply, "Rp 7.500.000")
		assert.Contains(t, reply, "March 2024")
	})

	t.Run("SummaryNoMatch", func(t *testing.T) {
		reply := b.answer(ctx, "/summary Corn")
		assert.Contains(t, reply, "No harvest data")
	})

	t.Run("Profit", func(t *testing.T) {
		reply := b.answer(ctx, "/profit 2024-03 rice")
		assert.Contains(t, reply, "Net profit: Rp 6.800.000")
		assert.Contains(t, reply, "No budget plan")
	})

	t.Run("ProfitNoData", func(t *testing.T) {
		reply := b.answer(ctx, "/profit 2023-01 Rice")
		assert.Contains(t, reply, "no harvest data")
	})

	t.Run("ProfitUsage", func(t *testing.T) {
		assert.Contains(t, b.answer(ctx, "/profit 2024-03"), "usage: /profit")
	})

	t.Run("Draft", func(t *testing.T) {
		reply := b.answer(ctx, "/draft Sweet corn 1,5")
		assert.Contains(t, reply, "Draft for Sweet corn, 1,50 ha")
		assert.Contains(t, reply, "Seed: 50 kg")
	})

	t.Run("DraftBadArea", func(t *testing.T) {
		assert.Contains(t, b.answer(ctx, "/draft Rice lots"), "hectares must be a number")
	})

	t.Run("BotSuffixAndHelp", func(t *testing.T) {
		assert.Contains(t, b.answer(ctx, "/summary@farm_bot"), "Harvest summary")
		assert.Equal(t, helpText, b.answer(ctx, "hello"))
	})

	t.Run("Metrics", func(t *testing.T) {
		reply := b.answer(ctx, "/metrics")
		assert.Contains(t, reply, "System Health")
		assert.Contains(t, reply, "Not recorded")
	})
}

func TestMissingCredential(t *testing.T) {
	b, _, _ := newTestBot(t, fixedGenerator{})
	assert.Contains(t, b.answer(context.Background(), "/draft Rice 2"), "not configured")
}

func TestWebhook(t *testing.T) {
	b, api, _ := newTestBot(t, fixedGenerator{})

	body, err := json.Marshal(message(allowedUser, "/summary"))
	require.NoError(t, err)
	rec := httptest.NewRecorder()
	b.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/telegram/webhook", bytes.NewReader(body)))
	assert.Equal(t, http.StatusOK, rec.Code)
	b.Wait()
	assert.Len(t, api.texts(), 1)

	rec = httptest.NewRecorder()
	b.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/telegram/webhook", bytes.NewBufferString("{")))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}
