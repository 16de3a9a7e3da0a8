package telegram

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/zap"

	"farm-planner/internal/analytics"
	"farm-planner/internal/app"
	"farm-planner/internal/config"
	"farm-planner/internal/drafting"
	"farm-planner/internal/llm"
	"farm-planner/internal/metrics"
	"farm-planner/internal/report"
	"farm-planner/internal/validation"
)

// processTimeout bounds the handling of one message, draft generation included.
const processTimeout = 2 * time.Minute

// botAPI is the part of the Telegram client the bot uses.
type botAPI interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
	HandleUpdate(r *http.Request) (*tgbotapi.Update, error)
}

// UsageReader reads the recorded generation usage.
type UsageReader interface {
	GetDailyUsage(ctx context.Context, days int) ([]metrics.DailyUsage, error)
}

// Bot answers farm commands from allow-listed Telegram users.
type Bot struct {
	api     botAPI
	app     *app.App
	usage   UsageReader
	allowed map[int64]bool
	dataDir string
	logger  *zap.Logger
	wg      sync.WaitGroup
}

// NewBot initializes the Telegram Bot and sets the Webhook.
func NewBot(cfg *config.Config, a *app.App, usage UsageReader, logger *zap.Logger) (*Bot, error) {
	api, err := tgbotapi.NewBotAPI(cfg.TelegramBotToken)
	if err != nil {
		return nil, fmt.Errorf("failed to init telegram api: %w", err)
	}
	logger.Info("telegram bot authorized", zap.String("account", api.Self.UserName))

	if cfg.TelegramWebhookURL != "" {
		wh, err := tgbotapi.NewWebhook(cfg.TelegramWebhookURL)
		if err != nil {
			return nil, fmt.Errorf("invalid webhook url %s: %w", cfg.TelegramWebhookURL, err)
		}
		resp, err := api.Request(wh)
		if err != nil {
			return nil, fmt.Errorf("failed to set webhook to %s: %w", cfg.TelegramWebhookURL, err)
		}
		logger.Info("telegram webhook set", zap.String("description", resp.Description))
	}

	return newBot(api, a, usage, cfg.TelegramAllowedUserIDs, cfg.DataDir, logger), nil
}

func newBot(api botAPI, a *app.App, usage UsageReader, allowedIDs []int64, dataDir string, logger *zap.Logger) *Bot {
	allowed := make(map[int64]bool, len(allowedIDs))
	for _, id := range allowedIDs {
		allowed[id] = true
	}
	return &Bot{api: api, app: a, usage: usage, allowed: allowed, dataDir: dataDir, logger: logger}
}

// ServeHTTP handles webhook updates. Messages are processed in the background
// so Telegram gets its answer right away.
func (b *Bot) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	update, err := b.api.HandleUpdate(r)
	if err != nil {
		b.logger.Warn("failed to parse telegram update", zap.Error(err))
		w.WriteHeader(http.StatusBadRequest)
		return
	}
	w.WriteHeader(http.StatusOK)

	b.wg.Add(1)
	go func() {
		defer b.wg.Done()
		ctx, cancel := context.WithTimeout(context.Background(), processTimeout)
		defer cancel()
		b.handleUpdate(ctx, update)
	}()
}

// Wait blocks until every message in flight has been answered.
func (b *Bot) Wait() {
	b.wg.Wait()
}

func (b *Bot) handleUpdate(ctx context.Context, update *tgbotapi.Update) {
	msg := update.Message
	if msg == nil || msg.From == nil {
		return
	}
	if !b.allowed[msg.From.ID] {
		b.logger.Warn("unauthorized telegram access attempt",
			zap.Int64("user_id", msg.From.ID),
			zap.String("username", msg.From.UserName))
		return
	}
	b.reply(msg.Chat.ID, b.answer(ctx, msg.Text))
}

// answer runs the command in text and returns the reply.
func (b *Bot) answer(ctx context.Context, text string) string {
	fields := strings.Fields(text)
	if len(fields) == 0 {
		return helpText
	}
	command, _, _ := strings.Cut(fields[0], "@")
	args := fields[1:]

	var reply string
	var err error
	switch command {
	case "/summary":
		reply, err = b.summary(ctx, args)
	case "/profit":
		reply, err = b.profit(ctx, args)
	case "/draft":
		reply, err = b.draft(ctx, args)
	case "/metrics":
		reply, err = b.metrics(ctx)
	default:
		return helpText
	}
	if err != nil {
		b.logger.Info("telegram command failed", zap.String("command", command), zap.Error(err))
		return errorText(err)
	}
	return reply
}

const helpText = "🌾 *Farm planner*\n\n" +
	"/summary [crop] [year] - harvest statistics\n" +
	"/profit <YYYY-MM> <crop> - profit and loss for one month\n" +
	"/draft <crop> <hectares> - generate a requirements draft\n" +
	"/metrics - usage and health"

func (b *Bot) summary(ctx context.Context, args []string) (string, error) {
	var c analytics.Criteria
	if n := len(args); n > 0 {
		if year, err := strconv.Atoi(args[n-1]); err == nil {
			c.Year = year
			args = args[:n-1]
		}
	}
	c.CropType = strings.Join(args, " ")

	stats, err := b.app.Statistics(ctx, c)
	if err != nil {
		return "", err
	}
	return formatSummary(c, stats), nil
}

func (b *Bot) profit(ctx context.Context, args []string) (string, error) {
	if len(args) < 2 {
		return "", validation.New("", "usage: /profit <YYYY-MM> <crop>")
	}
	period, crop := args[0], strings.Join(args[1:], " ")
	pl, err := b.app.ProfitLoss(ctx, period, crop)
	if err != nil {
		return "", err
	}
	return formatProfit(period, crop, pl), nil
}

func (b *Bot) draft(ctx context.Context, args []string) (string, error) {
	if len(args) < 2 {
		return "", validation.New("", "usage: /draft <crop> <hectares>")
	}
	area, err := strconv.ParseFloat(strings.ReplaceAll(args[len(args)-1], ",", "."), 64)
	if err != nil {
		return "", validation.New("landArea", "hectares must be a number")
	}
	d, err := b.app.GenerateDraft(ctx, drafting.Prompt{
		CropType: strings.Join(args[:len(args)-1], " "),
		LandArea: area,
	})
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("📝 *Draft for %s, %s ha*\n_id: %s_\n\n%s",
		d.CropType, report.Number(d.LandArea), d.ID, d.Draft), nil
}

func (b *Bot) metrics(ctx context.Context) (string, error) {
	var sb strings.Builder
	sb.WriteString("📊 *Usage & Health Report*\n\n")

	sb.WriteString("🗓 *Recent draft generation*\n")
	if b.usage != nil {
		usage, err := b.usage.GetDailyUsage(ctx, 7)
		if err != nil {
			return "", err
		}
		if len(usage) == 0 {
			sb.WriteString("_No data yet_\n")
		}
		for _, d := range usage {
			fmt.Fprintf(&sb, "• *%s*: %d tokens (%d execs, %d failed)\n",
				d.Date, d.TotalPrompt+d.TotalCompletion, d.TotalExecution, d.Failures)
		}
	} else {
		sb.WriteString("_Not recorded_\n")
	}

	health := metrics.GetSysHealth(b.dataDir)
	sb.WriteString("\n🧠 *System Health*\n")
	fmt.Fprintf(&sb, "• RAM: %dMB (Alloc) / %dMB (Sys)\n", health.AllocMB, health.SysMB)
	fmt.Fprintf(&sb, "• Goroutines: %d\n", health.Goroutines)
	fmt.Fprintf(&sb, "• Disk Data: %s\n", health.DataDiskSize)
	return sb.String(), nil
}

func (b *Bot) reply(chatID int64, text string) {
	msg := tgbotapi.NewMessage(chatID, text)
	msg.ParseMode = tgbotapi.ModeMarkdown
	if _, err := b.api.Send(msg); err != nil {
		b.logger.Warn("failed to send telegram reply", zap.Int64("chat_id", chatID), zap.Error(err))
	}
}

func formatSummary(c analytics.Criteria, stats app.Statistics) string {
	var sb strings.Builder
	sb.WriteString("🌾 *Harvest summary*")
	if c.CropType != "" {
		fmt.Fprintf(&sb, " - %s", c.CropType)
	}
	if c.Year != 0 {
		fmt.Fprintf(&sb, " %d", c.Year)
	}
	sb.WriteString("\n\n")

	s := stats.Summary
	if s.Count == 0 {
		sb.WriteString("_No harvest data matches the filter._")
		return sb.String()
	}
	fmt.Fprintf(&sb, "• Harvests: %d of %d\n", stats.Shown, stats.Total)
	fmt.Fprintf(&sb, "• Quantity: %s\n", report.Number(s.TotalQuantity))
	fmt.Fprintf(&sb, "• Revenue: %s\n", report.Rupiah(s.TotalRevenue))
	fmt.Fprintf(&sb, "• Cost: %s\n", report.Rupiah(s.TotalCost))
	fmt.Fprintf(&sb, "• Productivity: %s per ha\n", report.Number(s.ProductivityPerHectare))
	fmt.Fprintf(&sb, "• Top crop: %s\n", s.MostFrequentCrop)
	fmt.Fprintf(&sb, "• Quality: %s\n", s.AverageQuality)

	if len(stats.ByMonth) > 0 {
		sb.WriteString("\n🗓 *By month*\n")
		for _, g := range stats.ByMonth.Sorted() {
			fmt.Fprintf(&sb, "• %s: %s\n", report.PeriodLabel(g.Key), report.Rupiah(g.TotalRevenue))
		}
	}
	return sb.String()
}

func formatProfit(period, crop string, pl analytics.ProfitLoss) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "💰 *Profit & loss - %s, %s*\n\n", crop, report.PeriodLabel(period))
	if pl.BudgetName != "" {
		fmt.Fprintf(&sb, "Budget: %s\n", pl.BudgetName)
	} else {
		sb.WriteString("_No budget plan for this crop_\n")
	}
	fmt.Fprintf(&sb, "• Revenue: %s\n", report.Rupiah(pl.TotalRevenue))
	fmt.Fprintf(&sb, "• Planned budget: %s\n", report.Rupiah(pl.PlannedBudget))
	fmt.Fprintf(&sb, "• Actual cost: %s\n", report.Rupiah(pl.ActualCost))
	fmt.Fprintf(&sb, "• Net profit: %s\n", report.Rupiah(pl.NetProfit))
	fmt.Fprintf(&sb, "• Margin: %s (%s)\n", report.Percent(pl.ProfitMargin), analytics.Classify(pl.ProfitMargin, analytics.Margin))
	fmt.Fprintf(&sb, "• ROI: %s (%s)\n", report.Percent(pl.ROI), analytics.Classify(pl.ROI, analytics.ROI))
	return sb.String()
}

func errorText(err error) string {
	var verr *validation.Error
	switch {
	case errors.As(err, &verr):
		return "⚠️ " + verr.Message
	case errors.Is(err, analytics.ErrNoData):
		return "📭 " + err.Error()
	case errors.Is(err, llm.ErrMissingCredential):
		return "⛔ Draft generation is not configured."
	default:
		safeErr := strings.ReplaceAll(err.Error(), "`", "'")
		return fmt.Sprintf("❌ *Error:*\n```\n%v\n```", safeErr)
	}
}
