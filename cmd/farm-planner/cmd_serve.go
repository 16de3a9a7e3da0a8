package main

import (
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"farm-planner/internal/api"
	"farm-planner/internal/telegram"
)

const webhookPath = "/telegram/webhook"

var serveAddr string

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the HTTP API and, when configured, the Telegram bot webhook",
	Args:  cobra.NoArgs,
	RunE:  serve,
}

func init() {
	serveCmd.Flags().StringVar(&serveAddr, "addr", "", "Listen address (default HTTP_ADDR)")
}

func serve(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	addr := serveAddr
	if addr == "" {
		addr = cfg.HTTPAddr
	}
	server := api.NewServer(application, rt.Metrics, cfg.DataDir, logger)

	var bot *telegram.Bot
	if cfg.TelegramBotToken != "" {
		var err error
		bot, err = telegram.NewBot(cfg, application, rt.Metrics, logger)
		if err != nil {
			return err
		}
		server.Mount(webhookPath, bot)
	} else {
		logger.Info("telegram bot disabled; TELEGRAM_BOT_TOKEN is not set")
	}

	if err := server.Run(ctx, addr); err != nil {
		return err
	}
	if bot != nil {
		bot.Wait()
	}
	logger.Info("shutdown complete", zap.String("addr", addr))
	return nil
}
