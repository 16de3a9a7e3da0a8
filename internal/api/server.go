// Package api exposes the application over a JSON HTTP API.
package api

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"go.uber.org/zap"

	"farm-planner/internal/app"
	"farm-planner/internal/metrics"
)

// UsageReader reads the recorded generation usage.
type UsageReader interface {
	GetDailyUsage(ctx context.Context, days int) ([]metrics.DailyUsage, error)
}

// Server serves the HTTP API.
type Server struct {
	app     *app.App
	usage   UsageReader
	dataDir string
	logger  *zap.Logger
	echo    *echo.Echo
}

// NewServer builds the echo instance and registers every route. usage may be
// nil, in which case /usage answers 503.
func NewServer(a *app.App, usage UsageReader, dataDir string, logger *zap.Logger) *Server {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	s := &Server{app: a, usage: usage, dataDir: dataDir, logger: logger, echo: e}
	e.HTTPErrorHandler = s.handleError
	e.Use(middleware.Recover())
	e.Use(middleware.RequestLoggerWithConfig(middleware.RequestLoggerConfig{
		LogMethod:  true,
		LogURI:     true,
		LogStatus:  true,
		LogLatency: true,
		LogValuesFunc: func(c echo.Context, v middleware.RequestLoggerValues) error {
			logger.Debug("request",
				zap.String("method", v.Method),
				zap.String("uri", v.URI),
				zap.Int("status", v.Status),
				zap.Duration("latency", v.Latency))
			return nil
		},
	}))
	s.routes()
	return s
}

func (s *Server) routes() {
	e := s.echo
	e.GET("/health", s.health)
	e.GET("/usage", s.dailyUsage)
	e.GET("/export", s.export)

	e.GET("/harvests", s.listHarvests)
	e.POST("/harvests", s.createHarvest)
	e.GET("/harvests/:id", s.getHarvest)
	e.PUT("/harvests/:id", s.updateHarvest)
	e.DELETE("/harvests/:id", s.deleteHarvest)

	e.GET("/stats/options", s.statsOptions)
	e.GET("/stats/summary", s.statsSummary)
	e.GET("/stats/by-crop", s.statsByCrop)
	e.GET("/stats/by-month", s.statsByMonth)
	e.GET("/profit", s.profit)

	e.GET("/budgets", s.listBudgets)
	e.POST("/budgets", s.createBudget)
	e.GET("/budgets/:id", s.getBudget)
	e.DELETE("/budgets/:id", s.deleteBudget)
	e.POST("/budgets/:id/items", s.addBudgetItem)
	e.PUT("/budgets/:id/items/:itemID", s.updateBudgetItem)
	e.DELETE("/budgets/:id/items/:itemID", s.removeBudgetItem)

	e.GET("/drafts", s.listDrafts)
	e.POST("/drafts", s.generateDraft)
	e.GET("/drafts/:id", s.getDraft)
	e.DELETE("/drafts/:id", s.deleteDraft)
	e.POST("/drafts/:id/verify", s.verifyDraft)
	e.POST("/drafts/:id/approve", s.approveDraft)
	e.POST("/drafts/:id/reject", s.rejectDraft)

	e.GET("/planting-plans", s.listPlantingPlans)
	e.POST("/planting-plans", s.createPlantingPlan)

	e.GET("/final-plans", s.listFinalPlans)
	e.POST("/final-plans", s.composeFinalPlan)
	e.DELETE("/final-plans/:id", s.deleteFinalPlan)
	e.POST("/final-plans/:id/approve", s.approveFinalPlan)
	e.POST("/final-plans/:id/reject", s.rejectFinalPlan)
}

// Mount serves h for POST requests to path, such as a bot webhook.
func (s *Server) Mount(path string, h http.Handler) {
	s.echo.POST(path, echo.WrapHandler(h))
}

// Handler returns the HTTP handler.
func (s *Server) Handler() http.Handler {
	return s.echo
}

// Run serves on addr until ctx is canceled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context, addr string) error {
	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("http server listening", zap.String("addr", addr))
		errCh <- s.echo.Start(addr)
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := s.echo.Shutdown(shutdownCtx); err != nil {
		return err
	}
	if err := <-errCh; err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}
