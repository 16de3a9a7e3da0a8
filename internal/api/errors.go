package api

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"farm-planner/internal/analytics"
	"farm-planner/internal/auth"
	"farm-planner/internal/budget"
	"farm-planner/internal/llm"
	"farm-planner/internal/store"
	"farm-planner/internal/validation"
	"farm-planner/internal/workflow"
)

type errorResponse struct {
	Error string `json:"error"`
	Field string `json:"field,omitempty"`
}

func statusOf(err error) int {
	var verr *validation.Error
	var svcErr *llm.ServiceError
	var httpErr *echo.HTTPError
	switch {
	case errors.As(err, &httpErr):
		return httpErr.Code
	case errors.As(err, &verr), errors.Is(err, budget.ErrEmptyPlan):
		return http.StatusBadRequest
	case errors.Is(err, store.ErrNotFound), errors.Is(err, budget.ErrItemNotFound), errors.Is(err, analytics.ErrNoData):
		return http.StatusNotFound
	case errors.Is(err, workflow.ErrInvalidTransition):
		return http.StatusConflict
	case errors.Is(err, auth.ErrTokenRequired), errors.Is(err, auth.ErrInvalidToken):
		return http.StatusUnauthorized
	case errors.Is(err, llm.ErrMissingCredential):
		return http.StatusServiceUnavailable
	case errors.As(err, &svcErr):
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

func (s *Server) handleError(err error, c echo.Context) {
	if c.Response().Committed {
		return
	}

	code := statusOf(err)
	resp := errorResponse{Error: err.Error()}
	var verr *validation.Error
	var httpErr *echo.HTTPError
	switch {
	case errors.As(err, &httpErr):
		if msg, ok := httpErr.Message.(string); ok {
			resp.Error = msg
		} else {
			resp.Error = http.StatusText(code)
		}
	case errors.As(err, &verr):
		resp.Error, resp.Field = verr.Message, verr.Field
	case code == http.StatusInternalServerError:
		s.logger.Error("request failed", zap.String("uri", c.Request().RequestURI), zap.Error(err))
		resp.Error = http.StatusText(code)
	}

	if c.Request().Method == http.MethodHead {
		err = c.NoContent(code)
	} else {
		err = c.JSON(code, resp)
	}
	if err != nil {
		s.logger.Warn("failed to write error response", zap.Error(err))
	}
}
