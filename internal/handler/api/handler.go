package api

import (
	"context"
	"errors"
	"time"

	"github.com/labstack/echo/v4"

	"HoopLine/internal/domain/models"
	icache "HoopLine/internal/service/cache"
	"HoopLine/internal/service/metrics"
	"HoopLine/internal/service/ratelimit"
	"HoopLine/internal/usecase"
	xhttp "HoopLine/pkg/http"
	applogger "HoopLine/pkg/logger"
)

// MaxBatch bounds the matchups accepted by one batch request.
const MaxBatch = 500

// HealthCheck is one dependency probed by /healthz.
type HealthCheck struct {
	Name  string
	Check func(ctx context.Context) error
}

// Deps groups what the handler needs; Cache, Limiter and Checks are optional.
type Deps struct {
	Scoring     *usecase.ScoringUseCase
	Baselines   *usecase.BaselineUseCase
	Evaluations *usecase.EvaluationUseCase
	Cache       icache.BytesCache
	CacheTTL    time.Duration
	Limiter     *ratelimit.Limiter
	Checks      []HealthCheck
}

// Handler serves the scoring API under /api/v1.
type Handler struct {
	Deps
	l *applogger.Logger
}

func NewHandler(l *applogger.Logger, deps Deps) *Handler {
	if l == nil {
		l = applogger.Nop()
	}
	return &Handler{Deps: deps, l: l}
}

func (h *Handler) RegisterRoutes(e *echo.Echo) {
	e.GET("/healthz", h.Health)

	g := e.Group("/api/v1", h.rateLimit)
	g.POST("/predictions", h.observe("predictions", h.Predict))
	g.POST("/predictions/batch", h.observe("predictions_batch", h.PredictBatch))
	g.POST("/games", h.observe("games", h.IngestGames))
	g.GET("/baselines/:team", h.observe("baselines", h.Baseline))
	g.POST("/evaluations", h.observe("evaluations", h.Evaluate))
}

func (h *Handler) rateLimit(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		if h.Limiter != nil && !h.Limiter.Allow(c.RealIP()) {
			metrics.APIRateLimited.Inc()
			return xhttp.AppErrorResponse(c, xhttp.TooManyRequestsError())
		}
		return next(c)
	}
}

func (h *Handler) observe(endpoint string, next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		start := time.Now()
		err := next(c)
		metrics.APILatency.WithLabelValues(endpoint).Observe(time.Since(start).Seconds())
		if status := c.Response().Status; status >= 400 {
			metrics.APIErrors.WithLabelValues(endpoint, statusCode(status)).Inc()
		}
		return err
	}
}

// fail maps a use case error onto the response envelope.
func (h *Handler) fail(c echo.Context, op string, err error) error {
	var incomplete *models.IncompleteRecordError
	switch {
	case errors.As(err, &incomplete):
		return xhttp.AppErrorResponse(c, xhttp.UnprocessableError("ERR_INCOMPLETE_RECORD", err.Error()).
			WithParam("field", incomplete.Field))
	case errors.Is(err, models.ErrIncompleteRecord):
		return xhttp.AppErrorResponse(c, xhttp.UnprocessableError("ERR_INCOMPLETE_RECORD", err.Error()))
	case errors.Is(err, models.ErrInvalidRecord):
		return xhttp.AppErrorResponse(c, xhttp.UnprocessableError("ERR_INVALID_RECORD", err.Error()))
	case errors.Is(err, models.ErrInvalidGame):
		return xhttp.AppErrorResponse(c, xhttp.UnprocessableError("ERR_INVALID_GAME", err.Error()))
	case errors.Is(err, usecase.ErrPredictionUnknown):
		return xhttp.AppErrorResponse(c, xhttp.NotFoundErrorf("%v", err))
	}
	h.l.Error(op+" failed", applogger.Error(err))
	return xhttp.AppErrorResponse(c, xhttp.InternalErrorf("%s failed", op).WithError(err))
}

func statusCode(s int) string {
	switch {
	case s >= 500:
		return "5xx"
	case s == 429:
		return "429"
	case s == 422:
		return "422"
	case s == 404:
		return "404"
	default:
		return "4xx"
	}
}
