package api

import (
	"context"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
)

// Health probes every registered dependency; any failure answers 503.
func (h *Handler) Health(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), 2*time.Second)
	defer cancel()

	status := http.StatusOK
	checks := make(map[string]string, len(h.Checks))
	for _, hc := range h.Checks {
		if err := hc.Check(ctx); err != nil {
			checks[hc.Name] = err.Error()
			status = http.StatusServiceUnavailable
			continue
		}
		checks[hc.Name] = "ok"
	}
	return c.JSON(status, map[string]interface{}{
		"status": http.StatusText(status),
		"checks": checks,
		"teams":  len(h.Baselines.Teams()),
	})
}
