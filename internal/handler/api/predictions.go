package api

import (
	"github.com/labstack/echo/v4"

	"HoopLine/internal/domain/models"
	"HoopLine/internal/service/metrics"
	xhttp "HoopLine/pkg/http"
)

// Predict scores one matchup. Unscorable records answer 422.
func (h *Handler) Predict(c echo.Context) error {
	var rec models.MatchupRecord
	if err := c.Bind(&rec); err != nil {
		return xhttp.BadRequestResponse(c, []xhttp.ValidationError{{Code: "ERR_BODY", Message: err.Error()}})
	}
	res, err := h.Scoring.Score(c.Request().Context(), rec)
	if err != nil {
		return h.fail(c, "predict", err)
	}
	return xhttp.SuccessResponse(c, res)
}

// PredictBatch scores many matchups; 207 when any of them failed.
func (h *Handler) PredictBatch(c echo.Context) error {
	var req models.BatchRequest
	if err := c.Bind(&req); err != nil {
		return xhttp.BadRequestResponse(c, []xhttp.ValidationError{{Code: "ERR_BODY", Message: err.Error()}})
	}
	if n := len(req.Matchups); n == 0 || n > MaxBatch {
		return xhttp.AppErrorResponse(c, xhttp.BadRequestErrorf("matchups must hold 1 to %d records, got %d", MaxBatch, n))
	}
	metrics.BatchSize.Observe(float64(len(req.Matchups)))

	out := h.Scoring.ScoreBatch(c.Request().Context(), req.Matchups)
	if len(out.Failures) > 0 {
		return xhttp.MultiStatusResponse(c, out)
	}
	return xhttp.SuccessResponse(c, out)
}
