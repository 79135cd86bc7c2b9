package api

import (
	"github.com/labstack/echo/v4"

	"HoopLine/internal/domain/models"
	"HoopLine/internal/usecase"
	xhttp "HoopLine/pkg/http"
)

// Evaluate grades a prediction against the final home margin.
func (h *Handler) Evaluate(c echo.Context) error {
	req := &models.EvaluationRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}
	e, err := h.Evaluations.Evaluate(c.Request().Context(), usecase.EvaluateParams{
		GameID:       req.GameID,
		ActualMargin: *req.ActualMargin,
		Prediction:   req.Prediction,
	})
	if err != nil {
		return h.fail(c, "evaluate", err)
	}
	return xhttp.SuccessResponse(c, e)
}
