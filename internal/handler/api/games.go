package api

import (
	"github.com/labstack/echo/v4"

	"HoopLine/internal/domain/models"
	xhttp "HoopLine/pkg/http"
)

// IngestGames appends finished games to the team histories.
func (h *Handler) IngestGames(c echo.Context) error {
	var req models.GamesRequest
	if err := c.Bind(&req); err != nil {
		return xhttp.BadRequestResponse(c, []xhttp.ValidationError{{Code: "ERR_BODY", Message: err.Error()}})
	}
	if len(req.Games) == 0 && len(req.BoxScores) == 0 {
		return xhttp.AppErrorResponse(c, xhttp.BadRequestErrorf("games or box_scores required"))
	}

	ctx := c.Request().Context()
	added := 0
	if len(req.BoxScores) > 0 {
		n, err := h.Baselines.IngestBoxScores(ctx, req.BoxScores)
		if err != nil {
			return h.fail(c, "ingest box scores", err)
		}
		added += n
	}
	if len(req.Games) > 0 {
		n, err := h.Baselines.Ingest(ctx, req.Games)
		if err != nil {
			return h.fail(c, "ingest games", err)
		}
		added += n
	}
	return xhttp.CreatedResponse(c, map[string]int{"added": added})
}
