package api

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"HoopLine/internal/domain/models"
	"HoopLine/internal/usecase"
	xhttp "HoopLine/pkg/http"
	applogger "HoopLine/pkg/logger"
	"HoopLine/pkg/util"
)

// Baseline returns a team's rolling baseline as of ?date= (default today, UTC).
func (h *Handler) Baseline(c echo.Context) error {
	req := &models.BaselineRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}
	team := util.TeamKey(req.Team)

	date := models.DateOf(time.Now())
	if req.Date != "" {
		t, ok := xhttp.ParseDate(req.Date)
		if !ok {
			return xhttp.AppErrorResponse(c, xhttp.BadRequestErrorf("invalid date %q", req.Date))
		}
		date = models.DateOf(t)
	}

	ctx := c.Request().Context()
	key := "resp:" + usecase.CacheKey(team, date, h.Baselines.Version(ctx, team, date))
	if h.Cache != nil {
		if b, ok, err := h.Cache.GetBytes(key); err != nil {
			h.l.Warn("baseline response cache get failed", applogger.Error(err))
		} else if ok {
			return c.JSONBlob(http.StatusOK, b)
		}
	}

	bl, err := h.Baselines.AsOf(ctx, team, date)
	if err != nil {
		return h.fail(c, "baseline", err)
	}
	body := xhttp.APIResponse{Status: http.StatusOK, Message: http.StatusText(http.StatusOK), Data: bl}
	b, err := json.Marshal(body)
	if err != nil {
		return h.fail(c, "baseline", err)
	}
	if h.Cache != nil {
		if err := h.Cache.SetBytes(key, b, h.CacheTTL); err != nil {
			h.l.Warn("baseline response cache set failed", applogger.Error(err))
		}
	}
	return c.JSONBlob(http.StatusOK, b)
}
