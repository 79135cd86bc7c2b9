package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"HoopLine/internal/domain/models"
	"HoopLine/internal/service/cache"
	"HoopLine/internal/service/ratelimit"
	"HoopLine/internal/services/baseline"
	"HoopLine/internal/services/scoring"
	"HoopLine/internal/usecase"
	"HoopLine/pkg/logger"
	"HoopLine/pkg/metrics"
)

type envelope struct {
	Status  int             `json:"status"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
}

func newTestServer(t *testing.T, mutate func(*Deps)) *echo.Echo {
	t.Helper()
	p := scoring.DefaultParams()
	rec := metrics.NewWithRegisterer(prometheus.NewRegistry())
	c := cache.NewTTLCache()

	baselines := usecase.NewBaselineUseCase(baseline.NewBook(baseline.ConfigFrom(p)), nil, c, time.Hour, rec, logger.Nop())
	scorer, err := scoring.NewScorer(p)
	require.NoError(t, err)

	deps := Deps{
		Scoring:     usecase.NewScoringUseCase(scorer, baselines, usecase.ScoringDeps{}, rec, logger.Nop(), 2),
		Baselines:   baselines,
		Evaluations: usecase.NewEvaluationUseCase(nil, rec, logger.Nop()),
		Cache:       c,
		CacheTTL:    time.Minute,
	}
	if mutate != nil {
		mutate(&deps)
	}
	e := echo.New()
	NewHandler(logger.Nop(), deps).RegisterRoutes(e)
	return e
}

func do(e *echo.Echo, method, path, body string) (*httptest.ResponseRecorder, envelope) {
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, path, nil)
	} else {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	}
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	var env envelope
	_ = json.Unmarshal(rec.Body.Bytes(), &env)
	return rec, env
}

const neutralMatchup = `{"game_id":"g1","date":"2024-01-11","home_team":"GSW","away_team":"PHX",
	"home":{"net_rating":5.0},"away":{"net_rating":6.2},"venue":"neutral"}`

func TestPredict(t *testing.T) {
	e := newTestServer(t, nil)

	rec, env := do(e, http.MethodPost, "/api/v1/predictions", neutralMatchup)
	require.Equal(t, http.StatusOK, rec.Code)

	var res models.PredictionResult
	require.NoError(t, json.Unmarshal(env.Data, &res))
	assert.InDelta(t, -0.6, res.Final, 1e-9)
	assert.Equal(t, models.OverrideStandby, res.OverrideState)
}

func TestPredictUnscorable(t *testing.T) {
	e := newTestServer(t, nil)

	rec, env := do(e, http.MethodPost, "/api/v1/predictions",
		`{"game_id":"g1","date":"2024-01-11","home_team":"GSW","away_team":"PHX","home":{},"away":{"net_rating":1}}`)
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	assert.Contains(t, string(env.Data), "ERR_INCOMPLETE_RECORD")
	assert.Contains(t, string(env.Data), "home.net_rating")

	rec, env = do(e, http.MethodPost, "/api/v1/predictions",
		`{"game_id":"g1","date":"2024-01-11","home_team":"GSW","away_team":"PHX","home":{"net_rating":1},"away":{"net_rating":1},"venue":"moon"}`)
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	assert.Contains(t, string(env.Data), "ERR_INVALID_RECORD")

	rec, _ = do(e, http.MethodPost, "/api/v1/predictions", `{"game_id":`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestPredictBatch(t *testing.T) {
	e := newTestServer(t, nil)

	rec, env := do(e, http.MethodPost, "/api/v1/predictions/batch", `{"matchups":[`+neutralMatchup+`]}`)
	require.Equal(t, http.StatusOK, rec.Code)
	var out models.BatchResult
	require.NoError(t, json.Unmarshal(env.Data, &out))
	assert.Len(t, out.Results, 1)
	assert.Empty(t, out.Failures)

	rec, env = do(e, http.MethodPost, "/api/v1/predictions/batch",
		`{"matchups":[`+neutralMatchup+`,{"game_id":"g2","date":"2024-01-11","home_team":"GSW","away_team":"PHX","home":{"net_rating":1},"away":{}}]}`)
	require.Equal(t, http.StatusMultiStatus, rec.Code)
	out = models.BatchResult{}
	require.NoError(t, json.Unmarshal(env.Data, &out))
	assert.Len(t, out.Results, 1)
	require.Len(t, out.Failures, 1)
	assert.Equal(t, 1, out.Failures[0].Index)
	assert.Equal(t, "g2", out.Failures[0].GameID)

	rec, _ = do(e, http.MethodPost, "/api/v1/predictions/batch", `{"matchups":[]}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestGamesAndBaseline(t *testing.T) {
	e := newTestServer(t, nil)

	rec, env := do(e, http.MethodPost, "/api/v1/games", `{
		"games":[{"team":"GSW","game_id":"a","date":"2024-01-02","net_rating":4},
		         {"team":"GSW","game_id":"b","date":"2024-01-04","net_rating":8}],
		"box_scores":[{"game_id":"c","date":"2024-01-06",
			"home":{"team":"GSW","fga":90,"fgm":45,"fg3m":12,"tov":12,"plus_minus":8},
			"away":{"team":"PHX","fga":88,"fgm":40,"fg3m":10,"tov":15,"plus_minus":-8}}]}`)
	require.Equal(t, http.StatusCreated, rec.Code)
	assert.JSONEq(t, `{"added":4}`, string(env.Data))

	rec, env = do(e, http.MethodGet, "/api/v1/baselines/gsw?date=2024-01-05", "")
	require.Equal(t, http.StatusOK, rec.Code)
	var bl models.TeamBaseline
	require.NoError(t, json.Unmarshal(env.Data, &bl))
	assert.Equal(t, "GSW", bl.Team)
	assert.Equal(t, 2, bl.Count)
	assert.InDelta(t, 6.0, bl.NetMean, 1e-9)

	// served from the response cache the second time
	rec2, _ := do(e, http.MethodGet, "/api/v1/baselines/GSW?date=2024-01-05", "")
	assert.Equal(t, rec.Body.String(), rec2.Body.String())

	rec, _ = do(e, http.MethodGet, "/api/v1/baselines/GSW?date=someday", "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	rec, _ = do(e, http.MethodGet, "/api/v1/baselines/G$W", "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestBaselineFollowsIngest(t *testing.T) {
	e := newTestServer(t, nil)

	rec, _ := do(e, http.MethodPost, "/api/v1/games", `{"games":[
		{"team":"lal","game_id":"a","date":"2024-01-02","net_rating":2},
		{"team":"lal","game_id":"b","date":"2024-01-03","net_rating":4}]}`)
	require.Equal(t, http.StatusCreated, rec.Code)

	baselineOf := func(path string) models.TeamBaseline {
		rec, env := do(e, http.MethodGet, path, "")
		require.Equal(t, http.StatusOK, rec.Code)
		var bl models.TeamBaseline
		require.NoError(t, json.Unmarshal(env.Data, &bl))
		return bl
	}

	bl := baselineOf("/api/v1/baselines/LAL?date=2024-01-05")
	assert.Equal(t, 2, bl.Count)
	assert.InDelta(t, 3.0, bl.NetMean, 1e-9)
	assert.Equal(t, 2, baselineOf("/api/v1/baselines/lal?date=2024-01-05").Count)

	// a late-arriving game inside the window must replace the cached response
	rec, _ = do(e, http.MethodPost, "/api/v1/games", `{"games":[
		{"team":"LAL","game_id":"c","date":"2024-01-01","net_rating":9}]}`)
	require.Equal(t, http.StatusCreated, rec.Code)

	bl = baselineOf("/api/v1/baselines/LAL?date=2024-01-05")
	assert.Equal(t, 3, bl.Count)
	assert.InDelta(t, 5.0, bl.NetMean, 1e-9)
}

func TestGamesRejectsMalformed(t *testing.T) {
	e := newTestServer(t, nil)

	rec, _ := do(e, http.MethodPost, "/api/v1/games", `{}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec, env := do(e, http.MethodPost, "/api/v1/games", `{"games":[{"team":"GSW","date":"2024-01-02"}]}`)
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	assert.Contains(t, string(env.Data), "ERR_INVALID_GAME")
}

func TestEvaluate(t *testing.T) {
	e := newTestServer(t, nil)

	rec, env := do(e, http.MethodPost, "/api/v1/evaluations",
		`{"game_id":"g1","actual_margin":-14,"prediction":{"game_id":"g1","final":-0.6,"post_override":-0.6,"confidence":1}}`)
	require.Equal(t, http.StatusOK, rec.Code)
	var ev models.Evaluation
	require.NoError(t, json.Unmarshal(env.Data, &ev))
	assert.True(t, ev.Correct)
	assert.True(t, ev.ORAMiss)
	assert.Equal(t, "High volatility", ev.Note)
	assert.Equal(t, []string{"CHAOS_DETECTED"}, ev.Hooks)

	rec, _ = do(e, http.MethodPost, "/api/v1/evaluations", `{"game_id":"g9","actual_margin":3}`)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec, env = do(e, http.MethodPost, "/api/v1/evaluations", `{"game_id":"g9"}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, string(env.Data), "actual_margin")
}

func TestRateLimit(t *testing.T) {
	e := newTestServer(t, func(d *Deps) { d.Limiter = ratelimit.New(0.001, 1) })

	rec, _ := do(e, http.MethodGet, "/api/v1/baselines/GSW", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	rec, _ = do(e, http.MethodGet, "/api/v1/baselines/GSW", "")
	assert.Equal(t, http.StatusTooManyRequests, rec.Code)

	// health is outside the limited group
	rec, _ = do(e, http.MethodGet, "/healthz", "")
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestHealth(t *testing.T) {
	e := newTestServer(t, func(d *Deps) {
		d.Checks = []HealthCheck{
			{Name: "clickhouse", Check: func(context.Context) error { return nil }},
			{Name: "redis", Check: func(context.Context) error { return errors.New("dial tcp: refused") }},
		}
	})

	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)

	var body struct {
		Checks map[string]string `json:"checks"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "ok", body.Checks["clickhouse"])
	assert.Contains(t, body.Checks["redis"], "refused")
}
