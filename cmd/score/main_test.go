package main

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"HoopLine/internal/domain/models"
)

const matchupsJSON = `[
  {"game_id": "g1", "date": "2024-01-11", "home_team": "GSW", "away_team": "PHX", "venue": "neutral",
   "home": {"net_rating": 5.0}, "away": {"net_rating": 6.2}},
  {"game_id": "g2", "date": "2024-01-11", "home_team": "LAL", "away_team": "BOS",
   "home": {}, "away": {"net_rating": 1.0}}
]`

const historyJSON = `{"games": [
  {"team": "GSW", "game_id": "h1", "date": "2024-01-05", "net_rating": 4.0},
  {"team": "GSW", "game_id": "h2", "date": "2024-01-07", "net_rating": 8.0},
  {"team": "PHX", "game_id": "h1", "date": "2024-01-05", "net_rating": -4.0},
  {"team": "PHX", "game_id": "h3", "date": "2024-01-08", "net_rating": 2.0}
]}`

func writeFile(t *testing.T, name, body string) string {
	t.Helper()
	p := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(p, []byte(body), 0o600))
	return p
}

func kinds(ds []models.Degradation) []string {
	out := make([]string, 0, len(ds))
	for _, d := range ds {
		out = append(out, d.Kind)
	}
	return out
}

func TestRunScoresBatchWithoutHistory(t *testing.T) {
	in := writeFile(t, "matchups.json", matchupsJSON)

	var out bytes.Buffer
	require.NoError(t, run("", "", in, &out))

	var res models.BatchResult
	require.NoError(t, json.Unmarshal(out.Bytes(), &res))
	require.Len(t, res.Results, 1)
	require.Len(t, res.Failures, 1)

	assert.Equal(t, "g1", res.Results[0].GameID)
	assert.InDelta(t, -0.6, res.Results[0].Anchor, 1e-9)
	assert.Contains(t, kinds(res.Results[0].Degradations), models.DegradeBaseline)

	assert.Equal(t, 1, res.Failures[0].Index)
	assert.Equal(t, "g2", res.Failures[0].GameID)
}

func TestRunUsesHistory(t *testing.T) {
	in := writeFile(t, "matchups.json", matchupsJSON)
	hist := writeFile(t, "history.json", historyJSON)

	var out bytes.Buffer
	require.NoError(t, run("", hist, in, &out))

	var res models.BatchResult
	require.NoError(t, json.Unmarshal(out.Bytes(), &res))
	require.Len(t, res.Results, 1)
	assert.NotContains(t, kinds(res.Results[0].Degradations), models.DegradeBaseline)
}

func TestRunRejectsMalformedInput(t *testing.T) {
	in := writeFile(t, "matchups.json", `{"not": "an array"}`)

	var out bytes.Buffer
	err := run("", "", in, &out)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "matchups")
}
