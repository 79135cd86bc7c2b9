// Command score runs the scoring pipeline offline: it replays a history file
// into an in-memory baseline book, scores a batch of matchups and prints the
// batch result as JSON.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"log"
	"os"

	"github.com/prometheus/client_golang/prometheus"

	"HoopLine/internal/domain/models"
	"HoopLine/internal/service/cache"
	"HoopLine/internal/services/analytics"
	"HoopLine/internal/services/baseline"
	"HoopLine/internal/services/scoring"
	"HoopLine/internal/usecase"
	"HoopLine/pkg/config"
	"HoopLine/pkg/logger"
	"HoopLine/pkg/metrics"
)

func main() {
	configPath := flag.String("config", "", "config file path (defaults when empty)")
	historyPath := flag.String("history", "", "JSON file with {\"games\": [...], \"box_scores\": [...]}")
	inPath := flag.String("in", "-", "JSON array of matchups, - for stdin")
	flag.Parse()

	if err := run(*configPath, *historyPath, *inPath, os.Stdout); err != nil {
		log.Fatalf("score: %v", err)
	}
}

func run(configPath, historyPath, inPath string, out io.Writer) error {
	cfg, err := loadConfig(configPath)
	if err != nil {
		return err
	}
	l, err := logger.New(&logger.Config{Level: cfg.Log.Level, Format: "console", Output: "stderr"})
	if err != nil {
		return err
	}
	m := metrics.NewWithRegisterer(prometheus.NewRegistry())

	scorer, err := scoring.NewScorer(cfg.Scoring.Params())
	if err != nil {
		return err
	}
	book := baseline.NewBook(baseline.ConfigFrom(cfg.Scoring.Params()))
	baselines := usecase.NewBaselineUseCase(book, nil, cache.NewTTLCache(), cfg.Cache.BaselineTTL, m, l)
	uc := usecase.NewScoringUseCase(scorer, baselines,
		usecase.ScoringDeps{Advisor: analytics.NewOverrideAdvisor(cfg)}, m, l, cfg.Scoring.Workers)

	ctx := context.Background()
	if historyPath != "" {
		var req models.GamesRequest
		if err := readJSON(historyPath, &req); err != nil {
			return fmt.Errorf("history: %w", err)
		}
		n, err := baselines.Ingest(ctx, req.Games)
		if err != nil {
			return err
		}
		k, err := baselines.IngestBoxScores(ctx, req.BoxScores)
		if err != nil {
			return err
		}
		l.Info("history loaded", logger.Int("games", n+k), logger.Int("teams", len(baselines.Teams())))
	}

	var recs []models.MatchupRecord
	if err := readJSON(inPath, &recs); err != nil {
		return fmt.Errorf("matchups: %w", err)
	}

	res := uc.ScoreBatch(ctx, recs)
	enc := json.NewEncoder(out)
	enc.SetIndent("", "  ")
	return enc.Encode(res)
}

func loadConfig(path string) (*config.Config, error) {
	if path == "" {
		return config.Default()
	}
	return config.Load(path)
}

func readJSON(path string, v interface{}) error {
	var r io.Reader = os.Stdin
	if path != "-" {
		f, err := os.Open(path)
		if err != nil {
			return err
		}
		defer f.Close()
		r = f
	}
	return json.NewDecoder(r).Decode(v)
}
