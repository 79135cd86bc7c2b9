// Command app serves the scoring API and, when Kafka is enabled, scores
// matchups from the matchups topic.
package main

import (
	"flag"
	"fmt"
	"log"

	"HoopLine/internal/di"
	"HoopLine/pkg/config"
)

func main() {
	configPath := flag.String("config", "configs/config.yaml", "config file path")
	flag.Parse()

	if err := run(*configPath); err != nil {
		log.Fatalf("hoopline: %v", err)
	}
}

func run(configPath string) error {
	cfg, err := config.LoadWithEnv(configPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	log.Printf("hoopline starting env=%s kafka=%t clickhouse=%t redis=%t advisor=%s",
		cfg.Environment, cfg.Kafka.Enabled, cfg.ClickHouse.Enabled, cfg.Redis.Enabled, cfg.Advisor.Mode)

	app, err := di.InitializeApp(cfg)
	if err != nil {
		return fmt.Errorf("initialize: %w", err)
	}
	// Blocks until SIGINT or SIGTERM.
	return app.Run()
}
