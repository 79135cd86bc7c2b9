package repository

import "fmt"

func historySchema(table string) []string {
	return []string{fmt.Sprintf(`
        CREATE TABLE IF NOT EXISTS %s (
            team           LowCardinality(String),
            game_id        String,
            date           Date,
            net_rating     Float64,
            efg            Nullable(Float64),
            tov_rate       Nullable(Float64),
            rim_deterrence Nullable(Float64),
            positional     Nullable(Float64),
            decay_ratio    Nullable(Float64),
            inserted_at    DateTime DEFAULT now()
        )
        ENGINE = ReplacingMergeTree(inserted_at)
        ORDER BY (team, date, game_id)
    `, table)}
}

func predictionSchema(predictions, evaluations string) []string {
	return []string{
		fmt.Sprintf(`
        CREATE TABLE IF NOT EXISTS %s (
            game_id         String,
            date            Date,
            home_team       LowCardinality(String),
            away_team       LowCardinality(String),
            anchor          Float64,
            win_signal      Float64,
            signal_points   Float64,
            total           Float64,
            volatility      Float64,
            penalty         Float64,
            final           Float64,
            confidence      Float64,
            override_state  LowCardinality(String),
            override_side   Int8,
            override_nudge  Float64,
            override_reason String,
            post_override   Float64,
            payload         String,
            scored_at       DateTime64(3)
        )
        ENGINE = ReplacingMergeTree(scored_at)
        ORDER BY game_id
    `, predictions),
		fmt.Sprintf(`
        CREATE TABLE IF NOT EXISTS %s (
            game_id        String,
            predicted      Float64,
            actual_margin  Float64,
            volatility_gap Float64,
            correct        UInt8,
            ora_regret     UInt8,
            ora_miss       UInt8,
            trust_delta    Float64,
            note           String,
            hooks          String,
            evaluated_at   DateTime64(3)
        )
        ENGINE = ReplacingMergeTree(evaluated_at)
        ORDER BY game_id
    `, evaluations),
	}
}

// CreateDatabase returns the statement creating the service database.
func CreateDatabase(db string) string {
	return fmt.Sprintf("CREATE DATABASE IF NOT EXISTS %s", db)
}
