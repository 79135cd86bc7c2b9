package usecase

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	pkgkafka "HoopLine/pkg/kafka"
)

func TestMatchupsHandler(t *testing.T) {
	h := newHarness(ScoringDeps{})
	handler := NewKafkaMatchupsHandler("hoopline.matchups", h.scoring, h.metrics)
	assert.Equal(t, "hoopline.matchups", handler.Topic())
	ctx := context.Background()

	ok := `{"game_id":"g1","date":"2024-01-11","home_team":"GSW","away_team":"PHX","home":{"net_rating":5},"away":{"net_rating":6.2},"venue":"neutral"}`
	require.NoError(t, handler.Handle(ctx, []byte(ok)))
	assert.Len(t, h.publisher.published, 1)

	for name, msg := range map[string]string{
		"malformed":  `{"game_id":`,
		"incomplete": `{"game_id":"g2","date":"2024-01-11","home_team":"GSW","away_team":"PHX","home":{},"away":{"net_rating":1}}`,
		"invalid":    `{"game_id":"g3","date":"2024-01-11","home_team":"GSW","away_team":"PHX","home":{"net_rating":1},"away":{"net_rating":1},"crowd_support":4}`,
	} {
		err := handler.Handle(ctx, []byte(msg))
		assert.True(t, pkgkafka.IsPermanent(err), name)
	}
}

func TestGamesHandler(t *testing.T) {
	h := newHarness(ScoringDeps{})
	handler := NewKafkaGamesHandler("hoopline.games", h.baselines, h.metrics)
	ctx := context.Background()

	row := `{"team":"GSW","game_id":"g1","date":"2024-01-02","net_rating":7.5}`
	require.NoError(t, handler.Handle(ctx, []byte(row)))

	box := `{"game_id":"g2","date":"2024-01-03","home":{"team":"GSW","fga":90,"fgm":45,"fg3m":12,"tov":12,"plus_minus":8},"away":{"team":"PHX","fga":88,"fgm":40,"fg3m":10,"tov":15,"plus_minus":-8}}`
	require.NoError(t, handler.Handle(ctx, []byte(box)))

	assert.Equal(t, []string{"GSW", "PHX"}, h.baselines.Teams())
	assert.Len(t, h.history.stored, 3)

	assert.True(t, pkgkafka.IsPermanent(handler.Handle(ctx, []byte(`not json`))))
	assert.True(t, pkgkafka.IsPermanent(handler.Handle(ctx, []byte(`{"team":"GSW","date":"2024-01-04"}`))))
}
