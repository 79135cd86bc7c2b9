package baseline

import (
	"context"
	"fmt"
	"math"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"HoopLine/internal/domain/models"
	"HoopLine/internal/services/scoring"
)

func day(n int) models.GameDate {
	return models.NewGameDate(2024, 1, 1).AddDays(n)
}

func game(team string, n int, net float64) models.TeamGame {
	return models.TeamGame{Team: team, GameID: fmt.Sprintf("%s-%03d", team, n), Date: day(n), NetRating: models.Float(net)}
}

func defaultBook() *Book {
	return NewBook(ConfigFrom(scoring.DefaultParams()))
}

func TestSingleGameUsesFallbacks(t *testing.T) {
	b := defaultBook()
	g := game("BOS", 0, 4)
	g.Positional = models.Float(0.3)
	_, err := b.Ingest(context.Background(), []models.TeamGame{g})
	require.NoError(t, err)

	bl := b.AsOf("BOS", day(0))
	assert.Equal(t, 1, bl.Count)
	assert.Equal(t, 4.0, bl.NetMean)
	assert.Equal(t, 5.0, bl.NetStd)
	assert.Equal(t, 0.3, bl.PositionalMedian)
	assert.Equal(t, 0.1, bl.PositionalIQR)
	assert.True(t, bl.FellBack(models.StatNetStd))
	assert.True(t, bl.FellBack(models.StatPositionalIQR))
	assert.False(t, bl.FellBack(models.StatPositionalMedian))
	assert.True(t, bl.FellBack(models.StatDecayMedian))
	assert.False(t, bl.FellBack(models.StatHistory))
}

func TestSampleStdAndQuantiles(t *testing.T) {
	s := NewSeries("NYK", ConfigFrom(scoring.DefaultParams()))
	for i, v := range []float64{1, 2, 3, 4} {
		g := game("NYK", i, v)
		g.Positional = models.Float(v)
		_, err := s.Append(g)
		require.NoError(t, err)
	}

	bl := s.Latest()
	assert.InDelta(t, 2.5, bl.NetMean, 1e-12)
	assert.InDelta(t, math.Sqrt(5.0/3.0), bl.NetStd, 1e-12)
	assert.InDelta(t, 2.5, bl.PositionalMedian, 1e-12)
	assert.InDelta(t, 1.5, bl.PositionalIQR, 1e-12)
	assert.False(t, bl.FellBack(models.StatNetStd))
}

func TestZeroSpreadFallsBack(t *testing.T) {
	s := NewSeries("MIA", ConfigFrom(scoring.DefaultParams()))
	for i := 0; i < 5; i++ {
		g := game("MIA", i, 2.2)
		g.EffectiveFG = models.Float(0.53)
		_, err := s.Append(g)
		require.NoError(t, err)
	}
	bl := s.Latest()
	assert.InDelta(t, 2.2, bl.NetMean, 1e-12)
	assert.Equal(t, 5.0, bl.NetStd)
	assert.Equal(t, 0.05, bl.EFGStd)
	assert.True(t, bl.FellBack(models.StatEFGStd))
}

func TestWindowEvictsOldestGames(t *testing.T) {
	cfg := ConfigFrom(scoring.DefaultParams())
	cfg.Window = 3
	s := NewSeries("LAL", cfg)
	for i, v := range []float64{1, 2, 3, 4, 100} {
		_, err := s.Append(game("LAL", i, v))
		require.NoError(t, err)
	}

	latest := s.Latest()
	assert.Equal(t, 3, latest.Count)
	assert.InDelta(t, 107.0/3.0, latest.NetMean, 1e-9)

	mid := s.AsOf(day(3))
	assert.Equal(t, 3, mid.Count)
	assert.InDelta(t, 3.0, mid.NetMean, 1e-12)
}

func TestAsOfNeverSeesLaterGames(t *testing.T) {
	b := defaultBook()
	games := []models.TeamGame{game("DEN", 0, 1), game("DEN", 1, 3), game("DEN", 5, 50)}
	n, err := b.Ingest(context.Background(), games)
	require.NoError(t, err)
	assert.Equal(t, 3, n)

	bl := b.AsOf("DEN", day(4))
	assert.Equal(t, 2, bl.Count)
	assert.InDelta(t, 2.0, bl.NetMean, 1e-12)

	before := b.AsOf("DEN", day(-1))
	assert.Equal(t, 0, before.Count)
	assert.True(t, before.FellBack(models.StatHistory))
}

func TestOutOfOrderAppendKeepsDateOrder(t *testing.T) {
	s := NewSeries("PHX", ConfigFrom(scoring.DefaultParams()))
	for _, g := range []models.TeamGame{game("PHX", 3, 3), game("PHX", 1, 1), game("PHX", 2, 2)} {
		_, err := s.Append(g)
		require.NoError(t, err)
	}

	games := s.Games()
	require.Len(t, games, 3)
	for i := 1; i < len(games); i++ {
		assert.False(t, games[i].Date.Before(games[i-1].Date.Time))
	}
	assert.Equal(t, s.AsOf(day(3)).NetMean, s.Latest().NetMean)
	assert.InDelta(t, 1.5, s.AsOf(day(2)).NetMean, 1e-12)
}

func TestDuplicateGameIgnored(t *testing.T) {
	s := NewSeries("CHI", ConfigFrom(scoring.DefaultParams()))
	ok, err := s.Append(game("CHI", 0, 1))
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = s.Append(game("CHI", 0, 9))
	require.NoError(t, err)
	assert.False(t, ok)
	assert.Equal(t, 1, s.Len())
}

func TestAppendRejectsForeignTeam(t *testing.T) {
	s := NewSeries("CHI", ConfigFrom(scoring.DefaultParams()))
	_, err := s.Append(game("BOS", 0, 1))
	assert.Error(t, err)
}

func TestIncrementalMatchesRecompute(t *testing.T) {
	cfg := ConfigFrom(scoring.DefaultParams())
	s := NewSeries("GSW", cfg)
	var nets []float64
	for i := 0; i < 250; i++ {
		v := math.Sin(float64(i)*0.7)*8 + float64(i%7)
		nets = append(nets, v)
		_, err := s.Append(game("GSW", i, v))
		require.NoError(t, err)
	}

	tail := nets[len(nets)-cfg.Window:]
	var m moments
	for _, v := range tail {
		m.add(v)
	}
	wantMean, _ := m.mean()
	wantStd, _ := m.std()

	bl := s.Latest()
	assert.Equal(t, cfg.Window, bl.Count)
	assert.InDelta(t, wantMean, bl.NetMean, 1e-9)
	assert.InDelta(t, wantStd, bl.NetStd, 1e-9)
}

func TestUnknownTeamGetsEmptyBaseline(t *testing.T) {
	b := defaultBook()
	bl := b.AsOf("SEA", day(0))
	assert.Equal(t, 0, bl.Count)
	assert.Equal(t, 5.0, bl.NetStd)
	assert.Equal(t, 0.1, bl.DecayIQR)
	assert.True(t, bl.FellBack(models.StatHistory))
	assert.False(t, b.Has("SEA"))
}

func TestIngestRejectsMalformedGames(t *testing.T) {
	b := defaultBook()
	_, err := b.Ingest(context.Background(), []models.TeamGame{game("BOS", 0, 1), {Team: "NYK", GameID: "x"}})
	require.Error(t, err)
	assert.Empty(t, b.Teams())
}

func TestIngestRejectsMissingNetRating(t *testing.T) {
	b := defaultBook()
	g := game("BOS", 0, 1)
	g.NetRating = nil

	_, err := b.Ingest(context.Background(), []models.TeamGame{game("BOS", 1, 1), g})
	require.ErrorIs(t, err, models.ErrInvalidGame)
	assert.False(t, b.Has("BOS"))

	_, err = NewSeries("BOS", b.Config()).Append(g)
	assert.ErrorIs(t, err, models.ErrInvalidGame)
}

func TestVersionTracksGameSet(t *testing.T) {
	b := defaultBook()
	ctx := context.Background()
	empty := b.Version("MIA")

	_, err := b.Ingest(ctx, []models.TeamGame{game("MIA", 5, 1)})
	require.NoError(t, err)
	v1 := b.Version("MIA")
	assert.NotEqual(t, empty, v1)

	_, err = b.Ingest(ctx, []models.TeamGame{game("MIA", 5, 1)})
	require.NoError(t, err)
	assert.Equal(t, v1, b.Version("MIA"), "duplicates leave the version alone")

	_, err = b.Ingest(ctx, []models.TeamGame{game("MIA", 1, 1)})
	require.NoError(t, err)
	assert.NotEqual(t, v1, b.Version("MIA"), "backfilled games change it")
}

func TestTeamCodesAreNormalised(t *testing.T) {
	b := defaultBook()
	_, err := b.Ingest(context.Background(), []models.TeamGame{game("lal", 0, 2), game(" LAL ", 1, 4)})
	require.NoError(t, err)

	assert.Equal(t, []string{"LAL"}, b.Teams())
	bl := b.AsOf("lal", day(2))
	assert.Equal(t, "LAL", bl.Team)
	assert.Equal(t, 2, bl.Count)
}

func TestConcurrentIngestAndRead(t *testing.T) {
	b := defaultBook()
	teams := []string{"ATL", "BKN", "CHA", "CLE"}

	var wg sync.WaitGroup
	for _, team := range teams {
		wg.Add(1)
		go func(team string) {
			defer wg.Done()
			for i := 0; i < 50; i++ {
				_, err := b.Ingest(context.Background(), []models.TeamGame{game(team, i, float64(i))})
				assert.NoError(t, err)
				_ = b.AsOf(team, day(i))
			}
		}(team)
	}
	wg.Wait()

	assert.Equal(t, teams, b.Teams())
	for _, team := range teams {
		assert.Equal(t, 50, b.Latest(team).Count)
	}
}
