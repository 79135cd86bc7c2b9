package repository

import (
	"context"
	"encoding/json"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"HoopLine/internal/domain/models"
	domrepo "HoopLine/internal/domain/repository"
	pkgkafka "HoopLine/pkg/kafka"
)

func TestHistoryStoreInsert(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	s := NewCHHistoryStore(db, "hoopline", nil)
	d := models.NewGameDate(2024, 1, 2)
	games := []models.TeamGame{
		{Team: "GSW", GameID: "g1", Date: d, NetRating: models.Float(4), EffectiveFG: models.Float(0.55)},
		{Team: "PHX", GameID: "g1", Date: d, NetRating: models.Float(-4)},
	}

	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO hoopline.team_games (team, game_id, date")).
		WithArgs(
			"GSW", "g1", d.Time, 4.0, 0.55, nil, nil, nil, nil,
			"PHX", "g1", d.Time, -4.0, nil, nil, nil, nil, nil,
		).
		WillReturnResult(sqlmock.NewResult(0, 2))

	require.NoError(t, s.StoreGames(context.Background(), games))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestHistoryStoreInsertError(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectExec("INSERT INTO").WillReturnError(assert.AnError)
	s := NewCHHistoryStore(db, "hoopline", nil)
	err = s.StoreGames(context.Background(), []models.TeamGame{{Team: "GSW", GameID: "g1"}})
	assert.ErrorIs(t, err, assert.AnError)
}

func TestHistoryStoreTeamGamesOldestFirst(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	through := models.NewGameDate(2024, 1, 10)
	rows := sqlmock.NewRows([]string{"team", "game_id", "date", "net_rating", "efg", "tov_rate", "rim_deterrence", "positional", "decay_ratio"}).
		AddRow("GSW", "g3", time.Date(2024, 1, 9, 0, 0, 0, 0, time.UTC), 6.0, 0.52, nil, nil, nil, nil).
		AddRow("GSW", "g2", time.Date(2024, 1, 5, 0, 0, 0, 0, time.UTC), -2.0, nil, 0.13, nil, 1.1, nil)
	mock.ExpectQuery(regexp.QuoteMeta("FROM hoopline.team_games FINAL")).
		WithArgs("GSW", through.Time, 2).
		WillReturnRows(rows)

	s := NewCHHistoryStore(db, "hoopline", nil)
	got, err := s.TeamGames(context.Background(), "GSW", through, 2)
	require.NoError(t, err)
	require.Len(t, got, 2)

	assert.Equal(t, "g2", got[0].GameID)
	assert.Equal(t, "2024-01-05", got[0].Date.String())
	assert.Nil(t, got[0].EffectiveFG)
	require.NotNil(t, got[0].TurnoverRate)
	assert.Equal(t, 0.13, *got[0].TurnoverRate)
	require.NotNil(t, got[0].Positional)

	assert.Equal(t, "g3", got[1].GameID)
	require.NotNil(t, got[1].EffectiveFG)
	assert.Equal(t, 0.52, *got[1].EffectiveFG)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPredictionStoreRoundTrip(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	s := NewCHPredictionStore(db, "hoopline", nil)
	r := models.PredictionResult{
		GameID:        "g1",
		Date:          models.NewGameDate(2024, 1, 11),
		HomeTeam:      "GSW",
		AwayTeam:      "PHX",
		Final:         -0.6,
		PostOverride:  -0.6,
		OverrideState: models.OverrideStandby,
		ScoredAt:      time.Date(2024, 1, 11, 9, 0, 0, 0, time.UTC),
	}

	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO hoopline.predictions")).
		WillReturnResult(sqlmock.NewResult(0, 1))
	require.NoError(t, s.StorePredictions(context.Background(), []models.PredictionResult{r}))

	payload, err := json.Marshal(r)
	require.NoError(t, err)
	mock.ExpectQuery(regexp.QuoteMeta("SELECT payload FROM hoopline.predictions")).
		WithArgs("g1").
		WillReturnRows(sqlmock.NewRows([]string{"payload"}).AddRow(string(payload)))

	got, err := s.GetPrediction(context.Background(), "g1")
	require.NoError(t, err)
	assert.Equal(t, r.GameID, got.GameID)
	assert.Equal(t, r.Final, got.Final)
	assert.Equal(t, models.OverrideStandby, got.OverrideState)
	assert.Equal(t, "2024-01-11", got.Date.String())
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPredictionStoreNotFound(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectQuery("SELECT payload").WillReturnRows(sqlmock.NewRows([]string{"payload"}))
	s := NewCHPredictionStore(db, "hoopline", nil)
	_, err = s.GetPrediction(context.Background(), "missing")
	assert.ErrorIs(t, err, domrepo.ErrNotFound)
}

func TestPredictionStoreEvaluation(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	at := time.Date(2024, 1, 12, 0, 0, 0, 0, time.UTC)
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO hoopline.evaluations")).
		WithArgs("g1", -0.6, -14.0, 13.4, 1, 0, 1, 0.0, "High volatility", "CHAOS_DETECTED|FALSE_CONFIDENCE", at).
		WillReturnResult(sqlmock.NewResult(0, 1))

	s := NewCHPredictionStore(db, "hoopline", nil)
	err = s.StoreEvaluation(context.Background(), models.Evaluation{
		GameID: "g1", Predicted: -0.6, ActualMargin: -14, VolatilityGap: 13.4,
		Correct: true, ORAMiss: true, Note: "High volatility", EvaluatedAt: at,
		Hooks: []string{"CHAOS_DETECTED", "FALSE_CONFIDENCE"},
	})
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestStoresInit(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectExec(regexp.QuoteMeta("CREATE TABLE IF NOT EXISTS hoopline.team_games")).WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectExec(regexp.QuoteMeta("CREATE TABLE IF NOT EXISTS hoopline.predictions")).WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectExec(regexp.QuoteMeta("CREATE TABLE IF NOT EXISTS hoopline.evaluations")).WillReturnResult(sqlmock.NewResult(0, 0))

	require.NoError(t, NewCHHistoryStore(db, "hoopline", nil).Init(context.Background()))
	require.NoError(t, NewCHPredictionStore(db, "hoopline", nil).Init(context.Background()))
	assert.NoError(t, mock.ExpectationsWereMet())
}

type fakeProducer struct {
	topic string
	keys  []string
	vals  []interface{}
}

func (f *fakeProducer) Publish(_ context.Context, topic string, key []byte, value interface{}) error {
	f.topic = topic
	f.keys = append(f.keys, string(key))
	f.vals = append(f.vals, value)
	return nil
}

func (f *fakeProducer) PublishBatch(_ context.Context, topic string, msgs []pkgkafka.Message) error {
	f.topic = topic
	for _, m := range msgs {
		f.keys = append(f.keys, string(m.Key))
		f.vals = append(f.vals, m.Value)
	}
	return nil
}

func (f *fakeProducer) Close() error { return nil }

func TestPredictionPublisherKeysByGame(t *testing.T) {
	fp := &fakeProducer{}
	p := &KafkaPredictionPublisher{producer: fp, topic: "hoopline.predictions"}

	require.NoError(t, p.Publish(context.Background(), &models.PredictionResult{GameID: "g1"}))
	require.NoError(t, p.PublishBatch(context.Background(), []models.PredictionResult{{GameID: "g2"}, {GameID: "g3"}}))
	require.NoError(t, p.PublishBatch(context.Background(), nil))

	assert.Equal(t, "hoopline.predictions", fp.topic)
	assert.Equal(t, []string{"g1", "g2", "g3"}, fp.keys)
	assert.IsType(t, models.PredictionResult{}, fp.vals[1])
}
