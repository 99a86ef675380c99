package model

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/richard-senior/matchcast/pkg/features"
	"github.com/richard-senior/matchcast/pkg/history"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func syntheticMatches(n int) []*history.MatchRecord {
	start := time.Date(2024, 8, 1, 0, 0, 0, 0, time.UTC)
	out := make([]*history.MatchRecord, 0, n)
	for i := 0; i < n; i++ {
		gf := i % 4
		ga := (i / 2) % 3
		m := &history.MatchRecord{
			Team:           "Alpha",
			Opponent:       "Beta",
			Date:           start.AddDate(0, 0, -7*i),
			HTGoalsFor:     gf / 2,
			HTGoalsAgainst: ga / 2,
			FTGoalsFor:     gf,
			FTGoalsAgainst: ga,
			Possession:     40 + float64(gf*5),
			TotalShots:     float64(8 + gf*2),
			AccurateShots:  float64(2 + gf),
			XG:             0.4 * float64(gf),
			Fouls:          float64(10 + ga),
		}
		m.Outcome = history.OutcomeFor(gf, ga)
		out = append(out, m)
	}
	return out
}

func TestStandardScaler(t *testing.T) {
	s, err := FitScaler([][]float64{{1, 5}, {3, 5}})
	require.NoError(t, err)
	assert.Equal(t, []float64{2, 5}, s.Mean)
	assert.Equal(t, []float64{1, 1}, s.Std)

	out, err := s.Transform([]float64{3, 7})
	require.NoError(t, err)
	assert.Equal(t, []float64{1, 2}, out)

	_, err = s.Transform([]float64{1})
	assert.ErrorIs(t, err, ErrWidth)

	_, err = FitScaler(nil)
	assert.Error(t, err)
}

func TestIndexSelector(t *testing.T) {
	sel := &IndexSelector{Indices: []int{0, 2}, Width: 3}
	out, err := sel.Transform([]float64{1, 2, 3})
	require.NoError(t, err)
	assert.Equal(t, []float64{1, 3}, out)

	_, err = sel.Transform([]float64{1, 2})
	assert.ErrorIs(t, err, ErrWidth)
}

func TestSoftmaxClassifier(t *testing.T) {
	c := &SoftmaxClassifier{
		Labels:  []string{"a", "b"},
		Weights: [][]float64{{0, 1}, {0, -1}},
	}
	p, err := c.PredictProba([]float64{2})
	require.NoError(t, err)
	assert.InDelta(t, 1.0, p[0]+p[1], 1e-12)
	assert.Greater(t, p[0], p[1])

	v, err := c.PredictValue([]float64{-2})
	require.NoError(t, err)
	assert.Equal(t, 1.0, v)

	_, err = c.PredictProba([]float64{1, 2})
	assert.ErrorIs(t, err, ErrWidth)
}

func TestCentroidClassifierSkipsEmptyClass(t *testing.T) {
	c := &CentroidClassifier{
		Labels:    []string{"Loss", "Draw", "Win"},
		Centroids: [][]float64{{0}, {}, {10}},
	}
	p, err := c.PredictProba([]float64{9})
	require.NoError(t, err)
	assert.Equal(t, 0.0, p[1])
	assert.InDelta(t, 1.0, p[0]+p[2], 1e-12)

	v, err := c.PredictValue([]float64{9})
	require.NoError(t, err)
	assert.Equal(t, 2.0, v)
}

func TestLinearRegressor(t *testing.T) {
	r := &LinearRegressor{Weights: []float64{1, 2, 3}}
	v, err := r.PredictValue([]float64{1, 1})
	require.NoError(t, err)
	assert.Equal(t, 6.0, v)

	_, err = r.PredictProba([]float64{1, 1})
	assert.ErrorIs(t, err, ErrNotClassifier)
}

func TestArgmaxFirstWins(t *testing.T) {
	assert.Equal(t, 0, argmax([]float64{0.4, 0.4, 0.2}))
	assert.Equal(t, 2, argmax([]float64{0.1, 0.2, 0.7}))
}

func TestLoadMissingBundle(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "none.json"))
	assert.ErrorIs(t, err, ErrNoBundle)
}

func TestTrainRejectsShortHistory(t *testing.T) {
	rows, labels := features.Build(syntheticMatches(MinTrainingRows - 1))
	_, _, err := Train(rows, labels, DefaultTrainOptions())
	assert.Error(t, err)
}

func TestTrainSaveLoadRoundTrip(t *testing.T) {
	opts := DefaultTrainOptions()
	opts.Iterations = 50
	rows, labels := features.Build(syntheticMatches(40))

	b, rep, err := Train(rows, labels, opts)
	require.NoError(t, err)
	assert.Equal(t, 40, rep.Rows)
	assert.Equal(t, 8, rep.Holdout)
	assert.Len(t, b.Result, 3)
	assert.Len(t, b.Score, 2)
	assert.Len(t, b.HTFT, 3)
	assert.Len(t, b.BTTS, 3)

	sel, ok := b.BTTSSelector.(*IndexSelector)
	require.True(t, ok)
	assert.Equal(t, features.Width, sel.Width)
	assert.NotEmpty(t, sel.Indices)
	assert.LessOrEqual(t, len(sel.Indices), opts.SelectorMax)
	assert.IsIncreasing(t, sel.Indices)

	for _, m := range b.Result {
		c, ok := m.Model.(Classifier)
		require.True(t, ok, m.Name)
		assert.Equal(t, ResultClasses, c.Classes())
	}

	path := filepath.Join(t.TempDir(), "models", "bundle.json")
	require.NoError(t, Save(path, b))
	loaded, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, b.Meta.Rows, loaded.Meta.Rows)
	assert.Equal(t, features.Names(), loaded.Meta.FeatureNames)
	require.Len(t, loaded.HTFT, len(b.HTFT))

	row, err := b.Scaler.Transform(rows[0])
	require.NoError(t, err)
	loadedRow, err := loaded.Scaler.Transform(rows[0])
	require.NoError(t, err)
	assert.Equal(t, row, loadedRow)

	for i, m := range b.Result {
		want, err := m.Model.PredictProba(row)
		require.NoError(t, err)
		got, err := loaded.Result[i].Model.PredictProba(row)
		require.NoError(t, err)
		assert.InDeltaSlice(t, want, got, 1e-12)
		assert.Equal(t, m.Name, loaded.Result[i].Name)
	}
}

func TestSaveRejectsUnknownArtifact(t *testing.T) {
	b := &Bundle{
		Scaler: &StandardScaler{Mean: []float64{0}, Std: []float64{1}},
		Score:  Family{{Name: "odd", Model: oddModel{}}},
	}
	err := Save(filepath.Join(t.TempDir(), "b.json"), b)
	assert.Error(t, err)
}

type oddModel struct{}

func (oddModel) PredictProba([]float64) ([]float64, error) { return nil, nil }
func (oddModel) PredictValue([]float64) (float64, error)   { return 0, nil }

func TestPearson(t *testing.T) {
	assert.InDelta(t, 1.0, pearson([]float64{1, 2, 3}, []float64{2, 4, 6}), 1e-12)
	assert.InDelta(t, -1.0, pearson([]float64{1, 2, 3}, []float64{3, 2, 1}), 1e-12)
	assert.Equal(t, 0.0, pearson([]float64{1, 1, 1}, []float64{1, 2, 3}))
}

type twoTeams map[string][]*history.MatchRecord

func (s twoTeams) TeamHistory(team string) ([]*history.MatchRecord, error) { return s[team], nil }
func (s twoTeams) Teams() ([]string, error)                                { return []string{"Alpha", "Omega"}, nil }

func TestNewestFirstInterleavesTeams(t *testing.T) {
	alpha := syntheticMatches(3)
	omega := syntheticMatches(3)
	for _, m := range omega {
		m.Team = "Omega"
		m.Date = m.Date.AddDate(0, 0, 3)
	}
	matches, err := history.All(twoTeams{"Alpha": alpha, "Omega": omega})
	require.NoError(t, err)
	require.Equal(t, "Alpha", matches[0].Team)

	sorted := newestFirst(matches)
	require.Len(t, sorted, 6)
	assert.Equal(t, "Omega", sorted[0].Team)
	assert.Equal(t, "Alpha", sorted[1].Team)
	for i := 1; i < len(sorted); i++ {
		assert.False(t, sorted[i].Date.After(sorted[i-1].Date))
	}
	assert.Equal(t, "Alpha", matches[0].Team, "input order is left alone")
}
