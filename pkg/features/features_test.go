package features

import (
	"math"
	"testing"

	"github.com/richard-senior/matchcast/pkg/history"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func column(name string) int {
	for i, n := range names {
		if n == name {
			return i
		}
	}
	return -1
}

func TestNamesWidth(t *testing.T) {
	assert.Len(t, Names(), 28)
	assert.Equal(t, Width, len(Names()))
	assert.Equal(t, "goals", Names()[0])
	assert.Equal(t, "fouls", Names()[Width-1])
}

func TestZeroShotMatchHasZeroRatios(t *testing.T) {
	m := &history.MatchRecord{Outcome: history.Draw}
	v := FromRecord(m)
	require.Len(t, v, Width)
	assert.Equal(t, 0.0, v[column("shot_accuracy")])
	assert.Equal(t, 0.0, v[column("cross_accuracy")])
	assert.Equal(t, 0.0, v[column("goal_conversion")])
}

func TestRatiosAndCleaning(t *testing.T) {
	m := &history.MatchRecord{
		FTGoalsFor:      2,
		TotalShots:      10,
		AccurateShots:   4,
		TotalCrosses:    8,
		AccurateCrosses: 2,
		XG:              math.NaN(),
		Outcome:         history.Win,
	}
	v := FromRecord(m)
	assert.InDelta(t, 0.4, v[column("shot_accuracy")], 1e-9)
	assert.InDelta(t, 0.25, v[column("cross_accuracy")], 1e-9)
	assert.InDelta(t, 0.5, v[column("goal_conversion")], 1e-9)
	assert.Equal(t, 0.0, v[column("xg")])
}

func TestLabels(t *testing.T) {
	matches := []*history.MatchRecord{
		{HTGoalsFor: 1, HTGoalsAgainst: 0, FTGoalsFor: 1, FTGoalsAgainst: 1, Outcome: history.Draw},
		{HTGoalsFor: 0, HTGoalsAgainst: 1, FTGoalsFor: 2, FTGoalsAgainst: 1, Outcome: history.Win},
		{HTGoalsFor: 0, HTGoalsAgainst: 0, FTGoalsFor: 0, FTGoalsAgainst: 2, Outcome: history.Loss},
	}
	rows, labels := Build(matches)
	require.Len(t, rows, 3)
	assert.Equal(t, []int{ClassDraw, ClassWin, ClassLoss}, labels.Result)
	assert.Equal(t, []string{"1-X", "2-1", "X-2"}, labels.HTFT)
	assert.Equal(t, []bool{true, true, false}, labels.BTTS)
	assert.Equal(t, []float64{1, 2, 0}, labels.Goals)
}

func TestMean(t *testing.T) {
	_, err := Mean(nil)
	assert.ErrorIs(t, err, ErrEmpty)

	m, err := Mean([]Vector{{1, 2}, {3, 6}})
	require.NoError(t, err)
	assert.Equal(t, Vector{2, 4}, m)

	_, err = Mean([]Vector{{1}, {1, 2}})
	assert.Error(t, err)
}
