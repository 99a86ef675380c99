package compare

import (
	"testing"

	"github.com/richard-senior/matchcast/pkg/form"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGoalsOnlyDifference(t *testing.T) {
	home := form.Summary{Matches: 5, GoalsAvg: 2.0}
	away := form.Summary{Matches: 5, GoalsAvg: 1.0}

	r := Teams(home, away, "Rovers", "United")
	require.Len(t, r.HomeAdvantages, 1)
	assert.Equal(t, "Rovers scores more goals (2.0 per match)", r.HomeAdvantages[0])
	// ten tied axes credit the away side, the record axes are skipped
	assert.Len(t, r.AwayAdvantages, 10)
	assert.Equal(t, "United performs better in 10 areas. Despite home advantage, United holds the edge.", r.Conclusion)
}

func TestRecordAxesSkipTies(t *testing.T) {
	a := form.Summary{Matches: 5, Wins: 2, Losses: 2}
	r := Teams(a, a, "A", "B")
	assert.Empty(t, r.HomeAdvantages)
	assert.Len(t, r.AwayAdvantages, len(axes))
	for _, s := range r.AwayAdvantages {
		assert.NotContains(t, s, "wins)")
		assert.NotContains(t, s, "losses)")
	}
}

func TestRecordAxesAreAntisymmetric(t *testing.T) {
	strong := form.Summary{Matches: 5, Wins: 4, Losses: 0}
	weak := form.Summary{Matches: 5, Wins: 1, Losses: 3}

	r := Teams(strong, weak, "A", "B")
	assert.Contains(t, r.HomeAdvantages, "A won more of the last 5 matches (4 wins)")
	assert.Contains(t, r.HomeAdvantages, "A lost fewer of the last 5 matches (0 losses)")

	swapped := Teams(weak, strong, "B", "A")
	assert.Contains(t, swapped.AwayAdvantages, "A won more of the last 5 matches (4 wins)")
	assert.Contains(t, swapped.AwayAdvantages, "A lost fewer of the last 5 matches (0 losses)")
	for _, s := range swapped.HomeAdvantages {
		assert.NotContains(t, s, "wins)")
		assert.NotContains(t, s, "losses)")
	}
}

func TestShotAccuracyAxis(t *testing.T) {
	home := form.Summary{ShotsAvg: 10, ShotsOnAvg: 5}
	away := form.Summary{}
	r := Teams(home, away, "A", "B")
	assert.Contains(t, r.HomeAdvantages, "A shoots more accurately (50.0%)")
}

func TestConclusions(t *testing.T) {
	assert.Equal(t, "A performs better in 7 areas. With home advantage, A is the favourite.", conclude(7, 6, "A", "B"))
	assert.Equal(t, "Both teams show similar performance. Home advantage may be decisive.", conclude(6, 6, "A", "B"))
}

func TestHomeFavourite(t *testing.T) {
	home := form.Summary{
		Matches: 5, Points: 13, GoalsAvg: 2.4, HTGoalsAvg: 1.2, PossessionAvg: 58, PassAccuracyAvg: 86,
		ShotsAvg: 14, ShotsOnAvg: 6, XGSum: 9.1, BoxEntriesAvg: 22, DuelsWonAvg: 50,
		Wins: 4, Draws: 1,
	}
	away := form.Summary{
		Matches: 5, Points: 4, GoalsAvg: 0.8, HTGoalsAvg: 0.2, PossessionAvg: 42, PassAccuracyAvg: 78,
		ShotsAvg: 9, ShotsOnAvg: 2, XGSum: 4.0, BoxEntriesAvg: 12, DuelsWonAvg: 45,
		AerialsWonAvg: 20, InterceptAvg: 10, Wins: 1, Draws: 1, Losses: 3,
	}
	r := Teams(home, away, "City", "Town")
	assert.Len(t, r.HomeAdvantages, 11)
	assert.Len(t, r.AwayAdvantages, 2)
	assert.Equal(t, "City performs better in 11 areas. With home advantage, City is the favourite.", r.Conclusion)
}
