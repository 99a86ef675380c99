// Package features maps match records to the fixed numeric vectors every model consumes.
package features

import (
	"errors"
	"math"

	"github.com/richard-senior/matchcast/pkg/history"
)

// Vector is one row of model input in Names() order
type Vector []float64

var names = []string{
	// positive
	"goals",
	"ht_goals",
	"xg",
	"goal_conversion",
	"possession",
	"duels_won",
	"aerials_won",
	"interceptions",
	"total_passes",
	"accurate_passes",
	"pass_accuracy",
	"total_crosses",
	"accurate_crosses",
	"cross_accuracy",
	"total_shots",
	"accurate_shots",
	"shot_accuracy",
	"box_entries",
	"clearances",
	// negative
	"goals_conceded",
	"ht_goals_conceded",
	"yellow_cards",
	"second_yellow_reds",
	"red_cards",
	"offsides",
	"inaccurate_shots",
	"blocked_shots",
	"fouls",
}

// Width is the number of columns in a Vector
var Width = len(names)

// ErrEmpty is returned when averaging no rows
var ErrEmpty = errors.New("no feature rows")

// Names returns the column names in vector order
func Names() []string {
	out := make([]string, len(names))
	copy(out, names)
	return out
}

// Result class indices
const (
	ClassLoss = 0
	ClassDraw = 1
	ClassWin  = 2
)

// Labels are the training targets derived from the same records
type Labels struct {
	Result []int     // ClassLoss, ClassDraw or ClassWin
	Goals  []float64 // goals scored
	HTFT   []string  // "<ht>-<ft>", tokens 1 lead, X level, 2 trail
	BTTS   []bool
}

// ratio divides with a zero denominator replaced by 1
func ratio(num, den float64) float64 {
	if den == 0 {
		den = 1
	}
	return num / den
}

func clean(v float64) float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0
	}
	return v
}

// FromRecord builds the feature row for one match
func FromRecord(m *history.MatchRecord) Vector {
	goals := float64(m.FTGoalsFor)
	v := Vector{
		goals,
		float64(m.HTGoalsFor),
		m.XG,
		ratio(goals, m.AccurateShots),
		m.Possession,
		m.DuelsWon,
		m.AerialsWon,
		m.Interceptions,
		m.TotalPasses,
		m.AccuratePasses,
		m.PassAccuracy,
		m.TotalCrosses,
		m.AccurateCrosses,
		ratio(m.AccurateCrosses, m.TotalCrosses),
		m.TotalShots,
		m.AccurateShots,
		ratio(m.AccurateShots, m.TotalShots),
		m.BoxEntries,
		m.Clearances,
		float64(m.FTGoalsAgainst),
		float64(m.HTGoalsAgainst),
		float64(m.YellowCards),
		float64(m.SecondYellowReds),
		float64(m.RedCards),
		m.Offsides,
		m.InaccurateShots,
		m.BlockedShots,
		m.Fouls,
	}
	for i := range v {
		v[i] = clean(v[i])
	}
	return v
}

func halfToken(forGoals, againstGoals int) string {
	switch {
	case forGoals > againstGoals:
		return "1"
	case forGoals == againstGoals:
		return "X"
	default:
		return "2"
	}
}

// HTFTLabel computes the compound half-time/full-time label of a match
func HTFTLabel(m *history.MatchRecord) string {
	return halfToken(m.HTGoalsFor, m.HTGoalsAgainst) + "-" + halfToken(m.FTGoalsFor, m.FTGoalsAgainst)
}

func resultClass(o history.Outcome) int {
	switch o {
	case history.Win:
		return ClassWin
	case history.Draw:
		return ClassDraw
	}
	return ClassLoss
}

// Build returns one row per match plus the labels for training
func Build(matches []*history.MatchRecord) ([]Vector, *Labels) {
	rows := make([]Vector, 0, len(matches))
	labels := &Labels{
		Result: make([]int, 0, len(matches)),
		Goals:  make([]float64, 0, len(matches)),
		HTFT:   make([]string, 0, len(matches)),
		BTTS:   make([]bool, 0, len(matches)),
	}
	for _, m := range matches {
		rows = append(rows, FromRecord(m))
		labels.Result = append(labels.Result, resultClass(m.Outcome))
		labels.Goals = append(labels.Goals, float64(m.FTGoalsFor))
		labels.HTFT = append(labels.HTFT, HTFTLabel(m))
		labels.BTTS = append(labels.BTTS, m.FTGoalsFor > 0 && m.FTGoalsAgainst > 0)
	}
	return rows, labels
}

// Mean averages rows column-wise
func Mean(rows []Vector) (Vector, error) {
	if len(rows) == 0 {
		return nil, ErrEmpty
	}
	out := make(Vector, len(rows[0]))
	for _, r := range rows {
		if len(r) != len(out) {
			return nil, errors.New("feature rows differ in width")
		}
		for i, v := range r {
			out[i] += v
		}
	}
	for i := range out {
		out[i] /= float64(len(rows))
	}
	return out, nil
}
