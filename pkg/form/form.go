// Package form reduces a team's recent match history to the figures used for display
// and comparison.
package form

import (
	"fmt"
	"sort"
	"time"

	"github.com/richard-senior/matchcast/pkg/history"
)

// DefaultWindow is the number of recent matches summarized when no window is given
const DefaultWindow = 5

// MatchSummary is a compact view of one match for display
type MatchSummary struct {
	Date     time.Time       `json:"date"`
	Opponent string          `json:"opponent"`
	Goals    int             `json:"goals"`
	Outcome  history.Outcome `json:"outcome"`
}

// Summary aggregates a team's recent form. Rates are means, XGSum is a total.
type Summary struct {
	Matches         int     `json:"matches"`
	GoalsAvg        float64 `json:"goalsAvg"`
	HTGoalsAvg      float64 `json:"htGoalsAvg"`
	PossessionAvg   float64 `json:"possessionAvg"`
	PassesAvg       float64 `json:"passesAvg"`
	PassAccuracyAvg float64 `json:"passAccuracyAvg"`
	ShotsAvg        float64 `json:"shotsAvg"`
	ShotsOnAvg      float64 `json:"shotsOnAvg"`
	XGSum           float64 `json:"xgSum"`
	BoxEntriesAvg   float64 `json:"boxEntriesAvg"`
	DuelsWonAvg     float64 `json:"duelsWonAvg"`
	AerialsWonAvg   float64 `json:"aerialsWonAvg"`
	InterceptAvg    float64 `json:"interceptionsAvg"`

	Wins   int `json:"wins"`
	Draws  int `json:"draws"`
	Losses int `json:"losses"`
	Points int `json:"points"`

	Recent []MatchSummary `json:"recent"`
}

// Recent returns at most n leading records, the most recent matches
func Recent(matches []*history.MatchRecord, n int) []*history.MatchRecord {
	if n <= 0 {
		n = DefaultWindow
	}
	if len(matches) < n {
		return matches
	}
	return matches[:n]
}

// Summarize aggregates the first n records. Fewer records than n are fine, and an empty
// history yields a zero Summary.
func Summarize(matches []*history.MatchRecord, n int) Summary {
	recent := Recent(matches, n)
	s := Summary{Matches: len(recent), Recent: make([]MatchSummary, 0, len(recent))}
	if len(recent) == 0 {
		return s
	}

	for _, m := range recent {
		s.GoalsAvg += float64(m.FTGoalsFor)
		s.HTGoalsAvg += float64(m.HTGoalsFor)
		s.PossessionAvg += m.Possession
		s.PassesAvg += m.TotalPasses
		s.PassAccuracyAvg += m.PassAccuracy
		s.ShotsAvg += m.TotalShots
		s.ShotsOnAvg += m.AccurateShots
		s.XGSum += m.XG
		s.BoxEntriesAvg += m.BoxEntries
		s.DuelsWonAvg += m.DuelsWon
		s.AerialsWonAvg += m.AerialsWon
		s.InterceptAvg += m.Interceptions

		switch m.Outcome {
		case history.Win:
			s.Wins++
		case history.Draw:
			s.Draws++
		case history.Loss:
			s.Losses++
		}

		s.Recent = append(s.Recent, MatchSummary{
			Date:     m.Date,
			Opponent: m.Opponent,
			Goals:    m.FTGoalsFor,
			Outcome:  m.Outcome,
		})
	}

	count := float64(len(recent))
	s.GoalsAvg /= count
	s.HTGoalsAvg /= count
	s.PossessionAvg /= count
	s.PassesAvg /= count
	s.PassAccuracyAvg /= count
	s.ShotsAvg /= count
	s.ShotsOnAvg /= count
	s.BoxEntriesAvg /= count
	s.DuelsWonAvg /= count
	s.AerialsWonAvg /= count
	s.InterceptAvg /= count

	s.Points = 3*s.Wins + s.Draws
	return s
}

// ShotAccuracy is accurate shots over total shots as a percentage, 0 without shots
func (s Summary) ShotAccuracy() float64 {
	if s.ShotsAvg > 0 {
		return s.ShotsOnAvg / s.ShotsAvg * 100
	}
	return 0
}

// LastMatch is a display row for a team's recent fixtures
type LastMatch struct {
	Date     time.Time       `json:"date"`
	Opponent string          `json:"opponent"`
	IsHome   bool            `json:"isHome"`
	Score    string          `json:"score"`
	Outcome  history.Outcome `json:"outcome"`
}

// LastMatches lists the first n records for display
func LastMatches(matches []*history.MatchRecord, n int) []LastMatch {
	recent := Recent(matches, n)
	out := make([]LastMatch, 0, len(recent))
	for _, m := range recent {
		out = append(out, LastMatch{
			Date:     m.Date,
			Opponent: m.Opponent,
			IsHome:   m.Venue == history.Home,
			Score:    m.Score(),
			Outcome:  history.OutcomeFor(m.FTGoalsFor, m.FTGoalsAgainst),
		})
	}
	return out
}

// Meeting is a past fixture between the two teams, scored from the requested home
// team's side
type Meeting struct {
	Date     time.Time `json:"date"`
	HomeTeam string    `json:"homeTeam"`
	AwayTeam string    `json:"awayTeam"`
	Score    string    `json:"score"`
	Result   string    `json:"result"`
}

const (
	ResultHomeWin = "Home Win"
	ResultDraw    = "Draw"
	ResultAwayWin = "Away Win"
)

// HeadToHead merges the meetings found in both histories. Records from the away team's
// history have their goals flipped. Newest first, at most n.
func HeadToHead(homeName, awayName string, homeHistory, awayHistory []*history.MatchRecord, n int) []Meeting {
	if n <= 0 {
		n = DefaultWindow
	}
	var meetings []Meeting
	add := func(date time.Time, gf, ga int) {
		meetings = append(meetings, Meeting{
			Date:     date,
			HomeTeam: homeName,
			AwayTeam: awayName,
			Score:    fmt.Sprintf("%d-%d", gf, ga),
			Result:   meetingResult(gf, ga),
		})
	}
	for _, m := range homeHistory {
		if m.Opponent == awayName {
			add(m.Date, m.FTGoalsFor, m.FTGoalsAgainst)
		}
	}
	for _, m := range awayHistory {
		if m.Opponent == homeName {
			add(m.Date, m.FTGoalsAgainst, m.FTGoalsFor)
		}
	}

	sort.SliceStable(meetings, func(i, j int) bool {
		return meetings[i].Date.After(meetings[j].Date)
	})
	if len(meetings) > n {
		meetings = meetings[:n]
	}
	return meetings
}

func meetingResult(gf, ga int) string {
	switch history.OutcomeFor(gf, ga) {
	case history.Win:
		return ResultHomeWin
	case history.Draw:
		return ResultDraw
	}
	return ResultAwayWin
}
