package form

import (
	"testing"
	"time"

	"github.com/richard-senior/matchcast/pkg/history"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func match(opponent string, day, gf, ga int) *history.MatchRecord {
	return &history.MatchRecord{
		Team:           "Home FC",
		Opponent:       opponent,
		Date:           time.Date(2024, 4, day, 0, 0, 0, 0, time.UTC),
		FTGoalsFor:     gf,
		FTGoalsAgainst: ga,
		Outcome:        history.OutcomeFor(gf, ga),
	}
}

func TestSummarizeFiveIdenticalWins(t *testing.T) {
	var matches []*history.MatchRecord
	for i := 0; i < 5; i++ {
		m := match("Alpha", 20-i, 3, 0)
		m.XG = 1.5
		m.TotalShots = 10
		m.AccurateShots = 4
		matches = append(matches, m)
	}

	s := Summarize(matches, 5)
	assert.Equal(t, 15, s.Points)
	assert.Equal(t, 5, s.Wins)
	assert.Equal(t, 0, s.Draws)
	assert.Equal(t, 0, s.Losses)
	assert.InDelta(t, 3.0, s.GoalsAvg, 1e-9)
	assert.InDelta(t, 7.5, s.XGSum, 1e-9, "xG is summed")
	assert.InDelta(t, 40.0, s.ShotAccuracy(), 1e-9)
	assert.Len(t, s.Recent, 5)
}

func TestSummarizeUsesOnlyLeadingRecords(t *testing.T) {
	matches := []*history.MatchRecord{
		match("A", 10, 2, 0),
		match("B", 9, 1, 1),
		match("C", 8, 0, 1),
		match("D", 7, 5, 0),
	}
	s := Summarize(matches, 3)
	assert.Equal(t, 3, s.Matches)
	assert.Equal(t, 1, s.Wins)
	assert.Equal(t, 1, s.Draws)
	assert.Equal(t, 1, s.Losses)
	assert.Equal(t, 4, s.Points)
	assert.InDelta(t, 1.0, s.GoalsAvg, 1e-9)
	assert.Equal(t, "A", s.Recent[0].Opponent)

	// a short history and the default window
	short := Summarize(matches[:2], 0)
	assert.Equal(t, 2, short.Wins+short.Draws+short.Losses)
}

func TestSummarizeEmpty(t *testing.T) {
	s := Summarize(nil, 5)
	assert.Equal(t, 0, s.Matches)
	assert.Equal(t, 0, s.Points)
	assert.Equal(t, 0.0, s.ShotAccuracy())
}

func TestLastMatches(t *testing.T) {
	m := match("Alpha", 3, 2, 2)
	m.Venue = history.Home
	last := LastMatches([]*history.MatchRecord{m, match("Beta", 1, 0, 1)}, 1)
	require.Len(t, last, 1)
	assert.True(t, last[0].IsHome)
	assert.Equal(t, "2-2", last[0].Score)
	assert.Equal(t, history.Draw, last[0].Outcome)
}

func TestHeadToHead(t *testing.T) {
	home := []*history.MatchRecord{
		match("Away FC", 12, 2, 1),
		match("Other", 10, 0, 0),
		match("Away FC", 1, 0, 0),
	}
	away := []*history.MatchRecord{
		{Team: "Away FC", Opponent: "Home FC", Date: time.Date(2024, 4, 20, 0, 0, 0, 0, time.UTC),
			FTGoalsFor: 3, FTGoalsAgainst: 1, Outcome: history.Win},
	}

	meetings := HeadToHead("Home FC", "Away FC", home, away, 2)
	require.Len(t, meetings, 2)

	assert.Equal(t, "1-3", meetings[0].Score, "away history is flipped")
	assert.Equal(t, ResultAwayWin, meetings[0].Result)
	assert.Equal(t, "Home FC", meetings[0].HomeTeam)

	assert.Equal(t, "2-1", meetings[1].Score)
	assert.Equal(t, ResultHomeWin, meetings[1].Result)
}
