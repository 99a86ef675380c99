package store

import (
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/richard-senior/matchcast/pkg/history"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openMemory(t *testing.T) *Store {
	t.Helper()
	s, err := Open("sqlite", ":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func record(team, opponent string, day int, gf, ga int) *history.MatchRecord {
	return &history.MatchRecord{
		Team:           team,
		Opponent:       opponent,
		Date:           time.Date(2024, 5, day, 0, 0, 0, 0, time.UTC),
		Venue:          history.Home,
		FTGoalsFor:     gf,
		FTGoalsAgainst: ga,
		Outcome:        history.OutcomeFor(gf, ga),
		Possession:     52.5,
		XG:             1.25,
	}
}

func TestGenerateCreateTableSQL(t *testing.T) {
	sql := generateCreateTableSQL(&history.MatchRecord{}, "match_records")
	assert.True(t, strings.HasPrefix(sql, "CREATE TABLE IF NOT EXISTS match_records (id TEXT, team TEXT NOT NULL"))
	assert.Contains(t, sql, "PRIMARY KEY (id)")

	idx := generateIndexSQL(&history.MatchRecord{}, "match_records")
	assert.Contains(t, idx, "CREATE INDEX IF NOT EXISTS idx_match_records_team ON match_records(team)")
}

func TestRebind(t *testing.T) {
	pg := &Store{driver: "postgres"}
	assert.Equal(t, "a = $1 AND b = $2", pg.rebind("a = ? AND b = ?"))
	lite := &Store{driver: "sqlite"}
	assert.Equal(t, "a = ?", lite.rebind("a = ?"))
}

func TestBuildWhereClauseIsSorted(t *testing.T) {
	clause, values := buildWhereClause(map[string]interface{}{"b": 2, "a": 1})
	assert.Equal(t, "a = ? AND b = ?", clause)
	assert.Equal(t, []interface{}{1, 2}, values)
}

func TestSaveAndTeamHistory(t *testing.T) {
	s := openMemory(t)

	older := record("Home FC", "Alpha", 1, 2, 0)
	newer := record("Home FC", "Beta", 8, 1, 1)
	other := record("Away FC", "Home FC", 3, 0, 1)
	require.NoError(t, s.BulkSave([]Persistable{older, newer, other}))

	got, err := s.TeamHistory("Home FC")
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "Beta", got[0].Opponent)
	assert.Equal(t, history.Draw, got[0].Outcome)
	assert.Equal(t, history.Home, got[0].Venue)
	assert.InDelta(t, 52.5, got[0].Possession, 1e-9)
	assert.True(t, got[1].Date.Equal(older.Date))

	// saving again updates rather than duplicating
	newer.XG = 3.5
	require.NoError(t, s.Save(newer))
	got, err = s.TeamHistory("Home FC")
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.InDelta(t, 3.5, got[0].XG, 1e-9)

	teams, err := s.Teams()
	require.NoError(t, err)
	assert.Equal(t, []string{"Away FC", "Home FC"}, teams)

	_, err = s.TeamHistory("Nobody")
	assert.True(t, errors.Is(err, history.ErrUnknownTeam))
}

func TestSaveRejectsInvalidRecord(t *testing.T) {
	s := openMemory(t)
	bad := record("Home FC", "Alpha", 1, 2, 0)
	bad.Outcome = history.Loss
	assert.Error(t, s.Save(bad))

	exists, err := s.Exists(bad)
	require.NoError(t, err)
	assert.False(t, exists)
}

func TestDeleteAndFindByPrimaryKey(t *testing.T) {
	s := openMemory(t)
	r := record("Home FC", "Alpha", 1, 2, 0)
	require.NoError(t, s.Save(r))

	var loaded history.MatchRecord
	require.NoError(t, s.FindByPrimaryKey(&loaded, r.GetPrimaryKey()))
	assert.Equal(t, "Alpha", loaded.Opponent)

	require.NoError(t, s.Delete(r))
	err := s.FindByPrimaryKey(&loaded, r.GetPrimaryKey())
	assert.True(t, errors.Is(err, ErrNotFound))
}

func TestPredictionLog(t *testing.T) {
	s := openMemory(t)

	first := NewPredictionLog("Home FC", "Away FC")
	first.CreatedAt = time.Now().UTC().Add(-time.Minute)
	first.HomeWin, first.Draw, first.AwayWin = 0.5, 0.3, 0.2
	first.Pick = "Home Win"
	require.NoError(t, s.RecordPrediction(first))

	second := NewPredictionLog("Away FC", "Home FC")
	require.NoError(t, s.RecordPrediction(second))

	logs, err := s.RecentPredictions(10)
	require.NoError(t, err)
	require.Len(t, logs, 2)
	assert.Equal(t, second.ID, logs[0].ID)
	assert.Equal(t, "Home Win", logs[1].Pick)

	assert.Error(t, s.RecordPrediction(&PredictionLog{ID: "not-a-uuid", HomeTeam: "a", AwayTeam: "b"}))
}

func TestImportFromDirSource(t *testing.T) {
	s := openMemory(t)
	src := fakeSource{
		"Home FC": {record("Home FC", "Alpha", 2, 1, 0)},
		"Away FC": {record("Away FC", "Beta", 4, 0, 0), record("Away FC", "Gamma", 1, 0, 3)},
	}
	n, err := s.Import(src)
	require.NoError(t, err)
	assert.Equal(t, 3, n)

	got, err := s.TeamHistory("Away FC")
	require.NoError(t, err)
	assert.Len(t, got, 2)
}

func TestOpenRejectsUnknownDriver(t *testing.T) {
	_, err := Open("mysql", "x")
	assert.Error(t, err)
}

type fakeSource map[string][]*history.MatchRecord

func (f fakeSource) TeamHistory(team string) ([]*history.MatchRecord, error) {
	r, ok := f[team]
	if !ok {
		return nil, history.ErrUnknownTeam
	}
	return r, nil
}

func (f fakeSource) Teams() ([]string, error) {
	var out []string
	for k := range f {
		out = append(out, k)
	}
	return out, nil
}
