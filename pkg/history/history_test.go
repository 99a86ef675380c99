package history

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const turkishCSV = "Tarih,Rakip,Ev Sahibi/Deplasman,Sonuç,MS Gol,İY Gol,MS Yenilen Gol,İY Yenilen Gol,Topla Oynama,Pas İsabeti %,Toplam Şut,İsabetli Şut,Gol Beklentisi (xG),Sarı Kart\n" +
	"01.09.2024,Rivals,Ev Sahibi,Galip,2,1,0,0,\"55,4%\",\"87,1\",12,5,\"1,84\",2\n" +
	"15.09.2024,Others,Deplasman,Berabere,1,0,1,1,48%,80,9,3,\"0,9\",1\n" +
	"bad-date,Nobody,Deplasman,Mağlup,0,0,3,1,40,70,5,1,0.2,0\n" +
	"22.08.2024,Thirds,Deplasman,Mağlup,0,0,2,1,44,79,7,2,0.5,3\n"

func TestParseCSVTurkishHeaders(t *testing.T) {
	records, err := ParseCSV("Home FC", strings.NewReader(turkishCSV))
	require.NoError(t, err)
	require.Len(t, records, 3, "the row with a bad date is skipped")

	// newest first
	assert.Equal(t, "Others", records[0].Opponent)
	assert.Equal(t, "Rivals", records[1].Opponent)
	assert.Equal(t, "Thirds", records[2].Opponent)

	r := records[1]
	assert.Equal(t, "Home FC", r.Team)
	assert.Equal(t, time.Date(2024, 9, 1, 0, 0, 0, 0, time.UTC), r.Date)
	assert.Equal(t, Home, r.Venue)
	assert.Equal(t, Win, r.Outcome)
	assert.Equal(t, 2, r.FTGoalsFor)
	assert.Equal(t, 1, r.HTGoalsFor)
	assert.InDelta(t, 55.4, r.Possession, 1e-9)
	assert.InDelta(t, 87.1, r.PassAccuracy, 1e-9)
	assert.InDelta(t, 1.84, r.XG, 1e-9)
	assert.Equal(t, 2, r.YellowCards)
	assert.Equal(t, "2-0", r.Score())
	assert.Equal(t, Draw, records[0].Outcome)
	assert.Equal(t, Away, records[0].Venue)
}

func TestParseCSVEnglishHeadersDeriveOutcome(t *testing.T) {
	csvData := "date,opponent,goals,goals conceded,total shots,accurate shots\n" +
		"2024-03-02,Alpha,3,1,10,6\n" +
		"2024-03-09,Beta,0,0,0,0\n"
	records, err := ParseCSV("Gamma", strings.NewReader(csvData))
	require.NoError(t, err)
	require.Len(t, records, 2)
	assert.Equal(t, Draw, records[0].Outcome)
	assert.Equal(t, Win, records[1].Outcome)
}

func TestParseCSVSkipsInconsistentOutcome(t *testing.T) {
	csvData := "date,opponent,result,goals,goals conceded\n" +
		"2024-03-02,Alpha,Win,0,1\n" +
		"2024-03-09,Beta,Loss,0,1\n"
	records, err := ParseCSV("Gamma", strings.NewReader(csvData))
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, "Beta", records[0].Opponent)
}

func TestParseCSVErrors(t *testing.T) {
	_, err := ParseCSV("x", strings.NewReader("foo,bar\n1,2\n"))
	assert.Error(t, err)

	_, err = ParseCSV("x", strings.NewReader("date,opponent\n"))
	assert.True(t, errors.Is(err, ErrNoRows))
}

func TestParseHTMLTable(t *testing.T) {
	page := `<html><body>
<table><tr><td>navigation</td></tr></table>
<table>
  <thead><tr><th>Date</th><th>Opponent</th><th>Goals</th><th>Goals Conceded</th><th>xG</th></tr></thead>
  <tbody>
    <tr><td>05.10.2024</td><td>Alpha</td><td>1</td><td>1</td><td>1,2</td></tr>
    <tr><td>12.10.2024</td><td>Beta</td><td>4</td><td>0</td><td>2.5</td></tr>
  </tbody>
</table></body></html>`
	records, err := ParseHTMLTable("Gamma", strings.NewReader(page))
	require.NoError(t, err)
	require.Len(t, records, 2)
	assert.Equal(t, "Beta", records[0].Opponent)
	assert.Equal(t, Win, records[0].Outcome)
	assert.InDelta(t, 1.2, records[1].XG, 1e-9)
}

func TestValidate(t *testing.T) {
	m := &MatchRecord{Team: "A", Opponent: "B", FTGoalsFor: 1, FTGoalsAgainst: 0, Outcome: Win}
	require.NoError(t, m.Validate())
	assert.Equal(t, 3, m.Points())

	m.Outcome = Draw
	assert.Error(t, m.Validate())

	m.Outcome = Win
	m.HTGoalsAgainst = -1
	assert.Error(t, m.Validate())
}

func TestDirSource(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "Home FC.csv"), []byte(turkishCSV), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "Away FC.csv"),
		[]byte("date,opponent,goals,goals conceded\n2024-01-01,Home FC,1,2\n"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("ignored"), 0o644))

	src := NewDirSource(dir)
	teams, err := src.Teams()
	require.NoError(t, err)
	assert.Equal(t, []string{"Away FC", "Home FC"}, teams)

	records, err := src.TeamHistory("Away FC")
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, Loss, records[0].Outcome)

	_, err = src.TeamHistory("Missing FC")
	assert.True(t, errors.Is(err, ErrUnknownTeam))

	all, err := All(src)
	require.NoError(t, err)
	assert.Len(t, all, 4)
}
