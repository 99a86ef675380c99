package report

import (
	"bytes"
	"io"
	"strings"
	"testing"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/richard-senior/matchcast/internal/logger"
	"github.com/richard-senior/matchcast/pkg/ensemble"
	"github.com/richard-senior/matchcast/pkg/history"
	"github.com/richard-senior/matchcast/pkg/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeSource map[string][]*history.MatchRecord

func (f fakeSource) TeamHistory(team string) ([]*history.MatchRecord, error) {
	if r, ok := f[team]; ok {
		return r, nil
	}
	return nil, history.ErrUnknownTeam
}

func (f fakeSource) Teams() ([]string, error) {
	return []string{"Rovers", "United"}, nil
}

func rec(team, opp string, day, gf, ga int, venue history.Venue) *history.MatchRecord {
	return &history.MatchRecord{
		Team:           team,
		Opponent:       opp,
		Date:           time.Date(2024, 3, day, 0, 0, 0, 0, time.UTC),
		Venue:          venue,
		FTGoalsFor:     gf,
		FTGoalsAgainst: ga,
		TotalShots:     10,
		AccurateShots:  4,
		Possession:     50,
		Outcome:        history.OutcomeFor(gf, ga),
	}
}

func testSource() fakeSource {
	return fakeSource{
		"Rovers": {
			rec("Rovers", "United", 20, 2, 1, history.Home),
			rec("Rovers", "City", 13, 2, 0, history.Away),
			rec("Rovers", "Town", 6, 2, 2, history.Home),
		},
		"United": {
			rec("United", "Town", 22, 1, 0, history.Away),
			rec("United", "Rovers", 20, 1, 2, history.Away),
			rec("United", "City", 10, 1, 1, history.Home),
		},
	}
}

func buildReport(t *testing.T) *Report {
	t.Helper()
	logger.SetWriter(io.Discard)
	src := testSource()
	r, err := Build(ensemble.New(&model.Bundle{}, src), src, "Rovers", "United", Options{Window: 5, HeadToHead: 5})
	require.NoError(t, err)
	return r
}

func TestBuild(t *testing.T) {
	r := buildReport(t)
	assert.Equal(t, ensemble.FallbackResult, r.Prediction.Result)
	assert.Equal(t, 3, r.HomeForm.Matches)
	assert.InDelta(t, 2.0, r.HomeForm.GoalsAvg, 1e-9)
	assert.InDelta(t, 1.0, r.AwayForm.GoalsAvg, 1e-9)
	require.Len(t, r.HeadToHead, 2)
	assert.Equal(t, "2-1", r.HeadToHead[0].Score)
	assert.Contains(t, r.Comparison.HomeAdvantages, "Rovers scores more goals (2.0 per match)")
	assert.Len(t, r.HomeLast, 3)
	assert.True(t, r.HomeLast[0].IsHome)
}

func TestBuildErrors(t *testing.T) {
	logger.SetWriter(io.Discard)
	src := testSource()
	b := ensemble.New(&model.Bundle{}, src)
	_, err := Build(b, src, "Rovers", "Rovers", Options{})
	assert.Error(t, err)
	_, err = Build(b, src, "Rovers", "Nobody", Options{})
	assert.ErrorIs(t, err, history.ErrUnknownTeam)
}

func TestWriteText(t *testing.T) {
	r := buildReport(t)
	var buf bytes.Buffer
	require.NoError(t, WriteText(&buf, r))
	out := buf.String()

	assert.Contains(t, out, "Rovers vs United match predictions")
	assert.Contains(t, out, "Rovers: 33.0%")
	assert.Contains(t, out, "Draw: 34.0%")
	assert.Contains(t, out, "Predicted score: 1-1 (33.0%)")
	assert.Contains(t, out, "HT/FT: X-X (33.0%)")
	assert.Contains(t, out, "Both teams to score: NO (33.0%)")
	assert.Contains(t, out, "Highest probability pick: Draw (34.0%)")
	assert.Contains(t, out, "[20.03.2024] Rovers vs United: 2 goals (Win) [W]")
	assert.Contains(t, out, "Overall assessment:")
	assert.Contains(t, out, r.Comparison.Conclusion)

	// away team is listed first in the reasons section
	assert.Less(t, strings.Index(out, "United:\n- Wins"), strings.Index(out, "Rovers:\n- Wins"))
}

func TestRenderHTML(t *testing.T) {
	r := buildReport(t)
	var buf bytes.Buffer
	require.NoError(t, RenderHTML(&buf, r))

	doc, err := goquery.NewDocumentFromReader(&buf)
	require.NoError(t, err)
	assert.Equal(t, "33.0%", doc.Find("#result tr").Eq(1).Find("td").First().Text())
	assert.Equal(t, 3, doc.Find("#home-last tr").Length()-1)
	assert.Equal(t, 2, doc.Find("#head-to-head tr").Length()-1)
	assert.Equal(t, r.Comparison.Conclusion, doc.Find("#conclusion").Text())
}

func TestRenderHTMLEscapesNames(t *testing.T) {
	r := buildReport(t)
	r.Home = "<script>x</script>"
	var buf bytes.Buffer
	require.NoError(t, RenderHTML(&buf, r))
	assert.NotContains(t, buf.String(), "<script>")
}

func TestMarkdown(t *testing.T) {
	md, err := Markdown(buildReport(t))
	require.NoError(t, err)
	assert.Contains(t, md, "Rovers vs United")
	assert.Contains(t, md, "Predicted score: **1-1** (33.0%)")
	assert.NotContains(t, md, "<li>")
}

type scriptedReader struct {
	lines   []string
	prompts []string
}

func (s *scriptedReader) Readline() (string, error) {
	if len(s.lines) == 0 {
		return "", io.EOF
	}
	l := s.lines[0]
	s.lines = s.lines[1:]
	return l, nil
}

func (s *scriptedReader) SetPrompt(p string) { s.prompts = append(s.prompts, p) }
func (s *scriptedReader) Close() error       { return nil }

func TestPickerRepromptsAndRejectsSameTeam(t *testing.T) {
	var out bytes.Buffer
	rl := &scriptedReader{lines: []string{"abc", "9", "2", "2", "2", "1"}}
	p := &Picker{teams: []string{"Rovers", "United", "City"}, rl: rl, out: &out}

	home, away, err := p.Choose()
	require.NoError(t, err)
	assert.Equal(t, "United", home)
	assert.Equal(t, "Rovers", away)
	assert.Contains(t, out.String(), "1. Rovers")
	assert.Equal(t, 2, strings.Count(out.String(), "Please enter a number between 1 and 3."))
	assert.Contains(t, out.String(), "A team cannot play itself")
}

func TestPickerAborted(t *testing.T) {
	p := &Picker{teams: []string{"Rovers", "United"}, rl: &scriptedReader{lines: []string{"1"}}, out: io.Discard}
	_, _, err := p.Choose()
	assert.ErrorIs(t, err, ErrAborted)

	p = &Picker{teams: []string{"Rovers"}, rl: &scriptedReader{}, out: io.Discard}
	_, _, err = p.Choose()
	assert.Error(t, err)
}
