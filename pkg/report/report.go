// Package report assembles everything shown for one fixture and renders it as plain text,
// an HTML fragment or markdown.
package report

import (
	"fmt"
	"time"

	"github.com/richard-senior/matchcast/pkg/compare"
	"github.com/richard-senior/matchcast/pkg/ensemble"
	"github.com/richard-senior/matchcast/pkg/form"
	"github.com/richard-senior/matchcast/pkg/history"
)

// Report is the full picture of one fixture
type Report struct {
	Home        string              `json:"home"`
	Away        string              `json:"away"`
	GeneratedAt time.Time           `json:"generatedAt"`
	Prediction  ensemble.Prediction `json:"prediction"`
	HomeForm    form.Summary        `json:"homeForm"`
	AwayForm    form.Summary        `json:"awayForm"`
	HomeLast    []form.LastMatch    `json:"homeLastMatches"`
	AwayLast    []form.LastMatch    `json:"awayLastMatches"`
	HeadToHead  []form.Meeting      `json:"headToHead"`
	Comparison  compare.Report      `json:"comparison"`
}

// Options sets the windows used for form and head-to-head
type Options struct {
	Window     int
	HeadToHead int
}

// Build predicts the fixture and gathers both teams' form from src
func Build(blender *ensemble.Blender, src history.Source, home, away string, opts Options) (*Report, error) {
	if home == away {
		return nil, fmt.Errorf("a team cannot play itself: %s", home)
	}
	homeHistory, err := src.TeamHistory(home)
	if err != nil {
		return nil, fmt.Errorf("history of %s: %w", home, err)
	}
	awayHistory, err := src.TeamHistory(away)
	if err != nil {
		return nil, fmt.Errorf("history of %s: %w", away, err)
	}

	r := &Report{
		Home:        home,
		Away:        away,
		GeneratedAt: time.Now(),
		Prediction:  blender.PredictAll(home, away),
		HomeForm:    form.Summarize(homeHistory, opts.Window),
		AwayForm:    form.Summarize(awayHistory, opts.Window),
		HomeLast:    form.LastMatches(homeHistory, opts.Window),
		AwayLast:    form.LastMatches(awayHistory, opts.Window),
		HeadToHead:  form.HeadToHead(home, away, homeHistory, awayHistory, opts.HeadToHead),
	}
	r.Comparison = compare.Teams(r.HomeForm, r.AwayForm, home, away)
	return r, nil
}

// Percent formats a probability as a percentage with one decimal
func Percent(p float64) string {
	return fmt.Sprintf("%.1f%%", p*100)
}
