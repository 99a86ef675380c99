package report

import (
	"bufio"
	"fmt"
	"io"
	"strings"

	"github.com/richard-senior/matchcast/pkg/form"
	"github.com/richard-senior/matchcast/pkg/history"
)

const separator = "--------------------------------------------------"

// WriteText writes the sectioned plain text report
func WriteText(w io.Writer, r *Report) error {
	bw := bufio.NewWriter(w)
	p := func(format string, args ...any) {
		fmt.Fprintf(bw, format+"\n", args...)
	}
	home, away := r.Home, r.Away
	hf, af := r.HomeForm, r.AwayForm
	pred := r.Prediction

	p("%s vs %s match predictions", home, away)
	p("Generated: %s", r.GeneratedAt.Format("02.01.2006 15:04:05"))
	p(separator)

	p("Win probabilities:")
	p("%s: %s", home, Percent(pred.Result.HomeWin))
	p("Draw: %s", Percent(pred.Result.Draw))
	p("%s: %s", away, Percent(pred.Result.AwayWin))
	p("")
	p("Predicted score: %s (%s)", pred.Score, Percent(pred.Score.Confidence))
	p("HT/FT: %s (%s)", pred.HTFT.Label, Percent(pred.HTFT.Confidence))
	p("Both teams to score: %s (%s)", pred.BTTS.Label, Percent(pred.BTTS.Confidence))
	p("")
	p("Highest probability pick: %s (%s)", pred.Pick.Label, Percent(pred.Pick.Value))

	p("")
	p(separator)
	p("Basic statistics:")
	p("Full time goals avg: %s: %.1f - %s: %.1f", home, hf.GoalsAvg, away, af.GoalsAvg)
	p("First half goals avg: %s: %.1f - %s: %.1f", home, hf.HTGoalsAvg, away, af.HTGoalsAvg)

	p("")
	p("Possession and passing:")
	p("Possession: %s: %.1f%% - %s: %.1f%%", home, hf.PossessionAvg, away, af.PossessionAvg)
	p("Total passes: %s: %.1f - %s: %.1f", home, hf.PassesAvg, away, af.PassesAvg)
	p("Pass accuracy: %s: %.1f%% - %s: %.1f%%", home, hf.PassAccuracyAvg, away, af.PassAccuracyAvg)

	p("")
	p("Attack:")
	p("Total shots: %s: %.1f - %s: %.1f", home, hf.ShotsAvg, away, af.ShotsAvg)
	p("Shots on target: %s: %.1f - %s: %.1f", home, hf.ShotsOnAvg, away, af.ShotsOnAvg)
	p("Expected goals: %s: %.2f - %s: %.2f", home, hf.XGSum, away, af.XGSum)
	p("Box entries: %s: %.1f - %s: %.1f", home, hf.BoxEntriesAvg, away, af.BoxEntriesAvg)

	p("")
	p("Defence and duels:")
	p("Duels won: %s: %.1f - %s: %.1f", home, hf.DuelsWonAvg, away, af.DuelsWonAvg)
	p("Aerials won: %s: %.1f - %s: %.1f", home, hf.AerialsWonAvg, away, af.AerialsWonAvg)
	p("Interceptions: %s: %.1f - %s: %.1f", home, hf.InterceptAvg, away, af.InterceptAvg)

	p("")
	p("Last %d matches:", hf.Matches)
	p("%s: %d wins, %d draws, %d losses", home, hf.Wins, hf.Draws, hf.Losses)
	p("%s: %d wins, %d draws, %d losses", away, af.Wins, af.Draws, af.Losses)

	p(separator)
	p("Reasons:")
	p("")
	for _, side := range []struct {
		team string
		s    form.Summary
	}{{away, af}, {home, hf}} {
		p("%s:", side.team)
		p("- Wins: %d", side.s.Wins)
		p("- Draws: %d", side.s.Draws)
		p("- Losses: %d", side.s.Losses)
		p("- Points: %d (%d + %d)", side.s.Points, side.s.Wins*3, side.s.Draws)
		p("")
		p("Recent matches:")
		for _, m := range side.s.Recent {
			p("[%s] %s vs %s: %d goals (%s) %s", m.Date.Format("02.01.2006"), side.team, m.Opponent, m.Goals, m.Outcome, marker(m.Outcome))
		}
		p("")
	}

	if len(r.HeadToHead) > 0 {
		p("Head to head:")
		for _, m := range r.HeadToHead {
			p("[%s] %s %s %s (%s)", m.Date.Format("02.01.2006"), m.HomeTeam, m.Score, m.AwayTeam, m.Result)
		}
		p("")
	}

	p("Form assessment:")
	writeAdvantages(p, "Home advantages:", r.Comparison.HomeAdvantages)
	writeAdvantages(p, "Away advantages:", r.Comparison.AwayAdvantages)
	p("")
	p("Overall assessment:")
	p("- %s", r.Comparison.Conclusion)

	return bw.Flush()
}

func writeAdvantages(p func(string, ...any), title string, items []string) {
	p("")
	p(title)
	if len(items) == 0 {
		p("- No clear advantage found")
		return
	}
	for _, a := range items {
		p("- %s", a)
	}
}

func marker(o history.Outcome) string {
	switch o {
	case history.Win:
		return "[W]"
	case history.Draw:
		return "[D]"
	}
	return "[L]"
}

// Text renders the report to a string
func Text(r *Report) (string, error) {
	var sb strings.Builder
	if err := WriteText(&sb, r); err != nil {
		return "", err
	}
	return sb.String(), nil
}
