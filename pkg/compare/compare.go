// Package compare contrasts two teams' recent form and narrates which side holds the edge.
package compare

import (
	"fmt"

	"github.com/richard-senior/matchcast/pkg/form"
)

// Report lists the areas where each side is stronger plus an overall verdict
type Report struct {
	HomeAdvantages []string `json:"homeAdvantages"`
	AwayAdvantages []string `json:"awayAdvantages"`
	Conclusion     string   `json:"conclusion"`
}

// axis is a statistic where the larger value is better. A tie credits the away side.
type axis struct {
	value    func(form.Summary) float64
	describe func(team string, s form.Summary, v float64) string
}

var axes = []axis{
	{
		value: func(s form.Summary) float64 { return float64(s.Points) },
		describe: func(team string, s form.Summary, _ float64) string {
			return fmt.Sprintf("%s collected %d points in the last %d matches (better form)", team, s.Points, s.Matches)
		},
	},
	{
		value: func(s form.Summary) float64 { return s.GoalsAvg },
		describe: func(team string, _ form.Summary, v float64) string {
			return fmt.Sprintf("%s scores more goals (%.1f per match)", team, v)
		},
	},
	{
		value: func(s form.Summary) float64 { return s.HTGoalsAvg },
		describe: func(team string, _ form.Summary, v float64) string {
			return fmt.Sprintf("%s is more dangerous in the first half (%.1f goals per match)", team, v)
		},
	},
	{
		value: func(s form.Summary) float64 { return s.PossessionAvg },
		describe: func(team string, _ form.Summary, v float64) string {
			return fmt.Sprintf("%s keeps more of the ball (%.1f%%)", team, v)
		},
	},
	{
		value: func(s form.Summary) float64 { return s.PassAccuracyAvg },
		describe: func(team string, _ form.Summary, v float64) string {
			return fmt.Sprintf("%s passes more accurately (%.1f%%)", team, v)
		},
	},
	{
		value: func(s form.Summary) float64 { return s.ShotAccuracy() },
		describe: func(team string, _ form.Summary, v float64) string {
			return fmt.Sprintf("%s shoots more accurately (%.1f%%)", team, v)
		},
	},
	{
		value: func(s form.Summary) float64 { return s.XGSum },
		describe: func(team string, _ form.Summary, v float64) string {
			return fmt.Sprintf("%s creates higher expected goals (%.2f)", team, v)
		},
	},
	{
		value: func(s form.Summary) float64 { return s.BoxEntriesAvg },
		describe: func(team string, _ form.Summary, v float64) string {
			return fmt.Sprintf("%s gets into the box more often (%.1f times)", team, v)
		},
	},
	{
		value: func(s form.Summary) float64 { return s.DuelsWonAvg },
		describe: func(team string, _ form.Summary, v float64) string {
			return fmt.Sprintf("%s wins more duels (%.1f)", team, v)
		},
	},
	{
		value: func(s form.Summary) float64 { return s.AerialsWonAvg },
		describe: func(team string, _ form.Summary, v float64) string {
			return fmt.Sprintf("%s is stronger in the air (%.1f)", team, v)
		},
	},
	{
		value: func(s form.Summary) float64 { return s.InterceptAvg },
		describe: func(team string, _ form.Summary, v float64) string {
			return fmt.Sprintf("%s makes more interceptions (%.1f)", team, v)
		},
	},
}

// Teams compares home and away summaries axis by axis
func Teams(home, away form.Summary, homeName, awayName string) Report {
	r := Report{HomeAdvantages: []string{}, AwayAdvantages: []string{}}

	for _, a := range axes {
		hv, av := a.value(home), a.value(away)
		if hv > av {
			r.HomeAdvantages = append(r.HomeAdvantages, a.describe(homeName, home, hv))
		} else {
			r.AwayAdvantages = append(r.AwayAdvantages, a.describe(awayName, away, av))
		}
	}

	// record axes skip ties
	switch {
	case home.Wins > away.Wins:
		r.HomeAdvantages = append(r.HomeAdvantages, moreWins(homeName, home))
	case away.Wins > home.Wins:
		r.AwayAdvantages = append(r.AwayAdvantages, moreWins(awayName, away))
	}
	switch {
	case home.Losses < away.Losses:
		r.HomeAdvantages = append(r.HomeAdvantages, fewerLosses(homeName, home))
	case away.Losses < home.Losses:
		r.AwayAdvantages = append(r.AwayAdvantages, fewerLosses(awayName, away))
	}

	r.Conclusion = conclude(len(r.HomeAdvantages), len(r.AwayAdvantages), homeName, awayName)
	return r
}

func moreWins(team string, s form.Summary) string {
	return fmt.Sprintf("%s won more of the last %d matches (%d wins)", team, s.Matches, s.Wins)
}

func fewerLosses(team string, s form.Summary) string {
	return fmt.Sprintf("%s lost fewer of the last %d matches (%d losses)", team, s.Matches, s.Losses)
}

func conclude(homeCount, awayCount int, homeName, awayName string) string {
	switch {
	case homeCount > awayCount:
		return fmt.Sprintf("%s performs better in %d areas. With home advantage, %s is the favourite.", homeName, homeCount, homeName)
	case awayCount > homeCount:
		return fmt.Sprintf("%s performs better in %d areas. Despite home advantage, %s holds the edge.", awayName, awayCount, awayName)
	}
	return "Both teams show similar performance. Home advantage may be decisive."
}
