package report

import (
	"bytes"
	"fmt"
	"html/template"
	"io"
	"time"

	htmltomarkdown "github.com/JohannesKaufmann/html-to-markdown/v2"
)

var funcs = template.FuncMap{
	"pct":  Percent,
	"f1":   func(v float64) string { return fmt.Sprintf("%.1f", v) },
	"f2":   func(v float64) string { return fmt.Sprintf("%.2f", v) },
	"date": func(t time.Time) string { return t.Format("02.01.2006") },
}

// fragmentTemplate is shared by the web page and the markdown export
const fragmentTemplate = `<section class="predictions">
<h2>{{.Home}} vs {{.Away}}</h2>
<table id="result">
<tr><th>{{.Home}} win</th><th>Draw</th><th>{{.Away}} win</th></tr>
<tr><td>{{pct .Prediction.Result.HomeWin}}</td><td>{{pct .Prediction.Result.Draw}}</td><td>{{pct .Prediction.Result.AwayWin}}</td></tr>
</table>
<ul id="markets">
<li>Predicted score: <strong>{{.Prediction.Score}}</strong> ({{pct .Prediction.Score.Confidence}})</li>
<li>HT/FT: <strong>{{.Prediction.HTFT.Label}}</strong> ({{pct .Prediction.HTFT.Confidence}})</li>
<li>Both teams to score: <strong>{{.Prediction.BTTS.Label}}</strong> ({{pct .Prediction.BTTS.Confidence}})</li>
<li>Highest probability pick: <strong>{{.Prediction.Pick.Label}}</strong> ({{pct .Prediction.Pick.Value}})</li>
</ul>
</section>
<section class="stats">
<h3>Last {{.HomeForm.Matches}} matches</h3>
<table id="stats">
<tr><th>Statistic</th><th>{{.Home}}</th><th>{{.Away}}</th></tr>
<tr><td>Goals per match</td><td>{{f1 .HomeForm.GoalsAvg}}</td><td>{{f1 .AwayForm.GoalsAvg}}</td></tr>
<tr><td>First half goals</td><td>{{f1 .HomeForm.HTGoalsAvg}}</td><td>{{f1 .AwayForm.HTGoalsAvg}}</td></tr>
<tr><td>Possession %</td><td>{{f1 .HomeForm.PossessionAvg}}</td><td>{{f1 .AwayForm.PossessionAvg}}</td></tr>
<tr><td>Passes</td><td>{{f1 .HomeForm.PassesAvg}}</td><td>{{f1 .AwayForm.PassesAvg}}</td></tr>
<tr><td>Pass accuracy %</td><td>{{f1 .HomeForm.PassAccuracyAvg}}</td><td>{{f1 .AwayForm.PassAccuracyAvg}}</td></tr>
<tr><td>Shots</td><td>{{f1 .HomeForm.ShotsAvg}}</td><td>{{f1 .AwayForm.ShotsAvg}}</td></tr>
<tr><td>Shots on target</td><td>{{f1 .HomeForm.ShotsOnAvg}}</td><td>{{f1 .AwayForm.ShotsOnAvg}}</td></tr>
<tr><td>Expected goals</td><td>{{f2 .HomeForm.XGSum}}</td><td>{{f2 .AwayForm.XGSum}}</td></tr>
<tr><td>Box entries</td><td>{{f1 .HomeForm.BoxEntriesAvg}}</td><td>{{f1 .AwayForm.BoxEntriesAvg}}</td></tr>
<tr><td>Duels won</td><td>{{f1 .HomeForm.DuelsWonAvg}}</td><td>{{f1 .AwayForm.DuelsWonAvg}}</td></tr>
<tr><td>Aerials won</td><td>{{f1 .HomeForm.AerialsWonAvg}}</td><td>{{f1 .AwayForm.AerialsWonAvg}}</td></tr>
<tr><td>Interceptions</td><td>{{f1 .HomeForm.InterceptAvg}}</td><td>{{f1 .AwayForm.InterceptAvg}}</td></tr>
<tr><td>Record (W-D-L)</td><td>{{.HomeForm.Wins}}-{{.HomeForm.Draws}}-{{.HomeForm.Losses}}</td><td>{{.AwayForm.Wins}}-{{.AwayForm.Draws}}-{{.AwayForm.Losses}}</td></tr>
<tr><td>Points</td><td>{{.HomeForm.Points}}</td><td>{{.AwayForm.Points}}</td></tr>
</table>
</section>
<section class="analysis">
<h3>Analysis</h3>
<h4>{{.Home}} advantages</h4>
<ul id="home-advantages">{{range .Comparison.HomeAdvantages}}<li>{{.}}</li>{{else}}<li>No clear advantage found</li>{{end}}</ul>
<h4>{{.Away}} advantages</h4>
<ul id="away-advantages">{{range .Comparison.AwayAdvantages}}<li>{{.}}</li>{{else}}<li>No clear advantage found</li>{{end}}</ul>
<p id="conclusion">{{.Comparison.Conclusion}}</p>
</section>
<section class="matches">
<h3>{{.Home}} last matches</h3>
<table class="last-matches" id="home-last">
<tr><th>Date</th><th>Opponent</th><th>Venue</th><th>Score</th><th>Result</th></tr>
{{range .HomeLast}}<tr><td>{{date .Date}}</td><td>{{.Opponent}}</td><td>{{if .IsHome}}H{{else}}A{{end}}</td><td>{{.Score}}</td><td>{{.Outcome}}</td></tr>
{{end}}</table>
<h3>{{.Away}} last matches</h3>
<table class="last-matches" id="away-last">
<tr><th>Date</th><th>Opponent</th><th>Venue</th><th>Score</th><th>Result</th></tr>
{{range .AwayLast}}<tr><td>{{date .Date}}</td><td>{{.Opponent}}</td><td>{{if .IsHome}}H{{else}}A{{end}}</td><td>{{.Score}}</td><td>{{.Outcome}}</td></tr>
{{end}}</table>
<h3>Head to head</h3>
{{if .HeadToHead}}<table id="head-to-head">
<tr><th>Date</th><th>Home</th><th>Score</th><th>Away</th><th>Result</th></tr>
{{range .HeadToHead}}<tr><td>{{date .Date}}</td><td>{{.HomeTeam}}</td><td>{{.Score}}</td><td>{{.AwayTeam}}</td><td>{{.Result}}</td></tr>
{{end}}</table>{{else}}<p id="head-to-head">No previous meetings found</p>{{end}}
</section>
`

// fragment is the parsed report fragment
var fragment = template.Must(template.New("report").Funcs(funcs).Parse(fragmentTemplate))

// RenderHTML writes the report as an HTML fragment
func RenderHTML(w io.Writer, r *Report) error {
	if err := fragment.Execute(w, r); err != nil {
		return fmt.Errorf("render report: %w", err)
	}
	return nil
}

// Markdown converts the HTML fragment to markdown
func Markdown(r *Report) (string, error) {
	var buf bytes.Buffer
	if err := RenderHTML(&buf, r); err != nil {
		return "", err
	}
	md, err := htmltomarkdown.ConvertString(buf.String())
	if err != nil {
		return "", fmt.Errorf("convert report to markdown: %w", err)
	}
	return md, nil
}
