package web

import (
	"html/template"
	"net/http"

	"github.com/richard-senior/matchcast/internal/logger"
)

// pageData feeds the index page
type pageData struct {
	Teams  []string
	Home   string
	Away   string
	Error  string
	Report template.HTML
}

const pageTemplate = `<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="utf-8">
<title>Match predictions</title>
</head>
<body>
<h1>Match predictions</h1>
<form id="prediction-form" method="post" action="/">
<label for="home-team">Home team</label>
<select id="home-team" name="home_team">
<option value="">Select team</option>
{{range .Teams}}<option value="{{.}}"{{if eq . $.Home}} selected{{end}}>{{.}}</option>
{{end}}</select>
<label for="away-team">Away team</label>
<select id="away-team" name="away_team">
<option value="">Select team</option>
{{range .Teams}}<option value="{{.}}"{{if eq . $.Away}} selected{{end}}>{{.}}</option>
{{end}}</select>
<button type="submit">Predict</button>
</form>
{{if .Error}}<p class="error" id="error">{{.Error}}</p>{{end}}
{{if .Report}}<div id="report">{{.Report}}</div>{{end}}
</body>
</html>
`

var page = template.Must(template.New("page").Parse(pageTemplate))

func (s *Server) renderPage(w http.ResponseWriter, status int, data pageData) {
	teams, err := s.source.Teams()
	if err != nil {
		logger.Warn("Failed to list teams:", err)
		if data.Error == "" {
			data.Error = "Team list is unavailable"
		}
	}
	data.Teams = teams

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	if err := page.Execute(w, data); err != nil {
		logger.Error("Failed to render page:", err)
	}
}
