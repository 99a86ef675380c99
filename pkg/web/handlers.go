package web

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"html/template"
	"net/http"
	"strconv"
	"strings"

	"github.com/richard-senior/matchcast/internal/logger"
	"github.com/richard-senior/matchcast/pkg/ensemble"
	"github.com/richard-senior/matchcast/pkg/history"
	"github.com/richard-senior/matchcast/pkg/report"
	"github.com/richard-senior/matchcast/pkg/store"
)

// PredictRequest is the body of POST /predict
type PredictRequest struct {
	HomeTeam string `json:"home_team"`
	AwayTeam string `json:"away_team"`
}

// Labelled is a prediction with a formatted probability
type Labelled struct {
	Prediction  string `json:"prediction"`
	Probability string `json:"probability"`
}

// PredictResponse mirrors what the browser script reads
type PredictResponse struct {
	ID          string            `json:"id,omitempty"`
	MatchResult map[string]string `json:"match_result"`
	Score       Labelled          `json:"score"`
	HTFT        Labelled          `json:"htft"`
	BTTS        Labelled          `json:"btts"`
	Best        Labelled          `json:"best"`
}

var (
	errMissingTeam = errors.New("please choose both teams")
	errSameTeam    = errors.New("a team cannot be chosen twice")
)

// validate checks both teams are present, distinct and known
func (s *Server) validate(home, away string) error {
	if home == "" || away == "" {
		return errMissingTeam
	}
	if home == away {
		return errSameTeam
	}
	teams, err := s.source.Teams()
	if err != nil {
		return fmt.Errorf("list teams: %w", err)
	}
	for _, team := range []string{home, away} {
		if !contains(teams, team) {
			return fmt.Errorf("%w: %s", history.ErrUnknownTeam, team)
		}
	}
	return nil
}

func contains(list []string, v string) bool {
	for _, s := range list {
		if s == v {
			return true
		}
	}
	return false
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, errMissingTeam), errors.Is(err, errSameTeam):
		return http.StatusBadRequest
	case errors.Is(err, history.ErrUnknownTeam):
		return http.StatusNotFound
	}
	return http.StatusInternalServerError
}

func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	s.renderPage(w, http.StatusOK, pageData{})
}

func (s *Server) handleIndexPost(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		s.renderPage(w, http.StatusBadRequest, pageData{Error: "Invalid form submission"})
		return
	}
	home, away := r.PostForm.Get("home_team"), r.PostForm.Get("away_team")
	data := pageData{Home: home, Away: away}

	if err := s.validate(home, away); err != nil {
		data.Error = capitalize(err.Error())
		s.renderPage(w, statusFor(err), data)
		return
	}

	rep, err := report.Build(s.blender, s.source, home, away, s.opts.Report)
	if err != nil {
		logger.Warn("Failed to build report:", err)
		data.Error = capitalize(err.Error())
		s.renderPage(w, statusFor(err), data)
		return
	}
	s.record(rep.Prediction)

	var buf bytes.Buffer
	if err := report.RenderHTML(&buf, rep); err != nil {
		logger.Error("Failed to render report:", err)
		s.renderPage(w, http.StatusInternalServerError, pageData{Error: "Failed to render report"})
		return
	}
	data.Report = template.HTML(buf.String())
	s.renderPage(w, http.StatusOK, data)
}

func (s *Server) handlePredict(w http.ResponseWriter, r *http.Request) {
	var req PredictRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid JSON")
		return
	}
	if err := s.validate(req.HomeTeam, req.AwayTeam); err != nil {
		writeError(w, statusFor(err), capitalize(err.Error()))
		return
	}

	p := s.blender.PredictAll(req.HomeTeam, req.AwayTeam)
	id := s.record(p)
	writeJSON(w, http.StatusOK, toResponse(id, p))
}

func toResponse(id string, p ensemble.Prediction) PredictResponse {
	return PredictResponse{
		ID:          id,
		MatchResult: map[string]string{
			"home_win": report.Percent(p.Result.HomeWin),
			"draw":     report.Percent(p.Result.Draw),
			"away_win": report.Percent(p.Result.AwayWin),
		},
		Score: Labelled{Prediction: p.Score.String(), Probability: report.Percent(p.Score.Confidence)},
		HTFT:  Labelled{Prediction: p.HTFT.Label, Probability: report.Percent(p.HTFT.Confidence)},
		BTTS:  Labelled{Prediction: p.BTTS.Label, Probability: report.Percent(p.BTTS.Confidence)},
		Best:  Labelled{Prediction: p.Pick.Label, Probability: report.Percent(p.Pick.Value)},
	}
}

// record stores the prediction when a journal is configured and returns its id
func (s *Server) record(p ensemble.Prediction) string {
	if s.journal == nil {
		return ""
	}
	entry := store.NewPredictionLog(p.Home, p.Away)
	entry.HomeWin = p.Result.HomeWin
	entry.Draw = p.Result.Draw
	entry.AwayWin = p.Result.AwayWin
	entry.HomeGoals = p.Score.Home
	entry.AwayGoals = p.Score.Away
	entry.ScoreConfidence = p.Score.Confidence
	entry.HTFT = p.HTFT.Label
	entry.HTFTConfidence = p.HTFT.Confidence
	entry.BTTS = p.BTTS.Label
	entry.BTTSConfidence = p.BTTS.Confidence
	entry.Pick = p.Pick.Label
	entry.PickValue = p.Pick.Value

	if err := s.journal.RecordPrediction(entry); err != nil {
		logger.Warn("Failed to record prediction:", err)
		return ""
	}
	return entry.ID
}

func (s *Server) handleTeams(w http.ResponseWriter, r *http.Request) {
	teams, err := s.source.Teams()
	if err != nil {
		logger.Error("Failed to list teams:", err)
		writeError(w, http.StatusInternalServerError, "Failed to list teams")
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"teams": teams})
}

func (s *Server) handleRecentPredictions(w http.ResponseWriter, r *http.Request) {
	if s.journal == nil {
		writeError(w, http.StatusNotFound, "Prediction log is not configured")
		return
	}
	limit := 20
	if v := r.URL.Query().Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 1 {
			writeError(w, http.StatusBadRequest, "Invalid limit")
			return
		}
		limit = n
	}
	entries, err := s.journal.RecentPredictions(limit)
	if err != nil {
		logger.Error("Failed to read prediction log:", err)
		writeError(w, http.StatusInternalServerError, "Failed to read prediction log")
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"predictions": entries})
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		logger.Warn("Failed to write response:", err)
	}
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

func capitalize(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}
