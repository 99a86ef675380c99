package store

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// PredictionLog is one served prediction
type PredictionLog struct {
	ID        string    `json:"id" column:"id" dbtype:"TEXT" primary:"true"`
	CreatedAt time.Time `json:"createdAt" column:"created_at" dbtype:"TIMESTAMP NOT NULL" index:"true"`
	HomeTeam  string    `json:"homeTeam" column:"home_team" dbtype:"TEXT NOT NULL" index:"true"`
	AwayTeam  string    `json:"awayTeam" column:"away_team" dbtype:"TEXT NOT NULL" index:"true"`

	HomeWin float64 `json:"homeWin" column:"home_win" dbtype:"REAL"`
	Draw    float64 `json:"draw" column:"draw" dbtype:"REAL"`
	AwayWin float64 `json:"awayWin" column:"away_win" dbtype:"REAL"`

	HomeGoals       int     `json:"homeGoals" column:"home_goals" dbtype:"INTEGER"`
	AwayGoals       int     `json:"awayGoals" column:"away_goals" dbtype:"INTEGER"`
	ScoreConfidence float64 `json:"scoreConfidence" column:"score_confidence" dbtype:"REAL"`

	HTFT           string  `json:"htft" column:"htft" dbtype:"TEXT"`
	HTFTConfidence float64 `json:"htftConfidence" column:"htft_confidence" dbtype:"REAL"`
	BTTS           string  `json:"btts" column:"btts" dbtype:"TEXT"`
	BTTSConfidence float64 `json:"bttsConfidence" column:"btts_confidence" dbtype:"REAL"`

	Pick      string  `json:"pick" column:"pick" dbtype:"TEXT"`
	PickValue float64 `json:"pickValue" column:"pick_value" dbtype:"REAL"`
}

// NewPredictionLog starts an entry with a fresh id and timestamp
func NewPredictionLog(home, away string) *PredictionLog {
	return &PredictionLog{
		ID:        uuid.NewString(),
		CreatedAt: time.Now().UTC(),
		HomeTeam:  home,
		AwayTeam:  away,
	}
}

func (p *PredictionLog) GetTableName() string {
	return "prediction_log"
}

func (p *PredictionLog) GetPrimaryKey() map[string]interface{} {
	return map[string]interface{}{"id": p.ID}
}

func (p *PredictionLog) SetPrimaryKey(pk map[string]interface{}) error {
	id, ok := pk["id"].(string)
	if !ok {
		return fmt.Errorf("invalid primary key for prediction log: %v", pk)
	}
	p.ID = id
	return nil
}

func (p *PredictionLog) BeforeSave() error {
	if p.ID == "" {
		p.ID = uuid.NewString()
	} else if _, err := uuid.Parse(p.ID); err != nil {
		return fmt.Errorf("prediction log id %q: %w", p.ID, err)
	}
	if p.CreatedAt.IsZero() {
		p.CreatedAt = time.Now().UTC()
	}
	if p.HomeTeam == "" || p.AwayTeam == "" {
		return fmt.Errorf("prediction log needs both teams")
	}
	return nil
}

func (p *PredictionLog) AfterSave() error    { return nil }
func (p *PredictionLog) BeforeDelete() error { return nil }
func (p *PredictionLog) AfterDelete() error  { return nil }

// RecordPrediction saves a served prediction
func (s *Store) RecordPrediction(p *PredictionLog) error {
	if err := s.Save(p); err != nil {
		return fmt.Errorf("record prediction %s vs %s: %w", p.HomeTeam, p.AwayTeam, err)
	}
	return nil
}

// RecentPredictions returns the newest entries first
func (s *Store) RecentPredictions(limit int) ([]*PredictionLog, error) {
	if limit <= 0 {
		limit = 20
	}
	rows, err := s.FindWhere(&PredictionLog{}, "1 = 1 ORDER BY created_at DESC LIMIT ?", limit)
	if err != nil {
		return nil, err
	}
	out := make([]*PredictionLog, 0, len(rows))
	for _, r := range rows {
		out = append(out, r.(*PredictionLog))
	}
	return out, nil
}
