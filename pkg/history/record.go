package history

import (
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"
)

var (
	// ErrUnknownTeam is returned when a source holds no history for the requested team
	ErrUnknownTeam = errors.New("unknown team")
	// ErrNoRows is returned when an input parses but yields no usable match rows
	ErrNoRows = errors.New("no match rows")
)

// Outcome is the result of a match from the recording team's point of view
type Outcome string

const (
	Win  Outcome = "Win"
	Draw Outcome = "Draw"
	Loss Outcome = "Loss"
)

// Venue records whether the team played at home or away. Empty when the source does not say.
type Venue string

const (
	Home Venue = "home"
	Away Venue = "away"
)

// MatchRecord is one historical match for one team, with database persistence annotations
type MatchRecord struct {
	ID       string    `json:"id" column:"id" dbtype:"TEXT" primary:"true"`
	Team     string    `json:"team" column:"team" dbtype:"TEXT NOT NULL" index:"true"`
	Date     time.Time `json:"date" column:"match_date" dbtype:"TIMESTAMP" index:"true"`
	Opponent string    `json:"opponent" column:"opponent" dbtype:"TEXT NOT NULL" index:"true"`
	Venue    Venue     `json:"venue,omitempty" column:"venue" dbtype:"TEXT"`
	Outcome  Outcome   `json:"outcome" column:"outcome" dbtype:"TEXT NOT NULL"`

	// Goals
	HTGoalsFor     int `json:"htGoalsFor" column:"ht_goals_for" dbtype:"INTEGER DEFAULT 0"`
	FTGoalsFor     int `json:"ftGoalsFor" column:"ft_goals_for" dbtype:"INTEGER DEFAULT 0"`
	HTGoalsAgainst int `json:"htGoalsAgainst" column:"ht_goals_against" dbtype:"INTEGER DEFAULT 0"`
	FTGoalsAgainst int `json:"ftGoalsAgainst" column:"ft_goals_against" dbtype:"INTEGER DEFAULT 0"`

	// Control
	Possession    float64 `json:"possession" column:"possession" dbtype:"REAL DEFAULT 0"`
	DuelsWon      float64 `json:"duelsWon" column:"duels_won" dbtype:"REAL DEFAULT 0"`
	AerialsWon    float64 `json:"aerialsWon" column:"aerials_won" dbtype:"REAL DEFAULT 0"`
	Interceptions float64 `json:"interceptions" column:"interceptions" dbtype:"REAL DEFAULT 0"`

	// Passing and crossing
	TotalPasses     float64 `json:"totalPasses" column:"total_passes" dbtype:"REAL DEFAULT 0"`
	AccuratePasses  float64 `json:"accuratePasses" column:"accurate_passes" dbtype:"REAL DEFAULT 0"`
	PassAccuracy    float64 `json:"passAccuracy" column:"pass_accuracy" dbtype:"REAL DEFAULT 0"`
	TotalCrosses    float64 `json:"totalCrosses" column:"total_crosses" dbtype:"REAL DEFAULT 0"`
	AccurateCrosses float64 `json:"accurateCrosses" column:"accurate_crosses" dbtype:"REAL DEFAULT 0"`

	// Shooting
	TotalShots      float64 `json:"totalShots" column:"total_shots" dbtype:"REAL DEFAULT 0"`
	AccurateShots   float64 `json:"accurateShots" column:"accurate_shots" dbtype:"REAL DEFAULT 0"`
	InaccurateShots float64 `json:"inaccurateShots" column:"inaccurate_shots" dbtype:"REAL DEFAULT 0"`
	BlockedShots    float64 `json:"blockedShots" column:"blocked_shots" dbtype:"REAL DEFAULT 0"`
	XG              float64 `json:"xg" column:"xg" dbtype:"REAL DEFAULT 0"`
	BoxEntries      float64 `json:"boxEntries" column:"box_entries" dbtype:"REAL DEFAULT 0"`

	// Defence and discipline
	Clearances       float64 `json:"clearances" column:"clearances" dbtype:"REAL DEFAULT 0"`
	Fouls            float64 `json:"fouls" column:"fouls" dbtype:"REAL DEFAULT 0"`
	Offsides         float64 `json:"offsides" column:"offsides" dbtype:"REAL DEFAULT 0"`
	YellowCards      int     `json:"yellowCards" column:"yellow_cards" dbtype:"INTEGER DEFAULT 0"`
	SecondYellowReds int     `json:"secondYellowReds" column:"second_yellow_reds" dbtype:"INTEGER DEFAULT 0"`
	RedCards         int     `json:"redCards" column:"red_cards" dbtype:"INTEGER DEFAULT 0"`
}

// RecordID builds the natural key of a match row
func RecordID(team string, date time.Time, opponent string) string {
	return fmt.Sprintf("%s|%s|%s", strings.ToLower(team), date.Format("20060102"), strings.ToLower(opponent))
}

// OutcomeFor derives the outcome from full-time goals
func OutcomeFor(goalsFor, goalsAgainst int) Outcome {
	switch {
	case goalsFor > goalsAgainst:
		return Win
	case goalsFor == goalsAgainst:
		return Draw
	default:
		return Loss
	}
}

// Validate checks the invariants of a single record
func (m *MatchRecord) Validate() error {
	if m.Team == "" {
		return fmt.Errorf("match record has no team")
	}
	if m.Opponent == "" {
		return fmt.Errorf("match record for %s has no opponent", m.Team)
	}
	if m.HTGoalsFor < 0 || m.FTGoalsFor < 0 || m.HTGoalsAgainst < 0 || m.FTGoalsAgainst < 0 {
		return fmt.Errorf("negative goals in %s vs %s", m.Team, m.Opponent)
	}
	switch m.Outcome {
	case Win, Draw, Loss:
	default:
		return fmt.Errorf("invalid outcome %q for %s vs %s", m.Outcome, m.Team, m.Opponent)
	}
	if want := OutcomeFor(m.FTGoalsFor, m.FTGoalsAgainst); want != m.Outcome {
		return fmt.Errorf("outcome %s inconsistent with score %d-%d for %s vs %s",
			m.Outcome, m.FTGoalsFor, m.FTGoalsAgainst, m.Team, m.Opponent)
	}
	return nil
}

// Score renders the full-time score from the team's perspective
func (m *MatchRecord) Score() string {
	return fmt.Sprintf("%d-%d", m.FTGoalsFor, m.FTGoalsAgainst)
}

// Points awarded for the match
func (m *MatchRecord) Points() int {
	switch m.Outcome {
	case Win:
		return 3
	case Draw:
		return 1
	}
	return 0
}

// These satisfy the store's Persistable contract

func (m *MatchRecord) GetTableName() string {
	return "match_records"
}

func (m *MatchRecord) GetPrimaryKey() map[string]interface{} {
	return map[string]interface{}{"id": m.ID}
}

func (m *MatchRecord) SetPrimaryKey(pk map[string]interface{}) error {
	id, ok := pk["id"].(string)
	if !ok {
		return fmt.Errorf("invalid primary key for match record: %v", pk)
	}
	m.ID = id
	return nil
}

func (m *MatchRecord) BeforeSave() error {
	if m.ID == "" {
		m.ID = RecordID(m.Team, m.Date, m.Opponent)
	}
	return m.Validate()
}

func (m *MatchRecord) AfterSave() error {
	return nil
}

func (m *MatchRecord) BeforeDelete() error {
	return nil
}

func (m *MatchRecord) AfterDelete() error {
	return nil
}

// SortNewestFirst orders records by date descending, keeping input order for equal dates
func SortNewestFirst(records []*MatchRecord) {
	sort.SliceStable(records, func(i, j int) bool {
		return records[i].Date.After(records[j].Date)
	})
}
