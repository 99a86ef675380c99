package store

import (
	"fmt"

	"github.com/richard-senior/matchcast/internal/logger"
	"github.com/richard-senior/matchcast/pkg/history"
)

// Compile-time checks
var (
	_ Persistable    = (*history.MatchRecord)(nil)
	_ Persistable    = (*PredictionLog)(nil)
	_ history.Source = (*Store)(nil)
)

// TeamHistory returns a team's matches, most recent first
func (s *Store) TeamHistory(team string) ([]*history.MatchRecord, error) {
	rows, err := s.FindWhere(&history.MatchRecord{}, "team = ? ORDER BY match_date DESC", team)
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, fmt.Errorf("%s: %w", team, history.ErrUnknownTeam)
	}
	records := make([]*history.MatchRecord, 0, len(rows))
	for _, r := range rows {
		records = append(records, r.(*history.MatchRecord))
	}
	return records, nil
}

// Teams lists the distinct teams held in the store
func (s *Store) Teams() ([]string, error) {
	rows, err := s.db.Query("SELECT DISTINCT team FROM match_records ORDER BY team")
	if err != nil {
		return nil, fmt.Errorf("failed to list teams: %w", err)
	}
	defer rows.Close()

	var teams []string
	for rows.Next() {
		var team string
		if err := rows.Scan(&team); err != nil {
			return nil, fmt.Errorf("failed to scan team: %w", err)
		}
		teams = append(teams, team)
	}
	return teams, rows.Err()
}

// Import copies every team from src into the store and returns the number of rows saved
func (s *Store) Import(src history.Source) (int, error) {
	teams, err := src.Teams()
	if err != nil {
		return 0, err
	}
	total := 0
	for _, team := range teams {
		records, err := src.TeamHistory(team)
		if err != nil {
			logger.Warn("Skipping team during import", team, err)
			continue
		}
		objs := make([]Persistable, len(records))
		for i, r := range records {
			objs[i] = r
		}
		if err := s.BulkSave(objs); err != nil {
			return total, fmt.Errorf("import %s: %w", team, err)
		}
		total += len(records)
		logger.Info("Imported team", team, len(records))
	}
	return total, nil
}
