package history

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// Source supplies match histories. TeamHistory returns records most recent first.
type Source interface {
	TeamHistory(team string) ([]*MatchRecord, error)
	Teams() ([]string, error)
}

// DirSource reads one file per team from a directory: <dir>/<team>.csv, or <team>.html
// for a saved statistics page. Every call reads the file again.
type DirSource struct {
	Dir string
}

func NewDirSource(dir string) *DirSource {
	return &DirSource{Dir: dir}
}

func (d *DirSource) TeamHistory(team string) ([]*MatchRecord, error) {
	if team == "" || strings.ContainsAny(team, `/\`) {
		return nil, fmt.Errorf("%q: %w", team, ErrUnknownTeam)
	}

	csvPath := filepath.Join(d.Dir, team+".csv")
	f, err := os.Open(csvPath)
	if err == nil {
		defer f.Close()
		return ParseCSV(team, f)
	}
	if !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("open %s: %w", csvPath, err)
	}

	htmlPath := filepath.Join(d.Dir, team+".html")
	h, err := os.Open(htmlPath)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("%s: %w", team, ErrUnknownTeam)
		}
		return nil, fmt.Errorf("open %s: %w", htmlPath, err)
	}
	defer h.Close()
	return ParseHTMLTable(team, h)
}

// Teams lists the team names found in the directory, sorted
func (d *DirSource) Teams() ([]string, error) {
	entries, err := os.ReadDir(d.Dir)
	if err != nil {
		return nil, fmt.Errorf("read team directory %s: %w", d.Dir, err)
	}
	seen := map[string]bool{}
	var teams []string
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		ext := filepath.Ext(e.Name())
		if ext != ".csv" && ext != ".html" {
			continue
		}
		name := strings.TrimSuffix(e.Name(), ext)
		if !seen[name] {
			seen[name] = true
			teams = append(teams, name)
		}
	}
	sort.Strings(teams)
	return teams, nil
}

// All collects every team's history from a source. Teams that fail to load are returned
// in the error but do not stop the others.
func All(src Source) ([]*MatchRecord, error) {
	teams, err := src.Teams()
	if err != nil {
		return nil, err
	}
	var (
		all  []*MatchRecord
		errs []error
	)
	for _, team := range teams {
		records, err := src.TeamHistory(team)
		if err != nil {
			errs = append(errs, err)
			continue
		}
		all = append(all, records...)
	}
	return all, errors.Join(errs...)
}
