package history

import (
	"encoding/csv"
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/richard-senior/matchcast/internal/logger"
)

type column int

const (
	colUnknown column = iota
	colDate
	colOpponent
	colOutcome
	colVenue
	colFTGoalsFor
	colHTGoalsFor
	colFTGoalsAgainst
	colHTGoalsAgainst
	colPossession
	colDuelsWon
	colAerialsWon
	colInterceptions
	colTotalPasses
	colAccuratePasses
	colPassAccuracy
	colTotalCrosses
	colAccurateCrosses
	colTotalShots
	colAccurateShots
	colInaccurateShots
	colBlockedShots
	colXG
	colBoxEntries
	colClearances
	colFouls
	colOffsides
	colYellowCards
	colSecondYellowReds
	colRedCards
)

// header names understood by the parsers, English and the Turkish export format
var headerAliases = map[column][]string{
	colDate:             {"date", "Tarih"},
	colOpponent:         {"opponent", "Rakip"},
	colOutcome:          {"outcome", "result", "Sonuç"},
	colVenue:            {"venue", "home/away", "Ev Sahibi/Deplasman"},
	colFTGoalsFor:       {"goals", "ft goals", "MS Gol"},
	colHTGoalsFor:       {"ht goals", "İY Gol"},
	colFTGoalsAgainst:   {"goals conceded", "ft goals conceded", "MS Yenilen Gol"},
	colHTGoalsAgainst:   {"ht goals conceded", "İY Yenilen Gol"},
	colPossession:       {"possession", "possession %", "Topla Oynama"},
	colDuelsWon:         {"duels won", "İkili Mücadele Kazanma"},
	colAerialsWon:       {"aerials won", "Hava Topu Kazanma"},
	colInterceptions:    {"interceptions", "Pas Arası"},
	colTotalPasses:      {"total passes", "Toplam Pas"},
	colAccuratePasses:   {"accurate passes", "İsabetli Pas"},
	colPassAccuracy:     {"pass accuracy", "pass accuracy %", "Pas İsabeti %"},
	colTotalCrosses:     {"total crosses", "Toplam Orta"},
	colAccurateCrosses:  {"accurate crosses", "İsabetli Orta"},
	colTotalShots:       {"total shots", "Toplam Şut"},
	colAccurateShots:    {"accurate shots", "shots on target", "İsabetli Şut"},
	colInaccurateShots:  {"inaccurate shots", "shots off target", "İsabetsiz Şut"},
	colBlockedShots:     {"blocked shots", "Engellenen Şut"},
	colXG:               {"xg", "expected goals", "Gol Beklentisi (xG)"},
	colBoxEntries:       {"box entries", "touches in opposition box", "Rakip Ceza Sahasında Topla Buluşma"},
	colClearances:       {"clearances", "Uzaklaştırma"},
	colFouls:            {"fouls", "Faul"},
	colOffsides:         {"offsides", "Ofsayt"},
	colYellowCards:      {"yellow cards", "Sarı Kart"},
	colSecondYellowReds: {"second yellow reds", "İkinci Sarıdan Kırmızı Kart"},
	colRedCards:         {"red cards", "Kırmızı Kart"},
}

var outcomeAliases = map[string]Outcome{
	"win": Win, "w": Win, "galip": Win,
	"draw": Draw, "d": Draw, "berabere": Draw,
	"loss": Loss, "l": Loss, "mağlup": Loss,
}

var venueAliases = map[string]Venue{
	"home": Home, "h": Home, "ev sahibi": Home,
	"away": Away, "a": Away, "deplasman": Away,
}

var dateLayouts = []string{
	"02.01.2006",
	"2006-01-02",
	"02/01/2006",
	"2.1.2006",
}

var headerLookup map[string]column

func init() {
	headerLookup = make(map[string]column)
	for col, names := range headerAliases {
		for _, name := range names {
			headerLookup[normalizeHeader(name)] = col
		}
	}
}

func normalizeHeader(h string) string {
	h = strings.TrimPrefix(h, "\ufeff")
	return strings.ToLower(strings.Join(strings.Fields(h), " "))
}

// mapHeaders resolves each header cell to a known column. Unknown columns are ignored.
func mapHeaders(headers []string) ([]column, error) {
	cols := make([]column, len(headers))
	seen := map[column]bool{}
	for i, h := range headers {
		cols[i] = headerLookup[normalizeHeader(h)]
		seen[cols[i]] = true
	}
	if !seen[colDate] || !seen[colOpponent] {
		return nil, fmt.Errorf("header must contain date and opponent columns, got %v", headers)
	}
	return cols, nil
}

// ParseCSV reads one team's match history. Rows that cannot be parsed are skipped with a
// warning. The result is ordered newest first.
func ParseCSV(team string, r io.Reader) ([]*MatchRecord, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true
	records, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("failed to parse CSV for %s: %w", team, err)
	}
	if len(records) == 0 {
		return nil, fmt.Errorf("%s: %w", team, ErrNoRows)
	}

	cols, err := mapHeaders(records[0])
	if err != nil {
		return nil, fmt.Errorf("%s: %w", team, err)
	}

	var matches []*MatchRecord
	for i, record := range records[1:] {
		if len(record) < len(cols) {
			logger.Warn("Skipping incomplete record at row", i+2, team)
			continue
		}
		m, err := parseRow(team, cols, record)
		if err != nil {
			logger.Warn("Failed to parse match at row", i+2, team, err)
			continue
		}
		matches = append(matches, m)
	}

	if len(matches) == 0 {
		return nil, fmt.Errorf("%s: %w", team, ErrNoRows)
	}
	SortNewestFirst(matches)
	return matches, nil
}

// parseRow converts a row of cells to a MatchRecord using the resolved column layout
func parseRow(team string, cols []column, cells []string) (*MatchRecord, error) {
	m := &MatchRecord{Team: team}
	var outcome string

	for i, col := range cols {
		if i >= len(cells) {
			break
		}
		raw := strings.TrimSpace(cells[i])
		switch col {
		case colUnknown:
		case colDate:
			d, err := parseDate(raw)
			if err != nil {
				return nil, err
			}
			m.Date = d
		case colOpponent:
			m.Opponent = raw
		case colOutcome:
			outcome = raw
		case colVenue:
			m.Venue = venueAliases[strings.ToLower(raw)]
		case colFTGoalsFor:
			m.FTGoalsFor = cleanInt(raw)
		case colHTGoalsFor:
			m.HTGoalsFor = cleanInt(raw)
		case colFTGoalsAgainst:
			m.FTGoalsAgainst = cleanInt(raw)
		case colHTGoalsAgainst:
			m.HTGoalsAgainst = cleanInt(raw)
		case colYellowCards:
			m.YellowCards = cleanInt(raw)
		case colSecondYellowReds:
			m.SecondYellowReds = cleanInt(raw)
		case colRedCards:
			m.RedCards = cleanInt(raw)
		default:
			*m.floatField(col) = cleanNumber(raw)
		}
	}

	if outcome == "" {
		m.Outcome = OutcomeFor(m.FTGoalsFor, m.FTGoalsAgainst)
	} else {
		o, ok := outcomeAliases[strings.ToLower(outcome)]
		if !ok {
			return nil, fmt.Errorf("unknown outcome %q", outcome)
		}
		m.Outcome = o
	}

	m.ID = RecordID(m.Team, m.Date, m.Opponent)
	if err := m.Validate(); err != nil {
		return nil, err
	}
	return m, nil
}

func (m *MatchRecord) floatField(col column) *float64 {
	switch col {
	case colPossession:
		return &m.Possession
	case colDuelsWon:
		return &m.DuelsWon
	case colAerialsWon:
		return &m.AerialsWon
	case colInterceptions:
		return &m.Interceptions
	case colTotalPasses:
		return &m.TotalPasses
	case colAccuratePasses:
		return &m.AccuratePasses
	case colPassAccuracy:
		return &m.PassAccuracy
	case colTotalCrosses:
		return &m.TotalCrosses
	case colAccurateCrosses:
		return &m.AccurateCrosses
	case colTotalShots:
		return &m.TotalShots
	case colAccurateShots:
		return &m.AccurateShots
	case colInaccurateShots:
		return &m.InaccurateShots
	case colBlockedShots:
		return &m.BlockedShots
	case colXG:
		return &m.XG
	case colBoxEntries:
		return &m.BoxEntries
	case colClearances:
		return &m.Clearances
	case colFouls:
		return &m.Fouls
	case colOffsides:
		return &m.Offsides
	}
	panic(fmt.Sprintf("column %d is not a float column", col))
}

func parseDate(raw string) (time.Time, error) {
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, raw); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("could not parse date %q", raw)
}

// cleanNumber strips percent signs and converts decimal commas. Blank or unparseable
// values become 0.
func cleanNumber(raw string) float64 {
	raw = strings.TrimSpace(strings.Trim(strings.TrimSpace(raw), "%"))
	if raw == "" || raw == "-" {
		return 0
	}
	raw = strings.ReplaceAll(raw, ",", ".")
	f, err := strconv.ParseFloat(raw, 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		return 0
	}
	return f
}

func cleanInt(raw string) int {
	return int(math.Round(cleanNumber(raw)))
}
