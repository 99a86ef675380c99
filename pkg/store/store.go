package store

import (
	"database/sql"
	"fmt"
	"strconv"
	"strings"

	_ "github.com/lib/pq"
	"github.com/richard-senior/matchcast/internal/logger"
	"github.com/richard-senior/matchcast/pkg/history"
	_ "modernc.org/sqlite"
)

// Store wraps a database connection together with the SQL dialect it speaks
type Store struct {
	db     *sql.DB
	driver string
}

// Open connects to sqlite or postgres and makes sure the tables exist
func Open(driver, dsn string) (*Store, error) {
	switch driver {
	case "sqlite", "postgres":
	default:
		return nil, fmt.Errorf("unsupported store driver %q", driver)
	}

	db, err := sql.Open(driver, dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}
	if driver == "sqlite" {
		// an in-memory database exists per connection
		db.SetMaxOpenConns(1)
	}

	s := &Store{db: db, driver: driver}
	if err := s.Migrate(); err != nil {
		db.Close()
		return nil, err
	}

	logger.Info("Database initialized successfully", driver)
	return s, nil
}

// Migrate creates all tables the application uses
func (s *Store) Migrate() error {
	tables := []Persistable{&history.MatchRecord{}, &PredictionLog{}}
	for _, t := range tables {
		if err := s.CreateTable(t); err != nil {
			return err
		}
	}
	return nil
}

// DB exposes the connection for ad hoc queries
func (s *Store) DB() *sql.DB {
	return s.db
}

func (s *Store) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

// rebind rewrites ? placeholders to $n for postgres
func (s *Store) rebind(query string) string {
	if s.driver != "postgres" {
		return query
	}
	var b strings.Builder
	n := 0
	for _, r := range query {
		if r == '?' {
			n++
			b.WriteString("$" + strconv.Itoa(n))
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}
