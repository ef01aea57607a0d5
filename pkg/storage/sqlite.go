package storage

import (
	"database/sql"
	"fmt"
	"strings"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/replaykit/journey-runner/pkg/journey"
)

// SQLiteStore persists journeys in a local SQLite database. The full journey
// definition is stored as YAML in a single column; filter and sort fields are
// denormalized into their own columns.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLiteStore opens (and migrates) a SQLite journey database.
func NewSQLiteStore(path string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite3", path+"?_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("ping sqlite: %w", err)
	}

	s := &SQLiteStore{db: db}
	if err := s.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}
	return s, nil
}

func (s *SQLiteStore) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS journeys (
		id TEXT PRIMARY KEY,
		name TEXT NOT NULL DEFAULT '',
		category TEXT NOT NULL DEFAULT '',
		domain TEXT NOT NULL DEFAULT '',
		tags TEXT NOT NULL DEFAULT '',
		difficulty TEXT NOT NULL DEFAULT '',
		usage_count INTEGER NOT NULL DEFAULT 0,
		success_rate REAL NOT NULL DEFAULT 0,
		avg_duration_ms REAL NOT NULL DEFAULT 0,
		last_used DATETIME,
		definition TEXT NOT NULL,
		created_at DATETIME DEFAULT CURRENT_TIMESTAMP,
		updated_at DATETIME DEFAULT CURRENT_TIMESTAMP
	);

	CREATE INDEX IF NOT EXISTS idx_journeys_domain ON journeys(domain);
	CREATE INDEX IF NOT EXISTS idx_journeys_category ON journeys(category);
	CREATE INDEX IF NOT EXISTS idx_journeys_success_rate ON journeys(success_rate);
	`
	_, err := s.db.Exec(schema)
	return err
}

// Close closes the database.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

// LoadJourney returns the journey with the given id, or ErrNotFound.
func (s *SQLiteStore) LoadJourney(id string) (*journey.Journey, error) {
	var definition string
	err := s.db.QueryRow(`SELECT definition FROM journeys WHERE id = ?`, id).Scan(&definition)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("load journey %s: %w", id, err)
	}

	j, err := journey.Parse([]byte(definition), "db:"+id)
	if err != nil {
		return nil, fmt.Errorf("decode journey %s: %w", id, err)
	}
	return j, nil
}

// SaveJourney upserts the journey, refreshing the denormalized columns.
func (s *SQLiteStore) SaveJourney(j *journey.Journey) error {
	definition, err := journey.Encode(j)
	if err != nil {
		return fmt.Errorf("encode journey %s: %w", j.ID, err)
	}

	now := time.Now().UTC()
	_, err = s.db.Exec(`
		INSERT INTO journeys
			(id, name, category, domain, tags, difficulty,
			 usage_count, success_rate, avg_duration_ms, last_used,
			 definition, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			name = excluded.name,
			category = excluded.category,
			domain = excluded.domain,
			tags = excluded.tags,
			difficulty = excluded.difficulty,
			usage_count = excluded.usage_count,
			success_rate = excluded.success_rate,
			avg_duration_ms = excluded.avg_duration_ms,
			last_used = excluded.last_used,
			definition = excluded.definition,
			updated_at = excluded.updated_at
	`, j.ID, j.Name, j.Category, j.Domain(), strings.Join(j.Tags, ","),
		string(j.Metadata.Difficulty), j.Metadata.UsageCount, j.Metadata.SuccessRate,
		j.Metadata.AvgDurationMs, j.Metadata.LastUsed, string(definition), now, now)
	if err != nil {
		return fmt.Errorf("upsert journey %s: %w", j.ID, err)
	}
	return nil
}

// DeleteJourney removes a journey. Missing ids are not an error.
func (s *SQLiteStore) DeleteJourney(id string) error {
	_, err := s.db.Exec(`DELETE FROM journeys WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete journey %s: %w", id, err)
	}
	return nil
}

// SearchJourneys filters and sorts journeys in SQL, decoding matches.
func (s *SQLiteStore) SearchJourneys(c SearchCriteria) (*SearchResult, error) {
	var where []string
	var args []any

	if c.Domain != "" {
		where = append(where, "domain = ? COLLATE NOCASE")
		args = append(args, c.Domain)
	}
	if c.Category != "" {
		where = append(where, "category = ?")
		args = append(args, c.Category)
	}
	if c.Tag != "" {
		// Tags are stored comma-joined; bracket with commas for exact match.
		where = append(where, "(',' || tags || ',') LIKE ?")
		args = append(args, "%,"+c.Tag+",%")
	}
	if c.MinSuccessRate > 0 {
		where = append(where, "success_rate >= ?")
		args = append(args, c.MinSuccessRate)
	}
	if c.Difficulty != "" {
		where = append(where, "difficulty = ?")
		args = append(args, string(c.Difficulty))
	}

	query := `SELECT definition FROM journeys`
	if len(where) > 0 {
		query += " WHERE " + strings.Join(where, " AND ")
	}
	query += " ORDER BY " + sortColumn(c.SortBy) + " " + sortDirection(c.SortOrder)

	rows, err := s.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("search journeys: %w", err)
	}
	defer rows.Close()

	var found []*journey.Journey
	for rows.Next() {
		var definition string
		if err := rows.Scan(&definition); err != nil {
			return nil, fmt.Errorf("scan journey: %w", err)
		}
		j, err := journey.Parse([]byte(definition), "db")
		if err != nil {
			return nil, fmt.Errorf("decode journey: %w", err)
		}
		found = append(found, j)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("search journeys: %w", err)
	}

	total := len(found)
	if c.Limit > 0 && len(found) > c.Limit {
		found = found[:c.Limit]
	}

	return &SearchResult{Journeys: found, TotalCount: total}, nil
}

func sortColumn(sortBy string) string {
	switch sortBy {
	case SortByUsageCount:
		return "usage_count"
	case SortByLastUsed:
		return "last_used"
	case SortByName:
		return "name"
	default:
		return "success_rate"
	}
}

func sortDirection(order string) string {
	if order == "asc" {
		return "ASC"
	}
	return "DESC"
}
