// internal/store/sqlite/store.go
package sqlite

import (
	"fmt"
	"strings"

	"github.com/jmoiron/sqlx"
	_ "github.com/mattn/go-sqlite3"

	"github.com/founderdesk/daylog/internal/store"
)

type SQLiteStore struct {
	store.BaseStore
}

func NewSQLiteStore(dsn, migrationsDir string) (*SQLiteStore, error) {
	db, err := sqlx.Connect("sqlite3", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to sqlite: %w", err)
	}

	// a single connection keeps :memory: databases and PRAGMAs coherent
	db.SetMaxOpenConns(1)

	if _, err := db.Exec("PRAGMA foreign_keys = ON"); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to enable foreign keys: %w", err)
	}

	s := &SQLiteStore{BaseStore: store.BaseStore{
		DB: db,
		Converter: func(query string) string {
			return query
		},
	}}

	if err := s.ApplyMigrations(migrationsDir); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to apply migrations: %w", err)
	}

	return s, nil
}

func (s *SQLiteStore) ApplyMigrations(dir string) error {
	return s.BaseStore.ApplyMigrations(dir, translateToSQLite)
}

// translateToSQLite converts Postgres SQL to SQLite dialect
func translateToSQLite(sql string) string {
	replacements := map[string]string{
		"BIGSERIAL": "INTEGER PRIMARY KEY AUTOINCREMENT",
		"SERIAL":    "INTEGER PRIMARY KEY AUTOINCREMENT",
		"BIGINT":    "INTEGER",
		"UUID":      "TEXT",
		"TRUE":      "1",
		"FALSE":     "0",
		"BOOLEAN":   "INTEGER",
		"now()":     "CURRENT_TIMESTAMP",
		"::text":    "",
	}
	result := sql
	for from, to := range replacements {
		result = strings.ReplaceAll(result, from, to)
	}
	return result
}

// ListOwnerLogs joins each of the owner's submissions with its live decision
// counts for the dashboard.
func (s *SQLiteStore) ListOwnerLogs(ownerID, day string) ([]store.OwnerLog, error) {
	query := `
		SELECT
			s.id, s.owner_id, s.owner_role, s.task_id, s.day, s.note, s.proof_ref, s.status, s.version, s.created_at, s.updated_at,
			COALESCE(SUM(CASE WHEN d.verdict = 'APPROVE' THEN 1 ELSE 0 END), 0) AS approvals,
			COALESCE(SUM(CASE WHEN d.verdict = 'REJECT' THEN 1 ELSE 0 END), 0) AS rejections
		FROM submissions s
		LEFT JOIN decisions d
			ON d.submission_id = s.id
			AND d.version = s.version
		WHERE s.owner_id = ?
		AND (? = '' OR s.day = ?)
		GROUP BY s.id, s.owner_id, s.owner_role, s.task_id, s.day, s.note, s.proof_ref, s.status, s.version, s.created_at, s.updated_at
		ORDER BY s.created_at, s.id
	`

	var rows []store.OwnerLog
	if err := s.DB.Select(&rows, query, ownerID, day, day); err != nil {
		return nil, fmt.Errorf("failed to list owner logs: %w", err)
	}
	return rows, nil
}

// sqlite has no FILTER clause, count verdicts with CASE instead
func (s *SQLiteStore) FetchDailyReviewStats(day string) ([]store.ReviewStat, error) {
	query := `
		SELECT
			s.id AS submission_id,
			s.owner_id,
			s.owner_role,
			s.task_id,
			s.status,
			COALESCE(SUM(CASE WHEN d.verdict = 'APPROVE' THEN 1 ELSE 0 END), 0) AS approvals,
			COALESCE(SUM(CASE WHEN d.verdict = 'REJECT' THEN 1 ELSE 0 END), 0) AS rejections
		FROM submissions s
		LEFT JOIN decisions d
			ON d.submission_id = s.id
			AND d.version = s.version
		WHERE s.day = ?
		GROUP BY s.id, s.owner_id, s.owner_role, s.task_id, s.status, s.created_at
		ORDER BY s.created_at, s.id
	`

	var results []store.ReviewStat
	err := s.DB.Select(&results, query, day)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch daily review stats: %w", err)
	}

	return results, nil
}
