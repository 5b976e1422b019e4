package postgres

import (
	"fmt"
	"strings"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"

	"github.com/founderdesk/daylog/internal/store"
)

type PostgresStore struct {
	store.BaseStore
}

func NewPostgresStore(dsn, migrationsDir string) (*PostgresStore, error) {
	db, err := sqlx.Connect("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	s := &PostgresStore{BaseStore: store.BaseStore{
		DB: db,
		Converter: func(query string) string {
			out := query
			for i := 1; strings.Contains(out, "?"); i++ {
				out = strings.Replace(out, "?", fmt.Sprintf("$%d", i), 1)
			}
			return out
		},
	}}

	if err := s.ApplyMigrations(migrationsDir); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to apply migrations: %w", err)
	}

	return s, nil
}

func (s *PostgresStore) ApplyMigrations(dir string) error {
	return s.BaseStore.ApplyMigrations(dir, nil)
}

// ListOwnerLogs joins each of the owner's submissions with its live decision
// counts for the dashboard.
func (s *PostgresStore) ListOwnerLogs(ownerID, day string) ([]store.OwnerLog, error) {
	query := `
		SELECT
			s.id, s.owner_id, s.owner_role, s.task_id, s.day, s.note, s.proof_ref, s.status, s.version, s.created_at, s.updated_at,
			COUNT(d.reviewer_id) FILTER (WHERE d.verdict = 'APPROVE') AS approvals,
			COUNT(d.reviewer_id) FILTER (WHERE d.verdict = 'REJECT') AS rejections
		FROM submissions s
		LEFT JOIN decisions d
			ON d.submission_id = s.id
			AND d.version = s.version
		WHERE s.owner_id = $1
		AND ($2 = '' OR s.day = $2)
		GROUP BY s.id, s.owner_id, s.owner_role, s.task_id, s.day, s.note, s.proof_ref, s.status, s.version, s.created_at, s.updated_at
		ORDER BY s.created_at, s.id
	`

	var rows []store.OwnerLog
	if err := s.DB.Select(&rows, query, ownerID, day); err != nil {
		return nil, fmt.Errorf("failed to list owner logs: %w", err)
	}
	return rows, nil
}

func (s *PostgresStore) FetchDailyReviewStats(day string) ([]store.ReviewStat, error) {
	query := `
		SELECT
			s.id AS submission_id,
			s.owner_id,
			s.owner_role,
			s.task_id,
			s.status,
			COUNT(d.reviewer_id) FILTER (WHERE d.verdict = 'APPROVE') AS approvals,
			COUNT(d.reviewer_id) FILTER (WHERE d.verdict = 'REJECT') AS rejections
		FROM submissions s
		LEFT JOIN decisions d
			ON d.submission_id = s.id
			AND d.version = s.version
		WHERE s.day = $1
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
