package store

import (
	"database/sql"
	"fmt"
	"os"
	"strings"

	"github.com/jmoiron/sqlx"

	"github.com/founderdesk/daylog/internal/models"
)

type SubmissionStore interface {
	Close() error
	ApplyMigrations(dir string) error

	CreateSubmission(sub *models.Submission) error
	GetSubmission(ownerID, taskID, day string) (*models.Submission, error)
	GetSubmissionByID(id string) (*models.Submission, error)
	UpdateDraft(id, note, proofRef string, now int64) (bool, error)
	ReopenSubmission(id, note, proofRef string, now int64) (bool, error)
	TransitionStatus(id string, version int, from, to models.Status, now int64) (bool, error)
	DeleteSubmission(id string) error

	ListPendingForReviewer(reviewerID, day string) ([]models.Submission, error)
	ListOwnerLogs(ownerID, day string) ([]OwnerLog, error)
	ListVerifiedByOwner(ownerID, day string) ([]models.Submission, error)

	UpsertDecision(d models.Decision) error
	ListLiveDecisions(submissionID string, version int) ([]models.Decision, error)

	GetTask(id string) (*models.Task, error)
	ListActiveTasks() ([]models.Task, error)
	ListTasks() ([]models.Task, error)
	SaveTask(t models.Task) error

	SaveScoreSnapshot(snap models.ScoreSnapshot) error
	GetScoreSnapshot(userID, day string) (*models.ScoreSnapshot, error)
	FetchLifetimeBoard() ([]models.BoardRow, error)

	FetchDailyReviewStats(day string) ([]ReviewStat, error)
}

// BaseStore provides common functionality for different DB implementations
type BaseStore struct {
	DB        *sqlx.DB
	Converter func(string) string
}

func (s *BaseStore) Close() error {
	if s.DB != nil {
		return s.DB.Close()
	}
	return nil
}

// ApplyMigrations applies SQL migrations from a directory, translating dialect if needed
func (s *BaseStore) ApplyMigrations(dir string, translateSQL func(string) string) error {
	files, err := os.ReadDir(dir)
	if err != nil {
		return fmt.Errorf("failed to read migrations directory: %w", err)
	}

	for _, file := range files {
		if !strings.HasSuffix(file.Name(), ".sql") {
			continue
		}

		content, err := os.ReadFile(fmt.Sprintf("%s/%s", dir, file.Name()))
		if err != nil {
			return fmt.Errorf("failed to read migration %s: %w", file.Name(), err)
		}

		sql := string(content)
		if translateSQL != nil {
			sql = translateSQL(sql)
		}

		if _, err := s.DB.Exec(sql); err != nil {
			return fmt.Errorf("failed to apply migration %s: %w", file.Name(), err)
		}
	}

	return nil
}

func (s *BaseStore) CreateSubmission(sub *models.Submission) error {
	_, err := s.DB.NamedExec(`
		INSERT INTO submissions (id, owner_id, owner_role, task_id, day, note, proof_ref, status, version, created_at, updated_at)
		VALUES (:id, :owner_id, :owner_role, :task_id, :day, :note, :proof_ref, :status, :version, :created_at, :updated_at)
	`, sub)
	if err != nil {
		return fmt.Errorf("failed to create submission: %w", err)
	}
	return nil
}

func (s *BaseStore) GetSubmission(ownerID, taskID, day string) (*models.Submission, error) {
	var sub models.Submission
	query := s.Converter(`
		SELECT id, owner_id, owner_role, task_id, day, note, proof_ref, status, version, created_at, updated_at
		FROM submissions
		WHERE owner_id = ?
		AND task_id = ?
		AND day = ?
	`)

	err := s.DB.Get(&sub, query, ownerID, taskID, day)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get submission: %w", err)
	}
	return &sub, nil
}

func (s *BaseStore) GetSubmissionByID(id string) (*models.Submission, error) {
	var sub models.Submission
	query := s.Converter(`
		SELECT id, owner_id, owner_role, task_id, day, note, proof_ref, status, version, created_at, updated_at
		FROM submissions
		WHERE id = ?
	`)

	err := s.DB.Get(&sub, query, id)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get submission by id: %w", err)
	}
	return &sub, nil
}

// UpdateDraft touches note/proof on a pending submission without resetting
// its review cycle. Guarded on current status; returns false when the row
// was finalized by a concurrent reviewer in the meantime.
func (s *BaseStore) UpdateDraft(id, note, proofRef string, now int64) (bool, error) {
	query := s.Converter(`
		UPDATE submissions
		SET note = ?, proof_ref = ?, updated_at = ?
		WHERE id = ? AND status = 'PENDING'
	`)
	res, err := s.DB.Exec(query, note, proofRef, now, id)
	if err != nil {
		return false, fmt.Errorf("failed to update submission draft: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to read rows affected: %w", err)
	}
	return n > 0, nil
}

// ReopenSubmission is the resubmission write: REJECTED -> PENDING with a
// version bump, guarded on current status so a concurrent finalize loses
// cleanly. Returns false when the guard did not match.
func (s *BaseStore) ReopenSubmission(id, note, proofRef string, now int64) (bool, error) {
	query := s.Converter(`
		UPDATE submissions
		SET status = 'PENDING', version = version + 1, note = ?, proof_ref = ?, updated_at = ?
		WHERE id = ? AND status = 'REJECTED'
	`)
	res, err := s.DB.Exec(query, note, proofRef, now, id)
	if err != nil {
		return false, fmt.Errorf("failed to reopen submission: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to read rows affected: %w", err)
	}
	return n > 0, nil
}

// TransitionStatus is a compare-and-swap on (id, version, from). Returns
// false when the row was already moved by a concurrent writer.
func (s *BaseStore) TransitionStatus(id string, version int, from, to models.Status, now int64) (bool, error) {
	query := s.Converter(`
		UPDATE submissions
		SET status = ?, updated_at = ?
		WHERE id = ? AND version = ? AND status = ?
	`)
	res, err := s.DB.Exec(query, string(to), now, id, version, string(from))
	if err != nil {
		return false, fmt.Errorf("failed to transition submission status: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to read rows affected: %w", err)
	}
	return n > 0, nil
}

func (s *BaseStore) DeleteSubmission(id string) error {
	query := s.Converter(`DELETE FROM submissions WHERE id = ?`)
	if _, err := s.DB.Exec(query, id); err != nil {
		return fmt.Errorf("failed to delete submission: %w", err)
	}
	return nil
}

// ListPendingForReviewer returns pending submissions the reviewer has not
// yet decided on for their current version, excluding their own. Role
// routing is applied by the caller; ordering is stable by creation time.
func (s *BaseStore) ListPendingForReviewer(reviewerID, day string) ([]models.Submission, error) {
	var subs []models.Submission
	query := s.Converter(`
		SELECT s.id, s.owner_id, s.owner_role, s.task_id, s.day, s.note, s.proof_ref, s.status, s.version, s.created_at, s.updated_at
		FROM submissions s
		WHERE s.status = 'PENDING'
		AND s.owner_id <> ?
		AND (? = '' OR s.day = ?)
		AND NOT EXISTS (
			SELECT 1 FROM decisions d
			WHERE d.submission_id = s.id
			AND d.version = s.version
			AND d.reviewer_id = ?
		)
		ORDER BY s.created_at ASC, s.id ASC
	`)

	err := s.DB.Select(&subs, query, reviewerID, day, day, reviewerID)
	if err != nil {
		return nil, fmt.Errorf("failed to list pending submissions: %w", err)
	}
	return subs, nil
}

func (s *BaseStore) ListVerifiedByOwner(ownerID, day string) ([]models.Submission, error) {
	var subs []models.Submission
	query := s.Converter(`
		SELECT id, owner_id, owner_role, task_id, day, note, proof_ref, status, version, created_at, updated_at
		FROM submissions
		WHERE owner_id = ?
		AND day = ?
		AND status = 'VERIFIED'
		ORDER BY created_at ASC, id ASC
	`)

	err := s.DB.Select(&subs, query, ownerID, day)
	if err != nil {
		return nil, fmt.Errorf("failed to list verified submissions: %w", err)
	}
	return subs, nil
}

func (s *BaseStore) UpsertDecision(d models.Decision) error {
	_, err := s.DB.NamedExec(`
		INSERT INTO decisions (submission_id, version, reviewer_id, reviewer_role, verdict, comment, decided_at)
		VALUES (:submission_id, :version, :reviewer_id, :reviewer_role, :verdict, :comment, :decided_at)
		ON CONFLICT(submission_id, version, reviewer_id) DO UPDATE SET
		verdict = :verdict,
		comment = :comment,
		decided_at = :decided_at
	`, d)
	if err != nil {
		return fmt.Errorf("failed to upsert decision: %w", err)
	}
	return nil
}

// ListLiveDecisions returns decisions for the submission's current version.
// Rows for older versions are audit history and stay out of the aggregate.
func (s *BaseStore) ListLiveDecisions(submissionID string, version int) ([]models.Decision, error) {
	var decisions []models.Decision
	query := s.Converter(`
		SELECT submission_id, version, reviewer_id, reviewer_role, verdict, comment, decided_at
		FROM decisions
		WHERE submission_id = ?
		AND version = ?
		ORDER BY decided_at ASC, reviewer_id ASC
	`)

	err := s.DB.Select(&decisions, query, submissionID, version)
	if err != nil {
		return nil, fmt.Errorf("failed to list decisions: %w", err)
	}
	return decisions, nil
}

func (s *BaseStore) GetTask(id string) (*models.Task, error) {
	var task models.Task
	query := s.Converter(`
		SELECT id, title, points, eligible_role, active
		FROM tasks
		WHERE id = ?
	`)

	err := s.DB.Get(&task, query, id)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get task: %w", err)
	}
	return &task, nil
}

func (s *BaseStore) ListActiveTasks() ([]models.Task, error) {
	var tasks []models.Task
	err := s.DB.Select(&tasks, `
		SELECT id, title, points, eligible_role, active
		FROM tasks
		WHERE active
		ORDER BY id
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to list active tasks: %w", err)
	}
	return tasks, nil
}

func (s *BaseStore) ListTasks() ([]models.Task, error) {
	var tasks []models.Task
	err := s.DB.Select(&tasks, `
		SELECT id, title, points, eligible_role, active
		FROM tasks
		ORDER BY id
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to list tasks: %w", err)
	}
	return tasks, nil
}

func (s *BaseStore) SaveTask(t models.Task) error {
	_, err := s.DB.NamedExec(`
		INSERT INTO tasks (id, title, points, eligible_role, active)
		VALUES (:id, :title, :points, :eligible_role, :active)
		ON CONFLICT(id) DO UPDATE SET
		title = :title,
		points = :points,
		eligible_role = :eligible_role,
		active = :active
	`, t)
	if err != nil {
		return fmt.Errorf("failed to save task: %w", err)
	}
	return nil
}

func (s *BaseStore) SaveScoreSnapshot(snap models.ScoreSnapshot) error {
	_, err := s.DB.NamedExec(`
		INSERT INTO score_snapshots (user_id, day, raw_points, proof_bonus, verify_bonus, total)
		VALUES (:user_id, :day, :raw_points, :proof_bonus, :verify_bonus, :total)
		ON CONFLICT(user_id, day) DO UPDATE SET
		raw_points = :raw_points,
		proof_bonus = :proof_bonus,
		verify_bonus = :verify_bonus,
		total = :total
	`, snap)
	if err != nil {
		return fmt.Errorf("failed to save score snapshot: %w", err)
	}
	return nil
}

func (s *BaseStore) GetScoreSnapshot(userID, day string) (*models.ScoreSnapshot, error) {
	var snap models.ScoreSnapshot
	query := s.Converter(`
		SELECT user_id, day, raw_points, proof_bonus, verify_bonus, total
		FROM score_snapshots
		WHERE user_id = ?
		AND day = ?
	`)

	err := s.DB.Get(&snap, query, userID, day)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get score snapshot: %w", err)
	}
	return &snap, nil
}

// FetchLifetimeBoard sums daily snapshots per user. The role shown is the
// one snapshotted on the user's most recent submission.
func (s *BaseStore) FetchLifetimeBoard() ([]models.BoardRow, error) {
	var rows []models.BoardRow
	err := s.DB.Select(&rows, `
		SELECT
			ss.user_id,
			COALESCE((
				SELECT sub.owner_role FROM submissions sub
				WHERE sub.owner_id = ss.user_id
				ORDER BY sub.updated_at DESC, sub.id DESC
				LIMIT 1
			), '') AS role,
			COALESCE((
				SELECT COUNT(*) FROM submissions sub
				WHERE sub.owner_id = ss.user_id
				AND sub.status = 'VERIFIED'
			), 0) AS tasks_approved,
			SUM(ss.total) AS total
		FROM score_snapshots ss
		GROUP BY ss.user_id
		ORDER BY total DESC, ss.user_id ASC
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch lifetime board: %w", err)
	}
	return rows, nil
}
