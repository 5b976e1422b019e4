package store

import "github.com/founderdesk/daylog/internal/models"

type DatabaseType string

const (
	DBTypePostgres DatabaseType = "postgres"
	DBTypeSQLite   DatabaseType = "sqlite"
)

type DBConfig struct {
	DSN  string
	Type DatabaseType
}

// OwnerLog is one row of the owner's dashboard: the submission plus its live
// review progress.
type OwnerLog struct {
	models.Submission
	Approvals  int64 `db:"approvals" json:"approvals"`
	Rejections int64 `db:"rejections" json:"rejections"`
}

// ReviewStat is one submission's review progress for the admin daily view.
type ReviewStat struct {
	SubmissionID string `db:"submission_id"`
	OwnerID      string `db:"owner_id"`
	OwnerRole    string `db:"owner_role"`
	TaskID       string `db:"task_id"`
	Status       string `db:"status"`
	Approvals    int64  `db:"approvals"`
	Rejections   int64  `db:"rejections"`
}
