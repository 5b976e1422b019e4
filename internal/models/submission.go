package models

import (
	"strings"

	"github.com/go-playground/validator/v10"
)

type Status string

const (
	StatusPending  Status = "PENDING"
	StatusVerified Status = "VERIFIED"
	StatusRejected Status = "REJECTED"
)

type Verdict string

const (
	VerdictApprove Verdict = "APPROVE"
	VerdictReject  Verdict = "REJECT"
)

// Submission is one user's declared completion of one task on one day.
// Exactly one row exists per (owner_id, task_id, day); resubmission after a
// rejection bumps Version and starts a fresh review cycle.
type Submission struct {
	ID        string `db:"id" json:"id"`
	OwnerID   string `db:"owner_id" json:"owner_id" validate:"required"`
	OwnerRole string `db:"owner_role" json:"owner_role" validate:"required"`
	TaskID    string `db:"task_id" json:"task_id" validate:"required"`
	Day       string `db:"day" json:"day" validate:"required,datetime=2006-01-02"`
	Note      string `db:"note" json:"note" validate:"required"`
	ProofRef  string `db:"proof_ref" json:"proof_ref,omitempty"`
	Status    Status `db:"status" json:"status"`
	Version   int    `db:"version" json:"version"`
	CreatedAt int64  `db:"created_at" json:"created_at"`
	UpdatedAt int64  `db:"updated_at" json:"updated_at"`
}

// Decision is one reviewer's verdict on one submission version. A repeat
// decision from the same reviewer on the same version overwrites the earlier
// one; rows for older versions stay around as audit history.
type Decision struct {
	SubmissionID string  `db:"submission_id" json:"submission_id" validate:"required"`
	Version      int     `db:"version" json:"version"`
	ReviewerID   string  `db:"reviewer_id" json:"reviewer_id" validate:"required"`
	ReviewerRole string  `db:"reviewer_role" json:"reviewer_role" validate:"required"`
	Verdict      Verdict `db:"verdict" json:"verdict" validate:"required,oneof=APPROVE REJECT"`
	Comment      string  `db:"comment" json:"comment"`
	DecidedAt    int64   `db:"decided_at" json:"decided_at"`
}

func (s *Submission) Validate() error {
	validate := validator.New()
	return validate.Struct(s)
}

func (d *Decision) Validate() error {
	validate := validator.New()
	return validate.Struct(d)
}

// NormalizeRole upper-cases and collapses whitespace so that role strings
// coming from different clients compare equal ("Marketing  manager" etc).
func NormalizeRole(role string) string {
	return strings.Join(strings.Fields(strings.ToUpper(role)), " ")
}
