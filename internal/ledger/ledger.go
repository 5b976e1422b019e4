package ledger

import (
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/founderdesk/daylog/internal/models"
	"github.com/founderdesk/daylog/internal/review"
	"github.com/founderdesk/daylog/internal/store"
)

// Scorer recomputes a user's daily totals after a destructive change.
type Scorer interface {
	Recompute(userID, day string) error
}

// Ledger owns submission records and their lifecycle. One submission exists
// per (owner, task, day); review state moves only through the transitions
// implemented here and in review.Recorder.
type Ledger struct {
	store  store.SubmissionStore
	policy *review.Policy
	scorer Scorer
}

func New(s store.SubmissionStore, policy *review.Policy, scorer Scorer) *Ledger {
	return &Ledger{store: s, policy: policy, scorer: scorer}
}

// Upsert creates or refreshes the (owner, task, day) submission:
//   - no row yet: a new PENDING submission at version 1
//   - PENDING: note/proof update only, review cycle untouched
//   - REJECTED: resubmission, version bump and a fresh review cycle
//   - VERIFIED: refused, verified work is immutable
func (l *Ledger) Upsert(ownerID, ownerRole, taskID, day, note, proofRef string) (*models.Submission, error) {
	now := time.Now().Unix()
	sub := &models.Submission{
		ID:        uuid.NewString(),
		OwnerID:   ownerID,
		OwnerRole: models.NormalizeRole(ownerRole),
		TaskID:    taskID,
		Day:       day,
		Note:      note,
		ProofRef:  proofRef,
		Status:    models.StatusPending,
		Version:   1,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := sub.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %v", store.ErrValidation, err)
	}

	task, err := l.store.GetTask(taskID)
	if err != nil {
		return nil, err
	}
	if task == nil {
		return nil, fmt.Errorf("%w: task %s", store.ErrNotFound, taskID)
	}
	if !task.Active {
		return nil, fmt.Errorf("%w: task %s is no longer active", store.ErrValidation, taskID)
	}
	if !task.OpenTo(sub.OwnerRole) {
		return nil, fmt.Errorf("%w: task %s is not open to role %s", store.ErrNotEligible, taskID, sub.OwnerRole)
	}

	existing, err := l.store.GetSubmission(ownerID, taskID, day)
	if err != nil {
		return nil, err
	}
	if existing == nil {
		if err := l.store.CreateSubmission(sub); err != nil {
			return nil, err
		}
		return sub, nil
	}

	switch existing.Status {
	case models.StatusPending:
		ok, err := l.store.UpdateDraft(existing.ID, note, proofRef, now)
		if err != nil {
			return nil, err
		}
		if !ok {
			// finalized between our status read and the guarded write
			return nil, store.ErrConflict
		}
	case models.StatusRejected:
		ok, err := l.store.ReopenSubmission(existing.ID, note, proofRef, now)
		if err != nil {
			return nil, err
		}
		if !ok {
			return nil, store.ErrConflict
		}
	case models.StatusVerified:
		return nil, store.ErrAlreadyFinalized
	default:
		return nil, fmt.Errorf("submission %s has unknown status %q", existing.ID, existing.Status)
	}

	return l.store.GetSubmissionByID(existing.ID)
}

func (l *Ledger) Get(ownerID, taskID, day string) (*models.Submission, error) {
	sub, err := l.store.GetSubmission(ownerID, taskID, day)
	if err != nil {
		return nil, err
	}
	if sub == nil {
		return nil, store.ErrNotFound
	}
	return sub, nil
}

// ListPendingFor is the reviewer's queue: pending work from other people,
// routed to the reviewer's role, minus anything they already decided on in
// its current version. That last filter is queue presentation only; the
// submission itself stays PENDING for everyone else.
func (l *Ledger) ListPendingFor(reviewerID, reviewerRole, day string) ([]models.Submission, error) {
	subs, err := l.store.ListPendingForReviewer(reviewerID, day)
	if err != nil {
		return nil, err
	}

	queue := make([]models.Submission, 0, len(subs))
	for _, sub := range subs {
		if !l.policy.Allows(sub.OwnerRole, reviewerRole) {
			continue
		}
		queue = append(queue, sub)
	}
	return queue, nil
}

// ListForOwner is the owner's dashboard view: each submission with its live
// approval and rejection counts.
func (l *Ledger) ListForOwner(ownerID, day string) ([]store.OwnerLog, error) {
	return l.store.ListOwnerLogs(ownerID, day)
}

// ListForDay is the admin daily view with per-submission review progress.
func (l *Ledger) ListForDay(day string) ([]store.ReviewStat, error) {
	return l.store.FetchDailyReviewStats(day)
}

// Delete hard-deletes a submission, cascading its decisions, then recomputes
// the owner's day so any verified contribution is subtracted.
func (l *Ledger) Delete(id string) error {
	sub, err := l.store.GetSubmissionByID(id)
	if err != nil {
		return err
	}
	if sub == nil {
		return store.ErrNotFound
	}

	if err := l.store.DeleteSubmission(id); err != nil {
		return err
	}

	return l.scorer.Recompute(sub.OwnerID, sub.Day)
}
