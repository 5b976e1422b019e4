package review

import (
	"fmt"
	"time"

	"github.com/founderdesk/daylog/internal/models"
	"github.com/founderdesk/daylog/internal/store"
)

// DefaultRequiredApprovals is how many live approvals finalize a submission.
const DefaultRequiredApprovals = 2

// Scorer recomputes a user's daily totals. Satisfied by scoring.Calculator.
type Scorer interface {
	Recompute(userID, day string) error
}

// Recorder validates and records reviewer decisions and drives the
// submission state machine: PENDING is the only non-terminal state, a single
// rejection short-circuits to REJECTED, enough approvals finalize to
// VERIFIED. REJECTED is exitable only through resubmission in the ledger;
// VERIFIED is terminal.
type Recorder struct {
	store             store.SubmissionStore
	policy            *Policy
	scorer            Scorer
	requiredApprovals int
}

func NewRecorder(s store.SubmissionStore, policy *Policy, scorer Scorer, requiredApprovals int) *Recorder {
	if requiredApprovals <= 0 {
		requiredApprovals = DefaultRequiredApprovals
	}
	return &Recorder{
		store:             s,
		policy:            policy,
		scorer:            scorer,
		requiredApprovals: requiredApprovals,
	}
}

// Decide records one reviewer's verdict and re-evaluates consensus. A repeat
// decision from the same reviewer on the same version overwrites the earlier
// one, which keeps retries idempotent. Returns the submission with its
// post-decision status.
func (r *Recorder) Decide(submissionID, reviewerID, reviewerRole string, verdict models.Verdict, comment string) (*models.Submission, error) {
	sub, err := r.store.GetSubmissionByID(submissionID)
	if err != nil {
		return nil, err
	}
	if sub == nil {
		return nil, store.ErrNotFound
	}
	if sub.Status != models.StatusPending {
		return nil, store.ErrNotReviewable
	}
	if sub.OwnerID == reviewerID {
		return nil, store.ErrNotEligible
	}
	if !r.policy.Allows(sub.OwnerRole, reviewerRole) {
		return nil, store.ErrNotEligible
	}

	decision := models.Decision{
		SubmissionID: sub.ID,
		Version:      sub.Version,
		ReviewerID:   reviewerID,
		ReviewerRole: models.NormalizeRole(reviewerRole),
		Verdict:      verdict,
		Comment:      comment,
		DecidedAt:    time.Now().Unix(),
	}
	if err := decision.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %v", store.ErrValidation, err)
	}

	if err := r.store.UpsertDecision(decision); err != nil {
		return nil, err
	}

	live, err := r.store.ListLiveDecisions(sub.ID, sub.Version)
	if err != nil {
		return nil, err
	}

	next := Consensus(live, r.requiredApprovals)
	if next == models.StatusPending {
		return sub, nil
	}

	ok, err := r.store.TransitionStatus(sub.ID, sub.Version, models.StatusPending, next, time.Now().Unix())
	if err != nil {
		return nil, err
	}
	if !ok {
		// someone else finalized or the owner resubmitted in between,
		// caller should retry against fresh state
		return nil, store.ErrConflict
	}
	sub.Status = next

	if next == models.StatusVerified {
		if err := r.scorer.Recompute(sub.OwnerID, sub.Day); err != nil {
			return nil, fmt.Errorf("failed to recompute score after verification: %w", err)
		}
	}

	return sub, nil
}

// Consensus aggregates live decisions into a status. Any reject wins
// immediately; approvals only finalize once there are enough of them.
func Consensus(decisions []models.Decision, requiredApprovals int) models.Status {
	approvals := 0
	for _, d := range decisions {
		if d.Verdict == models.VerdictReject {
			return models.StatusRejected
		}
		if d.Verdict == models.VerdictApprove {
			approvals++
		}
	}
	if approvals >= requiredApprovals {
		return models.StatusVerified
	}
	return models.StatusPending
}
