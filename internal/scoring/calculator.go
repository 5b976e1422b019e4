// internal/scoring/calculator.go
package scoring

import (
	"fmt"

	"github.com/shrimpsizemoose/trekker/logger"

	"github.com/founderdesk/daylog/internal/models"
	"github.com/founderdesk/daylog/internal/store"
)

// Calculator derives score snapshots from verified submissions. Bonuses are
// flat per-submission increments: ProofBonus for evidence-backed work,
// VerifyBonus for clearing review at all.
type Calculator struct {
	store       store.SubmissionStore
	ProofBonus  int `toml:"proof_bonus"`
	VerifyBonus int `toml:"verify_bonus"`
}

func NewCalculator(s store.SubmissionStore, proofBonus, verifyBonus int) *Calculator {
	return &Calculator{
		store:       s,
		ProofBonus:  proofBonus,
		VerifyBonus: verifyBonus,
	}
}

// Recompute rebuilds the (userID, day) snapshot from scratch and upserts it.
// Running it twice on unchanged data writes the same numbers, and a deleted
// or re-rejected submission simply drops out of the next rebuild, so nothing
// ever double-counts.
func (c *Calculator) Recompute(userID, day string) error {
	snap, err := c.compute(userID, day)
	if err != nil {
		return err
	}

	if err := c.store.SaveScoreSnapshot(snap); err != nil {
		return fmt.Errorf("failed to persist score snapshot: %w", err)
	}
	return nil
}

// Score recomputes and returns the daily snapshot. Snapshots are derived
// state, so serving a fresh rebuild is always correct.
func (c *Calculator) Score(userID, day string) (*models.ScoreSnapshot, error) {
	if err := c.Recompute(userID, day); err != nil {
		return nil, err
	}
	return c.store.GetScoreSnapshot(userID, day)
}

// LifetimeBoard returns per-user lifetime totals sorted by the store query.
func (c *Calculator) LifetimeBoard() ([]models.BoardRow, error) {
	rows, err := c.store.FetchLifetimeBoard()
	if err != nil {
		return nil, fmt.Errorf("failed to fetch lifetime board: %w", err)
	}
	return rows, nil
}

func (c *Calculator) compute(userID, day string) (models.ScoreSnapshot, error) {
	snap := models.ScoreSnapshot{UserID: userID, Day: day}

	subs, err := c.store.ListVerifiedByOwner(userID, day)
	if err != nil {
		return snap, err
	}

	for _, sub := range subs {
		task, err := c.store.GetTask(sub.TaskID)
		if err != nil {
			return snap, err
		}
		if task == nil {
			logger.Error.Printf("Verified submission %s references missing task %s", sub.ID, sub.TaskID)
			continue
		}

		snap.RawPoints += task.Points
		snap.VerifyBonus += c.VerifyBonus
		if sub.ProofRef != "" {
			snap.ProofBonus += c.ProofBonus
		}
	}

	snap.Total = snap.RawPoints + snap.ProofBonus + snap.VerifyBonus
	return snap, nil
}
