package models

// ScoreSnapshot is a derived per-(user, day) total. It is recomputed from
// verified submissions and never hand-edited.
type ScoreSnapshot struct {
	UserID      string `db:"user_id" json:"user_id"`
	Day         string `db:"day" json:"day"`
	RawPoints   int    `db:"raw_points" json:"raw_points"`
	ProofBonus  int    `db:"proof_bonus" json:"proof_bonus"`
	VerifyBonus int    `db:"verify_bonus" json:"verify_bonus"`
	Total       int    `db:"total" json:"total"`
}

// BoardRow is one line of the lifetime scoreboard.
type BoardRow struct {
	UserID        string `db:"user_id" json:"user_id"`
	Role          string `db:"role" json:"role"`
	TasksApproved int    `db:"tasks_approved" json:"tasks_approved"`
	Total         int    `db:"total" json:"total"`
}
