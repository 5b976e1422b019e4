package models

import "github.com/go-playground/validator/v10"

// RoleAll marks a task submittable by any role.
const RoleAll = "ALL"

type Task struct {
	ID           string `db:"id" json:"id" validate:"required"`
	Title        string `db:"title" json:"title" validate:"required"`
	Points       int    `db:"points" json:"points" validate:"required,gt=0"`
	EligibleRole string `db:"eligible_role" json:"eligible_role" validate:"required"`
	Active       bool   `db:"active" json:"active"`
}

func (t *Task) Validate() error {
	validate := validator.New()
	return validate.Struct(t)
}

// OpenTo reports whether a user with the given role may submit this task.
// Deactivation is checked separately: it only hides the task from new
// submissions and never touches past ones.
func (t *Task) OpenTo(role string) bool {
	if t.EligibleRole == RoleAll {
		return true
	}
	return NormalizeRole(t.EligibleRole) == NormalizeRole(role)
}
