package review

import (
	"github.com/founderdesk/daylog/internal/models"
)

// Policy decides which roles may review a given owner's submission. The
// escalation table is data-driven so new rules stay additive; any owner role
// without a table entry falls back to default-allow, meaning every known
// role except the owner's own. Self-review is an identity check, not a role
// check, and is enforced by the recorder regardless of this table.
type Policy struct {
	roles   []string
	routing map[string][]string
}

// NewPolicy normalizes the role universe and the escalation table. It never
// fails; unknown roles in the table are kept verbatim after normalization.
func NewPolicy(roles []string, routing map[string][]string) *Policy {
	normed := make([]string, 0, len(roles))
	for _, r := range roles {
		normed = append(normed, models.NormalizeRole(r))
	}

	table := make(map[string][]string, len(routing))
	for owner, reviewers := range routing {
		rs := make([]string, 0, len(reviewers))
		for _, r := range reviewers {
			rs = append(rs, models.NormalizeRole(r))
		}
		table[models.NormalizeRole(owner)] = rs
	}

	return &Policy{roles: normed, routing: table}
}

// DefaultPolicy ships the observed escalation rule: the most senior role is
// reviewed only by its peers, everyone else by anyone but themselves.
func DefaultPolicy() *Policy {
	return NewPolicy(
		[]string{"CEO", "COO", "MARKETING"},
		map[string][]string{
			"CEO": {"COO", "MARKETING"},
		},
	)
}

// Allows reports whether reviewerRole may review work owned by ownerRole.
// Pure and total.
func (p *Policy) Allows(ownerRole, reviewerRole string) bool {
	owner := models.NormalizeRole(ownerRole)
	reviewer := models.NormalizeRole(reviewerRole)

	if allowed, ok := p.routing[owner]; ok {
		for _, r := range allowed {
			if r == reviewer {
				return true
			}
		}
		return false
	}

	return reviewer != owner
}

// EligibleReviewers enumerates the known roles allowed to review ownerRole's
// submissions, in the policy's stable role order.
func (p *Policy) EligibleReviewers(ownerRole string) []string {
	eligible := make([]string, 0, len(p.roles))
	for _, r := range p.roles {
		if p.Allows(ownerRole, r) {
			eligible = append(eligible, r)
		}
	}
	return eligible
}
