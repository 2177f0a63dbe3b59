package models

import (
	"time"

	"github.com/asaskevich/govalidator"

	id "trafix/pkg/domain"
	dErrors "trafix/pkg/domain-errors"
)

// Rule is a traffic regulation entry. Violations snapshot section, provision,
// fine and points at recording time, so editing a rule never rewrites history.
type Rule struct {
	ID        id.RuleID `json:"id"`
	Section   string    `json:"section"`
	Provision string    `json:"provision"`
	Fine      int64     `json:"fine"`
	Points    int       `json:"points"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

func New(section, provision string, fine int64, points int, now time.Time) *Rule {
	return &Rule{
		ID:        id.NewRuleID(),
		Section:   section,
		Provision: provision,
		Fine:      fine,
		Points:    points,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

func (r *Rule) Validate() error {
	if !govalidator.StringLength(r.Section, "1", "64") {
		return dErrors.New(dErrors.CodeBadRequest, "rule section is required")
	}
	if !govalidator.StringLength(r.Provision, "1", "512") {
		return dErrors.New(dErrors.CodeBadRequest, "rule provision is required")
	}
	if r.Fine < 0 {
		return dErrors.New(dErrors.CodeBadRequest, "fine must not be negative")
	}
	if r.Points < 0 || r.Points > 12 {
		return dErrors.New(dErrors.CodeBadRequest, "points must be between 0 and 12")
	}
	return nil
}
