// Package validate evaluates declarative rulesets against submitted data.
// Only the first violation is surfaced, in ruleset order (email before
// password), so callers always get a single message.
package validate

import (
	"fmt"
	"strings"
)

// Violation is the single surfaced rule failure. A nil *Violation means valid.
type Violation struct {
	Field   string
	Message string
}

type Constraint interface {
	// Check returns an empty string when the value passes.
	Check(field, value string) string
}

type Presence struct{}

func (Presence) Check(field, value string) string {
	if strings.TrimSpace(value) == "" {
		return title(field) + " can't be blank"
	}
	return ""
}

type MinLength struct{ Min int }

func (m MinLength) Check(_, value string) string {
	if value == "" {
		return "" // presence is its own rule
	}
	if len(value) < m.Min {
		return fmt.Sprintf("must be at least %d characters", m.Min)
	}
	return ""
}

// Exclusion rejects values that are members of a point-in-time snapshot.
// It is a fast-path UX hint only; the store's unique index is the real
// uniqueness guarantee.
type Exclusion struct{ Within []string }

func (e Exclusion) Check(_, value string) string {
	for _, w := range e.Within {
		if w == value {
			return fmt.Sprintf("'%s' is already used", value)
		}
	}
	return ""
}

type FieldRule struct {
	Field       string
	Constraints []Constraint
}

type Ruleset []FieldRule

// Evaluate checks fields in ruleset order and constraints in declaration
// order, stopping at the first violation.
func (rs Ruleset) Evaluate(data map[string]string) *Violation {
	for _, fr := range rs {
		for _, c := range fr.Constraints {
			if msg := c.Check(fr.Field, data[fr.Field]); msg != "" {
				return &Violation{Field: fr.Field, Message: msg}
			}
		}
	}
	return nil
}

// RegisterRules builds the registration ruleset against the current email
// snapshot.
func RegisterRules(emails []string) Ruleset {
	return Ruleset{
		{Field: "email", Constraints: []Constraint{Presence{}, Exclusion{Within: emails}}},
		{Field: "password", Constraints: []Constraint{Presence{}, MinLength{Min: 8}}},
	}
}

// LoginRules checks presence only; format was already enforced at
// registration.
func LoginRules() Ruleset {
	return Ruleset{
		{Field: "email", Constraints: []Constraint{Presence{}}},
		{Field: "password", Constraints: []Constraint{Presence{}}},
	}
}

func title(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}
