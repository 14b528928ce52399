// Package view interprets a perspective's declarative filter and sort
// rules and resolves which actions the perspective shows right now.
package view

import (
	"errors"
	"fmt"
	"time"

	"github.com/tendtool/tend/internal/task"
)

// Error variables for rule interpretation.
var (
	// ErrUnsupportedOperator means a filter rule used an operator that
	// is not valid for its field. The compiled predicate fails closed:
	// it matches nothing, so a misconfigured rule never exposes data
	// its author did not intend to show.
	ErrUnsupportedOperator = errors.New("unsupported filter operator for field")

	// ErrInvalidRuleValue means a filter rule's value has the wrong
	// shape for its field. Fails closed like ErrUnsupportedOperator.
	ErrInvalidRuleValue = errors.New("invalid filter rule value")
)

// Predicate is one node of a compiled filter tree. The closed set of
// implementations below is the entire rule vocabulary; the store
// compiles the same tree to SQL, so adding a node means teaching both
// interpreters.
type Predicate interface {
	Matches(a *task.Action) bool
}

// And matches when every child matches. An empty And matches everything.
type And struct {
	Children []Predicate
}

// Matches implements Predicate.
func (p And) Matches(a *task.Action) bool {
	for _, child := range p.Children {
		if !child.Matches(a) {
			return false
		}
	}

	return true
}

// Nothing matches no action. It is the fail-closed result of an
// unsupported or malformed rule.
type Nothing struct{}

// Matches implements Predicate.
func (Nothing) Matches(*task.Action) bool { return false }

// InboxIs constrains inbox membership. By invariant, inbox membership
// and "has no project" are the same condition.
type InboxIs struct {
	Inbox bool
}

// Matches implements Predicate.
func (p InboxIs) Matches(a *task.Action) bool { return a.IsInbox() == p.Inbox }

// FlaggedIs matches by the flagged bit.
type FlaggedIs struct {
	Flagged bool
}

// Matches implements Predicate.
func (p FlaggedIs) Matches(a *task.Action) bool { return a.Flagged == p.Flagged }

// StatusIs matches by exact status.
type StatusIs struct {
	Status task.Status
}

// Matches implements Predicate.
func (p StatusIs) Matches(a *task.Action) bool { return a.Status == p.Status }

// ProjectIs matches actions belonging to one project.
type ProjectIs struct {
	ProjectID string
}

// Matches implements Predicate.
func (p ProjectIs) Matches(a *task.Action) bool {
	return a.ProjectID != nil && *a.ProjectID == p.ProjectID
}

// TagIs matches actions carrying one tag.
type TagIs struct {
	TagID string
}

// Matches implements Predicate.
func (p TagIs) Matches(a *task.Action) bool { return a.HasTag(p.TagID) }

// DueSet constrains due-date presence (isNotNull / isNull).
type DueSet struct {
	Present bool
}

// Matches implements Predicate.
func (p DueSet) Matches(a *task.Action) bool { return (a.DueDate != nil) == p.Present }

// DueBefore matches actions due on or before At.
type DueBefore struct {
	At time.Time
}

// Matches implements Predicate.
func (p DueBefore) Matches(a *task.Action) bool {
	return a.DueDate != nil && !a.DueDate.After(p.At)
}

// DueAfter matches actions due on or after At.
type DueAfter struct {
	At time.Time
}

// Matches implements Predicate.
func (p DueAfter) Matches(a *task.Action) bool {
	return a.DueDate != nil && !a.DueDate.Before(p.At)
}

// DeferAvailable matches actions whose defer date is absent or has
// passed by At. No defer date means "always available", not "never".
type DeferAvailable struct {
	At time.Time
}

// Matches implements Predicate.
func (p DeferAvailable) Matches(a *task.Action) bool {
	return a.DeferDate == nil || !a.DeferDate.After(p.At)
}

// CompileFilters interprets an ordered rule list into a single AND
// predicate. Unknown fields are skipped so perspectives written by a
// newer schema still load. A rule with an unsupported operator or a
// malformed value yields a fail-closed predicate together with the
// error describing the first offending rule.
func CompileFilters(rules []task.FilterRule) (Predicate, error) {
	children := make([]Predicate, 0, len(rules))

	var firstErr error

	for _, rule := range rules {
		pred, known, err := compileRule(rule)
		if err != nil {
			if firstErr == nil {
				firstErr = err
			}

			children = append(children, Nothing{})

			continue
		}

		if !known {
			continue
		}

		children = append(children, pred)
	}

	return And{Children: children}, firstErr
}

// MentionsStatus reports whether any rule filters on the status field.
// The perspective engine applies its active-only baseline only when no
// rule overrides status explicitly.
func MentionsStatus(rules []task.FilterRule) bool {
	for _, rule := range rules {
		if rule.Field == task.FieldStatus {
			return true
		}
	}

	return false
}

func compileRule(rule task.FilterRule) (Predicate, bool, error) {
	switch rule.Field {
	case task.FieldIsInbox:
		return compileEqBool(rule, func(v bool) Predicate { return InboxIs{Inbox: v} })
	case task.FieldFlagged:
		return compileEqBool(rule, func(v bool) Predicate { return FlaggedIs{Flagged: v} })
	case task.FieldStatus:
		if rule.Operator != task.OpEq {
			return nil, true, operatorErr(rule)
		}

		str, ok := rule.Value.(string)
		if !ok || !task.IsValidStatus(task.Status(str)) {
			return nil, true, valueErr(rule)
		}

		return StatusIs{Status: task.Status(str)}, true, nil
	case task.FieldProjectID:
		return compileEqString(rule, func(v string) Predicate { return ProjectIs{ProjectID: v} })
	case task.FieldTagID:
		return compileEqString(rule, func(v string) Predicate { return TagIs{TagID: v} })
	case task.FieldDueDate:
		return compileDueRule(rule)
	case task.FieldDeferDate:
		if rule.Operator != task.OpLte {
			return nil, true, operatorErr(rule)
		}

		at, err := ruleTime(rule)
		if err != nil {
			return nil, true, err
		}

		return DeferAvailable{At: at}, true, nil
	default:
		// Unknown field: ignore for forward compatibility.
		return nil, false, nil
	}
}

func compileDueRule(rule task.FilterRule) (Predicate, bool, error) {
	switch rule.Operator {
	case task.OpIsNotNull:
		return DueSet{Present: true}, true, nil
	case task.OpIsNull:
		return DueSet{Present: false}, true, nil
	case task.OpLte:
		at, err := ruleTime(rule)
		if err != nil {
			return nil, true, err
		}

		return DueBefore{At: at}, true, nil
	case task.OpGte:
		at, err := ruleTime(rule)
		if err != nil {
			return nil, true, err
		}

		return DueAfter{At: at}, true, nil
	default:
		return nil, true, operatorErr(rule)
	}
}

func compileEqBool(rule task.FilterRule, build func(bool) Predicate) (Predicate, bool, error) {
	if rule.Operator != task.OpEq {
		return nil, true, operatorErr(rule)
	}

	v, ok := rule.Value.(bool)
	if !ok {
		return nil, true, valueErr(rule)
	}

	return build(v), true, nil
}

func compileEqString(rule task.FilterRule, build func(string) Predicate) (Predicate, bool, error) {
	if rule.Operator != task.OpEq {
		return nil, true, operatorErr(rule)
	}

	v, ok := rule.Value.(string)
	if !ok || v == "" {
		return nil, true, valueErr(rule)
	}

	return build(v), true, nil
}

// ruleTime parses a rule's timestamp value. Values arrive as RFC3339
// strings from persisted JSON, or as time.Time when built in-process.
func ruleTime(rule task.FilterRule) (time.Time, error) {
	switch v := rule.Value.(type) {
	case time.Time:
		return v, nil
	case string:
		at, err := time.Parse(time.RFC3339, v)
		if err != nil {
			return time.Time{}, valueErr(rule)
		}

		return at, nil
	default:
		return time.Time{}, valueErr(rule)
	}
}

func operatorErr(rule task.FilterRule) error {
	return fmt.Errorf("%w: %s %s", ErrUnsupportedOperator, rule.Field, rule.Operator)
}

func valueErr(rule task.FilterRule) error {
	return fmt.Errorf("%w: %s %s %v", ErrInvalidRuleValue, rule.Field, rule.Operator, rule.Value)
}
