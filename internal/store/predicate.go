package store

import (
	"context"
	"fmt"
	"strings"

	"github.com/tendtool/tend/internal/task"
	"github.com/tendtool/tend/internal/view"
)

// whereFromPredicate compiles a filter-predicate tree into a SQL WHERE
// clause. The tree's node set is closed, so the type switch below is
// the full vocabulary; a node this interpreter does not know is a
// programming error and compiles to the fail-closed clause.
func whereFromPredicate(pred view.Predicate) (string, []any) {
	switch p := pred.(type) {
	case view.And:
		if len(p.Children) == 0 {
			return "1=1", nil
		}

		clauses := make([]string, 0, len(p.Children))
		args := make([]any, 0, len(p.Children))

		for _, child := range p.Children {
			clause, childArgs := whereFromPredicate(child)
			clauses = append(clauses, clause)
			args = append(args, childArgs...)
		}

		return "(" + strings.Join(clauses, " AND ") + ")", args
	case view.Nothing:
		return "0=1", nil
	case view.InboxIs:
		if p.Inbox {
			return "project_id IS NULL", nil
		}

		return "project_id IS NOT NULL", nil
	case view.FlaggedIs:
		return "flagged = ?", []any{boolValue(p.Flagged)}
	case view.StatusIs:
		return "status = ?", []any{string(p.Status)}
	case view.ProjectIs:
		return "project_id = ?", []any{p.ProjectID}
	case view.TagIs:
		return "id IN (SELECT action_id FROM action_tags WHERE tag_id = ?)", []any{p.TagID}
	case view.DueSet:
		if p.Present {
			return "due_date IS NOT NULL", nil
		}

		return "due_date IS NULL", nil
	case view.DueBefore:
		return "due_date IS NOT NULL AND due_date <= ?", []any{p.At.UTC().Unix()}
	case view.DueAfter:
		return "due_date IS NOT NULL AND due_date >= ?", []any{p.At.UTC().Unix()}
	case view.DeferAvailable:
		return "(defer_date IS NULL OR defer_date <= ?)", []any{p.At.UTC().Unix()}
	default:
		return "0=1", nil
	}
}

// QueryPredicate reads the actions matching a compiled filter tree.
// activeOnly adds the engine's status=active baseline. Results come
// back in the default position/created_at order; callers needing a
// perspective's full ordering sort via view.BuildOrder.
func (s *Store) QueryPredicate(ctx context.Context, pred view.Predicate, activeOnly bool) ([]*task.Action, error) {
	clause, args := whereFromPredicate(pred)

	if activeOnly {
		clause = "status = ? AND " + clause

		args = append([]any{string(task.StatusActive)}, args...)
	}

	query := fmt.Sprintf(
		"SELECT %s FROM actions WHERE %s ORDER BY position, created_at, id",
		actionColumns, clause)

	return s.queryActions(ctx, query, args...)
}
