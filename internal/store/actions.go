package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/tendtool/tend/internal/recur"
	"github.com/tendtool/tend/internal/task"
)

const actionColumns = `id, title, note, status, flagged, defer_date, due_date, planned_date,
	completed_at, dropped_at, estimated_minutes, project_id, parent_id, position,
	repeat_mode, repeat_interval, repeat_end_date, repeat_end_count, repeat_count, created_at`

// CreateAction inserts an action and its tag associations. An empty ID
// is assigned a fresh one; a zero Position is assigned the next slot
// within the action's container. Returns the stored action's ID.
func (s *Store) CreateAction(ctx context.Context, a *task.Action) (string, error) {
	if a.Title == "" {
		return "", task.ErrTitleRequired
	}

	if a.EstimatedMinutes < 0 {
		return "", task.ErrEstimateNegative
	}

	id := a.ID
	if id == "" {
		id = NewID()
	}

	err := s.inTx(ctx, func(tx *sql.Tx) error {
		if a.Position == 0 {
			next, posErr := nextPosition(ctx, tx, a.ProjectID)
			if posErr != nil {
				return posErr
			}

			a.Position = next
		}

		return insertAction(ctx, tx, id, a)
	})
	if err != nil {
		return "", err
	}

	return id, nil
}

// nextPosition returns the next manual-ordering slot within a project,
// or within the inbox when projectID is nil.
func nextPosition(ctx context.Context, tx *sql.Tx, projectID *string) (int, error) {
	var row *sql.Row

	if projectID == nil {
		row = tx.QueryRowContext(ctx,
			"SELECT COALESCE(MAX(position), 0) + 1 FROM actions WHERE project_id IS NULL")
	} else {
		row = tx.QueryRowContext(ctx,
			"SELECT COALESCE(MAX(position), 0) + 1 FROM actions WHERE project_id = ?", *projectID)
	}

	var next int
	if err := row.Scan(&next); err != nil {
		return 0, fmt.Errorf("next position: %w", err)
	}

	return next, nil
}

func insertAction(ctx context.Context, tx *sql.Tx, id string, a *task.Action) error {
	_, err := tx.ExecContext(ctx, `
		INSERT INTO actions (`+actionColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		id,
		a.Title,
		a.Note,
		string(a.Status),
		boolValue(a.Flagged),
		nullTimeValue(a.DeferDate),
		nullTimeValue(a.DueDate),
		nullTimeValue(a.PlannedDate),
		nullTimeValue(a.CompletedAt),
		nullTimeValue(a.DroppedAt),
		a.EstimatedMinutes,
		nullStringValue(a.ProjectID),
		nullStringValue(a.ParentID),
		a.Position,
		string(a.Repeat.Mode),
		a.Repeat.Interval,
		nullTimeValue(a.Repeat.EndDate),
		a.Repeat.EndCount,
		a.Repeat.Count,
		a.CreatedAt.UTC().Unix(),
	)
	if err != nil {
		return fmt.Errorf("insert action: %w", err)
	}

	for _, tagID := range a.TagIDs {
		_, err = tx.ExecContext(ctx,
			"INSERT OR IGNORE INTO action_tags (action_id, tag_id) VALUES (?, ?)",
			id, tagID)
		if err != nil {
			return fmt.Errorf("insert action tag: %w", err)
		}
	}

	return nil
}

// GetAction fetches one action with its tag associations. id may be a
// unique prefix of the full ID.
func (s *Store) GetAction(ctx context.Context, id string) (*task.Action, error) {
	if id == "" {
		return nil, task.ErrIDRequired
	}

	row := s.sql.QueryRowContext(ctx,
		"SELECT "+actionColumns+" FROM actions WHERE id = ?", id)

	a, err := scanAction(row)
	if errors.Is(err, sql.ErrNoRows) {
		full, resolveErr := resolvePrefix(ctx, s.sql, "actions", task.ErrActionNotFound, id)
		if resolveErr != nil {
			return nil, resolveErr
		}

		row = s.sql.QueryRowContext(ctx,
			"SELECT "+actionColumns+" FROM actions WHERE id = ?", full)
		a, err = scanAction(row)
	}

	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("%w: %s", task.ErrActionNotFound, id)
		}

		return nil, err
	}

	err = s.loadTags(ctx, []*task.Action{a})
	if err != nil {
		return nil, err
	}

	return a, nil
}

// ListOptions defines optional filters for ListActions. Zero values
// mean "no filter". Results are ordered by position, then created_at.
type ListOptions struct {
	Status    task.Status // exact status when non-empty
	ProjectID string      // exact project when non-empty
	InboxOnly bool        // restrict to actions without a project
	TagID     string      // actions carrying this tag when non-empty
	ParentID  string      // subtasks of this action when non-empty
	TopLevel  bool        // restrict to actions without a parent
	Flagged   bool        // restrict to flagged actions
	DueBy     *time.Time  // due on or before
	DeferBy   *time.Time  // defer date absent or passed by this time
	Limit     int         // caps rows when > 0
	Offset    int         // skips rows when > 0
}

// ListActions reads actions matching the options.
func (s *Store) ListActions(ctx context.Context, opts *ListOptions) ([]*task.Action, error) {
	options := ListOptions{}
	if opts != nil {
		options = *opts
	}

	if options.Limit < 0 || options.Offset < 0 {
		return nil, errors.New("list actions: limit/offset must be non-negative")
	}

	clauses := make([]string, 0, 8)
	args := make([]any, 0, 8)

	if options.Status != "" {
		clauses = append(clauses, "status = ?")
		args = append(args, string(options.Status))
	}

	if options.ProjectID != "" {
		clauses = append(clauses, "project_id = ?")
		args = append(args, options.ProjectID)
	}

	if options.InboxOnly {
		clauses = append(clauses, "project_id IS NULL")
	}

	if options.TagID != "" {
		clauses = append(clauses, "id IN (SELECT action_id FROM action_tags WHERE tag_id = ?)")
		args = append(args, options.TagID)
	}

	if options.ParentID != "" {
		clauses = append(clauses, "parent_id = ?")
		args = append(args, options.ParentID)
	}

	if options.TopLevel {
		clauses = append(clauses, "parent_id IS NULL")
	}

	if options.Flagged {
		clauses = append(clauses, "flagged = 1")
	}

	if options.DueBy != nil {
		clauses = append(clauses, "due_date IS NOT NULL AND due_date <= ?")
		args = append(args, options.DueBy.UTC().Unix())
	}

	if options.DeferBy != nil {
		clauses = append(clauses, "(defer_date IS NULL OR defer_date <= ?)")
		args = append(args, options.DeferBy.UTC().Unix())
	}

	query := strings.Builder{}
	query.WriteString("SELECT " + actionColumns + " FROM actions")

	if len(clauses) > 0 {
		query.WriteString(" WHERE ")
		query.WriteString(strings.Join(clauses, " AND "))
	}

	query.WriteString(" ORDER BY position, created_at, id")

	if options.Limit > 0 {
		query.WriteString(" LIMIT ?")
		args = append(args, options.Limit)

		if options.Offset > 0 {
			query.WriteString(" OFFSET ?")
			args = append(args, options.Offset)
		}
	} else if options.Offset > 0 {
		// SQLite allows LIMIT -1 to indicate "no limit" while applying OFFSET.
		query.WriteString(" LIMIT -1 OFFSET ?")
		args = append(args, options.Offset)
	}

	actions, err := s.queryActions(ctx, query.String(), args...)
	if err != nil {
		return nil, err
	}

	return actions, nil
}

func (s *Store) queryActions(ctx context.Context, query string, args ...any) ([]*task.Action, error) {
	rows, err := s.sql.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query actions: %w", err)
	}

	defer func() { _ = rows.Close() }()

	actions := make([]*task.Action, 0)

	for rows.Next() {
		a, scanErr := scanAction(rows)
		if scanErr != nil {
			return nil, scanErr
		}

		actions = append(actions, a)
	}

	err = rows.Err()
	if err != nil {
		return nil, fmt.Errorf("query actions: rows: %w", err)
	}

	err = s.loadTags(ctx, actions)
	if err != nil {
		return nil, err
	}

	return actions, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanAction(row rowScanner) (*task.Action, error) {
	var (
		a         task.Action
		status    string
		flagged   int
		deferDate sql.NullInt64
		dueDate   sql.NullInt64
		planned   sql.NullInt64
		completed sql.NullInt64
		dropped   sql.NullInt64
		projectID sql.NullString
		parentID  sql.NullString
		repMode   string
		repIvl    string
		repEnd    sql.NullInt64
		repEndCnt int
		repCount  int
		createdAt int64
	)

	err := row.Scan(
		&a.ID,
		&a.Title,
		&a.Note,
		&status,
		&flagged,
		&deferDate,
		&dueDate,
		&planned,
		&completed,
		&dropped,
		&a.EstimatedMinutes,
		&projectID,
		&parentID,
		&a.Position,
		&repMode,
		&repIvl,
		&repEnd,
		&repEndCnt,
		&repCount,
		&createdAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}

		return nil, fmt.Errorf("scan action: %w", err)
	}

	a.Status = task.Status(status)
	a.Flagged = flagged != 0
	a.DeferDate = timeFromNull(deferDate)
	a.DueDate = timeFromNull(dueDate)
	a.PlannedDate = timeFromNull(planned)
	a.CompletedAt = timeFromNull(completed)
	a.DroppedAt = timeFromNull(dropped)
	a.ProjectID = stringFromNull(projectID)
	a.ParentID = stringFromNull(parentID)
	a.Repeat = repeatFromRow(repMode, repIvl, repEnd, repEndCnt, repCount)
	a.CreatedAt = time.Unix(createdAt, 0).UTC()
	a.TagIDs = []string{}

	return &a, nil
}

// loadTags fills TagIDs for the given actions in one query.
func (s *Store) loadTags(ctx context.Context, actions []*task.Action) error {
	if len(actions) == 0 {
		return nil
	}

	indexByID := make(map[string]int, len(actions))
	placeholders := make([]string, 0, len(actions))
	args := make([]any, 0, len(actions))

	for i, a := range actions {
		indexByID[a.ID] = i

		placeholders = append(placeholders, "?")
		args = append(args, a.ID)
	}

	// ORDER BY keeps tag lists stable across queries.
	rows, err := s.sql.QueryContext(ctx, `
		SELECT action_id, tag_id FROM action_tags
		WHERE action_id IN (`+strings.Join(placeholders, ",")+`)
		ORDER BY action_id, tag_id`, args...)
	if err != nil {
		return fmt.Errorf("query action tags: %w", err)
	}

	defer func() { _ = rows.Close() }()

	for rows.Next() {
		var actionID, tagID string

		scanErr := rows.Scan(&actionID, &tagID)
		if scanErr != nil {
			return fmt.Errorf("scan action tag: %w", scanErr)
		}

		idx, ok := indexByID[actionID]
		if !ok {
			continue
		}

		actions[idx].TagIDs = append(actions[idx].TagIDs, tagID)
	}

	err = rows.Err()
	if err != nil {
		return fmt.Errorf("query action tags: rows: %w", err)
	}

	return nil
}

// CompleteAction marks an action completed and, when the recurrence
// computation produced a next occurrence, persists it in the same
// transaction. The single transaction is what guarantees the
// at-most-once creation of the occurrence per completion. Returns the
// new occurrence's ID, or "" when the series ended or never repeated.
func (s *Store) CompleteAction(ctx context.Context, id string, completedAt time.Time, occ *recur.Occurrence) (string, error) {
	if id == "" {
		return "", task.ErrIDRequired
	}

	newID := ""

	err := s.inTx(ctx, func(tx *sql.Tx) error {
		status, err := actionStatus(ctx, tx, id)
		if err != nil {
			return err
		}

		if status == task.StatusCompleted {
			return fmt.Errorf("%w: %s", task.ErrActionAlreadyComplete, id)
		}

		if status != task.StatusActive {
			return fmt.Errorf("%w: %s", task.ErrActionNotActive, id)
		}

		_, err = tx.ExecContext(ctx,
			"UPDATE actions SET status = ?, completed_at = ? WHERE id = ?",
			string(task.StatusCompleted), completedAt.UTC().Unix(), id)
		if err != nil {
			return fmt.Errorf("complete action: %w", err)
		}

		if occ == nil {
			return nil
		}

		newID = NewID()
		next := actionFromOccurrence(newID, occ, completedAt)

		return insertAction(ctx, tx, newID, next)
	})
	if err != nil {
		return "", err
	}

	return newID, nil
}

// actionFromOccurrence builds the new action record described by a
// recurrence occurrence. Status and completion timestamps are the
// caller-assigned defaults for a fresh action.
func actionFromOccurrence(id string, occ *recur.Occurrence, createdAt time.Time) *task.Action {
	return &task.Action{
		ID:               id,
		Title:            occ.Title,
		Note:             occ.Note,
		Status:           task.StatusActive,
		Flagged:          occ.Flagged,
		DeferDate:        occ.DeferDate,
		DueDate:          occ.DueDate,
		EstimatedMinutes: occ.EstimatedMinutes,
		ProjectID:        occ.ProjectID,
		ParentID:         occ.ParentID,
		Position:         occ.Position,
		Repeat:           occ.Repeat,
		TagIDs:           occ.TagIDs,
		CreatedAt:        createdAt,
	}
}

// SetActionStatus applies a plain status transition (drop, hold,
// activate). Completion goes through CompleteAction so recurrence and
// the completion timestamp stay transactional.
func (s *Store) SetActionStatus(ctx context.Context, id string, to task.Status, at time.Time) error {
	if id == "" {
		return task.ErrIDRequired
	}

	if !task.IsValidStatus(to) {
		return fmt.Errorf("%w: %s", task.ErrInvalidStatus, to)
	}

	return s.inTx(ctx, func(tx *sql.Tx) error {
		_, err := actionStatus(ctx, tx, id)
		if err != nil {
			return err
		}

		dropped := any(nil)
		if to == task.StatusDropped {
			dropped = at.UTC().Unix()
		}

		_, err = tx.ExecContext(ctx,
			"UPDATE actions SET status = ?, dropped_at = ?, completed_at = NULL WHERE id = ?",
			string(to), dropped, id)
		if err != nil {
			return fmt.Errorf("set action status: %w", err)
		}

		return nil
	})
}

// SetActionProject reassigns an action to a project, or back to the
// inbox when projectID is nil.
func (s *Store) SetActionProject(ctx context.Context, id string, projectID *string) error {
	if id == "" {
		return task.ErrIDRequired
	}

	return s.inTx(ctx, func(tx *sql.Tx) error {
		_, err := actionStatus(ctx, tx, id)
		if err != nil {
			return err
		}

		if projectID != nil {
			row := tx.QueryRowContext(ctx, "SELECT 1 FROM projects WHERE id = ?", *projectID)

			var one int
			if scanErr := row.Scan(&one); scanErr != nil {
				if errors.Is(scanErr, sql.ErrNoRows) {
					return fmt.Errorf("%w: %s", task.ErrProjectNotFound, *projectID)
				}

				return fmt.Errorf("read project: %w", scanErr)
			}
		}

		_, err = tx.ExecContext(ctx,
			"UPDATE actions SET project_id = ? WHERE id = ?",
			nullStringValue(projectID), id)
		if err != nil {
			return fmt.Errorf("reassign action: %w", err)
		}

		return nil
	})
}

// MoveAction changes an action's manual ordering position.
func (s *Store) MoveAction(ctx context.Context, id string, position int) error {
	if id == "" {
		return task.ErrIDRequired
	}

	return s.inTx(ctx, func(tx *sql.Tx) error {
		_, err := actionStatus(ctx, tx, id)
		if err != nil {
			return err
		}

		_, err = tx.ExecContext(ctx,
			"UPDATE actions SET position = ? WHERE id = ?", position, id)
		if err != nil {
			return fmt.Errorf("move action: %w", err)
		}

		return nil
	})
}

func actionStatus(ctx context.Context, q execer, id string) (task.Status, error) {
	row := q.QueryRowContext(ctx, "SELECT status FROM actions WHERE id = ?", id)

	var status string

	err := row.Scan(&status)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return "", fmt.Errorf("%w: %s", task.ErrActionNotFound, id)
		}

		return "", fmt.Errorf("read action status: %w", err)
	}

	return task.Status(status), nil
}
