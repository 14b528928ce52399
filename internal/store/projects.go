package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/tendtool/tend/internal/recur"
	"github.com/tendtool/tend/internal/task"
)

const projectColumns = `id, name, status, type, flagged, defer_date, due_date,
	review_interval, last_reviewed_at, next_review_at,
	repeat_mode, repeat_interval, repeat_end_date, repeat_end_count, repeat_count,
	position, created_at`

// CreateProject inserts a project. An empty ID is assigned a fresh one.
func (s *Store) CreateProject(ctx context.Context, p *task.Project) (string, error) {
	if p.Name == "" {
		return "", task.ErrNameRequired
	}

	if !task.IsValidProjectType(p.Type) {
		return "", fmt.Errorf("%w: %s", task.ErrInvalidProjectType, p.Type)
	}

	id := p.ID
	if id == "" {
		id = NewID()
	}

	err := s.inTx(ctx, func(tx *sql.Tx) error {
		return insertProject(ctx, tx, id, p)
	})
	if err != nil {
		return "", err
	}

	return id, nil
}

func insertProject(ctx context.Context, tx *sql.Tx, id string, p *task.Project) error {
	_, err := tx.ExecContext(ctx, `
		INSERT INTO projects (`+projectColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		id,
		p.Name,
		string(p.Status),
		string(p.Type),
		boolValue(p.Flagged),
		nullTimeValue(p.DeferDate),
		nullTimeValue(p.DueDate),
		p.ReviewInterval,
		nullTimeValue(p.LastReviewedAt),
		nullTimeValue(p.NextReviewAt),
		string(p.Repeat.Mode),
		p.Repeat.Interval,
		nullTimeValue(p.Repeat.EndDate),
		p.Repeat.EndCount,
		p.Repeat.Count,
		p.Position,
		p.CreatedAt.UTC().Unix(),
	)
	if err != nil {
		return fmt.Errorf("insert project: %w", err)
	}

	return nil
}

// GetProject fetches one project. id may be a unique prefix of the
// full ID.
func (s *Store) GetProject(ctx context.Context, id string) (*task.Project, error) {
	if id == "" {
		return nil, task.ErrIDRequired
	}

	row := s.sql.QueryRowContext(ctx,
		"SELECT "+projectColumns+" FROM projects WHERE id = ?", id)

	p, err := scanProject(row)
	if errors.Is(err, sql.ErrNoRows) {
		full, resolveErr := resolvePrefix(ctx, s.sql, "projects", task.ErrProjectNotFound, id)
		if resolveErr != nil {
			return nil, resolveErr
		}

		row = s.sql.QueryRowContext(ctx,
			"SELECT "+projectColumns+" FROM projects WHERE id = ?", full)
		p, err = scanProject(row)
	}

	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("%w: %s", task.ErrProjectNotFound, id)
		}

		return nil, err
	}

	return p, nil
}

// ListProjects reads all projects ordered by position, then created_at.
func (s *Store) ListProjects(ctx context.Context) ([]*task.Project, error) {
	rows, err := s.sql.QueryContext(ctx,
		"SELECT "+projectColumns+" FROM projects ORDER BY position, created_at, id")
	if err != nil {
		return nil, fmt.Errorf("query projects: %w", err)
	}

	defer func() { _ = rows.Close() }()

	projects := make([]*task.Project, 0)

	for rows.Next() {
		p, scanErr := scanProject(rows)
		if scanErr != nil {
			return nil, scanErr
		}

		projects = append(projects, p)
	}

	err = rows.Err()
	if err != nil {
		return nil, fmt.Errorf("query projects: rows: %w", err)
	}

	return projects, nil
}

// ProjectMap returns projects keyed by ID, the shape the perspective
// engine wants for availability gating.
func (s *Store) ProjectMap(ctx context.Context) (map[string]*task.Project, error) {
	projects, err := s.ListProjects(ctx)
	if err != nil {
		return nil, err
	}

	byID := make(map[string]*task.Project, len(projects))
	for _, p := range projects {
		byID[p.ID] = p
	}

	return byID, nil
}

// SetProjectType changes a project's sequencing type.
func (s *Store) SetProjectType(ctx context.Context, id string, projectType task.ProjectType) error {
	if id == "" {
		return task.ErrIDRequired
	}

	if !task.IsValidProjectType(projectType) {
		return fmt.Errorf("%w: %s", task.ErrInvalidProjectType, projectType)
	}

	res, err := s.sql.ExecContext(ctx,
		"UPDATE projects SET type = ? WHERE id = ?", string(projectType), id)
	if err != nil {
		return fmt.Errorf("set project type: %w", err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("set project type: %w", err)
	}

	if affected == 0 {
		return fmt.Errorf("%w: %s", task.ErrProjectNotFound, id)
	}

	return nil
}

// MarkReviewed records a project review: last_reviewed_at moves to
// reviewedAt and next_review_at advances by the review interval.
func (s *Store) MarkReviewed(ctx context.Context, id string, reviewedAt time.Time) (time.Time, error) {
	if id == "" {
		return time.Time{}, task.ErrIDRequired
	}

	var next time.Time

	err := s.inTx(ctx, func(tx *sql.Tx) error {
		row := tx.QueryRowContext(ctx,
			"SELECT review_interval FROM projects WHERE id = ?", id)

		var reviewInterval string

		scanErr := row.Scan(&reviewInterval)
		if scanErr != nil {
			if errors.Is(scanErr, sql.ErrNoRows) {
				return fmt.Errorf("%w: %s", task.ErrProjectNotFound, id)
			}

			return fmt.Errorf("read review interval: %w", scanErr)
		}

		computed, reviewErr := recur.NextReview(reviewInterval, reviewedAt)
		if reviewErr != nil {
			return reviewErr
		}

		next = computed

		_, execErr := tx.ExecContext(ctx,
			"UPDATE projects SET last_reviewed_at = ?, next_review_at = ? WHERE id = ?",
			reviewedAt.UTC().Unix(), next.UTC().Unix(), id)
		if execErr != nil {
			return fmt.Errorf("mark reviewed: %w", execErr)
		}

		return nil
	})
	if err != nil {
		return time.Time{}, err
	}

	return next, nil
}

// ReviewDue lists projects whose next review is due by the given time,
// plus projects with a review interval but no scheduled review yet.
func (s *Store) ReviewDue(ctx context.Context, by time.Time) ([]*task.Project, error) {
	rows, err := s.sql.QueryContext(ctx, `
		SELECT `+projectColumns+` FROM projects
		WHERE review_interval != ''
		  AND (next_review_at IS NULL OR next_review_at <= ?)
		ORDER BY next_review_at, position, id`,
		by.UTC().Unix())
	if err != nil {
		return nil, fmt.Errorf("query review due: %w", err)
	}

	defer func() { _ = rows.Close() }()

	projects := make([]*task.Project, 0)

	for rows.Next() {
		p, scanErr := scanProject(rows)
		if scanErr != nil {
			return nil, scanErr
		}

		projects = append(projects, p)
	}

	err = rows.Err()
	if err != nil {
		return nil, fmt.Errorf("query review due: rows: %w", err)
	}

	return projects, nil
}

// CompleteProject marks a project completed and persists its next
// occurrence when the project itself repeats. The new project starts a
// fresh action list; recurrence copies the project's own fields only.
func (s *Store) CompleteProject(ctx context.Context, id string, completedAt time.Time, occ *recur.Occurrence) (string, error) {
	if id == "" {
		return "", task.ErrIDRequired
	}

	newID := ""

	err := s.inTx(ctx, func(tx *sql.Tx) error {
		row := tx.QueryRowContext(ctx, "SELECT status, name, type, review_interval FROM projects WHERE id = ?", id)

		var (
			status         string
			name           string
			projectType    string
			reviewInterval string
		)

		scanErr := row.Scan(&status, &name, &projectType, &reviewInterval)
		if scanErr != nil {
			if errors.Is(scanErr, sql.ErrNoRows) {
				return fmt.Errorf("%w: %s", task.ErrProjectNotFound, id)
			}

			return fmt.Errorf("read project: %w", scanErr)
		}

		if task.Status(status) != task.StatusActive {
			return fmt.Errorf("%w: %s", task.ErrProjectNotActive, id)
		}

		_, execErr := tx.ExecContext(ctx,
			"UPDATE projects SET status = ? WHERE id = ?",
			string(task.StatusCompleted), id)
		if execErr != nil {
			return fmt.Errorf("complete project: %w", execErr)
		}

		if occ == nil {
			return nil
		}

		newID = NewID()
		next := &task.Project{
			Name:           occ.Title,
			Status:         task.StatusActive,
			Type:           task.ProjectType(projectType),
			Flagged:        occ.Flagged,
			DeferDate:      occ.DeferDate,
			DueDate:        occ.DueDate,
			ReviewInterval: reviewInterval,
			Repeat:         occ.Repeat,
			Position:       occ.Position,
			CreatedAt:      completedAt,
		}

		return insertProject(ctx, tx, newID, next)
	})
	if err != nil {
		return "", err
	}

	return newID, nil
}

func scanProject(row rowScanner) (*task.Project, error) {
	var (
		p         task.Project
		status    string
		ptype     string
		flagged   int
		deferDate sql.NullInt64
		dueDate   sql.NullInt64
		lastRev   sql.NullInt64
		nextRev   sql.NullInt64
		repMode   string
		repIvl    string
		repEnd    sql.NullInt64
		repEndCnt int
		repCount  int
		createdAt int64
	)

	err := row.Scan(
		&p.ID,
		&p.Name,
		&status,
		&ptype,
		&flagged,
		&deferDate,
		&dueDate,
		&p.ReviewInterval,
		&lastRev,
		&nextRev,
		&repMode,
		&repIvl,
		&repEnd,
		&repEndCnt,
		&repCount,
		&p.Position,
		&createdAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}

		return nil, fmt.Errorf("scan project: %w", err)
	}

	p.Status = task.Status(status)
	p.Type = task.ProjectType(ptype)
	p.Flagged = flagged != 0
	p.DeferDate = timeFromNull(deferDate)
	p.DueDate = timeFromNull(dueDate)
	p.LastReviewedAt = timeFromNull(lastRev)
	p.NextReviewAt = timeFromNull(nextRev)
	p.Repeat = repeatFromRow(repMode, repIvl, repEnd, repEndCnt, repCount)
	p.CreatedAt = time.Unix(createdAt, 0).UTC()

	return &p, nil
}
