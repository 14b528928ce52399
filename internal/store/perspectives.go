package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/tendtool/tend/internal/task"
)

// seedBuiltIns inserts the six built-in perspectives if they are
// missing. Existing rows are left untouched so reopening a store never
// resets them.
func (s *Store) seedBuiltIns(ctx context.Context) error {
	now := time.Now().UTC().Unix()

	return s.inTx(ctx, func(tx *sql.Tx) error {
		for _, p := range task.BuiltInPerspectives() {
			filters, err := json.Marshal(p.FilterRules)
			if err != nil {
				return fmt.Errorf("marshal filter rules: %w", err)
			}

			sorts, err := json.Marshal(p.SortRules)
			if err != nil {
				return fmt.Errorf("marshal sort rules: %w", err)
			}

			_, err = tx.ExecContext(ctx, `
				INSERT INTO perspectives (id, name, built_in, filter_rules, sort_rules, group_by, created_at)
				VALUES (?, ?, 1, ?, ?, ?, ?)
				ON CONFLICT(name) DO NOTHING`,
				NewID(), p.Name, string(filters), string(sorts), p.GroupBy, now)
			if err != nil {
				return fmt.Errorf("seed perspective %s: %w", p.Name, err)
			}
		}

		return nil
	})
}

// CreatePerspective inserts a user-defined perspective.
func (s *Store) CreatePerspective(ctx context.Context, p *task.Perspective) (string, error) {
	if p.Name == "" {
		return "", task.ErrNameRequired
	}

	id := p.ID
	if id == "" {
		id = NewID()
	}

	filters, err := json.Marshal(p.FilterRules)
	if err != nil {
		return "", fmt.Errorf("marshal filter rules: %w", err)
	}

	sorts, err := json.Marshal(p.SortRules)
	if err != nil {
		return "", fmt.Errorf("marshal sort rules: %w", err)
	}

	_, err = s.sql.ExecContext(ctx, `
		INSERT INTO perspectives (id, name, built_in, filter_rules, sort_rules, group_by, created_at)
		VALUES (?, ?, 0, ?, ?, ?, ?)`,
		id, p.Name, string(filters), string(sorts), p.GroupBy, p.CreatedAt.UTC().Unix())
	if err != nil {
		return "", fmt.Errorf("insert perspective: %w", err)
	}

	return id, nil
}

// GetPerspectiveByName looks a perspective up by its display name.
func (s *Store) GetPerspectiveByName(ctx context.Context, name string) (*task.Perspective, error) {
	if name == "" {
		return nil, task.ErrNameRequired
	}

	row := s.sql.QueryRowContext(ctx, `
		SELECT id, name, built_in, filter_rules, sort_rules, group_by, created_at
		FROM perspectives WHERE name = ?`, name)

	p, err := scanPerspective(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("%w: %s", task.ErrPerspectiveNotFound, name)
		}

		return nil, err
	}

	return p, nil
}

// ListPerspectives reads all perspectives, built-ins first, then by name.
func (s *Store) ListPerspectives(ctx context.Context) ([]*task.Perspective, error) {
	rows, err := s.sql.QueryContext(ctx, `
		SELECT id, name, built_in, filter_rules, sort_rules, group_by, created_at
		FROM perspectives ORDER BY built_in DESC, name`)
	if err != nil {
		return nil, fmt.Errorf("query perspectives: %w", err)
	}

	defer func() { _ = rows.Close() }()

	perspectives := make([]*task.Perspective, 0)

	for rows.Next() {
		p, scanErr := scanPerspective(rows)
		if scanErr != nil {
			return nil, scanErr
		}

		perspectives = append(perspectives, p)
	}

	err = rows.Err()
	if err != nil {
		return nil, fmt.Errorf("query perspectives: rows: %w", err)
	}

	return perspectives, nil
}

// DeletePerspective removes a user-defined perspective. Built-ins are
// immutable: deleting one fails with task.ErrImmutablePerspective.
func (s *Store) DeletePerspective(ctx context.Context, name string) error {
	if name == "" {
		return task.ErrNameRequired
	}

	return s.inTx(ctx, func(tx *sql.Tx) error {
		row := tx.QueryRowContext(ctx,
			"SELECT built_in FROM perspectives WHERE name = ?", name)

		var builtIn int

		err := row.Scan(&builtIn)
		if err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return fmt.Errorf("%w: %s", task.ErrPerspectiveNotFound, name)
			}

			return fmt.Errorf("read perspective: %w", err)
		}

		if builtIn != 0 {
			return fmt.Errorf("%w: %s", task.ErrImmutablePerspective, name)
		}

		_, err = tx.ExecContext(ctx, "DELETE FROM perspectives WHERE name = ?", name)
		if err != nil {
			return fmt.Errorf("delete perspective: %w", err)
		}

		return nil
	})
}

func scanPerspective(row rowScanner) (*task.Perspective, error) {
	var (
		p         task.Perspective
		builtIn   int
		filters   string
		sorts     string
		createdAt int64
	)

	err := row.Scan(&p.ID, &p.Name, &builtIn, &filters, &sorts, &p.GroupBy, &createdAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}

		return nil, fmt.Errorf("scan perspective: %w", err)
	}

	p.BuiltIn = builtIn != 0
	p.CreatedAt = time.Unix(createdAt, 0).UTC()

	err = json.Unmarshal([]byte(filters), &p.FilterRules)
	if err != nil {
		return nil, fmt.Errorf("decode filter rules for %s: %w", p.Name, err)
	}

	err = json.Unmarshal([]byte(sorts), &p.SortRules)
	if err != nil {
		return nil, fmt.Errorf("decode sort rules for %s: %w", p.Name, err)
	}

	return &p, nil
}
