package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/tendtool/tend/internal/task"
)

// EnsureTag returns the ID of the tag with the given name, creating it
// if it does not exist yet.
func (s *Store) EnsureTag(ctx context.Context, name string, now time.Time) (string, error) {
	if name == "" {
		return "", task.ErrNameRequired
	}

	row := s.sql.QueryRowContext(ctx, "SELECT id FROM tags WHERE name = ?", name)

	var id string

	err := row.Scan(&id)
	if err == nil {
		return id, nil
	}

	if !errors.Is(err, sql.ErrNoRows) {
		return "", fmt.Errorf("lookup tag: %w", err)
	}

	id = NewID()

	_, err = s.sql.ExecContext(ctx,
		"INSERT INTO tags (id, name, created_at) VALUES (?, ?, ?)",
		id, name, now.UTC().Unix())
	if err != nil {
		return "", fmt.Errorf("insert tag: %w", err)
	}

	return id, nil
}

// GetTagByName looks up a tag by its name.
func (s *Store) GetTagByName(ctx context.Context, name string) (*task.Tag, error) {
	if name == "" {
		return nil, task.ErrNameRequired
	}

	row := s.sql.QueryRowContext(ctx,
		"SELECT id, name, created_at FROM tags WHERE name = ?", name)

	var (
		tag       task.Tag
		createdAt int64
	)

	err := row.Scan(&tag.ID, &tag.Name, &createdAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("%w: %s", task.ErrTagNotFound, name)
		}

		return nil, fmt.Errorf("lookup tag: %w", err)
	}

	tag.CreatedAt = time.Unix(createdAt, 0).UTC()

	return &tag, nil
}

// ListTags reads all tags ordered by name.
func (s *Store) ListTags(ctx context.Context) ([]*task.Tag, error) {
	rows, err := s.sql.QueryContext(ctx,
		"SELECT id, name, created_at FROM tags ORDER BY name")
	if err != nil {
		return nil, fmt.Errorf("query tags: %w", err)
	}

	defer func() { _ = rows.Close() }()

	tags := make([]*task.Tag, 0)

	for rows.Next() {
		var (
			tag       task.Tag
			createdAt int64
		)

		scanErr := rows.Scan(&tag.ID, &tag.Name, &createdAt)
		if scanErr != nil {
			return nil, fmt.Errorf("scan tag: %w", scanErr)
		}

		tag.CreatedAt = time.Unix(createdAt, 0).UTC()
		tags = append(tags, &tag)
	}

	err = rows.Err()
	if err != nil {
		return nil, fmt.Errorf("query tags: rows: %w", err)
	}

	return tags, nil
}
