package cli

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/tendtool/tend/internal/task"
)

// dateLayouts are accepted for date-valued flags, tried in order.
var dateLayouts = []string{
	time.RFC3339,
	"2006-01-02 15:04",
	"2006-01-02",
}

var errBadDate = errors.New("invalid date")

// parseDate parses a user-supplied date string. Date-only values are
// interpreted as local midnight.
func parseDate(value string) (time.Time, error) {
	for _, layout := range dateLayouts {
		t, parseErr := time.ParseInLocation(layout, value, time.Local)
		if parseErr == nil {
			return t, nil
		}
	}

	return time.Time{}, fmt.Errorf("%w: %q (want YYYY-MM-DD or RFC 3339)", errBadDate, value)
}

// parseDateFlag parses an optional date flag, returning nil when unset.
func parseDateFlag(value string) (*time.Time, error) {
	if value == "" {
		return nil, nil
	}

	t, parseErr := parseDate(value)
	if parseErr != nil {
		return nil, parseErr
	}

	return &t, nil
}

// resolveProject accepts either a project ID or an exact project name.
func (a *app) resolveProject(ctx context.Context, ref string) (*task.Project, error) {
	p, getErr := a.st.GetProject(ctx, ref)
	if getErr == nil {
		return p, nil
	}

	if !errors.Is(getErr, task.ErrProjectNotFound) {
		return nil, getErr
	}

	projects, listErr := a.st.ListProjects(ctx)
	if listErr != nil {
		return nil, listErr
	}

	for _, candidate := range projects {
		if candidate.Name == ref {
			return candidate, nil
		}
	}

	return nil, fmt.Errorf("%w: %s", task.ErrProjectNotFound, ref)
}

// shortID returns the display form of an ID.
func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}

	return id
}

// formatDate renders an optional date for list output.
func formatDate(t *time.Time) string {
	if t == nil {
		return "-"
	}

	return t.Local().Format("2006-01-02")
}

// actionLine renders one action as a list row.
func actionLine(a *task.Action) string {
	flag := " "
	if a.Flagged {
		flag = "*"
	}

	return fmt.Sprintf("%s  %s  due:%s  %s", shortID(a.ID), flag, formatDate(a.DueDate), a.Title)
}

// singleArg extracts the one required positional argument.
func singleArg(args []string, what string) (string, error) {
	if len(args) != 1 || strings.TrimSpace(args[0]) == "" {
		return "", fmt.Errorf("expected exactly one argument: %s", what)
	}

	return args[0], nil
}
