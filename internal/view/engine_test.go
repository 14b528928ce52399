package view

import (
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tendtool/tend/internal/task"
)

func resolveIDs(t *testing.T, p *task.Perspective, actions []*task.Action, projects map[string]*task.Project) []string {
	t.Helper()

	resolved, err := Resolve(p, actions, projects)
	require.NoError(t, err)

	return ids(resolved)
}

func TestResolveActiveBaseline(t *testing.T) {
	t.Parallel()

	base := timeOf(2024, time.January, 1)

	actions := []*task.Action{
		{ID: "active", Status: task.StatusActive, CreatedAt: base},
		{ID: "done", Status: task.StatusCompleted, CreatedAt: base},
		{ID: "held", Status: task.StatusOnHold, CreatedAt: base},
	}

	p := &task.Perspective{Name: "Everything"}

	got := resolveIDs(t, p, actions, nil)
	assert.Equal(t, []string{"active"}, got, "perspectives default to active actions only")
}

func TestResolveStatusRuleOverridesBaseline(t *testing.T) {
	t.Parallel()

	base := timeOf(2024, time.January, 1)

	actions := []*task.Action{
		{ID: "active", Status: task.StatusActive, CreatedAt: base},
		{ID: "done", Status: task.StatusCompleted, CreatedAt: base},
	}

	p := &task.Perspective{
		Name: "Completed",
		FilterRules: []task.FilterRule{
			{Field: task.FieldStatus, Operator: task.OpEq, Value: "completed"},
		},
	}

	got := resolveIDs(t, p, actions, nil)
	assert.Equal(t, []string{"done"}, got, "an explicit status rule replaces the active baseline")
}

func TestResolveBuiltInInbox(t *testing.T) {
	t.Parallel()

	base := timeOf(2024, time.January, 1)

	actions := []*task.Action{
		{ID: "inbox-2", Status: task.StatusActive, Position: 1, CreatedAt: base},
		{ID: "inbox-1", Status: task.StatusActive, Position: 0, CreatedAt: base},
		{ID: "in-project", Status: task.StatusActive, ProjectID: strPtr("proj-a"), CreatedAt: base},
		{ID: "inbox-done", Status: task.StatusCompleted, CreatedAt: base},
	}

	var inbox *task.Perspective

	for _, p := range task.BuiltInPerspectives() {
		if p.Name == task.PerspectiveInbox {
			clone := p
			inbox = &clone
		}
	}

	require.NotNil(t, inbox)

	got := resolveIDs(t, inbox, actions, nil)
	assert.Equal(t, []string{"inbox-1", "inbox-2"}, got)
}

func TestResolveBuiltInForecast(t *testing.T) {
	t.Parallel()

	base := timeOf(2024, time.January, 1)

	actions := []*task.Action{
		{ID: "due-later", Status: task.StatusActive, DueDate: timePtrOf(2024, time.March, 1), CreatedAt: base},
		{ID: "due-soon", Status: task.StatusActive, DueDate: timePtrOf(2024, time.January, 10), CreatedAt: base},
		{ID: "no-due", Status: task.StatusActive, CreatedAt: base},
	}

	var forecast *task.Perspective

	for _, p := range task.BuiltInPerspectives() {
		if p.Name == task.PerspectiveForecast {
			clone := p
			forecast = &clone
		}
	}

	require.NotNil(t, forecast)

	got := resolveIDs(t, forecast, actions, nil)
	assert.Equal(t, []string{"due-soon", "due-later"}, got,
		"forecast shows dated actions in due order")
}

func TestResolveProjectGroupedGating(t *testing.T) {
	t.Parallel()

	base := timeOf(2024, time.January, 1)

	projects := map[string]*task.Project{
		"seq": {ID: "seq", Name: "Sequential", Type: task.TypeSequential, Status: task.StatusActive},
		"par": {ID: "par", Name: "Parallel", Type: task.TypeParallel, Status: task.StatusActive},
	}

	actions := []*task.Action{
		{ID: "seq-1", Status: task.StatusActive, ProjectID: strPtr("seq"), Position: 0, CreatedAt: base},
		{ID: "seq-2", Status: task.StatusActive, ProjectID: strPtr("seq"), Position: 1, CreatedAt: base},
		{ID: "seq-3", Status: task.StatusActive, ProjectID: strPtr("seq"), Position: 2, CreatedAt: base},
		{ID: "par-1", Status: task.StatusActive, ProjectID: strPtr("par"), Position: 0, CreatedAt: base},
		{ID: "par-2", Status: task.StatusActive, ProjectID: strPtr("par"), Position: 1, CreatedAt: base},
	}

	p := &task.Perspective{Name: "Projects", GroupBy: task.FieldProjectID}

	got := resolveIDs(t, p, actions, projects)

	// The sequential project contributes exactly one action; the
	// parallel project contributes all active actions. Grouping orders
	// par before seq (project ID ascending).
	want := []string{"par-1", "par-2", "seq-1"}
	assert.Empty(t, cmp.Diff(want, got))
}

func TestResolveSequentialGatingAfterCompletion(t *testing.T) {
	t.Parallel()

	base := timeOf(2024, time.January, 1)

	projects := map[string]*task.Project{
		"seq": {ID: "seq", Name: "Sequential", Type: task.TypeSequential, Status: task.StatusActive},
	}

	actions := []*task.Action{
		{ID: "seq-1", Status: task.StatusCompleted, ProjectID: strPtr("seq"), Position: 0, CreatedAt: base},
		{ID: "seq-2", Status: task.StatusActive, ProjectID: strPtr("seq"), Position: 1, CreatedAt: base},
		{ID: "seq-3", Status: task.StatusActive, ProjectID: strPtr("seq"), Position: 2, CreatedAt: base},
	}

	p := &task.Perspective{Name: "Projects", GroupBy: task.FieldProjectID}

	got := resolveIDs(t, p, actions, projects)
	assert.Equal(t, []string{"seq-2"}, got,
		"completing the head surfaces the next action in a sequential project")
}

// Simple perspectives are not project-scoped: a flagged view shows
// every matching action even inside sequential projects.
func TestResolveSimplePerspectiveSkipsGating(t *testing.T) {
	t.Parallel()

	base := timeOf(2024, time.January, 1)

	projects := map[string]*task.Project{
		"seq": {ID: "seq", Name: "Sequential", Type: task.TypeSequential, Status: task.StatusActive},
	}

	actions := []*task.Action{
		{ID: "seq-1", Status: task.StatusActive, ProjectID: strPtr("seq"), Position: 0, Flagged: true, CreatedAt: base},
		{ID: "seq-2", Status: task.StatusActive, ProjectID: strPtr("seq"), Position: 1, Flagged: true, CreatedAt: base},
	}

	p := &task.Perspective{
		Name: "Flagged",
		FilterRules: []task.FilterRule{
			{Field: task.FieldFlagged, Operator: task.OpEq, Value: true},
		},
	}

	got := resolveIDs(t, p, actions, projects)
	assert.Equal(t, []string{"seq-1", "seq-2"}, got)
}

func TestResolveGatingExcludesSubtasks(t *testing.T) {
	t.Parallel()

	base := timeOf(2024, time.January, 1)

	projects := map[string]*task.Project{
		"par": {ID: "par", Name: "Parallel", Type: task.TypeParallel, Status: task.StatusActive},
	}

	actions := []*task.Action{
		{ID: "top", Status: task.StatusActive, ProjectID: strPtr("par"), Position: 0, CreatedAt: base},
		{ID: "sub", Status: task.StatusActive, ProjectID: strPtr("par"), ParentID: strPtr("top"), Position: 0, CreatedAt: base},
	}

	p := &task.Perspective{Name: "Projects", GroupBy: task.FieldProjectID}

	got := resolveIDs(t, p, actions, projects)
	assert.Equal(t, []string{"top"}, got, "sequencing is defined over top-level actions")
}

func TestResolveRuleErrorFailsClosed(t *testing.T) {
	t.Parallel()

	base := timeOf(2024, time.January, 1)

	actions := []*task.Action{
		{ID: "a", Status: task.StatusActive, CreatedAt: base},
	}

	p := &task.Perspective{
		Name: "Broken",
		FilterRules: []task.FilterRule{
			{Field: task.FieldFlagged, Operator: task.OpContains, Value: true},
		},
	}

	resolved, err := Resolve(p, actions, nil)
	require.ErrorIs(t, err, ErrUnsupportedOperator)
	assert.Empty(t, resolved, "a misconfigured perspective shows nothing")
}
