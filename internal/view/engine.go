package view

import (
	"sort"

	"github.com/tendtool/tend/internal/task"
)

// Resolve answers "what does this perspective show right now" over an
// in-memory snapshot of actions. projects supplies sequencing types for
// per-project availability gating and may be nil for perspectives that
// are not project-grouped.
//
// The pipeline: active-only baseline (unless a rule filters status
// explicitly), filter rules, per-project availability gating for
// project-grouped perspectives, then ordering.
//
// A rule-compilation error is returned alongside the (fail-closed)
// result so callers can surface the misconfiguration without showing
// unintended actions.
func Resolve(p *task.Perspective, actions []*task.Action, projects map[string]*task.Project) ([]*task.Action, error) {
	pred, ruleErr := CompileFilters(p.FilterRules)

	matched := make([]*task.Action, 0, len(actions))

	baseline := !MentionsStatus(p.FilterRules)

	for _, a := range actions {
		if baseline && a.Status != task.StatusActive {
			continue
		}

		if !pred.Matches(a) {
			continue
		}

		matched = append(matched, a)
	}

	if projectGrouped(p) {
		matched = gateByProject(matched, projects)
	}

	order := BuildOrder(p.SortRules, p.GroupBy)
	sort.SliceStable(matched, func(i, j int) bool {
		return order.Less(matched[i], matched[j])
	})

	return matched, ruleErr
}

// projectGrouped reports whether the perspective is a project-grouping
// view. Only those views apply sequential gating; Inbox, Flagged,
// Forecast and Tags show matching actions regardless of their project's
// sequencing type.
func projectGrouped(p *task.Perspective) bool {
	return p.GroupBy == task.FieldProjectID
}

// gateByProject applies Available independently within each project
// group. Inbox actions have no project to gate on and pass through.
// Subtasks are excluded: sequencing is defined over a project's
// top-level actions.
func gateByProject(actions []*task.Action, projects map[string]*task.Project) []*task.Action {
	inOrder := make([]string, 0)
	grouped := make(map[string][]*task.Action)

	gated := make([]*task.Action, 0, len(actions))

	for _, a := range actions {
		if a.ParentID != nil {
			continue
		}

		if a.ProjectID == nil {
			gated = append(gated, a)

			continue
		}

		id := *a.ProjectID
		if _, seen := grouped[id]; !seen {
			inOrder = append(inOrder, id)
		}

		grouped[id] = append(grouped[id], a)
	}

	for _, id := range inOrder {
		group := grouped[id]
		sort.SliceStable(group, func(i, j int) bool {
			return group[i].Position < group[j].Position
		})

		projectType := task.TypeParallel
		if project, ok := projects[id]; ok {
			projectType = project.Type
		}

		gated = append(gated, Available(projectType, group)...)
	}

	return gated
}
