package view

import "github.com/tendtool/tend/internal/task"

// Available applies a project's sequencing semantics to its top-level
// actions, which must already be in position order.
//
// A sequential project exposes at most one action: the first active
// one. Parallel and single-action projects expose every active action.
func Available(projectType task.ProjectType, actions []*task.Action) []*task.Action {
	if projectType == task.TypeSequential {
		for _, a := range actions {
			if a.Status == task.StatusActive {
				return []*task.Action{a}
			}
		}

		return nil
	}

	available := make([]*task.Action, 0, len(actions))

	for _, a := range actions {
		if a.Status == task.StatusActive {
			available = append(available, a)
		}
	}

	return available
}
