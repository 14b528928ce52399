package cli

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/pflag"

	"github.com/tendtool/tend/internal/interval"
	"github.com/tendtool/tend/internal/recur"
	"github.com/tendtool/tend/internal/task"
)

func (a *app) cmdProject() *Command {
	subs := []*Command{
		a.cmdProjectAdd(),
		a.cmdProjectLs(),
		a.cmdProjectDone(),
		a.cmdProjectReview(),
		a.cmdProjectSetType(),
	}

	return &Command{
		Name:  "project",
		Usage: "tend project <add|ls|done|review|set-type> [args]",
		Short: "Manage projects (add, ls, done, review, set-type)",
		Exec:  subDispatch("project", subs),
	}
}

// subDispatch routes the first positional argument to a nested command.
func subDispatch(parent string, subs []*Command) func(ctx context.Context, io *IO, args []string) error {
	byName := make(map[string]*Command, len(subs))
	for _, sub := range subs {
		byName[sub.Name] = sub
	}

	return func(ctx context.Context, io *IO, args []string) error {
		if len(args) == 0 {
			names := make([]string, 0, len(subs))
			for _, sub := range subs {
				names = append(names, sub.Name)
			}

			return fmt.Errorf("%s needs a subcommand: %s", parent, strings.Join(names, ", "))
		}

		sub, ok := byName[args[0]]
		if !ok {
			return fmt.Errorf("unknown %s subcommand %q", parent, args[0])
		}

		return sub.Run(ctx, io, args[1:])
	}
}

func (a *app) cmdProjectAdd() *Command {
	fs := pflag.NewFlagSet("project add", pflag.ContinueOnError)

	projectType := fs.String("type", string(task.TypeParallel), "sequential, parallel, or single_actions")
	review := fs.String("review", "", `review interval, e.g. "1w"`)
	deferOn := fs.String("defer", "", "defer date")
	due := fs.String("due", "", "due date")
	flagged := fs.Bool("flag", false, "mark as flagged")
	repeat := fs.StringP("repeat", "r", "", "repeat interval for the whole project")
	repeatMode := fs.String("repeat-mode", string(task.RepeatFixed), "repeat mode: fixed, defer_another, due_again")

	return &Command{
		Name:  "add",
		Usage: "tend project add <name> [flags]",
		Short: "Create a project",
		Flags: fs,
		Exec: func(ctx context.Context, io *IO, args []string) error {
			if len(args) == 0 {
				return task.ErrNameRequired
			}

			p := &task.Project{
				Name:      strings.TrimSpace(strings.Join(args, " ")),
				Status:    task.StatusActive,
				Type:      task.ProjectType(*projectType),
				Flagged:   *flagged,
				CreatedAt: time.Now().UTC(),
			}

			var dateErr error

			if p.DeferDate, dateErr = parseDateFlag(*deferOn); dateErr != nil {
				return dateErr
			}

			if p.DueDate, dateErr = parseDateFlag(*due); dateErr != nil {
				return dateErr
			}

			if *review != "" {
				if _, parseErr := interval.Parse(*review); parseErr != nil {
					return parseErr
				}

				p.ReviewInterval = *review
			}

			if *repeat != "" {
				if _, parseErr := interval.Parse(*repeat); parseErr != nil {
					return parseErr
				}

				mode := task.RepeatMode(*repeatMode)
				if !task.IsValidRepeatMode(mode) {
					return fmt.Errorf("%w: %s", task.ErrInvalidRepeatMode, *repeatMode)
				}

				p.Repeat = task.Repeat{Mode: mode, Interval: *repeat}
			}

			id, createErr := a.st.CreateProject(ctx, p)
			if createErr != nil {
				return createErr
			}

			io.Printf("added project %s\n", shortID(id))

			return nil
		},
	}
}

func (a *app) cmdProjectLs() *Command {
	fs := pflag.NewFlagSet("project ls", pflag.ContinueOnError)

	reviewDue := fs.Bool("review-due", false, "only projects due for review")

	return &Command{
		Name:  "ls",
		Usage: "tend project ls [flags]",
		Short: "List projects",
		Flags: fs,
		Exec: func(ctx context.Context, io *IO, args []string) error {
			_ = args

			projects, listErr := a.listProjects(ctx, *reviewDue)
			if listErr != nil {
				return listErr
			}

			for _, p := range projects {
				io.Printf("%s  %-14s %-12s %s\n", shortID(p.ID), p.Type, p.Status, p.Name)
			}

			return nil
		},
	}
}

func (a *app) listProjects(ctx context.Context, reviewDue bool) ([]*task.Project, error) {
	if reviewDue {
		return a.st.ReviewDue(ctx, time.Now().UTC())
	}

	return a.st.ListProjects(ctx)
}

func (a *app) cmdProjectDone() *Command {
	return &Command{
		Name:  "done",
		Usage: "tend project done <id>",
		Short: "Complete a project (schedules the next repeat, if any)",
		Exec: func(ctx context.Context, io *IO, args []string) error {
			ref, argErr := singleArg(args, "project ID or name")
			if argErr != nil {
				return argErr
			}

			p, resolveErr := a.resolveProject(ctx, ref)
			if resolveErr != nil {
				return resolveErr
			}

			now := time.Now().UTC()

			occ, nextErr := recur.Next(projectSnapshot(p), now, now)
			if nextErr != nil {
				return nextErr
			}

			nextID, completeErr := a.st.CompleteProject(ctx, p.ID, now, occ)
			if completeErr != nil {
				return completeErr
			}

			io.Printf("done project %s\n", shortID(p.ID))

			if nextID != "" {
				io.Printf("next project %s\n", shortID(nextID))
			}

			return nil
		},
	}
}

// projectSnapshot adapts a project to the recurrence engine's input.
func projectSnapshot(p *task.Project) recur.Snapshot {
	return recur.Snapshot{
		Title:     p.Name,
		Flagged:   p.Flagged,
		Position:  p.Position,
		DeferDate: p.DeferDate,
		DueDate:   p.DueDate,
		Repeat:    p.Repeat,
	}
}

func (a *app) cmdProjectReview() *Command {
	return &Command{
		Name:  "review",
		Usage: "tend project review [id]",
		Short: "Mark a project reviewed, or list projects due for review",
		Long: `With an ID, record a review now and schedule the next one by the
project's review interval. Without arguments, list every project whose
next review is due.`,
		Exec: func(ctx context.Context, io *IO, args []string) error {
			if len(args) == 0 {
				due, listErr := a.st.ReviewDue(ctx, time.Now().UTC())
				if listErr != nil {
					return listErr
				}

				for _, p := range due {
					io.Printf("%s  %s\n", shortID(p.ID), p.Name)
				}

				return nil
			}

			ref, argErr := singleArg(args, "project ID or name")
			if argErr != nil {
				return argErr
			}

			p, resolveErr := a.resolveProject(ctx, ref)
			if resolveErr != nil {
				return resolveErr
			}

			next, reviewErr := a.st.MarkReviewed(ctx, p.ID, time.Now().UTC())
			if reviewErr != nil {
				return reviewErr
			}

			io.Printf("reviewed %s, next review %s\n", shortID(p.ID), next.Local().Format("2006-01-02"))

			return nil
		},
	}
}

func (a *app) cmdProjectSetType() *Command {
	return &Command{
		Name:  "set-type",
		Usage: "tend project set-type <id> <sequential|parallel|single_actions>",
		Short: "Change how a project's actions become available",
		Exec: func(ctx context.Context, io *IO, args []string) error {
			if len(args) != 2 {
				return fmt.Errorf("expected exactly two arguments: project ID and type")
			}

			p, resolveErr := a.resolveProject(ctx, args[0])
			if resolveErr != nil {
				return resolveErr
			}

			setErr := a.st.SetProjectType(ctx, p.ID, task.ProjectType(args[1]))
			if setErr != nil {
				return setErr
			}

			io.Printf("project %s is now %s\n", shortID(p.ID), args[1])

			return nil
		},
	}
}
