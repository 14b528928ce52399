package cli

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/pflag"

	"github.com/tendtool/tend/internal/interval"
	"github.com/tendtool/tend/internal/task"
)

func (a *app) cmdAdd() *Command {
	fs := pflag.NewFlagSet("add", pflag.ContinueOnError)

	project := fs.StringP("project", "p", "", "project ID or name; omit for the inbox")
	parent := fs.String("parent", "", "parent action ID (creates a subtask)")
	tags := fs.StringSliceP("tag", "t", nil, "tag name (repeatable)")
	note := fs.StringP("note", "n", "", "free-form note")
	flagged := fs.Bool("flag", false, "mark as flagged")
	deferOn := fs.String("defer", "", "defer date (hidden until then)")
	due := fs.String("due", "", "due date")
	planned := fs.String("planned", "", "planned date")
	estimate := fs.IntP("estimate", "e", 0, "estimated minutes")
	repeat := fs.StringP("repeat", "r", "", `repeat interval, e.g. "3d", "2w", "1m", "1y"`)
	repeatMode := fs.String("repeat-mode", string(task.RepeatFixed), "repeat mode: fixed, defer_another, due_again")
	repeatEndDate := fs.String("repeat-end", "", "stop repeating after this date")
	repeatEndCount := fs.Int("repeat-count", 0, "stop repeating after this many completions")

	return &Command{
		Name:  "add",
		Usage: "tend add <title> [flags]",
		Short: "Create an action",
		Long: `Create an action. Without --project the action lands in the inbox.
Dates accept YYYY-MM-DD or RFC 3339. Repeat intervals are a positive
count plus a unit: d (days), w (weeks), m (months), y (years).`,
		Flags: fs,
		Exec: func(ctx context.Context, io *IO, args []string) error {
			if len(args) == 0 {
				return task.ErrTitleRequired
			}

			title := strings.TrimSpace(strings.Join(args, " "))

			action := &task.Action{
				Title:            title,
				Note:             *note,
				Status:           task.StatusActive,
				Flagged:          *flagged,
				EstimatedMinutes: *estimate,
				CreatedAt:        time.Now().UTC(),
			}

			var dateErr error

			if action.DeferDate, dateErr = parseDateFlag(*deferOn); dateErr != nil {
				return dateErr
			}

			if action.DueDate, dateErr = parseDateFlag(*due); dateErr != nil {
				return dateErr
			}

			if action.PlannedDate, dateErr = parseDateFlag(*planned); dateErr != nil {
				return dateErr
			}

			if *project != "" {
				p, resolveErr := a.resolveProject(ctx, *project)
				if resolveErr != nil {
					return resolveErr
				}

				action.ProjectID = &p.ID
			}

			if *parent != "" {
				parentAction, getErr := a.st.GetAction(ctx, *parent)
				if getErr != nil {
					return getErr
				}

				action.ParentID = &parentAction.ID
				action.ProjectID = parentAction.ProjectID
			}

			if *repeat != "" {
				if _, parseErr := interval.Parse(*repeat); parseErr != nil {
					return parseErr
				}

				mode := task.RepeatMode(*repeatMode)
				if !task.IsValidRepeatMode(mode) {
					return fmt.Errorf("%w: %s", task.ErrInvalidRepeatMode, *repeatMode)
				}

				action.Repeat = task.Repeat{
					Mode:     mode,
					Interval: *repeat,
					EndCount: *repeatEndCount,
				}

				if action.Repeat.EndDate, dateErr = parseDateFlag(*repeatEndDate); dateErr != nil {
					return dateErr
				}
			} else if fs.Changed("repeat-mode") || *repeatEndDate != "" || *repeatEndCount != 0 {
				return task.ErrRepeatNeedsInterval
			}

			for _, tagName := range *tags {
				tagName = strings.TrimSpace(tagName)
				if tagName == "" {
					continue
				}

				tagID, tagErr := a.st.EnsureTag(ctx, tagName, time.Now().UTC())
				if tagErr != nil {
					return tagErr
				}

				action.TagIDs = append(action.TagIDs, tagID)
			}

			id, createErr := a.st.CreateAction(ctx, action)
			if createErr != nil {
				return createErr
			}

			where := "inbox"
			if action.ProjectID != nil {
				where = "project"
			}

			io.Printf("added %s (%s)\n", shortID(id), where)

			return nil
		},
	}
}
