package cli

import (
	"context"
	"strings"
)

func (a *app) cmdShow() *Command {
	return &Command{
		Name:  "show",
		Usage: "tend show <id>",
		Short: "Show one action in full",
		Exec: func(ctx context.Context, io *IO, args []string) error {
			id, argErr := singleArg(args, "action ID")
			if argErr != nil {
				return argErr
			}

			action, getErr := a.st.GetAction(ctx, id)
			if getErr != nil {
				return getErr
			}

			io.Printf("id:       %s\n", action.ID)
			io.Printf("title:    %s\n", action.Title)
			io.Printf("status:   %s\n", action.Status)
			io.Printf("flagged:  %t\n", action.Flagged)
			io.Printf("defer:    %s\n", formatDate(action.DeferDate))
			io.Printf("due:      %s\n", formatDate(action.DueDate))
			io.Printf("planned:  %s\n", formatDate(action.PlannedDate))

			if action.EstimatedMinutes > 0 {
				io.Printf("estimate: %dm\n", action.EstimatedMinutes)
			}

			if action.ProjectID != nil {
				project, projErr := a.st.GetProject(ctx, *action.ProjectID)
				if projErr == nil {
					io.Printf("project:  %s (%s)\n", project.Name, shortID(project.ID))
				} else {
					io.Printf("project:  %s\n", shortID(*action.ProjectID))
				}
			} else {
				io.Println("project:  (inbox)")
			}

			if action.ParentID != nil {
				io.Printf("parent:   %s\n", shortID(*action.ParentID))
			}

			if len(action.TagIDs) > 0 {
				names := a.tagNames(ctx, action.TagIDs)
				io.Printf("tags:     %s\n", names)
			}

			if action.Repeat.Set() {
				io.Printf("repeat:   %s every %s", action.Repeat.Mode, action.Repeat.Interval)

				if action.Repeat.EndDate != nil {
					io.Printf(" until %s", formatDate(action.Repeat.EndDate))
				}

				if action.Repeat.EndCount > 0 {
					io.Printf(" (%d of %d)", action.Repeat.Count, action.Repeat.EndCount)
				}

				io.Println()
			}

			if action.CompletedAt != nil {
				io.Printf("done at:  %s\n", formatDate(action.CompletedAt))
			}

			if action.Note != "" {
				io.Println()
				io.Println(action.Note)
			}

			return nil
		},
	}
}

func (a *app) tagNames(ctx context.Context, tagIDs []string) string {
	tags, listErr := a.st.ListTags(ctx)
	if listErr != nil {
		return joinIDs(tagIDs)
	}

	byID := make(map[string]string, len(tags))
	for _, t := range tags {
		byID[t.ID] = t.Name
	}

	names := make([]string, 0, len(tagIDs))

	for _, id := range tagIDs {
		if name, ok := byID[id]; ok {
			names = append(names, name)
		} else {
			names = append(names, shortID(id))
		}
	}

	return strings.Join(names, ", ")
}

func joinIDs(ids []string) string {
	short := make([]string, len(ids))
	for i, id := range ids {
		short[i] = shortID(id)
	}

	return strings.Join(short, ", ")
}
