package cli

import (
	"context"
	"slices"
	"time"

	"github.com/spf13/pflag"

	"github.com/tendtool/tend/internal/store"
	"github.com/tendtool/tend/internal/task"
	"github.com/tendtool/tend/internal/view"
)

func (a *app) cmdLs() *Command {
	fs := pflag.NewFlagSet("ls", pflag.ContinueOnError)

	perspective := fs.StringP("perspective", "P", "", "named perspective to list through")
	status := fs.String("status", "", "ad-hoc: exact status")
	project := fs.StringP("project", "p", "", "ad-hoc: project ID or name")
	tag := fs.StringP("tag", "t", "", "ad-hoc: tag name")
	inbox := fs.Bool("inbox", false, "ad-hoc: inbox actions only")
	flagged := fs.Bool("flagged", false, "ad-hoc: flagged actions only")
	dueBy := fs.String("due-by", "", "ad-hoc: due on or before this date")
	available := fs.Bool("available", false, "with --project: only actions available to work on")
	limit := fs.Int("limit", 0, "cap the number of rows")

	return &Command{
		Name:  "ls",
		Usage: "tend ls [flags]",
		Short: "List actions through a perspective or ad-hoc filters",
		Long: `List actions. With no flags the configured default perspective is
used. Ad-hoc filter flags bypass perspectives and query directly;
--available restricts a project listing to the actions its type makes
workable right now (a sequential project exposes only its first active
action).`,
		Flags: fs,
		Exec: func(ctx context.Context, io *IO, args []string) error {
			_ = args

			adHoc := *status != "" || *project != "" || *tag != "" || *inbox || *flagged || *dueBy != "" || *available
			if adHoc {
				return a.lsAdHoc(ctx, io, &adHocQuery{
					status:    *status,
					project:   *project,
					tag:       *tag,
					inbox:     *inbox,
					flagged:   *flagged,
					dueBy:     *dueBy,
					available: *available,
					limit:     *limit,
				})
			}

			name := *perspective
			if name == "" {
				name = a.cfg.DefaultPerspective
			}

			if name == "" {
				name = task.PerspectiveInbox
			}

			return a.lsPerspective(ctx, io, name, *limit)
		},
	}
}

type adHocQuery struct {
	status    string
	project   string
	tag       string
	inbox     bool
	flagged   bool
	dueBy     string
	available bool
	limit     int
}

func (a *app) lsAdHoc(ctx context.Context, io *IO, q *adHocQuery) error {
	opts := &store.ListOptions{
		InboxOnly: q.inbox,
		Flagged:   q.flagged,
		Limit:     q.limit,
	}

	if q.status != "" {
		opts.Status = task.Status(q.status)
	}

	var proj *task.Project

	if q.project != "" {
		p, resolveErr := a.resolveProject(ctx, q.project)
		if resolveErr != nil {
			return resolveErr
		}

		proj = p
		opts.ProjectID = p.ID
	}

	if q.tag != "" {
		t, tagErr := a.st.GetTagByName(ctx, q.tag)
		if tagErr != nil {
			return tagErr
		}

		opts.TagID = t.ID
	}

	if q.dueBy != "" {
		by, parseErr := parseDateFlag(q.dueBy)
		if parseErr != nil {
			return parseErr
		}

		opts.DueBy = by
	}

	if q.available {
		if proj == nil {
			io.Warn("--available ignored", "it needs --project")
		} else {
			if opts.Status == "" {
				opts.Status = task.StatusActive
			}

			now := time.Now()
			opts.DeferBy = &now
			opts.TopLevel = true
		}
	}

	actions, listErr := a.st.ListActions(ctx, opts)
	if listErr != nil {
		return listErr
	}

	if q.available && proj != nil {
		actions = view.Available(proj.Type, actions)
	}

	for _, action := range actions {
		io.Println(actionLine(action))
	}

	return nil
}

func (a *app) lsPerspective(ctx context.Context, io *IO, name string, limit int) error {
	p, getErr := a.st.GetPerspectiveByName(ctx, name)
	if getErr != nil {
		return getErr
	}

	actions, listErr := a.st.ListActions(ctx, &store.ListOptions{})
	if listErr != nil {
		return listErr
	}

	projects, projErr := a.st.ProjectMap(ctx)
	if projErr != nil {
		return projErr
	}

	resolved, resolveErr := view.Resolve(p, actions, projects)
	if resolveErr != nil {
		io.Warn("perspective "+p.Name+" has unusable rules", resolveErr.Error())
		return nil
	}

	if limit > 0 && len(resolved) > limit {
		resolved = resolved[:limit]
	}

	if p.GroupBy == "" {
		for _, action := range resolved {
			io.Println(actionLine(action))
		}

		return nil
	}

	return a.printGrouped(ctx, io, p.GroupBy, resolved, projects)
}

func (a *app) printGrouped(ctx context.Context, io *IO, groupBy string, actions []*task.Action, projects map[string]*task.Project) error {
	tagNames := map[string]string{}

	if groupBy == task.FieldTagID {
		tags, tagErr := a.st.ListTags(ctx)
		if tagErr != nil {
			return tagErr
		}

		for _, t := range tags {
			tagNames[t.ID] = t.Name
		}
	}

	lastKey := "\x00" // impossible group key, forces the first header

	for _, action := range actions {
		key := groupKey(groupBy, action)
		if key != lastKey {
			if lastKey != "\x00" {
				io.Println()
			}

			io.Println(groupHeader(groupBy, key, projects, tagNames) + ":")

			lastKey = key
		}

		io.Println("  " + actionLine(action))
	}

	return nil
}

func groupKey(groupBy string, a *task.Action) string {
	switch groupBy {
	case task.FieldProjectID:
		if a.ProjectID == nil {
			return ""
		}

		return *a.ProjectID
	case task.FieldTagID:
		if len(a.TagIDs) == 0 {
			return ""
		}

		return slices.Min(a.TagIDs)
	default:
		return ""
	}
}

func groupHeader(groupBy, key string, projects map[string]*task.Project, tagNames map[string]string) string {
	if key == "" {
		if groupBy == task.FieldTagID {
			return "(no tag)"
		}

		return "Inbox"
	}

	switch groupBy {
	case task.FieldProjectID:
		if p, ok := projects[key]; ok {
			return p.Name
		}
	case task.FieldTagID:
		if name, ok := tagNames[key]; ok {
			return name
		}
	}

	return shortID(key)
}
