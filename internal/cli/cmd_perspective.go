package cli

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/natefinch/atomic"
	"github.com/spf13/pflag"
	"gopkg.in/yaml.v3"

	"github.com/tendtool/tend/internal/task"
	"github.com/tendtool/tend/internal/view"
)

// perspectiveDoc is the YAML shape used by perspective add/export.
type perspectiveDoc struct {
	Name        string            `yaml:"name"`
	GroupBy     string            `yaml:"groupBy,omitempty"`
	FilterRules []task.FilterRule `yaml:"filterRules,omitempty"`
	SortRules   []task.SortRule   `yaml:"sortRules,omitempty"`
}

func (a *app) cmdPerspective() *Command {
	subs := []*Command{
		a.cmdPerspectiveLs(),
		a.cmdPerspectiveShow(),
		a.cmdPerspectiveAdd(),
		a.cmdPerspectiveExport(),
		a.cmdPerspectiveRm(),
	}

	return &Command{
		Name:  "perspective",
		Usage: "tend perspective <ls|show|add|export|rm> [args]",
		Short: "Manage perspectives (ls, show, add, export, rm)",
		Exec:  subDispatch("perspective", subs),
	}
}

func (a *app) cmdPerspectiveLs() *Command {
	return &Command{
		Name:  "ls",
		Usage: "tend perspective ls",
		Short: "List perspectives",
		Exec: func(ctx context.Context, io *IO, args []string) error {
			_ = args

			perspectives, listErr := a.st.ListPerspectives(ctx)
			if listErr != nil {
				return listErr
			}

			for _, p := range perspectives {
				kind := "custom"
				if p.BuiltIn {
					kind = "built-in"
				}

				io.Printf("%-10s %s\n", kind, p.Name)
			}

			return nil
		},
	}
}

func (a *app) cmdPerspectiveShow() *Command {
	return &Command{
		Name:  "show",
		Usage: "tend perspective show <name>",
		Short: "Show a perspective's rules as YAML",
		Exec: func(ctx context.Context, io *IO, args []string) error {
			name, argErr := singleArg(args, "perspective name")
			if argErr != nil {
				return argErr
			}

			p, getErr := a.st.GetPerspectiveByName(ctx, name)
			if getErr != nil {
				return getErr
			}

			out, marshalErr := marshalPerspective(p)
			if marshalErr != nil {
				return marshalErr
			}

			io.Printf("%s", out)

			return nil
		},
	}
}

func (a *app) cmdPerspectiveAdd() *Command {
	fs := pflag.NewFlagSet("perspective add", pflag.ContinueOnError)

	file := fs.StringP("file", "f", "", "YAML file describing the perspective")

	return &Command{
		Name:  "add",
		Usage: "tend perspective add --file <file.yaml>",
		Short: "Create a perspective from a YAML definition",
		Long: `Create a perspective from a YAML file:

    name: Errands
    groupBy: projectId
    filterRules:
      - field: flagged
        operator: eq
        value: true
    sortRules:
      - field: dueDate
        direction: asc

Filter rules with unsupported operators are rejected up front rather
than silently matching nothing later.`,
		Flags: fs,
		Exec: func(ctx context.Context, io *IO, args []string) error {
			_ = args

			if *file == "" {
				return fmt.Errorf("perspective add requires --file")
			}

			data, readErr := os.ReadFile(*file)
			if readErr != nil {
				return fmt.Errorf("read perspective file: %w", readErr)
			}

			var doc perspectiveDoc
			if yamlErr := yaml.Unmarshal(data, &doc); yamlErr != nil {
				return fmt.Errorf("parse perspective file: %w", yamlErr)
			}

			if strings.TrimSpace(doc.Name) == "" {
				return task.ErrNameRequired
			}

			if _, compileErr := view.CompileFilters(doc.FilterRules); compileErr != nil {
				return fmt.Errorf("perspective %q: %w", doc.Name, compileErr)
			}

			p := &task.Perspective{
				Name:        doc.Name,
				FilterRules: doc.FilterRules,
				SortRules:   doc.SortRules,
				GroupBy:     doc.GroupBy,
				CreatedAt:   time.Now().UTC(),
			}

			id, createErr := a.st.CreatePerspective(ctx, p)
			if createErr != nil {
				return createErr
			}

			io.Printf("added perspective %q (%s)\n", doc.Name, shortID(id))

			return nil
		},
	}
}

func (a *app) cmdPerspectiveExport() *Command {
	fs := pflag.NewFlagSet("perspective export", pflag.ContinueOnError)

	out := fs.StringP("out", "o", "", "write to this file instead of stdout")

	return &Command{
		Name:  "export",
		Usage: "tend perspective export <name> [--out <file.yaml>]",
		Short: "Export a perspective as YAML",
		Flags: fs,
		Exec: func(ctx context.Context, io *IO, args []string) error {
			name, argErr := singleArg(args, "perspective name")
			if argErr != nil {
				return argErr
			}

			p, getErr := a.st.GetPerspectiveByName(ctx, name)
			if getErr != nil {
				return getErr
			}

			data, marshalErr := marshalPerspective(p)
			if marshalErr != nil {
				return marshalErr
			}

			if *out == "" {
				io.Printf("%s", data)
				return nil
			}

			// Atomic replace so a concurrent reader never sees a torn file.
			if writeErr := atomic.WriteFile(*out, bytes.NewReader(data)); writeErr != nil {
				return fmt.Errorf("write %s: %w", *out, writeErr)
			}

			io.Printf("exported %q to %s\n", p.Name, *out)

			return nil
		},
	}
}

func (a *app) cmdPerspectiveRm() *Command {
	return &Command{
		Name:  "rm",
		Usage: "tend perspective rm <name>",
		Short: "Delete a custom perspective (built-ins cannot be deleted)",
		Exec: func(ctx context.Context, io *IO, args []string) error {
			name, argErr := singleArg(args, "perspective name")
			if argErr != nil {
				return argErr
			}

			if deleteErr := a.st.DeletePerspective(ctx, name); deleteErr != nil {
				return deleteErr
			}

			io.Printf("removed perspective %q\n", name)

			return nil
		},
	}
}

func marshalPerspective(p *task.Perspective) ([]byte, error) {
	doc := perspectiveDoc{
		Name:        p.Name,
		GroupBy:     p.GroupBy,
		FilterRules: p.FilterRules,
		SortRules:   p.SortRules,
	}

	data, marshalErr := yaml.Marshal(doc)
	if marshalErr != nil {
		return nil, fmt.Errorf("marshal perspective %q: %w", p.Name, marshalErr)
	}

	return data, nil
}
