package cli

import (
	"context"
	"errors"

	"github.com/spf13/pflag"
)

var errMoveTarget = errors.New("move needs --project, --inbox, or --position")

func (a *app) cmdMove() *Command {
	fs := pflag.NewFlagSet("move", pflag.ContinueOnError)

	project := fs.StringP("project", "p", "", "destination project ID or name")
	inbox := fs.Bool("inbox", false, "move back to the inbox")
	position := fs.Int("position", -1, "manual ordering position within the container")

	return &Command{
		Name:  "move",
		Usage: "tend move <id> [flags]",
		Short: "Move an action to a project or back to the inbox",
		Flags: fs,
		Exec: func(ctx context.Context, io *IO, args []string) error {
			id, argErr := singleArg(args, "action ID")
			if argErr != nil {
				return argErr
			}

			if *project == "" && !*inbox && *position < 0 {
				return errMoveTarget
			}

			action, getErr := a.st.GetAction(ctx, id)
			if getErr != nil {
				return getErr
			}

			id = action.ID

			if *project != "" || *inbox {
				var projectID *string

				if *project != "" {
					p, resolveErr := a.resolveProject(ctx, *project)
					if resolveErr != nil {
						return resolveErr
					}

					projectID = &p.ID
				}

				if moveErr := a.st.SetActionProject(ctx, id, projectID); moveErr != nil {
					return moveErr
				}
			}

			if *position >= 0 {
				if posErr := a.st.MoveAction(ctx, id, *position); posErr != nil {
					return posErr
				}
			}

			io.Printf("moved %s\n", shortID(id))

			return nil
		},
	}
}
