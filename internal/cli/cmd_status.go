package cli

import (
	"context"
	"time"

	"github.com/tendtool/tend/internal/task"
)

func (a *app) cmdDrop() *Command {
	return a.statusCommand("drop", "Drop an action", task.StatusDropped)
}

func (a *app) cmdHold() *Command {
	return a.statusCommand("hold", "Put an action on hold", task.StatusOnHold)
}

func (a *app) cmdActivate() *Command {
	return a.statusCommand("activate", "Reactivate a dropped or on-hold action", task.StatusActive)
}

func (a *app) statusCommand(name, short string, to task.Status) *Command {
	return &Command{
		Name:  name,
		Usage: "tend " + name + " <id>",
		Short: short,
		Exec: func(ctx context.Context, io *IO, args []string) error {
			id, argErr := singleArg(args, "action ID")
			if argErr != nil {
				return argErr
			}

			action, getErr := a.st.GetAction(ctx, id)
			if getErr != nil {
				return getErr
			}

			statusErr := a.st.SetActionStatus(ctx, action.ID, to, time.Now().UTC())
			if statusErr != nil {
				return statusErr
			}

			io.Printf("%s %s\n", name, shortID(action.ID))

			return nil
		},
	}
}
