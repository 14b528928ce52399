package cli

import (
	"context"
	"time"

	"github.com/spf13/pflag"

	"github.com/tendtool/tend/internal/recur"
)

func (a *app) cmdDone() *Command {
	fs := pflag.NewFlagSet("done", pflag.ContinueOnError)

	at := fs.String("at", "", "completion time (defaults to now)")

	return &Command{
		Name:  "done",
		Usage: "tend done <id> [flags]",
		Short: "Complete an action (schedules the next repeat, if any)",
		Long: `Complete an action. A repeating action spawns its next occurrence in
the same transaction; the repeat ends once its end date has passed or
its completion count is reached.`,
		Flags: fs,
		Exec: func(ctx context.Context, io *IO, args []string) error {
			id, argErr := singleArg(args, "action ID")
			if argErr != nil {
				return argErr
			}

			now := time.Now().UTC()

			completedAt := now

			if *at != "" {
				t, parseErr := parseDate(*at)
				if parseErr != nil {
					return parseErr
				}

				completedAt = t.UTC()
			}

			action, getErr := a.st.GetAction(ctx, id)
			if getErr != nil {
				return getErr
			}

			occ, nextErr := recur.Next(recur.SnapshotOf(action), completedAt, now)
			if nextErr != nil {
				return nextErr
			}

			nextID, completeErr := a.st.CompleteAction(ctx, action.ID, completedAt, occ)
			if completeErr != nil {
				return completeErr
			}

			io.Printf("done %s\n", shortID(action.ID))

			if nextID != "" {
				next, nextGetErr := a.st.GetAction(ctx, nextID)
				if nextGetErr != nil {
					return nextGetErr
				}

				io.Printf("next %s  defer:%s due:%s\n",
					shortID(nextID), formatDate(next.DeferDate), formatDate(next.DueDate))
			} else if action.Repeat.Set() {
				io.Println("repeat finished")
			}

			return nil
		},
	}
}
