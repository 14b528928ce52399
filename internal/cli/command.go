package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/pflag"
)

// Command is a single subcommand with its own flag set.
type Command struct {
	// Name is the subcommand name as typed on the command line.
	Name string

	// Usage is the one-line synopsis, e.g. "tend add <title> [flags]".
	Usage string

	// Short is a one-line description shown in the command list.
	Short string

	// Long is the full help text. Optional; falls back to Short.
	Long string

	// Flags holds the command's flag definitions. May be nil for
	// commands without flags.
	Flags *pflag.FlagSet

	// Exec runs the command with flags already parsed. args holds the
	// positional arguments remaining after flag parsing.
	Exec func(ctx context.Context, io *IO, args []string) error
}

// errHelp signals that help was requested and printed.
var errHelp = errors.New("help requested")

// Run parses args against the command's flag set and invokes Exec.
func (c *Command) Run(ctx context.Context, ioCtx *IO, args []string) error {
	fs := c.Flags
	if fs == nil {
		fs = pflag.NewFlagSet(c.Name, pflag.ContinueOnError)
	}

	fs.Usage = func() {} // we print our own help
	fs.SetOutput(io.Discard)
	help := fs.BoolP("help", "h", false, "show help")

	if parseErr := fs.Parse(args); parseErr != nil {
		if errors.Is(parseErr, pflag.ErrHelp) {
			ioCtx.ErrPrintln(c.help())
			return errHelp
		}

		return fmt.Errorf("%s: %w", c.Name, parseErr)
	}

	if *help {
		ioCtx.ErrPrintln(c.help())
		return errHelp
	}

	return c.Exec(ctx, ioCtx, fs.Args())
}

func (c *Command) help() string {
	var b strings.Builder

	fmt.Fprintf(&b, "Usage: %s\n", c.Usage)

	long := c.Long
	if long == "" {
		long = c.Short
	}

	if long != "" {
		fmt.Fprintf(&b, "\n%s\n", long)
	}

	if c.Flags != nil && c.Flags.HasFlags() {
		fmt.Fprintf(&b, "\nFlags:\n%s", c.Flags.FlagUsages())
	}

	return strings.TrimRight(b.String(), "\n")
}
