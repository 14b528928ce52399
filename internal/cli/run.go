package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/tendtool/tend/internal/config"
	"github.com/tendtool/tend/internal/store"
)

// globalFlags are parsed before the subcommand name.
type globalFlags struct {
	cwd       string
	config    string
	dataDir   string
	help      bool
	remaining []string
}

// app carries the resolved environment shared by all commands.
type app struct {
	cfg config.Config
	st  *store.Store
}

// Run is the CLI entry point. args excludes the program name.
// Returns the process exit code.
func Run(stdin io.Reader, out, errOut io.Writer, args []string, env map[string]string, sigCh chan os.Signal) int {
	_ = stdin

	ioCtx := NewIO(out, errOut)

	flags, flagErr := parseGlobalFlags(args)
	if flagErr != nil {
		ioCtx.ErrPrintln("error:", flagErr.Error())
		ioCtx.ErrPrintln()
		ioCtx.ErrPrintln(usage())

		return 2
	}

	if flags.help || len(flags.remaining) == 0 {
		ioCtx.Println(usage())
		return 0
	}

	cfg, cfgErr := config.Load(config.LoadInput{
		WorkDirOverride: flags.cwd,
		ConfigPath:      flags.config,
		DataDirOverride: flags.dataDir,
		Env:             env,
	})
	if cfgErr != nil {
		ioCtx.ErrPrintln("error:", cfgErr.Error())
		return 1
	}

	name := flags.remaining[0]
	rest := flags.remaining[1:]

	if name == "help" {
		ioCtx.Println(usage())
		return 0
	}

	if name == "print-config" {
		printConfig(ioCtx, cfg)
		return ioCtx.Finish()
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if sigCh != nil {
		go func() {
			<-sigCh
			cancel()
		}()
	}

	st, openErr := store.Open(ctx, cfg.DBPath)
	if openErr != nil {
		ioCtx.ErrPrintln("error:", openErr.Error())
		return 1
	}
	defer func() { _ = st.Close() }()

	a := &app{cfg: cfg, st: st}

	cmd, ok := a.commands()[name]
	if !ok {
		ioCtx.ErrPrintln(fmt.Sprintf("error: unknown command %q", name))
		ioCtx.ErrPrintln()
		ioCtx.ErrPrintln(usage())

		return 2
	}

	if runErr := cmd.Run(ctx, ioCtx, rest); runErr != nil {
		if errors.Is(runErr, errHelp) {
			return 0
		}

		ioCtx.ErrPrintln("error:", runErr.Error())

		return 1
	}

	return ioCtx.Finish()
}

func (a *app) commands() map[string]*Command {
	cmds := []*Command{
		a.cmdAdd(),
		a.cmdLs(),
		a.cmdShow(),
		a.cmdDone(),
		a.cmdDrop(),
		a.cmdHold(),
		a.cmdActivate(),
		a.cmdMove(),
		a.cmdProject(),
		a.cmdPerspective(),
	}

	byName := make(map[string]*Command, len(cmds))
	for _, c := range cmds {
		byName[c.Name] = c
	}

	return byName
}

// parseGlobalFlags handles flags that appear before the subcommand.
// Parsing stops at the first non-flag argument.
func parseGlobalFlags(args []string) (globalFlags, error) {
	var flags globalFlags

	i := 0
	for i < len(args) {
		arg := args[i]

		if !strings.HasPrefix(arg, "-") {
			break
		}

		switch {
		case arg == "-h" || arg == "--help":
			flags.help = true
			i++
		case arg == "-C" || arg == "--cwd" || strings.HasPrefix(arg, "--cwd="):
			val, consumed, parseErr := parseFlag(args, i, "--cwd")
			if parseErr != nil {
				return flags, parseErr
			}

			flags.cwd = val
			i += consumed
		case arg == "-c" || arg == "--config" || strings.HasPrefix(arg, "--config="):
			val, consumed, parseErr := parseFlag(args, i, "--config")
			if parseErr != nil {
				return flags, parseErr
			}

			flags.config = val
			i += consumed
		case arg == "--data-dir" || strings.HasPrefix(arg, "--data-dir="):
			val, consumed, parseErr := parseFlag(args, i, "--data-dir")
			if parseErr != nil {
				return flags, parseErr
			}

			flags.dataDir = val
			i += consumed
		default:
			return flags, fmt.Errorf("unknown global flag: %s", arg)
		}
	}

	flags.remaining = args[i:]

	return flags, nil
}

// parseFlag extracts the value for a flag at position i, handling both
// "--flag value" and "--flag=value" forms. Returns the value and how
// many args were consumed.
func parseFlag(args []string, i int, longName string) (string, int, error) {
	arg := args[i]

	if eq := strings.IndexByte(arg, '='); eq >= 0 {
		val := arg[eq+1:]
		if val == "" {
			return "", 0, fmt.Errorf("%s requires a value", longName)
		}

		return val, 1, nil
	}

	if i+1 >= len(args) {
		return "", 0, fmt.Errorf("%s requires a value", longName)
	}

	return args[i+1], 2, nil
}

func printConfig(io *IO, cfg config.Config) {
	io.Printf("cwd: %s\n", cfg.EffectiveCwd)
	io.Printf("data_dir: %s\n", cfg.DataDirAbs)
	io.Printf("db: %s\n", cfg.DBPath)
	io.Printf("default_perspective: %s\n", cfg.DefaultPerspective)

	if cfg.Sources.Global != "" || cfg.Sources.Project != "" {
		io.Println()
		io.Println("# Sources:")

		if cfg.Sources.Global != "" {
			io.Printf("#   global: %s\n", cfg.Sources.Global)
		}

		if cfg.Sources.Project != "" {
			io.Printf("#   project: %s\n", cfg.Sources.Project)
		}
	}
}

func usage() string {
	return strings.TrimSpace(`
Usage: tend [global flags] <command> [args]

Task management with projects, tags, repeats, and perspectives.

Commands:
  add          Create an action
  ls           List actions through a perspective or ad-hoc filters
  show         Show one action in full
  done         Complete an action (schedules the next repeat, if any)
  drop         Drop an action
  hold         Put an action on hold
  activate     Reactivate a dropped or on-hold action
  move         Move an action to a project or back to the inbox
  project      Manage projects (add, ls, done, review, set-type)
  perspective  Manage perspectives (ls, show, add, export, rm)
  print-config Print the resolved configuration
  help         Show this help

Global flags:
  -C, --cwd <dir>      Run as if started in <dir>
  -c, --config <file>  Explicit config file (must exist)
      --data-dir <dir> Override the data directory
  -h, --help           Show help

Run "tend <command> -h" for command-specific help.
`)
}
