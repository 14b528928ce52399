// Package main provides tend, a GTD-style task manager with projects,
// tags, repeats, and saved perspectives.
package main

import (
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/tendtool/tend/internal/cli"
)

func main() {
	environ := os.Environ()
	env := make(map[string]string, len(environ))

	for _, e := range environ {
		if k, v, ok := strings.Cut(e, "="); ok {
			env[k] = v
		}
	}

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)

	exitCode := cli.Run(os.Stdin, os.Stdout, os.Stderr, os.Args[1:], env, sigCh)

	os.Exit(exitCode)
}
