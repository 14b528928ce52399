package cli

import (
	"strings"
	"testing"
)

func TestHelpOutput(t *testing.T) {
	t.Parallel()

	c := NewCLI(t)

	stdout, _, code := c.Run("help")
	if code != 0 {
		t.Fatalf("help exited %d", code)
	}

	AssertContains(t, stdout, "Usage: tend")
	AssertContains(t, stdout, "perspective")
}

func TestNoArgsPrintsUsage(t *testing.T) {
	t.Parallel()

	c := NewCLI(t)

	stdout, _, code := c.Run()
	if code != 0 {
		t.Fatalf("bare invocation exited %d", code)
	}

	AssertContains(t, stdout, "Usage: tend")
}

func TestUnknownCommand(t *testing.T) {
	t.Parallel()

	c := NewCLI(t)

	_, stderr, code := c.Run("frobnicate")
	if code != 2 {
		t.Fatalf("unknown command exited %d, want 2", code)
	}

	AssertContains(t, stderr, "unknown command")
}

func TestUnknownGlobalFlag(t *testing.T) {
	t.Parallel()

	var outBuf, errBuf strings.Builder

	code := Run(nil, &outBuf, &errBuf, []string{"--bogus", "ls"}, map[string]string{}, nil)
	if code != 2 {
		t.Fatalf("bad global flag exited %d, want 2", code)
	}

	AssertContains(t, errBuf.String(), "unknown global flag")
}

func TestGlobalFlagMissingValue(t *testing.T) {
	t.Parallel()

	var outBuf, errBuf strings.Builder

	code := Run(nil, &outBuf, &errBuf, []string{"--config"}, map[string]string{}, nil)
	if code != 2 {
		t.Fatalf("missing flag value exited %d, want 2", code)
	}

	AssertContains(t, errBuf.String(), "--config requires a value")
}

func TestPrintConfig(t *testing.T) {
	t.Parallel()

	c := NewCLI(t)

	out := c.MustRun("print-config")

	AssertContains(t, out, "data_dir:")
	AssertContains(t, out, "db:")
	AssertContains(t, out, "tend.db")
}

func TestCommandHelpFlag(t *testing.T) {
	t.Parallel()

	c := NewCLI(t)

	_, stderr, code := c.Run("add", "-h")
	if code != 0 {
		t.Fatalf("add -h exited %d", code)
	}

	AssertContains(t, stderr, "tend add")
}
