package cli

import (
	"strings"
	"testing"
)

func TestDoneCompletesAction(t *testing.T) {
	t.Parallel()

	c := NewCLI(t)

	id := c.AddedID("One-off errand")

	out := c.MustRun("done", id)
	AssertContains(t, out, "done "+id)
	AssertNotContains(t, out, "next")

	show := c.MustRun("show", id)
	AssertContains(t, show, "status:   completed")
}

func TestDoneTwiceFails(t *testing.T) {
	t.Parallel()

	c := NewCLI(t)

	id := c.AddedID("Water plants")
	c.MustRun("done", id)

	stderr := c.MustFail("done", id)
	AssertContains(t, stderr, "already completed")
}

func TestDoneFixedRepeatSpawnsNext(t *testing.T) {
	t.Parallel()

	c := NewCLI(t)

	id := c.AddedID("Weekly report", "--due", "2030-01-10", "--repeat", "1w")

	out := c.MustRun("done", id)
	AssertContains(t, out, "next")
	AssertContains(t, out, "due:2030-01-17")

	// The original is completed; the next occurrence is a new record.
	list := c.MustRun("ls")
	AssertContains(t, list, "Weekly report")
	AssertNotContains(t, list, id)
}

func TestDoneRepeatEndCountTerminates(t *testing.T) {
	t.Parallel()

	c := NewCLI(t)

	id := c.AddedID("Final reminder", "--due", "2030-03-01", "--repeat", "1d", "--repeat-count", "1")

	out := c.MustRun("done", id)
	AssertContains(t, out, "next")

	// The spawned occurrence carries count 1 of 1, so completing it
	// ends the series.
	next := lastActiveID(t, c, "Final reminder")

	out = c.MustRun("done", next)
	AssertContains(t, out, "repeat finished")
}

func TestDoneRepeatEndDateInPastTerminates(t *testing.T) {
	t.Parallel()

	c := NewCLI(t)

	id := c.AddedID("Expired series", "--due", "2020-01-01", "--repeat", "1w", "--repeat-end", "2020-02-01")

	out := c.MustRun("done", id)
	AssertContains(t, out, "repeat finished")
}

func TestDoneUnknownAction(t *testing.T) {
	t.Parallel()

	c := NewCLI(t)

	stderr := c.MustFail("done", "ffffffff")
	AssertContains(t, stderr, "action not found")
}

// lastActiveID finds the listed action with the given title and returns
// its short ID.
func lastActiveID(t *testing.T, c *CLI, title string) string {
	t.Helper()

	list := c.MustRun("ls")

	for _, line := range strings.Split(list, "\n") {
		if strings.Contains(line, title) {
			return strings.Fields(line)[0]
		}
	}

	t.Fatalf("no active action titled %q in:\n%s", title, list)

	return ""
}
