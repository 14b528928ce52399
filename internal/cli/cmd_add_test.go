package cli

import (
	"testing"
)

func TestAddToInbox(t *testing.T) {
	t.Parallel()

	c := NewCLI(t)

	out := c.MustRun("add", "Buy milk")
	AssertContains(t, out, "(inbox)")

	list := c.MustRun("ls")
	AssertContains(t, list, "Buy milk")
}

func TestAddWithDatesTagsAndFlag(t *testing.T) {
	t.Parallel()

	c := NewCLI(t)

	id := c.AddedID("Call dentist", "--due", "2030-06-15", "--defer", "2030-06-01",
		"--tag", "phone", "--flag", "--estimate", "15")

	out := c.MustRun("show", id)

	AssertContains(t, out, "Call dentist")
	AssertContains(t, out, "due:      2030-06-15")
	AssertContains(t, out, "defer:    2030-06-01")
	AssertContains(t, out, "flagged:  true")
	AssertContains(t, out, "phone")
	AssertContains(t, out, "estimate: 15m")
}

func TestAddToProject(t *testing.T) {
	t.Parallel()

	c := NewCLI(t)

	c.MustRun("project", "add", "Renovate kitchen")

	id := c.AddedID("Pick tiles", "--project", "Renovate kitchen")

	out := c.MustRun("show", id)
	AssertContains(t, out, "Renovate kitchen")
	AssertNotContains(t, out, "(inbox)")
}

func TestAddSubtaskInheritsProject(t *testing.T) {
	t.Parallel()

	c := NewCLI(t)

	c.MustRun("project", "add", "Trip")
	parent := c.AddedID("Book travel", "--project", "Trip")
	child := c.AddedID("Compare flights", "--parent", parent)

	out := c.MustRun("show", child)
	AssertContains(t, out, "parent:")
	AssertContains(t, out, "Trip")
}

func TestAddRejectsBadDate(t *testing.T) {
	t.Parallel()

	c := NewCLI(t)

	stderr := c.MustFail("add", "X", "--due", "someday")
	AssertContains(t, stderr, "invalid date")
}

func TestAddRepeatFlagsNeedInterval(t *testing.T) {
	t.Parallel()

	c := NewCLI(t)

	stderr := c.MustFail("add", "X", "--repeat-count", "3")
	AssertContains(t, stderr, "interval")
}

func TestAddRejectsBadRepeatInterval(t *testing.T) {
	t.Parallel()

	c := NewCLI(t)

	stderr := c.MustFail("add", "X", "--repeat", "3x")
	AssertContains(t, stderr, "interval")
}

func TestAddRejectsUnknownProject(t *testing.T) {
	t.Parallel()

	c := NewCLI(t)

	stderr := c.MustFail("add", "X", "--project", "no such project")
	AssertContains(t, stderr, "project not found")
}

func TestAddRequiresTitle(t *testing.T) {
	t.Parallel()

	c := NewCLI(t)

	stderr := c.MustFail("add")
	AssertContains(t, stderr, "title is required")
}
