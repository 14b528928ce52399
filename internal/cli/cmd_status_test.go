package cli

import (
	"strings"
	"testing"
)

func TestDropHidesFromActiveViews(t *testing.T) {
	t.Parallel()

	c := NewCLI(t)

	id := c.AddedID("Abandoned idea")
	c.MustRun("drop", id)

	list := c.MustRun("ls")
	AssertNotContains(t, list, "Abandoned idea")

	show := c.MustRun("show", id)
	AssertContains(t, show, "status:   dropped")
}

func TestHoldAndActivate(t *testing.T) {
	t.Parallel()

	c := NewCLI(t)

	id := c.AddedID("Paused work")

	c.MustRun("hold", id)
	AssertContains(t, c.MustRun("show", id), "status:   on_hold")

	c.MustRun("activate", id)
	AssertContains(t, c.MustRun("show", id), "status:   active")

	list := c.MustRun("ls")
	AssertContains(t, list, "Paused work")
}

func TestDropUnknownAction(t *testing.T) {
	t.Parallel()

	c := NewCLI(t)

	stderr := c.MustFail("drop", "deadbeef")
	AssertContains(t, stderr, "action not found")
}

func TestMoveToProjectAndBack(t *testing.T) {
	t.Parallel()

	c := NewCLI(t)

	c.MustRun("project", "add", "Homestead")
	id := c.AddedID("Fix fence")

	c.MustRun("move", id, "--project", "Homestead")
	AssertContains(t, c.MustRun("show", id), "Homestead")

	c.MustRun("move", id, "--inbox")
	AssertContains(t, c.MustRun("show", id), "(inbox)")
}

func TestMovePosition(t *testing.T) {
	t.Parallel()

	c := NewCLI(t)

	first := c.AddedID("Was first")
	second := c.AddedID("Was second")

	// Push the first item below the second.
	c.MustRun("move", first, "--position", "10")

	list := c.MustRun("ls")

	firstIdx := strings.Index(list, "Was first")
	secondIdx := strings.Index(list, "Was second")

	if secondIdx > firstIdx {
		t.Errorf("expected %q before %q after move:\n%s", second, first, list)
	}
}

func TestMoveNeedsTarget(t *testing.T) {
	t.Parallel()

	c := NewCLI(t)

	id := c.AddedID("Stuck")

	stderr := c.MustFail("move", id)
	AssertContains(t, stderr, "move needs")
}
