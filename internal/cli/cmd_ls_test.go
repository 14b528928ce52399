package cli

import (
	"strings"
	"testing"
)

func TestLsDefaultsToInboxPerspective(t *testing.T) {
	t.Parallel()

	c := NewCLI(t)

	c.MustRun("project", "add", "Garden")
	c.AddedID("Inbox item")
	c.AddedID("Project item", "--project", "Garden")

	list := c.MustRun("ls")

	AssertContains(t, list, "Inbox item")
	AssertNotContains(t, list, "Project item")
}

func TestLsFlaggedPerspective(t *testing.T) {
	t.Parallel()

	c := NewCLI(t)

	c.AddedID("Plain")
	c.AddedID("Urgent", "--flag")

	list := c.MustRun("ls", "-P", "Flagged")

	AssertContains(t, list, "Urgent")
	AssertNotContains(t, list, "Plain")
}

func TestLsForecastSortsByDue(t *testing.T) {
	t.Parallel()

	c := NewCLI(t)

	c.AddedID("Later", "--due", "2030-12-01")
	c.AddedID("Sooner", "--due", "2030-01-01")
	c.AddedID("Undated")

	list := c.MustRun("ls", "-P", "Forecast")

	AssertNotContains(t, list, "Undated")

	if strings.Index(list, "Sooner") > strings.Index(list, "Later") {
		t.Errorf("Forecast should list Sooner before Later:\n%s", list)
	}
}

func TestLsProjectsPerspectiveGroupsAndGates(t *testing.T) {
	t.Parallel()

	c := NewCLI(t)

	c.MustRun("project", "add", "Build shed", "--type", "sequential")
	c.AddedID("Pour foundation", "--project", "Build shed")
	c.AddedID("Raise walls", "--project", "Build shed")

	list := c.MustRun("ls", "-P", "Projects")

	AssertContains(t, list, "Build shed:")
	AssertContains(t, list, "Pour foundation")
	// Sequential projects expose only their first active action.
	AssertNotContains(t, list, "Raise walls")
}

func TestLsProjectsGatingAdvancesAfterDone(t *testing.T) {
	t.Parallel()

	c := NewCLI(t)

	c.MustRun("project", "add", "Chain", "--type", "sequential")
	first := c.AddedID("Step one", "--project", "Chain")
	c.AddedID("Step two", "--project", "Chain")

	c.MustRun("done", first)

	list := c.MustRun("ls", "-P", "Projects")
	AssertContains(t, list, "Step two")
	AssertNotContains(t, list, "Step one")
}

func TestLsParallelProjectShowsAllActive(t *testing.T) {
	t.Parallel()

	c := NewCLI(t)

	c.MustRun("project", "add", "Errands", "--type", "parallel")
	c.AddedID("Post office", "--project", "Errands")
	c.AddedID("Pharmacy", "--project", "Errands")

	list := c.MustRun("ls", "-P", "Projects")
	AssertContains(t, list, "Post office")
	AssertContains(t, list, "Pharmacy")
}

func TestLsAdHocFilters(t *testing.T) {
	t.Parallel()

	c := NewCLI(t)

	c.AddedID("Flagged one", "--flag")
	c.AddedID("Tagged one", "--tag", "home")
	id := c.AddedID("Dropped one")
	c.MustRun("drop", id)

	flagged := c.MustRun("ls", "--flagged")
	AssertContains(t, flagged, "Flagged one")
	AssertNotContains(t, flagged, "Tagged one")

	tagged := c.MustRun("ls", "--tag", "home")
	AssertContains(t, tagged, "Tagged one")
	AssertNotContains(t, tagged, "Flagged one")

	dropped := c.MustRun("ls", "--status", "dropped")
	AssertContains(t, dropped, "Dropped one")
	AssertNotContains(t, dropped, "Flagged one")
}

func TestLsAvailableSequential(t *testing.T) {
	t.Parallel()

	c := NewCLI(t)

	c.MustRun("project", "add", "Queue", "--type", "sequential")
	c.AddedID("Head", "--project", "Queue")
	c.AddedID("Tail", "--project", "Queue")

	list := c.MustRun("ls", "--project", "Queue", "--available")
	AssertContains(t, list, "Head")
	AssertNotContains(t, list, "Tail")
}

func TestLsAvailableHidesDeferred(t *testing.T) {
	t.Parallel()

	c := NewCLI(t)

	c.MustRun("project", "add", "Someday", "--type", "parallel")
	c.AddedID("Now", "--project", "Someday")
	c.AddedID("Later", "--project", "Someday", "--defer", "2099-01-01")

	list := c.MustRun("ls", "--project", "Someday", "--available")
	AssertContains(t, list, "Now")
	AssertNotContains(t, list, "Later")
}

func TestLsUnknownPerspective(t *testing.T) {
	t.Parallel()

	c := NewCLI(t)

	stderr := c.MustFail("ls", "-P", "Nonexistent")
	AssertContains(t, stderr, "perspective not found")
}
