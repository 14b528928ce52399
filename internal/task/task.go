// Package task defines the domain model shared by the rule engine, the
// store, and the CLI: actions, projects, perspectives, and their
// filter/sort rule shapes.
package task

import (
	"slices"
	"time"
)

// Status is the lifecycle state of an action or project.
type Status string

// Valid statuses.
const (
	StatusActive    Status = "active"
	StatusCompleted Status = "completed"
	StatusDropped   Status = "dropped"
	StatusOnHold    Status = "on_hold"
)

var validStatuses = []Status{StatusActive, StatusCompleted, StatusDropped, StatusOnHold}

// IsValidStatus checks if the status is one of the known values.
func IsValidStatus(s Status) bool {
	return slices.Contains(validStatuses, s)
}

// ProjectType controls how a project's actions become available.
type ProjectType string

// Valid project types.
const (
	TypeSequential    ProjectType = "sequential"
	TypeParallel      ProjectType = "parallel"
	TypeSingleActions ProjectType = "single_actions"
)

var validProjectTypes = []ProjectType{TypeSequential, TypeParallel, TypeSingleActions}

// IsValidProjectType checks if the project type is one of the known values.
func IsValidProjectType(t ProjectType) bool {
	return slices.Contains(validProjectTypes, t)
}

// RepeatMode selects how the next occurrence's dates are derived.
type RepeatMode string

// Valid repeat modes.
const (
	// RepeatFixed advances defer/due from their own prior values,
	// ignoring when the item was actually completed.
	RepeatFixed RepeatMode = "fixed"

	// RepeatDeferAnother defers again relative to the completion time,
	// preserving the defer-to-due duration when both dates exist.
	RepeatDeferAnother RepeatMode = "defer_another"

	// RepeatDueAgain makes the item due again relative to the completion
	// time, preserving the defer-before-due lead time when both exist.
	RepeatDueAgain RepeatMode = "due_again"
)

var validRepeatModes = []RepeatMode{RepeatFixed, RepeatDeferAnother, RepeatDueAgain}

// IsValidRepeatMode checks if the repeat mode is one of the known values.
func IsValidRepeatMode(m RepeatMode) bool {
	return slices.Contains(validRepeatModes, m)
}

// Repeat is the repeat configuration attached to an action or project.
// A zero Mode means the item does not repeat.
type Repeat struct {
	Mode     RepeatMode `json:"mode,omitempty"`
	Interval string     `json:"interval,omitempty"`
	EndDate  *time.Time `json:"end_date,omitempty"`
	EndCount int        `json:"end_count,omitempty"`
	Count    int        `json:"count,omitempty"`
}

// Set reports whether a repeat mode is configured.
func (r Repeat) Set() bool {
	return r.Mode != ""
}

// Action is a single task. Actions with a nil ProjectID are inbox items.
type Action struct {
	ID               string
	Title            string
	Note             string
	Status           Status
	Flagged          bool
	DeferDate        *time.Time
	DueDate          *time.Time
	PlannedDate      *time.Time
	CompletedAt      *time.Time
	DroppedAt        *time.Time
	EstimatedMinutes int
	ProjectID        *string
	ParentID         *string
	Position         int
	Repeat           Repeat
	TagIDs           []string
	CreatedAt        time.Time
}

// IsInbox reports whether the action belongs to no project. This is
// derived from ProjectID and never stored independently.
func (a *Action) IsInbox() bool {
	return a.ProjectID == nil
}

// HasTag reports whether the action is associated with the given tag.
func (a *Action) HasTag(tagID string) bool {
	return slices.Contains(a.TagIDs, tagID)
}

// Project is a container of actions with sequencing semantics.
type Project struct {
	ID             string
	Name           string
	Status         Status
	Type           ProjectType
	Flagged        bool
	DeferDate      *time.Time
	DueDate        *time.Time
	ReviewInterval string
	LastReviewedAt *time.Time
	NextReviewAt   *time.Time
	Repeat         Repeat
	Position       int
	CreatedAt      time.Time
}

// Tag is a label attachable to actions.
type Tag struct {
	ID        string
	Name      string
	CreatedAt time.Time
}
