// Package recur computes the next occurrence of a repeating action or
// project after completion or review. It is pure: it never mutates its
// input and never persists anything - the caller hands the returned
// occurrence to the store.
package recur

import (
	"fmt"
	"slices"
	"time"

	"github.com/tendtool/tend/internal/interval"
	"github.com/tendtool/tend/internal/task"
)

// Snapshot is a consistent read of the repeatable fields of an action
// or project at completion time.
type Snapshot struct {
	Title            string
	Note             string
	Flagged          bool
	EstimatedMinutes int
	ProjectID        *string
	ParentID         *string
	Position         int
	TagIDs           []string
	DeferDate        *time.Time
	DueDate          *time.Time
	Repeat           task.Repeat
}

// SnapshotOf captures the repeatable fields of an action.
func SnapshotOf(a *task.Action) Snapshot {
	return Snapshot{
		Title:            a.Title,
		Note:             a.Note,
		Flagged:          a.Flagged,
		EstimatedMinutes: a.EstimatedMinutes,
		ProjectID:        a.ProjectID,
		ParentID:         a.ParentID,
		Position:         a.Position,
		TagIDs:           slices.Clone(a.TagIDs),
		DeferDate:        a.DeferDate,
		DueDate:          a.DueDate,
		Repeat:           a.Repeat,
	}
}

// Occurrence describes the next occurrence of a repeating item. It is
// a description only; status and completion timestamps on the created
// record are the caller's defaults (active, not completed).
type Occurrence struct {
	Title            string
	Note             string
	Flagged          bool
	EstimatedMinutes int
	ProjectID        *string
	ParentID         *string
	Position         int
	TagIDs           []string
	DeferDate        *time.Time
	DueDate          *time.Time
	Repeat           task.Repeat
}

// Next computes the occurrence that follows a completed item, or nil
// when recurrence terminates. A nil occurrence with a nil error is the
// normal end of a repeat series, not a failure.
//
// The end-date cutoff is evaluated against now, not completedAt: a
// backdated completion of an expired series still terminates it.
func Next(snap Snapshot, completedAt time.Time, now time.Time) (*Occurrence, error) {
	rep := snap.Repeat

	if !rep.Set() || rep.Interval == "" {
		return nil, nil
	}

	if rep.EndCount > 0 && rep.Count >= rep.EndCount {
		return nil, nil
	}

	if rep.EndDate != nil && now.After(*rep.EndDate) {
		return nil, nil
	}

	iv, err := interval.Parse(rep.Interval)
	if err != nil {
		return nil, fmt.Errorf("repeat interval: %w", err)
	}

	occ := &Occurrence{
		Title:            snap.Title,
		Note:             snap.Note,
		Flagged:          snap.Flagged,
		EstimatedMinutes: snap.EstimatedMinutes,
		ProjectID:        snap.ProjectID,
		ParentID:         snap.ParentID,
		Position:         snap.Position,
		TagIDs:           slices.Clone(snap.TagIDs),
		Repeat:           rep,
	}
	occ.Repeat.Count++

	switch rep.Mode {
	case task.RepeatFixed:
		// Fixed repeats advance on their own schedule. completedAt is
		// deliberately not consulted here.
		if snap.DeferDate != nil {
			occ.DeferDate = timePtr(interval.Add(*snap.DeferDate, iv))
		}

		if snap.DueDate != nil {
			occ.DueDate = timePtr(interval.Add(*snap.DueDate, iv))
		}
	case task.RepeatDeferAnother:
		next := interval.Add(completedAt, iv)
		occ.DeferDate = timePtr(next)

		if snap.DeferDate != nil && snap.DueDate != nil {
			gap := snap.DueDate.Sub(*snap.DeferDate)
			occ.DueDate = timePtr(next.Add(gap))
		}
	case task.RepeatDueAgain:
		next := interval.Add(completedAt, iv)
		occ.DueDate = timePtr(next)

		if snap.DeferDate != nil && snap.DueDate != nil {
			lead := snap.DueDate.Sub(*snap.DeferDate)
			occ.DeferDate = timePtr(next.Add(-lead))
		}
	default:
		return nil, fmt.Errorf("%w: %q", task.ErrInvalidRepeatMode, rep.Mode)
	}

	return occ, nil
}

// NextReview computes a project's next review date from its review
// interval and the time the review happened.
func NextReview(reviewInterval string, reviewedAt time.Time) (time.Time, error) {
	if reviewInterval == "" {
		return time.Time{}, task.ErrNoReviewInterval
	}

	iv, err := interval.Parse(reviewInterval)
	if err != nil {
		return time.Time{}, fmt.Errorf("review interval: %w", err)
	}

	return interval.Add(reviewedAt, iv), nil
}

func timePtr(t time.Time) *time.Time {
	return &t
}
