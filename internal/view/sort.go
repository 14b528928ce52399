package view

import (
	"strings"
	"time"

	"github.com/tendtool/tend/internal/task"
)

// Sortable field names. Filterable fields double as sort keys along
// with a few ordering-only fields.
const (
	SortFieldPosition  = "position"
	SortFieldCreatedAt = "createdAt"
	SortFieldTitle     = "title"
	SortFieldEstimate  = "estimatedMinutes"
)

type sortKey struct {
	field string
	desc  bool
}

// OrderSpec is a total ordering over actions: an ordered list of sort
// keys ending in the fixed position/createdAt tie-break.
type OrderSpec struct {
	keys []sortKey
}

// BuildOrder turns an optional groupBy plus ordered sort rules into a
// total ordering. Precedence: groupBy ascending first, then each sort
// rule in list order, then position ascending and createdAt ascending
// as the final tie-break. With no groupBy and no rules the tie-break
// alone is the order, which matches manual drag ordering.
func BuildOrder(sortRules []task.SortRule, groupBy string) OrderSpec {
	keys := make([]sortKey, 0, len(sortRules)+3)

	if groupBy != "" && knownSortField(groupBy) {
		keys = append(keys, sortKey{field: groupBy})
	}

	for _, rule := range sortRules {
		if !knownSortField(rule.Field) {
			continue
		}

		keys = append(keys, sortKey{field: rule.Field, desc: rule.Direction == task.SortDesc})
	}

	keys = append(keys,
		sortKey{field: SortFieldPosition},
		sortKey{field: SortFieldCreatedAt},
	)

	return OrderSpec{keys: keys}
}

// Fields returns the ordered sort key names, descending keys suffixed
// with " desc". Useful for diagnostics and store-side ORDER BY assembly.
func (o OrderSpec) Fields() []string {
	fields := make([]string, 0, len(o.keys))

	for _, key := range o.keys {
		name := key.field
		if key.desc {
			name += " desc"
		}

		fields = append(fields, name)
	}

	return fields
}

// Less reports whether a orders before b.
func (o OrderSpec) Less(a, b *task.Action) bool {
	for _, key := range o.keys {
		cmp := compareField(key.field, a, b)
		if cmp == 0 {
			continue
		}

		if key.desc {
			return cmp > 0
		}

		return cmp < 0
	}

	return false
}

func knownSortField(field string) bool {
	switch field {
	case SortFieldPosition, SortFieldCreatedAt, SortFieldTitle, SortFieldEstimate,
		task.FieldDueDate, task.FieldDeferDate, task.FieldFlagged,
		task.FieldStatus, task.FieldProjectID, task.FieldTagID:
		return true
	default:
		return false
	}
}

func compareField(field string, a, b *task.Action) int {
	switch field {
	case SortFieldPosition:
		return compareInt(a.Position, b.Position)
	case SortFieldCreatedAt:
		return a.CreatedAt.Compare(b.CreatedAt)
	case SortFieldTitle:
		return strings.Compare(a.Title, b.Title)
	case SortFieldEstimate:
		return compareInt(a.EstimatedMinutes, b.EstimatedMinutes)
	case task.FieldDueDate:
		return compareTimePtr(a.DueDate, b.DueDate)
	case task.FieldDeferDate:
		return compareTimePtr(a.DeferDate, b.DeferDate)
	case task.FieldFlagged:
		return compareBool(a.Flagged, b.Flagged)
	case task.FieldStatus:
		return strings.Compare(string(a.Status), string(b.Status))
	case task.FieldProjectID:
		return compareStringPtr(a.ProjectID, b.ProjectID)
	case task.FieldTagID:
		return compareFirstTag(a, b)
	default:
		return 0
	}
}

func compareInt(a, b int) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	default:
		return 0
	}
}

// compareTimePtr orders present dates before absent ones: an undated
// action sorts after everything with a date.
func compareTimePtr(a, b *time.Time) int {
	switch {
	case a == nil && b == nil:
		return 0
	case a == nil:
		return 1
	case b == nil:
		return -1
	default:
		return a.Compare(*b)
	}
}

// compareStringPtr orders nil (inbox) before any project, then by ID.
func compareStringPtr(a, b *string) int {
	switch {
	case a == nil && b == nil:
		return 0
	case a == nil:
		return -1
	case b == nil:
		return 1
	default:
		return strings.Compare(*a, *b)
	}
}

// compareBool orders flagged actions first.
func compareBool(a, b bool) int {
	switch {
	case a == b:
		return 0
	case a:
		return -1
	default:
		return 1
	}
}

// compareFirstTag groups by the lexically smallest tag. Untagged
// actions sort last.
func compareFirstTag(a, b *task.Action) int {
	return strings.Compare(firstTag(a), firstTag(b))
}

func firstTag(a *task.Action) string {
	if len(a.TagIDs) == 0 {
		// Sorts after any real tag ID.
		return "￿"
	}

	first := a.TagIDs[0]
	for _, id := range a.TagIDs[1:] {
		if id < first {
			first = id
		}
	}

	return first
}
