package task

import "time"

// Operator is a filter-rule comparison operator.
type Operator string

// Filter-rule operators. Not every operator is meaningful for every
// field; the view package decides which combinations are supported.
const (
	OpEq        Operator = "eq"
	OpNeq       Operator = "neq"
	OpGt        Operator = "gt"
	OpLt        Operator = "lt"
	OpGte       Operator = "gte"
	OpLte       Operator = "lte"
	OpContains  Operator = "contains"
	OpIsNull    Operator = "isNull"
	OpIsNotNull Operator = "isNotNull"
)

// Filterable field names. Unknown fields in persisted rules are
// ignored for forward compatibility.
const (
	FieldIsInbox   = "isInbox"
	FieldFlagged   = "flagged"
	FieldStatus    = "status"
	FieldDueDate   = "dueDate"
	FieldDeferDate = "deferDate"
	FieldProjectID = "projectId"
	FieldTagID     = "tagId"
)

// FilterRule is one declarative filter clause of a perspective.
// Rules combine with implicit AND in list order.
type FilterRule struct {
	Field    string   `json:"field" yaml:"field"`
	Operator Operator `json:"operator" yaml:"operator"`
	Value    any      `json:"value,omitempty" yaml:"value,omitempty"`
}

// SortDirection orders a sort key ascending or descending.
type SortDirection string

// Sort directions.
const (
	SortAsc  SortDirection = "asc"
	SortDesc SortDirection = "desc"
)

// SortRule is one sort key of a perspective.
type SortRule struct {
	Field     string        `json:"field" yaml:"field"`
	Direction SortDirection `json:"direction" yaml:"direction"`
}

// Perspective is a saved view: filter rules, sort rules, and an
// optional grouping field.
type Perspective struct {
	ID          string
	Name        string
	BuiltIn     bool
	FilterRules []FilterRule
	SortRules   []SortRule
	GroupBy     string
	CreatedAt   time.Time
}

// Built-in perspective names. The six built-ins are seeded once and
// cannot be deleted.
const (
	PerspectiveInbox    = "Inbox"
	PerspectiveProjects = "Projects"
	PerspectiveTags     = "Tags"
	PerspectiveForecast = "Forecast"
	PerspectiveFlagged  = "Flagged"
	PerspectiveReview   = "Review"
)

// BuiltInPerspectives returns the six seeded built-in perspectives with
// their canonical rule sets. IDs are assigned by the store on first seed.
func BuiltInPerspectives() []Perspective {
	return []Perspective{
		{
			Name:        PerspectiveInbox,
			BuiltIn:     true,
			FilterRules: []FilterRule{{Field: FieldIsInbox, Operator: OpEq, Value: true}},
		},
		{
			Name:    PerspectiveProjects,
			BuiltIn: true,
			GroupBy: FieldProjectID,
		},
		{
			Name:    PerspectiveTags,
			BuiltIn: true,
			GroupBy: FieldTagID,
		},
		{
			Name:        PerspectiveForecast,
			BuiltIn:     true,
			FilterRules: []FilterRule{{Field: FieldDueDate, Operator: OpIsNotNull}},
			SortRules:   []SortRule{{Field: FieldDueDate, Direction: SortAsc}},
		},
		{
			Name:        PerspectiveFlagged,
			BuiltIn:     true,
			FilterRules: []FilterRule{{Field: FieldFlagged, Operator: OpEq, Value: true}},
		},
		{
			Name:    PerspectiveReview,
			BuiltIn: true,
		},
	}
}
