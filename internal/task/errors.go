package task

import "errors"

// Error variables for domain operations.
var (
	ErrActionNotFound        = errors.New("action not found")
	ErrProjectNotFound       = errors.New("project not found")
	ErrTagNotFound           = errors.New("tag not found")
	ErrPerspectiveNotFound   = errors.New("perspective not found")
	ErrImmutablePerspective  = errors.New("built-in perspectives cannot be deleted")
	ErrActionNotActive       = errors.New("action is not active")
	ErrActionAlreadyComplete = errors.New("action is already completed")
	ErrProjectNotActive      = errors.New("project is not active")
	ErrTitleRequired         = errors.New("title is required")
	ErrNameRequired          = errors.New("name is required")
	ErrIDRequired            = errors.New("ID is required")
	ErrAmbiguousID           = errors.New("ID prefix matches more than one record")
	ErrInvalidStatus         = errors.New("invalid status")
	ErrInvalidProjectType    = errors.New("invalid project type")
	ErrInvalidRepeatMode     = errors.New("invalid repeat mode")
	ErrRepeatNeedsInterval   = errors.New("repeat mode requires an interval")
	ErrNoReviewInterval      = errors.New("project has no review interval")
	ErrEstimateNegative      = errors.New("estimated minutes cannot be negative")
)
