package shared

import "fmt"

var (
	ErrNotImplemented = fmt.Errorf("not implemented")

	// Configuration errors
	ErrMissingConfig = fmt.Errorf("configuration not found")
	ErrInvalidConfig = fmt.Errorf("invalid configuration")

	// Annotation and mask errors
	ErrInvalidInterval    = fmt.Errorf("invalid interval")
	ErrAnnotationNotFound = fmt.Errorf("annotation not found")
	ErrMaskNotFound       = fmt.Errorf("mask not found")
	ErrNoDraft            = fmt.Errorf("no draft in progress")
	ErrDragNotPermitted   = fmt.Errorf("mask is not armed for dragging")
	ErrUnmappedMask       = fmt.Errorf("mask has no cross-view mapping")
	ErrSnapshotNotFound   = fmt.Errorf("snapshot not found")

	// Dataset errors
	ErrNoFiles       = fmt.Errorf("no data files found")
	ErrNoGroups      = fmt.Errorf("no groups available")
	ErrLoadFailed    = fmt.Errorf("failed to load data file")
	ErrSaveFailed    = fmt.Errorf("failed to save labeled data")
	ErrTargetExists  = fmt.Errorf("save target already exists")
	ErrStaleLoad     = fmt.Errorf("load superseded by a newer group switch")
	ErrUnsupportedDT = fmt.Errorf("unsupported array dtype")

	// Input validation errors
	ErrInvalidInput    = fmt.Errorf("invalid input")
	ErrMissingArgument = fmt.Errorf("missing required argument")
	ErrInvalidArgument = fmt.Errorf("invalid argument")
	ErrInvalidFlag     = fmt.Errorf("invalid flag value")
)
