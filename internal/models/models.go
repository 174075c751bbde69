// package models defines the data model for the time-series labeling tool
package models

import (
	"fmt"
	"time"
)

// Model defines the base interface for all persistent models.
// Implementations include Snapshot and SaveRecord.
type Model interface {
	ID() string           // ID returns the unique identifier for this model
	CreatedAt() time.Time // CreatedAt returns when this model was created
	UpdatedAt() time.Time // UpdatedAt returns when this model was last updated
	Validate() error      // Validate checks if the model's data is valid and returns an error if not
}

// Repository defines the interface for data access operations.
// Implementations handle database interactions for specific model types.
type Repository[T Model] interface {
	Create(model T) error                      // Create inserts a new model into the database
	Get(id string) (T, error)                  // Get retrieves a model by its ID
	Update(model T) error                      // Update modifies an existing model in the database
	Delete(id string) error                    // Delete removes a model from the database by its ID
	List(criteria map[string]any) ([]T, error) // List retrieves all models matching the given criteria
}

// Annotation is an identified half-open interval [Start, End) over array indices.
type Annotation struct {
	ID    int `json:"id" yaml:"id"`
	Start int `json:"start" yaml:"start"`
	End   int `json:"end" yaml:"end"`
}

// Len returns End - Start.
func (a Annotation) Len() int { return a.End - a.Start }

// Center returns the integer midpoint of the interval.
func (a Annotation) Center() int { return (a.Start + a.End) / 2 }

// Contains reports whether x lies inside the closed interval [Start, End].
func (a Annotation) Contains(x int) bool { return a.Start <= x && x <= a.End }

// Overlaps reports whether a and [start, end) share at least one index.
// Touching endpoints do not overlap.
func (a Annotation) Overlaps(start, end int) bool {
	return !(end <= a.Start || start >= a.End)
}

func (a Annotation) String() string {
	return fmt.Sprintf("#%d [%d, %d)", a.ID, a.Start, a.End)
}

// ExportedAnnotation is the serializable form produced by ExportAll.
type ExportedAnnotation struct {
	ID     int `json:"id" yaml:"id"`
	Start  int `json:"start" yaml:"start"`
	End    int `json:"end" yaml:"end"`
	Length int `json:"length" yaml:"length"`
}

// Stats summarizes the lengths of a set of annotations.
type Stats struct {
	Count   int     `json:"total_count"`
	Total   int     `json:"total_length"`
	Average float64 `json:"average_length"`
	Min     int     `json:"min_length"`
	Max     int     `json:"max_length"`
}

// Group is a named set of sibling files displayed together.
type Group struct {
	Key   string   `json:"key"`
	Files []string `json:"files"`
}

// MatchMode selects which end of a file name forms the group key.
type MatchMode string

const (
	MatchPrefix MatchMode = "prefix"
	MatchSuffix MatchMode = "suffix"
)

// ParseMatchMode validates s as a [MatchMode].
func ParseMatchMode(s string) (MatchMode, error) {
	switch MatchMode(s) {
	case MatchPrefix, MatchSuffix:
		return MatchMode(s), nil
	}
	return "", fmt.Errorf("unknown match mode %q", s)
}

// YMode selects how a view scales its y axis.
type YMode string

const (
	YGlobal YMode = "global"
	YWindow YMode = "window"
)

// ParseYMode validates s as a [YMode].
func ParseYMode(s string) (YMode, error) {
	switch YMode(s) {
	case YGlobal, YWindow:
		return YMode(s), nil
	}
	return "", fmt.Errorf("unknown y mode %q", s)
}

// SaveMode selects the on-disk layout of labeled output.
type SaveMode string

const (
	SaveMerged   SaveMode = "merged"
	SaveSeparate SaveMode = "separate"
)

// ParseSaveMode validates s as a [SaveMode].
func ParseSaveMode(s string) (SaveMode, error) {
	switch SaveMode(s) {
	case SaveMerged, SaveSeparate:
		return SaveMode(s), nil
	}
	return "", fmt.Errorf("unknown save mode %q", s)
}
