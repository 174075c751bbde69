package models

import (
	"fmt"
	"time"
)

// Snapshot is the persisted annotation set of one group within one workspace.
//
// Workspace identifies the scanned directory set; GroupKey is the matched file name substring.
type Snapshot struct {
	id          string
	workspace   string
	groupKey    string
	groupIndex  int
	annotations []Annotation
	createdAt   time.Time
	updatedAt   time.Time
}

// NewSnapshot creates an unsaved snapshot. The ID is assigned on create.
func NewSnapshot(workspace, groupKey string, groupIndex int, annotations []Annotation) *Snapshot {
	now := time.Now()
	return &Snapshot{
		workspace:   workspace,
		groupKey:    groupKey,
		groupIndex:  groupIndex,
		annotations: append([]Annotation(nil), annotations...),
		createdAt:   now,
		updatedAt:   now,
	}
}

// RestoreSnapshot rebuilds a snapshot from stored columns.
func RestoreSnapshot(id, workspace, groupKey string, groupIndex int, annotations []Annotation, createdAt, updatedAt time.Time) *Snapshot {
	return &Snapshot{
		id:          id,
		workspace:   workspace,
		groupKey:    groupKey,
		groupIndex:  groupIndex,
		annotations: annotations,
		createdAt:   createdAt,
		updatedAt:   updatedAt,
	}
}

func (s *Snapshot) ID() string                { return s.id }
func (s *Snapshot) SetID(id string)           { s.id = id }
func (s *Snapshot) Workspace() string         { return s.workspace }
func (s *Snapshot) GroupKey() string          { return s.groupKey }
func (s *Snapshot) GroupIndex() int           { return s.groupIndex }
func (s *Snapshot) CreatedAt() time.Time      { return s.createdAt }
func (s *Snapshot) UpdatedAt() time.Time      { return s.updatedAt }
func (s *Snapshot) SetUpdatedAt(t time.Time)  { s.updatedAt = t }
func (s *Snapshot) Annotations() []Annotation { return append([]Annotation(nil), s.annotations...) }

// SetAnnotations replaces the stored annotation list.
func (s *Snapshot) SetAnnotations(list []Annotation) {
	s.annotations = append([]Annotation(nil), list...)
}

// Validate checks the snapshot keys and that every interval is well formed.
func (s *Snapshot) Validate() error {
	if s.workspace == "" {
		return fmt.Errorf("workspace is required")
	}
	if s.groupKey == "" {
		return fmt.Errorf("group key is required")
	}
	if s.groupIndex < 0 {
		return fmt.Errorf("group index must be non-negative, got %d", s.groupIndex)
	}
	for _, a := range s.annotations {
		if a.Start >= a.End {
			return fmt.Errorf("annotation %d has empty range [%d, %d)", a.ID, a.Start, a.End)
		}
	}
	return nil
}
