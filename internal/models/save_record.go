package models

import (
	"fmt"
	"time"
)

// SaveRecord is the history entry written after labeled output lands on disk.
type SaveRecord struct {
	id              string
	sequence        int
	workspace       string
	groupKey        string
	mode            SaveMode
	outputDir       string
	fileCount       int
	annotationCount int
	createdAt       time.Time
	updatedAt       time.Time
}

// NewSaveRecord creates an unsaved history entry.
func NewSaveRecord(workspace, groupKey string, mode SaveMode, outputDir string, fileCount, annotationCount int) *SaveRecord {
	now := time.Now()
	return &SaveRecord{
		workspace:       workspace,
		groupKey:        groupKey,
		mode:            mode,
		outputDir:       outputDir,
		fileCount:       fileCount,
		annotationCount: annotationCount,
		createdAt:       now,
		updatedAt:       now,
	}
}

func (r *SaveRecord) ID() string               { return r.id }
func (r *SaveRecord) SetID(id string)          { r.id = id }
func (r *SaveRecord) Sequence() int            { return r.sequence }
func (r *SaveRecord) SetSequence(seq int)      { r.sequence = seq }
func (r *SaveRecord) Workspace() string        { return r.workspace }
func (r *SaveRecord) GroupKey() string         { return r.groupKey }
func (r *SaveRecord) Mode() SaveMode           { return r.mode }
func (r *SaveRecord) OutputDir() string        { return r.outputDir }
func (r *SaveRecord) FileCount() int           { return r.fileCount }
func (r *SaveRecord) AnnotationCount() int     { return r.annotationCount }
func (r *SaveRecord) CreatedAt() time.Time     { return r.createdAt }
func (r *SaveRecord) SetCreatedAt(t time.Time) { r.createdAt = t }
func (r *SaveRecord) UpdatedAt() time.Time     { return r.updatedAt }
func (r *SaveRecord) SetUpdatedAt(t time.Time) { r.updatedAt = t }

// Validate checks required fields.
func (r *SaveRecord) Validate() error {
	if r.workspace == "" {
		return fmt.Errorf("workspace is required")
	}
	if r.outputDir == "" {
		return fmt.Errorf("output directory is required")
	}
	if _, err := ParseSaveMode(string(r.mode)); err != nil {
		return err
	}
	if r.fileCount < 0 || r.annotationCount < 0 {
		return fmt.Errorf("counts must be non-negative")
	}
	return nil
}
