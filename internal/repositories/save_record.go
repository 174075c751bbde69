package repositories

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/desertthunder/tslabel/internal/models"
	"github.com/desertthunder/tslabel/internal/shared"
)

var errSaveRecordNotFound = errors.New("save record not found")

// SaveRecordRepository implements models.Repository[*models.SaveRecord] for save history.
type SaveRecordRepository struct {
	db *sql.DB
}

// NewSaveRecordRepository creates a new SaveRecordRepository with the given database connection
func NewSaveRecordRepository(db *sql.DB) *SaveRecordRepository {
	return &SaveRecordRepository{db: db}
}

// Create inserts a new record with generated ID and sequence
func (r *SaveRecordRepository) Create(rec *models.SaveRecord) error {
	if err := rec.Validate(); err != nil {
		return fmt.Errorf("validation failed: %w", err)
	}

	sequence, err := NextSequence(r.db, "save_records")
	if err != nil {
		return fmt.Errorf("failed to generate sequence: %w", err)
	}

	rec.SetID(shared.GenerateID())
	rec.SetSequence(sequence)

	query := `
		INSERT INTO save_records (id, sequence, workspace, group_key, mode, output_dir, file_count, annotation_count, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`
	_, err = r.db.Exec(query,
		rec.ID(),
		rec.Sequence(),
		rec.Workspace(),
		rec.GroupKey(),
		string(rec.Mode()),
		rec.OutputDir(),
		rec.FileCount(),
		rec.AnnotationCount(),
		rec.CreatedAt(),
		rec.UpdatedAt(),
	)
	if err != nil {
		return fmt.Errorf("failed to insert save record: %w", err)
	}
	return nil
}

// Get retrieves a record by ID
func (r *SaveRecordRepository) Get(id string) (*models.SaveRecord, error) {
	query := `
		SELECT id, sequence, workspace, group_key, mode, output_dir, file_count, annotation_count, created_at, updated_at
		FROM save_records
		WHERE id = ?
	`
	rec, err := scanSaveRecord(r.db.QueryRow(query, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: %s", errSaveRecordNotFound, id)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to scan save record: %w", err)
	}
	return rec, nil
}

// Update rewrites the output location and counts of a record.
func (r *SaveRecordRepository) Update(rec *models.SaveRecord) error {
	if err := rec.Validate(); err != nil {
		return fmt.Errorf("validation failed: %w", err)
	}
	now := time.Now()
	rec.SetUpdatedAt(now)

	result, err := r.db.Exec(`
		UPDATE save_records
		SET output_dir = ?, file_count = ?, annotation_count = ?, updated_at = ?
		WHERE id = ?
	`, rec.OutputDir(), rec.FileCount(), rec.AnnotationCount(), now, rec.ID())
	if err != nil {
		return fmt.Errorf("failed to update save record: %w", err)
	}
	return affectedOne(result, errSaveRecordNotFound, rec.ID())
}

// Delete removes a record by ID
func (r *SaveRecordRepository) Delete(id string) error {
	result, err := r.db.Exec(`DELETE FROM save_records WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("failed to delete save record: %w", err)
	}
	return affectedOne(result, errSaveRecordNotFound, id)
}

// List retrieves records newest first.
//
// Supported criteria: "workspace" (string), "limit" (int).
func (r *SaveRecordRepository) List(criteria map[string]any) ([]*models.SaveRecord, error) {
	query := `
		SELECT id, sequence, workspace, group_key, mode, output_dir, file_count, annotation_count, created_at, updated_at
		FROM save_records
	`
	args := []any{}
	if ws, ok := criteria["workspace"].(string); ok && ws != "" {
		query += " WHERE workspace = ?"
		args = append(args, ws)
	}
	query += " ORDER BY sequence DESC"
	if limit, ok := criteria["limit"].(int); ok && limit > 0 {
		query += " LIMIT ?"
		args = append(args, limit)
	}

	rows, err := r.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query save records: %w", err)
	}
	defer rows.Close()

	var out []*models.SaveRecord
	for rows.Next() {
		rec, err := scanSaveRecord(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan save record: %w", err)
		}
		out = append(out, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("row iteration error: %w", err)
	}
	return out, nil
}

func scanSaveRecord(row scanner) (*models.SaveRecord, error) {
	var (
		id              string
		sequence        int
		workspace       string
		groupKey        string
		mode            string
		outputDir       string
		fileCount       int
		annotationCount int
		createdAt       time.Time
		updatedAt       time.Time
	)
	err := row.Scan(&id, &sequence, &workspace, &groupKey, &mode, &outputDir, &fileCount, &annotationCount, &createdAt, &updatedAt)
	if err != nil {
		return nil, err
	}

	rec := models.NewSaveRecord(workspace, groupKey, models.SaveMode(mode), outputDir, fileCount, annotationCount)
	rec.SetID(id)
	rec.SetSequence(sequence)
	rec.SetCreatedAt(createdAt)
	rec.SetUpdatedAt(updatedAt)
	return rec, nil
}
