package repositories

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/desertthunder/tslabel/internal/models"
	"github.com/desertthunder/tslabel/internal/shared"
)

// SnapshotRepository implements models.Repository[*models.Snapshot] for per-group annotation sets.
//
// A snapshot row and its annotation rows are always written in one transaction.
type SnapshotRepository struct {
	db *sql.DB
}

// NewSnapshotRepository creates a new SnapshotRepository with the given database connection
func NewSnapshotRepository(db *sql.DB) *SnapshotRepository {
	return &SnapshotRepository{db: db}
}

// Create inserts a new snapshot with a generated ID.
func (r *SnapshotRepository) Create(s *models.Snapshot) error {
	s.SetID(shared.GenerateID())
	if err := s.Validate(); err != nil {
		return fmt.Errorf("validation failed: %w", err)
	}

	tx, err := r.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	query := `
		INSERT INTO snapshots (id, workspace, group_key, group_index, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?)
	`
	if _, err := tx.Exec(query, s.ID(), s.Workspace(), s.GroupKey(), s.GroupIndex(), s.CreatedAt(), s.UpdatedAt()); err != nil {
		return fmt.Errorf("failed to insert snapshot: %w", err)
	}

	if err := writeAnnotations(tx, s.ID(), s.Annotations()); err != nil {
		return err
	}

	return tx.Commit()
}

// Get retrieves a snapshot by ID with its annotations.
func (r *SnapshotRepository) Get(id string) (*models.Snapshot, error) {
	query := `
		SELECT id, workspace, group_key, group_index, created_at, updated_at
		FROM snapshots
		WHERE id = ?
	`
	return r.load(r.db.QueryRow(query, id), id)
}

// GetByKey retrieves the snapshot of one group in one workspace.
func (r *SnapshotRepository) GetByKey(workspace, groupKey string) (*models.Snapshot, error) {
	query := `
		SELECT id, workspace, group_key, group_index, created_at, updated_at
		FROM snapshots
		WHERE workspace = ? AND group_key = ?
	`
	return r.load(r.db.QueryRow(query, workspace, groupKey), groupKey)
}

// Update replaces the annotation rows and index of an existing snapshot.
func (r *SnapshotRepository) Update(s *models.Snapshot) error {
	if err := s.Validate(); err != nil {
		return fmt.Errorf("validation failed: %w", err)
	}

	now := time.Now()
	s.SetUpdatedAt(now)

	tx, err := r.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	result, err := tx.Exec(`UPDATE snapshots SET group_index = ?, updated_at = ? WHERE id = ?`, s.GroupIndex(), now, s.ID())
	if err != nil {
		return fmt.Errorf("failed to update snapshot: %w", err)
	}
	if err := affectedOne(result, shared.ErrSnapshotNotFound, s.ID()); err != nil {
		return err
	}

	if _, err := tx.Exec(`DELETE FROM snapshot_annotations WHERE snapshot_id = ?`, s.ID()); err != nil {
		return fmt.Errorf("failed to clear snapshot annotations: %w", err)
	}
	if err := writeAnnotations(tx, s.ID(), s.Annotations()); err != nil {
		return err
	}

	return tx.Commit()
}

// Save creates the snapshot for (workspace, group key) or replaces the existing one.
func (r *SnapshotRepository) Save(s *models.Snapshot) error {
	existing, err := r.GetByKey(s.Workspace(), s.GroupKey())
	switch {
	case errors.Is(err, shared.ErrSnapshotNotFound):
		return r.Create(s)
	case err != nil:
		return err
	}
	s.SetID(existing.ID())
	return r.Update(s)
}

// Delete removes a snapshot and, by cascade, its annotations.
func (r *SnapshotRepository) Delete(id string) error {
	result, err := r.db.Exec(`DELETE FROM snapshots WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("failed to delete snapshot: %w", err)
	}
	return affectedOne(result, shared.ErrSnapshotNotFound, id)
}

// List retrieves snapshots matching the given criteria ordered by group index.
//
// Supported criteria: "workspace" (string).
func (r *SnapshotRepository) List(criteria map[string]any) ([]*models.Snapshot, error) {
	query := `
		SELECT id, workspace, group_key, group_index, created_at, updated_at
		FROM snapshots
	`
	args := []any{}
	if ws, ok := criteria["workspace"].(string); ok && ws != "" {
		query += " WHERE workspace = ?"
		args = append(args, ws)
	}
	query += " ORDER BY workspace ASC, group_index ASC"

	rows, err := r.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query snapshots: %w", err)
	}

	var headers []*models.Snapshot
	for rows.Next() {
		s, err := scanSnapshot(rows)
		if err != nil {
			rows.Close()
			return nil, err
		}
		headers = append(headers, s)
	}
	if err := rows.Err(); err != nil {
		rows.Close()
		return nil, fmt.Errorf("row iteration error: %w", err)
	}
	rows.Close()

	for _, s := range headers {
		list, err := r.annotations(s.ID())
		if err != nil {
			return nil, err
		}
		s.SetAnnotations(list)
	}
	return headers, nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanSnapshot(row scanner) (*models.Snapshot, error) {
	var (
		id         string
		workspace  string
		groupKey   string
		groupIndex int
		createdAt  time.Time
		updatedAt  time.Time
	)
	if err := row.Scan(&id, &workspace, &groupKey, &groupIndex, &createdAt, &updatedAt); err != nil {
		return nil, err
	}
	return models.RestoreSnapshot(id, workspace, groupKey, groupIndex, nil, createdAt, updatedAt), nil
}

func (r *SnapshotRepository) load(row *sql.Row, key string) (*models.Snapshot, error) {
	s, err := scanSnapshot(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: %s", shared.ErrSnapshotNotFound, key)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to scan snapshot: %w", err)
	}

	list, err := r.annotations(s.ID())
	if err != nil {
		return nil, err
	}
	s.SetAnnotations(list)
	return s, nil
}

func (r *SnapshotRepository) annotations(snapshotID string) ([]models.Annotation, error) {
	rows, err := r.db.Query(`
		SELECT annotation_id, start_index, end_index
		FROM snapshot_annotations
		WHERE snapshot_id = ?
		ORDER BY start_index ASC, annotation_id ASC
	`, snapshotID)
	if err != nil {
		return nil, fmt.Errorf("failed to query snapshot annotations: %w", err)
	}
	defer rows.Close()

	var list []models.Annotation
	for rows.Next() {
		var a models.Annotation
		if err := rows.Scan(&a.ID, &a.Start, &a.End); err != nil {
			return nil, fmt.Errorf("failed to scan annotation: %w", err)
		}
		list = append(list, a)
	}
	return list, rows.Err()
}

func writeAnnotations(q querier, snapshotID string, list []models.Annotation) error {
	for _, a := range list {
		_, err := q.Exec(
			`INSERT INTO snapshot_annotations (snapshot_id, annotation_id, start_index, end_index) VALUES (?, ?, ?, ?)`,
			snapshotID, a.ID, a.Start, a.End,
		)
		if err != nil {
			return fmt.Errorf("failed to insert annotation %d: %w", a.ID, err)
		}
	}
	return nil
}
