package repositories

import (
	"database/sql"
	"errors"
	"testing"

	"github.com/desertthunder/tslabel/internal/models"
	"github.com/desertthunder/tslabel/internal/shared"
	"github.com/google/go-cmp/cmp"
)

// setupTestDB creates an in-memory SQLite database with migrations applied
func setupTestDB(t *testing.T) *sql.DB {
	t.Helper()

	db, err := shared.NewDatabase(":memory:")
	if err != nil {
		t.Fatalf("failed to create test database: %v", err)
	}

	if err := shared.RunMigrations(db); err != nil {
		db.Close()
		t.Fatalf("failed to run migrations: %v", err)
	}

	return db
}

func TestSnapshotRepository(t *testing.T) {
	list := []models.Annotation{{ID: 1, Start: 10, End: 40}, {ID: 2, Start: 100, End: 180}}

	t.Run("Create", func(t *testing.T) {
		db := setupTestDB(t)
		defer db.Close()

		repo := NewSnapshotRepository(db)
		s := models.NewSnapshot("/data", "sensor_a", 0, list)

		if err := repo.Create(s); err != nil {
			t.Fatalf("failed to create snapshot: %v", err)
		}

		if s.ID() == "" {
			t.Error("snapshot ID should be set after creation")
		}
	})

	t.Run("GetByKey", func(t *testing.T) {
		db := setupTestDB(t)
		defer db.Close()

		repo := NewSnapshotRepository(db)
		s := models.NewSnapshot("/data", "sensor_a", 2, list)
		if err := repo.Create(s); err != nil {
			t.Fatalf("failed to create snapshot: %v", err)
		}

		got, err := repo.GetByKey("/data", "sensor_a")
		if err != nil {
			t.Fatalf("failed to get snapshot: %v", err)
		}

		if got.ID() != s.ID() {
			t.Errorf("expected ID %s, got %s", s.ID(), got.ID())
		}
		if got.GroupIndex() != 2 {
			t.Errorf("expected group index 2, got %d", got.GroupIndex())
		}
		if diff := cmp.Diff(list, got.Annotations()); diff != "" {
			t.Errorf("annotations mismatch (-want +got):\n%s", diff)
		}
	})

	t.Run("Save replaces existing", func(t *testing.T) {
		db := setupTestDB(t)
		defer db.Close()

		repo := NewSnapshotRepository(db)
		if err := repo.Save(models.NewSnapshot("/data", "sensor_a", 0, list)); err != nil {
			t.Fatalf("first save failed: %v", err)
		}

		replacement := []models.Annotation{{ID: 1, Start: 5, End: 50}}
		if err := repo.Save(models.NewSnapshot("/data", "sensor_a", 0, replacement)); err != nil {
			t.Fatalf("second save failed: %v", err)
		}

		all, err := repo.List(map[string]any{"workspace": "/data"})
		if err != nil {
			t.Fatalf("failed to list: %v", err)
		}
		if len(all) != 1 {
			t.Fatalf("expected 1 snapshot, got %d", len(all))
		}
		if diff := cmp.Diff(replacement, all[0].Annotations()); diff != "" {
			t.Errorf("annotations mismatch (-want +got):\n%s", diff)
		}
	})

	t.Run("Save empty snapshot", func(t *testing.T) {
		db := setupTestDB(t)
		defer db.Close()

		repo := NewSnapshotRepository(db)
		if err := repo.Save(models.NewSnapshot("/data", "sensor_a", 0, list)); err != nil {
			t.Fatalf("first save failed: %v", err)
		}
		if err := repo.Save(models.NewSnapshot("/data", "sensor_a", 0, nil)); err != nil {
			t.Fatalf("empty save failed: %v", err)
		}

		got, err := repo.GetByKey("/data", "sensor_a")
		if err != nil {
			t.Fatalf("failed to get: %v", err)
		}
		if n := len(got.Annotations()); n != 0 {
			t.Errorf("expected no annotations, got %d", n)
		}
	})

	t.Run("List filters by workspace", func(t *testing.T) {
		db := setupTestDB(t)
		defer db.Close()

		repo := NewSnapshotRepository(db)
		for i, key := range []string{"b", "a"} {
			if err := repo.Create(models.NewSnapshot("/one", key, 1-i, nil)); err != nil {
				t.Fatalf("failed to create: %v", err)
			}
		}
		if err := repo.Create(models.NewSnapshot("/two", "a", 0, nil)); err != nil {
			t.Fatalf("failed to create: %v", err)
		}

		got, err := repo.List(map[string]any{"workspace": "/one"})
		if err != nil {
			t.Fatalf("failed to list: %v", err)
		}
		if len(got) != 2 {
			t.Fatalf("expected 2 snapshots, got %d", len(got))
		}
		if got[0].GroupKey() != "a" || got[1].GroupKey() != "b" {
			t.Errorf("expected order a, b by group index, got %s, %s", got[0].GroupKey(), got[1].GroupKey())
		}

		all, err := repo.List(nil)
		if err != nil {
			t.Fatalf("failed to list all: %v", err)
		}
		if len(all) != 3 {
			t.Errorf("expected 3 snapshots, got %d", len(all))
		}
	})

	t.Run("Delete cascades", func(t *testing.T) {
		db := setupTestDB(t)
		defer db.Close()

		repo := NewSnapshotRepository(db)
		s := models.NewSnapshot("/data", "sensor_a", 0, list)
		if err := repo.Create(s); err != nil {
			t.Fatalf("failed to create: %v", err)
		}
		if err := repo.Delete(s.ID()); err != nil {
			t.Fatalf("failed to delete: %v", err)
		}

		var n int
		if err := db.QueryRow("SELECT COUNT(*) FROM snapshot_annotations").Scan(&n); err != nil {
			t.Fatalf("failed to count: %v", err)
		}
		if n != 0 {
			t.Errorf("expected annotation rows removed, got %d", n)
		}
	})
}

func TestSnapshotRepositoryErrors(t *testing.T) {
	t.Run("Get", func(t *testing.T) {
		t.Run("NotFound", func(t *testing.T) {
			db := setupTestDB(t)
			defer db.Close()

			_, err := NewSnapshotRepository(db).Get("nonexistent-id")
			if !errors.Is(err, shared.ErrSnapshotNotFound) {
				t.Fatalf("expected ErrSnapshotNotFound, got %v", err)
			}
		})
	})

	t.Run("Create", func(t *testing.T) {
		t.Run("ValidationError", func(t *testing.T) {
			db := setupTestDB(t)
			defer db.Close()

			s := models.NewSnapshot("/data", "", 0, nil)
			if err := NewSnapshotRepository(db).Create(s); err == nil {
				t.Fatal("expected validation error for empty group key")
			}
		})

		t.Run("EmptyInterval", func(t *testing.T) {
			db := setupTestDB(t)
			defer db.Close()

			s := models.NewSnapshot("/data", "k", 0, []models.Annotation{{ID: 1, Start: 5, End: 5}})
			if err := NewSnapshotRepository(db).Create(s); err == nil {
				t.Fatal("expected validation error for empty interval")
			}
		})

		t.Run("DuplicateKey", func(t *testing.T) {
			db := setupTestDB(t)
			defer db.Close()

			repo := NewSnapshotRepository(db)
			if err := repo.Create(models.NewSnapshot("/data", "k", 0, nil)); err != nil {
				t.Fatalf("failed to create first snapshot: %v", err)
			}
			if err := repo.Create(models.NewSnapshot("/data", "k", 1, nil)); err == nil {
				t.Fatal("expected unique constraint error")
			}
		})
	})

	t.Run("Update", func(t *testing.T) {
		t.Run("NotFound", func(t *testing.T) {
			db := setupTestDB(t)
			defer db.Close()

			s := models.NewSnapshot("/data", "k", 0, nil)
			s.SetID("missing")
			if err := NewSnapshotRepository(db).Update(s); !errors.Is(err, shared.ErrSnapshotNotFound) {
				t.Fatalf("expected ErrSnapshotNotFound, got %v", err)
			}
		})
	})

	t.Run("Delete", func(t *testing.T) {
		t.Run("NotFound", func(t *testing.T) {
			db := setupTestDB(t)
			defer db.Close()

			if err := NewSnapshotRepository(db).Delete("missing"); err == nil {
				t.Fatal("expected error deleting missing snapshot")
			}
		})
	})
}

func TestSaveRecordRepository(t *testing.T) {
	t.Run("Create assigns sequence", func(t *testing.T) {
		db := setupTestDB(t)
		defer db.Close()

		repo := NewSaveRecordRepository(db)
		first := models.NewSaveRecord("/data", "a", models.SaveMerged, "/out/datagroup1masks2", 2, 3)
		second := models.NewSaveRecord("/data", "b", models.SaveSeparate, "/out", 4, 0)

		for _, rec := range []*models.SaveRecord{first, second} {
			if err := repo.Create(rec); err != nil {
				t.Fatalf("failed to create record: %v", err)
			}
		}

		if first.Sequence() != 1 || second.Sequence() != 2 {
			t.Errorf("expected sequences 1, 2; got %d, %d", first.Sequence(), second.Sequence())
		}
	})

	t.Run("List newest first with limit", func(t *testing.T) {
		db := setupTestDB(t)
		defer db.Close()

		repo := NewSaveRecordRepository(db)
		for _, key := range []string{"a", "b", "c"} {
			if err := repo.Create(models.NewSaveRecord("/data", key, models.SaveMerged, "/out", 1, 1)); err != nil {
				t.Fatalf("failed to create record: %v", err)
			}
		}

		got, err := repo.List(map[string]any{"workspace": "/data", "limit": 2})
		if err != nil {
			t.Fatalf("failed to list: %v", err)
		}
		if len(got) != 2 {
			t.Fatalf("expected 2 records, got %d", len(got))
		}
		if got[0].GroupKey() != "c" || got[1].GroupKey() != "b" {
			t.Errorf("expected c, b; got %s, %s", got[0].GroupKey(), got[1].GroupKey())
		}
	})

	t.Run("Get Update Delete", func(t *testing.T) {
		db := setupTestDB(t)
		defer db.Close()

		repo := NewSaveRecordRepository(db)
		rec := models.NewSaveRecord("/data", "a", models.SaveMerged, "/out", 1, 1)
		if err := repo.Create(rec); err != nil {
			t.Fatalf("failed to create record: %v", err)
		}

		got, err := repo.Get(rec.ID())
		if err != nil {
			t.Fatalf("failed to get record: %v", err)
		}
		if got.Mode() != models.SaveMerged || got.OutputDir() != "/out" {
			t.Errorf("unexpected record %+v", got)
		}

		updated := models.NewSaveRecord("/data", "a", models.SaveMerged, "/elsewhere", 2, 5)
		updated.SetID(rec.ID())
		if err := repo.Update(updated); err != nil {
			t.Fatalf("failed to update record: %v", err)
		}
		got, _ = repo.Get(rec.ID())
		if got.OutputDir() != "/elsewhere" || got.AnnotationCount() != 5 {
			t.Errorf("update not applied: %s %d", got.OutputDir(), got.AnnotationCount())
		}

		if err := repo.Delete(rec.ID()); err != nil {
			t.Fatalf("failed to delete record: %v", err)
		}
		if _, err := repo.Get(rec.ID()); err == nil {
			t.Error("expected error getting deleted record")
		}
	})

	t.Run("ValidationError", func(t *testing.T) {
		db := setupTestDB(t)
		defer db.Close()

		rec := models.NewSaveRecord("/data", "a", models.SaveMode("zip"), "/out", 1, 1)
		if err := NewSaveRecordRepository(db).Create(rec); err == nil {
			t.Fatal("expected validation error for unknown mode")
		}
	})
}
