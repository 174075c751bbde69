package annotations

import (
	"errors"
	"slices"
	"testing"

	"github.com/desertthunder/tslabel/internal/models"
	"github.com/desertthunder/tslabel/internal/shared"
	"github.com/google/go-cmp/cmp"
)

func assertDense(t *testing.T, s *Store) {
	t.Helper()
	list := s.List()
	for i, a := range list {
		if a.ID != i+1 {
			t.Errorf("position %d has id %d, want %d", i, a.ID, i+1)
		}
		if a.Start >= a.End {
			t.Errorf("annotation %d has empty range", a.ID)
		}
		if i > 0 && list[i-1].Start > a.Start {
			t.Errorf("list not start-ascending at %d", i)
		}
	}
}

func TestStoreAdd(t *testing.T) {
	t.Run("renumbers by start", func(t *testing.T) {
		s := NewStore()

		id, err := s.Add(100, 250)
		if err != nil || id != 1 {
			t.Fatalf("Add(100, 250) = %d, %v; want 1, nil", id, err)
		}

		id, err = s.Add(50, 80)
		if err != nil || id != 1 {
			t.Fatalf("Add(50, 80) = %d, %v; want 1, nil", id, err)
		}

		want := []models.Annotation{{ID: 1, Start: 50, End: 80}, {ID: 2, Start: 100, End: 250}}
		if diff := cmp.Diff(want, s.List()); diff != "" {
			t.Errorf("list mismatch (-want +got):\n%s", diff)
		}

		if !s.Remove(1) {
			t.Fatal("Remove(1) should succeed")
		}
		want = []models.Annotation{{ID: 1, Start: 100, End: 250}}
		if diff := cmp.Diff(want, s.List()); diff != "" {
			t.Errorf("after remove (-want +got):\n%s", diff)
		}
	})

	t.Run("normalizes reversed bounds", func(t *testing.T) {
		s := NewStore()
		if _, err := s.Add(300, 200); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		a, _ := s.Get(1)
		if a.Start != 200 || a.End != 300 {
			t.Errorf("expected [200, 300), got %v", a)
		}
	})

	t.Run("rejects narrow intervals", func(t *testing.T) {
		tc := []struct {
			name       string
			start, end int
			opts       []Option
			wantErr    bool
		}{
			{name: "exact minimum", start: 0, end: 10},
			{name: "one below minimum", start: 0, end: 9, wantErr: true},
			{name: "zero width", start: 5, end: 5, wantErr: true},
			{name: "custom minimum", start: 0, end: 15, opts: []Option{WithMinWidth(20)}, wantErr: true},
		}

		for _, tt := range tc {
			t.Run(tt.name, func(t *testing.T) {
				s := NewStore(tt.opts...)
				_, err := s.Add(tt.start, tt.end)
				if tt.wantErr {
					if !errors.Is(err, shared.ErrInvalidInterval) {
						t.Errorf("expected ErrInvalidInterval, got %v", err)
					}
					if s.Len() != 0 {
						t.Errorf("rejected add should not change the store")
					}
					return
				}
				if err != nil {
					t.Errorf("unexpected error: %v", err)
				}
			})
		}
	})

	t.Run("ids stay dense", func(t *testing.T) {
		s := NewStore()
		for _, start := range []int{500, 20, 300, 20, 900, 0} {
			if _, err := s.Add(start, start+50); err != nil {
				t.Fatalf("Add(%d) failed: %v", start, err)
			}
			assertDense(t, s)
		}
		if s.Len() != 6 {
			t.Errorf("expected 6 annotations, got %d", s.Len())
		}
	})

	t.Run("ties keep insertion order", func(t *testing.T) {
		s := NewStore()
		s.Add(10, 100)
		s.Add(10, 30)

		list := s.List()
		if list[0].End != 100 || list[1].End != 30 {
			t.Errorf("expected insertion order among equal starts, got %v", list)
		}
	})
}

func TestStoreUpdatePosition(t *testing.T) {
	s := NewStore()
	s.Add(0, 50)
	s.Add(100, 150)
	s.Add(200, 250)

	if !s.UpdatePosition(1, 400, 300) {
		t.Fatal("UpdatePosition should succeed for a known id")
	}

	if s.Len() != 3 {
		t.Errorf("count changed to %d", s.Len())
	}

	got := s.List()
	ids := []int{got[0].ID, got[1].ID, got[2].ID}
	if !slices.Equal(ids, []int{2, 3, 1}) {
		t.Errorf("expected ids 2,3,1 after re-sort without renumber, got %v", ids)
	}

	a, _ := s.Get(1)
	if a.Start != 300 || a.End != 400 {
		t.Errorf("expected normalized [300, 400), got %v", a)
	}

	if s.UpdatePosition(99, 0, 10) {
		t.Error("unknown id should report false")
	}
	if s.UpdatePosition(2, 10, 10) {
		t.Error("empty interval should report false")
	}
}

func TestStoreRemoveMany(t *testing.T) {
	s := NewStore()
	for _, start := range []int{0, 100, 200, 300} {
		s.Add(start, start+20)
	}

	if n := s.RemoveMany([]int{2, 4, 4, 9}); n != 2 {
		t.Errorf("expected 2 removals, got %d", n)
	}

	want := []models.Annotation{{ID: 1, Start: 0, End: 20}, {ID: 2, Start: 200, End: 220}}
	if diff := cmp.Diff(want, s.List()); diff != "" {
		t.Errorf("survivors mismatch (-want +got):\n%s", diff)
	}

	if s.Remove(7) {
		t.Error("removing unknown id should report false")
	}
}

func TestStoreQueries(t *testing.T) {
	s := NewStore()
	s.Add(0, 10)
	s.Add(10, 20)
	s.Add(40, 100)

	t.Run("Overlap excludes abutting intervals", func(t *testing.T) {
		got := s.Overlap(10, 20)
		if len(got) != 1 || got[0].Start != 10 {
			t.Errorf("expected only [10, 20), got %v", got)
		}
	})

	t.Run("Overlap is translation symmetric", func(t *testing.T) {
		for _, shift := range []int{-5, 0, 7, 1000} {
			a := models.Annotation{Start: shift, End: shift + 10}
			if !a.Overlaps(shift+5, shift+15) {
				t.Errorf("shift %d: expected overlap", shift)
			}
			if a.Overlaps(shift+10, shift+20) {
				t.Errorf("shift %d: abutting intervals should not overlap", shift)
			}
		}
	})

	t.Run("At", func(t *testing.T) {
		a, ok := s.At(50)
		if !ok || a.ID != 3 {
			t.Errorf("At(50) = %v, %v", a, ok)
		}
		if _, ok := s.At(30); ok {
			t.Error("At(30) should miss")
		}
	})

	t.Run("Stats", func(t *testing.T) {
		want := models.Stats{Count: 3, Total: 80, Average: 80.0 / 3, Min: 10, Max: 60}
		if diff := cmp.Diff(want, s.Stats()); diff != "" {
			t.Errorf("stats mismatch (-want +got):\n%s", diff)
		}
		if got := NewStore().Stats(); got != (models.Stats{}) {
			t.Errorf("empty stats should be zero, got %+v", got)
		}
	})
}

func TestStoreDraft(t *testing.T) {
	t.Run("commit", func(t *testing.T) {
		s := NewStore()
		if err := s.StartDraft(200); err != nil {
			t.Fatalf("StartDraft failed: %v", err)
		}
		s.UpdateDraft(120)

		d, ok := s.Draft()
		if !ok || d.Start != 120 || d.End != 200 {
			t.Errorf("draft = %v, %v", d, ok)
		}

		id, err := s.CommitDraft(10)
		if err != nil || id != 1 {
			t.Fatalf("CommitDraft = %d, %v", id, err)
		}
		if _, ok := s.Draft(); ok {
			t.Error("draft should be cleared after commit")
		}
	})

	t.Run("anchor survives crossing", func(t *testing.T) {
		s := NewStore()
		s.StartDraft(100)
		s.UpdateDraft(50)
		s.UpdateDraft(180)
		d, _ := s.Draft()
		if d.Start != 100 || d.End != 180 {
			t.Errorf("expected [100, 180), got %v", d)
		}
	})

	t.Run("narrow commit is rejected and discarded", func(t *testing.T) {
		s := NewStore()
		s.StartDraft(10)
		s.UpdateDraft(15)
		if _, err := s.CommitDraft(10); !errors.Is(err, shared.ErrInvalidInterval) {
			t.Errorf("expected ErrInvalidInterval, got %v", err)
		}
		if _, ok := s.Draft(); ok {
			t.Error("rejected draft should be discarded")
		}
	})

	t.Run("cancel has no side effects", func(t *testing.T) {
		s := NewStore()
		s.Add(0, 50)
		events := 0
		for _, et := range []EventType{EventAdded, EventRemoved, EventUpdated, EventCleared} {
			s.On(et, func(Event) { events++ })
		}
		s.StartDraft(100)
		s.UpdateDraft(200)
		s.CancelDraft()
		if s.Len() != 1 || events != 0 {
			t.Errorf("cancel changed state: len=%d events=%d", s.Len(), events)
		}
	})

	t.Run("errors", func(t *testing.T) {
		s := NewStore()
		if err := s.StartDraft(-1); !errors.Is(err, shared.ErrInvalidInterval) {
			t.Errorf("expected ErrInvalidInterval for negative start, got %v", err)
		}
		if _, err := s.CommitDraft(10); !errors.Is(err, shared.ErrNoDraft) {
			t.Errorf("expected ErrNoDraft, got %v", err)
		}
	})
}

func TestStoreImportExport(t *testing.T) {
	t.Run("round trip keeps intervals", func(t *testing.T) {
		src := NewStore()
		for _, iv := range [][2]int{{300, 400}, {0, 30}, {120, 180}} {
			src.Add(iv[0], iv[1])
		}
		exported := src.ExportAll()

		list := make([]models.Annotation, len(exported))
		for i, e := range exported {
			list[i] = models.Annotation{ID: e.ID, Start: e.Start, End: e.End}
		}

		dst := NewStore()
		if err := dst.ImportAll(list); err != nil {
			t.Fatalf("ImportAll failed: %v", err)
		}
		if diff := cmp.Diff(exported, dst.ExportAll()); diff != "" {
			t.Errorf("round trip mismatch (-want +got):\n%s", diff)
		}
	})

	t.Run("derives missing ids and renumbers", func(t *testing.T) {
		s := NewStore()
		err := s.ImportAll([]models.Annotation{
			{ID: 7, Start: 500, End: 600},
			{Start: 10, End: 40},
			{ID: 3, Start: 90, End: 60},
		})
		if err != nil {
			t.Fatalf("ImportAll failed: %v", err)
		}
		assertDense(t, s)

		want := []models.Annotation{{ID: 1, Start: 10, End: 40}, {ID: 2, Start: 60, End: 90}, {ID: 3, Start: 500, End: 600}}
		if diff := cmp.Diff(want, s.List()); diff != "" {
			t.Errorf("import mismatch (-want +got):\n%s", diff)
		}

		id, _ := s.Add(1000, 1100)
		if id != 4 {
			t.Errorf("next id after import should be 4, got %d", id)
		}
	})

	t.Run("empty interval rejects the whole import", func(t *testing.T) {
		s := NewStore()
		s.Add(0, 50)
		err := s.ImportAll([]models.Annotation{{Start: 10, End: 40}, {Start: 5, End: 5}})
		if !errors.Is(err, shared.ErrInvalidInterval) {
			t.Fatalf("expected ErrInvalidInterval, got %v", err)
		}
		if s.Len() != 1 {
			t.Errorf("failed import should keep prior contents")
		}
	})

	t.Run("export includes length", func(t *testing.T) {
		s := NewStore()
		s.Add(100, 250)
		got := s.ExportAll()
		if got[0].Length != 150 {
			t.Errorf("expected length 150, got %d", got[0].Length)
		}
	})
}

func TestStoreClear(t *testing.T) {
	s := NewStore()
	s.Add(0, 50)
	s.Add(100, 150)
	s.StartDraft(300)

	cleared := false
	s.On(EventCleared, func(Event) { cleared = true })
	s.Clear()

	if s.Len() != 0 || !cleared {
		t.Errorf("clear: len=%d event=%v", s.Len(), cleared)
	}
	if _, ok := s.Draft(); ok {
		t.Error("clear should drop the draft")
	}
	if id, _ := s.Add(10, 30); id != 1 {
		t.Errorf("counter should reset, got id %d", id)
	}
}

func TestStoreEvents(t *testing.T) {
	s := NewStore()
	var got []string
	record := func(e Event) { got = append(got, e.Type.String()) }
	for _, et := range []EventType{EventAdded, EventRemoved, EventUpdated, EventRenumbered} {
		s.On(et, record)
	}

	var remap map[int]int
	s.On(EventRenumbered, func(e Event) { remap = e.Remap })

	s.Add(100, 200)
	s.Add(0, 50)

	if diff := cmp.Diff(map[int]int{1: 2}, remap); diff != "" {
		t.Errorf("remap mismatch (-want +got):\n%s", diff)
	}

	s.UpdatePosition(2, 110, 210)
	s.Remove(1)

	want := []string{"added", "renumbered", "added", "updated", "renumbered", "removed"}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("event order mismatch (-want +got):\n%s", diff)
	}
}

func TestClamp(t *testing.T) {
	tc := []struct {
		name               string
		start, end, max    int
		wantStart, wantEnd int
	}{
		{"inside", 10, 20, 100, 10, 20},
		{"negative start", -5, 20, 100, 0, 20},
		{"end past length", 90, 150, 100, 90, 100},
		{"start past length", 150, 200, 100, 99, 100},
		{"inverted", 50, 40, 100, 50, 51},
	}

	for _, tt := range tc {
		t.Run(tt.name, func(t *testing.T) {
			s, e := Clamp(tt.start, tt.end, tt.max)
			if s != tt.wantStart || e != tt.wantEnd {
				t.Errorf("Clamp(%d, %d, %d) = %d, %d; want %d, %d", tt.start, tt.end, tt.max, s, e, tt.wantStart, tt.wantEnd)
			}
		})
	}
}
