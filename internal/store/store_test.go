package store

import (
	"errors"
	"os"
	"path/filepath"
	"reflect"
	"sync"
	"testing"
	"time"

	"weekly-chronicle/internal/model"
	"weekly-chronicle/internal/week"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	return New(Config{
		DataRoot: t.TempDir(),
		Weeks:    week.Default,
	})
}

func mustWeek(t *testing.T, s string) time.Time {
	t.Helper()
	wk, err := week.ParseDate(s)
	if err != nil {
		t.Fatalf("parse week %s: %v", s, err)
	}
	return wk
}

func TestSaveLoadRoundTrip(t *testing.T) {
	s := newTestStore(t)
	wk := mustWeek(t, "2023-05-15")
	in := MergeBucket(nil, batch(rec("p1", 10, cmt("c1", 2)), rec("p2", 4)))

	if err := s.Save("testsource", wk, &in); err != nil {
		t.Fatalf("Save: %v", err)
	}
	out, err := s.Load("testsource", wk)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if out == nil {
		t.Fatal("Load returned absent for a saved bucket")
	}
	if !reflect.DeepEqual(*out, in) {
		t.Errorf("round trip mismatch:\nsaved:  %+v\nloaded: %+v", in, *out)
	}
}

func TestLoadAbsentIsNotError(t *testing.T) {
	s := newTestStore(t)
	b, err := s.Load("testsource", mustWeek(t, "2023-05-15"))
	if err != nil {
		t.Fatalf("absent bucket must not error, got %v", err)
	}
	if b != nil {
		t.Fatalf("absent bucket must be nil, got %+v", b)
	}
}

func TestLoadCorruptBucket(t *testing.T) {
	s := newTestStore(t)
	wk := mustWeek(t, "2023-05-15")
	path := s.bucketPath("testsource", wk)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte("{not json"), 0o644); err != nil {
		t.Fatal(err)
	}
	_, err := s.Load("testsource", wk)
	var ce *CorruptError
	if !errors.As(err, &ce) {
		t.Fatalf("want *CorruptError, got %v", err)
	}
}

func TestGetByDateResolvesWeek(t *testing.T) {
	s := newTestStore(t)
	wk := mustWeek(t, "2023-05-15")
	in := MergeBucket(nil, batch(rec("p1", 1)))
	if err := s.Save("testsource", wk, &in); err != nil {
		t.Fatal(err)
	}
	// A Thursday inside the same week resolves to the Monday bucket.
	b, err := s.GetByDate("testsource", time.Date(2023, 5, 18, 10, 0, 0, 0, time.UTC))
	if err != nil {
		t.Fatalf("GetByDate: %v", err)
	}
	if b == nil || len(b.Data) != 1 {
		t.Fatalf("GetByDate missed the bucket: %+v", b)
	}
}

func TestMergeThenListWeeks(t *testing.T) {
	s := newTestStore(t)
	w1 := mustWeek(t, "2023-05-15")
	w2 := mustWeek(t, "2023-05-22")

	if _, err := s.Merge("testsource", w1, batch(rec("p1", 1))); err != nil {
		t.Fatalf("Merge: %v", err)
	}
	if _, err := s.Merge("testsource", w2, batch(rec("p2", 1))); err != nil {
		t.Fatalf("Merge: %v", err)
	}

	weeks, err := s.ListWeeks("testsource")
	if err != nil {
		t.Fatalf("ListWeeks: %v", err)
	}
	if len(weeks) != 2 || !weeks[0].Equal(w2) || !weeks[1].Equal(w1) {
		t.Errorf("weeks = %v, want most recent first [%s %s]", weeks, w2, w1)
	}
}

func TestMergeRejectsInvalidBatch(t *testing.T) {
	s := newTestStore(t)
	bad := batch(rec("p1", 1), rec("p1", 2)) // duplicate id
	_, err := s.Merge("testsource", mustWeek(t, "2023-05-15"), bad)
	var pe *model.ParseError
	if !errors.As(err, &pe) {
		t.Fatalf("want *model.ParseError, got %v", err)
	}
}

func TestListWeeksSelfHealsStaleIndex(t *testing.T) {
	s := newTestStore(t)
	wk := mustWeek(t, "2023-05-15")
	in := MergeBucket(nil, batch(rec("p1", 1)))
	if err := s.Save("testsource", wk, &in); err != nil {
		t.Fatal(err)
	}
	// Sabotage the index: claim a week that has no bucket file.
	if err := s.updateManifest("testsource", func(m *manifest) {
		m.LiveWeeks = insertKey(m.LiveWeeks, "2023-01-02")
	}); err != nil {
		t.Fatal(err)
	}
	weeks, err := s.ListWeeks("testsource")
	if err != nil {
		t.Fatalf("ListWeeks: %v", err)
	}
	if len(weeks) != 1 || !weeks[0].Equal(wk) {
		t.Errorf("index was not rebuilt from disk: %v", weeks)
	}
}

func TestListWeeksWithoutIndexFile(t *testing.T) {
	s := newTestStore(t)
	wk := mustWeek(t, "2023-05-15")
	in := MergeBucket(nil, batch(rec("p1", 1)))
	if err := s.Save("testsource", wk, &in); err != nil {
		t.Fatal(err)
	}
	if err := os.Remove(s.indexPath("testsource")); err != nil {
		t.Fatal(err)
	}
	weeks, err := s.ListWeeks("testsource")
	if err != nil {
		t.Fatalf("ListWeeks: %v", err)
	}
	if len(weeks) != 1 || !weeks[0].Equal(wk) {
		t.Errorf("directory fallback failed: %v", weeks)
	}
}

func TestListSources(t *testing.T) {
	s := newTestStore(t)
	in := MergeBucket(nil, batch(rec("p1", 1)))
	if err := s.Save("beta", mustWeek(t, "2023-05-15"), &in); err != nil {
		t.Fatal(err)
	}
	if err := s.Save("alpha", mustWeek(t, "2023-05-15"), &in); err != nil {
		t.Fatal(err)
	}
	got, err := s.ListSources()
	if err != nil {
		t.Fatalf("ListSources: %v", err)
	}
	if !reflect.DeepEqual(got, []string{"alpha", "beta"}) {
		t.Errorf("sources = %v", got)
	}
}

func TestLockfileBlocksSecondWriter(t *testing.T) {
	s := newTestStore(t)
	wk := mustWeek(t, "2023-05-15")

	// Simulate another process holding the on-disk lock.
	lockPath := s.bucketPath("testsource", wk) + ".lock"
	if err := os.MkdirAll(filepath.Dir(lockPath), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(lockPath, nil, 0o644); err != nil {
		t.Fatal(err)
	}

	_, err := s.Merge("testsource", wk, batch(rec("p1", 1)))
	var le *LockError
	if !errors.As(err, &le) {
		t.Fatalf("want *LockError, got %v", err)
	}
}

func TestConcurrentMergesDoNotLoseUpdates(t *testing.T) {
	s := newTestStore(t)
	wk := mustWeek(t, "2023-05-15")

	var wg sync.WaitGroup
	ids := []string{"p1", "p2", "p3", "p4", "p5", "p6", "p7", "p8"}
	for _, id := range ids {
		wg.Add(1)
		go func(id string) {
			defer wg.Done()
			if _, err := s.Merge("testsource", wk, batch(rec(id, 1))); err != nil {
				t.Errorf("Merge %s: %v", id, err)
			}
		}(id)
	}
	wg.Wait()

	b, err := s.Load("testsource", wk)
	if err != nil || b == nil {
		t.Fatalf("Load: %v", err)
	}
	if len(b.Data) != len(ids) {
		t.Errorf("lost updates: %d records, want %d", len(b.Data), len(ids))
	}
}
