package store

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func seedWeeks(t *testing.T, s *Store, sourceID string, keys ...string) {
	t.Helper()
	for _, k := range keys {
		in := MergeBucket(nil, batch(rec("p-"+k, 1)))
		if err := s.Save(sourceID, mustWeek(t, k), &in); err != nil {
			t.Fatalf("seed %s: %v", k, err)
		}
	}
}

func TestArchiveCutoffAndIdempotence(t *testing.T) {
	s := newTestStore(t)
	seedWeeks(t, s, "testsource", "2023-01-02", "2023-03-06", "2023-05-01")

	now := time.Date(2023, 5, 15, 9, 0, 0, 0, time.UTC)
	// Cutoff is 2023-02-20: only 2023-01-02 is strictly older.
	n, err := s.ArchiveOlder("testsource", 12, now)
	if err != nil {
		t.Fatalf("ArchiveOlder: %v", err)
	}
	if n != 1 {
		t.Errorf("archived %d buckets, want 1", n)
	}

	live, err := s.ListWeeks("testsource")
	if err != nil {
		t.Fatal(err)
	}
	if len(live) != 2 {
		t.Errorf("live weeks = %v, want 2 entries", live)
	}
	arch, err := s.ListArchivedWeeks("testsource")
	if err != nil {
		t.Fatal(err)
	}
	if len(arch) != 1 || !arch[0].Equal(mustWeek(t, "2023-01-02")) {
		t.Errorf("archived weeks = %v", arch)
	}

	// Second run with the same horizon archives nothing new.
	n, err = s.ArchiveOlder("testsource", 12, now)
	if err != nil {
		t.Fatalf("second ArchiveOlder: %v", err)
	}
	if n != 0 {
		t.Errorf("second run archived %d buckets, want 0", n)
	}
}

func TestArchivedBucketStillLoads(t *testing.T) {
	s := newTestStore(t)
	seedWeeks(t, s, "testsource", "2023-01-02")

	now := time.Date(2023, 5, 15, 0, 0, 0, 0, time.UTC)
	if _, err := s.ArchiveOlder("testsource", 4, now); err != nil {
		t.Fatal(err)
	}
	b, err := s.Load("testsource", mustWeek(t, "2023-01-02"))
	if err != nil {
		t.Fatalf("Load after archive: %v", err)
	}
	if b == nil || len(b.Data) != 1 {
		t.Fatalf("archived bucket not retrievable: %+v", b)
	}
}

func TestArchivePartialFailure(t *testing.T) {
	s := newTestStore(t)
	seedWeeks(t, s, "testsource", "2023-01-02", "2023-01-09")

	// Block the destination of one bucket with a non-empty directory so the
	// rename fails for that week only.
	blocked := filepath.Join(s.archiveDir("testsource"), bucketFile(mustWeek(t, "2023-01-09")))
	if err := os.MkdirAll(filepath.Join(blocked, "x"), 0o755); err != nil {
		t.Fatal(err)
	}

	now := time.Date(2023, 5, 15, 0, 0, 0, 0, time.UTC)
	n, err := s.ArchiveOlder("testsource", 4, now)
	var ae *ArchiveError
	if !errors.As(err, &ae) {
		t.Fatalf("want *ArchiveError, got %v", err)
	}
	if n != 1 || ae.Archived != 1 {
		t.Errorf("archived = %d (err says %d), want 1", n, ae.Archived)
	}
	if _, ok := ae.Failures["2023-01-09"]; !ok {
		t.Errorf("failures = %v, want entry for 2023-01-09", ae.Failures)
	}

	// The successful move is not rolled back.
	arch, err := s.ListArchivedWeeks("testsource")
	if err != nil {
		t.Fatal(err)
	}
	if len(arch) != 1 || !arch[0].Equal(mustWeek(t, "2023-01-02")) {
		t.Errorf("archived weeks = %v", arch)
	}
}

func TestArchiveNothingToDo(t *testing.T) {
	s := newTestStore(t)
	seedWeeks(t, s, "testsource", "2023-05-01")
	n, err := s.ArchiveOlder("testsource", 12, time.Date(2023, 5, 15, 0, 0, 0, 0, time.UTC))
	if err != nil {
		t.Fatalf("ArchiveOlder: %v", err)
	}
	if n != 0 {
		t.Errorf("archived %d, want 0", n)
	}
}
