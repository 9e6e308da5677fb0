// Package store persists scraped records as one JSON bucket per
// (source, calendar week), merges fresh batches into existing buckets, and
// relocates old buckets into an archive tree once they fall out of the
// retention horizon.
package store

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"weekly-chronicle/internal/model"
	"weekly-chronicle/internal/week"
)

const (
	bucketPrefix = "week_"
	bucketSuffix = ".json"
)

// Config carries the store's construction parameters.
type Config struct {
	DataRoot    string
	ArchiveRoot string // defaults to <DataRoot>/archive
	Weeks       week.Indexer
}

// Store is the weekly bucket store. All writes to one (source, week) key are
// serialized through an in-process mutex plus an on-disk lockfile, so a
// concurrent writer in another process fails with *LockError instead of
// silently losing updates.
type Store struct {
	dataRoot    string
	archiveRoot string
	weeks       week.Indexer

	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

// New creates a store rooted at cfg.DataRoot.
func New(cfg Config) *Store {
	if cfg.ArchiveRoot == "" {
		cfg.ArchiveRoot = filepath.Join(cfg.DataRoot, "archive")
	}
	return &Store{
		dataRoot:    cfg.DataRoot,
		archiveRoot: cfg.ArchiveRoot,
		weeks:       cfg.Weeks,
		locks:       map[string]*sync.Mutex{},
	}
}

// Weeks exposes the indexer the store buckets by.
func (s *Store) Weeks() week.Indexer { return s.weeks }

func (s *Store) sourceDir(sourceID string) string {
	return filepath.Join(s.dataRoot, sourceID)
}

func (s *Store) archiveDir(sourceID string) string {
	return filepath.Join(s.archiveRoot, sourceID)
}

func bucketFile(wk time.Time) string {
	return bucketPrefix + week.FormatDate(wk) + bucketSuffix
}

func (s *Store) bucketPath(sourceID string, wk time.Time) string {
	return filepath.Join(s.sourceDir(sourceID), bucketFile(wk))
}

func (s *Store) archivePath(sourceID string, wk time.Time) string {
	return filepath.Join(s.archiveDir(sourceID), bucketFile(wk))
}

func (s *Store) keyMutex(key string) *sync.Mutex {
	s.mu.Lock()
	defer s.mu.Unlock()
	m, ok := s.locks[key]
	if !ok {
		m = &sync.Mutex{}
		s.locks[key] = m
	}
	return m
}

// lockWeek enters the (source, week) critical section. The keyed mutex
// serializes writers inside this process; the lockfile catches a second
// process writing the same bucket.
func (s *Store) lockWeek(sourceID string, wk time.Time) (func(), error) {
	m := s.keyMutex(sourceID + "|" + week.FormatDate(wk))
	m.Lock()
	lockPath := s.bucketPath(sourceID, wk) + ".lock"
	if err := os.MkdirAll(s.sourceDir(sourceID), 0o755); err != nil {
		m.Unlock()
		return nil, err
	}
	f, err := os.OpenFile(lockPath, os.O_CREATE|os.O_EXCL|os.O_WRONLY, 0o644)
	if err != nil {
		m.Unlock()
		if errors.Is(err, fs.ErrExist) {
			return nil, &LockError{SourceID: sourceID, Week: wk, Path: lockPath}
		}
		return nil, err
	}
	f.Close()
	return func() {
		os.Remove(lockPath)
		m.Unlock()
	}, nil
}

// Load returns the bucket for (sourceID, week), looking in live storage first
// and then in the archive. Absence is not an error: a missing bucket returns
// (nil, nil). An unreadable or undecodable file returns *CorruptError.
func (s *Store) Load(sourceID string, wk time.Time) (*model.Bucket, error) {
	b, err := loadBucketFile(s.bucketPath(sourceID, wk))
	if b != nil || err != nil {
		return b, err
	}
	return loadBucketFile(s.archivePath(sourceID, wk))
}

// GetByDate resolves date to its week and loads that bucket.
func (s *Store) GetByDate(sourceID string, date time.Time) (*model.Bucket, error) {
	return s.Load(sourceID, s.weeks.Start(date))
}

func loadBucketFile(path string) (*model.Bucket, error) {
	raw, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, &CorruptError{Path: path, Err: err}
	}
	var b model.Bucket
	if err := json.Unmarshal(raw, &b); err != nil {
		return nil, &CorruptError{Path: path, Err: err}
	}
	return &b, nil
}

// Save overwrites the live bucket for (sourceID, week) and updates the source
// index. The write is atomic: readers either see the previous content or the
// new content, never a torn file.
func (s *Store) Save(sourceID string, wk time.Time, b *model.Bucket) error {
	unlock, err := s.lockWeek(sourceID, wk)
	if err != nil {
		return err
	}
	defer unlock()
	return s.saveLocked(sourceID, wk, b)
}

func (s *Store) saveLocked(sourceID string, wk time.Time, b *model.Bucket) error {
	if err := writeJSONAtomic(s.bucketPath(sourceID, wk), b); err != nil {
		return err
	}
	return s.recordLive(sourceID, wk, b.Meta)
}

// Merge runs the load -> merge -> save cycle for the batch under the week key
// the caller picked. Picking the right week is the caller's contract; the
// merge never re-routes records across weeks.
func (s *Store) Merge(sourceID string, wk time.Time, batch model.Batch) (*model.Bucket, error) {
	if err := batch.Validate(); err != nil {
		return nil, err
	}
	unlock, err := s.lockWeek(sourceID, wk)
	if err != nil {
		return nil, err
	}
	defer unlock()

	existing, err := loadBucketFile(s.bucketPath(sourceID, wk))
	if err != nil {
		return nil, err
	}
	merged := MergeBucket(existing, batch)
	if err := s.saveLocked(sourceID, wk, &merged); err != nil {
		return nil, err
	}
	return &merged, nil
}

// ListWeeks returns the live weeks known for a source, most recent first. The
// source index answers the call; if it is missing or disagrees with the files
// on disk, it is rebuilt from a directory scan first.
func (s *Store) ListWeeks(sourceID string) ([]time.Time, error) {
	man, err := s.freshManifest(sourceID)
	if err != nil {
		return nil, err
	}
	return parseWeekKeys(man.LiveWeeks)
}

// ListArchivedWeeks returns the archived weeks for a source, most recent first.
func (s *Store) ListArchivedWeeks(sourceID string) ([]time.Time, error) {
	man, err := s.freshManifest(sourceID)
	if err != nil {
		return nil, err
	}
	return parseWeekKeys(man.ArchivedWeeks)
}

// ListSources enumerates every source that has data on disk, live or archived.
func (s *Store) ListSources() ([]string, error) {
	set := map[string]struct{}{}
	for _, root := range []string{s.dataRoot, s.archiveRoot} {
		entries, err := os.ReadDir(root)
		if errors.Is(err, fs.ErrNotExist) {
			continue
		}
		if err != nil {
			return nil, err
		}
		for _, e := range entries {
			if !e.IsDir() {
				continue
			}
			// The default archive root nests under the data root.
			if filepath.Join(root, e.Name()) == s.archiveRoot {
				continue
			}
			set[e.Name()] = struct{}{}
		}
	}
	out := make([]string, 0, len(set))
	for id := range set {
		out = append(out, id)
	}
	sortStrings(out)
	return out, nil
}

func parseWeekKeys(keys []string) ([]time.Time, error) {
	out := make([]time.Time, 0, len(keys))
	for _, k := range keys {
		wk, err := week.ParseDate(k)
		if err != nil {
			return nil, err
		}
		out = append(out, wk)
	}
	return out, nil
}

// scanWeeks lists the week keys present as bucket files in dir, most recent
// first. This is the ground truth the index is reconciled against.
func scanWeeks(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	var keys []string
	for _, e := range entries {
		name := e.Name()
		if e.IsDir() || !strings.HasPrefix(name, bucketPrefix) || !strings.HasSuffix(name, bucketSuffix) {
			continue
		}
		key := strings.TrimSuffix(strings.TrimPrefix(name, bucketPrefix), bucketSuffix)
		if _, err := week.ParseDate(key); err != nil {
			continue // stray file, not a bucket
		}
		keys = append(keys, key)
	}
	sortStringsDesc(keys)
	return keys, nil
}

func writeJSONAtomic(path string, v any) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}
	raw, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	tmp, err := os.CreateTemp(dir, ".tmp-*")
	if err != nil {
		return err
	}
	if _, err := tmp.Write(raw); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return err
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return err
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("rename %s: %w", path, err)
	}
	return nil
}
