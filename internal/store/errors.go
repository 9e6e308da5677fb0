package store

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"weekly-chronicle/internal/week"
)

// CorruptError marks a bucket file that exists but cannot be read or decoded.
// Callers must not confuse it with an absent bucket: absent means "no data
// yet", corrupt means the data on disk is bad.
type CorruptError struct {
	Path string
	Err  error
}

func (e *CorruptError) Error() string {
	return fmt.Sprintf("corrupt bucket %s: %v", e.Path, e.Err)
}

func (e *CorruptError) Unwrap() error { return e.Err }

// LockError reports a second writer attempting to enter the same
// (source, week) critical section. Merge is read-modify-write, so a
// concurrent writer would lose updates; we fail loudly instead.
type LockError struct {
	SourceID string
	Week     time.Time
	Path     string
}

func (e *LockError) Error() string {
	return fmt.Sprintf("bucket %s/%s is locked by another writer (%s)",
		e.SourceID, week.FormatDate(e.Week), e.Path)
}

// ArchiveError aggregates per-bucket relocation failures from one archive run.
// Successes are never rolled back; Archived counts the buckets that moved.
type ArchiveError struct {
	SourceID string
	Archived int
	Failures map[string]error // week key -> failure
}

func (e *ArchiveError) Error() string {
	keys := make([]string, 0, len(e.Failures))
	for k := range e.Failures {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return fmt.Sprintf("archive %s: %d archived, %d failed (%s)",
		e.SourceID, e.Archived, len(e.Failures), strings.Join(keys, ", "))
}
