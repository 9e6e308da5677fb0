package store

import (
	"os"
	"time"

	"weekly-chronicle/internal/week"
)

// ArchiveOlder relocates every live bucket of a source whose week is strictly
// older than retentionWeeks weeks before now. Each relocation is independently
// atomic: a failed move leaves that bucket live and is reported per bucket,
// while earlier moves stay archived. Buckets already in the archive are never
// touched, so a second run with the same horizon archives nothing new.
//
// It returns the number of buckets archived. When one or more buckets failed
// to move, the error is an *ArchiveError carrying the per-bucket failures.
func (s *Store) ArchiveOlder(sourceID string, retentionWeeks int, now time.Time) (int, error) {
	cutoff := s.weeks.Start(now).AddDate(0, 0, -7*retentionWeeks)

	liveKeys, err := scanWeeks(s.sourceDir(sourceID))
	if err != nil {
		return 0, err
	}

	archived := 0
	failures := map[string]error{}
	for _, key := range liveKeys {
		wk, err := week.ParseDate(key)
		if err != nil {
			continue
		}
		if !wk.Before(cutoff) {
			continue
		}
		if err := s.archiveWeek(sourceID, wk); err != nil {
			failures[key] = err
			continue
		}
		archived++
	}
	if len(failures) > 0 {
		return archived, &ArchiveError{SourceID: sourceID, Archived: archived, Failures: failures}
	}
	return archived, nil
}

// archiveWeek moves one bucket file into the archive tree under the week
// lock, so archival never races a merge on the same key.
func (s *Store) archiveWeek(sourceID string, wk time.Time) error {
	unlock, err := s.lockWeek(sourceID, wk)
	if err != nil {
		return err
	}
	defer unlock()

	if err := os.MkdirAll(s.archiveDir(sourceID), 0o755); err != nil {
		return err
	}
	if err := os.Rename(s.bucketPath(sourceID, wk), s.archivePath(sourceID, wk)); err != nil {
		return err
	}
	return s.recordArchived(sourceID, wk)
}
