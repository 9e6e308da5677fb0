package store

import (
	"encoding/json"
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"time"

	"weekly-chronicle/internal/model"
	"weekly-chronicle/internal/week"
)

const indexFile = "index.json"

// manifest is the per-source index of which weeks exist and where. It is a
// derived cache over the bucket files: whenever it disagrees with the
// filesystem, the filesystem wins and the manifest is rebuilt from a scan.
type manifest struct {
	SourceID      string    `json:"source_id"`
	SourceName    string    `json:"source_name,omitempty"`
	Icon          string    `json:"icon,omitempty"`
	UpdatedAt     time.Time `json:"updated_at"`
	LiveWeeks     []string  `json:"live_weeks"`
	ArchivedWeeks []string  `json:"archived_weeks"`
}

func (s *Store) indexPath(sourceID string) string {
	return filepath.Join(s.sourceDir(sourceID), indexFile)
}

func (s *Store) readManifest(sourceID string) (*manifest, error) {
	raw, err := os.ReadFile(s.indexPath(sourceID))
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	var m manifest
	if err := json.Unmarshal(raw, &m); err != nil {
		// A broken index is stale cache, not data loss; rebuild from disk.
		return nil, nil
	}
	return &m, nil
}

// freshManifest returns the manifest for a source, rebuilding it from a
// directory scan when it is missing or out of step with the bucket files.
func (s *Store) freshManifest(sourceID string) (*manifest, error) {
	m := s.keyMutex(sourceID + "|index")
	m.Lock()
	defer m.Unlock()

	man, err := s.readManifest(sourceID)
	if err != nil {
		return nil, err
	}
	live, err := scanWeeks(s.sourceDir(sourceID))
	if err != nil {
		return nil, err
	}
	archived, err := scanWeeks(s.archiveDir(sourceID))
	if err != nil {
		return nil, err
	}
	if man != nil && equalKeys(man.LiveWeeks, live) && equalKeys(man.ArchivedWeeks, archived) {
		return man, nil
	}

	rebuilt := &manifest{
		SourceID:      sourceID,
		UpdatedAt:     time.Now().UTC(),
		LiveWeeks:     live,
		ArchivedWeeks: archived,
	}
	if man != nil {
		rebuilt.SourceName = man.SourceName
		rebuilt.Icon = man.Icon
	}
	if len(live) == 0 && len(archived) == 0 && man == nil {
		// Nothing on disk and no manifest: don't materialize an empty index.
		return rebuilt, nil
	}
	if err := writeJSONAtomic(s.indexPath(sourceID), rebuilt); err != nil {
		return nil, err
	}
	return rebuilt, nil
}

func (s *Store) updateManifest(sourceID string, apply func(*manifest)) error {
	m := s.keyMutex(sourceID + "|index")
	m.Lock()
	defer m.Unlock()

	man, err := s.readManifest(sourceID)
	if err != nil {
		return err
	}
	if man == nil {
		man = &manifest{SourceID: sourceID}
	}
	apply(man)
	man.UpdatedAt = time.Now().UTC()
	return writeJSONAtomic(s.indexPath(sourceID), man)
}

// recordLive marks a week as present in live storage, carrying over source
// naming from the bucket meta so listings can show a display name.
func (s *Store) recordLive(sourceID string, wk time.Time, meta model.Meta) error {
	key := week.FormatDate(wk)
	return s.updateManifest(sourceID, func(man *manifest) {
		man.LiveWeeks = insertKey(man.LiveWeeks, key)
		man.ArchivedWeeks = removeKey(man.ArchivedWeeks, key)
		if meta.SourceName != "" {
			man.SourceName = meta.SourceName
		}
		if meta.Icon != "" {
			man.Icon = meta.Icon
		}
	})
}

// recordArchived flips a week from live to archived.
func (s *Store) recordArchived(sourceID string, wk time.Time) error {
	key := week.FormatDate(wk)
	return s.updateManifest(sourceID, func(man *manifest) {
		man.LiveWeeks = removeKey(man.LiveWeeks, key)
		man.ArchivedWeeks = insertKey(man.ArchivedWeeks, key)
	})
}

// SetIcon records the icon filename for a source in its manifest.
func (s *Store) SetIcon(sourceID, icon string) error {
	return s.updateManifest(sourceID, func(man *manifest) {
		man.Icon = icon
	})
}

// SourceName returns the display name recorded for a source, falling back to
// the id when none has been seen.
func (s *Store) SourceName(sourceID string) string {
	man, err := s.freshManifest(sourceID)
	if err != nil || man.SourceName == "" {
		return sourceID
	}
	return man.SourceName
}

// insertKey adds a week key to a most-recent-first list, keeping it unique.
func insertKey(keys []string, key string) []string {
	for _, k := range keys {
		if k == key {
			return keys
		}
	}
	keys = append(keys, key)
	sortStringsDesc(keys)
	return keys
}

func removeKey(keys []string, key string) []string {
	out := keys[:0]
	for _, k := range keys {
		if k != key {
			out = append(out, k)
		}
	}
	return out
}

func equalKeys(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

func sortStrings(keys []string) { sort.Strings(keys) }

func sortStringsDesc(keys []string) {
	sort.Sort(sort.Reverse(sort.StringSlice(keys)))
}
