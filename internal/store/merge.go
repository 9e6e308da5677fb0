package store

import "weekly-chronicle/internal/model"

// MergeBucket reconciles a freshly scraped batch with the existing bucket for
// the same (source, week) and returns the new bucket contents.
//
// Records are unioned by id: records only in the existing bucket are kept
// unchanged (a post that scrolled off a listing page is history, not garbage),
// records only in the batch are appended in producer order, and records in
// both are merged field-wise with the incoming side winning on everything but
// identity and the first-seen creation date. Deletion is not a merge outcome.
//
// Meta is taken from the batch: it reflects "last updated", so an empty batch
// still refreshes the bucket's timestamp without touching its data.
func MergeBucket(existing *model.Bucket, batch model.Batch) model.Bucket {
	out := model.Bucket{Meta: batch.Meta}
	if existing == nil {
		out.Data = append(out.Data, batch.Data...)
		return out
	}

	incoming := make(map[string]model.Record, len(batch.Data))
	for _, rec := range batch.Data {
		incoming[rec.ID] = rec
	}

	retained := make(map[string]struct{}, len(existing.Data))
	out.Data = make([]model.Record, 0, len(existing.Data)+len(batch.Data))

	// Existing ordering is preserved for retained records.
	for _, old := range existing.Data {
		retained[old.ID] = struct{}{}
		if in, ok := incoming[old.ID]; ok {
			out.Data = append(out.Data, mergeRecord(old, in))
		} else {
			out.Data = append(out.Data, old)
		}
	}
	// New discoveries go after, in the order the producer emitted them.
	for _, rec := range batch.Data {
		if _, ok := retained[rec.ID]; !ok {
			out.Data = append(out.Data, rec)
		}
	}
	return out
}

// mergeRecord overlays the incoming record onto the stored one. Scalar fields
// take the incoming value; Date keeps the first-seen value so a revised batch
// can never silently move a record to another week; comments accrete.
func mergeRecord(old, in model.Record) model.Record {
	merged := in
	merged.Date = old.Date
	merged.Comments = mergeComments(old.Comments, in.Comments)
	return merged
}

// mergeComments applies the same id-union rule one level down: a comment is
// never dropped once seen, and an incoming comment with a known id replaces
// the stored one in place (votes and content change, identity does not).
func mergeComments(old, in []model.Comment) []model.Comment {
	if len(old) == 0 {
		return append([]model.Comment(nil), in...)
	}
	incoming := make(map[string]model.Comment, len(in))
	for _, c := range in {
		incoming[c.ID] = c
	}
	out := make([]model.Comment, 0, len(old)+len(in))
	seen := make(map[string]struct{}, len(old))
	for _, c := range old {
		seen[c.ID] = struct{}{}
		if nc, ok := incoming[c.ID]; ok {
			out = append(out, nc)
		} else {
			out = append(out, c)
		}
	}
	for _, c := range in {
		if _, ok := seen[c.ID]; !ok {
			out = append(out, c)
		}
	}
	return out
}
