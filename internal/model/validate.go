package model

import "fmt"

// ParseError reports malformed input at a data boundary: a bad date string, a
// malformed bucket body, or a batch that violates the record shape. It is
// distinct from "no data" and must not be swallowed.
type ParseError struct {
	Field string
	Value string
	Err   error
}

func (e *ParseError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("parse %s %q: %v", e.Field, e.Value, e.Err)
	}
	return fmt.Sprintf("parse %s %q", e.Field, e.Value)
}

func (e *ParseError) Unwrap() error { return e.Err }

// Validate checks the batch against the record schema before it reaches the
// store: non-empty source id, non-empty unique record ids, unique comment ids
// within each record, and a non-zero date on every record.
func (b *Batch) Validate() error {
	if b.Meta.SourceID == "" {
		return &ParseError{Field: "meta.source_id", Value: ""}
	}
	seen := make(map[string]struct{}, len(b.Data))
	for i, rec := range b.Data {
		if rec.ID == "" {
			return &ParseError{Field: "record.id", Value: fmt.Sprintf("index %d", i)}
		}
		if _, dup := seen[rec.ID]; dup {
			return &ParseError{Field: "record.id", Value: rec.ID, Err: fmt.Errorf("duplicate id in batch")}
		}
		seen[rec.ID] = struct{}{}
		if rec.Date.IsZero() {
			return &ParseError{Field: "record.date", Value: rec.ID, Err: fmt.Errorf("zero date")}
		}
		cseen := make(map[string]struct{}, len(rec.Comments))
		for _, c := range rec.Comments {
			if c.ID == "" {
				return &ParseError{Field: "comment.id", Value: rec.ID, Err: fmt.Errorf("empty comment id")}
			}
			if _, dup := cseen[c.ID]; dup {
				return &ParseError{Field: "comment.id", Value: c.ID, Err: fmt.Errorf("duplicate comment id in record %s", rec.ID)}
			}
			cseen[c.ID] = struct{}{}
		}
	}
	return nil
}
