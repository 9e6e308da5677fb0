package store

import (
	"reflect"
	"testing"
	"time"

	"weekly-chronicle/internal/model"
)

func rec(id string, score int, comments ...model.Comment) model.Record {
	return model.Record{
		ID:       id,
		Title:    "title " + id,
		Content:  "content " + id,
		Author:   "author",
		Date:     time.Date(2023, 5, 16, 12, 0, 0, 0, time.UTC),
		URL:      "https://example.com/" + id,
		Score:    score,
		Comments: comments,
	}
}

func cmt(id string, votes int) model.Comment {
	return model.Comment{
		ID:      id,
		Author:  "commenter",
		Content: "comment " + id,
		Date:    time.Date(2023, 5, 16, 13, 0, 0, 0, time.UTC),
		Votes:   votes,
	}
}

func batch(records ...model.Record) model.Batch {
	return model.Batch{
		Meta: model.Meta{
			SourceID:   "testsource",
			SourceName: "Test Source",
			Timestamp:  time.Date(2023, 5, 16, 14, 0, 0, 0, time.UTC),
			Version:    1,
		},
		Data: records,
	}
}

func TestMergeIntoEmpty(t *testing.T) {
	b := batch(rec("p1", 10), rec("p2", 5))
	merged := MergeBucket(nil, b)
	if len(merged.Data) != 2 {
		t.Fatalf("got %d records, want 2", len(merged.Data))
	}
	if merged.Data[0].ID != "p1" || merged.Data[1].ID != "p2" {
		t.Errorf("producer order not preserved: %s, %s", merged.Data[0].ID, merged.Data[1].ID)
	}
	if merged.Meta != b.Meta {
		t.Errorf("meta not taken from batch")
	}
}

func TestMergeIdempotent(t *testing.T) {
	b := batch(rec("p1", 10, cmt("c1", 3)), rec("p2", 5))
	once := MergeBucket(nil, b)
	twice := MergeBucket(&once, b)
	if !reflect.DeepEqual(once, twice) {
		t.Errorf("re-merge changed the bucket:\nonce:  %+v\ntwice: %+v", once, twice)
	}
}

func TestMergePreservesHistory(t *testing.T) {
	existing := MergeBucket(nil, batch(rec("p1", 10), rec("p2", 5)))
	// p1 scrolled off the listing; only p3 is observed now.
	merged := MergeBucket(&existing, batch(rec("p3", 7)))
	ids := []string{}
	for _, r := range merged.Data {
		ids = append(ids, r.ID)
	}
	want := []string{"p1", "p2", "p3"}
	if !reflect.DeepEqual(ids, want) {
		t.Errorf("ids = %v, want %v", ids, want)
	}
	if !reflect.DeepEqual(merged.Data[0], existing.Data[0]) {
		t.Errorf("unobserved record p1 was modified")
	}
}

func TestMergeOverlaysScalars(t *testing.T) {
	existing := MergeBucket(nil, batch(rec("p1", 10)))

	updated := rec("p1", 42)
	updated.Title = "revised title"
	// Producer re-emits a drifted creation date; the stored one must win.
	updated.Date = time.Date(2023, 5, 23, 0, 0, 0, 0, time.UTC)
	merged := MergeBucket(&existing, batch(updated))

	got := merged.Data[0]
	if got.Score != 42 || got.Title != "revised title" {
		t.Errorf("incoming scalars should win: %+v", got)
	}
	if !got.Date.Equal(existing.Data[0].Date) {
		t.Errorf("first-seen date must be immutable, got %s", got.Date)
	}
}

func TestMergeCommentAccretion(t *testing.T) {
	existing := MergeBucket(nil, batch(rec("p1", 10, cmt("c1", 3))))

	merged := MergeBucket(&existing, batch(rec("p1", 11, cmt("c2", 1))))
	got := merged.Data[0].Comments
	if len(got) != 2 || got[0].ID != "c1" || got[1].ID != "c2" {
		t.Fatalf("comments = %+v, want c1 then c2", got)
	}

	// Updated c1 replaces in place, no duplicate.
	merged = MergeBucket(&merged, batch(rec("p1", 12, cmt("c1", 99))))
	got = merged.Data[0].Comments
	if len(got) != 2 {
		t.Fatalf("comment duplicated: %+v", got)
	}
	if got[0].ID != "c1" || got[0].Votes != 99 {
		t.Errorf("c1 not replaced in place: %+v", got[0])
	}
	if got[1].ID != "c2" {
		t.Errorf("c2 lost: %+v", got)
	}
}

func TestMergeEmptyBatchKeepsData(t *testing.T) {
	existing := MergeBucket(nil, batch(rec("p1", 10)))
	empty := batch()
	empty.Meta.Timestamp = time.Date(2023, 5, 20, 8, 0, 0, 0, time.UTC)
	merged := MergeBucket(&existing, empty)
	if len(merged.Data) != 1 || merged.Data[0].ID != "p1" {
		t.Errorf("empty batch must not drop records: %+v", merged.Data)
	}
	if !merged.Meta.Timestamp.Equal(empty.Meta.Timestamp) {
		t.Errorf("empty batch must still refresh meta timestamp")
	}
}

func TestMergeNewRecordsAppendAfterRetained(t *testing.T) {
	existing := MergeBucket(nil, batch(rec("p2", 5), rec("p1", 10)))
	merged := MergeBucket(&existing, batch(rec("p9", 1), rec("p1", 11), rec("p4", 2)))
	ids := []string{}
	for _, r := range merged.Data {
		ids = append(ids, r.ID)
	}
	// Retained keep existing order; new ones follow in producer order.
	want := []string{"p2", "p1", "p9", "p4"}
	if !reflect.DeepEqual(ids, want) {
		t.Errorf("ids = %v, want %v", ids, want)
	}
}
