package model

import "time"

// Comment is a single reply nested under a Record. Its ID is the merge key
// within the parent record's comment list.
type Comment struct {
	ID      string    `json:"id"`
	Author  string    `json:"author"`
	Content string    `json:"content"`
	Date    time.Time `json:"date"`
	Votes   int       `json:"votes"`
}

// Record is one scraped post. ID is unique within a source and is the merge
// key; Date is the creation timestamp used for week bucketing and is immutable
// once a record has been stored.
type Record struct {
	ID       string    `json:"id"`
	Title    string    `json:"title"`
	Content  string    `json:"content"`
	Author   string    `json:"author"`
	Date     time.Time `json:"date"`
	URL      string    `json:"url"`
	Score    int       `json:"score"`
	Comments []Comment `json:"comments"`
}

// Meta describes the producing source and the last update of a bucket or batch.
type Meta struct {
	SourceID   string    `json:"source_id"`
	SourceName string    `json:"source_name"`
	Timestamp  time.Time `json:"timestamp"`
	Version    int       `json:"version"`
	Icon       string    `json:"icon,omitempty"`
}

// Bucket is the persisted unit: all records of one source for one calendar
// week. Mutated only by the merge engine.
type Bucket struct {
	Meta Meta     `json:"meta"`
	Data []Record `json:"data"`
}

// Batch is a single producer run's output, to be merged into a bucket.
// It shares the bucket's wire shape.
type Batch struct {
	Meta Meta     `json:"meta"`
	Data []Record `json:"data"`
}
