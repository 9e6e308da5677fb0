package week

import (
	"errors"
	"testing"
	"time"

	"weekly-chronicle/internal/model"
)

func TestStartSameWeek(t *testing.T) {
	monday := time.Date(2023, 5, 15, 0, 0, 0, 0, time.UTC)
	thursday := time.Date(2023, 5, 18, 14, 30, 0, 0, time.UTC)

	if got := Default.Start(monday); !got.Equal(monday) {
		t.Errorf("Start(monday) = %s, want %s", got, monday)
	}
	if got := Default.Start(thursday); !got.Equal(monday) {
		t.Errorf("Start(thursday) = %s, want %s", got, monday)
	}

	next := time.Date(2023, 5, 22, 0, 0, 0, 0, time.UTC)
	if got := Default.Start(next); !got.Equal(next) {
		t.Errorf("Start(next monday) = %s, want %s", got, next)
	}
	if Default.Start(next).Equal(monday) {
		t.Errorf("following week must map to a distinct key")
	}
}

func TestStartIdempotent(t *testing.T) {
	d := time.Date(2024, 2, 29, 23, 59, 0, 0, time.UTC) // leap thursday
	once := Default.Start(d)
	twice := Default.Start(once)
	if !once.Equal(twice) {
		t.Errorf("Start not idempotent: %s vs %s", once, twice)
	}
}

func TestStartSundayAnchor(t *testing.T) {
	ix := NewIndexer(time.Sunday)
	// 2023-05-18 is a Thursday; the preceding Sunday is 2023-05-14.
	got := ix.Start(time.Date(2023, 5, 18, 0, 0, 0, 0, time.UTC))
	want := time.Date(2023, 5, 14, 0, 0, 0, 0, time.UTC)
	if !got.Equal(want) {
		t.Errorf("sunday-anchored Start = %s, want %s", got, want)
	}
	// A Sunday maps to itself.
	if got := ix.Start(want); !got.Equal(want) {
		t.Errorf("Start(sunday) = %s, want %s", got, want)
	}
}

func TestStartNormalizesZone(t *testing.T) {
	loc := time.FixedZone("UTC+8", 8*3600)
	local := time.Date(2023, 5, 15, 1, 0, 0, 0, loc) // 2023-05-14 17:00 UTC, a Sunday
	got := Default.Start(local)
	want := time.Date(2023, 5, 8, 0, 0, 0, 0, time.UTC)
	if !got.Equal(want) {
		t.Errorf("Start across zones = %s, want %s", got, want)
	}
}

func TestParseDate(t *testing.T) {
	d, err := ParseDate("2023-05-15")
	if err != nil {
		t.Fatalf("ParseDate: %v", err)
	}
	if FormatDate(d) != "2023-05-15" {
		t.Errorf("round trip = %s", FormatDate(d))
	}

	_, err = ParseDate("15/05/2023")
	var pe *model.ParseError
	if !errors.As(err, &pe) {
		t.Fatalf("want *model.ParseError, got %v", err)
	}
}

func TestParseWeekday(t *testing.T) {
	if d, err := ParseWeekday(""); err != nil || d != time.Monday {
		t.Errorf("empty weekday = %v, %v", d, err)
	}
	if d, err := ParseWeekday("Sunday"); err != nil || d != time.Sunday {
		t.Errorf("sunday = %v, %v", d, err)
	}
	if _, err := ParseWeekday("someday"); err == nil {
		t.Errorf("expected error for unknown weekday")
	}
}
