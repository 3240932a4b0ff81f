package feed

import (
	"testing"
	"time"
)

func TestParsePublished(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		ok   bool
	}{
		{"rfc1123z", "Mon, 02 Jan 2006 15:04:05 -0700", true},
		{"rfc1123", "Mon, 02 Jan 2006 15:04:05 MST", true},
		{"rfc822z", "02 Jan 06 15:04 -0700", true},
		{"rfc3339", "2006-01-02T15:04:05Z", true},
		{"empty", "", false},
		{"placeholder", UnknownDate, false},
		{"garbage", "yesterday-ish", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, ok := ParsePublished(tt.raw)
			if ok != tt.ok {
				t.Errorf("ParsePublished(%q) ok = %v, want %v", tt.raw, ok, tt.ok)
			}
		})
	}
}

func TestParsePublished_Value(t *testing.T) {
	ts, ok := ParsePublished("Mon, 02 Jan 2006 15:04:05 +0000")
	if !ok {
		t.Fatal("expected parse to succeed")
	}
	want := time.Date(2006, 1, 2, 15, 4, 5, 0, time.UTC)
	if !ts.Equal(want) {
		t.Errorf("got %v, want %v", ts, want)
	}
}

func TestIsRecent(t *testing.T) {
	now := time.Date(2025, 6, 15, 12, 0, 0, 0, time.UTC)
	window := 48 * time.Hour

	format := func(ts time.Time) string {
		return ts.Format(time.RFC1123Z)
	}

	tests := []struct {
		name      string
		published string
		want      bool
	}{
		{"one hour old", format(now.Add(-time.Hour)), true},
		{"exactly at cutoff", format(now.Add(-window)), true},
		{"just past cutoff", format(now.Add(-window - time.Second)), false},
		{"three days old", format(now.Add(-72 * time.Hour)), false},
		{"unknown date kept", UnknownDate, true},
		{"unparsable kept", "sometime last week", true},
		{"empty kept", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			item := Item{Title: "x", Published: tt.published}
			if got := IsRecent(item, window, now); got != tt.want {
				t.Errorf("IsRecent(%q) = %v, want %v", tt.published, got, tt.want)
			}
		})
	}
}
