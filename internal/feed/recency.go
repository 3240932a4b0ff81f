package feed

import (
	"time"
)

// UnknownDate is the published value stamped on items whose feed entry
// carried no date.
const UnknownDate = "Unknown date"

// publishedLayouts covers the date formats feeds emit in the wild.
// RFC1123Z first: it is what most RSS generators produce.
var publishedLayouts = []string{
	time.RFC1123Z,
	time.RFC1123,
	time.RFC822Z,
	time.RFC822,
	time.RFC3339,
}

// ParsePublished parses a raw feed date string. ok is false for empty,
// placeholder, or unparsable values.
func ParsePublished(raw string) (time.Time, bool) {
	if raw == "" || raw == UnknownDate {
		return time.Time{}, false
	}
	for _, layout := range publishedLayouts {
		if ts, err := time.Parse(layout, raw); err == nil {
			return ts, true
		}
	}
	return time.Time{}, false
}

// IsRecent reports whether an item was published within the window
// ending at now. Items whose date cannot be parsed count as recent, so
// a feed with broken dates is never silently dropped.
func IsRecent(item Item, window time.Duration, now time.Time) bool {
	ts, ok := ParsePublished(item.Published)
	if !ok {
		return true
	}
	cutoff := now.Add(-window)
	return !ts.Before(cutoff)
}
