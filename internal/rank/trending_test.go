package rank

import (
	"reflect"
	"testing"

	"github.com/ppiankov/dailybrief/internal/feed"
)

func TestFindTrending(t *testing.T) {
	items := []feed.Item{
		{Title: "GPT-5 is here", Source: "Feed A"},
		{Title: "Everyone is talking about GPT-5", Source: "Feed B"},
		{Title: "GPT-5 benchmarks", Source: "Feed B"}, // same source, counted once
		{Title: "New release of a database", Source: "Feed A"},
	}

	trends := FindTrending(items, nil, 2)

	if len(trends) != 1 {
		t.Fatalf("trends = %+v, want exactly one", trends)
	}
	tr := trends[0]
	if tr.Keyword != "GPT" {
		t.Errorf("keyword = %q, want GPT", tr.Keyword)
	}
	if want := []string{"Feed A", "Feed B"}; !reflect.DeepEqual(tr.Sources, want) {
		t.Errorf("sources = %v, want %v", tr.Sources, want)
	}
}

func TestFindTrending_BelowThreshold(t *testing.T) {
	items := []feed.Item{
		{Title: "GPT-5 is here", Source: "Feed A"},
		{Title: "Nothing else matches", Source: "Feed B"},
	}

	if trends := FindTrending(items, nil, 2); len(trends) != 0 {
		t.Errorf("trends = %+v, want none below threshold", trends)
	}
}

func TestFindTrending_Ordering(t *testing.T) {
	items := []feed.Item{
		// "AI" in three sources, "launch" and "release" in two each.
		{Title: "AI launch report", Source: "A"},
		{Title: "AI everywhere", Source: "B"},
		{Title: "AI again, plus a release", Source: "C"},
		{Title: "launch party", Source: "B"},
		{Title: "release notes", Source: "A"},
	}

	trends := FindTrending(items, nil, 2)
	if len(trends) != 3 {
		t.Fatalf("trends = %d, want 3", len(trends))
	}
	if trends[0].Keyword != "AI" || len(trends[0].Sources) != 3 {
		t.Errorf("trends[0] = %+v, want AI across 3 sources", trends[0])
	}
	// Ties break alphabetically.
	if trends[1].Keyword != "launch" || trends[2].Keyword != "release" {
		t.Errorf("tie order = %q, %q, want launch then release", trends[1].Keyword, trends[2].Keyword)
	}
}

func TestFindTrending_MinSourcesFloor(t *testing.T) {
	items := []feed.Item{
		{Title: "AI solo story", Source: "Only Feed"},
	}

	// Requests below 2 are clamped: one source is never a trend.
	if trends := FindTrending(items, nil, 0); len(trends) != 0 {
		t.Errorf("trends = %+v, want none for single-source keyword", trends)
	}
}

func TestFindTrending_Empty(t *testing.T) {
	if trends := FindTrending(nil, nil, 2); len(trends) != 0 {
		t.Errorf("trends = %+v, want none for no items", trends)
	}
}
