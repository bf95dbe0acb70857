package citation

import (
	"testing"

	"github.com/marketpulse/finrag/models"
)

func doc(id, tkr, title, link string) models.Document {
	return models.Document{ID: id, Ticker: tkr, Title: title, Link: link}
}

func TestSelectPrefersTargetsThenBackfills(t *testing.T) {
	t.Parallel()
	hits := []models.Document{
		doc("a", "AAPL", "Apple earnings", "https://x/a"),
		doc("s", "SPY", "Market update", "https://x/s"),
	}
	got := Select(hits, []string{"AAPL"}, 2, 1)
	if len(got) != 2 {
		t.Fatalf("expected 2 citations, got %d", len(got))
	}
	if got[0].Ticker != "AAPL" || got[1].Ticker != "SPY" {
		t.Fatalf("unexpected order: %+v", got)
	}
}

func TestSelectBackfillCap(t *testing.T) {
	t.Parallel()
	hits := []models.Document{
		doc("a", "AAPL", "Apple earnings", "https://x/a"),
		doc("s1", "SPY", "Market one", "https://x/s1"),
		doc("s2", "SPY", "Market two", "https://x/s2"),
	}
	got := Select(hits, []string{"AAPL"}, 3, 1)
	if len(got) != 2 {
		t.Fatalf("expected backfill capped at 1, got %d citations: %+v", len(got), got)
	}
}

func TestSelectUnlimitedBackfillWithoutTargets(t *testing.T) {
	t.Parallel()
	hits := []models.Document{
		doc("s1", "SPY", "Market one", "https://x/s1"),
		doc("s2", "SPY", "Market two", "https://x/s2"),
		doc("s3", "SPY", "Market three", "https://x/s3"),
	}
	got := Select(hits, nil, 3, 0)
	if len(got) != 3 {
		t.Fatalf("expected 3 citations without targets, got %d", len(got))
	}
}

func TestSelectDeduplicatesByTitleLink(t *testing.T) {
	t.Parallel()
	hits := []models.Document{
		doc("a1", "AAPL", "Apple earnings", "https://x/a"),
		doc("a2", "AAPL", "Apple earnings", "https://x/a"),
		doc("a3", "AAPL", "Apple guidance", "https://x/b"),
	}
	got := Select(hits, []string{"AAPL"}, 3, 1)
	if len(got) != 2 {
		t.Fatalf("expected duplicates collapsed, got %d: %+v", len(got), got)
	}
}

func TestSelectDetectedTickerCountsAsTarget(t *testing.T) {
	t.Parallel()
	hits := []models.Document{
		{ID: "m", Ticker: "MULTI", Title: "Tech roundup", Link: "https://x/m", DetectedTickers: []string{"AAPL"}},
		doc("s", "SPY", "Market update", "https://x/s"),
	}
	got := Select(hits, []string{"AAPL"}, 1, 0)
	if len(got) != 1 || got[0].Title != "Tech roundup" {
		t.Fatalf("expected detected-ticker doc preferred, got %+v", got)
	}
}

func TestSelectMaxItemsBound(t *testing.T) {
	t.Parallel()
	hits := []models.Document{
		doc("a1", "AAPL", "One", "https://x/1"),
		doc("a2", "AAPL", "Two", "https://x/2"),
		doc("a3", "AAPL", "Three", "https://x/3"),
	}
	got := Select(hits, []string{"AAPL"}, 2, 1)
	if len(got) != 2 {
		t.Fatalf("expected max_items respected, got %d", len(got))
	}
}

func TestSelectRepairedTickerInCitation(t *testing.T) {
	t.Parallel()
	hits := []models.Document{
		{ID: "r", Ticker: "MISC", RepairedTicker: "AAPL", Title: "Repaired", Link: "https://x/r"},
	}
	got := Select(hits, []string{"AAPL"}, 1, 0)
	if len(got) != 1 || got[0].Ticker != "AAPL" {
		t.Fatalf("expected repaired ticker used, got %+v", got)
	}
}

func TestFormat(t *testing.T) {
	t.Parallel()
	got := Format(models.Citation{Ticker: "AAPL", Title: "Apple earnings", Link: "https://x/a"})
	want := "[AAPL] Apple earnings <https://x/a>"
	if got != want {
		t.Fatalf("Format() = %q, want %q", got, want)
	}
	if Format(models.Citation{}) != "Untitled" {
		t.Fatalf("empty citation should render Untitled")
	}
}
