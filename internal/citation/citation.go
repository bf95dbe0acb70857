// Package citation derives the citation list shown with an answer from the
// ranked retrieval hits.
package citation

import (
	"strings"

	"github.com/marketpulse/finrag/models"
)

// Select walks hits twice: first taking documents matching the target
// symbols, then backfilling with off-target documents. When targets are
// present at most maxBackfill off-target citations are admitted; with no
// targets there is nothing to prefer and backfill is unlimited. Output is
// deduplicated by (title, link) and capped at maxItems.
func Select(hits []models.Document, targets []string, maxItems, maxBackfill int) []models.Citation {
	citations := make([]models.Citation, 0, maxItems)
	seen := make(map[[2]string]struct{})
	backfillUsed := 0

	take := func(d models.Document) {
		citations = append(citations, models.Citation{
			Title:  d.Title,
			Link:   d.Link,
			Ticker: d.CanonicalTicker(),
		})
		seen[[2]string{d.Title, d.Link}] = struct{}{}
	}

	for _, d := range hits {
		if len(citations) >= maxItems {
			break
		}
		if !isTarget(d, targets) {
			continue
		}
		if _, dup := seen[[2]string{d.Title, d.Link}]; dup {
			continue
		}
		take(d)
	}

	if len(citations) < maxItems {
		for _, d := range hits {
			if len(citations) >= maxItems {
				break
			}
			if _, dup := seen[[2]string{d.Title, d.Link}]; dup {
				continue
			}
			if len(targets) > 0 && backfillUsed >= maxBackfill {
				break
			}
			take(d)
			if len(targets) > 0 {
				backfillUsed++
			}
		}
	}

	return citations
}

func isTarget(d models.Document, targets []string) bool {
	if len(targets) == 0 {
		return false
	}
	canonical := strings.ToUpper(d.CanonicalTicker())
	for _, t := range targets {
		if canonical == t {
			return true
		}
		for _, det := range d.DetectedTickers {
			if det == t {
				return true
			}
		}
	}
	return false
}

// Format renders one citation as "[TICKER] Title <link>" for plain-text
// surfaces like the CLI.
func Format(c models.Citation) string {
	var b strings.Builder
	if c.Ticker != "" {
		b.WriteString("[" + c.Ticker + "] ")
	}
	if c.Title != "" {
		b.WriteString(c.Title)
	} else {
		b.WriteString("Untitled")
	}
	if c.Link != "" {
		b.WriteString(" <" + c.Link + ">")
	}
	return b.String()
}
