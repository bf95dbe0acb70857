// Package corpus loads the cleaned news dataset and builds the read-only
// index the retrieval engine works against.
package corpus

import (
	"encoding/json"
	"fmt"
	"os"
	"sort"
	"strings"

	"github.com/marketpulse/finrag/models"
)

// rawItem covers both dataset schemas: cleaned items carry the repair
// metadata, original items only title/full_text/link. Pointer fields keep
// presence distinguishable from empty values.
type rawItem struct {
	ID              string   `json:"id"`
	Title           string   `json:"title"`
	FullText        string   `json:"full_text"`
	Link            string   `json:"link"`
	OrderIndex      *int     `json:"order_index"`
	OrigTicker      *string  `json:"orig_ticker"`
	RepairedTicker  *string  `json:"repaired_ticker"`
	LabelConfidence *string  `json:"label_confidence"`
	Reason          string   `json:"reason"`
	DetectedTickers []string `json:"detected_tickers"`
}

func (it rawItem) cleaned() bool {
	return it.RepairedTicker != nil || it.LabelConfidence != nil || it.OrigTicker != nil
}

// Load reads a bucketed news JSON file (ticker -> items) and flattens it
// into documents. Buckets are walked in lexicographic key order so ids and
// order indexes assigned to legacy items are stable across runs.
func Load(path string) ([]models.Document, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading corpus: %w", err)
	}
	var raw map[string][]rawItem
	if err := json.Unmarshal(b, &raw); err != nil {
		return nil, fmt.Errorf("parsing corpus: %w", err)
	}

	buckets := make([]string, 0, len(raw))
	for k := range raw {
		buckets = append(buckets, k)
	}
	sort.Strings(buckets)

	var docs []models.Document
	seq := 0
	for _, bucket := range buckets {
		for _, it := range raw[bucket] {
			title := strings.TrimSpace(it.Title)
			text := strings.TrimSpace(it.FullText)
			link := strings.TrimSpace(it.Link)

			if it.cleaned() {
				repaired := bucket
				if it.RepairedTicker != nil && *it.RepairedTicker != "" {
					repaired = *it.RepairedTicker
				}
				orig := bucket
				if it.OrigTicker != nil && *it.OrigTicker != "" {
					orig = *it.OrigTicker
				}
				oi := seq
				if it.OrderIndex != nil {
					oi = *it.OrderIndex
				}
				id := it.ID
				if id == "" {
					id = fmt.Sprintf("%s-%d", repaired, oi)
				}
				conf := ""
				if it.LabelConfidence != nil {
					conf = *it.LabelConfidence
				}
				docs = append(docs, models.Document{
					ID:              id,
					Ticker:          repaired,
					Title:           title,
					Text:            text,
					Link:            link,
					OrderIndex:      oi,
					OrigTicker:      orig,
					RepairedTicker:  repaired,
					LabelConfidence: conf,
					Reason:          it.Reason,
					DetectedTickers: it.DetectedTickers,
				})
			} else {
				docs = append(docs, models.Document{
					ID:         fmt.Sprintf("%s-%d", bucket, seq),
					Ticker:     bucket,
					Title:      title,
					Text:       text,
					Link:       link,
					OrderIndex: seq,
				})
			}
			seq++
		}
	}
	return docs, nil
}
