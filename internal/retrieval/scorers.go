package retrieval

import (
	"strings"

	"github.com/blevesearch/bleve"

	"github.com/marketpulse/finrag/internal/corpus"
	"github.com/marketpulse/finrag/models"
)

// termScorer counts distinct query terms longer than two characters that
// appear anywhere in title+body. Baseline lexical scorer; the behavioral
// contract the bleve scorer may replace.
type termScorer struct{}

func (termScorer) Score(_ *corpus.Index, pool []models.Document, query string) map[int]float64 {
	terms := termSet(query, 2)
	scores := make(map[int]float64)
	for i, d := range pool {
		blob := strings.ToLower(d.Title + " " + d.Text)
		n := 0
		for t := range terms {
			if strings.Contains(blob, t) {
				n++
			}
		}
		if n > 0 {
			scores[i] = float64(n)
		}
	}
	return topN(scores, scorerTopN)
}

// titleScorer counts query terms overlapping the title's token set.
type titleScorer struct{}

func (titleScorer) Score(_ *corpus.Index, pool []models.Document, query string) map[int]float64 {
	terms := termSet(query, 0)
	scores := make(map[int]float64)
	for i, d := range pool {
		titleTerms := termSet(d.Title, 0)
		n := 0
		for t := range terms {
			if _, ok := titleTerms[t]; ok {
				n++
			}
		}
		if n > 0 {
			scores[i] = float64(n)
		}
	}
	return topN(scores, scorerTopN)
}

// bleveScorer pulls raw lexical scores from the index's posting lists.
// Only pool members are kept; a failed search yields an empty mapping so
// ranking degrades to the title scorer instead of erroring.
type bleveScorer struct{}

func (bleveScorer) Score(ix *corpus.Index, pool []models.Document, query string) map[int]float64 {
	byID := make(map[string]int, len(pool))
	for i, d := range pool {
		byID[d.ID] = i
	}
	q := bleve.NewMatchQuery(query)
	req := bleve.NewSearchRequestOptions(q, scorerTopN*3, 0, false)
	res, err := ix.Bleve().Search(req)
	if err != nil {
		return map[int]float64{}
	}
	scores := make(map[int]float64)
	for _, hit := range res.Hits {
		if i, ok := byID[hit.ID]; ok && hit.Score > 0 {
			scores[i] = hit.Score
		}
	}
	return topN(scores, scorerTopN)
}

// termSet tokenizes to lowercase word characters (apostrophes included),
// dropping tokens of length <= minLen.
func termSet(s string, minLen int) map[string]struct{} {
	out := make(map[string]struct{})
	for _, t := range tokenRE.FindAllString(strings.ToLower(s), -1) {
		if len(t) > minLen {
			out[t] = struct{}{}
		}
	}
	return out
}
