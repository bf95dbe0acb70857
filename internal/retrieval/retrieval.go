// Package retrieval ranks the news corpus against a free-text query.
//
// Ranking runs as an ordered pipeline over a scored-candidate pool:
// pool → base scores (two scorers, normalized and blended) → boost chain →
// drop zero scores → stable sort → dedup → top-k. Each stage is pure, so
// repeated calls over the same index and query return identical output.
package retrieval

import (
	"regexp"
	"sort"
	"strings"

	"github.com/marketpulse/finrag/internal/corpus"
	"github.com/marketpulse/finrag/internal/ticker"
	"github.com/marketpulse/finrag/models"
)

// scorerTopN bounds each scorer's raw output before normalization.
const scorerTopN = 50

var tokenRE = regexp.MustCompile(`[A-Za-z0-9']+`)

// Scorer assigns raw non-negative scores to candidate pool positions.
// Implementations truncate their own output to scorerTopN entries, which
// keeps them swappable for a real inverted-index lookup without touching
// the boost or dedup stages.
type Scorer interface {
	Score(ix *corpus.Index, pool []models.Document, query string) map[int]float64
}

// Engine ranks documents with a lexical scorer and a title-overlap scorer.
type Engine struct {
	lexical Scorer
	title   Scorer
}

// NewEngine builds an engine for the named lexical scorer: "bleve" uses the
// index's posting lists, anything else the term-count baseline.
func NewEngine(scorer string) *Engine {
	var lex Scorer = termScorer{}
	if scorer == "bleve" {
		lex = bleveScorer{}
	}
	return &Engine{lexical: lex, title: titleScorer{}}
}

// Retrieve returns up to k documents ranked best-first, deduplicated by id.
// An empty corpus, or a pool where nothing scores above zero, yields an
// empty result; there is no silent fallback to unscored documents.
func (e *Engine) Retrieve(ix *corpus.Index, query string, k int) []models.Document {
	if k <= 0 || ix.Size() == 0 {
		return nil
	}
	targets := ticker.Detect(query)
	pool := candidates(ix, targets)

	lex := normalize(e.lexical.Score(ix, pool, query))
	ttl := normalize(e.title.Score(ix, pool, query))

	type scoredDoc struct {
		pos   int
		score float64
	}
	var scored []scoredDoc
	for i, d := range pool {
		s := 0.55*lex[i] + 0.35*ttl[i]
		s *= confidenceWeight(d.LabelConfidence)

		if len(targets) > 0 {
			canonical := d.CanonicalTicker()
			detectedOverlap := intersects(d.DetectedTickers, targets)
			if contains(targets, canonical) {
				s *= 1.25
			}
			if detectedOverlap {
				s *= 1.10
			}
			// Alias check uses the first target only; Detect returns
			// sorted symbols so "first" is well defined.
			first := targets[0]
			if ticker.Contains(d.Title, first) {
				s *= 1.10
			} else if ticker.Contains(d.Text, first) {
				s *= 1.05
			}
			if canonical == models.TickerMisc {
				s *= 0.85
			}
			if canonical == models.TickerMulti && !detectedOverlap {
				s *= 0.9
			}
		}

		// Mild recency: lower order_index counts as more recent.
		if n := ix.Size(); n > 1 {
			r := 1.0 - float64(d.OrderIndex)/float64(n-1)
			s *= 1.0 + 0.05*r
		}

		if s > 0 {
			scored = append(scored, scoredDoc{pos: i, score: s})
		}
	}

	sort.SliceStable(scored, func(i, j int) bool { return scored[i].score > scored[j].score })

	seen := make(map[string]struct{}, k)
	out := make([]models.Document, 0, k)
	for _, sc := range scored {
		d := pool[sc.pos]
		if _, dup := seen[d.ID]; dup {
			continue
		}
		seen[d.ID] = struct{}{}
		out = append(out, d)
		if len(out) >= k {
			break
		}
	}
	return out
}

// candidates narrows the corpus to documents related to the target symbols:
// canonical ticker in targets, detected tickers overlapping targets, or an
// alias of any target in the document text. Without targets, or when the
// narrowed pool comes up empty, the whole corpus is searched.
func candidates(ix *corpus.Index, targets []string) []models.Document {
	docs := ix.Documents()
	if len(targets) == 0 {
		return docs
	}
	var pool []models.Document
	for _, d := range docs {
		if contains(targets, d.CanonicalTicker()) || intersects(d.DetectedTickers, targets) {
			pool = append(pool, d)
			continue
		}
		blob := d.Title + " " + d.Text
		for _, t := range targets {
			if ticker.Contains(blob, t) {
				pool = append(pool, d)
				break
			}
		}
	}
	if len(pool) == 0 {
		return docs
	}
	return pool
}

func confidenceWeight(label string) float64 {
	switch strings.ToUpper(label) {
	case models.ConfidenceHigh:
		return 1.0
	case models.ConfidenceMedium:
		return 0.9
	default:
		return 0.8
	}
}

// normalize divides scores by the maximum, yielding [0,1]. A zero or empty
// maximum yields an empty mapping.
func normalize(m map[int]float64) map[int]float64 {
	var mx float64
	for _, s := range m {
		if s > mx {
			mx = s
		}
	}
	if mx <= 0 {
		return map[int]float64{}
	}
	out := make(map[int]float64, len(m))
	for i, s := range m {
		out[i] = s / mx
	}
	return out
}

// topN keeps the n highest-scoring entries; ties resolve to the earlier
// pool position so truncation is deterministic.
func topN(m map[int]float64, n int) map[int]float64 {
	if len(m) <= n {
		return m
	}
	type entry struct {
		pos   int
		score float64
	}
	entries := make([]entry, 0, len(m))
	for i, s := range m {
		entries = append(entries, entry{pos: i, score: s})
	}
	sort.Slice(entries, func(i, j int) bool {
		if entries[i].score != entries[j].score {
			return entries[i].score > entries[j].score
		}
		return entries[i].pos < entries[j].pos
	})
	out := make(map[int]float64, n)
	for _, e := range entries[:n] {
		out[e.pos] = e.score
	}
	return out
}

func contains(set []string, v string) bool {
	for _, s := range set {
		if s == v {
			return true
		}
	}
	return false
}

func intersects(a, b []string) bool {
	for _, x := range a {
		if contains(b, x) {
			return true
		}
	}
	return false
}
