package corpus

import (
	"fmt"

	"github.com/blevesearch/bleve"

	"github.com/marketpulse/finrag/models"
)

// indexedDoc is the shape fed to bleve; searchable fields only.
type indexedDoc struct {
	Title string `json:"title"`
	Text  string `json:"text"`
}

// Index wraps the immutable document collection plus the auxiliary bleve
// index. Built once at startup; read-only afterwards, so concurrent
// requests share it without locking.
type Index struct {
	docs  []models.Document
	bleve bleve.Index
}

// NewIndex builds the in-memory index over the given documents.
func NewIndex(docs []models.Document) (*Index, error) {
	bi, err := bleve.NewMemOnly(bleve.NewIndexMapping())
	if err != nil {
		return nil, fmt.Errorf("creating bleve index: %w", err)
	}
	for _, d := range docs {
		if err := bi.Index(d.ID, indexedDoc{Title: d.Title, Text: d.Text}); err != nil {
			return nil, fmt.Errorf("indexing %s: %w", d.ID, err)
		}
	}
	return &Index{docs: docs, bleve: bi}, nil
}

// Documents returns the full collection in corpus order.
func (ix *Index) Documents() []models.Document { return ix.docs }

// Size returns the corpus size.
func (ix *Index) Size() int { return len(ix.docs) }

// Bleve exposes the auxiliary lexical index for posting-list scorers.
func (ix *Index) Bleve() bleve.Index { return ix.bleve }
