// Package search provides keyword search over an ingested dataset, backed
// by an in-memory Bleve index. The index lives for one command invocation;
// nothing is persisted.
package search

import (
	"fmt"

	"github.com/blevesearch/bleve/v2"
	"github.com/blevesearch/bleve/v2/analysis/analyzer/standard"

	"github.com/healthai/sitegen/internal/models"
)

// entityDoc is the indexed projection of one entity.
type entityDoc struct {
	Kind     string `json:"kind"`
	Name     string `json:"name"`
	Title    string `json:"title"`
	About    string `json:"about"`
	Journal  string `json:"journal"`
	Abstract string `json:"abstract"`
}

// Hit is one scored search result.
type Hit struct {
	ID    string  `json:"id"`
	Kind  string  `json:"kind"`
	Name  string  `json:"name"`
	Path  string  `json:"path"`
	Score float64 `json:"score"`
}

// Index is an in-memory keyword index over one dataset.
type Index struct {
	index    bleve.Index
	entities map[string]*models.Entity
}

// NewIndex builds the index from every record in the dataset. Keys combine
// kind and id so the three collections cannot collide.
func NewIndex(ds *models.Dataset) (*Index, error) {
	im := bleve.NewIndexMapping()
	docMapping := bleve.NewDocumentMapping()
	// Standard analyzer: lowercase + tokenize without stemming, so exact
	// research terms match as typed.
	textField := bleve.NewTextFieldMapping()
	textField.Analyzer = standard.Name
	for _, f := range []string{"name", "title", "about", "journal", "abstract"} {
		docMapping.AddFieldMappingsAt(f, textField)
	}
	docMapping.AddFieldMappingsAt("kind", bleve.NewKeywordFieldMapping())
	im.DefaultMapping = docMapping

	index, err := bleve.NewMemOnly(im)
	if err != nil {
		return nil, fmt.Errorf("failed to create search index: %w", err)
	}

	x := &Index{index: index, entities: make(map[string]*models.Entity)}
	for _, e := range ds.All() {
		key := string(e.Kind) + "/" + e.ID
		x.entities[key] = e
		doc := entityDoc{
			Kind:     string(e.Kind),
			Name:     e.Name,
			Title:    e.Title,
			About:    e.About,
			Journal:  e.Journal,
			Abstract: e.Abstract,
		}
		if err := index.Index(key, doc); err != nil {
			index.Close()
			return nil, fmt.Errorf("failed to index %s: %w", key, err)
		}
	}
	return x, nil
}

// Search runs a match query across the indexed fields and returns up to
// limit hits in descending score order.
func (x *Index) Search(query string, limit int) ([]Hit, error) {
	if limit <= 0 {
		limit = 10
	}
	req := bleve.NewSearchRequest(bleve.NewMatchQuery(query))
	req.Size = limit
	res, err := x.index.Search(req)
	if err != nil {
		return nil, fmt.Errorf("search failed: %w", err)
	}
	hits := make([]Hit, 0, len(res.Hits))
	for _, h := range res.Hits {
		e, ok := x.entities[h.ID]
		if !ok {
			continue
		}
		hits = append(hits, Hit{
			ID:    e.ID,
			Kind:  e.Kind.Singular(),
			Name:  e.DisplayName(),
			Path:  e.Path,
			Score: h.Score,
		})
	}
	return hits, nil
}

// Count returns the number of indexed entities.
func (x *Index) Count() (uint64, error) {
	return x.index.DocCount()
}

// Close releases the index.
func (x *Index) Close() error {
	return x.index.Close()
}
