// Package lexical provides a full-text index over stored phrase texts
// using Bleve. The engine consults it as a fallback when embedding
// similarity falls short of the caller's threshold.
package lexical

import (
	"fmt"
	"strings"

	"github.com/blevesearch/bleve/v2"
	"github.com/blevesearch/bleve/v2/analysis/analyzer/standard"
	"github.com/blevesearch/bleve/v2/mapping"
	"github.com/blevesearch/bleve/v2/search/query"
)

// phraseDocument is the structure indexed by Bleve.
type phraseDocument struct {
	Key  string `json:"key"`
	ID   string `json:"id"`
	Text string `json:"text"`
}

// Hit is one full-text match. Score is Bleve's relevance rank, not a
// cosine similarity; the two are not comparable.
type Hit struct {
	Key         string
	VariationID string
	Text        string
	Score       float64
}

// Index wraps an in-memory Bleve index keyed by (intent key,
// variation ID). Like the embedding index it is derived data, rebuilt
// from the store on open.
type Index struct {
	idx bleve.Index
}

// New creates an empty in-memory lexical index.
func New() (*Index, error) {
	idx, err := bleve.NewMemOnly(buildIndexMapping())
	if err != nil {
		return nil, fmt.Errorf("creating lexical index: %w", err)
	}
	return &Index{idx: idx}, nil
}

// buildIndexMapping creates the mapping for phrase documents.
func buildIndexMapping() mapping.IndexMapping {
	docMapping := bleve.NewDocumentMapping()

	textFieldMapping := bleve.NewTextFieldMapping()
	textFieldMapping.Analyzer = standard.Name

	keywordFieldMapping := bleve.NewKeywordFieldMapping()

	docMapping.AddFieldMappingsAt("text", textFieldMapping)
	docMapping.AddFieldMappingsAt("key", keywordFieldMapping)
	docMapping.AddFieldMappingsAt("id", keywordFieldMapping)

	indexMapping := bleve.NewIndexMapping()
	indexMapping.DefaultMapping = docMapping
	indexMapping.DefaultAnalyzer = standard.Name
	return indexMapping
}

func docID(key, variationID string) string {
	return key + "\x00" + variationID
}

// Upsert adds or replaces the phrase text stored for (key, variationID).
func (x *Index) Upsert(key, variationID, text string) error {
	doc := phraseDocument{Key: key, ID: variationID, Text: text}
	if err := x.idx.Index(docID(key, variationID), doc); err != nil {
		return fmt.Errorf("indexing phrase text: %w", err)
	}
	return nil
}

// Remove deletes the phrase stored for (key, variationID). Removing an
// absent phrase is a no-op.
func (x *Index) Remove(key, variationID string) error {
	if err := x.idx.Delete(docID(key, variationID)); err != nil {
		return fmt.Errorf("removing phrase text: %w", err)
	}
	return nil
}

// Search runs a full-text match of text against the stored phrases,
// best first. A non-empty key restricts hits to that intent key.
func (x *Index) Search(text, key string, limit int) ([]Hit, error) {
	matchQuery := bleve.NewMatchQuery(strings.TrimSpace(text))
	matchQuery.SetField("text")

	var q query.Query = matchQuery
	if key != "" {
		keyQuery := bleve.NewTermQuery(key)
		keyQuery.SetField("key")
		q = bleve.NewConjunctionQuery(matchQuery, keyQuery)
	}

	req := bleve.NewSearchRequestOptions(q, limit, 0, false)
	req.Fields = []string{"key", "id", "text"}

	result, err := x.idx.Search(req)
	if err != nil {
		return nil, fmt.Errorf("searching phrase texts: %w", err)
	}

	hits := make([]Hit, 0, len(result.Hits))
	for _, hit := range result.Hits {
		h := Hit{Score: hit.Score}
		if v, ok := hit.Fields["key"].(string); ok {
			h.Key = v
		}
		if v, ok := hit.Fields["id"].(string); ok {
			h.VariationID = v
		}
		if v, ok := hit.Fields["text"].(string); ok {
			h.Text = v
		}
		hits = append(hits, h)
	}
	return hits, nil
}

// Len returns the number of indexed phrases.
func (x *Index) Len() (uint64, error) {
	return x.idx.DocCount()
}

// Close closes the underlying Bleve index.
func (x *Index) Close() error {
	return x.idx.Close()
}
