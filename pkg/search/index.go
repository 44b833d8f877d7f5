package search

import (
	"fmt"

	"github.com/blevesearch/bleve/v2"
	"github.com/blevesearch/bleve/v2/analysis/analyzer/standard"
	"github.com/blevesearch/bleve/v2/mapping"

	"github.com/lanternpress/lantern/pkg/content"
)

// postDocument is the indexed shape of a post: the three searchable
// fields only. Visibility is applied at query time, never baked into
// the index.
type postDocument struct {
	Title    string `json:"title"`
	Subtitle string `json:"subtitle"`
	Body     string `json:"body"`
}

// PostIndex is the primary full-text index over posts, backed by Bleve.
type PostIndex struct {
	index      bleve.Index
	maxResults int
}

// NewPostIndex opens or creates a Bleve index at path. An empty path
// keeps the index in memory, which is the default for tests and simple
// deployments.
func NewPostIndex(path string, maxResults int) (*PostIndex, error) {
	if maxResults <= 0 {
		maxResults = 100
	}

	if path == "" {
		index, err := bleve.NewMemOnly(buildIndexMapping())
		if err != nil {
			return nil, fmt.Errorf("failed to create in-memory index: %w", err)
		}
		return &PostIndex{index: index, maxResults: maxResults}, nil
	}

	index, err := bleve.Open(path)
	if err == bleve.ErrorIndexPathDoesNotExist {
		index, err = bleve.New(path, buildIndexMapping())
		if err != nil {
			return nil, fmt.Errorf("failed to create index: %w", err)
		}
		return &PostIndex{index: index, maxResults: maxResults}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to open index: %w", err)
	}

	return &PostIndex{index: index, maxResults: maxResults}, nil
}

// buildIndexMapping maps the searchable post fields with the standard
// analyzer.
func buildIndexMapping() mapping.IndexMapping {
	indexMapping := bleve.NewIndexMapping()

	postMapping := bleve.NewDocumentMapping()

	titleField := bleve.NewTextFieldMapping()
	titleField.Analyzer = standard.Name
	titleField.Store = false
	postMapping.AddFieldMappingsAt("title", titleField)

	subtitleField := bleve.NewTextFieldMapping()
	subtitleField.Analyzer = standard.Name
	subtitleField.Store = false
	postMapping.AddFieldMappingsAt("subtitle", subtitleField)

	bodyField := bleve.NewTextFieldMapping()
	bodyField.Analyzer = standard.Name
	bodyField.Store = false
	postMapping.AddFieldMappingsAt("body", bodyField)

	indexMapping.AddDocumentMapping("post", postMapping)
	indexMapping.DefaultType = "post"

	return indexMapping
}

// Index adds or replaces a post in the index.
func (pi *PostIndex) Index(post content.Post) error {
	doc := postDocument{
		Title:    post.Title,
		Subtitle: post.Subtitle,
		Body:     post.Body,
	}
	if err := pi.index.Index(post.ID, doc); err != nil {
		return fmt.Errorf("failed to index post %s: %w", post.ID, err)
	}
	return nil
}

// Remove deletes a post from the index. Removing an unknown ID is a
// no-op.
func (pi *PostIndex) Remove(id string) error {
	if err := pi.index.Delete(id); err != nil {
		return fmt.Errorf("failed to remove post %s from index: %w", id, err)
	}
	return nil
}

// Query runs a query-string search across title, subtitle and body and
// returns ranked hits. Queries the analyzer cannot tokenize surface as
// an error here; the engine recovers by falling back to a pattern scan.
func (pi *PostIndex) Query(text string) ([]Hit, error) {
	query := bleve.NewQueryStringQuery(text)
	request := bleve.NewSearchRequest(query)
	request.Size = pi.maxResults

	result, err := pi.index.Search(request)
	if err != nil {
		return nil, fmt.Errorf("index query failed: %w", err)
	}

	hits := make([]Hit, 0, len(result.Hits))
	for _, hit := range result.Hits {
		hits = append(hits, Hit{ID: hit.ID, Score: hit.Score})
	}
	return hits, nil
}

// Close releases the underlying index.
func (pi *PostIndex) Close() error {
	return pi.index.Close()
}
