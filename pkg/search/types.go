package search

import (
	"github.com/lanternpress/lantern/pkg/content"
)

// Result is a single search hit. Score carries the index's native
// relevance when the hit came from the primary path and zero when it
// came from the fallback scan, which has no ranking signal.
type Result struct {
	Post  content.Post `json:"post"`
	Score float64      `json:"score"`
}

// Hit is a raw index match before store records are attached.
type Hit struct {
	ID    string
	Score float64
}

// TextIndex is the full-text index contract consumed by the engine. A
// Query error means the index could not service this query; it is never
// surfaced to callers.
type TextIndex interface {
	Query(text string) ([]Hit, error)
}

// SearchError is a user-visible search failure.
type SearchError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func (e SearchError) Error() string {
	return e.Message
}

// User-visible outcomes. The invalid-query message is deliberately
// generic; it must not reveal which detection rule fired.
var (
	ErrInvalidQuery = SearchError{Code: "invalid_query", Message: "Invalid search query. Please use only text in search."}
	ErrUnavailable  = SearchError{Code: "search_unavailable", Message: "Search is temporarily unavailable."}
)
