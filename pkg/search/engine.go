package search

import (
	"context"
	"fmt"
	"regexp"
	"sort"
	"strings"

	"github.com/lanternpress/lantern/pkg/content"
	"github.com/lanternpress/lantern/pkg/infrastructure/logging"
)

// Engine executes search queries. Per query it runs a fixed state
// machine: input gate, primary index path, fallback pattern scan on
// index failure. Results are always intersected with the active
// principal set.
type Engine struct {
	index  TextIndex
	posts  content.PostStore
	users  content.UserStore
	logger *logging.Logger
}

// NewEngine creates a search engine over the given index and store.
func NewEngine(index TextIndex, posts content.PostStore, users content.UserStore, logger *logging.Logger) *Engine {
	return &Engine{
		index:  index,
		posts:  posts,
		users:  users,
		logger: logger.WithComponent("search"),
	}
}

// Search runs a query and returns visible results. Suspicious input is
// rejected with ErrInvalidQuery before any search executes. An empty
// query returns all visible posts unranked. Index failures are recovered
// locally by the fallback scan and never surfaced.
func (e *Engine) Search(ctx context.Context, query string) ([]Result, error) {
	query = strings.TrimSpace(query)

	if query != "" {
		if verdict := Classify(query); verdict.Suspicious {
			searchRejections.Inc()
			e.logger.Warn("rejected suspicious query", map[string]interface{}{
				"category": verdict.Category,
			})
			return nil, ErrInvalidQuery
		}
	}

	searchQueries.Inc()

	active, err := e.users.ListActiveIDs(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list active principals: %w", err)
	}

	posts, err := e.posts.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list posts: %w", err)
	}
	visible := content.VisiblePosts(posts, active)

	if query == "" {
		return neutralResults(visible), nil
	}

	if e.index != nil {
		hits, err := e.index.Query(query)
		if err == nil {
			return rankedResults(visible, hits), nil
		}
		e.logger.Debug("index query failed, falling back to pattern scan", map[string]interface{}{
			"error": err.Error(),
		})
	}

	searchFallbacks.Inc()
	return fallbackResults(visible, query), nil
}

// rankedResults intersects index hits with the visible set and sorts by
// native relevance, descending. Ties keep the store's natural order.
func rankedResults(visible []content.Post, hits []Hit) []Result {
	scores := make(map[string]float64, len(hits))
	for _, hit := range hits {
		scores[hit.ID] = hit.Score
	}

	results := make([]Result, 0, len(hits))
	for _, post := range visible {
		if score, ok := scores[post.ID]; ok {
			results = append(results, Result{Post: post, Score: score})
		}
	}

	sort.SliceStable(results, func(i, j int) bool {
		return results[i].Score > results[j].Score
	})

	return results
}

// fallbackResults performs the degraded scan: a case-insensitive quoted
// substring match against each searchable field, OR'd together. The
// fallback has no ranking signal, so every score is zero and the store's
// natural order stands.
func fallbackResults(visible []content.Post, query string) []Result {
	re, err := regexp.Compile(`(?i)` + regexp.QuoteMeta(query))
	if err != nil {
		return []Result{}
	}

	results := make([]Result, 0, len(visible))
	for _, post := range visible {
		if re.MatchString(post.Title) || re.MatchString(post.Subtitle) || re.MatchString(post.Body) {
			results = append(results, Result{Post: post})
		}
	}
	return results
}

// neutralResults wraps posts with zero scores, the shape of an empty
// fallback result.
func neutralResults(posts []content.Post) []Result {
	results := make([]Result, 0, len(posts))
	for _, post := range posts {
		results = append(results, Result{Post: post})
	}
	return results
}
