package search

import (
	"github.com/lanternpress/lantern/pkg/content"
	"github.com/lanternpress/lantern/pkg/infrastructure/logging"
)

// IndexHook keeps the full-text index in step with store writes. Index
// maintenance failures are logged, never propagated: a stale index
// degrades ranking, it does not break writes.
type IndexHook struct {
	index  *PostIndex
	logger *logging.Logger
}

// NewIndexHook creates a hook for the given index.
func NewIndexHook(index *PostIndex, logger *logging.Logger) *IndexHook {
	return &IndexHook{
		index:  index,
		logger: logger.WithComponent("search-index"),
	}
}

// OnPostWritten is called after a post is created or updated.
func (h *IndexHook) OnPostWritten(post content.Post) {
	if h == nil || h.index == nil {
		return
	}
	if err := h.index.Index(post); err != nil {
		h.logger.Error("failed to index post", map[string]interface{}{
			"post_id": post.ID,
			"error":   err.Error(),
		})
	}
}

// OnPostDeleted is called after a post is removed.
func (h *IndexHook) OnPostDeleted(id string) {
	if h == nil || h.index == nil {
		return
	}
	if err := h.index.Remove(id); err != nil {
		h.logger.Error("failed to remove post from index", map[string]interface{}{
			"post_id": id,
			"error":   err.Error(),
		})
	}
}

// Seed indexes every post currently in the store, used at startup to
// rebuild the in-memory index.
func (h *IndexHook) Seed(posts []content.Post) {
	if h == nil || h.index == nil {
		return
	}
	for _, post := range posts {
		h.OnPostWritten(post)
	}
}
