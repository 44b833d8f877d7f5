package readcache

import (
	"context"
	"fmt"
	"sync/atomic"

	"github.com/lanternpress/lantern/pkg/content"
	"github.com/lanternpress/lantern/pkg/infrastructure/logging"
)

// Logical operation names. Each gets its own cache namespace, so
// invalidating one never touches the other.
const (
	opPostWithComments = "post_with_comments"
	opListPosts        = "list_posts"
)

// Every sweepInterval-th cached read triggers an opportunistic sweep, so
// expired entries get collected without a dedicated timer.
const sweepInterval = 32

// PostView is the aggregation of a post with its visible comments.
type PostView struct {
	Post     content.Post      `json:"post"`
	Comments []content.Comment `json:"comments"`
}

// Reader is the cache-aware read path. It memoizes expensive store
// aggregations in the TTL cache and owns the invalidation rules for
// content writes.
type Reader struct {
	cache  *Cache
	store  content.Store
	logger *logging.Logger
	calls  atomic.Uint64
}

// NewReader creates a cache-aware reader over the given store.
func NewReader(cache *Cache, store content.Store, logger *logging.Logger) *Reader {
	return &Reader{
		cache:  cache,
		store:  store,
		logger: logger.WithComponent("readcache"),
	}
}

// cached is compute-if-absent around the TTL cache. A failed compute is
// returned as-is and never cached. No cache lock is held while compute
// runs; only the final Set takes exclusive access.
func cached[T any](r *Reader, key string, compute func() (T, error)) (T, error) {
	r.maybeSweep()

	if v, ok := r.cache.Get(key); ok {
		if result, ok := v.(T); ok {
			return result, nil
		}
	}

	result, err := compute()
	if err != nil {
		var zero T
		return zero, err
	}

	r.cache.Set(key, result)
	return result, nil
}

func (r *Reader) maybeSweep() {
	if r.calls.Add(1)%sweepInterval != 0 {
		return
	}
	if removed := r.cache.Sweep(); removed > 0 {
		r.logger.Debug("swept expired cache entries", map[string]interface{}{"removed": removed})
	}
}

// PostWithComments returns a post together with the comments authored by
// active principals. A post whose own author is inactive is reported as
// not found. The result is cached under the post's key.
func (r *Reader) PostWithComments(ctx context.Context, postID string) (PostView, error) {
	key := CacheKey(opPostWithComments, []interface{}{postID}, nil)

	return cached(r, key, func() (PostView, error) {
		post, err := r.store.Posts().Get(ctx, postID)
		if err != nil {
			return PostView{}, err
		}

		active, err := r.store.Users().ListActiveIDs(ctx)
		if err != nil {
			return PostView{}, fmt.Errorf("failed to list active principals: %w", err)
		}
		if !active[post.AuthorID] {
			return PostView{}, content.ErrNotFound
		}

		comments, err := r.store.Comments().ListByPost(ctx, postID)
		if err != nil {
			return PostView{}, fmt.Errorf("failed to list comments: %w", err)
		}

		return PostView{
			Post:     post,
			Comments: content.VisibleComments(comments, active),
		}, nil
	})
}

// ListPosts returns all posts by active principals in natural order,
// cached under the listing key.
func (r *Reader) ListPosts(ctx context.Context) ([]content.Post, error) {
	key := CacheKey(opListPosts, nil, nil)

	return cached(r, key, func() ([]content.Post, error) {
		posts, err := r.store.Posts().List(ctx)
		if err != nil {
			return nil, err
		}

		active, err := r.store.Users().ListActiveIDs(ctx)
		if err != nil {
			return nil, fmt.Errorf("failed to list active principals: %w", err)
		}

		return content.VisiblePosts(posts, active), nil
	})
}

// InvalidatePost drops the cached aggregation for a single post. Used
// when a write touches exactly that record (a new comment, a post edit).
func (r *Reader) InvalidatePost(postID string) {
	r.cache.Invalidate(CacheKey(opPostWithComments, []interface{}{postID}, nil))
}

// InvalidateListing drops the cached anonymous listing. Used when the
// set of posts changes.
func (r *Reader) InvalidateListing() {
	r.cache.Invalidate(CacheKey(opListPosts, nil, nil))
}

// Reset clears the whole cache. Used when the blast radius of a write is
// not cheaply computable, such as a principal's active or admin status
// changing.
func (r *Reader) Reset() {
	r.cache.Clear()
}
