package content

import (
	"context"
	"errors"
)

// Store errors shared by all backends.
var (
	ErrNotFound = errors.New("record not found")
)

// PostStore is the document-store contract for posts. List returns posts
// in natural order: CreatedAt ascending, ties broken by ID.
type PostStore interface {
	List(ctx context.Context) ([]Post, error)
	Get(ctx context.Context, id string) (Post, error)
	Create(ctx context.Context, post Post) error
	Update(ctx context.Context, post Post) error
	Delete(ctx context.Context, id string) error
}

// CommentStore is the document-store contract for comments.
type CommentStore interface {
	ListByPost(ctx context.Context, postID string) ([]Comment, error)
	Create(ctx context.Context, comment Comment) error
	Delete(ctx context.Context, id string) error
}

// UserStore is the principal directory. ListActiveIDs returns the set of
// identifiers whose content is currently visible.
type UserStore interface {
	Get(ctx context.Context, id string) (User, error)
	Create(ctx context.Context, user User) error
	SetActive(ctx context.Context, id string, active bool) error
	SetAdmin(ctx context.Context, id string, admin bool) error
	ListActiveIDs(ctx context.Context) (map[string]bool, error)
}

// Store bundles the three collections of the document store.
type Store interface {
	Posts() PostStore
	Comments() CommentStore
	Users() UserStore
}
