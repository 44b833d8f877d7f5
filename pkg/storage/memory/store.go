// Package memory provides an in-memory document store, the default
// backend for development and tests.
package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/lanternpress/lantern/pkg/content"
)

// Store is a mutex-guarded in-memory implementation of content.Store.
type Store struct {
	mu       sync.RWMutex
	posts    map[string]content.Post
	comments map[string]content.Comment
	users    map[string]content.User
}

// NewStore creates an empty store.
func NewStore() *Store {
	return &Store{
		posts:    make(map[string]content.Post),
		comments: make(map[string]content.Comment),
		users:    make(map[string]content.User),
	}
}

// Posts returns the post collection.
func (s *Store) Posts() content.PostStore { return (*postStore)(s) }

// Comments returns the comment collection.
func (s *Store) Comments() content.CommentStore { return (*commentStore)(s) }

// Users returns the principal directory.
func (s *Store) Users() content.UserStore { return (*userStore)(s) }

type postStore Store

func (s *postStore) List(ctx context.Context) ([]content.Post, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	posts := make([]content.Post, 0, len(s.posts))
	for _, post := range s.posts {
		posts = append(posts, post)
	}
	sort.Slice(posts, func(i, j int) bool {
		if !posts[i].CreatedAt.Equal(posts[j].CreatedAt) {
			return posts[i].CreatedAt.Before(posts[j].CreatedAt)
		}
		return posts[i].ID < posts[j].ID
	})
	return posts, nil
}

func (s *postStore) Get(ctx context.Context, id string) (content.Post, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	post, ok := s.posts[id]
	if !ok {
		return content.Post{}, content.ErrNotFound
	}
	return post, nil
}

func (s *postStore) Create(ctx context.Context, post content.Post) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.posts[post.ID] = post
	return nil
}

func (s *postStore) Update(ctx context.Context, post content.Post) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.posts[post.ID]; !ok {
		return content.ErrNotFound
	}
	s.posts[post.ID] = post
	return nil
}

func (s *postStore) Delete(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.posts[id]; !ok {
		return content.ErrNotFound
	}
	delete(s.posts, id)
	return nil
}

type commentStore Store

func (s *commentStore) ListByPost(ctx context.Context, postID string) ([]content.Comment, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	comments := make([]content.Comment, 0)
	for _, comment := range s.comments {
		if comment.PostID == postID {
			comments = append(comments, comment)
		}
	}
	sort.Slice(comments, func(i, j int) bool {
		if !comments[i].CreatedAt.Equal(comments[j].CreatedAt) {
			return comments[i].CreatedAt.Before(comments[j].CreatedAt)
		}
		return comments[i].ID < comments[j].ID
	})
	return comments, nil
}

func (s *commentStore) Create(ctx context.Context, comment content.Comment) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.comments[comment.ID] = comment
	return nil
}

func (s *commentStore) Delete(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.comments[id]; !ok {
		return content.ErrNotFound
	}
	delete(s.comments, id)
	return nil
}

type userStore Store

func (s *userStore) Get(ctx context.Context, id string) (content.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	user, ok := s.users[id]
	if !ok {
		return content.User{}, content.ErrNotFound
	}
	return user, nil
}

func (s *userStore) Create(ctx context.Context, user content.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.users[user.ID] = user
	return nil
}

func (s *userStore) SetActive(ctx context.Context, id string, active bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	user, ok := s.users[id]
	if !ok {
		return content.ErrNotFound
	}
	user.Active = active
	s.users[id] = user
	return nil
}

func (s *userStore) SetAdmin(ctx context.Context, id string, admin bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	user, ok := s.users[id]
	if !ok {
		return content.ErrNotFound
	}
	user.Admin = admin
	s.users[id] = user
	return nil
}

func (s *userStore) ListActiveIDs(ctx context.Context) (map[string]bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	active := make(map[string]bool)
	for id, user := range s.users {
		if user.Active {
			active[id] = true
		}
	}
	return active, nil
}
