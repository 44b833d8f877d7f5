package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/lanternpress/lantern/pkg/content"
)

type postStore struct {
	pool *pgxpool.Pool
}

func (s *postStore) List(ctx context.Context) ([]content.Post, error) {
	query := `
		SELECT id, title, subtitle, body, author_id, created_at
		FROM posts
		ORDER BY created_at, id`

	rows, err := s.pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list posts: %w", err)
	}
	defer rows.Close()

	var posts []content.Post
	for rows.Next() {
		var post content.Post
		if err := rows.Scan(&post.ID, &post.Title, &post.Subtitle, &post.Body, &post.AuthorID, &post.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan post: %w", err)
		}
		posts = append(posts, post)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read posts: %w", err)
	}

	return posts, nil
}

func (s *postStore) Get(ctx context.Context, id string) (content.Post, error) {
	query := `
		SELECT id, title, subtitle, body, author_id, created_at
		FROM posts
		WHERE id = $1`

	var post content.Post
	err := s.pool.QueryRow(ctx, query, id).Scan(
		&post.ID, &post.Title, &post.Subtitle, &post.Body, &post.AuthorID, &post.CreatedAt,
	)
	if err != nil {
		if err == pgx.ErrNoRows {
			return content.Post{}, content.ErrNotFound
		}
		return content.Post{}, fmt.Errorf("failed to get post: %w", err)
	}

	return post, nil
}

func (s *postStore) Create(ctx context.Context, post content.Post) error {
	query := `
		INSERT INTO posts (id, title, subtitle, body, author_id, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)`

	_, err := s.pool.Exec(ctx, query,
		post.ID, post.Title, post.Subtitle, post.Body, post.AuthorID, post.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create post: %w", err)
	}

	return nil
}

func (s *postStore) Update(ctx context.Context, post content.Post) error {
	query := `
		UPDATE posts
		SET title = $2, subtitle = $3, body = $4
		WHERE id = $1`

	result, err := s.pool.Exec(ctx, query, post.ID, post.Title, post.Subtitle, post.Body)
	if err != nil {
		return fmt.Errorf("failed to update post: %w", err)
	}
	if result.RowsAffected() == 0 {
		return content.ErrNotFound
	}

	return nil
}

func (s *postStore) Delete(ctx context.Context, id string) error {
	result, err := s.pool.Exec(ctx, `DELETE FROM posts WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete post: %w", err)
	}
	if result.RowsAffected() == 0 {
		return content.ErrNotFound
	}

	return nil
}
