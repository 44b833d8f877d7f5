package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/lanternpress/lantern/pkg/content"
)

type commentStore struct {
	pool *pgxpool.Pool
}

func (s *commentStore) ListByPost(ctx context.Context, postID string) ([]content.Comment, error) {
	query := `
		SELECT id, post_id, author_id, body, created_at
		FROM comments
		WHERE post_id = $1
		ORDER BY created_at, id`

	rows, err := s.pool.Query(ctx, query, postID)
	if err != nil {
		return nil, fmt.Errorf("failed to list comments: %w", err)
	}
	defer rows.Close()

	var comments []content.Comment
	for rows.Next() {
		var comment content.Comment
		if err := rows.Scan(&comment.ID, &comment.PostID, &comment.AuthorID, &comment.Body, &comment.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan comment: %w", err)
		}
		comments = append(comments, comment)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read comments: %w", err)
	}

	return comments, nil
}

func (s *commentStore) Create(ctx context.Context, comment content.Comment) error {
	query := `
		INSERT INTO comments (id, post_id, author_id, body, created_at)
		VALUES ($1, $2, $3, $4, $5)`

	_, err := s.pool.Exec(ctx, query,
		comment.ID, comment.PostID, comment.AuthorID, comment.Body, comment.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create comment: %w", err)
	}

	return nil
}

func (s *commentStore) Delete(ctx context.Context, id string) error {
	result, err := s.pool.Exec(ctx, `DELETE FROM comments WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete comment: %w", err)
	}
	if result.RowsAffected() == 0 {
		return content.ErrNotFound
	}

	return nil
}
