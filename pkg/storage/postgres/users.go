package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/lanternpress/lantern/pkg/content"
)

type userStore struct {
	pool *pgxpool.Pool
}

func (s *userStore) Get(ctx context.Context, id string) (content.User, error) {
	query := `
		SELECT id, name, email, active, admin, created_at
		FROM users
		WHERE id = $1`

	var user content.User
	err := s.pool.QueryRow(ctx, query, id).Scan(
		&user.ID, &user.Name, &user.Email, &user.Active, &user.Admin, &user.CreatedAt,
	)
	if err != nil {
		if err == pgx.ErrNoRows {
			return content.User{}, content.ErrNotFound
		}
		return content.User{}, fmt.Errorf("failed to get user: %w", err)
	}

	return user, nil
}

func (s *userStore) Create(ctx context.Context, user content.User) error {
	query := `
		INSERT INTO users (id, name, email, active, admin, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)`

	_, err := s.pool.Exec(ctx, query,
		user.ID, user.Name, user.Email, user.Active, user.Admin, user.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create user: %w", err)
	}

	return nil
}

func (s *userStore) SetActive(ctx context.Context, id string, active bool) error {
	result, err := s.pool.Exec(ctx, `UPDATE users SET active = $2 WHERE id = $1`, id, active)
	if err != nil {
		return fmt.Errorf("failed to set user active status: %w", err)
	}
	if result.RowsAffected() == 0 {
		return content.ErrNotFound
	}

	return nil
}

func (s *userStore) SetAdmin(ctx context.Context, id string, admin bool) error {
	result, err := s.pool.Exec(ctx, `UPDATE users SET admin = $2 WHERE id = $1`, id, admin)
	if err != nil {
		return fmt.Errorf("failed to set user admin status: %w", err)
	}
	if result.RowsAffected() == 0 {
		return content.ErrNotFound
	}

	return nil
}

func (s *userStore) ListActiveIDs(ctx context.Context) (map[string]bool, error) {
	rows, err := s.pool.Query(ctx, `SELECT id FROM users WHERE active`)
	if err != nil {
		return nil, fmt.Errorf("failed to list active users: %w", err)
	}
	defer rows.Close()

	active := make(map[string]bool)
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("failed to scan user id: %w", err)
		}
		active[id] = true
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read active users: %w", err)
	}

	return active, nil
}
