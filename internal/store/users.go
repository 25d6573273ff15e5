package store

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/truekeo/truekeo-api/internal/models"
)

type userStore struct {
	pool *pgxpool.Pool
}

const userColumns = `id, username, email, password_hash, COALESCE(avatar_url, ''), created_at`

func scanUser(row pgx.Row) (*models.User, error) {
	var u models.User
	err := row.Scan(&u.ID, &u.Username, &u.Email, &u.PasswordHash, &u.AvatarURL, &u.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, models.ErrNotFound
		}
		return nil, fmt.Errorf("scanning user: %w", err)
	}
	return &u, nil
}

func (s *userStore) Create(ctx context.Context, u *models.User) error {
	err := s.pool.QueryRow(ctx, `
		INSERT INTO users (username, email, password_hash, avatar_url)
		VALUES ($1, $2, $3, NULLIF($4, ''))
		RETURNING id, created_at
	`, u.Username, u.Email, u.PasswordHash, u.AvatarURL).Scan(&u.ID, &u.CreatedAt)
	if err != nil {
		// Concurrent sign-ups can slip past the service's pre-checks; the
		// unique constraints are the source of truth.
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			if strings.Contains(pgErr.ConstraintName, "email") {
				return models.Preconditionf("an account with that email already exists")
			}
			return models.Preconditionf("username %q is taken", u.Username)
		}
		return fmt.Errorf("inserting user: %w", err)
	}
	return nil
}

func (s *userStore) GetByID(ctx context.Context, id uuid.UUID) (*models.User, error) {
	return scanUser(s.pool.QueryRow(ctx,
		`SELECT `+userColumns+` FROM users WHERE id = $1`, id))
}

func (s *userStore) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	return scanUser(s.pool.QueryRow(ctx,
		`SELECT `+userColumns+` FROM users WHERE email = $1`, email))
}

func (s *userStore) GetByUsername(ctx context.Context, username string) (*models.User, error) {
	return scanUser(s.pool.QueryRow(ctx,
		`SELECT `+userColumns+` FROM users WHERE username = $1`, username))
}

func (s *userStore) UpdateProfile(ctx context.Context, id uuid.UUID, username, avatarURL string) (*models.User, error) {
	return scanUser(s.pool.QueryRow(ctx, `
		UPDATE users
		SET username = COALESCE(NULLIF($2, ''), username),
		    avatar_url = COALESCE(NULLIF($3, ''), avatar_url)
		WHERE id = $1
		RETURNING `+userColumns, id, username, avatarURL))
}

func (s *userStore) SetAvatarURL(ctx context.Context, id uuid.UUID, url string) error {
	tag, err := s.pool.Exec(ctx,
		`UPDATE users SET avatar_url = $2 WHERE id = $1`, id, url)
	if err != nil {
		return fmt.Errorf("updating avatar: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return models.ErrNotFound
	}
	return nil
}
