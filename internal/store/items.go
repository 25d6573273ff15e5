package store

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/truekeo/truekeo-api/internal/models"
)

type itemStore struct {
	pool *pgxpool.Pool
}

const itemColumns = `id, user_id, name, COALESCE(details, ''), image_urls,
	COALESCE(brand, ''), condition, status, created_at, updated_at`

// scanItem parses the enum columns through the closed model types, so a row
// carrying an unrecognized condition or status is an error, not a default.
func scanItem(row pgx.Row) (*models.Item, error) {
	var (
		it        models.Item
		condition string
		status    string
	)
	err := row.Scan(&it.ID, &it.UserID, &it.Name, &it.Details, &it.ImageURLs,
		&it.Brand, &condition, &status, &it.CreatedAt, &it.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, models.ErrNotFound
		}
		return nil, fmt.Errorf("scanning item: %w", err)
	}

	if it.Condition, err = models.ParseItemCondition(condition); err != nil {
		return nil, fmt.Errorf("item %s: %w", it.ID, err)
	}
	if it.Status, err = models.ParseItemStatus(status); err != nil {
		return nil, fmt.Errorf("item %s: %w", it.ID, err)
	}
	if it.ImageURLs == nil {
		it.ImageURLs = []string{}
	}
	return &it, nil
}

func (s *itemStore) Create(ctx context.Context, item *models.Item) error {
	if item.ImageURLs == nil {
		item.ImageURLs = []string{}
	}
	err := s.pool.QueryRow(ctx, `
		INSERT INTO items (user_id, name, details, image_urls, brand, condition, status)
		VALUES ($1, $2, NULLIF($3, ''), $4, NULLIF($5, ''), $6, $7)
		RETURNING id, created_at, updated_at
	`, item.UserID, item.Name, item.Details, item.ImageURLs, item.Brand,
		string(item.Condition), string(item.Status)).
		Scan(&item.ID, &item.CreatedAt, &item.UpdatedAt)
	if err != nil {
		return fmt.Errorf("inserting item: %w", err)
	}
	return nil
}

func (s *itemStore) GetByID(ctx context.Context, id uuid.UUID) (*models.Item, error) {
	return scanItem(s.pool.QueryRow(ctx,
		`SELECT `+itemColumns+` FROM items WHERE id = $1`, id))
}

func (s *itemStore) ListByUser(ctx context.Context, userID uuid.UUID, status *models.ItemStatus) ([]models.Item, error) {
	var (
		rows pgx.Rows
		err  error
	)
	if status == nil {
		rows, err = s.pool.Query(ctx,
			`SELECT `+itemColumns+` FROM items WHERE user_id = $1 ORDER BY updated_at DESC`, userID)
	} else {
		rows, err = s.pool.Query(ctx,
			`SELECT `+itemColumns+` FROM items WHERE user_id = $1 AND status = $2 ORDER BY updated_at DESC`,
			userID, string(*status))
	}
	if err != nil {
		return nil, fmt.Errorf("querying items: %w", err)
	}
	defer rows.Close()

	items := []models.Item{}
	for rows.Next() {
		it, err := scanItem(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, *it)
	}
	return items, rows.Err()
}

func (s *itemStore) UpdateStatus(ctx context.Context, id uuid.UUID, status models.ItemStatus) error {
	tag, err := s.pool.Exec(ctx,
		`UPDATE items SET status = $2, updated_at = NOW() WHERE id = $1`, id, string(status))
	if err != nil {
		return fmt.Errorf("updating item status: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return models.ErrNotFound
	}
	return nil
}

func (s *itemStore) AppendImageURL(ctx context.Context, id uuid.UUID, url string) error {
	tag, err := s.pool.Exec(ctx,
		`UPDATE items SET image_urls = array_append(image_urls, $2), updated_at = NOW() WHERE id = $1`,
		id, url)
	if err != nil {
		return fmt.Errorf("appending item image: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return models.ErrNotFound
	}
	return nil
}

func (s *itemStore) Delete(ctx context.Context, id uuid.UUID) error {
	tag, err := s.pool.Exec(ctx, `DELETE FROM items WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("deleting item: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return models.ErrNotFound
	}
	return nil
}
