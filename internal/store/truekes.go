package store

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/truekeo/truekeo-api/internal/models"
)

type truekeStore struct {
	pool *pgxpool.Pool
}

const truekeColumns = `id, title, description, host_user_id, host_item_id,
	taker_user_id, taker_item_id, latitude, longitude, scheduled_at, status,
	created_at, updated_at`

func scanTruekeRow(row pgx.Row) (*TruekeRow, error) {
	var r TruekeRow
	err := row.Scan(&r.ID, &r.Title, &r.Description, &r.HostUserID, &r.HostItemID,
		&r.TakerUserID, &r.TakerItemID, &r.Latitude, &r.Longitude, &r.ScheduledAt,
		&r.Status, &r.CreatedAt, &r.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, models.ErrNotFound
		}
		return nil, fmt.Errorf("scanning trueke: %w", err)
	}
	return &r, nil
}

func collectTruekeRows(rows pgx.Rows) ([]TruekeRow, error) {
	defer rows.Close()
	out := []TruekeRow{}
	for rows.Next() {
		r, err := scanTruekeRow(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *r)
	}
	return out, rows.Err()
}

func (s *truekeStore) Create(ctx context.Context, row *TruekeRow) error {
	err := s.pool.QueryRow(ctx, `
		INSERT INTO truekes (title, description, host_user_id, host_item_id,
			latitude, longitude, scheduled_at, status)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING id, created_at, updated_at
	`, row.Title, row.Description, row.HostUserID, row.HostItemID,
		row.Latitude, row.Longitude, row.ScheduledAt, row.Status).
		Scan(&row.ID, &row.CreatedAt, &row.UpdatedAt)
	if err != nil {
		return fmt.Errorf("inserting trueke: %w", err)
	}
	return nil
}

func (s *truekeStore) GetByID(ctx context.Context, id uuid.UUID) (*TruekeRow, error) {
	return scanTruekeRow(s.pool.QueryRow(ctx,
		`SELECT `+truekeColumns+` FROM truekes WHERE id = $1`, id))
}

func (s *truekeStore) ListOpen(ctx context.Context, limit, offset int) ([]TruekeRow, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT `+truekeColumns+` FROM truekes
		WHERE status = 'OPEN'
		ORDER BY created_at DESC
		LIMIT $1 OFFSET $2
	`, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("querying open truekes: %w", err)
	}
	return collectTruekeRows(rows)
}

func (s *truekeStore) ListByUser(ctx context.Context, userID uuid.UUID) ([]TruekeRow, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT `+truekeColumns+` FROM truekes
		WHERE host_user_id = $1 OR taker_user_id = $1
		ORDER BY updated_at DESC
	`, userID)
	if err != nil {
		return nil, fmt.Errorf("querying user truekes: %w", err)
	}
	return collectTruekeRows(rows)
}

func (s *truekeStore) UpdateDetails(ctx context.Context, row *TruekeRow) error {
	tag, err := s.pool.Exec(ctx, `
		UPDATE truekes
		SET title = $2, description = $3, latitude = $4, longitude = $5,
		    scheduled_at = $6, updated_at = NOW()
		WHERE id = $1
	`, row.ID, row.Title, row.Description, row.Latitude, row.Longitude, row.ScheduledAt)
	if err != nil {
		return fmt.Errorf("updating trueke: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return models.ErrNotFound
	}
	return nil
}

// UpdateStatus guards the write with the expected prior status, so two
// concurrent transitions cannot both win.
func (s *truekeStore) UpdateStatus(ctx context.Context, id uuid.UUID, from, to models.TruekeStatus, takerUserID, takerItemID *uuid.UUID) error {
	var (
		tag pgconn.CommandTag
		err error
	)
	if takerUserID != nil {
		tag, err = s.pool.Exec(ctx, `
			UPDATE truekes
			SET status = $3, taker_user_id = $4, taker_item_id = $5, updated_at = NOW()
			WHERE id = $1 AND status = $2
		`, id, string(from), string(to), takerUserID, takerItemID)
	} else {
		tag, err = s.pool.Exec(ctx, `
			UPDATE truekes SET status = $3, updated_at = NOW()
			WHERE id = $1 AND status = $2
		`, id, string(from), string(to))
	}
	if err != nil {
		return fmt.Errorf("updating trueke status: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return models.Preconditionf("trueke is no longer %s", from)
	}
	return nil
}

func (s *truekeStore) Delete(ctx context.Context, id uuid.UUID) error {
	tag, err := s.pool.Exec(ctx, `DELETE FROM truekes WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("deleting trueke: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return models.ErrNotFound
	}
	return nil
}
