// internal/repository/postgres/tag_repo.go
package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"beatreach-service/internal/domain/tag"
	xerrors "beatreach-service/internal/pkg/errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type TagRepository struct {
	db *pgxpool.Pool
}

func NewTagRepository(db *pgxpool.Pool) *TagRepository {
	return &TagRepository{db: db}
}

// FindByName retrieves a tag by its (store, name) identity.
func (r *TagRepository) FindByName(ctx context.Context, storeID, name string) (*tag.Tag, error) {
	query := `
		SELECT id, store_id, name, color, description, contact_count, created_at, updated_at
		FROM tags
		WHERE store_id = $1 AND name = $2
	`

	var t tag.Tag
	err := r.db.QueryRow(ctx, query, storeID, name).Scan(
		&t.ID, &t.StoreID, &t.Name, &t.Color, &t.Description, &t.ContactCount,
		&t.CreatedAt, &t.UpdatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, xerrors.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find tag: %w", err)
	}

	return &t, nil
}

// CreateIfAbsent inserts a tag unless the (store, name) pair already
// exists. Returns created=false without error when another writer won the
// race; callers then re-read by name.
func (r *TagRepository) CreateIfAbsent(ctx context.Context, t *tag.Tag) (bool, error) {
	query := `
		INSERT INTO tags (id, store_id, name, color, description, contact_count, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		ON CONFLICT (store_id, name) DO NOTHING
		RETURNING id
	`

	var insertedID string
	err := r.db.QueryRow(
		ctx, query,
		t.ID, t.StoreID, t.Name, t.Color, t.Description, t.ContactCount,
		t.CreatedAt, t.UpdatedAt,
	).Scan(&insertedID)

	if errors.Is(err, pgx.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("failed to create tag: %w", err)
	}

	return true, nil
}

// IncrementContactCount bumps the denormalized contact counter. The counter
// is monotonic; no decrement query exists.
func (r *TagRepository) IncrementContactCount(ctx context.Context, tagID string) error {
	query := `UPDATE tags SET contact_count = contact_count + 1, updated_at = $2 WHERE id = $1`

	result, err := r.db.Exec(ctx, query, tagID, time.Now())
	if err != nil {
		return fmt.Errorf("failed to increment contact count: %w", err)
	}
	if result.RowsAffected() == 0 {
		return xerrors.ErrNotFound
	}

	return nil
}

// ListByStore retrieves all tags for a store.
func (r *TagRepository) ListByStore(ctx context.Context, storeID string) ([]tag.Tag, error) {
	query := `
		SELECT id, store_id, name, color, description, contact_count, created_at, updated_at
		FROM tags
		WHERE store_id = $1
		ORDER BY name
	`

	rows, err := r.db.Query(ctx, query, storeID)
	if err != nil {
		return nil, fmt.Errorf("failed to list tags: %w", err)
	}
	defer rows.Close()

	tags := []tag.Tag{}
	for rows.Next() {
		var t tag.Tag
		err := rows.Scan(
			&t.ID, &t.StoreID, &t.Name, &t.Color, &t.Description, &t.ContactCount,
			&t.CreatedAt, &t.UpdatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan tag: %w", err)
		}
		tags = append(tags, t)
	}

	return tags, rows.Err()
}
