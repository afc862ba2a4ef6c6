// internal/repository/postgres/activity_repo.go
package postgres

import (
	"context"
	"encoding/json"
	"fmt"

	"beatreach-service/internal/domain/contact"

	"github.com/jackc/pgx/v5/pgxpool"
)

type ActivityRepository struct {
	db *pgxpool.Pool
}

func NewActivityRepository(db *pgxpool.Pool) *ActivityRepository {
	return &ActivityRepository{db: db}
}

// Append writes one immutable activity row. The log is append-only; no
// update or delete queries exist.
func (r *ActivityRepository) Append(ctx context.Context, a *contact.Activity) error {
	query := `
		INSERT INTO contact_activity (id, contact_id, store_id, activity_type, metadata, occurred_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`

	var metadataJSON []byte
	var err error
	if a.Metadata != nil {
		metadataJSON, err = json.Marshal(a.Metadata)
		if err != nil {
			return fmt.Errorf("failed to marshal activity metadata: %w", err)
		}
	}

	_, err = r.db.Exec(ctx, query, a.ID, a.ContactID, a.StoreID, a.ActivityType, metadataJSON, a.OccurredAt)
	if err != nil {
		return fmt.Errorf("failed to append activity: %w", err)
	}

	return nil
}

// ListByContact retrieves the most recent activity for a contact.
func (r *ActivityRepository) ListByContact(ctx context.Context, contactID string, limit int) ([]contact.Activity, error) {
	if limit < 1 {
		limit = 50
	}

	query := `
		SELECT id, contact_id, store_id, activity_type, metadata, occurred_at
		FROM contact_activity
		WHERE contact_id = $1
		ORDER BY occurred_at DESC
		LIMIT $2
	`

	rows, err := r.db.Query(ctx, query, contactID, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list activity: %w", err)
	}
	defer rows.Close()

	activities := []contact.Activity{}
	for rows.Next() {
		var a contact.Activity
		var metadataJSON []byte

		err := rows.Scan(&a.ID, &a.ContactID, &a.StoreID, &a.ActivityType, &metadataJSON, &a.OccurredAt)
		if err != nil {
			return nil, fmt.Errorf("failed to scan activity: %w", err)
		}

		if len(metadataJSON) > 0 {
			if err := json.Unmarshal(metadataJSON, &a.Metadata); err != nil {
				return nil, fmt.Errorf("failed to unmarshal activity metadata: %w", err)
			}
		}

		activities = append(activities, a)
	}

	return activities, rows.Err()
}
