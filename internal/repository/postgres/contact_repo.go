// internal/repository/postgres/contact_repo.go
package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"beatreach-service/internal/domain/contact"
	xerrors "beatreach-service/internal/pkg/errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/lib/pq"
)

const contactColumns = `id, store_id, email, first_name, last_name, status, source,
       source_product_id, source_course_id, tag_ids,
       emails_sent, emails_opened, emails_clicked, engagement_score,
       custom_fields, subscribed_at, last_emailed_at, last_opened_at, last_clicked_at,
       created_at, updated_at`

type ContactRepository struct {
	db *pgxpool.Pool
}

func NewContactRepository(db *pgxpool.Pool) *ContactRepository {
	return &ContactRepository{db: db}
}

func scanContact(row pgx.Row) (*contact.Contact, error) {
	var c contact.Contact
	var customFieldsJSON []byte

	err := row.Scan(
		&c.ID, &c.StoreID, &c.Email, &c.FirstName, &c.LastName, &c.Status, &c.Source,
		&c.SourceProductID, &c.SourceCourseID, &c.TagIDs,
		&c.EmailsSent, &c.EmailsOpened, &c.EmailsClicked, &c.EngagementScore,
		&customFieldsJSON, &c.SubscribedAt, &c.LastEmailedAt, &c.LastOpenedAt, &c.LastClickedAt,
		&c.CreatedAt, &c.UpdatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, xerrors.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to scan contact: %w", err)
	}

	if len(customFieldsJSON) > 0 {
		if err := json.Unmarshal(customFieldsJSON, &c.CustomFields); err != nil {
			return nil, fmt.Errorf("failed to unmarshal custom fields: %w", err)
		}
	}

	return &c, nil
}

// Create inserts a new contact. Returns xerrors.ErrConflict when a contact
// with the same (store_id, email) already exists, so callers can re-read
// the winner instead of failing under concurrent events.
func (r *ContactRepository) Create(ctx context.Context, c *contact.Contact) error {
	query := `
		INSERT INTO contacts (
			id, store_id, email, first_name, last_name, status, source,
			source_product_id, source_course_id, tag_ids,
			emails_sent, emails_opened, emails_clicked, engagement_score,
			custom_fields, subscribed_at, created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18)
		ON CONFLICT (store_id, email) DO NOTHING
		RETURNING id
	`

	customFieldsJSON, err := json.Marshal(c.CustomFields)
	if err != nil {
		return fmt.Errorf("failed to marshal custom fields: %w", err)
	}

	var insertedID string
	err = r.db.QueryRow(
		ctx, query,
		c.ID, c.StoreID, c.Email, c.FirstName, c.LastName, c.Status, c.Source,
		c.SourceProductID, c.SourceCourseID, c.TagIDs,
		c.EmailsSent, c.EmailsOpened, c.EmailsClicked, c.EngagementScore,
		customFieldsJSON, c.SubscribedAt, c.CreatedAt, c.UpdatedAt,
	).Scan(&insertedID)

	if errors.Is(err, pgx.ErrNoRows) {
		return xerrors.ErrConflict
	}
	if err != nil {
		return fmt.Errorf("failed to create contact: %w", err)
	}

	return nil
}

// FindByID retrieves a contact by ID.
func (r *ContactRepository) FindByID(ctx context.Context, id string) (*contact.Contact, error) {
	query := fmt.Sprintf(`SELECT %s FROM contacts WHERE id = $1`, contactColumns)
	return scanContact(r.db.QueryRow(ctx, query, id))
}

// FindByEmail retrieves a contact by (store, email). Email is matched
// lowercased, mirroring how contacts are stored.
func (r *ContactRepository) FindByEmail(ctx context.Context, storeID, email string) (*contact.Contact, error) {
	query := fmt.Sprintf(`SELECT %s FROM contacts WHERE store_id = $1 AND email = $2`, contactColumns)
	return scanContact(r.db.QueryRow(ctx, query, storeID, strings.ToLower(email)))
}

// Update persists the mutable fields of a contact.
func (r *ContactRepository) Update(ctx context.Context, c *contact.Contact) error {
	query := `
		UPDATE contacts
		SET first_name = $2, last_name = $3, status = $4, source = $5,
		    source_product_id = $6, source_course_id = $7, tag_ids = $8,
		    emails_sent = $9, emails_opened = $10, emails_clicked = $11,
		    engagement_score = $12, custom_fields = $13,
		    last_emailed_at = $14, last_opened_at = $15, last_clicked_at = $16,
		    updated_at = $17
		WHERE id = $1
	`

	customFieldsJSON, err := json.Marshal(c.CustomFields)
	if err != nil {
		return fmt.Errorf("failed to marshal custom fields: %w", err)
	}

	result, err := r.db.Exec(
		ctx, query,
		c.ID, c.FirstName, c.LastName, c.Status, c.Source,
		c.SourceProductID, c.SourceCourseID, c.TagIDs,
		c.EmailsSent, c.EmailsOpened, c.EmailsClicked,
		c.EngagementScore, customFieldsJSON,
		c.LastEmailedAt, c.LastOpenedAt, c.LastClickedAt,
		time.Now(),
	)
	if err != nil {
		return fmt.Errorf("failed to update contact: %w", err)
	}
	if result.RowsAffected() == 0 {
		return xerrors.ErrNotFound
	}

	return nil
}

// UpdateTags replaces the contact's tag-ID list. Only called by the tag
// application engine after it has deduplicated the list.
func (r *ContactRepository) UpdateTags(ctx context.Context, contactID string, tagIDs []string) error {
	query := `UPDATE contacts SET tag_ids = $2, updated_at = $3 WHERE id = $1`

	result, err := r.db.Exec(ctx, query, contactID, pq.StringArray(tagIDs), time.Now())
	if err != nil {
		return fmt.Errorf("failed to update contact tags: %w", err)
	}
	if result.RowsAffected() == 0 {
		return xerrors.ErrNotFound
	}

	return nil
}

// ListPage returns one keyset page of a store's contacts ordered by ID.
// ULID ids are time-ordered, so the page order is stable across calls.
func (r *ContactRepository) ListPage(ctx context.Context, storeID, afterID string, limit int) ([]contact.Contact, error) {
	query := fmt.Sprintf(`
		SELECT %s FROM contacts
		WHERE store_id = $1 AND id > $2
		ORDER BY id
		LIMIT $3
	`, contactColumns)

	rows, err := r.db.Query(ctx, query, storeID, afterID, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list contacts: %w", err)
	}
	defer rows.Close()

	return collectContacts(rows)
}

// ListSubscribed returns up to limit subscribed contacts for a store.
func (r *ContactRepository) ListSubscribed(ctx context.Context, storeID string, limit int) ([]contact.Contact, error) {
	query := fmt.Sprintf(`
		SELECT %s FROM contacts
		WHERE store_id = $1 AND status = $2
		ORDER BY id
		LIMIT $3
	`, contactColumns)

	rows, err := r.db.Query(ctx, query, storeID, contact.StatusSubscribed, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list subscribed contacts: %w", err)
	}
	defer rows.Close()

	return collectContacts(rows)
}

// List retrieves contacts with filters for the read API.
func (r *ContactRepository) List(ctx context.Context, storeID string, filters *contact.ListFilters) ([]contact.Contact, int64, error) {
	conditions := []string{"store_id = $1"}
	args := []interface{}{storeID}
	argPos := 2

	if filters.Status != "" {
		conditions = append(conditions, fmt.Sprintf("status = $%d", argPos))
		args = append(args, filters.Status)
		argPos++
	}

	if filters.Search != "" {
		conditions = append(conditions, fmt.Sprintf(
			"(email ILIKE $%d OR first_name ILIKE $%d OR last_name ILIKE $%d)",
			argPos, argPos, argPos,
		))
		args = append(args, "%"+filters.Search+"%")
		argPos++
	}

	whereClause := strings.Join(conditions, " AND ")

	countQuery := fmt.Sprintf("SELECT COUNT(*) FROM contacts WHERE %s", whereClause)
	var total int64
	if err := r.db.QueryRow(ctx, countQuery, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("failed to count contacts: %w", err)
	}

	if filters.Page < 1 {
		filters.Page = 1
	}
	if filters.PageSize < 1 {
		filters.PageSize = 20
	}

	offset := (filters.Page - 1) * filters.PageSize

	query := fmt.Sprintf(`
		SELECT %s FROM contacts
		WHERE %s
		ORDER BY created_at DESC
		LIMIT $%d OFFSET $%d
	`, contactColumns, whereClause, argPos, argPos+1)

	args = append(args, filters.PageSize, offset)

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list contacts: %w", err)
	}
	defer rows.Close()

	contacts, err := collectContacts(rows)
	if err != nil {
		return nil, 0, err
	}

	return contacts, total, nil
}

// RecordEmailSent bumps the sent counter; called by the sending pipeline.
func (r *ContactRepository) RecordEmailSent(ctx context.Context, contactID string) error {
	query := `
		UPDATE contacts
		SET emails_sent = emails_sent + 1, last_emailed_at = $2, updated_at = $2
		WHERE id = $1
	`

	result, err := r.db.Exec(ctx, query, contactID, time.Now())
	if err != nil {
		return fmt.Errorf("failed to record email sent: %w", err)
	}
	if result.RowsAffected() == 0 {
		return xerrors.ErrNotFound
	}

	return nil
}

// GetStats retrieves contact statistics for a store.
func (r *ContactRepository) GetStats(ctx context.Context, storeID string) (*contact.ContactStats, error) {
	query := `
		SELECT
			COUNT(*) AS total,
			COUNT(CASE WHEN status = 'subscribed' THEN 1 END) AS subscribed,
			COUNT(CASE WHEN status = 'bounced' THEN 1 END) AS bounced,
			COALESCE(AVG(engagement_score), 0) AS avg_engagement
		FROM contacts
		WHERE store_id = $1
	`

	var stats contact.ContactStats
	err := r.db.QueryRow(ctx, query, storeID).Scan(
		&stats.TotalContacts,
		&stats.Subscribed,
		&stats.Bounced,
		&stats.AvgEngagementScore,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to get contact stats: %w", err)
	}

	return &stats, nil
}

func collectContacts(rows pgx.Rows) ([]contact.Contact, error) {
	contacts := []contact.Contact{}
	for rows.Next() {
		var c contact.Contact
		var customFieldsJSON []byte

		err := rows.Scan(
			&c.ID, &c.StoreID, &c.Email, &c.FirstName, &c.LastName, &c.Status, &c.Source,
			&c.SourceProductID, &c.SourceCourseID, &c.TagIDs,
			&c.EmailsSent, &c.EmailsOpened, &c.EmailsClicked, &c.EngagementScore,
			&customFieldsJSON, &c.SubscribedAt, &c.LastEmailedAt, &c.LastOpenedAt, &c.LastClickedAt,
			&c.CreatedAt, &c.UpdatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan contact: %w", err)
		}

		if len(customFieldsJSON) > 0 {
			if err := json.Unmarshal(customFieldsJSON, &c.CustomFields); err != nil {
				return nil, fmt.Errorf("failed to unmarshal custom fields: %w", err)
			}
		}

		contacts = append(contacts, c)
	}

	return contacts, rows.Err()
}
