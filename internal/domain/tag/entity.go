// internal/domain/tag/entity.go
package tag

import "time"

// Tag is a named segmentation label, unique per (store_id, name).
// Names are structured "namespace:value" strings, e.g. "genre:techno",
// "product:epic-drums-vol-1", or the bare literal "customer".
type Tag struct {
	ID          string `json:"id" db:"id"`
	StoreID     string `json:"store_id" db:"store_id"`
	Name        string `json:"name" db:"name"`
	Color       string `json:"color" db:"color"`
	Description string `json:"description" db:"description"`

	// ContactCount is "contacts the tag was ever attached to". There is
	// no tag-removal path, so it never decrements.
	ContactCount int `json:"contact_count" db:"contact_count"`

	CreatedAt time.Time `json:"created_at" db:"created_at"`
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`
}
