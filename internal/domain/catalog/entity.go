// internal/domain/catalog/entity.go
package catalog

import (
	"database/sql"
	"time"

	"github.com/lib/pq"
)

// Read models for the platform catalog. These tables are owned by the
// storefront; this service only reads them when deriving tags.

// Product is a digital product (sample pack, preset pack, beat lease, ...).
type Product struct {
	ID              string         `json:"id" db:"id"`
	StoreID         string         `json:"store_id" db:"store_id"`
	Title           string         `json:"title" db:"title"`
	Description     sql.NullString `json:"description,omitempty" db:"description"`
	ProductType     sql.NullString `json:"product_type,omitempty" db:"product_type"`
	ProductCategory sql.NullString `json:"product_category,omitempty" db:"product_category"`
	Genre           pq.StringArray `json:"genre,omitempty" db:"genre"`
	CreatedAt       time.Time      `json:"created_at" db:"created_at"`
}

// Course is a video course sold through the platform.
type Course struct {
	ID          string         `json:"id" db:"id"`
	StoreID     string         `json:"store_id" db:"store_id"`
	Title       string         `json:"title" db:"title"`
	Slug        sql.NullString `json:"slug,omitempty" db:"slug"`
	Description sql.NullString `json:"description,omitempty" db:"description"`
	Category    sql.NullString `json:"category,omitempty" db:"category"`
	SkillLevel  sql.NullString `json:"skill_level,omitempty" db:"skill_level"`
	CreatedAt   time.Time      `json:"created_at" db:"created_at"`
}

// Customer links a buyer identity to a store.
type Customer struct {
	ID        string         `json:"id" db:"id"`
	StoreID   string         `json:"store_id" db:"store_id"`
	UserID    sql.NullString `json:"user_id,omitempty" db:"user_id"`
	Email     string         `json:"email" db:"email"`
	CreatedAt time.Time      `json:"created_at" db:"created_at"`
}

// Purchase is one completed checkout by a customer.
type Purchase struct {
	ID         string         `json:"id" db:"id"`
	CustomerID string         `json:"customer_id" db:"customer_id"`
	ProductID  sql.NullString `json:"product_id,omitempty" db:"product_id"`
	CourseID   sql.NullString `json:"course_id,omitempty" db:"course_id"`
	Amount     float64        `json:"amount" db:"amount"`
	CreatedAt  time.Time      `json:"created_at" db:"created_at"`
}

// Enrollment records a user's access to a course.
type Enrollment struct {
	ID        string    `json:"id" db:"id"`
	CourseID  string    `json:"course_id" db:"course_id"`
	UserID    string    `json:"user_id" db:"user_id"`
	Progress  int       `json:"progress" db:"progress"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
}

// User is a platform account. Only the email is needed here, to resolve
// enrollments back to contacts.
type User struct {
	ID    string         `json:"id" db:"id"`
	Email sql.NullString `json:"email,omitempty" db:"email"`
	Name  sql.NullString `json:"name,omitempty" db:"name"`
}
