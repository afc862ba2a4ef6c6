// internal/domain/contact/entity.go
package contact

import (
	"database/sql"
	"time"

	"github.com/lib/pq"
)

// Contact status values
const (
	StatusSubscribed   = "subscribed"
	StatusUnsubscribed = "unsubscribed"
	StatusBounced      = "bounced"
)

// Contact source values
const (
	SourceFollowGate       = "follow_gate"
	SourcePurchase         = "purchase"
	SourceCourseEnrollment = "course_enrollment"
	SourcePlatformUser     = "platform_user"
	SourceCustomerSync     = "customer_sync"
	SourceStudentSync      = "student_sync"
	SourceManual           = "manual"
)

// Contact is a lead or customer record, unique per (store_id, email).
// Email is always stored lowercased.
type Contact struct {
	ID      string `json:"id" db:"id"`
	StoreID string `json:"store_id" db:"store_id"`
	Email   string `json:"email" db:"email"`

	FirstName sql.NullString `json:"first_name,omitempty" db:"first_name"`
	LastName  sql.NullString `json:"last_name,omitempty" db:"last_name"`

	Status string `json:"status" db:"status"`
	Source string `json:"source" db:"source"`

	// First-touch attribution; set once and never overwritten.
	SourceProductID sql.NullString `json:"source_product_id,omitempty" db:"source_product_id"`
	SourceCourseID  sql.NullString `json:"source_course_id,omitempty" db:"source_course_id"`

	// Tag IDs behave as a set; order is insertion order.
	TagIDs pq.StringArray `json:"tag_ids" db:"tag_ids"`

	EmailsSent    int `json:"emails_sent" db:"emails_sent"`
	EmailsOpened  int `json:"emails_opened" db:"emails_opened"`
	EmailsClicked int `json:"emails_clicked" db:"emails_clicked"`

	// Bounded [0, 100].
	EngagementScore int `json:"engagement_score" db:"engagement_score"`

	CustomFields CustomFields `json:"custom_fields" db:"custom_fields"`

	SubscribedAt  time.Time    `json:"subscribed_at" db:"subscribed_at"`
	LastEmailedAt sql.NullTime `json:"last_emailed_at,omitempty" db:"last_emailed_at"`
	LastOpenedAt  sql.NullTime `json:"last_opened_at,omitempty" db:"last_opened_at"`
	LastClickedAt sql.NullTime `json:"last_clicked_at,omitempty" db:"last_clicked_at"`

	CreatedAt time.Time `json:"created_at" db:"created_at"`
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`
}

// HasTag reports whether the contact already holds the given tag ID.
func (c *Contact) HasTag(tagID string) bool {
	for _, id := range c.TagIDs {
		if id == tagID {
			return true
		}
	}
	return false
}

// PurchaseRecord is one entry in the contact's purchase history.
type PurchaseRecord struct {
	ProductID string    `json:"product_id,omitempty"`
	CourseID  string    `json:"course_id,omitempty"`
	Amount    float64   `json:"amount"`
	Timestamp time.Time `json:"timestamp"`
}

// CustomFields is the contact's merge-only field bag, persisted as JSONB.
// Updates must merge additively: counters accumulate, lists append,
// existing keys are never dropped.
type CustomFields struct {
	PurchasePoints     int              `json:"purchase_points,omitempty"`
	TotalPoints        int              `json:"total_points,omitempty"`
	StudentLevel       string           `json:"student_level,omitempty"`
	EnrolledCourses    []string         `json:"enrolled_courses,omitempty"`
	FollowGateProducts []string         `json:"follow_gate_products,omitempty"`
	Purchases          []PurchaseRecord `json:"purchases,omitempty"`
	LastPurchaseAt     *time.Time       `json:"last_purchase_at,omitempty"`
	LastActivity       *time.Time       `json:"last_activity,omitempty"`
}

// Activity types for the append-only contact activity log.
const (
	ActivitySubscribed         = "subscribed"
	ActivityEmailOpened        = "email_opened"
	ActivityEmailClicked       = "email_clicked"
	ActivityEmailBounced       = "email_bounced"
	ActivityCustomFieldUpdated = "custom_field_updated"
	ActivityCampaignEnrolled   = "campaign_enrolled"
)

// Activity is one immutable audit-log entry for a contact.
type Activity struct {
	ID           string            `json:"id" db:"id"`
	ContactID    string            `json:"contact_id" db:"contact_id"`
	StoreID      string            `json:"store_id" db:"store_id"`
	ActivityType string            `json:"activity_type" db:"activity_type"`
	Metadata     map[string]string `json:"metadata,omitempty" db:"metadata"`
	OccurredAt   time.Time         `json:"occurred_at" db:"occurred_at"`
}

// ContactStats summarizes a store's contact list.
type ContactStats struct {
	TotalContacts      int64   `json:"total_contacts"`
	Subscribed         int64   `json:"subscribed"`
	Bounced            int64   `json:"bounced"`
	AvgEngagementScore float64 `json:"avg_engagement_score"`
}
