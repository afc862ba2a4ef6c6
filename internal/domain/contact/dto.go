// internal/domain/contact/dto.go
package contact

// FollowGateEvent is posted when a visitor trades their email for a free
// download behind a follow gate.
type FollowGateEvent struct {
	StoreID   string `json:"store_id" binding:"required"`
	Email     string `json:"email" binding:"required,email"`
	Name      string `json:"name"`
	ProductID string `json:"product_id" binding:"required"`
}

// PurchaseEvent is relayed from the payment webhook handler after a
// completed checkout. Exactly one of ProductID / CourseID is expected.
type PurchaseEvent struct {
	StoreID   string  `json:"store_id" binding:"required"`
	Email     string  `json:"email" binding:"required,email"`
	UserID    string  `json:"user_id"`
	ProductID string  `json:"product_id"`
	CourseID  string  `json:"course_id"`
	Amount    float64 `json:"amount"`
}

// EnrollmentEvent is posted when a user enrolls in a course.
type EnrollmentEvent struct {
	StoreID  string `json:"store_id" binding:"required"`
	Email    string `json:"email" binding:"required,email"`
	UserID   string `json:"user_id" binding:"required"`
	CourseID string `json:"course_id" binding:"required"`
}

// Engagement event types accepted by the email-provider webhook receiver.
const (
	EngagementOpened  = "opened"
	EngagementClicked = "clicked"
	EngagementBounced = "bounced"
)

// EngagementEvent is relayed from the email provider's webhook.
type EngagementEvent struct {
	StoreID      string `json:"store_id" binding:"required"`
	Email        string `json:"email" binding:"required,email"`
	EventType    string `json:"event_type" binding:"required,oneof=opened clicked bounced"`
	LinkURL      string `json:"link_url"`
	EmailSubject string `json:"email_subject"`
}

// ManualTagRequest applies an explicit list of tag names to a contact.
type ManualTagRequest struct {
	StoreID string   `json:"store_id" binding:"required"`
	Email   string   `json:"email" binding:"required,email"`
	Tags    []string `json:"tags" binding:"required,min=1"`
}

// SyncResult is the common success payload of the event handlers.
type SyncResult struct {
	ContactID string   `json:"contact_id"`
	Created   bool     `json:"created"`
	TagsAdded []string `json:"tags_added"`
}

// EnrollmentSyncResult extends SyncResult with whether the enrollment
// changed the contact's recorded student level.
type EnrollmentSyncResult struct {
	SyncResult
	SkillLevelUpdated bool `json:"skill_level_updated"`
}

// ListFilters narrows a contact listing.
type ListFilters struct {
	Status   string `form:"status"`
	Search   string `form:"search"`
	Page     int    `form:"page"`
	PageSize int    `form:"page_size"`
}

// ListResponse is a paginated contact listing.
type ListResponse struct {
	Contacts   []Contact `json:"contacts"`
	Total      int64     `json:"total"`
	Page       int       `json:"page"`
	PageSize   int       `json:"page_size"`
	TotalPages int       `json:"total_pages"`
}
