// internal/domain/tag/dto.go
package tag

// Match modes for tag-based segmentation queries.
const (
	MatchAll = "all"
	MatchAny = "any"
)

// SegmentQuery selects contacts by tag membership. An empty TagIDs list
// matches every subscribed contact (after exclusions).
type SegmentQuery struct {
	StoreID       string   `json:"store_id" binding:"required"`
	TagIDs        []string `json:"tag_ids"`
	Mode          string   `json:"mode"`
	ExcludeTagIDs []string `json:"exclude_tag_ids"`
	Limit         int      `json:"limit"`
}

// SegmentMember is the capped projection returned to campaign consumers;
// full contact records are never exposed through segmentation.
type SegmentMember struct {
	ContactID       string `json:"contact_id"`
	Email           string `json:"email"`
	Name            string `json:"name,omitempty"`
	EngagementScore int    `json:"engagement_score"`
}

// SegmentSummary is one row of the store's segment listing.
type SegmentSummary struct {
	TagID        string `json:"tag_id"`
	TagName      string `json:"tag_name"`
	DisplayName  string `json:"display_name"`
	Description  string `json:"description,omitempty"`
	Color        string `json:"color"`
	ContactCount int    `json:"contact_count"`
}

// PrebuiltResult reports the outcome of seeding the prebuilt segments.
type PrebuiltResult struct {
	Created  int            `json:"created"`
	Skipped  int            `json:"skipped"`
	Segments []NamedSegment `json:"segments"`
}

// NamedSegment pairs a prebuilt segment's display name with its backing tag.
type NamedSegment struct {
	Name  string `json:"name"`
	TagID string `json:"tag_id"`
}
