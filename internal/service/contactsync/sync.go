// internal/service/contactsync/sync.go
package contactsync

import (
	"context"
	"database/sql"
	"fmt"
	"math"
	"strings"
	"time"

	"beatreach-service/internal/domain/contact"
	xerrors "beatreach-service/internal/pkg/errors"
	"beatreach-service/internal/service/tagging"

	"github.com/oklog/ulid/v2"
	"go.uber.org/zap"
)

// SyncFromFollowGate upserts a contact for a follow-gate email capture and
// tags them from the gated product's metadata. The product must exist; a
// capture for an unknown product is rejected.
func (s *Service) SyncFromFollowGate(ctx context.Context, ev contact.FollowGateEvent) (*contact.SyncResult, error) {
	product, err := s.catalog.FindProduct(ctx, ev.ProductID)
	if err != nil {
		if xerrors.Is(err, xerrors.ErrNotFound) {
			return nil, fmt.Errorf("%w: product %s", xerrors.ErrInvalidInput, ev.ProductID)
		}
		return nil, fmt.Errorf("failed to load product: %w", err)
	}

	tags := []string{}
	if t, ok := tagging.ProductTypeTag(product.ProductType.String); ok {
		tags = append(tags, t)
	}
	text := productText(product)
	tags = append(tags, tagging.InferGenresFromText(text)...)
	if level := tagging.InferSkillLevelFromText(text); level != "" {
		tags = append(tags, "skill:"+level)
	}
	tags = append(tags, "source:follow-gate")

	email := strings.ToLower(ev.Email)
	now := time.Now()

	c, created, err := s.upsert(ctx, ev.StoreID, email,
		func() *contact.Contact {
			nc := s.newContact(ev.StoreID, email, contact.SourceFollowGate, now)
			nc.FirstName, nc.LastName = splitName(ev.Name)
			nc.SourceProductID = sql.NullString{String: ev.ProductID, Valid: true}
			nc.CustomFields.FollowGateProducts = []string{ev.ProductID}
			nc.CustomFields.LastActivity = &now
			return nc
		},
		func(c *contact.Contact) {
			if !c.FirstName.Valid && ev.Name != "" {
				c.FirstName, c.LastName = splitName(ev.Name)
			}
			if !c.SourceProductID.Valid {
				c.SourceProductID = sql.NullString{String: ev.ProductID, Valid: true}
				c.Source = contact.SourceFollowGate
			}
			if !containsString(c.CustomFields.FollowGateProducts, ev.ProductID) {
				c.CustomFields.FollowGateProducts = append(c.CustomFields.FollowGateProducts, ev.ProductID)
			}
			c.CustomFields.LastActivity = &now
		},
	)
	if err != nil {
		return nil, err
	}

	if err := s.tagger.AddTagsToContact(ctx, c.ID, ev.StoreID, tags); err != nil {
		return nil, err
	}

	s.logActivity(ctx, c, contact.ActivitySubscribed, map[string]string{
		"tag_name": "Follow gate: " + product.Title,
	})

	s.logger.Info("follow gate contact synced",
		zap.String("store_id", ev.StoreID),
		zap.String("contact_id", c.ID),
		zap.Bool("created", created),
	)

	return &contact.SyncResult{ContactID: c.ID, Created: created, TagsAdded: tags}, nil
}

// SyncFromPurchase upserts a contact for a completed purchase, tags them
// from the purchased item, and accrues loyalty points and engagement score.
// A purchase referencing a missing product or course still records the
// contact; only the item-derived tags are skipped.
func (s *Service) SyncFromPurchase(ctx context.Context, ev contact.PurchaseEvent) (*contact.SyncResult, error) {
	tags := []string{"customer"}
	itemTitle := ""

	if ev.ProductID != "" {
		product, err := s.catalog.FindProduct(ctx, ev.ProductID)
		if err != nil && !xerrors.Is(err, xerrors.ErrNotFound) {
			return nil, fmt.Errorf("failed to load product: %w", err)
		}
		if err == nil {
			itemTitle = product.Title
			tags = append(tags, "product:"+tagging.GenerateTagSlug(product.Title))
			if t, ok := tagging.ProductTypeTag(product.ProductType.String); ok {
				tags = append(tags, t)
			}
			if product.ProductCategory.Valid {
				if t, ok := tagging.ProductTypeTag(product.ProductCategory.String); ok {
					tags = append(tags, t)
				}
			}
			tags = append(tags, tagging.InferGenresFromText(productText(product))...)
		}
	}

	if ev.CourseID != "" {
		course, err := s.catalog.FindCourse(ctx, ev.CourseID)
		if err != nil && !xerrors.Is(err, xerrors.ErrNotFound) {
			return nil, fmt.Errorf("failed to load course: %w", err)
		}
		if err == nil {
			itemTitle = course.Title
			tags = append(tags, "course:"+courseSlug(course, tagging.GenerateTagSlug), "interest:learning")
			if course.SkillLevel.String != "" {
				tags = append(tags, "skill:"+course.SkillLevel.String)
			}
			tags = append(tags, tagging.InferGenresFromText(courseText(course))...)
		}
	}

	tags = dedupeTags(tags)

	points := int(math.Floor(ev.Amount))
	email := strings.ToLower(ev.Email)
	now := time.Now()
	record := contact.PurchaseRecord{
		ProductID: ev.ProductID,
		CourseID:  ev.CourseID,
		Amount:    ev.Amount,
		Timestamp: now,
	}

	c, created, err := s.upsert(ctx, ev.StoreID, email,
		func() *contact.Contact {
			nc := s.newContact(ev.StoreID, email, contact.SourcePurchase, now)
			nc.EngagementScore = 20
			if ev.ProductID != "" {
				nc.SourceProductID = sql.NullString{String: ev.ProductID, Valid: true}
			}
			if ev.CourseID != "" {
				nc.SourceCourseID = sql.NullString{String: ev.CourseID, Valid: true}
			}
			nc.CustomFields.PurchasePoints = points
			nc.CustomFields.TotalPoints = points
			nc.CustomFields.Purchases = []contact.PurchaseRecord{record}
			nc.CustomFields.LastPurchaseAt = &now
			nc.CustomFields.LastActivity = &now
			return nc
		},
		func(c *contact.Contact) {
			c.EngagementScore = clampScore(c.EngagementScore + 20)
			c.CustomFields.PurchasePoints += points
			c.CustomFields.TotalPoints += points
			c.CustomFields.Purchases = append(c.CustomFields.Purchases, record)
			c.CustomFields.LastPurchaseAt = &now
			c.CustomFields.LastActivity = &now
		},
	)
	if err != nil {
		return nil, err
	}

	if err := s.tagger.AddTagsToContact(ctx, c.ID, ev.StoreID, tags); err != nil {
		return nil, err
	}

	s.logActivity(ctx, c, contact.ActivityCustomFieldUpdated, map[string]string{
		"field_name": "purchase",
		"new_value":  itemTitle,
	})

	s.logger.Info("purchase contact synced",
		zap.String("store_id", ev.StoreID),
		zap.String("contact_id", c.ID),
		zap.Bool("created", created),
		zap.Int("points", points),
	)

	return &contact.SyncResult{ContactID: c.ID, Created: created, TagsAdded: tags}, nil
}

// SyncFromEnrollment upserts a contact for a course enrollment and tags
// them from the course's metadata. The course must exist.
func (s *Service) SyncFromEnrollment(ctx context.Context, ev contact.EnrollmentEvent) (*contact.EnrollmentSyncResult, error) {
	course, err := s.catalog.FindCourse(ctx, ev.CourseID)
	if err != nil {
		if xerrors.Is(err, xerrors.ErrNotFound) {
			return nil, fmt.Errorf("%w: course %s", xerrors.ErrInvalidInput, ev.CourseID)
		}
		return nil, fmt.Errorf("failed to load course: %w", err)
	}

	tags := []string{"interest:learning", "student", "course:" + courseSlug(course, tagging.GenerateTagSlug)}
	tags = append(tags, tagging.InferGenresFromText(courseText(course))...)

	// Skill comes only from the course's declared level.
	level := course.SkillLevel.String
	if level != "" {
		tags = append(tags, "skill:"+level)
	}
	if course.Category.Valid && course.Category.String != "" {
		tags = append(tags, categoryTag(course.Category.String))
	}
	tags = dedupeTags(tags)

	email := strings.ToLower(ev.Email)
	now := time.Now()
	skillUpdated := false

	c, created, err := s.upsert(ctx, ev.StoreID, email,
		func() *contact.Contact {
			nc := s.newContact(ev.StoreID, email, contact.SourceCourseEnrollment, now)
			nc.SourceCourseID = sql.NullString{String: ev.CourseID, Valid: true}
			nc.CustomFields.EnrolledCourses = []string{ev.CourseID}
			if level != "" {
				nc.CustomFields.StudentLevel = level
				skillUpdated = true
			}
			nc.CustomFields.LastActivity = &now
			return nc
		},
		func(c *contact.Contact) {
			if !c.SourceCourseID.Valid {
				c.SourceCourseID = sql.NullString{String: ev.CourseID, Valid: true}
			}
			if !containsString(c.CustomFields.EnrolledCourses, ev.CourseID) {
				c.CustomFields.EnrolledCourses = append(c.CustomFields.EnrolledCourses, ev.CourseID)
			}
			if level != "" && c.CustomFields.StudentLevel != level {
				c.CustomFields.StudentLevel = level
				skillUpdated = true
			}
			c.CustomFields.LastActivity = &now
		},
	)
	if err != nil {
		return nil, err
	}

	if err := s.tagger.AddTagsToContact(ctx, c.ID, ev.StoreID, tags); err != nil {
		return nil, err
	}

	s.logActivity(ctx, c, contact.ActivityCampaignEnrolled, map[string]string{
		"tag_name": "Course: " + course.Title,
	})

	s.logger.Info("enrollment contact synced",
		zap.String("store_id", ev.StoreID),
		zap.String("contact_id", c.ID),
		zap.Bool("created", created),
	)

	return &contact.EnrollmentSyncResult{
		SyncResult:        contact.SyncResult{ContactID: c.ID, Created: created, TagsAdded: tags},
		SkillLevelUpdated: skillUpdated,
	}, nil
}

// SyncEngagement applies an email-provider webhook event to an existing
// contact. Events for unknown contacts are dropped; engagement never
// creates a contact.
func (s *Service) SyncEngagement(ctx context.Context, ev contact.EngagementEvent) (*contact.SyncResult, error) {
	email := strings.ToLower(ev.Email)
	c, err := s.contacts.FindByEmail(ctx, ev.StoreID, email)
	if xerrors.Is(err, xerrors.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load contact: %w", err)
	}

	now := time.Now()
	tags := []string{}
	activityType := ""

	switch ev.EventType {
	case contact.EngagementOpened:
		c.EmailsOpened++
		c.LastOpenedAt = sql.NullTime{Time: now, Valid: true}
		c.EngagementScore = clampScore(c.EngagementScore + 2)
		c.CustomFields.TotalPoints += 5
		c.CustomFields.LastActivity = &now
		activityType = contact.ActivityEmailOpened

	case contact.EngagementClicked:
		c.EmailsClicked++
		c.LastClickedAt = sql.NullTime{Time: now, Valid: true}
		c.EngagementScore = clampScore(c.EngagementScore + 5)
		c.CustomFields.TotalPoints += 10
		c.CustomFields.LastActivity = &now
		tags = append(tags, linkInterestTags(ev.LinkURL)...)
		activityType = contact.ActivityEmailClicked

	case contact.EngagementBounced:
		c.Status = contact.StatusBounced
		c.EngagementScore = clampScore(c.EngagementScore - 10)
		activityType = contact.ActivityEmailBounced

	default:
		return nil, fmt.Errorf("%w: event type %q", xerrors.ErrInvalidInput, ev.EventType)
	}

	if tier := engagementTier(c.EngagementScore); tier != "" {
		tags = append(tags, tier)
	}

	if err := s.contacts.Update(ctx, c); err != nil {
		return nil, fmt.Errorf("failed to update contact: %w", err)
	}

	if len(tags) > 0 {
		if err := s.tagger.AddTagsToContact(ctx, c.ID, ev.StoreID, tags); err != nil {
			return nil, err
		}
	}

	metadata := map[string]string{"email_subject": ev.EmailSubject}
	if ev.LinkURL != "" {
		metadata["link_clicked"] = ev.LinkURL
	}
	s.logActivity(ctx, c, activityType, metadata)

	return &contact.SyncResult{ContactID: c.ID, Created: false, TagsAdded: tags}, nil
}

// ManualTag applies an explicit tag list to an existing contact. Unknown
// contacts are reported as not found rather than created.
func (s *Service) ManualTag(ctx context.Context, req contact.ManualTagRequest) (*contact.SyncResult, error) {
	email := strings.ToLower(req.Email)
	c, err := s.contacts.FindByEmail(ctx, req.StoreID, email)
	if err != nil {
		if xerrors.Is(err, xerrors.ErrNotFound) {
			return nil, xerrors.ErrNotFound
		}
		return nil, fmt.Errorf("failed to load contact: %w", err)
	}

	tags := dedupeTags(req.Tags)
	if err := s.tagger.AddTagsToContact(ctx, c.ID, req.StoreID, tags); err != nil {
		return nil, err
	}

	return &contact.SyncResult{ContactID: c.ID, Created: false, TagsAdded: tags}, nil
}

// upsert finds the contact for (storeID, email) and applies patch, or
// builds and inserts a new one. Losing an insert race falls back to the
// patch path against the winner's row.
func (s *Service) upsert(
	ctx context.Context,
	storeID, email string,
	build func() *contact.Contact,
	patch func(c *contact.Contact),
) (*contact.Contact, bool, error) {
	existing, err := s.contacts.FindByEmail(ctx, storeID, email)
	if err != nil && !xerrors.Is(err, xerrors.ErrNotFound) {
		return nil, false, fmt.Errorf("failed to look up contact: %w", err)
	}

	if err != nil {
		nc := build()
		createErr := s.contacts.Create(ctx, nc)
		if createErr == nil {
			return nc, true, nil
		}
		if !xerrors.Is(createErr, xerrors.ErrConflict) {
			return nil, false, fmt.Errorf("failed to create contact: %w", createErr)
		}
		existing, err = s.contacts.FindByEmail(ctx, storeID, email)
		if err != nil {
			return nil, false, fmt.Errorf("failed to re-read contact after conflict: %w", err)
		}
	}

	patch(existing)
	if err := s.contacts.Update(ctx, existing); err != nil {
		return nil, false, fmt.Errorf("failed to update contact: %w", err)
	}

	return existing, false, nil
}

func (s *Service) newContact(storeID, email, source string, now time.Time) *contact.Contact {
	return &contact.Contact{
		ID:           ulid.Make().String(),
		StoreID:      storeID,
		Email:        email,
		Status:       contact.StatusSubscribed,
		Source:       source,
		TagIDs:       []string{},
		SubscribedAt: now,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
}

// logActivity appends an audit entry; audit failures are logged but never
// fail the sync that produced them.
func (s *Service) logActivity(ctx context.Context, c *contact.Contact, activityType string, metadata map[string]string) {
	a := &contact.Activity{
		ID:           ulid.Make().String(),
		ContactID:    c.ID,
		StoreID:      c.StoreID,
		ActivityType: activityType,
		Metadata:     metadata,
		OccurredAt:   time.Now(),
	}
	if err := s.activity.Append(ctx, a); err != nil {
		s.logger.Warn("failed to record contact activity",
			zap.String("contact_id", c.ID),
			zap.String("activity_type", activityType),
			zap.Error(err),
		)
	}
}

// linkInterestTags infers interest tags from the URL a contact clicked.
func linkInterestTags(linkURL string) []string {
	if linkURL == "" {
		return nil
	}
	lower := strings.ToLower(linkURL)
	tags := []string{}
	if strings.Contains(lower, "mixing") || strings.Contains(lower, "mix") {
		tags = append(tags, "interest:mixing")
	}
	if strings.Contains(lower, "mastering") || strings.Contains(lower, "master") {
		tags = append(tags, "interest:mastering")
	}
	if strings.Contains(lower, "sample") || strings.Contains(lower, "loop") {
		tags = append(tags, "interest:samples")
	}
	if strings.Contains(lower, "preset") {
		tags = append(tags, "interest:presets")
	}
	if strings.Contains(lower, "course") || strings.Contains(lower, "learn") {
		tags = append(tags, "interest:learning")
	}
	return tags
}

func splitName(name string) (sql.NullString, sql.NullString) {
	name = strings.TrimSpace(name)
	if name == "" {
		return sql.NullString{}, sql.NullString{}
	}
	parts := strings.Fields(name)
	first := sql.NullString{String: parts[0], Valid: true}
	if len(parts) == 1 {
		return first, sql.NullString{}
	}
	return first, sql.NullString{String: strings.Join(parts[1:], " "), Valid: true}
}

func containsString(list []string, v string) bool {
	for _, s := range list {
		if s == v {
			return true
		}
	}
	return false
}
