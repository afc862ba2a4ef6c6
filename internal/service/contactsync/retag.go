// internal/service/contactsync/retag.go
package contactsync

import (
	"context"
	"fmt"

	"beatreach-service/internal/domain/catalog"
	"beatreach-service/internal/domain/contact"
	xerrors "beatreach-service/internal/pkg/errors"
	"beatreach-service/internal/service/tagging"

	"go.uber.org/zap"
)

const (
	defaultRetagBatchSize      = 25
	defaultEnrollmentBatchSize = 50
)

// BatchResult is the outcome of one page of a resumable batch job. The
// caller feeds NextCursor back in to continue; Done signals the last page.
type BatchResult struct {
	Processed  int    `json:"processed"`
	TagsAdded  int    `json:"tags_added"`
	Errors     int    `json:"errors"`
	NextCursor string `json:"next_cursor,omitempty"`
	Done       bool   `json:"done"`
}

// RetagAllContacts re-derives and applies tags for one page of a store's
// contacts, rebuilding each contact's tag set from purchase history,
// enrollments, follow-gate captures, acquisition source and engagement
// score. Tag application is idempotent, so re-running a page is safe.
func (s *Service) RetagAllContacts(ctx context.Context, storeID, cursor string, batchSize int) (*BatchResult, error) {
	if batchSize <= 0 {
		batchSize = defaultRetagBatchSize
	}

	page, err := s.contacts.ListPage(ctx, storeID, cursor, batchSize)
	if err != nil {
		return nil, fmt.Errorf("failed to list contacts page: %w", err)
	}

	result := &BatchResult{}
	for i := range page {
		c := &page[i]
		tags, err := s.deriveContactTags(ctx, c)
		if err != nil {
			result.Errors++
			s.logger.Warn("retag failed for contact",
				zap.String("contact_id", c.ID),
				zap.Error(err),
			)
			continue
		}
		if err := s.tagger.AddTagsToContact(ctx, c.ID, storeID, tags); err != nil {
			result.Errors++
			s.logger.Warn("retag failed for contact",
				zap.String("contact_id", c.ID),
				zap.Error(err),
			)
			continue
		}
		result.Processed++
		result.TagsAdded += len(tags)
	}

	if len(page) == batchSize {
		result.NextCursor = page[len(page)-1].ID
	} else {
		result.Done = true
	}

	s.logger.Info("retag page complete",
		zap.String("store_id", storeID),
		zap.Int("processed", result.Processed),
		zap.Int("errors", result.Errors),
		zap.Bool("done", result.Done),
	)

	return result, nil
}

// deriveContactTags rebuilds the full tag-name set for a contact from its
// commerce footprint. Dangling catalog references are skipped silently so a
// deleted product never blocks the rest of the contact's tags.
func (s *Service) deriveContactTags(ctx context.Context, c *contact.Contact) ([]string, error) {
	tags := []string{}

	customer, err := s.catalog.FindCustomerByEmail(ctx, c.StoreID, c.Email)
	if err != nil && !xerrors.Is(err, xerrors.ErrNotFound) {
		return nil, fmt.Errorf("failed to look up customer: %w", err)
	}
	if err == nil {
		tags = append(tags, "customer")
		purchases, err := s.catalog.ListPurchasesByCustomer(ctx, customer.ID)
		if err != nil {
			return nil, fmt.Errorf("failed to list purchases: %w", err)
		}
		for _, p := range purchases {
			if p.ProductID.Valid {
				tags = append(tags, s.productTags(ctx, p.ProductID.String)...)
			}
			if p.CourseID.Valid {
				tags = append(tags, s.enrolledCourseTags(ctx, p.CourseID.String)...)
			}
		}
	}

	for _, courseID := range c.CustomFields.EnrolledCourses {
		tags = append(tags, s.enrolledCourseTags(ctx, courseID)...)
	}

	for _, productID := range c.CustomFields.FollowGateProducts {
		tags = append(tags, s.productTags(ctx, productID)...)
	}
	if len(c.CustomFields.FollowGateProducts) > 0 {
		tags = append(tags, "source:follow-gate")
	}

	switch c.Source {
	case contact.SourcePurchase, contact.SourceCustomerSync:
		tags = append(tags, "customer")
	case contact.SourceCourseEnrollment, contact.SourceStudentSync:
		tags = append(tags, "student", "interest:learning")
	case contact.SourceFollowGate:
		tags = append(tags, "lead")
	}

	if c.EngagementScore >= 80 {
		tags = append(tags, "engagement:hot")
	} else if c.EngagementScore >= 50 {
		tags = append(tags, "engagement:warm")
	} else if c.EngagementScore < 20 && c.EmailsSent > 5 {
		tags = append(tags, "engagement:cold")
	}

	if c.SourceProductID.Valid {
		product, err := s.catalog.FindProduct(ctx, c.SourceProductID.String)
		if err == nil {
			if t, ok := tagging.ProductTypeTag(product.ProductType.String); ok {
				tags = append(tags, t)
			}
			tags = append(tags, tagging.InferGenresFromText(productText(product))...)
		}
	}
	if c.SourceCourseID.Valid {
		course, err := s.catalog.FindCourse(ctx, c.SourceCourseID.String)
		if err == nil {
			tags = append(tags, "interest:learning")
			if course.SkillLevel.Valid && course.SkillLevel.String != "" {
				tags = append(tags, "skill:"+course.SkillLevel.String)
			}
			if course.Category.Valid && course.Category.String != "" {
				tags = append(tags, categoryTag(course.Category.String))
			}
		}
	}

	return dedupeTags(tags), nil
}

// productTags derives the tag names for one purchased or gated product.
// Returns nil when the product no longer exists.
func (s *Service) productTags(ctx context.Context, productID string) []string {
	product, err := s.catalog.FindProduct(ctx, productID)
	if err != nil {
		return nil
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
	return tags
}

// enrolledCourseTags derives the tag names for one enrolled or purchased
// course. Returns nil when the course no longer exists.
func (s *Service) enrolledCourseTags(ctx context.Context, courseID string) []string {
	course, err := s.catalog.FindCourse(ctx, courseID)
	if err != nil {
		return nil
	}

	tags := []string{"interest:learning", "student", "course:" + courseSlug(course, tagging.GenerateTagSlug)}
	tags = append(tags, tagging.InferGenresFromText(courseText(course))...)

	if course.SkillLevel.String != "" {
		tags = append(tags, "skill:"+course.SkillLevel.String)
	}
	if course.Category.Valid && course.Category.String != "" {
		tags = append(tags, categoryTag(course.Category.String))
	}
	return tags
}

// TagEnrolledUsersWithCourseTags walks one page of a store's course
// enrollments and applies course tags to the matching contacts, grouped by
// user. Users without a platform email or without an existing contact are
// counted as errors; this job never creates contacts.
func (s *Service) TagEnrolledUsersWithCourseTags(ctx context.Context, storeID, cursor string, batchSize int) (*BatchResult, error) {
	if batchSize <= 0 {
		batchSize = defaultEnrollmentBatchSize
	}

	courseIDs, err := s.catalog.ListCourseIDs(ctx, storeID)
	if err != nil {
		return nil, fmt.Errorf("failed to list courses: %w", err)
	}
	if len(courseIDs) == 0 {
		return &BatchResult{Done: true}, nil
	}

	page, err := s.catalog.ListEnrollmentsPage(ctx, courseIDs, cursor, batchSize)
	if err != nil {
		return nil, fmt.Errorf("failed to list enrollments page: %w", err)
	}

	byUser := map[string][]catalog.Enrollment{}
	for _, e := range page {
		byUser[e.UserID] = append(byUser[e.UserID], e)
	}

	result := &BatchResult{}
	for userID, enrollments := range byUser {
		user, err := s.catalog.FindUser(ctx, userID)
		if err != nil || !user.Email.Valid || user.Email.String == "" {
			result.Errors++
			continue
		}

		c, err := s.contacts.FindByEmail(ctx, storeID, user.Email.String)
		if err != nil {
			result.Errors++
			continue
		}

		tags := []string{"student", "interest:learning"}
		for _, e := range enrollments {
			tags = append(tags, s.enrolledCourseTags(ctx, e.CourseID)...)
		}
		tags = dedupeTags(tags)

		if err := s.tagger.AddTagsToContact(ctx, c.ID, storeID, tags); err != nil {
			result.Errors++
			continue
		}
		result.Processed++
		result.TagsAdded += len(tags)
	}

	if len(page) == batchSize {
		result.NextCursor = page[len(page)-1].ID
	} else {
		result.Done = true
	}

	s.logger.Info("enrollment tagging page complete",
		zap.String("store_id", storeID),
		zap.Int("processed", result.Processed),
		zap.Int("errors", result.Errors),
		zap.Bool("done", result.Done),
	)

	return result, nil
}
