// internal/service/contactsync/service.go
package contactsync

import (
	"context"
	"strings"

	"beatreach-service/internal/domain/catalog"
	"beatreach-service/internal/domain/contact"

	"go.uber.org/zap"
)

// ContactStore is the contact persistence surface used by the sync engine.
type ContactStore interface {
	FindByID(ctx context.Context, id string) (*contact.Contact, error)
	FindByEmail(ctx context.Context, storeID, email string) (*contact.Contact, error)
	Create(ctx context.Context, c *contact.Contact) error
	Update(ctx context.Context, c *contact.Contact) error
	ListPage(ctx context.Context, storeID, afterID string, limit int) ([]contact.Contact, error)
}

// ActivityStore appends to the contact audit log.
type ActivityStore interface {
	Append(ctx context.Context, a *contact.Activity) error
}

// CatalogStore reads the storefront catalog when deriving tags.
type CatalogStore interface {
	FindProduct(ctx context.Context, id string) (*catalog.Product, error)
	FindCourse(ctx context.Context, id string) (*catalog.Course, error)
	ListCourseIDs(ctx context.Context, storeID string) ([]string, error)
	FindCustomerByEmail(ctx context.Context, storeID, email string) (*catalog.Customer, error)
	ListPurchasesByCustomer(ctx context.Context, customerID string) ([]catalog.Purchase, error)
	ListEnrollmentsPage(ctx context.Context, courseIDs []string, afterID string, limit int) ([]catalog.Enrollment, error)
	FindUser(ctx context.Context, id string) (*catalog.User, error)
}

// Tagger is the single integration point for attaching tags; all handlers
// funnel through it so contact-count bookkeeping stays in one place.
type Tagger interface {
	AddTagsToContact(ctx context.Context, contactID, storeID string, tagNames []string) error
}

type Service struct {
	contacts ContactStore
	activity ActivityStore
	catalog  CatalogStore
	tagger   Tagger
	logger   *zap.Logger
}

func NewService(contacts ContactStore, activity ActivityStore, catalog CatalogStore, tagger Tagger, logger *zap.Logger) *Service {
	return &Service{
		contacts: contacts,
		activity: activity,
		catalog:  catalog,
		tagger:   tagger,
		logger:   logger,
	}
}

// productText synthesizes the classification blob for a product. The join
// order is fixed so classification stays deterministic.
func productText(p *catalog.Product) string {
	parts := []string{p.Title, p.Description.String}
	parts = append(parts, p.Genre...)
	parts = append(parts, p.ProductCategory.String)
	return strings.Join(parts, " ")
}

// courseText synthesizes the classification blob for a course.
func courseText(c *catalog.Course) string {
	return strings.Join([]string{c.Title, c.Description.String, c.Category.String}, " ")
}

// categoryTag turns a course category into its "category:<x>" tag name.
func categoryTag(category string) string {
	return "category:" + strings.ReplaceAll(strings.ToLower(category), " ", "-")
}

// courseSlug prefers the course's own slug over one derived from the title.
func courseSlug(c *catalog.Course, derive func(string) string) string {
	if c.Slug.Valid && c.Slug.String != "" {
		return c.Slug.String
	}
	return derive(c.Title)
}

func clampScore(score int) int {
	if score > 100 {
		return 100
	}
	if score < 0 {
		return 0
	}
	return score
}

// engagementTier returns the threshold tag for a post-update score, or "".
// Only one tier applies per call; reapplication is harmless because tag
// application is idempotent.
func engagementTier(score int) string {
	if score >= 80 {
		return "engagement:hot"
	}
	if score >= 50 {
		return "engagement:warm"
	}
	return ""
}

func dedupeTags(names []string) []string {
	seen := make(map[string]struct{}, len(names))
	unique := []string{}
	for _, n := range names {
		if _, ok := seen[n]; ok {
			continue
		}
		seen[n] = struct{}{}
		unique = append(unique, n)
	}
	return unique
}
