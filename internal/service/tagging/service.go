// internal/service/tagging/service.go
package tagging

import (
	"context"
	"fmt"
	"strings"
	"time"

	"beatreach-service/internal/domain/contact"
	"beatreach-service/internal/domain/tag"
	xerrors "beatreach-service/internal/pkg/errors"

	"github.com/oklog/ulid/v2"
	"go.uber.org/zap"
)

// Namespace colors assigned at tag creation.
const (
	colorPink   = "#EC4899"
	colorPurple = "#8B5CF6"
	colorBlue   = "#3B82F6"
	colorGreen  = "#10B981"
	colorAmber  = "#F59E0B"
	colorGray   = "#6B7280"
)

// TagStore is the persistence surface the tagging engine needs.
type TagStore interface {
	FindByName(ctx context.Context, storeID, name string) (*tag.Tag, error)
	CreateIfAbsent(ctx context.Context, t *tag.Tag) (bool, error)
	IncrementContactCount(ctx context.Context, tagID string) error
}

// ContactTagStore is the contact surface the tagging engine needs.
type ContactTagStore interface {
	FindByID(ctx context.Context, id string) (*contact.Contact, error)
	UpdateTags(ctx context.Context, contactID string, tagIDs []string) error
}

// CacheInvalidator is notified when a new tag comes into existence, so
// cached segment listings can be refreshed.
type CacheInvalidator interface {
	InvalidateSegments(ctx context.Context, storeID string)
}

type Service struct {
	tags        TagStore
	contacts    ContactTagStore
	invalidator CacheInvalidator
	logger      *zap.Logger
}

func NewService(tags TagStore, contacts ContactTagStore, invalidator CacheInvalidator, logger *zap.Logger) *Service {
	return &Service{
		tags:        tags,
		contacts:    contacts,
		invalidator: invalidator,
		logger:      logger,
	}
}

// GetOrCreateTag resolves a tag name to its ID, creating the tag on first
// use. Safe under concurrent calls for the same name: the insert is
// insert-if-absent and the loser of a race re-reads the winner's row.
func (s *Service) GetOrCreateTag(ctx context.Context, storeID, name string) (string, error) {
	existing, err := s.tags.FindByName(ctx, storeID, name)
	if err == nil {
		return existing.ID, nil
	}
	if !xerrors.Is(err, xerrors.ErrNotFound) {
		return "", fmt.Errorf("failed to look up tag %q: %w", name, err)
	}

	now := time.Now()
	color, description := tagAppearance(name)

	t := &tag.Tag{
		ID:           ulid.Make().String(),
		StoreID:      storeID,
		Name:         name,
		Color:        color,
		Description:  description,
		ContactCount: 0,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	created, err := s.tags.CreateIfAbsent(ctx, t)
	if err != nil {
		return "", fmt.Errorf("failed to create tag %q: %w", name, err)
	}
	if !created {
		// Another writer created it first; use their row.
		winner, err := s.tags.FindByName(ctx, storeID, name)
		if err != nil {
			return "", fmt.Errorf("failed to re-read tag %q after conflict: %w", name, err)
		}
		return winner.ID, nil
	}

	if s.invalidator != nil {
		s.invalidator.InvalidateSegments(ctx, storeID)
	}

	s.logger.Info("tag created",
		zap.String("store_id", storeID),
		zap.String("tag", name),
	)

	return t.ID, nil
}

// AddTagsToContact attaches the named tags to a contact. Idempotent: tags
// the contact already holds are skipped, and a tag's contact count is only
// incremented the first time it lands on a contact. Every event handler
// funnels through here; it is the only place count bookkeeping happens.
func (s *Service) AddTagsToContact(ctx context.Context, contactID, storeID string, tagNames []string) error {
	c, err := s.contacts.FindByID(ctx, contactID)
	if xerrors.Is(err, xerrors.ErrNotFound) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("failed to load contact: %w", err)
	}

	newTagIDs := append([]string{}, c.TagIDs...)

	for _, name := range tagNames {
		tagID, err := s.GetOrCreateTag(ctx, storeID, name)
		if err != nil {
			return err
		}

		if containsID(newTagIDs, tagID) {
			continue
		}
		newTagIDs = append(newTagIDs, tagID)

		if err := s.tags.IncrementContactCount(ctx, tagID); err != nil {
			return fmt.Errorf("failed to bump contact count for %q: %w", name, err)
		}
	}

	// Skip the write when nothing changed.
	if len(newTagIDs) == len(c.TagIDs) {
		return nil
	}

	if err := s.contacts.UpdateTags(ctx, contactID, newTagIDs); err != nil {
		return fmt.Errorf("failed to persist contact tags: %w", err)
	}

	return nil
}

func containsID(ids []string, id string) bool {
	for _, existing := range ids {
		if existing == id {
			return true
		}
	}
	return false
}

// tagAppearance picks the creation-time color and description for a tag
// name based on its namespace prefix.
func tagAppearance(name string) (string, string) {
	switch {
	case strings.HasPrefix(name, "product:"):
		productName := strings.ReplaceAll(strings.TrimPrefix(name, "product:"), "-", " ")
		return colorPink, "Purchased: " + productName
	case strings.HasPrefix(name, "course:"):
		courseName := strings.ReplaceAll(strings.TrimPrefix(name, "course:"), "-", " ")
		return colorPurple, "Enrolled in: " + courseName
	case strings.HasPrefix(name, "genre:"):
		return colorPurple, "Auto-generated tag: " + name
	case strings.HasPrefix(name, "interest:"):
		return colorBlue, "Auto-generated tag: " + name
	case strings.HasPrefix(name, "skill:"):
		return colorGreen, "Auto-generated tag: " + name
	case name == "customer":
		return colorAmber, "Auto-generated tag: " + name
	default:
		return colorGray, "Auto-generated tag: " + name
	}
}
