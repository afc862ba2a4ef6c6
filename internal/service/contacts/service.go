// internal/service/contacts/service.go
package contacts

import (
	"context"
	"fmt"
	"strings"

	"beatreach-service/internal/domain/contact"

	"go.uber.org/zap"
)

const defaultActivityLimit = 50

// Store is the contact read/update surface this service needs.
type Store interface {
	FindByID(ctx context.Context, id string) (*contact.Contact, error)
	FindByEmail(ctx context.Context, storeID, email string) (*contact.Contact, error)
	List(ctx context.Context, storeID string, filters *contact.ListFilters) ([]contact.Contact, int64, error)
	RecordEmailSent(ctx context.Context, contactID string) error
	GetStats(ctx context.Context, storeID string) (*contact.ContactStats, error)
}

// ActivityStore reads the contact audit log.
type ActivityStore interface {
	ListByContact(ctx context.Context, contactID string, limit int) ([]contact.Activity, error)
}

// Service exposes the contact read API and send bookkeeping.
type Service struct {
	store    Store
	activity ActivityStore
	logger   *zap.Logger
}

func NewService(store Store, activity ActivityStore, logger *zap.Logger) *Service {
	return &Service{store: store, activity: activity, logger: logger}
}

// List returns a filtered, offset-paginated contact listing.
func (s *Service) List(ctx context.Context, storeID string, filters *contact.ListFilters) (*contact.ListResponse, error) {
	if filters.Page <= 0 {
		filters.Page = 1
	}
	if filters.PageSize <= 0 || filters.PageSize > 100 {
		filters.PageSize = 25
	}

	contacts, total, err := s.store.List(ctx, storeID, filters)
	if err != nil {
		return nil, fmt.Errorf("failed to list contacts: %w", err)
	}

	totalPages := int((total + int64(filters.PageSize) - 1) / int64(filters.PageSize))

	return &contact.ListResponse{
		Contacts:   contacts,
		Total:      total,
		Page:       filters.Page,
		PageSize:   filters.PageSize,
		TotalPages: totalPages,
	}, nil
}

// Get retrieves a single contact by ID.
func (s *Service) Get(ctx context.Context, id string) (*contact.Contact, error) {
	return s.store.FindByID(ctx, id)
}

// GetByEmail retrieves a single contact by store and email.
func (s *Service) GetByEmail(ctx context.Context, storeID, email string) (*contact.Contact, error) {
	return s.store.FindByEmail(ctx, storeID, strings.ToLower(email))
}

// Activity returns the most recent audit-log entries for a contact.
func (s *Service) Activity(ctx context.Context, contactID string, limit int) ([]contact.Activity, error) {
	if limit <= 0 || limit > 200 {
		limit = defaultActivityLimit
	}
	if _, err := s.store.FindByID(ctx, contactID); err != nil {
		return nil, err
	}
	return s.activity.ListByContact(ctx, contactID, limit)
}

// RecordEmailSent bumps the contact's send counter and send timestamp.
// Called by the campaign sender after each delivery.
func (s *Service) RecordEmailSent(ctx context.Context, contactID string) error {
	if _, err := s.store.FindByID(ctx, contactID); err != nil {
		return err
	}
	if err := s.store.RecordEmailSent(ctx, contactID); err != nil {
		return fmt.Errorf("failed to record email sent: %w", err)
	}
	s.logger.Debug("email send recorded", zap.String("contact_id", contactID))
	return nil
}

// Stats summarizes a store's contact list.
func (s *Service) Stats(ctx context.Context, storeID string) (*contact.ContactStats, error) {
	return s.store.GetStats(ctx, storeID)
}
