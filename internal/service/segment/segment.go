// internal/service/segment/segment.go
package segment

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"beatreach-service/internal/domain/contact"
	"beatreach-service/internal/domain/tag"
	xerrors "beatreach-service/internal/pkg/errors"

	"github.com/oklog/ulid/v2"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// Segmentation evaluates at most this many subscribed contacts per query.
const maxSegmentContacts = 5000

const defaultSegmentLimit = 1000

// TagStore is the tag surface segmentation needs.
type TagStore interface {
	FindByName(ctx context.Context, storeID, name string) (*tag.Tag, error)
	CreateIfAbsent(ctx context.Context, t *tag.Tag) (bool, error)
	ListByStore(ctx context.Context, storeID string) ([]tag.Tag, error)
}

// ContactStore is the contact surface segmentation needs.
type ContactStore interface {
	ListSubscribed(ctx context.Context, storeID string, limit int) ([]contact.Contact, error)
}

type Service struct {
	tags     TagStore
	contacts ContactStore
	cache    *redis.Client
	cacheTTL time.Duration
	logger   *zap.Logger
}

func NewService(tags TagStore, contacts ContactStore, cache *redis.Client, cacheTTL time.Duration, logger *zap.Logger) *Service {
	return &Service{
		tags:     tags,
		contacts: contacts,
		cache:    cache,
		cacheTTL: cacheTTL,
		logger:   logger,
	}
}

// template is one prebuilt segment definition. The backing tag carries the
// template's color and description when it has to be created.
type template struct {
	Name        string
	TagName     string
	Color       string
	Description string
}

var prebuiltTemplates = []template{
	{"Hot Leads", "engagement:hot", "#EF4444", "Highly engaged contacts, ready for offers"},
	{"Warm Leads", "engagement:warm", "#F59E0B", "Engaged contacts worth nurturing"},
	{"Customers", "customer", "#10B981", "Contacts who purchased at least once"},
	{"Beginners", "skill:beginner", "#3B82F6", "Producers just getting started"},
	{"Intermediate", "skill:intermediate", "#6366F1", "Producers with some experience"},
	{"Advanced", "skill:advanced", "#8B5CF6", "Experienced producers"},
	{"Techno Producers", "genre:techno", "#EC4899", "Contacts interested in techno"},
	{"Hip-Hop Producers", "genre:hip-hop", "#14B8A6", "Contacts interested in hip-hop"},
	{"House Producers", "genre:house", "#F97316", "Contacts interested in house"},
	{"EDM Producers", "genre:edm", "#A855F7", "Contacts interested in EDM"},
	{"Sample Collectors", "interest:samples", "#06B6D4", "Contacts who buy sample packs"},
	{"Preset Hunters", "interest:presets", "#84CC16", "Contacts who buy preset packs"},
	{"Course Students", "interest:learning", "#0EA5E9", "Contacts enrolled in courses"},
	{"Mixing Enthusiasts", "interest:mixing", "#D946EF", "Contacts interested in mixing"},
}

// displayNames maps a tag name to its prebuilt segment display name, when
// one exists.
var displayNames = func() map[string]string {
	m := make(map[string]string, len(prebuiltTemplates))
	for _, t := range prebuiltTemplates {
		m[t.TagName] = t.Name
	}
	return m
}()

// GetContactsByTags selects subscribed contacts by tag membership.
// Exclusions are applied first; an empty TagIDs list then matches everyone
// remaining. Mode "all" requires every tag, "any" requires at least one.
func (s *Service) GetContactsByTags(ctx context.Context, q tag.SegmentQuery) ([]tag.SegmentMember, error) {
	mode := q.Mode
	if mode == "" {
		mode = tag.MatchAll
	}
	if mode != tag.MatchAll && mode != tag.MatchAny {
		return nil, fmt.Errorf("%w: match mode %q", xerrors.ErrInvalidInput, q.Mode)
	}

	limit := q.Limit
	if limit <= 0 {
		limit = defaultSegmentLimit
	}

	contacts, err := s.contacts.ListSubscribed(ctx, q.StoreID, maxSegmentContacts)
	if err != nil {
		return nil, fmt.Errorf("failed to list subscribed contacts: %w", err)
	}

	members := []tag.SegmentMember{}
	for i := range contacts {
		c := &contacts[i]

		if holdsAny(c, q.ExcludeTagIDs) {
			continue
		}
		if !matches(c, q.TagIDs, mode) {
			continue
		}

		members = append(members, tag.SegmentMember{
			ContactID:       c.ID,
			Email:           c.Email,
			Name:            displayName(c),
			EngagementScore: c.EngagementScore,
		})
		if len(members) >= limit {
			break
		}
	}

	return members, nil
}

func matches(c *contact.Contact, tagIDs []string, mode string) bool {
	if len(tagIDs) == 0 {
		return true
	}
	if mode == tag.MatchAny {
		return holdsAny(c, tagIDs)
	}
	for _, id := range tagIDs {
		if !c.HasTag(id) {
			return false
		}
	}
	return true
}

func holdsAny(c *contact.Contact, tagIDs []string) bool {
	for _, id := range tagIDs {
		if c.HasTag(id) {
			return true
		}
	}
	return false
}

func displayName(c *contact.Contact) string {
	return strings.TrimSpace(strings.TrimSpace(c.FirstName.String) + " " + strings.TrimSpace(c.LastName.String))
}

// GetSegmentsByTag lists every tag of the store as a segment summary,
// with prebuilt display names where they apply. Results are served from
// the redis cache when fresh.
func (s *Service) GetSegmentsByTag(ctx context.Context, storeID string) ([]tag.SegmentSummary, error) {
	key := cacheKey(storeID)

	if s.cache != nil {
		if raw, err := s.cache.Get(ctx, key).Bytes(); err == nil {
			var cached []tag.SegmentSummary
			if err := json.Unmarshal(raw, &cached); err == nil {
				return cached, nil
			}
		}
	}

	tags, err := s.tags.ListByStore(ctx, storeID)
	if err != nil {
		return nil, fmt.Errorf("failed to list tags: %w", err)
	}

	summaries := make([]tag.SegmentSummary, 0, len(tags))
	for _, t := range tags {
		name := displayNames[t.Name]
		if name == "" {
			name = t.Name
		}
		summaries = append(summaries, tag.SegmentSummary{
			TagID:        t.ID,
			TagName:      t.Name,
			DisplayName:  name,
			Description:  t.Description,
			Color:        t.Color,
			ContactCount: t.ContactCount,
		})
	}

	if s.cache != nil {
		if raw, err := json.Marshal(summaries); err == nil {
			if err := s.cache.Set(ctx, key, raw, s.cacheTTL).Err(); err != nil {
				s.logger.Warn("failed to cache segment listing",
					zap.String("store_id", storeID),
					zap.Error(err),
				)
			}
		}
	}

	return summaries, nil
}

// CreatePrebuiltSegments seeds the store with the standard segment tags.
// Idempotent: tags that already exist are skipped and reported as such.
func (s *Service) CreatePrebuiltSegments(ctx context.Context, storeID string) (*tag.PrebuiltResult, error) {
	result := &tag.PrebuiltResult{Segments: []tag.NamedSegment{}}
	now := time.Now()

	for _, tpl := range prebuiltTemplates {
		existing, err := s.tags.FindByName(ctx, storeID, tpl.TagName)
		if err == nil {
			result.Skipped++
			result.Segments = append(result.Segments, tag.NamedSegment{Name: tpl.Name, TagID: existing.ID})
			continue
		}
		if !xerrors.Is(err, xerrors.ErrNotFound) {
			return nil, fmt.Errorf("failed to look up tag %q: %w", tpl.TagName, err)
		}

		t := &tag.Tag{
			ID:          ulid.Make().String(),
			StoreID:     storeID,
			Name:        tpl.TagName,
			Color:       tpl.Color,
			Description: tpl.Description,
			CreatedAt:   now,
			UpdatedAt:   now,
		}
		created, err := s.tags.CreateIfAbsent(ctx, t)
		if err != nil {
			return nil, fmt.Errorf("failed to create tag %q: %w", tpl.TagName, err)
		}
		if !created {
			winner, err := s.tags.FindByName(ctx, storeID, tpl.TagName)
			if err != nil {
				return nil, fmt.Errorf("failed to re-read tag %q after conflict: %w", tpl.TagName, err)
			}
			result.Skipped++
			result.Segments = append(result.Segments, tag.NamedSegment{Name: tpl.Name, TagID: winner.ID})
			continue
		}

		result.Created++
		result.Segments = append(result.Segments, tag.NamedSegment{Name: tpl.Name, TagID: t.ID})
	}

	s.InvalidateSegments(ctx, storeID)

	s.logger.Info("prebuilt segments seeded",
		zap.String("store_id", storeID),
		zap.Int("created", result.Created),
		zap.Int("skipped", result.Skipped),
	)

	return result, nil
}

// InvalidateSegments drops the cached segment listing for a store. Called
// whenever a new tag comes into existence.
func (s *Service) InvalidateSegments(ctx context.Context, storeID string) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Del(ctx, cacheKey(storeID)).Err(); err != nil {
		s.logger.Warn("failed to invalidate segment cache",
			zap.String("store_id", storeID),
			zap.Error(err),
		)
	}
}

func cacheKey(storeID string) string {
	return "segments:" + storeID
}
