// internal/service/segment/segment_test.go
package segment

import (
	"context"
	"database/sql"
	"fmt"
	"testing"

	"beatreach-service/internal/domain/contact"
	"beatreach-service/internal/domain/tag"
	xerrors "beatreach-service/internal/pkg/errors"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type fakeTagStore struct {
	byKey map[string]*tag.Tag
}

func newFakeTagStore() *fakeTagStore {
	return &fakeTagStore{byKey: map[string]*tag.Tag{}}
}

func (f *fakeTagStore) FindByName(_ context.Context, storeID, name string) (*tag.Tag, error) {
	if t, ok := f.byKey[storeID+"/"+name]; ok {
		return t, nil
	}
	return nil, xerrors.ErrNotFound
}

func (f *fakeTagStore) CreateIfAbsent(_ context.Context, t *tag.Tag) (bool, error) {
	key := t.StoreID + "/" + t.Name
	if _, ok := f.byKey[key]; ok {
		return false, nil
	}
	f.byKey[key] = t
	return true, nil
}

func (f *fakeTagStore) ListByStore(_ context.Context, storeID string) ([]tag.Tag, error) {
	tags := []tag.Tag{}
	for _, t := range f.byKey {
		if t.StoreID == storeID {
			tags = append(tags, *t)
		}
	}
	return tags, nil
}

type fakeContactStore struct {
	contacts []contact.Contact
}

func (f *fakeContactStore) ListSubscribed(_ context.Context, storeID string, limit int) ([]contact.Contact, error) {
	out := []contact.Contact{}
	for _, c := range f.contacts {
		if c.StoreID == storeID && c.Status == contact.StatusSubscribed {
			out = append(out, c)
		}
		if len(out) == limit {
			break
		}
	}
	return out, nil
}

func newTestService() (*Service, *fakeTagStore, *fakeContactStore) {
	tags := newFakeTagStore()
	contacts := &fakeContactStore{}
	return NewService(tags, contacts, nil, 0, zap.NewNop()), tags, contacts
}

func seedContacts(contacts *fakeContactStore) {
	contacts.contacts = []contact.Contact{
		{ID: "c1", StoreID: "store1", Email: "c1@x.com", Status: contact.StatusSubscribed, TagIDs: []string{"tA", "tB"}},
		{ID: "c2", StoreID: "store1", Email: "c2@x.com", Status: contact.StatusSubscribed, TagIDs: []string{"tA"}},
		{ID: "c3", StoreID: "store1", Email: "c3@x.com", Status: contact.StatusSubscribed, TagIDs: []string{"tB"}},
		{ID: "c4", StoreID: "store1", Email: "c4@x.com", Status: contact.StatusBounced, TagIDs: []string{"tA", "tB"}},
	}
}

func memberIDs(members []tag.SegmentMember) []string {
	ids := []string{}
	for _, m := range members {
		ids = append(ids, m.ContactID)
	}
	return ids
}

func TestGetContactsByTagsAllMode(t *testing.T) {
	svc, _, contacts := newTestService()
	seedContacts(contacts)

	members, err := svc.GetContactsByTags(context.Background(), tag.SegmentQuery{
		StoreID: "store1",
		TagIDs:  []string{"tA", "tB"},
		Mode:    tag.MatchAll,
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"c1"}, memberIDs(members))
}

func TestGetContactsByTagsAnyMode(t *testing.T) {
	svc, _, contacts := newTestService()
	seedContacts(contacts)

	members, err := svc.GetContactsByTags(context.Background(), tag.SegmentQuery{
		StoreID: "store1",
		TagIDs:  []string{"tA", "tB"},
		Mode:    tag.MatchAny,
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"c1", "c2", "c3"}, memberIDs(members))
}

func TestGetContactsByTagsDefaultsToAll(t *testing.T) {
	svc, _, contacts := newTestService()
	seedContacts(contacts)

	members, err := svc.GetContactsByTags(context.Background(), tag.SegmentQuery{
		StoreID: "store1",
		TagIDs:  []string{"tA", "tB"},
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"c1"}, memberIDs(members))
}

func TestGetContactsByTagsExclusionsFirst(t *testing.T) {
	svc, _, contacts := newTestService()
	seedContacts(contacts)

	members, err := svc.GetContactsByTags(context.Background(), tag.SegmentQuery{
		StoreID:       "store1",
		TagIDs:        []string{"tA"},
		Mode:          tag.MatchAny,
		ExcludeTagIDs: []string{"tB"},
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"c2"}, memberIDs(members), "holding an excluded tag removes the contact")
}

func TestGetContactsByTagsEmptyMatchesAllSubscribed(t *testing.T) {
	svc, _, contacts := newTestService()
	seedContacts(contacts)

	members, err := svc.GetContactsByTags(context.Background(), tag.SegmentQuery{StoreID: "store1"})
	require.NoError(t, err)
	assert.Equal(t, []string{"c1", "c2", "c3"}, memberIDs(members), "bounced contacts never appear")
}

func TestGetContactsByTagsLimit(t *testing.T) {
	svc, _, contacts := newTestService()
	seedContacts(contacts)

	members, err := svc.GetContactsByTags(context.Background(), tag.SegmentQuery{
		StoreID: "store1",
		Limit:   2,
	})
	require.NoError(t, err)
	assert.Len(t, members, 2)
}

func TestGetContactsByTagsLimitAboveDefaultHonored(t *testing.T) {
	svc, _, contacts := newTestService()
	for i := 0; i < 1200; i++ {
		contacts.contacts = append(contacts.contacts, contact.Contact{
			ID:      fmt.Sprintf("c%04d", i),
			StoreID: "store1",
			Email:   fmt.Sprintf("c%04d@x.com", i),
			Status:  contact.StatusSubscribed,
		})
	}

	members, err := svc.GetContactsByTags(context.Background(), tag.SegmentQuery{
		StoreID: "store1",
		Limit:   1150,
	})
	require.NoError(t, err)
	assert.Len(t, members, 1150, "explicit limits above the default are honored")

	defaulted, err := svc.GetContactsByTags(context.Background(), tag.SegmentQuery{StoreID: "store1"})
	require.NoError(t, err)
	assert.Len(t, defaulted, 1000, "unset limit falls back to the default")
}

func TestGetContactsByTagsInvalidMode(t *testing.T) {
	svc, _, _ := newTestService()

	_, err := svc.GetContactsByTags(context.Background(), tag.SegmentQuery{
		StoreID: "store1",
		Mode:    "some",
	})
	assert.ErrorIs(t, err, xerrors.ErrInvalidInput)
}

func TestGetContactsByTagsProjection(t *testing.T) {
	svc, _, contacts := newTestService()
	contacts.contacts = []contact.Contact{{
		ID: "c1", StoreID: "store1", Email: "ada@x.com",
		Status:          contact.StatusSubscribed,
		FirstName:       sql.NullString{String: "Ada", Valid: true},
		LastName:        sql.NullString{String: "Lovelace", Valid: true},
		EngagementScore: 72,
	}}

	members, err := svc.GetContactsByTags(context.Background(), tag.SegmentQuery{StoreID: "store1"})
	require.NoError(t, err)
	require.Len(t, members, 1)
	assert.Equal(t, "Ada Lovelace", members[0].Name)
	assert.Equal(t, 72, members[0].EngagementScore)
}

func TestCreatePrebuiltSegments(t *testing.T) {
	svc, tags, _ := newTestService()
	ctx := context.Background()

	result, err := svc.CreatePrebuiltSegments(ctx, "store1")
	require.NoError(t, err)
	assert.Equal(t, len(prebuiltTemplates), result.Created)
	assert.Zero(t, result.Skipped)
	assert.Len(t, result.Segments, len(prebuiltTemplates))

	hot := tags.byKey["store1/engagement:hot"]
	require.NotNil(t, hot)
	assert.Equal(t, "#EF4444", hot.Color)
	assert.Equal(t, "Highly engaged contacts, ready for offers", hot.Description)
}

func TestCreatePrebuiltSegmentsIdempotent(t *testing.T) {
	svc, _, _ := newTestService()
	ctx := context.Background()

	first, err := svc.CreatePrebuiltSegments(ctx, "store1")
	require.NoError(t, err)

	second, err := svc.CreatePrebuiltSegments(ctx, "store1")
	require.NoError(t, err)
	assert.Zero(t, second.Created)
	assert.Equal(t, len(prebuiltTemplates), second.Skipped)

	// Same backing tags both times.
	assert.Equal(t, first.Segments, second.Segments)
}

func TestGetSegmentsByTagDisplayNames(t *testing.T) {
	svc, tags, _ := newTestService()
	ctx := context.Background()

	tags.byKey["store1/engagement:hot"] = &tag.Tag{
		ID: "t1", StoreID: "store1", Name: "engagement:hot", Color: "#EF4444", ContactCount: 3,
	}
	tags.byKey["store1/genre:dubstep"] = &tag.Tag{
		ID: "t2", StoreID: "store1", Name: "genre:dubstep", Color: "#8B5CF6",
	}

	summaries, err := svc.GetSegmentsByTag(ctx, "store1")
	require.NoError(t, err)
	require.Len(t, summaries, 2)

	byTag := map[string]tag.SegmentSummary{}
	for _, s := range summaries {
		byTag[s.TagName] = s
	}

	assert.Equal(t, "Hot Leads", byTag["engagement:hot"].DisplayName)
	assert.Equal(t, 3, byTag["engagement:hot"].ContactCount)
	assert.Equal(t, "genre:dubstep", byTag["genre:dubstep"].DisplayName, "non-prebuilt tags fall back to the tag name")
}
