// internal/service/tagging/service_test.go
package tagging

import (
	"context"
	"testing"

	"beatreach-service/internal/domain/contact"
	"beatreach-service/internal/domain/tag"
	xerrors "beatreach-service/internal/pkg/errors"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type fakeTagStore struct {
	byKey map[string]*tag.Tag // storeID + "/" + name
	byID  map[string]*tag.Tag
}

func newFakeTagStore() *fakeTagStore {
	return &fakeTagStore{
		byKey: map[string]*tag.Tag{},
		byID:  map[string]*tag.Tag{},
	}
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
	f.byID[t.ID] = t
	return true, nil
}

func (f *fakeTagStore) IncrementContactCount(_ context.Context, tagID string) error {
	t, ok := f.byID[tagID]
	if !ok {
		return xerrors.ErrNotFound
	}
	t.ContactCount++
	return nil
}

type fakeContactTagStore struct {
	contacts map[string]*contact.Contact
}

func (f *fakeContactTagStore) FindByID(_ context.Context, id string) (*contact.Contact, error) {
	if c, ok := f.contacts[id]; ok {
		return c, nil
	}
	return nil, xerrors.ErrNotFound
}

func (f *fakeContactTagStore) UpdateTags(_ context.Context, contactID string, tagIDs []string) error {
	c, ok := f.contacts[contactID]
	if !ok {
		return xerrors.ErrNotFound
	}
	c.TagIDs = tagIDs
	return nil
}

func newTestService() (*Service, *fakeTagStore, *fakeContactTagStore) {
	tags := newFakeTagStore()
	contacts := &fakeContactTagStore{contacts: map[string]*contact.Contact{}}
	return NewService(tags, contacts, nil, zap.NewNop()), tags, contacts
}

func TestGetOrCreateTagStable(t *testing.T) {
	svc, _, _ := newTestService()
	ctx := context.Background()

	first, err := svc.GetOrCreateTag(ctx, "store1", "genre:techno")
	require.NoError(t, err)
	require.NotEmpty(t, first)

	second, err := svc.GetOrCreateTag(ctx, "store1", "genre:techno")
	require.NoError(t, err)
	assert.Equal(t, first, second)
}

func TestGetOrCreateTagPerStore(t *testing.T) {
	svc, _, _ := newTestService()
	ctx := context.Background()

	a, err := svc.GetOrCreateTag(ctx, "store1", "customer")
	require.NoError(t, err)
	b, err := svc.GetOrCreateTag(ctx, "store2", "customer")
	require.NoError(t, err)

	assert.NotEqual(t, a, b)
}

func TestGetOrCreateTagAppearance(t *testing.T) {
	svc, tags, _ := newTestService()
	ctx := context.Background()

	tests := []struct {
		name      string
		wantColor string
		wantDesc  string
	}{
		{"product:epic-drums-vol-1", "#EC4899", "Purchased: epic drums vol 1"},
		{"course:mixing-masterclass", "#8B5CF6", "Enrolled in: mixing masterclass"},
		{"genre:techno", "#8B5CF6", "Auto-generated tag: genre:techno"},
		{"interest:samples", "#3B82F6", "Auto-generated tag: interest:samples"},
		{"skill:beginner", "#10B981", "Auto-generated tag: skill:beginner"},
		{"customer", "#F59E0B", "Auto-generated tag: customer"},
		{"source:follow-gate", "#6B7280", "Auto-generated tag: source:follow-gate"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.GetOrCreateTag(ctx, "store1", tt.name)
			require.NoError(t, err)

			created := tags.byKey["store1/"+tt.name]
			require.NotNil(t, created)
			assert.Equal(t, tt.wantColor, created.Color)
			assert.Equal(t, tt.wantDesc, created.Description)
		})
	}
}

func TestAddTagsToContactIdempotent(t *testing.T) {
	svc, tags, contacts := newTestService()
	ctx := context.Background()

	contacts.contacts["c1"] = &contact.Contact{ID: "c1", StoreID: "store1", TagIDs: []string{}}

	require.NoError(t, svc.AddTagsToContact(ctx, "c1", "store1", []string{"customer", "genre:techno"}))
	require.Len(t, contacts.contacts["c1"].TagIDs, 2)

	// Second application is a no-op.
	require.NoError(t, svc.AddTagsToContact(ctx, "c1", "store1", []string{"customer", "genre:techno"}))
	assert.Len(t, contacts.contacts["c1"].TagIDs, 2)

	customerTag := tags.byKey["store1/customer"]
	require.NotNil(t, customerTag)
	assert.Equal(t, 1, customerTag.ContactCount, "count must only move on first attachment")
}

func TestAddTagsToContactCountsPerContact(t *testing.T) {
	svc, tags, contacts := newTestService()
	ctx := context.Background()

	contacts.contacts["c1"] = &contact.Contact{ID: "c1", StoreID: "store1"}
	contacts.contacts["c2"] = &contact.Contact{ID: "c2", StoreID: "store1"}

	require.NoError(t, svc.AddTagsToContact(ctx, "c1", "store1", []string{"customer"}))
	require.NoError(t, svc.AddTagsToContact(ctx, "c2", "store1", []string{"customer"}))

	assert.Equal(t, 2, tags.byKey["store1/customer"].ContactCount)
}

func TestAddTagsToContactUnknownContact(t *testing.T) {
	svc, tags, _ := newTestService()

	err := svc.AddTagsToContact(context.Background(), "missing", "store1", []string{"customer"})
	assert.NoError(t, err)
	assert.Empty(t, tags.byKey, "no tags should be created for an unknown contact")
}
