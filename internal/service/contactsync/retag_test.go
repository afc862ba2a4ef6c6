// internal/service/contactsync/retag_test.go
package contactsync

import (
	"context"
	"testing"

	"beatreach-service/internal/domain/catalog"
	"beatreach-service/internal/domain/contact"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func seedContact(h *harness, id, email, source string, score int) *contact.Contact {
	c := &contact.Contact{
		ID: id, StoreID: "store1", Email: email,
		Status: contact.StatusSubscribed, Source: source,
		EngagementScore: score,
	}
	h.contacts.byID[id] = c
	return c
}

func TestRetagAllContactsPaginates(t *testing.T) {
	h := newHarness()
	ctx := context.Background()

	seedContact(h, "01A", "a@x.com", contact.SourceManual, 0)
	seedContact(h, "01B", "b@x.com", contact.SourceManual, 0)
	seedContact(h, "01C", "c@x.com", contact.SourceManual, 0)

	first, err := h.svc.RetagAllContacts(ctx, "store1", "", 2)
	require.NoError(t, err)
	assert.Equal(t, 2, first.Processed)
	assert.False(t, first.Done)
	assert.Equal(t, "01B", first.NextCursor)

	second, err := h.svc.RetagAllContacts(ctx, "store1", first.NextCursor, 2)
	require.NoError(t, err)
	assert.Equal(t, 1, second.Processed)
	assert.True(t, second.Done)
	assert.Empty(t, second.NextCursor)
}

func TestRetagDerivesSourceAndEngagementTags(t *testing.T) {
	h := newHarness()
	ctx := context.Background()

	seedContact(h, "01A", "lead@x.com", contact.SourceFollowGate, 85)
	cold := seedContact(h, "01B", "cold@x.com", contact.SourcePurchase, 10)
	cold.EmailsSent = 8

	result, err := h.svc.RetagAllContacts(ctx, "store1", "", 10)
	require.NoError(t, err)
	assert.Equal(t, 2, result.Processed)
	assert.True(t, result.Done)

	assert.Equal(t, []string{"engagement:hot", "lead"}, h.tagNames(h.contacts.byID["01A"]))
	assert.Equal(t, []string{"customer", "engagement:cold"}, h.tagNames(h.contacts.byID["01B"]))
}

func TestRetagUsesPurchaseHistory(t *testing.T) {
	h := newHarness()
	ctx := context.Background()

	h.catalog.products["p1"] = &catalog.Product{
		ID: "p1", StoreID: "store1", Title: "House Loops", ProductType: nullStr("sample-pack"),
	}
	h.catalog.customers["store1/buyer@x.com"] = &catalog.Customer{ID: "cust1", StoreID: "store1", Email: "buyer@x.com"}
	h.catalog.purchases["cust1"] = []catalog.Purchase{
		{ID: "pu1", CustomerID: "cust1", ProductID: nullStr("p1"), Amount: 25},
	}

	seedContact(h, "01A", "buyer@x.com", contact.SourceManual, 0)

	result, err := h.svc.RetagAllContacts(ctx, "store1", "", 10)
	require.NoError(t, err)
	assert.Equal(t, 1, result.Processed)

	assert.Equal(t,
		[]string{"customer", "genre:house", "interest:samples"},
		h.tagNames(h.contacts.byID["01A"]),
	)
}

func TestRetagSkipsDanglingReferences(t *testing.T) {
	h := newHarness()
	ctx := context.Background()

	c := seedContact(h, "01A", "a@x.com", contact.SourceManual, 0)
	c.CustomFields.EnrolledCourses = []string{"deleted-course"}
	c.CustomFields.FollowGateProducts = []string{"deleted-product"}

	result, err := h.svc.RetagAllContacts(ctx, "store1", "", 10)
	require.NoError(t, err)
	assert.Equal(t, 1, result.Processed)
	assert.Zero(t, result.Errors, "dangling references are not errors")

	// Only the follow-gate marker survives without catalog rows.
	assert.Equal(t, []string{"source:follow-gate"}, h.tagNames(h.contacts.byID["01A"]))
}

func TestRetagSkillOnlyFromDeclaredCourseLevel(t *testing.T) {
	h := newHarness()
	ctx := context.Background()

	h.catalog.courses["course1"] = &catalog.Course{
		ID: "course1", StoreID: "store1", Title: "Vocal Masterclass",
	}
	c := seedContact(h, "01A", "s@x.com", contact.SourceManual, 0)
	c.CustomFields.EnrolledCourses = []string{"course1"}

	_, err := h.svc.RetagAllContacts(ctx, "store1", "", 10)
	require.NoError(t, err)

	assert.Equal(t,
		[]string{"course:vocal-masterclass", "interest:learning", "student"},
		h.tagNames(h.contacts.byID["01A"]),
		"no skill tag when the course declares no level",
	)
}

func TestRetagIdempotent(t *testing.T) {
	h := newHarness()
	ctx := context.Background()

	seedContact(h, "01A", "a@x.com", contact.SourcePurchase, 0)

	_, err := h.svc.RetagAllContacts(ctx, "store1", "", 10)
	require.NoError(t, err)
	firstTags := h.tagNames(h.contacts.byID["01A"])

	_, err = h.svc.RetagAllContacts(ctx, "store1", "", 10)
	require.NoError(t, err)

	assert.Equal(t, firstTags, h.tagNames(h.contacts.byID["01A"]))
	for _, tg := range h.tags.byID {
		assert.Equal(t, 1, tg.ContactCount, "tag %s double counted", tg.Name)
	}
}

func TestTagEnrolledUsers(t *testing.T) {
	h := newHarness()
	ctx := context.Background()

	h.catalog.courses["course1"] = &catalog.Course{
		ID: "course1", StoreID: "store1", Title: "House Production Basics",
		Slug: nullStr("house-production-basics"), SkillLevel: nullStr("beginner"),
	}
	h.catalog.users["u1"] = &catalog.User{ID: "u1", Email: nullStr("student@x.com")}
	h.catalog.enrollments = []catalog.Enrollment{
		{ID: "e1", CourseID: "course1", UserID: "u1"},
	}

	seedContact(h, "01A", "student@x.com", contact.SourceManual, 0)

	result, err := h.svc.TagEnrolledUsersWithCourseTags(ctx, "store1", "", 10)
	require.NoError(t, err)
	assert.Equal(t, 1, result.Processed)
	assert.Zero(t, result.Errors)
	assert.True(t, result.Done)

	assert.Equal(t,
		[]string{
			"course:house-production-basics",
			"genre:house",
			"interest:learning",
			"skill:beginner",
			"student",
		},
		h.tagNames(h.contacts.byID["01A"]),
	)
}

func TestTagEnrolledUsersCountsMissingContacts(t *testing.T) {
	h := newHarness()
	ctx := context.Background()

	h.catalog.courses["course1"] = &catalog.Course{ID: "course1", StoreID: "store1", Title: "Sound Design"}
	h.catalog.users["u1"] = &catalog.User{ID: "u1"} // no email
	h.catalog.users["u2"] = &catalog.User{ID: "u2", Email: nullStr("ghost@x.com")}
	h.catalog.enrollments = []catalog.Enrollment{
		{ID: "e1", CourseID: "course1", UserID: "u1"},
		{ID: "e2", CourseID: "course1", UserID: "u2"},
	}

	result, err := h.svc.TagEnrolledUsersWithCourseTags(ctx, "store1", "", 10)
	require.NoError(t, err)
	assert.Zero(t, result.Processed)
	assert.Equal(t, 2, result.Errors, "missing email and missing contact both count")
}

func TestTagEnrolledUsersNoCourses(t *testing.T) {
	h := newHarness()

	result, err := h.svc.TagEnrolledUsersWithCourseTags(context.Background(), "store1", "", 10)
	require.NoError(t, err)
	assert.True(t, result.Done)
	assert.Zero(t, result.Processed)
}

func TestTagEnrolledUsersPaginates(t *testing.T) {
	h := newHarness()
	ctx := context.Background()

	h.catalog.courses["course1"] = &catalog.Course{ID: "course1", StoreID: "store1", Title: "Arrangement"}
	for _, id := range []string{"u1", "u2", "u3"} {
		h.catalog.users[id] = &catalog.User{ID: id, Email: nullStr(id + "@x.com")}
		seedContact(h, "contact-"+id, id+"@x.com", contact.SourceManual, 0)
	}
	h.catalog.enrollments = []catalog.Enrollment{
		{ID: "e1", CourseID: "course1", UserID: "u1"},
		{ID: "e2", CourseID: "course1", UserID: "u2"},
		{ID: "e3", CourseID: "course1", UserID: "u3"},
	}

	first, err := h.svc.TagEnrolledUsersWithCourseTags(ctx, "store1", "", 2)
	require.NoError(t, err)
	assert.Equal(t, 2, first.Processed)
	assert.False(t, first.Done)
	assert.Equal(t, "e2", first.NextCursor)

	second, err := h.svc.TagEnrolledUsersWithCourseTags(ctx, "store1", first.NextCursor, 2)
	require.NoError(t, err)
	assert.Equal(t, 1, second.Processed)
	assert.True(t, second.Done)
}
