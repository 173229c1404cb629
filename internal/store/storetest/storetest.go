// Package storetest holds the behavioural contract every store.Repository
// implementation must satisfy.
package storetest

import (
	"context"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vbonduro/lostfound/internal/domain"
	"github.com/vbonduro/lostfound/internal/store"
)

// Factory returns a fresh, empty repository. It should register its own
// cleanup with t.
type Factory func(t *testing.T) store.Repository

var (
	base          = time.Date(2024, 12, 15, 9, 0, 0, 0, time.UTC)
	ignoreItemIDs = cmpopts.IgnoreFields(domain.Item{}, "ID", "CreatedAt")
)

// Run executes the full contract suite against repositories built by newRepo.
func Run(t *testing.T, newRepo Factory) {
	t.Run("Users", func(t *testing.T) { testUsers(t, newRepo(t)) })
	t.Run("Items", func(t *testing.T) { testItems(t, newRepo(t)) })
	t.Run("ItemFilters", func(t *testing.T) { testItemFilters(t, newRepo(t)) })
	t.Run("ItemKindsAreSeparate", func(t *testing.T) { testItemKinds(t, newRepo(t)) })
	t.Run("Proposals", func(t *testing.T) { testProposals(t, newRepo(t)) })
	t.Run("ApplyApproval", func(t *testing.T) { testApplyApproval(t, newRepo(t)) })
	t.Run("ApplyApprovalMissingItem", func(t *testing.T) { testApplyApprovalMissingItem(t, newRepo(t)) })
	t.Run("Notifications", func(t *testing.T) { testNotifications(t, newRepo(t)) })
	t.Run("NotFound", func(t *testing.T) { testNotFound(t, newRepo(t)) })
}

func mustUser(t *testing.T, repo store.Repository, email string, role domain.Role, verified bool) *domain.User {
	t.Helper()
	u, err := repo.CreateUser(context.Background(), &domain.User{
		Name:         email,
		Email:        email,
		UniversityID: "U-" + email,
		PasswordHash: "hash-" + email,
		Role:         role,
		Verified:     verified,
	})
	require.NoError(t, err)
	return u
}

func mustItem(t *testing.T, repo store.Repository, kind domain.Kind, owner, title string, at time.Time) *domain.Item {
	t.Helper()
	item, err := repo.CreateItem(context.Background(), &domain.Item{
		Kind:        kind,
		OwnerID:     owner,
		Title:       title,
		Category:    "Electronics",
		Description: title + " description",
		Location:    "Main Library",
		Date:        base,
		CreatedAt:   at,
	})
	require.NoError(t, err)
	return item
}

func testUsers(t *testing.T, repo store.Repository) {
	ctx := context.Background()

	admin := mustUser(t, repo, "admin@university.test", domain.RoleAdmin, true)
	ali := mustUser(t, repo, "ali@university.test", domain.RoleStudent, false)
	assert.NotEmpty(t, admin.ID)
	assert.False(t, admin.CreatedAt.IsZero())

	got, err := repo.GetUser(ctx, ali.ID)
	require.NoError(t, err)
	if diff := cmp.Diff(ali, got); diff != "" {
		t.Errorf("GetUser mismatch (-want +got):\n%s", diff)
	}
	assert.Equal(t, "hash-ali@university.test", got.PasswordHash)

	byEmail, err := repo.GetUserByEmail(ctx, "admin@university.test")
	require.NoError(t, err)
	assert.Equal(t, admin.ID, byEmail.ID)
	assert.Equal(t, domain.RoleAdmin, byEmail.Role)

	_, err = repo.CreateUser(ctx, &domain.User{Name: "dup", Email: "ali@university.test", UniversityID: "x", PasswordHash: "x"})
	assert.ErrorIs(t, err, domain.ErrConflict)

	all, err := repo.ListUsers(ctx)
	require.NoError(t, err)
	require.Len(t, all, 2)
	assert.Equal(t, admin.ID, all[0].ID)

	pending, err := repo.ListPendingUsers(ctx)
	require.NoError(t, err)
	require.Len(t, pending, 1)
	assert.Equal(t, ali.ID, pending[0].ID)

	require.NoError(t, repo.VerifyUser(ctx, ali.ID))
	pending, err = repo.ListPendingUsers(ctx)
	require.NoError(t, err)
	assert.Empty(t, pending)

	got, err = repo.GetUser(ctx, ali.ID)
	require.NoError(t, err)
	assert.True(t, got.Verified)
}

func testItems(t *testing.T, repo store.Repository) {
	ctx := context.Background()
	ali := mustUser(t, repo, "ali@university.test", domain.RoleStudent, true)
	sara := mustUser(t, repo, "sara@university.test", domain.RoleStudent, true)

	want := domain.Item{
		Kind:        domain.KindLost,
		OwnerID:     ali.ID,
		Title:       "iPhone 13 Pro",
		Category:    "Electronics",
		Description: "Black iPhone with blue case",
		Location:    "Main Library",
		Date:        base,
		ImageKey:    "lost/abc.jpg",
		Status:      domain.ItemPending,
	}
	created, err := repo.CreateItem(ctx, &domain.Item{
		Kind:        want.Kind,
		OwnerID:     want.OwnerID,
		Title:       want.Title,
		Category:    want.Category,
		Description: want.Description,
		Location:    want.Location,
		Date:        want.Date,
		ImageKey:    want.ImageKey,
		CreatedAt:   base,
	})
	require.NoError(t, err)
	assert.NotEmpty(t, created.ID)
	if diff := cmp.Diff(want, *created, ignoreItemIDs); diff != "" {
		t.Errorf("CreateItem mismatch (-want +got):\n%s", diff)
	}

	got, err := repo.GetItem(ctx, domain.KindLost, created.ID)
	require.NoError(t, err)
	if diff := cmp.Diff(created, got); diff != "" {
		t.Errorf("GetItem mismatch (-want +got):\n%s", diff)
	}

	second := mustItem(t, repo, domain.KindLost, sara.ID, "Black Backpack", base.Add(time.Hour))
	third := mustItem(t, repo, domain.KindLost, ali.ID, "Calculus Textbook", base.Add(2*time.Hour))

	owned, err := repo.ListItemsByOwner(ctx, domain.KindLost, ali.ID)
	require.NoError(t, err)
	require.Len(t, owned, 2)
	assert.Equal(t, third.ID, owned[1].ID)

	require.NoError(t, repo.UpdateItemStatus(ctx, domain.KindLost, second.ID, domain.ItemClosed))
	got, err = repo.GetItem(ctx, domain.KindLost, second.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.ItemClosed, got.Status)

	require.NoError(t, repo.DeleteItem(ctx, domain.KindLost, third.ID))
	_, err = repo.GetItem(ctx, domain.KindLost, third.ID)
	assert.ErrorIs(t, err, domain.ErrNotFound)
	assert.ErrorIs(t, repo.DeleteItem(ctx, domain.KindLost, third.ID), domain.ErrNotFound)

	all, err := repo.ListItems(ctx, domain.KindLost, domain.ItemFilter{})
	require.NoError(t, err)
	var titles []string
	for _, i := range all {
		titles = append(titles, i.Title)
	}
	assert.Equal(t, []string{"iPhone 13 Pro", "Black Backpack"}, titles)
}

func testItemFilters(t *testing.T, repo store.Repository) {
	ctx := context.Background()
	owner := mustUser(t, repo, "bilal@university.test", domain.RoleStudent, true)

	for i, in := range []domain.Item{
		{Title: "Black iPhone", Category: "Electronics", Location: "Main Library", Description: "Found near library entrance"},
		{Title: "Denim Jacket", Category: "Clothing", Location: "Cafeteria", Description: "Light blue denim jacket, size M"},
		{Title: "Student ID Card", Category: "Keys & Cards", Location: "Student Center", Description: "University ID with BLUE lanyard"},
	} {
		in.Kind = domain.KindFound
		in.OwnerID = owner.ID
		in.Date = base
		in.CreatedAt = base.Add(time.Duration(i) * time.Minute)
		_, err := repo.CreateItem(ctx, &in)
		require.NoError(t, err)
	}

	titles := func(f domain.ItemFilter) []string {
		t.Helper()
		items, err := repo.ListItems(ctx, domain.KindFound, f)
		require.NoError(t, err)
		out := []string{}
		for _, i := range items {
			out = append(out, i.Title)
		}
		return out
	}

	assert.Len(t, titles(domain.ItemFilter{}), 3)
	assert.Len(t, titles(domain.ItemFilter{Category: store.AllCategories, Location: store.AllLocations}), 3)
	assert.Equal(t, []string{"Denim Jacket"}, titles(domain.ItemFilter{Category: "Clothing"}))
	assert.Equal(t, []string{"Student ID Card"}, titles(domain.ItemFilter{Location: "Student Center"}))
	assert.Equal(t, []string{"Denim Jacket", "Student ID Card"}, titles(domain.ItemFilter{Search: "blue"}))
	assert.Equal(t, []string{"Black iPhone"}, titles(domain.ItemFilter{Search: "IPHONE"}))
	assert.Empty(t, titles(domain.ItemFilter{Category: "Clothing", Search: "iphone"}))
	assert.Empty(t, titles(domain.ItemFilter{Search: "%"}))
}

func testItemKinds(t *testing.T, repo store.Repository) {
	ctx := context.Background()
	owner := mustUser(t, repo, "ali@university.test", domain.RoleStudent, true)
	lost := mustItem(t, repo, domain.KindLost, owner.ID, "Keys", base)

	_, err := repo.GetItem(ctx, domain.KindFound, lost.ID)
	assert.ErrorIs(t, err, domain.ErrNotFound)
	assert.ErrorIs(t, repo.UpdateItemStatus(ctx, domain.KindFound, lost.ID, domain.ItemClosed), domain.ErrNotFound)

	found, err := repo.ListItems(ctx, domain.KindFound, domain.ItemFilter{})
	require.NoError(t, err)
	assert.Empty(t, found)
}

func testProposals(t *testing.T, repo store.Repository) {
	ctx := context.Background()
	ali := mustUser(t, repo, "ali@university.test", domain.RoleStudent, true)
	sara := mustUser(t, repo, "sara@university.test", domain.RoleStudent, true)
	bilal := mustUser(t, repo, "bilal@university.test", domain.RoleStudent, true)

	lost := mustItem(t, repo, domain.KindLost, ali.ID, "iPhone", base)
	found := mustItem(t, repo, domain.KindFound, sara.ID, "Black iPhone", base)
	otherFound := mustItem(t, repo, domain.KindFound, bilal.ID, "Phone", base)

	breakdown := domain.ScoreBreakdown{Category: 40, Location: 20, Date: 15, Keywords: 12}
	p1, err := repo.CreateProposal(ctx, &domain.MatchProposal{
		LostID: lost.ID, FoundID: found.ID, Score: breakdown.Total(), Breakdown: breakdown,
		CreatedAt: base,
	})
	require.NoError(t, err)
	assert.Equal(t, domain.MatchPending, p1.Status)

	got, err := repo.GetProposal(ctx, p1.ID)
	require.NoError(t, err)
	if diff := cmp.Diff(p1, got); diff != "" {
		t.Errorf("GetProposal mismatch (-want +got):\n%s", diff)
	}

	// The same pair may be proposed twice.
	p2, err := repo.CreateProposal(ctx, &domain.MatchProposal{
		LostID: lost.ID, FoundID: found.ID, Score: 87, Breakdown: breakdown, CreatedAt: base.Add(time.Second),
	})
	require.NoError(t, err)
	assert.NotEqual(t, p1.ID, p2.ID)

	p3, err := repo.CreateProposal(ctx, &domain.MatchProposal{
		LostID: lost.ID, FoundID: otherFound.ID, Score: 60, CreatedAt: base.Add(2 * time.Second),
	})
	require.NoError(t, err)

	all, err := repo.ListProposals(ctx)
	require.NoError(t, err)
	require.Len(t, all, 3)
	assert.Equal(t, []string{p1.ID, p2.ID, p3.ID}, []string{all[0].ID, all[1].ID, all[2].ID})

	require.NoError(t, repo.UpdateProposalStatus(ctx, p2.ID, domain.MatchRejected))
	pending, err := repo.ListPendingProposals(ctx)
	require.NoError(t, err)
	require.Len(t, pending, 2)
	assert.Equal(t, p1.ID, pending[0].ID)
	assert.Equal(t, p3.ID, pending[1].ID)

	bySara, err := repo.ListProposalsByOwner(ctx, sara.ID)
	require.NoError(t, err)
	assert.Len(t, bySara, 2)

	byAli, err := repo.ListProposalsByOwner(ctx, ali.ID)
	require.NoError(t, err)
	assert.Len(t, byAli, 3)

	byBilal, err := repo.ListProposalsByOwner(ctx, bilal.ID)
	require.NoError(t, err)
	require.Len(t, byBilal, 1)
	assert.Equal(t, p3.ID, byBilal[0].ID)
}

func testApplyApproval(t *testing.T, repo store.Repository) {
	ctx := context.Background()
	ali := mustUser(t, repo, "ali@university.test", domain.RoleStudent, true)
	sara := mustUser(t, repo, "sara@university.test", domain.RoleStudent, true)
	lost := mustItem(t, repo, domain.KindLost, ali.ID, "iPhone", base)
	found := mustItem(t, repo, domain.KindFound, sara.ID, "Black iPhone", base)

	p, err := repo.CreateProposal(ctx, &domain.MatchProposal{LostID: lost.ID, FoundID: found.ID, Score: 90})
	require.NoError(t, err)

	require.NoError(t, repo.ApplyApproval(ctx, p.ID))

	got, err := repo.GetProposal(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.MatchApproved, got.Status)

	l, err := repo.GetItem(ctx, domain.KindLost, lost.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.ItemMatched, l.Status)
	f, err := repo.GetItem(ctx, domain.KindFound, found.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.ItemMatched, f.Status)

	assert.ErrorIs(t, repo.ApplyApproval(ctx, "missing"), domain.ErrNotFound)
}

func testApplyApprovalMissingItem(t *testing.T, repo store.Repository) {
	ctx := context.Background()
	ali := mustUser(t, repo, "ali@university.test", domain.RoleStudent, true)
	lost := mustItem(t, repo, domain.KindLost, ali.ID, "iPhone", base)

	p, err := repo.CreateProposal(ctx, &domain.MatchProposal{LostID: lost.ID, FoundID: "gone", Score: 90})
	require.NoError(t, err)

	err = repo.ApplyApproval(ctx, p.ID)
	assert.ErrorIs(t, err, domain.ErrReferentialIntegrity)

	// Nothing was written.
	got, err := repo.GetProposal(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.MatchPending, got.Status)
	l, err := repo.GetItem(ctx, domain.KindLost, lost.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.ItemPending, l.Status)
}

func testNotifications(t *testing.T, repo store.Repository) {
	ctx := context.Background()
	ali := mustUser(t, repo, "ali@university.test", domain.RoleStudent, true)
	sara := mustUser(t, repo, "sara@university.test", domain.RoleStudent, true)

	older, err := repo.CreateNotification(ctx, &domain.Notification{
		UserID: ali.ID, Title: "Potential Match Found!", Body: "older", Link: "/dashboard?tab=matches", CreatedAt: base,
	})
	require.NoError(t, err)
	assert.False(t, older.Read)
	newer, err := repo.CreateNotification(ctx, &domain.Notification{
		UserID: ali.ID, Title: "Match Approved!", Body: "newer", CreatedAt: base.Add(time.Minute),
	})
	require.NoError(t, err)
	_, err = repo.CreateNotification(ctx, &domain.Notification{UserID: sara.ID, Title: "other", Body: "x"})
	require.NoError(t, err)

	list, err := repo.ListNotifications(ctx, ali.ID)
	require.NoError(t, err)
	want := []*domain.Notification{newer, older}
	if diff := cmp.Diff(want, list); diff != "" {
		t.Errorf("ListNotifications mismatch (-want +got):\n%s", diff)
	}

	count, err := repo.CountUnread(ctx, ali.ID)
	require.NoError(t, err)
	assert.Equal(t, 2, count)

	require.NoError(t, repo.MarkNotificationRead(ctx, older.ID, ali.ID))
	require.NoError(t, repo.MarkNotificationRead(ctx, older.ID, ali.ID), "marking read twice is not an error")

	count, err = repo.CountUnread(ctx, ali.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, count)

	assert.ErrorIs(t, repo.MarkNotificationRead(ctx, newer.ID, sara.ID), domain.ErrNotFound)
	count, err = repo.CountUnread(ctx, ali.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, count, "another user cannot mark the notification read")

	empty, err := repo.ListNotifications(ctx, "nobody")
	require.NoError(t, err)
	assert.Empty(t, empty)
	count, err = repo.CountUnread(ctx, "nobody")
	require.NoError(t, err)
	assert.Zero(t, count)
}

func testNotFound(t *testing.T, repo store.Repository) {
	ctx := context.Background()

	_, err := repo.GetItem(ctx, domain.KindLost, "missing")
	assert.ErrorIs(t, err, domain.ErrNotFound)
	_, err = repo.GetProposal(ctx, "missing")
	assert.ErrorIs(t, err, domain.ErrNotFound)
	_, err = repo.GetUser(ctx, "missing")
	assert.ErrorIs(t, err, domain.ErrNotFound)
	_, err = repo.GetUserByEmail(ctx, "missing@university.test")
	assert.ErrorIs(t, err, domain.ErrNotFound)
	assert.ErrorIs(t, repo.UpdateProposalStatus(ctx, "missing", domain.MatchRejected), domain.ErrNotFound)
	assert.ErrorIs(t, repo.VerifyUser(ctx, "missing"), domain.ErrNotFound)
	assert.ErrorIs(t, repo.MarkNotificationRead(ctx, "missing", "missing"), domain.ErrNotFound)

	items, err := repo.ListItems(ctx, domain.KindLost, domain.ItemFilter{})
	require.NoError(t, err)
	assert.Empty(t, items)
	proposals, err := repo.ListProposals(ctx)
	require.NoError(t, err)
	assert.Empty(t, proposals)
}
