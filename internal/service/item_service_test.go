package service

import (
	"bytes"
	"context"
	"image"
	"image/png"
	"io"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vbonduro/lostfound/internal/domain"
	"github.com/vbonduro/lostfound/internal/imagestore/local"
)

func pngBytes(t *testing.T) []byte {
	t.Helper()
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, image.NewRGBA(image.Rect(0, 0, 8, 8))))
	return buf.Bytes()
}

func withImages(t *testing.T, e *testEnv) string {
	t.Helper()
	dir := t.TempDir()
	images, err := local.New(dir)
	require.NoError(t, err)
	e.items = NewItemService(e.repo, e.matches, images, discardLogger())
	return dir
}

func TestReportValidates(t *testing.T) {
	e := newTestEnv(t, 0)
	ctx := context.Background()

	n := iphone("black iphone")
	n.Title = "   "
	_, err := e.items.Report(ctx, domain.KindLost, e.ali.ID, n, nil)
	assert.ErrorIs(t, err, domain.ErrValidation)

	_, err = e.items.Report(ctx, domain.Kind("misplaced"), e.ali.ID, iphone("black iphone"), nil)
	assert.ErrorIs(t, err, domain.ErrValidation)
}

func TestReportStoresPendingItem(t *testing.T) {
	e := newTestEnv(t, 0)

	n := iphone("  black iphone  ")
	n.ImageKey = ""
	item := e.report(t, domain.KindFound, e.sara, n)

	assert.Equal(t, domain.KindFound, item.Kind)
	assert.Equal(t, e.sara.ID, item.OwnerID)
	assert.Equal(t, "black iphone", item.Description)
	assert.Equal(t, domain.ItemPending, item.Status)
	assert.False(t, item.HasImage())
}

func TestReportWithImage(t *testing.T) {
	e := newTestEnv(t, 0)
	withImages(t, e)
	ctx := context.Background()

	n := iphone("black iphone")
	n.ImageKey = ""
	item, err := e.items.Report(ctx, domain.KindLost, e.ali.ID, n, pngBytes(t))
	require.NoError(t, err)
	require.True(t, item.HasImage())

	r, mime, err := e.items.Image(ctx, item.ImageKey)
	require.NoError(t, err)
	defer r.Close()
	assert.Equal(t, "image/png", mime)
	data, err := io.ReadAll(r)
	require.NoError(t, err)
	assert.NotEmpty(t, data)
}

func TestReportRejectsBadImage(t *testing.T) {
	e := newTestEnv(t, 0)
	withImages(t, e)

	_, err := e.items.Report(context.Background(), domain.KindLost, e.ali.ID, iphone("black iphone"), []byte("not an image"))
	assert.ErrorIs(t, err, domain.ErrValidation)
}

func TestReportWithImagesDisabled(t *testing.T) {
	e := newTestEnv(t, 0)

	_, err := e.items.Report(context.Background(), domain.KindLost, e.ali.ID, iphone("black iphone"), pngBytes(t))
	assert.ErrorIs(t, err, domain.ErrValidation)
}

func TestReportRemovesImageWhenItemNotStored(t *testing.T) {
	e := newTestEnv(t, 0)
	dir := withImages(t, e)
	e.repo.failCreateItem = true

	_, err := e.items.Report(context.Background(), domain.KindLost, e.ali.ID, iphone("black iphone"), pngBytes(t))
	var rerr *domain.RepositoryError
	assert.ErrorAs(t, err, &rerr)

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestListFiltersAndSentinels(t *testing.T) {
	e := newTestEnv(t, 0)
	ctx := context.Background()

	e.report(t, domain.KindLost, e.ali, iphone("black iphone"))
	e.report(t, domain.KindLost, e.ali, textbook())

	all, err := e.items.List(ctx, domain.KindLost, domain.ItemFilter{Category: "All Categories", Location: "All Locations"})
	require.NoError(t, err)
	assert.Len(t, all, 2)

	books, err := e.items.List(ctx, domain.KindLost, domain.ItemFilter{Category: "Books"})
	require.NoError(t, err)
	require.Len(t, books, 1)
	assert.Equal(t, "Calculus Textbook", books[0].Title)

	search, err := e.items.List(ctx, domain.KindLost, domain.ItemFilter{Search: "STEWART"})
	require.NoError(t, err)
	require.Len(t, search, 1)

	found, err := e.items.List(ctx, domain.KindFound, domain.ItemFilter{})
	require.NoError(t, err)
	assert.Empty(t, found)
}

func TestListMine(t *testing.T) {
	e := newTestEnv(t, 0)
	ctx := context.Background()

	e.report(t, domain.KindLost, e.ali, textbook())
	e.report(t, domain.KindLost, e.sara, iphone("black iphone"))

	mine, err := e.items.ListMine(ctx, domain.KindLost, e.ali.ID)
	require.NoError(t, err)
	require.Len(t, mine, 1)
	assert.Equal(t, e.ali.ID, mine[0].OwnerID)
}

func TestDeleteIsOwnerOnlyAndPendingOnly(t *testing.T) {
	e := newTestEnv(t, 0)
	ctx := context.Background()
	lost, _, p := matchedPair(t, e)

	err := e.items.Delete(ctx, domain.KindLost, lost.ID, e.sara.ID)
	assert.ErrorIs(t, err, domain.ErrForbidden)

	_, err = e.matches.Approve(ctx, p.ID)
	require.NoError(t, err)
	err = e.items.Delete(ctx, domain.KindLost, lost.ID, e.ali.ID)
	assert.ErrorIs(t, err, domain.ErrInvalidTransition)

	other := e.report(t, domain.KindLost, e.ali, textbook())
	require.NoError(t, e.items.Delete(ctx, domain.KindLost, other.ID, e.ali.ID))
	_, err = e.items.Get(ctx, domain.KindLost, other.ID)
	assert.ErrorIs(t, err, domain.ErrNotFound)

	err = e.items.Delete(ctx, domain.KindLost, other.ID, e.ali.ID)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestDeleteRemovesImage(t *testing.T) {
	e := newTestEnv(t, 0)
	dir := withImages(t, e)
	ctx := context.Background()

	item, err := e.items.Report(ctx, domain.KindLost, e.ali.ID, textbook(), pngBytes(t))
	require.NoError(t, err)
	require.NoError(t, e.items.Delete(ctx, domain.KindLost, item.ID, e.ali.ID))

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestOwnerLifecycle(t *testing.T) {
	e := newTestEnv(t, 0)
	ctx := context.Background()
	lost, found, p := matchedPair(t, e)

	_, err := e.items.MarkReturned(ctx, domain.KindLost, lost.ID, e.ali.ID)
	assert.ErrorIs(t, err, domain.ErrInvalidTransition)

	_, err = e.matches.Approve(ctx, p.ID)
	require.NoError(t, err)

	_, err = e.items.MarkReturned(ctx, domain.KindLost, lost.ID, e.sara.ID)
	assert.ErrorIs(t, err, domain.ErrForbidden)

	got, err := e.items.MarkReturned(ctx, domain.KindLost, lost.ID, e.ali.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.ItemReturned, got.Status)
	assert.Equal(t, domain.ItemReturned, e.status(t, lost))

	got, err = e.items.Close(ctx, domain.KindLost, lost.ID, e.ali.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.ItemClosed, got.Status)

	_, err = e.items.Close(ctx, domain.KindLost, lost.ID, e.ali.ID)
	assert.ErrorIs(t, err, domain.ErrInvalidTransition)

	got, err = e.items.Close(ctx, domain.KindFound, found.ID, e.sara.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.ItemClosed, got.Status)
}

func TestCloseRemovesItemFromMatching(t *testing.T) {
	e := newTestEnv(t, 0)
	ctx := context.Background()

	found := e.report(t, domain.KindFound, e.sara, iphone("black iphone blue case found"))
	_, err := e.items.Close(ctx, domain.KindFound, found.ID, e.sara.ID)
	require.NoError(t, err)

	e.report(t, domain.KindLost, e.ali, iphone("black iphone blue case"))
	assert.Empty(t, e.proposals(t))
}
