package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vbonduro/lostfound/internal/domain"
)

func TestNotificationFeed(t *testing.T) {
	e := newTestEnv(t, 0)
	ctx := context.Background()
	_, _, p := matchedPair(t, e)
	_, err := e.matches.Approve(ctx, p.ID)
	require.NoError(t, err)
	e.dispatcher.Wait()

	list, err := e.notifications.List(ctx, e.ali.ID)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, "Match Approved!", list[0].Title)
	assert.Equal(t, "Potential Match Found!", list[1].Title)

	n, err := e.notifications.CountUnread(ctx, e.ali.ID)
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	require.NoError(t, e.notifications.MarkRead(ctx, list[0].ID, e.ali.ID))
	require.NoError(t, e.notifications.MarkRead(ctx, list[0].ID, e.ali.ID))

	n, err = e.notifications.CountUnread(ctx, e.ali.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, n)
}

func TestMarkReadIsScopedToOwner(t *testing.T) {
	e := newTestEnv(t, 0)
	ctx := context.Background()
	matchedPair(t, e)

	list, err := e.notifications.List(ctx, e.ali.ID)
	require.NoError(t, err)
	require.Len(t, list, 1)

	err = e.notifications.MarkRead(ctx, list[0].ID, e.sara.ID)
	assert.ErrorIs(t, err, domain.ErrNotFound)

	err = e.notifications.MarkRead(ctx, "", e.ali.ID)
	assert.ErrorIs(t, err, domain.ErrValidation)

	n, err := e.notifications.CountUnread(ctx, e.ali.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, n)
}
