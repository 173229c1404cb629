package local

import (
	"bytes"
	"context"
	"io"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vbonduro/lostfound/internal/domain"
)

func TestSaveAndGet(t *testing.T) {
	s, err := New(t.TempDir())
	require.NoError(t, err)
	ctx := context.Background()
	data := []byte("fake png data")

	key, err := s.Save(ctx, "lost", "image/png", bytes.NewReader(data))
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(key, "lost_"))
	assert.True(t, strings.HasSuffix(key, ".png"))

	r, mimeType, err := s.Get(ctx, key)
	require.NoError(t, err)
	t.Cleanup(func() { assert.NoError(t, r.Close()) })
	assert.Equal(t, "image/png", mimeType)

	got, err := io.ReadAll(r)
	require.NoError(t, err)
	assert.Equal(t, data, got)
}

func TestSaveKeysAreUnique(t *testing.T) {
	s, err := New(t.TempDir())
	require.NoError(t, err)
	ctx := context.Background()

	a, err := s.Save(ctx, "found", "image/jpeg", strings.NewReader("a"))
	require.NoError(t, err)
	b, err := s.Save(ctx, "found", "image/jpeg", strings.NewReader("b"))
	require.NoError(t, err)
	assert.NotEqual(t, a, b)
}

func TestDelete(t *testing.T) {
	s, err := New(t.TempDir())
	require.NoError(t, err)
	ctx := context.Background()

	key, err := s.Save(ctx, "lost", "image/jpeg", strings.NewReader("x"))
	require.NoError(t, err)

	require.NoError(t, s.Delete(ctx, key))
	_, _, err = s.Get(ctx, key)
	assert.ErrorIs(t, err, domain.ErrNotFound)
	assert.ErrorIs(t, s.Delete(ctx, key), domain.ErrNotFound)
}

func TestPathTraversalRejected(t *testing.T) {
	s, err := New(t.TempDir())
	require.NoError(t, err)
	ctx := context.Background()

	for _, key := range []string{"../etc/passwd", "../../secret.jpg", "."} {
		_, _, err := s.Get(ctx, key)
		assert.ErrorIs(t, err, domain.ErrValidation, key)
		assert.ErrorIs(t, s.Delete(ctx, key), domain.ErrValidation, key)
	}
}
