package storage

import (
	"context"
	"io"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLocalStorageRoundTrip(t *testing.T) {
	s := NewLocalStorage(t.TempDir())
	ctx := context.Background()

	_, err := s.Save(ctx, "training/doc.txt", strings.NewReader("content"))
	require.NoError(t, err)

	r, err := s.Open(ctx, "training/doc.txt")
	require.NoError(t, err)
	defer r.Close()

	data, err := io.ReadAll(r)
	require.NoError(t, err)
	assert.Equal(t, "content", string(data))

	require.NoError(t, s.Delete(ctx, "training/doc.txt"))
	_, err = s.Open(ctx, "training/doc.txt")
	assert.Error(t, err)
}

func TestLocalStorageDeleteMissingIsNoop(t *testing.T) {
	s := NewLocalStorage(t.TempDir())
	assert.NoError(t, s.Delete(context.Background(), "training/never-existed.txt"))
}

func TestLocalStorageRejectsEscapingPaths(t *testing.T) {
	s := NewLocalStorage(t.TempDir())
	ctx := context.Background()

	_, err := s.Save(ctx, "../outside.txt", strings.NewReader("x"))
	assert.Error(t, err)

	_, err = s.Save(ctx, "/etc/passwd", strings.NewReader("x"))
	assert.Error(t, err)

	_, err = s.Open(ctx, "a/../../outside.txt")
	assert.Error(t, err)
}
