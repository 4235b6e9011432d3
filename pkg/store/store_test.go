package store_test

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/casgraph/casgraph/pkg/graph"
	"github.com/casgraph/casgraph/pkg/store"
)

func openInMemory(t *testing.T, comp store.Compression) *store.Store {
	t.Helper()
	s, err := store.Open(store.Options{InMemory: true, Compression: comp})
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func smallGraph(t *testing.T) *graph.Graph {
	t.Helper()
	g := graph.Empty()
	g, a := g.InsertNode([]byte("A"))
	g, b := g.InsertNode([]byte("B"))
	g, _, err := g.InsertEdge(a, b, []byte("depends"))
	require.NoError(t, err)
	return g
}

func TestPutGet_RoundTrip(t *testing.T) {
	for _, comp := range []store.Compression{store.NoCompression, store.Zstd, store.XZ} {
		t.Run(fmt.Sprintf("compression_%d", comp), func(t *testing.T) {
			s := openInMemory(t, comp)
			ctx := context.Background()
			g := smallGraph(t)

			digest, err := s.Put(ctx, g)
			require.NoError(t, err)
			assert.Equal(t, g.Digest(), digest)

			loaded, err := s.Get(ctx, digest)
			require.NoError(t, err)
			assert.True(t, loaded.Equal(g))
		})
	}
}

func TestPut_Idempotent(t *testing.T) {
	s := openInMemory(t, store.Zstd)
	ctx := context.Background()
	g := smallGraph(t)

	first, err := s.Put(ctx, g)
	require.NoError(t, err)
	second, err := s.Put(ctx, g)
	require.NoError(t, err)

	assert.Equal(t, first, second)

	digests, err := s.List(ctx)
	require.NoError(t, err)
	assert.Len(t, digests, 1)
}

func TestGet_NotFound(t *testing.T) {
	s := openInMemory(t, store.NoCompression)

	_, err := s.Get(context.Background(), graph.Empty().Digest())
	assert.ErrorIs(t, err, store.ErrNotFound)
}

func TestHasAndDelete(t *testing.T) {
	s := openInMemory(t, store.NoCompression)
	ctx := context.Background()
	g := smallGraph(t)

	digest, err := s.Put(ctx, g)
	require.NoError(t, err)

	ok, err := s.Has(ctx, digest)
	require.NoError(t, err)
	assert.True(t, ok)

	require.NoError(t, s.Delete(ctx, digest))

	ok, err = s.Has(ctx, digest)
	require.NoError(t, err)
	assert.False(t, ok)

	// deleting again is a no-op
	assert.NoError(t, s.Delete(ctx, digest))
}

func TestList_CanonicalOrder(t *testing.T) {
	s := openInMemory(t, store.Zstd)
	ctx := context.Background()

	for i := 0; i < 5; i++ {
		g := graph.Empty()
		g, _ = g.InsertNode([]byte(fmt.Sprintf("graph %d", i)))
		_, err := s.Put(ctx, g)
		require.NoError(t, err)
	}

	digests, err := s.List(ctx)
	require.NoError(t, err)
	require.Len(t, digests, 5)
	for i := 1; i < len(digests); i++ {
		assert.True(t, digests[i-1].Less(digests[i]))
	}
}

func TestPersistsAcrossReopen(t *testing.T) {
	dir := t.TempDir()
	ctx := context.Background()
	g := smallGraph(t)

	s, err := store.Open(store.Options{Path: dir, Compression: store.Zstd})
	require.NoError(t, err)
	digest, err := s.Put(ctx, g)
	require.NoError(t, err)
	require.NoError(t, s.Close())

	reopened, err := store.Open(store.Options{Path: dir, Compression: store.Zstd})
	require.NoError(t, err)
	defer reopened.Close()

	loaded, err := reopened.Get(ctx, digest)
	require.NoError(t, err)
	assert.True(t, loaded.Equal(g))
}

func TestContextCancellation(t *testing.T) {
	s := openInMemory(t, store.NoCompression)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := s.Put(ctx, graph.Empty())
	assert.ErrorIs(t, err, context.Canceled)
	_, err = s.Get(ctx, graph.Empty().Digest())
	assert.ErrorIs(t, err, context.Canceled)
}
