package graph_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/casgraph/casgraph/pkg/graph"
	"github.com/casgraph/casgraph/pkg/identity"
	"github.com/casgraph/casgraph/pkg/model"
)

func TestEmpty(t *testing.T) {
	g := graph.Empty()

	assert.Equal(t, 0, g.NodeCount())
	assert.Equal(t, 0, g.EdgeCount())
	assert.True(t, g.Equal(graph.Empty()))
	assert.Equal(t, graph.Empty().Digest(), g.Digest())
}

func TestInsertNode_Idempotent(t *testing.T) {
	g := graph.Empty()

	g1, first := g.InsertNode([]byte("A"))
	g2, second := g1.InsertNode([]byte("A"))

	assert.Equal(t, first, second)
	assert.Equal(t, 1, g2.NodeCount())
	assert.Same(t, g1, g2) // duplicate insert returns the value unchanged
	assert.Equal(t, 0, g.NodeCount(), "original value untouched")
}

func TestInsertEdge_Idempotent(t *testing.T) {
	g := graph.Empty()
	g, a := g.InsertNode([]byte("A"))
	g, b := g.InsertNode([]byte("B"))

	g1, first, err := g.InsertEdge(a, b, []byte("l"))
	require.NoError(t, err)
	g2, second, err := g1.InsertEdge(a, b, []byte("l"))
	require.NoError(t, err)

	assert.Equal(t, first, second)
	assert.Equal(t, 1, g2.EdgeCount())
	assert.Same(t, g1, g2)
}

func TestInsertEdge_DanglingEndpoint(t *testing.T) {
	g := graph.Empty()
	g, a := g.InsertNode([]byte("A"))
	missing := identity.HashString("not inserted")

	_, _, err := g.InsertEdge(a, missing, nil)
	require.ErrorIs(t, err, graph.ErrDanglingEndpoint)

	var dangling *graph.DanglingEndpointError
	require.ErrorAs(t, err, &dangling)
	assert.Equal(t, missing, dangling.Endpoint)

	_, _, err = g.InsertEdge(missing, a, nil)
	assert.ErrorIs(t, err, graph.ErrDanglingEndpoint)
}

func TestInsertEdge_ParallelEdgesDistinct(t *testing.T) {
	g := graph.Empty()
	g, a := g.InsertNode([]byte("A"))
	g, b := g.InsertNode([]byte("B"))

	g, e1, err := g.InsertEdge(a, b, []byte("one"))
	require.NoError(t, err)
	g, e2, err := g.InsertEdge(a, b, []byte("two"))
	require.NoError(t, err)

	assert.NotEqual(t, e1, e2)
	assert.Equal(t, 2, g.EdgeCount())
	assert.Equal(t, []identity.Hash{b}, g.Neighbors(a), "parallel edges are one neighbor")
}

func TestRemoveNode_Cascades(t *testing.T) {
	g := graph.Empty()
	g, a := g.InsertNode([]byte("A"))
	g, b := g.InsertNode([]byte("B"))
	g, c := g.InsertNode([]byte("C"))
	g, _, err := g.InsertEdge(a, b, nil)
	require.NoError(t, err)
	g, _, err = g.InsertEdge(b, c, nil)
	require.NoError(t, err)
	g, _, err = g.InsertEdge(b, b, nil) // self-loop on the removed node
	require.NoError(t, err)
	g, keep, err := g.InsertEdge(a, c, nil)
	require.NoError(t, err)

	removed := g.RemoveNode(b)

	assert.False(t, removed.Contains(b))
	assert.Equal(t, 2, removed.NodeCount())
	assert.Equal(t, 1, removed.EdgeCount())
	assert.True(t, removed.ContainsEdge(keep))
	for e := range removed.Edges() {
		assert.NotEqual(t, b, e.Source)
		assert.NotEqual(t, b, e.Target)
	}

	// the original is untouched
	assert.True(t, g.Contains(b))
	assert.Equal(t, 4, g.EdgeCount())
}

func TestRemoveNode_Absent(t *testing.T) {
	g := graph.Empty()
	g, _ = g.InsertNode([]byte("A"))

	assert.Same(t, g, g.RemoveNode(identity.HashString("missing")))
}

func TestRemoveEdge(t *testing.T) {
	g := graph.Empty()
	g, a := g.InsertNode([]byte("A"))
	g, b := g.InsertNode([]byte("B"))
	g, e, err := g.InsertEdge(a, b, nil)
	require.NoError(t, err)

	removed := g.RemoveEdge(e)

	assert.False(t, removed.ContainsEdge(e))
	assert.True(t, removed.Contains(a), "endpoints survive edge removal")
	assert.True(t, removed.Contains(b))
	assert.Same(t, removed, removed.RemoveEdge(e))
}

func TestIteration_CanonicalOrder(t *testing.T) {
	g := graph.Empty()
	for _, payload := range []string{"D", "B", "A", "C"} {
		g, _ = g.InsertNode([]byte(payload))
	}

	var prev identity.Hash
	count := 0
	for n := range g.Nodes() {
		if count > 0 {
			assert.True(t, prev.Less(n.ID), "nodes must iterate in canonical order")
		}
		prev = n.ID
		count++
	}
	assert.Equal(t, 4, count)
}

func TestIteration_Restartable(t *testing.T) {
	g := graph.Empty()
	g, _ = g.InsertNode([]byte("A"))
	g, _ = g.InsertNode([]byte("B"))

	seq := g.Nodes()
	first := collectIDs(seq)
	second := collectIDs(seq)

	assert.Equal(t, first, second)
}

func TestDigest_InsertionOrderIndependent(t *testing.T) {
	build := func(payloads []string) *graph.Graph {
		g := graph.Empty()
		ids := map[string]identity.Hash{}
		for _, p := range payloads {
			var id identity.Hash
			g, id = g.InsertNode([]byte(p))
			ids[p] = id
		}
		var err error
		g, _, err = g.InsertEdge(ids["A"], ids["B"], []byte("l"))
		require.NoError(t, err)
		return g
	}

	g1 := build([]string{"A", "B", "C"})
	g2 := build([]string{"C", "B", "A"})

	assert.True(t, g1.Equal(g2))
	assert.Equal(t, g1.Digest(), g2.Digest())
}

func TestBuilder_Build(t *testing.T) {
	a := model.NewNode([]byte("A"))
	b := model.NewNode([]byte("B"))
	e, err := model.NewEdge(a.ID, b.ID, nil)
	require.NoError(t, err)

	g, err := graph.NewBuilder().AddNode(a).AddNode(b).AddEdge(e).Build()
	require.NoError(t, err)
	assert.Equal(t, 2, g.NodeCount())
	assert.Equal(t, 1, g.EdgeCount())

	_, err = graph.NewBuilder().AddNode(a).AddEdge(e).Build()
	assert.ErrorIs(t, err, graph.ErrDanglingEndpoint)
}

func TestBuilder_BuildPruned(t *testing.T) {
	a := model.NewNode([]byte("A"))
	b := model.NewNode([]byte("B"))
	kept, err := model.NewEdge(a.ID, b.ID, nil)
	require.NoError(t, err)
	dropped, err := model.NewEdge(a.ID, identity.HashString("gone"), nil)
	require.NoError(t, err)

	g := graph.NewBuilder().
		AddNode(a).AddNode(b).
		AddEdge(kept).AddEdge(dropped).
		BuildPruned()

	assert.True(t, g.ContainsEdge(kept.ID))
	assert.False(t, g.ContainsEdge(dropped.ID))
}

func collectIDs(seq func(func(model.Node) bool)) []identity.Hash {
	var ids []identity.Hash
	for n := range seq {
		ids = append(ids, n.ID)
	}
	return ids
}
