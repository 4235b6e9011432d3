// Package graphtest generates arbitrary graph values for property
// tests. It is the test-only collaborator of the engine: random
// choices are drawn from a rapid.T, so every generated graph
// participates in rapid's shrinking, and seeds are managed by the
// rapid harness. The generators can produce all the shapes the
// property suites need: empty graphs, single nodes, self-loops,
// parallel edges, disconnected components, deep chains and cycles.
package graphtest

import (
	"encoding/binary"

	"pgregory.net/rapid"

	"github.com/casgraph/casgraph/pkg/graph"
	"github.com/casgraph/casgraph/pkg/identity"
)

// Shape biases generation toward a structural family.
type Shape int

const (
	// ShapeAny draws unconstrained graphs, including self-loops and
	// parallel edges.
	ShapeAny Shape = iota
	// ShapeAcyclic draws graphs with no directed cycle.
	ShapeAcyclic
	// ShapeCyclic draws graphs guaranteed to contain a cycle.
	ShapeCyclic
	// ShapeChain draws a single path of maximal depth.
	ShapeChain
)

// Options bounds the size of generated graphs. Zero values select the
// package defaults.
type Options struct {
	MaxNodes int
	MaxEdges int
	Shape    Shape
}

const (
	defaultMaxNodes = 16
	defaultMaxEdges = 32
)

func (o Options) withDefaults() Options {
	if o.MaxNodes == 0 {
		o.MaxNodes = defaultMaxNodes
	}
	if o.MaxEdges == 0 {
		o.MaxEdges = defaultMaxEdges
	}
	return o
}

// Generator wraps Generate as a rapid generator, for use with Draw and
// rapid's combinators.
func Generator(opts Options) *rapid.Generator[*graph.Graph] {
	return rapid.Custom(func(t *rapid.T) *graph.Graph {
		return Generate(t, opts)
	})
}

// Generate draws a graph of the requested shape.
func Generate(t *rapid.T, opts Options) *graph.Graph {
	opts = opts.withDefaults()
	switch opts.Shape {
	case ShapeAcyclic:
		return genAcyclic(t, opts)
	case ShapeCyclic:
		return genCyclic(t, opts)
	case ShapeChain:
		return Chain(opts.MaxNodes)
	default:
		return genAny(t, opts)
	}
}

func genPayload(t *rapid.T) []byte {
	return rapid.SliceOfN(rapid.Byte(), 0, 16).Draw(t, "payload")
}

func genLabel(t *rapid.T) []byte {
	return rapid.SliceOfN(rapid.Byte(), 0, 4).Draw(t, "label")
}

func insertNodes(t *rapid.T, opts Options) (*graph.Graph, []identity.Hash) {
	g := graph.Empty()
	count := rapid.IntRange(0, opts.MaxNodes).Draw(t, "nodeCount")
	for i := 0; i < count; i++ {
		g, _ = g.InsertNode(genPayload(t))
	}
	return g, g.NodeIDs()
}

func mustInsertEdge(t *rapid.T, g *graph.Graph, source, target identity.Hash, label []byte) *graph.Graph {
	next, _, err := g.InsertEdge(source, target, label)
	if err != nil {
		t.Fatalf("insert edge: %v", err)
	}
	return next
}

// genAny draws nodes, then edges between arbitrary endpoint pairs.
// Duplicate payload draws collapse to one node and identical edge
// draws to one edge, so self-loops, parallel edges and disconnected
// leftovers all occur naturally.
func genAny(t *rapid.T, opts Options) *graph.Graph {
	g, ids := insertNodes(t, opts)
	if len(ids) == 0 {
		return g
	}

	count := rapid.IntRange(0, opts.MaxEdges).Draw(t, "edgeCount")
	for i := 0; i < count; i++ {
		source := rapid.SampledFrom(ids).Draw(t, "source")
		target := rapid.SampledFrom(ids).Draw(t, "target")
		g = mustInsertEdge(t, g, source, target, genLabel(t))
	}
	return g
}

// genAcyclic orders the drawn nodes and only admits edges from a
// strictly lower to a strictly higher position, which rules out loops
// and cycles by construction.
func genAcyclic(t *rapid.T, opts Options) *graph.Graph {
	g, ids := insertNodes(t, opts)
	if len(ids) < 2 {
		return g
	}

	count := rapid.IntRange(0, opts.MaxEdges).Draw(t, "edgeCount")
	for i := 0; i < count; i++ {
		a := rapid.IntRange(0, len(ids)-2).Draw(t, "lo")
		b := rapid.IntRange(a+1, len(ids)-1).Draw(t, "hi")
		g = mustInsertEdge(t, g, ids[a], ids[b], genLabel(t))
	}
	return g
}

// genCyclic draws an arbitrary graph with at least one node, then
// closes a ring through sampled nodes (a single node yields a
// self-loop).
func genCyclic(t *rapid.T, opts Options) *graph.Graph {
	g := genAny(t, opts)
	if g.NodeCount() == 0 {
		g, _ = g.InsertNode([]byte("cycle seed"))
	}
	ids := g.NodeIDs()

	size := rapid.IntRange(1, min(len(ids), 4)).Draw(t, "ringSize")
	ring := make([]identity.Hash, 0, size)
	for _, idx := range rapid.SliceOfNDistinct(
		rapid.IntRange(0, len(ids)-1), size, size, rapid.ID,
	).Draw(t, "ringMembers") {
		ring = append(ring, ids[idx])
	}

	for i := range ring {
		g = mustInsertEdge(t, g, ring[i], ring[(i+1)%len(ring)], nil)
	}
	return g
}

// Chain deterministically builds a path of depth nodes, the stress
// shape for traversal and ordering over long dependency chains.
func Chain(depth int) *graph.Graph {
	g := graph.Empty()
	if depth <= 0 {
		return g
	}

	prev := identity.Hash{}
	for i := 0; i < depth; i++ {
		var payload [8]byte
		binary.BigEndian.PutUint64(payload[:], uint64(i))
		next, id := g.InsertNode(payload[:])
		g = next
		if i > 0 {
			g = mustInsertChainEdge(g, prev, id)
		}
		prev = id
	}
	return g
}

func mustInsertChainEdge(g *graph.Graph, source, target identity.Hash) *graph.Graph {
	next, _, err := g.InsertEdge(source, target, nil)
	if err != nil {
		panic(err)
	}
	return next
}
