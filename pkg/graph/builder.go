package graph

import (
	"github.com/casgraph/casgraph/pkg/identity"
	"github.com/casgraph/casgraph/pkg/model"
)

// Builder assembles a Graph from pre-built node and edge values in a
// single pass, without the per-operation copying of InsertNode and
// InsertEdge. It is the construction path for the algebra operators and
// the codec. A Builder is single-use: Build or BuildPruned finalize it.
type Builder struct {
	nodes map[identity.Hash]model.Node
	edges map[identity.Hash]model.Edge
}

// NewBuilder returns an empty Builder.
func NewBuilder() *Builder {
	return &Builder{
		nodes: map[identity.Hash]model.Node{},
		edges: map[identity.Hash]model.Edge{},
	}
}

// AddNode records a node. Duplicate ids collapse to one entry.
func (b *Builder) AddNode(n model.Node) *Builder {
	b.nodes[n.ID] = n
	return b
}

// AddEdge records an edge. Duplicate ids collapse to one entry.
func (b *Builder) AddEdge(e model.Edge) *Builder {
	b.edges[e.ID] = e
	return b
}

// Build finalizes the graph, failing with a *DanglingEndpointError if
// any recorded edge references a node that was not recorded.
func (b *Builder) Build() (*Graph, error) {
	for _, e := range b.edges {
		if _, ok := b.nodes[e.Source]; !ok {
			return nil, &DanglingEndpointError{Endpoint: e.Source}
		}
		if _, ok := b.nodes[e.Target]; !ok {
			return nil, &DanglingEndpointError{Endpoint: e.Target}
		}
	}
	return b.finish(), nil
}

// BuildPruned finalizes the graph, dropping every edge whose source or
// target was not recorded. This is the cascading-removal policy of
// RemoveNode applied at construction time, which is exactly what the
// algebra's difference operator needs.
func (b *Builder) BuildPruned() *Graph {
	for id, e := range b.edges {
		if _, ok := b.nodes[e.Source]; !ok {
			delete(b.edges, id)
			continue
		}
		if _, ok := b.nodes[e.Target]; !ok {
			delete(b.edges, id)
		}
	}
	return b.finish()
}

func (b *Builder) finish() *Graph {
	g := &Graph{
		nodes: b.nodes,
		edges: b.edges,
		out:   map[identity.Hash]map[identity.Hash]struct{}{},
		in:    map[identity.Hash]map[identity.Hash]struct{}{},
	}
	for _, e := range b.edges {
		g.link(e)
	}
	// the maps now belong to the graph
	b.nodes = nil
	b.edges = nil
	return g
}
