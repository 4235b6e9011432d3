// Package graph implements the immutable, content-addressed graph
// value. A Graph is never mutated in place: every operation that
// "modifies" a graph returns a new value, so any number of goroutines
// may hold and read the same Graph without locking.
//
// All iteration order in this package is canonical order, the
// big-endian byte order of content identifiers. Two equal graphs
// therefore iterate identically regardless of how they were built.
package graph

import (
	"bytes"
	"encoding/binary"
	"iter"
	"slices"

	"github.com/casgraph/casgraph/pkg/identity"
	"github.com/casgraph/casgraph/pkg/model"
)

var graphDomain = []byte("casgraph/graph/v1")

// Graph is an immutable directed graph keyed by content identifiers.
// The zero value is not usable; construct graphs with Empty or a
// Builder.
type Graph struct {
	nodes map[identity.Hash]model.Node
	edges map[identity.Hash]model.Edge

	// adjacency: node id -> set of incident edge ids
	out map[identity.Hash]map[identity.Hash]struct{}
	in  map[identity.Hash]map[identity.Hash]struct{}
}

// Empty returns the identity graph with zero nodes and zero edges.
func Empty() *Graph {
	return &Graph{
		nodes: map[identity.Hash]model.Node{},
		edges: map[identity.Hash]model.Edge{},
		out:   map[identity.Hash]map[identity.Hash]struct{}{},
		in:    map[identity.Hash]map[identity.Hash]struct{}{},
	}
}

// clone returns a deep copy of the graph's index structures. Payload
// and label slices are shared: they are never mutated after insertion.
func (g *Graph) clone() *Graph {
	c := &Graph{
		nodes: make(map[identity.Hash]model.Node, len(g.nodes)),
		edges: make(map[identity.Hash]model.Edge, len(g.edges)),
		out:   make(map[identity.Hash]map[identity.Hash]struct{}, len(g.out)),
		in:    make(map[identity.Hash]map[identity.Hash]struct{}, len(g.in)),
	}
	for id, n := range g.nodes {
		c.nodes[id] = n
	}
	for id, e := range g.edges {
		c.edges[id] = e
	}
	for id, set := range g.out {
		c.out[id] = cloneSet(set)
	}
	for id, set := range g.in {
		c.in[id] = cloneSet(set)
	}
	return c
}

func cloneSet(s map[identity.Hash]struct{}) map[identity.Hash]struct{} {
	c := make(map[identity.Hash]struct{}, len(s))
	for k := range s {
		c[k] = struct{}{}
	}
	return c
}

func (g *Graph) link(e model.Edge) {
	if g.out[e.Source] == nil {
		g.out[e.Source] = map[identity.Hash]struct{}{}
	}
	g.out[e.Source][e.ID] = struct{}{}
	if g.in[e.Target] == nil {
		g.in[e.Target] = map[identity.Hash]struct{}{}
	}
	g.in[e.Target][e.ID] = struct{}{}
}

func (g *Graph) unlink(e model.Edge) {
	delete(g.out[e.Source], e.ID)
	if len(g.out[e.Source]) == 0 {
		delete(g.out, e.Source)
	}
	delete(g.in[e.Target], e.ID)
	if len(g.in[e.Target]) == 0 {
		delete(g.in, e.Target)
	}
}

// InsertNode adds a node for the given payload and returns the new
// graph together with the node's content id. Inserting a
// structurally identical node is a no-op that returns the existing id
// and the receiver unchanged.
func (g *Graph) InsertNode(payload []byte) (*Graph, identity.Hash) {
	id := model.ComputeNodeID(payload)
	if _, ok := g.nodes[id]; ok {
		return g, id
	}

	c := g.clone()
	c.nodes[id] = model.NewNode(payload)
	return c, id
}

// InsertEdge adds a directed edge from source to target. It fails with
// a *DanglingEndpointError if either endpoint is absent, and with an
// *identity.EncodingError if the label cannot be encoded. Inserting an
// identical edge again is a no-op returning the existing id.
func (g *Graph) InsertEdge(source, target identity.Hash, label []byte) (*Graph, identity.Hash, error) {
	if _, ok := g.nodes[source]; !ok {
		return nil, identity.Hash{}, &DanglingEndpointError{Endpoint: source}
	}
	if _, ok := g.nodes[target]; !ok {
		return nil, identity.Hash{}, &DanglingEndpointError{Endpoint: target}
	}

	e, err := model.NewEdge(source, target, label)
	if err != nil {
		return nil, identity.Hash{}, err
	}
	if _, ok := g.edges[e.ID]; ok {
		return g, e.ID, nil
	}

	c := g.clone()
	c.edges[e.ID] = e
	c.link(e)
	return c, e.ID, nil
}

// RemoveNode removes the node and, to preserve referential closure,
// every edge touching it. Removing an absent node returns the receiver
// unchanged.
func (g *Graph) RemoveNode(id identity.Hash) *Graph {
	if _, ok := g.nodes[id]; !ok {
		return g
	}

	c := g.clone()
	for eid := range c.out[id] {
		e := c.edges[eid]
		delete(c.edges, eid)
		c.unlink(e)
	}
	for eid := range c.in[id] {
		e, ok := c.edges[eid]
		if !ok {
			continue // already removed as a self-loop
		}
		delete(c.edges, eid)
		c.unlink(e)
	}
	delete(c.nodes, id)
	return c
}

// RemoveEdge removes only the edge. Removing an absent edge returns
// the receiver unchanged.
func (g *Graph) RemoveEdge(id identity.Hash) *Graph {
	e, ok := g.edges[id]
	if !ok {
		return g
	}

	c := g.clone()
	delete(c.edges, id)
	c.unlink(e)
	return c
}

// Contains reports whether the node id is present.
func (g *Graph) Contains(id identity.Hash) bool {
	_, ok := g.nodes[id]
	return ok
}

// ContainsEdge reports whether the edge id is present.
func (g *Graph) ContainsEdge(id identity.Hash) bool {
	_, ok := g.edges[id]
	return ok
}

// Node returns the node for the given id.
func (g *Graph) Node(id identity.Hash) (model.Node, bool) {
	n, ok := g.nodes[id]
	return n, ok
}

// Edge returns the edge for the given id.
func (g *Graph) Edge(id identity.Hash) (model.Edge, bool) {
	e, ok := g.edges[id]
	return e, ok
}

// NodeCount returns the number of nodes.
func (g *Graph) NodeCount() int {
	return len(g.nodes)
}

// EdgeCount returns the number of edges.
func (g *Graph) EdgeCount() int {
	return len(g.edges)
}

// NodeIDs returns all node ids in canonical order. The slice is owned
// by the caller.
func (g *Graph) NodeIDs() []identity.Hash {
	return sortedKeys(g.nodes)
}

// EdgeIDs returns all edge ids in canonical order.
func (g *Graph) EdgeIDs() []identity.Hash {
	return sortedKeys(g.edges)
}

// Nodes returns a restartable sequence over all nodes in canonical id
// order. Each range over the sequence re-yields the same nodes in the
// same order.
func (g *Graph) Nodes() iter.Seq[model.Node] {
	return func(yield func(model.Node) bool) {
		for _, id := range g.NodeIDs() {
			if !yield(g.nodes[id]) {
				return
			}
		}
	}
}

// Edges returns a restartable sequence over all edges in canonical id
// order.
func (g *Graph) Edges() iter.Seq[model.Edge] {
	return func(yield func(model.Edge) bool) {
		for _, id := range g.EdgeIDs() {
			if !yield(g.edges[id]) {
				return
			}
		}
	}
}

// Neighbors returns the distinct successor node ids of the given node
// in canonical order. Parallel edges contribute a single neighbor; a
// self-loop makes a node its own neighbor.
func (g *Graph) Neighbors(id identity.Hash) []identity.Hash {
	set := map[identity.Hash]struct{}{}
	for eid := range g.out[id] {
		set[g.edges[eid].Target] = struct{}{}
	}
	return sortedKeys(set)
}

// Predecessors returns the distinct predecessor node ids in canonical
// order.
func (g *Graph) Predecessors(id identity.Hash) []identity.Hash {
	set := map[identity.Hash]struct{}{}
	for eid := range g.in[id] {
		set[g.edges[eid].Source] = struct{}{}
	}
	return sortedKeys(set)
}

// OutEdges returns the edges leaving the node in canonical edge-id
// order.
func (g *Graph) OutEdges(id identity.Hash) []model.Edge {
	ids := sortedKeys(g.out[id])
	edges := make([]model.Edge, len(ids))
	for i, eid := range ids {
		edges[i] = g.edges[eid]
	}
	return edges
}

// InEdges returns the edges entering the node in canonical edge-id
// order.
func (g *Graph) InEdges(id identity.Hash) []model.Edge {
	ids := sortedKeys(g.in[id])
	edges := make([]model.Edge, len(ids))
	for i, eid := range ids {
		edges[i] = g.edges[eid]
	}
	return edges
}

// Equal reports structural equality: the same node id set and the same
// edge id set. Under content addressing equal ids imply equal content,
// so no payload comparison is needed.
func (g *Graph) Equal(other *Graph) bool {
	if len(g.nodes) != len(other.nodes) || len(g.edges) != len(other.edges) {
		return false
	}
	for id := range g.nodes {
		if _, ok := other.nodes[id]; !ok {
			return false
		}
	}
	for id := range g.edges {
		if _, ok := other.edges[id]; !ok {
			return false
		}
	}
	return true
}

// Digest returns the content identifier of the whole graph: the digest
// of its sorted node id set and sorted edge id set. It is a pure
// function of the graph's content, independent of insertion order.
func (g *Graph) Digest() identity.Hash {
	var buffer bytes.Buffer
	var lenBuf [binary.MaxVarintLen64]byte

	buffer.Write(graphDomain)

	n := binary.PutUvarint(lenBuf[:], uint64(len(g.nodes)))
	buffer.Write(lenBuf[:n])
	for _, id := range g.NodeIDs() {
		buffer.Write(id.Bytes())
	}

	n = binary.PutUvarint(lenBuf[:], uint64(len(g.edges)))
	buffer.Write(lenBuf[:n])
	for _, id := range g.EdgeIDs() {
		buffer.Write(id.Bytes())
	}

	return identity.HashBytes(buffer.Bytes())
}

func sortedKeys[V any](m map[identity.Hash]V) []identity.Hash {
	ids := make([]identity.Hash, 0, len(m))
	for id := range m {
		ids = append(ids, id)
	}
	slices.SortFunc(ids, func(a, b identity.Hash) int {
		return a.Compare(b)
	})
	return ids
}
