// Package model defines the core value types of the graph engine.
// Nodes and edges are identified by the digest of their canonicalized
// content, never by pointer identity or insertion order.
package model

import (
	"bytes"

	"github.com/casgraph/casgraph/pkg/identity"
)

// Domain separators keep node and edge digests disjoint: a node whose
// payload happens to equal an edge's canonical content still gets a
// different identifier.
var (
	nodeDomain = []byte("casgraph/node/v1")
	edgeDomain = []byte("casgraph/edge/v1")
)

// Node is an immutable graph vertex. ID is the content digest of
// Payload; updating a payload therefore produces a new Node with a new
// ID rather than mutating this one.
type Node struct {
	ID      identity.Hash
	Payload []byte
}

// Edge is an immutable directed connection between two nodes. Source
// and Target reference nodes by content ID. Label is optional; edges
// with the same endpoints but distinct labels are distinct parallel
// edges. Self-loops (Source == Target) are permitted.
type Edge struct {
	ID     identity.Hash
	Source identity.Hash
	Target identity.Hash
	Label  []byte
}

// ComputeNodeID derives the content identifier for a node payload.
func ComputeNodeID(payload []byte) identity.Hash {
	return identity.HashFields(nodeDomain, payload)
}

// ComputeEdgeID derives the content identifier for an edge. The digest
// covers source, target and label, so any semantically distinct edge
// gets a distinct identifier.
func ComputeEdgeID(source, target identity.Hash, label []byte) identity.Hash {
	return identity.HashFields(edgeDomain, source.Bytes(), target.Bytes(), label)
}

// NewNode builds a node from a payload, copying the payload so later
// caller-side mutation cannot reach into the value.
func NewNode(payload []byte) Node {
	return Node{
		ID:      ComputeNodeID(payload),
		Payload: bytes.Clone(payload),
	}
}

// NewEdge builds a directed edge. It fails with an
// *identity.EncodingError if the label cannot be represented in the
// wire format.
func NewEdge(source, target identity.Hash, label []byte) (Edge, error) {
	if err := identity.CheckLabel(label); err != nil {
		return Edge{}, err
	}
	return Edge{
		ID:     ComputeEdgeID(source, target, label),
		Source: source,
		Target: target,
		Label:  bytes.Clone(label),
	}, nil
}

// Equal reports semantic equality of two nodes.
func (n Node) Equal(other Node) bool {
	return n.ID == other.ID && bytes.Equal(n.Payload, other.Payload)
}

// Equal reports semantic equality of two edges.
func (e Edge) Equal(other Edge) bool {
	return e.ID == other.ID &&
		e.Source == other.Source &&
		e.Target == other.Target &&
		bytes.Equal(e.Label, other.Label)
}

// IsLoop reports whether the edge is a self-loop.
func (e Edge) IsLoop() bool {
	return e.Source == e.Target
}
