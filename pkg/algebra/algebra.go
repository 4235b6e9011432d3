// Package algebra implements set-algebraic composition of graph
// values. The operators are total and closed over valid graphs and
// satisfy the usual lattice laws: Union and Intersection are
// commutative, associative and idempotent, the empty graph is the
// identity for Union and absorbing for Intersection, and Intersection
// distributes over Union. Content addressing makes the laws hold by
// construction: the same id always denotes the same content in every
// operand.
package algebra

import (
	"github.com/casgraph/casgraph/pkg/graph"
)

// Union returns the graph whose node and edge sets are the id-wise
// unions of the operands. Referential closure is preserved: every edge
// endpoint present in an operand is present in the result.
func Union(a, b *graph.Graph) *graph.Graph {
	builder := graph.NewBuilder()
	for n := range a.Nodes() {
		builder.AddNode(n)
	}
	for n := range b.Nodes() {
		builder.AddNode(n)
	}
	for e := range a.Edges() {
		builder.AddEdge(e)
	}
	for e := range b.Edges() {
		builder.AddEdge(e)
	}
	return builder.BuildPruned()
}

// Intersection returns the graph whose nodes and edges are present, by
// id, in both operands. An edge in both operands has both endpoints in
// both operands, so closure again holds without pruning; BuildPruned
// is used for uniformity.
func Intersection(a, b *graph.Graph) *graph.Graph {
	builder := graph.NewBuilder()
	for n := range a.Nodes() {
		if b.Contains(n.ID) {
			builder.AddNode(n)
		}
	}
	for e := range a.Edges() {
		if b.ContainsEdge(e.ID) {
			builder.AddEdge(e)
		}
	}
	return builder.BuildPruned()
}

// Difference returns the nodes and edges of a not present, by id, in
// b. Surviving edges whose endpoints were removed are dropped with
// them, per the cascading-removal policy.
func Difference(a, b *graph.Graph) *graph.Graph {
	builder := graph.NewBuilder()
	for n := range a.Nodes() {
		if !b.Contains(n.ID) {
			builder.AddNode(n)
		}
	}
	for e := range a.Edges() {
		if !b.ContainsEdge(e.ID) {
			builder.AddEdge(e)
		}
	}
	return builder.BuildPruned()
}

// Merge is Union under a name reserved for payload reconciliation
// policies. With content-addressed ids equal ids imply equal payloads,
// so there is nothing to reconcile and Merge coincides with Union.
func Merge(a, b *graph.Graph) *graph.Graph {
	return Union(a, b)
}
