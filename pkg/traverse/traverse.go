// Package traverse provides the graph algorithms: breadth- and
// depth-first traversal, cycle detection, topological ordering and
// connected components. Every algorithm is deterministic: wherever a
// choice between nodes exists, canonical id order breaks the tie, so
// identical inputs always produce identical outputs.
//
// All algorithms are iterative. Deep chains do not grow the goroutine
// stack.
package traverse

import (
	"container/heap"
	"fmt"
	"iter"

	"github.com/casgraph/casgraph/pkg/graph"
	"github.com/casgraph/casgraph/pkg/identity"
)

// Order selects the traversal strategy.
type Order int

const (
	// BreadthFirst visits nodes level by level.
	BreadthFirst Order = iota
	// DepthFirst visits nodes in preorder.
	DepthFirst
)

// CycleError reports that a topological order was requested on a
// cyclic graph. Cycle carries the witness: a sequence of node ids in
// which each node has an edge to the next and the last has an edge to
// the first. A self-loop yields a witness of length one.
type CycleError struct {
	Cycle []identity.Hash
}

func (e *CycleError) Error() string {
	return fmt.Sprintf("traverse: graph contains a cycle through %d node(s)", len(e.Cycle))
}

// Traverse returns a restartable sequence of node ids reachable from
// start, in the given order. Siblings are visited in canonical id
// order. An absent start yields an empty sequence. Each range over the
// sequence re-runs the traversal, so re-invocation with the same
// arguments yields the same sequence.
func Traverse(g *graph.Graph, start identity.Hash, order Order) iter.Seq[identity.Hash] {
	if order == DepthFirst {
		return func(yield func(identity.Hash) bool) {
			depthFirst(g, start, yield)
		}
	}
	return func(yield func(identity.Hash) bool) {
		breadthFirst(g, start, yield)
	}
}

func breadthFirst(g *graph.Graph, start identity.Hash, yield func(identity.Hash) bool) {
	if !g.Contains(start) {
		return
	}

	visited := map[identity.Hash]struct{}{start: {}}
	queue := []identity.Hash{start}
	for len(queue) > 0 {
		id := queue[0]
		queue = queue[1:]
		if !yield(id) {
			return
		}
		for _, next := range g.Neighbors(id) {
			if _, ok := visited[next]; ok {
				continue
			}
			visited[next] = struct{}{}
			queue = append(queue, next)
		}
	}
}

func depthFirst(g *graph.Graph, start identity.Hash, yield func(identity.Hash) bool) {
	if !g.Contains(start) {
		return
	}

	visited := map[identity.Hash]struct{}{}
	stack := []identity.Hash{start}
	for len(stack) > 0 {
		id := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if _, ok := visited[id]; ok {
			continue
		}
		visited[id] = struct{}{}
		if !yield(id) {
			return
		}
		// push in reverse so the canonically smallest neighbor pops first
		neighbors := g.Neighbors(id)
		for i := len(neighbors) - 1; i >= 0; i-- {
			if _, ok := visited[neighbors[i]]; !ok {
				stack = append(stack, neighbors[i])
			}
		}
	}
}

// three-color DFS markers
const (
	white = iota // unvisited
	gray         // on the recursion stack
	black        // fully explored
)

// DetectCycle searches the graph for a cycle and returns its witness,
// found by an iterative three-color depth-first search over roots and
// siblings in canonical order. The boolean is false if the graph is
// acyclic.
func DetectCycle(g *graph.Graph) ([]identity.Hash, bool) {
	type frame struct {
		id   identity.Hash
		succ []identity.Hash
		next int
	}

	color := map[identity.Hash]int{}
	for _, root := range g.NodeIDs() {
		if color[root] != white {
			continue
		}

		stack := []frame{{id: root, succ: g.Neighbors(root)}}
		color[root] = gray
		for len(stack) > 0 {
			f := &stack[len(stack)-1]
			if f.next >= len(f.succ) {
				color[f.id] = black
				stack = stack[:len(stack)-1]
				continue
			}

			s := f.succ[f.next]
			f.next++
			switch color[s] {
			case white:
				color[s] = gray
				stack = append(stack, frame{id: s, succ: g.Neighbors(s)})
			case gray:
				// s is on the stack: the frames from s to the top are the cycle
				start := 0
				for i := range stack {
					if stack[i].id == s {
						start = i
						break
					}
				}
				cycle := make([]identity.Hash, 0, len(stack)-start)
				for _, fr := range stack[start:] {
					cycle = append(cycle, fr.id)
				}
				return cycle, true
			}
		}
	}
	return nil, false
}

// TopologicalSort returns a total order of all node ids consistent
// with edge direction, ties broken by canonical id order (Kahn's
// algorithm with a canonical-order ready queue). It fails with a
// *CycleError carrying the offending cycle if the graph is cyclic.
func TopologicalSort(g *graph.Graph) ([]identity.Hash, error) {
	indegree := map[identity.Hash]int{}
	for _, id := range g.NodeIDs() {
		indegree[id] = 0
	}
	for e := range g.Edges() {
		indegree[e.Target]++
	}

	ready := &hashHeap{}
	for _, id := range g.NodeIDs() {
		if indegree[id] == 0 {
			heap.Push(ready, id)
		}
	}

	order := make([]identity.Hash, 0, g.NodeCount())
	for ready.Len() > 0 {
		id := heap.Pop(ready).(identity.Hash)
		order = append(order, id)
		for _, e := range g.OutEdges(id) {
			indegree[e.Target]--
			if indegree[e.Target] == 0 {
				heap.Push(ready, e.Target)
			}
		}
	}

	if len(order) != g.NodeCount() {
		cycle, _ := DetectCycle(g)
		return nil, &CycleError{Cycle: cycle}
	}
	return order, nil
}

// ConnectedComponents partitions all node ids into weakly connected
// components, treating every edge as undirected. The partition is
// exhaustive and disjoint. Each component is sorted in canonical
// order and components are ordered by their smallest member.
func ConnectedComponents(g *graph.Graph) [][]identity.Hash {
	visited := map[identity.Hash]struct{}{}
	var components [][]identity.Hash

	for _, root := range g.NodeIDs() {
		if _, ok := visited[root]; ok {
			continue
		}

		var component []identity.Hash
		visited[root] = struct{}{}
		queue := []identity.Hash{root}
		for len(queue) > 0 {
			id := queue[0]
			queue = queue[1:]
			component = append(component, id)
			for _, next := range g.Neighbors(id) {
				if _, ok := visited[next]; !ok {
					visited[next] = struct{}{}
					queue = append(queue, next)
				}
			}
			for _, next := range g.Predecessors(id) {
				if _, ok := visited[next]; !ok {
					visited[next] = struct{}{}
					queue = append(queue, next)
				}
			}
		}

		sortHashes(component)
		components = append(components, component)
	}
	return components
}
