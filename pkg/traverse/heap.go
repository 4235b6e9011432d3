package traverse

import (
	"slices"

	"github.com/casgraph/casgraph/pkg/identity"
)

// hashHeap is a min-heap of ids in canonical order, the ready queue of
// Kahn's algorithm.
type hashHeap []identity.Hash

func (h hashHeap) Len() int           { return len(h) }
func (h hashHeap) Less(i, j int) bool { return h[i].Less(h[j]) }
func (h hashHeap) Swap(i, j int)      { h[i], h[j] = h[j], h[i] }

func (h *hashHeap) Push(x any) {
	*h = append(*h, x.(identity.Hash))
}

func (h *hashHeap) Pop() any {
	old := *h
	n := len(old)
	x := old[n-1]
	*h = old[:n-1]
	return x
}

func sortHashes(ids []identity.Hash) {
	slices.SortFunc(ids, func(a, b identity.Hash) int {
		return a.Compare(b)
	})
}
