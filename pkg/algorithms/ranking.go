package algorithms

import (
	"container/heap"

	"github.com/dd0wney/cluso-tradenet/pkg/network"
)

// RankedNode represents a node with its score
type RankedNode struct {
	Node  string  `json:"node"`
	Score float64 `json:"score"`
}

// ranksBefore orders by descending score, then ascending node identifier.
func ranksBefore(a, b RankedNode) bool {
	if a.Score != b.Score {
		return a.Score > b.Score
	}
	return a.Node < b.Node
}

// rankedNodeHeap implements a min-heap of RankedNode where the root is the
// node that ranks last. Keeping at most N elements yields the top N in
// O(n log N).
type rankedNodeHeap []RankedNode

func (h rankedNodeHeap) Len() int           { return len(h) }
func (h rankedNodeHeap) Less(i, j int) bool { return ranksBefore(h[j], h[i]) }
func (h rankedNodeHeap) Swap(i, j int)      { h[i], h[j] = h[j], h[i] }

func (h *rankedNodeHeap) Push(x any) {
	*h = append(*h, x.(RankedNode))
}

func (h *rankedNodeHeap) Pop() any {
	old := *h
	n := len(old)
	x := old[n-1]
	*h = old[0 : n-1]
	return x
}

// TopN returns the n best-ranked nodes of g given per-index scores, ordered
// by descending score with ties broken by ascending node identifier. A
// non-positive n returns every node.
func TopN(g *network.Graph, scores []float64, n int) []RankedNode {
	if n <= 0 || n > len(scores) {
		n = len(scores)
	}
	if n == 0 {
		return []RankedNode{}
	}

	h := make(rankedNodeHeap, 0, n)
	heap.Init(&h)

	for i, score := range scores {
		rn := RankedNode{Node: g.NodeID(i), Score: score}
		if h.Len() < n {
			heap.Push(&h, rn)
		} else if ranksBefore(rn, h[0]) {
			heap.Pop(&h)
			heap.Push(&h, rn)
		}
	}

	// Pop worst-first and fill from the back
	result := make([]RankedNode, h.Len())
	for i := len(result) - 1; i >= 0; i-- {
		result[i] = heap.Pop(&h).(RankedNode)
	}
	return result
}
