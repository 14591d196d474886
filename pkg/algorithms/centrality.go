package algorithms

import (
	"container/heap"
	"context"
	"errors"
	"fmt"
	"math"

	"github.com/dd0wney/cluso-tradenet/pkg/network"
	"github.com/dd0wney/cluso-tradenet/pkg/parallel"
)

// WeightPolicy selects how edge weights become shortest-path costs.
type WeightPolicy string

const (
	// WeightAsDistance uses the trade value itself as the traversal cost, so
	// heavier trade means a longer path. This reproduces the convention of the
	// trade dashboard the engine replaces.
	WeightAsDistance WeightPolicy = "distance"
	// WeightInverse uses 1/value as the cost, so heavier trade means a shorter
	// path.
	WeightInverse WeightPolicy = "inverse"
)

// Valid reports whether p is a known policy.
func (p WeightPolicy) Valid() bool {
	return p == WeightAsDistance || p == WeightInverse
}

func (p WeightPolicy) cost(w float64) float64 {
	if p == WeightInverse {
		return 1 / w
	}
	return w
}

// shardSize is the number of source nodes processed per pool task. It is
// fixed so partial sums are always merged in the same order regardless of the
// worker count.
const shardSize = 16

// BetweennessOptions configures betweenness centrality
type BetweennessOptions struct {
	WeightPolicy WeightPolicy
	Workers      int // <= 0 uses GOMAXPROCS
	TopN         int
}

// DefaultBetweennessOptions returns default betweenness configuration
func DefaultBetweennessOptions() BetweennessOptions {
	return BetweennessOptions{
		WeightPolicy: WeightAsDistance,
		TopN:         20,
	}
}

// CentralityResult contains centrality scores for all nodes
type CentralityResult struct {
	Algorithm  string
	Scores     []float64    // Score per node index
	Top        []RankedNode // Top N nodes by score
	Iterations int          // Power iterations performed (eigenvector only)
	Skipped    []string     // Sources whose shortest-path pass was dropped (betweenness only)

	graph *network.Graph
}

// Score returns the score of node id.
func (r *CentralityResult) Score(id string) (float64, bool) {
	i, err := r.graph.Index(id)
	if err != nil {
		return 0, false
	}
	return r.Scores[i], true
}

// Degraded reports whether some shortest-path passes were dropped.
func (r *CentralityResult) Degraded() bool {
	return len(r.Skipped) > 0
}

// BetweennessCentrality computes weighted betweenness centrality using
// Brandes' algorithm with Dijkstra single-source passes, normalized by
// (n-1)(n-2) for a directed graph.
//
// A source whose pass produces a non-finite distance or path count, or that
// panics, is skipped. Its contribution is left out and the partial result is
// returned together with an *AnalysisError wrapping ErrDegradedPath. The
// context is checked between source passes.
func BetweennessCentrality(ctx context.Context, g *network.Graph, opts BetweennessOptions) (*CentralityResult, error) {
	if opts.WeightPolicy == "" {
		opts.WeightPolicy = WeightAsDistance
	}
	if !opts.WeightPolicy.Valid() {
		return nil, fmt.Errorf("betweenness: unknown weight policy %q", opts.WeightPolicy)
	}

	n := g.NodeCount()
	shards := (n + shardSize - 1) / shardSize
	partials := make([][]float64, shards)
	skipped := make([][]int, shards)

	pool, err := parallel.NewWorkerPool(opts.Workers)
	if err != nil {
		return nil, err
	}
	defer pool.Close()

	errs := pool.ForEach(ctx, shards, func(ctx context.Context, shard int) error {
		acc := make([]float64, n)
		ws := newBrandesWorkspace(n)
		lo, hi := shard*shardSize, min((shard+1)*shardSize, n)

		for s := lo; s < hi; s++ {
			if err := ctx.Err(); err != nil {
				return err
			}
			if err := ws.run(g, s, opts.WeightPolicy); err != nil {
				skipped[shard] = append(skipped[shard], s)
				continue
			}
			ws.accumulate(s, acc)
		}
		partials[shard] = acc
		return nil
	})

	scores := make([]float64, n)
	var dropped []string
	for shard, err := range errs {
		if err != nil {
			if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
				return nil, cancelledError("betweenness", err)
			}
			// A panic outside a source pass loses the whole shard
			lo, hi := shard*shardSize, min((shard+1)*shardSize, n)
			for s := lo; s < hi; s++ {
				dropped = append(dropped, g.NodeID(s))
			}
			continue
		}
		for _, s := range skipped[shard] {
			dropped = append(dropped, g.NodeID(s))
		}
		for i, v := range partials[shard] {
			scores[i] += v
		}
	}

	if n > 2 {
		scale := 1.0 / float64((n-1)*(n-2))
		for i := range scores {
			scores[i] *= scale
		}
	} else {
		clear(scores)
	}

	result := &CentralityResult{
		Algorithm: "betweenness",
		Scores:    scores,
		Top:       TopN(g, scores, opts.TopN),
		Skipped:   dropped,
		graph:     g,
	}
	if len(dropped) > 0 {
		return result, &AnalysisError{
			Algorithm: "betweenness",
			Kind:      KindDegradedPath,
			Sources:   dropped,
			Cause:     ErrDegradedPath,
		}
	}
	return result, nil
}

// brandesWorkspace holds the per-source state of one Brandes pass. It is
// reused across the sources of a shard.
type brandesWorkspace struct {
	dist    []float64
	sigma   []float64
	delta   []float64
	reached []bool
	settled []bool
	preds   [][]int
	order   []int // Nodes in non-decreasing distance order
	queue   distQueue
}

func newBrandesWorkspace(n int) *brandesWorkspace {
	return &brandesWorkspace{
		dist:    make([]float64, n),
		sigma:   make([]float64, n),
		delta:   make([]float64, n),
		reached: make([]bool, n),
		settled: make([]bool, n),
		preds:   make([][]int, n),
		order:   make([]int, 0, n),
	}
}

func (ws *brandesWorkspace) reset() {
	clear(ws.dist)
	clear(ws.sigma)
	clear(ws.delta)
	clear(ws.reached)
	clear(ws.settled)
	for i := range ws.preds {
		ws.preds[i] = ws.preds[i][:0]
	}
	ws.order = ws.order[:0]
	ws.queue = ws.queue[:0]
}

// run performs the Dijkstra phase from source s, counting shortest paths.
func (ws *brandesWorkspace) run(g *network.Graph, s int, policy WeightPolicy) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("source %s: %v", g.NodeID(s), r)
		}
	}()

	ws.reset()
	ws.sigma[s] = 1
	ws.reached[s] = true
	heap.Push(&ws.queue, distItem{node: s})

	for ws.queue.Len() > 0 {
		item := heap.Pop(&ws.queue).(distItem)
		v := item.node
		if ws.settled[v] {
			continue
		}
		ws.settled[v] = true
		ws.order = append(ws.order, v)

		for _, a := range g.Out(v) {
			w := a.Node
			d := ws.dist[v] + policy.cost(a.Weight)
			if math.IsNaN(d) || math.IsInf(d, 0) {
				return fmt.Errorf("source %s: non-finite distance to %s", g.NodeID(s), g.NodeID(w))
			}
			switch {
			case !ws.reached[w] || d < ws.dist[w]:
				ws.reached[w] = true
				ws.dist[w] = d
				ws.sigma[w] = ws.sigma[v]
				ws.preds[w] = append(ws.preds[w][:0], v)
				heap.Push(&ws.queue, distItem{node: w, dist: d})
			case d == ws.dist[w] && !ws.settled[w]:
				ws.sigma[w] += ws.sigma[v]
				ws.preds[w] = append(ws.preds[w], v)
			}
			if math.IsInf(ws.sigma[w], 0) {
				return fmt.Errorf("source %s: path count overflow at %s", g.NodeID(s), g.NodeID(w))
			}
		}
	}
	return nil
}

// accumulate back-propagates dependencies in reverse distance order and adds
// them to acc.
func (ws *brandesWorkspace) accumulate(s int, acc []float64) {
	for k := len(ws.order) - 1; k >= 0; k-- {
		w := ws.order[k]
		coeff := (1 + ws.delta[w]) / ws.sigma[w]
		for _, v := range ws.preds[w] {
			ws.delta[v] += ws.sigma[v] * coeff
		}
		if w != s {
			acc[w] += ws.delta[w]
		}
	}
}

type distItem struct {
	node int
	dist float64
}

// distQueue is a min-heap on (dist, node).
type distQueue []distItem

func (q distQueue) Len() int { return len(q) }
func (q distQueue) Less(i, j int) bool {
	if q[i].dist != q[j].dist {
		return q[i].dist < q[j].dist
	}
	return q[i].node < q[j].node
}
func (q distQueue) Swap(i, j int) { q[i], q[j] = q[j], q[i] }

func (q *distQueue) Push(x any) {
	*q = append(*q, x.(distItem))
}

func (q *distQueue) Pop() any {
	old := *q
	n := len(old)
	x := old[n-1]
	*q = old[0 : n-1]
	return x
}
