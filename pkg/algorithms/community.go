package algorithms

import (
	"context"
	"fmt"
	"sort"

	"github.com/dd0wney/cluso-tradenet/pkg/network"
)

// DetectCommunities partitions the graph with the Louvain method on its
// undirected projection, where the weight between u and v is
// w(u->v) + w(v->u).
//
// Nodes are visited in ascending identifier order. A node moves only when the
// modularity gain of the best neighbouring community is strictly greater than
// the gain of staying; equal gains between candidates go to the community
// whose smallest current member has the lowest index. Indices follow
// identifier order, so the result is identical on every run.
//
// A graph without nodes yields an *AnalysisError of kind KindEmptyInput. The
// partition is checked before it is returned; a node that is missing or
// assigned twice yields an *AnalysisError wrapping ErrPartitionInvariant.
func DetectCommunities(ctx context.Context, g *network.Graph, opts CommunityOptions) (*Partition, error) {
	if g == nil || g.NodeCount() == 0 {
		return nil, &AnalysisError{Algorithm: "communities", Kind: KindEmptyInput, Cause: network.ErrEmptyInput}
	}
	if opts.MaxPasses <= 0 {
		opts.MaxPasses = DefaultCommunityOptions().MaxPasses
	}
	if opts.Resolution <= 0 {
		opts.Resolution = DefaultCommunityOptions().Resolution
	}

	base := undirectedLevel(g)
	twoM := 0.0
	for _, k := range base.degree {
		twoM += k
	}

	level := base
	levels := 0
	for levels < opts.MaxPasses {
		if err := ctx.Err(); err != nil {
			return nil, cancelledError("communities", err)
		}

		comm, moved := localMoving(level, twoM, opts)
		if !moved {
			break
		}
		levels++
		next := aggregate(level, comm)
		if next.size() == level.size() {
			level = next
			break
		}
		level = next
	}

	communities := make([][]int, 0, level.size())
	for _, members := range level.members {
		communities = append(communities, members)
	}
	if err := checkPartition(g, communities); err != nil {
		return nil, err
	}

	sort.SliceStable(communities, func(i, j int) bool {
		if len(communities[i]) != len(communities[j]) {
			return len(communities[i]) > len(communities[j])
		}
		return communities[i][0] < communities[j][0]
	})

	result := &Partition{
		Communities: make([][]string, len(communities)),
		Modularity:  modularity(base, communities, twoM, opts.Resolution),
		Levels:      levels,
	}
	for c, members := range communities {
		ids := make([]string, len(members))
		for k, i := range members {
			ids[k] = g.NodeID(i)
		}
		result.Communities[c] = ids
	}
	return result, nil
}

// undirectedLevel builds the level-0 graph: one node per graph node, with
// both directions of trade summed into a single undirected weight.
func undirectedLevel(g *network.Graph) *levelGraph {
	n := g.NodeCount()
	lg := &levelGraph{
		adj:     make([][]levelArc, n),
		self:    make([]float64, n),
		degree:  make([]float64, n),
		members: make([][]int, n),
	}

	for i := 0; i < n; i++ {
		out, in := g.Out(i), g.In(i)
		// Merge the two sorted arc lists
		arcs := make([]levelArc, 0, len(out)+len(in))
		a, b := 0, 0
		for a < len(out) || b < len(in) {
			switch {
			case b == len(in) || (a < len(out) && out[a].Node < in[b].Node):
				arcs = append(arcs, levelArc{node: out[a].Node, weight: out[a].Weight})
				a++
			case a == len(out) || in[b].Node < out[a].Node:
				arcs = append(arcs, levelArc{node: in[b].Node, weight: in[b].Weight})
				b++
			default:
				arcs = append(arcs, levelArc{node: out[a].Node, weight: out[a].Weight + in[b].Weight})
				a++
				b++
			}
		}
		lg.adj[i] = arcs
		for _, arc := range arcs {
			lg.degree[i] += arc.weight
		}
		lg.members[i] = []int{i}
	}
	return lg
}

// localMoving runs modularity-gain sweeps over lg until no node moves or the
// sweep cap is reached. It returns each node's community label and whether
// any node moved.
func localMoving(lg *levelGraph, twoM float64, opts CommunityOptions) ([]int, bool) {
	n := lg.size()
	comm := make([]int, n)
	total := make([]float64, n)
	for i := 0; i < n; i++ {
		comm[i] = i
		total[i] = lg.degree[i]
	}

	// Scratch: weight from the current node to each community
	links := make([]float64, n)
	touched := make([]int, 0, 16)

	movedAny := false
	for sweep := 0; sweep < opts.MaxPasses; sweep++ {
		moved := false

		for i := 0; i < n; i++ {
			ci := comm[i]
			ki := lg.degree[i]

			for _, c := range touched {
				links[c] = 0
			}
			touched = touched[:0]
			for _, arc := range lg.adj[i] {
				c := comm[arc.node]
				if links[c] == 0 {
					touched = append(touched, c)
				}
				links[c] += arc.weight
			}

			total[ci] -= ki
			best := ci
			bestGain := links[ci] - opts.Resolution*total[ci]*ki/twoM

			for _, c := range touched {
				if c == ci {
					continue
				}
				gain := links[c] - opts.Resolution*total[c]*ki/twoM
				if gain > bestGain || (gain == bestGain && best != ci && smallestMember(lg, comm, c) < smallestMember(lg, comm, best)) {
					best = c
					bestGain = gain
				}
			}

			total[best] += ki
			if best != ci {
				comm[i] = best
				moved = true
				movedAny = true
			}
		}

		if !moved {
			break
		}
	}
	return comm, movedAny
}

// smallestMember returns the lowest original node index currently assigned
// to community label c.
func smallestMember(lg *levelGraph, comm []int, c int) int {
	lowest := -1
	for j, cj := range comm {
		if cj != c {
			continue
		}
		if m := lg.members[j][0]; lowest < 0 || m < lowest {
			lowest = m
		}
	}
	return lowest
}

// aggregate collapses each community of lg into a single node. New nodes are
// ordered by their smallest original member.
func aggregate(lg *levelGraph, comm []int) *levelGraph {
	groups := make(map[int][]int)
	for i, c := range comm {
		groups[c] = append(groups[c], i)
	}

	labels := make([]int, 0, len(groups))
	first := make(map[int]int, len(groups))
	for c, nodes := range groups {
		labels = append(labels, c)
		lowest := lg.members[nodes[0]][0]
		for _, i := range nodes[1:] {
			lowest = min(lowest, lg.members[i][0])
		}
		first[c] = lowest
	}
	sort.Slice(labels, func(a, b int) bool { return first[labels[a]] < first[labels[b]] })

	index := make(map[int]int, len(labels))
	for k, c := range labels {
		index[c] = k
	}

	next := &levelGraph{
		adj:     make([][]levelArc, len(labels)),
		self:    make([]float64, len(labels)),
		degree:  make([]float64, len(labels)),
		members: make([][]int, len(labels)),
	}

	for k, c := range labels {
		weights := make(map[int]float64)
		for _, i := range groups[c] {
			next.self[k] += lg.self[i]
			next.degree[k] += lg.degree[i]
			next.members[k] = append(next.members[k], lg.members[i]...)
			for _, arc := range lg.adj[i] {
				other := index[comm[arc.node]]
				if other == k {
					// Each internal edge is seen from both ends
					next.self[k] += arc.weight / 2
					continue
				}
				weights[other] += arc.weight
			}
		}
		sort.Ints(next.members[k])

		arcs := make([]levelArc, 0, len(weights))
		for other, w := range weights {
			arcs = append(arcs, levelArc{node: other, weight: w})
		}
		sort.Slice(arcs, func(a, b int) bool { return arcs[a].node < arcs[b].node })
		next.adj[k] = arcs
	}
	return next
}

// checkPartition verifies that communities cover every node exactly once.
func checkPartition(g *network.Graph, communities [][]int) error {
	seen := make([]bool, g.NodeCount())
	count := 0
	for _, members := range communities {
		if len(members) == 0 {
			return &AnalysisError{Algorithm: "communities", Kind: KindPartitionInvariant,
				Cause: fmt.Errorf("%w: empty community", ErrPartitionInvariant)}
		}
		for _, i := range members {
			if i < 0 || i >= len(seen) {
				return &AnalysisError{Algorithm: "communities", Kind: KindPartitionInvariant,
					Cause: fmt.Errorf("%w: unknown node index %d", ErrPartitionInvariant, i)}
			}
			if seen[i] {
				return &AnalysisError{Algorithm: "communities", Kind: KindPartitionInvariant,
					Node: g.NodeID(i), Cause: ErrPartitionInvariant}
			}
			seen[i] = true
			count++
		}
	}
	if count != len(seen) {
		for i, ok := range seen {
			if !ok {
				return &AnalysisError{Algorithm: "communities", Kind: KindPartitionInvariant,
					Node: g.NodeID(i), Cause: ErrPartitionInvariant}
			}
		}
	}
	return nil
}

// modularity computes Q = sum_c [ L_c/m - resolution*(K_c/2m)^2 ] on the
// level-0 graph.
func modularity(base *levelGraph, communities [][]int, twoM, resolution float64) float64 {
	if twoM == 0 {
		return 0
	}
	where := make([]int, base.size())
	for c, members := range communities {
		for _, i := range members {
			where[i] = c
		}
	}

	q := 0.0
	for _, members := range communities {
		internal, total := 0.0, 0.0
		for _, i := range members {
			total += base.degree[i]
			for _, arc := range base.adj[i] {
				if where[arc.node] == where[i] {
					internal += arc.weight
				}
			}
		}
		// internal counted each edge twice
		q += internal/twoM - resolution*(total/twoM)*(total/twoM)
	}
	return q
}
