package network

import (
	"math"
	"slices"
	"sort"
)

// FlowRecord is a single directed trade flow as delivered by a flow source:
// Reporter exported Value to Partner.
type FlowRecord struct {
	Reporter string  `json:"reporter"`
	Partner  string  `json:"partner"`
	Value    float64 `json:"value"`
}

// Arc is one endpoint of a merged directed edge as seen from the other end.
type Arc struct {
	Node   int
	Weight float64
}

// Edge is a merged directed edge between two node indices.
type Edge struct {
	From   int
	To     int
	Weight float64
}

// BuildStats describes what the builder did with its input.
type BuildStats struct {
	Records     int `json:"records"`
	SelfLoops   int `json:"self_loops"`
	NonPositive int `json:"non_positive"`
	Anonymous   int `json:"anonymous"`
	Merged      int `json:"merged"`
	// NonFinite counts records whose merged pair summed past the float range.
	NonFinite int `json:"non_finite"`
}

// Dropped returns the number of records excluded from the graph.
func (s BuildStats) Dropped() int {
	return s.SelfLoops + s.NonPositive + s.Anonymous + s.NonFinite
}

// Graph is an immutable directed weighted graph over country identifiers.
//
// Nodes are interned into dense indices assigned in ascending identifier
// order, and adjacency lists are sorted by neighbour index. Every algorithm
// that walks a Graph therefore sees the same iteration order on every run.
// A Graph is safe for concurrent readers; slices returned by Out and In are
// shared and must not be modified.
type Graph struct {
	ids       []string
	index     map[string]int
	out       [][]Arc
	in        [][]Arc
	edgeCount int
	stats     BuildStats
}

// Build constructs a Graph from flow records.
//
// Records with a non-positive or non-finite value, an empty endpoint, or
// Reporter == Partner are dropped. Repeated (Reporter, Partner) pairs are
// merged by summing their values; a pair whose sum overflows to infinity is
// dropped along with every record that fed it. Build returns ErrEmptyInput,
// wrapped in a *GraphError, when no edge survives.
func Build(records []FlowRecord) (*Graph, error) {
	stats := BuildStats{Records: len(records)}

	type pair struct{ from, to string }
	weights := make(map[pair]float64, len(records))
	counts := make(map[pair]int, len(records))

	for _, r := range records {
		switch {
		case r.Reporter == "" || r.Partner == "":
			stats.Anonymous++
			continue
		case r.Reporter == r.Partner:
			stats.SelfLoops++
			continue
		case !(r.Value > 0) || math.IsInf(r.Value, 1):
			stats.NonPositive++
			continue
		}

		key := pair{r.Reporter, r.Partner}
		if _, seen := weights[key]; seen {
			stats.Merged++
		}
		weights[key] += r.Value
		counts[key]++
	}

	names := make(map[string]struct{})
	for key, w := range weights {
		if math.IsInf(w, 0) {
			stats.NonFinite += counts[key]
			stats.Merged -= counts[key] - 1
			delete(weights, key)
			continue
		}
		names[key.from] = struct{}{}
		names[key.to] = struct{}{}
	}

	if len(weights) == 0 {
		return nil, &GraphError{
			Op:      "build",
			Records: stats.Records,
			Dropped: stats.Dropped(),
			Cause:   ErrEmptyInput,
		}
	}

	ids := make([]string, 0, len(names))
	for name := range names {
		ids = append(ids, name)
	}
	sort.Strings(ids)

	g := &Graph{
		ids:       ids,
		index:     make(map[string]int, len(ids)),
		out:       make([][]Arc, len(ids)),
		in:        make([][]Arc, len(ids)),
		edgeCount: len(weights),
		stats:     stats,
	}
	for i, id := range ids {
		g.index[id] = i
	}

	for key, w := range weights {
		from, to := g.index[key.from], g.index[key.to]
		g.out[from] = append(g.out[from], Arc{Node: to, Weight: w})
		g.in[to] = append(g.in[to], Arc{Node: from, Weight: w})
	}
	for i := range ids {
		sortArcs(g.out[i])
		sortArcs(g.in[i])
	}

	return g, nil
}

func sortArcs(arcs []Arc) {
	sort.Slice(arcs, func(i, j int) bool { return arcs[i].Node < arcs[j].Node })
}

// NodeCount returns the number of nodes.
func (g *Graph) NodeCount() int {
	return len(g.ids)
}

// EdgeCount returns the number of merged directed edges.
func (g *Graph) EdgeCount() int {
	return g.edgeCount
}

// Stats returns the filtering statistics recorded while building.
func (g *Graph) Stats() BuildStats {
	return g.stats
}

// NodeID returns the identifier of node index i.
func (g *Graph) NodeID(i int) string {
	return g.ids[i]
}

// Index returns the node index for id.
func (g *Graph) Index(id string) (int, error) {
	i, ok := g.index[id]
	if !ok {
		return -1, unknownNodeError(id)
	}
	return i, nil
}

// Nodes returns all node identifiers in ascending order.
func (g *Graph) Nodes() []string {
	return slices.Clone(g.ids)
}

// Out returns the outgoing arcs of node i, sorted by target index.
func (g *Graph) Out(i int) []Arc {
	return g.out[i]
}

// In returns the incoming arcs of node i, sorted by source index.
func (g *Graph) In(i int) []Arc {
	return g.in[i]
}

// Weight returns the merged weight of the edge from -> to.
func (g *Graph) Weight(from, to string) (float64, bool) {
	fi, ok := g.index[from]
	if !ok {
		return 0, false
	}
	ti, ok := g.index[to]
	if !ok {
		return 0, false
	}
	arcs := g.out[fi]
	k := sort.Search(len(arcs), func(k int) bool { return arcs[k].Node >= ti })
	if k < len(arcs) && arcs[k].Node == ti {
		return arcs[k].Weight, true
	}
	return 0, false
}

// Edges returns every merged edge ordered by (From, To).
func (g *Graph) Edges() []Edge {
	edges := make([]Edge, 0, g.edgeCount)
	for from, arcs := range g.out {
		for _, a := range arcs {
			edges = append(edges, Edge{From: from, To: a.Node, Weight: a.Weight})
		}
	}
	return edges
}

// TotalWeight returns the sum of all edge weights.
func (g *Graph) TotalWeight() float64 {
	total := 0.0
	for _, arcs := range g.out {
		for _, a := range arcs {
			total += a.Weight
		}
	}
	return total
}
