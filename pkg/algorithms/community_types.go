package algorithms

// CommunityOptions configures Louvain community detection
type CommunityOptions struct {
	MaxPasses  int     // Cap on local-moving sweeps per level and on levels
	Resolution float64 // Modularity resolution; 1 is standard modularity
}

// DefaultCommunityOptions returns default community detection configuration
func DefaultCommunityOptions() CommunityOptions {
	return CommunityOptions{
		MaxPasses:  100,
		Resolution: 1,
	}
}

// Partition is a set partition of the graph's nodes into communities.
// Communities are ordered by descending size, ties broken by smallest member;
// members are sorted ascending.
type Partition struct {
	Communities [][]string `json:"communities"`
	Modularity  float64    `json:"modularity"`
	Levels      int        `json:"levels"`
}

// Membership returns a node -> community position lookup.
func (p *Partition) Membership() map[string]int {
	m := make(map[string]int)
	for c, members := range p.Communities {
		for _, id := range members {
			m[id] = c
		}
	}
	return m
}

// levelGraph is the undirected weighted graph Louvain works on at one level.
// Each node is a community of the level below.
type levelGraph struct {
	adj     [][]levelArc // Sorted by neighbour, no self entries
	self    []float64    // Self-loop weight, counted once
	degree  []float64    // Weighted degree, self-loops counted twice
	members [][]int      // Original node indices, ascending
}

type levelArc struct {
	node   int
	weight float64
}

func (lg *levelGraph) size() int {
	return len(lg.adj)
}
