package algorithms

import "github.com/dd0wney/cluso-tradenet/pkg/network"

// DegreeResult holds degree rankings for a trade network.
//
// InDegree and OutDegree count distinct trading partners. InStrength and
// OutStrength are the weighted equivalents (total trade value).
type DegreeResult struct {
	InDegree    []RankedNode `json:"in_degree"`
	OutDegree   []RankedNode `json:"out_degree"`
	InStrength  []RankedNode `json:"in_strength"`
	OutStrength []RankedNode `json:"out_strength"`
}

// DegreeCentrality computes unweighted and weighted in/out degree for every
// node and returns each ranking truncated to topN (all nodes if topN <= 0).
func DegreeCentrality(g *network.Graph, topN int) *DegreeResult {
	n := g.NodeCount()
	in := make([]float64, n)
	out := make([]float64, n)
	inW := make([]float64, n)
	outW := make([]float64, n)

	for i := 0; i < n; i++ {
		for _, a := range g.Out(i) {
			out[i]++
			outW[i] += a.Weight
		}
		for _, a := range g.In(i) {
			in[i]++
			inW[i] += a.Weight
		}
	}

	return &DegreeResult{
		InDegree:    TopN(g, in, topN),
		OutDegree:   TopN(g, out, topN),
		InStrength:  TopN(g, inW, topN),
		OutStrength: TopN(g, outW, topN),
	}
}
