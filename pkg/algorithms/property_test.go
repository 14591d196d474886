package algorithms

import (
	"context"
	"reflect"
	"slices"
	"testing"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"

	"github.com/dd0wney/cluso-tradenet/pkg/network"
)

var propertyCountries = []string{"ARG", "AUS", "BRA", "CHN", "DEU", "FRA", "IND", "JPN"}

// graphFromCodes decodes generated integers into a graph. Each code picks a
// reporter, a partner and a positive value; self-loops are dropped by the
// builder. ok is false when nothing survives.
func graphFromCodes(codes []int, reverse bool) (*network.Graph, bool) {
	n := len(propertyCountries)
	records := make([]network.FlowRecord, 0, len(codes))
	for _, code := range codes {
		records = append(records, network.FlowRecord{
			Reporter: propertyCountries[code%n],
			Partner:  propertyCountries[(code/n)%n],
			Value:    float64(1 + code%9),
		})
	}
	if reverse {
		slices.Reverse(records)
	}
	g, err := network.Build(records)
	return g, err == nil
}

var codesGen = gen.SliceOfN(24, gen.IntRange(0, 8*8*9-1))

// TestAnalysisProperties uses property-based testing to verify analysis invariants
func TestAnalysisProperties(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping property-based test in short mode")
	}

	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 100

	properties := gopter.NewProperties(parameters)

	properties.Property("degree sum law", prop.ForAll(
		func(codes []int) bool {
			g, ok := graphFromCodes(codes, false)
			if !ok {
				return true
			}
			result := DegreeCentrality(g, 0)
			in, out := 0.0, 0.0
			for _, rn := range result.InDegree {
				in += rn.Score
			}
			for _, rn := range result.OutDegree {
				out += rn.Score
			}
			return int(in) == g.EdgeCount() && int(out) == g.EdgeCount()
		},
		codesGen,
	))

	properties.Property("partition covers every node exactly once", prop.ForAll(
		func(codes []int) bool {
			g, ok := graphFromCodes(codes, false)
			if !ok {
				return true
			}
			partition, err := DetectCommunities(context.Background(), g, DefaultCommunityOptions())
			if err != nil {
				return false
			}
			var members []string
			for _, c := range partition.Communities {
				if len(c) == 0 || !slices.IsSorted(c) {
					return false
				}
				members = append(members, c...)
			}
			slices.Sort(members)
			return slices.Equal(members, g.Nodes())
		},
		codesGen,
	))

	properties.Property("communities ordered by size then smallest member", prop.ForAll(
		func(codes []int) bool {
			g, ok := graphFromCodes(codes, false)
			if !ok {
				return true
			}
			partition, err := DetectCommunities(context.Background(), g, DefaultCommunityOptions())
			if err != nil {
				return false
			}
			cs := partition.Communities
			for i := 1; i < len(cs); i++ {
				if len(cs[i-1]) < len(cs[i]) {
					return false
				}
				if len(cs[i-1]) == len(cs[i]) && cs[i-1][0] > cs[i][0] {
					return false
				}
			}
			return true
		},
		codesGen,
	))

	properties.Property("normalized betweenness lies in [0, 1]", prop.ForAll(
		func(codes []int) bool {
			g, ok := graphFromCodes(codes, false)
			if !ok {
				return true
			}
			result, err := BetweennessCentrality(context.Background(), g, DefaultBetweennessOptions())
			if err != nil {
				return false
			}
			for _, s := range result.Scores {
				if s < 0 || s > 1+1e-12 {
					return false
				}
			}
			return true
		},
		codesGen,
	))

	properties.Property("record order does not change any result", prop.ForAll(
		func(codes []int) bool {
			g1, ok := graphFromCodes(codes, false)
			if !ok {
				return true
			}
			g2, _ := graphFromCodes(codes, true)
			ctx := context.Background()

			if !reflect.DeepEqual(DegreeCentrality(g1, 5), DegreeCentrality(g2, 5)) {
				return false
			}

			b1, err1 := BetweennessCentrality(ctx, g1, DefaultBetweennessOptions())
			b2, err2 := BetweennessCentrality(ctx, g2, DefaultBetweennessOptions())
			if err1 != nil || err2 != nil || !slices.Equal(b1.Scores, b2.Scores) {
				return false
			}

			e1, err1 := EigenvectorCentrality(ctx, g1, DefaultEigenvectorOptions())
			e2, err2 := EigenvectorCentrality(ctx, g2, DefaultEigenvectorOptions())
			if KindOf(err1) != KindOf(err2) {
				return false
			}
			if err1 == nil && !slices.Equal(e1.Scores, e2.Scores) {
				return false
			}

			p1, err1 := DetectCommunities(ctx, g1, DefaultCommunityOptions())
			p2, err2 := DetectCommunities(ctx, g2, DefaultCommunityOptions())
			return err1 == nil && err2 == nil && reflect.DeepEqual(p1, p2)
		},
		codesGen,
	))

	properties.TestingRun(t)
}
