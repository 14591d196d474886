package network

import (
	"math"
	"testing"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
)

var propertyCountries = []string{"AUS", "BRA", "CHN", "DEU", "IND", "USA"}

// recordsFromCodes decodes generated integers into flow records. Each code
// picks a reporter, a partner and a value in [-1, 5], so the generated input
// contains self-loops, duplicates and non-positive values.
func recordsFromCodes(codes []int) []FlowRecord {
	n := len(propertyCountries)
	records := make([]FlowRecord, 0, len(codes))
	for _, code := range codes {
		records = append(records, FlowRecord{
			Reporter: propertyCountries[code%n],
			Partner:  propertyCountries[(code/n)%n],
			Value:    float64(code%7) - 1,
		})
	}
	return records
}

// TestBuildInvariants uses property-based testing to verify builder invariants
func TestBuildInvariants(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping property-based test in short mode")
	}

	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 200

	properties := gopter.NewProperties(parameters)

	properties.Property("total weight equals sum of usable records", prop.ForAll(
		func(codes []int) bool {
			records := recordsFromCodes(codes)
			want := 0.0
			for _, r := range records {
				if r.Reporter != r.Partner && r.Value > 0 {
					want += r.Value
				}
			}

			g, err := Build(records)
			if want == 0 {
				return IsEmptyInput(err)
			}
			if err != nil {
				return false
			}
			return math.Abs(g.TotalWeight()-want) < 1e-9
		},
		gen.SliceOf(gen.IntRange(0, 251)),
	))

	properties.Property("graph never contains self-loops or duplicate edges", prop.ForAll(
		func(codes []int) bool {
			g, err := Build(recordsFromCodes(codes))
			if err != nil {
				return IsEmptyInput(err)
			}
			for from := 0; from < g.NodeCount(); from++ {
				prev := -1
				for _, a := range g.Out(from) {
					if a.Node == from || a.Node <= prev || !(a.Weight > 0) {
						return false
					}
					prev = a.Node
				}
			}
			return len(g.Edges()) == g.EdgeCount()
		},
		gen.SliceOf(gen.IntRange(0, 251)),
	))

	properties.Property("every node has at least one incident edge", prop.ForAll(
		func(codes []int) bool {
			g, err := Build(recordsFromCodes(codes))
			if err != nil {
				return IsEmptyInput(err)
			}
			for i := 0; i < g.NodeCount(); i++ {
				if len(g.Out(i))+len(g.In(i)) == 0 {
					return false
				}
			}
			return true
		},
		gen.SliceOf(gen.IntRange(0, 251)),
	))

	properties.TestingRun(t)
}
