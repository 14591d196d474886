package algorithms

import (
	"testing"

	"github.com/dd0wney/cluso-tradenet/pkg/network"
)

func flow(reporter, partner string, value float64) network.FlowRecord {
	return network.FlowRecord{Reporter: reporter, Partner: partner, Value: value}
}

// buildTestGraph builds a graph from records and fails the test on error
func buildTestGraph(t *testing.T, records ...network.FlowRecord) *network.Graph {
	t.Helper()

	g, err := network.Build(records)
	if err != nil {
		t.Fatalf("Failed to build graph: %v", err)
	}
	return g
}

// scenarioPairs is two reciprocal pairs with no edges between them
func scenarioPairs(t *testing.T) *network.Graph {
	t.Helper()
	return buildTestGraph(t,
		flow("A", "B", 100),
		flow("B", "A", 90),
		flow("C", "D", 50),
		flow("D", "C", 40),
	)
}

// scoreOf returns a node's score, failing the test if the node is unknown
func scoreOf(t *testing.T, r *CentralityResult, id string) float64 {
	t.Helper()

	s, ok := r.Score(id)
	if !ok {
		t.Fatalf("No score for node %s", id)
	}
	return s
}
