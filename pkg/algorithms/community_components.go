package algorithms

import (
	"container/list"
	"slices"

	"github.com/dd0wney/cluso-tradenet/pkg/network"
)

// ConnectedComponents finds the weakly connected components of the graph,
// ignoring edge direction. Components are discovered from the lowest node
// index upward, so each component's first member is its smallest identifier.
func ConnectedComponents(g *network.Graph) [][]string {
	n := g.NodeCount()
	visited := make([]bool, n)
	components := make([][]string, 0)

	// BFS to find each component
	for start := 0; start < n; start++ {
		if visited[start] {
			continue
		}

		members := make([]int, 0)
		queue := list.New()
		queue.PushBack(start)
		visited[start] = true

		for queue.Len() > 0 {
			v, ok := queue.Remove(queue.Front()).(int)
			if !ok {
				continue
			}
			members = append(members, v)

			// Both incoming and outgoing neighbours
			for _, arcs := range [][]network.Arc{g.Out(v), g.In(v)} {
				for _, a := range arcs {
					if !visited[a.Node] {
						visited[a.Node] = true
						queue.PushBack(a.Node)
					}
				}
			}
		}

		slices.Sort(members)
		ids := make([]string, len(members))
		for k, i := range members {
			ids[k] = g.NodeID(i)
		}
		components = append(components, ids)
	}

	return components
}
