package graph

// WithinDegree returns the set of user ids reachable from origin within
// the given number of hops, excluding origin itself. It expands the graph
// breadth-first one level per hop, so degree 0 yields the empty set and
// degree 1 yields direct friends only. Each user is visited at most once;
// the cost is bounded by the size of the visited subgraph.
func (g *Graph) WithinDegree(origin string, degree int) map[string]struct{} {
	visited := make(map[string]struct{})
	if degree <= 0 {
		return visited
	}

	frontier := []string{origin}
	for level := 0; level < degree && len(frontier) > 0; level++ {
		var next []string
		for _, u := range frontier {
			for v := range g.adjacency[u] {
				if v == origin {
					continue
				}
				if _, seen := visited[v]; seen {
					continue
				}
				visited[v] = struct{}{}
				next = append(next, v)
			}
		}
		frontier = next
	}
	return visited
}
