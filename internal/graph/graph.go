// Package graph maintains the in-memory undirected social graph the
// anomaly pipeline traverses. The graph is owned by the controller, which
// serializes all access; the type itself is not safe for concurrent use.
package graph

// Graph maps each user id to the set of directly connected user ids.
// Invariant: adjacency is symmetric — u is in Neighbors(v) exactly when v
// is in Neighbors(u). Vertices are created lazily on first reference and
// never removed, even once all their edges are gone.
type Graph struct {
	adjacency map[string]map[string]struct{}
}

// New returns an empty social graph.
func New() *Graph {
	return &Graph{adjacency: make(map[string]map[string]struct{})}
}

// AddVertex creates an empty adjacency entry for u if it does not exist.
// Idempotent.
func (g *Graph) AddVertex(u string) {
	if _, ok := g.adjacency[u]; !ok {
		g.adjacency[u] = make(map[string]struct{})
	}
}

// AddEdge connects u and v, creating either vertex as needed. Befriending
// an already-connected pair is a no-op.
func (g *Graph) AddEdge(u, v string) {
	g.AddVertex(u)
	g.AddVertex(v)
	g.adjacency[u][v] = struct{}{}
	g.adjacency[v][u] = struct{}{}
}

// RemoveEdge disconnects u and v. Unfriending a pair with no existing edge
// is tolerated as a silent no-op; vertices are left in place.
func (g *Graph) RemoveEdge(u, v string) {
	if edges, ok := g.adjacency[u]; ok {
		delete(edges, v)
	}
	if edges, ok := g.adjacency[v]; ok {
		delete(edges, u)
	}
}

// HasEdge reports whether u and v are directly connected.
func (g *Graph) HasEdge(u, v string) bool {
	_, ok := g.adjacency[u][v]
	return ok
}

// HasVertex reports whether u has ever been referenced.
func (g *Graph) HasVertex(u string) bool {
	_, ok := g.adjacency[u]
	return ok
}

// Degree returns the number of direct connections of u.
func (g *Graph) Degree(u string) int {
	return len(g.adjacency[u])
}

// Size returns the number of vertices.
func (g *Graph) Size() int {
	return len(g.adjacency)
}
