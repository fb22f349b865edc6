package service

import (
	"github.com/guttosm/pack-assistant/internal/domain/model"
)

// ConnectionGraph is an undirected graph over unit ids. An edge means the
// two units must share a box. It is owned by a single packing session and
// is not safe for concurrent use.
type ConnectionGraph struct {
	edges  []model.Connection
	byID   map[string]int
	byPair map[pairKey]string
}

// pairKey is the unordered endpoint pair of an edge.
type pairKey struct {
	a, b string
}

func newPairKey(from, to string) pairKey {
	if from > to {
		from, to = to, from
	}
	return pairKey{a: from, b: to}
}

// NewConnectionGraph returns an empty graph.
func NewConnectionGraph() *ConnectionGraph {
	return &ConnectionGraph{
		byID:   make(map[string]int),
		byPair: make(map[pairKey]string),
	}
}

// ConnectionID returns the id assigned to an edge created from -> to.
func ConnectionID(from, to string) string {
	return from + "->" + to
}

// AddEdge links two units. Self edges are ignored and return false. Adding
// an edge for a pair that is already linked returns the stored connection.
func (g *ConnectionGraph) AddEdge(from, to string) (model.Connection, bool) {
	if from == to {
		return model.Connection{}, false
	}

	key := newPairKey(from, to)
	if id, ok := g.byPair[key]; ok {
		return g.edges[g.byID[id]], true
	}

	conn := model.Connection{ID: ConnectionID(from, to), From: from, To: to}
	g.byID[conn.ID] = len(g.edges)
	g.byPair[key] = conn.ID
	g.edges = append(g.edges, conn)
	return conn, true
}

// RemoveEdge deletes a connection by id. Unknown ids are ignored.
func (g *ConnectionGraph) RemoveEdge(connectionID string) bool {
	idx, ok := g.byID[connectionID]
	if !ok {
		return false
	}
	conn := g.edges[idx]
	g.edges = append(g.edges[:idx], g.edges[idx+1:]...)
	g.reindex()
	delete(g.byPair, newPairKey(conn.From, conn.To))
	return true
}

// RemoveEdgesOf deletes every edge touching the unit and returns how many were removed.
func (g *ConnectionGraph) RemoveEdgesOf(unitID string) int {
	kept := g.edges[:0]
	removed := 0
	for _, conn := range g.edges {
		if conn.From == unitID || conn.To == unitID {
			delete(g.byPair, newPairKey(conn.From, conn.To))
			removed++
			continue
		}
		kept = append(kept, conn)
	}
	g.edges = kept
	g.reindex()
	return removed
}

// Prune drops edges whose endpoints are not in the valid set and returns how many were dropped.
func (g *ConnectionGraph) Prune(valid map[string]struct{}) int {
	kept := g.edges[:0]
	dropped := 0
	for _, conn := range g.edges {
		_, fromOK := valid[conn.From]
		_, toOK := valid[conn.To]
		if !fromOK || !toOK {
			delete(g.byPair, newPairKey(conn.From, conn.To))
			dropped++
			continue
		}
		kept = append(kept, conn)
	}
	g.edges = kept
	g.reindex()
	return dropped
}

func (g *ConnectionGraph) reindex() {
	g.byID = make(map[string]int, len(g.edges))
	for i, conn := range g.edges {
		g.byID[conn.ID] = i
	}
}

// Edges returns the connections in creation order.
func (g *ConnectionGraph) Edges() []model.Connection {
	out := make([]model.Connection, len(g.edges))
	copy(out, g.edges)
	return out
}

// Len returns the number of edges.
func (g *ConnectionGraph) Len() int {
	return len(g.edges)
}

// ConnectedComponents partitions the given unit ids into connected
// components. Every id appears in exactly one component, singletons
// included. Components are ordered by the position of their earliest member
// in allUnitIDs and members keep their input order. Edges touching ids that
// are not in allUnitIDs are ignored.
func (g *ConnectionGraph) ConnectedComponents(allUnitIDs []string) [][]string {
	position := make(map[string]int, len(allUnitIDs))
	for i, id := range allUnitIDs {
		if _, seen := position[id]; !seen {
			position[id] = i
		}
	}

	uf := newUnionFind(len(allUnitIDs))
	for _, conn := range g.edges {
		a, okA := position[conn.From]
		b, okB := position[conn.To]
		if okA && okB {
			uf.union(a, b)
		}
	}

	componentOf := make(map[int]int)
	var components [][]string
	for i, id := range allUnitIDs {
		if position[id] != i {
			continue
		}
		root := uf.find(i)
		idx, ok := componentOf[root]
		if !ok {
			idx = len(components)
			componentOf[root] = idx
			components = append(components, nil)
		}
		components[idx] = append(components[idx], id)
	}
	return components
}

// unionFind is a disjoint-set forest with path halving and union by size.
type unionFind struct {
	parent []int
	size   []int
}

func newUnionFind(n int) *unionFind {
	uf := &unionFind{parent: make([]int, n), size: make([]int, n)}
	for i := range uf.parent {
		uf.parent[i] = i
		uf.size[i] = 1
	}
	return uf
}

func (uf *unionFind) find(x int) int {
	for uf.parent[x] != x {
		uf.parent[x] = uf.parent[uf.parent[x]]
		x = uf.parent[x]
	}
	return x
}

func (uf *unionFind) union(a, b int) {
	ra, rb := uf.find(a), uf.find(b)
	if ra == rb {
		return
	}
	if uf.size[ra] < uf.size[rb] {
		ra, rb = rb, ra
	}
	uf.parent[rb] = ra
	uf.size[ra] += uf.size[rb]
}
