// Package graph provides the directed graph underlying causal models,
// with d-separation, ancestral closures and the edge surgeries used to
// reason about interventions.
package graph

import (
	"errors"
	"sort"

	dgraph "github.com/dominikbraun/graph"
)

// ErrCyclicGraph is returned by operations that require an acyclic
// graph.
var ErrCyclicGraph = errors.New("graph: requires an acyclic graph")

// CausalGraph is a directed graph over string-identified nodes with
// optional per-node payloads (positions, distribution descriptors).
// Cycles are representable; operations that need a DAG check first and
// fail with ErrCyclicGraph.
//
// Adjacency and the Undirected/Complete views are derived lazily from
// the underlying graph and cached; any mutation invalidates them.
type CausalGraph struct {
	inner dgraph.Graph[string, string]
	data  map[string]any

	adjacency    map[string]map[string]bool
	predecessors map[string]map[string]bool
	undirected   *CausalGraph
	complete     *CausalGraph
}

// NewCausalGraph creates an empty graph.
func NewCausalGraph() *CausalGraph {
	return &CausalGraph{
		inner: dgraph.New(dgraph.StringHash, dgraph.Directed()),
		data:  make(map[string]any),
	}
}

// NewCausalGraphFromEdges creates a graph containing the given edges.
func NewCausalGraphFromEdges(edges [][2]string) *CausalGraph {
	g := NewCausalGraph()
	for _, e := range edges {
		g.AddEdge(e[0], e[1])
	}
	return g
}

func (g *CausalGraph) invalidate() {
	g.adjacency = nil
	g.predecessors = nil
	g.undirected = nil
	g.complete = nil
}

// AddNode adds a node, optionally attaching a payload. Adding an
// existing node only updates the payload.
func (g *CausalGraph) AddNode(node string, data ...any) {
	g.invalidate()
	_ = g.inner.AddVertex(node)
	if len(data) > 0 {
		g.data[node] = data[len(data)-1]
	}
}

// SetNodeData attaches a payload to an existing node.
func (g *CausalGraph) SetNodeData(node string, data any) {
	g.data[node] = data
}

// NodeData returns the payload attached to node, or nil.
func (g *CausalGraph) NodeData(node string) any {
	return g.data[node]
}

// AddEdge adds the directed edge from -> to, creating the endpoints if
// needed. Anti-parallel edges are allowed and model undirected edges.
func (g *CausalGraph) AddEdge(from, to string) {
	g.invalidate()
	_ = g.inner.AddVertex(from)
	_ = g.inner.AddVertex(to)
	_ = g.inner.AddEdge(from, to)
}

// RemoveEdge removes the directed edge from -> to if present.
func (g *CausalGraph) RemoveEdge(from, to string) {
	g.invalidate()
	_ = g.inner.RemoveEdge(from, to)
}

// RemoveNode removes a node together with its incident edges.
func (g *CausalGraph) RemoveNode(node string) {
	g.invalidate()
	for _, child := range g.childrenOf(node) {
		_ = g.inner.RemoveEdge(node, child)
	}
	for _, parent := range g.parentsOf(node) {
		_ = g.inner.RemoveEdge(parent, node)
	}
	g.invalidate()
	_ = g.inner.RemoveVertex(node)
	delete(g.data, node)
}

// HasNode reports whether node is part of the graph.
func (g *CausalGraph) HasNode(node string) bool {
	_, ok := g.adj()[node]
	return ok
}

// HasEdge reports whether the directed edge from -> to exists.
func (g *CausalGraph) HasEdge(from, to string) bool {
	return g.adj()[from][to]
}

// Nodes returns all nodes in sorted order.
func (g *CausalGraph) Nodes() []string {
	adj := g.adj()
	nodes := make([]string, 0, len(adj))
	for n := range adj {
		nodes = append(nodes, n)
	}
	sort.Strings(nodes)
	return nodes
}

// Edges returns all directed edges as [from, to] pairs, sorted.
func (g *CausalGraph) Edges() [][2]string {
	edges := make([][2]string, 0)
	for _, from := range g.Nodes() {
		for _, to := range g.childrenOf(from) {
			edges = append(edges, [2]string{from, to})
		}
	}
	return edges
}

// EdgesFrom returns the edges leaving node, sorted by target.
func (g *CausalGraph) EdgesFrom(node string) [][2]string {
	edges := make([][2]string, 0)
	for _, to := range g.childrenOf(node) {
		edges = append(edges, [2]string{node, to})
	}
	return edges
}

// EdgesInto returns the edges entering node, sorted by source.
func (g *CausalGraph) EdgesInto(node string) [][2]string {
	edges := make([][2]string, 0)
	for _, from := range g.parentsOf(node) {
		edges = append(edges, [2]string{from, node})
	}
	return edges
}

// InDegree returns the number of edges entering node.
func (g *CausalGraph) InDegree(node string) int {
	return len(g.pred()[node])
}

// OutDegree returns the number of edges leaving node.
func (g *CausalGraph) OutDegree(node string) int {
	return len(g.adj()[node])
}

// Roots returns the nodes with in-degree zero, sorted.
func (g *CausalGraph) Roots() []string {
	roots := make([]string, 0)
	for _, n := range g.Nodes() {
		if g.InDegree(n) == 0 {
			roots = append(roots, n)
		}
	}
	return roots
}

// Copy returns a deep structural copy; node payloads are shared.
func (g *CausalGraph) Copy() *CausalGraph {
	res := NewCausalGraph()
	for _, n := range g.Nodes() {
		res.AddNode(n)
		if d, ok := g.data[n]; ok {
			res.data[n] = d
		}
	}
	for _, e := range g.Edges() {
		res.AddEdge(e[0], e[1])
	}
	return res
}

// adj returns the cached child adjacency, rebuilding it on demand.
func (g *CausalGraph) adj() map[string]map[string]bool {
	if g.adjacency == nil {
		m, err := g.inner.AdjacencyMap()
		if err != nil {
			m = map[string]map[string]dgraph.Edge[string]{}
		}
		g.adjacency = make(map[string]map[string]bool, len(m))
		for from, targets := range m {
			set := make(map[string]bool, len(targets))
			for to := range targets {
				set[to] = true
			}
			g.adjacency[from] = set
		}
	}
	return g.adjacency
}

// pred returns the cached parent adjacency, rebuilding it on demand.
func (g *CausalGraph) pred() map[string]map[string]bool {
	if g.predecessors == nil {
		m, err := g.inner.PredecessorMap()
		if err != nil {
			m = map[string]map[string]dgraph.Edge[string]{}
		}
		g.predecessors = make(map[string]map[string]bool, len(m))
		for to, sources := range m {
			set := make(map[string]bool, len(sources))
			for from := range sources {
				set[from] = true
			}
			g.predecessors[to] = set
		}
	}
	return g.predecessors
}

func (g *CausalGraph) childrenOf(node string) []string {
	children := make([]string, 0, len(g.adj()[node]))
	for c := range g.adj()[node] {
		children = append(children, c)
	}
	sort.Strings(children)
	return children
}

func (g *CausalGraph) parentsOf(node string) []string {
	parents := make([]string, 0, len(g.pred()[node]))
	for p := range g.pred()[node] {
		parents = append(parents, p)
	}
	sort.Strings(parents)
	return parents
}

// TopologicalSort returns the nodes in topological order, breaking ties
// by string order. Fails with ErrCyclicGraph on a cyclic graph.
func (g *CausalGraph) TopologicalSort() ([]string, error) {
	order, err := dgraph.StableTopologicalSort(g.inner, func(a, b string) bool {
		return a < b
	})
	if err != nil {
		return nil, ErrCyclicGraph
	}
	return order, nil
}

// HasCycles reports whether the graph contains a directed cycle.
func (g *CausalGraph) HasCycles() bool {
	_, err := g.TopologicalSort()
	return err != nil
}

// Undirected returns a cached copy of the graph with every edge
// duplicated in the opposite direction.
func (g *CausalGraph) Undirected() *CausalGraph {
	if g.undirected == nil {
		res := g.Copy()
		for _, e := range g.Edges() {
			res.AddEdge(e[1], e[0])
		}
		g.undirected = res
	}
	return g.undirected
}

// Complete returns a cached graph over the same nodes with every
// ordered pair of distinct nodes connected.
func (g *CausalGraph) Complete() *CausalGraph {
	if g.complete == nil {
		res := NewCausalGraph()
		nodes := g.Nodes()
		for _, n := range nodes {
			res.AddNode(n)
			if d, ok := g.data[n]; ok {
				res.data[n] = d
			}
		}
		for _, a := range nodes {
			for _, b := range nodes {
				if a != b {
					res.AddEdge(a, b)
				}
			}
		}
		g.complete = res
	}
	return g.complete
}
