package estimators

import (
	"github.com/TheoVerhelst/causalgo/graph"
)

// PCEstimator learns a causal graph from conditional-independence
// tests with the PC (Peter-Clark) algorithm. Undirected edges are
// represented as anti-parallel edge pairs; the returned graph may
// still contain some of them when the orientation rules cannot decide.
type PCEstimator struct {
	Test  IndependenceTest
	Alpha float64
}

// NewPC creates a PC estimator with the default significance level.
func NewPC(test IndependenceTest) *PCEstimator {
	return &PCEstimator{Test: test, Alpha: 0.05}
}

// SetAlpha sets the significance level for the independence tests.
func (pc *PCEstimator) SetAlpha(alpha float64) {
	pc.Alpha = alpha
}

// Estimate learns the structure over the given variables. When initial
// is nil the search starts from the complete graph.
func (pc *PCEstimator) Estimate(variables []string, initial *graph.CausalGraph) (*graph.CausalGraph, error) {
	var g *graph.CausalGraph
	if initial != nil {
		g = initial.Copy()
	} else {
		base := graph.NewCausalGraph()
		for _, v := range variables {
			base.AddNode(v)
		}
		g = base.Complete().Copy()
	}

	sepSet := pc.removeEdges(g)
	pc.orientEdges(g, sepSet)
	return g, nil
}

// removeEdges deletes edges between conditionally independent
// endpoints, raising the conditioning-set size until it exceeds the
// densest adjacency. Separating sets are recorded for orientation.
func (pc *PCEstimator) removeEdges(g *graph.CausalGraph) map[[2]string][]string {
	sepSet := make(map[[2]string][]string)
	condSize := 0
	for maxOutDegree(g) > condSize {
		for _, x := range g.Nodes() {
			adjacent := g.Children(graph.NewSet(x))
			for _, y := range adjacent.Sorted() {
				others := adjacent.Copy()
				delete(others, y)
				for _, cond := range subsetsOfSize(others.Sorted(), condSize) {
					if pc.Test.PValue(x, y, cond) > pc.Alpha {
						g.RemoveEdge(x, y)
						g.RemoveEdge(y, x)
						sepSet[[2]string{x, y}] = cond
						sepSet[[2]string{y, x}] = cond
						break
					}
				}
			}
		}
		condSize++
	}
	return sepSet
}

// orientEdges makes a single pass over the node pairs; for each pair it
// orients colliders from the separating sets, then applies the remaining
// orientation rules (Pearl 2000, sec. 2.5).
func (pc *PCEstimator) orientEdges(g *graph.CausalGraph, sepSet map[[2]string][]string) {
	nodes := g.Nodes()
	for i := 0; i < len(nodes); i++ {
		for j := i + 1; j < len(nodes); j++ {
			x, y := nodes[i], nodes[j]

			// Colliders: x and y non-adjacent with a shared neighbor z
			// outside their separating set orient as x -> z <- y.
			if cond, ok := sepSet[[2]string{x, y}]; ok && !g.IsAdjacent(x, y) {
				relX := g.UndirectedNeighbors(graph.NewSet(x))
				relY := g.UndirectedNeighbors(graph.NewSet(y))
				for _, z := range relX.Intersect(relY).Sorted() {
					if !containsName(cond, z) {
						g.RemoveEdge(z, x)
						g.RemoveEdge(z, y)
					}
				}
			}

			// R1: orient x - y as x -> y if some z -> x exists with y
			// and z non-adjacent.
			if g.IsUndirectedEdge(x, y) {
				for _, z := range directedParents(g, x).Sorted() {
					if !g.IsAdjacent(z, y) {
						g.RemoveEdge(y, x)
						break
					}
				}
			}

			// R2: orient x - y as x -> y if there is a chain
			// x -> z -> y.
			if g.IsUndirectedEdge(x, y) {
				if !directedChildren(g, x).IsDisjoint(directedParents(g, y)) {
					g.RemoveEdge(y, x)
				}
			}

			// R3: orient x - y as x -> y if two chains x - z -> y and
			// x - w -> y exist with z and w non-adjacent.
			if g.IsUndirectedEdge(x, y) {
				parentsY := directedParents(g, y).Sorted()
				done := false
				for a := 0; a < len(parentsY) && !done; a++ {
					for b := a + 1; b < len(parentsY); b++ {
						z, w := parentsY[a], parentsY[b]
						if g.IsUndirectedEdge(x, z) && g.IsUndirectedEdge(x, w) && !g.IsAdjacent(z, w) {
							g.RemoveEdge(y, x)
							done = true
							break
						}
					}
				}
			}

			// R4: orient x - y as x -> y if there are chains
			// x - w -> z and w -> z -> y with w and y non-adjacent and
			// x and z adjacent.
			if g.IsUndirectedEdge(x, y) {
				done := false
				for _, z := range directedParents(g, y).Sorted() {
					if !g.IsAdjacent(x, z) {
						continue
					}
					for _, w := range g.UndirectedNeighbors(graph.NewSet(x)).Sorted() {
						if !g.IsAdjacent(w, y) && g.IsDirectedEdge(w, z) {
							g.RemoveEdge(y, x)
							done = true
							break
						}
					}
					if done {
						break
					}
				}
			}
		}
	}
}

// directedParents returns the parents of node connected by a strictly
// directed edge.
func directedParents(g *graph.CausalGraph, node string) graph.Set {
	res := make(graph.Set)
	for p := range g.Parents(graph.NewSet(node)) {
		if g.IsDirectedEdge(p, node) {
			res[p] = true
		}
	}
	return res
}

// directedChildren returns the children of node connected by a
// strictly directed edge.
func directedChildren(g *graph.CausalGraph, node string) graph.Set {
	res := make(graph.Set)
	for c := range g.Children(graph.NewSet(node)) {
		if g.IsDirectedEdge(node, c) {
			res[c] = true
		}
	}
	return res
}

func maxOutDegree(g *graph.CausalGraph) int {
	max := 0
	for _, n := range g.Nodes() {
		if d := g.OutDegree(n); d > max {
			max = d
		}
	}
	return max
}

func containsName(names []string, name string) bool {
	for _, n := range names {
		if n == name {
			return true
		}
	}
	return false
}

// subsetsOfSize generates all k-subsets of elements, preserving order.
func subsetsOfSize(elements []string, k int) [][]string {
	if k == 0 {
		return [][]string{{}}
	}
	if len(elements) < k {
		return nil
	}
	var res [][]string
	for _, tail := range subsetsOfSize(elements[1:], k-1) {
		subset := make([]string, 0, k)
		subset = append(subset, elements[0])
		subset = append(subset, tail...)
		res = append(res, subset)
	}
	return append(res, subsetsOfSize(elements[1:], k)...)
}
