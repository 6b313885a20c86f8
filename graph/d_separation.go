package graph

// IsCollider reports whether the interior of the path x - y - z is a
// collider: x -> y <- z.
func (g *CausalGraph) IsCollider(x, y, z string) bool {
	return g.HasEdge(x, y) && g.HasEdge(z, y)
}

// IsChain reports whether x - y - z forms a directed chain in either
// direction: x -> y -> z or z -> y -> x.
func (g *CausalGraph) IsChain(x, y, z string) bool {
	return (g.HasEdge(x, y) && g.HasEdge(y, z)) ||
		(g.HasEdge(z, y) && g.HasEdge(y, x))
}

// IsFork reports whether y is a common cause on the path x - y - z:
// x <- y -> z.
func (g *CausalGraph) IsFork(x, y, z string) bool {
	return g.HasEdge(y, x) && g.HasEdge(y, z)
}

// AllUndirectedPaths returns every simple path between x and y,
// disregarding edge direction, in deterministic order.
func (g *CausalGraph) AllUndirectedPaths(x, y string) [][]string {
	u := g.Undirected()
	paths := make([][]string, 0)
	onPath := map[string]bool{x: true}
	var walk func(path []string)
	walk = func(path []string) {
		last := path[len(path)-1]
		if last == y {
			paths = append(paths, append([]string(nil), path...))
			return
		}
		for _, n := range u.childrenOf(last) {
			if onPath[n] {
				continue
			}
			onPath[n] = true
			walk(append(path, n))
			delete(onPath, n)
		}
	}
	if g.HasNode(x) && g.HasNode(y) {
		walk([]string{x})
	}
	return paths
}

// IsDSeparated reports whether every undirected simple path between X
// and Y is blocked by Z: some interior vertex is either a collider
// whose descendants avoid Z, or a non-collider belonging to Z.
// Requires an acyclic graph.
func (g *CausalGraph) IsDSeparated(X, Y, Z Set) (bool, error) {
	if g.HasCycles() {
		return false, ErrCyclicGraph
	}
	for x := range X {
		for y := range Y {
			for _, path := range g.AllUndirectedPaths(x, y) {
				blocked := false
				for i := 1; i < len(path)-1; i++ {
					a, b, c := path[i-1], path[i], path[i+1]
					if g.IsCollider(a, b, c) {
						if g.Descendants(NewSet(b)).IsDisjoint(Z) {
							blocked = true
							break
						}
					} else if Z[b] {
						blocked = true
						break
					}
				}
				if !blocked {
					return false, nil
				}
			}
		}
	}
	return true, nil
}

// RemoveInto returns a copy of the graph with every edge entering a
// member of X removed.
func (g *CausalGraph) RemoveInto(X Set) *CausalGraph {
	return g.surgery(X, true)
}

// RemoveOutOf returns a copy of the graph with every edge leaving a
// member of X removed.
func (g *CausalGraph) RemoveOutOf(X Set) *CausalGraph {
	return g.surgery(X, false)
}

func (g *CausalGraph) surgery(X Set, into bool) *CausalGraph {
	res := g.Copy()
	for x := range X {
		var edges [][2]string
		if into {
			edges = g.EdgesInto(x)
		} else {
			edges = g.EdgesFrom(x)
		}
		for _, e := range edges {
			res.RemoveEdge(e[0], e[1])
		}
	}
	return res
}
