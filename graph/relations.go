package graph

import "sort"

// Set is a set of node names.
type Set map[string]bool

// NewSet creates a set from the given nodes.
func NewSet(nodes ...string) Set {
	s := make(Set, len(nodes))
	for _, n := range nodes {
		s[n] = true
	}
	return s
}

// Copy returns a shallow copy of the set.
func (s Set) Copy() Set {
	res := make(Set, len(s))
	for n := range s {
		res[n] = true
	}
	return res
}

// Union returns the union of s with the given sets.
func (s Set) Union(others ...Set) Set {
	res := s.Copy()
	for _, o := range others {
		for n := range o {
			res[n] = true
		}
	}
	return res
}

// Intersect returns the intersection of both sets.
func (s Set) Intersect(other Set) Set {
	res := make(Set)
	for n := range s {
		if other[n] {
			res[n] = true
		}
	}
	return res
}

// Difference returns the members of s absent from other.
func (s Set) Difference(other Set) Set {
	res := make(Set)
	for n := range s {
		if !other[n] {
			res[n] = true
		}
	}
	return res
}

// IsDisjoint reports whether both sets share no member.
func (s Set) IsDisjoint(other Set) bool {
	for n := range s {
		if other[n] {
			return false
		}
	}
	return true
}

// Equal reports whether both sets hold the same members.
func (s Set) Equal(other Set) bool {
	if len(s) != len(other) {
		return false
	}
	for n := range s {
		if !other[n] {
			return false
		}
	}
	return true
}

// Sorted returns the members in sorted order.
func (s Set) Sorted() []string {
	res := make([]string, 0, len(s))
	for n := range s {
		res = append(res, n)
	}
	sort.Strings(res)
	return res
}

// Key returns a canonical string for the set, used to deduplicate
// candidate adjustment sets.
func (s Set) Key() string {
	res := ""
	for i, n := range s.Sorted() {
		if i > 0 {
			res += ","
		}
		res += n
	}
	return res
}

// Parents returns the direct parents of all members of X.
func (g *CausalGraph) Parents(X Set) Set {
	res := make(Set)
	for x := range X {
		for p := range g.pred()[x] {
			res[p] = true
		}
	}
	return res
}

// Children returns the direct children of all members of X.
func (g *CausalGraph) Children(X Set) Set {
	res := make(Set)
	for x := range X {
		for c := range g.adj()[x] {
			res[c] = true
		}
	}
	return res
}

// Neighbors returns all parents and children of members of X.
func (g *CausalGraph) Neighbors(X Set) Set {
	return g.Parents(X).Union(g.Children(X))
}

// UndirectedNeighbors returns the nodes adjacent to some member of X
// through a pair of anti-parallel edges.
func (g *CausalGraph) UndirectedNeighbors(X Set) Set {
	res := make(Set)
	for x := range X {
		for y := range g.Neighbors(NewSet(x)) {
			if g.IsUndirectedEdge(x, y) {
				res[y] = true
			}
		}
	}
	return res
}

// closure computes the fixed point of relation starting from X, X
// included.
func (g *CausalGraph) closure(X Set, relation func(Set) Set) Set {
	res := make(Set)
	newMembers := X.Copy()
	for len(newMembers) > 0 {
		res = res.Union(newMembers)
		newMembers = relation(newMembers).Difference(res)
	}
	return res
}

// Ancestors returns all ancestors of members of X, X included.
func (g *CausalGraph) Ancestors(X Set) Set {
	return g.closure(X, g.Parents)
}

// Descendants returns all descendants of members of X, X included.
func (g *CausalGraph) Descendants(X Set) Set {
	return g.closure(X, g.Children)
}

// IsAdjacent reports whether x and y are connected in either
// direction.
func (g *CausalGraph) IsAdjacent(x, y string) bool {
	return g.HasEdge(x, y) || g.HasEdge(y, x)
}

// IsUndirectedEdge reports whether x and y are connected in both
// directions.
func (g *CausalGraph) IsUndirectedEdge(x, y string) bool {
	return g.HasEdge(x, y) && g.HasEdge(y, x)
}

// IsDirectedEdge reports whether x -> y is present without the
// reverse edge.
func (g *CausalGraph) IsDirectedEdge(x, y string) bool {
	return g.HasEdge(x, y) && !g.HasEdge(y, x)
}
