// Package inference provides symbolic identification of causal
// effects: given only the graph, it synthesizes closed-form estimands
// for P(Y | do(X)) through back-door and front-door adjustment.
package inference

import (
	"github.com/TheoVerhelst/causalgo/expressions"
	"github.com/TheoVerhelst/causalgo/graph"
)

// NoBackDoorPath reports whether there is no back-door path
// (confounding) from X to Y given Z.
func NoBackDoorPath(g *graph.CausalGraph, X, Y, Z graph.Set) (bool, error) {
	return g.RemoveOutOf(X).IsDSeparated(X, Y, Z)
}

// BackDoorCriterion reports whether Z satisfies the back-door
// criterion relative to (X, Y): no back-door path from X to Y given Z,
// and Z is disjoint from the descendants of X.
// "Causality" by Pearl (2009), def 3.3.1, p. 79.
func BackDoorCriterion(g *graph.CausalGraph, X, Y, Z graph.Set) (bool, error) {
	noPath, err := NoBackDoorPath(g, X, Y, Z)
	if err != nil {
		return false, err
	}
	return noPath && g.Descendants(X).IsDisjoint(Z), nil
}

// AllMinimalAdjustmentSets enumerates the minimal sets satisfying the
// back-door criterion for (X, Y), excluding members of U. Subsets are
// scanned in ascending cardinality; the scan stops at the first
// cardinality yielding any valid set, and all valid sets of that size
// are returned. Exponential in the worst case, acceptable for small
// graphs.
func AllMinimalAdjustmentSets(g *graph.CausalGraph, X, Y, U graph.Set) ([]graph.Set, error) {
	candidates := graph.NewSet(g.Nodes()...).Difference(X).Difference(Y).Difference(U).Sorted()
	for k := 0; k <= len(candidates); k++ {
		var res []graph.Set
		for _, subset := range subsetsOfSize(candidates, k) {
			adjustment := graph.NewSet(subset...)
			ok, err := BackDoorCriterion(g, X, Y, adjustment)
			if err != nil {
				return nil, err
			}
			if ok {
				res = append(res, adjustment)
			}
		}
		if len(res) > 0 {
			return res, nil
		}
	}
	return nil, nil
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

// Closure returns X together with all nodes a of A reachable from X
// along an undirected path whose interior lies in A and contains no
// fork or chain in Z.
// Van der Zander and Liśkiewicz, "Finding minimal d-separators in
// linear time and applications", UAI 2020.
func Closure(g *graph.CausalGraph, X, A, Z graph.Set) graph.Set {
	res := X.Copy()
	for x := range X {
		for a := range A.Difference(X) {
			for _, path := range g.AllUndirectedPaths(x, a) {
				valid := true
				for i := 1; i < len(path)-1; i++ {
					v := path[i]
					if !A[v] {
						valid = false
						break
					}
					if Z[v] && !g.IsCollider(path[i-1], v, path[i+1]) {
						valid = false
						break
					}
				}
				if valid {
					res[a] = true
					break
				}
			}
		}
	}
	return res
}

// BlockingSet returns a single minimal d-separator of X and Y avoiding
// U and containing alwaysIncluded, or ok=false when none exists.
func BlockingSet(g *graph.CausalGraph, X, Y, U, alwaysIncluded graph.Set) (graph.Set, bool) {
	R := graph.NewSet(g.Nodes()...).Difference(U)
	A := g.Ancestors(X.Union(Y, alwaysIncluded))
	Z0 := R.Intersect(A.Difference(X.Union(Y)))
	XStar := Closure(g, X, A, Z0)
	ZX := Z0.Intersect(XStar.Union(alwaysIncluded))
	YStar := Closure(g, Y, A, ZX)
	if !XStar.IsDisjoint(Y) {
		return nil, false
	}
	return ZX.Intersect(YStar.Union(alwaysIncluded)), true
}

func names(X graph.Set) expressions.Names {
	return expressions.NewNames(X.Sorted()...)
}

// ClosedForm returns candidate closed-form estimands for P(Y | do(X)),
// with U treated as latent (never adjusted for or conditioned on). An
// empty result means the effect is not identifiable by these rules.
// "Causality" by Pearl (2009), sec. 4.3.3, p. 117.
func ClosedForm(g *graph.CausalGraph, X, Y, U graph.Set) ([]expressions.Expression, error) {
	res := make([]expressions.Expression, 0)

	// No causal path from X to Y: the effect is the marginal of Y.
	separated, err := g.RemoveInto(X).IsDSeparated(X, Y, graph.Set{})
	if err != nil {
		return nil, err
	}
	if separated {
		return append(res, expressions.Probability(names(Y))), nil
	}

	// No confounding: the conditional is the causal effect.
	noConfounding, err := NoBackDoorPath(g, X, Y, graph.Set{})
	if err != nil {
		return nil, err
	}
	if noConfounding {
		res = append(res, expressions.ProbabilityGiven(names(Y), names(X)))
	}

	// Back-door adjustment over every minimal adjustment set, with the
	// adjustment distribution identified recursively.
	adjustments, err := AllMinimalAdjustmentSets(g, X, Y, U)
	if err != nil {
		return nil, err
	}
	for _, B := range adjustments {
		if len(B) == 0 {
			continue
		}
		forms, err := ClosedForm(g, X, B, U)
		if err != nil {
			return nil, err
		}
		for _, formB := range forms {
			res = append(res, expressions.Summation(names(B), expressions.Product(
				expressions.ProbabilityGiven(names(Y), names(B.Union(X))),
				formB,
			)))
		}
	}

	// Front-door adjustment through the mediators between X and Y.
	Z1 := g.Children(X).Intersect(g.Ancestors(Y))
	if len(Z1) == 0 || !Y.IsDisjoint(Z1) {
		return res, nil
	}
	mediatorClean, err := NoBackDoorPath(g.RemoveInto(X), Z1, Y, graph.Set{})
	if err != nil {
		return nil, err
	}
	exposureClean, err := NoBackDoorPath(g, X, Z1, graph.Set{})
	if err != nil {
		return nil, err
	}
	if mediatorClean && exposureClean {
		xPrime := names(X).Prime()
		res = append(res, expressions.Summation(names(Z1), expressions.Product(
			expressions.ProbabilityGiven(names(Z1), names(X)),
			expressions.Summation(xPrime, expressions.Product(
				expressions.ProbabilityGiven(names(Y), xPrime.Union(names(Z1))),
				expressions.Probability(xPrime),
			)),
		)))
		return res, nil
	}

	// Generalized front-door: adjust for the confounding of the
	// mediators on both legs, deduplicating the combined sets.
	legX, err := AllMinimalAdjustmentSets(g, X, Z1, U)
	if err != nil {
		return nil, err
	}
	legY, err := AllMinimalAdjustmentSets(g.RemoveInto(X), Z1, Y, U)
	if err != nil {
		return nil, err
	}
	used := make(map[string]bool)
	for _, Z3 := range legX {
		for _, Z4 := range legY {
			Z2 := Z3.Union(Z4)
			if !X.IsDisjoint(Z2) || used[Z2.Key()] {
				continue
			}
			used[Z2.Key()] = true
			xPrime := names(X).Prime()
			res = append(res, expressions.Summation(names(Z1.Union(Z2)), expressions.Product(
				expressions.Probability(names(Z2)),
				expressions.ProbabilityGiven(names(Z1), names(X.Union(Z2))),
				expressions.Summation(xPrime, expressions.Product(
					expressions.ProbabilityGiven(names(Y), xPrime.Union(names(Z1.Union(Z2)))),
					expressions.ProbabilityGiven(xPrime, names(Z2)),
				)),
			)))
		}
	}
	return res, nil
}
