package estimators

import (
	"fmt"
	"sort"

	"golang.org/x/exp/rand"
	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat/distuv"

	"github.com/TheoVerhelst/causalgo/graph"
	"github.com/TheoVerhelst/causalgo/utils"
)

// LinearNode is the Gaussian mechanism attached as node data to a
// random linear system: an intercept distribution and the coefficient
// of each parent.
type LinearNode struct {
	Mu           float64
	Sigma        float64
	Coefficients map[string]float64
}

// GenerateLinearSystem creates a random DAG of nNodes nodes and nEdges
// edges whose nodes carry LinearNode descriptors with parameters drawn
// uniformly from the given ranges.
func GenerateLinearSystem(nNodes, nEdges int, minMu, maxMu, minSigma, maxSigma, minRho, maxRho float64, seed uint64) (*graph.CausalGraph, error) {
	if nEdges > nNodes*(nNodes-1)/2 {
		return nil, fmt.Errorf("estimators: can't create a DAG with %d nodes and %d edges", nNodes, nEdges)
	}
	r := rand.New(rand.NewSource(seed))
	uniform := func(lo, hi float64) float64 {
		return lo + r.Float64()*(hi-lo)
	}

	nodes := make([]string, nNodes)
	for i := range nodes {
		nodes[i] = fmt.Sprintf("V%d", i)
	}
	r.Shuffle(len(nodes), func(i, j int) {
		nodes[i], nodes[j] = nodes[j], nodes[i]
	})

	// Every pair ordered by shuffled rank keeps the graph acyclic.
	edges := make([][2]string, 0, nNodes*(nNodes-1)/2)
	for i := 0; i < len(nodes); i++ {
		for j := i + 1; j < len(nodes); j++ {
			edges = append(edges, [2]string{nodes[i], nodes[j]})
		}
	}
	r.Shuffle(len(edges), func(i, j int) {
		edges[i], edges[j] = edges[j], edges[i]
	})

	g := graph.NewCausalGraphFromEdges(edges[:nEdges])
	for _, node := range nodes {
		g.AddNode(node, &LinearNode{
			Mu:           uniform(minMu, maxMu),
			Sigma:        uniform(minSigma, maxSigma),
			Coefficients: make(map[string]float64),
		})
	}
	for _, e := range g.Edges() {
		g.NodeData(e[1]).(*LinearNode).Coefficients[e[0]] = uniform(minRho, maxRho)
	}
	return g, nil
}

// SampleLinearSystem draws nSamples joint samples from a linear
// Gaussian system in topological order. The returned dataset has one
// column per node, in sorted node order.
func SampleLinearSystem(g *graph.CausalGraph, nSamples int, seed uint64) (*utils.DataFrame, error) {
	columns := g.Nodes()
	order, err := g.TopologicalSort()
	if err != nil {
		return nil, err
	}
	colIdx := make(map[string]int, len(columns))
	for i, name := range columns {
		colIdx[name] = i
	}

	src := rand.NewSource(seed)
	data := mat.NewDense(nSamples, len(columns), nil)
	for _, node := range order {
		ln, ok := g.NodeData(node).(*LinearNode)
		if !ok {
			return nil, fmt.Errorf("estimators: node %s has no linear descriptor", node)
		}
		parents := make([]string, 0, len(ln.Coefficients))
		for p := range ln.Coefficients {
			parents = append(parents, p)
		}
		sort.Strings(parents)

		normal := distuv.Normal{Mu: ln.Mu, Sigma: ln.Sigma, Src: src}
		i := colIdx[node]
		for s := 0; s < nSamples; s++ {
			v := normal.Rand()
			for _, p := range parents {
				v += data.At(s, colIdx[p]) * ln.Coefficients[p]
			}
			data.Set(s, i, v)
		}
	}
	return utils.NewDataFrameFromMatrix(data, columns)
}
