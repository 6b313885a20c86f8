package graph

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGraphCreation(t *testing.T) {
	g := NewCausalGraph()
	g.AddNode("A")
	g.AddNode("B")
	g.AddNode("C")

	assert.Equal(t, []string{"A", "B", "C"}, g.Nodes())
	assert.True(t, g.HasNode("A"))
	assert.False(t, g.HasNode("D"))
}

func TestGraphEdges(t *testing.T) {
	g := NewCausalGraph()
	g.AddEdge("A", "B")

	assert.True(t, g.HasEdge("A", "B"))
	assert.False(t, g.HasEdge("B", "A"))
	assert.Equal(t, [][2]string{{"A", "B"}}, g.Edges())

	g.RemoveEdge("A", "B")
	assert.False(t, g.HasEdge("A", "B"))
	assert.True(t, g.HasNode("A"))
}

func TestGraphCyclesRepresentable(t *testing.T) {
	g := NewCausalGraph()
	g.AddEdge("A", "B")
	g.AddEdge("B", "A")

	assert.True(t, g.HasEdge("A", "B"))
	assert.True(t, g.HasEdge("B", "A"))
	assert.True(t, g.HasCycles())

	_, err := g.TopologicalSort()
	assert.ErrorIs(t, err, ErrCyclicGraph)
}

func TestGraphParentsChildren(t *testing.T) {
	g := NewCausalGraphFromEdges([][2]string{
		{"A", "C"},
		{"B", "C"},
		{"C", "D"},
	})

	assert.True(t, g.Parents(NewSet("C")).Equal(NewSet("A", "B")))
	assert.True(t, g.Children(NewSet("A")).Equal(NewSet("C")))
	assert.True(t, g.Neighbors(NewSet("C")).Equal(NewSet("A", "B", "D")))
	assert.Equal(t, 2, g.InDegree("C"))
	assert.Equal(t, 1, g.OutDegree("C"))
	assert.Equal(t, []string{"A", "B"}, g.Roots())
}

func TestGraphAncestorsDescendants(t *testing.T) {
	g := NewCausalGraphFromEdges([][2]string{
		{"A", "B"},
		{"B", "C"},
		{"C", "D"},
	})

	// Closures include the argument set itself.
	assert.True(t, g.Ancestors(NewSet("D")).Equal(NewSet("A", "B", "C", "D")))
	assert.True(t, g.Descendants(NewSet("A")).Equal(NewSet("A", "B", "C", "D")))
	assert.True(t, g.Descendants(NewSet("C")).Equal(NewSet("C", "D")))

	// x is an ancestor of y exactly when y descends from x.
	for _, x := range g.Nodes() {
		for _, y := range g.Nodes() {
			assert.Equal(t,
				g.Ancestors(NewSet(y))[x],
				g.Descendants(NewSet(x))[y])
		}
	}
}

func TestGraphTopologicalSort(t *testing.T) {
	g := NewCausalGraphFromEdges([][2]string{
		{"A", "C"},
		{"B", "C"},
		{"C", "D"},
	})

	order, err := g.TopologicalSort()
	require.NoError(t, err)

	pos := make(map[string]int)
	for i, n := range order {
		pos[n] = i
	}
	assert.Less(t, pos["A"], pos["C"])
	assert.Less(t, pos["B"], pos["C"])
	assert.Less(t, pos["C"], pos["D"])
	// Ties break by string order.
	assert.Less(t, pos["A"], pos["B"])
}

func TestGraphCopyIndependence(t *testing.T) {
	g := NewCausalGraphFromEdges([][2]string{{"A", "B"}})
	c := g.Copy()
	c.AddEdge("B", "C")
	c.RemoveEdge("A", "B")

	assert.True(t, g.HasEdge("A", "B"))
	assert.False(t, g.HasNode("C"))
	assert.True(t, c.HasEdge("B", "C"))
}

func TestGraphRemoveNode(t *testing.T) {
	g := NewCausalGraphFromEdges([][2]string{
		{"A", "B"},
		{"B", "C"},
	})
	g.RemoveNode("B")

	assert.False(t, g.HasNode("B"))
	assert.Equal(t, []string{"A", "C"}, g.Nodes())
	assert.Empty(t, g.Edges())
}

func TestGraphNodeData(t *testing.T) {
	g := NewCausalGraph()
	g.AddNode("A", [2]float64{0, 3})

	pos, ok := g.NodeData("A").([2]float64)
	require.True(t, ok)
	assert.Equal(t, [2]float64{0, 3}, pos)
	assert.Nil(t, g.NodeData("B"))

	g.SetNodeData("A", [2]float64{1, 1})
	assert.Equal(t, [2]float64{1, 1}, g.NodeData("A"))
}

func TestGraphUndirectedView(t *testing.T) {
	g := NewCausalGraphFromEdges([][2]string{{"A", "B"}})
	u := g.Undirected()

	assert.True(t, u.HasEdge("A", "B"))
	assert.True(t, u.HasEdge("B", "A"))
	assert.False(t, g.HasEdge("B", "A"))

	// Mutation invalidates the cached view.
	g.AddEdge("B", "C")
	u = g.Undirected()
	assert.True(t, u.HasEdge("C", "B"))
}

func TestGraphCompleteView(t *testing.T) {
	g := NewCausalGraph()
	g.AddNode("A")
	g.AddNode("B")
	g.AddNode("C")

	c := g.Complete()
	assert.Len(t, c.Edges(), 6)
	assert.True(t, c.HasEdge("A", "C"))
	assert.True(t, c.HasEdge("C", "A"))
}

func TestGraphEdgeFilters(t *testing.T) {
	g := NewCausalGraphFromEdges([][2]string{
		{"A", "B"},
		{"A", "C"},
		{"B", "C"},
	})

	assert.Equal(t, [][2]string{{"A", "B"}, {"A", "C"}}, g.EdgesFrom("A"))
	assert.Equal(t, [][2]string{{"A", "C"}, {"B", "C"}}, g.EdgesInto("C"))
}

func TestUndirectedNeighbors(t *testing.T) {
	g := NewCausalGraphFromEdges([][2]string{
		{"A", "B"},
		{"B", "A"},
		{"B", "C"},
	})

	assert.True(t, g.UndirectedNeighbors(NewSet("A")).Equal(NewSet("B")))
	assert.True(t, g.UndirectedNeighbors(NewSet("C")).Equal(NewSet()))
	assert.True(t, g.IsUndirectedEdge("A", "B"))
	assert.True(t, g.IsDirectedEdge("B", "C"))
	assert.False(t, g.IsDirectedEdge("A", "B"))
	assert.True(t, g.IsAdjacent("C", "B"))
}

func TestSetOperations(t *testing.T) {
	s := NewSet("A", "B")
	o := NewSet("B", "C")

	assert.True(t, s.Union(o).Equal(NewSet("A", "B", "C")))
	assert.True(t, s.Intersect(o).Equal(NewSet("B")))
	assert.True(t, s.Difference(o).Equal(NewSet("A")))
	assert.False(t, s.IsDisjoint(o))
	assert.True(t, s.IsDisjoint(NewSet("D")))
	assert.Equal(t, []string{"A", "B"}, s.Sorted())
	assert.Equal(t, "A,B", s.Key())
}
