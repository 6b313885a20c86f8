package models

import (
	"fmt"
	"sort"

	"github.com/TheoVerhelst/causalgo/expressions"
	"github.com/TheoVerhelst/causalgo/factors"
	"github.com/TheoVerhelst/causalgo/graph"
)

// CausalModel owns an exogenous distribution and the deterministic
// functional equations of the endogenous variables. The causal graph
// is inferred from the equations; expressions over the variables are
// evaluated by contracting endogenous axes out of their truth-set in
// reverse topological order until only exogenous axes remain.
type CausalModel struct {
	exoDist          *IndependentDistribution
	functions        map[string]*factors.DiscreteFunction
	vars             map[string]*factors.Variable
	causalGraph      *graph.CausalGraph
	sortedEndogenous []*factors.Variable
	twinNetworks     map[string]bool
}

// NewCausalModel infers the graph from the functional equations,
// topologically sorts the endogenous variables and verifies that every
// root is either governed by an exogenous marginal or constant.
func NewCausalModel(exoDist *IndependentDistribution, funcs []*factors.DiscreteFunction) (*CausalModel, error) {
	m := &CausalModel{
		exoDist:      exoDist,
		functions:    make(map[string]*factors.DiscreteFunction, len(funcs)),
		vars:         make(map[string]*factors.Variable),
		causalGraph:  graph.NewCausalGraph(),
		twinNetworks: make(map[string]bool),
	}
	for _, v := range exoDist.Variables() {
		m.vars[v.Key()] = v
	}
	for _, f := range funcs {
		if _, ok := m.functions[f.Output.Key()]; ok {
			return nil, fmt.Errorf("models: two functions define %s", f.Output)
		}
		m.insertFunction(f)
	}
	if err := m.updateSortedEndogenous(); err != nil {
		return nil, err
	}
	return m, nil
}

// insertFunction registers the function, its variables and its edges.
func (m *CausalModel) insertFunction(f *factors.DiscreteFunction) {
	m.functions[f.Output.Key()] = f
	m.vars[f.Output.Key()] = f.Output
	m.causalGraph.AddNode(f.Output.Key())
	for _, in := range f.Inputs {
		m.vars[in.Key()] = in
		m.causalGraph.AddEdge(in.Key(), f.Output.Key())
	}
}

// updateSortedEndogenous refreshes the elimination order and checks
// that every root variable is governed.
func (m *CausalModel) updateSortedEndogenous() error {
	order, err := m.causalGraph.TopologicalSort()
	if err != nil {
		return err
	}
	for _, root := range m.causalGraph.Roots() {
		v := m.vars[root]
		f := m.functions[root]
		if !m.exoDist.Has(v) && (f == nil || !f.IsConstant()) {
			return fmt.Errorf("%w: %s", ErrMissingDistribution, root)
		}
	}
	m.sortedEndogenous = m.sortedEndogenous[:0]
	for _, key := range order {
		if _, ok := m.functions[key]; ok {
			m.sortedEndogenous = append(m.sortedEndogenous, m.vars[key])
		}
	}
	return nil
}

// Graph returns the inferred causal graph, including any materialised
// twin networks.
func (m *CausalModel) Graph() *graph.CausalGraph {
	return m.causalGraph
}

// Function returns the functional equation governing v, or nil.
func (m *CausalModel) Function(v *factors.Variable) *factors.DiscreteFunction {
	return m.functions[v.Key()]
}

// ExogenousDistribution returns the distribution of the root
// variables.
func (m *CausalModel) ExogenousDistribution() *IndependentDistribution {
	return m.exoDist
}

// Probability evaluates P(expr). Counterfactual variables in the
// expression trigger the materialisation of the corresponding twin
// networks; endogenous variables are then contracted out of the
// truth-set against their function preimages, in reverse topological
// order, and the probability mass of the remaining exogenous set is
// measured.
func (m *CausalModel) Probability(expr expressions.ValueExpression) (float64, error) {
	values, err := expr.Values()
	if err != nil {
		return 0, err
	}

	for _, dim := range values.Dims {
		if iv := dim.Intervention; iv != nil && !m.twinNetworks[iv.Key()] {
			if err := m.AddTwinNetwork(iv.Variable, iv.Value); err != nil {
				return 0, err
			}
		}
	}
	for _, dim := range values.Dims {
		if _, ok := m.vars[dim.Key()]; !ok {
			return 0, fmt.Errorf("%w: %s", ErrUnknownVariable, dim)
		}
	}

	for {
		var endogenous []*factors.Variable
		for i := len(m.sortedEndogenous) - 1; i >= 0; i-- {
			if v := m.sortedEndogenous[i]; values.HasDim(v) {
				endogenous = append(endogenous, v)
			}
		}
		if len(endogenous) == 0 {
			break
		}
		for _, v := range endogenous {
			// The valuations satisfying both the current set and the
			// functional definition of v are exactly the tensor
			// contraction over v with the function preimage.
			values, err = values.Tensor(m.functions[v.Key()].Preimage, v)
			if err != nil {
				return 0, err
			}
		}
	}

	return m.exoDist.PMF(values)
}

// AddTwinNetwork extends the model with the counterfactual copies of
// all descendants of x in the world where x is forced to value. The
// copy of x is constant; every other copy reads its twin parents where
// they exist. Twin nodes share the exogenous roots with the factual
// world. The materialisation is idempotent per intervention tag.
func (m *CausalModel) AddTwinNetwork(x *factors.Variable, value factors.Value) error {
	if !m.causalGraph.HasNode(x.Key()) {
		return fmt.Errorf("%w: %s", ErrUnknownVariable, x)
	}
	descendants := m.causalGraph.Descendants(graph.NewSet(x.Key()))
	twins := make(map[string]*factors.Variable, len(descendants))
	for key := range descendants {
		twins[key] = m.vars[key].Do(x, value)
	}

	for _, key := range descendants.Sorted() {
		twin := twins[key]
		if key == x.Key() {
			f, err := factors.ConstantFunction(twin, value)
			if err != nil {
				return err
			}
			m.insertFunction(f)
			continue
		}
		orig := m.functions[key]
		if orig == nil {
			return fmt.Errorf("%w: %s has no functional equation", ErrUnknownVariable, key)
		}
		parents := make([]*factors.Variable, len(orig.Inputs))
		for i, pa := range orig.Inputs {
			if t, ok := twins[pa.Key()]; ok {
				parents[i] = t
			} else {
				parents[i] = pa
			}
		}
		f, err := factors.NewDiscreteFunction(orig.Fn, parents, twin)
		if err != nil {
			return err
		}
		m.insertFunction(f)
	}

	m.twinNetworks[(&factors.Intervention{Variable: x, Value: value}).Key()] = true
	return m.updateSortedEndogenous()
}

// Rvs draws size joint samples: exogenous marginals first, then each
// endogenous variable evaluated on its sampled parents in topological
// order. Results are keyed by variable key.
func (m *CausalModel) Rvs(size int) (map[string][]factors.Value, error) {
	samples := m.exoDist.Rvs(size)
	for _, v := range m.sortedEndogenous {
		f := m.functions[v.Key()]
		parents := make([][]factors.Value, len(f.Inputs))
		for i, in := range f.Inputs {
			vals, ok := samples[in.Key()]
			if !ok {
				return nil, fmt.Errorf("%w: %s", ErrMissingParentValue, in)
			}
			parents[i] = vals
		}
		out := make([]factors.Value, size)
		args := make([]factors.Value, len(f.Inputs))
		for i := 0; i < size; i++ {
			for j := range parents {
				args[j] = parents[j][i]
			}
			out[i] = f.Fn(args...)
		}
		samples[v.Key()] = out
	}
	return samples, nil
}

// Intervention returns a new model in which v is forced to value: its
// functional equation becomes constant and its incoming edges
// disappear. The receiver is unchanged.
func (m *CausalModel) Intervention(v *factors.Variable, value factors.Value) (*CausalModel, error) {
	if _, ok := m.vars[v.Key()]; !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownVariable, v)
	}
	keys := make([]string, 0, len(m.functions))
	for key := range m.functions {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	funcs := make([]*factors.DiscreteFunction, 0, len(m.functions)+1)
	for _, key := range keys {
		if key == v.Key() {
			continue
		}
		funcs = append(funcs, m.functions[key])
	}
	constant, err := factors.ConstantFunction(v, value)
	if err != nil {
		return nil, err
	}
	funcs = append(funcs, constant)
	return NewCausalModel(m.exoDist, funcs)
}
