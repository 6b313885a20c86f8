// Package models provides the structural causal model: an exogenous
// independent distribution joined with deterministic functional
// equations over discrete variables.
package models

import (
	"errors"
	"fmt"
	"sort"

	"golang.org/x/exp/rand"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat/distuv"

	"github.com/TheoVerhelst/causalgo/factors"
)

var (
	// ErrMissingDistribution is returned when a root variable has
	// neither an exogenous marginal nor a constant function.
	ErrMissingDistribution = errors.New("models: root variable without distribution or constant function")
	// ErrUnknownVariable is returned when an expression or query names
	// a variable outside the model scope.
	ErrUnknownVariable = errors.New("models: unknown variable")
	// ErrMissingParentValue is returned when sampling reaches a
	// variable whose parents have no sampled values.
	ErrMissingParentValue = errors.New("models: missing parent value while sampling")
	// ErrProbabilityOverflow indicates the internal invariant pmf <= 1
	// was violated.
	ErrProbabilityOverflow = errors.New("models: probability mass exceeds one")
	// ErrSupportMismatch is returned when a marginal does not fit the
	// support of its variable.
	ErrSupportMismatch = errors.New("models: marginal does not match variable support")
)

// Marginal is an independent 1-D probability mass function over the
// support of a single variable.
type Marginal interface {
	// Prob returns the probability mass at value.
	Prob(value factors.Value) float64
	// Rand draws one value.
	Rand() factors.Value
}

// bernoulliMarginal maps a distuv Bernoulli onto a two-atom support:
// support[0] carries mass 1-p, support[1] carries mass p.
type bernoulliMarginal struct {
	dist     distuv.Bernoulli
	variable *factors.Variable
}

func (m bernoulliMarginal) Prob(value factors.Value) float64 {
	idx := m.variable.Index(value)
	if idx < 0 {
		return 0
	}
	return m.dist.Prob(float64(idx))
}

func (m bernoulliMarginal) Rand() factors.Value {
	return m.variable.Support[int(m.dist.Rand())]
}

// categoricalMarginal maps a distuv Categorical onto an arbitrary
// finite support.
type categoricalMarginal struct {
	dist     distuv.Categorical
	variable *factors.Variable
}

func (m categoricalMarginal) Prob(value factors.Value) float64 {
	idx := m.variable.Index(value)
	if idx < 0 {
		return 0
	}
	return m.dist.Prob(float64(idx))
}

func (m categoricalMarginal) Rand() factors.Value {
	return m.variable.Support[int(m.dist.Rand())]
}

// IndependentDistribution is a joint distribution over exogenous
// variables, factorized as independent marginals, with a seeded source
// for reproducible sampling.
type IndependentDistribution struct {
	dists map[string]Marginal
	vars  map[string]*factors.Variable
	src   rand.Source
}

// NewIndependentDistribution creates an empty distribution seeded for
// reproducible sampling.
func NewIndependentDistribution(seed uint64) *IndependentDistribution {
	return &IndependentDistribution{
		dists: make(map[string]Marginal),
		vars:  make(map[string]*factors.Variable),
		src:   rand.NewSource(seed),
	}
}

// AddBernoulli attaches a Bernoulli(p) marginal to a variable with a
// two-atom support: support[1] receives mass p.
func (d *IndependentDistribution) AddBernoulli(v *factors.Variable, p float64) error {
	if v.Cardinality() != 2 {
		return fmt.Errorf("%w: Bernoulli needs a binary support, %s has %d atoms",
			ErrSupportMismatch, v, v.Cardinality())
	}
	d.dists[v.Key()] = bernoulliMarginal{
		dist:     distuv.Bernoulli{P: p, Src: d.src},
		variable: v,
	}
	d.vars[v.Key()] = v
	return nil
}

// AddCategorical attaches a categorical marginal with one weight per
// support atom.
func (d *IndependentDistribution) AddCategorical(v *factors.Variable, weights []float64) error {
	if len(weights) != v.Cardinality() {
		return fmt.Errorf("%w: %d weights for the %d atoms of %s",
			ErrSupportMismatch, len(weights), v.Cardinality(), v)
	}
	d.dists[v.Key()] = categoricalMarginal{
		dist:     distuv.NewCategorical(weights, d.src),
		variable: v,
	}
	d.vars[v.Key()] = v
	return nil
}

// Add attaches a custom marginal to a variable.
func (d *IndependentDistribution) Add(v *factors.Variable, m Marginal) {
	d.dists[v.Key()] = m
	d.vars[v.Key()] = v
}

// Has reports whether the variable is governed by a marginal.
func (d *IndependentDistribution) Has(v *factors.Variable) bool {
	_, ok := d.dists[v.Key()]
	return ok
}

// Variables returns the governed variables in sorted key order.
func (d *IndependentDistribution) Variables() []*factors.Variable {
	keys := make([]string, 0, len(d.vars))
	for k := range d.vars {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	res := make([]*factors.Variable, len(keys))
	for i, k := range keys {
		res[i] = d.vars[k]
	}
	return res
}

// Rvs draws size independent values for every governed variable,
// keyed by variable key. Variables are sampled in sorted key order so
// a fixed seed yields a reproducible stream.
func (d *IndependentDistribution) Rvs(size int) map[string][]factors.Value {
	res := make(map[string][]factors.Value, len(d.dists))
	for _, v := range d.Variables() {
		m := d.dists[v.Key()]
		samples := make([]factors.Value, size)
		for i := range samples {
			samples[i] = m.Rand()
		}
		res[v.Key()] = samples
	}
	return res
}

// PMF returns the total probability mass of the truth-set: the sum,
// over member cells, of the product of the marginal masses along each
// axis. Every dimension of the set must be governed by a marginal, and
// the result may not exceed one.
func (d *IndependentDistribution) PMF(set *factors.DiscreteSet) (float64, error) {
	for _, dim := range set.Dims {
		if _, ok := d.dists[dim.Key()]; !ok {
			return 0, fmt.Errorf("%w: no marginal for %s", ErrMissingDistribution, dim)
		}
	}

	var atoms []float64
	index := make([]int, len(set.Shape))
	for {
		if cellValue(set, index) != 0 {
			p := 1.0
			for i, dim := range set.Dims {
				p *= d.dists[dim.Key()].Prob(dim.Support[index[i]])
			}
			atoms = append(atoms, p)
		}
		if len(index) == 0 || !nextIndex(index, set.Shape) {
			break
		}
	}

	total := floats.Sum(atoms)
	if total > 1+1e-9 {
		return 0, fmt.Errorf("%w: got %v", ErrProbabilityOverflow, total)
	}
	return total, nil
}

func cellValue(set *factors.DiscreteSet, index []int) float64 {
	off := 0
	stride := 1
	for i := len(set.Shape) - 1; i >= 0; i-- {
		off += index[i] * stride
		stride *= set.Shape[i]
	}
	return set.Values[off]
}

func nextIndex(index, shape []int) bool {
	for i := len(index) - 1; i >= 0; i-- {
		index[i]++
		if index[i] < shape[i] {
			return true
		}
		index[i] = 0
	}
	return false
}
