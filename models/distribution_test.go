package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/TheoVerhelst/causalgo/factors"
)

func TestBernoulliMarginal(t *testing.T) {
	x := factors.Bool("X")
	d := NewIndependentDistribution(1)
	require.NoError(t, d.AddBernoulli(x, 0.2))

	set, err := factors.NewDiscreteSet(x)
	require.NoError(t, err)
	require.NoError(t, set.Include(true))

	p, err := d.PMF(set)
	require.NoError(t, err)
	assert.InDelta(t, 0.2, p, 1e-12)

	require.NoError(t, set.Include(false))
	p, err = d.PMF(set)
	require.NoError(t, err)
	assert.InDelta(t, 1.0, p, 1e-12)
}

func TestBernoulliNeedsBinarySupport(t *testing.T) {
	v := factors.NewVariable("V", 0, 1, 2)
	d := NewIndependentDistribution(1)
	assert.ErrorIs(t, d.AddBernoulli(v, 0.5), ErrSupportMismatch)
}

func TestCategoricalMarginal(t *testing.T) {
	v := factors.NewVariable("V", 0, 1, 2)
	d := NewIndependentDistribution(1)
	require.NoError(t, d.AddCategorical(v, []float64{0.5, 0.3, 0.2}))

	set, err := factors.NewDiscreteSet(v)
	require.NoError(t, err)
	require.NoError(t, set.Include(1))
	require.NoError(t, set.Include(2))

	p, err := d.PMF(set)
	require.NoError(t, err)
	assert.InDelta(t, 0.5, p, 1e-12)

	assert.ErrorIs(t, d.AddCategorical(v, []float64{1}), ErrSupportMismatch)
}

func TestPMFJoint(t *testing.T) {
	x := factors.Bool("X")
	y := factors.Bool("Y")
	d := NewIndependentDistribution(1)
	require.NoError(t, d.AddBernoulli(x, 0.2))
	require.NoError(t, d.AddBernoulli(y, 0.4))

	set, err := factors.NewDiscreteSet(x, y)
	require.NoError(t, err)
	require.NoError(t, set.Include(true, false))
	require.NoError(t, set.Include(false, true))

	p, err := d.PMF(set)
	require.NoError(t, err)
	assert.InDelta(t, 0.2*0.6+0.8*0.4, p, 1e-12)
}

func TestPMFMissingMarginal(t *testing.T) {
	x := factors.Bool("X")
	d := NewIndependentDistribution(1)

	set, err := factors.NewDiscreteSet(x)
	require.NoError(t, err)
	_, err = d.PMF(set)
	assert.ErrorIs(t, err, ErrMissingDistribution)
}

func TestRvsReproducible(t *testing.T) {
	build := func() *IndependentDistribution {
		d := NewIndependentDistribution(42)
		x := factors.Bool("X")
		y := factors.NewVariable("Y", 0, 1, 2)
		if err := d.AddBernoulli(x, 0.3); err != nil {
			t.Fatal(err)
		}
		if err := d.AddCategorical(y, []float64{0.2, 0.5, 0.3}); err != nil {
			t.Fatal(err)
		}
		return d
	}

	first := build().Rvs(50)
	second := build().Rvs(50)
	assert.Equal(t, first, second)

	require.Len(t, first["X"], 50)
	for _, v := range first["X"] {
		_, ok := v.(bool)
		assert.True(t, ok)
	}
	for _, v := range first["Y"] {
		assert.Contains(t, []factors.Value{0, 1, 2}, v)
	}
}

func TestVariablesSorted(t *testing.T) {
	d := NewIndependentDistribution(1)
	b := factors.Bool("B")
	a := factors.Bool("A")
	require.NoError(t, d.AddBernoulli(b, 0.5))
	require.NoError(t, d.AddBernoulli(a, 0.5))

	vars := d.Variables()
	require.Len(t, vars, 2)
	assert.Equal(t, "A", vars[0].Name)
	assert.Equal(t, "B", vars[1].Name)
	assert.True(t, d.Has(a))
	assert.False(t, d.Has(factors.Bool("C")))
}
