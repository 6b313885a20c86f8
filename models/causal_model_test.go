package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/TheoVerhelst/causalgo/expressions"
	"github.com/TheoVerhelst/causalgo/factors"
)

// xorModel builds X, Y ~ Bernoulli(0.2), Bernoulli(0.4) and Z := X ⊕ Y.
func xorModel(t *testing.T) (*CausalModel, *factors.Variable, *factors.Variable, *factors.Variable) {
	t.Helper()
	x := factors.Bool("X")
	y := factors.Bool("Y")
	z := factors.Bool("Z")

	dist := NewIndependentDistribution(42)
	require.NoError(t, dist.AddBernoulli(x, 0.2))
	require.NoError(t, dist.AddBernoulli(y, 0.4))

	xor, err := factors.Xor([]*factors.Variable{x, y}, z)
	require.NoError(t, err)
	model, err := NewCausalModel(dist, []*factors.DiscreteFunction{xor})
	require.NoError(t, err)
	return model, x, y, z
}

func probability(t *testing.T, m *CausalModel, expr expressions.ValueExpression) float64 {
	t.Helper()
	p, err := m.Probability(expr)
	require.NoError(t, err)
	return p
}

func TestInferredGraph(t *testing.T) {
	model, _, _, _ := xorModel(t)
	g := model.Graph()

	assert.Equal(t, []string{"X", "Y", "Z"}, g.Nodes())
	assert.True(t, g.HasEdge("X", "Z"))
	assert.True(t, g.HasEdge("Y", "Z"))
	assert.Equal(t, []string{"X", "Y"}, g.Roots())
}

func TestXorProbabilities(t *testing.T) {
	model, _, _, z := xorModel(t)

	assert.InDelta(t, 0.44, probability(t, model, expressions.Equality(z, true)), 1e-9)
	assert.InDelta(t, 0.56, probability(t, model, expressions.Equality(z, false)), 1e-9)
}

func TestTautologyAndContradiction(t *testing.T) {
	model, _, _, z := xorModel(t)

	tautology := expressions.Disjunction(
		expressions.Equality(z, true),
		expressions.Equality(z, false),
	)
	assert.InDelta(t, 1.0, probability(t, model, tautology), 1e-9)

	contradiction := expressions.Conjunction(
		expressions.Equality(z, true),
		expressions.Equality(z, false),
	)
	assert.InDelta(t, 0.0, probability(t, model, contradiction), 1e-9)
}

func TestMarginalisation(t *testing.T) {
	model, x, _, z := xorModel(t)

	for _, v := range []*factors.Variable{x, z} {
		total := 0.0
		for _, value := range v.Support {
			total += probability(t, model, expressions.Equality(v, value))
		}
		assert.InDelta(t, 1.0, total, 1e-9)
	}
}

func TestCounterfactual(t *testing.T) {
	model, x, _, z := xorModel(t)

	// Z flips with X exactly when Y is true.
	expr := expressions.Conjunction(
		expressions.Equality(z.Do(x, false), true),
		expressions.Equality(z.Do(x, true), false),
	)
	assert.InDelta(t, 0.4, probability(t, model, expr), 1e-9)

	flipped := expressions.Conjunction(
		expressions.Equality(z.Do(x, false), false),
		expressions.Equality(z.Do(x, true), true),
	)
	assert.InDelta(t, 0.6, probability(t, model, flipped), 1e-9)
}

func TestTwinNetworkConsistency(t *testing.T) {
	model, x, _, z := xorModel(t)

	before := probability(t, model, expressions.Equality(z, true))
	require.NoError(t, model.AddTwinNetwork(x, false))
	after := probability(t, model, expressions.Equality(z, true))

	// Observational queries are invariant to materialised twin
	// networks for unrelated interventions.
	assert.InDelta(t, before, after, 1e-12)

	// The twin variables exist as real graph nodes.
	assert.True(t, model.Graph().HasNode(z.Do(x, false).Key()))
	assert.True(t, model.Graph().HasNode(x.Do(x, false).Key()))
}

func TestTwinNetworkIdempotent(t *testing.T) {
	model, x, _, z := xorModel(t)

	expr := expressions.Equality(z.Do(x, true), true)
	first := probability(t, model, expr)
	second := probability(t, model, expr)
	assert.InDelta(t, first, second, 1e-12)
	// With X forced true, Z = ¬Y, so P(Z_{X=true}) = P(Y = false).
	assert.InDelta(t, 0.6, first, 1e-9)
}

func TestIntervention(t *testing.T) {
	model, x, _, z := xorModel(t)

	intervened, err := model.Intervention(x, true)
	require.NoError(t, err)

	assert.InDelta(t, 1.0, probability(t, intervened, expressions.Equality(x, true)), 1e-9)
	assert.InDelta(t, 0.0, probability(t, intervened, expressions.Equality(x, false)), 1e-9)
	// With X = true, Z = ¬Y.
	assert.InDelta(t, 0.6, probability(t, intervened, expressions.Equality(z, true)), 1e-9)

	// The original model is unchanged.
	assert.InDelta(t, 0.2, probability(t, model, expressions.Equality(x, true)), 1e-9)
	assert.InDelta(t, 0.44, probability(t, model, expressions.Equality(z, true)), 1e-9)
}

func TestUnknownVariable(t *testing.T) {
	model, _, _, _ := xorModel(t)

	_, err := model.Probability(expressions.Equality(factors.Bool("Q"), true))
	assert.ErrorIs(t, err, ErrUnknownVariable)
}

func TestMissingDistribution(t *testing.T) {
	x := factors.Bool("X")
	y := factors.Bool("Y")
	z := factors.Bool("Z")

	dist := NewIndependentDistribution(1)
	require.NoError(t, dist.AddBernoulli(x, 0.2))

	xor, err := factors.Xor([]*factors.Variable{x, y}, z)
	require.NoError(t, err)
	_, err = NewCausalModel(dist, []*factors.DiscreteFunction{xor})
	assert.ErrorIs(t, err, ErrMissingDistribution)
}

func TestConstantRootNeedsNoDistribution(t *testing.T) {
	x := factors.Bool("X")
	y := factors.Bool("Y")
	z := factors.Bool("Z")

	dist := NewIndependentDistribution(1)
	require.NoError(t, dist.AddBernoulli(y, 0.4))

	constant, err := factors.ConstantFunction(x, true)
	require.NoError(t, err)
	xor, err := factors.Xor([]*factors.Variable{x, y}, z)
	require.NoError(t, err)

	model, err := NewCausalModel(dist, []*factors.DiscreteFunction{constant, xor})
	require.NoError(t, err)
	assert.InDelta(t, 1.0, probability(t, model, expressions.Equality(x, true)), 1e-9)
	// Z = ¬Y under constant X = true.
	assert.InDelta(t, 0.6, probability(t, model, expressions.Equality(z, true)), 1e-9)
}

func TestRvsRespectsEquations(t *testing.T) {
	model, x, y, z := xorModel(t)

	samples, err := model.Rvs(200)
	require.NoError(t, err)
	require.Len(t, samples[x.Key()], 200)
	require.Len(t, samples[z.Key()], 200)

	for i := 0; i < 200; i++ {
		xv := samples[x.Key()][i].(bool)
		yv := samples[y.Key()][i].(bool)
		zv := samples[z.Key()][i].(bool)
		assert.Equal(t, xv != yv, zv)
	}
}

func TestRvsReproducibleModel(t *testing.T) {
	first, _, _, _ := xorModel(t)
	second, _, _, _ := xorModel(t)

	s1, err := first.Rvs(100)
	require.NoError(t, err)
	s2, err := second.Rvs(100)
	require.NoError(t, err)
	assert.Equal(t, s1, s2)
}

func TestNegatedQuery(t *testing.T) {
	model, _, _, z := xorModel(t)

	p := probability(t, model, expressions.Negation(expressions.Equality(z, true)))
	assert.InDelta(t, 0.56, p, 1e-9)
}

func TestConjunctionOverExogenous(t *testing.T) {
	model, x, y, _ := xorModel(t)

	expr := expressions.Conjunction(
		expressions.Equality(x, true),
		expressions.Equality(y, true),
	)
	assert.InDelta(t, 0.2*0.4, probability(t, model, expr), 1e-9)
}
