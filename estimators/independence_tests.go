// Package estimators provides structure discovery: conditional
// independence testing, the PC algorithm and random linear systems to
// exercise them.
package estimators

import (
	"math"
	"sort"
	"strings"

	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat"
	"gonum.org/v1/gonum/stat/distuv"

	"github.com/TheoVerhelst/causalgo/utils"
)

// IndependenceTest is the conditional-independence oracle consumed by
// the PC algorithm: the p-value of the hypothesis that x and y are
// independent given cond.
type IndependenceTest interface {
	PValue(x, y string, cond []string) float64
}

// GaussianIndependenceTest tests conditional independence of jointly
// Gaussian variables through partial correlation and Fisher's z
// transform.
type GaussianIndependenceTest struct {
	columns map[string]int
	n       int
	corr    *mat.SymDense
	cache   map[string]float64
}

// NewGaussianIndependenceTest builds the test from a dataset, computing
// the correlation matrix once.
func NewGaussianIndependenceTest(df *utils.DataFrame) *GaussianIndependenceTest {
	data := df.Matrix()
	rows, cols := data.Dims()
	colIdx := make(map[string]int, len(df.Columns))
	for i, name := range df.Columns {
		colIdx[name] = i
	}
	corr := mat.NewSymDense(cols, nil)
	stat.CorrelationMatrix(corr, data, nil)
	return &GaussianIndependenceTest{
		columns: colIdx,
		n:       rows,
		corr:    corr,
		cache:   make(map[string]float64),
	}
}

// PartialCorr returns the partial correlation of x and y given cond,
// by the recursive formula with memoization.
func (t *GaussianIndependenceTest) PartialCorr(x, y string, cond []string) float64 {
	if len(cond) == 0 {
		return t.corr.At(t.columns[x], t.columns[y])
	}

	sorted := append([]string(nil), cond...)
	sort.Strings(sorted)
	key := x + "|" + y + "|" + strings.Join(sorted, ",")
	if r, ok := t.cache[key]; ok {
		return r
	}

	h := sorted[len(sorted)-1]
	rest := sorted[:len(sorted)-1]
	rXY := t.PartialCorr(x, y, rest)
	rXH := t.PartialCorr(x, h, rest)
	rYH := t.PartialCorr(y, h, rest)

	denom := math.Sqrt((1 - rXH*rXH) * (1 - rYH*rYH))
	res := 0.0
	if denom != 0 {
		res = (rXY - rXH*rYH) / denom
	}
	t.cache[key] = res
	return res
}

// logQ1PM returns log((1 + x) / (1 - x)) in a numerically stable way.
func logQ1PM(x float64) float64 {
	return math.Log1p(2 * x / (1 - x))
}

// ZStat returns the Fisher z statistic for the partial correlation of
// x and y given cond.
func (t *GaussianIndependenceTest) ZStat(x, y string, cond []string) float64 {
	r := t.PartialCorr(x, y, cond)
	if r >= 1 {
		r = 0.9999
	}
	if r <= -1 {
		r = -0.9999
	}
	return math.Sqrt(float64(t.n-len(cond)-3)) * math.Abs(0.5*logQ1PM(r))
}

// PValue returns the two-sided p-value of the independence hypothesis.
func (t *GaussianIndependenceTest) PValue(x, y string, cond []string) float64 {
	z := t.ZStat(x, y, cond)
	return 2 * (1 - distuv.UnitNormal.CDF(z))
}
