package factors

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestVariableEquality(t *testing.T) {
	x := Bool("X")
	same := NewVariable("X", false, true)
	other := NewVariable("X", 0, 1)

	assert.True(t, x.Equal(same))
	assert.False(t, x.Equal(other))
	assert.False(t, x.Equal(Bool("Y")))
	assert.False(t, x.Equal(nil))
}

func TestVariableDo(t *testing.T) {
	x := Bool("X")
	z := Bool("Z")

	zx := z.Do(x, true)
	require.NotNil(t, zx.Intervention)
	assert.True(t, zx.Intervention.Variable.Equal(x))
	assert.Equal(t, true, zx.Intervention.Value)

	// The original variable is untouched and differs from the copy.
	assert.Nil(t, z.Intervention)
	assert.False(t, z.Equal(zx))
	assert.True(t, zx.Equal(z.Do(x, true)))
	assert.False(t, zx.Equal(z.Do(x, false)))
}

func TestVariableString(t *testing.T) {
	x := Bool("X")
	z := Bool("Z")

	assert.Equal(t, "Z", z.String())
	assert.Equal(t, "Z_{X = false}", z.Do(x, false).String())
	assert.Equal(t, "Z_{X = true}", z.Do(x, true).String())
}

func TestVariableIndex(t *testing.T) {
	v := NewVariable("V", 0, 1, 2)

	assert.Equal(t, 0, v.Index(0))
	assert.Equal(t, 2, v.Index(2))
	assert.Equal(t, -1, v.Index(5))
	assert.Equal(t, -1, v.Index(true))
	assert.Equal(t, 3, v.Cardinality())
}

func TestVariableLess(t *testing.T) {
	a := Bool("A")
	b := Bool("B")

	assert.True(t, a.Less(b))
	assert.False(t, b.Less(a))
}
