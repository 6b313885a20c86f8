package factors

import "fmt"

// Function is the callable backing a DiscreteFunction. It receives one
// value per input variable and returns a value in the output support.
type Function func(args ...Value) Value

// DiscreteFunction is a deterministic total function from the supports
// of its inputs to the support of its output. The preimage truth-table,
// over (inputs..., output), holds exactly where f(inputs) == output; it
// is the only representation the evaluator touches at runtime. The
// callable is consulted at construction and during forward sampling.
type DiscreteFunction struct {
	Fn       Function
	Inputs   []*Variable
	Output   *Variable
	Preimage *DiscreteSet
}

// NewDiscreteFunction builds the function and its preimage by
// evaluating fn over the full input grid.
func NewDiscreteFunction(fn Function, inputs []*Variable, output *Variable) (*DiscreteFunction, error) {
	dims := make([]*Variable, 0, len(inputs)+1)
	dims = append(dims, inputs...)
	dims = append(dims, output)
	pre, err := NewDiscreteSet(dims...)
	if err != nil {
		return nil, err
	}

	args := make([]Value, len(inputs))
	index := make([]int, len(inputs))
	for {
		for i, in := range inputs {
			args[i] = in.Support[index[i]]
		}
		image := fn(args...)
		outIdx := output.Index(image)
		if outIdx < 0 {
			return nil, fmt.Errorf("factors: %s maps %v to %v, outside the support of %s",
				output, args, image, output)
		}
		cell := make([]Value, 0, len(inputs)+1)
		cell = append(cell, args...)
		cell = append(cell, image)
		if err := pre.Include(cell...); err != nil {
			return nil, err
		}
		if len(index) == 0 || !nextInputs(index, inputs) {
			break
		}
	}

	return &DiscreteFunction{
		Fn:       fn,
		Inputs:   append([]*Variable(nil), inputs...),
		Output:   output,
		Preimage: pre,
	}, nil
}

func nextInputs(index []int, inputs []*Variable) bool {
	for i := len(index) - 1; i >= 0; i-- {
		index[i]++
		if index[i] < inputs[i].Cardinality() {
			return true
		}
		index[i] = 0
	}
	return false
}

// IsConstant reports whether the function has no inputs.
func (f *DiscreteFunction) IsConstant() bool {
	return len(f.Inputs) == 0
}

// Xor creates the element-wise exclusive-or reduction of boolean
// inputs.
func Xor(inputs []*Variable, output *Variable) (*DiscreteFunction, error) {
	return NewDiscreteFunction(func(args ...Value) Value {
		res := false
		for _, a := range args {
			res = res != a.(bool)
		}
		return res
	}, inputs, output)
}

// And creates the conjunction of boolean inputs.
func And(inputs []*Variable, output *Variable) (*DiscreteFunction, error) {
	return NewDiscreteFunction(func(args ...Value) Value {
		for _, a := range args {
			if !a.(bool) {
				return false
			}
		}
		return true
	}, inputs, output)
}

// Or creates the disjunction of boolean inputs.
func Or(inputs []*Variable, output *Variable) (*DiscreteFunction, error) {
	return NewDiscreteFunction(func(args ...Value) Value {
		for _, a := range args {
			if a.(bool) {
				return true
			}
		}
		return false
	}, inputs, output)
}

// Not creates the boolean negation of a single input.
func Not(input, output *Variable) (*DiscreteFunction, error) {
	return NewDiscreteFunction(func(args ...Value) Value {
		return !args[0].(bool)
	}, []*Variable{input}, output)
}

// ConstantFunction creates a function with no inputs and a fixed
// output value.
func ConstantFunction(output *Variable, value Value) (*DiscreteFunction, error) {
	return NewDiscreteFunction(func(args ...Value) Value {
		return value
	}, nil, output)
}
