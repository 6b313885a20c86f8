package factors

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrAxisNotFound is returned when an operation names a dimension
	// that is not part of an operand.
	ErrAxisNotFound = errors.New("factors: axis not found in set dimensions")
	// ErrDuplicateDimension is returned when a set would carry the same
	// variable on two axes.
	ErrDuplicateDimension = errors.New("factors: duplicate dimension")
	// ErrDimensionOrder is returned by MatchToBroadcast when an axis of
	// the other operand already sits right of its aligned slot.
	ErrDimensionOrder = errors.New("factors: dimension already aligned further right")
)

// DiscreteSet is a truth-table over an ordered tuple of variables. Cell
// (i₁,…,iₙ) is a member iff the valuation {vₖ = Supportₖ[iₖ]} belongs
// to the set. Values are stored as a dense row-major array; entries
// widen beyond 0/1 under Tensor, where they count consistent
// assignments of the contracted axis.
//
// Public operations treat sets as values: they copy the receiver before
// any internal axis manipulation. MatchToBroadcast and the axis
// primitives mutate in place and are meant for freshly copied operands.
type DiscreteSet struct {
	Dims   []*Variable
	Shape  []int
	Values []float64
}

// NewDiscreteSet creates an empty set over the given dimensions. The
// shape follows the support of each variable.
func NewDiscreteSet(dims ...*Variable) (*DiscreteSet, error) {
	for i, d := range dims {
		for _, e := range dims[i+1:] {
			if d.Equal(e) {
				return nil, fmt.Errorf("%w: %s", ErrDuplicateDimension, d)
			}
		}
	}
	shape := make([]int, len(dims))
	size := 1
	for i, d := range dims {
		shape[i] = d.Cardinality()
		size *= shape[i]
	}
	return &DiscreteSet{
		Dims:   append([]*Variable(nil), dims...),
		Shape:  shape,
		Values: make([]float64, size),
	}, nil
}

// NewScalarSet creates a zero-dimensional set holding a single truth
// value.
func NewScalarSet(member bool) *DiscreteSet {
	s := &DiscreteSet{Values: make([]float64, 1)}
	if member {
		s.Values[0] = 1
	}
	return s
}

// Copy returns a deep copy of the value array; the variables themselves
// are shared (they are immutable).
func (s *DiscreteSet) Copy() *DiscreteSet {
	return &DiscreteSet{
		Dims:   append([]*Variable(nil), s.Dims...),
		Shape:  append([]int(nil), s.Shape...),
		Values: append([]float64(nil), s.Values...),
	}
}

// DimIndex returns the axis position of dim, or -1.
func (s *DiscreteSet) DimIndex(dim *Variable) int {
	for i, d := range s.Dims {
		if d.Equal(dim) {
			return i
		}
	}
	return -1
}

// HasDim reports whether dim is one of the set's axes.
func (s *DiscreteSet) HasDim(dim *Variable) bool {
	return s.DimIndex(dim) >= 0
}

func strides(shape []int) []int {
	st := make([]int, len(shape))
	acc := 1
	for i := len(shape) - 1; i >= 0; i-- {
		st[i] = acc
		acc *= shape[i]
	}
	return st
}

func size(shape []int) int {
	acc := 1
	for _, n := range shape {
		acc *= n
	}
	return acc
}

// flatten converts a multi-index to a flat offset.
func flatten(index, stride []int) int {
	off := 0
	for i, v := range index {
		off += v * stride[i]
	}
	return off
}

// next advances a multi-index in row-major order; false on wrap-around.
func next(index, shape []int) bool {
	for i := len(index) - 1; i >= 0; i-- {
		index[i]++
		if index[i] < shape[i] {
			return true
		}
		index[i] = 0
	}
	return false
}

// transpose physically reorders the axes so that new axis k is old axis
// perm[k]. Dims, Shape and the value layout stay in lock-step.
func (s *DiscreteSet) transpose(perm []int) {
	oldShape := s.Shape
	oldStrides := strides(oldShape)
	newDims := make([]*Variable, len(perm))
	newShape := make([]int, len(perm))
	for k, p := range perm {
		newDims[k] = s.Dims[p]
		newShape[k] = oldShape[p]
	}
	newValues := make([]float64, len(s.Values))
	newStrides := strides(newShape)
	if len(perm) > 0 {
		index := make([]int, len(perm))
		for {
			oldOff := 0
			for k, p := range perm {
				oldOff += index[k] * oldStrides[p]
			}
			newValues[flatten(index, newStrides)] = s.Values[oldOff]
			if !next(index, newShape) {
				break
			}
		}
	} else {
		copy(newValues, s.Values)
	}
	s.Dims = newDims
	s.Shape = newShape
	s.Values = newValues
}

// swapAxes exchanges axes i and j.
func (s *DiscreteSet) swapAxes(i, j int) {
	perm := make([]int, len(s.Dims))
	for k := range perm {
		perm[k] = k
	}
	perm[i], perm[j] = perm[j], perm[i]
	s.transpose(perm)
}

// insertAxis inserts a singleton axis for dim at position pos. The
// value layout is unchanged.
func (s *DiscreteSet) insertAxis(pos int, dim *Variable) {
	dims := make([]*Variable, 0, len(s.Dims)+1)
	dims = append(dims, s.Dims[:pos]...)
	dims = append(dims, dim)
	dims = append(dims, s.Dims[pos:]...)
	shape := make([]int, 0, len(s.Shape)+1)
	shape = append(shape, s.Shape[:pos]...)
	shape = append(shape, 1)
	shape = append(shape, s.Shape[pos:]...)
	s.Dims = dims
	s.Shape = shape
}

// MatchToBroadcast rearranges the receiver so that its rightmost axes
// coincide, in order, with the axes of other; axes of other absent from
// the receiver are inserted as singletons. Axes unique to the receiver
// end up leftmost. After this, element-wise operations between both
// value arrays broadcast correctly under right-aligned shape matching.
func (s *DiscreteSet) MatchToBroadcast(other *DiscreteSet) error {
	for iOther := 0; iOther < len(other.Dims); iOther++ {
		dim := other.Dims[len(other.Dims)-1-iOther]
		n := len(s.Dims)
		if iSelf := s.DimIndex(dim); iSelf >= 0 {
			target := n - 1 - iOther
			if iSelf > target {
				return fmt.Errorf("%w: %s", ErrDimensionOrder, dim)
			}
			if iSelf != target {
				s.swapAxes(iSelf, target)
			}
		} else {
			s.insertAxis(n-iOther, dim)
		}
	}
	return nil
}

// binaryOp aligns a copy of s with other and applies op cell-wise under
// broadcasting. The result dimensions are the union of both operands'
// dimensions, with other's as the rightmost block.
func (s *DiscreteSet) binaryOp(other *DiscreteSet, op func(a, b bool) bool) (*DiscreteSet, error) {
	res := s.Copy()
	if err := res.MatchToBroadcast(other); err != nil {
		return nil, err
	}

	extra := len(res.Dims) - len(other.Dims)
	outShape := make([]int, len(res.Dims))
	copy(outShape, res.Shape)
	for j := 0; j < len(other.Dims); j++ {
		if other.Shape[j] > outShape[extra+j] {
			outShape[extra+j] = other.Shape[j]
		}
	}

	out := &DiscreteSet{
		Dims:   res.Dims,
		Shape:  outShape,
		Values: make([]float64, size(outShape)),
	}
	outStrides := strides(outShape)
	resStrides := strides(res.Shape)
	otherStrides := strides(other.Shape)

	index := make([]int, len(outShape))
	for {
		resOff := 0
		for k := range res.Shape {
			i := index[k]
			if res.Shape[k] == 1 {
				i = 0
			}
			resOff += i * resStrides[k]
		}
		otherOff := 0
		for j := range other.Shape {
			i := index[extra+j]
			if other.Shape[j] == 1 {
				i = 0
			}
			otherOff += i * otherStrides[j]
		}
		if op(res.Values[resOff] != 0, other.Values[otherOff] != 0) {
			out.Values[flatten(index, outStrides)] = 1
		}
		if len(index) == 0 || !next(index, outShape) {
			break
		}
	}
	return out, nil
}

// And returns the intersection of both sets.
func (s *DiscreteSet) And(other *DiscreteSet) (*DiscreteSet, error) {
	return s.binaryOp(other, func(a, b bool) bool { return a && b })
}

// Or returns the union of both sets.
func (s *DiscreteSet) Or(other *DiscreteSet) (*DiscreteSet, error) {
	return s.binaryOp(other, func(a, b bool) bool { return a || b })
}

// Xor returns the symmetric difference of both sets.
func (s *DiscreteSet) Xor(other *DiscreteSet) (*DiscreteSet, error) {
	return s.binaryOp(other, func(a, b bool) bool { return a != b })
}

// Sub returns s ∨ ¬other.
func (s *DiscreteSet) Sub(other *DiscreteSet) (*DiscreteSet, error) {
	return s.binaryOp(other, func(a, b bool) bool { return a || !b })
}

// Not returns the complement of the set.
func (s *DiscreteSet) Not() *DiscreteSet {
	res := s.Copy()
	for i, v := range res.Values {
		if v != 0 {
			res.Values[i] = 0
		} else {
			res.Values[i] = 1
		}
	}
	return res
}

// Tensor contracts both sets over axis. The result's entry at a joint
// valuation counts the assignments of axis under which both operands
// hold. Dimensions shared besides axis are aligned rather than
// duplicated; the output carries the shared dimensions first, then the
// private dimensions of the receiver, then those of other.
func (s *DiscreteSet) Tensor(other *DiscreteSet, axis *Variable) (*DiscreteSet, error) {
	if !s.HasDim(axis) {
		return nil, fmt.Errorf("%w: %s in left operand", ErrAxisNotFound, axis)
	}
	if !other.HasDim(axis) {
		return nil, fmt.Errorf("%w: %s in right operand", ErrAxisNotFound, axis)
	}

	var shared, leftPriv, rightPriv []*Variable
	for _, d := range s.Dims {
		if d.Equal(axis) {
			continue
		}
		if other.HasDim(d) {
			shared = append(shared, d)
		} else {
			leftPriv = append(leftPriv, d)
		}
	}
	for _, d := range other.Dims {
		if d.Equal(axis) || s.HasDim(d) {
			continue
		}
		rightPriv = append(rightPriv, d)
	}

	outDims := make([]*Variable, 0, len(shared)+len(leftPriv)+len(rightPriv))
	outDims = append(outDims, shared...)
	outDims = append(outDims, leftPriv...)
	outDims = append(outDims, rightPriv...)

	outShape := make([]int, len(outDims))
	for i, d := range outDims {
		outShape[i] = d.Cardinality()
	}
	out := &DiscreteSet{
		Dims:   outDims,
		Shape:  outShape,
		Values: make([]float64, size(outShape)),
	}
	outStrides := strides(outShape)

	// For each operand axis, the out-index position it reads from, or
	// -1 for the contracted axis.
	source := func(set *DiscreteSet) []int {
		src := make([]int, len(set.Dims))
		for p, d := range set.Dims {
			src[p] = -1
			if d.Equal(axis) {
				continue
			}
			for k, o := range outDims {
				if o.Equal(d) {
					src[p] = k
					break
				}
			}
		}
		return src
	}
	leftSrc := source(s)
	rightSrc := source(other)
	leftStrides := strides(s.Shape)
	rightStrides := strides(other.Shape)

	offset := func(set *DiscreteSet, src, st []int, index []int, a int) int {
		off := 0
		for p := range set.Dims {
			var i int
			if src[p] < 0 {
				i = a
			} else {
				i = index[src[p]]
			}
			if set.Shape[p] == 1 {
				i = 0
			}
			off += i * st[p]
		}
		return off
	}

	index := make([]int, len(outShape))
	for {
		sum := 0.0
		for a := 0; a < axis.Cardinality(); a++ {
			sum += s.Values[offset(s, leftSrc, leftStrides, index, a)] *
				other.Values[offset(other, rightSrc, rightStrides, index, a)]
		}
		out.Values[flatten(index, outStrides)] = sum
		if len(index) == 0 || !next(index, outShape) {
			break
		}
	}
	return out, nil
}

// Include marks the valuation given by one value per dimension as a
// member of the set.
func (s *DiscreteSet) Include(values ...Value) error {
	off, err := s.offsetOf(values)
	if err != nil {
		return err
	}
	s.Values[off] = 1
	return nil
}

// Has reports whether the valuation given by one value per dimension is
// a member of the set.
func (s *DiscreteSet) Has(values ...Value) bool {
	off, err := s.offsetOf(values)
	if err != nil {
		return false
	}
	return s.Values[off] != 0
}

func (s *DiscreteSet) offsetOf(values []Value) (int, error) {
	if len(values) != len(s.Dims) {
		return 0, fmt.Errorf("factors: expected %d values, got %d", len(s.Dims), len(values))
	}
	st := strides(s.Shape)
	off := 0
	for i, v := range values {
		idx := s.Dims[i].Index(v)
		if idx < 0 {
			return 0, fmt.Errorf("%w: value %v not in support of %s", ErrAxisNotFound, v, s.Dims[i])
		}
		if s.Shape[i] == 1 {
			idx = 0
		}
		off += idx * st[i]
	}
	return off, nil
}

// Count returns the number of member cells.
func (s *DiscreteSet) Count() int {
	n := 0
	for _, v := range s.Values {
		if v != 0 {
			n++
		}
	}
	return n
}

// IsEmpty reports whether the set has no members.
func (s *DiscreteSet) IsEmpty() bool {
	return s.Count() == 0
}

// String lists the member valuations, one per line.
func (s *DiscreteSet) String() string {
	var sb strings.Builder
	names := make([]string, len(s.Dims))
	for i, d := range s.Dims {
		names[i] = d.String()
	}
	sb.WriteString(fmt.Sprintf("DiscreteSet(%s)\n", strings.Join(names, ", ")))
	if len(s.Dims) == 0 {
		sb.WriteString(fmt.Sprintf("  member: %v\n", s.Values[0] != 0))
		return sb.String()
	}
	index := make([]int, len(s.Shape))
	st := strides(s.Shape)
	for {
		if v := s.Values[flatten(index, st)]; v != 0 {
			sb.WriteString(" ")
			for i, d := range s.Dims {
				sb.WriteString(fmt.Sprintf(" %s=%v", d, d.Support[index[i]]))
			}
			sb.WriteString("\n")
		}
		if !next(index, s.Shape) {
			break
		}
	}
	return sb.String()
}
