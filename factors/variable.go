// Package factors provides discrete variables, truth-table sets over
// named variable axes, and deterministic functions between them.
package factors

import (
	"fmt"
	"strings"
)

// Value is one atom of a variable support. Supports hold small
// comparable values such as booleans or integers; equality is ==.
type Value = any

// Intervention tags a variable as the counterfactual copy of itself
// in the world where Variable was forced to Value.
type Intervention struct {
	Variable *Variable
	Value    Value
}

// Key returns the canonical string form of the tag, used to identify
// materialised twin networks.
func (iv *Intervention) Key() string {
	return iv.Variable.String() + " = " + fmt.Sprint(iv.Value)
}

// Equal reports whether both tags intervene on equal variables with
// equal values.
func (iv *Intervention) Equal(other *Intervention) bool {
	if iv == nil || other == nil {
		return iv == other
	}
	return iv.Variable.Equal(other.Variable) && iv.Value == other.Value
}

// Variable is a named discrete axis with a finite ordered support.
// Variables are immutable value objects; Do returns tagged copies.
type Variable struct {
	Name         string
	Support      []Value
	Intervention *Intervention
}

// NewVariable creates a variable with the given name and support.
func NewVariable(name string, support ...Value) *Variable {
	return &Variable{Name: name, Support: support}
}

// Bool creates a variable with support (false, true).
func Bool(name string) *Variable {
	return NewVariable(name, false, true)
}

// Do returns a copy of v tagged as the counterfactual copy of v in the
// world where x was set to value.
func (v *Variable) Do(x *Variable, value Value) *Variable {
	return &Variable{
		Name:         v.Name,
		Support:      v.Support,
		Intervention: &Intervention{Variable: x, Value: value},
	}
}

// Index returns the position of value in the support, or -1 when the
// value is not a member.
func (v *Variable) Index(value Value) int {
	for i, s := range v.Support {
		if s == value {
			return i
		}
	}
	return -1
}

// Cardinality returns the size of the support.
func (v *Variable) Cardinality() int {
	return len(v.Support)
}

// Equal reports whether both variables have the same name, support and
// intervention tag.
func (v *Variable) Equal(other *Variable) bool {
	if v == nil || other == nil {
		return v == other
	}
	if v.Name != other.Name || len(v.Support) != len(other.Support) {
		return false
	}
	for i := range v.Support {
		if v.Support[i] != other.Support[i] {
			return false
		}
	}
	return v.Intervention.Equal(other.Intervention)
}

// Key returns the canonical string form of the variable. It doubles as
// the node identity in causal graphs and as map key throughout the
// model layer.
func (v *Variable) Key() string {
	return v.String()
}

// Less orders variables by string form, the tie-break used by
// topological sorts.
func (v *Variable) Less(other *Variable) bool {
	return v.String() < other.String()
}

// String renders the variable name; a counterfactual copy of V under
// X = x renders as V_{X = x}.
func (v *Variable) String() string {
	var sb strings.Builder
	sb.WriteString(v.Name)
	if v.Intervention != nil {
		sb.WriteString("_{")
		sb.WriteString(v.Intervention.Variable.String())
		sb.WriteString(" = ")
		sb.WriteString(fmt.Sprint(v.Intervention.Value))
		sb.WriteString("}")
	}
	return sb.String()
}
