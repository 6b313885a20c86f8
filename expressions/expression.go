// Package expressions provides propositional terms over discrete
// variables, with a truth-set projection consumed by the causal-model
// evaluator, and the symbolic probability terms emitted by the
// identification engine.
package expressions

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/TheoVerhelst/causalgo/factors"
)

// ErrEmptyExpression is returned when a connective has no operands.
var ErrEmptyExpression = errors.New("expressions: connective needs at least one operand")

// Expression is any term that can be rendered.
type Expression interface {
	String() string
}

// ValueExpression is an expression with a truth-set projection: the
// returned set carries one axis per free variable of the expression.
type ValueExpression interface {
	Expression
	Values() (*factors.DiscreteSet, error)
}

// EqualityExpr asserts that its two sides are equal. Each side is
// either a *factors.Variable or a literal value.
type EqualityExpr struct {
	LHS any
	RHS any
}

// Equality creates lhs = rhs.
func Equality(lhs, rhs any) *EqualityExpr {
	return &EqualityExpr{LHS: lhs, RHS: rhs}
}

func (e *EqualityExpr) String() string {
	return renderSide(e.LHS) + " = " + renderSide(e.RHS)
}

func renderSide(side any) string {
	if v, ok := side.(*factors.Variable); ok {
		return v.String()
	}
	return fmt.Sprint(side)
}

// Values projects the equality onto a truth-set. Variable = literal
// yields a 1-D set marking the matching support index (empty when the
// literal is outside the support); variable = variable yields the 2-D
// diagonal under value equality; literal = literal yields a scalar
// set.
func (e *EqualityExpr) Values() (*factors.DiscreteSet, error) {
	lhsVar, lhsIsVar := e.LHS.(*factors.Variable)
	rhsVar, rhsIsVar := e.RHS.(*factors.Variable)

	switch {
	case lhsIsVar != rhsIsVar:
		variable, value := lhsVar, e.RHS
		if rhsIsVar {
			variable, value = rhsVar, e.LHS
		}
		set, err := factors.NewDiscreteSet(variable)
		if err != nil {
			return nil, err
		}
		if variable.Index(value) >= 0 {
			if err := set.Include(value); err != nil {
				return nil, err
			}
		}
		return set, nil

	case lhsIsVar:
		set, err := factors.NewDiscreteSet(lhsVar, rhsVar)
		if err != nil {
			return nil, err
		}
		for _, lv := range lhsVar.Support {
			for _, rv := range rhsVar.Support {
				if lv == rv {
					if err := set.Include(lv, rv); err != nil {
						return nil, err
					}
				}
			}
		}
		return set, nil

	default:
		return factors.NewScalarSet(e.LHS == e.RHS), nil
	}
}

// ConjunctionExpr is the conjunction of its operands.
type ConjunctionExpr struct {
	Exprs []ValueExpression
}

// Conjunction creates the conjunction of the given expressions.
func Conjunction(exprs ...ValueExpression) *ConjunctionExpr {
	return &ConjunctionExpr{Exprs: exprs}
}

func (e *ConjunctionExpr) String() string {
	return joinExprs(e.Exprs, ", ")
}

func (e *ConjunctionExpr) Values() (*factors.DiscreteSet, error) {
	return foldValues(e.Exprs, (*factors.DiscreteSet).And)
}

// DisjunctionExpr is the disjunction of its operands.
type DisjunctionExpr struct {
	Exprs []ValueExpression
}

// Disjunction creates the disjunction of the given expressions.
func Disjunction(exprs ...ValueExpression) *DisjunctionExpr {
	return &DisjunctionExpr{Exprs: exprs}
}

func (e *DisjunctionExpr) String() string {
	return joinExprs(e.Exprs, " ∨ ")
}

func (e *DisjunctionExpr) Values() (*factors.DiscreteSet, error) {
	return foldValues(e.Exprs, (*factors.DiscreteSet).Or)
}

// ExclusiveDisjunctionExpr is the exclusive disjunction of its
// operands.
type ExclusiveDisjunctionExpr struct {
	Exprs []ValueExpression
}

// ExclusiveDisjunction creates the exclusive disjunction of the given
// expressions.
func ExclusiveDisjunction(exprs ...ValueExpression) *ExclusiveDisjunctionExpr {
	return &ExclusiveDisjunctionExpr{Exprs: exprs}
}

func (e *ExclusiveDisjunctionExpr) String() string {
	return joinExprs(e.Exprs, " ⊕ ")
}

func (e *ExclusiveDisjunctionExpr) Values() (*factors.DiscreteSet, error) {
	return foldValues(e.Exprs, (*factors.DiscreteSet).Xor)
}

// NegationExpr is the negation of its operand.
type NegationExpr struct {
	Expr ValueExpression
}

// Negation creates the negation of expr.
func Negation(expr ValueExpression) *NegationExpr {
	return &NegationExpr{Expr: expr}
}

func (e *NegationExpr) String() string {
	if eq, ok := e.Expr.(*EqualityExpr); ok {
		return renderSide(eq.LHS) + " ≠ " + renderSide(eq.RHS)
	}
	return "¬" + e.Expr.String()
}

func (e *NegationExpr) Values() (*factors.DiscreteSet, error) {
	inner, err := e.Expr.Values()
	if err != nil {
		return nil, err
	}
	return inner.Not(), nil
}

func joinExprs[E Expression](exprs []E, sep string) string {
	parts := make([]string, len(exprs))
	for i, e := range exprs {
		parts[i] = e.String()
	}
	return strings.Join(parts, sep)
}

func foldValues(exprs []ValueExpression,
	op func(*factors.DiscreteSet, *factors.DiscreteSet) (*factors.DiscreteSet, error)) (*factors.DiscreteSet, error) {
	if len(exprs) == 0 {
		return nil, ErrEmptyExpression
	}
	acc, err := exprs[0].Values()
	if err != nil {
		return nil, err
	}
	for _, e := range exprs[1:] {
		v, err := e.Values()
		if err != nil {
			return nil, err
		}
		acc, err = op(acc, v)
		if err != nil {
			return nil, err
		}
	}
	return acc, nil
}

// Names is a rendering-only expression listing node names, used by the
// identification engine for events, conditions and summation indices.
type Names []string

// NewNames creates a sorted name list.
func NewNames(names ...string) Names {
	res := append(Names(nil), names...)
	sort.Strings(res)
	return res
}

// Prime returns the names with a prime appended, for the bound copies
// introduced by front-door adjustment.
func (n Names) Prime() Names {
	res := make(Names, len(n))
	for i, name := range n {
		res[i] = name + "'"
	}
	return res
}

// Union returns the sorted union of both name lists.
func (n Names) Union(other Names) Names {
	seen := make(map[string]bool, len(n)+len(other))
	res := make(Names, 0, len(n)+len(other))
	for _, list := range []Names{n, other} {
		for _, name := range list {
			if !seen[name] {
				seen[name] = true
				res = append(res, name)
			}
		}
	}
	sort.Strings(res)
	return res
}

func (n Names) String() string {
	return strings.Join(n, ", ")
}

// ProbabilityExpr is the symbolic term P(event | condition | do(
// intervention)); empty clauses are omitted from the rendering. It has
// no truth-set projection and is not consumed by the evaluator.
type ProbabilityExpr struct {
	Event        Expression
	Condition    Expression
	Intervention Expression
}

// Probability creates P(event).
func Probability(event Expression) *ProbabilityExpr {
	return &ProbabilityExpr{Event: event}
}

// ProbabilityGiven creates P(event | condition).
func ProbabilityGiven(event, condition Expression) *ProbabilityExpr {
	return &ProbabilityExpr{Event: event, Condition: condition}
}

// ProbabilityDo creates P(event | do(intervention)).
func ProbabilityDo(event, intervention Expression) *ProbabilityExpr {
	return &ProbabilityExpr{Event: event, Intervention: intervention}
}

func (e *ProbabilityExpr) String() string {
	var sb strings.Builder
	sb.WriteString("P(")
	sb.WriteString(e.Event.String())
	if e.Condition != nil {
		sb.WriteString(" | ")
		sb.WriteString(e.Condition.String())
	}
	if e.Intervention != nil {
		sb.WriteString(" | do(")
		sb.WriteString(e.Intervention.String())
		sb.WriteString(")")
	}
	sb.WriteString(")")
	return sb.String()
}

// SummationExpr is the symbolic term Σ_{indices} body.
type SummationExpr struct {
	Indices Names
	Body    Expression
}

// Summation creates Σ_{indices} body.
func Summation(indices Names, body Expression) *SummationExpr {
	return &SummationExpr{Indices: indices, Body: body}
}

func (e *SummationExpr) String() string {
	return "Σ_{" + e.Indices.String() + "} " + e.Body.String()
}

// ProductExpr is the juxtaposition of its factors.
type ProductExpr struct {
	Exprs []Expression
}

// Product creates the product of the given terms.
func Product(exprs ...Expression) *ProductExpr {
	return &ProductExpr{Exprs: exprs}
}

func (e *ProductExpr) String() string {
	return joinExprs(e.Exprs, " ")
}
