/*
Copyright 2024 The promql-lang Authors.

Licensed under the Apache License, Version 2.0 (the "License");
you may not use this file except in compliance with the License.
You may obtain a copy of the License at

    http://www.apache.org/licenses/LICENSE-2.0

Unless required by applicable law or agreed to in writing, software
distributed under the License is distributed on an "AS IS" BASIS,
WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
See the License for the specific language governing permissions and
limitations under the License.
*/

package promql

import (
	"fmt"

	"github.com/prometheus/common/model"
)

// CheckType walks expr bottom-up, validating every operator- and
// function-specific rule in spec §4.3, and returns the expression's
// value type. Unlike Expr.Type, CheckType can fail: it is the
// authoritative answer to "is this expression well-typed", while
// Type is a best-effort structural guess that never errors.
func CheckType(expr Expr) (ValueType, error) {
	return checkExpr(expr)
}

func checkExpr(e Expr) (ValueType, error) {
	switch n := e.(type) {
	case *NumberLiteral:
		return ValueTypeScalar, nil
	case *StringLiteral:
		return ValueTypeString, nil
	case *VectorSelector:
		return checkVectorSelector(n)
	case *MatrixSelector:
		if _, err := checkExpr(n.Vector); err != nil {
			return ValueTypeNone, err
		}
		return ValueTypeMatrix, nil
	case *SubqueryExpr:
		return checkSubqueryExpr(n)
	case *OffsetExpr:
		return checkExpr(n.Inner)
	case *ParenExpression:
		return checkExpr(n.Inner)
	case *UnaryExpr:
		return checkUnaryExpr(n)
	case *FunctionCall:
		return checkFunctionCall(n)
	case *AggregateExpr:
		return checkAggregateExpr(n)
	case *BinaryExpr:
		return checkBinaryExpr(n)
	}
	panic(fmt.Sprintf("promql: CheckType: unhandled Expr variant %T", e))
}

func checkVectorSelector(n *VectorSelector) (ValueType, error) {
	all := n.AllMatchers()
	if len(all) == 0 {
		return ValueTypeNone, &TypeError{
			Message: "vector selector must contain at least one non-empty matcher",
			Span:    n.SpanOf(),
		}
	}
	if n.Metric != nil && !model.IsValidMetricName(model.LabelValue(n.Metric.Name)) {
		return ValueTypeNone, &TypeError{
			Message: fmt.Sprintf("invalid metric name %q", n.Metric.Name),
			Span:    n.SpanOf(),
		}
	}
	if n.Matchers != nil {
		for _, m := range n.Matchers.Matchers {
			if !model.LabelName(m.Name).IsValid() {
				return ValueTypeNone, &TypeError{
					Message: fmt.Sprintf("invalid label name %q", m.Name),
					Span:    n.SpanOf(),
				}
			}
		}
	}
	return ValueTypeVector, nil
}

func checkSubqueryExpr(n *SubqueryExpr) (ValueType, error) {
	t, err := checkExpr(n.Inner)
	if err != nil {
		return ValueTypeNone, err
	}
	if t != ValueTypeVector {
		return ValueTypeNone, typeErrorAt(n.Inner.SpanOf(), t, ValueTypeVector)
	}
	return ValueTypeMatrix, nil
}

func checkUnaryExpr(n *UnaryExpr) (ValueType, error) {
	t, err := checkExpr(n.Inner)
	if err != nil {
		return ValueTypeNone, err
	}
	if t != ValueTypeScalar && t != ValueTypeVector {
		return ValueTypeNone, typeErrorAtMulti(n.Inner.SpanOf(), t, []ValueType{ValueTypeScalar, ValueTypeVector})
	}
	return t, nil
}

func checkFunctionCall(n *FunctionCall) (ValueType, error) {
	if n.Function == nil {
		return ValueTypeNone, &TypeError{Message: "unknown function", Span: n.SpanOf()}
	}
	for i, arg := range n.Args {
		t, err := checkExpr(arg)
		if err != nil {
			return ValueTypeNone, err
		}
		want := n.Function.ArgTypeAt(i)
		if t != want {
			return ValueTypeNone, typeErrorAt(arg.SpanOf(), t, want)
		}
	}
	return n.Function.ReturnType, nil
}

func checkAggregateExpr(n *AggregateExpr) (ValueType, error) {
	t, err := checkExpr(n.Expr)
	if err != nil {
		return ValueTypeNone, err
	}
	if t != ValueTypeVector {
		return ValueTypeNone, typeErrorAt(n.Expr.SpanOf(), t, ValueTypeVector)
	}
	if n.Op.ParameterType != nil {
		if n.Param == nil {
			return ValueTypeNone, &TypeError{
				Message: fmt.Sprintf("aggregation operator %s requires a parameter of type %s", n.Op.Name, n.Op.ParameterType),
				Span:    n.SpanOf(),
			}
		}
		pt, err := checkExpr(n.Param)
		if err != nil {
			return ValueTypeNone, err
		}
		if pt != *n.Op.ParameterType {
			return ValueTypeNone, typeErrorAt(n.Param.SpanOf(), pt, *n.Op.ParameterType)
		}
	}
	return ValueTypeVector, nil
}

func checkBinaryExpr(n *BinaryExpr) (ValueType, error) {
	lt, err := checkExpr(n.LHS)
	if err != nil {
		return ValueTypeNone, err
	}
	rt, err := checkExpr(n.RHS)
	if err != nil {
		return ValueTypeNone, err
	}

	if lt != ValueTypeScalar && lt != ValueTypeVector {
		return ValueTypeNone, typeErrorAtMulti(n.LHS.SpanOf(), lt, []ValueType{ValueTypeScalar, ValueTypeVector})
	}
	if rt != ValueTypeScalar && rt != ValueTypeVector {
		return ValueTypeNone, typeErrorAtMulti(n.RHS.SpanOf(), rt, []ValueType{ValueTypeScalar, ValueTypeVector})
	}

	if n.Op.isSetOperator() {
		if lt != ValueTypeVector || rt != ValueTypeVector {
			return ValueTypeNone, &TypeError{
				Message: fmt.Sprintf("set operator %s not allowed in binary scalar expression", n.Op),
				Span:    n.SpanOf(),
			}
		}
		return ValueTypeVector, nil
	}

	if lt == ValueTypeScalar && rt == ValueTypeScalar {
		if n.Op.isComparison() && (n.Matching == nil || !n.Matching.ReturnBool) {
			return ValueTypeNone, &TypeError{
				Message: "comparisons between scalars must use bool modifier",
				Span:    n.SpanOf(),
			}
		}
		return ValueTypeScalar, nil
	}

	return ValueTypeVector, nil
}

// typeErrorAt builds the single-expected-type TypeError message the
// function-argument and aggregate-parameter checks use, in the exact
// "Unexpected type '<actual>' was provided, expected <expected>: <offset>
// (line L, column C)" form this package's callers depend on.
func typeErrorAt(span Span, actual, expected ValueType) *TypeError {
	return &TypeError{
		Message: fmt.Sprintf(
			"Unexpected type '%s' was provided, expected %s: %d (line %d, column %d)",
			actual, expected, span.Start.Offset, span.Start.Line, span.Start.Column,
		),
		Expected: []ValueType{expected},
		Actual:   actual,
		Span:     span,
	}
}

// typeErrorAtMulti is typeErrorAt's variant for positions that accept
// more than one value type (e.g. either operand of a binary
// expression accepts scalar or instant vector).
func typeErrorAtMulti(span Span, actual ValueType, expected []ValueType) *TypeError {
	joined := ""
	for i, t := range expected {
		if i > 0 {
			joined += " or "
		}
		joined += t.String()
	}
	return &TypeError{
		Message: fmt.Sprintf(
			"Unexpected type '%s' was provided, expected %s: %d (line %d, column %d)",
			actual, joined, span.Start.Offset, span.Start.Line, span.Start.Column,
		),
		Expected: expected,
		Actual:   actual,
		Span:     span,
	}
}
