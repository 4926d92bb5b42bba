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

import "fmt"

// Visitor dispatches on an Expr's concrete type, one method per
// variant in the closed sum type (spec §6). Walk performs the single
// level of dispatch; a Visitor that wants to descend into children
// calls Walk again itself, the way ToPromQL's printer does.
type Visitor interface {
	VisitNumberLiteral(*NumberLiteral)
	VisitStringLiteral(*StringLiteral)
	VisitVectorSelector(*VectorSelector)
	VisitMatrixSelector(*MatrixSelector)
	VisitSubqueryExpr(*SubqueryExpr)
	VisitOffsetExpr(*OffsetExpr)
	VisitParenExpression(*ParenExpression)
	VisitUnaryExpr(*UnaryExpr)
	VisitFunctionCall(*FunctionCall)
	VisitAggregateExpr(*AggregateExpr)
	VisitBinaryExpr(*BinaryExpr)
}

// Walk dispatches e to the matching method of v. It panics if e is
// some Expr implementation from outside this package: the sum type is
// closed by design (spec §3.3), and every caller in this package is
// expected to handle all eleven variants.
func Walk(v Visitor, e Expr) {
	switch n := e.(type) {
	case *NumberLiteral:
		v.VisitNumberLiteral(n)
	case *StringLiteral:
		v.VisitStringLiteral(n)
	case *VectorSelector:
		v.VisitVectorSelector(n)
	case *MatrixSelector:
		v.VisitMatrixSelector(n)
	case *SubqueryExpr:
		v.VisitSubqueryExpr(n)
	case *OffsetExpr:
		v.VisitOffsetExpr(n)
	case *ParenExpression:
		v.VisitParenExpression(n)
	case *UnaryExpr:
		v.VisitUnaryExpr(n)
	case *FunctionCall:
		v.VisitFunctionCall(n)
	case *AggregateExpr:
		v.VisitAggregateExpr(n)
	case *BinaryExpr:
		v.VisitBinaryExpr(n)
	default:
		panic(fmt.Sprintf("promql: Walk: unhandled Expr variant %T", e))
	}
}
