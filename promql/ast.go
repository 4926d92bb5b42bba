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


// ValueType is PromQL's closed value-type domain (spec §3.1).
type ValueType int

const (
	ValueTypeNone ValueType = iota
	ValueTypeScalar
	ValueTypeVector
	ValueTypeMatrix
	ValueTypeString
)

func (t ValueType) String() string {
	switch t {
	case ValueTypeNone:
		return "none"
	case ValueTypeScalar:
		return "scalar"
	case ValueTypeVector:
		return "instant vector"
	case ValueTypeMatrix:
		return "range vector"
	case ValueTypeString:
		return "string"
	}
	return "unknown"
}

// MetricIdentifier is the bare `__name__` component of a vector
// selector, e.g. the "node_cpu_seconds_total" in
// `node_cpu_seconds_total{job="foo"}`.
type MetricIdentifier struct {
	Name string
}

// LabelMatchOp is the closed set of label-matcher operators.
type LabelMatchOp int

const (
	MatchEqual LabelMatchOp = iota
	MatchNotEqual
	MatchRegexp
	MatchNotRegexp
)

func (op LabelMatchOp) String() string {
	switch op {
	case MatchEqual:
		return "="
	case MatchNotEqual:
		return "!="
	case MatchRegexp:
		return "=~"
	case MatchNotRegexp:
		return "!~"
	}
	return "?"
}

// LabelMatcher constrains one label of a vector selector.
type LabelMatcher struct {
	Name  string
	Op    LabelMatchOp
	Value StringLiteral
}

// LabelMatchers is an ordered set of label matchers. Insertion order
// is preserved for printing (spec §3.3); it is never sorted.
type LabelMatchers struct {
	Matchers []LabelMatcher
}

// VectorMatchCardinality describes the join cardinality of a binary
// vector-vector operation.
type VectorMatchCardinality int

const (
	CardOneToOne VectorMatchCardinality = iota
	CardManyToOne
	CardOneToMany
)

func (c VectorMatchCardinality) String() string {
	switch c {
	case CardOneToOne:
		return "one-to-one"
	case CardManyToOne:
		return "many-to-one"
	case CardOneToMany:
		return "one-to-many"
	}
	return "?"
}

// VectorMatching carries the on/ignoring and group_left/group_right
// modifiers of a binary vector-vector expression, plus the `bool`
// modifier. The zero value is the grammar's default: one-to-one, no
// matching labels, ignoring semantics (on=false), nothing included,
// bool not set (spec §3.3).
type VectorMatching struct {
	Cardinality    VectorMatchCardinality
	MatchingLabels []string
	On             bool
	Include        []string
	ReturnBool     bool
}

// DefaultVectorMatching returns the grammar's default VectorMatching.
// The parser itself never builds it: a BinaryExpr written with no
// bool/on/ignoring/group modifier carries a nil Matching, which the
// printer and type checker treat the same as this value.
func DefaultVectorMatching() *VectorMatching {
	return &VectorMatching{Cardinality: CardOneToOne}
}

// UnaryOp is the closed set of unary prefix operators.
type UnaryOp int

const (
	UnaryAdd UnaryOp = iota
	UnarySub
)

func (op UnaryOp) String() string {
	if op == UnarySub {
		return "-"
	}
	return "+"
}

// BinaryOp is the closed set of binary operators. The String form
// matches the capitalized Go-identifier spelling used in this
// package's stable error messages (e.g. "set operator And not
// allowed..."), not the PromQL surface spelling.
type BinaryOp int

const (
	OpAdd BinaryOp = iota
	OpSub
	OpMul
	OpDiv
	OpMod
	OpPow
	OpAtan2
	OpEql
	OpNeq
	OpLss
	OpLte
	OpGtr
	OpGte
	OpLand
	OpLor
	OpLunless
)

var binaryOpNames = map[BinaryOp]string{
	OpAdd: "Add", OpSub: "Sub", OpMul: "Mul", OpDiv: "Div", OpMod: "Mod",
	OpPow: "Pow", OpAtan2: "Atan2", OpEql: "Eql", OpNeq: "Neq", OpLss: "Lss",
	OpLte: "Lte", OpGtr: "Gtr", OpGte: "Gte", OpLand: "And", OpLor: "Or",
	OpLunless: "Unless",
}

func (op BinaryOp) String() string {
	if n, ok := binaryOpNames[op]; ok {
		return n
	}
	return "?"
}

var binaryOpSurface = map[BinaryOp]string{
	OpAdd: "+", OpSub: "-", OpMul: "*", OpDiv: "/", OpMod: "%",
	OpPow: "^", OpAtan2: "atan2", OpEql: "==", OpNeq: "!=", OpLss: "<",
	OpLte: "<=", OpGtr: ">", OpGte: ">=", OpLand: "and", OpLor: "or",
	OpLunless: "unless",
}

// Surface returns the PromQL spelling of op, as the printer emits it.
func (op BinaryOp) Surface() string {
	return binaryOpSurface[op]
}

func (op BinaryOp) isComparison() bool {
	switch op {
	case OpEql, OpNeq, OpLss, OpLte, OpGtr, OpGte:
		return true
	}
	return false
}

func (op BinaryOp) isSetOperator() bool {
	switch op {
	case OpLand, OpLor, OpLunless:
		return true
	}
	return false
}

// Expr is the closed sum type of PromQL expression AST nodes (spec
// §3.3). Every case must be handled by the type checker, the printer,
// and Visitor/Walk; adding a variant here means touching all three.
type Expr interface {
	exprNode()
	SpanOf() Span
	// Type returns this node's value type, computed purely
	// structurally from its children per the §3.3 table. It never
	// errors: structurally-invalid trees (e.g. a binary expression
	// over two strings) still get a best-effort answer here, and
	// CheckType is what raises the corresponding TypeError.
	Type() ValueType
}

type span struct{ Span Span }

func (s span) SpanOf() Span { return s.Span }

// NumberLiteral is a numeric constant, including ±Inf and NaN.
type NumberLiteral struct {
	span
	Value float64
}

func (*NumberLiteral) exprNode()         {}
func (*NumberLiteral) Type() ValueType   { return ValueTypeScalar }

// StringQuote is the quoting style a StringLiteral was written with.
type StringQuote byte

const (
	QuoteDouble StringQuote = '"'
	QuoteSingle StringQuote = '\''
	QuoteBacktick StringQuote = '`'
)

// StringLiteral is a quoted string constant.
type StringLiteral struct {
	span
	Quote StringQuote
	Value string
}

func (*StringLiteral) exprNode()       {}
func (*StringLiteral) Type() ValueType { return ValueTypeString }

// VectorSelector selects a set of time series by metric name and/or
// label matchers. At least one of Metric or a non-empty Matchers must
// be present (spec §3.3 invariant).
type VectorSelector struct {
	span
	Metric   *MetricIdentifier
	Matchers *LabelMatchers
}

func (*VectorSelector) exprNode()       {}
func (*VectorSelector) Type() ValueType { return ValueTypeVector }

// AllMatchers returns the selector's matchers, synthesizing a
// __name__ matcher from Metric when present, in the order __name__
// would sort relative to the written matchers: metric name first.
func (v *VectorSelector) AllMatchers() []LabelMatcher {
	var out []LabelMatcher
	if v.Metric != nil {
		out = append(out, LabelMatcher{
			Name: "__name__",
			Op:   MatchEqual,
			Value: StringLiteral{Quote: QuoteDouble, Value: v.Metric.Name},
		})
	}
	if v.Matchers != nil {
		out = append(out, v.Matchers.Matchers...)
	}
	return out
}

// MatrixSelector is a range-vector selector: a VectorSelector plus a
// lookback range, e.g. `http_requests_total[5m]`.
type MatrixSelector struct {
	span
	Vector *VectorSelector
	Range  Duration
}

func (*MatrixSelector) exprNode()       {}
func (*MatrixSelector) Type() ValueType { return ValueTypeMatrix }

// SubqueryExpr evaluates an instant-vector-valued inner expression
// repeatedly over a range, e.g. `rate(x[5m])[30m:1m]`.
type SubqueryExpr struct {
	span
	Inner Expr
	Range Duration
	Step  *Duration
}

func (*SubqueryExpr) exprNode()       {}
func (*SubqueryExpr) Type() ValueType { return ValueTypeMatrix }

// OffsetExpr shifts its inner selector/subquery backward (or, with a
// negative duration, forward) in time.
type OffsetExpr struct {
	span
	Inner  Expr
	Offset Duration
}

func (*OffsetExpr) exprNode()       {}
func (o *OffsetExpr) Type() ValueType { return o.Inner.Type() }

// ParenExpression preserves explicit parenthesization around an
// expression; the printer always re-emits the parentheses.
type ParenExpression struct {
	span
	Inner Expr
}

func (*ParenExpression) exprNode()       {}
func (p *ParenExpression) Type() ValueType { return p.Inner.Type() }

// UnaryExpr is a prefix +/- applied to a scalar or vector expression.
type UnaryExpr struct {
	span
	Op    UnaryOp
	Inner Expr
}

func (*UnaryExpr) exprNode()       {}
func (u *UnaryExpr) Type() ValueType { return u.Inner.Type() }

// FunctionCall applies a cataloged PromQL function to its arguments.
type FunctionCall struct {
	span
	Function *Function
	Args     []Expr
}

func (*FunctionCall) exprNode() {}
func (f *FunctionCall) Type() ValueType {
	if f.Function == nil {
		return ValueTypeNone
	}
	return f.Function.ReturnType
}

// AggregateExpr applies an aggregation operator to a vector, with an
// optional scalar/string parameter and an optional by/without
// grouping clause.
type AggregateExpr struct {
	span
	Op              *AggregateOperator
	Expr            Expr
	Param           Expr
	Grouping        []string
	Without         bool
}

func (*AggregateExpr) exprNode()       {}
func (*AggregateExpr) Type() ValueType { return ValueTypeVector }

// BinaryExpr is a binary operator expression. Matching is nil when no
// bool, on/ignoring or group modifier was written after the operator,
// whatever the operand types; a bare `bool` yields a non-nil Matching
// with only ReturnBool set, including on scalar-scalar comparisons.
type BinaryExpr struct {
	span
	LHS, RHS Expr
	Op       BinaryOp
	Matching *VectorMatching
}

func (*BinaryExpr) exprNode() {}
func (b *BinaryExpr) Type() ValueType {
	if b.LHS.Type() == ValueTypeScalar && b.RHS.Type() == ValueTypeScalar {
		return ValueTypeScalar
	}
	return ValueTypeVector
}
