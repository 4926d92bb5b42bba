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
	"math"
	"strconv"
	"strings"
)

// printer renders an Expr tree to canonical single-line PromQL (spec
// §4.4) by walking it with the Visitor interface. It never recovers
// the original source's whitespace, comments, or literal syntax: every
// rendering decision below is one this package makes on its own.
type printer struct {
	buf strings.Builder
}

// ToPromQL renders expr as canonical PromQL text. It does not validate
// expr; callers that want a well-typed guarantee should call CheckType
// first.
func ToPromQL(expr Expr) string {
	p := &printer{}
	Walk(p, expr)
	return p.buf.String()
}

func (p *printer) VisitNumberLiteral(n *NumberLiteral) {
	p.buf.WriteString(formatNumber(n.Value))
}

func (p *printer) VisitStringLiteral(n *StringLiteral) {
	p.buf.WriteString(formatStringLiteral(*n))
}

func (p *printer) VisitVectorSelector(n *VectorSelector) {
	if n.Metric != nil {
		p.buf.WriteString(n.Metric.Name)
	}
	if n.Metric == nil || (n.Matchers != nil && len(n.Matchers.Matchers) > 0) {
		p.writeMatchers(n.Matchers)
	}
}

func (p *printer) writeMatchers(m *LabelMatchers) {
	p.buf.WriteByte('{')
	if m != nil {
		for i, match := range m.Matchers {
			if i > 0 {
				p.buf.WriteString(", ")
			}
			p.buf.WriteString(match.Name)
			p.buf.WriteString(match.Op.String())
			p.buf.WriteString(formatStringLiteral(match.Value))
		}
	}
	p.buf.WriteByte('}')
}

func (p *printer) VisitMatrixSelector(n *MatrixSelector) {
	p.VisitVectorSelector(n.Vector)
	p.buf.WriteByte('[')
	p.buf.WriteString(n.Range.String())
	p.buf.WriteByte(']')
}

func (p *printer) VisitSubqueryExpr(n *SubqueryExpr) {
	Walk(p, n.Inner)
	p.buf.WriteByte('[')
	p.buf.WriteString(n.Range.String())
	p.buf.WriteByte(':')
	if n.Step != nil {
		p.buf.WriteString(n.Step.String())
	}
	p.buf.WriteByte(']')
}

func (p *printer) VisitOffsetExpr(n *OffsetExpr) {
	Walk(p, n.Inner)
	p.buf.WriteString(" offset ")
	p.buf.WriteString(n.Offset.String())
}

func (p *printer) VisitParenExpression(n *ParenExpression) {
	p.buf.WriteByte('(')
	Walk(p, n.Inner)
	p.buf.WriteByte(')')
}

func (p *printer) VisitUnaryExpr(n *UnaryExpr) {
	p.buf.WriteString(n.Op.String())
	Walk(p, n.Inner)
}

func (p *printer) VisitFunctionCall(n *FunctionCall) {
	p.buf.WriteString(n.Function.Name)
	p.buf.WriteByte('(')
	for i, arg := range n.Args {
		if i > 0 {
			p.buf.WriteString(", ")
		}
		Walk(p, arg)
	}
	p.buf.WriteByte(')')
}

func (p *printer) VisitAggregateExpr(n *AggregateExpr) {
	p.buf.WriteString(n.Op.Name)
	if n.Without || len(n.Grouping) > 0 {
		p.buf.WriteByte(' ')
		if n.Without {
			p.buf.WriteString("without")
		} else {
			p.buf.WriteString("by")
		}
		p.buf.WriteString(" (")
		p.buf.WriteString(strings.Join(n.Grouping, ", "))
		p.buf.WriteByte(')')
	}
	p.buf.WriteString(" (")
	if n.Param != nil {
		Walk(p, n.Param)
		p.buf.WriteString(", ")
	}
	Walk(p, n.Expr)
	p.buf.WriteByte(')')
}

func (p *printer) VisitBinaryExpr(n *BinaryExpr) {
	Walk(p, n.LHS)
	p.buf.WriteByte(' ')
	p.buf.WriteString(n.Op.Surface())
	if m := n.Matching; m != nil {
		if needsMatchingClause(m) {
			p.buf.WriteByte(' ')
			p.writeMatching(m)
		}
	}
	p.buf.WriteByte(' ')
	Walk(p, n.RHS)
}

// needsMatchingClause reports whether m carries anything beyond the
// all-default zero value, i.e. whether it should be rendered at all.
// An explicit `ignoring()` with no labels and no group modifier is
// semantically identical to no clause at all (both mean "match on
// every label"), so the two print the same way; this is the one
// corner of the grammar the printer does not byte-for-byte round-trip.
func needsMatchingClause(m *VectorMatching) bool {
	return m.ReturnBool || m.On || len(m.MatchingLabels) > 0 ||
		m.Cardinality != CardOneToOne || len(m.Include) > 0
}

func (p *printer) writeMatching(m *VectorMatching) {
	wrote := false
	if m.ReturnBool {
		p.buf.WriteString("bool")
		wrote = true
	}
	if m.On || len(m.MatchingLabels) > 0 || m.Cardinality != CardOneToOne {
		if wrote {
			p.buf.WriteByte(' ')
		}
		if m.On {
			p.buf.WriteString("on (")
		} else {
			p.buf.WriteString("ignoring (")
		}
		p.buf.WriteString(strings.Join(m.MatchingLabels, ", "))
		p.buf.WriteByte(')')
		wrote = true

		switch m.Cardinality {
		case CardManyToOne:
			p.buf.WriteString(" group_left")
			if len(m.Include) > 0 {
				p.buf.WriteString(" (")
				p.buf.WriteString(strings.Join(m.Include, ", "))
				p.buf.WriteByte(')')
			}
		case CardOneToMany:
			p.buf.WriteString(" group_right")
			if len(m.Include) > 0 {
				p.buf.WriteString(" (")
				p.buf.WriteString(strings.Join(m.Include, ", "))
				p.buf.WriteByte(')')
			}
		}
	}
}

// formatNumber renders a scalar value the way the printer's grammar
// requires: Inf/-Inf/NaN spelled out, everything else as the shortest
// decimal string that reads back to the same float64 (spec §4.4).
func formatNumber(v float64) string {
	if math.IsInf(v, 1) {
		return "Inf"
	}
	if math.IsInf(v, -1) {
		return "-Inf"
	}
	if math.IsNaN(v) {
		return "NaN"
	}
	return strconv.FormatFloat(v, 'g', -1, 64)
}

// formatStringLiteral renders s using its own recorded quote style.
// Backtick strings are emitted verbatim. Single- and double-quoted
// strings escape backslash, the seven C escapes, and only the quote
// character that actually delimits the literal: lexString only accepts
// `\<quote>` for the delimiter in use, so escaping the other quote
// character too would produce text the lexer could not read back.
func formatStringLiteral(s StringLiteral) string {
	if s.Quote == QuoteBacktick {
		return "`" + s.Value + "`"
	}
	var b strings.Builder
	b.WriteByte(byte(s.Quote))
	for _, r := range s.Value {
		switch {
		case r == '\\':
			b.WriteString(`\\`)
		case r == rune(s.Quote):
			b.WriteByte('\\')
			b.WriteRune(r)
		case r == '\a':
			b.WriteString(`\a`)
		case r == '\b':
			b.WriteString(`\b`)
		case r == '\f':
			b.WriteString(`\f`)
		case r == '\n':
			b.WriteString(`\n`)
		case r == '\r':
			b.WriteString(`\r`)
		case r == '\t':
			b.WriteString(`\t`)
		case r == '\v':
			b.WriteString(`\v`)
		default:
			b.WriteRune(r)
		}
	}
	b.WriteByte(byte(s.Quote))
	return b.String()
}
