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
	"math"
	"strconv"
	"strings"

	"github.com/go-promql/promql/debug"
)

var (
	posInf = math.Inf(1)
	nan    = math.NaN()

	parseLog = debug.NewDebugLogger("parser.log")
)

// parser is a single-use recursive-descent parser over a pre-lexed
// token slice (spec §4.2). It holds nothing but a cursor: two parsers
// over the same token slice never interact.
type parser struct {
	tokens []Token
	pos    int
}

// ParseExpression is the library's public entry point: it lexes input
// and parses the result into a single Expr, or returns the first lex
// or parse error encountered. COMMENT tokens are dropped here, before
// the grammar ever sees them.
func ParseExpression(input string) (Expr, error) {
	tokens, err := Lex(input)
	if err != nil {
		return nil, err
	}
	p := &parser{tokens: filterComments(tokens)}
	expr, err := p.parseExpr()
	if err != nil {
		parseLog.Printf("parse error on %q: %v", input, err)
		return nil, err
	}
	if p.peek().Kind != EOF {
		err := p.unexpected(p.peek(), "end of input")
		parseLog.Printf("parse error on %q: %v", input, err)
		return nil, err
	}
	parseLog.Printf("parsed %q to %T", input, expr)
	return expr, nil
}

func filterComments(tokens []Token) []Token {
	out := make([]Token, 0, len(tokens))
	for _, t := range tokens {
		if t.Kind != COMMENT {
			out = append(out, t)
		}
	}
	return out
}

func (p *parser) peek() Token {
	if p.pos >= len(p.tokens) {
		return Token{Kind: EOF}
	}
	return p.tokens[p.pos]
}

func (p *parser) advance() Token {
	t := p.peek()
	if p.pos < len(p.tokens) {
		p.pos++
	}
	return t
}

func (p *parser) expect(kind TokenKind, expectedDesc string) (Token, error) {
	tok := p.peek()
	if tok.Kind != kind {
		return Token{}, p.unexpected(tok, expectedDesc)
	}
	return p.advance(), nil
}

func (p *parser) unexpected(tok Token, expectedDesc string) error {
	return newSyntaxError(tok.Span, describeToken(tok), expectedDesc)
}

func describeToken(tok Token) string {
	switch tok.Kind {
	case EOF:
		return "end of input"
	case IDENTIFIER:
		return fmt.Sprintf("identifier %q", tok.Val)
	case METRIC_IDENTIFIER:
		return fmt.Sprintf("metric identifier %q", tok.Val)
	case AGGREGATE_OP:
		return fmt.Sprintf("aggregation operator %q", tok.Val)
	case NUMBER:
		return fmt.Sprintf("number %q", tok.Val)
	case DURATION:
		return fmt.Sprintf("duration %q", tok.Val)
	case STRING:
		return "string"
	}
	return tok.Kind.String()
}

// parseExpr parses a full Expr, including any binary-operator chain
// (spec §4.2 "Binary expressions"). It collects a flat head+tail
// sequence, then folds it tier by tier from tightest to loosest
// precedence.
func (p *parser) parseExpr() (Expr, error) {
	head, err := p.parseOperand()
	if err != nil {
		return nil, err
	}

	type tailItem struct {
		op       BinaryOp
		matching *VectorMatching
		rhs      Expr
	}
	var tail []tailItem

	for p.peek().Kind.IsOperator() {
		opTok := p.advance()
		op := tokenToBinaryOp[opTok.Kind]

		matching, err := p.parseVectorMatching(op)
		if err != nil {
			return nil, err
		}

		rhs, err := p.parseOperand()
		if err != nil {
			return nil, err
		}
		tail = append(tail, tailItem{op: op, matching: matching, rhs: rhs})
	}

	if len(tail) == 0 {
		return head, nil
	}

	operands := make([]Expr, 0, len(tail)+1)
	operands = append(operands, head)
	ops := make([]BinaryOp, 0, len(tail))
	matchings := make([]*VectorMatching, 0, len(tail))
	for _, item := range tail {
		operands = append(operands, item.rhs)
		ops = append(ops, item.op)
		matchings = append(matchings, item.matching)
	}

	for tier := 1; tier <= 6; tier++ {
		var newOperands []Expr
		var newOps []BinaryOp
		var newMatchings []*VectorMatching

		pending := operands[0]
		for i, op := range ops {
			rank := precedenceForOp(op)
			if rank == tier {
				pending = &BinaryExpr{
					span:     span{pending.SpanOf().Cover(operands[i+1].SpanOf())},
					LHS:      pending,
					RHS:      operands[i+1],
					Op:       op,
					Matching: matchings[i],
				}
				continue
			}
			newOperands = append(newOperands, pending)
			newOps = append(newOps, op)
			newMatchings = append(newMatchings, matchings[i])
			pending = operands[i+1]
		}
		newOperands = append(newOperands, pending)

		operands, ops, matchings = newOperands, newOps, newMatchings
	}

	if len(operands) != 1 {
		panic("promql: precedence fold did not converge to a single expression")
	}
	return operands[0], nil
}

func precedenceForOp(op BinaryOp) int {
	for tok, rank := range precedence {
		if tokenToBinaryOp[tok] == op {
			return rank
		}
	}
	return 0
}

// parseVectorMatching parses the optional ['bool'] (('on'|'ignoring')
// '(' LabelName* ')' [('group_left'|'group_right') GroupingLabels?])
// clause that may follow a binary operator (spec §4.2). It returns nil
// when no such clause is present at all.
func (p *parser) parseVectorMatching(op BinaryOp) (*VectorMatching, error) {
	var boolSpan Span
	returnBool := false
	if p.peek().Kind == BOOL {
		boolSpan = p.advance().Span
		returnBool = true
	}

	if p.peek().Kind != ON && p.peek().Kind != IGNORING {
		if !returnBool {
			return nil, nil
		}
		if !op.isComparison() {
			return nil, &ParseError{
				Message: "bool modifier can only be used on comparison operators",
				Span:    boolSpan,
			}
		}
		return &VectorMatching{Cardinality: CardOneToOne, ReturnBool: true}, nil
	}

	on := p.peek().Kind == ON
	p.advance()

	labels, err := p.parseLabelNameList()
	if err != nil {
		return nil, err
	}

	cardinality := CardOneToOne
	var include []string
	switch p.peek().Kind {
	case GROUP_LEFT:
		p.advance()
		cardinality = CardManyToOne
		include, err = p.parseOptionalLabelNameList()
		if err != nil {
			return nil, err
		}
	case GROUP_RIGHT:
		p.advance()
		cardinality = CardOneToMany
		include, err = p.parseOptionalLabelNameList()
		if err != nil {
			return nil, err
		}
	}

	if returnBool && !op.isComparison() {
		return nil, &ParseError{Message: "bool modifier can only be used on comparison operators", Span: boolSpan}
	}

	return &VectorMatching{
		Cardinality:    cardinality,
		MatchingLabels: labels,
		On:             on,
		Include:        include,
		ReturnBool:     returnBool,
	}, nil
}

func (p *parser) parseOptionalLabelNameList() ([]string, error) {
	if p.peek().Kind != LEFT_PAREN {
		return nil, nil
	}
	return p.parseLabelNameList()
}

// parseLabelNameList parses '(' (LabelName (',' LabelName)* ','?)? ')'.
func (p *parser) parseLabelNameList() ([]string, error) {
	if _, err := p.expect(LEFT_PAREN, "'('"); err != nil {
		return nil, err
	}
	var labels []string
	for p.peek().Kind != RIGHT_PAREN {
		name, _, err := p.parseLabelName()
		if err != nil {
			return nil, err
		}
		labels = append(labels, name)
		if p.peek().Kind == COMMA {
			p.advance()
			continue
		}
		break
	}
	if _, err := p.expect(RIGHT_PAREN, "')'"); err != nil {
		return nil, err
	}
	return labels, nil
}

// isLabelNameToken reports whether k may appear at a label-name
// position. Outside of `{...}` matcher lists, keyword tokens like
// `by` regain their ordinary meaning as plain label-name text, so
// every identifier-family and keyword-like token is accepted here
// (spec §4.1 "label-matcher keywords").
func isLabelNameToken(k TokenKind) bool {
	switch k {
	case IDENTIFIER, METRIC_IDENTIFIER, AGGREGATE_OP,
		LAND, LOR, LUNLESS, ATAN2,
		OFFSET, BY, WITHOUT, ON, IGNORING, GROUP_LEFT, GROUP_RIGHT, BOOL:
		return true
	}
	return false
}

func (p *parser) parseLabelName() (string, Span, error) {
	tok := p.peek()
	if !isLabelNameToken(tok.Kind) {
		return "", Span{}, p.unexpected(tok, "label name")
	}
	p.advance()
	return tok.Val, tok.Span, nil
}

// parseOperand parses one ExprNoBinary term: an optional chain of
// unary +/- wrapping a primary, followed by any offset/subquery/range
// suffixes attached directly to that primary (spec §4.2).
func (p *parser) parseOperand() (Expr, error) {
	if p.peek().Kind == ADD || p.peek().Kind == SUB {
		opTok := p.advance()
		op := UnaryAdd
		if opTok.Kind == SUB {
			op = UnarySub
		}
		inner, err := p.parseOperand()
		if err != nil {
			return nil, err
		}
		return &UnaryExpr{
			span:  span{opTok.Span.Cover(inner.SpanOf())},
			Op:    op,
			Inner: inner,
		}, nil
	}

	base, err := p.parsePrimary()
	if err != nil {
		return nil, err
	}
	return p.parseSuffixes(base)
}

// parseSuffixes attaches at most one matrix-range suffix, at most one
// subquery suffix, and at most one offset suffix to base. The two
// bracket suffixes are independent once-only slots, not a single
// shared one: a matrix range may be followed by a subquery over it
// (`metric[1h][1d:5m]`), since the subquery wraps the MatrixSelector
// the first bracket produced, but neither bracket kind attaches
// twice and no bracket may follow a subquery (an offset still may).
func (p *parser) parseSuffixes(base Expr) (Expr, error) {
	attachedMatrixRange := false
	attachedSubquery := false
	attachedOffset := false
	for {
		switch {
		case p.peek().Kind == LEFT_BRACKET && !attachedSubquery:
			next, isSubquery, err := p.parseBracketSuffix(base)
			if err != nil {
				return nil, err
			}
			if isSubquery {
				attachedSubquery = true
			} else {
				if attachedMatrixRange {
					return nil, &ParseError{
						Message: "range selector already attached",
						Span:    next.SpanOf(),
					}
				}
				attachedMatrixRange = true
			}
			base = next
		case p.peek().Kind == OFFSET && !attachedOffset:
			next, err := p.parseOffsetSuffix(base)
			if err != nil {
				return nil, err
			}
			base = next
			attachedOffset = true
		default:
			return base, nil
		}
	}
}

// parseBracketSuffix parses a single `[...]` suffix, either a matrix
// range (`[5m]`) or a subquery (`[30m:1m]`/`[30m:]`), and reports
// which one it built so the caller can track the two independently.
func (p *parser) parseBracketSuffix(base Expr) (Expr, bool, error) {
	p.advance() // '['
	rangeDur, err := p.parseDurationToken()
	if err != nil {
		return nil, false, err
	}

	if p.peek().Kind == COLON {
		p.advance()
		var step *Duration
		if p.peek().Kind != RIGHT_BRACKET {
			d, err := p.parseDurationToken()
			if err != nil {
				return nil, false, err
			}
			step = &d
		}
		closeTok, err := p.expect(RIGHT_BRACKET, "']'")
		if err != nil {
			return nil, false, err
		}
		return &SubqueryExpr{
			span:  span{base.SpanOf().Cover(closeTok.Span)},
			Inner: base,
			Range: rangeDur,
			Step:  step,
		}, true, nil
	}

	closeTok, err := p.expect(RIGHT_BRACKET, "']'")
	if err != nil {
		return nil, false, err
	}
	vs, ok := base.(*VectorSelector)
	if !ok {
		return nil, false, &ParseError{
			Message: "range selector must be preceded by a vector selector",
			Span:    base.SpanOf(),
		}
	}
	return &MatrixSelector{
		span:   span{base.SpanOf().Cover(closeTok.Span)},
		Vector: vs,
		Range:  rangeDur,
	}, false, nil
}

func (p *parser) parseDurationToken() (Duration, error) {
	tok, err := p.expect(DURATION, "duration")
	if err != nil {
		return Duration{}, err
	}
	return ParseDuration(tok.Val)
}

func (p *parser) parseOffsetSuffix(base Expr) (Expr, error) {
	offsetTok := p.advance() // 'offset'
	neg := false
	if p.peek().Kind == SUB {
		p.advance()
		neg = true
	}
	durTok, err := p.expect(DURATION, "duration")
	if err != nil {
		return nil, err
	}
	dur, err := ParseDuration(durTok.Val)
	if err != nil {
		return nil, &ParseError{Message: err.Error(), Span: durTok.Span}
	}
	if neg {
		dur.Nanoseconds = -dur.Nanoseconds
	}

	switch base.(type) {
	case *VectorSelector, *MatrixSelector, *SubqueryExpr:
	default:
		return nil, &ParseError{
			Message: "offset modifier must be preceded by an instant vector selector, a range vector selector, or a subquery",
			Span:    base.SpanOf(),
		}
	}

	return &OffsetExpr{
		span:   span{base.SpanOf().Cover(offsetTok.Span).Cover(durTok.Span)},
		Inner:  base,
		Offset: dur,
	}, nil
}

// parsePrimary parses one ExprNoBinary form, with no unary or suffix
// handling (those are parseOperand's job).
func (p *parser) parsePrimary() (Expr, error) {
	tok := p.peek()
	switch tok.Kind {
	case NUMBER:
		p.advance()
		v, err := parseNumberValue(tok.Val)
		if err != nil {
			return nil, &ParseError{Message: err.Error(), Span: tok.Span}
		}
		return &NumberLiteral{span: span{tok.Span}, Value: v}, nil

	case STRING:
		p.advance()
		return stringLiteralFromToken(tok), nil

	case LEFT_PAREN:
		p.advance()
		inner, err := p.parseExpr()
		if err != nil {
			return nil, err
		}
		closeTok, err := p.expect(RIGHT_PAREN, "')'")
		if err != nil {
			return nil, err
		}
		return &ParenExpression{span: span{tok.Span.Cover(closeTok.Span)}, Inner: inner}, nil

	case LEFT_BRACE:
		matchers, closeSpan, err := p.parseLabelMatchers()
		if err != nil {
			return nil, err
		}
		return &VectorSelector{
			span:     span{tok.Span.Cover(closeSpan)},
			Matchers: matchers,
		}, nil

	case AGGREGATE_OP:
		return p.parseAggregateExpr()

	case IDENTIFIER, METRIC_IDENTIFIER:
		if p.peekAt(1).Kind == LEFT_PAREN {
			return p.parseFunctionCall()
		}
		return p.parseVectorSelectorByName()

	}
	return nil, p.unexpected(tok, "expression")
}

func (p *parser) peekAt(offset int) Token {
	idx := p.pos + offset
	if idx >= len(p.tokens) {
		return Token{Kind: EOF}
	}
	return p.tokens[idx]
}

func (p *parser) parseVectorSelectorByName() (Expr, error) {
	nameTok := p.advance()
	var matchers *LabelMatchers
	end := nameTok.Span
	if p.peek().Kind == LEFT_BRACE {
		m, closeSpan, err := p.parseLabelMatchers()
		if err != nil {
			return nil, err
		}
		matchers = m
		end = closeSpan
	}
	return &VectorSelector{
		span:     span{nameTok.Span.Cover(end)},
		Metric:   &MetricIdentifier{Name: nameTok.Val},
		Matchers: matchers,
	}, nil
}

// parseLabelMatchers parses `{` (LabelMatcher (',' LabelMatcher)* ','?)? `}`.
// The current token must be LEFT_BRACE.
func (p *parser) parseLabelMatchers() (*LabelMatchers, Span, error) {
	openTok := p.advance() // '{'
	var matchers []LabelMatcher
	for p.peek().Kind != RIGHT_BRACE {
		name, _, err := p.parseLabelName()
		if err != nil {
			return nil, Span{}, err
		}
		opTok := p.peek()
		op, ok := matchOpFromToken(opTok.Kind)
		if !ok {
			return nil, Span{}, p.unexpected(opTok, "one of '=', '!=', '=~', '!~'")
		}
		p.advance()
		valTok, err := p.expect(STRING, "string")
		if err != nil {
			return nil, Span{}, err
		}
		matchers = append(matchers, LabelMatcher{
			Name:  name,
			Op:    op,
			Value: *stringLiteralFromToken(valTok),
		})
		if p.peek().Kind == COMMA {
			p.advance()
			continue
		}
		break
	}
	closeTok, err := p.expect(RIGHT_BRACE, "'}'")
	if err != nil {
		return nil, Span{}, err
	}
	return &LabelMatchers{Matchers: matchers}, openTok.Span.Cover(closeTok.Span), nil
}

func matchOpFromToken(k TokenKind) (LabelMatchOp, bool) {
	switch k {
	case ASSIGN:
		return MatchEqual, true
	case NEQ:
		return MatchNotEqual, true
	case EQL_REGEX:
		return MatchRegexp, true
	case NEQ_REGEX:
		return MatchNotRegexp, true
	}
	return 0, false
}

func (p *parser) parseFunctionCall() (Expr, error) {
	nameTok := p.advance()
	args, closeSpan, err := p.parseArgList()
	if err != nil {
		return nil, err
	}
	fn := LookupFunction(nameTok.Val)
	if fn == nil {
		return nil, &ParseError{
			Message: fmt.Sprintf("unknown function name %q", nameTok.Val),
			Span:    nameTok.Span,
		}
	}
	if err := checkArity(fn, args, nameTok.Span.Cover(closeSpan)); err != nil {
		return nil, err
	}
	return &FunctionCall{
		span:     span{nameTok.Span.Cover(closeSpan)},
		Function: fn,
		Args:     args,
	}, nil
}

func checkArity(fn *Function, args []Expr, callSpan Span) error {
	n := len(args)
	if fn.IsVariadic() {
		if n < fn.MinArgs() {
			return &ParseError{
				Message: fmt.Sprintf("Incorrect number of argument(s) in call to %s, expected at least %d argument(s), got %d", fn.Name, fn.MinArgs(), n),
				Span:    callSpan,
			}
		}
		return nil
	}
	if n != len(fn.ArgTypes) {
		return &ParseError{
			Message: fmt.Sprintf("Incorrect number of argument(s) in call to %s, expected %d argument(s), got %d", fn.Name, len(fn.ArgTypes), n),
			Span:    callSpan,
		}
	}
	return nil
}

// parseArgList parses `(` (Expr (',' Expr)* ','?)? `)`. The current
// token must be LEFT_PAREN.
func (p *parser) parseArgList() ([]Expr, Span, error) {
	openTok, err := p.expect(LEFT_PAREN, "'('")
	if err != nil {
		return nil, Span{}, err
	}
	var args []Expr
	for p.peek().Kind != RIGHT_PAREN {
		arg, err := p.parseExpr()
		if err != nil {
			return nil, Span{}, err
		}
		args = append(args, arg)
		if p.peek().Kind == COMMA {
			p.advance()
			continue
		}
		break
	}
	closeTok, err := p.expect(RIGHT_PAREN, "')'")
	if err != nil {
		return nil, Span{}, err
	}
	return args, openTok.Span.Cover(closeTok.Span), nil
}

// groupingModifier is the parsed by/without clause of an aggregate
// expression, before it's merged into an AggregateExpr.
type groupingModifier struct {
	labels  []string
	without bool
}

func (p *parser) parseGroupingModifier() (*groupingModifier, error) {
	without := p.peek().Kind == WITHOUT
	p.advance() // 'by' or 'without'
	labels, err := p.parseLabelNameList()
	if err != nil {
		return nil, err
	}
	return &groupingModifier{labels: labels, without: without}, nil
}

// parseAggregateExpr parses an aggregate call, whose by/without
// modifier may appear either before or after the argument list (spec
// §4.2 "Aggregate expressions"):
//
//	AGGREGATE_OP Modifier? '(' Args ')'
//	AGGREGATE_OP '(' Args ')' Modifier?
func (p *parser) parseAggregateExpr() (Expr, error) {
	opTok := p.advance()
	agg := LookupAggregate(opTok.Val)
	if agg == nil {
		// lexer classification guarantees AGGREGATE_OP tokens always
		// match a catalogued name case-insensitively; opTok.Val's case
		// may differ from the catalogue key.
		agg = LookupAggregate(strings.ToLower(opTok.Val))
	}

	var modifier *groupingModifier
	if p.peek().Kind == BY || p.peek().Kind == WITHOUT {
		m, err := p.parseGroupingModifier()
		if err != nil {
			return nil, err
		}
		modifier = m
	}

	if p.peek().Kind != LEFT_PAREN {
		return nil, p.unexpected(p.peek(), "'(' or a grouping modifier")
	}
	args, argsSpan, err := p.parseArgList()
	if err != nil {
		return nil, err
	}

	if modifier == nil && (p.peek().Kind == BY || p.peek().Kind == WITHOUT) {
		m, err := p.parseGroupingModifier()
		if err != nil {
			return nil, err
		}
		modifier = m
	}

	end := argsSpan
	if modifier != nil {
		end = opTok.Span.Cover(argsSpan)
	}

	wantArgs := 1
	if agg.ParameterType != nil {
		wantArgs = 2
	}
	if len(args) != wantArgs {
		return nil, &ParseError{
			Message: fmt.Sprintf("aggregation operator %q expects %d argument(s), got %d", agg.Name, wantArgs, len(args)),
			Span:    opTok.Span.Cover(argsSpan),
		}
	}

	expr := &AggregateExpr{
		span: span{opTok.Span.Cover(end)},
		Op:   agg,
	}
	if agg.ParameterType != nil {
		expr.Param = args[0]
		expr.Expr = args[1]
	} else {
		expr.Expr = args[0]
	}
	if modifier != nil {
		expr.Grouping = modifier.labels
		expr.Without = modifier.without
	}
	return expr, nil
}

// stringLiteralFromToken decodes a STRING token's Val (quote byte
// followed by already-unescaped content, per lexString) into a
// StringLiteral.
func stringLiteralFromToken(tok Token) *StringLiteral {
	quote := StringQuote(tok.Val[0])
	return &StringLiteral{span: span{tok.Span}, Quote: quote, Value: tok.Val[1:]}
}

// parseNumberValue interprets a NUMBER token's text, including the
// case-insensitive "inf" and "nan" spellings the lexer admits.
func parseNumberValue(text string) (float64, error) {
	switch strings.ToLower(text) {
	case "inf":
		return posInf, nil
	case "nan":
		return nan, nil
	}
	return strconv.ParseFloat(text, 64)
}
