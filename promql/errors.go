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

// LexError is raised by the lexer on invalid characters, unterminated
// strings, bracket imbalance, or invalid durations (spec §7.1).
type LexError struct {
	Message string
	Span    Span
}

func (e *LexError) Error() string {
	return fmt.Sprintf("%s (%s)", e.Message, e.Span.Start)
}

// ParseError is raised by the parser on unexpected tokens, malformed
// grouping lists, unknown functions, bad argument counts, or
// misplaced offset/bool modifiers (spec §7.2). Message is already a
// complete, stable, human-readable sentence.
type ParseError struct {
	Message string
	Span    Span
}

func (e *ParseError) Error() string {
	return e.Message
}

// newSyntaxError builds the stable "Syntax error (line L, column C):
// unexpected X, expected Y" message spec §4.2 requires verbatim for
// duration mis-parses and other unexpected-token cases.
func newSyntaxError(span Span, actual, expected string) *ParseError {
	return &ParseError{
		Span: span,
		Message: fmt.Sprintf(
			"Syntax error (line %d, column %d): unexpected %s, expected %s",
			span.Start.Line, span.Start.Column, actual, expected,
		),
	}
}

// TypeError is raised by the type checker (spec §4.3). Expected lists
// every value type that would have been acceptable at this position;
// Actual is what the subexpression actually evaluated to.
type TypeError struct {
	Message  string
	Expected []ValueType
	Actual   ValueType
	Span     Span
}

func (e *TypeError) Error() string {
	return e.Message
}
