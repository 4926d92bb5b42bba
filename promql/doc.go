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

// Package promql lexes, parses, type-checks and pretty-prints
// Prometheus Query Language expressions.
//
// The three tightly coupled subsystems live together in this package
// on purpose: the lexer's brace-mode switching, the parser's
// precedence folding, and the type checker's per-operator rules all
// operate on the same closed Expr sum type and are easiest to keep
// mutually consistent when a new variant forces all three call sites
// to be touched.
//
//	expr, err := promql.ParseExpression(`sum(rate(requests_total[5m])) by (job)`)
//	if err != nil {
//		// err is a *LexError or *ParseError, both carry a Span
//	}
//	typ, err := promql.CheckType(expr)
//	out := promql.ToPromQL(expr)
package promql
