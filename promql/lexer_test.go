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

package promql_test

import (
	. "github.com/onsi/ginkgo"
	. "github.com/onsi/gomega"
	"github.com/onsi/ginkgo/extensions/table"

	"github.com/go-promql/promql/promql"
)

func kinds(tokens []promql.Token) []promql.TokenKind {
	out := make([]promql.TokenKind, 0, len(tokens))
	for _, t := range tokens {
		out = append(out, t.Kind)
	}
	return out
}

var _ = Describe("Lex", func() {
	table.DescribeTable("token sequences",
		func(input string, expected []promql.TokenKind) {
			tokens, err := promql.Lex(input)
			Expect(err).NotTo(HaveOccurred())
			Expect(kinds(tokens)).To(Equal(expected))
		},
		table.Entry("bare metric name", "up",
			[]promql.TokenKind{promql.IDENTIFIER, promql.EOF}),
		table.Entry("metric with colons", "http:requests:rate5m",
			[]promql.TokenKind{promql.METRIC_IDENTIFIER, promql.EOF}),
		table.Entry("number", "42",
			[]promql.TokenKind{promql.NUMBER, promql.EOF}),
		table.Entry("float with exponent", "1.5e10",
			[]promql.TokenKind{promql.NUMBER, promql.EOF}),
		table.Entry("duration", "5m30s",
			[]promql.TokenKind{promql.DURATION, promql.EOF}),
		table.Entry("duration preferred over number+identifier", "1h",
			[]promql.TokenKind{promql.DURATION, promql.EOF}),
		table.Entry("bare milliseconds duration lexes as one token", "100ms",
			[]promql.TokenKind{promql.DURATION, promql.EOF}),
		table.Entry("milliseconds duration following a coarser unit", "1h30ms",
			[]promql.TokenKind{promql.DURATION, promql.EOF}),
		table.Entry("label matcher braces", `up{job="api"}`,
			[]promql.TokenKind{
				promql.IDENTIFIER, promql.LEFT_BRACE, promql.IDENTIFIER,
				promql.ASSIGN, promql.STRING, promql.RIGHT_BRACE, promql.EOF,
			}),
		table.Entry("keyword used as label name inside braces", `up{by="x"}`,
			[]promql.TokenKind{
				promql.IDENTIFIER, promql.LEFT_BRACE, promql.IDENTIFIER,
				promql.ASSIGN, promql.STRING, promql.RIGHT_BRACE, promql.EOF,
			}),
		table.Entry("aggregate keyword", "sum(x)",
			[]promql.TokenKind{
				promql.AGGREGATE_OP, promql.LEFT_PAREN, promql.IDENTIFIER,
				promql.RIGHT_PAREN, promql.EOF,
			}),
		table.Entry("case-insensitive aggregate", "SUM(x)",
			[]promql.TokenKind{
				promql.AGGREGATE_OP, promql.LEFT_PAREN, promql.IDENTIFIER,
				promql.RIGHT_PAREN, promql.EOF,
			}),
		table.Entry("comment is retained by the lexer", "up # a comment",
			[]promql.TokenKind{promql.IDENTIFIER, promql.COMMENT, promql.EOF}),
		table.Entry("inf and nan classify as numbers", "Inf NaN",
			[]promql.TokenKind{promql.NUMBER, promql.NUMBER, promql.EOF}),
		table.Entry("comparison and regex operators", `a=~"x" b!~"y" c==d c!=d`,
			[]promql.TokenKind{
				promql.IDENTIFIER, promql.EQL_REGEX, promql.STRING,
				promql.IDENTIFIER, promql.NEQ_REGEX, promql.STRING,
				promql.IDENTIFIER, promql.EQL, promql.IDENTIFIER,
				promql.IDENTIFIER, promql.NEQ, promql.IDENTIFIER,
				promql.EOF,
			}),
	)

	It("rejects an unterminated string", func() {
		_, err := promql.Lex(`"unterminated`)
		Expect(err).To(HaveOccurred())
	})

	It("rejects a literal newline inside a quoted string", func() {
		_, err := promql.Lex("\"a\nb\"")
		Expect(err).To(HaveOccurred())
	})

	It("allows literal newlines inside a backtick string", func() {
		tokens, err := promql.Lex("`a\nb`")
		Expect(err).NotTo(HaveOccurred())
		Expect(kinds(tokens)).To(Equal([]promql.TokenKind{promql.STRING, promql.EOF}))
	})

	It("rejects a colon outside of a range selector", func() {
		_, err := promql.Lex("a:b")
		// ':' inside an identifier is fine (metric identifier); a bare
		// top-level colon is not.
		Expect(err).NotTo(HaveOccurred())
		_, err = promql.Lex(": ")
		Expect(err).To(HaveOccurred())
	})

	It("rejects an unclosed left parenthesis", func() {
		_, err := promql.Lex("sum(up")
		Expect(err).To(HaveOccurred())
	})

	It("rejects input ending inside braces", func() {
		_, err := promql.Lex(`up{job="api"`)
		Expect(err).To(HaveOccurred())
	})

	It("reports line and column for an error mid-input", func() {
		_, err := promql.Lex("up\n!oops")
		Expect(err).To(HaveOccurred())
		lexErr, ok := err.(*promql.LexError)
		Expect(ok).To(BeTrue())
		Expect(lexErr.Span.Start.Line).To(Equal(2))
	})

	It("decodes short escape sequences in double-quoted strings", func() {
		tokens, err := promql.Lex(`"a\nb\tc"`)
		Expect(err).NotTo(HaveOccurred())
		Expect(tokens[0].Val[1:]).To(Equal("a\nb\tc"))
	})

	It("rejects an unknown escape sequence", func() {
		_, err := promql.Lex(`"a\qb"`)
		Expect(err).To(HaveOccurred())
	})
})
