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

var _ = Describe("ToPromQL", func() {
	table.DescribeTable("renders the canonical form",
		func(input, expected string) {
			Expect(promql.ToPromQL(mustParse(input))).To(Equal(expected))
		},
		table.Entry("bare metric", "up", "up"),
		table.Entry("bare braces selector", `{job="api"}`, `{job="api"}`),
		table.Entry("selector with matchers", `up{job="api"}`, `up{job="api"}`),
		table.Entry("matrix selector", "up[5m]", "up[5m]"),
		table.Entry("matrix selector combines units", "up[1h30m]", "up[1h30m]"),
		table.Entry("subquery with step", "up[30m:1m]", "up[30m:1m]"),
		table.Entry("subquery without step", "up[30m:]", "up[30m:]"),
		table.Entry("offset", "up offset 5m", "up offset 5m"),
		table.Entry("negative offset", "up offset -5m", "up offset -5m"),
		table.Entry("unary minus", "-up", "-up"),
		table.Entry("parens preserved", "(up)", "(up)"),
		table.Entry("function call", "rate(up[5m])", "rate(up[5m])"),
		table.Entry("binary expr", "1+2", "1 + 2"),
		table.Entry("precedence left-folds left to right", "1 - 2 - 3", "1 - 2 - 3"),
		table.Entry("comparison with bool modifier", "1>bool 1", "1 > bool 1"),
		table.Entry("set operator", "up and down", "up and down"),
		table.Entry("aggregate without modifier", "sum(up)", "sum (up)"),
		table.Entry("aggregate modifier normalizes to before the arg list", "sum(up) by (job)", "sum by (job) (up)"),
		table.Entry("aggregate without clause", "sum(up) without (instance)", "sum without (instance) (up)"),
		table.Entry("aggregate with parameter", "topk(5, up)", "topk (5, up)"),
		table.Entry("vector matching on", "a + on (job) b", "a + on (job) b"),
		table.Entry("vector matching group_left with include", "a + on (job) group_left (instance) b", "a + on (job) group_left (instance) b"),
		table.Entry("single-quoted string literal", "'hi'", "'hi'"),
		table.Entry("double-quoted string literal", `"hi"`, `"hi"`),
		table.Entry("backtick string literal is verbatim", "`a\nb`", "`a\nb`"),
		table.Entry("Inf literal", "Inf", "Inf"),
		table.Entry("negative Inf literal", "-Inf", "-Inf"),
		table.Entry("NaN literal", "NaN", "NaN"),
	)

	It("escapes only the literal's own delimiter, not the other quote character", func() {
		lit := &promql.StringLiteral{Quote: promql.QuoteDouble, Value: `it's "quoted"`}
		Expect(promql.ToPromQL(lit)).To(Equal(`"it's \"quoted\""`))

		lit2 := &promql.StringLiteral{Quote: promql.QuoteSingle, Value: `it's "quoted"`}
		Expect(promql.ToPromQL(lit2)).To(Equal(`'it\'s "quoted"'`))
	})

	It("round-trips a printed string literal back through the parser", func() {
		original := &promql.StringLiteral{Quote: promql.QuoteDouble, Value: "a\tb\nit's \"ok\""}
		printed := promql.ToPromQL(original)
		reparsed, err := promql.ParseExpression(printed)
		Expect(err).NotTo(HaveOccurred())
		again, ok := reparsed.(*promql.StringLiteral)
		Expect(ok).To(BeTrue())
		Expect(again.Value).To(Equal(original.Value))
	})

	It("omits a matching clause that is semantically the default even if a non-nil VectorMatching is set", func() {
		expr := &promql.BinaryExpr{
			LHS:      mustParse("a"),
			RHS:      mustParse("b"),
			Op:       promql.OpAdd,
			Matching: &promql.VectorMatching{},
		}
		Expect(promql.ToPromQL(expr)).To(Equal("a + b"))
	})

	It("renders a group_right include list", func() {
		expr := &promql.BinaryExpr{
			LHS: mustParse("a"),
			RHS: mustParse("b"),
			Op:  promql.OpAdd,
			Matching: &promql.VectorMatching{
				On:             true,
				MatchingLabels: []string{"job"},
				Cardinality:    promql.CardOneToMany,
				Include:        []string{"instance"},
			},
		}
		Expect(promql.ToPromQL(expr)).To(Equal("a + on (job) group_right (instance) b"))
	})

	It("does not validate the tree it renders", func() {
		sel := &promql.VectorSelector{}
		Expect(func() { promql.ToPromQL(sel) }).NotTo(Panic())
	})
})
