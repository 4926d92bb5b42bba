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

var _ = Describe("ParseExpression", func() {
	table.DescribeTable("valid expressions parse without error",
		func(input string) {
			_, err := promql.ParseExpression(input)
			Expect(err).NotTo(HaveOccurred())
		},
		table.Entry("bare metric", "up"),
		table.Entry("metric with matchers", `http_requests_total{job="api", method!="GET"}`),
		table.Entry("bare braces selector", `{job="api"}`),
		table.Entry("matrix selector", "http_requests_total[5m]"),
		table.Entry("subquery", "rate(http_requests_total[5m])[30m:1m]"),
		table.Entry("subquery with default step", "rate(http_requests_total[5m])[30m:]"),
		table.Entry("subquery over a matrix range", "metric[1h][1d:5m]"),
		table.Entry("subquery over a parenthesized matrix range with matchers",
			`(another_metric{one="test",two!="test2"}[1h][1d:5m]) + up`),
		table.Entry("offset on selector", "up offset 5m"),
		table.Entry("negative offset", "up offset -5m"),
		table.Entry("offset composed with subquery", "rate(x[1h])[1h:1m] offset 1w"),
		table.Entry("parenthesized expr", "(up)"),
		table.Entry("unary minus", "-up"),
		table.Entry("double unary", "- -up"),
		table.Entry("arithmetic precedence", "1 + 2 * 3"),
		table.Entry("power is left-grouped per this design", "2 ^ 3 ^ 2"),
		table.Entry("function call", "rate(http_requests_total[5m])"),
		table.Entry("variadic function with one optional arg", "round(up)"),
		table.Entry("variadic function with optional arg supplied", "round(up, 0.5)"),
		table.Entry("aggregate without modifier", "sum(up)"),
		table.Entry("aggregate by before args", "sum by (job) (up)"),
		table.Entry("aggregate without after args", "sum(up) without (instance)"),
		table.Entry("aggregate with parameter", "topk(5, up)"),
		table.Entry("count_values with string parameter", `count_values("version", build_info)`),
		table.Entry("comparison with bool modifier", "1 > bool 1"),
		table.Entry("vector comparison", "up > 0"),
		table.Entry("set operator", "up and down"),
		table.Entry("vector matching on", "a + on (job) b"),
		table.Entry("vector matching ignoring group_left", "a + ignoring (job) group_left b"),
		table.Entry("vector matching group_left with included labels", "a + on (job) group_left (instance) b"),
		table.Entry("label name that collides with a keyword", `up{offset="x", by="y"}`),
		table.Entry("grouping label that collides with a keyword", "sum by (on, offset) (up)"),
		table.Entry("string with single quotes", "'hello'"),
		table.Entry("string with backticks", "`hello`"),
		table.Entry("trailing comma in matcher list", `up{job="api",}`),
		table.Entry("trailing comma in arg list", "clamp(up, 0, 1,)"),
	)

	table.DescribeTable("invalid expressions return an error",
		func(input string) {
			_, err := promql.ParseExpression(input)
			Expect(err).To(HaveOccurred())
		},
		table.Entry("duration required inside brackets", "sum(my_metric[window])"),
		table.Entry("range selector on a non-selector", "(up)[5m]"),
		table.Entry("a second matrix-range bracket cannot attach to a matrix selector", "metric[1h][1d]"),
		table.Entry("a subquery cannot be followed by another bracket", "metric[1h][1d:5m][1h]"),
		table.Entry("offset on a binary expression", "(up + down) offset 5m"),
		table.Entry("unknown function", "not_a_real_function(up)"),
		table.Entry("wrong arity", "rate(up, down)"),
		table.Entry("aggregate with wrong arity", "sum(a, b)"),
		table.Entry("bool modifier on a non-comparison operator", "1 + bool 1"),
		table.Entry("empty matcher list with leading comma", `up{,}`),
		table.Entry("trailing garbage after a complete expression", "up up"),
		table.Entry("unterminated paren", "(up"),
	)

	It("returns the documented stable syntax-error message for an invalid duration", func() {
		_, err := promql.ParseExpression("sum(my_metric[window])")
		Expect(err).To(HaveOccurred())
		Expect(err.Error()).To(ContainSubstring("Syntax error"))
		Expect(err.Error()).To(ContainSubstring("unexpected identifier \"window\""))
		Expect(err.Error()).To(ContainSubstring("expected duration"))
	})

	It("parses nested binary expressions with the documented precedence", func() {
		expr, err := promql.ParseExpression("1 + 2 * 3")
		Expect(err).NotTo(HaveOccurred())
		bin, ok := expr.(*promql.BinaryExpr)
		Expect(ok).To(BeTrue())
		Expect(bin.Op).To(Equal(promql.OpAdd))
		rhs, ok := bin.RHS.(*promql.BinaryExpr)
		Expect(ok).To(BeTrue())
		Expect(rhs.Op).To(Equal(promql.OpMul))
	})

	It("builds a vector selector with a synthesized __name__ matcher", func() {
		expr, err := promql.ParseExpression(`up{job="api"}`)
		Expect(err).NotTo(HaveOccurred())
		sel, ok := expr.(*promql.VectorSelector)
		Expect(ok).To(BeTrue())
		all := sel.AllMatchers()
		Expect(all).To(HaveLen(2))
		Expect(all[0].Name).To(Equal("__name__"))
		Expect(all[0].Value.Value).To(Equal("up"))
	})

	It("builds a subquery wrapping a matrix selector when both brackets are given", func() {
		expr, err := promql.ParseExpression("metric[1h][1d:5m]")
		Expect(err).NotTo(HaveOccurred())
		sub, ok := expr.(*promql.SubqueryExpr)
		Expect(ok).To(BeTrue())
		Expect(sub.Range.String()).To(Equal("1d"))
		Expect(sub.Step.String()).To(Equal("5m"))
		matrix, ok := sub.Inner.(*promql.MatrixSelector)
		Expect(ok).To(BeTrue())
		Expect(matrix.Range.String()).To(Equal("1h"))
	})

	It("attaches an aggregate's grouping labels regardless of modifier position", func() {
		before, err := promql.ParseExpression("sum by (job) (up)")
		Expect(err).NotTo(HaveOccurred())
		after, err := promql.ParseExpression("sum(up) by (job)")
		Expect(err).NotTo(HaveOccurred())

		beforeAgg := before.(*promql.AggregateExpr)
		afterAgg := after.(*promql.AggregateExpr)
		Expect(beforeAgg.Grouping).To(Equal([]string{"job"}))
		Expect(afterAgg.Grouping).To(Equal([]string{"job"}))
	})
})
