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

func mustParse(input string) promql.Expr {
	expr, err := promql.ParseExpression(input)
	Expect(err).NotTo(HaveOccurred(), "failed to parse %q", input)
	return expr
}

var _ = Describe("CheckType", func() {
	table.DescribeTable("well-typed expressions",
		func(input string, expected promql.ValueType) {
			t, err := promql.CheckType(mustParse(input))
			Expect(err).NotTo(HaveOccurred())
			Expect(t).To(Equal(expected))
		},
		table.Entry("scalar literal", "1", promql.ValueTypeScalar),
		table.Entry("string literal", `"x"`, promql.ValueTypeString),
		table.Entry("vector selector", "up", promql.ValueTypeVector),
		table.Entry("matrix selector", "up[5m]", promql.ValueTypeMatrix),
		table.Entry("subquery", "rate(up[5m])[30m:1m]", promql.ValueTypeMatrix),
		table.Entry("scalar/scalar arithmetic", "1 + 2", promql.ValueTypeScalar),
		table.Entry("vector/vector arithmetic", "up + down", promql.ValueTypeVector),
		table.Entry("vector/scalar arithmetic", "up * 2", promql.ValueTypeVector),
		table.Entry("scalar comparison with bool", "1 > bool 1", promql.ValueTypeScalar),
		table.Entry("vector comparison without bool", "up > 0", promql.ValueTypeVector),
		table.Entry("set operator over vectors", "up and down", promql.ValueTypeVector),
		table.Entry("aggregate", "sum(up)", promql.ValueTypeVector),
		table.Entry("aggregate with scalar parameter", "topk(5, up)", promql.ValueTypeVector),
		table.Entry("function call", "rate(up[5m])", promql.ValueTypeVector),
		table.Entry("scalar() function", "scalar(up)", promql.ValueTypeScalar),
		table.Entry("unary minus over a vector", "-up", promql.ValueTypeVector),
		table.Entry("offset preserves inner type", "up offset 5m", promql.ValueTypeVector),
		table.Entry("parens preserve inner type", "(1 + 1)", promql.ValueTypeScalar),
	)

	It("rejects a vector selector with no metric and no matchers", func() {
		sel := &promql.VectorSelector{}
		_, err := promql.CheckType(sel)
		Expect(err).To(HaveOccurred())
		Expect(err.Error()).To(ContainSubstring("must contain at least one non-empty matcher"))
	})

	It("rejects scalar comparisons missing the bool modifier", func() {
		_, err := promql.CheckType(mustParse("1 > 1"))
		Expect(err).To(HaveOccurred())
		Expect(err.Error()).To(ContainSubstring("bool modifier"))
	})

	It("rejects a set operator applied to a scalar", func() {
		_, err := promql.CheckType(mustParse("up and 1"))
		Expect(err).To(HaveOccurred())
		Expect(err.Error()).To(ContainSubstring("set operator And not allowed in binary scalar expression"))
	})

	It("rejects a function argument of the wrong type", func() {
		expr := mustParse("sum_over_time(up)")
		_, err := promql.CheckType(expr)
		Expect(err).To(HaveOccurred())
		typeErr, ok := err.(*promql.TypeError)
		Expect(ok).To(BeTrue())
		Expect(typeErr.Actual).To(Equal(promql.ValueTypeVector))
		Expect(typeErr.Expected).To(Equal([]promql.ValueType{promql.ValueTypeMatrix}))
		Expect(err.Error()).To(ContainSubstring("Unexpected type 'instant vector' was provided, expected range vector"))
	})

	It("rejects an aggregate parameter of the wrong type", func() {
		_, err := promql.CheckType(mustParse("topk(up, down)"))
		Expect(err).To(HaveOccurred())
	})

	It("rejects a label name that is not a valid Prometheus label name", func() {
		expr := &promql.VectorSelector{
			Metric: &promql.MetricIdentifier{Name: "up"},
			Matchers: &promql.LabelMatchers{
				Matchers: []promql.LabelMatcher{
					{Name: "not a label!", Op: promql.MatchEqual, Value: promql.StringLiteral{Quote: promql.QuoteDouble, Value: "x"}},
				},
			},
		}
		_, err := promql.CheckType(expr)
		Expect(err).To(HaveOccurred())
		Expect(err.Error()).To(ContainSubstring("invalid label name"))
	})

	It("rejects a subquery over a non-vector inner expression", func() {
		expr := &promql.SubqueryExpr{
			Inner: mustParse("1"),
			Range: promql.Duration{Nanoseconds: 0},
		}
		_, err := promql.CheckType(expr)
		Expect(err).To(HaveOccurred())
	})
})
