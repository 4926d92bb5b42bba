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

// Package metrics wraps the core promql package's entry points with
// optional Prometheus self-instrumentation. It is a pure decorator:
// the caller still owns the promql.Expr it gets back, and nothing
// here changes parse or type-check semantics.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/go-promql/promql/promql"
)

// Recorder counts and times calls into the core library. A zero-value
// *Recorder (or a nil one) is safe to call methods on: every method
// degrades to a plain passthrough when the recorder has not been
// registered against a collector.
type Recorder struct {
	parseTotal     *prometheus.CounterVec
	parseDuration  prometheus.Histogram
	typecheckTotal *prometheus.CounterVec
	lastNodeCount  prometheus.Gauge
}

// NewRecorder builds a Recorder and registers its collectors against
// reg. Passing a nil registry is valid and yields a Recorder whose
// methods still work, just without feeding any collector — useful for
// tests and for callers that don't want metrics at all.
func NewRecorder(reg prometheus.Registerer) *Recorder {
	r := &Recorder{
		parseTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "promql",
			Subsystem: "parser",
			Name:      "parse_total",
			Help:      "Count of ParseExpression calls by outcome.",
		}, []string{"outcome"}),
		parseDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "promql",
			Subsystem: "parser",
			Name:      "parse_duration_seconds",
			Help:      "Latency of ParseExpression calls.",
			Buckets:   prometheus.DefBuckets,
		}),
		typecheckTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "promql",
			Subsystem: "parser",
			Name:      "typecheck_total",
			Help:      "Count of CheckType calls by outcome.",
		}, []string{"outcome"}),
		lastNodeCount: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "promql",
			Subsystem: "parser",
			Name:      "last_ast_node_count",
			Help:      "Node count of the most recently parsed expression tree.",
		}),
	}
	if reg != nil {
		reg.MustRegister(r.parseTotal, r.parseDuration, r.typecheckTotal, r.lastNodeCount)
	}
	return r
}

func (r *Recorder) outcome(err error) string {
	if err != nil {
		return "error"
	}
	return "success"
}

// ParseExpression calls promql.ParseExpression, recording the call's
// outcome, latency, and the resulting tree's node count.
func (r *Recorder) ParseExpression(input string) (promql.Expr, error) {
	start := time.Now()
	expr, err := promql.ParseExpression(input)
	if r == nil {
		return expr, err
	}
	if r.parseDuration != nil {
		r.parseDuration.Observe(time.Since(start).Seconds())
	}
	if r.parseTotal != nil {
		r.parseTotal.WithLabelValues(r.outcome(err)).Inc()
	}
	if err == nil && r.lastNodeCount != nil {
		r.lastNodeCount.Set(float64(CountNodes(expr)))
	}
	return expr, err
}

// CheckType calls promql.CheckType, recording the call's outcome.
func (r *Recorder) CheckType(expr promql.Expr) (promql.ValueType, error) {
	t, err := promql.CheckType(expr)
	if r == nil || r.typecheckTotal == nil {
		return t, err
	}
	r.typecheckTotal.WithLabelValues(r.outcome(err)).Inc()
	return t, err
}

// CountNodes walks expr with promql.Walk and returns the number of
// nodes in the tree, including expr itself.
func CountNodes(expr promql.Expr) int {
	if expr == nil {
		return 0
	}
	counter := &nodeCounter{}
	countVisit(counter, expr)
	return counter.n
}

// nodeCounter implements promql.Visitor, incrementing n once per
// visited node and recursing into children it owns.
type nodeCounter struct {
	n int
}

func countVisit(c *nodeCounter, expr promql.Expr) {
	c.n++
	promql.Walk(c, expr)
}

func (c *nodeCounter) VisitNumberLiteral(*promql.NumberLiteral) {}
func (c *nodeCounter) VisitStringLiteral(*promql.StringLiteral) {}
func (c *nodeCounter) VisitVectorSelector(*promql.VectorSelector) {}

func (c *nodeCounter) VisitMatrixSelector(n *promql.MatrixSelector) {
	countVisit(c, n.Vector)
}

func (c *nodeCounter) VisitSubqueryExpr(n *promql.SubqueryExpr) {
	countVisit(c, n.Inner)
}

func (c *nodeCounter) VisitOffsetExpr(n *promql.OffsetExpr) {
	countVisit(c, n.Inner)
}

func (c *nodeCounter) VisitParenExpression(n *promql.ParenExpression) {
	countVisit(c, n.Inner)
}

func (c *nodeCounter) VisitUnaryExpr(n *promql.UnaryExpr) {
	countVisit(c, n.Inner)
}

func (c *nodeCounter) VisitFunctionCall(n *promql.FunctionCall) {
	for _, arg := range n.Args {
		countVisit(c, arg)
	}
}

func (c *nodeCounter) VisitAggregateExpr(n *promql.AggregateExpr) {
	if n.Param != nil {
		countVisit(c, n.Param)
	}
	countVisit(c, n.Expr)
}

func (c *nodeCounter) VisitBinaryExpr(n *promql.BinaryExpr) {
	countVisit(c, n.LHS)
	countVisit(c, n.RHS)
}
