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

// Package rulesfile reads Prometheus-style alerting/recording rule
// group files and exercises the core promql package against every
// `expr:` field they contain, without parsing anything else in the
// document. Fields this package has no schema for (custom labels,
// annotations, anything a future rule-file version adds) are kept
// through the `,inline` extra map on Rule, so Rewrite never drops
// data it didn't understand.
package rulesfile

import (
	"fmt"

	"gopkg.in/yaml.v2"

	"github.com/go-promql/promql/promql"
)

// Rule is one alerting or recording rule. Exactly one of Record or
// Alert is set, per the upstream rule-file schema; this package does
// not enforce that, it only reads and rewrites Expr.
type Rule struct {
	Record string                 `yaml:"record,omitempty"`
	Alert  string                 `yaml:"alert,omitempty"`
	Expr   string                 `yaml:"expr"`
	Extra  map[string]interface{} `yaml:",inline"`
}

// Group is one named set of rules, evaluated together on the same
// interval by the upstream rule evaluator (a concern this package
// never touches: it only reads and rewrites Expr fields).
type Group struct {
	Name  string                 `yaml:"name"`
	Rules []Rule                 `yaml:"rules"`
	Extra map[string]interface{} `yaml:",inline"`
}

// File is a parsed rule-group document.
type File struct {
	Groups []Group                `yaml:"groups"`
	Extra  map[string]interface{} `yaml:",inline"`
}

// Finding is one expr: field discovered in a rule group file, plus
// what happened when the core library looked at it.
type Finding struct {
	GroupName string
	RuleIndex int
	Expr      string
	Err       error
}

// Parse reads a rule-group YAML document. It does not itself fail on
// an invalid PromQL expr field; call Lint to collect those.
func Parse(data []byte) (*File, error) {
	var f File
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("rulesfile: %w", err)
	}
	return &f, nil
}

// Lint parses and type-checks every expr: field in the document,
// returning one Finding per rule, in document order.
func (f *File) Lint() []Finding {
	var findings []Finding
	for _, g := range f.Groups {
		for i, r := range g.Rules {
			parsed, err := promql.ParseExpression(r.Expr)
			if err == nil {
				_, err = promql.CheckType(parsed)
			}
			findings = append(findings, Finding{
				GroupName: g.Name,
				RuleIndex: i,
				Expr:      r.Expr,
				Err:       err,
			})
		}
	}
	return findings
}

// Rewrite returns the document with every expr: field replaced by its
// canonical promql.ToPromQL rendering. A rule whose Expr fails to
// parse is left untouched: Rewrite never silently drops a rule, and
// callers should run Lint first to know which rules that affects.
func (f *File) Rewrite() ([]byte, error) {
	for gi := range f.Groups {
		for ri := range f.Groups[gi].Rules {
			rule := &f.Groups[gi].Rules[ri]
			parsed, err := promql.ParseExpression(rule.Expr)
			if err != nil {
				continue
			}
			rule.Expr = promql.ToPromQL(parsed)
		}
	}
	return yaml.Marshal(f)
}
