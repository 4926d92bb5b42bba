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

package main

import (
	"encoding/json"
	"fmt"
	"io/ioutil"
	"os"

	"github.com/fatih/color"
	prettyjson "github.com/hokaccha/go-prettyjson"
	"github.com/spf13/cobra"

	"github.com/go-promql/promql/internal/rulesfile"
	"github.com/go-promql/promql/promql"
)

var lintRulesFile string

func newLintCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "lint [expr]",
		Short: "Parse and type-check a PromQL expression, or every expr: field in a rule file",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if lintRulesFile != "" {
				return lintRuleFile(lintRulesFile)
			}
			if len(args) != 1 {
				return fmt.Errorf("lint requires an expression argument, or --rules-file")
			}
			ok := lintOne(args[0], "")
			if !ok {
				os.Exit(1)
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&lintRulesFile, "rules-file", "", "lint every expr: field in this Prometheus rule-group YAML file instead of a single expression")
	return cmd
}

func lintRuleFile(path string) error {
	data, err := ioutil.ReadFile(path)
	if err != nil {
		return err
	}
	f, err := rulesfile.Parse(data)
	if err != nil {
		return err
	}
	findings := f.Lint()
	failed := false
	for _, finding := range findings {
		label := fmt.Sprintf("%s[%d]", finding.GroupName, finding.RuleIndex)
		if finding.Err != nil {
			failed = true
		}
		reportFinding(label, finding.Expr, finding.Err)
	}
	if failed {
		os.Exit(1)
	}
	return nil
}

func reportFinding(label, expr string, err error) bool {
	if flags.jsonOutput {
		payload := map[string]interface{}{"rule": label, "expr": expr, "ok": err == nil}
		if err != nil {
			payload["error"] = err.Error()
		}
		b, _ := json.Marshal(payload)
		fmt.Println(string(b))
		return err == nil
	}
	if err != nil {
		color.New(color.FgRed, color.Bold).Printf("FAIL %s: ", label)
		fmt.Println(err)
		return false
	}
	color.New(color.FgGreen).Printf("ok   %s: %s\n", label, expr)
	return true
}

// lintOne parses and type-checks a single expression, recording the
// outcome through the shared recorder and printing either a colorized
// diagnostic or a JSON AST dump depending on --json.
func lintOne(input, label string) bool {
	expr, err := recorder.ParseExpression(input)
	if err == nil {
		_, err = recorder.CheckType(expr)
	}
	if flags.jsonOutput {
		if err != nil {
			b, _ := json.Marshal(map[string]string{"error": err.Error()})
			fmt.Println(string(b))
			return false
		}
		pretty, jerr := prettyjson.Marshal(astToMap(expr))
		if jerr != nil {
			fmt.Println(jerr)
			return false
		}
		fmt.Println(string(pretty))
		return true
	}
	return reportFinding(label, input, err)
}

// astToMap renders expr into a small JSON-friendly summary: the Go
// type of the root node, its value type, and its canonical
// promql.ToPromQL text. Child nodes are not broken out.
func astToMap(expr promql.Expr) map[string]interface{} {
	return map[string]interface{}{
		"type":      fmt.Sprintf("%T", expr),
		"valueType": expr.Type().String(),
		"promql":    promql.ToPromQL(expr),
	}
}
