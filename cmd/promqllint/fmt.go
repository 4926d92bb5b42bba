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
	"fmt"
	"io/ioutil"
	"os"

	"github.com/spf13/cobra"

	"github.com/go-promql/promql/internal/rulesfile"
	"github.com/go-promql/promql/promql"
)

var fmtWrite bool

func newFmtCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "fmt [expr]",
		Short: "Rewrite a PromQL expression, or every expr: field in a rule file, to its canonical form",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if lintRulesFile != "" {
				return fmtRuleFile(lintRulesFile)
			}
			if len(args) != 1 {
				return fmt.Errorf("fmt requires an expression argument, or --rules-file")
			}
			expr, err := recorder.ParseExpression(args[0])
			if err != nil {
				return err
			}
			fmt.Println(promql.ToPromQL(expr))
			return nil
		},
	}
	cmd.Flags().StringVar(&lintRulesFile, "rules-file", "", "rewrite every expr: field in this Prometheus rule-group YAML file instead of a single expression")
	cmd.Flags().BoolVarP(&fmtWrite, "write", "w", false, "write the result back to --rules-file instead of printing it to stdout")
	return cmd
}

func fmtRuleFile(path string) error {
	data, err := ioutil.ReadFile(path)
	if err != nil {
		return err
	}
	f, err := rulesfile.Parse(data)
	if err != nil {
		return err
	}
	out, err := f.Rewrite()
	if err != nil {
		return err
	}
	if fmtWrite {
		return ioutil.WriteFile(path, out, 0644)
	}
	_, err = os.Stdout.Write(out)
	return err
}
