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

// Command promqlrepl is an interactive PromQL console: it parses and
// type-checks each line as it's entered and prints back the
// canonical, reprinted form of the expression plus its value type.
package main

import (
	"flag"
	"fmt"
	"os"

	prompt "github.com/c-bata/go-prompt"
	"github.com/fatih/color"

	"github.com/go-promql/promql/internal/metrics"
	"github.com/go-promql/promql/promql"
)

var recorder = metrics.NewRecorder(nil)

func main() {
	split := flag.Bool("split", false, "run a full-screen two-pane view instead of a line-at-a-time REPL")
	flag.Parse()

	if *split {
		if err := runSplit(); err != nil {
			fmt.Fprintln(os.Stderr, err)
			os.Exit(1)
		}
		return
	}

	fmt.Println("promqlrepl -- type a PromQL expression, or 'quit' to exit.")
	p := prompt.New(
		execute,
		complete,
		prompt.OptPrefix("promql> "),
		prompt.OptTitle("promqlrepl"),
	)
	p.Run()
}

func execute(line string) {
	if isExitCommand(line) {
		printExitQuote()
		return
	}
	expr, err := recorder.ParseExpression(line)
	if err != nil {
		color.New(color.FgRed).Println(err)
		return
	}
	t, err := recorder.CheckType(expr)
	if err != nil {
		color.New(color.FgRed).Println(err)
		return
	}
	color.New(color.FgGreen).Printf("%s", promql.ToPromQL(expr))
	fmt.Printf("  : %s\n", t)
}
