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
	"sort"

	prompt "github.com/c-bata/go-prompt"

	"github.com/go-promql/promql/promql"
)

// suggestions is the catalogue-backed completion list: every known
// function and aggregate operator name, built once at startup. It
// intentionally does not try to track cursor position inside a
// partially-typed expression; that needs a grammar-aware completer,
// which is more machinery than a REPL word-completer calls for.
var suggestions = buildSuggestions()

func buildSuggestions() []prompt.Suggest {
	var out []prompt.Suggest
	for _, name := range promql.FunctionNames() {
		out = append(out, prompt.Suggest{Text: name, Description: "function"})
	}
	for _, name := range promql.AggregateNames() {
		out = append(out, prompt.Suggest{Text: name, Description: "aggregate operator"})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Text < out[j].Text })
	return out
}

func complete(d prompt.Document) []prompt.Suggest {
	word := d.GetWordBeforeCursor()
	if word == "" {
		return nil
	}
	return prompt.FilterHasPrefix(suggestions, word, true)
}
