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
	"math/rand"
	"os"
	"strings"
	"time"
)

var exitWords = map[string]bool{
	"q":    true,
	"quit": true,
	"exit": true,
}

var exitQuotes = []string{
	"\nPeople say nothing is impossible, but I do nothing every day.",
	"\nI want my children to have all the things I couldn't afford. Then I want to move in with them.",
	"\nI have always wanted to be somebody, but I see now I should have been more specific.",
	"\nSometimes when I close my eyes, I can't see.",
	"\nWhy do they call it rush hour when nothing moves?",
}

func isExitCommand(line string) bool {
	return exitWords[strings.TrimSpace(line)]
}

func printExitQuote() {
	r := rand.New(rand.NewSource(time.Now().UnixNano()))
	fmt.Println(exitQuotes[r.Intn(len(exitQuotes))])
	os.Exit(0)
}
