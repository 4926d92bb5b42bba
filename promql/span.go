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

package promql

import "fmt"

// Pos is a single location in source, as a byte offset plus the
// 1-based line/column a human would read off a terminal.
type Pos struct {
	Offset int
	Line   int
	Column int
}

func (p Pos) String() string {
	return fmt.Sprintf("line %d, column %d", p.Line, p.Column)
}

// Span covers a contiguous run of source, [Start, Start+Length).
// Spans are never compared for structural equality (spec §3.4): two
// nodes built from different source text but the same shape are
// still considered equal by every consumer in this package.
type Span struct {
	Start  Pos
	Length int
}

// End returns the byte offset one past the last byte the span covers.
func (s Span) End() int {
	return s.Start.Offset + s.Length
}

// Cover returns the smallest span containing both s and other. It is
// used while folding binary expressions and attaching suffixes, where
// a parent node's span must contain every child's span.
func (s Span) Cover(other Span) Span {
	start := s.Start
	end := s.End()
	if other.Start.Offset < start.Offset {
		start = other.Start
	}
	if otherEnd := other.End(); otherEnd > end {
		end = otherEnd
	}
	return Span{Start: start, Length: end - start.Offset}
}
