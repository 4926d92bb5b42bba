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

	"github.com/gdamore/tcell"
	runewidth "github.com/mattn/go-runewidth"

	"github.com/go-promql/promql/promql"
)

// runSplit runs a two-pane full-screen view: the top pane is a plain
// line editor, the bottom pane shows the canonical reprint and value
// type of whatever currently parses, updated on every keystroke. One
// screen, two fixed regions, no resizable widget tree -- this REPL
// only ever needs the one layout.
func runSplit() error {
	screen, err := tcell.NewScreen()
	if err != nil {
		return err
	}
	if err := screen.Init(); err != nil {
		return err
	}
	defer screen.Fini()

	inputStyle := tcell.StyleDefault
	okStyle := tcell.StyleDefault.Foreground(tcell.ColorGreen)
	errStyle := tcell.StyleDefault.Foreground(tcell.ColorRed)
	dimStyle := tcell.StyleDefault.Foreground(tcell.ColorGray)

	var line []rune
	draw := func() {
		screen.Clear()
		drawLine(screen, 0, "promql> "+string(line), inputStyle)
		drawLine(screen, 2, "----", dimStyle)

		input := string(line)
		if input == "" {
			screen.Show()
			return
		}
		expr, err := recorder.ParseExpression(input)
		if err != nil {
			drawLine(screen, 3, err.Error(), errStyle)
			screen.Show()
			return
		}
		t, err := recorder.CheckType(expr)
		if err != nil {
			drawLine(screen, 3, err.Error(), errStyle)
			screen.Show()
			return
		}
		drawLine(screen, 3, fmt.Sprintf("%s : %s", promql.ToPromQL(expr), t), okStyle)
		screen.Show()
	}

	draw()
	for {
		ev := screen.PollEvent()
		switch ev := ev.(type) {
		case *tcell.EventKey:
			switch ev.Key() {
			case tcell.KeyEscape, tcell.KeyCtrlC:
				return nil
			case tcell.KeyEnter:
				line = nil
			case tcell.KeyBackspace, tcell.KeyBackspace2:
				if len(line) > 0 {
					line = line[:len(line)-1]
				}
			case tcell.KeyRune:
				line = append(line, ev.Rune())
			}
			draw()
		case *tcell.EventResize:
			screen.Sync()
			draw()
		}
	}
}

// drawLine writes text starting at column 0 of the given row, using
// go-runewidth to advance the cursor correctly for wide runes.
func drawLine(screen tcell.Screen, row int, text string, style tcell.Style) {
	col := 0
	for _, r := range text {
		screen.SetContent(col, row, r, nil, style)
		col += runewidth.RuneWidth(r)
	}
}
