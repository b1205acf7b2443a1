package board

import (
	"fmt"
	"io"
	"strings"

	"github.com/logrusorgru/aurora"
	"github.com/zeu5/ladders-rl/core"
)

// Printer draws a board in the terminal, top row first.
type Printer struct {
	au aurora.Aurora
}

func NewPrinter(colors bool) *Printer {
	return &Printer{au: aurora.NewAurora(colors)}
}

// PrintBoard draws cell numbers and markers. Cells on the trajectory are
// highlighted.
func (p *Printer) PrintBoard(w io.Writer, b *Board, trajectory []core.Cell) {
	visited := make(map[core.Cell]bool, len(trajectory))
	for _, c := range trajectory {
		visited[c] = true
	}

	p.grid(w, b, func(c core.Cell) string {
		label := fmt.Sprintf("%4d%-2s", c, p.marker(b, c))
		return p.paint(b, c, label, visited[c])
	})
	fmt.Fprintf(w, "%s win  %s loss  %s ladder  %s chute\n",
		p.au.Green("W"), p.au.Red("L"), p.au.Blue("^"), p.au.Yellow("v"))
}

// PrintSummary lists the terminal cells and shortcuts of a board.
func (p *Printer) PrintSummary(w io.Writer, b *Board) {
	fmt.Fprintf(w, "%s %v\n", p.au.Green("Wins:"), b.Wins())
	fmt.Fprintf(w, "%s %v\n", p.au.Red("Losses:"), b.Losses())
	fmt.Fprintf(w, "%s %s\n", p.au.Blue("Ladders:"), formatShortcuts(b.Ladders()))
	fmt.Fprintf(w, "%s %s\n", p.au.Yellow("Chutes:"), formatShortcuts(b.Chutes()))
}

func formatShortcuts(in []Shortcut) string {
	parts := make([]string, len(in))
	for i, s := range in {
		parts[i] = fmt.Sprintf("%d->%d", s.From, s.To)
	}
	return strings.Join(parts, " ")
}

// PrintValues draws a value per cell, with the greedy action when known.
func (p *Printer) PrintValues(w io.Writer, b *Board, values map[core.Cell]float64, policy map[core.Cell]core.Action) {
	p.grid(w, b, func(c core.Cell) string {
		v, ok := values[c]
		if !ok {
			return p.paint(b, c, fmt.Sprintf("%8s%-5s", ".", p.marker(b, c)), false)
		}
		action := ""
		if a, ok := policy[c]; ok {
			action = a.String()
		}
		return p.paint(b, c, fmt.Sprintf("%8.2f %-4s", v, action), false)
	})
}

func (p *Printer) grid(w io.Writer, b *Board, cell func(core.Cell) string) {
	for row := b.Rows(); row >= 1; row-- {
		var sb strings.Builder
		for col := 1; col <= b.Columns(); col++ {
			sb.WriteString(cell(b.CellOf(col, row)))
			sb.WriteString(p.au.White("|").String())
		}
		fmt.Fprintln(w, sb.String())
	}
}

func (p *Printer) marker(b *Board, c core.Cell) string {
	switch {
	case b.IsWin(c):
		return "W"
	case b.IsLoss(c):
		return "L"
	}
	if to, ok := b.ShortcutExit(c); ok {
		if to > c {
			return "^"
		}
		return "v"
	}
	return ""
}

func (p *Printer) paint(b *Board, c core.Cell, s string, highlight bool) string {
	var v aurora.Value
	switch {
	case b.IsWin(c):
		v = p.au.Green(s)
	case b.IsLoss(c):
		v = p.au.Red(s)
	case b.IsShortcut(c):
		if to, _ := b.ShortcutExit(c); to > c {
			v = p.au.Blue(s)
		} else {
			v = p.au.Yellow(s)
		}
	default:
		v = p.au.Reset(s)
	}
	if highlight {
		v = p.au.Bold(v).Magenta()
	}
	return v.String()
}
