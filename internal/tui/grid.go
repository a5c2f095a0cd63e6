// Package tui renders experiment state in the terminal: a live dashboard
// for running experiments and a pattern viewer for RLE files.
package tui

import (
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/pdturney/spots-and-stripes/internal/life"
)

var (
	titleStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("205"))
	statStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("244"))
	errStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("196"))

	whiteCell = lipgloss.NewStyle().Background(lipgloss.Color("255"))
	blackCell = lipgloss.NewStyle().Background(lipgloss.Color("236"))
	redCell   = lipgloss.NewStyle().Background(lipgloss.Color("160"))
	blueCell  = lipgloss.NewStyle().Background(lipgloss.Color("27"))
)

// RenderGrid draws a grid with two terminal columns per cell. multistate
// selects the red/blue palette for live cells; otherwise live cells are
// black.
func RenderGrid(g *life.Grid, multistate bool) string {
	if g == nil {
		return ""
	}
	var b strings.Builder
	for y := 0; y < g.Height(); y++ {
		for x := 0; x < g.Width(); x++ {
			style := whiteCell
			switch g.Get(x, y) {
			case life.White:
			case life.Blue:
				style = blueCell
			default:
				if multistate {
					style = redCell
				} else {
					style = blackCell
				}
			}
			b.WriteString(style.Render("  "))
		}
		b.WriteByte('\n')
	}
	return b.String()
}
