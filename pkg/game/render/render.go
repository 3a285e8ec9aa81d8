// Package render は端末向けに盤面を色付きで描画する
package render

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/montplusa/golad-battle/pkg/game"
)

var (
	goodStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#4FC3F7")).Bold(true)
	badStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("#FF7043")).Bold(true)
	deadStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#555555"))
	headerStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#AAAAAA")).Italic(true)
)

// Board は盤面を 1 行 1 文字列で描画する
func Board(b game.Board) string {
	var sb strings.Builder
	sb.WriteString(headerStyle.Render(fmt.Sprintf("round %d, %s to move, %d vs %d",
		b.Round(), b.ToMove(), b.Count(game.Good), b.Count(game.Bad))))
	for r := 0; r < b.Height(); r++ {
		sb.WriteByte('\n')
		for c := 0; c < b.Width(); c++ {
			sb.WriteString(Cell(b.At(game.Square{Row: r, Col: c})))
		}
	}
	return sb.String()
}

// Cell は 1 マス分の文字
func Cell(p game.Player) string {
	switch p {
	case game.Good:
		return goodStyle.Render("+")
	case game.Bad:
		return badStyle.Render("-")
	}
	return deadStyle.Render(".")
}
