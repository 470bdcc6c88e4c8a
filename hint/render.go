package hint

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
)

var tiles = map[Color]string{Gray: "⬜", Yellow: "🟨", Green: "🟩"}

func (cs Colors) String() string {
	var b strings.Builder
	for _, c := range cs {
		b.WriteString(tiles[c])
	}
	return b.String()
}

var (
	grayTile   = lipgloss.NewStyle().Background(lipgloss.Color("236")).Foreground(lipgloss.Color("255")).Padding(0, 1)
	yellowTile = lipgloss.NewStyle().Background(lipgloss.Color("3")).Foreground(lipgloss.Color("0")).Padding(0, 1)
	greenTile  = lipgloss.NewStyle().Background(lipgloss.Color("2")).Foreground(lipgloss.Color("0")).Padding(0, 1)
)

// ColoredWord displays a word with colored backgrounds based on the feedback.
func ColoredWord(w Word, cs Colors) string {
	s := w.String()
	var b strings.Builder
	for i := range WordLength {
		letter := string(s[i])
		switch cs[i] {
		case Green:
			b.WriteString(greenTile.Render(letter))
		case Yellow:
			b.WriteString(yellowTile.Render(letter))
		default:
			b.WriteString(grayTile.Render(letter))
		}
	}
	return b.String()
}
