package styles

import (
	"io"
	"os"

	"github.com/charmbracelet/lipgloss"
	"golang.org/x/term"
)

// DefaultWidth is used when the output is not a terminal
const DefaultWidth = 80

// Theme colors
var (
	Primary   = lipgloss.Color("#7C3AED")
	Secondary = lipgloss.Color("#A78BFA")
	Success   = lipgloss.Color("#10B981")
	Warning   = lipgloss.Color("#F59E0B")
	Danger    = lipgloss.Color("#EF4444")
	Info      = lipgloss.Color("#3B82F6")
	Muted     = lipgloss.Color("#6B7280")
	TextDim   = lipgloss.Color("#9CA3AF")
)

// Theme holds the styles for one output. Styles come from a renderer bound to
// that output, so files and pipes get plain text while terminals get color.
type Theme struct {
	Title    lipgloss.Style
	Section  lipgloss.Style
	Path     lipgloss.Style
	Size     lipgloss.Style
	Category lipgloss.Style
	Success  lipgloss.Style
	Error    lipgloss.Style
	Warning  lipgloss.Style
	Dim      lipgloss.Style

	Width int
}

// NewTheme creates the styles for writing to w
func NewTheme(w io.Writer) *Theme {
	r := lipgloss.NewRenderer(w)

	return &Theme{
		Title:    r.NewStyle().Bold(true).Foreground(Primary),
		Section:  r.NewStyle().Bold(true).Foreground(Secondary),
		Path:     r.NewStyle().Foreground(Info),
		Size:     r.NewStyle().Foreground(Warning),
		Category: r.NewStyle().Foreground(Secondary).Italic(true),
		Success:  r.NewStyle().Foreground(Success).Bold(true),
		Error:    r.NewStyle().Foreground(Danger).Bold(true),
		Warning:  r.NewStyle().Foreground(Warning).Bold(true),
		Dim:      r.NewStyle().Foreground(TextDim),
		Width:    TerminalWidth(w),
	}
}

// Rule returns a horizontal line spanning the theme's width
func (t *Theme) Rule() string {
	width := t.Width
	if width > DefaultWidth {
		width = DefaultWidth
	}
	line := make([]rune, width)
	for i := range line {
		line[i] = '─'
	}
	return t.Dim.Render(string(line))
}

func isTerminal(w io.Writer) (*os.File, bool) {
	f, ok := w.(*os.File)
	return f, ok && term.IsTerminal(int(f.Fd()))
}

// TerminalWidth returns the column count of w, or DefaultWidth when w is not
// a terminal
func TerminalWidth(w io.Writer) int {
	f, ok := isTerminal(w)
	if !ok {
		return DefaultWidth
	}
	if width, _, err := term.GetSize(int(f.Fd())); err == nil && width > 0 {
		return width
	}
	return DefaultWidth
}
