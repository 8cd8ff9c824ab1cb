package tui

import "github.com/charmbracelet/lipgloss"

// Color palette - keeping it minimal and accessible.
var (
	ColorPrimary   = lipgloss.Color("39")  // Blue
	ColorSecondary = lipgloss.Color("245") // Gray
	ColorSuccess   = lipgloss.Color("34")  // Green
	ColorWarning   = lipgloss.Color("214") // Orange
	ColorError     = lipgloss.Color("196") // Red
	ColorMuted     = lipgloss.Color("240") // Dark gray
)

// Styles for human output.
var (
	TitleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(ColorPrimary)

	LabelStyle = lipgloss.NewStyle().
			Foreground(ColorSecondary).
			Width(14)

	MutedStyle = lipgloss.NewStyle().
			Foreground(ColorMuted)

	BoxStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(ColorSecondary).
			Padding(0, 1)

	SuccessStyle = lipgloss.NewStyle().
			Foreground(ColorSuccess)

	ErrorStyle = lipgloss.NewStyle().
			Foreground(ColorError)

	WarningStyle = lipgloss.NewStyle().
			Foreground(ColorWarning)
)

// Symbols for visual feedback.
const (
	SymbolCheck      = "✓"
	SymbolCross      = "✗"
	SymbolArrowRight = "→"
	SymbolBullet     = "•"
	SymbolWarning    = "!"
)

// Printer renders styled or plain text depending on the mode.
type Printer struct {
	styled bool
}

// NewPrinter returns a Printer for mode.
func NewPrinter(mode Mode) Printer {
	return Printer{styled: mode == ModeStyled}
}

// Styled reports whether the printer applies styles.
func (p Printer) Styled() bool {
	return p.styled
}

// Render applies style when styled and returns s unchanged otherwise.
func (p Printer) Render(style lipgloss.Style, s string) string {
	if !p.styled {
		return s
	}
	return style.Render(s)
}

// Title renders a heading.
func (p Printer) Title(s string) string {
	return p.Render(TitleStyle, s)
}

// Field renders a label and value pair.
func (p Printer) Field(label, value string) string {
	if !p.styled {
		return label + ": " + value
	}
	return LabelStyle.Render(label) + " " + value
}

// Success renders a success line.
func (p Printer) Success(s string) string {
	return p.Render(SuccessStyle, SymbolCheck+" "+s)
}

// Warning renders a warning line.
func (p Printer) Warning(s string) string {
	return p.Render(WarningStyle, SymbolWarning+" "+s)
}

// Error renders an error line.
func (p Printer) Error(s string) string {
	return p.Render(ErrorStyle, SymbolCross+" "+s)
}

// Item renders a list item.
func (p Printer) Item(s string) string {
	return "  " + p.Render(MutedStyle, SymbolBullet) + " " + s
}

// Box frames s in a border when styled.
func (p Printer) Box(s string) string {
	return p.Render(BoxStyle, s)
}
