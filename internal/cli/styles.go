package cli

import (
	"io"
	"os"

	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-isatty"
)

// Styles holds the renderers for CLI output.
type Styles struct {
	Error lipgloss.Style
	Ref   lipgloss.Style
	Title lipgloss.Style
	Item  lipgloss.Style
	Dim   lipgloss.Style
}

// NewStyles creates a new Styles with the given color mode.
func NewStyles(colorEnabled bool) *Styles {
	if !colorEnabled {
		plain := lipgloss.NewStyle()
		return &Styles{
			Error: plain,
			Ref:   plain,
			Title: plain,
			Item:  plain,
			Dim:   plain,
		}
	}
	return &Styles{
		Error: lipgloss.NewStyle().Foreground(lipgloss.Color("9")).Bold(true),
		Ref:   lipgloss.NewStyle().Foreground(lipgloss.Color("12")).Bold(true),
		Title: lipgloss.NewStyle().Bold(true),
		Item:  lipgloss.NewStyle().Foreground(lipgloss.Color("7")),
		Dim:   lipgloss.NewStyle().Foreground(lipgloss.Color("8")),
	}
}

// IsColorEnabled determines if color should be enabled based on mode and writer.
// In auto mode, color is enabled only if the writer is a TTY and NO_COLOR is not set.
func IsColorEnabled(mode string, writer io.Writer) bool {
	switch mode {
	case "always":
		return true
	case "never":
		return false
	default:
		if os.Getenv("NO_COLOR") != "" {
			return false
		}
		if f, ok := writer.(*os.File); ok {
			return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
		}
		return false
	}
}
