package internal

import (
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// Renderer is the presentation surface for assistance output. The
// coordinator renders whatever it has; a stale render is overwritten by
// the next one rather than coordinated away.
type Renderer interface {
	ShowResult(message string, result *AIResult)
	ShowMessage(message string)
	ShowError(message string)
}

var (
	panelStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("63")).
			Padding(0, 1).
			Width(78)

	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("205"))

	labelStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("36"))

	dimStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("241"))

	errorStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("196"))
)

// TerminalRenderer writes styled panels to a terminal.
type TerminalRenderer struct {
	out io.Writer
}

// NewTerminalRenderer creates a renderer writing to out.
func NewTerminalRenderer(out io.Writer) *TerminalRenderer {
	return &TerminalRenderer{out: out}
}

// ShowResult implements Renderer.
func (r *TerminalRenderer) ShowResult(message string, result *AIResult) {
	var b strings.Builder
	b.WriteString(titleStyle.Render("AI Assistant"))
	b.WriteString("\n")
	b.WriteString(dimStyle.Render(truncate(message, 80)))
	b.WriteString("\n\n")

	if result.Summary != "" {
		b.WriteString(labelStyle.Render("Summary"))
		b.WriteString("\n")
		b.WriteString(result.Summary)
		b.WriteString("\n\n")
	}

	b.WriteString(labelStyle.Render("Suggested replies"))
	for i, reply := range result.ReplyOptions {
		fmt.Fprintf(&b, "\n%d. %s", i+1, reply)
	}

	fmt.Fprintln(r.out, panelStyle.Render(b.String()))
}

// ShowMessage implements Renderer.
func (r *TerminalRenderer) ShowMessage(message string) {
	fmt.Fprintln(r.out, dimStyle.Render(message))
}

// ShowError implements Renderer.
func (r *TerminalRenderer) ShowError(message string) {
	fmt.Fprintln(r.out, errorStyle.Render(message))
}

func truncate(s string, max int) string {
	runes := []rune(s)
	if len(runes) <= max {
		return s
	}
	return string(runes[:max-3]) + "..."
}
