package cli

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/turtacn/Trilemma-Dashboard/internal/application/dashboard"
)

var (
	colorAccent = lipgloss.Color("#874BFD")
	colorValue  = lipgloss.Color("#00FF99")
	colorMuted  = lipgloss.Color("#64748B")
	colorWarn   = lipgloss.Color("#F59E0B")
)

// viewStyles styles the terminal rendering of a ViewModel.
type viewStyles struct {
	title     lipgloss.Style
	heading   lipgloss.Style
	label     lipgloss.Style
	value     lipgloss.Style
	undefined lipgloss.Style
	box       lipgloss.Style
}

func newViewStyles(noColor bool) viewStyles {
	if noColor {
		plain := lipgloss.NewStyle()
		return viewStyles{
			title:     plain,
			heading:   plain,
			label:     plain,
			value:     plain,
			undefined: plain,
			box:       plain,
		}
	}
	return viewStyles{
		title:     lipgloss.NewStyle().Foreground(colorAccent).Bold(true),
		heading:   lipgloss.NewStyle().Foreground(colorAccent).Underline(true),
		label:     lipgloss.NewStyle().Foreground(colorMuted),
		value:     lipgloss.NewStyle().Foreground(colorValue).Bold(true),
		undefined: lipgloss.NewStyle().Foreground(colorWarn),
		box: lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(colorMuted).
			Padding(0, 1),
	}
}

func formatPoint(p dashboard.Point) string {
	return fmt.Sprintf("(%.2f, %.2f, %.2f)", p.X, p.Y, p.Z)
}

// renderView lays out the title, both vectors and every readout group.
func renderView(vm *dashboard.ViewModel, st viewStyles) string {
	lines := []string{
		st.title.Render(vm.Title + " - " + vm.Selection.Year),
		st.label.Render("Generic vector (equity, security, environmental): ") + st.value.Render(formatPoint(vm.Generic)),
		st.label.Render("Ideal vector: ") + st.value.Render(formatPoint(vm.Ideal)),
	}
	for _, g := range vm.Groups {
		lines = append(lines, "")
		if g.Heading != "" {
			lines = append(lines, st.heading.Render(g.Heading))
		}
		for _, r := range g.Readouts {
			valueStyle := st.value
			if !r.Defined() {
				valueStyle = st.undefined
			}
			lines = append(lines, "  "+st.label.Render(r.Label+": ")+valueStyle.Render(r.Value))
		}
	}
	return st.box.Render(strings.Join(lines, "\n"))
}

//Personal.AI order the ending
