package styles

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// ContractsRenderer renders the capability contract table.
type ContractsRenderer struct {
	theme *Theme
}

func NewContractsRenderer(theme *Theme) *ContractsRenderer {
	return &ContractsRenderer{theme: theme}
}

// ContractRow is one capability line in the table.
type ContractRow struct {
	Name       string
	Kind       string
	Permission string
	Platforms  []string
}

func (r *ContractsRenderer) Render(rows []ContractRow) string {
	header := fmt.Sprintf("%s %s",
		lipgloss.NewStyle().Foreground(r.theme.Accent).Render(IconTable),
		r.theme.Title.Render("Capability contracts"))

	lines := make([]string, 0, len(rows)+1)
	lines = append(lines, r.theme.Subtle.Render(
		fmt.Sprintf("%-32s %-12s %-15s %s", "CAPABILITY", "KIND", "PERMISSION", "PLATFORMS")))

	for _, row := range rows {
		perm := row.Permission
		permStyle := r.theme.Subtle
		if perm == "" {
			perm = "-"
		} else {
			permStyle = r.theme.WarningStyle
		}
		lines = append(lines, fmt.Sprintf("%s %s %s %s",
			r.theme.Normal.Render(fmt.Sprintf("%-32s", row.Name)),
			r.theme.Highlight.Render(fmt.Sprintf("%-12s", row.Kind)),
			permStyle.Render(fmt.Sprintf("%-15s", perm)),
			r.theme.Subtle.Render(strings.Join(row.Platforms, ", ")),
		))
	}

	return lipgloss.JoinVertical(lipgloss.Left, header, "", r.theme.Box.Render(strings.Join(lines, "\n")))
}
