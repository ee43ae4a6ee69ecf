package styles

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// DoctorRenderer renders the environment probe report.
type DoctorRenderer struct {
	theme *Theme
}

func NewDoctorRenderer(theme *Theme) *DoctorRenderer {
	return &DoctorRenderer{theme: theme}
}

// DoctorReport summarizes which capabilities the current host can serve.
type DoctorReport struct {
	Family    string
	OverallOK bool
	Checks    []DoctorCheck
}

// DoctorCheck is one capability availability probe result.
type DoctorCheck struct {
	Capability string
	Available  bool
	Gated      bool
	Detail     string
}

func (r *DoctorRenderer) Render(report DoctorReport) string {
	header := r.renderHeader(report)
	body := r.renderChecks(report.Checks)
	return lipgloss.JoinVertical(lipgloss.Left, header, "", body)
}

func (r *DoctorRenderer) renderHeader(report DoctorReport) string {
	iconStyle := lipgloss.NewStyle().Foreground(r.theme.Accent)
	statusStyle := r.theme.SuccessStyle
	statusText := "OK"
	if !report.OverallOK {
		statusStyle = r.theme.WarningStyle
		statusText = "Degraded"
	}

	title := fmt.Sprintf("%s %s", iconStyle.Render(IconDoctor), r.theme.Title.Render("Doctor"))
	family := r.theme.BadgeMuted.Render(report.Family)
	badge := r.theme.BadgeMuted.Render(statusStyle.Render(statusText))
	return lipgloss.JoinHorizontal(lipgloss.Center, title, " ", family, " ", badge)
}

func (r *DoctorRenderer) renderChecks(checks []DoctorCheck) string {
	lines := make([]string, 0, len(checks))
	for _, c := range checks {
		lines = append(lines, r.renderCheck(c))
	}
	body := strings.Join(lines, "\n")
	header := r.theme.BoxHeader.Render(fmt.Sprintf("%s Capabilities", r.theme.Highlight.Render(IconPlug)))
	return r.theme.Box.Render(header + "\n" + body)
}

func (r *DoctorRenderer) renderCheck(c DoctorCheck) string {
	icon := r.theme.SuccessStyle.Render(IconCheck)
	if !c.Available {
		icon = r.theme.ErrorStyle.Render(IconCross)
	}

	name := r.theme.Normal.Render(fmt.Sprintf("%-32s", c.Capability))

	var extras []string
	if c.Gated {
		extras = append(extras, r.theme.WarningStyle.Render(IconShield+" permission"))
	}
	if c.Detail != "" {
		extras = append(extras, r.theme.Subtle.Render(c.Detail))
	}

	line := fmt.Sprintf("%s %s", icon, name)
	if len(extras) > 0 {
		line += " " + strings.Join(extras, " ")
	}
	return line
}
