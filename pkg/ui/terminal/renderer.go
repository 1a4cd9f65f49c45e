// Package terminal provides rich terminal output with colors and styling
package terminal

import (
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/arthur-debert/stowaway/pkg/errors"
	"github.com/arthur-debert/stowaway/pkg/style"
	"github.com/arthur-debert/stowaway/pkg/types"
	"github.com/arthur-debert/stowaway/pkg/ui/sections"
	"github.com/charmbracelet/lipgloss"
)

// Renderer provides rich terminal output using lipgloss styles
type Renderer struct {
	output io.Writer
}

// New creates a new terminal renderer
func New(w io.Writer) *Renderer {
	return &Renderer{output: w}
}

// RenderDeploy draws the boxed deployment header, the report sections and
// a colored summary
func (r *Renderer) RenderDeploy(result *types.DeployResult) error {
	_, err := fmt.Fprintln(r.output, renderDeploy(result))
	return err
}

// RenderStatus draws the recorded deployments and the drift sections
func (r *Renderer) RenderStatus(status *types.DestinationStatus) error {
	_, err := fmt.Fprintln(r.output, renderStatus(status))
	return err
}

// RenderError draws the error followed by its details
func (r *Renderer) RenderError(err error) error {
	lines := []string{style.ErrorStyle.Render("Error: " + err.Error())}
	details := errors.GetErrorDetails(err)
	keys := make([]string, 0, len(details))
	for k := range details {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		lines = append(lines, style.ListItemStyle.Render(field(k, fmt.Sprint(details[k]))))
	}
	_, writeErr := fmt.Fprintln(r.output, lipgloss.JoinVertical(lipgloss.Left, lines...))
	return writeErr
}

func renderDeploy(v *types.DeployResult) string {
	kind := "Update"
	if v.Initial {
		kind = "Initial"
	}
	title := fmt.Sprintf("%s deployment %s", kind, v.Deployment)
	if v.DryRun {
		title += style.MutedStyle.Render(" (dry run)")
	}

	header := lipgloss.JoinVertical(lipgloss.Left,
		style.SubtitleStyle.Render(title),
		style.PathStyle.Render(v.Destination),
	)

	secs := sections.FromReport(v.Report)
	if len(secs) == 0 {
		return lipgloss.JoinVertical(lipgloss.Left, style.BoxStyle.Render(header), style.MutedStyle.Render("No changes."))
	}
	return lipgloss.JoinVertical(lipgloss.Left,
		style.BoxStyle.Render(header),
		renderSections(secs, style.Title),
		renderSummary(v.Report.Summary),
	)
}

func renderStatus(v *types.DestinationStatus) string {
	if !v.Managed {
		return style.MutedStyle.Render(v.Destination + " is not managed")
	}

	lines := []string{
		style.SubtitleStyle.Render(v.Destination),
		field("current", v.Current.String()),
	}
	if v.Previous != nil {
		lines = append(lines, field("previous", v.Previous.String()))
	}
	lines = append(lines, field("tracked", fmt.Sprintf("%d", v.Tracked)))
	header := style.BoxStyle.Render(lipgloss.JoinVertical(lipgloss.Left, lines...))

	if v.Clean() {
		return lipgloss.JoinVertical(lipgloss.Left, header,
			style.GetCategoryStyle(style.CategoryAdded).Render("No drift."))
	}
	return lipgloss.JoinVertical(lipgloss.Left, header,
		renderSections(sections.FromDrift(v.Drift), sections.DriftTitle))
}

func field(name, value string) string {
	return style.MutedStyle.Render(fmt.Sprintf("%-9s", name+":")) + style.NormalStyle.Render(value)
}

func renderSections(secs []sections.Section, title func(style.Category) string) string {
	var b strings.Builder
	for i, s := range secs {
		if i > 0 {
			b.WriteString("\n")
		}
		st := style.GetCategoryStyle(s.Category)
		b.WriteString(st.Render(title(s.Category)))
		for _, e := range s.Entries {
			line := st.Render(style.Indicator(s.Category)) + " " + style.PathStyle.Render(e.Path)
			if e.Detail != "" {
				line += " " + style.DetailStyle.Render(e.Detail)
			}
			b.WriteString("\n")
			b.WriteString(style.ListItemStyle.Render(line))
		}
	}
	return b.String()
}

func renderSummary(s types.Summary) string {
	parts := []string{
		style.GetCategoryStyle(style.CategoryAdded).Render(fmt.Sprintf("%d added", s.Added)),
		style.GetCategoryStyle(style.CategoryChanged).Render(fmt.Sprintf("%d changed", s.Changed)),
		style.GetCategoryStyle(style.CategoryDeleted).Render(fmt.Sprintf("%d deleted", s.Deleted)),
		style.GetCategoryStyle(style.CategoryBackedUp).Render(fmt.Sprintf("%d backed up", s.BackedUp)),
	}
	if s.Restored > 0 {
		parts = append(parts, style.GetCategoryStyle(style.CategoryRestored).Render(fmt.Sprintf("%d restored", s.Restored)))
	}
	if s.Errors > 0 {
		parts = append(parts, style.ErrorStyle.Render(fmt.Sprintf("%d errors", s.Errors)))
	}
	return "\n" + strings.Join(parts, style.MutedStyle.Render(", "))
}
