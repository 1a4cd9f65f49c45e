package stowaway

import (
	"os"
	"strings"
	"text/template"

	"github.com/arthur-debert/stowaway/pkg/style"
	"github.com/arthur-debert/stowaway/pkg/ui"
	"github.com/mattn/go-isatty"
	"github.com/pterm/pterm"
	"github.com/spf13/cobra"
)

func isTerminal() bool {
	return isatty.IsTerminal(os.Stdout.Fd()) || isatty.IsCygwinTerminal(os.Stdout.Fd())
}

// formatBold returns the string formatted as bold using pterm
func formatBold(s string) string {
	if !isTerminal() {
		return s
	}
	return pterm.Bold.Sprint(s)
}

// formatBoldUpper returns the string in uppercase and bold
func formatBoldUpper(s string) string {
	return formatBold(strings.ToUpper(s))
}

// formatChoices lists the --format values as "a, b or c"
func formatChoices() string {
	names := make([]string, 0, len(ui.Formats()))
	for _, f := range ui.Formats() {
		names = append(names, f.String())
	}
	last := len(names) - 1
	return strings.Join(names[:last], ", ") + " or " + names[last]
}

// formatLegend explains the markers the terminal report puts before each path
func formatLegend() string {
	var lines []string
	for _, c := range style.Categories() {
		marker := style.Indicator(c)
		if isTerminal() {
			marker = style.GetCategoryStyle(c).Render(marker)
		}
		lines = append(lines, "  "+marker+" "+strings.ToLower(style.Title(c)))
	}
	return strings.Join(lines, "\n")
}

// initTemplateFormatting adds custom formatting functions to Cobra templates
func initTemplateFormatting() {
	cobra.AddTemplateFuncs(template.FuncMap{
		"bold":      formatBold,
		"boldUpper": formatBoldUpper,
		"formats":   formatChoices,
		"legend":    formatLegend,
	})
}
