// Package text provides plain text output without any styling
package text

import (
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/arthur-debert/stowaway/pkg/errors"
	"github.com/arthur-debert/stowaway/pkg/style"
	"github.com/arthur-debert/stowaway/pkg/types"
	"github.com/arthur-debert/stowaway/pkg/ui/sections"
)

// Renderer provides plain text output without colors or styling
type Renderer struct {
	output io.Writer
}

// New creates a new text renderer
func New(output io.Writer) *Renderer {
	return &Renderer{output: output}
}

// RenderDeploy prints the deployment header, one section per non-empty
// report category and the summary line
func (r *Renderer) RenderDeploy(result *types.DeployResult) error {
	var b strings.Builder
	writeDeploy(&b, result)
	_, err := io.WriteString(r.output, b.String())
	return err
}

// RenderStatus prints the recorded deployments followed by drift sections
func (r *Renderer) RenderStatus(status *types.DestinationStatus) error {
	var b strings.Builder
	writeStatus(&b, status)
	_, err := io.WriteString(r.output, b.String())
	return err
}

// RenderError prints the error and its details, one per line
func (r *Renderer) RenderError(err error) error {
	var b strings.Builder
	fmt.Fprintf(&b, "Error: %v\n", err)
	details := errors.GetErrorDetails(err)
	keys := make([]string, 0, len(details))
	for k := range details {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		fmt.Fprintf(&b, "  %s: %v\n", k, details[k])
	}
	_, writeErr := io.WriteString(r.output, b.String())
	return writeErr
}

func writeDeploy(b *strings.Builder, v *types.DeployResult) {
	kind := "Update"
	if v.Initial {
		kind = "Initial"
	}
	fmt.Fprintf(b, "%s deployment %s to %s", kind, v.Deployment, v.Destination)
	if v.DryRun {
		b.WriteString(" (dry run)")
	}
	b.WriteString("\n")

	secs := sections.FromReport(v.Report)
	if len(secs) == 0 {
		b.WriteString("No changes.\n")
		return
	}
	writeSections(b, secs, style.Title)
	writeSummary(b, v.Report.Summary)
}

func writeStatus(b *strings.Builder, v *types.DestinationStatus) {
	if !v.Managed {
		fmt.Fprintf(b, "%s is not managed\n", v.Destination)
		return
	}
	fmt.Fprintf(b, "%s\n", v.Destination)
	fmt.Fprintf(b, "  current:  %s\n", v.Current)
	if v.Previous != nil {
		fmt.Fprintf(b, "  previous: %s\n", v.Previous)
	}
	fmt.Fprintf(b, "  tracked:  %d\n", v.Tracked)

	if v.Clean() {
		b.WriteString("No drift.\n")
		return
	}
	writeSections(b, sections.FromDrift(v.Drift), sections.DriftTitle)
}

func writeSections(b *strings.Builder, secs []sections.Section, title func(style.Category) string) {
	for _, s := range secs {
		fmt.Fprintf(b, "%s:\n", title(s.Category))
		for _, e := range s.Entries {
			if e.Detail != "" {
				fmt.Fprintf(b, "  %s (%s)\n", e.Path, e.Detail)
				continue
			}
			fmt.Fprintf(b, "  %s\n", e.Path)
		}
	}
}

func writeSummary(b *strings.Builder, s types.Summary) {
	fmt.Fprintf(b, "%d added, %d changed, %d deleted, %d backed up, %d restored, %d errors\n",
		s.Added, s.Changed, s.Deleted, s.BackedUp, s.Restored, s.Errors)
}
