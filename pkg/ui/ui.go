// Package ui presents deploy and status results as a styled terminal
// report, plain text, or a JSON or YAML document.
package ui

import (
	"io"

	"github.com/arthur-debert/stowaway/pkg/errors"
	"github.com/arthur-debert/stowaway/pkg/types"
	"github.com/arthur-debert/stowaway/pkg/ui/structured"
	"github.com/arthur-debert/stowaway/pkg/ui/terminal"
	"github.com/arthur-debert/stowaway/pkg/ui/text"
)

// Renderer presents the outcome of a stowaway command
type Renderer interface {
	// RenderDeploy presents a deploy, dry run or restore
	RenderDeploy(result *types.DeployResult) error

	// RenderStatus presents the recorded deployments and drift of a destination
	RenderStatus(status *types.DestinationStatus) error

	// RenderError presents a failed command
	RenderError(err error) error
}

// NewRenderer creates the renderer for format, resolving FormatAuto against output
func NewRenderer(format Format, output io.Writer) (Renderer, error) {
	switch format.Resolve(output) {
	case FormatTerminal:
		return terminal.New(output), nil
	case FormatText:
		return text.New(output), nil
	case FormatJSON:
		return structured.New(output, structured.JSON), nil
	case FormatYAML:
		return structured.New(output, structured.YAML), nil
	default:
		return nil, errors.Newf(errors.ErrInvalidInput, "unknown output format %q", format)
	}
}
