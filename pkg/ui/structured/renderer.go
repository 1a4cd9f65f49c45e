// Package structured renders results as JSON or YAML documents for scripts
package structured

import (
	"encoding/json"
	"io"

	"github.com/arthur-debert/stowaway/pkg/types"
	"gopkg.in/yaml.v3"
)

// Encoding selects the document syntax
type Encoding int

const (
	JSON Encoding = iota
	YAML
)

// Renderer writes one document per result
type Renderer struct {
	output   io.Writer
	encoding Encoding
}

// New creates a renderer writing documents to output
func New(output io.Writer, encoding Encoding) *Renderer {
	return &Renderer{output: output, encoding: encoding}
}

// RenderDeploy writes a DeployDocument
func (r *Renderer) RenderDeploy(result *types.DeployResult) error {
	return r.encode(NewDeployDocument(result))
}

// RenderStatus writes a StatusDocument
func (r *Renderer) RenderStatus(status *types.DestinationStatus) error {
	return r.encode(NewStatusDocument(status))
}

// RenderError writes an ErrorDocument
func (r *Renderer) RenderError(err error) error {
	return r.encode(NewErrorDocument(err))
}

func (r *Renderer) encode(v interface{}) error {
	if r.encoding == YAML {
		enc := yaml.NewEncoder(r.output)
		enc.SetIndent(2)
		if err := enc.Encode(v); err != nil {
			return err
		}
		return enc.Close()
	}

	enc := json.NewEncoder(r.output)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
