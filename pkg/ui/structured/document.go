package structured

import (
	"github.com/arthur-debert/stowaway/pkg/errors"
	"github.com/arthur-debert/stowaway/pkg/internal/hashutil"
	"github.com/arthur-debert/stowaway/pkg/types"
)

// DeployDocument is the structured form of a deploy result
type DeployDocument struct {
	Command     string                 `json:"command" yaml:"command"`
	Destination string                 `json:"destination" yaml:"destination"`
	Deployment  types.DeploymentRecord `json:"deployment" yaml:"deployment"`
	// Kind is "initial" or "update"
	Kind   string `json:"kind" yaml:"kind"`
	DryRun bool   `json:"dry_run" yaml:"dry_run"`
	// Changed is set when any file was added, changed or deleted
	Changed bool `json:"changed" yaml:"changed"`
	// OK is false when the report carries errors
	OK     bool         `json:"ok" yaml:"ok"`
	Report types.Report `json:"report" yaml:"report"`
}

// StatusDocument is the structured form of a destination status
type StatusDocument struct {
	Command     string                  `json:"command" yaml:"command"`
	Destination string                  `json:"destination" yaml:"destination"`
	Managed     bool                    `json:"managed" yaml:"managed"`
	Clean       bool                    `json:"clean" yaml:"clean"`
	Current     *types.DeploymentRecord `json:"current,omitempty" yaml:"current,omitempty"`
	Previous    *types.DeploymentRecord `json:"previous,omitempty" yaml:"previous,omitempty"`
	Tracked     int                     `json:"tracked" yaml:"tracked"`
	Drift       []types.Drift           `json:"drift" yaml:"drift"`
}

// ErrorDocument is the structured form of a failed command
type ErrorDocument struct {
	Error   string                 `json:"error" yaml:"error"`
	Code    errors.ErrorCode       `json:"code" yaml:"code"`
	Details map[string]interface{} `json:"details,omitempty" yaml:"details,omitempty"`
}

// NewDeployDocument builds the document for result. Realized content is
// replaced by its fingerprint since it may carry token values.
func NewDeployDocument(result *types.DeployResult) DeployDocument {
	report := result.Report
	if len(report.Realized) > 0 {
		realized := make([]types.PathValue, 0, len(report.Realized))
		for _, pv := range report.Realized {
			realized = append(realized, types.PathValue{Path: pv.Path, Value: hashutil.DigestBytes([]byte(pv.Value))})
		}
		report.Realized = realized
	}

	kind := "update"
	if result.Initial {
		kind = "initial"
	}
	s := report.Summary
	return DeployDocument{
		Command:     "deploy",
		Destination: result.Destination,
		Deployment:  result.Deployment,
		Kind:        kind,
		DryRun:      result.DryRun,
		Changed:     s.Added+s.Changed+s.Deleted > 0,
		OK:          s.Errors == 0,
		Report:      report,
	}
}

// NewStatusDocument builds the document for status. Drift is always a
// list, empty when the destination is clean.
func NewStatusDocument(status *types.DestinationStatus) StatusDocument {
	drift := status.Drift
	if drift == nil {
		drift = []types.Drift{}
	}
	return StatusDocument{
		Command:     "status",
		Destination: status.Destination,
		Managed:     status.Managed,
		Clean:       status.Clean(),
		Current:     status.Current,
		Previous:    status.Previous,
		Tracked:     status.Tracked,
		Drift:       drift,
	}
}

// NewErrorDocument builds the document for err, keeping its code and details
func NewErrorDocument(err error) ErrorDocument {
	return ErrorDocument{
		Error:   err.Error(),
		Code:    errors.GetErrorCode(err),
		Details: errors.GetErrorDetails(err),
	}
}
