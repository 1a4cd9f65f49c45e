package types

// DeployResult is what a deploy command reports
type DeployResult struct {
	Destination string           `json:"destination" yaml:"destination"`
	Deployment  DeploymentRecord `json:"deployment" yaml:"deployment"`
	DryRun      bool             `json:"dry_run" yaml:"dry_run"`
	// Initial is set when the destination had no prior deployment
	Initial bool   `json:"initial" yaml:"initial"`
	Report  Report `json:"report" yaml:"report"`
}

// DriftState classifies one tracked path against its recorded fingerprint
type DriftState string

const (
	DriftModified DriftState = "modified"
	DriftMissing  DriftState = "missing"
	DriftAdded    DriftState = "added"
	DriftIgnored  DriftState = "ignored"
)

// Drift is one path whose live state differs from the recorded one
type Drift struct {
	Path  string     `json:"path" yaml:"path"`
	State DriftState `json:"state" yaml:"state"`
}

// DestinationStatus describes what is recorded for a destination and how
// the live tree has drifted from it
type DestinationStatus struct {
	Destination string            `json:"destination" yaml:"destination"`
	Managed     bool              `json:"managed" yaml:"managed"`
	Current     *DeploymentRecord `json:"current,omitempty" yaml:"current,omitempty"`
	Previous    *DeploymentRecord `json:"previous,omitempty" yaml:"previous,omitempty"`
	// Tracked counts recorded paths, including those recorded as deleted
	Tracked int     `json:"tracked" yaml:"tracked"`
	Drift   []Drift `json:"drift,omitempty" yaml:"drift,omitempty"`
}

// Clean reports whether the live tree matches the recorded state
func (s *DestinationStatus) Clean() bool {
	return s == nil || len(s.Drift) == 0
}
