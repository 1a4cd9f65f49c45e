package types

import "fmt"

// DeploymentRecord identifies one deployment generation of a bundle onto a
// destination. IDs increase monotonically per destination and name the
// backup subdirectory that pre-overwrite copies are stored under.
type DeploymentRecord struct {
	ID            int    `toml:"id" json:"id" yaml:"id"`
	BundleName    string `toml:"bundle_name" json:"bundle_name" yaml:"bundle_name"`
	BundleVersion string `toml:"bundle_version" json:"bundle_version" yaml:"bundle_version"`
	Description   string `toml:"description,omitempty" json:"description,omitempty" yaml:"description,omitempty"`
}

// String renders the record the way it shows up in logs
func (r DeploymentRecord) String() string {
	return fmt.Sprintf("%s v%s (deployment %d)", r.BundleName, r.BundleVersion, r.ID)
}

// Validate checks the fields every deployment needs
func (r DeploymentRecord) Validate() error {
	if r.ID < 1 {
		return fmt.Errorf("deployment id must be positive, got %d", r.ID)
	}
	if r.BundleName == "" {
		return fmt.Errorf("bundle name is required")
	}
	if r.BundleVersion == "" {
		return fmt.Errorf("bundle version is required")
	}
	return nil
}
