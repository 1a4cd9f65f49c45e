package config

// Config holds the settings that are not specific to one deployment
type Config struct {
	Store   StoreConfig   `koanf:"store"`
	Logging LoggingConfig `koanf:"logging"`
	Output  OutputConfig  `koanf:"output"`
}

// StoreConfig selects and configures the metadata store
type StoreConfig struct {
	Backend     string `koanf:"backend" validate:"oneof=dir badger"`
	MetadataDir string `koanf:"metadata_dir" validate:"required,excludesall=/\\"`
	BadgerPath  string `koanf:"badger_path"`
	BackupRoot  string `koanf:"backup_root"`
}

// LoggingConfig controls log output
type LoggingConfig struct {
	Verbosity int `koanf:"verbosity" validate:"gte=0,lte=3"`
}

// OutputConfig controls how reports are rendered
type OutputConfig struct {
	Format string `koanf:"format" validate:"oneof=auto text terminal json yaml"`
}

// Descriptor describes one deployment of a bundle
type Descriptor struct {
	Destination string           `koanf:"destination" validate:"required"`
	Bundle      BundleDescriptor `koanf:"bundle"`

	// Ignore is a regular expression over slash-separated destination paths
	Ignore string `koanf:"ignore" validate:"omitempty,regexp"`

	// DeploymentID of 0 lets the store pick the next id
	DeploymentID int `koanf:"deployment_id" validate:"gte=0"`

	Archives []ArchiveDescriptor `koanf:"archives" validate:"dive"`
	RawFiles []RawFileDescriptor `koanf:"raw_files" validate:"dive"`
	Tokens   map[string]string   `koanf:"tokens"`
}

// BundleDescriptor names the bundle being deployed
type BundleDescriptor struct {
	Name        string `koanf:"name" validate:"required"`
	Version     string `koanf:"version" validate:"required"`
	Description string `koanf:"description"`
}

// ArchiveDescriptor is a zip file to extract
type ArchiveDescriptor struct {
	Path    string `koanf:"path" validate:"required"`
	Realize string `koanf:"realize" validate:"omitempty,regexp"`
}

// RawFileDescriptor is a single file to copy
type RawFileDescriptor struct {
	Source      string `koanf:"source" validate:"required"`
	Destination string `koanf:"destination" validate:"required"`
	Realize     bool   `koanf:"realize"`
}

// NeedsEngine reports whether any file asks for realization
func (d *Descriptor) NeedsEngine() bool {
	for _, a := range d.Archives {
		if a.Realize != "" {
			return true
		}
	}
	for _, r := range d.RawFiles {
		if r.Realize {
			return true
		}
	}
	return false
}
