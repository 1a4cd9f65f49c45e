package filesystem

import (
	"github.com/spf13/afero"
)

// NewOS returns the host filesystem
func NewOS() afero.Fs {
	return afero.NewOsFs()
}

// NewMemory returns an empty in-memory filesystem
func NewMemory() afero.Fs {
	return afero.NewMemMapFs()
}

// ReadOnly wraps fs so every mutation fails
func ReadOnly(fs afero.Fs) afero.Fs {
	return afero.NewReadOnlyFs(fs)
}

// ForMode returns fs itself, or a read-only view of it when readOnly is set
func ForMode(fs afero.Fs, readOnly bool) afero.Fs {
	if readOnly {
		return ReadOnly(fs)
	}
	return fs
}
