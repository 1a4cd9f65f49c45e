package internal

import (
	"regexp"

	"github.com/arthur-debert/stowaway/pkg/config"
	"github.com/arthur-debert/stowaway/pkg/datastore"
	"github.com/arthur-debert/stowaway/pkg/errors"
	"github.com/arthur-debert/stowaway/pkg/logging"
	"github.com/arthur-debert/stowaway/pkg/materialize"
	"github.com/spf13/afero"
)

// OpenStore returns the store configured for destDir and a func that
// releases it. An empty backend selects the dir backend.
func OpenStore(fs afero.Fs, cfg config.StoreConfig, destDir string) (datastore.DataStore, func() error, error) {
	backend := cfg.Backend
	if backend == "" {
		backend = "dir"
	}
	logger := logging.GetLogger("commands.store")
	logger.Debug().
		Str("dest", destDir).
		Str("backend", backend).
		Msg("Opening store")

	return datastore.Open(backend, fs, datastore.BackendConfig{
		MetadataDir: cfg.MetadataDir,
		BadgerPath:  cfg.BadgerPath,
		BackupRoot:  cfg.BackupRoot,
	}, destDir)
}

// CompileIgnore compiles a descriptor ignore pattern. Empty means nil.
func CompileIgnore(pattern string) (*regexp.Regexp, error) {
	if pattern == "" {
		return nil, nil
	}
	re, err := regexp.Compile(pattern)
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrConfigValid, "invalid ignore pattern").WithDetail("pattern", pattern)
	}
	return re, nil
}

// SourceFrom converts the descriptor's files into a materialization source
func SourceFrom(desc *config.Descriptor) (materialize.Source, error) {
	var src materialize.Source
	for _, a := range desc.Archives {
		archive := materialize.Archive{Path: a.Path}
		if a.Realize != "" {
			re, err := regexp.Compile(a.Realize)
			if err != nil {
				return src, errors.Wrap(err, errors.ErrConfigValid, "invalid realize pattern").
					WithDetail("archive", a.Path).WithDetail("pattern", a.Realize)
			}
			archive.Realize = re
		}
		src.Archives = append(src.Archives, archive)
	}
	for _, r := range desc.RawFiles {
		src.RawFiles = append(src.RawFiles, materialize.RawFile{
			Source:      r.Source,
			Destination: r.Destination,
			Realize:     r.Realize,
		})
	}
	return src, nil
}
