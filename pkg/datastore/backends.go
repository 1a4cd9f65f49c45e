package datastore

import (
	"path/filepath"
	"strings"

	"github.com/arthur-debert/stowaway/pkg/registry"
	"github.com/spf13/afero"
)

// BackendConfig is what a backend may need to open the store of one destination
type BackendConfig struct {
	// MetadataDir is the directory name the dir backend uses inside the destination
	MetadataDir string
	// BadgerPath is the database directory of the badger backend
	BadgerPath string
	// BackupRoot is where the badger backend keeps backups, one subdirectory per destination
	BackupRoot string
}

// Opener opens the store of destDir. The returned func releases it.
type Opener func(fs afero.Fs, cfg BackendConfig, destDir string) (DataStore, func() error, error)

var backends = registry.New[Opener]("store backend")

func init() {
	registry.MustRegister(backends, "dir", openDir)
	registry.MustRegister(backends, "badger", openBadgerBackend)
}

// RegisterBackend makes another store backend available to Open
func RegisterBackend(name string, open Opener) error {
	return backends.Register(name, open)
}

// Backends lists the registered backend names
func Backends() []string {
	return backends.Names()
}

// Open opens the store of destDir with the named backend
func Open(backend string, fs afero.Fs, cfg BackendConfig, destDir string) (DataStore, func() error, error) {
	open, err := backends.Get(backend)
	if err != nil {
		return nil, nil, err
	}
	return open(fs, cfg, destDir)
}

func openDir(fs afero.Fs, cfg BackendConfig, destDir string) (DataStore, func() error, error) {
	return NewDirStore(fs, destDir, cfg.MetadataDir), func() error { return nil }, nil
}

func openBadgerBackend(fs afero.Fs, cfg BackendConfig, destDir string) (DataStore, func() error, error) {
	db, err := OpenBadger(BadgerConfig{Path: cfg.BadgerPath, SyncWrites: true})
	if err != nil {
		return nil, nil, err
	}
	return NewBadgerStore(db, fs, destDir, filepath.Join(cfg.BackupRoot, BackupDirFor(destDir))), db.Close, nil
}

// unsafeChars escapes separators as "_" plus their hex code. "_" is escaped
// too, so the mapping is reversible and destinations never share a name.
var unsafeChars = strings.NewReplacer("_", "_5f", "/", "_2f", "\\", "_5c", ":", "_3a")

// BackupDirFor names the per-destination directory under a shared backup root
func BackupDirFor(destDir string) string {
	clean := strings.TrimLeft(filepath.ToSlash(filepath.Clean(destDir)), "/")
	if clean == "" || clean == "." {
		return "_root"
	}
	return unsafeChars.Replace(clean)
}
