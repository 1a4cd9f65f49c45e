package datastore

import (
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/arthur-debert/stowaway/pkg/errors"
	"github.com/arthur-debert/stowaway/pkg/filestate"
	"github.com/arthur-debert/stowaway/pkg/pathkey"
	"github.com/arthur-debert/stowaway/pkg/types"
	"github.com/spf13/afero"
)

// DataStore manages the deployment metadata of one destination
type DataStore interface {
	// IsManaged reports whether a deployment was ever recorded
	IsManaged() (bool, error)

	// CurrentDeployment returns the live record and its file state map
	CurrentDeployment() (types.DeploymentRecord, *filestate.Map, error)

	// SetCurrentDeployment persists m for rec. With isInitial, rec becomes
	// the current deployment and the old current one becomes previous.
	// Otherwise rec must already be current and only its map is replaced.
	SetCurrentDeployment(rec types.DeploymentRecord, m *filestate.Map, isInitial bool) error

	// PreviousDeployment returns the record that was current before the current one
	PreviousDeployment() (types.DeploymentRecord, bool, error)

	// NextDeploymentID returns an id no recorded deployment uses
	NextDeploymentID() (int, error)

	BackupDirectory(id int) string
	ExternalBackupDirectory(id int, root string) string
	ExternalBackupDirectories(id int) (map[string]string, error)

	// MetadataDir is where the store writes on disk
	MetadataDir() string
}

const (
	// DefaultMetadataDir is the directory name the directory store uses inside a destination
	DefaultMetadataDir = ".stowaway"

	backupDirName    = "backup"
	extBackupDirName = "ext-backup"
)

// backupLayout places backups under base/<id>/
type backupLayout struct {
	fs   afero.Fs
	base string
}

func (l backupLayout) deploymentDir(id int) string {
	return filepath.Join(l.base, strconv.Itoa(id))
}

func (l backupLayout) BackupDirectory(id int) string {
	return filepath.Join(l.deploymentDir(id), backupDirName)
}

func (l backupLayout) ExternalBackupDirectory(id int, root string) string {
	return filepath.Join(l.deploymentDir(id), extBackupDirName, pathkey.BackupRootName(root))
}

func (l backupLayout) ExternalBackupDirectories(id int) (map[string]string, error) {
	dir := filepath.Join(l.deploymentDir(id), extBackupDirName)
	entries, err := afero.ReadDir(l.fs, dir)
	if os.IsNotExist(err) {
		return map[string]string{}, nil
	}
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrStore, "cannot list external backups").WithDetail("dir", dir)
	}

	out := make(map[string]string, len(entries))
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}
		root, ok := pathkey.RootFromBackupName(entry.Name())
		if !ok {
			continue
		}
		out[root] = filepath.Join(dir, entry.Name())
	}
	return out, nil
}

// highestID returns the largest numeric directory name under base, or 0
func (l backupLayout) highestID() (int, error) {
	entries, err := afero.ReadDir(l.fs, l.base)
	if os.IsNotExist(err) {
		return 0, nil
	}
	if err != nil {
		return 0, errors.Wrap(err, errors.ErrStore, "cannot list deployments").WithDetail("dir", l.base)
	}

	highest := 0
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}
		if id, err := strconv.Atoi(entry.Name()); err == nil && id > highest {
			highest = id
		}
	}
	return highest, nil
}

func validateRecord(rec types.DeploymentRecord) error {
	if err := rec.Validate(); err != nil {
		return errors.Wrap(err, errors.ErrInvalidInput, "invalid deployment record").WithDetail("deployment", rec.ID)
	}
	return nil
}

// MetadataEntries returns the top-level entry of destDir that holds the
// store's metadata, if the store keeps it inside destDir. Scans skip it.
func MetadataEntries(destDir string, s DataStore) []string {
	rel, err := filepath.Rel(destDir, s.MetadataDir())
	if err != nil || rel == "." || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return nil
	}
	top, _, _ := strings.Cut(filepath.ToSlash(rel), "/")
	return []string{top}
}
