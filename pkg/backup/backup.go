// Package backup copies files that a deployment is about to overwrite or
// delete into the deployment's backup area, and restores them on request.
//
// Files inside the destination are kept under BackupDirectory(id) with
// their relative path. Files outside it are kept per filesystem root
// under ExternalBackupDirectory(id, root).
package backup

import (
	"os"
	"path/filepath"
	"sort"

	"github.com/arthur-debert/stowaway/pkg/errors"
	"github.com/arthur-debert/stowaway/pkg/filestate"
	"github.com/arthur-debert/stowaway/pkg/internal/hashutil"
	"github.com/arthur-debert/stowaway/pkg/logging"
	"github.com/arthur-debert/stowaway/pkg/pathkey"
	"github.com/arthur-debert/stowaway/pkg/types"
	"github.com/spf13/afero"
)

// Layout tells the vault where the backups of a deployment live
type Layout interface {
	BackupDirectory(id int) string
	ExternalBackupDirectory(id int, root string) string
	ExternalBackupDirectories(id int) (map[string]string, error)
}

// Vault backs up and restores files of one destination
type Vault struct {
	fs       afero.Fs
	destDir  string
	layout   Layout
	splitter pathkey.RootSplitter
}

// New creates a Vault. A nil splitter selects the running platform's.
func New(fs afero.Fs, destDir string, layout Layout, splitter pathkey.RootSplitter) *Vault {
	if splitter == nil {
		splitter = pathkey.ForPlatform()
	}
	return &Vault{
		fs:       fs,
		destDir:  destDir,
		layout:   layout,
		splitter: splitter,
	}
}

// Location returns where Backup stores key for deployment id
func (v *Vault) Location(key pathkey.Key, id int) (source, location string, err error) {
	if !key.IsAbsolute() {
		if vol := key.Volume(); vol != "" && vol != v.splitter.Volume(v.destDir) {
			return "", "", errors.Newf(errors.ErrCrossRoot, "relative path %s is on %s but the destination is not", key, vol).
				WithDetail("path", key.String()).
				WithDetail("dest", v.destDir)
		}
		rel := key.StripVolume()
		return rel.Under(v.destDir), filepath.Join(v.layout.BackupDirectory(id), rel.OSPath()), nil
	}

	root, rest, ok := v.splitter.Split(key)
	if !ok {
		return "", "", errors.Newf(errors.ErrCrossRoot, "cannot determine the root of %s", key).WithDetail("path", key.String())
	}
	return key.OSPath(), filepath.Join(v.layout.ExternalBackupDirectory(id, root), filepath.FromSlash(rest)), nil
}

// Backup copies key into the backup area of deployment id and records the
// copy in diff. With dryRun nothing is written but the location is still
// computed and recorded.
func (v *Vault) Backup(key pathkey.Key, id int, diff *types.DeployDifferences, dryRun bool) (string, error) {
	logger := logging.GetLogger("backup")

	source, location, err := v.Location(key, id)
	if err != nil {
		return "", err
	}

	if !dryRun {
		if err := v.fs.MkdirAll(filepath.Dir(location), 0755); err != nil {
			return "", errors.Wrap(err, errors.ErrDirCreate, "cannot create backup directory").
				WithDetail("dir", filepath.Dir(location))
		}
		if _, err := hashutil.CopyFile(v.fs, source, location); err != nil {
			return "", errors.Wrap(err, errors.ErrBackup, "cannot back up file").
				WithDetail("path", source).
				WithDetail("backup", location)
		}
	}

	diff.AddBackedUpFile(key, location)
	logger.Debug().
		Str("path", key.String()).
		Str("backup", location).
		Bool("dry_run", dryRun).
		Msg("Backed up file")
	return location, nil
}

// Restore copies every backup of deployment id back to its original
// location, updating target with the restored fingerprints. Under dryRun
// the fingerprint of the backup copy is used and nothing is written.
func (v *Vault) Restore(id int, target *filestate.Map, diff *types.DeployDifferences, dryRun bool) error {
	logger := logging.GetLogger("backup").With().Int("deployment", id).Bool("dry_run", dryRun).Logger()

	restored := 0
	count := func(n int, err error) error {
		restored += n
		return err
	}

	if err := count(v.restoreTree(v.layout.BackupDirectory(id), func(rest string) (pathkey.Key, string) {
		key := pathkey.New(rest)
		return key, key.Under(v.destDir)
	}, target, diff, dryRun)); err != nil {
		return err
	}

	extDirs, err := v.layout.ExternalBackupDirectories(id)
	if err != nil {
		return err
	}
	roots := make([]string, 0, len(extDirs))
	for root := range extDirs {
		roots = append(roots, root)
	}
	sort.Strings(roots)

	for _, root := range roots {
		if err := count(v.restoreTree(extDirs[root], func(rest string) (pathkey.Key, string) {
			p := v.splitter.Join(root, rest)
			return pathkey.New(p), p
		}, target, diff, dryRun)); err != nil {
			return err
		}
	}

	logger.Info().Int("files", restored).Msg("Restored backups")
	return nil
}

// restoreTree walks one backup subtree. locate maps the slash-separated
// path below dir to the restored key and host path.
func (v *Vault) restoreTree(dir string, locate func(rest string) (pathkey.Key, string), target *filestate.Map, diff *types.DeployDifferences, dryRun bool) (int, error) {
	exists, err := afero.DirExists(v.fs, dir)
	if err != nil {
		return 0, errors.Wrap(err, errors.ErrRestore, "cannot read backup directory").WithDetail("dir", dir)
	}
	if !exists {
		return 0, nil
	}

	restored := 0
	err = afero.Walk(v.fs, dir, func(p string, info os.FileInfo, err error) error {
		if err != nil {
			return errors.Wrap(err, errors.ErrRestore, "cannot read backup directory").WithDetail("path", p)
		}
		if info.IsDir() {
			return nil
		}

		rel, err := filepath.Rel(dir, p)
		if err != nil {
			return errors.Wrap(err, errors.ErrInternal, "cannot relativize backup path").WithDetail("path", p)
		}
		key, hostPath := locate(filepath.ToSlash(rel))

		var fingerprint string
		if dryRun {
			fingerprint, err = hashutil.FileDigest(v.fs, p)
			if err != nil {
				return errors.Wrap(err, errors.ErrRestore, "cannot fingerprint backup").WithDetail("path", p)
			}
		} else {
			if err := v.fs.MkdirAll(filepath.Dir(hostPath), 0755); err != nil {
				return errors.Wrap(err, errors.ErrDirCreate, "cannot create restore directory").
					WithDetail("dir", filepath.Dir(hostPath))
			}
			fingerprint, err = hashutil.CopyFile(v.fs, p, hostPath)
			if err != nil {
				return errors.Wrap(err, errors.ErrRestore, "cannot restore file").
					WithDetail("backup", p).
					WithDetail("path", hostPath)
			}
		}

		target.Put(key, fingerprint)
		diff.AddRestoredFile(key, p)
		restored++
		return nil
	})
	return restored, err
}
