package deployer

import (
	"fmt"
	"regexp"

	"github.com/arthur-debert/stowaway/pkg/backup"
	"github.com/arthur-debert/stowaway/pkg/datastore"
	"github.com/arthur-debert/stowaway/pkg/errors"
	"github.com/arthur-debert/stowaway/pkg/filestate"
	"github.com/arthur-debert/stowaway/pkg/logging"
	"github.com/arthur-debert/stowaway/pkg/materialize"
	"github.com/arthur-debert/stowaway/pkg/pathkey"
	"github.com/arthur-debert/stowaway/pkg/reconcile"
	"github.com/arthur-debert/stowaway/pkg/template"
	"github.com/arthur-debert/stowaway/pkg/types"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/spf13/afero"
)

// DeploymentData describes one deployment of a bundle
type DeploymentData struct {
	Record      types.DeploymentRecord
	Destination string
	// Ignore excludes relative destination paths from update deployments. nil ignores nothing.
	Ignore *regexp.Regexp
	Source materialize.Source
	// Engine realizes files marked for realization. It may be nil when none are.
	Engine template.Engine
}

// Deployer performs deployments of one bundle onto one destination
type Deployer struct {
	fs           afero.Fs
	data         DeploymentData
	store        datastore.DataStore
	vault        *backup.Vault
	materializer *materialize.Materializer
	logger       zerolog.Logger
}

type options struct {
	sourceFs afero.Fs
	splitter pathkey.RootSplitter
}

// Option configures a Deployer
type Option func(*options)

// WithSourceFs reads bundle content from fs instead of the destination's filesystem
func WithSourceFs(fs afero.Fs) Option {
	return func(o *options) {
		o.sourceFs = fs
	}
}

// WithSplitter overrides the platform's root splitter
func WithSplitter(s pathkey.RootSplitter) Option {
	return func(o *options) {
		o.splitter = s
	}
}

// New creates a Deployer
func New(fs afero.Fs, data DeploymentData, store datastore.DataStore, opts ...Option) (*Deployer, error) {
	if data.Destination == "" {
		return nil, errors.New(errors.ErrInvalidInput, "destination directory is required")
	}
	if err := data.Record.Validate(); err != nil {
		return nil, errors.Wrap(err, errors.ErrInvalidInput, "invalid deployment record")
	}
	if store == nil {
		return nil, errors.New(errors.ErrInvalidInput, "deployment store is required")
	}

	o := options{sourceFs: fs, splitter: pathkey.ForPlatform()}
	for _, opt := range opts {
		opt(&o)
	}

	logger := logging.GetLogger("deployer").With().
		Str("run", uuid.NewString()).
		Str("bundle", data.Record.BundleName).
		Str("version", data.Record.BundleVersion).
		Int("deployment", data.Record.ID).
		Logger()

	return &Deployer{
		fs:           fs,
		data:         data,
		store:        store,
		vault:        backup.New(fs, data.Destination, store, o.splitter),
		materializer: materialize.New(fs, data.Destination, data.Engine, materialize.WithSourceFs(o.sourceFs)),
		logger:       logger,
	}, nil
}

// Deploy deploys the bundle and returns the resulting file state map.
// diff may be nil.
func (d *Deployer) Deploy(diff *types.DeployDifferences, dryRun bool) (*filestate.Map, error) {
	managed, err := d.store.IsManaged()
	if err != nil {
		return nil, err
	}
	if !managed {
		return d.initialDeployment(diff, dryRun)
	}
	return d.updateDeployment(diff, dryRun)
}

// DryRun reports what Deploy would do without changing anything
func (d *Deployer) DryRun(diff *types.DeployDifferences) (*filestate.Map, error) {
	return d.Deploy(diff, true)
}

// RedeployAndRestore deploys the bundle and then puts back every file the
// previously current deployment backed up, overlaying local edits onto the
// freshly deployed content.
func (d *Deployer) RedeployAndRestore(diff *types.DeployDifferences, dryRun bool) (*filestate.Map, error) {
	managed, err := d.store.IsManaged()
	if err != nil {
		return nil, err
	}
	if !managed {
		return d.initialDeployment(diff, dryRun)
	}

	if diff == nil {
		diff = types.NewDeployDifferences()
	}

	previous, _, err := d.store.CurrentDeployment()
	if err != nil {
		return nil, err
	}

	result, err := d.updateDeployment(diff, dryRun)
	if err != nil {
		return nil, err
	}

	d.logger.Info().Int("from", previous.ID).Msg("Restoring backup files")
	if err := d.vault.Restore(previous.ID, result, diff, dryRun); err != nil {
		return nil, err
	}

	if !dryRun && len(diff.RestoredFiles()) > 0 {
		if err := d.store.SetCurrentDeployment(d.data.Record, result, false); err != nil {
			return nil, err
		}
	}
	return result, nil
}

func (d *Deployer) initialDeployment(diff *types.DeployDifferences, dryRun bool) (*filestate.Map, error) {
	d.logger.Info().Bool("dry_run", dryRun).Str("dest", d.data.Destination).Msg("Initial deployment")

	result, err := d.materializer.Materialize(d.data.Source, materialize.Mode{Commit: !dryRun}, nil, diff)
	if err != nil {
		return nil, err
	}
	diff.AddAddedFiles(result.Keys())

	if err := d.persist(result, dryRun); err != nil {
		return nil, err
	}

	d.logger.Info().Int("files", result.Len()).Bool("dry_run", dryRun).Msg("Initial deployment finished")
	return result, nil
}

func (d *Deployer) updateDeployment(diff *types.DeployDifferences, dryRun bool) (*filestate.Map, error) {
	d.logger.Info().Bool("dry_run", dryRun).Str("dest", d.data.Destination).Msg("Update deployment")

	_, original, err := d.store.CurrentDeployment()
	if err != nil {
		return nil, err
	}

	current := filestate.Rescan(d.fs, original, d.data.Destination, filestate.RescanOptions{
		Ignore: d.data.Ignore,
		Skip:   datastore.MetadataEntries(d.data.Destination, d.store),
	})
	if current.ScanFailure != nil {
		return nil, errors.Wrap(current.ScanFailure, errors.ErrRescanFailed, "failed to rescan the current deployment").
			WithDetail("dest", d.data.Destination)
	}

	newFiles, err := d.materializer.Prospective(d.data.Source)
	if err != nil {
		return nil, err
	}

	plan := reconcile.Reconcile(original, current, newFiles, reconcile.Options{
		Ignore: d.data.Ignore,
		Exists: d.exists,
	}, diff)

	for _, k := range plan.ToBackup {
		if _, err := d.vault.Backup(k, d.data.Record.ID, diff, dryRun); err != nil {
			return nil, err
		}
	}

	for _, k := range plan.ToDelete {
		d.delete(k, diff, dryRun)
	}

	skip := make(map[pathkey.Key]bool, len(plan.ToSkip))
	for _, k := range plan.ToSkip {
		skip[k] = true
	}
	result, err := d.materializer.Materialize(d.data.Source, materialize.Mode{Commit: !dryRun, Skip: skip}, plan.ToLeaveAlone, diff)
	if err != nil {
		return nil, err
	}

	if err := d.persist(result, dryRun); err != nil {
		return nil, err
	}

	d.logger.Info().
		Int("files", result.Len()).
		Int("backed_up", len(plan.ToBackup)).
		Int("deleted", len(plan.ToDelete)).
		Int("left_alone", plan.ToLeaveAlone.Len()).
		Bool("dry_run", dryRun).
		Msg("Update deployment finished")
	return result, nil
}

// delete removes an obsolete file. Failures are reported in diff, never returned.
func (d *Deployer) delete(k pathkey.Key, diff *types.DeployDifferences, dryRun bool) {
	target := k.Under(d.data.Destination)
	if dryRun {
		d.logger.Debug().Str("path", target).Msg("Would delete obsolete file")
		return
	}
	if err := d.fs.Remove(target); err != nil {
		d.logger.Warn().Err(err).Str("path", target).Msg("Failed to delete obsolete file")
		diff.AddError(k, fmt.Sprintf("File [%s] did not delete: %v", target, err))
		return
	}
	d.logger.Debug().Str("path", target).Msg("Deleted obsolete file")
}

func (d *Deployer) persist(result *filestate.Map, dryRun bool) error {
	if dryRun {
		return nil
	}
	return d.store.SetCurrentDeployment(d.data.Record, result, true)
}

func (d *Deployer) exists(k pathkey.Key) bool {
	found, err := afero.Exists(d.fs, k.OSPath())
	return err == nil && found
}
