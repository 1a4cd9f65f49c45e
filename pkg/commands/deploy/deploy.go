package deploy

import (
	"github.com/arthur-debert/stowaway/pkg/commands/internal"
	"github.com/arthur-debert/stowaway/pkg/config"
	"github.com/arthur-debert/stowaway/pkg/deployer"
	"github.com/arthur-debert/stowaway/pkg/errors"
	"github.com/arthur-debert/stowaway/pkg/logging"
	"github.com/arthur-debert/stowaway/pkg/template"
	"github.com/arthur-debert/stowaway/pkg/types"
	"github.com/spf13/afero"
)

// DeployOptions defines the options for the Deploy command.
type DeployOptions struct {
	// Fs holds both the bundle files and the destination
	Fs         afero.Fs
	Config     *config.Config
	Descriptor *config.Descriptor
	// DryRun computes the report without touching the destination or the store
	DryRun bool
	// RestoreBackups puts back files the previous deployment had backed up
	RestoreBackups bool
}

// Deploy deploys the descriptor's bundle onto its destination.
func Deploy(opts DeployOptions) (*types.DeployResult, error) {
	log := logging.GetLogger("core.commands")
	log.Debug().Str("command", "Deploy").Msg("Executing command")

	if opts.Fs == nil || opts.Config == nil || opts.Descriptor == nil {
		return nil, errors.New(errors.ErrInvalidInput, "deploy needs a filesystem, a config and a descriptor")
	}
	desc := opts.Descriptor

	store, release, err := internal.OpenStore(opts.Fs, opts.Config.Store, desc.Destination)
	if err != nil {
		return nil, err
	}
	defer func() {
		if cerr := release(); cerr != nil {
			log.Warn().Err(cerr).Msg("Failed to close store")
		}
	}()

	managed, err := store.IsManaged()
	if err != nil {
		return nil, err
	}

	id := desc.DeploymentID
	if id == 0 {
		if id, err = store.NextDeploymentID(); err != nil {
			return nil, err
		}
	}

	ignore, err := internal.CompileIgnore(desc.Ignore)
	if err != nil {
		return nil, err
	}
	src, err := internal.SourceFrom(desc)
	if err != nil {
		return nil, err
	}

	record := types.DeploymentRecord{
		ID:            id,
		BundleName:    desc.Bundle.Name,
		BundleVersion: desc.Bundle.Version,
		Description:   desc.Bundle.Description,
	}
	d, err := deployer.New(opts.Fs, deployer.DeploymentData{
		Record:      record,
		Destination: desc.Destination,
		Ignore:      ignore,
		Source:      src,
		Engine:      template.New(desc.Tokens),
	}, store)
	if err != nil {
		return nil, err
	}

	diff := types.NewDeployDifferences()
	if opts.RestoreBackups {
		_, err = d.RedeployAndRestore(diff, opts.DryRun)
	} else {
		_, err = d.Deploy(diff, opts.DryRun)
	}
	if err != nil {
		return nil, err
	}

	log.Info().
		Str("command", "Deploy").
		Int("deployment", id).
		Bool("dry_run", opts.DryRun).
		Bool("changes", diff.HasChanges()).
		Msg("Command finished")

	return &types.DeployResult{
		Destination: desc.Destination,
		Deployment:  record,
		DryRun:      opts.DryRun,
		Initial:     !managed,
		Report:      diff.Report(),
	}, nil
}
