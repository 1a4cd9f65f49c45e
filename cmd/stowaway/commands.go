package stowaway

import (
	"fmt"

	"github.com/arthur-debert/stowaway/internal/version"
	"github.com/arthur-debert/stowaway/pkg/commands"
	"github.com/arthur-debert/stowaway/pkg/config"
	"github.com/arthur-debert/stowaway/pkg/filesystem"
	"github.com/arthur-debert/stowaway/pkg/logging"
	"github.com/arthur-debert/stowaway/pkg/ui"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
)

// loadConfig merges configuration sources and applies the configured
// verbosity when no -v flag was given.
func loadConfig(opts *globalOptions, descriptor string) (*config.Config, *config.Descriptor, error) {
	cfg, desc, err := config.Load(config.LoadOptions{
		UserConfig: opts.configPath,
		Descriptor: descriptor,
	})
	if err != nil {
		return nil, nil, err
	}
	if opts.verbosity == 0 && cfg.Logging.Verbosity > 0 {
		logging.SetupLogger(cfg.Logging.Verbosity)
	}
	return cfg, desc, nil
}

// output is the renderer chosen for one command run
type output struct {
	ui.Renderer
	format ui.Format
}

// newOutput picks the --format flag over the configured output format
func newOutput(cmd *cobra.Command, opts *globalOptions, cfg *config.Config) (*output, error) {
	name := opts.format
	if name == "" {
		name = cfg.Output.Format
	}
	format, err := ui.ParseFormat(name)
	if err != nil {
		return nil, err
	}
	format = format.Resolve(cmd.OutOrStdout())
	renderer, err := ui.NewRenderer(format, cmd.OutOrStdout())
	if err != nil {
		return nil, err
	}
	return &output{Renderer: renderer, format: format}, nil
}

// fail also writes err as a document when a script reads stdout.
// Human formats leave the error to main.
func (o *output) fail(err error) error {
	if o.format.Structured() {
		if renderErr := o.RenderError(err); renderErr != nil {
			log.Warn().Err(renderErr).Msg("Failed to render error document")
		}
	}
	return err
}

func newDeployCmd(opts *globalOptions) *cobra.Command {
	var (
		dryRun         bool
		restoreBackups bool
	)

	cmd := &cobra.Command{
		Use:     "deploy <descriptor>",
		Short:   MsgDeployShort,
		Long:    MsgDeployLong,
		Example: MsgDeployExample,
		GroupID: "core",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			done := logging.LogOperationStart(log.Logger, "deploy")
			defer done()

			cfg, desc, err := loadConfig(opts, args[0])
			if err != nil {
				return err
			}
			out, err := newOutput(cmd, opts, cfg)
			if err != nil {
				return err
			}

			log.Info().
				Str("descriptor", args[0]).
				Str("dest", desc.Destination).
				Bool("dry_run", dryRun).
				Msg("Deploying bundle")

			result, err := commands.Deploy(commands.DeployOptions{
				Fs:             filesystem.NewOS(),
				Config:         cfg,
				Descriptor:     desc,
				DryRun:         dryRun,
				RestoreBackups: restoreBackups,
			})
			if err != nil {
				return out.fail(err)
			}

			if err := out.RenderDeploy(result); err != nil {
				return err
			}
			if n := result.Report.Summary.Errors; n > 0 {
				return fmt.Errorf(MsgErrReportErrors, n)
			}
			return nil
		},
	}

	cmd.Flags().BoolVarP(&dryRun, "dry-run", "n", false, MsgFlagDryRun)
	cmd.Flags().BoolVar(&restoreBackups, "restore-backups", false, MsgFlagRestoreBackups)
	return cmd
}

func newStatusCmd(opts *globalOptions) *cobra.Command {
	var dest string

	cmd := &cobra.Command{
		Use:     "status [descriptor]",
		Short:   MsgStatusShort,
		Long:    MsgStatusLong,
		Example: MsgStatusExample,
		GroupID: "core",
		Args:    cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var descriptor string
			if len(args) == 1 {
				descriptor = args[0]
			}
			if descriptor == "" && dest == "" {
				return fmt.Errorf(MsgErrNoDestination)
			}

			cfg, desc, err := loadConfig(opts, descriptor)
			if err != nil {
				return err
			}
			out, err := newOutput(cmd, opts, cfg)
			if err != nil {
				return err
			}

			statusOpts := commands.StatusOptions{
				Fs:          filesystem.NewOS(),
				Config:      cfg,
				Destination: dest,
			}
			if desc != nil {
				if statusOpts.Destination == "" {
					statusOpts.Destination = desc.Destination
				}
				statusOpts.Ignore = desc.Ignore
			}

			result, err := commands.Status(statusOpts)
			if err != nil {
				return out.fail(err)
			}
			return out.RenderStatus(result)
		},
	}

	cmd.Flags().StringVarP(&dest, "dest", "d", "", MsgFlagDest)
	return cmd
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:     "version",
		Short:   MsgVersionShort,
		GroupID: "misc",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			_, err := fmt.Fprintf(cmd.OutOrStdout(), MsgVersionFormat, version.Version, version.Commit, version.Date)
			return err
		},
	}
}
