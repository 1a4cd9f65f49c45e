package status

import (
	"github.com/arthur-debert/stowaway/pkg/commands/internal"
	"github.com/arthur-debert/stowaway/pkg/config"
	"github.com/arthur-debert/stowaway/pkg/errors"
	"github.com/arthur-debert/stowaway/pkg/filesystem"
	"github.com/arthur-debert/stowaway/pkg/logging"
	checker "github.com/arthur-debert/stowaway/pkg/status"
	"github.com/arthur-debert/stowaway/pkg/types"
	"github.com/spf13/afero"
)

// StatusOptions defines the options for the Status command.
type StatusOptions struct {
	Fs     afero.Fs
	Config *config.Config
	// Destination to inspect
	Destination string
	// Ignore is the descriptor's ignore pattern, if any
	Ignore string
}

// Status reports what is recorded for a destination and how it drifted.
// The filesystem is wrapped read-only.
func Status(opts StatusOptions) (*types.DestinationStatus, error) {
	log := logging.GetLogger("core.commands")
	log.Debug().Str("command", "Status").Msg("Executing command")

	if opts.Fs == nil || opts.Config == nil || opts.Destination == "" {
		return nil, errors.New(errors.ErrInvalidInput, "status needs a filesystem, a config and a destination")
	}
	fs := filesystem.ReadOnly(opts.Fs)

	store, release, err := internal.OpenStore(fs, opts.Config.Store, opts.Destination)
	if err != nil {
		return nil, err
	}
	defer func() {
		if cerr := release(); cerr != nil {
			log.Warn().Err(cerr).Msg("Failed to close store")
		}
	}()

	ignore, err := internal.CompileIgnore(opts.Ignore)
	if err != nil {
		return nil, err
	}

	result, err := checker.NewChecker(fs, store, opts.Destination, ignore).Check()
	if err != nil {
		return nil, err
	}

	log.Info().Str("command", "Status").Bool("managed", result.Managed).Int("drift", len(result.Drift)).Msg("Command finished")
	return result, nil
}
