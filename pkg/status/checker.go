// Package status inspects a destination against what its store recorded.
package status

import (
	"regexp"
	"sort"

	"github.com/arthur-debert/stowaway/pkg/datastore"
	"github.com/arthur-debert/stowaway/pkg/errors"
	"github.com/arthur-debert/stowaway/pkg/filestate"
	"github.com/arthur-debert/stowaway/pkg/logging"
	"github.com/arthur-debert/stowaway/pkg/types"
	"github.com/spf13/afero"
)

// Checker reports drift of one destination. It never writes.
type Checker struct {
	fs      afero.Fs
	store   datastore.DataStore
	destDir string
	ignore  *regexp.Regexp
}

// NewChecker creates a checker. ignore may be nil.
func NewChecker(fs afero.Fs, store datastore.DataStore, destDir string, ignore *regexp.Regexp) *Checker {
	return &Checker{fs: fs, store: store, destDir: destDir, ignore: ignore}
}

// Check returns the recorded deployments and the drift of the live tree.
// An unmanaged destination is not an error: Managed is false.
func (c *Checker) Check() (*types.DestinationStatus, error) {
	logger := logging.GetLogger("status").With().Str("dest", c.destDir).Logger()
	st := &types.DestinationStatus{Destination: c.destDir}

	managed, err := c.store.IsManaged()
	if err != nil {
		return nil, err
	}
	if !managed {
		logger.Debug().Msg("Destination is not managed")
		return st, nil
	}
	st.Managed = true

	rec, baseline, err := c.store.CurrentDeployment()
	if err != nil {
		return nil, err
	}
	st.Current = &rec
	st.Tracked = baseline.Len()

	if prev, ok, err := c.store.PreviousDeployment(); err != nil {
		return nil, err
	} else if ok {
		st.Previous = &prev
	}

	live := filestate.Rescan(c.fs, baseline, c.destDir, filestate.RescanOptions{
		Ignore: c.ignore,
		Skip:   datastore.MetadataEntries(c.destDir, c.store),
	})
	if live.ScanFailure != nil {
		return nil, errors.Wrap(live.ScanFailure, errors.ErrRescanFailed, "cannot inspect destination").
			WithDetail("dest", c.destDir)
	}

	st.Drift = append(st.Drift, drifts(live.Changes, types.DriftModified)...)
	st.Drift = append(st.Drift, drifts(live.Deletions, types.DriftMissing)...)
	st.Drift = append(st.Drift, drifts(live.Additions, types.DriftAdded)...)
	for _, k := range live.Ignored {
		st.Drift = append(st.Drift, types.Drift{Path: k.String(), State: types.DriftIgnored})
	}
	sort.SliceStable(st.Drift, func(i, j int) bool {
		return st.Drift[i].Path < st.Drift[j].Path
	})

	logger.Debug().Int("tracked", st.Tracked).Int("drift", len(st.Drift)).Msg("Status checked")
	return st, nil
}

func drifts(m *filestate.Map, state types.DriftState) []types.Drift {
	keys := m.Keys()
	out := make([]types.Drift, 0, len(keys))
	for _, k := range keys {
		out = append(out, types.Drift{Path: k.String(), State: state})
	}
	return out
}
