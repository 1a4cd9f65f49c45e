package filestate

import (
	"os"
	"path/filepath"
	"regexp"

	"github.com/arthur-debert/stowaway/pkg/errors"
	"github.com/arthur-debert/stowaway/pkg/internal/hashutil"
	"github.com/arthur-debert/stowaway/pkg/logging"
	"github.com/arthur-debert/stowaway/pkg/pathkey"
	"github.com/spf13/afero"
)

// RescanResult is the live state of a destination compared with a baseline.
// The embedded Map holds every non-ignored baseline path (with its live
// fingerprint, or Deleted) followed by every addition.
type RescanResult struct {
	*Map

	// Additions are live paths with no baseline fingerprint
	Additions *Map
	// Changes are live paths whose fingerprint differs from the baseline
	Changes *Map
	// Deletions are baseline paths missing from disk, valued Deleted
	Deletions *Map
	// Ignored are live paths matching the ignore pattern
	Ignored []pathkey.Key

	// ScanFailure is set when the live tree could not be read completely.
	// A failed result must not be reconciled.
	ScanFailure error
}

// RescanOptions tune a rescan
type RescanOptions struct {
	// Ignore is matched against slash-separated relative paths. nil ignores nothing.
	Ignore *regexp.Regexp
	// Skip lists top-level directory names that are never scanned
	Skip []string
}

// NewRescanResult creates an empty result. Rescan is the usual way to obtain one.
func NewRescanResult() *RescanResult {
	return &RescanResult{
		Map:       NewMap(),
		Additions: NewMap(),
		Changes:   NewMap(),
		Deletions: NewMap(),
	}
}

// IsIgnored reports whether k was excluded by the ignore pattern
func (r *RescanResult) IsIgnored(k pathkey.Key) bool {
	for _, ignored := range r.Ignored {
		if ignored == k {
			return true
		}
	}
	return false
}

// Rescan walks destDir and the baseline's absolute paths and classifies
// every path against baseline.
func Rescan(fs afero.Fs, baseline *Map, destDir string, opts RescanOptions) *RescanResult {
	logger := logging.GetLogger("filestate.rescan")
	result := NewRescanResult()

	skip := make(map[string]bool, len(opts.Skip))
	for _, name := range opts.Skip {
		skip[name] = true
	}

	isIgnored := func(k pathkey.Key) bool {
		return opts.Ignore != nil && !k.IsAbsolute() && opts.Ignore.MatchString(k.String())
	}

	live := make(map[pathkey.Key]string)
	var walked []pathkey.Key

	walk := func(p string, info os.FileInfo, err error) error {
		if err != nil {
			return errors.Wrap(err, errors.ErrFileAccess, "cannot read live tree").WithDetail("path", p)
		}
		if p == destDir {
			return nil
		}

		key, relErr := pathkey.FromRelative(destDir, p)
		if relErr != nil {
			return errors.Wrap(relErr, errors.ErrInternal, "cannot relativize live path").WithDetail("path", p)
		}

		if info.IsDir() {
			if skip[key.String()] {
				return filepath.SkipDir
			}
			return nil
		}
		if !info.Mode().IsRegular() {
			logger.Trace().Str("path", p).Msg("Skipping non-regular file")
			return nil
		}

		// the same file deployed through its absolute path belongs to that key
		if baseline.Has(pathkey.New(p)) {
			logger.Trace().Str("path", p).Msg("Skipping path tracked by its absolute key")
			return nil
		}
		if isIgnored(key) {
			result.Ignored = append(result.Ignored, key)
			return nil
		}

		fingerprint, digestErr := hashutil.FileDigest(fs, p)
		if digestErr != nil {
			return errors.Wrap(digestErr, errors.ErrFileAccess, "cannot fingerprint live file").WithDetail("path", p)
		}
		live[key] = fingerprint
		walked = append(walked, key)
		return nil
	}

	var err error
	if _, statErr := fs.Stat(destDir); os.IsNotExist(statErr) {
		logger.Warn().Str("dest", destDir).Msg("Destination does not exist, scanning it as empty")
	} else {
		err = afero.Walk(fs, destDir, walk)
	}
	if err != nil {
		result.ScanFailure = err
		logger.Error().Err(err).Str("dest", destDir).Msg("Rescan did not complete")
		return result
	}

	for _, k := range baseline.Keys() {
		original, _ := baseline.Get(k)

		var fingerprint string
		var exists bool
		if k.IsAbsolute() {
			fp, found, statErr := digestIfExists(fs, k.OSPath())
			if statErr != nil {
				result.ScanFailure = errors.Wrap(statErr, errors.ErrFileAccess, "cannot fingerprint external file").
					WithDetail("path", k.String())
				logger.Error().Err(statErr).Str("path", k.String()).Msg("Rescan did not complete")
				return result
			}
			fingerprint, exists = fp, found
		} else {
			if isIgnored(k) {
				continue
			}
			fingerprint, exists = live[k]
		}

		result.Record(k, original, fingerprint, exists)
	}

	for _, k := range walked {
		if baseline.Has(k) {
			continue
		}
		result.Record(k, "", live[k], true)
	}

	logger.Debug().
		Int("additions", result.Additions.Len()).
		Int("changes", result.Changes.Len()).
		Int("deletions", result.Deletions.Len()).
		Int("ignored", len(result.Ignored)).
		Msg("Rescan finished")

	return result
}

// Record classifies one path given its baseline fingerprint ("" when the
// baseline has no entry) and what is on disk.
func (r *RescanResult) Record(k pathkey.Key, original, fingerprint string, exists bool) {
	switch {
	case original == "" && !exists:
		return
	case !exists:
		r.Put(k, Deleted)
		if original != Deleted {
			r.Deletions.Put(k, Deleted)
		}
	case original == "" || original == Deleted:
		r.Put(k, fingerprint)
		r.Additions.Put(k, fingerprint)
	case fingerprint != original:
		r.Put(k, fingerprint)
		r.Changes.Put(k, fingerprint)
	default:
		r.Put(k, fingerprint)
	}
}

func digestIfExists(fs afero.Fs, p string) (string, bool, error) {
	info, err := fs.Stat(p)
	if os.IsNotExist(err) {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}
	if info.IsDir() {
		return "", false, nil
	}
	fingerprint, err := hashutil.FileDigest(fs, p)
	if err != nil {
		return "", false, err
	}
	return fingerprint, true, nil
}
