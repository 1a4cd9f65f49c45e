package materialize

import (
	"archive/zip"
	"io"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/arthur-debert/stowaway/pkg/errors"
	"github.com/arthur-debert/stowaway/pkg/filestate"
	"github.com/arthur-debert/stowaway/pkg/internal/hashutil"
	"github.com/arthur-debert/stowaway/pkg/logging"
	"github.com/arthur-debert/stowaway/pkg/pathkey"
	"github.com/arthur-debert/stowaway/pkg/template"
	"github.com/arthur-debert/stowaway/pkg/types"
	"github.com/rs/zerolog"
	"github.com/spf13/afero"
)

// Archive is a zip file extracted below the destination
type Archive struct {
	Path string
	// Realize selects the entries (by slash-separated name) that are realized. nil realizes none.
	Realize *regexp.Regexp
}

// RawFile is a single file copied to Destination, relative to the
// destination directory or absolute.
type RawFile struct {
	Source      string
	Destination string
	Realize     bool
}

// Source describes everything a deployment installs
type Source struct {
	Archives []Archive
	RawFiles []RawFile
}

// IsEmpty reports whether the source installs nothing
func (s Source) IsEmpty() bool {
	return len(s.Archives) == 0 && len(s.RawFiles) == 0
}

// Mode controls how a materialization runs
type Mode struct {
	// Commit writes files. Without it only fingerprints are computed.
	Commit bool
	// Skip lists keys that are neither written nor returned
	Skip map[pathkey.Key]bool
}

// Materializer installs a Source into a destination directory
type Materializer struct {
	fs      afero.Fs
	srcFs   afero.Fs
	destDir string
	engine  template.Engine
	perm    os.FileMode
}

// Option configures a Materializer
type Option func(*Materializer)

// WithSourceFs reads archives and raw files from fs instead of the destination's filesystem
func WithSourceFs(fs afero.Fs) Option {
	return func(m *Materializer) {
		m.srcFs = fs
	}
}

// WithFileMode sets the permissions of written files
func WithFileMode(perm os.FileMode) Option {
	return func(m *Materializer) {
		m.perm = perm
	}
}

// New creates a Materializer. engine may be nil when nothing is realized.
func New(fs afero.Fs, destDir string, engine template.Engine, opts ...Option) *Materializer {
	m := &Materializer{
		fs:      fs,
		srcFs:   fs,
		destDir: destDir,
		engine:  engine,
		perm:    0644,
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Prospective computes the state src would produce without touching the destination
func (m *Materializer) Prospective(src Source) (*filestate.Map, error) {
	return m.Materialize(src, Mode{}, nil, nil)
}

// Materialize installs src. Keys present in leaveAlone are not written and
// keep the fingerprint leaveAlone gives them in the returned map.
func (m *Materializer) Materialize(src Source, mode Mode, leaveAlone *filestate.Map, diff *types.DeployDifferences) (*filestate.Map, error) {
	logger := logging.GetLogger("materialize").With().
		Str("dest", m.destDir).
		Bool("commit", mode.Commit).
		Logger()

	run := &pass{
		Materializer: m,
		mode:         mode,
		leaveAlone:   leaveAlone,
		diff:         diff,
		result:       filestate.NewMap(),
		logger:       logger,
	}

	for _, archive := range src.Archives {
		if err := run.extract(archive); err != nil {
			return nil, err
		}
	}
	for _, raw := range src.RawFiles {
		if err := run.copyRaw(raw); err != nil {
			return nil, err
		}
	}

	for _, k := range leaveAlone.Keys() {
		if mode.Skip[k] {
			continue
		}
		fingerprint, _ := leaveAlone.Get(k)
		run.result.Put(k, fingerprint)
	}

	logger.Debug().
		Int("files", run.result.Len()).
		Int("left_alone", leaveAlone.Len()).
		Msg("Materialized bundle")

	return run.result, nil
}

// pass carries the state of one Materialize call
type pass struct {
	*Materializer
	mode       Mode
	leaveAlone *filestate.Map
	diff       *types.DeployDifferences
	result     *filestate.Map
	logger     zerolog.Logger
}

func (p *pass) excluded(k pathkey.Key) bool {
	return p.mode.Skip[k] || p.leaveAlone.Has(k)
}

func (p *pass) extract(archive Archive) error {
	f, err := p.srcFs.Open(archive.Path)
	if err != nil {
		return errors.Wrap(err, errors.ErrArchive, "cannot open archive").WithDetail("archive", archive.Path)
	}
	defer func() {
		_ = f.Close()
	}()

	info, err := f.Stat()
	if err != nil {
		return errors.Wrap(err, errors.ErrArchive, "cannot stat archive").WithDetail("archive", archive.Path)
	}

	reader, err := zip.NewReader(f, info.Size())
	if err != nil {
		return errors.Wrap(err, errors.ErrArchive, "cannot read archive").WithDetail("archive", archive.Path)
	}

	for _, entry := range reader.File {
		if entry.FileInfo().IsDir() {
			continue
		}

		key, err := entryKey(entry.Name)
		if err != nil {
			return errors.Wrap(err, errors.ErrArchive, "invalid archive entry").
				WithDetail("archive", archive.Path).
				WithDetail("entry", entry.Name)
		}
		if p.excluded(key) {
			p.logger.Trace().Str("path", key.String()).Msg("Not writing excluded entry")
			continue
		}

		realize := archive.Realize != nil && archive.Realize.MatchString(entry.Name)
		if err := p.installEntry(archive.Path, entry, key, realize); err != nil {
			return err
		}
	}
	return nil
}

func (p *pass) installEntry(archivePath string, entry *zip.File, key pathkey.Key, realize bool) error {
	rc, err := entry.Open()
	if err != nil {
		return errors.Wrap(err, errors.ErrArchive, "cannot open archive entry").
			WithDetail("archive", archivePath).
			WithDetail("entry", entry.Name)
	}
	defer func() {
		_ = rc.Close()
	}()

	return p.install(rc, key, realize)
}

func (p *pass) copyRaw(raw RawFile) error {
	key := pathkey.New(raw.Destination)
	if key == "" {
		return errors.New(errors.ErrInvalidInput, "raw file has no destination").WithDetail("source", raw.Source)
	}
	if !key.IsAbsolute() && escapes(key) {
		return errors.New(errors.ErrInvalidInput, "raw file destination escapes the destination").
			WithDetail("source", raw.Source).
			WithDetail("destination", raw.Destination)
	}
	if p.excluded(key) {
		p.logger.Trace().Str("path", key.String()).Msg("Not writing excluded raw file")
		return nil
	}

	in, err := p.srcFs.Open(raw.Source)
	if err != nil {
		return errors.Wrap(err, errors.ErrFileAccess, "cannot open raw file").WithDetail("source", raw.Source)
	}
	defer func() {
		_ = in.Close()
	}()

	return p.install(in, key, raw.Realize)
}

// install fingerprints r under key, writing it when committing
func (p *pass) install(r io.Reader, key pathkey.Key, realize bool) error {
	target := key.Under(p.destDir)

	var fingerprint string
	if realize {
		if p.engine == nil {
			return errors.New(errors.ErrTemplate, "realization requested without a template engine").
				WithDetail("path", key.String())
		}
		content, err := io.ReadAll(r)
		if err != nil {
			return errors.Wrap(err, errors.ErrFileAccess, "cannot read content to realize").WithDetail("path", key.String())
		}
		realized := p.engine.Replace(string(content))
		fingerprint = hashutil.DigestBytes([]byte(realized))
		p.diff.AddRealizedFile(key, realized)

		if p.mode.Commit {
			if err := p.write(target, []byte(realized)); err != nil {
				return err
			}
		}
	} else if p.mode.Commit {
		if err := p.mkdirParent(target); err != nil {
			return err
		}
		out, err := p.fs.OpenFile(target, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, p.perm)
		if err != nil {
			return errors.Wrap(err, errors.ErrFileWrite, "cannot create file").WithDetail("path", target)
		}
		fingerprint, err = hashutil.CopyAndDigest(out, r)
		if closeErr := out.Close(); err == nil {
			err = closeErr
		}
		if err != nil {
			return errors.Wrap(err, errors.ErrFileWrite, "cannot write file").WithDetail("path", target)
		}
	} else {
		var err error
		fingerprint, err = hashutil.Digest(r)
		if err != nil {
			return errors.Wrap(err, errors.ErrFileAccess, "cannot fingerprint content").WithDetail("path", key.String())
		}
	}

	p.result.Put(key, fingerprint)
	p.logger.Trace().
		Str("path", key.String()).
		Bool("realized", realize).
		Msg("Materialized file")
	return nil
}

func (p *pass) write(target string, content []byte) error {
	if err := p.mkdirParent(target); err != nil {
		return err
	}
	if err := afero.WriteFile(p.fs, target, content, p.perm); err != nil {
		return errors.Wrap(err, errors.ErrFileWrite, "cannot write file").WithDetail("path", target)
	}
	return nil
}

func (p *pass) mkdirParent(target string) error {
	dir := filepath.Dir(target)
	if err := p.fs.MkdirAll(dir, 0755); err != nil {
		return errors.Wrap(err, errors.ErrDirCreate, "cannot create parent directory").WithDetail("dir", dir)
	}
	return nil
}

// entryKey turns a zip entry name into a key that stays below the destination
func entryKey(name string) (pathkey.Key, error) {
	key := pathkey.New(name)
	if key == "" || key.IsAbsolute() || key.Volume() != "" || escapes(key) {
		return "", errors.New(errors.ErrArchive, "archive entry escapes the destination").WithDetail("entry", name)
	}
	return key, nil
}

// escapes reports whether a relative key climbs out of the destination
func escapes(key pathkey.Key) bool {
	return key == ".." || strings.HasPrefix(key.String(), "../")
}
