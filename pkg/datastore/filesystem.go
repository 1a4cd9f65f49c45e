package datastore

import (
	"bytes"
	"os"
	"path/filepath"

	"github.com/arthur-debert/stowaway/pkg/errors"
	"github.com/arthur-debert/stowaway/pkg/filestate"
	"github.com/arthur-debert/stowaway/pkg/logging"
	"github.com/arthur-debert/stowaway/pkg/types"
	"github.com/pelletier/go-toml/v2"
	"github.com/spf13/afero"
)

const (
	pointerFileName   = "current.toml"
	recordFileName    = "deployment.toml"
	hashcodesFileName = "file-hashcodes.dat"
)

// pointer names the current and previous deployments of a destination
type pointer struct {
	Current  int `toml:"current"`
	Previous int `toml:"previous,omitempty"`
}

type filesystemDataStore struct {
	backupLayout
	fs afero.Fs
}

// NewDirStore creates a store that keeps its metadata in destDir/metaDirName
func NewDirStore(fs afero.Fs, destDir, metaDirName string) DataStore {
	if metaDirName == "" {
		metaDirName = DefaultMetadataDir
	}
	meta := filepath.Join(destDir, metaDirName)
	return &filesystemDataStore{
		backupLayout: backupLayout{fs: fs, base: meta},
		fs:           fs,
	}
}

func (s *filesystemDataStore) MetadataDir() string {
	return s.base
}

func (s *filesystemDataStore) pointerPath() string {
	return filepath.Join(s.base, pointerFileName)
}

func (s *filesystemDataStore) IsManaged() (bool, error) {
	exists, err := afero.Exists(s.fs, s.pointerPath())
	if err != nil {
		return false, errors.Wrap(err, errors.ErrStore, "cannot check deployment metadata").WithDetail("path", s.pointerPath())
	}
	return exists, nil
}

func (s *filesystemDataStore) readPointer() (pointer, error) {
	var p pointer
	content, err := afero.ReadFile(s.fs, s.pointerPath())
	if os.IsNotExist(err) {
		return p, errors.New(errors.ErrNotFound, "destination has no deployment").WithDetail("dir", s.base)
	}
	if err != nil {
		return p, errors.Wrap(err, errors.ErrStore, "cannot read deployment pointer").WithDetail("path", s.pointerPath())
	}
	if err := toml.Unmarshal(content, &p); err != nil {
		return p, errors.Wrap(err, errors.ErrStore, "corrupt deployment pointer").WithDetail("path", s.pointerPath())
	}
	return p, nil
}

func (s *filesystemDataStore) readRecord(id int) (types.DeploymentRecord, error) {
	var rec types.DeploymentRecord
	path := filepath.Join(s.deploymentDir(id), recordFileName)
	content, err := afero.ReadFile(s.fs, path)
	if err != nil {
		return rec, errors.Wrap(err, errors.ErrStore, "cannot read deployment record").WithDetail("path", path)
	}
	if err := toml.Unmarshal(content, &rec); err != nil {
		return rec, errors.Wrap(err, errors.ErrStore, "corrupt deployment record").WithDetail("path", path)
	}
	return rec, nil
}

func (s *filesystemDataStore) readMap(id int) (*filestate.Map, error) {
	path := filepath.Join(s.deploymentDir(id), hashcodesFileName)
	f, err := s.fs.Open(path)
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrStore, "cannot open file state").WithDetail("path", path)
	}
	defer func() {
		_ = f.Close()
	}()

	m, err := filestate.ReadMap(f)
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrStore, "corrupt file state").WithDetail("path", path)
	}
	return m, nil
}

func (s *filesystemDataStore) CurrentDeployment() (types.DeploymentRecord, *filestate.Map, error) {
	p, err := s.readPointer()
	if err != nil {
		return types.DeploymentRecord{}, nil, err
	}
	rec, err := s.readRecord(p.Current)
	if err != nil {
		return types.DeploymentRecord{}, nil, err
	}
	m, err := s.readMap(p.Current)
	if err != nil {
		return types.DeploymentRecord{}, nil, err
	}
	return rec, m, nil
}

func (s *filesystemDataStore) PreviousDeployment() (types.DeploymentRecord, bool, error) {
	p, err := s.readPointer()
	if errors.IsErrorCode(err, errors.ErrNotFound) {
		return types.DeploymentRecord{}, false, nil
	}
	if err != nil {
		return types.DeploymentRecord{}, false, err
	}
	if p.Previous == 0 {
		return types.DeploymentRecord{}, false, nil
	}
	rec, err := s.readRecord(p.Previous)
	if err != nil {
		return types.DeploymentRecord{}, false, err
	}
	return rec, true, nil
}

func (s *filesystemDataStore) NextDeploymentID() (int, error) {
	highest, err := s.highestID()
	if err != nil {
		return 0, err
	}
	return highest + 1, nil
}

func (s *filesystemDataStore) SetCurrentDeployment(rec types.DeploymentRecord, m *filestate.Map, isInitial bool) error {
	logger := logging.GetLogger("datastore.dir")

	if err := validateRecord(rec); err != nil {
		return err
	}

	p, err := s.readPointer()
	if err != nil && !errors.IsErrorCode(err, errors.ErrNotFound) {
		return err
	}
	if !isInitial && p.Current != rec.ID {
		return errors.Newf(errors.ErrStore, "deployment %d is not current", rec.ID).WithDetail("current", p.Current)
	}

	dir := s.deploymentDir(rec.ID)
	if err := s.fs.MkdirAll(dir, 0755); err != nil {
		return errors.Wrap(err, errors.ErrDirCreate, "cannot create deployment directory").WithDetail("dir", dir)
	}

	if isInitial {
		content, err := toml.Marshal(rec)
		if err != nil {
			return errors.Wrap(err, errors.ErrStore, "cannot encode deployment record")
		}
		if err := s.writeFile(filepath.Join(dir, recordFileName), content); err != nil {
			return err
		}
	}

	var buf bytes.Buffer
	if _, err := m.WriteTo(&buf); err != nil {
		return errors.Wrap(err, errors.ErrStore, "cannot encode file state")
	}
	if err := s.writeFile(filepath.Join(dir, hashcodesFileName), buf.Bytes()); err != nil {
		return err
	}

	if isInitial {
		next := pointer{Current: rec.ID, Previous: p.Current}
		if p.Current == rec.ID {
			next.Previous = p.Previous
		}
		content, err := toml.Marshal(next)
		if err != nil {
			return errors.Wrap(err, errors.ErrStore, "cannot encode deployment pointer")
		}
		if err := s.writeFile(s.pointerPath(), content); err != nil {
			return err
		}
	}

	logger.Debug().
		Int("deployment", rec.ID).
		Int("files", m.Len()).
		Bool("initial", isInitial).
		Msg("Persisted deployment")
	return nil
}

// writeFile replaces path through a temporary file so readers never see a partial write
func (s *filesystemDataStore) writeFile(path string, content []byte) error {
	tmp := path + ".tmp"
	if err := afero.WriteFile(s.fs, tmp, content, 0644); err != nil {
		return errors.Wrap(err, errors.ErrStore, "cannot write metadata").WithDetail("path", tmp)
	}
	if err := s.fs.Rename(tmp, path); err != nil {
		return errors.Wrap(err, errors.ErrStore, "cannot replace metadata").WithDetail("path", path)
	}
	return nil
}
