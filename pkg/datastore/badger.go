package datastore

import (
	"bytes"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/arthur-debert/stowaway/pkg/errors"
	"github.com/arthur-debert/stowaway/pkg/filestate"
	"github.com/arthur-debert/stowaway/pkg/logging"
	"github.com/arthur-debert/stowaway/pkg/types"
	"github.com/dgraph-io/badger/v4"
	"github.com/pelletier/go-toml/v2"
	"github.com/rs/zerolog"
	"github.com/spf13/afero"
)

// BadgerConfig holds configuration for the metadata database
type BadgerConfig struct {
	// Path is the database directory. Ignored when InMemory is true.
	Path string

	// InMemory keeps everything in RAM. Used by tests.
	InMemory bool

	// SyncWrites fsyncs every commit
	SyncWrites bool
}

// badgerLogger adapts zerolog to badger's Logger interface
type badgerLogger struct {
	logger zerolog.Logger
}

func (l badgerLogger) Errorf(format string, args ...interface{}) {
	l.logger.Error().Msgf(format, args...)
}

func (l badgerLogger) Warningf(format string, args ...interface{}) {
	l.logger.Warn().Msgf(format, args...)
}

func (l badgerLogger) Infof(format string, args ...interface{}) {
	l.logger.Trace().Msgf(format, args...)
}

func (l badgerLogger) Debugf(format string, args ...interface{}) {
	l.logger.Trace().Msgf(format, args...)
}

// OpenBadger opens the metadata database. The caller must Close it.
func OpenBadger(cfg BadgerConfig) (*badger.DB, error) {
	if !cfg.InMemory && cfg.Path == "" {
		return nil, errors.New(errors.ErrInvalidInput, "badger path is required for a persistent store")
	}

	var opts badger.Options
	if cfg.InMemory {
		opts = badger.DefaultOptions("").WithInMemory(true)
	} else {
		opts = badger.DefaultOptions(cfg.Path)
	}
	opts = opts.
		WithSyncWrites(cfg.SyncWrites).
		WithNumVersionsToKeep(1).
		WithLogger(badgerLogger{logger: logging.GetLogger("datastore.badger.db")})

	db, err := badger.Open(opts)
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrStore, "cannot open metadata database").WithDetail("path", cfg.Path)
	}
	return db, nil
}

type badgerDataStore struct {
	backupLayout
	db     *badger.DB
	prefix string
}

// NewBadgerStore creates a store that keeps the records of destDir in db
// and its backups below backupRoot.
func NewBadgerStore(db *badger.DB, fs afero.Fs, destDir, backupRoot string) DataStore {
	return &badgerDataStore{
		backupLayout: backupLayout{fs: fs, base: backupRoot},
		db:           db,
		prefix:       "dest:" + filepath.Clean(destDir) + ":",
	}
}

func (s *badgerDataStore) MetadataDir() string {
	return s.base
}

func (s *badgerDataStore) key(parts ...string) []byte {
	k := s.prefix
	for i, part := range parts {
		if i > 0 {
			k += ":"
		}
		k += part
	}
	return []byte(k)
}

func (s *badgerDataStore) pointerKey() []byte {
	return s.key("pointer")
}

func (s *badgerDataStore) recordKey(id int) []byte {
	return s.key("deployment", strconv.Itoa(id), "record")
}

func (s *badgerDataStore) mapKey(id int) []byte {
	return s.key("deployment", strconv.Itoa(id), "files")
}

func (s *badgerDataStore) IsManaged() (bool, error) {
	managed := false
	err := s.db.View(func(txn *badger.Txn) error {
		_, err := txn.Get(s.pointerKey())
		if err == badger.ErrKeyNotFound {
			return nil
		}
		if err != nil {
			return err
		}
		managed = true
		return nil
	})
	if err != nil {
		return false, errors.Wrap(err, errors.ErrStore, "cannot check deployment metadata")
	}
	return managed, nil
}

func getValue(txn *badger.Txn, key []byte) ([]byte, error) {
	item, err := txn.Get(key)
	if err == badger.ErrKeyNotFound {
		return nil, errors.New(errors.ErrNotFound, "no such metadata").WithDetail("key", string(key))
	}
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrStore, "cannot read metadata").WithDetail("key", string(key))
	}
	return item.ValueCopy(nil)
}

func (s *badgerDataStore) readPointer(txn *badger.Txn) (pointer, error) {
	var p pointer
	content, err := getValue(txn, s.pointerKey())
	if err != nil {
		return p, err
	}
	if err := toml.Unmarshal(content, &p); err != nil {
		return p, errors.Wrap(err, errors.ErrStore, "corrupt deployment pointer")
	}
	return p, nil
}

func (s *badgerDataStore) readRecord(txn *badger.Txn, id int) (types.DeploymentRecord, error) {
	var rec types.DeploymentRecord
	content, err := getValue(txn, s.recordKey(id))
	if err != nil {
		return rec, err
	}
	if err := toml.Unmarshal(content, &rec); err != nil {
		return rec, errors.Wrap(err, errors.ErrStore, "corrupt deployment record").WithDetail("deployment", id)
	}
	return rec, nil
}

func (s *badgerDataStore) CurrentDeployment() (types.DeploymentRecord, *filestate.Map, error) {
	var rec types.DeploymentRecord
	var m *filestate.Map

	err := s.db.View(func(txn *badger.Txn) error {
		p, err := s.readPointer(txn)
		if err != nil {
			return err
		}
		if rec, err = s.readRecord(txn, p.Current); err != nil {
			return err
		}
		content, err := getValue(txn, s.mapKey(p.Current))
		if err != nil {
			return err
		}
		if m, err = filestate.ReadMap(bytes.NewReader(content)); err != nil {
			return errors.Wrap(err, errors.ErrStore, "corrupt file state").WithDetail("deployment", p.Current)
		}
		return nil
	})
	if err != nil {
		return types.DeploymentRecord{}, nil, err
	}
	return rec, m, nil
}

func (s *badgerDataStore) PreviousDeployment() (types.DeploymentRecord, bool, error) {
	var rec types.DeploymentRecord
	found := false

	err := s.db.View(func(txn *badger.Txn) error {
		p, err := s.readPointer(txn)
		if errors.IsErrorCode(err, errors.ErrNotFound) {
			return nil
		}
		if err != nil {
			return err
		}
		if p.Previous == 0 {
			return nil
		}
		if rec, err = s.readRecord(txn, p.Previous); err != nil {
			return err
		}
		found = true
		return nil
	})
	if err != nil {
		return types.DeploymentRecord{}, false, err
	}
	return rec, found, nil
}

func (s *badgerDataStore) NextDeploymentID() (int, error) {
	highest, err := s.highestID()
	if err != nil {
		return 0, err
	}

	err = s.db.View(func(txn *badger.Txn) error {
		prefix := s.key("deployment", "")
		it := txn.NewIterator(badger.IteratorOptions{Prefix: prefix})
		defer it.Close()
		for it.Rewind(); it.Valid(); it.Next() {
			idPart, _, _ := strings.Cut(string(it.Item().Key()[len(prefix):]), ":")
			if id, convErr := strconv.Atoi(idPart); convErr == nil && id > highest {
				highest = id
			}
		}
		return nil
	})
	if err != nil {
		return 0, errors.Wrap(err, errors.ErrStore, "cannot list deployments")
	}
	return highest + 1, nil
}

func (s *badgerDataStore) SetCurrentDeployment(rec types.DeploymentRecord, m *filestate.Map, isInitial bool) error {
	logger := logging.GetLogger("datastore.badger")

	if err := validateRecord(rec); err != nil {
		return err
	}

	var files bytes.Buffer
	if _, err := m.WriteTo(&files); err != nil {
		return errors.Wrap(err, errors.ErrStore, "cannot encode file state")
	}

	err := s.db.Update(func(txn *badger.Txn) error {
		p, err := s.readPointer(txn)
		if err != nil && !errors.IsErrorCode(err, errors.ErrNotFound) {
			return err
		}
		if !isInitial {
			if p.Current != rec.ID {
				return errors.Newf(errors.ErrStore, "deployment %d is not current", rec.ID).WithDetail("current", p.Current)
			}
			return txn.Set(s.mapKey(rec.ID), files.Bytes())
		}

		record, err := toml.Marshal(rec)
		if err != nil {
			return errors.Wrap(err, errors.ErrStore, "cannot encode deployment record")
		}
		next := pointer{Current: rec.ID, Previous: p.Current}
		if p.Current == rec.ID {
			next.Previous = p.Previous
		}
		ptr, err := toml.Marshal(next)
		if err != nil {
			return errors.Wrap(err, errors.ErrStore, "cannot encode deployment pointer")
		}

		if err := txn.Set(s.recordKey(rec.ID), record); err != nil {
			return err
		}
		if err := txn.Set(s.mapKey(rec.ID), files.Bytes()); err != nil {
			return err
		}
		return txn.Set(s.pointerKey(), ptr)
	})
	if err != nil {
		if errors.GetErrorCode(err) != errors.ErrUnknown {
			return err
		}
		return errors.Wrap(err, errors.ErrStore, "cannot persist deployment").WithDetail("deployment", rec.ID)
	}

	logger.Debug().
		Int("deployment", rec.ID).
		Int("files", m.Len()).
		Bool("initial", isInitial).
		Msg("Persisted deployment")
	return nil
}
