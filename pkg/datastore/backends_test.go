package datastore

import (
	"testing"

	"github.com/arthur-debert/stowaway/pkg/errors"
	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuiltinBackends(t *testing.T) {
	assert.Subset(t, Backends(), []string{"badger", "dir"})

	store, release, err := Open("dir", afero.NewMemMapFs(), BackendConfig{MetadataDir: ".meta"}, "/srv/app")
	require.NoError(t, err)
	assert.Equal(t, "/srv/app/.meta", store.MetadataDir())
	assert.NoError(t, release())

	cfg := BackendConfig{BadgerPath: t.TempDir(), BackupRoot: "/var/backups"}
	store, release, err = Open("badger", afero.NewMemMapFs(), cfg, "/srv/app")
	require.NoError(t, err)
	assert.Equal(t, "/var/backups/srv_2fapp", store.MetadataDir())
	assert.NoError(t, release())
}

func TestOpenUnknownBackend(t *testing.T) {
	_, _, err := Open("sqlite", afero.NewMemMapFs(), BackendConfig{}, "/srv/app")
	assert.True(t, errors.IsErrorCode(err, errors.ErrNotFound))
}

func TestRegisterBackend(t *testing.T) {
	mem := NewDirStore(afero.NewMemMapFs(), "/x", "")
	require.NoError(t, RegisterBackend("test-fixed", func(afero.Fs, BackendConfig, string) (DataStore, func() error, error) {
		return mem, func() error { return nil }, nil
	}))

	store, _, err := Open("test-fixed", nil, BackendConfig{}, "/ignored")
	require.NoError(t, err)
	assert.Same(t, mem, store)
	assert.Error(t, RegisterBackend("dir", openDir))
}

func TestBackupDirFor(t *testing.T) {
	tests := []struct {
		dest string
		want string
	}{
		{"/srv/app", "srv_2fapp"},
		{"/srv/app/", "srv_2fapp"},
		{"/srv/a_b", "srv_2fa_5fb"},
		{"/", "_root"},
		{"/_root", "_5froot"},
		{"C:/apps/x", "C_3a_2fapps_2fx"},
	}
	for _, tt := range tests {
		t.Run(tt.dest, func(t *testing.T) {
			assert.Equal(t, tt.want, BackupDirFor(tt.dest))
		})
	}
}

func TestBackupDirForKeepsDestinationsApart(t *testing.T) {
	dests := []string{"/srv/a_b", "/srv/a/b", "/srv/a:b", "/srv_a/b", "/srv/a_2fb", "/", "/_root"}
	seen := make(map[string]string, len(dests))
	for _, d := range dests {
		name := BackupDirFor(d)
		other, dup := seen[name]
		assert.False(t, dup, "%s and %s share %s", d, other, name)
		seen[name] = d
	}
}
