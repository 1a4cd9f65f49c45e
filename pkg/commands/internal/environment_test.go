package internal

import (
	"testing"

	"github.com/arthur-debert/stowaway/pkg/config"
	"github.com/arthur-debert/stowaway/pkg/errors"
	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOpenStore(t *testing.T) {
	fs := afero.NewMemMapFs()

	store, release, err := OpenStore(fs, config.StoreConfig{Backend: "dir", MetadataDir: ".meta"}, "/srv/app")
	require.NoError(t, err)
	assert.Equal(t, "/srv/app/.meta", store.MetadataDir())
	assert.NoError(t, release())

	store, release, err = OpenStore(fs, config.StoreConfig{}, "/srv/app")
	require.NoError(t, err)
	assert.Equal(t, "/srv/app/.stowaway", store.MetadataDir())
	assert.NoError(t, release())

	cfg := config.StoreConfig{Backend: "badger", BadgerPath: t.TempDir(), BackupRoot: "/var/backups"}
	store, release, err = OpenStore(fs, cfg, "/srv/app")
	require.NoError(t, err)
	assert.Equal(t, "/var/backups/srv_2fapp", store.MetadataDir())
	assert.NoError(t, release())

	_, _, err = OpenStore(fs, config.StoreConfig{Backend: "sqlite"}, "/srv/app")
	assert.True(t, errors.IsErrorCode(err, errors.ErrNotFound))
}

func TestCompileIgnore(t *testing.T) {
	re, err := CompileIgnore("")
	require.NoError(t, err)
	assert.Nil(t, re)

	re, err = CompileIgnore(`^logs/`)
	require.NoError(t, err)
	assert.True(t, re.MatchString("logs/a.log"))

	_, err = CompileIgnore(`(`)
	assert.True(t, errors.IsErrorCode(err, errors.ErrConfigValid))
}

func TestSourceFrom(t *testing.T) {
	src, err := SourceFrom(&config.Descriptor{
		Archives: []config.ArchiveDescriptor{
			{Path: "/b/app.zip", Realize: `\.conf$`},
			{Path: "/b/lib.zip"},
		},
		RawFiles: []config.RawFileDescriptor{
			{Source: "/b/motd", Destination: "/etc/motd", Realize: true},
		},
	})
	require.NoError(t, err)
	require.Len(t, src.Archives, 2)
	assert.True(t, src.Archives[0].Realize.MatchString("conf/app.conf"))
	assert.Nil(t, src.Archives[1].Realize)
	require.Len(t, src.RawFiles, 1)
	assert.Equal(t, "/etc/motd", src.RawFiles[0].Destination)
	assert.True(t, src.RawFiles[0].Realize)

	_, err = SourceFrom(&config.Descriptor{Archives: []config.ArchiveDescriptor{{Path: "x.zip", Realize: "["}}})
	assert.True(t, errors.IsErrorCode(err, errors.ErrConfigValid))
}
