package status

import (
	"path/filepath"
	"regexp"
	"testing"

	"github.com/arthur-debert/stowaway/pkg/datastore"
	"github.com/arthur-debert/stowaway/pkg/errors"
	"github.com/arthur-debert/stowaway/pkg/filestate"
	"github.com/arthur-debert/stowaway/pkg/internal/hashutil"
	"github.com/arthur-debert/stowaway/pkg/pathkey"
	"github.com/arthur-debert/stowaway/pkg/types"
	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const dest = "/srv/app"

func setup(t *testing.T, files map[string]string) (afero.Fs, datastore.DataStore) {
	fs := afero.NewMemMapFs()
	require.NoError(t, fs.MkdirAll(dest, 0755))
	m := filestate.NewMap()
	for p, content := range files {
		require.NoError(t, afero.WriteFile(fs, filepath.Join(dest, p), []byte(content), 0644))
		m.Put(pathkey.Key(p), hashutil.DigestBytes([]byte(content)))
	}
	store := datastore.NewDirStore(fs, dest, "")
	rec := types.DeploymentRecord{ID: 1, BundleName: "app", BundleVersion: "1.0"}
	require.NoError(t, store.SetCurrentDeployment(rec, m, true))
	return fs, store
}

func TestUnmanagedDestination(t *testing.T) {
	fs := afero.NewMemMapFs()
	store := datastore.NewDirStore(fs, dest, "")

	st, err := NewChecker(fs, store, dest, nil).Check()
	require.NoError(t, err)
	assert.False(t, st.Managed)
	assert.Nil(t, st.Current)
	assert.True(t, st.Clean())
}

func TestCleanDestination(t *testing.T) {
	fs, store := setup(t, map[string]string{"a.conf": "a", "lib/b.jar": "b"})

	st, err := NewChecker(fs, store, dest, nil).Check()
	require.NoError(t, err)
	assert.True(t, st.Managed)
	require.NotNil(t, st.Current)
	assert.Equal(t, 1, st.Current.ID)
	assert.Nil(t, st.Previous)
	assert.Equal(t, 2, st.Tracked)
	assert.True(t, st.Clean(), "metadata directory must not show up as drift: %v", st.Drift)
}

func TestDriftIsClassified(t *testing.T) {
	fs, store := setup(t, map[string]string{"a.conf": "a", "b.conf": "b", "c.conf": "c"})

	require.NoError(t, afero.WriteFile(fs, filepath.Join(dest, "a.conf"), []byte("edited"), 0644))
	require.NoError(t, fs.Remove(filepath.Join(dest, "b.conf")))
	require.NoError(t, afero.WriteFile(fs, filepath.Join(dest, "new.txt"), []byte("n"), 0644))
	require.NoError(t, afero.WriteFile(fs, filepath.Join(dest, "app.log"), []byte("l"), 0644))

	st, err := NewChecker(fs, store, dest, regexp.MustCompile(`\.log$`)).Check()
	require.NoError(t, err)
	assert.Equal(t, []types.Drift{
		{Path: "a.conf", State: types.DriftModified},
		{Path: "app.log", State: types.DriftIgnored},
		{Path: "b.conf", State: types.DriftMissing},
		{Path: "new.txt", State: types.DriftAdded},
	}, st.Drift)
	assert.False(t, st.Clean())
}

func TestPreviousDeploymentIsReported(t *testing.T) {
	fs, store := setup(t, map[string]string{"a.conf": "a"})
	_, m, err := store.CurrentDeployment()
	require.NoError(t, err)
	require.NoError(t, store.SetCurrentDeployment(types.DeploymentRecord{ID: 2, BundleName: "app", BundleVersion: "2.0"}, m, true))

	st, err := NewChecker(fs, store, dest, nil).Check()
	require.NoError(t, err)
	require.NotNil(t, st.Previous)
	assert.Equal(t, 1, st.Previous.ID)
	assert.Equal(t, 2, st.Current.ID)
}

type unreadableFs struct{ afero.Fs }

func (f unreadableFs) Open(name string) (afero.File, error) {
	if name == dest {
		return nil, afero.ErrFileNotFound
	}
	return f.Fs.Open(name)
}

func TestScanFailure(t *testing.T) {
	fs, store := setup(t, map[string]string{"a.conf": "a"})

	_, err := NewChecker(unreadableFs{fs}, store, dest, nil).Check()
	require.Error(t, err)
	assert.True(t, errors.IsErrorCode(err, errors.ErrRescanFailed))
}
