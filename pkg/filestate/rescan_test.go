package filestate

import (
	"os"
	"regexp"
	"testing"

	"github.com/arthur-debert/stowaway/pkg/internal/hashutil"
	"github.com/arthur-debert/stowaway/pkg/pathkey"
	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const dest = "/deploy"

func fp(content string) string {
	return hashutil.DigestBytes([]byte(content))
}

func write(t *testing.T, fs afero.Fs, path, content string) {
	t.Helper()
	require.NoError(t, afero.WriteFile(fs, path, []byte(content), 0644))
}

// failingFs refuses to open one directory so the walk cannot complete
type failingFs struct {
	afero.Fs
	failOn string
}

func (f failingFs) Open(name string) (afero.File, error) {
	if name == f.failOn {
		return nil, os.ErrPermission
	}
	return f.Fs.Open(name)
}

func TestRescanClassifiesPaths(t *testing.T) {
	fs := afero.NewMemMapFs()
	write(t, fs, dest+"/same.txt", "same")
	write(t, fs, dest+"/edited.txt", "local edit")
	write(t, fs, dest+"/sub/new.txt", "surprise")
	write(t, fs, "/etc/external.conf", "external")

	baseline := NewMap()
	baseline.Put("same.txt", fp("same"))
	baseline.Put("edited.txt", fp("edited"))
	baseline.Put("removed.txt", fp("removed"))
	baseline.Put("/etc/external.conf", fp("external"))
	baseline.Put("/etc/vanished.conf", fp("vanished"))

	result := Rescan(fs, baseline, dest, RescanOptions{})
	require.NoError(t, result.ScanFailure)

	assert.Equal(t, []pathkey.Key{"sub/new.txt"}, result.Additions.Keys())
	assert.Equal(t, []pathkey.Key{"edited.txt"}, result.Changes.Keys())
	assert.Equal(t, []pathkey.Key{"removed.txt", "/etc/vanished.conf"}, result.Deletions.Keys())

	assert.Equal(t, []pathkey.Key{
		"same.txt", "edited.txt", "removed.txt", "/etc/external.conf", "/etc/vanished.conf", "sub/new.txt",
	}, result.Keys())

	v, _ := result.Get("removed.txt")
	assert.Equal(t, Deleted, v)
	v, _ = result.Get("edited.txt")
	assert.Equal(t, fp("local edit"), v)
	v, _ = result.Get("/etc/external.conf")
	assert.Equal(t, fp("external"), v)
}

func TestRescanIgnoredPathsAreInNoBucket(t *testing.T) {
	fs := afero.NewMemMapFs()
	write(t, fs, dest+"/logs/app.log", "log line")
	write(t, fs, dest+"/logs/old.log", "changed")
	write(t, fs, dest+"/app.conf", "conf")

	baseline := NewMap()
	baseline.Put("app.conf", fp("conf"))
	baseline.Put("logs/old.log", fp("original"))
	baseline.Put("logs/gone.log", fp("gone"))

	result := Rescan(fs, baseline, dest, RescanOptions{Ignore: regexp.MustCompile(`^logs/`)})
	require.NoError(t, result.ScanFailure)

	assert.ElementsMatch(t, []pathkey.Key{"logs/app.log", "logs/old.log"}, result.Ignored)
	assert.True(t, result.IsIgnored("logs/app.log"))
	for _, k := range []pathkey.Key{"logs/app.log", "logs/old.log", "logs/gone.log"} {
		assert.False(t, result.Has(k), k)
		assert.False(t, result.Additions.Has(k), k)
		assert.False(t, result.Changes.Has(k), k)
		assert.False(t, result.Deletions.Has(k), k)
	}
	assert.Equal(t, []pathkey.Key{"app.conf"}, result.Keys())
}

func TestRescanSkipsMetadataDirectory(t *testing.T) {
	fs := afero.NewMemMapFs()
	write(t, fs, dest+"/.stowaway/1/file-hashcodes.dat", "x")
	write(t, fs, dest+"/a.txt", "a")

	result := Rescan(fs, NewMap(), dest, RescanOptions{Skip: []string{".stowaway"}})
	require.NoError(t, result.ScanFailure)
	assert.Equal(t, []pathkey.Key{"a.txt"}, result.Additions.Keys())
}

func TestRescanAlreadyDeletedBaselineEntries(t *testing.T) {
	fs := afero.NewMemMapFs()
	write(t, fs, dest+"/back.txt", "back again")
	require.NoError(t, fs.MkdirAll(dest, 0755))

	baseline := NewMap()
	baseline.Put("still-gone.txt", Deleted)
	baseline.Put("back.txt", Deleted)

	result := Rescan(fs, baseline, dest, RescanOptions{})
	require.NoError(t, result.ScanFailure)

	v, _ := result.Get("still-gone.txt")
	assert.Equal(t, Deleted, v)
	assert.Equal(t, 0, result.Deletions.Len())
	assert.Equal(t, []pathkey.Key{"back.txt"}, result.Additions.Keys())
}

func TestRescanFailureMarksWholeResult(t *testing.T) {
	mem := afero.NewMemMapFs()
	write(t, mem, dest+"/ok.txt", "ok")
	write(t, mem, dest+"/locked/secret.txt", "secret")

	fs := failingFs{Fs: mem, failOn: dest + "/locked"}
	result := Rescan(fs, NewMap(), dest, RescanOptions{})

	require.Error(t, result.ScanFailure)
	assert.Contains(t, result.ScanFailure.Error(), "cannot read live tree")
}

func TestRescanMissingDestinationIsEmpty(t *testing.T) {
	fs := afero.NewMemMapFs()
	write(t, fs, "/etc/external.conf", "external")

	baseline := NewMap()
	baseline.Put("a.txt", fp("a"))
	baseline.Put("sub/b.txt", fp("b"))
	baseline.Put("/etc/external.conf", fp("external"))

	result := Rescan(fs, baseline, "/nowhere", RescanOptions{})
	require.NoError(t, result.ScanFailure)

	assert.Equal(t, []pathkey.Key{"a.txt", "sub/b.txt"}, result.Deletions.Keys())
	assert.Equal(t, 0, result.Additions.Len())
	v, _ := result.Get("/etc/external.conf")
	assert.Equal(t, fp("external"), v)
}

func TestRescanUnreadableDestinationFails(t *testing.T) {
	mem := afero.NewMemMapFs()
	write(t, mem, dest+"/a.txt", "a")

	result := Rescan(failingFs{Fs: mem, failOn: dest}, NewMap(), dest, RescanOptions{})
	assert.Error(t, result.ScanFailure)
}

func TestRescanAbsoluteKeyInsideDestination(t *testing.T) {
	fs := afero.NewMemMapFs()
	write(t, fs, dest+"/conf.txt", "conf")
	write(t, fs, dest+"/other.txt", "other")

	baseline := NewMap()
	baseline.Put(pathkey.Key(dest+"/conf.txt"), fp("conf"))
	baseline.Put("other.txt", fp("other"))

	result := Rescan(fs, baseline, dest, RescanOptions{})
	require.NoError(t, result.ScanFailure)

	assert.Equal(t, 0, result.Additions.Len())
	assert.Equal(t, 0, result.Changes.Len())
	assert.False(t, result.Has("conf.txt"))
	assert.Equal(t, []pathkey.Key{pathkey.Key(dest + "/conf.txt"), "other.txt"}, result.Keys())
}
