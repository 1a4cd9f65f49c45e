package hashutil

import (
	"bytes"
	"strings"
	"testing"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDigestBytes(t *testing.T) {
	// sha256("hello world")
	want := "b94d27b9934d3e08a52e52d7da7dabfac484efe37a5380ee9088f7ace2efcde9"
	assert.Equal(t, want, DigestBytes([]byte("hello world")))
	assert.Len(t, DigestBytes(nil), Size)
}

func TestDigestMatchesDigestBytes(t *testing.T) {
	content := "Hello, World!\nThis is a test file.\n"

	streamed, err := Digest(strings.NewReader(content))
	require.NoError(t, err)
	assert.Equal(t, DigestBytes([]byte(content)), streamed)
}

func TestCopyAndDigest(t *testing.T) {
	content := []byte("line one\nline two\n")
	var out bytes.Buffer

	fingerprint, err := CopyAndDigest(&out, bytes.NewReader(content))
	require.NoError(t, err)

	assert.Equal(t, content, out.Bytes())
	assert.Equal(t, DigestBytes(content), fingerprint)
}

func TestFileDigestAndCopyFile(t *testing.T) {
	fs := afero.NewMemMapFs()
	require.NoError(t, afero.WriteFile(fs, "/src/a.txt", []byte("payload"), 0644))
	require.NoError(t, afero.WriteFile(fs, "/dst/a.txt", []byte("a much longer previous payload"), 0644))

	want := DigestBytes([]byte("payload"))

	got, err := FileDigest(fs, "/src/a.txt")
	require.NoError(t, err)
	assert.Equal(t, want, got)

	copied, err := CopyFile(fs, "/src/a.txt", "/dst/a.txt")
	require.NoError(t, err)
	assert.Equal(t, want, copied)

	data, err := afero.ReadFile(fs, "/dst/a.txt")
	require.NoError(t, err)
	assert.Equal(t, "payload", string(data))

	_, err = FileDigest(fs, "/missing")
	assert.Error(t, err)
}
