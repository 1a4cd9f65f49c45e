// Package hashutil computes content fingerprints. A fingerprint is the
// lowercase hex SHA-256 of a file's bytes, always 64 characters long.
package hashutil

import (
	"crypto/sha256"
	"encoding/hex"
	"io"
	"os"

	"github.com/spf13/afero"
)

// Size is the length of every fingerprint string
const Size = sha256.Size * 2

// DigestBytes fingerprints an in-memory buffer
func DigestBytes(content []byte) string {
	sum := sha256.Sum256(content)
	return hex.EncodeToString(sum[:])
}

// Digest fingerprints everything readable from r
func Digest(r io.Reader) (string, error) {
	hash := sha256.New()
	if _, err := io.Copy(hash, r); err != nil {
		return "", err
	}
	return hex.EncodeToString(hash.Sum(nil)), nil
}

// CopyAndDigest copies src into dst and fingerprints the copied bytes in the same pass
func CopyAndDigest(dst io.Writer, src io.Reader) (string, error) {
	hash := sha256.New()
	if _, err := io.Copy(io.MultiWriter(dst, hash), src); err != nil {
		return "", err
	}
	return hex.EncodeToString(hash.Sum(nil)), nil
}

// FileDigest fingerprints the file at path
func FileDigest(fs afero.Fs, path string) (string, error) {
	file, err := fs.Open(path)
	if err != nil {
		return "", err
	}
	defer func() {
		_ = file.Close()
	}()

	return Digest(file)
}

// CopyFile copies src to dst on fs, truncating dst, and returns the fingerprint of the copied bytes
func CopyFile(fs afero.Fs, src, dst string) (string, error) {
	in, err := fs.Open(src)
	if err != nil {
		return "", err
	}
	defer func() {
		_ = in.Close()
	}()

	out, err := fs.OpenFile(dst, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0644)
	if err != nil {
		return "", err
	}

	fingerprint, err := CopyAndDigest(out, in)
	if closeErr := out.Close(); err == nil {
		err = closeErr
	}
	if err != nil {
		return "", err
	}
	return fingerprint, nil
}
