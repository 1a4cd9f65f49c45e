package pathkey

import (
	"path"
	"path/filepath"
	"strings"
)

// Key is the canonical form of a deployment path
type Key string

// New normalizes p into a Key
func New(p string) Key {
	if hasDrive(p) {
		p = strings.ReplaceAll(p, `\`, "/")
		drive := strings.ToUpper(p[:2])
		rest := p[2:]
		if strings.HasPrefix(rest, "/") {
			return Key(drive + path.Clean(rest))
		}
		return Key(drive + cleanRelative(rest))
	}

	p = filepath.ToSlash(p)
	if strings.HasPrefix(p, "/") {
		return Key(path.Clean(p))
	}
	return Key(cleanRelative(p))
}

// FromRelative builds a key for a path relative to base.
// target must live under base.
func FromRelative(base, target string) (Key, error) {
	rel, err := filepath.Rel(base, target)
	if err != nil {
		return "", err
	}
	return New(rel), nil
}

func cleanRelative(p string) string {
	cleaned := path.Clean(p)
	if cleaned == "." {
		return ""
	}
	return strings.TrimPrefix(cleaned, "./")
}

func hasDrive(p string) bool {
	return len(p) >= 2 && p[1] == ':' && isLetter(p[0])
}

func isLetter(c byte) bool {
	return (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z')
}

// String returns the canonical form
func (k Key) String() string {
	return string(k)
}

// IsAbsolute reports whether the key carries a root marker
func (k Key) IsAbsolute() bool {
	s := string(k)
	if strings.HasPrefix(s, "/") {
		return true
	}
	return hasDrive(s) && len(s) > 2 && s[2] == '/'
}

// Volume returns the drive letter prefix ("C:") if the key has one
func (k Key) Volume() string {
	if hasDrive(string(k)) {
		return string(k)[:2]
	}
	return ""
}

// StripVolume drops a drive letter prefix from a relative key
func (k Key) StripVolume() Key {
	if k.IsAbsolute() || k.Volume() == "" {
		return k
	}
	return Key(string(k)[2:])
}

// OSPath converts the key back to the host's separator convention
func (k Key) OSPath() string {
	return filepath.FromSlash(string(k))
}

// Under joins a relative key onto dir. Absolute keys are returned as-is.
func (k Key) Under(dir string) string {
	if k.IsAbsolute() {
		return k.OSPath()
	}
	return filepath.Join(dir, k.OSPath())
}
