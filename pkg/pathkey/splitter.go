package pathkey

import (
	"path/filepath"
	"runtime"
	"strings"
)

// RootSplitter separates absolute paths into a root identifier and the
// path below that root.
type RootSplitter interface {
	// Split returns the root of an absolute key and the slash-separated remainder.
	// ok is false for relative keys.
	Split(k Key) (root, rest string, ok bool)

	// Join is the inverse of Split and returns a host path.
	Join(root, rest string) string

	// Volume returns the root identifier of a host path, or "" when the
	// platform has a single root.
	Volume(p string) string
}

// SingleRoot is the splitter for systems with one filesystem root
type SingleRoot struct{}

// Split implements RootSplitter
func (SingleRoot) Split(k Key) (string, string, bool) {
	s := string(k)
	if !strings.HasPrefix(s, "/") {
		return "", "", false
	}
	return "/", strings.TrimPrefix(s, "/"), true
}

// Join implements RootSplitter
func (SingleRoot) Join(root, rest string) string {
	return filepath.Join(root, filepath.FromSlash(rest))
}

// Volume implements RootSplitter
func (SingleRoot) Volume(string) string {
	return ""
}

// DriveLetter is the splitter for systems whose roots are drive letters
type DriveLetter struct{}

// Split implements RootSplitter
func (DriveLetter) Split(k Key) (string, string, bool) {
	if !k.IsAbsolute() || k.Volume() == "" {
		return "", "", false
	}
	s := string(k)
	return strings.ToUpper(s[:2]), s[3:], true
}

// Join implements RootSplitter
func (DriveLetter) Join(root, rest string) string {
	return filepath.FromSlash(root + "/" + rest)
}

// Volume implements RootSplitter
func (DriveLetter) Volume(p string) string {
	if hasDrive(p) {
		return strings.ToUpper(p[:2])
	}
	return ""
}

// ForPlatform returns the splitter matching the running OS
func ForPlatform() RootSplitter {
	if runtime.GOOS == "windows" {
		return DriveLetter{}
	}
	return SingleRoot{}
}

const (
	backupNamePrefix = "_"
	singleRootName   = "_root"
)

// BackupRootName returns the directory name used for a root's external backup subtree
func BackupRootName(root string) string {
	if root == "/" || root == "" {
		return singleRootName
	}
	return backupNamePrefix + strings.TrimSuffix(strings.ToUpper(root), ":")
}

// RootFromBackupName reverses BackupRootName
func RootFromBackupName(name string) (string, bool) {
	if name == singleRootName {
		return "/", true
	}
	letter := strings.TrimPrefix(name, backupNamePrefix)
	if len(name) != 2 || letter == name || !isLetter(letter[0]) {
		return "", false
	}
	return strings.ToUpper(letter) + ":", true
}
