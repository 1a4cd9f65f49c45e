package pathkey

import (
	"runtime"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSingleRoot(t *testing.T) {
	s := SingleRoot{}

	root, rest, ok := s.Split(New("/etc/app/app.conf"))
	assert.True(t, ok)
	assert.Equal(t, "/", root)
	assert.Equal(t, "etc/app/app.conf", rest)

	_, _, ok = s.Split(New("etc/app.conf"))
	assert.False(t, ok)

	if runtime.GOOS != "windows" {
		assert.Equal(t, "/etc/app/app.conf", s.Join(root, rest))
	}
	assert.Equal(t, "", s.Volume("/opt/app"))
}

func TestDriveLetter(t *testing.T) {
	s := DriveLetter{}

	root, rest, ok := s.Split(New(`d:\data\app.ini`))
	assert.True(t, ok)
	assert.Equal(t, "D:", root)
	assert.Equal(t, "data/app.ini", rest)

	_, _, ok = s.Split(New("C:relative"))
	assert.False(t, ok)
	_, _, ok = s.Split(New("/no/drive"))
	assert.False(t, ok)

	assert.Equal(t, "C:", s.Volume(`c:\deploy`))
	assert.Equal(t, "", s.Volume("/deploy"))
}

func TestBackupRootNames(t *testing.T) {
	tests := []struct {
		root string
		name string
	}{
		{"/", "_root"},
		{"C:", "_C"},
		{"d:", "_D"},
	}

	for _, tt := range tests {
		t.Run(tt.root, func(t *testing.T) {
			assert.Equal(t, tt.name, BackupRootName(tt.root))

			back, ok := RootFromBackupName(tt.name)
			assert.True(t, ok)
			assert.Equal(t, BackupRootName(back), tt.name)
		})
	}

	for _, bad := range []string{"root", "_", "_CD", "_1"} {
		_, ok := RootFromBackupName(bad)
		assert.False(t, ok, bad)
	}
}
