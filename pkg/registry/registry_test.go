package registry

import (
	"testing"

	"github.com/arthur-debert/stowaway/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegisterAndGet(t *testing.T) {
	reg := New[int]("number")
	require.NoError(t, reg.Register("two", 2))
	require.NoError(t, reg.Register("one", 1))

	v, err := reg.Get("two")
	require.NoError(t, err)
	assert.Equal(t, 2, v)
	assert.Equal(t, []string{"one", "two"}, reg.Names())
}

func TestRegisterRejectsDuplicatesAndEmptyNames(t *testing.T) {
	reg := New[int]("number")
	require.NoError(t, reg.Register("one", 1))

	assert.True(t, errors.IsErrorCode(reg.Register("one", 11), errors.ErrInvalidInput))
	assert.True(t, errors.IsErrorCode(reg.Register("", 0), errors.ErrInvalidInput))
}

func TestGetUnknown(t *testing.T) {
	reg := New[string]("backend")
	MustRegister(reg, "dir", "d")

	_, err := reg.Get("sqlite")
	require.Error(t, err)
	assert.True(t, errors.IsErrorCode(err, errors.ErrNotFound))
	assert.Equal(t, []string{"dir"}, errors.GetErrorDetails(err)["known"])
	assert.Contains(t, err.Error(), `unknown backend "sqlite"`)
}

func TestMustRegisterPanicsOnDuplicate(t *testing.T) {
	reg := New[int]("number")
	MustRegister(reg, "one", 1)
	assert.Panics(t, func() { MustRegister(reg, "one", 1) })
}
