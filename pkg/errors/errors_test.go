package errors

import (
	stderr "errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestErrorWrap(t *testing.T) {
	sentinel := New("something went wrong")
	cause := fmt.Errorf("root cause")

	wrapped := sentinel.Wrap(cause)
	require.Error(t, wrapped)

	assert.True(t, Is(wrapped, sentinel))
	assert.True(t, stderr.Is(wrapped, cause))
	assert.Contains(t, wrapped.Error(), "something went wrong")
	assert.Contains(t, wrapped.Error(), "root cause")

	// the sentinel itself must remain unwrapped
	assert.NoError(t, sentinel.Unwrap())
}

func TestErrorWrapMessage(t *testing.T) {
	sentinel := New("invalid name")
	wrapped := sentinel.WrapMessage("name %q contains %q", "a/b", "/")

	assert.True(t, Is(wrapped, sentinel))
	assert.Contains(t, wrapped.Error(), `"a/b"`)
}

func TestErrorAs(t *testing.T) {
	sentinel := New("kind")
	wrapped := sentinel.Wrap(fmt.Errorf("cause"))

	var target *Error
	require.True(t, As(wrapped, &target))
	assert.True(t, Is(target, sentinel))
}
