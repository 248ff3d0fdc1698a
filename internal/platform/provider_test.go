package platform

import (
	"runtime"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNewProviderUnsupported(t *testing.T) {
	orig := NewProviderFunc
	NewProviderFunc = nil
	defer func() { NewProviderFunc = orig }()

	_, err := NewProvider()
	assert.ErrorIs(t, err, ErrUnsupported)
	assert.Contains(t, err.Error(), runtime.GOOS)
}

func TestNewProviderUsesRegisteredFunc(t *testing.T) {
	orig := NewProviderFunc
	want := &Provider{}
	NewProviderFunc = func() (*Provider, error) { return want, nil }
	defer func() { NewProviderFunc = orig }()

	got, err := NewProvider()
	assert.NoError(t, err)
	assert.Same(t, want, got)
}
