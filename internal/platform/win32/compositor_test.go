//go:build windows

package win32

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shelltint/shelltint/internal/daemon/pipeline"
)

func TestVisualAlpha(t *testing.T) {
	tests := []struct {
		opacity float64
		want    byte
	}{
		{0, 0},
		{0.5, 128},
		{0.75, 191},
		{1, 255},
		{1.4, 255},
		{-1, 0},
	}
	for _, tt := range tests {
		v := &layeredVisual{opacity: tt.opacity}
		assert.Equal(t, tt.want, v.alpha(), "opacity %v", tt.opacity)
	}
}

func TestVisualStagesUntilBound(t *testing.T) {
	v := &layeredVisual{}
	require.NoError(t, v.SetOpacity(0.4))
	require.NoError(t, v.SetContent(pipeline.Color{R: 10}, 100, 40))

	assert.True(t, v.dirty)
	assert.True(t, v.hasContent)
	assert.Equal(t, uint8(10), v.color.R)
}

func TestReleasedObjectsRefuseWork(t *testing.T) {
	dev := newLayeredDevice()
	v, err := dev.CreateVisual()
	require.NoError(t, err)

	require.NoError(t, v.Close())
	assert.ErrorIs(t, v.SetOpacity(0.5), errReleased)

	require.NoError(t, dev.Close())
	_, err = dev.CreateVisual()
	assert.ErrorIs(t, err, errReleased)
	assert.ErrorIs(t, dev.Commit(), errReleased)
}
