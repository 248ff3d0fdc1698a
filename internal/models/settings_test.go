package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNewSettingsDefaults(t *testing.T) {
	s := NewSettings()
	assert.Equal(t, 75, s.TaskbarOpacity)
	assert.Equal(t, 50, s.StartOpacity)
	assert.True(t, s.TaskbarEnabled)
	assert.True(t, s.StartEnabled)
	assert.Equal(t, 1, s.Version)
}

func TestNormalize(t *testing.T) {
	tests := []struct {
		name    string
		in      Settings
		want    Settings
		changed bool
	}{
		{
			name:    "in range",
			in:      Settings{Version: 1, TaskbarOpacity: 80, StartOpacity: 20},
			want:    Settings{Version: 1, TaskbarOpacity: 80, StartOpacity: 20},
			changed: false,
		},
		{
			name:    "clamps both",
			in:      Settings{Version: 1, TaskbarOpacity: 140, StartOpacity: -5},
			want:    Settings{Version: 1, TaskbarOpacity: 100, StartOpacity: 0},
			changed: true,
		},
		{
			name:    "missing version",
			in:      Settings{TaskbarOpacity: 10, StartOpacity: 10},
			want:    Settings{Version: 1, TaskbarOpacity: 10, StartOpacity: 10},
			changed: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := tt.in
			got := s.Normalize()
			assert.Equal(t, tt.changed, got)
			assert.Equal(t, tt.want, s)
		})
	}
}

func TestOpacityFraction(t *testing.T) {
	assert.Equal(t, 0.75, OpacityFraction(75))
	assert.Equal(t, 1.0, OpacityFraction(150))
	assert.Equal(t, 0.0, OpacityFraction(-1))
}

func TestEdgeString(t *testing.T) {
	assert.Equal(t, "bottom", EdgeBottom.String())
	assert.Equal(t, "left", EdgeLeft.String())
	assert.Equal(t, "unknown", Edge(42).String())
}
