//go:build windows

package tray

import (
	"bytes"
	"encoding/binary"
	"image/png"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shelltint/shelltint/internal/daemon/protocol"
)

func TestIconIsSingleEntryICO(t *testing.T) {
	data := iconData()
	require.Greater(t, len(data), 22)

	assert.Equal(t, uint16(0), binary.LittleEndian.Uint16(data[0:]))
	assert.Equal(t, uint16(1), binary.LittleEndian.Uint16(data[2:]), "type is icon")
	assert.Equal(t, uint16(1), binary.LittleEndian.Uint16(data[4:]), "one image")
	assert.Equal(t, byte(iconSize), data[6])

	size := binary.LittleEndian.Uint32(data[14:])
	offset := binary.LittleEndian.Uint32(data[18:])
	assert.Equal(t, uint32(22), offset)
	assert.Equal(t, int(size), len(data)-22)

	img, err := png.Decode(bytes.NewReader(data[offset:]))
	require.NoError(t, err)
	assert.Equal(t, iconSize, img.Bounds().Dx())
}

func TestFormatStatus(t *testing.T) {
	tests := []struct {
		name   string
		status protocol.Status
		want   string
	}{
		{
			name: "nothing found",
			want: "Taskbar: not found · Start: off",
		},
		{
			name: "watching",
			status: protocol.Status{
				Taskbar: protocol.TaskbarStatus{Found: true, Edge: "bottom"},
				Start:   protocol.StartStatus{Enabled: true},
			},
			want: "Taskbar: bottom · Start: watching",
		},
		{
			name: "open with auto-hide",
			status: protocol.Status{
				Taskbar: protocol.TaskbarStatus{Found: true, Edge: "left", AutoHide: true},
				Start:   protocol.StartStatus{Enabled: true, IsOpen: true, Confidence: 0.9},
			},
			want: "Taskbar: left (auto-hide) · Start: open (90%)",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, formatStatus(tt.status))
		})
	}
}

func TestFormatTooltip(t *testing.T) {
	s := protocol.Status{
		Taskbar: protocol.TaskbarStatus{Opacity: 75},
		Start:   protocol.StartStatus{Opacity: 50},
	}
	assert.Equal(t, "ShellTint · taskbar 75% · start 50%", formatTooltip(s))
}
