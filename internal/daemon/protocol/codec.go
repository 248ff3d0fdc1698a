package protocol

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/shelltint/shelltint/internal/models"
)

// MaxLineSize bounds a single encoded message.
const MaxLineSize = 64 * 1024

var (
	// ErrUnknownType is returned for a well-formed message whose type is not
	// recognised. Receivers log and ignore it.
	ErrUnknownType = errors.New("unknown message type")
	// ErrMissingField is returned when a required field is absent.
	ErrMissingField = errors.New("missing field")
)

type inbound struct {
	Type    string `json:"type"`
	Opacity *int   `json:"opacity,omitempty"`
	Enabled *bool  `json:"enabled,omitempty"`
}

type statusWire struct {
	Type string `json:"type"`
	Status
}

type errorWire struct {
	Type    string `json:"type"`
	Message string `json:"message"`
	Code    string `json:"code"`
}

// DecodeCommand parses one inbound line. Opacities outside 0-100 are clamped.
func DecodeCommand(line []byte) (Command, error) {
	var in inbound
	if err := json.Unmarshal(line, &in); err != nil {
		return nil, fmt.Errorf("malformed message: %w", err)
	}

	switch in.Type {
	case "":
		return nil, fmt.Errorf("%w: type", ErrMissingField)
	case TypeSetTaskbarOpacity, TypeSetStartOpacity:
		if in.Opacity == nil {
			return nil, fmt.Errorf("%w: %s.opacity", ErrMissingField, in.Type)
		}
		return SetOpacity{Surface: surfaceOf(in.Type), Opacity: models.ClampOpacity(*in.Opacity)}, nil
	case TypeSetTaskbarEnabled, TypeSetStartEnabled:
		if in.Enabled == nil {
			return nil, fmt.Errorf("%w: %s.enabled", ErrMissingField, in.Type)
		}
		return SetEnabled{Surface: surfaceOf(in.Type), Enabled: *in.Enabled}, nil
	case TypeGetStatus:
		return GetStatus{}, nil
	case TypeShutdown:
		return Shutdown{}, nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownType, in.Type)
	}
}

func surfaceOf(typ string) Surface {
	switch typ {
	case TypeSetStartOpacity, TypeSetStartEnabled:
		return Start
	default:
		return Taskbar
	}
}

// EncodeCommand renders c as one newline-terminated line.
func EncodeCommand(c Command) ([]byte, error) {
	var in inbound
	switch c := c.(type) {
	case SetOpacity:
		in.Type = TypeSetTaskbarOpacity
		if c.Surface == Start {
			in.Type = TypeSetStartOpacity
		}
		in.Opacity = &c.Opacity
	case SetEnabled:
		in.Type = TypeSetTaskbarEnabled
		if c.Surface == Start {
			in.Type = TypeSetStartEnabled
		}
		in.Enabled = &c.Enabled
	case GetStatus:
		in.Type = TypeGetStatus
	case Shutdown:
		in.Type = TypeShutdown
	default:
		return nil, fmt.Errorf("%w: %T", ErrUnknownType, c)
	}
	return marshalLine(in)
}

// EncodeMessage renders m as one newline-terminated line.
func EncodeMessage(m Message) ([]byte, error) {
	switch m := m.(type) {
	case StatusUpdate:
		return marshalLine(statusWire{Type: TypeStatusUpdate, Status: m.Status})
	case Error:
		return marshalLine(errorWire{Type: TypeError, Message: m.Message, Code: m.Code})
	default:
		return nil, fmt.Errorf("%w: %T", ErrUnknownType, m)
	}
}

// DecodeMessage parses one outbound line.
func DecodeMessage(line []byte) (Message, error) {
	var head struct {
		Type string `json:"type"`
	}
	if err := json.Unmarshal(line, &head); err != nil {
		return nil, fmt.Errorf("malformed message: %w", err)
	}

	switch head.Type {
	case TypeStatusUpdate:
		var w statusWire
		if err := json.Unmarshal(line, &w); err != nil {
			return nil, fmt.Errorf("malformed status update: %w", err)
		}
		return StatusUpdate{Status: w.Status}, nil
	case TypeError:
		var w errorWire
		if err := json.Unmarshal(line, &w); err != nil {
			return nil, fmt.Errorf("malformed error message: %w", err)
		}
		return Error{Message: w.Message, Code: w.Code}, nil
	case "":
		return nil, fmt.Errorf("%w: type", ErrMissingField)
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownType, head.Type)
	}
}

func marshalLine(v any) ([]byte, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("failed to encode message: %w", err)
	}
	return append(data, '\n'), nil
}
