// Package pipeline owns the overlay visuals and applies opacity changes to
// them with throttled commits. A Pipeline is not safe for concurrent use: it
// is created on the UI thread and only ever called from there.
package pipeline

import (
	"errors"
	"fmt"
	"math"
	"time"

	"go.uber.org/zap"

	"github.com/shelltint/shelltint/internal/models"
)

// Surface names one tinted shell element.
type Surface int

// Surfaces.
const (
	Taskbar Surface = iota
	Start
	surfaceCount
)

func (s Surface) String() string {
	switch s {
	case Taskbar:
		return "taskbar"
	case Start:
		return "start"
	default:
		return fmt.Sprintf("surface(%d)", int(s))
	}
}

const (
	// CommitInterval is the minimum spacing between compositor commits.
	CommitInterval = 16 * time.Millisecond
	// Epsilon is the smallest opacity change that reaches the compositor.
	Epsilon = 0.01
)

// OverlayState is the per-surface opacity bookkeeping.
type OverlayState struct {
	OpacityTarget float64 // requested opacity, kept while disabled
	Enabled       bool
	Applied       float64 // last opacity handed to the visual
	Rect          models.Rect
	Visible       bool
}

// Config wires a Pipeline to its windows.
type Config struct {
	Taskbar Window
	Start   Window
	Tint    Color
	// Now overrides the clock used for commit throttling.
	Now func() time.Time
}

type overlay struct {
	window Window
	target Target
	visual Visual
	state  OverlayState
}

// Pipeline applies opacity and geometry to the taskbar and start overlays.
type Pipeline struct {
	dev      Device
	sched    Scheduler
	log      *zap.Logger
	now      func() time.Time
	tint     Color
	overlays [surfaceCount]*overlay

	lastCommit time.Time
	pending    bool
	closed     bool
}

// New creates one target and visual per surface and performs an initial
// commit. Both overlays start disabled at opacity 0. On failure everything
// acquired so far is released.
func New(dev Device, sched Scheduler, cfg Config, log *zap.Logger) (*Pipeline, error) {
	if cfg.Taskbar == nil || cfg.Start == nil {
		return nil, errors.New("pipeline needs both overlay windows")
	}
	now := cfg.Now
	if now == nil {
		now = time.Now
	}

	p := &Pipeline{
		dev:   dev,
		sched: sched,
		log:   log.Named("pipeline"),
		now:   now,
		tint:  cfg.Tint,
	}

	windows := [surfaceCount]Window{Taskbar: cfg.Taskbar, Start: cfg.Start}
	for s := Surface(0); s < surfaceCount; s++ {
		ov, err := p.acquire(windows[s])
		if err != nil {
			p.release()
			return nil, fmt.Errorf("failed to create %s overlay: %w", s, err)
		}
		p.overlays[s] = ov
	}

	if err := dev.Commit(); err != nil {
		p.release()
		return nil, fmt.Errorf("failed initial commit: %w", err)
	}
	p.lastCommit = p.now()

	p.log.Info("pipeline ready")
	return p, nil
}

func (p *Pipeline) acquire(w Window) (*overlay, error) {
	target, err := p.dev.CreateTarget(w)
	if err != nil {
		return nil, fmt.Errorf("failed to create target: %w", err)
	}
	visual, err := p.dev.CreateVisual()
	if err != nil {
		target.Close()
		return nil, fmt.Errorf("failed to create visual: %w", err)
	}
	if err := visual.SetOpacity(0); err != nil {
		visual.Close()
		target.Close()
		return nil, fmt.Errorf("failed to set opacity: %w", err)
	}
	if err := target.SetRoot(visual); err != nil {
		visual.Close()
		target.Close()
		return nil, fmt.Errorf("failed to set root visual: %w", err)
	}
	return &overlay{window: w, target: target, visual: visual}, nil
}

// State returns a copy of a surface's bookkeeping.
func (p *Pipeline) State(s Surface) OverlayState {
	return p.overlays[s].state
}

// Pending reports whether a deferred commit is queued.
func (p *Pipeline) Pending() bool {
	return p.pending
}

// SetOpacity sets the requested opacity for s, clamped to [0,1]. Changes
// smaller than Epsilon are ignored. A disabled surface stores the value and
// applies it when re-enabled.
func (p *Pipeline) SetOpacity(s Surface, v float64) {
	if p.closed {
		return
	}
	v = clamp01(v)
	ov := p.overlays[s]
	if math.Abs(ov.state.OpacityTarget-v) < Epsilon {
		return
	}
	ov.state.OpacityTarget = v
	if !ov.state.Enabled {
		return
	}
	p.apply(s, v)
}

// SetEnabled shows or suppresses the tint on s without touching the stored
// opacity.
func (p *Pipeline) SetEnabled(s Surface, enabled bool) {
	if p.closed {
		return
	}
	ov := p.overlays[s]
	ov.state.Enabled = enabled

	effective := 0.0
	if enabled {
		effective = ov.state.OpacityTarget
	}
	p.apply(s, effective)
	p.log.Info("overlay toggled", zap.Stringer("surface", s), zap.Bool("enabled", enabled))
}

// apply hands an effective opacity to the visual and schedules a commit.
func (p *Pipeline) apply(s Surface, effective float64) {
	ov := p.overlays[s]
	if math.Abs(ov.state.Applied-effective) < Epsilon {
		return
	}
	if err := ov.visual.SetOpacity(effective); err != nil {
		p.log.Warn("set opacity failed", zap.Stringer("surface", s), zap.Error(err))
		return
	}
	ov.state.Applied = effective
	p.log.Debug("opacity staged", zap.Stringer("surface", s), zap.Float64("opacity", effective))
	p.scheduleCommit()
}

// Reposition moves the overlay for s to exactly cover r and resizes its
// content. An empty rectangle hides the overlay instead.
func (p *Pipeline) Reposition(s Surface, r models.Rect) {
	if p.closed {
		return
	}
	if r.Empty() {
		p.Hide(s)
		return
	}

	ov := p.overlays[s]
	if err := ov.window.Move(r); err != nil {
		p.log.Warn("move overlay failed", zap.Stringer("surface", s), zap.Error(err))
		return
	}
	if r.Width() != ov.state.Rect.Width() || r.Height() != ov.state.Rect.Height() {
		if err := ov.visual.SetContent(p.tint, r.Width(), r.Height()); err != nil {
			p.log.Warn("resize content failed", zap.Stringer("surface", s), zap.Error(err))
		}
	}
	ov.state.Rect = r
	ov.state.Visible = true
}

// Hide takes the overlay for s off the screen.
func (p *Pipeline) Hide(s Surface) {
	if p.closed {
		return
	}
	ov := p.overlays[s]
	if !ov.state.Visible {
		return
	}
	if err := ov.window.Hide(); err != nil {
		p.log.Warn("hide overlay failed", zap.Stringer("surface", s), zap.Error(err))
		return
	}
	ov.state.Visible = false
}

// scheduleCommit commits now when the last commit is at least CommitInterval
// old; otherwise it queues one deferred commit for the next loop iteration.
func (p *Pipeline) scheduleCommit() {
	if p.now().Sub(p.lastCommit) >= CommitInterval {
		p.commit()
		return
	}
	if p.pending {
		return
	}
	p.pending = true
	if !p.sched.Post(p.deferredCommit) {
		p.pending = false
	}
}

// deferredCommit always commits, whatever the elapsed time, unless an
// immediate commit already flushed the change.
func (p *Pipeline) deferredCommit() {
	if p.closed || !p.pending {
		return
	}
	p.commit()
}

func (p *Pipeline) commit() {
	if err := p.dev.Commit(); err != nil {
		p.log.Warn("commit failed", zap.Error(err))
	}
	p.lastCommit = p.now()
	p.pending = false
}

// Shutdown releases visuals, then targets, then the device. Later calls are no-ops.
func (p *Pipeline) Shutdown() {
	if p.closed {
		return
	}
	p.closed = true
	p.release()
	p.log.Info("pipeline shut down")
}

func (p *Pipeline) release() {
	for _, ov := range p.overlays {
		if ov != nil && ov.visual != nil {
			if err := ov.visual.Close(); err != nil {
				p.log.Warn("release visual failed", zap.Error(err))
			}
		}
	}
	for _, ov := range p.overlays {
		if ov != nil && ov.target != nil {
			if err := ov.target.Close(); err != nil {
				p.log.Warn("release target failed", zap.Error(err))
			}
		}
	}
	if err := p.dev.Close(); err != nil {
		p.log.Warn("release device failed", zap.Error(err))
	}
}

func clamp01(v float64) float64 {
	if math.IsNaN(v) || v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
