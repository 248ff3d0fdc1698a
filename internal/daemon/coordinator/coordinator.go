// Package coordinator routes locator events and control commands to the
// presentation pipeline, the settings store and the control channel. It has
// no detection or rendering logic of its own.
package coordinator

import (
	"context"
	"sync"

	"go.uber.org/zap"

	"github.com/shelltint/shelltint/internal/daemon/locator"
	"github.com/shelltint/shelltint/internal/daemon/pipeline"
	"github.com/shelltint/shelltint/internal/daemon/protocol"
	"github.com/shelltint/shelltint/internal/models"
)

// Presenter is the pipeline surface the coordinator drives. Every call is
// made on the UI thread through the Scheduler.
type Presenter interface {
	SetOpacity(s pipeline.Surface, v float64)
	SetEnabled(s pipeline.Surface, enabled bool)
	Reposition(s pipeline.Surface, r models.Rect)
	Hide(s pipeline.Surface)
}

// Locator is the part of the target locator the coordinator reads and toggles.
type Locator interface {
	Taskbar() locator.TaskbarRecord
	StartMenu() locator.StartRecord
	StartEnabled() bool
	SetStartEnabled(enabled bool)
}

// Store persists settings.
type Store interface {
	Get() models.Settings
	Update(fn func(s *models.Settings)) (models.Settings, error)
	Reload() (models.Settings, bool, error)
}

// Pusher delivers outbound messages to the connected client, if any.
type Pusher interface {
	Push(m protocol.Message)
}

// Options wires a Coordinator.
type Options struct {
	Presenter Presenter
	Scheduler pipeline.Scheduler
	Locator   Locator
	Store     Store
	Pusher    Pusher
	// OnShutdown runs after a Shutdown command has been acknowledged.
	OnShutdown func()
}

// Coordinator is safe for concurrent use by the locator, listener and tray
// goroutines.
type Coordinator struct {
	presenter  Presenter
	sched      pipeline.Scheduler
	loc        Locator
	store      Store
	onShutdown func()
	log        *zap.Logger

	mu      sync.Mutex
	pusher  Pusher
	applied models.Settings

	shutdownOnce sync.Once
}

// New creates a coordinator. Call Seed before the first event.
func New(opts Options, log *zap.Logger) *Coordinator {
	return &Coordinator{
		presenter:  opts.Presenter,
		sched:      opts.Scheduler,
		loc:        opts.Locator,
		store:      opts.Store,
		pusher:     opts.Pusher,
		onShutdown: opts.OnShutdown,
		log:        log.Named("coordinator"),
	}
}

// SetPusher installs the outbound channel once the listener exists.
func (c *Coordinator) SetPusher(p Pusher) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.pusher = p
}

// Seed applies the stored settings to the pipeline and the locator.
func (c *Coordinator) Seed() {
	s := c.store.Get()

	c.mu.Lock()
	c.applied = s
	c.mu.Unlock()

	c.post(func() {
		c.presenter.SetOpacity(pipeline.Taskbar, models.OpacityFraction(s.TaskbarOpacity))
		c.presenter.SetOpacity(pipeline.Start, models.OpacityFraction(s.StartOpacity))
		c.presenter.SetEnabled(pipeline.Taskbar, s.TaskbarEnabled)
		c.presenter.SetEnabled(pipeline.Start, s.StartEnabled)
	})
	c.loc.SetStartEnabled(s.StartEnabled)

	c.log.Info("settings applied",
		zap.Int("taskbar_opacity", s.TaskbarOpacity),
		zap.Int("start_opacity", s.StartOpacity),
		zap.Bool("taskbar_enabled", s.TaskbarEnabled),
		zap.Bool("start_enabled", s.StartEnabled))
}

// Run dispatches locator events until ctx is done or events is closed.
func (c *Coordinator) Run(ctx context.Context, events <-chan locator.Event) {
	for {
		select {
		case <-ctx.Done():
			return
		case ev, ok := <-events:
			if !ok {
				return
			}
			c.HandleEvent(ev)
		}
	}
}

// HandleEvent routes one locator event and pushes a status snapshot.
func (c *Coordinator) HandleEvent(ev locator.Event) {
	switch ev := ev.(type) {
	case locator.TaskbarChanged:
		rec := ev.Record
		c.post(func() {
			if rec.Found {
				c.presenter.Reposition(pipeline.Taskbar, rec.Rect)
			} else {
				c.presenter.Hide(pipeline.Taskbar)
			}
		})
	case locator.StartShown:
		rect := ev.Record.Rect
		c.post(func() { c.presenter.Reposition(pipeline.Start, rect) })
	case locator.StartHidden:
		c.post(func() { c.presenter.Hide(pipeline.Start) })
	case locator.StartDetectionFailed:
		c.post(func() {
			c.presenter.SetEnabled(pipeline.Start, false)
			c.presenter.Hide(pipeline.Start)
		})
		c.log.Warn("start menu overlay disabled after unreliable detection")
		c.push(protocol.Error{
			Message: "Start menu detection unreliable",
			Code:    protocol.CodeStartDetectionFailed,
		})
	default:
		c.log.Warn("unhandled locator event", zap.Any("event", ev))
		return
	}
	c.PushStatus()
}

// HandleCommand executes one control command. Mutations are applied to the
// pipeline, persisted and followed by a status push.
func (c *Coordinator) HandleCommand(cmd protocol.Command) {
	switch cmd := cmd.(type) {
	case protocol.SetOpacity:
		c.setOpacity(cmd.Surface, models.ClampOpacity(cmd.Opacity))
	case protocol.SetEnabled:
		c.setEnabled(cmd.Surface, cmd.Enabled)
	case protocol.GetStatus:
	case protocol.Shutdown:
		c.log.Info("shutdown requested")
		c.PushStatus()
		c.shutdownOnce.Do(func() {
			if c.onShutdown != nil {
				c.onShutdown()
			}
		})
		return
	default:
		c.log.Warn("unhandled command", zap.Any("command", cmd))
		return
	}
	c.PushStatus()
}

func (c *Coordinator) setOpacity(s protocol.Surface, pct int) {
	surface := pipelineSurface(s)
	c.post(func() { c.presenter.SetOpacity(surface, models.OpacityFraction(pct)) })

	c.persist(func(st *models.Settings) {
		if s == protocol.Start {
			st.StartOpacity = pct
		} else {
			st.TaskbarOpacity = pct
		}
	})
}

func (c *Coordinator) setEnabled(s protocol.Surface, enabled bool) {
	surface := pipelineSurface(s)
	c.post(func() {
		c.presenter.SetEnabled(surface, enabled)
		if surface == pipeline.Start && !enabled {
			c.presenter.Hide(pipeline.Start)
		}
	})
	if s == protocol.Start {
		c.loc.SetStartEnabled(enabled)
	}

	c.persist(func(st *models.Settings) {
		if s == protocol.Start {
			st.StartEnabled = enabled
		} else {
			st.TaskbarEnabled = enabled
		}
	})
}

// persist saves a mutation. A failed save is logged and the runtime change
// stands.
func (c *Coordinator) persist(fn func(s *models.Settings)) {
	next, err := c.store.Update(fn)
	if err != nil {
		c.log.Warn("failed to save settings", zap.Error(err))
		return
	}
	c.mu.Lock()
	c.applied = next
	c.mu.Unlock()
}

// ReloadSettings re-reads the settings file and applies the fields that
// differ from what is already in effect.
func (c *Coordinator) ReloadSettings() {
	next, changed, err := c.store.Reload()
	if err != nil {
		c.log.Warn("failed to reload settings", zap.Error(err))
		return
	}
	if !changed {
		return
	}

	c.mu.Lock()
	prev := c.applied
	c.applied = next
	c.mu.Unlock()
	if prev == next {
		return
	}

	c.log.Info("settings file changed, applying")
	c.post(func() {
		if prev.TaskbarOpacity != next.TaskbarOpacity {
			c.presenter.SetOpacity(pipeline.Taskbar, models.OpacityFraction(next.TaskbarOpacity))
		}
		if prev.StartOpacity != next.StartOpacity {
			c.presenter.SetOpacity(pipeline.Start, models.OpacityFraction(next.StartOpacity))
		}
		if prev.TaskbarEnabled != next.TaskbarEnabled {
			c.presenter.SetEnabled(pipeline.Taskbar, next.TaskbarEnabled)
		}
		if prev.StartEnabled != next.StartEnabled {
			c.presenter.SetEnabled(pipeline.Start, next.StartEnabled)
			if !next.StartEnabled {
				c.presenter.Hide(pipeline.Start)
			}
		}
	})
	if prev.StartEnabled != next.StartEnabled {
		c.loc.SetStartEnabled(next.StartEnabled)
	}
	c.PushStatus()
}

// Status builds a snapshot from the locator records and the stored settings.
// Start enabled is the locator's runtime flag, which a detection failure
// clears without touching the settings.
func (c *Coordinator) Status() protocol.Status {
	tb := c.loc.Taskbar()
	sm := c.loc.StartMenu()
	s := c.store.Get()

	return protocol.Status{
		Taskbar: protocol.TaskbarStatus{
			Found:    tb.Found,
			Edge:     tb.Edge.String(),
			AutoHide: tb.AutoHide,
			Enabled:  s.TaskbarEnabled,
			Opacity:  s.TaskbarOpacity,
		},
		Start: protocol.StartStatus{
			Detected:   sm.Detected,
			IsOpen:     sm.IsOpen,
			Confidence: sm.Confidence,
			Enabled:    c.loc.StartEnabled(),
			Opacity:    s.StartOpacity,
		},
	}
}

// PushStatus sends a StatusUpdate to the client.
func (c *Coordinator) PushStatus() {
	c.push(protocol.StatusUpdate{Status: c.Status()})
}

func (c *Coordinator) push(m protocol.Message) {
	c.mu.Lock()
	p := c.pusher
	c.mu.Unlock()
	if p != nil {
		p.Push(m)
	}
}

func (c *Coordinator) post(fn func()) {
	if !c.sched.Post(fn) {
		c.log.Debug("ui queue closed, dropping pipeline update")
	}
}

func pipelineSurface(s protocol.Surface) pipeline.Surface {
	if s == protocol.Start {
		return pipeline.Start
	}
	return pipeline.Taskbar
}
