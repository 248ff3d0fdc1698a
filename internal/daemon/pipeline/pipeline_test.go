package pipeline

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/shelltint/shelltint/internal/daemon/uiloop"
	"github.com/shelltint/shelltint/internal/models"
)

var errCompositor = errors.New("compositor failure")

type fakeDevice struct {
	commits   int
	commitErr error
	targetErr error
	released  []string
	visuals   []*fakeVisual
	targets   []*fakeTarget
}

func (d *fakeDevice) CreateTarget(w Window) (Target, error) {
	if d.targetErr != nil {
		return nil, d.targetErr
	}
	t := &fakeTarget{dev: d, name: w.(*fakeWindow).name}
	d.targets = append(d.targets, t)
	return t, nil
}

func (d *fakeDevice) CreateVisual() (Visual, error) {
	v := &fakeVisual{dev: d}
	d.visuals = append(d.visuals, v)
	return v, nil
}

func (d *fakeDevice) Commit() error {
	d.commits++
	return d.commitErr
}

func (d *fakeDevice) Close() error {
	d.released = append(d.released, "device")
	return nil
}

type fakeTarget struct {
	dev  *fakeDevice
	name string
	root Visual
}

func (t *fakeTarget) SetRoot(v Visual) error { t.root = v; return nil }

func (t *fakeTarget) Close() error {
	t.dev.released = append(t.dev.released, "target:"+t.name)
	return nil
}

type fakeVisual struct {
	dev        *fakeDevice
	opacity    float64
	opacityErr error
	setCalls   int
	w, h       int
}

func (v *fakeVisual) SetOpacity(o float64) error {
	if v.opacityErr != nil {
		return v.opacityErr
	}
	v.opacity = o
	v.setCalls++
	return nil
}

func (v *fakeVisual) SetContent(_ Color, w, h int) error {
	v.w, v.h = w, h
	return nil
}

func (v *fakeVisual) Close() error {
	v.dev.released = append(v.dev.released, "visual")
	return nil
}

type fakeWindow struct {
	name  string
	rect  models.Rect
	shown bool
	moves int
	hides int
}

func (w *fakeWindow) Move(r models.Rect) error {
	w.rect = r
	w.shown = true
	w.moves++
	return nil
}

func (w *fakeWindow) Hide() error {
	w.shown = false
	w.hides++
	return nil
}

type clock struct{ t time.Time }

func (c *clock) now() time.Time          { return c.t }
func (c *clock) advance(d time.Duration) { c.t = c.t.Add(d) }

type harness struct {
	p       *Pipeline
	dev     *fakeDevice
	queue   *uiloop.Queue
	clock   *clock
	taskbar *fakeWindow
	start   *fakeWindow
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	h := &harness{
		dev:     &fakeDevice{},
		queue:   uiloop.New(zap.NewNop(), nil),
		clock:   &clock{t: time.Unix(1_700_000_000, 0)},
		taskbar: &fakeWindow{name: "taskbar"},
		start:   &fakeWindow{name: "start"},
	}
	p, err := New(h.dev, h.queue, Config{
		Taskbar: h.taskbar,
		Start:   h.start,
		Tint:    DefaultTint,
		Now:     h.clock.now,
	}, zap.NewNop())
	require.NoError(t, err)
	h.p = p
	return h
}

func (h *harness) visual(s Surface) *fakeVisual {
	return h.dev.visuals[s]
}

func TestNewCommitsOnce(t *testing.T) {
	h := newHarness(t)
	assert.Equal(t, 1, h.dev.commits)
	assert.Len(t, h.dev.visuals, 2)
	assert.Same(t, h.visual(Taskbar), h.dev.targets[Taskbar].root)
	assert.False(t, h.p.State(Taskbar).Enabled)
}

func TestNewReleasesOnFailure(t *testing.T) {
	dev := &fakeDevice{targetErr: errCompositor}
	_, err := New(dev, uiloop.New(zap.NewNop(), nil), Config{
		Taskbar: &fakeWindow{name: "taskbar"},
		Start:   &fakeWindow{name: "start"},
	}, zap.NewNop())
	assert.ErrorIs(t, err, errCompositor)
	assert.Equal(t, []string{"device"}, dev.released)
}

func TestSetOpacityClamps(t *testing.T) {
	h := newHarness(t)
	h.p.SetEnabled(Taskbar, true)

	h.p.SetOpacity(Taskbar, 1.5)
	assert.Equal(t, 1.0, h.p.State(Taskbar).OpacityTarget)
	assert.Equal(t, 1.0, h.visual(Taskbar).opacity)

	h.clock.advance(time.Second)
	h.p.SetOpacity(Taskbar, -2)
	assert.Equal(t, 0.0, h.p.State(Taskbar).OpacityTarget)
}

func TestSetOpacityIdempotent(t *testing.T) {
	h := newHarness(t)
	h.p.SetEnabled(Taskbar, true)
	before := h.dev.commits

	h.clock.advance(100 * time.Millisecond)
	h.p.SetOpacity(Taskbar, 1.0)
	h.clock.advance(100 * time.Millisecond)
	h.p.SetOpacity(Taskbar, 1.0)
	h.clock.advance(100 * time.Millisecond)
	h.p.SetOpacity(Taskbar, 0.995)
	h.queue.Drain()

	assert.Equal(t, 1, h.dev.commits-before)
}

func TestCommitCoalescing(t *testing.T) {
	h := newHarness(t)
	h.p.SetEnabled(Start, true)
	before := h.dev.commits

	h.clock.advance(time.Millisecond)
	h.p.SetOpacity(Start, 0.3)
	h.clock.advance(5 * time.Millisecond)
	h.p.SetOpacity(Start, 0.6)

	assert.Equal(t, before, h.dev.commits, "nothing commits inside the throttle window")
	assert.True(t, h.p.Pending())
	assert.Equal(t, 1, h.queue.Len())

	h.queue.Drain()
	assert.Equal(t, before+1, h.dev.commits)
	assert.False(t, h.p.Pending())
	assert.Equal(t, 0.6, h.visual(Start).opacity)
}

func TestImmediateCommitAfterWindow(t *testing.T) {
	h := newHarness(t)
	h.p.SetEnabled(Taskbar, true)
	before := h.dev.commits

	h.clock.advance(CommitInterval)
	h.p.SetOpacity(Taskbar, 0.5)
	assert.Equal(t, before+1, h.dev.commits)
	assert.Equal(t, 0, h.queue.Len())
}

func TestDeferredCommitSkippedAfterImmediateFlush(t *testing.T) {
	h := newHarness(t)
	h.p.SetEnabled(Taskbar, true)

	h.clock.advance(time.Millisecond)
	h.p.SetOpacity(Taskbar, 0.2)
	require.True(t, h.p.Pending())

	h.clock.advance(time.Second)
	h.p.SetOpacity(Taskbar, 0.4)
	commits := h.dev.commits

	h.queue.Drain()
	assert.Equal(t, commits, h.dev.commits)
}

func TestSetEnabledPreservesTarget(t *testing.T) {
	h := newHarness(t)
	h.p.SetEnabled(Taskbar, true)
	h.clock.advance(time.Second)
	h.p.SetOpacity(Taskbar, 0.75)

	h.clock.advance(time.Second)
	h.p.SetEnabled(Taskbar, false)
	assert.Equal(t, 0.0, h.visual(Taskbar).opacity)
	assert.Equal(t, 0.75, h.p.State(Taskbar).OpacityTarget)

	h.clock.advance(time.Second)
	h.p.SetOpacity(Taskbar, 0.5)
	assert.Equal(t, 0.0, h.visual(Taskbar).opacity, "disabled surface only stores the target")

	h.clock.advance(time.Second)
	h.p.SetEnabled(Taskbar, true)
	assert.Equal(t, 0.5, h.visual(Taskbar).opacity)
}

func TestCompositorFailureKeepsDevice(t *testing.T) {
	h := newHarness(t)
	h.p.SetEnabled(Taskbar, true)
	h.visual(Taskbar).opacityErr = errCompositor
	before := h.dev.commits

	h.clock.advance(time.Second)
	h.p.SetOpacity(Taskbar, 0.5)
	assert.Equal(t, before, h.dev.commits)
	assert.Equal(t, 0.0, h.p.State(Taskbar).Applied)
	assert.Empty(t, h.dev.released)

	h.visual(Taskbar).opacityErr = nil
	h.p.SetEnabled(Taskbar, true)
	assert.Equal(t, 0.5, h.visual(Taskbar).opacity)
}

func TestCommitFailureIsLogged(t *testing.T) {
	h := newHarness(t)
	h.dev.commitErr = errCompositor
	h.p.SetEnabled(Start, true)
	h.clock.advance(time.Second)

	assert.NotPanics(t, func() { h.p.SetOpacity(Start, 0.4) })
	assert.False(t, h.p.Pending())
	assert.Empty(t, h.dev.released)
}

func TestRepositionAndHide(t *testing.T) {
	h := newHarness(t)
	r := models.Rect{Left: 600, Top: 300, Right: 1320, Bottom: 1000}

	h.p.Reposition(Start, r)
	assert.Equal(t, r, h.start.rect)
	assert.True(t, h.start.shown)
	assert.Equal(t, 720, h.visual(Start).w)
	assert.Equal(t, 700, h.visual(Start).h)
	assert.True(t, h.p.State(Start).Visible)

	h.p.Reposition(Start, models.Rect{})
	assert.False(t, h.start.shown)
	assert.Equal(t, 1, h.start.hides)
	assert.Equal(t, r, h.start.rect, "hidden overlay keeps its last geometry")

	h.p.Hide(Start)
	assert.Equal(t, 1, h.start.hides, "hiding twice touches the window once")
}

func TestShutdownOrder(t *testing.T) {
	h := newHarness(t)
	h.p.Shutdown()
	h.p.Shutdown()

	assert.Equal(t, []string{"visual", "visual", "target:taskbar", "target:start", "device"}, h.dev.released)

	h.p.SetOpacity(Taskbar, 0.9)
	assert.Equal(t, 1, h.dev.commits)
}

func TestDeferredCommitAfterShutdown(t *testing.T) {
	h := newHarness(t)
	h.p.SetEnabled(Taskbar, true)
	h.clock.advance(time.Millisecond)
	h.p.SetOpacity(Taskbar, 0.5)
	require.Equal(t, 1, h.queue.Len())

	h.p.Shutdown()
	h.queue.Drain()
	assert.Equal(t, 1, h.dev.commits)
}
