package locator

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/shelltint/shelltint/internal/models"
)

const (
	hTaskbar Handle = 10
	hStart   Handle = 20
	hPopup   Handle = 30
)

func newTestLocator(t *testing.T, shell Shell) *Locator {
	t.Helper()
	l, err := New(shell, zap.NewNop(), Options{
		PollInterval: 5 * time.Millisecond,
		Settle:       time.Millisecond,
		StartEnabled: true,
	})
	require.NoError(t, err)
	t.Cleanup(l.Stop)
	return l
}

func countFailures(events []Event) int {
	n := 0
	for _, ev := range events {
		if _, ok := ev.(StartDetectionFailed); ok {
			n++
		}
	}
	return n
}

func TestDetectTaskbar(t *testing.T) {
	shell := newFakeShell()
	shell.taskbar = hTaskbar
	shell.rects[hTaskbar] = models.Rect{Left: 0, Top: 1040, Right: 1920, Bottom: 1080}
	shell.autoHide = true

	l := newTestLocator(t, shell)
	rec := l.DetectTaskbar()

	assert.True(t, rec.Found)
	assert.Equal(t, models.EdgeBottom, rec.Edge)
	assert.True(t, rec.AutoHide)
	assert.Equal(t, rec, l.Taskbar())

	ev := <-l.Events()
	changed, ok := ev.(TaskbarChanged)
	require.True(t, ok)
	assert.Equal(t, rec, changed.Record)
}

func TestDetectTaskbarNotFound(t *testing.T) {
	tests := []struct {
		name  string
		setup func(s *fakeShell)
	}{
		{"absent", func(s *fakeShell) { s.taskbar = 0 }},
		{"lookup error", func(s *fakeShell) { s.taskbarErr = errQuery }},
		{"invisible", func(s *fakeShell) { s.hidden[hTaskbar] = true }},
		{"failed liveness", func(s *fakeShell) { s.dead[hTaskbar] = true }},
		{"no rect", func(s *fakeShell) { delete(s.rects, hTaskbar) }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			shell := newFakeShell()
			shell.taskbar = hTaskbar
			shell.rects[hTaskbar] = models.Rect{Left: 0, Top: 1040, Right: 1920, Bottom: 1080}
			tt.setup(shell)

			l := newTestLocator(t, shell)
			rec := l.DetectTaskbar()
			assert.False(t, rec.Found)

			ev := <-l.Events()
			assert.Equal(t, TaskbarChanged{Record: TaskbarRecord{}}, ev)
		})
	}
}

func TestShellRestartedRedetects(t *testing.T) {
	shell := newFakeShell()
	l := newTestLocator(t, shell)

	shell.mu.Lock()
	shell.taskbar = hTaskbar
	shell.rects[hTaskbar] = models.Rect{Left: 0, Top: 0, Right: 40, Bottom: 1080}
	shell.mu.Unlock()

	l.ShellRestarted()

	select {
	case ev := <-l.Events():
		changed, ok := ev.(TaskbarChanged)
		require.True(t, ok)
		assert.Equal(t, models.EdgeLeft, changed.Record.Edge)
	case <-time.After(time.Second):
		t.Fatal("no TaskbarChanged after shell restart")
	}
}

func TestObserveOpenThreshold(t *testing.T) {
	tests := []struct {
		name       string
		confidence float64
		wantShown  bool
	}{
		{"below threshold", 0.59, false},
		{"at threshold", 0.60, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			l := newTestLocator(t, newFakeShell())
			events := l.observe(StartRecord{IsOpen: true, Confidence: tt.confidence, Detected: true})

			shown := false
			for _, ev := range events {
				if _, ok := ev.(StartShown); ok {
					shown = true
				}
			}
			assert.Equal(t, tt.wantShown, shown)
		})
	}
}

func TestObserveOpenThenClosed(t *testing.T) {
	l := newTestLocator(t, newFakeShell())
	open := StartRecord{Handle: hStart, IsOpen: true, Confidence: 0.9, Detected: true}

	events := l.observe(open)
	require.Len(t, events, 1)
	assert.Equal(t, StartShown{Record: open}, events[0])

	assert.Empty(t, l.observe(open), "staying open emits nothing")

	events = l.observe(StartRecord{})
	require.Len(t, events, 1)
	assert.Equal(t, StartHidden{}, events[0])

	assert.Empty(t, l.observe(StartRecord{}), "staying closed emits nothing")
}

func TestObserveLowConfidenceNeverCloses(t *testing.T) {
	l := newTestLocator(t, newFakeShell())

	l.observe(StartRecord{IsOpen: true, Confidence: 0.5})
	events := l.observe(StartRecord{})
	assert.Empty(t, events, "a start menu that was never reported open is not reported closed")
}

func TestAutoDisable(t *testing.T) {
	low := StartRecord{IsOpen: true, Confidence: 0.4, Detected: true}

	t.Run("ten polls", func(t *testing.T) {
		l := newTestLocator(t, newFakeShell())
		var events []Event
		for i := 0; i < 10; i++ {
			events = append(events, l.observe(low)...)
		}
		assert.Equal(t, 0, countFailures(events))
		assert.True(t, l.StartEnabled())
	})

	t.Run("eleven polls", func(t *testing.T) {
		l := newTestLocator(t, newFakeShell())
		var events []Event
		for i := 0; i < 11; i++ {
			events = append(events, l.observe(low)...)
		}
		assert.Equal(t, 1, countFailures(events))
		assert.False(t, l.StartEnabled())
	})

	t.Run("streak resets on other outcomes", func(t *testing.T) {
		l := newTestLocator(t, newFakeShell())
		var events []Event
		for i := 0; i < 10; i++ {
			events = append(events, l.observe(low)...)
		}
		events = append(events, l.observe(StartRecord{})...)
		for i := 0; i < 10; i++ {
			events = append(events, l.observe(low)...)
		}
		assert.Equal(t, 0, countFailures(events))
	})

	t.Run("re-enable clears streak", func(t *testing.T) {
		l := newTestLocator(t, newFakeShell())
		for i := 0; i < 11; i++ {
			l.observe(low)
		}
		require.False(t, l.StartEnabled())

		l.SetStartEnabled(true)
		var events []Event
		for i := 0; i < 10; i++ {
			events = append(events, l.observe(low)...)
		}
		assert.Equal(t, 0, countFailures(events))
		assert.True(t, l.StartEnabled())
	})
}

func startShell() *fakeShell {
	shell := newFakeShell()
	shell.candidates = []Candidate{
		{Handle: hPopup, ClassName: StartClassSecondary, Title: "", Visible: true},
		{Handle: hStart, ClassName: StartClassPrimary, Title: "Start", Visible: true},
	}
	shell.rects[hStart] = models.Rect{Left: 600, Top: 300, Right: 1320, Bottom: 1000}
	shell.rects[hPopup] = models.Rect{Left: 600, Top: 300, Right: 1320, Bottom: 1000}
	shell.foreground = 4242
	shell.paths[4242] = `C:\Windows\SystemApps\Microsoft.Windows.StartMenuExperienceHost_cw5n1h2txyewy\StartMenuExperienceHost.exe`
	return shell
}

func TestDetectStart(t *testing.T) {
	t.Run("full match", func(t *testing.T) {
		l := newTestLocator(t, startShell())
		rec := l.detectStart()
		assert.True(t, rec.IsOpen)
		assert.True(t, rec.Detected)
		assert.Equal(t, hStart, rec.Handle, "primary class wins over earlier secondary")
		assert.Equal(t, 1.0, rec.Confidence)
	})

	t.Run("secondary without host", func(t *testing.T) {
		shell := startShell()
		shell.candidates = shell.candidates[:1]
		shell.foreground = 7
		l := newTestLocator(t, shell)
		rec := l.detectStart()
		assert.True(t, rec.IsOpen)
		assert.Equal(t, 0.6, rec.Confidence)
	})

	t.Run("implausible geometry", func(t *testing.T) {
		shell := startShell()
		shell.rects[hStart] = models.Rect{Left: 0, Top: 0, Right: 1920, Bottom: 1080}
		shell.candidates = shell.candidates[1:]
		l := newTestLocator(t, shell)
		assert.Equal(t, StartRecord{}, l.detectStart())
	})

	t.Run("wrong title", func(t *testing.T) {
		shell := startShell()
		shell.candidates = []Candidate{{Handle: hStart, ClassName: StartClassPrimary, Title: "Search", Visible: true}}
		l := newTestLocator(t, shell)
		assert.Equal(t, StartRecord{}, l.detectStart())
	})

	t.Run("enumeration failure", func(t *testing.T) {
		shell := startShell()
		shell.enumErr = errQuery
		l := newTestLocator(t, shell)
		assert.Equal(t, StartRecord{}, l.detectStart())
	})
}

func TestForegroundPathIsCached(t *testing.T) {
	shell := startShell()
	l := newTestLocator(t, shell)

	for i := 0; i < 5; i++ {
		assert.True(t, l.foregroundIsStartHost())
	}
	assert.Equal(t, 1, shell.pathCalls)
}

func TestMonitorEmitsShown(t *testing.T) {
	l := newTestLocator(t, startShell())
	l.Start()

	deadline := time.After(2 * time.Second)
	for {
		select {
		case ev := <-l.Events():
			if shown, ok := ev.(StartShown); ok {
				assert.Equal(t, hStart, shown.Record.Handle)
				assert.True(t, l.StartMenu().IsOpen)
				return
			}
		case <-deadline:
			t.Fatal("monitor never reported the start menu")
		}
	}
}

func TestMonitorIdleWhileDisabled(t *testing.T) {
	shell := startShell()
	l, err := New(shell, zap.NewNop(), Options{PollInterval: 2 * time.Millisecond})
	require.NoError(t, err)
	l.Start()

	<-l.Events() // initial TaskbarChanged
	time.Sleep(30 * time.Millisecond)
	l.Stop()

	assert.Empty(t, l.Events())
	assert.Equal(t, 0, shell.pathCalls)
}
