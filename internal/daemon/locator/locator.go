// Package locator finds the shell surfaces to tint: the taskbar, re-detected
// whenever the shell restarts, and the start menu, polled and scored.
package locator

import (
	"strings"
	"sync"
	"sync/atomic"
	"time"

	lru "github.com/hashicorp/golang-lru/v2"
	"go.uber.org/zap"
)

// Shell window classes and identities.
const (
	TaskbarClass        = "Shell_TrayWnd"
	StartClassPrimary   = "Windows.UI.Core.CoreWindow"
	StartClassSecondary = "Xaml_WindowedPopupClass"
	StartTitle          = "Start"
	StartExperienceHost = "startmenuexperiencehost.exe"
)

// MaxLowConfidenceStreak is how many consecutive low-confidence open polls
// are tolerated. One more disables start detection.
const MaxLowConfidenceStreak = 10

// Default timings.
const (
	DefaultPollInterval = 250 * time.Millisecond
	DefaultSettle       = 500 * time.Millisecond
)

const processCacheSize = 64

var startCriteria = Criteria{
	ClassNames:  []string{StartClassPrimary, StartClassSecondary},
	Titles:      []string{"", StartTitle},
	VisibleOnly: true,
}

// Options tunes a Locator. Zero values take the defaults.
type Options struct {
	PollInterval time.Duration
	Settle       time.Duration
	StartEnabled bool
}

// Locator tracks the taskbar and start menu and emits Events on changes.
// Records are exposed only as copies.
type Locator struct {
	shell    Shell
	log      *zap.Logger
	interval time.Duration
	settle   time.Duration
	procs    *lru.Cache[uint32, string]

	events chan Event
	stop   chan struct{}
	wg     sync.WaitGroup
	once   sync.Once

	startEnabled atomic.Bool

	mu           sync.RWMutex
	taskbar      TaskbarRecord
	start        StartRecord
	reportedOpen bool
	streak       int
}

// New creates a locator over shell. Call Start to begin polling.
func New(shell Shell, log *zap.Logger, opts Options) (*Locator, error) {
	if opts.PollInterval <= 0 {
		opts.PollInterval = DefaultPollInterval
	}
	if opts.Settle <= 0 {
		opts.Settle = DefaultSettle
	}
	procs, err := lru.New[uint32, string](processCacheSize)
	if err != nil {
		return nil, err
	}

	l := &Locator{
		shell:    shell,
		log:      log.Named("locator"),
		interval: opts.PollInterval,
		settle:   opts.Settle,
		procs:    procs,
		events:   make(chan Event, 64),
		stop:     make(chan struct{}),
	}
	l.startEnabled.Store(opts.StartEnabled)
	return l, nil
}

// Events returns the channel events are delivered on.
func (l *Locator) Events() <-chan Event {
	return l.events
}

// Start runs an initial taskbar detection and launches the start menu monitor.
func (l *Locator) Start() {
	l.DetectTaskbar()

	l.wg.Add(1)
	go l.monitor()
}

// Stop signals the monitor and waits for it to exit. Safe to call more than once.
func (l *Locator) Stop() {
	l.once.Do(func() { close(l.stop) })
	l.wg.Wait()
}

// Taskbar returns the last taskbar record.
func (l *Locator) Taskbar() TaskbarRecord {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.taskbar
}

// StartMenu returns the last start menu record.
func (l *Locator) StartMenu() StartRecord {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.start
}

// StartEnabled reports whether start menu polling is active.
func (l *Locator) StartEnabled() bool {
	return l.startEnabled.Load()
}

// SetStartEnabled turns start menu detection on or off. Enabling clears the
// low-confidence streak; a detector disabled by a failure stays off until this
// is called with true.
func (l *Locator) SetStartEnabled(enabled bool) {
	l.mu.Lock()
	l.streak = 0
	if !enabled {
		l.reportedOpen = false
		l.start = StartRecord{}
	}
	l.mu.Unlock()

	if l.startEnabled.Swap(enabled) != enabled {
		l.log.Info("start menu detection toggled", zap.Bool("enabled", enabled))
	}
}

// DetectTaskbar runs one taskbar detection pass, stores it and emits
// TaskbarChanged.
func (l *Locator) DetectTaskbar() TaskbarRecord {
	rec := l.detectTaskbar()

	l.mu.Lock()
	l.taskbar = rec
	l.mu.Unlock()

	if rec.Found {
		l.log.Info("taskbar found",
			zap.Stringer("edge", rec.Edge),
			zap.Bool("auto_hide", rec.AutoHide),
			zap.Stringer("rect", rec.Rect))
	} else {
		l.log.Info("taskbar not found")
	}
	l.emit(TaskbarChanged{Record: rec})
	return rec
}

// ShellRestarted schedules a taskbar re-detection after the settle delay.
// It returns immediately.
func (l *Locator) ShellRestarted() {
	l.log.Warn("shell restarted, re-detecting taskbar", zap.Duration("settle", l.settle))

	l.wg.Add(1)
	go func() {
		defer l.wg.Done()
		select {
		case <-l.stop:
			return
		case <-time.After(l.settle):
		}
		l.DetectTaskbar()
	}()
}

func (l *Locator) detectTaskbar() TaskbarRecord {
	h, err := l.shell.FindTaskbar()
	if err != nil {
		l.log.Debug("taskbar lookup failed", zap.Error(err))
		return TaskbarRecord{}
	}
	if h == 0 || !l.shell.IsWindow(h) || !l.shell.IsVisible(h) {
		return TaskbarRecord{}
	}

	rect, err := l.shell.WindowRect(h)
	if err != nil {
		l.log.Debug("taskbar rect unavailable", zap.Error(err))
		return TaskbarRecord{}
	}
	screen, err := l.shell.ScreenSize()
	if err != nil {
		l.log.Debug("screen size unavailable", zap.Error(err))
		return TaskbarRecord{}
	}

	autoHide, err := l.shell.TaskbarAutoHide()
	if err != nil {
		l.log.Debug("app bar state unavailable", zap.Error(err))
		autoHide = false
	}

	return TaskbarRecord{
		Handle:   h,
		Rect:     rect,
		Edge:     ClassifyEdge(rect, screen),
		AutoHide: autoHide,
		Found:    true,
	}
}

func (l *Locator) monitor() {
	defer l.wg.Done()

	l.log.Info("start menu monitor started", zap.Duration("interval", l.interval))
	ticker := time.NewTicker(l.interval)
	defer ticker.Stop()

	for {
		select {
		case <-l.stop:
			l.log.Info("start menu monitor stopped")
			return
		case <-ticker.C:
			if !l.startEnabled.Load() {
				continue
			}
			for _, ev := range l.observe(l.detectStart()) {
				l.emit(ev)
			}
		}
	}
}

// detectStart probes for the start menu. Any query failure yields a
// not-open record.
func (l *Locator) detectStart() StartRecord {
	candidates, err := l.shell.FindCandidateWindows(startCriteria)
	if err != nil {
		l.log.Debug("window enumeration failed", zap.Error(err))
		return StartRecord{}
	}

	cand, class, ok := pickCandidate(candidates)
	if !ok || !cand.Visible {
		return StartRecord{}
	}

	rect, err := l.shell.WindowRect(cand.Handle)
	if err != nil {
		l.log.Debug("start rect unavailable", zap.Error(err))
		return StartRecord{}
	}
	screen, err := l.shell.ScreenSize()
	if err != nil {
		return StartRecord{}
	}
	if !ValidStartGeometry(rect, screen) {
		return StartRecord{}
	}

	conf := Score(Factors{
		Class:      class,
		Foreground: l.foregroundIsStartHost(),
		Geometry:   true,
		Visible:    cand.Visible,
	})

	return StartRecord{
		Handle:     cand.Handle,
		Rect:       rect,
		IsOpen:     true,
		Confidence: conf,
		Detected:   true,
	}
}

// pickCandidate prefers the first primary-class window, then the first
// secondary-class one.
func pickCandidate(cands []Candidate) (Candidate, ClassMatch, bool) {
	for _, class := range []string{StartClassPrimary, StartClassSecondary} {
		for _, c := range cands {
			if c.ClassName != class {
				continue
			}
			if c.Title != "" && c.Title != StartTitle {
				continue
			}
			if class == StartClassPrimary {
				return c, ClassPrimary, true
			}
			return c, ClassSecondary, true
		}
	}
	return Candidate{}, ClassNone, false
}

func (l *Locator) foregroundIsStartHost() bool {
	pid, err := l.shell.ForegroundProcessID()
	if err != nil || pid == 0 {
		return false
	}

	path, ok := l.procs.Get(pid)
	if !ok {
		path, err = l.shell.ProcessImagePath(pid)
		if err != nil {
			return false
		}
		l.procs.Add(pid, path)
	}
	return strings.Contains(strings.ToLower(path), StartExperienceHost)
}

// observe advances the open/closed state machine with one poll result and
// returns the events it produces.
func (l *Locator) observe(rec StartRecord) []Event {
	l.mu.Lock()
	defer l.mu.Unlock()

	var events []Event
	confident := rec.Confidence >= OpenThreshold

	switch {
	case !l.reportedOpen && rec.IsOpen && confident:
		l.reportedOpen = true
		l.streak = 0
		l.log.Info("start menu opened", zap.Float64("confidence", rec.Confidence))
		events = append(events, StartShown{Record: rec})
	case l.reportedOpen && !rec.IsOpen:
		l.reportedOpen = false
		l.log.Info("start menu closed")
		events = append(events, StartHidden{})
	}

	if rec.IsOpen && !confident {
		l.streak++
		if l.streak > MaxLowConfidenceStreak {
			l.log.Warn("start menu detection unreliable, disabling", zap.Int("polls", l.streak))
			l.startEnabled.Store(false)
			l.streak = 0
			l.reportedOpen = false
			events = append(events, StartDetectionFailed{})
		}
	} else {
		l.streak = 0
	}

	l.start = rec
	return events
}

// emit delivers ev unless the locator is stopping.
func (l *Locator) emit(ev Event) {
	select {
	case l.events <- ev:
	case <-l.stop:
	}
}
