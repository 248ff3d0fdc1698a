package cmd

import (
	"os"
	"os/signal"
	"sync"
	"syscall"

	"go.uber.org/zap"

	"github.com/shelltint/shelltint/internal/config"
	"github.com/shelltint/shelltint/internal/daemon/protocol"
	"github.com/shelltint/shelltint/internal/daemon/tray"
)

// runForeground runs the daemon without a system tray, blocking on signals.
func runForeground(opts config.DaemonOptions, log *zap.Logger) {
	quit := make(chan struct{})
	var quitOnce sync.Once
	shutdown := func() { quitOnce.Do(func() { close(quit) }) }

	svc, err := startServices(opts, log, shutdown)
	if err != nil {
		log.Fatal("Failed to start daemon", zap.Error(err))
	}

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(sigCh)

	select {
	case sig := <-sigCh:
		log.Info("Received signal, shutting down", zap.Stringer("signal", sig))
	case <-quit:
		log.Info("Shutdown requested")
	}

	svc.stop()
	log.Info("Daemon stopped")
}

// runWithTray runs the daemon with a system tray icon on the main goroutine.
func runWithTray(opts config.DaemonOptions, log *zap.Logger) {
	var (
		mu  sync.Mutex
		svc *services
	)

	onStart := func() {
		s, err := startServices(opts, log, tray.Quit)
		if err != nil {
			log.Fatal("Failed to start daemon", zap.Error(err))
		}
		mu.Lock()
		svc = s
		mu.Unlock()

		// Quit the tray on SIGINT/SIGTERM.
		go func() {
			sigCh := make(chan os.Signal, 1)
			signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
			sig := <-sigCh
			log.Info("Received signal, shutting down", zap.Stringer("signal", sig))
			tray.Quit()
		}()
	}

	onExit := func() {
		mu.Lock()
		s := svc
		mu.Unlock()
		if s != nil {
			s.stop()
		}
		log.Info("Daemon stopped")
	}

	// The tray needs a DaemonState before the services exist, so the lazy
	// wrapper defers to the real TrayState once onStart has run.
	lazyState := &lazyDaemonState{get: func() tray.DaemonState {
		mu.Lock()
		defer mu.Unlock()
		if svc == nil {
			return nil
		}
		return svc.trayState(tray.Quit)
	}}

	// Blocks the main goroutine until the tray exits.
	tray.Run(lazyState, log, onStart, onExit)
}

// lazyDaemonState forwards to the running daemon, or reports an idle state
// while it is still starting.
type lazyDaemonState struct {
	get func() tray.DaemonState
}

func (l *lazyDaemonState) Status() protocol.Status {
	if s := l.get(); s != nil {
		return s.Status()
	}
	return protocol.Status{}
}

func (l *lazyDaemonState) ClientConnected() bool {
	if s := l.get(); s != nil {
		return s.ClientConnected()
	}
	return false
}

func (l *lazyDaemonState) SetTaskbarEnabled(enabled bool) {
	if s := l.get(); s != nil {
		s.SetTaskbarEnabled(enabled)
	}
}

func (l *lazyDaemonState) SetStartEnabled(enabled bool) {
	if s := l.get(); s != nil {
		s.SetStartEnabled(enabled)
	}
}

func (l *lazyDaemonState) AutoStartEnabled() bool {
	if s := l.get(); s != nil {
		return s.AutoStartEnabled()
	}
	return false
}

func (l *lazyDaemonState) SetAutoStart(enabled bool) error {
	if s := l.get(); s != nil {
		return s.SetAutoStart(enabled)
	}
	return nil
}

func (l *lazyDaemonState) RequestShutdown() {
	if s := l.get(); s != nil {
		s.RequestShutdown()
		return
	}
	tray.Quit()
}
