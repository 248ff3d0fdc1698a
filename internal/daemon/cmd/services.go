package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"
	"sync"

	"go.uber.org/zap"

	"github.com/shelltint/shelltint/internal/config"
	"github.com/shelltint/shelltint/internal/daemon/coordinator"
	"github.com/shelltint/shelltint/internal/daemon/locator"
	"github.com/shelltint/shelltint/internal/daemon/pipeline"
	"github.com/shelltint/shelltint/internal/daemon/server"
	"github.com/shelltint/shelltint/internal/daemon/uiloop"
	"github.com/shelltint/shelltint/internal/daemon/watcher"
	"github.com/shelltint/shelltint/internal/models"
	"github.com/shelltint/shelltint/internal/platform"
	_ "github.com/shelltint/shelltint/internal/platform/win32"
)

// services is one running daemon: UI thread, locator, coordinator, control
// channel and settings watcher.
type services struct {
	log      *zap.Logger
	provider *platform.Provider
	store    *config.Store
	queue    *uiloop.Queue
	ui       platform.UI
	loc      *locator.Locator
	coord    *coordinator.Coordinator
	srv      *server.Server
	watcher  *watcher.Watcher

	cancel   context.CancelFunc
	wg       sync.WaitGroup
	stopOnce sync.Once
}

// startServices brings the daemon up. shutdown is called (possibly more than
// once, from any goroutine) when something asks the daemon to exit.
func startServices(opts config.DaemonOptions, log *zap.Logger, shutdown func()) (_ *services, err error) {
	s := &services{log: log}
	defer func() {
		if err != nil {
			s.stop()
		}
	}()

	s.provider, err = platform.NewProvider()
	if err != nil {
		return nil, fmt.Errorf("failed to initialize platform: %w", err)
	}

	settingsPath, err := config.GlobalSettingsFile()
	if err != nil {
		return nil, err
	}
	s.store, err = config.OpenStore(settingsPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load settings: %w", err)
	}
	settings := s.store.Get()

	s.queue = uiloop.New(log, nil)

	s.loc, err = locator.New(s.provider.Shell, log, locator.Options{
		Settle:       opts.Settle,
		StartEnabled: settings.StartEnabled,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create locator: %w", err)
	}

	s.ui, err = s.provider.StartUI(platform.UIConfig{
		Queue:         s.queue,
		Tint:          pipeline.DefaultTint,
		OnShellChange: s.loc.ShellRestarted,
		Log:           log,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to start ui: %w", err)
	}

	s.coord = coordinator.New(coordinator.Options{
		Presenter:  s.ui.Pipeline(),
		Scheduler:  s.queue,
		Locator:    s.loc,
		Store:      s.store,
		OnShutdown: shutdown,
	}, log)

	socket, err := config.SocketPath()
	if err != nil {
		return nil, err
	}
	s.srv, err = server.New(socket, s.coord, log)
	if err != nil {
		return nil, fmt.Errorf("failed to create control channel: %w", err)
	}
	s.coord.SetPusher(s.srv)

	s.watcher, err = watcher.New(s.store.Path(), log)
	if err != nil {
		return nil, fmt.Errorf("failed to create settings watcher: %w", err)
	}
	if err := s.watcher.Start(); err != nil {
		// Hot reload is optional; the daemon runs without it.
		log.Warn("Settings hot reload disabled", zap.Error(err))
	}

	s.coord.Seed()
	s.loc.Start()

	ctx, cancel := context.WithCancel(context.Background())
	s.cancel = cancel

	s.wg.Add(3)
	go func() {
		defer s.wg.Done()
		s.coord.Run(ctx, s.loc.Events())
	}()
	go func() {
		defer s.wg.Done()
		s.reloadLoop(ctx)
	}()
	go func() {
		defer s.wg.Done()
		select {
		case <-ctx.Done():
		case <-s.ui.Done():
			log.Error("UI thread exited unexpectedly")
			shutdown()
		}
	}()

	if err := config.SaveDaemonInfo(models.NewDaemonInfo(socket, os.Getpid())); err != nil {
		return nil, fmt.Errorf("failed to write daemon info: %w", err)
	}

	go func() {
		if err := s.srv.Serve(); err != nil && !errors.Is(err, server.ErrServerClosed) {
			log.Error("Control channel failed", zap.Error(err))
			shutdown()
		}
	}()

	log.Info("Daemon started", zap.String("socket", socket), zap.Int("pid", os.Getpid()))
	return s, nil
}

func (s *services) reloadLoop(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case ev := <-s.watcher.Events():
			if ev.Type == watcher.EventSettingsChanged {
				s.coord.ReloadSettings()
			}
		}
	}
}

// stop tears the daemon down: clients first, then producers, then the UI
// thread, which releases the pipeline. Safe on a partially started daemon.
func (s *services) stop() {
	s.stopOnce.Do(func() {
		if s.srv != nil {
			s.srv.Stop()
		}
		if s.watcher != nil {
			s.watcher.Stop()
		}
		if s.loc != nil {
			s.loc.Stop()
		}
		if s.cancel != nil {
			s.cancel()
		}
		s.wg.Wait()
		if s.ui != nil {
			s.ui.Stop()
		}
		if s.queue != nil {
			s.queue.Close()
		}
		if err := config.RemoveDaemonInfo(); err != nil {
			s.log.Warn("Failed to remove daemon info", zap.Error(err))
		}
	})
}

// trayState returns the tray's view of the running daemon.
func (s *services) trayState(shutdown func()) *server.TrayState {
	return server.NewTrayState(s.srv, s.coord, s.provider.AutoStart, autoStartCommand(), shutdown, s.log)
}

// autoStartCommand is the login entry for this executable.
func autoStartCommand() string {
	exe, err := os.Executable()
	if err != nil {
		return ""
	}
	return `"` + exe + `"`
}
