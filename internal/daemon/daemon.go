// Package daemon assembles and runs the gridzones process: the X
// connections, the engine, hotkey bindings, the IPC server, and the
// periodic reconciler.
package daemon

import (
	"context"
	"fmt"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"strconv"
	"strings"
	"syscall"

	"github.com/1broseidon/gridzones/internal/config"
	"github.com/1broseidon/gridzones/internal/engine"
	"github.com/1broseidon/gridzones/internal/eventlog"
	"github.com/1broseidon/gridzones/internal/hotkeys"
	"github.com/1broseidon/gridzones/internal/ipc"
	"github.com/1broseidon/gridzones/internal/memory"
	"github.com/1broseidon/gridzones/internal/platform"
	"github.com/1broseidon/gridzones/internal/runtimepath"
	"github.com/1broseidon/gridzones/internal/snapshot"
	"github.com/1broseidon/gridzones/internal/x11"
)

// Run starts the daemon in the foreground and blocks until a termination
// signal or an IPC shutdown command arrives. configPath overrides the
// default config location; empty means ~/.config/gridzones/config.yaml.
func Run(configPath string) error {
	cfg, err := loadConfig(configPath)
	if err != nil {
		return fmt.Errorf("load configuration: %w", err)
	}
	log.Printf("Configuration loaded (%d zones)", len(cfg.Zones))

	logger := newLogger(cfg.LogLevel)

	sess := cfg.ResolveXSession()
	if warning, err := sess.Check(); err != nil {
		return err
	} else if warning != "" {
		log.Printf("Warning: %s", warning)
	}
	if sess.XAuthority != "" && sess.XAuthoritySource == "config" {
		// xgb reads XAUTHORITY from the environment at connect time.
		os.Setenv("XAUTHORITY", sess.XAuthority)
	}
	log.Printf("Using display %s (from %s)", sess.Display, sess.DisplaySource)

	removePID, err := writePIDFile()
	if err != nil {
		return err
	}
	defer removePID()

	// Connect to the X server
	conn, err := x11.NewConnectionDisplay(sess.Display)
	if err != nil {
		return fmt.Errorf("connect to display %s: %w", sess.Display, err)
	}
	defer conn.Close()

	// Durable position memory. Failure degrades to a memoryless daemon
	// rather than refusing to start.
	var store engine.PlacementStore
	if cfg.PositionMemory.Enabled {
		mem, err := openMemory(cfg)
		if err != nil {
			log.Printf("Warning: position memory unavailable: %v", err)
		} else {
			defer mem.Close()
			store = mem
		}
	}

	actions, err := eventlog.New(actionLogConfig(cfg))
	if err != nil {
		log.Printf("Warning: action log unavailable: %v", err)
	}
	defer actions.Close()

	sched := platform.NewTimerScheduler()
	eng := engine.New(engine.Deps{
		Config:  cfg,
		Windows: conn,
		Screens: conn,
		Sched:   sched,
		Store:   store,
		Actions: actions,
		Log:     logger,
	})
	eng.Rescan()
	defer eng.Close()
	log.Println("Engine initialized")

	// Window and screen events arrive on a dedicated connection so the
	// request connection never stalls the event stream.
	watcher, err := x11.NewWatcher(sess.Display)
	if err != nil {
		return fmt.Errorf("start event watcher: %w", err)
	}
	defer watcher.Close()
	watcher.OnMap = eng.OnWindowCreated
	watcher.OnDestroy = eng.OnWindowDestroyed
	watcher.OnConfigure = eng.OnWindowConfigured
	watcher.OnScreenChange = eng.OnDisplayChange
	go watcher.Run()

	hk := hotkeys.NewHandler(conn.XUtil, conn.Root, eng, logger)
	hk.Bind(cfg)

	snaps, err := snapshot.NewStore("")
	if err != nil {
		return fmt.Errorf("open snapshot store: %w", err)
	}

	reloadCh := make(chan *config.Config, 1)
	shutdownCh := make(chan struct{}, 1)

	server, err := ipc.NewServer(eng, snaps, configPath, reloadCh, shutdownCh, logger)
	if err != nil {
		return fmt.Errorf("create IPC server: %w", err)
	}
	if err := server.Start(); err != nil {
		return fmt.Errorf("start IPC server: %w", err)
	}
	defer server.Stop()

	// Immediate pass cleans up state left by a previous daemon lifecycle.
	rec := NewReconciler(eng, sched, cfg, logger)
	rec.ReconcileNow()

	recCtx, recCancel := context.WithCancel(context.Background())
	defer recCancel()
	go rec.Run(recCtx)

	applyReload := func(newCfg *config.Config) {
		eng.Reload(newCfg)
		hk.Rebind(newCfg)
		log.Println("Config reloaded")
	}

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM, syscall.SIGHUP)

	go func() {
		for {
			select {
			case sig := <-sigCh:
				switch sig {
				case syscall.SIGHUP:
					log.Println("Received SIGHUP, reloading config...")
					newCfg, err := loadConfig(configPath)
					if err != nil {
						log.Printf("Config reload failed: %v", err)
						continue
					}
					applyReload(newCfg)
				case os.Interrupt, syscall.SIGTERM:
					log.Println("Shutting down gridzones daemon...")
					conn.Quit()
					return
				}
			case newCfg := <-reloadCh:
				applyReload(newCfg)
			case <-shutdownCh:
				log.Println("Shutdown requested via IPC")
				conn.Quit()
				return
			}
		}
	}()

	log.Println("gridzones daemon started successfully")
	conn.EventLoop()
	log.Println("gridzones daemon stopped")
	return nil
}

func loadConfig(path string) (*config.Config, error) {
	if path == "" {
		return config.Load()
	}
	res, err := config.LoadFromPath(path)
	if err != nil {
		return nil, err
	}
	for _, w := range res.Warnings {
		log.Printf("Config warning: %s", w)
	}
	return res.Config, nil
}

func newLogger(level string) *slog.Logger {
	var l slog.Level
	switch strings.ToLower(level) {
	case "debug":
		l = slog.LevelDebug
	case "warn", "warning":
		l = slog.LevelWarn
	case "error":
		l = slog.LevelError
	default:
		l = slog.LevelInfo
	}
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: l}))
}

func openMemory(cfg *config.Config) (*memory.Store, error) {
	path := cfg.PositionMemory.Path
	if path == "" {
		var err error
		path, err = memory.DefaultPath()
		if err != nil {
			return nil, err
		}
	}
	return memory.Open(path)
}

func actionLogConfig(cfg *config.Config) eventlog.Config {
	path := cfg.EventLog.File
	if path == "" {
		if home, err := os.UserHomeDir(); err == nil {
			path = filepath.Join(home, ".local", "share", "gridzones", "actions.log")
		}
	}
	return eventlog.Config{
		Enabled:   cfg.EventLog.Enabled && path != "",
		Path:      path,
		MaxSizeMB: cfg.EventLog.MaxSizeMB,
		MaxFiles:  cfg.EventLog.MaxFiles,
	}
}

// writePIDFile records this process's PID and refuses to start when another
// live daemon already holds the file. Returns a cleanup func.
func writePIDFile() (func(), error) {
	path, err := runtimepath.PIDPath()
	if err != nil {
		return nil, fmt.Errorf("resolve pid file path: %w", err)
	}

	if data, err := os.ReadFile(path); err == nil {
		if pid, err := strconv.Atoi(strings.TrimSpace(string(data))); err == nil && pid > 0 && pid != os.Getpid() {
			if processAlive(pid) {
				return nil, fmt.Errorf("daemon already running (pid %d)", pid)
			}
		}
	}

	if err := os.WriteFile(path, []byte(strconv.Itoa(os.Getpid())+"\n"), 0o644); err != nil {
		return nil, fmt.Errorf("write pid file: %w", err)
	}
	return func() { os.Remove(path) }, nil
}

func processAlive(pid int) bool {
	err := syscall.Kill(pid, 0)
	return err == nil || err == syscall.EPERM
}
