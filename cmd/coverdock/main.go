package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"github.com/1broseidon/coverdock/internal/config"
	"github.com/1broseidon/coverdock/internal/daemon"
	"github.com/1broseidon/coverdock/internal/hotkeys"
	"github.com/1broseidon/coverdock/internal/ipc"
	"github.com/1broseidon/coverdock/internal/platform"
	"github.com/1broseidon/coverdock/internal/settings"
)

func main() {
	if len(os.Args) < 2 {
		printMainUsage(os.Stdout)
		os.Exit(0)
	}

	switch os.Args[1] {
	case "daemon":
		os.Exit(runDaemon(os.Args[2:]))
	case "status":
		os.Exit(runStatus(os.Args[2:]))
	case "monitors":
		os.Exit(runMonitors(os.Args[2:]))
	case "move":
		os.Exit(runMove(os.Args[2:]))
	case "resize":
		os.Exit(runResize(os.Args[2:]))
	case "center":
		os.Exit(runCenter(os.Args[2:]))
	case "on-top":
		os.Exit(runOnTop(os.Args[2:]))
	case "show":
		os.Exit(runShow(os.Args[2:]))
	case "events":
		os.Exit(runEvents(os.Args[2:]))
	case "reload":
		os.Exit(runReload(os.Args[2:]))
	case "config":
		os.Exit(runConfig(os.Args[2:]))
	case "mcp":
		os.Exit(runMCP(os.Args[2:]))
	case "help", "-h", "--help":
		printMainUsage(os.Stdout)
		os.Exit(0)
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n\n", os.Args[1])
		printMainUsage(os.Stderr)
		os.Exit(2)
	}
}

func printMainUsage(w io.Writer) {
	fmt.Fprintln(w, "Usage: coverdock <command> [options]")
	fmt.Fprintln(w, "")
	fmt.Fprintln(w, "Commands:")
	fmt.Fprintln(w, "  daemon              Start the coverdock daemon (foreground)")
	fmt.Fprintln(w, "  status              Show daemon and widget status")
	fmt.Fprintln(w, "  monitors            List monitors and their usable areas")
	fmt.Fprintln(w, "  events              Stream widget events")
	fmt.Fprintln(w, "  reload              Reload the daemon configuration")
	fmt.Fprintln(w, "")
	fmt.Fprintln(w, "  move X Y            Move the widget and save the position")
	fmt.Fprintln(w, "  resize SIZE         Resize the widget and save the size")
	fmt.Fprintln(w, "  center              Center the widget on its monitor")
	fmt.Fprintln(w, "  on-top on|off       Keep the widget above other windows")
	fmt.Fprintln(w, "  show settings|about Open a widget dialog")
	fmt.Fprintln(w, "")
	fmt.Fprintln(w, "  config validate     Validate configuration")
	fmt.Fprintln(w, "  config print        Print configuration")
	fmt.Fprintln(w, "  config explain      Explain a config value")
	fmt.Fprintln(w, "")
	fmt.Fprintln(w, "  mcp serve           Start MCP server (stdio transport)")
	fmt.Fprintln(w, "")
	fmt.Fprintln(w, "Run 'coverdock <command> --help' for command-specific options.")
}

func runDaemon(args []string) int {
	fs := flag.NewFlagSet("daemon", flag.ContinueOnError)
	fs.SetOutput(os.Stderr)
	configPath := fs.String("config", "", "Config file path (default: ~/.config/coverdock/config.yaml)")
	socketPath := fs.String("socket", "", "IPC socket path (default: $XDG_RUNTIME_DIR/coverdock.sock)")
	fs.Usage = func() {
		fmt.Fprintln(os.Stderr, "Usage: coverdock daemon [--config PATH] [--socket PATH]")
		fmt.Fprintln(os.Stderr, "")
		fmt.Fprintln(os.Stderr, "Track the widget windows and serve the view over IPC.")
	}
	if err := fs.Parse(args); err != nil {
		if err == flag.ErrHelp {
			return 0
		}
		return 2
	}
	if fs.NArg() != 0 {
		fmt.Fprintln(os.Stderr, "daemon takes no arguments")
		fs.Usage()
		return 2
	}

	loader := func() (*config.Config, error) {
		res, err := loadConfig(*configPath)
		if err != nil {
			return nil, err
		}
		return res.Config, nil
	}

	res, err := loadConfig(*configPath)
	if err != nil {
		log.Printf("Failed to load configuration: %v", err)
		return 1
	}
	cfg := res.Config

	level := new(slog.LevelVar)
	level.Set(cfg.SlogLevel())
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
	slog.SetDefault(logger)
	logger.Info("configuration loaded", "path", res.Path, "exists", res.Exists)

	storePath, err := cfg.SettingsPath()
	if err == nil && storePath == "" {
		storePath, err = settings.DefaultPath()
	}
	if err != nil {
		logger.Error("cannot resolve settings path", "error", err)
		return 1
	}
	store, err := settings.Open(storePath)
	if err != nil {
		logger.Error("failed to open settings", "path", storePath, "error", err)
		return 1
	}

	// Connect to display server
	backend, err := platform.NewLinuxBackendFromDisplay()
	if err != nil {
		logger.Error("failed to connect to display", "error", err)
		return 1
	}
	defer backend.Disconnect()

	hub := ipc.NewHub(logger.With("component", "hub"))
	d, err := daemon.New(daemon.Options{
		Config:  cfg,
		Backend: backend,
		Watcher: backend,
		Store:   store,
		Hub:     hub,
		Logger:  logger,
		Level:   level,
		Loader:  loader,
	})
	if err != nil {
		logger.Error("failed to create daemon", "error", err)
		return 1
	}

	hotkeyHandler := hotkeys.NewHandler(backend, d, logger.With("component", "hotkeys"))
	hotkeyHandler.RegisterAll(cfg.Hotkeys)

	ipcServer, err := ipc.NewServer(*socketPath, d, hub, logger.With("component", "ipc"))
	if err != nil {
		logger.Error("failed to create IPC server", "error", err)
		return 1
	}
	if err := ipcServer.Start(); err != nil {
		logger.Error("failed to start IPC server", "error", err)
		return 1
	}
	defer ipcServer.Stop()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		if err := d.Run(ctx); err != nil {
			logger.Error("daemon stopped with error", "error", err)
		}
	}()

	// Setup signal handlers
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM, syscall.SIGHUP)
	defer signal.Stop(sigCh)

	go func() {
		for {
			select {
			case <-ctx.Done():
				return
			case sig := <-sigCh:
				if sig == syscall.SIGHUP {
					logger.Info("received SIGHUP, reloading config")
					if err := d.Reload(ctx); err != nil {
						logger.Warn("config reload failed", "error", err)
					}
					continue
				}
				// The X event loop only notices Quit on its next event, so
				// shut down from here.
				logger.Info("shutting down", "signal", sig.String())
				cancel()
				wg.Wait()
				ipcServer.Stop()
				backend.Disconnect()
				os.Exit(0)
			}
		}
	}()

	// X events and hotkeys are dispatched on this goroutine.
	logger.Info("entering event loop", "socket", ipcServer.SocketPath())
	backend.EventLoop()

	logger.Warn("X event loop exited")
	cancel()
	wg.Wait()
	return 1
}

func loadConfig(path string) (*config.LoadResult, error) {
	if path == "" {
		return config.LoadWithSources()
	}
	return config.LoadFromPath(path)
}
