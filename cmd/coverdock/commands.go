package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"

	"golang.org/x/term"

	"github.com/1broseidon/coverdock/internal/ipc"
	"github.com/1broseidon/coverdock/internal/settings"
)

// wantJSON reports whether output should be machine readable: when asked
// for explicitly or when stdout is not a terminal.
func wantJSON(flagged bool) bool {
	return flagged || !term.IsTerminal(int(os.Stdout.Fd()))
}

func printJSON(v interface{}) int {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	return 0
}

// newFlagSet builds a flag set that prints usage lines to stderr.
func newFlagSet(name string, usage ...string) *flag.FlagSet {
	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	fs.SetOutput(os.Stderr)
	fs.Usage = func() {
		for _, line := range usage {
			fmt.Fprintln(os.Stderr, line)
		}
	}
	return fs
}

// parseFlags returns -1 to continue or an exit code.
func parseFlags(fs *flag.FlagSet, args []string, nargs int) int {
	if err := fs.Parse(args); err != nil {
		if err == flag.ErrHelp {
			return 0
		}
		return 2
	}
	if fs.NArg() != nargs {
		fmt.Fprintf(os.Stderr, "%s takes %d argument(s)\n", fs.Name(), nargs)
		fs.Usage()
		return 2
	}
	return -1
}

func runStatus(args []string) int {
	fs := newFlagSet("status", "Usage: coverdock status [--json]", "", "Show daemon and widget status via IPC.")
	jsonOut := fs.Bool("json", false, "Print JSON")
	if code := parseFlags(fs, args, 0); code >= 0 {
		return code
	}

	client := ipc.NewClient()
	status, err := client.GetStatus()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	if wantJSON(*jsonOut) {
		return printJSON(status)
	}

	fmt.Printf("daemon_running:  %v\n", status.DaemonRunning)
	fmt.Printf("uptime_seconds:  %d\n", status.UptimeSeconds)
	fmt.Printf("attached:        %v\n", status.Attached)
	if status.Attached {
		fmt.Printf("main_window:     0x%x\n", status.MainWindow)
		fmt.Printf("state:           %s\n", status.State)
		if status.Bounds != nil {
			b := status.Bounds
			fmt.Printf("bounds:          %dx%d+%d+%d\n", b.Width, b.Height, b.X, b.Y)
		}
		side := "right"
		if status.IsOnLeft {
			side = "left"
		}
		fmt.Printf("side:            %s\n", side)
		fmt.Printf("track_info_open: %v\n", status.TrackInfoOpen)
	}
	s := status.Settings
	if s.IsCentered() {
		fmt.Println("position:        centered")
	} else {
		fmt.Printf("position:        %d,%d\n", s.X, s.Y)
	}
	fmt.Printf("size:            %d\n", s.Size)
	fmt.Printf("always_on_top:   %v\n", s.IsAlwaysOnTop)
	fmt.Printf("in_taskbar:      %v\n", s.IsVisibleInTaskbar)
	fmt.Printf("settings_path:   %s\n", status.SettingsPath)
	return 0
}

func runMonitors(args []string) int {
	fs := newFlagSet("monitors", "Usage: coverdock monitors [--json]", "", "List monitors and their usable areas.")
	jsonOut := fs.Bool("json", false, "Print JSON")
	if code := parseFlags(fs, args, 0); code >= 0 {
		return code
	}

	data, err := ipc.NewClient().GetMonitors()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	if wantJSON(*jsonOut) {
		return printJSON(data)
	}
	for _, m := range data.Monitors {
		u := m.Usable
		fmt.Printf("%d %-10s %dx%d+%d+%d  usable %dx%d+%d+%d\n",
			m.ID, m.Name, m.Width, m.Height, m.X, m.Y, u.Width, u.Height, u.X, u.Y)
	}
	return 0
}

// updateSettings applies fn through the daemon and reports the result.
func updateSettings(fn func(settings.Settings) settings.Settings) int {
	if _, err := ipc.NewClient().UpdateSettings(fn); err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	return 0
}

func runMove(args []string) int {
	x, y, code := parseMoveArgs(args)
	if code >= 0 {
		return code
	}
	return updateSettings(func(s settings.Settings) settings.Settings {
		return s.WithPosition(x, y)
	})
}

// parseMoveArgs reads X and Y. Coordinates may be negative on monitors left
// of or above the primary, so a leading number ends flag parsing. The code
// is -1 to continue or an exit code.
func parseMoveArgs(args []string) (x, y, code int) {
	fs := newFlagSet("move", "Usage: coverdock move X Y", "",
		"Move the widget's top-left corner to X,Y and save the position.",
		"Coordinates may be negative; -1 -1 is reserved (use 'coverdock center').")
	if len(args) > 0 {
		if _, err := strconv.Atoi(args[0]); err == nil {
			args = append([]string{"--"}, args...)
		}
	}
	if code := parseFlags(fs, args, 2); code >= 0 {
		return 0, 0, code
	}
	x, errX := strconv.Atoi(fs.Arg(0))
	y, errY := strconv.Atoi(fs.Arg(1))
	if errX != nil || errY != nil {
		fmt.Fprintln(os.Stderr, "X and Y must be integers")
		return 0, 0, 2
	}
	if x == settings.PositionUnset && y == settings.PositionUnset {
		fmt.Fprintln(os.Stderr, "-1 -1 is reserved for centering; use 'coverdock center'")
		return 0, 0, 2
	}
	return x, y, -1
}

func runResize(args []string) int {
	fs := newFlagSet("resize", "Usage: coverdock resize SIZE", "", "Set the widget's side length and save it.")
	if code := parseFlags(fs, args, 1); code >= 0 {
		return code
	}
	size, err := strconv.Atoi(fs.Arg(0))
	if err != nil || size <= 0 {
		fmt.Fprintln(os.Stderr, "SIZE must be a positive integer")
		return 2
	}
	return updateSettings(func(s settings.Settings) settings.Settings {
		return s.WithSize(size)
	})
}

func runCenter(args []string) int {
	fs := newFlagSet("center", "Usage: coverdock center", "", "Center the widget on its monitor.")
	if code := parseFlags(fs, args, 0); code >= 0 {
		return code
	}
	return updateSettings(func(s settings.Settings) settings.Settings {
		return s.WithPosition(settings.PositionUnset, settings.PositionUnset)
	})
}

func runOnTop(args []string) int {
	fs := newFlagSet("on-top", "Usage: coverdock on-top on|off", "", "Keep the widget above other windows, or not.")
	if code := parseFlags(fs, args, 1); code >= 0 {
		return code
	}
	var enabled bool
	switch strings.ToLower(fs.Arg(0)) {
	case "on", "true", "1":
		enabled = true
	case "off", "false", "0":
		enabled = false
	default:
		fmt.Fprintf(os.Stderr, "expected on or off, got %q\n", fs.Arg(0))
		return 2
	}
	return updateSettings(func(s settings.Settings) settings.Settings {
		s.IsAlwaysOnTop = enabled
		return s
	})
}

func runShow(args []string) int {
	fs := newFlagSet("show", "Usage: coverdock show settings|about", "", "Ask the widget to open a dialog.")
	if code := parseFlags(fs, args, 1); code >= 0 {
		return code
	}

	client := ipc.NewClient()
	var err error
	switch fs.Arg(0) {
	case "settings":
		err = client.ShowSettings()
	case "about":
		err = client.ShowAbout()
	default:
		fmt.Fprintf(os.Stderr, "unknown dialog %q (want settings or about)\n", fs.Arg(0))
		return 2
	}
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	return 0
}

func runReload(args []string) int {
	fs := newFlagSet("reload", "Usage: coverdock reload", "", "Ask the daemon to re-read its configuration.")
	if code := parseFlags(fs, args, 0); code >= 0 {
		return code
	}
	if err := ipc.NewClient().Reload(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	fmt.Println("config reloaded")
	return 0
}

func runEvents(args []string) int {
	fs := newFlagSet("events", "Usage: coverdock events [--json]", "", "Stream widget events until interrupted.")
	jsonOut := fs.Bool("json", false, "Print one JSON event per line")
	if code := parseFlags(fs, args, 0); code >= 0 {
		return code
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	events, err := ipc.NewClient().Subscribe(ctx)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}

	asJSON := wantJSON(*jsonOut)
	enc := json.NewEncoder(os.Stdout)
	for ev := range events {
		if asJSON {
			if err := enc.Encode(ev); err != nil {
				return 1
			}
			continue
		}
		if len(ev.Payload) == 0 {
			fmt.Println(ev.Kind)
			continue
		}
		fmt.Printf("%s %s\n", ev.Kind, ev.Payload)
	}
	return 0
}
