package main

import (
	"flag"
	"fmt"
	"io"
	"os"
	"os/exec"
	"path/filepath"
	"syscall"

	"github.com/1broseidon/gridzones/internal/config"
	"github.com/1broseidon/gridzones/internal/daemon"
	"gopkg.in/yaml.v3"
)

// Overridden at build time via -ldflags "-X main.version=...".
var version = "dev"

func main() {
	if len(os.Args) < 2 {
		printMainUsage(os.Stdout)
		os.Exit(0)
	}

	switch os.Args[1] {
	case "daemon":
		os.Exit(runDaemon(os.Args[2:]))
	case "activate":
		os.Exit(runActivate(os.Args[2:]))
	case "focus":
		os.Exit(runFocus(os.Args[2:]))
	case "unmanage":
		os.Exit(runUnmanage(os.Args[2:]))
	case "retile":
		os.Exit(runRetile(os.Args[2:]))
	case "status":
		os.Exit(runStatus(os.Args[2:]))
	case "zones":
		os.Exit(runZones(os.Args[2:]))
	case "screens":
		os.Exit(runScreens(os.Args[2:]))
	case "memory":
		os.Exit(runMemory(os.Args[2:]))
	case "snapshot":
		os.Exit(runSnapshot(os.Args[2:]))
	case "config":
		os.Exit(runConfig(os.Args[2:]))
	case "reload":
		os.Exit(runReload(os.Args[2:]))
	case "shutdown":
		os.Exit(runShutdown(os.Args[2:]))
	case "mcp":
		os.Exit(runMCP(os.Args[2:]))
	case "version", "--version":
		fmt.Printf("gridzones %s\n", version)
		os.Exit(0)
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
	fmt.Fprintln(w, "Usage: gridzones <command> [options]")
	fmt.Fprintln(w, "")
	fmt.Fprintln(w, "Commands:")
	fmt.Fprintln(w, "  daemon              Start the gridzones daemon")
	fmt.Fprintln(w, "  status              Show daemon status")
	fmt.Fprintln(w, "")
	fmt.Fprintln(w, "  activate <zone>     Snap the focused window into a zone (repeat to cycle sizes)")
	fmt.Fprintln(w, "  focus <zone>        Focus a window in a zone (repeat to cycle windows)")
	fmt.Fprintln(w, "  unmanage            Release the focused window from its zone")
	fmt.Fprintln(w, "  retile              Reapply every zone assignment")
	fmt.Fprintln(w, "")
	fmt.Fprintln(w, "  zones               List zones with tiles and hotkeys")
	fmt.Fprintln(w, "  screens             List screens and their grid layouts")
	fmt.Fprintln(w, "")
	fmt.Fprintln(w, "  memory list         List remembered window positions")
	fmt.Fprintln(w, "  memory forget       Forget remembered positions for an app")
	fmt.Fprintln(w, "  memory export       Export position memory as JSON")
	fmt.Fprintln(w, "  memory import       Import position memory from JSON")
	fmt.Fprintln(w, "")
	fmt.Fprintln(w, "  snapshot save       Save current placements under a name")
	fmt.Fprintln(w, "  snapshot load       Re-apply a saved snapshot")
	fmt.Fprintln(w, "  snapshot list       List saved snapshots")
	fmt.Fprintln(w, "  snapshot delete     Delete a snapshot")
	fmt.Fprintln(w, "")
	fmt.Fprintln(w, "  config validate     Validate configuration")
	fmt.Fprintln(w, "  config print        Print configuration")
	fmt.Fprintln(w, "")
	fmt.Fprintln(w, "  reload              Reload daemon configuration")
	fmt.Fprintln(w, "  shutdown            Stop the daemon")
	fmt.Fprintln(w, "")
	fmt.Fprintln(w, "  mcp serve           Start MCP server (stdio transport)")
	fmt.Fprintln(w, "  version             Show version")
	fmt.Fprintln(w, "")
	fmt.Fprintln(w, "Run 'gridzones <command> --help' for command-specific options.")
}

func runDaemon(args []string) int {
	fs := flag.NewFlagSet("daemon", flag.ContinueOnError)
	fs.SetOutput(os.Stderr)
	fs.Usage = func() {
		fmt.Fprintln(os.Stderr, "Usage: gridzones daemon [--config PATH] [--foreground]")
		fmt.Fprintln(os.Stderr, "")
		fmt.Fprintln(os.Stderr, "Start the window management daemon. Without --foreground the daemon")
		fmt.Fprintln(os.Stderr, "detaches and logs to ~/.local/share/gridzones/daemon.log.")
		fmt.Fprintln(os.Stderr, "")
		fmt.Fprintln(os.Stderr, "Flags:")
		fs.PrintDefaults()
	}
	configPath := fs.String("config", "", "Config file path (default: ~/.config/gridzones/config.yaml)")
	foreground := fs.Bool("foreground", false, "Stay attached to the terminal instead of detaching")
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

	if !*foreground {
		return detachDaemon(*configPath)
	}

	if err := daemon.Run(*configPath); err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	return 0
}

// detachDaemon re-execs this binary with --foreground in a new session so
// the shell gets its prompt back.
func detachDaemon(configPath string) int {
	exe, err := os.Executable()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}

	logPath, err := daemonLogPath()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	logFile, err := os.OpenFile(logPath, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	defer logFile.Close()

	cmdArgs := []string{"daemon", "--foreground"}
	if configPath != "" {
		cmdArgs = append(cmdArgs, "--config", configPath)
	}
	cmd := exec.Command(exe, cmdArgs...)
	cmd.Stdout = logFile
	cmd.Stderr = logFile
	cmd.SysProcAttr = &syscall.SysProcAttr{Setsid: true}
	if err := cmd.Start(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}

	fmt.Printf("gridzones daemon started (pid %d, log %s)\n", cmd.Process.Pid, logPath)
	return 0
}

func daemonLogPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	dir := filepath.Join(home, ".local", "share", "gridzones")
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", err
	}
	return filepath.Join(dir, "daemon.log"), nil
}

func runConfig(args []string) int {
	if len(args) == 0 || args[0] == "help" || args[0] == "-h" || args[0] == "--help" {
		fmt.Fprintln(os.Stderr, "Usage:")
		fmt.Fprintln(os.Stderr, "  gridzones config validate [--path PATH]")
		fmt.Fprintln(os.Stderr, "  gridzones config print [--path PATH] [--defaults]")
		if len(args) == 0 {
			return 2
		}
		return 0
	}

	switch args[0] {
	case "validate":
		fs := flag.NewFlagSet("validate", flag.ContinueOnError)
		fs.SetOutput(os.Stderr)
		path := fs.String("path", "", "Config file path (default: ~/.config/gridzones/config.yaml)")
		if err := fs.Parse(args[1:]); err != nil {
			if err == flag.ErrHelp {
				return 0
			}
			return 2
		}

		res, err := loadConfigResult(*path)
		if err != nil {
			fmt.Fprintln(os.Stderr, err)
			return 1
		}
		for _, warning := range res.Warnings {
			fmt.Printf("warning: %s\n", warning)
		}
		fmt.Println("config: ok")
		return 0

	case "print":
		fs := flag.NewFlagSet("print", flag.ContinueOnError)
		fs.SetOutput(os.Stderr)
		path := fs.String("path", "", "Config file path (default: ~/.config/gridzones/config.yaml)")
		printDefaults := fs.Bool("defaults", false, "Print built-in defaults (no files)")
		if err := fs.Parse(args[1:]); err != nil {
			if err == flag.ErrHelp {
				return 0
			}
			return 2
		}

		var cfg *config.Config
		if *printDefaults {
			cfg = config.DefaultConfig()
		} else {
			res, err := loadConfigResult(*path)
			if err != nil {
				fmt.Fprintln(os.Stderr, err)
				return 1
			}
			cfg = res.Config
		}

		data, err := yaml.Marshal(cfg)
		if err != nil {
			fmt.Fprintln(os.Stderr, err)
			return 1
		}
		fmt.Print(string(data))
		return 0

	default:
		fmt.Fprintf(os.Stderr, "Unknown config subcommand: %s\n", args[0])
		return 2
	}
}

func loadConfigResult(path string) (*config.LoadResult, error) {
	if path == "" {
		return config.LoadWithResult()
	}
	return config.LoadFromPath(path)
}
