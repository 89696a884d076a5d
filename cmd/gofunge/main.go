package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/fungespace/gofunge"
)

var version = gofunge.Version // overridable via -ldflags at build time

// CLIConfig holds settings loaded from ~/.gofunge/gofunge.toml. Flags
// override anything set here.
type CLIConfig struct {
	Dialect      string `toml:"dialect"`
	DelayMs      int    `toml:"delay_ms"`
	HistoryLimit int    `toml:"history_limit"`
	AllowExec    bool   `toml:"allow_exec"`
	AllowFileIO  bool   `toml:"allow_file_io"`
}

var cliConfig = CLIConfig{
	Dialect:      "98",
	DelayMs:      50,
	HistoryLimit: 16384,
	AllowExec:    true,
	AllowFileIO:  true,
}

func configFilePath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, ".gofunge", "gofunge.toml")
}

// loadCLIConfig reads the config file, creating it with defaults on
// first run. Failures are graceful; defaults stay in effect.
func loadCLIConfig() {
	path := configFilePath()
	if path == "" {
		return
	}
	if _, err := os.Stat(path); os.IsNotExist(err) {
		createDefaultConfig(path)
		return
	}
	_, _ = toml.DecodeFile(path, &cliConfig)
}

func createDefaultConfig(path string) {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return
	}
	defaultConfig := `# gofunge configuration
# This file is automatically created on first run.

# Default dialect: "93" or "98"
dialect = "98"

# Delay between ticks while free-running in the debugger, milliseconds
delay_ms = 50

# How many ticks the debugger can step back through
history_limit = 16384

# Whether programs may use '=' (execute) and 'i'/'o' (file access)
allow_exec = true
allow_file_io = true
`
	_ = os.WriteFile(path, []byte(defaultConfig), 0644)
}

func showUsage() {
	fmt.Fprintf(os.Stderr, `gofunge %s - Befunge-93 / Funge-98 interpreter and debugger

Usage: %s [options] program.bf [args...]

Program arguments are pushed onto the initial stack before the first
tick: integers as values, anything else as a 0-terminated string.

Options:
`, version, filepath.Base(os.Args[0]))
	flag.PrintDefaults()
}

func main() {
	loadCLIConfig()

	versionFlag := flag.Bool("version", false, "Show version")
	debugFlag := flag.Bool("debug", false, "Enable debug logging")
	flag.BoolVar(debugFlag, "d", false, "Enable debug logging (short)")
	dialectFlag := flag.String("befunge", cliConfig.Dialect, "Dialect: 93 or 98")
	tuiFlag := flag.Bool("tui", false, "Open the interactive stepping debugger")
	delayFlag := flag.Int("delay", cliConfig.DelayMs, "Debugger free-run delay between ticks, in ms")
	stepsFlag := flag.Uint64("steps", 0, "Stop after this many ticks (0 = unlimited)")
	noExecFlag := flag.Bool("no-exec", !cliConfig.AllowExec, "Forbid the '=' instruction")
	noFilesFlag := flag.Bool("no-file-io", !cliConfig.AllowFileIO, "Forbid the 'i' and 'o' instructions")
	flag.Usage = showUsage
	flag.Parse()

	if *versionFlag {
		fmt.Printf("gofunge %s\n", version)
		os.Exit(0)
	}

	args := flag.Args()
	if len(args) == 0 {
		showUsage()
		os.Exit(2)
	}

	cfg := gofunge.DefaultConfig()
	cfg.Debug = *debugFlag
	cfg.AllowExec = !*noExecFlag
	cfg.AllowFileIO = !*noFilesFlag
	cfg.HistoryLimit = cliConfig.HistoryLimit
	cfg.Args = args[1:]
	switch *dialectFlag {
	case "93":
		cfg.Dialect = gofunge.Befunge93
	case "98":
		cfg.Dialect = gofunge.Funge98
	default:
		fmt.Fprintf(os.Stderr, "gofunge: unknown dialect %q (want 93 or 98)\n", *dialectFlag)
		os.Exit(2)
	}

	it, err := gofunge.FromFile(args[0], cfg)
	if err != nil {
		fmt.Fprintf(os.Stderr, "gofunge: %v\n", err)
		os.Exit(1)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// There is exactly one cleanup action (restoring the terminal in
	// TUI mode); run it on signals before exiting.
	cleanup := func() {}
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigChan
		cancel()
		cleanup()
		os.Exit(130)
	}()

	if *tuiFlag {
		os.Exit(runDebugger(ctx, it, *delayFlag, &cleanup))
	}
	os.Exit(runProgram(ctx, it, *stepsFlag))
}

// runProgram executes the program against the real console.
func runProgram(ctx context.Context, it *gofunge.Interpreter, maxSteps uint64) int {
	it.SetPort(gofunge.NewConsolePort(os.Stdin, os.Stdout))
	if maxSteps > 0 {
		for it.Ticks() < maxSteps && it.Tick() {
			if ctx.Err() != nil {
				return 130
			}
		}
		return it.ExitCode()
	}
	code, err := it.Run(ctx)
	if err != nil {
		fmt.Fprintf(os.Stderr, "gofunge: %v\n", err)
		if code == 0 {
			code = 1
		}
	}
	return code
}

// runDebugger opens the interactive view over a store-backed port.
func runDebugger(ctx context.Context, it *gofunge.Interpreter, delayMs int, cleanup *func()) int {
	port := gofunge.NewStorePort()
	it.SetPort(port)
	dbg := gofunge.NewDebugger(it)
	view := gofunge.NewDebugView(dbg, port, time.Duration(delayMs)*time.Millisecond)
	*cleanup = view.Shutdown
	code, err := view.Run(ctx)
	// Echo anything the program printed once the screen is restored.
	if out := port.Output(); out != "" {
		fmt.Print(out)
	}
	if err != nil && err != context.Canceled {
		fmt.Fprintf(os.Stderr, "gofunge: %v\n", err)
		return 1
	}
	return code
}
