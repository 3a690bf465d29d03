// Command casm runs, traces, and visualizes casm programs: the small
// register/memory/storage assembly language this module implements. It
// mirrors the teacher's single-binary front end, trimmed to the modes
// casm actually has — headless run, TUI debugger, and GUI visualizer.
package main

import (
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"

	"github.com/archerh/casm/config"
	"github.com/archerh/casm/debugger"
	"github.com/archerh/casm/gui"
	"github.com/archerh/casm/loader"
	"github.com/archerh/casm/machine"
	"github.com/archerh/casm/tui"
)

// Version information; overridden at build time with:
// go build -ldflags "-X main.Version=v1.2.3"
var (
	Version = "dev"
	Commit  = "unknown"
)

// debugLog is silent unless CASM_DEBUG is set, the same opt-in switch the
// teacher's gui/app.go gates its own diagnostic logging behind. When
// enabled it writes to a file under the platform log directory rather than
// stderr, so a TUI or GUI session (which owns the terminal/window) doesn't
// have its display clobbered by interleaved log lines.
var debugLog = log.New(io.Discard, "", 0)

// openDebugLog opens (creating if needed) casm.log in the platform log
// directory and returns a logger writing to it, plus a closer the caller
// must run before exit.
func openDebugLog() (*log.Logger, func()) {
	path := filepath.Join(config.GetLogPath(), "casm.log")
	f, err := os.OpenFile(path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0600) // #nosec G304 -- fixed filename under the platform log dir
	if err != nil {
		fmt.Fprintf(os.Stderr, "warning: could not open debug log %s: %v\n", path, err)
		return log.New(os.Stderr, "casm: ", log.LstdFlags), func() {}
	}
	return log.New(f, "casm: ", log.LstdFlags), func() { f.Close() }
}

func main() {
	var (
		file        = flag.String("file", "", "casm source file to load")
		tuiMode     = flag.Bool("tui", false, "start the terminal debugger")
		guiMode     = flag.Bool("gui", false, "start the graphical visualizer")
		maxJumps    = flag.Uint64("max-jumps", 0, "override the infinite-loop guard's total label-jump ceiling (0 = use config/default)")
		enableTrace = flag.Bool("trace", false, "record an execution trace")
		traceFile   = flag.String("trace-file", "", "execution trace output file (default: trace.log in the log dir)")
		enableStats = flag.Bool("stats", false, "print a coverage/jump summary after a headless run")
		configPath  = flag.String("config", "", "config file path (default: platform config dir)")
		fsRoot      = flag.String("fsroot", "", "restrict file loads to this directory (default: current directory)")
		showVersion = flag.Bool("version", false, "print version information")
		initConfig  = flag.Bool("init-config", false, "write the default config to the platform config path and exit")
	)
	flag.Parse()

	if os.Getenv("CASM_DEBUG") != "" {
		var closeLog func()
		debugLog, closeLog = openDebugLog()
		defer closeLog()
	}

	if *showVersion {
		fmt.Printf("casm %s (%s)\n", Version, Commit)
		return
	}

	if *initConfig {
		if err := config.DefaultConfig().Save(); err != nil {
			fmt.Fprintf(os.Stderr, "error writing default config: %v\n", err)
			os.Exit(1)
		}
		fmt.Printf("wrote default config to %s\n", config.GetConfigPath())
		return
	}

	cfg, err := loadConfig(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "error loading config: %v\n", err)
		os.Exit(1)
	}

	l, err := loader.New(*fsRoot)
	if err != nil {
		fmt.Fprintf(os.Stderr, "error setting up filesystem root: %v\n", err)
		os.Exit(1)
	}
	debugLog.Printf("filesystem root: %s", l.Root)

	session := debugger.New(l)
	session.Machine.MaxLabelJumps = cfg.Execution.MaxLabelJumps
	if *maxJumps > 0 {
		session.Machine.MaxLabelJumps = *maxJumps
	}
	if session.Machine.MaxLabelJumps > machine.MaxLabelJumps {
		session.Machine.MaxLabelJumps = machine.MaxLabelJumps
	}

	sourceFile := *file
	if sourceFile == "" {
		sourceFile = cfg.Execution.EntryFile
	}
	if sourceFile == "" && flag.NArg() > 0 {
		sourceFile = flag.Arg(0)
	}

	if sourceFile != "" {
		if _, err := session.Execute(fmt.Sprintf("load %s", sourceFile)); err != nil {
			fmt.Fprintf(os.Stderr, "error loading %s: %v\n", sourceFile, err)
			os.Exit(1)
		}
		debugLog.Printf("loaded %s (%d lines)", sourceFile, len(session.Machine.Lines))
	}

	if *enableTrace {
		session.Machine.Trace.Enabled = true
		if cfg.Trace.MaxEntries > 0 {
			session.Machine.Trace.MaxEntries = cfg.Trace.MaxEntries
		}
	}

	switch {
	case *tuiMode:
		runTUI(session)
	case *guiMode:
		gui.Run(session)
	default:
		runHeadless(session, *enableStats, *enableTrace, *traceFile)
	}
}

func loadConfig(path string) (*config.Config, error) {
	if path != "" {
		return config.LoadFrom(path)
	}
	return config.Load()
}

func runTUI(session *debugger.Session) {
	t := tui.New(session)
	if err := t.Run(); err != nil {
		fmt.Fprintf(os.Stderr, "tui error: %v\n", err)
		os.Exit(1)
	}
}

// runHeadless runs the loaded program to completion (or error) with no
// interactive surface, printing a final register/halt summary the way
// the teacher's non-debugger path prints its exit-code/cycle summary.
func runHeadless(session *debugger.Session, stats, trace bool, traceFile string) {
	m := session.Machine
	if len(m.Lines) == 0 {
		fmt.Fprintln(os.Stderr, "no program loaded; pass -file <path> or a bare argument")
		os.Exit(1)
	}

	steps, runErr := m.Run()

	snap := m.Snapshot()
	fmt.Printf("ran %d step(s)\n", steps)
	for i := 1; i < machine.NumRegisters; i++ {
		fmt.Printf("R%d = %d\n", i, snap.Registers[i])
	}

	if runErr != nil {
		fmt.Fprintln(os.Stderr, m.FormatError())
		if stats {
			printJumpBreakdown(m)
		}
		os.Exit(1)
	}

	fmt.Println("halted:", snap.Halted)

	if stats {
		fmt.Printf("coverage: %.1f%%\n", m.Coverage.Percentage())
		printNeverExecuted(m)
		printJumpBreakdown(m)
	}

	if trace {
		writeTrace(m, traceFile)
	}
}

// printNeverExecuted lists every source line coverage never reached (with
// its 1-based line number and text), so -stats doubles as a quick
// dead-code report for a program under development.
func printNeverExecuted(m *machine.Machine) {
	dead := m.Coverage.NeverExecuted()
	if len(dead) == 0 {
		return
	}
	fmt.Println("never executed:")
	for _, line := range dead {
		fmt.Printf("  line %d: %s\n", line+1, m.Lines[line])
	}
}

func printJumpBreakdown(m *machine.Machine) {
	if len(m.LabelJumpCount) == 0 {
		return
	}
	fmt.Println("label jumps:")
	for _, entry := range m.Jumps.Breakdown(m.LabelJumpCount) {
		fmt.Printf("  %s: %d\n", entry.Label, entry.RunningAt)
	}
}

func writeTrace(m *machine.Machine, path string) {
	if path == "" {
		path = filepath.Join(config.GetLogPath(), "trace.log")
	}
	f, err := os.Create(path) // #nosec G304 -- user-specified trace output path
	if err != nil {
		fmt.Fprintf(os.Stderr, "error creating trace file: %v\n", err)
		return
	}
	defer f.Close()

	for _, entry := range m.Trace.Entries() {
		fmt.Fprintf(f, "#%d line %d: %s\n", entry.Sequence, entry.Line, entry.Source)
		for idx, val := range entry.RegisterChanges {
			fmt.Fprintf(f, "    R%d = %d\n", idx, val)
		}
	}
	fmt.Println("trace written:", path)
}
