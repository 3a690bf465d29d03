// Package debugger is the line-oriented command front end shared by the
// tui and gui packages, wrapping a machine.Machine with breakpoints,
// watchpoints, and history the way the teacher's Debugger wraps a vm.VM.
package debugger

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/archerh/casm/loader"
	"github.com/archerh/casm/machine"
	"github.com/archerh/casm/tools"
)

// WordArrayReader is the read-only view a panel renderer needs over
// Machine.Memory or Machine.Storage, without depending on machine's
// unexported word-array type.
type WordArrayReader interface {
	Len() int
	CellAt(i int) string
}

// Session is one debugging session: a machine, its breakpoints and
// watchpoints, command history, and the loader used to bring in new
// programs.
type Session struct {
	Machine     *machine.Machine
	Breakpoints *BreakpointManager
	Watchpoints *WatchpointManager
	History     *CommandHistory
	Loader      *loader.Loader

	SourceFile string
}

// New creates a session over a fresh machine, sandboxed to the given
// loader root.
func New(l *loader.Loader) *Session {
	return &Session{
		Machine:     machine.New(),
		Breakpoints: NewBreakpointManager(),
		Watchpoints: NewWatchpointManager(),
		History:     NewCommandHistory(),
		Loader:      l,
	}
}

// Execute runs one command line and returns its textual output. It is the
// single entry point both the tui and gui command inputs call.
func (s *Session) Execute(line string) (string, error) {
	s.History.Add(line)

	fields := strings.Fields(line)
	if len(fields) == 0 {
		return "", nil
	}
	cmd, args := strings.ToLower(fields[0]), fields[1:]

	switch cmd {
	case "load":
		return s.cmdLoad(args)
	case "run":
		return s.cmdRun(args)
	case "step", "s":
		return s.cmdStep(args)
	case "break", "b":
		return s.cmdBreak(args)
	case "delete", "d":
		return s.cmdDelete(args)
	case "watch", "w":
		return s.cmdWatch(args)
	case "regs", "r":
		return s.cmdRegs(args)
	case "mem", "m":
		return s.cmdMem(args)
	case "storage", "st":
		return s.cmdStorage(args)
	case "xref", "x":
		return s.cmdXref(args)
	case "lint":
		return s.cmdLint(args)
	case "format", "fmt":
		return s.cmdFormat(args)
	case "jumps":
		return s.cmdJumps(args)
	case "help", "h":
		return helpText, nil
	default:
		return "", fmt.Errorf("unknown command %q (try \"help\")", cmd)
	}
}

func (s *Session) cmdLoad(args []string) (string, error) {
	if len(args) != 1 {
		return "", fmt.Errorf("usage: load <file>")
	}
	lines, err := s.Loader.Load(args[0])
	if err != nil {
		return "", err
	}
	if err := s.Machine.Load(lines); err != nil {
		return "", err
	}
	s.SourceFile = args[0]
	return fmt.Sprintf("loaded %s (%d lines)", args[0], len(lines)), nil
}

func (s *Session) cmdRun(args []string) (string, error) {
	steps, err := s.runToBreakpoint()
	summary := fmt.Sprintf("ran %d step(s)", steps)
	if err != nil {
		if s.Machine.Err != nil {
			return summary, fmt.Errorf("%s", s.Machine.FormatError())
		}
		return summary, err
	}
	return summary, nil
}

// runToBreakpoint steps the machine until it halts, errors, a watched
// register changes value, or it is about to execute a line carrying an
// enabled breakpoint.
func (s *Session) runToBreakpoint() (int, error) {
	steps := 0
	for {
		line, convErr := machine.SafeInt32ToNonNegativeInt(s.Machine.Registers[machine.PC])
		if convErr != nil {
			return steps, convErr
		}
		if steps > 0 && s.Breakpoints.ShouldBreak(line) {
			return steps, nil
		}
		ok, err := s.Machine.Step()
		steps++
		triggered := s.Watchpoints.CheckAll(s.Machine.Registers)
		if err != nil {
			return steps, err
		}
		if !ok || len(triggered) > 0 {
			return steps, nil
		}
	}
}

func (s *Session) cmdStep(args []string) (string, error) {
	ok, err := s.Machine.Step()
	s.Watchpoints.CheckAll(s.Machine.Registers)
	if err != nil {
		return "", fmt.Errorf("%s", s.Machine.FormatError())
	}
	if !ok {
		return "halted", nil
	}
	return fmt.Sprintf("at line %d", s.Machine.Registers[machine.PC]), nil
}

func (s *Session) cmdBreak(args []string) (string, error) {
	if len(args) != 1 {
		return "", fmt.Errorf("usage: break <line>")
	}
	line, err := strconv.Atoi(args[0])
	if err != nil {
		return "", fmt.Errorf("invalid line %q", args[0])
	}
	bp := s.Breakpoints.Add(line, false)
	return fmt.Sprintf("breakpoint %d at line %d", bp.ID, bp.Line), nil
}

func (s *Session) cmdDelete(args []string) (string, error) {
	if len(args) != 1 {
		return "", fmt.Errorf("usage: delete <id>")
	}
	id, err := strconv.Atoi(args[0])
	if err != nil {
		return "", fmt.Errorf("invalid id %q", args[0])
	}
	if s.Breakpoints.Delete(id) {
		return fmt.Sprintf("deleted breakpoint %d", id), nil
	}
	if s.Watchpoints.Delete(id) {
		return fmt.Sprintf("deleted watchpoint %d", id), nil
	}
	return "", fmt.Errorf("no breakpoint or watchpoint with id %d", id)
}

func (s *Session) cmdWatch(args []string) (string, error) {
	if len(args) != 1 {
		return "", fmt.Errorf("usage: watch <Rn>")
	}
	reg, err := parseRegisterArg(args[0])
	if err != nil {
		return "", err
	}
	wp := s.Watchpoints.Add(reg, s.Machine.Registers[reg])
	return fmt.Sprintf("watchpoint %d on R%d", wp.ID, reg), nil
}

func (s *Session) cmdRegs(args []string) (string, error) {
	var b strings.Builder
	fmt.Fprintf(&b, "PC = %d\n", s.Machine.Registers[machine.PC])
	for i := 1; i < machine.NumRegisters; i++ {
		fmt.Fprintf(&b, "R%d = %d\n", i, s.Machine.Registers[i])
	}
	return b.String(), nil
}

func (s *Session) cmdMem(args []string) (string, error) {
	return dumpWordArray(s.Machine.Memory)
}

func (s *Session) cmdStorage(args []string) (string, error) {
	return dumpWordArray(s.Machine.Storage)
}

func (s *Session) cmdXref(args []string) (string, error) {
	labels, err := tools.Xref(s.Machine.Lines)
	if err != nil {
		return "", err
	}
	return tools.Report(labels), nil
}

func (s *Session) cmdLint(args []string) (string, error) {
	issues, err := tools.Lint(s.Machine.Lines, tools.DefaultLintOptions())
	if err != nil {
		return "", err
	}
	if len(issues) == 0 {
		return "no issues found", nil
	}
	var b strings.Builder
	for _, issue := range issues {
		fmt.Fprintln(&b, issue.String())
	}
	return b.String(), nil
}

func (s *Session) cmdFormat(args []string) (string, error) {
	return tools.Format(s.Machine.Lines, tools.DefaultFormatOptions()), nil
}

// cmdJumps prints every taken branch in chronological order, unlike the
// per-label totals the CLI's -stats summary prints, so a learner can see the exact
// sequence that led into a suspected infinite loop.
func (s *Session) cmdJumps(args []string) (string, error) {
	entries := s.Machine.Jumps.Entries()
	if len(entries) == 0 {
		return "no jumps taken", nil
	}
	var b strings.Builder
	for _, e := range entries {
		fmt.Fprintf(&b, "#%d line %d -> %s (%d-th jump to %s)\n", e.Sequence, e.FromLine, e.Label, e.RunningAt, e.Label)
	}
	return b.String(), nil
}

func dumpWordArray(w WordArrayReader) (string, error) {
	var b strings.Builder
	for i := 0; i < w.Len(); i++ {
		cell := w.CellAt(i)
		if cell == "" {
			continue
		}
		fmt.Fprintf(&b, "[%d] %s\n", i, cell)
	}
	return b.String(), nil
}

// parseRegisterArg parses "R1".."R9" (case-insensitive) into a register
// index, rejecting R0 (PC) since a watchpoint on the program counter is
// meaningless — it changes every single step.
func parseRegisterArg(s string) (int, error) {
	if len(s) != 2 || (s[0] != 'R' && s[0] != 'r') {
		return 0, fmt.Errorf("invalid register %q", s)
	}
	n, err := strconv.Atoi(s[1:])
	if err != nil || n <= 0 || n >= machine.NumRegisters {
		return 0, fmt.Errorf("invalid register %q", s)
	}
	return n, nil
}

const helpText = `commands:
  load <file>     load a casm program
  run             run to completion or next breakpoint
  step            execute one line
  break <line>    set a breakpoint at line
  watch <Rn>      break when register Rn's value changes
  delete <id>     remove a breakpoint or watchpoint
  regs            show register file
  mem             dump memory
  storage         dump storage
  xref            show label definitions and references
  lint            check for undefined/unused/duplicate labels
  format          print a column-aligned listing of the loaded source
  jumps           list every taken branch in chronological order
  help            this text`
