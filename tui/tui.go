// Package tui implements the terminal visualizer for casm: a live view of
// source, registers, memory, and storage driven by a running
// machine.Machine, built the same way the teacher's debugger builds its
// tcell/tview text interface.
package tui

import (
	"fmt"
	"strings"

	"github.com/gdamore/tcell/v2"
	"github.com/rivo/tview"

	"github.com/archerh/casm/debugger"
	"github.com/archerh/casm/machine"
)

// TUI is the text interface over a debugger.Session: panels for source,
// registers, memory, storage, and output, plus a command line.
type TUI struct {
	Session *debugger.Session
	App     *tview.Application
	Pages   *tview.Pages

	MainLayout *tview.Flex
	LeftPanel  *tview.Flex
	RightPanel *tview.Flex

	SourceView   *tview.TextView
	RegisterView *tview.TextView
	MemoryView   *tview.TextView
	StorageView  *tview.TextView
	OutputView   *tview.TextView
	CommandInput *tview.InputField

	sub *machine.Subscription
}

// New creates a TUI over session and wires it to the machine's event bus
// so a step or run refreshes only the affected panel.
func New(session *debugger.Session) *TUI {
	t := &TUI{
		Session: session,
		App:     tview.NewApplication(),
	}

	t.initializeViews()
	t.buildLayout()
	t.setupKeyBindings()
	t.sub = session.Machine.Bus.Subscribe(t.onEvent)

	return t
}

func (t *TUI) initializeViews() {
	t.SourceView = tview.NewTextView().SetDynamicColors(true).SetScrollable(true)
	t.SourceView.SetBorder(true).SetTitle(" Source ")

	t.RegisterView = tview.NewTextView().SetDynamicColors(true)
	t.RegisterView.SetBorder(true).SetTitle(" Registers ")

	t.MemoryView = tview.NewTextView().SetDynamicColors(true).SetScrollable(true)
	t.MemoryView.SetBorder(true).SetTitle(" Memory ")

	t.StorageView = tview.NewTextView().SetDynamicColors(true).SetScrollable(true)
	t.StorageView.SetBorder(true).SetTitle(" Storage ")

	t.OutputView = tview.NewTextView().SetDynamicColors(true).SetScrollable(true).SetWrap(true)
	t.OutputView.SetBorder(true).SetTitle(" Output ")

	t.CommandInput = tview.NewInputField().SetLabel("> ").SetFieldWidth(0)
	t.CommandInput.SetBorder(true).SetTitle(" Command ")
	t.CommandInput.SetDoneFunc(t.handleCommand)
	t.CommandInput.SetInputCapture(t.handleCommandInputKey)
}

// handleCommandInputKey intercepts Up/Down before tview's default field
// handling so the arrows walk the session's command history instead of
// moving a text cursor that command lines don't otherwise have.
func (t *TUI) handleCommandInputKey(event *tcell.EventKey) *tcell.EventKey {
	switch event.Key() {
	case tcell.KeyUp:
		if cmd := t.Session.History.Previous(); cmd != "" {
			t.CommandInput.SetText(cmd)
		}
		return nil
	case tcell.KeyDown:
		t.CommandInput.SetText(t.Session.History.Next())
		return nil
	}
	return event
}

func (t *TUI) buildLayout() {
	rightTop := tview.NewFlex().
		SetDirection(tview.FlexRow).
		AddItem(t.RegisterView, 12, 0, false).
		AddItem(t.MemoryView, 0, 1, false).
		AddItem(t.StorageView, 0, 1, false)

	mainContent := tview.NewFlex().
		SetDirection(tview.FlexColumn).
		AddItem(t.SourceView, 0, 2, false).
		AddItem(rightTop, 0, 1, false)

	t.MainLayout = tview.NewFlex().
		SetDirection(tview.FlexRow).
		AddItem(mainContent, 0, 4, false).
		AddItem(t.OutputView, 8, 0, false).
		AddItem(t.CommandInput, 3, 0, true)

	t.Pages = tview.NewPages().AddPage("main", t.MainLayout, true, true)
}

func (t *TUI) setupKeyBindings() {
	t.App.SetInputCapture(func(event *tcell.EventKey) *tcell.EventKey {
		switch event.Key() {
		case tcell.KeyF5:
			t.executeCommand("run")
			return nil
		case tcell.KeyF10:
			t.executeCommand("step")
			return nil
		case tcell.KeyCtrlC:
			t.App.Stop()
			return nil
		case tcell.KeyCtrlL:
			t.RefreshAll()
			return nil
		}
		return event
	})
}

func (t *TUI) handleCommand(key tcell.Key) {
	if key != tcell.KeyEnter {
		return
	}
	cmd := t.CommandInput.GetText()
	if cmd != "" {
		t.executeCommand(cmd)
		t.CommandInput.SetText("")
	}
}

func (t *TUI) executeCommand(cmd string) {
	output, err := t.Session.Execute(cmd)
	if err != nil {
		t.writeOutput(fmt.Sprintf("[red]error:[white] %v\n", err))
	}
	if output != "" {
		t.writeOutput(output)
	}
	t.RefreshAll()
}

func (t *TUI) writeOutput(text string) {
	fmt.Fprint(t.OutputView, text)
	t.OutputView.ScrollToEnd()
}

// onEvent reacts to one machine event by refreshing only the panel it
// touches, rather than redrawing everything on every register write.
func (t *TUI) onEvent(ev machine.Event) {
	switch ev.(type) {
	case machine.RegisterChanged, machine.PCChanged:
		t.updateRegisterView()
		t.updateSourceView()
	case machine.MemoryChanged:
		t.updateMemoryView()
	case machine.StorageChanged:
		t.updateStorageView()
	case machine.Halted:
		t.writeOutput("[green]halted[white]\n")
	case machine.Errored:
		t.writeOutput(fmt.Sprintf("[red]%v[white]\n", ev))
	}
	t.App.Draw()
}

// RefreshAll redraws every panel, used after a command and on Ctrl-L.
func (t *TUI) RefreshAll() {
	t.updateSourceView()
	t.updateRegisterView()
	t.updateMemoryView()
	t.updateStorageView()
	t.App.Draw()
}

func (t *TUI) updateSourceView() {
	m := t.Session.Machine
	t.SourceView.Clear()
	if len(m.Lines) == 0 {
		fmt.Fprint(t.SourceView, "[yellow]no program loaded[white]")
		return
	}
	pc := int(m.Registers[machine.PC])
	var b strings.Builder
	for i, line := range m.Lines {
		marker := "  "
		label := sourceLineLabel(m, i)
		hits := sourceLineHits(m, i)
		if i == pc {
			marker = "->"
			fmt.Fprintf(&b, "[yellow]%s %3d %-10s %s%s[white]\n", marker, i, label, line, hits)
			continue
		}
		fmt.Fprintf(&b, "%s %3d %-10s %s%s\n", marker, i, label, line, hits)
	}
	fmt.Fprint(t.SourceView, b.String())
}

func (t *TUI) updateRegisterView() {
	m := t.Session.Machine
	t.RegisterView.Clear()
	var b strings.Builder
	fmt.Fprintf(&b, "PC  = %d\n", m.Registers[machine.PC])
	for i := 1; i < machine.NumRegisters; i++ {
		fmt.Fprintf(&b, "R%-2d = %d\n", i, m.Registers[i])
	}
	fmt.Fprint(t.RegisterView, b.String())
}

// sourceLineLabel annotates a source line with the label that defines it,
// or the nearest preceding label with its offset, so a reader can tell
// which loop/routine a line belongs to without scanning upward by eye.
func sourceLineLabel(m *machine.Machine, line int) string {
	if m.Symbols == nil {
		return ""
	}
	if name := m.Symbols.NameAt(line); name != "" {
		return name + ":"
	}
	name, offset, ok := m.Symbols.Nearest(line)
	if !ok {
		return ""
	}
	return fmt.Sprintf("%s+%d", name, offset)
}

// sourceLineHits renders how many times a line has executed this run, for a
// learner watching a loop body spin to see the count climb live.
func sourceLineHits(m *machine.Machine, line int) string {
	if m.Coverage == nil {
		return ""
	}
	n := m.Coverage.ExecutionCount(line)
	if n == 0 {
		return ""
	}
	return fmt.Sprintf("  (x%d)", n)
}

func (t *TUI) updateMemoryView() {
	t.updateWordArrayView(t.MemoryView, t.Session.Machine.Memory)
}

func (t *TUI) updateStorageView() {
	t.updateWordArrayView(t.StorageView, t.Session.Machine.Storage)
}

func (t *TUI) updateWordArrayView(view *tview.TextView, cells debugger.WordArrayReader) {
	view.Clear()
	var b strings.Builder
	for i := 0; i < cells.Len(); i++ {
		raw := cells.CellAt(i)
		if raw == "" {
			continue
		}
		fmt.Fprintf(&b, "[%2d] %s\n", i, raw)
	}
	fmt.Fprint(view, b.String())
}

// Run starts the event loop, blocking until the user quits.
func (t *TUI) Run() error {
	t.RefreshAll()
	return t.App.SetRoot(t.Pages, true).SetFocus(t.CommandInput).Run()
}
