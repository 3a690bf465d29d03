// Package gui implements the graphical visualizer for casm, built on
// fyne the same way the teacher's debugger package builds its GUI over
// the ARM emulator.
package gui

import (
	"fmt"
	"strings"
	"sync"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/app"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/theme"
	"fyne.io/fyne/v2/widget"

	"github.com/archerh/casm/debugger"
	"github.com/archerh/casm/machine"
)

// GUI is the fyne window over a debugger.Session.
type GUI struct {
	Session *debugger.Session
	App     fyne.App
	Window  fyne.Window

	SourceView      *widget.TextGrid
	RegisterView    *widget.TextGrid
	MemoryView      *widget.TextGrid
	StorageView     *widget.TextGrid
	BreakpointsList *widget.List
	ConsoleOutput   *widget.TextGrid
	StatusLabel     *widget.Label
	Toolbar         *widget.Toolbar

	breakpointLines []string

	consoleBuffer strings.Builder
	consoleMutex  sync.Mutex

	sub *machine.Subscription
}

// consoleWriter pipes machine output into the console TextGrid, grounded
// on the teacher's guiWriter.
type consoleWriter struct {
	g *GUI
}

func (w *consoleWriter) Write(p []byte) (int, error) {
	w.g.consoleMutex.Lock()
	defer w.g.consoleMutex.Unlock()
	w.g.consoleBuffer.Write(p)
	w.g.updateConsole()
	return len(p), nil
}

// Run builds and shows the GUI, blocking until the window closes.
func Run(session *debugger.Session) {
	g := New(session)
	g.Window.ShowAndRun()
}

// New constructs a GUI over session without showing it yet; Run calls it
// and then shows the window.
func New(session *debugger.Session) *GUI {
	myApp := app.New()
	myWindow := myApp.NewWindow("casm visualizer")

	g := &GUI{
		Session: session,
		App:     myApp,
		Window:  myWindow,
	}

	g.initializeViews()
	g.buildLayout()
	g.setupToolbar()
	g.sub = session.Machine.Bus.Subscribe(g.onEvent)

	g.Window.Resize(fyne.NewSize(1200, 800))
	return g
}

func (g *GUI) initializeViews() {
	g.SourceView = widget.NewTextGrid()
	g.SourceView.SetText("no program loaded")

	g.RegisterView = widget.NewTextGrid()
	g.MemoryView = widget.NewTextGrid()
	g.StorageView = widget.NewTextGrid()
	g.updateRegisters()
	g.updateMemory()
	g.updateStorage()

	g.breakpointLines = nil
	g.BreakpointsList = widget.NewList(
		func() int { return len(g.breakpointLines) },
		func() fyne.CanvasObject { return widget.NewLabel("template") },
		func(id widget.ListItemID, obj fyne.CanvasObject) {
			obj.(*widget.Label).SetText(g.breakpointLines[id])
		},
	)

	g.ConsoleOutput = widget.NewTextGrid()
	g.StatusLabel = widget.NewLabel("ready")
}

func (g *GUI) buildLayout() {
	sourcePanel := container.NewBorder(widget.NewLabel("Source"), nil, nil, nil, container.NewScroll(g.SourceView))
	registerPanel := container.NewBorder(widget.NewLabel("Registers"), nil, nil, nil, container.NewScroll(g.RegisterView))
	memoryPanel := container.NewBorder(widget.NewLabel("Memory"), nil, nil, nil, container.NewScroll(g.MemoryView))
	storagePanel := container.NewBorder(widget.NewLabel("Storage"), nil, nil, nil, container.NewScroll(g.StorageView))
	breakpointsPanel := container.NewBorder(widget.NewLabel("Breakpoints"), nil, nil, nil, container.NewScroll(g.BreakpointsList))
	consolePanel := container.NewBorder(widget.NewLabel("Console"), nil, nil, nil, container.NewScroll(g.ConsoleOutput))

	leftPanel := container.NewMax(sourcePanel)

	rightTop := container.NewVSplit(registerPanel, breakpointsPanel)
	rightTop.SetOffset(0.6)

	bottomTabs := container.NewAppTabs(
		container.NewTabItem("Memory", memoryPanel),
		container.NewTabItem("Storage", storagePanel),
		container.NewTabItem("Console", consolePanel),
	)

	rightPanel := container.NewVSplit(rightTop, bottomTabs)
	rightPanel.SetOffset(0.5)

	mainSplit := container.NewHSplit(leftPanel, rightPanel)
	mainSplit.SetOffset(0.55)

	statusBar := container.NewBorder(nil, nil, nil, nil, g.StatusLabel)

	content := container.NewBorder(g.Toolbar, statusBar, nil, nil, mainSplit)
	g.Window.SetContent(content)
}

func (g *GUI) setupToolbar() {
	g.Toolbar = widget.NewToolbar(
		widget.NewToolbarAction(theme.MediaPlayIcon(), g.runProgram),
		widget.NewToolbarAction(theme.MediaSkipNextIcon(), g.stepProgram),
		widget.NewToolbarSeparator(),
		widget.NewToolbarAction(theme.ContentAddIcon(), g.promptBreakpoint),
		widget.NewToolbarAction(theme.ViewRefreshIcon(), g.refreshAll),
	)
}

func (g *GUI) runProgram() {
	output, err := g.Session.Execute("run")
	g.reportAndRefresh(output, err)
}

func (g *GUI) stepProgram() {
	output, err := g.Session.Execute("step")
	g.reportAndRefresh(output, err)
}

// promptBreakpoint sets a breakpoint at the line the source view cursor
// currently indicates. A full line picker is left to a richer input
// widget than this panel set carries today.
func (g *GUI) promptBreakpoint() {
	line := int(g.Session.Machine.Registers[machine.PC])
	output, err := g.Session.Execute(fmt.Sprintf("break %d", line))
	g.reportAndRefresh(output, err)
}

// reportAndRefresh writes a command's output and status to the console
// and status label through consoleWriter, then redraws every panel.
func (g *GUI) reportAndRefresh(output string, err error) {
	w := &consoleWriter{g: g}
	if err != nil {
		fmt.Fprintf(w, "error: %v\n", err)
		g.StatusLabel.SetText(err.Error())
	} else {
		if output != "" {
			fmt.Fprintln(w, output)
		}
		g.StatusLabel.SetText("ready")
	}
	g.refreshAll()
}

func (g *GUI) onEvent(ev machine.Event) {
	switch ev.(type) {
	case machine.RegisterChanged, machine.PCChanged:
		g.updateRegisters()
		g.updateSource()
	case machine.MemoryChanged:
		g.updateMemory()
	case machine.StorageChanged:
		g.updateStorage()
	}
}

func (g *GUI) refreshAll() {
	g.updateSource()
	g.updateRegisters()
	g.updateMemory()
	g.updateStorage()
	g.updateBreakpoints()
}

func (g *GUI) updateSource() {
	m := g.Session.Machine
	if len(m.Lines) == 0 {
		g.SourceView.SetText("no program loaded")
		return
	}
	pc := int(m.Registers[machine.PC])
	var b strings.Builder
	for i, line := range m.Lines {
		prefix := "  "
		if i == pc {
			prefix = "->"
		}
		fmt.Fprintf(&b, "%s %3d  %s\n", prefix, i, line)
	}
	g.SourceView.SetText(b.String())
}

func (g *GUI) updateRegisters() {
	m := g.Session.Machine
	var b strings.Builder
	fmt.Fprintf(&b, "PC = %d\n", m.Registers[machine.PC])
	for i := 1; i < machine.NumRegisters; i++ {
		fmt.Fprintf(&b, "R%d = %d\n", i, m.Registers[i])
	}
	g.RegisterView.SetText(b.String())
}

func (g *GUI) updateMemory() {
	g.updateWordArrayView(g.MemoryView, g.Session.Machine.Memory)
}

func (g *GUI) updateStorage() {
	g.updateWordArrayView(g.StorageView, g.Session.Machine.Storage)
}

func (g *GUI) updateWordArrayView(view *widget.TextGrid, cells debugger.WordArrayReader) {
	var b strings.Builder
	for i := 0; i < cells.Len(); i++ {
		raw := cells.CellAt(i)
		if raw == "" {
			continue
		}
		fmt.Fprintf(&b, "[%d] %s\n", i, raw)
	}
	view.SetText(b.String())
}

func (g *GUI) updateBreakpoints() {
	bps := g.Session.Breakpoints.List()
	lines := make([]string, 0, len(bps))
	for _, bp := range bps {
		lines = append(lines, fmt.Sprintf("#%d line %d (hits %d)", bp.ID, bp.Line, bp.HitCount))
	}
	g.breakpointLines = lines
	g.BreakpointsList.Refresh()
}

func (g *GUI) updateConsole() {
	g.ConsoleOutput.SetText(g.consoleBuffer.String())
}
