package machine

import (
	"github.com/archerh/casm/lang"
)

// Load resets the machine and installs a new program: every line is
// preprocessed for labels, then copied verbatim into Memory starting at
// word 0 (spec §3 — a program's own source occupies its first len(lines)
// memory cells until overwritten by a STORE). PC starts at word 0.
//
// Load is the only place state is reset; Step and Run never reset
// anything, so a caller can inspect a halted or errored machine's final
// state for as long as it wants before loading the next program.
func (m *Machine) Load(lines []string) *lang.Error {
	if len(lines) > MemorySize {
		return lang.Errorf(lang.AddrOutOfRange, "program has %d lines, exceeds %d-word memory", len(lines), MemorySize)
	}

	labels, err := lang.Preprocess(lines, MaxLabels)
	if err != nil {
		return err
	}

	m.Registers = [NumRegisters]int32{}
	m.Memory.reset()
	m.Storage.reset()
	m.Halted = false
	m.Err = nil
	m.ErrLine = 0
	m.NumLabelJumps = 0
	m.LabelJumpCount = make(map[string]uint64)
	m.Trace.Reset()
	m.Jumps.Reset()

	m.Lines = lines
	m.Labels = labels
	m.Symbols = NewSymbolResolver(labels)
	m.Coverage = NewCodeCoverage(len(lines))

	for i, line := range lines {
		m.Memory.InstallLine(i, line)
	}

	return nil
}

// Run steps the machine until it halts, hits an error, or runs off the
// end of the program, and returns the number of steps taken. It is a
// plain synchronous loop — spec §5 rules out a cancellation primitive,
// so there is nothing for a context.Context to do here; a caller that
// wants to interrupt a run should drive Step itself instead.
func (m *Machine) Run() (int, *lang.Error) {
	steps := 0
	for {
		ok, err := m.Step()
		steps++
		if err != nil {
			return steps, err
		}
		if !ok {
			return steps, nil
		}
	}
}
