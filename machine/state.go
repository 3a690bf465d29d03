package machine

import (
	"fmt"

	"github.com/archerh/casm/lang"
)

// Machine owns every piece of casm interpreter state: the register file,
// memory, storage, the label table, the error slot, and the jump
// counters. It replaces the teacher's (and the original casm's)
// process-wide mutable globals with a single value every operation is a
// method on — no implicit global lifecycle, no aliasing across programs
// (spec §9).
type Machine struct {
	Registers [NumRegisters]int32
	Memory    *wordArray
	Storage   *wordArray

	Labels map[string]int
	Lines  []string // program source, for re-lexing at fetch time

	Halted  bool
	Err     *lang.Error // single-slot, write-once-per-run error descriptor
	ErrLine int         // line index Err occurred on, for the host's error print format

	NumLabelJumps  uint64
	LabelJumpCount map[string]uint64
	MaxLabelJumps  uint64 // loop guard ceiling; config can lower it, never raise it

	Bus *Bus

	Trace    *ExecutionTrace
	Jumps    *JumpTrace
	Coverage *CodeCoverage
	Symbols  *SymbolResolver
}

// New creates a Machine with empty memory/storage and no program loaded.
func New() *Machine {
	m := &Machine{
		Memory:         newWordArray(MemorySize),
		Storage:        newWordArray(StorageSize),
		Labels:         make(map[string]int),
		LabelJumpCount: make(map[string]uint64),
		MaxLabelJumps:  MaxLabelJumps,
		Bus:            NewBus(),
	}
	m.Trace = NewExecutionTrace(MaxLabelJumps * 4)
	m.Jumps = NewJumpTrace()
	return m
}

// setError records err into the single slot only if it is empty — the
// first failure wins, and a later set_error whose predecessor has not
// been cleared is silently dropped (spec §3 invariant). lineIdx is the
// line being executed when err occurred, kept alongside Err so the host
// can print the documented "Error at address ... executing '...'" format
// without the caller having to thread it through separately. When this
// call is the one that sets the slot it emits Errored and returns true;
// otherwise it emits nothing and returns false.
func (m *Machine) setError(lineIdx int, err *lang.Error) bool {
	if m.Err != nil {
		return false
	}
	m.Err = err
	m.ErrLine = lineIdx
	m.Bus.Publish(Errored{Message: err.Message})
	return true
}

// SetRegister writes value into register index (1-9 only; index 0, PC, is
// never writable through this entry point — only fetch and branches move
// it, via setPC). Emits RegisterChanged on success.
func (m *Machine) SetRegister(index int, value int32) *lang.Error {
	if index <= 0 || index >= NumRegisters {
		return lang.Errorf(lang.RegOutOfRange, "register R%d is not a writable general-purpose register", index)
	}
	old := m.Registers[index]
	m.Registers[index] = value
	m.Bus.Publish(RegisterChanged{Index: index, Old: old, New: value})
	return nil
}

// GetRegister reads register index (0-9).
func (m *Machine) GetRegister(index int) (int32, *lang.Error) {
	if index < 0 || index >= NumRegisters {
		return 0, lang.Errorf(lang.RegOutOfRange, "register index %d out of range [0, %d)", index, NumRegisters)
	}
	return m.Registers[index], nil
}

// setPC moves the program counter and emits PCChanged. PC is stored as a
// word index (not a byte address) to match Registers[PC]'s int32 slot.
func (m *Machine) setPC(newPC int32) {
	old := m.Registers[PC]
	m.Registers[PC] = newPC
	m.Bus.Publish(PCChanged{Old: int(old), New: int(newPC)})
}

// pc returns the current program counter as a word index.
func (m *Machine) pc() int32 {
	return m.Registers[PC]
}

// writeMemory stores value at a memory cell and emits MemoryChanged.
func (m *Machine) writeMemory(address int32, value string) *lang.Error {
	old, err := m.Memory.WriteRaw(address, value)
	if err != nil {
		return err
	}
	wordIdx := int(address) / WordSize
	m.Bus.Publish(MemoryChanged{WordIndex: wordIdx, Old: old, New: &value})
	if m.Coverage != nil {
		m.Coverage.MarkWrite(wordIdx)
	}
	return nil
}

// writeStorage stores value at a storage cell and emits StorageChanged.
func (m *Machine) writeStorage(address int32, value string) *lang.Error {
	old, err := m.Storage.WriteRaw(address, value)
	if err != nil {
		return err
	}
	wordIdx := int(address) / WordSize
	m.Bus.Publish(StorageChanged{WordIndex: wordIdx, Old: old, New: &value})
	return nil
}

// halt sets the halt flag and emits Halted.
func (m *Machine) halt() {
	m.Halted = true
	m.Bus.Publish(Halted{})
}

// FormatError renders m.Err in the host's documented user-facing print
// format: "Error at address <pc*4> executing '<line>'\n<message>" (spec
// §6). Returns "" if no error is set.
func (m *Machine) FormatError() string {
	if m.Err == nil {
		return ""
	}
	line := ""
	if m.ErrLine >= 0 && m.ErrLine < len(m.Lines) {
		line = m.Lines[m.ErrLine]
	}
	address := int32(m.ErrLine) * WordSize
	return fmt.Sprintf("Error at address %d executing '%s'\n%s", address, line, m.Err.Message)
}

// Snapshot is the read-only state view offered to the host (spec §6):
// pc, general-purpose registers, and the full memory/storage arrays.
type Snapshot struct {
	PC        int
	Registers [NumRegisters]int32 // index 0 holds PC again (same value as the PC field)
	Memory    []*string
	Storage   []*string
	Halted    bool
	Err       *lang.Error
}

// Snapshot captures the current machine state for the host API / UI.
func (m *Machine) Snapshot() Snapshot {
	memCopy := make([]*string, len(m.Memory.cells))
	copy(memCopy, m.Memory.cells)
	storCopy := make([]*string, len(m.Storage.cells))
	copy(storCopy, m.Storage.cells)

	return Snapshot{
		PC:        int(m.pc()),
		Registers: m.Registers,
		Memory:    memCopy,
		Storage:   storCopy,
		Halted:    m.Halted,
		Err:       m.Err,
	}
}
