package machine

// TraceEntry is one step's worth of execution history: which line ran,
// and which registers changed as a result. Grounded on the teacher's
// vm/trace.go TraceEntry, trimmed to casm's register file (no opcode,
// no CPSR, no duration — casm has no flags and no wall-clock-sensitive
// instructions).
type TraceEntry struct {
	Sequence        uint64
	Line            int
	Source          string
	RegisterChanges map[int]int32 // register index -> new value
}

// ExecutionTrace ring-buffers the most recent steps of a run in memory; it
// writes nothing itself (cmd/casm's headless path dumps Entries to a file
// under -trace). Grounded on the teacher's vm/trace.go ExecutionTrace.
type ExecutionTrace struct {
	Enabled    bool
	MaxEntries int
	entries    []TraceEntry
}

// NewExecutionTrace creates a trace with the given capacity, disabled by
// default — a caller (cmd/casm, under its -trace flag) turns it on.
func NewExecutionTrace(maxEntries int) *ExecutionTrace {
	return &ExecutionTrace{MaxEntries: maxEntries}
}

// Reset clears the trace, called by Machine on every Load.
func (t *ExecutionTrace) Reset() {
	t.entries = t.entries[:0]
}

// Record appends one step, dropping the oldest entry once MaxEntries is
// reached so a runaway program can't grow the trace without bound.
func (t *ExecutionTrace) Record(entry TraceEntry) {
	if !t.Enabled {
		return
	}
	if t.MaxEntries > 0 && len(t.entries) >= t.MaxEntries {
		t.entries = t.entries[1:]
	}
	t.entries = append(t.entries, entry)
}

// Entries returns every currently-retained entry, oldest first.
func (t *ExecutionTrace) Entries() []TraceEntry {
	return t.entries
}
