package machine

// JumpEntry records one taken branch: which label it jumped to, the
// sequence number of the jump, and the running per-label total at that
// point. Grounded on the teacher's vm/flag_trace.go, which records every
// CPSR flag change keyed by which flag changed — here the key is the
// label name instead, which is exactly spec §3's "per-label jump
// counter" and §4.D's "per-label jump breakdown" given a queryable home.
type JumpEntry struct {
	Sequence  uint64
	Label     string
	FromLine  int
	RunningAt uint64
}

// JumpTrace accumulates every taken branch for the lifetime of one run.
// Load resets it.
type JumpTrace struct {
	entries []JumpEntry
}

// NewJumpTrace creates an empty jump trace.
func NewJumpTrace() *JumpTrace {
	return &JumpTrace{}
}

// Reset clears the trace, called by Machine on every Load.
func (j *JumpTrace) Reset() {
	j.entries = j.entries[:0]
}

// Record appends one taken branch.
func (j *JumpTrace) Record(sequence uint64, label string, fromLine int, runningAt uint64) {
	j.entries = append(j.entries, JumpEntry{Sequence: sequence, Label: label, FromLine: fromLine, RunningAt: runningAt})
}

// Entries returns every recorded jump, oldest first.
func (j *JumpTrace) Entries() []JumpEntry {
	return j.entries
}

// Breakdown returns the total taken-jump count per label, in the shape
// the PossibleInfiniteLoop error message lists (spec §4.D, §8 scenario 6).
func (j *JumpTrace) Breakdown(counts map[string]uint64) []JumpEntry {
	// Breakdown is derived straight from Machine.LabelJumpCount rather than
	// re-deriving from entries, since Machine already maintains that map
	// incrementally; the order of the returned entries is not defined.
	out := make([]JumpEntry, 0, len(counts))
	for label, count := range counts {
		out = append(out, JumpEntry{Label: label, RunningAt: count})
	}
	return out
}
