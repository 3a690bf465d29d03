package machine

// Configuration constants from spec §6. These are fixed architectural
// limits, not runtime-tunable state — config.Config can lower MaxLabelJumps
// for a tighter classroom demo (see config package), but it cannot raise
// any of these past their compiled-in ceiling.
const (
	MemorySize    = 64 // words
	StorageSize   = 64 // words
	MaxLabels     = 16
	MaxLabelJumps = 1000

	// NumRegisters is the size of the register file: index 0 is PC,
	// indices 1-9 are general purpose (spec §3).
	NumRegisters = 10
	// PC is the register index of the program counter.
	PC = 0

	// WordSize is the byte width of one word-aligned memory/storage cell.
	WordSize = 4
)
