package machine

import (
	"strconv"

	"github.com/archerh/casm/lang"
)

// wordArray is the shape shared by Memory and Storage: a fixed-size,
// word-addressed array of cells that each hold either nothing or an owned
// string — a program source line (installed at load) or the decimal
// string form of an integer a program wrote. Byte addresses must be a
// multiple of WordSize; word index = address / WordSize.
type wordArray struct {
	cells []*string
}

func newWordArray(size int) *wordArray {
	return &wordArray{cells: make([]*string, size)}
}

func (w *wordArray) reset() {
	for i := range w.cells {
		w.cells[i] = nil
	}
}

// checkAddress validates alignment and range, per spec §9's corrected
// bounds check (address/4 >= size, not the source's buggy address%4 check),
// and returns the resolved word index on success.
func (w *wordArray) checkAddress(address int32) (int, *lang.Error) {
	if address%WordSize != 0 {
		return 0, lang.Errorf(lang.AddrMisaligned, "address %d is not %d-byte aligned", address, WordSize)
	}
	idx, convErr := SafeIntToWordIndex(address)
	if convErr != nil || idx >= len(w.cells) {
		return 0, lang.Errorf(lang.AddrOutOfRange, "address %d is out of range [0, %d)", address, len(w.cells)*WordSize)
	}
	return idx, nil
}

// ReadRaw returns the raw string contents of a cell (nil if uninitialized).
func (w *wordArray) ReadRaw(address int32) (*string, *lang.Error) {
	idx, err := w.checkAddress(address)
	if err != nil {
		return nil, err
	}
	return w.cells[idx], nil
}

// ReadValue returns a cell's contents parsed as a signed integer. A cell
// that is nil, or that holds non-numeric text (most commonly an
// as-yet-unexecuted program source line occupying its original load
// address), is reported as MemUninitialized: neither case is a value a
// program can legally compute with.
func (w *wordArray) ReadValue(address int32) (int32, *lang.Error) {
	raw, err := w.ReadRaw(address)
	if err != nil {
		return 0, err
	}
	if raw == nil {
		return 0, lang.Errorf(lang.MemUninitialized, "read of uninitialized cell at address %d", address)
	}
	n, parseErr := strconv.ParseInt(*raw, 10, 32)
	if parseErr != nil {
		return 0, lang.Errorf(lang.MemUninitialized, "cell at address %d does not hold a number (%q)", address, *raw)
	}
	return int32(n), nil
}

// WriteRaw stores a raw string into a cell and returns the previous
// contents (nil if it was uninitialized), for event emission.
func (w *wordArray) WriteRaw(address int32, value string) (*string, *lang.Error) {
	idx, err := w.checkAddress(address)
	if err != nil {
		return nil, err
	}
	old := w.cells[idx]
	w.cells[idx] = &value
	return old, nil
}

// WriteValue stores the decimal string form of an integer into a cell.
func (w *wordArray) WriteValue(address int32, value int32) (*string, *lang.Error) {
	return w.WriteRaw(address, strconv.FormatInt(int64(value), 10))
}

// InstallLine stores a program source line verbatim, used only by Load to
// populate cells 0..num_lines-1 with the program's own text.
func (w *wordArray) InstallLine(index int, line string) {
	w.cells[index] = &line
}

// Len reports the array's word capacity, for read-only display callers
// (the tui/gui packages) that only want to range over cells.
func (w *wordArray) Len() int {
	return len(w.cells)
}

// CellAt returns a cell's raw contents, or "" if uninitialized — the
// display-only counterpart to ReadRaw that never fails on alignment or
// range, since a panel renderer iterates every valid index itself.
func (w *wordArray) CellAt(i int) string {
	if i < 0 || i >= len(w.cells) || w.cells[i] == nil {
		return ""
	}
	return *w.cells[i]
}
