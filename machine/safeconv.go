package machine

import "fmt"

// Safe numeric conversions at the int/uint/int32 boundary. Registers are
// signed, wrap-on-overflow 32-bit integers (spec §4.A); word indices, byte
// addresses, and jump counters are naturally non-negative. Centralizing
// the boundary checks here (grounded on the teacher's vm/safeconv.go)
// keeps the executor and addressing resolver from each hand-rolling range
// checks inline.

// SafeIntToWordIndex converts a byte address already known to be
// non-negative and word-aligned into a zero-based word index.
func SafeIntToWordIndex(address int32) (int, error) {
	if address < 0 {
		return 0, fmt.Errorf("cannot convert negative address %d to word index", address)
	}
	return int(address) / WordSize, nil
}

// SafeInt32ToNonNegativeInt converts a register value to a non-negative
// int, used where a register supplies a count or index that must not be
// negative (e.g. the PC register read as a line index).
func SafeInt32ToNonNegativeInt(v int32) (int, error) {
	if v < 0 {
		return 0, fmt.Errorf("cannot use negative value %d where a non-negative count is required", v)
	}
	return int(v), nil
}
