package machine

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/archerh/casm/lang"
)

// formatValue renders a register value the way wordArray cells store
// numbers: decimal, no leading zeros, signed.
func formatValue(v int32) string {
	return strconv.FormatInt(int64(v), 10)
}

// Step fetches the line at the current PC, re-lexes it, skips a leading
// label definition if present, dispatches on the leading keyword, and
// advances PC — exactly spec §4.X's per-step contract. It is a no-op once
// the machine has halted (returning false, nil) or already holds an error
// (returning false and that same stored error), so a driver loop can call
// Step in a tight `for` without its own guard.
func (m *Machine) Step() (bool, *lang.Error) {
	if m.Halted || m.Err != nil {
		return false, m.Err
	}

	lineIdx := int(m.pc())
	if lineIdx < 0 || lineIdx >= len(m.Lines) {
		m.halt()
		return false, nil
	}

	tokens, lexErr := lang.TokenizeLine(m.Lines[lineIdx])
	if lexErr != nil {
		m.setError(lineIdx, lexErr)
		return false, lexErr
	}

	s := lang.NewScanner(tokens)
	if s.Peek().Kind == lang.LABEL_REF {
		s.Advance() // label
		s.Consume(lang.COLON)
		if s.Err() != nil {
			m.setError(lineIdx, s.Err())
			return false, s.Err()
		}
	}

	if s.AtEnd() {
		// Blank line or a label-only line: advance and continue (spec §3).
		m.setPC(m.pc() + 1)
		if m.Coverage != nil {
			m.Coverage.MarkExecuted(lineIdx)
		}
		return true, nil
	}

	// Pre-increment PC before dispatch, so relative addressing's
	// "current instruction" math ((pc-1)*4) and any taken branch both see
	// the post-fetch program counter (spec §4.A, §4.X).
	m.setPC(m.pc() + 1)

	before := m.Registers
	err := m.dispatch(lineIdx, s)
	if m.Coverage != nil {
		m.Coverage.MarkExecuted(lineIdx)
	}
	m.recordTrace(lineIdx, before)
	if err != nil {
		m.setError(lineIdx, err)
		return false, err
	}
	return !m.Halted, nil
}

// recordTrace diffs the register file against its pre-dispatch snapshot
// and appends the step to m.Trace, a no-op while tracing is disabled.
func (m *Machine) recordTrace(lineIdx int, before [NumRegisters]int32) {
	if m.Trace == nil || !m.Trace.Enabled {
		return
	}
	changes := make(map[int]int32)
	for i, v := range m.Registers {
		if v != before[i] {
			changes[i] = v
		}
	}
	m.Trace.Record(TraceEntry{
		Sequence:        uint64(len(m.Trace.entries)) + 1,
		Line:            lineIdx,
		Source:          m.Lines[lineIdx],
		RegisterChanges: changes,
	})
}

// dispatch executes exactly one instruction body (PC already advanced),
// given the instruction's leading keyword token.
func (m *Machine) dispatch(lineIdx int, s *lang.Scanner) *lang.Error {
	opTok := s.Advance()
	switch opTok.Kind {
	case lang.HALT:
		return m.finishInstruction(s, func() *lang.Error {
			m.halt()
			return nil
		})

	case lang.LOAD:
		return m.execLoad(s)
	case lang.STORE:
		return m.execStore(s)
	case lang.READ:
		return m.execRead(s)
	case lang.WRITE:
		return m.execWrite(s)

	case lang.ADD, lang.SUB, lang.MUL, lang.DIV:
		return m.execArithmetic(opTok.Kind, s)

	case lang.INC:
		return m.execInc(s)

	case lang.BR, lang.BLT, lang.BGT, lang.BLEQ, lang.BGEQ, lang.BEQ, lang.BNEQ:
		return m.execBranch(lineIdx, opTok.Kind, s)

	default:
		return lang.Errorf(lang.ParseUnknownInstruction, "line %d: %q is not an instruction", lineIdx+1, opTok.Literal)
	}
}

// finishInstruction runs body, then rejects trailing tokens left on the
// line (spec §4.S: an instruction must consume every token on its line).
func (m *Machine) finishInstruction(s *lang.Scanner, body func() *lang.Error) *lang.Error {
	if err := body(); err != nil {
		return err
	}
	if s.Err() != nil {
		return s.Err()
	}
	if s.Remaining() > 0 {
		return lang.Errorf(lang.ParseTrailingTokens, "unexpected token %s after instruction", s.Peek().Kind)
	}
	return nil
}

// execLoad implements "LOAD Rx, <load_value>".
func (m *Machine) execLoad(s *lang.Scanner) *lang.Error {
	dst, regErr := registerIndex(s)
	s.Consume(lang.COMMA)
	if s.Err() != nil {
		return s.Err()
	}
	if regErr != nil {
		return regErr
	}
	return m.finishInstruction(s, func() *lang.Error {
		val, err := LoadValue(s, m)
		if err != nil {
			return err
		}
		return m.SetRegister(dst, val)
	})
}

// execStore implements "STORE Rx, <store_address>".
func (m *Machine) execStore(s *lang.Scanner) *lang.Error {
	src, regErr := registerIndex(s)
	s.Consume(lang.COMMA)
	if s.Err() != nil {
		return s.Err()
	}
	if regErr != nil {
		return regErr
	}
	return m.finishInstruction(s, func() *lang.Error {
		addr, err := StoreAddress(s, m)
		if err != nil {
			return err
		}
		val, err := m.GetRegister(src)
		if err != nil {
			return err
		}
		return m.writeMemory(addr, formatValue(val))
	})
}

// execRead implements "READ Rx, <read_value>" — Rx receives the value
// found in Storage at the resolved address.
func (m *Machine) execRead(s *lang.Scanner) *lang.Error {
	dst, regErr := registerIndex(s)
	s.Consume(lang.COMMA)
	if s.Err() != nil {
		return s.Err()
	}
	if regErr != nil {
		return regErr
	}
	return m.finishInstruction(s, func() *lang.Error {
		val, err := ReadValue(s, m)
		if err != nil {
			return err
		}
		return m.SetRegister(dst, val)
	})
}

// execWrite implements "WRITE Rx, <write_address>" — Rx's value is
// written into Storage at the resolved address.
func (m *Machine) execWrite(s *lang.Scanner) *lang.Error {
	src, regErr := registerIndex(s)
	s.Consume(lang.COMMA)
	if s.Err() != nil {
		return s.Err()
	}
	if regErr != nil {
		return regErr
	}
	return m.finishInstruction(s, func() *lang.Error {
		addr, err := WriteAddress(s, m)
		if err != nil {
			return err
		}
		val, err := m.GetRegister(src)
		if err != nil {
			return err
		}
		return m.writeStorage(addr, formatValue(val))
	})
}

// execArithmetic implements "ADD|SUB|MUL|DIV Rx, Ry": Rx <- Rx op Ry, with
// DIV's remainder-before-quotient ordering (Ry <- Rx mod Ry, then
// Rx <- Rx / Ry) fixed by spec §4.X.
func (m *Machine) execArithmetic(op lang.Kind, s *lang.Scanner) *lang.Error {
	xIdx, xErr := registerIndex(s)
	s.Consume(lang.COMMA)
	yIdx, yErr := registerIndex(s)
	if s.Err() != nil {
		return s.Err()
	}
	if xErr != nil {
		return xErr
	}
	if yErr != nil {
		return yErr
	}
	return m.finishInstruction(s, func() *lang.Error {
		x, err := m.GetRegister(xIdx)
		if err != nil {
			return err
		}
		y, err := m.GetRegister(yIdx)
		if err != nil {
			return err
		}
		switch op {
		case lang.ADD:
			return m.SetRegister(xIdx, x+y)
		case lang.SUB:
			return m.SetRegister(xIdx, x-y)
		case lang.MUL:
			return m.SetRegister(xIdx, x*y)
		case lang.DIV:
			if y == 0 {
				return lang.Errorf(lang.DivByZero, "division by zero in register R%d", yIdx)
			}
			remainder := x % y
			quotient := x / y
			if err := m.SetRegister(yIdx, remainder); err != nil {
				return err
			}
			return m.SetRegister(xIdx, quotient)
		}
		return nil
	})
}

// execInc implements "INC Rx": Rx <- Rx + 1.
func (m *Machine) execInc(s *lang.Scanner) *lang.Error {
	idx, regErr := registerIndex(s)
	if s.Err() != nil {
		return s.Err()
	}
	if regErr != nil {
		return regErr
	}
	return m.finishInstruction(s, func() *lang.Error {
		val, err := m.GetRegister(idx)
		if err != nil {
			return err
		}
		return m.SetRegister(idx, val+1)
	})
}

// execBranch implements every conditional/unconditional branch:
// "BR Label", "BLT Rx, Ry, Label", and its siblings (BGT/BLEQ/BGEQ/BEQ/BNEQ).
// BR takes no comparison operands. Taking a branch records the jump and
// bumps both the global and per-label jump counters, then reports
// PossibleInfiniteLoop if the configured cap is exceeded (spec §4.D, §8).
func (m *Machine) execBranch(lineIdx int, op lang.Kind, s *lang.Scanner) *lang.Error {
	var xIdx, yIdx int
	var cmpErr *lang.Error
	if op != lang.BR {
		xIdx, cmpErr = registerIndex(s)
		if cmpErr == nil {
			s.Consume(lang.COMMA)
		}
		yIdx, _ = registerIndex(s)
		s.Consume(lang.COMMA)
	}
	labelTok := s.Consume(lang.LABEL_REF)
	if s.Err() != nil {
		return s.Err()
	}
	if cmpErr != nil {
		return cmpErr
	}

	return m.finishInstruction(s, func() *lang.Error {
		take := true
		if op != lang.BR {
			x, err := m.GetRegister(xIdx)
			if err != nil {
				return err
			}
			y, err := m.GetRegister(yIdx)
			if err != nil {
				return err
			}
			switch op {
			case lang.BLT:
				take = x < y
			case lang.BGT:
				take = x > y
			case lang.BLEQ:
				take = x <= y
			case lang.BGEQ:
				take = x >= y
			case lang.BEQ:
				take = x == y
			case lang.BNEQ:
				take = x != y
			}
		}
		if !take {
			return nil
		}

		label := labelTok.Literal
		target, ok := m.Labels[label]
		if !ok {
			return lang.Errorf(lang.UnknownLabel, "branch to undefined label %q", label)
		}

		m.NumLabelJumps++
		m.LabelJumpCount[label]++
		m.Jumps.Record(m.NumLabelJumps, label, lineIdx, m.LabelJumpCount[label])
		m.setPC(int32(target))

		if m.NumLabelJumps > m.MaxLabelJumps {
			return m.infiniteLoopError()
		}
		return nil
	})
}

// infiniteLoopError reports the guard trip. The message ends with one
// "label: count" line per label taken so far, from m.Jumps.Breakdown, so
// it names which branch looped (spec §4.D, §8 scenario 6).
func (m *Machine) infiniteLoopError() *lang.Error {
	var b strings.Builder
	fmt.Fprintf(&b, "possible infinite loop: exceeded %d total label jumps", m.MaxLabelJumps)
	for _, entry := range m.Jumps.Breakdown(m.LabelJumpCount) {
		fmt.Fprintf(&b, "\n  %s: %d", entry.Label, entry.RunningAt)
	}
	return lang.NewError(lang.PossibleInfiniteLoop, b.String())
}
