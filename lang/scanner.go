package lang

// Scanner is a cursor with one-token lookahead over a single line's
// TokenList. It backs the executor's operand-parsing helpers (spec §4.S).
// Once an error is set it becomes a pure short-circuit: every further
// check/consume returns the NONE sentinel without touching the cursor,
// so a chain of operand parses after a failure costs nothing and reports
// only the first problem.
type Scanner struct {
	tokens TokenList
	pos    int
	err    *Error
}

// NewScanner creates a scanner over tokens.
func NewScanner(tokens TokenList) *Scanner {
	return &Scanner{tokens: tokens}
}

var noneToken = Token{Kind: NONE}

// AtEnd reports whether the cursor has consumed every token.
func (s *Scanner) AtEnd() bool {
	return s.pos >= len(s.tokens)
}

// Peek returns the current token without advancing, or the NONE sentinel
// past the end of the list.
func (s *Scanner) Peek() Token {
	if s.AtEnd() {
		return noneToken
	}
	return s.tokens[s.pos]
}

// Advance returns the current token and moves the cursor forward one.
// Past the end it returns NONE and leaves the cursor clamped.
func (s *Scanner) Advance() Token {
	if s.AtEnd() {
		return noneToken
	}
	t := s.tokens[s.pos]
	s.pos++
	return t
}

// Prev returns the most recently advanced-past token, or NONE at the start.
func (s *Scanner) Prev() Token {
	if s.pos == 0 {
		return noneToken
	}
	return s.tokens[s.pos-1]
}

// Check reports whether the current token has the given kind, without
// consuming it. It is a no-op returning false once an error is set.
func (s *Scanner) Check(kind Kind) bool {
	if s.err != nil {
		return false
	}
	return s.Peek().Kind == kind
}

// Consume advances past the current token if it has the expected kind;
// otherwise it records a ParseExpectedToken error (first one wins) and
// returns the NONE sentinel.
func (s *Scanner) Consume(kind Kind) Token {
	if s.err != nil {
		return noneToken
	}
	if s.Peek().Kind != kind {
		s.SetError(Errorf(ParseExpectedToken, "expected %s but found %s", kind, s.Peek().Kind))
		return noneToken
	}
	return s.Advance()
}

// SetError records err if no error has been recorded yet; later calls are
// dropped, matching the single-slot "first writer wins" convention used
// throughout the pipeline (spec §3 invariants, §9).
func (s *Scanner) SetError(err *Error) {
	if s.err == nil {
		s.err = err
	}
}

// Err returns the first error recorded against this scanner, if any.
func (s *Scanner) Err() *Error {
	return s.err
}

// Remaining reports how many tokens are left unconsumed — used by callers
// that must reject trailing tokens after an instruction is fully parsed.
func (s *Scanner) Remaining() int {
	if s.pos >= len(s.tokens) {
		return 0
	}
	return len(s.tokens) - s.pos
}
