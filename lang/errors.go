package lang

import "fmt"

// Tag is the closed taxonomy of casm error kinds, spanning every pipeline
// stage from the lexer through the executor. Keeping one enum instead of
// a per-package error type is what lets the machine package's single-slot
// error descriptor store any stage's failure without wrapping.
type Tag int

const (
	LexUnexpectedChar Tag = iota
	LexTooManyTokens
	PreprocessDuplicateLabel
	PreprocessTooManyLabels
	ParseExpectedToken
	ParseTrailingTokens
	ParseUnknownInstruction
	AddrMisaligned
	AddrOutOfRange
	AddrIllegalMode
	MemUninitialized
	RegOutOfRange
	DivByZero
	UnknownLabel
	PossibleInfiniteLoop
)

var tagNames = map[Tag]string{
	LexUnexpectedChar:        "LexUnexpectedChar",
	LexTooManyTokens:         "LexTooManyTokens",
	PreprocessDuplicateLabel: "PreprocessDuplicateLabel",
	PreprocessTooManyLabels:  "PreprocessTooManyLabels",
	ParseExpectedToken:       "ParseExpectedToken",
	ParseTrailingTokens:      "ParseTrailingTokens",
	ParseUnknownInstruction:  "ParseUnknownInstruction",
	AddrMisaligned:           "AddrMisaligned",
	AddrOutOfRange:           "AddrOutOfRange",
	AddrIllegalMode:          "AddrIllegalMode",
	MemUninitialized:         "MemUninitialized",
	RegOutOfRange:            "RegOutOfRange",
	DivByZero:                "DivByZero",
	UnknownLabel:             "UnknownLabel",
	PossibleInfiniteLoop:     "PossibleInfiniteLoop",
}

func (t Tag) String() string {
	if name, ok := tagNames[t]; ok {
		return name
	}
	return fmt.Sprintf("Tag(%d)", t)
}

// Error is the structured diagnostic every fallible casm operation
// returns. It replaces the teacher's pattern of a bare fmt.Errorf with a
// tagged sum type the caller can switch on without string matching.
type Error struct {
	Tag     Tag
	Message string
}

func (e *Error) Error() string {
	return e.Message
}

// NewError builds a tagged error with a pre-formatted message.
func NewError(tag Tag, message string) *Error {
	return &Error{Tag: tag, Message: message}
}

// Errorf builds a tagged error with a formatted message.
func Errorf(tag Tag, format string, args ...any) *Error {
	return &Error{Tag: tag, Message: fmt.Sprintf(format, args...)}
}
