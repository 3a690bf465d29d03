package tools

import (
	"strings"

	"github.com/archerh/casm/lang"
)

// FormatOptions controls column layout for Format, grounded on the
// teacher's FormatOptions, reduced to the columns casm's flatter grammar
// actually has: an optional label, the instruction, its operands, and a
// trailing comment.
type FormatOptions struct {
	LabelColumn        int
	InstructionColumn  int
	OperandColumn      int
	CommentColumn      int
	PreserveEmptyLines bool
}

// DefaultFormatOptions matches the teacher's default layout widths.
func DefaultFormatOptions() *FormatOptions {
	return &FormatOptions{
		LabelColumn:        0,
		InstructionColumn:  10,
		OperandColumn:      18,
		CommentColumn:      40,
		PreserveEmptyLines: true,
	}
}

// CompactFormatOptions packs instructions tight against their label,
// dropping a dedicated operand column.
func CompactFormatOptions() *FormatOptions {
	return &FormatOptions{
		LabelColumn:        0,
		InstructionColumn:  8,
		OperandColumn:      8,
		CommentColumn:      0,
		PreserveEmptyLines: false,
	}
}

// Format reformats every line to a consistent column layout, re-lexing
// each line the way the executor does so the result reflects the actual
// token boundaries rather than raw whitespace splitting.
func Format(lines []string, opts *FormatOptions) string {
	if opts == nil {
		opts = DefaultFormatOptions()
	}

	var b strings.Builder
	for _, line := range lines {
		formatted, ok := formatLine(line, opts)
		if !ok {
			if opts.PreserveEmptyLines {
				b.WriteByte('\n')
			}
			continue
		}
		b.WriteString(formatted)
		b.WriteByte('\n')
	}
	return b.String()
}

// formatLine renders one source line, splitting it into an optional
// label, a body (instruction plus operands), and a trailing comment
// starting at the line's first ';'. A line that fails to tokenize, or a
// comment-only line, is passed through with only its surrounding
// whitespace trimmed, so a malformed file never loses source text under
// reformatting; a blank line reports false.
func formatLine(line string, opts *FormatOptions) (string, bool) {
	trimmed := strings.TrimSpace(line)
	if trimmed == "" {
		return "", false
	}

	comment := ""
	if idx := strings.IndexByte(line, ';'); idx >= 0 {
		comment = strings.TrimSpace(line[idx:])
	}

	tokens, err := lang.TokenizeLine(line)
	if err != nil || len(tokens) == 0 {
		return trimmed, true
	}

	var label string
	rest := tokens
	if len(tokens) >= 2 && tokens[0].Kind == lang.LABEL_REF && tokens[1].Kind == lang.COLON {
		label = tokens[0].Literal + ":"
		rest = tokens[2:]
	}
	if len(rest) == 0 {
		return appendComment(label, comment, opts), true
	}

	mnemonic := rest[0].Literal
	operands := renderTokens(rest[1:])

	var out strings.Builder
	if label != "" {
		out.WriteString(label)
	}
	pad(&out, opts.InstructionColumn)
	out.WriteString(mnemonic)
	if operands != "" {
		pad(&out, opts.OperandColumn)
		out.WriteString(operands)
	}
	return appendComment(out.String(), comment, opts), true
}

// appendComment pads body out to CommentColumn and appends comment, or
// returns body unchanged if there is no comment or no comment column.
func appendComment(body, comment string, opts *FormatOptions) string {
	if comment == "" || opts.CommentColumn <= 0 {
		if comment != "" {
			if body != "" {
				return body + " " + comment
			}
			return comment
		}
		return body
	}
	var out strings.Builder
	out.WriteString(body)
	pad(&out, opts.CommentColumn)
	out.WriteString(comment)
	return out.String()
}

// renderTokens joins tokens back into casm surface syntax: operands
// comma-separated, bracket/at/dollar/equal operators hugging the
// operand they prefix or wrap rather than floating as separate words.
func renderTokens(tokens lang.TokenList) string {
	var b strings.Builder
	trailingSpace := true // no space needed before the first token
	for _, tok := range tokens {
		switch tok.Kind {
		case lang.COMMA:
			b.WriteString(", ")
			trailingSpace = true
		case lang.L_BRACKET:
			if !trailingSpace {
				b.WriteByte(' ')
			}
			b.WriteString("[")
			trailingSpace = true
		case lang.R_BRACKET:
			b.WriteString("]")
			trailingSpace = false
		case lang.EQUAL, lang.AT, lang.DOLLAR:
			if !trailingSpace {
				b.WriteByte(' ')
			}
			b.WriteString(tok.Literal)
			trailingSpace = true
		default:
			if !trailingSpace {
				b.WriteByte(' ')
			}
			b.WriteString(tok.Literal)
			trailingSpace = false
		}
	}
	return b.String()
}

func pad(b *strings.Builder, col int) {
	for b.Len() < col {
		b.WriteByte(' ')
	}
	if b.Len() == col {
		return
	}
	b.WriteByte(' ')
}
