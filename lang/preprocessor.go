package lang

import "fmt"

// Preprocess walks every line of a program, lexes it, and harvests leading
// label definitions ("LABEL:") into a name→line-index table. It does not
// rewrite any line: the Executor re-lexes the same source at run time and
// skips a leading LABEL_REF COLON pair itself (spec §4.P). maxLabels caps
// the table's capacity; case is significant in label names.
func Preprocess(lines []string, maxLabels int) (map[string]int, *Error) {
	labels := make(map[string]int, maxLabels)

	for i, line := range lines {
		tokens, lexErr := TokenizeLine(line)
		if lexErr != nil {
			return nil, lexErr
		}
		if len(tokens) < 2 || tokens[0].Kind != LABEL_REF || tokens[1].Kind != COLON {
			continue
		}

		name := tokens[0].Literal
		if _, exists := labels[name]; exists {
			return nil, Errorf(PreprocessDuplicateLabel, "duplicate label %q at line %d", name, i)
		}
		if len(labels) >= maxLabels {
			return nil, Errorf(PreprocessTooManyLabels, "too many labels (limit %d), rejected %q at line %d", maxLabels, name, i)
		}

		labels[name] = i
	}

	return labels, nil
}

// SkipLabelDefinition returns the token list with a leading LABEL_REF COLON
// pair removed, for the executor's re-lex of a line already known (from
// the preprocess pass) to define a label. A line containing only a label
// definition yields an empty remainder, which the executor treats as a
// valid no-op (spec §9, open question: "a no-op-equivalent" line).
func SkipLabelDefinition(tokens TokenList) TokenList {
	if len(tokens) >= 2 && tokens[0].Kind == LABEL_REF && tokens[1].Kind == COLON {
		return tokens[2:]
	}
	return tokens
}

// DuplicateOrOverflowMessage formats a diagnostic naming the conflicting
// label and how many labels are already recorded (it does not list their
// names), for callers that want more context than the bare Error.Message
// carries.
func DuplicateOrOverflowMessage(labels map[string]int, name string) string {
	return fmt.Sprintf("label %q conflicts with %d existing label(s)", name, len(labels))
}
