package tools

import (
	"fmt"
	"sort"

	"github.com/archerh/casm/lang"
)

// LintLevel is the severity of a single finding, mirroring the teacher's
// three-tier error/warning/info scale.
type LintLevel int

const (
	LintError LintLevel = iota
	LintWarning
	LintInfo
)

func (l LintLevel) String() string {
	switch l {
	case LintError:
		return "error"
	case LintWarning:
		return "warning"
	case LintInfo:
		return "info"
	default:
		return "unknown"
	}
}

// LintIssue is one finding against a source line.
type LintIssue struct {
	Level   LintLevel
	Line    int
	Message string
	Code    string
}

func (i *LintIssue) String() string {
	return fmt.Sprintf("line %d: %s: %s [%s]", i.Line+1, i.Level, i.Message, i.Code)
}

// LintOptions controls which passes Lint runs. The teacher's linter also
// checks unreachable code, register-destination restrictions (MUL/MLA,
// PC-as-destination) and directive argument counts — casm has no
// directives and no instruction-level register restrictions beyond what
// the executor already enforces at runtime, so those passes have no
// counterpart here; see DESIGN.md.
type LintOptions struct {
	CheckUnused bool // warn about labels defined but never branched to
}

// DefaultLintOptions returns the options Lint runs with when none are given.
func DefaultLintOptions() *LintOptions {
	return &LintOptions{CheckUnused: true}
}

// Lint performs a static pass over source lines without executing them:
// undefined label references (an error, since the machine will refuse to
// run past the first one) and, optionally, unused label definitions (a
// warning, since a label with no referencing branch is very likely a typo
// or leftover edit). It is built on top of Xref rather than duplicating
// label collection.
func Lint(lines []string, opts *LintOptions) ([]*LintIssue, error) {
	if opts == nil {
		opts = DefaultLintOptions()
	}

	labels, err := Xref(lines)
	if err != nil {
		return nil, err
	}

	var issues []*LintIssue
	for name, label := range labels {
		if label.Definition == nil {
			for _, ref := range label.Branches {
				issues = append(issues, &LintIssue{
					Level:   LintError,
					Line:    ref.Line,
					Message: fmt.Sprintf("undefined label %q", name),
					Code:    "UNDEF_LABEL",
				})
			}
			continue
		}
		if opts.CheckUnused && len(label.Branches) == 0 {
			issues = append(issues, &LintIssue{
				Level:   LintWarning,
				Line:    label.Definition.Line,
				Message: fmt.Sprintf("label %q defined but never referenced", name),
				Code:    "UNUSED_LABEL",
			})
		}
	}

	issues = append(issues, checkDuplicateLabels(lines)...)

	sort.Slice(issues, func(i, j int) bool {
		return issues[i].Line < issues[j].Line
	})
	return issues, nil
}

// checkDuplicateLabels reports a second definition of a label already
// defined on an earlier line, the one label-table conflict Xref itself
// can't see since it keeps only the latest Definition per name.
func checkDuplicateLabels(lines []string) []*LintIssue {
	seen := make(map[string]int)
	var issues []*LintIssue
	for i, line := range lines {
		tokens, err := lang.TokenizeLine(line)
		if err != nil || len(tokens) < 2 {
			continue
		}
		if tokens[0].Kind != lang.LABEL_REF || tokens[1].Kind != lang.COLON {
			continue
		}
		name := tokens[0].Literal
		if first, ok := seen[name]; ok {
			issues = append(issues, &LintIssue{
				Level:   LintWarning,
				Line:    i,
				Message: fmt.Sprintf("label %q redefines the one at line %d", name, first+1),
				Code:    "DUPLICATE_LABEL",
			})
			continue
		}
		seen[name] = i
	}
	return issues
}
