// Package tools holds source-level utilities that operate on a casm
// program without running it: a label cross-referencer and a source
// formatter, grounded on the teacher's tools package of the same shape
// for ARM assembly.
package tools

import (
	"fmt"
	"sort"
	"strings"

	"github.com/archerh/casm/lang"
)

// Reference is a single use of a label: its definition, or a branch that
// targets it.
type Reference struct {
	IsDefinition bool
	Line         int
	Source       string
}

// Label collects every reference to one label name.
type Label struct {
	Name       string
	Definition *Reference
	Branches   []*Reference
}

// Xref builds a name -> Label table for every label defined or branched
// to across lines. Branch references to an undefined label are still
// recorded, with Definition left nil, so a caller can report dangling
// branches without re-running the preprocessor's strict validation.
func Xref(lines []string) (map[string]*Label, error) {
	labels := make(map[string]*Label)

	ensure := func(name string) *Label {
		if l, ok := labels[name]; ok {
			return l
		}
		l := &Label{Name: name}
		labels[name] = l
		return l
	}

	for i, line := range lines {
		tokens, err := lang.TokenizeLine(line)
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", i, err)
		}

		start := 0
		if len(tokens) >= 2 && tokens[0].Kind == lang.LABEL_REF && tokens[1].Kind == lang.COLON {
			l := ensure(tokens[0].Literal)
			l.Definition = &Reference{IsDefinition: true, Line: i, Source: line}
			start = 2
		}

		for _, tok := range tokens[start:] {
			if tok.Kind != lang.LABEL_REF {
				continue
			}
			l := ensure(tok.Literal)
			l.Branches = append(l.Branches, &Reference{Line: i, Source: line})
		}
	}

	return labels, nil
}

// Report renders a cross-reference table, labels sorted by name.
func Report(labels map[string]*Label) string {
	names := make([]string, 0, len(labels))
	for name := range labels {
		names = append(names, name)
	}
	sort.Strings(names)

	var b strings.Builder
	for _, name := range names {
		l := labels[name]
		if l.Definition != nil {
			fmt.Fprintf(&b, "%s: defined at line %d\n", name, l.Definition.Line)
		} else {
			fmt.Fprintf(&b, "%s: undefined\n", name)
		}
		for _, ref := range l.Branches {
			fmt.Fprintf(&b, "    branched from line %d\n", ref.Line)
		}
	}
	return b.String()
}
