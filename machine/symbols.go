package machine

import "sort"

// SymbolResolver provides line-index -> label name lookup for UI display
// (the tui source panel). It never participates in execution itself —
// branches resolve directly against Machine.Labels — this is purely a
// read-side convenience for annotating a line with its label (or its
// nearest preceding label), grounded on the teacher's
// vm/symbol_resolver.go address-to-symbol resolver.
type SymbolResolver struct {
	lineToName  map[int]string
	sortedLines []int
}

// NewSymbolResolver builds a resolver from the label table produced by a
// load (labels maps name -> line index).
func NewSymbolResolver(labels map[string]int) *SymbolResolver {
	lineToName := make(map[int]string, len(labels))
	for name, line := range labels {
		lineToName[line] = name
	}
	sortedLines := make([]int, 0, len(lineToName))
	for line := range lineToName {
		sortedLines = append(sortedLines, line)
	}
	sort.Ints(sortedLines)

	return &SymbolResolver{lineToName: lineToName, sortedLines: sortedLines}
}

// NameAt returns the label defined exactly at line, or "" if none.
func (r *SymbolResolver) NameAt(line int) string {
	return r.lineToName[line]
}

// Nearest returns the label at or immediately before line, and the offset
// in lines past it, or ("", 0, false) if line precedes every label.
func (r *SymbolResolver) Nearest(line int) (name string, offset int, ok bool) {
	// sortedLines is ascending; find the last entry <= line.
	idx := sort.Search(len(r.sortedLines), func(i int) bool {
		return r.sortedLines[i] > line
	})
	if idx == 0 {
		return "", 0, false
	}
	best := r.sortedLines[idx-1]
	return r.lineToName[best], line - best, true
}
