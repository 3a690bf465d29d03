package tools_test

import (
	"strings"
	"testing"

	"github.com/archerh/casm/tools"
	"github.com/stretchr/testify/assert"
)

func TestFormat_AlignsInstructionAndOperands(t *testing.T) {
	out := tools.Format([]string{"LOAD R1,=10"}, tools.DefaultFormatOptions())
	lines := strings.Split(strings.TrimRight(out, "\n"), "\n")
	assert.Len(t, lines, 1)
	// Unlabeled lines still indent to the instruction column, the way
	// an assembly pretty-printer reserves the label column for lines
	// that use it.
	assert.True(t, strings.HasPrefix(lines[0], strings.Repeat(" ", 10)+"LOAD"))
	assert.Contains(t, lines[0], "R1, =10")
}

func TestFormat_PreservesLabel(t *testing.T) {
	out := tools.Format([]string{"Loop: SUB R1,R2"}, tools.DefaultFormatOptions())
	assert.True(t, strings.HasPrefix(out, "Loop:"))
	assert.Contains(t, out, "SUB")
}

func TestFormat_AppendsComment(t *testing.T) {
	out := tools.Format([]string{"HALT ; stop here"}, tools.DefaultFormatOptions())
	assert.Contains(t, out, "; stop here")
}

func TestFormat_PreservesEmptyLines(t *testing.T) {
	opts := tools.DefaultFormatOptions()
	opts.PreserveEmptyLines = true
	out := tools.Format([]string{"HALT", "", "LOAD R1,=1"}, opts)
	lines := strings.Split(strings.TrimRight(out, "\n"), "\n")
	assert.Len(t, lines, 3)
	assert.Equal(t, "", lines[1])
}

func TestFormat_CompactDropsBlankLines(t *testing.T) {
	opts := tools.CompactFormatOptions()
	out := tools.Format([]string{"HALT", ""}, opts)
	lines := strings.Split(strings.TrimRight(out, "\n"), "\n")
	assert.Len(t, lines, 1)
}

func TestFormat_MalformedLinePassesThrough(t *testing.T) {
	out := tools.Format([]string{"  LOAD R1, #5  "}, tools.DefaultFormatOptions())
	assert.Equal(t, "LOAD R1, #5\n", out)
}
