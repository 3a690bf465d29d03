package tools_test

import (
	"testing"

	"github.com/archerh/casm/tools"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLint_UndefinedLabel(t *testing.T) {
	issues, err := tools.Lint([]string{
		"LOAD R1,=10",
		"BR Nowhere",
	}, tools.DefaultLintOptions())
	require.NoError(t, err)

	found := false
	for _, issue := range issues {
		if issue.Code == "UNDEF_LABEL" {
			found = true
			assert.Equal(t, tools.LintError, issue.Level)
			assert.Equal(t, 1, issue.Line)
		}
	}
	assert.True(t, found, "expected an UNDEF_LABEL issue")
}

func TestLint_DuplicateLabel(t *testing.T) {
	issues, err := tools.Lint([]string{
		"Loop: LOAD R1,=10",
		"Loop: LOAD R2,=1",
	}, tools.DefaultLintOptions())
	require.NoError(t, err)

	found := false
	for _, issue := range issues {
		if issue.Code == "DUPLICATE_LABEL" {
			found = true
			assert.Equal(t, 1, issue.Line)
		}
	}
	assert.True(t, found, "expected a DUPLICATE_LABEL issue")
}

func TestLint_UnusedLabel(t *testing.T) {
	issues, err := tools.Lint([]string{
		"Start: LOAD R1,=10",
		"HALT",
	}, tools.DefaultLintOptions())
	require.NoError(t, err)

	found := false
	for _, issue := range issues {
		if issue.Code == "UNUSED_LABEL" {
			found = true
			assert.Equal(t, tools.LintWarning, issue.Level)
		}
	}
	assert.True(t, found, "expected an UNUSED_LABEL issue")
}

func TestLint_CheckUnusedDisabled(t *testing.T) {
	issues, err := tools.Lint([]string{
		"Start: LOAD R1,=10",
		"HALT",
	}, &tools.LintOptions{CheckUnused: false})
	require.NoError(t, err)

	for _, issue := range issues {
		assert.NotEqual(t, "UNUSED_LABEL", issue.Code)
	}
}

func TestLint_CleanProgramHasNoIssues(t *testing.T) {
	issues, err := tools.Lint([]string{
		"Loop: SUB R1,R2",
		"BGT R1,R2,Loop",
		"HALT",
	}, tools.DefaultLintOptions())
	require.NoError(t, err)
	assert.Empty(t, issues)
}
