package lang_test

import (
	"testing"

	"github.com/archerh/casm/lang"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPreprocess_HarvestsLabels(t *testing.T) {
	lines := []string{
		"LOAD R1,=0",
		"LOAD R2,=10",
		"Label: BGEQ R1,R2,End",
		"INC R1",
		"BR Label",
		"End: HALT",
	}

	labels, err := lang.Preprocess(lines, 16)
	require.Nil(t, err)
	assert.Equal(t, 2, labels["Label"])
	assert.Equal(t, 5, labels["End"])
	assert.Len(t, labels, 2)
}

func TestPreprocess_LabelOnlyLineIsNoOp(t *testing.T) {
	labels, err := lang.Preprocess([]string{"Only:", "HALT"}, 16)
	require.Nil(t, err)
	assert.Equal(t, 0, labels["Only"])
}

func TestPreprocess_DuplicateLabel(t *testing.T) {
	lines := []string{"A: INC R1", "A: INC R2"}
	_, err := lang.Preprocess(lines, 16)
	require.NotNil(t, err)
	assert.Equal(t, lang.PreprocessDuplicateLabel, err.Tag)
}

func TestPreprocess_TooManyLabels(t *testing.T) {
	lines := make([]string, 0, 17)
	for i := 0; i < 17; i++ {
		lines = append(lines, string(rune('A'+i))+": HALT")
	}
	_, err := lang.Preprocess(lines, 16)
	require.NotNil(t, err)
	assert.Equal(t, lang.PreprocessTooManyLabels, err.Tag)
}

func TestPreprocess_CaseSensitiveNames(t *testing.T) {
	lines := []string{"loop: INC R1", "Loop: INC R2"}
	labels, err := lang.Preprocess(lines, 16)
	require.Nil(t, err)
	assert.Len(t, labels, 2)
}

func TestSkipLabelDefinition(t *testing.T) {
	tokens, err := lang.TokenizeLine("Label: INC R1")
	require.Nil(t, err)

	remainder := lang.SkipLabelDefinition(tokens)
	require.Len(t, remainder, 2)
	assert.Equal(t, lang.INC, remainder[0].Kind)

	unlabeled, err := lang.TokenizeLine("INC R1")
	require.Nil(t, err)
	assert.Equal(t, lang.TokenList(unlabeled), lang.SkipLabelDefinition(unlabeled))
}
