package lang_test

import (
	"testing"

	"github.com/archerh/casm/lang"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTokenizeLine_BasicInstruction(t *testing.T) {
	tokens, err := lang.TokenizeLine("LOAD R1,=10")
	require.Nil(t, err)

	kinds := make([]lang.Kind, len(tokens))
	for i, tok := range tokens {
		kinds[i] = tok.Kind
	}
	assert.Equal(t, []lang.Kind{lang.LOAD, lang.REGISTER, lang.COMMA, lang.EQUAL, lang.NUMBER}, kinds)
	assert.Equal(t, "10", tokens[4].Literal)
}

func TestTokenizeLine_CaseInsensitiveKeywords(t *testing.T) {
	tokens, err := lang.TokenizeLine("load r1,=5")
	require.Nil(t, err)
	require.Len(t, tokens, 5)
	assert.Equal(t, lang.LOAD, tokens[0].Kind)
	assert.Equal(t, lang.REGISTER, tokens[1].Kind)
	assert.Equal(t, "r1", tokens[1].Literal, "the literal stays the source slice; only the kind is case-insensitive")
}

func TestTokenizeLine_LabelDefinition(t *testing.T) {
	tokens, err := lang.TokenizeLine("Loop: INC R1")
	require.Nil(t, err)
	require.Len(t, tokens, 4)
	assert.Equal(t, lang.LABEL_REF, tokens[0].Kind)
	assert.Equal(t, "Loop", tokens[0].Literal, "label names are case-sensitive")
	assert.Equal(t, lang.COLON, tokens[1].Kind)
}

func TestTokenizeLine_AddressingPunctuation(t *testing.T) {
	tokens, err := lang.TokenizeLine("LOAD R3,[72,R1]")
	require.Nil(t, err)

	var kinds []lang.Kind
	for _, tok := range tokens {
		kinds = append(kinds, tok.Kind)
	}
	assert.Equal(t, []lang.Kind{
		lang.LOAD, lang.REGISTER, lang.COMMA,
		lang.L_BRACKET, lang.NUMBER, lang.COMMA, lang.REGISTER, lang.R_BRACKET,
	}, kinds)
}

func TestTokenizeLine_IndirectAndRelative(t *testing.T) {
	tokens, err := lang.TokenizeLine("LOAD R5,@R4")
	require.Nil(t, err)
	assert.Equal(t, lang.AT, tokens[3].Kind)

	tokens, err = lang.TokenizeLine("LOAD R5,$R4")
	require.Nil(t, err)
	assert.Equal(t, lang.DOLLAR, tokens[3].Kind)
}

func TestTokenizeLine_StopsAtSemicolonComment(t *testing.T) {
	tokens, err := lang.TokenizeLine("INC R1 ; bump the counter")
	require.Nil(t, err)
	assert.Equal(t, []lang.Kind{lang.INC, lang.REGISTER}, []lang.Kind{tokens[0].Kind, tokens[1].Kind})
	assert.Len(t, tokens, 2)
}

func TestTokenizeLine_EmptyAndWhitespaceOnly(t *testing.T) {
	tokens, err := lang.TokenizeLine("")
	require.Nil(t, err)
	assert.Empty(t, tokens)

	tokens, err = lang.TokenizeLine("    \t  ")
	require.Nil(t, err)
	assert.Empty(t, tokens)
}

func TestTokenizeLine_UnexpectedCharacter(t *testing.T) {
	_, err := lang.TokenizeLine("LOAD R1, #5")
	require.NotNil(t, err)
	assert.Equal(t, lang.LexUnexpectedChar, err.Tag)
}

func TestTokenizeLine_TooManyTokens(t *testing.T) {
	line := ""
	for i := 0; i < 100; i++ {
		line += "R1,"
	}
	_, err := lang.TokenizeLine(line)
	require.NotNil(t, err)
	assert.Equal(t, lang.LexTooManyTokens, err.Tag)
}

func TestTokenizeLine_LabelRefVsRegisterVsKeyword(t *testing.T) {
	tests := []struct {
		literal string
		want    lang.Kind
	}{
		{"BR", lang.BR},
		{"BEQ", lang.BEQ},
		{"R0", lang.REGISTER},
		{"R9", lang.REGISTER},
		{"R10", lang.LABEL_REF}, // only a single digit after R is a register
		{"Start", lang.LABEL_REF},
		{"loop_2", lang.LABEL_REF},
	}
	for _, tt := range tests {
		tokens, err := lang.TokenizeLine(tt.literal)
		require.Nil(t, err, tt.literal)
		require.Len(t, tokens, 1, tt.literal)
		assert.Equal(t, tt.want, tokens[0].Kind, tt.literal)
	}
}
