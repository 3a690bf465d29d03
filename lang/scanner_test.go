package lang_test

import (
	"testing"

	"github.com/archerh/casm/lang"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestScanner_PeekAdvancePrev(t *testing.T) {
	tokens, err := lang.TokenizeLine("LOAD R1,=10")
	require.Nil(t, err)

	s := lang.NewScanner(tokens)
	assert.Equal(t, lang.LOAD, s.Peek().Kind)
	assert.Equal(t, lang.LOAD, s.Advance().Kind)
	assert.Equal(t, lang.LOAD, s.Prev().Kind)
	assert.Equal(t, lang.REGISTER, s.Peek().Kind)
}

func TestScanner_ConsumeSuccess(t *testing.T) {
	tokens, _ := lang.TokenizeLine("LOAD R1,=10")
	s := lang.NewScanner(tokens)
	s.Consume(lang.LOAD)
	reg := s.Consume(lang.REGISTER)
	assert.Equal(t, "R1", reg.Literal)
	s.Consume(lang.COMMA)
	assert.Nil(t, s.Err())
}

func TestScanner_ConsumeMismatchSetsError(t *testing.T) {
	tokens, _ := lang.TokenizeLine("LOAD R1")
	s := lang.NewScanner(tokens)
	s.Consume(lang.LOAD)
	tok := s.Consume(lang.COMMA) // next is REGISTER, not COMMA
	assert.Equal(t, lang.NONE, tok.Kind)
	require.NotNil(t, s.Err())
	assert.Equal(t, lang.ParseExpectedToken, s.Err().Tag)
}

func TestScanner_ShortCircuitsAfterFirstError(t *testing.T) {
	tokens, _ := lang.TokenizeLine("LOAD R1")
	s := lang.NewScanner(tokens)
	s.Consume(lang.COMMA) // wrong: sets first error, cursor stays put
	firstErr := s.Err()

	tok := s.Consume(lang.LOAD) // would have succeeded, but error already set
	assert.Equal(t, lang.NONE, tok.Kind)
	assert.Same(t, firstErr, s.Err(), "the first error wins; later SetError calls are dropped")
}

func TestScanner_RemainingAndAtEnd(t *testing.T) {
	tokens, _ := lang.TokenizeLine("INC R1")
	s := lang.NewScanner(tokens)
	assert.Equal(t, 2, s.Remaining())
	s.Advance()
	s.Advance()
	assert.True(t, s.AtEnd())
	assert.Equal(t, 0, s.Remaining())
}
