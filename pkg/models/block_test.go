package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLOCInclusive(t *testing.T) {
	b := CodeBlock{StartLine: 10, EndLine: 10}
	assert.Equal(t, 1, b.LOC())
	b.EndLine = 15
	assert.Equal(t, 6, b.LOC())
}

func TestValidateRejectsEndBeforeStart(t *testing.T) {
	b := CodeBlock{BlockID: "x", StartLine: 10, EndLine: 5}
	assert.Error(t, b.Validate())
}

func TestValidateRejectsHashMismatch(t *testing.T) {
	b := CodeBlock{BlockID: "x", StartLine: 1, EndLine: 2, TokenHash: "deadbeef", TokenSequence: []int{1, 2, 3}}
	assert.Error(t, b.Validate())
}

func TestValidateAcceptsConsistentHash(t *testing.T) {
	tokens := []int{1, 2, 3}
	b := CodeBlock{BlockID: "x", StartLine: 1, EndLine: 2, TokenHash: ComputeTokenHash(tokens), TokenSequence: tokens}
	assert.NoError(t, b.Validate())
}

func TestValidateAcceptsEmptyTokenHash(t *testing.T) {
	b := CodeBlock{BlockID: "x", StartLine: 1, EndLine: 2}
	assert.NoError(t, b.Validate())
}

func TestComputeTokenHashDeterministic(t *testing.T) {
	a := ComputeTokenHash([]int{1, 2, 3})
	b := ComputeTokenHash([]int{1, 2, 3})
	assert.Equal(t, a, b)
}

func TestComputeTokenHashDiffersOnOrder(t *testing.T) {
	a := ComputeTokenHash([]int{1, 2, 3})
	b := ComputeTokenHash([]int{3, 2, 1})
	assert.NotEqual(t, a, b)
}

func TestParseTokenSequenceRoundTrip(t *testing.T) {
	tokens, err := ParseTokenSequence("[1;2;3]")
	require.NoError(t, err)
	assert.Equal(t, []int{1, 2, 3}, tokens)
}

func TestParseTokenSequenceEmpty(t *testing.T) {
	tokens, err := ParseTokenSequence("[]")
	require.NoError(t, err)
	assert.Equal(t, []int{}, tokens)
}

func TestParseTokenSequenceRejectsMissingBrackets(t *testing.T) {
	_, err := ParseTokenSequence("1;2;3")
	assert.Error(t, err)
}

func TestParseTokenSequenceRejectsNonInteger(t *testing.T) {
	_, err := ParseTokenSequence("[1;abc;3]")
	assert.Error(t, err)
}
