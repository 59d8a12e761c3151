package models

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/cespare/xxhash/v2"
)

// Parameter is one entry of a CodeBlock's ordered parameter list.
type Parameter struct {
	Name string
	Type string
}

// CodeBlock is one method in one revision. BlockID is opaque and unique
// within the owning revision; it is not assumed sortable except
// lexicographically, which is used only for deterministic tie-breaks.
type CodeBlock struct {
	BlockID       string
	FilePath      string
	StartLine     int
	EndLine       int
	FunctionName  string
	ReturnType    string
	ParameterList []Parameter
	TokenHash     string
	TokenSequence []int
}

// LOC returns end_line - start_line + 1, the inclusive line count.
func (b CodeBlock) LOC() int {
	return b.EndLine - b.StartLine + 1
}

// Validate checks the invariants from the data model: end_line >=
// start_line and token_hash consistent with token_sequence.
func (b CodeBlock) Validate() error {
	if b.EndLine < b.StartLine {
		return fmt.Errorf("block %s: end_line %d < start_line %d", b.BlockID, b.EndLine, b.StartLine)
	}
	if b.TokenHash != "" && b.TokenHash != ComputeTokenHash(b.TokenSequence) {
		return fmt.Errorf("block %s: token_hash does not match token_sequence", b.BlockID)
	}
	return nil
}

// ComputeTokenHash derives the deterministic digest used as an
// exact-equality proxy for a token sequence.
func ComputeTokenHash(tokens []int) string {
	h := xxhash.New()
	buf := make([]byte, 0, 16)
	for _, t := range tokens {
		buf = strconv.AppendInt(buf[:0], int64(t), 10)
		_, _ = h.Write(buf)
		_, _ = h.Write([]byte{','})
	}
	return strconv.FormatUint(h.Sum64(), 16)
}

// ParseTokenSequence decodes the textual form "[t1;t2;...]" into an
// ordered sequence of integer tokens. Empty sequences ("[]") are valid.
func ParseTokenSequence(s string) ([]int, error) {
	s = strings.TrimSpace(s)
	if !strings.HasPrefix(s, "[") || !strings.HasSuffix(s, "]") {
		return nil, fmt.Errorf("malformed token sequence %q: missing brackets", s)
	}
	inner := strings.TrimSpace(s[1 : len(s)-1])
	if inner == "" {
		return []int{}, nil
	}
	parts := strings.Split(inner, ";")
	tokens := make([]int, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		v, err := strconv.Atoi(p)
		if err != nil {
			return nil, fmt.Errorf("malformed token sequence %q: token %q: %w", s, p, err)
		}
		tokens = append(tokens, v)
	}
	return tokens, nil
}
