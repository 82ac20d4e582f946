package service

import (
	"crypto/rand"
	"fmt"
	"math/big"
	"strings"
)

// 26 lowercase + 26 uppercase + 10 digits.
const codeAlphabet = "abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"

// DefaultCodeLength gives roughly 5.7e10 possible codes.
const DefaultCodeLength = 6

var alphabetSize = big.NewInt(int64(len(codeAlphabet)))

// CodeGenerator produces random short codes. Codes are not unique by
// construction; the store's unique index is the authority.
type CodeGenerator struct {
	length int
}

// NewCodeGenerator creates a generator with a fixed code length.
func NewCodeGenerator(length int) *CodeGenerator {
	if length <= 0 {
		length = DefaultCodeLength
	}
	return &CodeGenerator{length: length}
}

// Generate returns a random alphanumeric code of the configured length,
// each character drawn uniformly from the 62-char alphabet.
func (g *CodeGenerator) Generate() (string, error) {
	var b strings.Builder
	b.Grow(g.length)
	for i := 0; i < g.length; i++ {
		idx, err := rand.Int(rand.Reader, alphabetSize)
		if err != nil {
			return "", fmt.Errorf("generate code: %w", err)
		}
		b.WriteByte(codeAlphabet[idx.Int64()])
	}
	return b.String(), nil
}

// Length reports the configured code length.
func (g *CodeGenerator) Length() int { return g.length }
