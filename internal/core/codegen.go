package core

import (
	"fmt"
	"strings"

	gonanoid "github.com/matoous/go-nanoid/v2"

	"github.com/dkeye/Lounge/internal/domain"
)

const (
	DefaultCodeLength   = 4
	DefaultCodeAlphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZ"
)

// CodeGenerator draws room codes uniformly from an uppercase alphabet
// using a crypto-grade source, so live codes cannot be guessed faster
// than brute force over the whole code space.
type CodeGenerator struct {
	length   int
	alphabet string
}

func NewCodeGenerator(length int) (*CodeGenerator, error) {
	if length < 1 || length > 255 {
		return nil, fmt.Errorf("room code length must be between 1 and 255, got %d", length)
	}
	return &CodeGenerator{length: length, alphabet: DefaultCodeAlphabet}, nil
}

// Generate retries until taken reports the candidate as free.
// There is no retry bound: with 26^4 codes exhaustion is unreachable.
// taken is called with the registry lock held by the caller.
func (g *CodeGenerator) Generate(taken func(domain.RoomCode) bool) (domain.RoomCode, error) {
	for {
		id, err := gonanoid.Generate(g.alphabet, g.length)
		if err != nil {
			return "", fmt.Errorf("generate room code: %w", err)
		}
		code := domain.RoomCode(id)
		if !taken(code) {
			return code, nil
		}
	}
}

// Valid reports whether s has the shape of a room code.
func (g *CodeGenerator) Valid(s string) bool {
	if len(s) != g.length {
		return false
	}
	for _, c := range s {
		if !strings.ContainsRune(g.alphabet, c) {
			return false
		}
	}
	return true
}
