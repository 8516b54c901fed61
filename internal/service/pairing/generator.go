package pairing

import (
	"crypto/rand"

	"github.com/zhouzirui/pairrelay/internal/model/pairing"
)

// Generator produces new pairing tokens.
type Generator interface {
	Generate() pairing.Token
}

// GeneratorFunc adapts a plain function to Generator.
type GeneratorFunc func() pairing.Token

// Generate calls f.
func (f GeneratorFunc) Generate() pairing.Token {
	return f()
}

// largest multiple of the alphabet size that fits in a byte; bytes at or
// above it are rejected so every character is equally likely.
const unbiasedLimit = 256 - 256%len(pairing.Alphabet)

// RandomGenerator draws tokens uniformly from pairing.Alphabet using
// crypto/rand. It does not check issued tokens for collisions.
type RandomGenerator struct{}

// Generate returns a fresh token of pairing.TokenLength characters.
func (RandomGenerator) Generate() pairing.Token {
	out := make([]byte, 0, pairing.TokenLength)
	buf := make([]byte, 2*pairing.TokenLength)
	for len(out) < pairing.TokenLength {
		// crypto/rand.Read never returns an error since Go 1.24.
		_, _ = rand.Read(buf)
		for _, b := range buf {
			if int(b) >= unbiasedLimit {
				continue
			}
			out = append(out, pairing.Alphabet[int(b)%len(pairing.Alphabet)])
			if len(out) == pairing.TokenLength {
				break
			}
		}
	}
	return pairing.Token(out)
}
