package shortener

import (
	"fmt"

	"github.com/jaevor/go-nanoid"
)

// Alphabet is the 62-symbol set short codes are drawn from.
const Alphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz0123456789"

// DefaultCodeLength is the length of generated codes when none is configured.
const DefaultCodeLength = 6

// CodeGenerator generates candidate short codes. It gives no uniqueness guarantee.
type CodeGenerator func() string

// NewCodeGenerator returns a generator of fixed-length codes drawn uniformly
// from Alphabet using a cryptographically secure source.
func NewCodeGenerator(length int) (CodeGenerator, error) {
	gen, err := nanoid.CustomASCII(Alphabet, length)
	if err != nil {
		return nil, fmt.Errorf("code generator with length %d: %w", length, err)
	}

	return CodeGenerator(gen), nil
}
