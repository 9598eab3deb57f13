// Package pairing generates and validates the one-time codes that name
// relay rooms. Codes are short enough to read aloud and avoid glyphs
// that are easy to confuse when hand-typed.
package pairing

import (
	"crypto/rand"
	"log"
	"math/big"
	"strings"
)

// Alphabet is the 32-symbol set codes are drawn from. It drops 0/O and
// 1/I so a code dictated over the phone survives the trip.
const Alphabet = "23456789ABCDEFGHJKLMNPQRSTUVWXYZ"

// CodeLength is the fixed length of a pairing code.
const CodeLength = 6

// Generate returns a new pairing code drawn with crypto/rand.
func Generate() string {
	var b strings.Builder
	b.Grow(CodeLength)
	for i := 0; i < CodeLength; i++ {
		b.WriteByte(Alphabet[randomIndex(len(Alphabet))])
	}
	return b.String()
}

// randomIndex returns a cryptographically secure random index for a slice of given length.
func randomIndex(max int) int {
	n, err := rand.Int(rand.Reader, big.NewInt(int64(max)))
	if err != nil {
		log.Panic("Failed to generate random index:", err)
	}
	return int(n.Int64())
}

// IsValidFormat reports whether code is exactly CodeLength characters,
// all from Alphabet. It does not normalize; call Normalize first for
// user-typed input.
func IsValidFormat(code string) bool {
	if len(code) != CodeLength {
		return false
	}
	for i := 0; i < len(code); i++ {
		if !strings.ContainsRune(Alphabet, rune(code[i])) {
			return false
		}
	}
	return true
}

// Normalize prepares user-typed input for validation: trims whitespace,
// uppercases, and remaps the excluded ambiguous glyphs to their nearest
// in-alphabet equivalents (0/O become Q, 1/I become L). Normalize is
// idempotent on already-normalized input.
func Normalize(code string) string {
	code = strings.ToUpper(strings.TrimSpace(code))
	return strings.Map(func(r rune) rune {
		switch r {
		case '0', 'O':
			return 'Q'
		case '1', 'I':
			return 'L'
		}
		return r
	}, code)
}
