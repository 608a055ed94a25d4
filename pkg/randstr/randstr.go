// Package randstr generates random strings over a fixed alphabet. Room codes are
// the only thing a joiner needs, so they come from crypto/rand.
package randstr

import (
	"crypto/rand"
)

type Generator struct {
	letters []byte
	// limit is the largest multiple of len(letters) that fits in a byte; bytes at or
	// above it are rejected so every letter is equally likely.
	limit int
}

func New(letters []byte) *Generator {
	if len(letters) == 0 || len(letters) > 256 {
		panic("randstr: alphabet must have 1 to 256 letters")
	}

	return &Generator{
		letters: letters,
		limit:   256 - 256%len(letters),
	}
}

func (g Generator) GenerateRandomString(length int) string {
	b := make([]byte, 0, length)
	buf := make([]byte, length+length/2+1)
	for len(b) < length {
		// crypto/rand.Read never returns an error
		rand.Read(buf)
		for _, v := range buf {
			if int(v) >= g.limit {
				continue
			}
			b = append(b, g.letters[int(v)%len(g.letters)])
			if len(b) == length {
				break
			}
		}
	}

	return string(b)
}
