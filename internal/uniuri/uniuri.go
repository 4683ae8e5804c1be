package uniuri

import (
	"crypto/rand"
	"errors"
	"io"
)

const (
	// StdLen gives ~95 bits of entropy with StdChars.
	StdLen = 16
	// SecretLen gives ~238 bits of entropy with StdChars.
	SecretLen = 40
)

// StdChars is the alphabet of generated strings.
var StdChars = []byte("ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz0123456789") //nolint:gochecknoglobals

// ErrCharset is returned for alphabets with less than 2 or more than 256 characters.
var ErrCharset = errors.New("uniuri: charset must hold 2 to 256 characters")

// New returns a random string of StdLen characters. It panics when the system
// random source fails.
func New() string {
	return NewLen(StdLen)
}

// NewLen returns a random string of length characters from StdChars.
func NewLen(length int) string {
	s, err := Generate(rand.Reader, length, StdChars)
	if err != nil {
		panic(err)
	}

	return s
}

// Generate reads from r until length characters of chars are drawn.
// Bytes that would bias the distribution are skipped.
func Generate(r io.Reader, length int, chars []byte) (string, error) {
	n := len(chars)
	if n < 2 || n > 256 {
		return "", ErrCharset
	}

	if length <= 0 {
		return "", nil
	}

	// largest byte value that maps uniformly onto chars
	limit := 255 - (256 % n)
	out := make([]byte, 0, length)
	buf := make([]byte, length+length/4+1)

	for len(out) < length {
		if _, err := io.ReadFull(r, buf); err != nil {
			return "", err
		}

		for _, b := range buf {
			if int(b) > limit {
				continue
			}

			out = append(out, chars[int(b)%n])
			if len(out) == length {
				break
			}
		}
	}

	return string(out), nil
}
