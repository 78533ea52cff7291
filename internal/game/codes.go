package game

import (
	"crypto/rand"
	"strings"
)

const (
	codeAlphabet     = "0123456789ABCDEFGHIJKLMNOPQRSTUVWXYZ"
	DefaultCodeLen   = 5
	maxCodeLen       = 10
	attemptsPerLength = 8
)

// CodeGenerator returns a random room code of the given length.
type CodeGenerator func(length int) string

// RandomCode draws an upper-case base36 code from crypto/rand.
func RandomCode(length int) string {
	buf := make([]byte, length)
	if _, err := rand.Read(buf); err != nil {
		panic(err)
	}
	for i, b := range buf {
		buf[i] = codeAlphabet[int(b)%len(codeAlphabet)]
	}
	return string(buf)
}

// NormalizeCode makes room codes case-insensitive.
func NormalizeCode(code string) string {
	return strings.ToUpper(strings.TrimSpace(code))
}
