package rewards

import (
	"crypto/rand"
	"math/big"

	"github.com/pkg/errors"
)

const (
	shortCodeAlphabet = "0123456789ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz"
	shortCodeLength   = 6
	shortCodeAttempts = 8
)

// randomCode returns n characters drawn uniformly from the base62 alphabet.
func randomCode(n int) (string, error) {
	base := big.NewInt(int64(len(shortCodeAlphabet)))
	buf := make([]byte, n)
	for i := range buf {
		idx, err := rand.Int(rand.Reader, base)
		if err != nil {
			return "", errors.Wrap(err, "read random short code")
		}
		buf[i] = shortCodeAlphabet[idx.Int64()]
	}
	return string(buf), nil
}

// uniqueCode draws codes until one is not in taken. After repeated
// collisions it lengthens the code by one character.
func uniqueCode(gen func(int) (string, error), taken map[string]struct{}) (string, error) {
	length := shortCodeLength
	for {
		for i := 0; i < shortCodeAttempts; i++ {
			code, err := gen(length)
			if err != nil {
				return "", err
			}
			if _, dup := taken[code]; !dup {
				return code, nil
			}
		}
		length++
	}
}
