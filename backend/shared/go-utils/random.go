// go-utils/random.go

package utils

import (
	"crypto/rand"
	"math/big"
)

const tempPasswordAlphabet = "abcdefghjkmnpqrstuvwxyzABCDEFGHJKLMNPQRSTUVWXYZ"

// TempPassword builds a throwaway password for provisioned accounts. It
// always ends with two digits so it passes ValidatePassword.
func TempPassword(length int) string {
	if length < MinPasswordLength {
		length = MinPasswordLength
	}
	b := make([]byte, length)
	for i := range b {
		alphabet := tempPasswordAlphabet
		if i >= length-2 {
			alphabet = "0123456789"
		}
		num, err := rand.Int(rand.Reader, big.NewInt(int64(len(alphabet))))
		if err != nil {
			panic(err)
		}
		b[i] = alphabet[num.Int64()]
	}
	return string(b)
}
