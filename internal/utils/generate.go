package utils

import (
	"crypto/rand"
	"fmt"
	"math/big"
	"strings"
)

const passwordAlphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz0123456789"

// GeneratedPasswordLength is the length of one-time passwords handed to
// new members and on credential reset.
const GeneratedPasswordLength = 8

// randomInt returns a uniform random number in [0, max) from crypto/rand.
func randomInt(max int64) (int64, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(max))
	if err != nil {
		return 0, err
	}
	return n.Int64(), nil
}

// GenerateUsername derives a login username from the member's name: the
// two names lowercased and stripped to ASCII letters, followed by a
// random zero-padded 3-digit disambiguator. Generation is single-shot; a
// collision with an existing username is reported to the caller as a
// duplicate, not retried.
func GenerateUsername(firstName, lastName string) (string, error) {
	n, err := randomInt(1000)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%s%s%03d", sanitizeName(firstName), sanitizeName(lastName), n), nil
}

// GeneratePassword returns an 8-character random alphanumeric password.
// It is returned to the caller once in cleartext; only its bcrypt hash is
// ever persisted.
func GeneratePassword() (string, error) {
	var b strings.Builder
	for i := 0; i < GeneratedPasswordLength; i++ {
		n, err := randomInt(int64(len(passwordAlphabet)))
		if err != nil {
			return "", err
		}
		b.WriteByte(passwordAlphabet[n])
	}
	return b.String(), nil
}

// GenerateMembershipCode returns a code in the fixed card format: the
// literal prefix "CF" followed by six zero-padded decimal digits.
func GenerateMembershipCode() (string, error) {
	n, err := randomInt(1000000)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("CF%06d", n), nil
}

// sanitizeName lowercases a name and drops everything outside a-z.
func sanitizeName(s string) string {
	var b strings.Builder
	for _, r := range strings.ToLower(s) {
		if r >= 'a' && r <= 'z' {
			b.WriteRune(r)
		}
	}
	return b.String()
}
