package utils

import "golang.org/x/crypto/bcrypt"

// HashPassword bcrypt-hashes a cleartext password at the configured cost.
// Both admin passwords and generated member passwords go through here;
// only the hash is ever stored.
func HashPassword(plain string, cost int) (string, error) {
	b, err := bcrypt.GenerateFromPassword([]byte(plain), cost)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

// VerifyPassword reports whether plain matches the stored bcrypt hash.
func VerifyPassword(hash, plain string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(plain)) == nil
}
