package auth

import "golang.org/x/crypto/bcrypt"

// HashPassword returns a bcrypt digest with a fresh random salt, so equal
// plaintexts never produce equal digests.
func HashPassword(p string) (string, error) {
	b, err := bcrypt.GenerateFromPassword([]byte(p), bcrypt.DefaultCost)
	return string(b), err
}

// VerifyPassword compares in constant effort; nil means match.
func VerifyPassword(plain, hash string) error {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(plain))
}
