package security

import "golang.org/x/crypto/bcrypt"

const bcryptCost = 10

func HashPassword(pw string) (string, error) {
	b, err := bcrypt.GenerateFromPassword([]byte(pw), bcryptCost)
	return string(b), err
}

// CheckPassword reports whether pw matches hash. A malformed hash compares
// false rather than erroring; bcrypt's comparison is constant-time.
func CheckPassword(hash, pw string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(pw)) == nil
}
