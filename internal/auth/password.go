package auth

import "golang.org/x/crypto/bcrypt"

// HashPassword returns the bcrypt hash of raw. A cost of 0 uses bcrypt's default.
func HashPassword(raw string, cost int) (string, error) {
	if cost == 0 {
		cost = bcrypt.DefaultCost
	}
	b, err := bcrypt.GenerateFromPassword([]byte(raw), cost)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

// CheckPassword reports whether raw matches hash.
func CheckPassword(hash, raw string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(raw)) == nil
}
