package utils

import "golang.org/x/crypto/bcrypt"

// HashPassword derives the bcrypt hash stored in users.password_hash.  The
// cost comes from BCRYPT_COST so environments can trade login latency
// against brute-force resistance without a code change.
func HashPassword(plain string, cost int) (string, error) {
    hash, err := bcrypt.GenerateFromPassword([]byte(plain), cost)
    if err != nil {
        return "", err
    }
    return string(hash), nil
}

// VerifyPassword reports whether plain matches the stored hash.  bcrypt
// compares in constant time, so no timing signal leaks on mismatch.
func VerifyPassword(hash, plain string) bool {
    return bcrypt.CompareHashAndPassword([]byte(hash), []byte(plain)) == nil
}
