package utils

import (
    "strings"
    "testing"

    "github.com/golang-jwt/jwt/v5"
)

func TestNewReferenceID(t *testing.T) {
    seen := make(map[string]bool)
    for i := 0; i < 1000; i++ {
        id := NewReferenceID()
        if !strings.HasPrefix(id, "reserva_") {
            t.Fatalf("id %q lacks reserva_ prefix", id)
        }
        if parts := strings.Split(id, "_"); len(parts) != 3 || len(parts[2]) != 12 {
            t.Fatalf("id %q is not reserva_<millis>_<fragment>", id)
        }
        if seen[id] {
            t.Fatalf("duplicate reference id %q after %d iterations", id, i)
        }
        seen[id] = true
    }
}

func TestAccessTokenRoundTrip(t *testing.T) {
    const secret = "test-secret"
    at, err := NewAccessToken(secret, 42, 15)
    if err != nil {
        t.Fatalf("NewAccessToken: %v", err)
    }

    tok, err := jwt.Parse(at.Token, func(tk *jwt.Token) (interface{}, error) {
        return []byte(secret), nil
    })
    if err != nil || !tok.Valid {
        t.Fatalf("parse failed: %v", err)
    }
    claims := tok.Claims.(jwt.MapClaims)
    if sub, _ := claims["sub"].(float64); uint64(sub) != 42 {
        t.Errorf("sub = %v, want 42", claims["sub"])
    }
}

func TestAccessTokenWrongSecret(t *testing.T) {
    at, err := NewAccessToken("right", 7, 15)
    if err != nil {
        t.Fatalf("NewAccessToken: %v", err)
    }
    if _, err := jwt.Parse(at.Token, func(tk *jwt.Token) (interface{}, error) {
        return []byte("wrong"), nil
    }); err == nil {
        t.Fatal("token verified with the wrong secret")
    }
}

func TestHashTokenStable(t *testing.T) {
    a := HashToken("abc")
    if a != HashToken("abc") {
        t.Error("hash is not deterministic")
    }
    if a == HashToken("abd") {
        t.Error("different inputs hash identically")
    }
    if len(a) != 64 {
        t.Errorf("hash length = %d, want 64 hex chars", len(a))
    }
}

func TestPasswordHashAndVerify(t *testing.T) {
    // bcrypt.MinCost keeps the test fast; production cost comes from config
    hash, err := HashPassword("segredo123", 4)
    if err != nil {
        t.Fatalf("HashPassword: %v", err)
    }
    if hash == "segredo123" {
        t.Fatal("hash equals the plain password")
    }
    if !VerifyPassword(hash, "segredo123") {
        t.Error("correct password rejected")
    }
    if VerifyPassword(hash, "segredo124") {
        t.Error("wrong password accepted")
    }
    if VerifyPassword("not-a-bcrypt-hash", "segredo123") {
        t.Error("garbage hash accepted")
    }
}

func TestNewResetCode(t *testing.T) {
    for i := 0; i < 100; i++ {
        code, err := NewResetCode()
        if err != nil {
            t.Fatalf("NewResetCode: %v", err)
        }
        if len(code) != 6 {
            t.Fatalf("code %q is not six digits", code)
        }
        for _, r := range code {
            if r < '0' || r > '9' {
                t.Fatalf("code %q contains non-digit", code)
            }
        }
    }
}
