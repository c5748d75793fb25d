package utils

import (
	"errors"
	"strings"
	"testing"
	"time"

	"golang.org/x/crypto/bcrypt"
)

var testParams = TokenParams{
	Secret:   "test-secret-test-secret-test-secret",
	Issuer:   "http://issuer",
	Audience: "http://audience",
	TTL:      24 * time.Hour,
}

func TestNewAccessToken_ClaimsAndExpiry(t *testing.T) {
	before := time.Now().UTC()
	tok, err := NewAccessToken(testParams, "test@test.com")
	if err != nil {
		t.Fatalf("NewAccessToken: %v", err)
	}
	if strings.Count(tok.Token, ".") != 2 {
		t.Fatalf("token is not a compact JWT: %q", tok.Token)
	}
	want := before.Add(24 * time.Hour)
	if d := tok.Exp.Sub(want); d < -time.Second || d > 2*time.Second {
		t.Fatalf("Exp = %v, want about %v", tok.Exp, want)
	}

	claims, err := ParseAccessToken(testParams, tok.Token)
	if err != nil {
		t.Fatalf("ParseAccessToken: %v", err)
	}
	if claims.Subject != "test@test.com" {
		t.Errorf("sub = %q", claims.Subject)
	}
	if claims.ID == "" {
		t.Error("expected a jti claim")
	}
	if claims.Issuer != testParams.Issuer {
		t.Errorf("iss = %q", claims.Issuer)
	}
	if !claims.ExpiresAt.Time.Equal(tok.Exp) {
		t.Errorf("exp claim %v != returned expiry %v", claims.ExpiresAt.Time, tok.Exp)
	}
}

func TestNewAccessToken_UniqueIDs(t *testing.T) {
	a, err := NewAccessToken(testParams, "u")
	if err != nil {
		t.Fatalf("NewAccessToken: %v", err)
	}
	b, err := NewAccessToken(testParams, "u")
	if err != nil {
		t.Fatalf("NewAccessToken: %v", err)
	}
	ca, _ := ParseAccessToken(testParams, a.Token)
	cb, _ := ParseAccessToken(testParams, b.Token)
	if ca == nil || cb == nil || ca.ID == cb.ID {
		t.Fatal("expected distinct jti claims")
	}
}

func TestNewAccessToken_EmptySecret(t *testing.T) {
	p := testParams
	p.Secret = ""
	if _, err := NewAccessToken(p, "u"); err == nil {
		t.Fatal("expected error for empty secret")
	}
}

func TestParseAccessToken_Rejects(t *testing.T) {
	tok, err := NewAccessToken(testParams, "u")
	if err != nil {
		t.Fatalf("NewAccessToken: %v", err)
	}

	cases := map[string]TokenParams{
		"wrong secret":   {Secret: "other", Issuer: testParams.Issuer, Audience: testParams.Audience},
		"wrong issuer":   {Secret: testParams.Secret, Issuer: "http://elsewhere", Audience: testParams.Audience},
		"wrong audience": {Secret: testParams.Secret, Issuer: testParams.Issuer, Audience: "http://elsewhere"},
	}
	for name, p := range cases {
		t.Run(name, func(t *testing.T) {
			if _, err := ParseAccessToken(p, tok.Token); err == nil {
				t.Fatal("expected verification failure")
			}
		})
	}

	expired := testParams
	expired.TTL = -time.Hour
	old, err := NewAccessToken(expired, "u")
	if err != nil {
		t.Fatalf("NewAccessToken: %v", err)
	}
	if _, err := ParseAccessToken(testParams, old.Token); err == nil {
		t.Fatal("expected expired token to be rejected")
	}
}

func TestPasswordHashing(t *testing.T) {
	hash, err := HashPassword("Passw0rd!", bcrypt.MinCost)
	if err != nil {
		t.Fatalf("HashPassword: %v", err)
	}
	if hash == "Passw0rd!" {
		t.Fatal("hash equals plaintext")
	}
	if !VerifyPassword(hash, "Passw0rd!") {
		t.Fatal("expected matching password to verify")
	}
	if VerifyPassword(hash, "passw0rd!") {
		t.Fatal("expected different password to fail")
	}
}

func TestPasswordHashing_Limits(t *testing.T) {
	if _, err := HashPassword(strings.Repeat("x", 73), bcrypt.MinCost); !errors.Is(err, bcrypt.ErrPasswordTooLong) {
		t.Fatalf("err = %v, want ErrPasswordTooLong", err)
	}
	// out-of-range cost falls back to the default
	hash, err := HashPassword("Passw0rd!", 0)
	if err != nil {
		t.Fatalf("HashPassword: %v", err)
	}
	if cost, _ := bcrypt.Cost([]byte(hash)); cost != bcrypt.DefaultCost {
		t.Errorf("cost = %d, want %d", cost, bcrypt.DefaultCost)
	}
	if VerifyPassword("", "anything") || VerifyPassword("not-a-hash", "anything") {
		t.Error("malformed hash should never verify")
	}
}
