package jwt

import (
	"testing"
	"time"

	jwtlib "github.com/golang-jwt/jwt/v5"
)

func TestVerifier_RoundTrip(t *testing.T) {
	v := NewVerifier("test-secret", "collab-service")

	token, err := v.Sign("user-1", "u1@example.com", "alice", []string{"member"}, time.Minute)
	if err != nil {
		t.Fatalf("Sign() unexpected error: %v", err)
	}

	claims, err := v.Verify(token)
	if err != nil {
		t.Fatalf("Verify() unexpected error: %v", err)
	}

	if claims.UserID != "user-1" {
		t.Errorf("UserID = %q, want %q", claims.UserID, "user-1")
	}
	if claims.Username != "alice" {
		t.Errorf("Username = %q, want %q", claims.Username, "alice")
	}
	if claims.Issuer != "collab-service" {
		t.Errorf("Issuer = %q, want %q", claims.Issuer, "collab-service")
	}
}

func TestVerifier_Expired(t *testing.T) {
	v := NewVerifier("test-secret", "")

	token, err := v.Sign("user-1", "", "alice", nil, -time.Minute)
	if err != nil {
		t.Fatalf("Sign() unexpected error: %v", err)
	}

	if _, err := v.Verify(token); err != ErrExpiredToken {
		t.Errorf("Verify() error = %v, want ErrExpiredToken", err)
	}
}

func TestVerifier_WrongSecret(t *testing.T) {
	issuer := NewVerifier("secret-a", "")
	verifier := NewVerifier("secret-b", "")

	token, err := issuer.Sign("user-1", "", "alice", nil, time.Minute)
	if err != nil {
		t.Fatalf("Sign() unexpected error: %v", err)
	}

	if _, err := verifier.Verify(token); err != ErrInvalidToken {
		t.Errorf("Verify() error = %v, want ErrInvalidToken", err)
	}
}

func TestVerifier_WrongIssuer(t *testing.T) {
	issuer := NewVerifier("test-secret", "other-service")
	verifier := NewVerifier("test-secret", "collab-service")

	token, err := issuer.Sign("user-1", "", "alice", nil, time.Minute)
	if err != nil {
		t.Fatalf("Sign() unexpected error: %v", err)
	}

	if _, err := verifier.Verify(token); err != ErrInvalidToken {
		t.Errorf("Verify() error = %v, want ErrInvalidToken", err)
	}
}

func TestVerifier_RejectsNonHMAC(t *testing.T) {
	v := NewVerifier("test-secret", "")

	// Token signed with "none" must never validate.
	token := jwtlib.NewWithClaims(jwtlib.SigningMethodNone, &Claims{UserID: "user-1"})
	signed, err := token.SignedString(jwtlib.UnsafeAllowNoneSignatureType)
	if err != nil {
		t.Fatalf("SignedString() unexpected error: %v", err)
	}

	if _, err := v.Verify(signed); err != ErrInvalidToken {
		t.Errorf("Verify() error = %v, want ErrInvalidToken", err)
	}
}

func TestVerifier_RejectsRefreshToken(t *testing.T) {
	v := NewVerifier("test-secret", "")

	now := time.Now()
	claims := &Claims{
		RegisteredClaims: jwtlib.RegisteredClaims{
			IssuedAt:  jwtlib.NewNumericDate(now),
			ExpiresAt: jwtlib.NewNumericDate(now.Add(time.Minute)),
		},
		UserID: "user-1",
		Type:   "refresh",
	}
	token := jwtlib.NewWithClaims(jwtlib.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte("test-secret"))
	if err != nil {
		t.Fatalf("SignedString() unexpected error: %v", err)
	}

	if _, err := v.Verify(signed); err != ErrInvalidToken {
		t.Errorf("Verify() error = %v, want ErrInvalidToken", err)
	}
}
