package auth

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

func TestJWTManager_GenerateAndParse(t *testing.T) {
	manager := NewJWTManager("secret", time.Hour)
	token, err := manager.GenerateToken("user-1", "user@example.com", "admin")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	claims, err := manager.ParseToken(token)
	if err != nil {
		t.Fatalf("parse token: %v", err)
	}
	if claims.Subject != "user-1" || claims.Email != "user@example.com" || claims.Role != "admin" {
		t.Fatalf("unexpected claims: %+v", claims)
	}
	if claims.Issuer != "coffee-directory" {
		t.Fatalf("unexpected issuer: %q", claims.Issuer)
	}

	if _, err := manager.ParseToken(token + "tampered"); err == nil {
		t.Fatalf("expected parse error for tampered token")
	}
}

func TestJWTManager_RejectsForeignIssuer(t *testing.T) {
	foreign := jwt.NewWithClaims(jwt.SigningMethodHS256, &Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    "some-other-service",
			Subject:   "user-1",
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
	})
	signed, err := foreign.SignedString([]byte("secret"))
	if err != nil {
		t.Fatalf("sign token: %v", err)
	}

	manager := NewJWTManager("secret", time.Hour)
	if _, err := manager.ParseToken(signed); err == nil {
		t.Fatalf("expected rejection of token with wrong issuer")
	}
}

func TestJWTManager_EmptySecret(t *testing.T) {
	manager := NewJWTManager("", time.Hour)
	if _, err := manager.GenerateToken("user", "user@example.com", "user"); err == nil {
		t.Fatalf("expected error when secret is empty")
	}
}
