package middleware

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt"
)

func TestGenerateAndParseToken(t *testing.T) {
	t.Setenv("JWT_SECRET", "test-secret")

	token, err := GenerateJWT("64a1f0c2e4b0a1b2c3d4e5f6", "user@example.com", "consumer")
	if err != nil {
		t.Fatalf("GenerateJWT failed: %v", err)
	}

	claims, err := ParseToken(token)
	if err != nil {
		t.Fatalf("ParseToken failed: %v", err)
	}
	if claims.UserID != "64a1f0c2e4b0a1b2c3d4e5f6" {
		t.Errorf("userId = %q, want original", claims.UserID)
	}
	if claims.UserType != "consumer" || claims.Email != "user@example.com" {
		t.Errorf("claims = %+v, want original email and userType", claims)
	}
}

func TestParseTokenRejectsEmpty(t *testing.T) {
	t.Setenv("JWT_SECRET", "test-secret")
	if _, err := ParseToken(""); err == nil {
		t.Error("empty token should be rejected")
	}
}

func TestParseTokenRejectsWrongSecret(t *testing.T) {
	t.Setenv("JWT_SECRET", "secret-a")
	token, err := GenerateJWT("64a1f0c2e4b0a1b2c3d4e5f6", "user@example.com", "provider")
	if err != nil {
		t.Fatalf("GenerateJWT failed: %v", err)
	}

	t.Setenv("JWT_SECRET", "secret-b")
	if _, err := ParseToken(token); err == nil {
		t.Error("token signed with a different secret should be rejected")
	}
}

func TestClaimsValidExpiry(t *testing.T) {
	expired := JwtCustomClaims{
		StandardClaims: jwt.StandardClaims{ExpiresAt: time.Now().Add(-time.Hour).Unix()},
	}
	if err := expired.Valid(); err == nil {
		t.Error("expired claims should fail validation")
	}

	live := JwtCustomClaims{
		StandardClaims: jwt.StandardClaims{ExpiresAt: time.Now().Add(time.Hour).Unix()},
	}
	if err := live.Valid(); err != nil {
		t.Errorf("live claims failed validation: %v", err)
	}
}
