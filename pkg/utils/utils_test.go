package utils

import "testing"

func TestHashPassword(t *testing.T) {
	hash, err := HashPassword("secret123")
	if err != nil {
		t.Fatalf("HashPassword() error = %v", err)
	}

	if !CheckPassword("secret123", string(hash)) {
		t.Errorf("CheckPassword() = false for the right password")
	}
	if CheckPassword("wrong", string(hash)) {
		t.Errorf("CheckPassword() = true for a wrong password")
	}
}

func TestJWTRoundTrip(t *testing.T) {
	InitJWT("test-secret")

	token, err := GenerateJWT("42", "ADMIN")
	if err != nil {
		t.Fatalf("GenerateJWT() error = %v", err)
	}

	claims, err := ParseJWT(token)
	if err != nil {
		t.Fatalf("ParseJWT() error = %v", err)
	}
	if claims.UserID != "42" || claims.Role != "ADMIN" {
		t.Errorf("claims = %+v, want user 42 role ADMIN", claims)
	}

	InitJWT("another-secret")
	if _, err := ParseJWT(token); err == nil {
		t.Errorf("ParseJWT() accepted a token signed with another secret")
	}
}
