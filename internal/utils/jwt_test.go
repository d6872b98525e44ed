package utils

import (
	"testing"
	"time"
)

func TestGenerateAndParseToken(t *testing.T) {
	InitJWT([]byte("test-secret"), 30*time.Minute)

	token, err := GenerateToken("alice@example.com")
	if err != nil {
		t.Fatalf("GenerateToken: %v", err)
	}

	email, err := ParseToken(token)
	if err != nil {
		t.Fatalf("ParseToken: %v", err)
	}
	if email != "alice@example.com" {
		t.Errorf("sujet = %q, attendu alice@example.com", email)
	}
}

func TestParseTokenRejectsExpired(t *testing.T) {
	InitJWT([]byte("test-secret"), -1*time.Minute)

	token, err := GenerateToken("alice@example.com")
	if err != nil {
		t.Fatalf("GenerateToken: %v", err)
	}

	if _, err := ParseToken(token); err == nil {
		t.Error("un token expiré devrait être refusé")
	}
}

func TestParseTokenRejectsWrongSecret(t *testing.T) {
	InitJWT([]byte("secret-a"), 30*time.Minute)
	token, err := GenerateToken("alice@example.com")
	if err != nil {
		t.Fatalf("GenerateToken: %v", err)
	}

	InitJWT([]byte("secret-b"), 30*time.Minute)
	if _, err := ParseToken(token); err == nil {
		t.Error("un token signé avec un autre secret devrait être refusé")
	}
}

func TestParseTokenRejectsGarbage(t *testing.T) {
	InitJWT([]byte("test-secret"), 30*time.Minute)
	if _, err := ParseToken("pas.un.token"); err == nil {
		t.Error("une chaîne arbitraire devrait être refusée")
	}
}
