package utils

import (
	"strings"
	"testing"
)

func TestHashAndVerifyPassword(t *testing.T) {
	hash, err := HashPassword("s3cret-pass")
	if err != nil {
		t.Fatalf("HashPassword: %v", err)
	}
	if !strings.HasPrefix(hash, "$argon2id$") {
		t.Errorf("hash %q n'est pas au format argon2id encodé", hash)
	}

	ok, err := VerifyPassword("s3cret-pass", hash)
	if err != nil {
		t.Fatalf("VerifyPassword: %v", err)
	}
	if !ok {
		t.Error("le bon mot de passe est refusé")
	}

	ok, err = VerifyPassword("mauvais", hash)
	if err != nil {
		t.Fatalf("VerifyPassword (mauvais): %v", err)
	}
	if ok {
		t.Error("un mauvais mot de passe est accepté")
	}
}

func TestHashPasswordSaltsDiffer(t *testing.T) {
	h1, err := HashPassword("same")
	if err != nil {
		t.Fatalf("HashPassword: %v", err)
	}
	h2, err := HashPassword("same")
	if err != nil {
		t.Fatalf("HashPassword: %v", err)
	}
	if h1 == h2 {
		t.Error("deux hashs du même mot de passe sont identiques, le sel n'est pas aléatoire")
	}
}

func TestVerifyPasswordRejectsMalformedHash(t *testing.T) {
	if _, err := VerifyPassword("x", "pas-un-hash"); err == nil {
		t.Error("un hash mal formé devrait retourner une erreur")
	}
}
