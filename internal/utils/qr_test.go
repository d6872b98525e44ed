package utils

import (
	"bytes"
	"testing"
)

func TestGenerateProductQR(t *testing.T) {
	png, err := GenerateProductQR("http://localhost:8000/products/T-Shirt")
	if err != nil {
		t.Fatalf("GenerateProductQR: %v", err)
	}
	if !bytes.HasPrefix(png, []byte("\x89PNG")) {
		t.Error("la sortie n'est pas un PNG")
	}
}
