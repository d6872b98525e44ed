package utils

import (
	"github.com/skip2/go-qrcode"
)

// GenerateProductQR génère le PNG d'une étiquette de rayonnage : le QR
// encode l'URL publique de la fiche produit.
func GenerateProductQR(productURL string) ([]byte, error) {
	return qrcode.Encode(productURL, qrcode.Medium, 256)
}
