package utils

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

var (
	jwtSecret   []byte
	tokenExpiry time.Duration
)

// InitJWT fixe le secret et la durée de vie des tokens (appelé une fois
// au démarrage avec la Config).
func InitJWT(secret []byte, expiry time.Duration) {
	jwtSecret = secret
	tokenExpiry = expiry
}

// GenerateToken signe un bearer token HS256 dont le sujet est l'email.
func GenerateToken(email string) (string, error) {
	if len(jwtSecret) == 0 {
		return "", errors.New("secret JWT non initialisé")
	}

	claims := jwt.MapClaims{
		"sub": email,
		"exp": time.Now().Add(tokenExpiry).Unix(),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(jwtSecret)
}

// ParseToken vérifie la signature et l'expiration, puis retourne l'email.
func ParseToken(tokenString string) (string, error) {
	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("méthode de signature inattendue: %v", token.Header["alg"])
		}
		return jwtSecret, nil
	})
	if err != nil {
		return "", err
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok || !token.Valid {
		return "", errors.New("token invalide")
	}

	sub, ok := claims["sub"].(string)
	if !ok || sub == "" {
		return "", errors.New("sujet manquant dans le token")
	}

	return sub, nil
}
