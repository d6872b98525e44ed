package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"velvet_back_end/internal/utils"

	"github.com/gin-gonic/gin"
)

func protectedRouter() *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.GET("/me", AuthRequired(), func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"email": c.GetString("email")})
	})
	return r
}

func TestAuthRequiredRejectsMissingHeader(t *testing.T) {
	r := protectedRouter()

	req := httptest.NewRequest(http.MethodGet, "/me", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	if w.Code != http.StatusUnauthorized {
		t.Errorf("code = %d, attendu 401", w.Code)
	}
}

func TestAuthRequiredRejectsBadFormat(t *testing.T) {
	r := protectedRouter()

	for _, header := range []string{"token-nu", "Basic abc", "Bearer"} {
		req := httptest.NewRequest(http.MethodGet, "/me", nil)
		req.Header.Set("Authorization", header)
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)
		if w.Code != http.StatusUnauthorized {
			t.Errorf("header %q: code = %d, attendu 401", header, w.Code)
		}
	}
}

func TestAuthRequiredRejectsInvalidToken(t *testing.T) {
	utils.InitJWT([]byte("test-secret"), 30*time.Minute)
	r := protectedRouter()

	req := httptest.NewRequest(http.MethodGet, "/me", nil)
	req.Header.Set("Authorization", "Bearer pas.un.token")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	if w.Code != http.StatusUnauthorized {
		t.Errorf("code = %d, attendu 401", w.Code)
	}
}

func TestAuthRequiredRejectsExpiredToken(t *testing.T) {
	utils.InitJWT([]byte("test-secret"), -1*time.Minute)
	token, err := utils.GenerateToken("alice@example.com")
	if err != nil {
		t.Fatalf("GenerateToken: %v", err)
	}
	utils.InitJWT([]byte("test-secret"), 30*time.Minute)

	r := protectedRouter()
	req := httptest.NewRequest(http.MethodGet, "/me", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	if w.Code != http.StatusUnauthorized {
		t.Errorf("code = %d, attendu 401", w.Code)
	}
}
