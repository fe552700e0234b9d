package repository

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/gin-gonic/gin"
)

func newLoginServer(t *testing.T) string {
	t.Helper()
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.POST("/api/auth/login", func(c *gin.Context) {
		var body loginRequest
		if err := c.ShouldBindJSON(&body); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		if body.Email != "ana@example.com" || body.Password != "s3cret" {
			c.JSON(http.StatusUnauthorized, gin.H{"message": "Credenciales incorrectas"})
			return
		}
		// the service builds the JSON by hand and sends it as text
		c.String(http.StatusOK, `{"token": "jwt-123"}`)
	})
	srv := httptest.NewServer(r)
	t.Cleanup(srv.Close)
	return srv.URL
}

func TestLogin(t *testing.T) {
	t.Parallel()
	url := newLoginServer(t)
	ctx := context.Background()

	token, err := Login(ctx, url, " ana@example.com ", "s3cret")
	if err != nil {
		t.Fatalf("Login failed: %v", err)
	}
	if token != "jwt-123" {
		t.Errorf("Expected jwt-123, got %q", token)
	}

	tests := []struct {
		name, email, password string
	}{
		{"wrong password", "ana@example.com", "nope"},
		{"missing email", "", "s3cret"},
		{"missing password", "ana@example.com", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := Login(ctx, url, tt.email, tt.password); err == nil {
				t.Error("Expected login to fail")
			}
		})
	}
}

func TestTokenFile(t *testing.T) {
	t.Parallel()
	path := filepath.Join(t.TempDir(), "nested", "session.token")

	token, err := LoadToken(path)
	if err != nil || token != "" {
		t.Fatalf("LoadToken(missing) = %q, %v", token, err)
	}

	if err := SaveToken(path, "jwt-123"); err != nil {
		t.Fatalf("SaveToken failed: %v", err)
	}
	info, err := os.Stat(path)
	if err != nil {
		t.Fatalf("Stat failed: %v", err)
	}
	if info.Mode().Perm() != 0600 {
		t.Errorf("Expected mode 0600, got %v", info.Mode().Perm())
	}
	if token, _ := LoadToken(path); token != "jwt-123" {
		t.Errorf("LoadToken = %q", token)
	}

	if err := DeleteToken(path); err != nil {
		t.Fatalf("DeleteToken failed: %v", err)
	}
	if err := DeleteToken(path); err != nil {
		t.Errorf("DeleteToken on a missing file: %v", err)
	}
}
