package repository

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"strings"
)

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type loginResponse struct {
	Token string `json:"token"`
}

// Login exchanges an email and password for the bearer token the task
// service expects on every other call
func Login(ctx context.Context, baseURL, email, password string, opts ...Option) (string, error) {
	if strings.TrimSpace(email) == "" || password == "" {
		return "", errors.New("email and password are required")
	}
	c, err := NewClient(baseURL, "", opts...)
	if err != nil {
		return "", err
	}

	var resp loginResponse
	body := loginRequest{Email: strings.TrimSpace(email), Password: password}
	if err := c.do(ctx, http.MethodPost, "/api/auth/login", nil, body, &resp); err != nil {
		return "", fmt.Errorf("login failed: %w", err)
	}
	token := strings.TrimSpace(resp.Token)
	if token == "" || token == "null" {
		return "", errors.New("login failed: the task service returned no token")
	}
	return token, nil
}

// SaveToken stores a session token readable only by the current user
func SaveToken(path, token string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return fmt.Errorf("failed to create token directory: %w", err)
	}
	if err := os.WriteFile(path, []byte(token+"\n"), 0600); err != nil {
		return fmt.Errorf("failed to save token: %w", err)
	}
	return nil
}

// LoadToken reads a token saved by SaveToken. A missing file yields an
// empty token and no error.
func LoadToken(path string) (string, error) {
	if path == "" {
		return "", nil
	}
	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("failed to read token: %w", err)
	}
	return strings.TrimSpace(string(data)), nil
}

// DeleteToken removes a saved token. A missing file is not an error.
func DeleteToken(path string) error {
	if err := os.Remove(path); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("failed to remove token: %w", err)
	}
	return nil
}
