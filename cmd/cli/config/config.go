package config

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
)

const (
	defaultAPIURL = "http://localhost:8080"
	tokenFileName = ".blog_token"
)

// ErrNotLoggedIn is returned by ReadToken when no token was saved.
var ErrNotLoggedIn = errors.New("not logged in; run \"blog login\" first")

// APIURL returns the base URL of the blog API without a trailing slash.
// It can be overridden with the BLOG_API_URL environment variable.
func APIURL() string {
	if v := os.Getenv("BLOG_API_URL"); v != "" {
		return strings.TrimRight(v, "/")
	}
	return defaultAPIURL
}

// ==========================
// Token Storage Helpers
// ==========================

// TokenPath is ~/.blog_token unless BLOG_TOKEN_FILE is set.
func TokenPath() string {
	if v := os.Getenv("BLOG_TOKEN_FILE"); v != "" {
		return v
	}
	dir, err := os.UserHomeDir()
	if err != nil {
		dir = "."
	}
	return filepath.Join(dir, tokenFileName)
}

func SaveToken(token string) error {
	return os.WriteFile(TokenPath(), []byte(token), 0o600)
}

func ReadToken() (string, error) {
	data, err := os.ReadFile(TokenPath())
	if errors.Is(err, os.ErrNotExist) {
		return "", ErrNotLoggedIn
	}
	if err != nil {
		return "", err
	}
	tok := strings.TrimSpace(string(data))
	if tok == "" {
		return "", ErrNotLoggedIn
	}
	return tok, nil
}

// ClearToken removes the saved token. A missing file is not an error.
func ClearToken() error {
	err := os.Remove(TokenPath())
	if errors.Is(err, os.ErrNotExist) {
		return nil
	}
	return err
}
