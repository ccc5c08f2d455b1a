// Package tokenfile handles reading and writing the saved OAuth2 token.
// It is a leaf package imported by both config/ and drive/ so neither has
// to depend on the other for token persistence.
package tokenfile

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"golang.org/x/oauth2"
)

// FilePerms restricts token files to owner-only read/write.
const FilePerms = 0o600

// DirPerms is used when creating the token directory.
const DirPerms = 0o700

// Load reads a saved token from disk. Returns (nil, nil) if the file does
// not exist, so callers can distinguish "not logged in" from a real error.
func Load(path string) (*oauth2.Token, error) {
	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil //nolint:nilnil // sentinel for "not found"
	}

	if err != nil {
		return nil, fmt.Errorf("tokenfile: reading %s: %w", path, err)
	}

	var tok oauth2.Token
	if err := json.Unmarshal(data, &tok); err != nil {
		return nil, fmt.Errorf("tokenfile: decoding %s: %w", path, err)
	}

	if tok.AccessToken == "" && tok.RefreshToken == "" {
		return nil, fmt.Errorf("tokenfile: %s contains no usable token (re-login required)", path)
	}

	return &tok, nil
}

// Save writes a token to disk atomically (write to temp file, then rename).
// The parent directory is created if missing. File mode is 0600 because the
// token grants read access to the user's entire Drive.
func Save(path string, tok *oauth2.Token) error {
	if tok == nil {
		return fmt.Errorf("tokenfile: refusing to save nil token to %s", path)
	}

	if err := os.MkdirAll(filepath.Dir(path), DirPerms); err != nil {
		return fmt.Errorf("tokenfile: creating token directory: %w", err)
	}

	data, err := json.MarshalIndent(tok, "", "  ")
	if err != nil {
		return fmt.Errorf("tokenfile: encoding token: %w", err)
	}

	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, FilePerms); err != nil {
		return fmt.Errorf("tokenfile: writing %s: %w", tmp, err)
	}

	if err := os.Rename(tmp, path); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("tokenfile: renaming %s: %w", tmp, err)
	}

	return nil
}
