// Package storage implements the on-disk file store for post attachments.
package storage

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
)

// ErrExtensionNotAllowed indicates the declared filename's extension is
// outside the allowed set. Callers treat this as "skip the upload", not
// as a request failure.
var ErrExtensionNotAllowed = errors.New("file extension not allowed")

var allowedExtensions = map[string]bool{
	".png":  true,
	".jpg":  true,
	".jpeg": true,
	".gif":  true,
	".pdf":  true,
	".doc":  true,
	".docx": true,
}

// Store saves uploaded files under a single root directory.
type Store struct {
	root string
}

// NewStore creates the root directory if missing and returns a Store.
func NewStore(root string) (*Store, error) {
	if root == "" {
		return nil, errors.New("storage root is required")
	}
	if err := os.MkdirAll(root, 0o755); err != nil {
		return nil, fmt.Errorf("create upload dir: %w", err)
	}
	return &Store{root: root}, nil
}

// Root returns the store's root directory.
func (s *Store) Root() string {
	return s.root
}

// Allowed reports whether the declared filename carries an allowed extension.
func Allowed(declaredName string) bool {
	return allowedExtensions[strings.ToLower(filepath.Ext(declaredName))]
}

// Save writes content under a sanitized, collision-resistant name
// prefixed with the owner's ID and returns the relative path used for
// later retrieval and deletion. Disallowed extensions yield
// ErrExtensionNotAllowed without writing anything.
func (s *Store) Save(declaredName string, content []byte, ownerID uint) (string, error) {
	if !Allowed(declaredName) {
		return "", ErrExtensionNotAllowed
	}

	name := sanitizeFilename(declaredName)
	stored := fmt.Sprintf("%d_%s_%s", ownerID, uuid.NewString()[:8], name)

	if err := os.WriteFile(filepath.Join(s.root, stored), content, 0o644); err != nil {
		return "", fmt.Errorf("write upload: %w", err)
	}
	return stored, nil
}

// Open returns the absolute path for a stored reference, refusing
// references that escape the root.
func (s *Store) abs(ref string) (string, error) {
	clean := filepath.Clean(ref)
	if clean == "." || strings.HasPrefix(clean, "..") || filepath.IsAbs(clean) {
		return "", fmt.Errorf("invalid file reference %q", ref)
	}
	return filepath.Join(s.root, clean), nil
}

// Delete removes the stored file. A missing file is not an error.
func (s *Store) Delete(ref string) error {
	if ref == "" {
		return nil
	}
	path, err := s.abs(ref)
	if err != nil {
		return err
	}
	if err := os.Remove(path); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("delete upload: %w", err)
	}
	return nil
}

// sanitizeFilename strips any path components and reduces the name to a
// conservative character set so stored names are shell- and URL-safe.
func sanitizeFilename(declaredName string) string {
	base := filepath.Base(strings.ReplaceAll(declaredName, "\\", "/"))
	ext := strings.ToLower(filepath.Ext(base))
	stem := strings.TrimSuffix(base, filepath.Ext(base))

	var b strings.Builder
	for _, r := range stem {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
			b.WriteRune(r)
		case r == '-' || r == '_' || r == '.':
			b.WriteRune(r)
		default:
			b.WriteByte('_')
		}
	}
	cleaned := strings.Trim(b.String(), "._")
	if cleaned == "" {
		cleaned = "file"
	}
	return cleaned + ext
}
