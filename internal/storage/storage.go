// Package storage keeps uploaded product and about-page images.
package storage

import (
	"context"
	"errors"
	"io"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
)

var ErrBadName = errors.New("unsupported image file name")

var allowedExt = map[string]string{
	".jpg":  "image/jpeg",
	".jpeg": "image/jpeg",
	".png":  "image/png",
	".gif":  "image/gif",
	".webp": "image/webp",
}

const maxStemLen = 80

type Store interface {
	// Save stores r under a fresh name derived from original and returns it.
	Save(ctx context.Context, original string, r io.Reader) (string, error)
	Delete(ctx context.Context, name string) error
	URL(name string) string
}

// Sanitize reduces an uploaded file name to a safe basename.
func Sanitize(original string) (string, error) {
	base := filepath.Base(strings.ReplaceAll(original, `\`, "/"))
	ext := strings.ToLower(filepath.Ext(base))
	if _, ok := allowedExt[ext]; !ok {
		return "", ErrBadName
	}
	stem := strings.TrimSuffix(base, filepath.Ext(base))

	var b strings.Builder
	for _, r := range stem {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '-', r == '_', r == '.':
			b.WriteRune(r)
		case r == ' ':
			b.WriteByte('_')
		}
	}
	clean := strings.Trim(b.String(), "._")
	if clean == "" {
		clean = "image"
	}
	if len(clean) > maxStemLen {
		clean = clean[:maxStemLen]
	}
	return clean + ext, nil
}

// StoredName sanitizes original and prefixes it so uploads never collide.
func StoredName(original string) (string, error) {
	clean, err := Sanitize(original)
	if err != nil {
		return "", err
	}
	return uuid.NewString()[:8] + "_" + clean, nil
}

func ContentType(name string) string {
	if ct, ok := allowedExt[strings.ToLower(filepath.Ext(name))]; ok {
		return ct
	}
	return "application/octet-stream"
}

func validStoredName(name string) bool {
	return name != "" && name == filepath.Base(name) && !strings.Contains(name, `\`) && name != "." && name != ".."
}
