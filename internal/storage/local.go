// Package storage saves uploaded files to the local filesystem and
// hands back their public URL paths.
package storage

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
)

// allowedExtensions are the upload types the portal accepts.
var allowedExtensions = map[string]bool{
	".png":  true,
	".jpg":  true,
	".jpeg": true,
	".gif":  true,
	".webp": true,
	".svg":  true,
	".pdf":  true,
}

// Local stores uploads under a base directory served at a URL prefix.
type Local struct {
	baseDir   string
	urlPrefix string
	maxBytes  int64
}

// NewLocal creates a Local store. The directory is created if missing.
func NewLocal(baseDir, urlPrefix string, maxBytes int64) (*Local, error) {
	if err := os.MkdirAll(baseDir, 0755); err != nil {
		return nil, fmt.Errorf("creating uploads directory: %w", err)
	}
	return &Local{
		baseDir:   baseDir,
		urlPrefix: strings.TrimSuffix(urlPrefix, "/"),
		maxBytes:  maxBytes,
	}, nil
}

// Save writes an upload to disk under a random name that keeps the
// original extension, and returns its public URL path. The original
// filename never reaches the filesystem.
func (l *Local) Save(r io.Reader, originalName string) (string, error) {
	ext := strings.ToLower(filepath.Ext(originalName))
	if !allowedExtensions[ext] {
		return "", fmt.Errorf("file type %q is not allowed", ext)
	}

	name := uuid.New().String() + ext
	path := filepath.Join(l.baseDir, name)

	out, err := os.Create(path)
	if err != nil {
		return "", fmt.Errorf("creating file: %w", err)
	}
	defer func() { _ = out.Close() }()

	limited := io.LimitReader(r, l.maxBytes+1)
	n, err := io.Copy(out, limited)
	if err != nil {
		_ = os.Remove(path)
		return "", fmt.Errorf("writing file: %w", err)
	}
	if n > l.maxBytes {
		_ = os.Remove(path)
		return "", fmt.Errorf("file exceeds the %d byte limit", l.maxBytes)
	}

	return l.urlPrefix + "/" + name, nil
}

// Dir returns the base directory, for wiring the static file server.
func (l *Local) Dir() string {
	return l.baseDir
}
