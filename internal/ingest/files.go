// Package ingest handles the document side of the pipeline: receiving
// uploads, loading PDF and plain-text sources, and splitting their content
// into chunks sized for embedding.
package ingest

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	"github.com/google/uuid"
)

var (
	// ErrFileTooLarge indicates an upload exceeded the configured size cap.
	ErrFileTooLarge = errors.New("file exceeds maximum allowed size")

	// ErrUnsupportedType indicates a file extension outside the allowed set.
	ErrUnsupportedType = errors.New("unsupported file type")
)

// stemRE keeps only filesystem-safe characters in upload names. Everything
// else collapses to underscores so a hostile filename cannot escape the
// upload directory or confuse later tooling.
var stemRE = regexp.MustCompile(`[^A-Za-z0-9_-]+`)

// UniqueName derives a collision-free stored name for an uploaded file. The
// original stem is sanitized and suffixed with a UTC timestamp and a short
// random fragment; the extension is preserved in lowercase, falling back to
// .dat when the original has none.
func UniqueName(original string) string {
	base := filepath.Base(original)
	ext := strings.ToLower(filepath.Ext(base))
	stem := strings.TrimSuffix(base, filepath.Ext(base))

	stem = stemRE.ReplaceAllString(stem, "_")
	stem = strings.Trim(stem, "_")
	if stem == "" {
		stem = "upload"
	}
	if ext == "" {
		ext = ".dat"
	}

	fragment := strings.SplitN(uuid.NewString(), "-", 2)[0]
	return fmt.Sprintf("%s_%s_%s%s", stem, time.Now().UTC().Format("20060102T150405"), fragment, ext)
}

// SaveUpload streams an upload to dir under a unique name, enforcing the
// size cap while copying so an oversized body never lands fully on disk.
// It returns the stored path. A partial file left by a failed or oversized
// copy is removed.
func SaveUpload(dir, original string, r io.Reader, maxSize int64) (string, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("creating upload directory: %w", err)
	}

	path := filepath.Join(dir, UniqueName(original))
	f, err := os.Create(path)
	if err != nil {
		return "", fmt.Errorf("creating upload file: %w", err)
	}

	// Copy one byte past the cap so an exactly-at-limit file passes and
	// anything larger is detected without reading the whole body.
	written, err := io.Copy(f, io.LimitReader(r, maxSize+1))
	closeErr := f.Close()

	switch {
	case err != nil:
		_ = os.Remove(path)
		return "", fmt.Errorf("writing upload: %w", err)
	case written > maxSize:
		_ = os.Remove(path)
		return "", fmt.Errorf("%w: limit is %d bytes", ErrFileTooLarge, maxSize)
	case closeErr != nil:
		_ = os.Remove(path)
		return "", fmt.Errorf("closing upload file: %w", closeErr)
	}

	return path, nil
}

// normalizeExtensions lowercases extensions and guarantees the leading dot,
// returning a lookup set. Each Loader gets its own map so instances never
// share mutable state.
func normalizeExtensions(extensions []string) map[string]bool {
	set := make(map[string]bool, len(extensions))
	for _, ext := range extensions {
		ext = strings.ToLower(strings.TrimSpace(ext))
		if ext == "" {
			continue
		}
		if !strings.HasPrefix(ext, ".") {
			ext = "." + ext
		}
		set[ext] = true
	}
	return set
}
