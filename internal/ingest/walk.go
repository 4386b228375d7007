package ingest

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
)

// DefaultMaxFileSize is the largest document the walker will pick up (10 MB).
const DefaultMaxFileSize int64 = 10 << 20

// skipDirs are directories never worth indexing.
var skipDirs = []string{
	".git",
	"node_modules",
	"vendor",
	"__pycache__",
	".venv",
	".idea",
	".vscode",
	"dist",
	"build",
}

// WalkConfig controls document discovery for bulk indexing.
type WalkConfig struct {
	RootDir     string
	Include     []string // glob patterns; empty includes everything
	Exclude     []string // glob patterns; empty excludes nothing
	MaxFileSize int64    // 0 uses DefaultMaxFileSize
}

// DiscoveredFile is a document found by Walk, ready to become a Source.
type DiscoveredFile struct {
	Path        string // absolute path on disk
	RelPath     string // slash-separated path relative to the root
	Size        int64
	ContentHash string // sha256 hex; stable across runs for the same content
}

// Source converts the discovered file into an ingestion source. The
// truncated content hash keeps chunk ids stable so re-indexing the
// same corpus overwrites instead of duplicating.
func (f DiscoveredFile) Source() Source {
	return Source{ID: f.ContentHash[:12], Name: f.RelPath, Path: f.Path}
}

// Walk traverses the directory tree under cfg.RootDir and returns
// every readable text document that passes the filters. Binary files
// and oversized files are skipped silently.
func Walk(cfg WalkConfig) ([]DiscoveredFile, error) {
	root, err := filepath.Abs(cfg.RootDir)
	if err != nil {
		return nil, fmt.Errorf("resolving root: %w", err)
	}

	maxSize := cfg.MaxFileSize
	if maxSize <= 0 {
		maxSize = DefaultMaxFileSize
	}

	var files []DiscoveredFile
	err = filepath.WalkDir(root, func(path string, d fs.DirEntry, walkErr error) error {
		if walkErr != nil {
			// Unreadable entries are skipped, not fatal.
			return nil
		}
		if d.IsDir() {
			for _, skip := range skipDirs {
				if strings.EqualFold(d.Name(), skip) {
					return filepath.SkipDir
				}
			}
			return nil
		}
		if !d.Type().IsRegular() {
			return nil
		}

		relPath, err := filepath.Rel(root, path)
		if err != nil {
			return nil
		}
		relPath = filepath.ToSlash(relPath)

		if len(cfg.Include) > 0 && !matchesAny(relPath, cfg.Include) {
			return nil
		}
		if matchesAny(relPath, cfg.Exclude) {
			return nil
		}

		info, err := d.Info()
		if err != nil || info.Size() > maxSize {
			return nil
		}
		if isBinary(path) {
			return nil
		}

		hash, err := hashFile(path)
		if err != nil {
			return nil
		}

		files = append(files, DiscoveredFile{
			Path:        path,
			RelPath:     relPath,
			Size:        info.Size(),
			ContentHash: hash,
		})
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("walking %s: %w", root, err)
	}
	return files, nil
}

// matchesAny reports whether the slash-separated relative path, or its
// basename, matches any of the glob patterns. Patterns support ** via
// doublestar.
func matchesAny(relPath string, patterns []string) bool {
	for _, pattern := range patterns {
		pattern = filepath.ToSlash(pattern)
		if matched, err := doublestar.PathMatch(pattern, relPath); err == nil && matched {
			return true
		}
		if matched, err := doublestar.PathMatch(pattern, filepath.Base(relPath)); err == nil && matched {
			return true
		}
	}
	return false
}

// isBinary checks the first 512 bytes for NUL bytes.
func isBinary(path string) bool {
	f, err := os.Open(path)
	if err != nil {
		return true
	}
	defer f.Close()

	buf := make([]byte, 512)
	n, err := f.Read(buf)
	if err != nil && err != io.EOF {
		return true
	}
	for i := 0; i < n; i++ {
		if buf[i] == 0 {
			return true
		}
	}
	return false
}

func hashFile(path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", err
	}
	defer f.Close()

	h := sha256.New()
	if _, err := io.Copy(h, f); err != nil {
		return "", err
	}
	return hex.EncodeToString(h.Sum(nil)), nil
}
