// Package ingest discovers card images on the local filesystem: one-shot
// directory walks and a recursive watch mode for drop folders.
package ingest

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/ocrtools/cardscan/constants"
)

// FileInfo is one discovered card image.
type FileInfo struct {
	Path    string
	HashHex string
	Size    int64
}

// DirStats summarizes a directory walk.
type DirStats struct {
	Scanned      uint32
	Matched      uint32
	Deduplicated uint32
	Failed       uint32
}

// AllowedExt reports whether ext names a recognizable image format.
func AllowedExt(ext string) bool {
	_, ok := constants.AllowedExtensions[constants.NormalizeExt(ext)]
	return ok
}

// IsHidden checks if a file or directory is hidden (starts with '.').
func IsHidden(path string) bool {
	base := filepath.Base(path)
	return strings.HasPrefix(base, ".")
}

// HashFile returns the hex sha256 of the file contents.
func HashFile(path string) (string, int64, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", 0, err
	}
	defer func() { _ = f.Close() }()

	h := sha256.New()
	n, err := io.Copy(h, f)
	if err != nil {
		return "", 0, err
	}
	return hex.EncodeToString(h.Sum(nil)), n, nil
}

// Discover walks root and returns the card images under it, skipping hidden
// entries when skipHidden is set. Identical files (by content hash) are
// reported once. Unreadable files count as failed, not fatal.
func Discover(ctx context.Context, root string, skipHidden bool) ([]FileInfo, DirStats, error) {
	if strings.TrimSpace(root) == "" {
		return nil, DirStats{}, errors.New("root path is required")
	}

	var out []FileInfo
	var stats DirStats
	seen := map[string]struct{}{}

	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, walkErr error) error {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		stats.Scanned++
		if walkErr != nil {
			stats.Failed++
			return nil
		}
		if skipHidden && IsHidden(path) && path != root {
			if d.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}
		if d.IsDir() {
			return nil
		}
		if !AllowedExt(filepath.Ext(path)) {
			return nil
		}
		stats.Matched++

		sum, size, err := HashFile(path)
		if err != nil {
			stats.Failed++
			return nil
		}
		if _, dup := seen[sum]; dup {
			stats.Deduplicated++
			return nil
		}
		seen[sum] = struct{}{}
		out = append(out, FileInfo{Path: path, HashHex: sum, Size: size})
		return nil
	})
	if err != nil {
		return nil, stats, err
	}
	return out, stats, nil
}
