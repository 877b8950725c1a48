// Package scanner finds candidate image files under a set of root directories.
package scanner

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/mypictures/photoindex/v1/logger"
)

// ErrRootNotFound is reported (as a warning) for roots that do not exist.
var ErrRootNotFound = errors.New("scan root not found")

// DefaultExtensions are the image types indexed when none are configured.
var DefaultExtensions = []string{
	"jpg", "jpeg", "png", "gif", "bmp", "tiff", "tif", "webp",
	"heic", "heif",
	"cr2", "cr3", "nef", "arw", "dng", "orf", "rw2", "pef",
}

// Scanner walks directory trees and yields regular files whose extension is
// in the configured set.
type Scanner struct {
	extensions map[string]struct{}
	log        logger.Logger
}

// New builds a Scanner. Extensions match case-insensitively and may be
// given with or without the leading dot.
func New(extensions []string, log logger.Logger) *Scanner {
	if len(extensions) == 0 {
		extensions = DefaultExtensions
	}
	set := make(map[string]struct{}, len(extensions))
	for _, ext := range extensions {
		ext = strings.ToLower(strings.TrimPrefix(strings.TrimSpace(ext), "."))
		if ext != "" {
			set["."+ext] = struct{}{}
		}
	}
	return &Scanner{extensions: set, log: log}
}

// Matches reports whether path has one of the configured extensions.
func (s *Scanner) Matches(path string) bool {
	_, ok := s.extensions[strings.ToLower(filepath.Ext(path))]
	return ok
}

// Scan returns every matching regular file below roots as absolute paths.
// Missing roots and unreadable directories are logged and skipped. A root
// listed twice, or nested inside another root, does not yield duplicates.
// The order of the result is unspecified.
func (s *Scanner) Scan(ctx context.Context, roots []string) ([]string, error) {
	seen := make(map[string]struct{})
	var files []string

	for _, root := range roots {
		abs, err := ResolveRoot(root)
		if err != nil {
			s.log.Warn("invalid scan root", err, map[string]interface{}{"root": root})
			continue
		}

		info, err := os.Stat(abs)
		if err != nil || !info.IsDir() {
			s.log.Warn("skipping scan root", fmt.Errorf("%w: %s", ErrRootNotFound, abs),
				map[string]interface{}{"root": abs})
			continue
		}

		s.log.Info("scanning", nil, map[string]interface{}{"root": abs})
		before := len(files)

		err = filepath.WalkDir(abs, func(path string, d fs.DirEntry, err error) error {
			if ctxErr := ctx.Err(); ctxErr != nil {
				return ctxErr
			}
			if err != nil {
				if d != nil && d.IsDir() && path != abs {
					s.log.Warn("skipping unreadable directory", err, map[string]interface{}{"path": path})
					return fs.SkipDir
				}
				s.log.Warn("skipping unreadable entry", err, map[string]interface{}{"path": path})
				return nil
			}
			if !d.Type().IsRegular() || !s.Matches(path) {
				return nil
			}
			if _, dup := seen[path]; dup {
				return nil
			}
			seen[path] = struct{}{}
			files = append(files, path)
			return nil
		})
		if err != nil {
			if ctx.Err() != nil {
				return files, ctx.Err()
			}
			s.log.Warn("scan root aborted", err, map[string]interface{}{"root": abs})
		}

		s.log.Info("scanned", nil, map[string]interface{}{
			"root":  abs,
			"files": len(files) - before,
		})
	}

	return files, nil
}

// ResolveRoot expands a leading "~" and returns the cleaned absolute path.
func ResolveRoot(root string) (string, error) {
	root = strings.TrimSpace(root)
	if root == "" {
		return "", errors.New("empty path")
	}
	if root == "~" || strings.HasPrefix(root, "~/") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home directory: %w", err)
		}
		root = filepath.Join(home, strings.TrimPrefix(root, "~"))
	}
	return filepath.Abs(root)
}
