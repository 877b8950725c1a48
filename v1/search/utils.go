package search

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/mypictures/photoindex/v1/photo"
	"github.com/mypictures/photoindex/v1/scanner"
)

// DateLayout is the accepted form of date bounds.
const DateLayout = "2006-01-02"

// FilterBySimilarity keeps the hits scoring at least threshold, in their original
// order. It never asks the store for more rows, so a strict cutoff may
// leave fewer results than were requested.
func FilterBySimilarity(hits []photo.Hit, threshold float64) []photo.Hit {
	out := make([]photo.Hit, 0, len(hits))
	for _, h := range hits {
		if h.Similarity >= threshold {
			out = append(out, h)
		}
	}
	return out
}

// ParseDate reads a YYYY-MM-DD bound as midnight UTC. An empty string is no
// bound.
func ParseDate(s string) (*time.Time, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil, nil
	}
	t, err := time.ParseInLocation(DateLayout, s, time.UTC)
	if err != nil {
		return nil, fmt.Errorf("%w: date %q is not YYYY-MM-DD", ErrInvalidRequest, s)
	}
	return &t, nil
}

// AllowedPath reports whether p lies inside one of roots once both are made
// absolute and symlinks are followed. It returns the resolved path to serve.
func AllowedPath(roots []string, p string) (string, bool) {
	target, err := resolve(p)
	if err != nil {
		return "", false
	}
	for _, root := range roots {
		base, err := resolve(root)
		if err != nil {
			continue
		}
		rel, err := filepath.Rel(base, target)
		if err != nil {
			continue
		}
		if rel == ".." || strings.HasPrefix(rel, ".."+string(os.PathSeparator)) {
			continue
		}
		return target, true
	}
	return "", false
}

func resolve(p string) (string, error) {
	abs, err := scanner.ResolveRoot(p)
	if err != nil {
		return "", err
	}
	if resolved, err := filepath.EvalSymlinks(abs); err == nil {
		return resolved, nil
	}
	return abs, nil
}
