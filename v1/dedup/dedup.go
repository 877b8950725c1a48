// Package dedup tracks which paths and contents are already indexed so a run
// only encodes files it has not seen before.
package dedup

import (
	"crypto/md5"
	"encoding/hex"
	"fmt"
	"io"
	"os"
	"sync"
)

// Index is the in-memory set of known paths and content hashes for one run.
// It is seeded from the store and grows as the run accepts new content.
type Index struct {
	mu     sync.RWMutex
	paths  map[string]struct{}
	hashes map[string]struct{}
}

// New seeds an Index with the stored paths and the non-empty stored hashes.
func New(paths, hashes []string) *Index {
	idx := &Index{
		paths:  make(map[string]struct{}, len(paths)),
		hashes: make(map[string]struct{}, len(hashes)),
	}
	for _, p := range paths {
		idx.paths[p] = struct{}{}
	}
	for _, h := range hashes {
		if h != "" {
			idx.hashes[h] = struct{}{}
		}
	}
	return idx
}

// IsNewPath reports whether path has never been stored.
func (i *Index) IsNewPath(path string) bool {
	i.mu.RLock()
	defer i.mu.RUnlock()
	_, ok := i.paths[path]
	return !ok
}

// IsNewContent reports whether hash is neither stored nor accepted earlier
// in this run.
func (i *Index) IsNewContent(hash string) bool {
	i.mu.RLock()
	defer i.mu.RUnlock()
	_, ok := i.hashes[hash]
	return !ok
}

// Accept records hash as seen. It is called as soon as a file is chosen for
// encoding, so later copies in the same run are treated as duplicates even
// if the batch holding the first copy is still pending.
func (i *Index) Accept(hash string) {
	i.mu.Lock()
	defer i.mu.Unlock()
	i.hashes[hash] = struct{}{}
}

// Len returns the number of known paths and hashes.
func (i *Index) Len() (paths, hashes int) {
	i.mu.RLock()
	defer i.mu.RUnlock()
	return len(i.paths), len(i.hashes)
}

// HashFile streams the file at path through MD5 and returns the hex digest.
// MD5 matches the digests already held in existing stores; it identifies
// content, it is not used for security.
func HashFile(path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()

	return HashReader(f)
}

// HashReader digests everything read from r.
func HashReader(r io.Reader) (string, error) {
	h := md5.New()
	buf := make([]byte, 64*1024)
	if _, err := io.CopyBuffer(h, r, buf); err != nil {
		return "", fmt.Errorf("hash content: %w", err)
	}
	return hex.EncodeToString(h.Sum(nil)), nil
}
