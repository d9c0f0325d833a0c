// SPDX-License-Identifier: MIT
package thumbcache

import (
	"os"
	"path/filepath"
	"strings"
	"sync"
)

// index maps base filenames to resolved cache paths so steady-state lookups
// do not glob the directory on every metadata read. It is populated from one
// directory scan on first use and kept current on writes.
type index struct {
	dir string

	mu      sync.RWMutex
	entries map[string]string
	scanned bool
}

func newIndex(dir string) *index {
	return &index{dir: dir, entries: make(map[string]string)}
}

func (ix *index) lookup(base string) (string, bool) {
	ix.mu.RLock()
	if ix.scanned {
		path, ok := ix.entries[base]
		ix.mu.RUnlock()
		if ok {
			// The file may have been removed behind our back; fall back to
			// a miss so it gets re-fetched instead of serving a dead path.
			if _, err := os.Stat(path); err != nil {
				ix.drop(base)
				return "", false
			}
		}
		return path, ok
	}
	ix.mu.RUnlock()

	ix.mu.Lock()
	defer ix.mu.Unlock()
	if !ix.scanned {
		ix.scan()
	}
	path, ok := ix.entries[base]
	return path, ok
}

func (ix *index) put(base, path string) {
	ix.mu.Lock()
	ix.entries[base] = path
	ix.mu.Unlock()
}

func (ix *index) drop(base string) {
	ix.mu.Lock()
	delete(ix.entries, base)
	ix.mu.Unlock()
}

// scan loads every "<base>.<ext>" cache file currently on disk.
// Caller holds the write lock.
func (ix *index) scan() {
	ix.scanned = true
	dirents, err := os.ReadDir(ix.dir)
	if err != nil {
		return
	}
	for _, de := range dirents {
		if de.IsDir() {
			continue
		}
		name := de.Name()
		if !strings.HasPrefix(name, "thumbnail_") {
			continue
		}
		dot := strings.LastIndexByte(name, '.')
		if dot <= 0 {
			continue
		}
		ix.entries[name[:dot]] = filepath.Join(ix.dir, name)
	}
}
