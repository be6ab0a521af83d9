// Package preview issues temporary local URLs for files that have been
// picked but not yet uploaded.
package preview

import (
	"fmt"
	"io"
	"strings"
	"sync"

	"github.com/google/uuid"

	"github.com/mesh-intelligence/mytree/internal/upload"
)

// Scheme prefixes every URL issued by MemoryRegistry.
const Scheme = "blob:mytree/"

// Registry creates and revokes preview URLs. The caller owns every URL it
// creates and must revoke it.
type Registry interface {
	Create(f upload.File) (string, error)
	Revoke(url string)
}

// MemoryRegistry keeps previewed content in memory until revoked.
type MemoryRegistry struct {
	mu      sync.Mutex
	entries map[string]entry
}

type entry struct {
	name        string
	contentType string
	data        []byte
}

// NewMemoryRegistry returns an empty registry.
func NewMemoryRegistry() *MemoryRegistry {
	return &MemoryRegistry{entries: make(map[string]entry)}
}

// Create reads f and returns a fresh URL for it.
func (r *MemoryRegistry) Create(f upload.File) (string, error) {
	rc, err := f.Open()
	if err != nil {
		return "", fmt.Errorf("preview %s: %w", f.Name, err)
	}
	defer rc.Close()
	data, err := io.ReadAll(rc)
	if err != nil {
		return "", fmt.Errorf("preview %s: %w", f.Name, err)
	}

	url := Scheme + uuid.NewString()
	r.mu.Lock()
	r.entries[url] = entry{name: f.Name, contentType: f.ContentType, data: data}
	r.mu.Unlock()
	return url, nil
}

// Revoke releases url. Unknown URLs are ignored.
func (r *MemoryRegistry) Revoke(url string) {
	r.mu.Lock()
	delete(r.entries, url)
	r.mu.Unlock()
}

// Open returns the previewed file behind url.
func (r *MemoryRegistry) Open(url string) (upload.File, bool) {
	if !strings.HasPrefix(url, Scheme) {
		return upload.File{}, false
	}
	r.mu.Lock()
	e, ok := r.entries[url]
	r.mu.Unlock()
	if !ok {
		return upload.File{}, false
	}
	return upload.FromBytes(e.name, e.contentType, e.data), true
}

// Len reports how many URLs are live.
func (r *MemoryRegistry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.entries)
}
