// Package images is the boundary to the external image store. The identity
// core only ever holds references, never image bytes.
package images

import (
	"context"
	"sync"

	"github.com/google/uuid"

	"github.com/tazhibayda/identity-service/internal/domain"
)

type Store interface {
	// Upload stores the given source (a URL or raw content) and returns a
	// reference to it.
	Upload(ctx context.Context, source string) (domain.Picture, error)
	// Delete removes a stored image by its public id and reports whether the
	// deletion succeeded.
	Delete(ctx context.Context, publicID string) bool
}

// Memory keeps uploads in-process. Used in development wiring and tests;
// production deployments plug a CDN-backed implementation in here.
type Memory struct {
	mu      sync.Mutex
	objects map[string]string
}

func NewMemory() *Memory {
	return &Memory{objects: make(map[string]string)}
}

func (m *Memory) Upload(_ context.Context, source string) (domain.Picture, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	id := uuid.NewString()
	m.objects[id] = source
	return domain.Picture{PublicID: id, SecureURL: source}, nil
}

func (m *Memory) Delete(_ context.Context, publicID string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.objects[publicID]; !ok {
		return false
	}
	delete(m.objects, publicID)
	return true
}
