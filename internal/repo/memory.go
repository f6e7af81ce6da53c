package repo

import (
	"context"
	"sync"

	"go.mongodb.org/mongo-driver/mongo"

	"github.com/tazhibayda/identity-service/internal/domain"
)

// MemoryStore mirrors the Mongo store's contract, including the unique
// email constraint, for tests and local runs without a database.
type MemoryStore struct {
	mu      sync.Mutex
	byEmail map[string]*domain.User
	byExtID map[string]*domain.User
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		byEmail: make(map[string]*domain.User),
		byExtID: make(map[string]*domain.User),
	}
}

func (m *MemoryStore) CreateUser(_ context.Context, u *domain.User) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.byEmail[u.Email]; ok {
		return ErrEmailTaken
	}
	cp := *u
	m.byEmail[cp.Email] = &cp
	m.byExtID[cp.ExternalID] = &cp
	return nil
}

func (m *MemoryStore) FindUserByEmail(_ context.Context, email string) (*domain.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.byEmail[email]
	if !ok {
		return nil, nil
	}
	cp := *u
	return &cp, nil
}

func (m *MemoryStore) FindUserByExternalID(_ context.Context, id string) (*domain.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.byExtID[id]
	if !ok {
		return nil, nil
	}
	cp := *u
	return &cp, nil
}

func (m *MemoryStore) UpdateUser(_ context.Context, externalID string, u *domain.User) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	cur, ok := m.byExtID[externalID]
	if !ok {
		return mongo.ErrNoDocuments
	}
	if cur.Email != u.Email {
		delete(m.byEmail, cur.Email)
	}
	cur.Name = u.Name
	cur.Email = u.Email
	cur.Bio = u.Bio
	cur.PhoneNumber = u.PhoneNumber
	cur.PasswordHash = u.PasswordHash
	cur.PasswordLength = u.PasswordLength
	cur.Picture = u.Picture
	m.byEmail[cur.Email] = cur
	return nil
}

func (m *MemoryStore) AllEmails(_ context.Context) ([]string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	emails := make([]string, 0, len(m.byEmail))
	for e := range m.byEmail {
		emails = append(emails, e)
	}
	return emails, nil
}
