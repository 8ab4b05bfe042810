package auth

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
)

var (
	_ UserStorage  = (*MemoryStorage)(nil)
	_ StateStorage = (*MemoryStorage)(nil)
)

// MemoryStorage is an in-process UserStorage and StateStorage. Returned
// users are copies; mutating them does not touch the store.
type MemoryStorage struct {
	mu      sync.RWMutex
	users   map[uuid.UUID]User
	byEmail map[string]uuid.UUID
	states  map[string]time.Time
	now     func() time.Time
}

// NewMemoryStorage returns an empty store.
func NewMemoryStorage() *MemoryStorage {
	return &MemoryStorage{
		users:   make(map[uuid.UUID]User),
		byEmail: make(map[string]uuid.UUID),
		states:  make(map[string]time.Time),
		now:     time.Now,
	}
}

func (m *MemoryStorage) CreateUser(_ context.Context, user *User) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.byEmail[user.Email]; ok {
		return ErrEmailAlreadyExists
	}
	m.users[user.ID] = *user
	m.byEmail[user.Email] = user.ID
	return nil
}

func (m *MemoryStorage) GetUserByID(_ context.Context, id uuid.UUID) (*User, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	u, ok := m.users[id]
	if !ok {
		return nil, ErrUserNotFound
	}
	return &u, nil
}

func (m *MemoryStorage) GetUserByEmail(_ context.Context, email string) (*User, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	id, ok := m.byEmail[email]
	if !ok {
		return nil, ErrUserNotFound
	}
	u := m.users[id]
	return &u, nil
}

func (m *MemoryStorage) UpdateUser(_ context.Context, id uuid.UUID, upd ProfileUpdate) (*User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	u, ok := m.users[id]
	if !ok {
		return nil, ErrUserNotFound
	}
	upd.Apply(&u)
	m.users[id] = u
	return &u, nil
}

// DeleteUser removes the account. Credentials issued for it stop resolving.
func (m *MemoryStorage) DeleteUser(_ context.Context, id uuid.UUID) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	u, ok := m.users[id]
	if !ok {
		return ErrUserNotFound
	}
	delete(m.users, id)
	delete(m.byEmail, u.Email)
	return nil
}

// Count returns the number of stored accounts.
func (m *MemoryStorage) Count() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.users)
}

func (m *MemoryStorage) StoreState(_ context.Context, state string, expiresAt time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	// Opportunistic sweep keeps abandoned handshakes from piling up.
	now := m.now()
	for s, exp := range m.states {
		if !now.Before(exp) {
			delete(m.states, s)
		}
	}
	m.states[state] = expiresAt
	return nil
}

func (m *MemoryStorage) ConsumeState(_ context.Context, state string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	exp, ok := m.states[state]
	if !ok {
		return ErrStateNotFound
	}
	delete(m.states, state)
	if !m.now().Before(exp) {
		return ErrStateNotFound
	}
	return nil
}
