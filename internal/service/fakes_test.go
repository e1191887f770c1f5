package service

import (
	"context"
	"errors"
	"sort"
	"sync"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/spec-kit/user-service/internal/domain"
	"github.com/spec-kit/user-service/internal/repository"
)

// memoryUsers is an in-memory repository.UserRepository.
type memoryUsers struct {
	mu     sync.Mutex
	nextID int64
	rows   map[int64]domain.User
	reads  int
	err    error
}

func newMemoryUsers() *memoryUsers {
	return &memoryUsers{rows: make(map[int64]domain.User)}
}

var _ repository.UserRepository = (*memoryUsers)(nil)

func (m *memoryUsers) FindByUsername(_ context.Context, username string) (*domain.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return nil, m.err
	}
	for _, u := range m.rows {
		if u.Username == username {
			u := u
			return &u, nil
		}
	}
	return nil, pgx.ErrNoRows
}

func (m *memoryUsers) GetByID(_ context.Context, id int64) (*domain.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.reads++
	if m.err != nil {
		return nil, m.err
	}
	u, ok := m.rows[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	return &u, nil
}

func (m *memoryUsers) taken(username string, except int64) bool {
	for id, u := range m.rows {
		if id != except && u.Username == username {
			return true
		}
	}
	return false
}

func (m *memoryUsers) Insert(_ context.Context, user *domain.User) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return m.err
	}
	if m.taken(user.Username, 0) {
		return repository.ErrUsernameTaken
	}
	m.nextID++
	now := time.Now().UTC()
	user.ID, user.CreatedAt, user.UpdatedAt = m.nextID, now, now
	m.rows[user.ID] = *user
	return nil
}

func (m *memoryUsers) UpdateByID(_ context.Context, id int64, user *domain.User) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return m.err
	}
	existing, ok := m.rows[id]
	if !ok {
		return pgx.ErrNoRows
	}
	if m.taken(user.Username, id) {
		return repository.ErrUsernameTaken
	}
	user.ID, user.CreatedAt, user.UpdatedAt = id, existing.CreatedAt, time.Now().UTC()
	m.rows[id] = *user
	return nil
}

func (m *memoryUsers) DeleteByID(_ context.Context, id int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return m.err
	}
	if _, ok := m.rows[id]; !ok {
		return pgx.ErrNoRows
	}
	delete(m.rows, id)
	return nil
}

func (m *memoryUsers) ListAll(_ context.Context) ([]domain.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return nil, m.err
	}
	out := make([]domain.User, 0, len(m.rows))
	for _, u := range m.rows {
		out = append(out, u)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID > out[j].ID })
	return out, nil
}

// stubDeriver produces a predictable credential.
type stubDeriver struct {
	err error
}

func (s stubDeriver) Derive(plaintext string) (domain.Credential, error) {
	if s.err != nil {
		return domain.Credential{}, s.err
	}
	return domain.Credential{Hash: "hash:" + plaintext, Salt: "salt"}, nil
}

var errStorage = errors.New("storage offline")
