package repository

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/spec-kit/user-service/internal/domain"
)

// memoryUserRepository keeps users in process. It backs the service when no
// database is configured and mirrors the Postgres error contract.
type memoryUserRepository struct {
	mu     sync.RWMutex
	nextID int64
	rows   map[int64]domain.User
	now    func() time.Time
}

// NewMemoryUserRepository returns an empty in-process store.
func NewMemoryUserRepository() UserRepository {
	return &memoryUserRepository{
		rows: make(map[int64]domain.User),
		now:  func() time.Time { return time.Now().UTC() },
	}
}

func (r *memoryUserRepository) FindByUsername(_ context.Context, username string) (*domain.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, u := range r.rows {
		if u.Username == username {
			found := u
			return &found, nil
		}
	}
	return nil, pgx.ErrNoRows
}

func (r *memoryUserRepository) GetByID(_ context.Context, id int64) (*domain.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	u, ok := r.rows[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	return &u, nil
}

func (r *memoryUserRepository) Insert(_ context.Context, user *domain.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.usernameTaken(user.Username, 0) {
		return ErrUsernameTaken
	}
	r.nextID++
	now := r.now()
	user.ID, user.CreatedAt, user.UpdatedAt = r.nextID, now, now
	r.rows[user.ID] = *user
	return nil
}

func (r *memoryUserRepository) UpdateByID(_ context.Context, id int64, user *domain.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	existing, ok := r.rows[id]
	if !ok {
		return pgx.ErrNoRows
	}
	if r.usernameTaken(user.Username, id) {
		return ErrUsernameTaken
	}
	user.ID, user.CreatedAt, user.UpdatedAt = id, existing.CreatedAt, r.now()
	r.rows[id] = *user
	return nil
}

func (r *memoryUserRepository) DeleteByID(_ context.Context, id int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.rows[id]; !ok {
		return pgx.ErrNoRows
	}
	delete(r.rows, id)
	return nil
}

func (r *memoryUserRepository) ListAll(_ context.Context) ([]domain.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	users := make([]domain.User, 0, len(r.rows))
	for _, u := range r.rows {
		users = append(users, u)
	}
	sort.Slice(users, func(i, j int) bool { return users[i].ID > users[j].ID })
	return users, nil
}

func (r *memoryUserRepository) usernameTaken(username string, except int64) bool {
	for id, u := range r.rows {
		if id != except && u.Username == username {
			return true
		}
	}
	return false
}
