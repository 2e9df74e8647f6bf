package users

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/docentes-portal/backend/internal/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// MemoryRepository is an in-memory Directory used by unit tests and as a
// fallback when MongoDB is not configured. It enforces the same sparse
// uniqueness on cedula and username as the Mongo indexes.
type MemoryRepository struct {
	mu    sync.RWMutex
	store map[string]*models.User
}

func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{store: make(map[string]*models.User)}
}

// copies are handed out so callers can't mutate stored records
func clone(u *models.User) *models.User {
	c := *u
	return &c
}

func (m *MemoryRepository) find(match func(*models.User) bool) *models.User {
	for _, u := range m.store {
		if match(u) {
			return clone(u)
		}
	}
	return nil
}

func (m *MemoryRepository) FindByIdentifier(ctx context.Context, cedula string) (*models.User, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.find(func(u *models.User) bool { return u.Cedula != "" && u.Cedula == cedula }), nil
}

func (m *MemoryRepository) FindActiveByUsername(ctx context.Context, username string) (*models.User, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.find(func(u *models.User) bool {
		return u.Username != "" && u.Username == username && u.Activo.Strict()
	}), nil
}

func (m *MemoryRepository) FindByID(ctx context.Context, id string) (*models.User, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if u, ok := m.store[id]; ok {
		return clone(u), nil
	}
	return nil, nil
}

func (m *MemoryRepository) Insert(ctx context.Context, u *models.User) (*models.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.store[u.ID]; ok && u.ID != "" {
		return nil, fmt.Errorf("%w: id %q", ErrDuplicate, u.ID)
	}
	for _, existing := range m.store {
		if u.Cedula != "" && existing.Cedula == u.Cedula {
			return nil, fmt.Errorf("%w: cedula %q", ErrDuplicate, u.Cedula)
		}
		if u.Username != "" && existing.Username == u.Username {
			return nil, fmt.Errorf("%w: username %q", ErrDuplicate, u.Username)
		}
	}
	now := time.Now().UTC()
	if u.CreatedAt.IsZero() {
		u.CreatedAt = now
	}
	u.UpdatedAt = now
	if u.ID == "" {
		u.ID = primitive.NewObjectID().Hex()
	}
	m.store[u.ID] = clone(u)
	return clone(u), nil
}

func (m *MemoryRepository) UpdateByID(ctx context.Context, id string, up models.UserUpdate) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.store[id]
	if !ok {
		return fmt.Errorf("update user %s: %w", id, ErrNotFound)
	}
	up.Apply(u)
	u.UpdatedAt = time.Now().UTC()
	return nil
}

// FindAll returns records ordered by creation time.
func (m *MemoryRepository) FindAll(ctx context.Context) ([]*models.User, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]*models.User, 0, len(m.store))
	for _, u := range m.store {
		out = append(out, clone(u))
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out, nil
}
