package memstore

import (
	"context"
	"sync"

	"baddelli/internal/domain/entity"
	"baddelli/pkg/errors"
)

type UserRepository struct {
	mu    sync.Mutex
	users map[string]*entity.User
	// Lookups counts GetByID calls.
	Lookups int
}

func NewUserRepository(users ...*entity.User) *UserRepository {
	r := &UserRepository{users: make(map[string]*entity.User)}
	for _, u := range users {
		c := *u
		r.users[u.ID] = &c
	}
	return r
}

func (r *UserRepository) Create(ctx context.Context, user *entity.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	c := *user
	r.users[user.ID] = &c
	return nil
}

func (r *UserRepository) GetByID(ctx context.Context, id string) (*entity.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.Lookups++
	u, ok := r.users[id]
	if !ok {
		return nil, errors.NotFound("User", nil)
	}
	c := *u
	return &c, nil
}

func (r *UserRepository) UpdateDisplayName(ctx context.Context, id, displayName string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.users[id]
	if !ok {
		u = &entity.User{ID: id}
		r.users[id] = u
	}
	u.DisplayName = displayName
	return nil
}
