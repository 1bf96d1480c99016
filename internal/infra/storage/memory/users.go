package memory

import (
	"context"
	"sort"
	"sync"

	domainuser "immo/internal/domain/user"
)

// UserRepository is an in-memory implementation backing tests and the
// no-database demo mode.
type UserRepository struct {
	mu    sync.RWMutex
	items map[domainuser.ID]*domainuser.User
}

func NewUserRepository() *UserRepository {
	return &UserRepository{items: make(map[domainuser.ID]*domainuser.User)}
}

func (r *UserRepository) ByID(ctx context.Context, id domainuser.ID) (*domainuser.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	account, ok := r.items[id]
	if !ok {
		return nil, domainuser.ErrNotFound
	}
	clone := *account
	return &clone, nil
}

func (r *UserRepository) ByEmail(ctx context.Context, email string) (*domainuser.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, account := range r.items {
		if account.Email == email {
			clone := *account
			return &clone, nil
		}
	}
	return nil, domainuser.ErrNotFound
}

func (r *UserRepository) Save(ctx context.Context, account *domainuser.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for id, existing := range r.items {
		if existing.Email == account.Email && id != account.ID {
			return domainuser.ErrEmailAlreadyUsed
		}
	}
	clone := *account
	r.items[account.ID] = &clone
	return nil
}

func (r *UserRepository) List(ctx context.Context) ([]*domainuser.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]*domainuser.User, 0, len(r.items))
	for _, account := range r.items {
		clone := *account
		out = append(out, &clone)
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].CreatedAt.Before(out[j].CreatedAt)
	})
	return out, nil
}
