package users

import (
	"context"
	"sort"
	"sync"

	"github.com/dmitrijs2005/gophauth/internal/common"
	"github.com/dmitrijs2005/gophauth/internal/server/models"
	"github.com/samber/oops"
)

// MemoryRepository keeps users in process memory. Stored and returned
// values are copies, so callers cannot mutate the store.
type MemoryRepository struct {
	mu      sync.RWMutex
	byID    map[string]*models.User
	byEmail map[string]string
}

func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{
		byID:    make(map[string]*models.User),
		byEmail: make(map[string]string),
	}
}

func (r *MemoryRepository) Insert(_ context.Context, user *models.User) (*models.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.byEmail[user.Email]; ok {
		return nil, oops.Code("USER_CONFLICT").
			With("email", user.Email).
			Wrap(common.ErrConflict)
	}
	if _, ok := r.byID[user.ID]; ok {
		return nil, oops.Code("USER_CONFLICT").
			With("id", user.ID).
			Wrap(common.ErrConflict)
	}

	stored := user.Clone()
	stored.Roles = nonNilRoles(stored.Roles)
	r.byID[stored.ID] = stored
	r.byEmail[stored.Email] = stored.ID

	return stored.Clone(), nil
}

func (r *MemoryRepository) FindByEmail(_ context.Context, email string) (*models.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	id, ok := r.byEmail[email]
	if !ok {
		return nil, oops.Code("USER_NOT_FOUND").
			With("email", email).
			Wrap(common.ErrNotFound)
	}
	return r.byID[id].Clone(), nil
}

func (r *MemoryRepository) FindByID(_ context.Context, id string) (*models.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	u, ok := r.byID[id]
	if !ok {
		return nil, oops.Code("USER_NOT_FOUND").
			With("id", id).
			Wrap(common.ErrNotFound)
	}
	return u.Clone(), nil
}

func (r *MemoryRepository) List(_ context.Context) ([]*models.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	list := make([]*models.User, 0, len(r.byID))
	for _, u := range r.byID {
		list = append(list, u.Clone())
	}
	sort.Slice(list, func(i, j int) bool {
		if list[i].CreatedAt.Equal(list[j].CreatedAt) {
			return list[i].ID < list[j].ID
		}
		return list[i].CreatedAt.Before(list[j].CreatedAt)
	})
	return list, nil
}
