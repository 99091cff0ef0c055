// Package memory provides in-memory implementations of the entity
// repository contracts. They back unit tests and local development;
// the behavior mirrors the production drivers, including absent-read
// and not-found conventions.
package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"blog-backend/application/ports"
	"blog-backend/domain"
	apperrors "blog-backend/pkg/errors"
)

// UserRepository is an in-memory ports.UserRepository.
type UserRepository struct {
	mu    sync.RWMutex
	users map[string]*domain.User
}

// NewUserRepository creates an empty in-memory user repository.
func NewUserRepository() *UserRepository {
	return &UserRepository{users: make(map[string]*domain.User)}
}

func cloneUser(u *domain.User) *domain.User {
	c := *u
	return &c
}

// Create stores the user, rejecting duplicate ids and emails.
func (r *UserRepository) Create(ctx context.Context, draft domain.UserDraft) (*domain.User, error) {
	if err := draft.Validate(); err != nil {
		return nil, err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.users[draft.ID]; exists {
		return nil, apperrors.NewConflictError("user already exists")
	}

	now := time.Now().UTC()
	user := &domain.User{
		ID:        draft.ID,
		Email:     draft.Email,
		Name:      draft.Name,
		Role:      draft.Role,
		IsActive:  true,
		Bio:       draft.Bio,
		AvatarURL: draft.AvatarURL,
		CreatedAt: now,
		UpdatedAt: now,
	}
	r.users[user.ID] = user
	return cloneUser(user), nil
}

// FindByID returns the user or (nil, nil) when absent.
func (r *UserRepository) FindByID(ctx context.Context, id string) (*domain.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	user, ok := r.users[id]
	if !ok {
		return nil, nil
	}
	return cloneUser(user), nil
}

// FindByEmail returns the user or (nil, nil) when absent.
func (r *UserRepository) FindByEmail(ctx context.Context, email string) (*domain.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, user := range r.users {
		if user.Email == email {
			return cloneUser(user), nil
		}
	}
	return nil, nil
}

// List returns one page of users, newest first.
func (r *UserRepository) List(ctx context.Context, opts ports.ListOptions) (*ports.Page[domain.User], error) {
	opts.Normalize()

	r.mu.RLock()
	defer r.mu.RUnlock()

	users := make([]*domain.User, 0, len(r.users))
	for _, user := range r.users {
		users = append(users, cloneUser(user))
	}
	sort.Slice(users, func(a, b int) bool {
		return users[a].CreatedAt.After(users[b].CreatedAt)
	})
	return pageOf(users, opts), nil
}

// Update patches the stored user.
func (r *UserRepository) Update(ctx context.Context, id string, patch domain.UserPatch) (*domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	user, ok := r.users[id]
	if !ok {
		return nil, apperrors.NewNotFoundError("user")
	}

	updated := cloneUser(user)
	if err := patch.Apply(updated); err != nil {
		return nil, err
	}
	updated.UpdatedAt = time.Now().UTC()
	r.users[id] = updated
	return cloneUser(updated), nil
}

// Delete removes the user, failing when the id is unknown.
func (r *UserRepository) Delete(ctx context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.users[id]; !ok {
		return apperrors.NewNotFoundError("user")
	}
	delete(r.users, id)
	return nil
}

// pageOf slices an already-ordered full result into the requested
// page.
func pageOf[T any](items []*T, opts ports.ListOptions) *ports.Page[T] {
	total := len(items)
	start := opts.Offset
	if start > total {
		start = total
	}
	end := start + opts.Limit
	if end > total {
		end = total
	}
	return &ports.Page[T]{Items: items[start:end], Total: total}
}
