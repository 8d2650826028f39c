package repository

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"
)

type User struct {
	ID           int64
	Name         string
	Email        string
	MobileNumber string
	PasswordHash string
	Roles        []string
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

type UserRepository interface {
	Create(ctx context.Context, user *User) (int64, error)
	GetByID(ctx context.Context, id int64) (*User, error)
	GetByMobile(ctx context.Context, mobile string) (*User, error)
	GetByEmail(ctx context.Context, email string) (*User, error)
	List(ctx context.Context) ([]User, error)
	UpdateProfile(ctx context.Context, id int64, name, mobile string) error
	UpdatePassword(ctx context.Context, id int64, newHash string) error
	UpdateRoles(ctx context.Context, id int64, roles []string) error
}

// MemoryUserRepository is a UserRepository backed by maps.
type MemoryUserRepository struct {
	mu     sync.RWMutex
	nextID int64
	users  map[int64]*User
}

func NewMemoryUserRepository() *MemoryUserRepository {
	return &MemoryUserRepository{users: make(map[int64]*User)}
}

func (r *MemoryUserRepository) Create(_ context.Context, user *User) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, existing := range r.users {
		if existing.MobileNumber == user.MobileNumber {
			return 0, ErrMobileExists
		}
		if strings.EqualFold(existing.Email, user.Email) {
			return 0, ErrEmailExists
		}
	}
	r.nextID++
	stored := *user
	stored.ID = r.nextID
	stored.Roles = append([]string(nil), user.Roles...)
	now := time.Now()
	stored.CreatedAt, stored.UpdatedAt = now, now
	r.users[stored.ID] = &stored
	return stored.ID, nil
}

func (r *MemoryUserRepository) GetByID(_ context.Context, id int64) (*User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	user, ok := r.users[id]
	if !ok {
		return nil, ErrUserNotFound
	}
	return copyUser(user), nil
}

func (r *MemoryUserRepository) GetByMobile(_ context.Context, mobile string) (*User, error) {
	return r.find(func(u *User) bool { return u.MobileNumber == mobile })
}

func (r *MemoryUserRepository) GetByEmail(_ context.Context, email string) (*User, error) {
	return r.find(func(u *User) bool { return strings.EqualFold(u.Email, email) })
}

func (r *MemoryUserRepository) List(_ context.Context) ([]User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]User, 0, len(r.users))
	for _, user := range r.users {
		out = append(out, *copyUser(user))
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (r *MemoryUserRepository) UpdateProfile(_ context.Context, id int64, name, mobile string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	user, ok := r.users[id]
	if !ok {
		return ErrUserNotFound
	}
	for _, other := range r.users {
		if other.ID != id && other.MobileNumber == mobile {
			return ErrMobileExists
		}
	}
	user.Name = name
	user.MobileNumber = mobile
	user.UpdatedAt = time.Now()
	return nil
}

func (r *MemoryUserRepository) UpdatePassword(_ context.Context, id int64, newHash string) error {
	return r.update(id, func(u *User) { u.PasswordHash = newHash })
}

func (r *MemoryUserRepository) UpdateRoles(_ context.Context, id int64, roles []string) error {
	return r.update(id, func(u *User) { u.Roles = append([]string(nil), roles...) })
}

func (r *MemoryUserRepository) update(id int64, fn func(*User)) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	user, ok := r.users[id]
	if !ok {
		return ErrUserNotFound
	}
	fn(user)
	user.UpdatedAt = time.Now()
	return nil
}

func (r *MemoryUserRepository) find(match func(*User) bool) (*User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, user := range r.users {
		if match(user) {
			return copyUser(user), nil
		}
	}
	return nil, ErrUserNotFound
}

func copyUser(u *User) *User {
	out := *u
	out.Roles = append([]string(nil), u.Roles...)
	return &out
}
