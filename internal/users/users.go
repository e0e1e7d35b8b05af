// Package users implements registration and API-key authentication
// (spec §3 User, §6 register/auth). Registration is idempotent by
// name: registering an existing name returns the existing user rather
// than erroring or minting a second API key.
package users

import (
	"crypto/rand"
	"encoding/hex"
	"sync"

	"github.com/google/uuid"

	"github.com/abdoElHodaky/exchange-core/internal/errs"
)

type Role string

const (
	RoleUser  Role = "USER"
	RoleAdmin Role = "ADMIN"
)

type User struct {
	ID     string
	Name   string
	Role   Role
	APIKey string
}

// Persister durably records new users.
type Persister interface {
	SaveUser(u User)
}

type noopPersister struct{}

func (noopPersister) SaveUser(User) {}

// Registry holds every registered user, indexed by name and API key.
type Registry struct {
	mu        sync.RWMutex
	byID      map[string]*User
	byName    map[string]*User
	byAPIKey  map[string]*User
	persister Persister
	adminNames map[string]bool
}

// Option configures a Registry at construction.
type Option func(*Registry)

// WithAdminNames marks the given names as ADMIN on registration,
// acting as the bootstrap mechanism for the admin role that spec §6's
// registration endpoint otherwise leaves unaddressed (registration
// always yields USER there).
func WithAdminNames(names ...string) Option {
	return func(r *Registry) {
		for _, n := range names {
			r.adminNames[n] = true
		}
	}
}

func New(persister Persister, opts ...Option) *Registry {
	if persister == nil {
		persister = noopPersister{}
	}
	r := &Registry{
		byID:       make(map[string]*User),
		byName:     make(map[string]*User),
		byAPIKey:   make(map[string]*User),
		persister:  persister,
		adminNames: make(map[string]bool),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Register creates (or idempotently returns) a user by name.
func (r *Registry) Register(name string) (User, error) {
	if name == "" {
		return User{}, errs.New(errs.Validation, "name is required")
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if existing, ok := r.byName[name]; ok {
		return *existing, nil
	}
	role := RoleUser
	if r.adminNames[name] {
		role = RoleAdmin
	}
	key, err := generateAPIKey()
	if err != nil {
		return User{}, errs.Wrap(errs.Internal, "failed to generate api key", err)
	}
	u := &User{ID: uuid.NewString(), Name: name, Role: role, APIKey: key}
	r.byID[u.ID] = u
	r.byName[u.Name] = u
	r.byAPIKey[u.APIKey] = u
	r.persister.SaveUser(*u)
	return *u, nil
}

// ByAPIKey resolves a caller from the Authorization header's token.
func (r *Registry) ByAPIKey(key string) (User, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	u, ok := r.byAPIKey[key]
	if !ok {
		return User{}, false
	}
	return *u, true
}

// ByID looks up a user by id, used by admin user-deletion.
func (r *Registry) ByID(id string) (User, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	u, ok := r.byID[id]
	if !ok {
		return User{}, false
	}
	return *u, true
}

// Delete removes a user record (admin user deletion, spec §6 DELETE
// /admin/user/{id}). Open order cancellation is the caller's
// responsibility, coordinated through the engine before this is
// called.
func (r *Registry) Delete(id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.byID[id]
	if !ok {
		return errs.New(errs.NotFound, "user not found")
	}
	delete(r.byID, id)
	delete(r.byName, u.Name)
	delete(r.byAPIKey, u.APIKey)
	return nil
}

func generateAPIKey() (string, error) {
	buf := make([]byte, 24)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	return hex.EncodeToString(buf), nil
}
