// Package users keeps the in-memory account registry and the per-city lookup
// statistics derived from it.
package users

import (
	"fmt"
	"sort"
	"strings"
	"sync"
)

// NormalizeNickname returns the registry key for a nickname: trimmed and
// lowercased. Every lookup and insert goes through it.
func NormalizeNickname(nickname string) string {
	return strings.ToLower(strings.TrimSpace(nickname))
}

// Store is a concurrency-safe in-memory registry of users. It is built once
// at startup and shared by every request handler.
type Store struct {
	mu sync.RWMutex

	// key: normalized nickname
	users map[string]*User
	// registration order of keys; aggregation iterates in this order
	order []string

	hasher Hasher
}

// NewStore creates an empty Store. A nil hasher selects SHA256Hasher.
func NewStore(hasher Hasher) *Store {
	if hasher == nil {
		hasher = SHA256Hasher{}
	}
	return &Store{
		users:  make(map[string]*User),
		hasher: hasher,
	}
}

// Hasher returns the hasher new accounts are stored with.
func (s *Store) Hasher() Hasher { return s.hasher }

// EnsureAdmin registers an admin account unless one with the same nickname
// already exists, in which case the existing user is returned untouched.
func (s *Store) EnsureAdmin(nickname, homeCity, password string) *User {
	key := NormalizeNickname(nickname)

	s.mu.Lock()
	defer s.mu.Unlock()

	if u, ok := s.users[key]; ok {
		return u
	}

	admin := NewUser(strings.TrimSpace(nickname), strings.TrimSpace(homeCity), password, RoleAdmin, s.hasher)
	s.insert(key, admin)
	return admin
}

// AddUser validates the input and registers a new user.
func (s *Store) AddUser(nickname, homeCity, password string, role Role) (*User, error) {
	nickname = strings.TrimSpace(nickname)
	homeCity = strings.TrimSpace(homeCity)

	switch {
	case nickname == "":
		return nil, fmt.Errorf("%w: nickname is required", ErrValidation)
	case homeCity == "":
		return nil, fmt.Errorf("%w: home city is required", ErrValidation)
	}
	if err := ValidatePassword(s.hasher, password); err != nil {
		return nil, err
	}

	key := NormalizeNickname(nickname)

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.users[key]; ok {
		return nil, fmt.Errorf("%w: %s", ErrDuplicateNickname, nickname)
	}

	u := NewUser(nickname, homeCity, password, role, s.hasher)
	s.insert(key, u)
	return u, nil
}

// GetUser looks a user up by nickname, ignoring case and surrounding spaces.
func (s *Store) GetUser(nickname string) (*User, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	u, ok := s.users[NormalizeNickname(nickname)]
	return u, ok
}

// ListUsers returns all nicknames sorted ascending.
func (s *Store) ListUsers() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()

	names := make([]string, 0, len(s.users))
	for _, u := range s.users {
		names = append(names, u.Nickname())
	}
	sort.Strings(names)
	return names
}

// DeletableUsers returns the sorted nicknames an admin may pick for deletion,
// which is everyone except the actor.
func (s *Store) DeletableUsers(actor *User) []string {
	self := NormalizeNickname(actor.Nickname())

	names := s.ListUsers()
	out := names[:0]
	for _, n := range names {
		if NormalizeNickname(n) != self {
			out = append(out, n)
		}
	}
	return out
}

// Len returns the number of registered users.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.users)
}

// Authenticate returns the user when the password matches.
func (s *Store) Authenticate(nickname, password string) (*User, error) {
	u, ok := s.GetUser(nickname)
	if !ok {
		return nil, ErrUserNotFound
	}
	if !u.CheckPassword(password) {
		return nil, ErrInvalidPassword
	}
	return u, nil
}

// DeleteUser removes nickname from the registry. Only admins may delete, and
// an admin deleting their own account is not refused here.
func (s *Store) DeleteUser(nickname string, actor *User) error {
	if actor == nil || !actor.IsAdmin() {
		return ErrAccessDenied
	}

	key := NormalizeNickname(nickname)

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.users[key]; !ok {
		return ErrUserNotFound
	}
	delete(s.users, key)
	for i, k := range s.order {
		if k == key {
			s.order = append(s.order[:i], s.order[i+1:]...)
			break
		}
	}
	return nil
}

// insert must be called with s.mu held.
func (s *Store) insert(key string, u *User) {
	s.users[key] = u
	s.order = append(s.order, key)
}

// snapshot returns the users in registration order.
func (s *Store) snapshot() []*User {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]*User, 0, len(s.order))
	for _, k := range s.order {
		out = append(out, s.users[k])
	}
	return out
}
