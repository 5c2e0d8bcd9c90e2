package manager

import (
	"fmt"
	"time"

	"github.com/voguefx/vogue/internal/entity"
	"github.com/voguefx/vogue/internal/store"
)

// AddUser creates a user in the shared store at the projects root.
// User names are unique.
func (m *Manager) AddUser(name, email, password string, roles []string) (*entity.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if existing, _ := m.findUserLocked(name); existing != nil {
		return nil, fmt.Errorf("%w: user %q", ErrExists, name)
	}
	u, err := entity.NewUser(name, email, password, roles)
	if err != nil {
		return nil, err
	}
	if err := validationErr(entity.KindUser, u.Validate()); err != nil {
		return nil, err
	}
	if err := m.users.PutUser(u); err != nil {
		return nil, err
	}
	m.logger.Printf("created user %s", name)
	return u, nil
}

// Authenticate checks a name/password pair and stamps last_login on
// success. Unknown user and wrong password are indistinguishable to the
// caller.
func (m *Manager) Authenticate(name, password string) (*entity.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	u, err := m.findUserLocked(name)
	if err != nil {
		return nil, err
	}
	if u == nil || !u.CheckPassword(password) {
		return nil, ErrAuth
	}
	now := time.Now().UTC()
	u.LastLogin = &now
	if err := m.users.PutUser(u); err != nil {
		return nil, err
	}
	return u, nil
}

// GetUser returns a user by name.
func (m *Manager) GetUser(name string) (*entity.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	u, err := m.findUserLocked(name)
	if err != nil {
		return nil, err
	}
	if u == nil {
		return nil, fmt.Errorf("user %q: %w", name, store.ErrNotFound)
	}
	return u, nil
}

// ListUsers returns all users sorted by name.
func (m *Manager) ListUsers() ([]*entity.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.users.ListUsers()
}

func (m *Manager) findUserLocked(name string) (*entity.User, error) {
	users, err := m.users.ListUsers()
	if err != nil {
		return nil, err
	}
	for _, u := range users {
		if u.Name == name {
			return u, nil
		}
	}
	return nil, nil
}
