package auth

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/sanhik/contentos/internal/apperr"
)

// User is a local account. Role is an application-level role (creator or
// admin), distinct from per-project collaborator roles.
type User struct {
	Username string `json:"username"`
	Email    string `json:"email,omitempty"`
	FullName string `json:"full_name,omitempty"`
	Hash     string `json:"hashed_password"`
	Disabled bool   `json:"disabled"`
	Role     string `json:"role"`
}

const (
	RoleCreator = "creator"
	RoleAdmin   = "admin"
)

// Store is a JSON-file user database. All access goes through the mutex;
// the file is rewritten whole on every mutation.
type Store struct {
	path string
	mu   sync.Mutex
}

// NewStore opens (or initializes) a user store at path. A fresh store is
// seeded with a default admin account so a new deployment is reachable.
func NewStore(path, defaultAdminPassword string) (*Store, error) {
	s := &Store{path: path}

	if _, err := os.Stat(path); err == nil {
		return s, nil
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, err
	}

	hash, err := HashPassword(defaultAdminPassword)
	if err != nil {
		return nil, err
	}
	seed := map[string]User{
		"admin": {
			Username: "admin",
			Email:    "admin@contentos.local",
			FullName: "System Admin",
			Hash:     hash,
			Role:     RoleAdmin,
		},
	}
	if err := s.write(seed); err != nil {
		return nil, err
	}
	return s, nil
}

// Get returns the user or apperr.ErrNotFound.
func (s *Store) Get(username string) (*User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	users, err := s.read()
	if err != nil {
		return nil, err
	}
	u, ok := users[username]
	if !ok {
		return nil, fmt.Errorf("user %q: %w", username, apperr.ErrNotFound)
	}
	return &u, nil
}

// Create registers a new user with a hashed password.
func (s *Store) Create(username, password, email, fullName string) (*User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	users, err := s.read()
	if err != nil {
		return nil, err
	}
	if _, ok := users[username]; ok {
		return nil, fmt.Errorf("user %q: %w", username, apperr.ErrAlreadyExists)
	}

	hash, err := HashPassword(password)
	if err != nil {
		return nil, err
	}
	u := User{
		Username: username,
		Email:    email,
		FullName: fullName,
		Hash:     hash,
		Role:     RoleCreator,
	}
	users[username] = u
	if err := s.write(users); err != nil {
		return nil, err
	}
	return &u, nil
}

// Authenticate checks credentials and returns the user. Wrong password,
// unknown user, and disabled accounts all map to ErrInvalidCredentials so
// callers cannot probe which usernames exist.
func (s *Store) Authenticate(username, password string) (*User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	users, err := s.read()
	if err != nil {
		return nil, err
	}
	u, ok := users[username]
	if !ok || !VerifyPassword(password, u.Hash) || u.Disabled {
		return nil, apperr.ErrInvalidCredentials
	}
	return &u, nil
}

func (s *Store) read() (map[string]User, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		return nil, fmt.Errorf("auth: read users: %w", err)
	}
	users := make(map[string]User)
	if err := json.Unmarshal(data, &users); err != nil {
		return nil, fmt.Errorf("auth: parse users: %w", err)
	}
	return users, nil
}

func (s *Store) write(users map[string]User) error {
	data, err := json.MarshalIndent(users, "", "  ")
	if err != nil {
		return err
	}
	tmp, err := os.CreateTemp(filepath.Dir(s.path), ".users-tmp-*")
	if err != nil {
		return err
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	return os.Rename(tmp.Name(), s.path)
}
