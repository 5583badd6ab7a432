package profile

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
)

// Store persists profiles as one JSON file per user.
type Store struct {
	dir string
	mu  sync.Mutex
}

// NewStore opens a profile store rooted at dir.
func NewStore(dir string) (*Store, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, err
	}
	return &Store{dir: dir}, nil
}

// Get loads a user's profile, returning a fresh one if none exists yet.
func (s *Store) Get(username string) (Profile, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	data, err := os.ReadFile(s.path(username))
	if err != nil {
		if os.IsNotExist(err) {
			return New(username), nil
		}
		return Profile{}, fmt.Errorf("profile: read: %w", err)
	}
	var p Profile
	if err := json.Unmarshal(data, &p); err != nil {
		// Corrupt profile data is not worth failing a request over.
		return New(username), nil
	}
	if p.ToneCounts == nil {
		p.ToneCounts = map[string]int{}
	}
	if p.LengthCounts == nil {
		p.LengthCounts = map[string]int{}
	}
	return p, nil
}

// Put persists a profile.
func (s *Store) Put(p Profile) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	data, err := json.MarshalIndent(p, "", "  ")
	if err != nil {
		return err
	}
	path := s.path(p.Username)
	tmp, err := os.CreateTemp(s.dir, ".profile-tmp-*")
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
	return os.Rename(tmp.Name(), path)
}

// Apply loads, updates and persists a profile in one step.
func (s *Store) Apply(username string, sig Signal) (Profile, error) {
	p, err := s.Get(username)
	if err != nil {
		return Profile{}, err
	}
	p = UpdatePreference(p, sig)
	if err := s.Put(p); err != nil {
		return Profile{}, err
	}
	return p, nil
}

func (s *Store) path(username string) string {
	// Usernames come from the auth store, but sanitize anyway.
	safe := strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '-', r == '_':
			return r
		}
		return '_'
	}, username)
	return filepath.Join(s.dir, safe+".json")
}
