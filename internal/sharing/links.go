// Package sharing manages shareable project links. A link grants its
// holder a default collaborator role on one project until revoked.
package sharing

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/sanhik/contentos/internal/apperr"
	"github.com/sanhik/contentos/internal/models"
)

// tokenLen is the hex length of a share token.
const tokenLen = 16

// Link is one share grant. Revoked links stay in the database with
// Active=false so a revoked token can never be reissued by accident.
type Link struct {
	Token       string      `json:"-"`
	Folder      string      `json:"folder"`
	ProjectID   string      `json:"project_id"`
	CreatedBy   string      `json:"created_by"`
	DefaultRole models.Role `json:"default_role"`
	CreatedAt   time.Time   `json:"created_at"`
	Active      bool        `json:"active"`
}

// Store is a JSON-file share-link database.
type Store struct {
	path  string
	clock func() time.Time
	mu    sync.Mutex
}

// NewStore opens (or initializes) a link store at path.
func NewStore(path string) (*Store, error) {
	s := &Store{path: path, clock: time.Now}
	if _, err := os.Stat(path); err == nil {
		return s, nil
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, err
	}
	if err := s.write(map[string]Link{}); err != nil {
		return nil, err
	}
	return s, nil
}

// Generate creates a share link for a project and returns its token.
func (s *Store) Generate(folder, projectID, createdBy string, role models.Role) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	links, err := s.read()
	if err != nil {
		return "", err
	}

	now := s.clock()
	seed := fmt.Sprintf("%s:%s:%s:%s", folder, projectID, createdBy, now.Format(time.RFC3339Nano))
	sum := sha256.Sum256([]byte(seed))
	token := hex.EncodeToString(sum[:])[:tokenLen]

	links[token] = Link{
		Folder:      folder,
		ProjectID:   projectID,
		CreatedBy:   createdBy,
		DefaultRole: models.NormalizeRole(string(role)),
		CreatedAt:   now,
		Active:      true,
	}
	if err := s.write(links); err != nil {
		return "", err
	}
	return token, nil
}

// Validate resolves a token to its link. Unknown and revoked tokens both
// return ErrNotFound.
func (s *Store) Validate(token string) (*Link, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	links, err := s.read()
	if err != nil {
		return nil, err
	}
	l, ok := links[token]
	if !ok || !l.Active {
		return nil, fmt.Errorf("share link: %w", apperr.ErrNotFound)
	}
	l.Token = token
	return &l, nil
}

// Revoke deactivates a token. Revoking an unknown token is an error;
// revoking an already-inactive one is not.
func (s *Store) Revoke(token string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	links, err := s.read()
	if err != nil {
		return err
	}
	l, ok := links[token]
	if !ok {
		return fmt.Errorf("share link: %w", apperr.ErrNotFound)
	}
	l.Active = false
	links[token] = l
	return s.write(links)
}

// ProjectLinks returns all active links for a project.
func (s *Store) ProjectLinks(folder, projectID string) ([]Link, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	links, err := s.read()
	if err != nil {
		return nil, err
	}
	var out []Link
	for token, l := range links {
		if l.Active && l.Folder == folder && l.ProjectID == projectID {
			l.Token = token
			out = append(out, l)
		}
	}
	return out, nil
}

func (s *Store) read() (map[string]Link, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		return nil, fmt.Errorf("sharing: read links: %w", err)
	}
	links := make(map[string]Link)
	if err := json.Unmarshal(data, &links); err != nil {
		return nil, fmt.Errorf("sharing: parse links: %w", err)
	}
	return links, nil
}

func (s *Store) write(links map[string]Link) error {
	data, err := json.MarshalIndent(links, "", "  ")
	if err != nil {
		return err
	}
	tmp, err := os.CreateTemp(filepath.Dir(s.path), ".links-tmp-*")
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
