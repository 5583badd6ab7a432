package internal

import (
	"fmt"
	"log/slog"
	"path/filepath"

	validation "github.com/go-ozzo/ozzo-validation/v4"

	"github.com/sanhik/contentos/internal/ai"
)

// Auth modes.
const (
	AuthModeDisabled = "disabled"
	AuthModeJWT      = "jwt"
)

// Config represents the application configuration.
type Config struct {
	App    ApplicationConfig `yaml:"app"`
	Store  StoreConfig       `yaml:"store"`
	SQLite SQLiteConfig      `yaml:"sqlite"`
	Auth   AuthConfig        `yaml:"auth"`
	AI     AIConfig          `yaml:"ai"`
	Ingest IngestConfig      `yaml:"ingest"`
	MCP    MCPConfig         `yaml:"mcp"`
}

// Validate validates the configuration.
func (c *Config) Validate() error {
	if err := c.App.Validate(); err != nil {
		return err
	}
	if err := c.Store.Validate(); err != nil {
		return err
	}
	if err := c.SQLite.Validate(); err != nil {
		return err
	}
	return c.Auth.Validate()
}

// ApplicationConfig holds application-level configuration.
type ApplicationConfig struct {
	LogLevel slog.Level `yaml:"log_level"`
	HTTP     HTTPConfig `yaml:"http"`
}

// Validate validates the application configuration.
func (c *ApplicationConfig) Validate() error {
	return c.HTTP.Validate()
}

// HTTPConfig holds HTTP server configuration.
type HTTPConfig struct {
	Port int `yaml:"port"`
}

// Address returns HTTP server address.
func (c *HTTPConfig) Address() string {
	return fmt.Sprintf(":%d", c.Port)
}

// Validate validates the HTTP configuration.
func (c *HTTPConfig) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.Port, validation.Required, validation.Min(1), validation.Max(65535)),
	)
}

// StoreConfig holds the paths of the content store and its sidecar state
// (users, share links, profiles).
type StoreConfig struct {
	Path     string `yaml:"path"`
	DataPath string `yaml:"data_path"`
}

// Validate validates the store configuration.
func (c *StoreConfig) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.Path, validation.Required),
	)
}

// UsersPath returns the users database path.
func (c *StoreConfig) UsersPath() string {
	return filepath.Join(c.dataDir(), "users.json")
}

// ShareLinksPath returns the share-link database path.
func (c *StoreConfig) ShareLinksPath() string {
	return filepath.Join(c.dataDir(), "share_links.json")
}

// ProfilesDir returns the profile store directory.
func (c *StoreConfig) ProfilesDir() string {
	return filepath.Join(c.dataDir(), "profiles")
}

func (c *StoreConfig) dataDir() string {
	if c.DataPath != "" {
		return c.DataPath
	}
	return "./security_data"
}

// SQLiteConfig holds SQLite catalog configuration.
type SQLiteConfig struct {
	Path string `yaml:"path"`
}

// Validate validates the SQLite configuration.
func (c *SQLiteConfig) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.Path, validation.Required),
	)
}

// AuthConfig holds authentication configuration.
//
// Mode controls how authentication is enforced:
//   - "disabled" (default): every request runs as the local dev identity.
//   - "jwt": password login issuing HS256 bearer tokens; Secret must be set.
type AuthConfig struct {
	Mode          string `yaml:"mode"`
	Secret        string `yaml:"secret"`
	AdminPassword string `yaml:"admin_password"`
}

// Validate validates the auth configuration.
func (c *AuthConfig) Validate() error {
	// Normalise empty mode to "disabled" for backward compatibility.
	if c.Mode == "" {
		c.Mode = AuthModeDisabled
	}
	if err := validation.ValidateStruct(c,
		validation.Field(&c.Mode, validation.Required, validation.In(AuthModeDisabled, AuthModeJWT)),
	); err != nil {
		return err
	}
	if c.Mode == AuthModeJWT && c.Secret == "" {
		return fmt.Errorf("auth: mode is %q but secret is empty", AuthModeJWT)
	}
	return nil
}

// AuthEnabled returns true when authentication is active.
func (c *AuthConfig) AuthEnabled() bool {
	return c.Mode == AuthModeJWT
}

// AIConfig holds text-generation backend configuration. Keys are usually
// supplied via environment expansion in the YAML file.
type AIConfig struct {
	BaseURL string `yaml:"base_url"`
	Model   string `yaml:"model"`

	MasterKey          string `yaml:"master_key"`
	CreationKey        string `yaml:"creation_key"`
	TransformationKey  string `yaml:"transformation_key"`
	CMSKey             string `yaml:"cms_key"`
	PersonalizationKey string `yaml:"personalization_key"`
}

// Keyring assembles the per-task keyring.
func (c *AIConfig) Keyring() ai.Keyring {
	return ai.Keyring{
		Master: c.MasterKey,
		PerTask: map[ai.Task]string{
			ai.TaskCreation:        c.CreationKey,
			ai.TaskTransformation:  c.TransformationKey,
			ai.TaskCMS:             c.CMSKey,
			ai.TaskPersonalization: c.PersonalizationKey,
		},
	}
}

// Enabled reports whether any usable key is configured.
func (c *AIConfig) Enabled() bool {
	k := c.Keyring()
	for _, task := range []ai.Task{ai.TaskCreation, ai.TaskTransformation, ai.TaskCMS, ai.TaskPersonalization} {
		if k.KeyFor(task) != "" {
			return true
		}
	}
	return false
}

// IngestConfig holds the external ingestion service configuration.
type IngestConfig struct {
	BaseURL string `yaml:"base_url"`
}

// MCPConfig holds MCP server configuration.
type MCPConfig struct {
	Identity string `yaml:"identity"`
}

// NewDefaultConfig returns a new Config with sensible default values.
func NewDefaultConfig() *Config {
	return &Config{
		App: ApplicationConfig{
			LogLevel: slog.LevelInfo,
			HTTP: HTTPConfig{
				Port: 8080,
			},
		},
		Store: StoreConfig{
			Path:     "./smart_cms_data",
			DataPath: "./security_data",
		},
		SQLite: SQLiteConfig{
			Path: "./contentos.db",
		},
		Auth: AuthConfig{
			Mode:          AuthModeDisabled,
			AdminPassword: "admin123",
		},
		MCP: MCPConfig{
			Identity: "mcp-agent",
		},
	}
}
