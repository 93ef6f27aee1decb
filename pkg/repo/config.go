package repo

import (
	"bytes"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/google/renameio"

	"github.com/odvcencio/twig/pkg/object"
)

// ConfigFile is the name of the repository configuration file inside .git/.
const ConfigFile = "twig.toml"

// Config stores repository-local settings.
type Config struct {
	User UserConfig `toml:"user"`
	Core CoreConfig `toml:"core"`
}

// UserConfig is the identity recorded in new commits.
type UserConfig struct {
	Name  string `toml:"name,omitempty"`
	Email string `toml:"email,omitempty"`
}

// CoreConfig holds storage settings.
type CoreConfig struct {
	// Compression is the zlib level for new objects: -1 for the codec
	// default, 0 for none, 1 (fastest) through 9 (smallest).
	Compression int `toml:"compression"`
}

// DefaultConfig returns the settings used when no config file exists.
func DefaultConfig() *Config {
	return &Config{Core: CoreConfig{Compression: object.DefaultCompression}}
}

func configPath(gitDir string) string {
	return filepath.Join(gitDir, ConfigFile)
}

func (c *Config) validate() error {
	if c.Core.Compression < -1 || c.Core.Compression > 9 {
		return fmt.Errorf("core.compression %d out of range -1..9", c.Core.Compression)
	}
	return nil
}

func readConfigFile(path string) (*Config, error) {
	cfg := DefaultConfig()
	md, err := toml.DecodeFile(path, cfg)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return DefaultConfig(), nil
		}
		return nil, fmt.Errorf("read config: %w", err)
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, len(undecoded))
		for i, k := range undecoded {
			keys[i] = k.String()
		}
		return nil, fmt.Errorf("read config: unknown keys %s", strings.Join(keys, ", "))
	}
	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}
	return cfg, nil
}

// ReadConfig reads .git/twig.toml. Missing config returns DefaultConfig.
func (r *Repo) ReadConfig() (*Config, error) {
	return readConfigFile(configPath(r.GitDir))
}

// WriteConfig atomically writes .git/twig.toml. The store keeps the
// compression level it was opened with until the repository is reopened.
func (r *Repo) WriteConfig(cfg *Config) error {
	if cfg == nil {
		cfg = DefaultConfig()
	}
	if err := cfg.validate(); err != nil {
		return fmt.Errorf("write config: %w", err)
	}
	var buf bytes.Buffer
	if err := toml.NewEncoder(&buf).Encode(cfg); err != nil {
		return fmt.Errorf("write config: encode: %w", err)
	}
	if err := renameio.WriteFile(configPath(r.GitDir), buf.Bytes(), 0o644); err != nil {
		return fmt.Errorf("write config: %w", err)
	}
	return nil
}

// Identity resolves the identity for new commits: the configured [user]
// section, falling back to $USER with an empty email.
func (r *Repo) Identity() (object.Identity, error) {
	cfg, err := r.ReadConfig()
	if err != nil {
		return object.Identity{}, err
	}
	id := object.Identity{
		Name:  strings.TrimSpace(cfg.User.Name),
		Email: strings.TrimSpace(cfg.User.Email),
	}
	if id.Name == "" {
		id.Name = os.Getenv("USER")
		if id.Name == "" {
			id.Name = "unknown"
		}
	}
	if err := validateIdentity(id); err != nil {
		return object.Identity{}, fmt.Errorf("identity: %w", err)
	}
	return id, nil
}

// ErrInvalidIdentity is returned for a name or email that cannot be written
// into a commit header.
var ErrInvalidIdentity = errors.New("invalid identity")

// ParseIdentity parses "Name <email>" as given on a command line.
func ParseIdentity(s string) (object.Identity, error) {
	s = strings.TrimSpace(s)
	lt := strings.IndexByte(s, '<')
	if lt < 0 || !strings.HasSuffix(s, ">") {
		return object.Identity{}, fmt.Errorf("%w %q: want \"Name <email>\"", ErrInvalidIdentity, s)
	}
	id := object.Identity{
		Name:  strings.TrimSpace(s[:lt]),
		Email: strings.TrimSpace(s[lt+1 : len(s)-1]),
	}
	if id.Name == "" {
		return object.Identity{}, fmt.Errorf("%w %q: name is required", ErrInvalidIdentity, s)
	}
	if err := validateIdentity(id); err != nil {
		return object.Identity{}, err
	}
	return id, nil
}

// validateIdentity rejects characters that would end the header line or
// move the email delimiters of an author or committer line.
func validateIdentity(id object.Identity) error {
	if strings.ContainsAny(id.Name, "<>\n") {
		return fmt.Errorf("%w: name %q must not contain '<', '>' or newlines", ErrInvalidIdentity, id.Name)
	}
	if strings.ContainsAny(id.Email, "<>\n") {
		return fmt.Errorf("%w: email %q must not contain '<', '>' or newlines", ErrInvalidIdentity, id.Email)
	}
	return nil
}
