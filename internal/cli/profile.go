package cli

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"

	"drivefin/internal/backend"
)

// Profile is the drivefinctl configuration file.
type Profile struct {
	Storage StorageProfile `toml:"storage"`
	Output  OutputProfile  `toml:"output"`
}

type StorageProfile struct {
	Backend     string `toml:"backend"`
	SQLitePath  string `toml:"sqlite_path"`
	DatabaseURL string `toml:"database_url"`
}

type OutputProfile struct {
	// Format is table or json.
	Format string `toml:"format"`
}

func DefaultProfile() Profile {
	return Profile{
		Storage: StorageProfile{
			Backend:    string(backend.SQLiteBackend),
			SQLitePath: "./data/drivefin.db",
		},
		Output: OutputProfile{Format: "table"},
	}
}

// ProfilePath is $XDG_CONFIG_HOME/drivefin/drivefinctl.toml, or the same
// under ~/.config.
func ProfilePath() string {
	dir := os.Getenv("XDG_CONFIG_HOME")
	if dir == "" {
		home, _ := os.UserHomeDir()
		dir = filepath.Join(home, ".config")
	}
	return filepath.Join(dir, "drivefin", "drivefinctl.toml")
}

// LoadProfile reads path over the defaults. A missing file yields the
// defaults.
func LoadProfile(path string) (Profile, error) {
	p := DefaultProfile()
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return p, nil
		}
		return p, fmt.Errorf("reading profile: %w", err)
	}
	md, err := toml.Decode(string(data), &p)
	if err != nil {
		return p, fmt.Errorf("parsing profile: %w", err)
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		return p, fmt.Errorf("parsing profile: unknown key %s", undecoded[0])
	}
	if p.Output.Format != "table" && p.Output.Format != "json" {
		return p, fmt.Errorf("parsing profile: output format must be table or json, got %q", p.Output.Format)
	}
	return p, nil
}

// SaveProfile writes p to path, creating the directory.
func SaveProfile(path string, p Profile) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("creating profile dir: %w", err)
	}
	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0o600)
	if err != nil {
		return fmt.Errorf("creating profile: %w", err)
	}
	defer f.Close()
	return toml.NewEncoder(f).Encode(p)
}

// BackendConfig turns the storage section into a factory config.
func (p Profile) BackendConfig() (backend.Config, error) {
	cfg := backend.Config{
		Type:         backend.BackendType(p.Storage.Backend),
		SQLiteDBPath: p.Storage.SQLitePath,
		DatabaseURL:  p.Storage.DatabaseURL,
	}
	return cfg, cfg.Validate()
}
