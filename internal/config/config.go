// Package config handles tether configuration parsing and location resolution.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/adamancini/tether/internal/types"
)

// Type aliases so callers only import config.
type (
	// StreamMode controls sidecar output handling.
	StreamMode = types.StreamMode
	// HandlePolicy controls the sidecar handle after spawn.
	HandlePolicy = types.HandlePolicy
	// SourceKind selects the update source.
	SourceKind = types.SourceKind
)

// EnvConfigPath names the environment variable that points at a config file.
const EnvConfigPath = "TETHER_CONFIG"

// DefaultSidecarName is the bundled sidecar's conventional name.
const DefaultSidecarName = "main"

// Config is the parsed configuration file.
type Config struct {
	Sidecar SidecarConfig `yaml:"sidecar" toml:"sidecar" json:"sidecar"`
	Update  UpdateConfig  `yaml:"update" toml:"update" json:"update"`
	Log     LogConfig     `yaml:"log" toml:"log" json:"log"`
}

// SidecarConfig describes the bundled child executable.
type SidecarConfig struct {
	Name    string       `yaml:"name" toml:"name" json:"name"`
	Dir     string       `yaml:"dir,omitempty" toml:"dir,omitempty" json:"dir,omitempty"` // Defaults to the executable's directory
	Args    []string     `yaml:"args,omitempty" toml:"args,omitempty" json:"args,omitempty"`
	Streams StreamMode   `yaml:"streams" toml:"streams" json:"streams"`
	Policy  HandlePolicy `yaml:"policy" toml:"policy" json:"policy"`
}

// UpdateConfig describes the remote version source and update behavior.
type UpdateConfig struct {
	Enabled  bool         `yaml:"enabled" toml:"enabled" json:"enabled"`
	Source   SourceKind   `yaml:"source" toml:"source" json:"source"`
	URL      string       `yaml:"url,omitempty" toml:"url,omitempty" json:"url,omitempty"` // Manifest URL
	GitHub   GitHubConfig `yaml:"github,omitempty" toml:"github,omitempty" json:"github,omitempty"`
	Binary   string       `yaml:"binary" toml:"binary" json:"binary"` // Asset name prefix, e.g. tether-linux-amd64
	Timeout  string       `yaml:"timeout,omitempty" toml:"timeout,omitempty" json:"timeout,omitempty"`
	AllowDev bool         `yaml:"allow_dev,omitempty" toml:"allow_dev,omitempty" json:"allow_dev,omitempty"`
}

// GitHubConfig identifies a GitHub repository used as release source.
type GitHubConfig struct {
	Owner string `yaml:"owner,omitempty" toml:"owner,omitempty" json:"owner,omitempty"`
	Repo  string `yaml:"repo,omitempty" toml:"repo,omitempty" json:"repo,omitempty"`
	Token string `yaml:"token,omitempty" toml:"token,omitempty" json:"token,omitempty"`
}

// LogConfig controls the host log.
type LogConfig struct {
	Level string `yaml:"level" toml:"level" json:"level"`
	File  string `yaml:"file,omitempty" toml:"file,omitempty" json:"file,omitempty"` // "" or "console" logs to stderr
}

// Default returns the configuration used when no file exists.
func Default() *Config {
	return &Config{
		Sidecar: SidecarConfig{
			Name:    DefaultSidecarName,
			Streams: types.StreamDiscard,
			Policy:  types.PolicyIgnore,
		},
		Update: UpdateConfig{
			Enabled: false,
			Source:  types.SourceManifest,
			Binary:  "tether",
		},
		Log: LogConfig{
			Level: "info",
		},
	}
}

// TimeoutDuration parses the optional update timeout. Zero means no timeout.
func (u UpdateConfig) TimeoutDuration() (time.Duration, error) {
	if u.Timeout == "" {
		return 0, nil
	}
	d, err := time.ParseDuration(u.Timeout)
	if err != nil {
		return 0, fmt.Errorf("invalid timeout %q: %w", u.Timeout, err)
	}
	return d, nil
}

// fileNames lists the accepted config file names in lookup order.
var fileNames = []string{
	"tether.yaml",
	"tether.yml",
	"tether.toml",
	"tether.json",
	".tether.yaml",
	".tether.yml",
	".tether.toml",
	".tether.json",
}

// Find searches for a config file in the standard locations.
// Returns "" with a nil error when no file exists anywhere.
func Find(explicitPath string) (string, error) {
	if explicitPath != "" {
		if _, err := os.Stat(explicitPath); err != nil {
			return "", fmt.Errorf("specified config not found: %s", explicitPath)
		}
		return explicitPath, nil
	}

	if envPath := os.Getenv(EnvConfigPath); envPath != "" {
		if _, err := os.Stat(envPath); err == nil {
			return envPath, nil
		}
	}

	for _, dir := range searchDirs() {
		for _, name := range fileNames {
			path := filepath.Join(dir, name)
			if _, err := os.Stat(path); err == nil {
				return path, nil
			}
		}
	}

	return "", nil
}

// searchDirs returns the directories searched for a config file, in order.
func searchDirs() []string {
	var dirs []string

	// Next to the executable (the bundle)
	if exe, err := os.Executable(); err == nil {
		dirs = append(dirs, filepath.Dir(exe))
	}

	home, err := os.UserHomeDir()
	if err != nil {
		return dirs
	}

	xdgConfig := os.Getenv("XDG_CONFIG_HOME")
	if xdgConfig == "" {
		xdgConfig = filepath.Join(home, ".config")
	}
	dirs = append(dirs, filepath.Join(xdgConfig, "tether"))
	dirs = append(dirs, filepath.Join(home, ".tether"))

	return dirs
}

// Load reads, parses and validates the config at path. Fields absent from
// the file keep their Default values.
func Load(path string) (*Config, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config: %w", err)
	}

	format := detectFormat(path, content)
	if format == FormatUnknown {
		return nil, fmt.Errorf("unable to detect file format for %s", path)
	}

	cfg, err := parse(content, format)
	if err != nil {
		return nil, err
	}

	if err := Validate(cfg); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Resolve finds and loads the config, falling back to Default when no file
// exists. The returned path is "" in that case.
func Resolve(explicitPath string) (*Config, string, error) {
	path, err := Find(explicitPath)
	if err != nil {
		return nil, "", err
	}
	if path == "" {
		return Default(), "", nil
	}

	cfg, err := Load(path)
	if err != nil {
		return nil, path, err
	}
	return cfg, path, nil
}
