package config

import (
	"os"
	"testing"
)

func TestDetectFormat(t *testing.T) {
	tests := []struct {
		name     string
		path     string
		content  string
		expected Format
	}{
		{"yaml extension", "tether.yaml", "", FormatYAML},
		{"yml extension", "tether.yml", "", FormatYAML},
		{"toml extension", "tether.toml", "", FormatTOML},
		{"json extension", "tether.json", "", FormatJSON},
		{"json content", "tether", `{"sidecar": {}}`, FormatJSON},
		{"yaml content", "tether", "sidecar:\n  name: main", FormatYAML},
		{"toml content", "tether", "[sidecar]\nname = \"main\"", FormatTOML},
		{"toml after comment", "tether", "# comment\nname = \"x\"", FormatTOML},
		{"empty content", "tether", "", FormatUnknown},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := detectFormat(tt.path, []byte(tt.content))
			if got != tt.expected {
				t.Errorf("detectFormat() = %v, want %v", got, tt.expected)
			}
		})
	}
}

func TestExpandEnvVars(t *testing.T) {
	t.Setenv("TETHER_TEST_VAR", "test_value")
	t.Setenv("TETHER_EMPTY_VAR", "")

	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{"simple var", "${TETHER_TEST_VAR}", "test_value"},
		{"var with default", "${TETHER_MISSING_VAR:-default_value}", "default_value"},
		{"existing var ignores default", "${TETHER_TEST_VAR:-default_value}", "test_value"},
		{"empty var uses default", "${TETHER_EMPTY_VAR:-default_value}", "default_value"},
		{"no var", "plain text", "plain text"},
		{"mixed content", "prefix ${TETHER_TEST_VAR} suffix", "prefix test_value suffix"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := string(expandEnvVars([]byte(tt.input)))
			if got != tt.expected {
				t.Errorf("expandEnvVars() = %q, want %q", got, tt.expected)
			}
		})
	}
}

func TestParseYAML(t *testing.T) {
	content := `
sidecar:
  name: engine
  args: ["--port", "8080"]
  streams: log
  policy: reap
update:
  enabled: true
  source: manifest
  url: https://updates.example.com/latest.json
  timeout: 5m
log:
  level: debug
`

	cfg, err := parse([]byte(content), FormatYAML)
	if err != nil {
		t.Fatalf("parse() error = %v", err)
	}

	if cfg.Sidecar.Name != "engine" {
		t.Errorf("Sidecar.Name = %s, want engine", cfg.Sidecar.Name)
	}
	if len(cfg.Sidecar.Args) != 2 || cfg.Sidecar.Args[1] != "8080" {
		t.Errorf("Sidecar.Args = %v, want [--port 8080]", cfg.Sidecar.Args)
	}
	if cfg.Sidecar.Streams != "log" {
		t.Errorf("Sidecar.Streams = %s, want log", cfg.Sidecar.Streams)
	}
	if cfg.Sidecar.Policy != "reap" {
		t.Errorf("Sidecar.Policy = %s, want reap", cfg.Sidecar.Policy)
	}
	if !cfg.Update.Enabled {
		t.Error("Update.Enabled should be true")
	}
	if cfg.Update.URL != "https://updates.example.com/latest.json" {
		t.Errorf("Update.URL = %s", cfg.Update.URL)
	}
	// Not in the file, keeps default
	if cfg.Update.Binary != "tether" {
		t.Errorf("Update.Binary = %s, want default tether", cfg.Update.Binary)
	}
	if cfg.Log.Level != "debug" {
		t.Errorf("Log.Level = %s, want debug", cfg.Log.Level)
	}
}

func TestParseTOML(t *testing.T) {
	content := `
[sidecar]
name = "engine"
policy = "monitor"

[update]
enabled = true
source = "github"
binary = "tether"

[update.github]
owner = "adamancini"
repo = "tether"
`

	cfg, err := parse([]byte(content), FormatTOML)
	if err != nil {
		t.Fatalf("parse() error = %v", err)
	}

	if cfg.Sidecar.Name != "engine" {
		t.Errorf("Sidecar.Name = %s, want engine", cfg.Sidecar.Name)
	}
	if cfg.Sidecar.Policy != "monitor" {
		t.Errorf("Sidecar.Policy = %s, want monitor", cfg.Sidecar.Policy)
	}
	// Omitted streams falls back to discard
	if cfg.Sidecar.Streams != "discard" {
		t.Errorf("Sidecar.Streams = %s, want discard", cfg.Sidecar.Streams)
	}
	if cfg.Update.Source != "github" {
		t.Errorf("Update.Source = %s, want github", cfg.Update.Source)
	}
	if cfg.Update.GitHub.Owner != "adamancini" || cfg.Update.GitHub.Repo != "tether" {
		t.Errorf("Update.GitHub = %+v", cfg.Update.GitHub)
	}
}

func TestParseJSON(t *testing.T) {
	content := `{
  "sidecar": {"name": "worker", "streams": "inherit"},
  "update": {"enabled": false}
}`

	cfg, err := parse([]byte(content), FormatJSON)
	if err != nil {
		t.Fatalf("parse() error = %v", err)
	}

	if cfg.Sidecar.Name != "worker" {
		t.Errorf("Sidecar.Name = %s, want worker", cfg.Sidecar.Name)
	}
	if cfg.Sidecar.Streams != "inherit" {
		t.Errorf("Sidecar.Streams = %s, want inherit", cfg.Sidecar.Streams)
	}
	if cfg.Sidecar.Policy != "ignore" {
		t.Errorf("Sidecar.Policy = %s, want ignore", cfg.Sidecar.Policy)
	}
	if cfg.Update.Enabled {
		t.Error("Update.Enabled should be false")
	}
}

func TestParseEmptySidecarName(t *testing.T) {
	cfg, err := parse([]byte("sidecar:\n  name: \"\"\n"), FormatYAML)
	if err != nil {
		t.Fatalf("parse() error = %v", err)
	}
	if cfg.Sidecar.Name != DefaultSidecarName {
		t.Errorf("Sidecar.Name = %q, want %q", cfg.Sidecar.Name, DefaultSidecarName)
	}
}

func TestParseEnvVarExpansion(t *testing.T) {
	t.Setenv("TETHER_TEST_TOKEN", "ghp_secret")

	content := `
update:
  github:
    token: ${TETHER_TEST_TOKEN}
  url: ${TETHER_TEST_URL:-https://fallback.example.com/v.json}
`

	cfg, err := parse([]byte(content), FormatYAML)
	if err != nil {
		t.Fatalf("parse() error = %v", err)
	}

	if cfg.Update.GitHub.Token != "ghp_secret" {
		t.Errorf("Token = %s, want ghp_secret", cfg.Update.GitHub.Token)
	}
	if cfg.Update.URL != "https://fallback.example.com/v.json" {
		t.Errorf("URL = %s, want fallback", cfg.Update.URL)
	}
}

func TestParseInvalid(t *testing.T) {
	if _, err := parse([]byte("sidecar: [unclosed"), FormatYAML); err == nil {
		t.Error("expected YAML parse error")
	}
	if _, err := parse([]byte("{not json"), FormatJSON); err == nil {
		t.Error("expected JSON parse error")
	}
	if _, err := parse([]byte("x"), FormatUnknown); err == nil {
		t.Error("expected unknown format error")
	}
}

func TestLoadAndFind(t *testing.T) {
	dir := t.TempDir()
	path := dir + "/tether.yaml"
	if err := os.WriteFile(path, []byte("sidecar:\n  name: engine\n"), 0644); err != nil {
		t.Fatalf("failed to write config: %v", err)
	}

	found, err := Find(path)
	if err != nil {
		t.Fatalf("Find() error = %v", err)
	}
	if found != path {
		t.Errorf("Find() = %s, want %s", found, path)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.Sidecar.Name != "engine" {
		t.Errorf("Sidecar.Name = %s, want engine", cfg.Sidecar.Name)
	}

	if _, err := Find(dir + "/missing.yaml"); err == nil {
		t.Error("expected error for missing explicit path")
	}
}

func TestFindFromEnv(t *testing.T) {
	dir := t.TempDir()
	path := dir + "/custom.toml"
	if err := os.WriteFile(path, []byte("[sidecar]\nname = \"x\"\n"), 0644); err != nil {
		t.Fatalf("failed to write config: %v", err)
	}
	t.Setenv(EnvConfigPath, path)

	found, err := Find("")
	if err != nil {
		t.Fatalf("Find() error = %v", err)
	}
	if found != path {
		t.Errorf("Find() = %s, want %s", found, path)
	}
}

func TestResolveDefaults(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)
	t.Setenv("XDG_CONFIG_HOME", home+"/.config")
	t.Setenv(EnvConfigPath, "")

	cfg, path, err := Resolve("")
	if err != nil {
		t.Fatalf("Resolve() error = %v", err)
	}
	// The test binary's directory holds no tether config
	if path != "" {
		t.Skipf("found unexpected config at %s", path)
	}
	if cfg.Sidecar.Name != DefaultSidecarName {
		t.Errorf("Sidecar.Name = %s, want %s", cfg.Sidecar.Name, DefaultSidecarName)
	}
	if cfg.Update.Enabled {
		t.Error("updates should be disabled by default")
	}
}
