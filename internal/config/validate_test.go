package config

import (
	"strings"
	"testing"
)

func TestValidateSidecar(t *testing.T) {
	tests := []struct {
		name    string
		sidecar SidecarConfig
		wantErr string
	}{
		{
			name:    "valid default",
			sidecar: Default().Sidecar,
		},
		{
			name:    "missing name",
			sidecar: SidecarConfig{},
			wantErr: "sidecar.name",
		},
		{
			name:    "name with path",
			sidecar: SidecarConfig{Name: "bin/main"},
			wantErr: "must be a file name",
		},
		{
			name:    "invalid streams",
			sidecar: SidecarConfig{Name: "main", Streams: "pipe"},
			wantErr: "sidecar.streams",
		},
		{
			name:    "invalid policy",
			sidecar: SidecarConfig{Name: "main", Policy: "restart"},
			wantErr: "sidecar.policy",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			cfg.Sidecar = tt.sidecar
			err := Validate(cfg)

			if tt.wantErr == "" {
				if err != nil {
					t.Errorf("Validate() unexpected error = %v", err)
				}
				return
			}
			if err == nil {
				t.Fatalf("Validate() expected error containing %q", tt.wantErr)
			}
			if !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("Validate() error = %v, want containing %q", err, tt.wantErr)
			}
		})
	}
}

func TestValidateUpdate(t *testing.T) {
	tests := []struct {
		name    string
		update  UpdateConfig
		wantErr string
	}{
		{
			name:   "disabled skips source checks",
			update: UpdateConfig{Enabled: false},
		},
		{
			name:   "valid manifest",
			update: UpdateConfig{Enabled: true, Source: "manifest", URL: "https://x.example.com/v.json", Binary: "tether"},
		},
		{
			name:    "manifest without url",
			update:  UpdateConfig{Enabled: true, Source: "manifest", Binary: "tether"},
			wantErr: "update.url",
		},
		{
			name:    "manifest with non-http url",
			update:  UpdateConfig{Enabled: true, Source: "manifest", URL: "ftp://x/v.json", Binary: "tether"},
			wantErr: "http or https",
		},
		{
			name:   "valid github",
			update: UpdateConfig{Enabled: true, Source: "github", Binary: "tether", GitHub: GitHubConfig{Owner: "o", Repo: "r"}},
		},
		{
			name:    "github without repo",
			update:  UpdateConfig{Enabled: true, Source: "github", Binary: "tether", GitHub: GitHubConfig{Owner: "o"}},
			wantErr: "owner and repo",
		},
		{
			name:    "unknown source",
			update:  UpdateConfig{Enabled: true, Source: "s3"},
			wantErr: "update.source",
		},
		{
			name:    "missing binary",
			update:  UpdateConfig{Enabled: true, Source: "manifest", URL: "https://x/v.json"},
			wantErr: "update.binary",
		},
		{
			name:    "bad timeout even when disabled",
			update:  UpdateConfig{Timeout: "soon"},
			wantErr: "update.timeout",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			cfg.Update = tt.update
			err := Validate(cfg)

			if tt.wantErr == "" {
				if err != nil {
					t.Errorf("Validate() unexpected error = %v", err)
				}
				return
			}
			if err == nil {
				t.Fatalf("Validate() expected error containing %q", tt.wantErr)
			}
			if !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("Validate() error = %v, want containing %q", err, tt.wantErr)
			}
		})
	}
}

func TestValidateLogLevel(t *testing.T) {
	cfg := Default()
	cfg.Log.Level = "chatty"
	if err := Validate(cfg); err == nil || !strings.Contains(err.Error(), "log.level") {
		t.Errorf("Validate() error = %v, want log.level error", err)
	}
}

func TestValidateCollectsAllErrors(t *testing.T) {
	cfg := Default()
	cfg.Sidecar.Name = ""
	cfg.Sidecar.Policy = "restart"
	cfg.Log.Level = "chatty"

	err := Validate(cfg)
	if err == nil {
		t.Fatal("expected validation errors")
	}

	for _, field := range []string{"sidecar.name", "sidecar.policy", "log.level"} {
		if !strings.Contains(err.Error(), field) {
			t.Errorf("error should mention %s, got: %v", field, err)
		}
	}
}

func TestTimeoutDuration(t *testing.T) {
	d, err := UpdateConfig{}.TimeoutDuration()
	if err != nil || d != 0 {
		t.Errorf("empty timeout = %v, %v; want 0, nil", d, err)
	}

	d, err = UpdateConfig{Timeout: "90s"}.TimeoutDuration()
	if err != nil || d.Seconds() != 90 {
		t.Errorf("90s timeout = %v, %v", d, err)
	}
}
