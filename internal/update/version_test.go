package update

import (
	"testing"
)

func TestShouldUpdate(t *testing.T) {
	tests := []struct {
		name      string
		current   string
		candidate string
		want      bool
	}{
		{"upgrade", "2.0.0", "2.1.0", true},
		{"downgrade", "2.0.0", "1.9.0", true},
		{"equal", "2.0.0", "2.0.0", false},
		{"equal with v prefix", "v2.0.0", "2.0.0", false},
		{"equal with whitespace", "2.0.0", " 2.0.0\n", false},
		{"prerelease differs", "2.0.0", "2.0.0-rc.1", true},
		{"opaque tokens", "build-41", "build-42", true},
		{"same opaque token", "nightly", "nightly", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ShouldUpdate(tt.current, tt.candidate); got != tt.want {
				t.Errorf("ShouldUpdate(%q, %q) = %v, want %v", tt.current, tt.candidate, got, tt.want)
			}
		})
	}
}

func TestClassify(t *testing.T) {
	tests := []struct {
		name      string
		current   string
		candidate string
		want      Direction
	}{
		{"upgrade", "0.8.2", "v0.9.0", DirectionUpgrade},
		{"downgrade", "2.0.0", "1.9.0", DirectionDowngrade},
		{"same", "2.0.0", "v2.0.0", DirectionNone},
		{"prerelease below release", "1.0.0", "1.0.0-rc.1", DirectionDowngrade},
		{"unparsable", "build-41", "build-42", DirectionChanged},
		{"dev build", "dev", "1.0.0", DirectionChanged},
		{"different token same version", "1.0", "1.0.0", DirectionChanged},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Classify(tt.current, tt.candidate); got != tt.want {
				t.Errorf("Classify(%q, %q) = %v, want %v", tt.current, tt.candidate, got, tt.want)
			}
		})
	}
}

func TestNormalizeVersion(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{"v1.0.0", "1.0.0"},
		{"1.0.0", "1.0.0"},
		{" v0.9.0-rc.1 ", "0.9.0-rc.1"},
		{"", ""},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			if got := NormalizeVersion(tt.input); got != tt.want {
				t.Errorf("NormalizeVersion(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestNewInfo(t *testing.T) {
	info := newInfo("v2.0.0", "v1.9.0")

	if !info.Available {
		t.Error("downgrade should be available")
	}
	if info.Direction != DirectionDowngrade {
		t.Errorf("Direction = %s, want downgrade", info.Direction)
	}
	if info.CurrentVersion != "2.0.0" || info.LatestVersion != "1.9.0" {
		t.Errorf("versions not normalized: %s -> %s", info.CurrentVersion, info.LatestVersion)
	}
}
