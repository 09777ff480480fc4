// Package types provides type-safe constants for the tether configuration.
//
// This package centralizes the enumerated settings used throughout the
// codebase, replacing magic strings with typed constants that provide
// validation methods.
//
// SYNC REQUIREMENT: These types must stay in sync with:
//   - internal/config/validate.go (runtime validation)
//   - internal/config/config.go (defaults)
package types

import (
	"fmt"
	"strings"
)

// StreamMode controls what happens to the sidecar's stdout and stderr.
type StreamMode string

const (
	// StreamInherit shares the host's stdout and stderr with the sidecar.
	StreamInherit StreamMode = "inherit"
	// StreamDiscard drops all sidecar output.
	StreamDiscard StreamMode = "discard"
	// StreamLog forwards each sidecar output line to the host log.
	StreamLog StreamMode = "log"
)

// AllStreamModes returns all valid stream modes.
func AllStreamModes() []StreamMode {
	return []StreamMode{StreamInherit, StreamDiscard, StreamLog}
}

// Validate checks if the StreamMode is a valid value.
// Empty is valid and means the default (discard).
func (m StreamMode) Validate() error {
	switch m {
	case StreamInherit, StreamDiscard, StreamLog, "":
		return nil
	default:
		return fmt.Errorf("invalid stream mode '%s' (must be inherit, discard, or log)", m)
	}
}

// String returns the string representation of the StreamMode.
func (m StreamMode) String() string {
	return string(m)
}

// Default returns StreamDiscard if empty, otherwise the mode itself.
func (m StreamMode) Default() StreamMode {
	if m == "" {
		return StreamDiscard
	}
	return m
}

// ParseStreamMode parses a string into a StreamMode.
func ParseStreamMode(s string) (StreamMode, error) {
	m := StreamMode(strings.ToLower(s))
	if err := m.Validate(); err != nil {
		return "", err
	}
	return m.Default(), nil
}

// HandlePolicy decides what the host does with the sidecar handle after spawn.
type HandlePolicy string

const (
	// PolicyIgnore keeps the handle but never waits on or kills the child.
	PolicyIgnore HandlePolicy = "ignore"
	// PolicyMonitor waits on the child in the background and logs its exit.
	PolicyMonitor HandlePolicy = "monitor"
	// PolicyReap monitors the child and kills it when the host shuts down.
	PolicyReap HandlePolicy = "reap"
)

// AllHandlePolicies returns all valid handle policies.
func AllHandlePolicies() []HandlePolicy {
	return []HandlePolicy{PolicyIgnore, PolicyMonitor, PolicyReap}
}

// Validate checks if the HandlePolicy is a valid value.
// Empty is valid and means the default (ignore).
func (p HandlePolicy) Validate() error {
	switch p {
	case PolicyIgnore, PolicyMonitor, PolicyReap, "":
		return nil
	default:
		return fmt.Errorf("invalid handle policy '%s' (must be ignore, monitor, or reap)", p)
	}
}

// String returns the string representation of the HandlePolicy.
func (p HandlePolicy) String() string {
	return string(p)
}

// Default returns PolicyIgnore if empty, otherwise the policy itself.
func (p HandlePolicy) Default() HandlePolicy {
	if p == "" {
		return PolicyIgnore
	}
	return p
}

// Waits returns true if the policy waits on the child process.
func (p HandlePolicy) Waits() bool {
	return p == PolicyMonitor || p == PolicyReap
}

// Kills returns true if the policy kills the child on release.
func (p HandlePolicy) Kills() bool {
	return p == PolicyReap
}

// ParseHandlePolicy parses a string into a HandlePolicy.
func ParseHandlePolicy(s string) (HandlePolicy, error) {
	p := HandlePolicy(strings.ToLower(s))
	if err := p.Validate(); err != nil {
		return "", err
	}
	return p.Default(), nil
}

// SourceKind selects the remote version source.
type SourceKind string

const (
	// SourceManifest is a JSON version descriptor at a fixed URL.
	SourceManifest SourceKind = "manifest"
	// SourceGitHub is the latest release of a GitHub repository.
	SourceGitHub SourceKind = "github"
)

// AllSourceKinds returns all valid source kinds.
func AllSourceKinds() []SourceKind {
	return []SourceKind{SourceManifest, SourceGitHub}
}

// Validate checks if the SourceKind is a valid value.
func (k SourceKind) Validate() error {
	switch k {
	case SourceManifest, SourceGitHub:
		return nil
	case "":
		return fmt.Errorf("source kind is required")
	default:
		return fmt.Errorf("invalid source kind '%s' (must be manifest or github)", k)
	}
}

// String returns the string representation of the SourceKind.
func (k SourceKind) String() string {
	return string(k)
}

// IsGitHub returns true if the source is GitHub releases.
func (k SourceKind) IsGitHub() bool {
	return k == SourceGitHub
}

// ParseSourceKind parses a string into a SourceKind.
func ParseSourceKind(s string) (SourceKind, error) {
	k := SourceKind(strings.ToLower(s))
	if err := k.Validate(); err != nil {
		return "", err
	}
	return k, nil
}
