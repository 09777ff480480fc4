package app

import (
	"fmt"

	"github.com/adamancini/tether/internal/config"
	"github.com/adamancini/tether/internal/types"
	"github.com/adamancini/tether/internal/update"
)

// NewChecker builds the version source selected by cfg.
func NewChecker(version string, cfg config.UpdateConfig) (update.Checker, error) {
	if p := update.Detect(); !p.IsSupported() {
		return nil, fmt.Errorf("no release artifacts for platform %s", p.Key())
	}

	switch cfg.Source {
	case types.SourceGitHub:
		return update.NewGitHubChecker(version, cfg.GitHub.Owner, cfg.GitHub.Repo, cfg.Binary).
			WithToken(cfg.GitHub.Token), nil
	case types.SourceManifest, "":
		if cfg.URL == "" {
			return nil, fmt.Errorf("update source %q requires a url", types.SourceManifest)
		}
		return update.NewManifestChecker(version, cfg.URL, cfg.Binary), nil
	default:
		return nil, fmt.Errorf("unknown update source %q", cfg.Source)
	}
}

// SupervisorOptions translates update settings into supervisor options.
func SupervisorOptions(cfg config.UpdateConfig) ([]update.Option, error) {
	timeout, err := cfg.TimeoutDuration()
	if err != nil {
		return nil, err
	}
	return []update.Option{
		update.WithTimeout(timeout),
		update.WithAllowDev(cfg.AllowDev),
	}, nil
}
