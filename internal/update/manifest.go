package update

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

// maxDescriptorSize caps how much of a version descriptor is read.
const maxDescriptorSize = 1 << 20

// Manifest is the JSON version descriptor served by a manifest source.
//
//	{
//	  "version": "1.4.0",
//	  "url": "https://example.com/tether-1.4.0",
//	  "sha256": "ab12...",
//	  "notes": "Bug fixes",
//	  "platforms": {
//	    "linux-amd64": {"url": "...", "sha256": "..."}
//	  }
//	}
type Manifest struct {
	Version   string                      `json:"version"`
	URL       string                      `json:"url,omitempty"`
	SHA256    string                      `json:"sha256,omitempty"`
	Notes     string                      `json:"notes,omitempty"`
	Platforms map[string]ManifestArtifact `json:"platforms,omitempty"`
}

// ManifestArtifact is a per-platform download entry.
type ManifestArtifact struct {
	URL    string `json:"url"`
	SHA256 string `json:"sha256,omitempty"`
}

// ManifestChecker reads a JSON descriptor from a fixed URL
type ManifestChecker struct {
	currentVersion string
	url            string
	binary         string
	platform       Platform
	client         *http.Client
}

// NewManifestChecker creates a checker for the descriptor at url
func NewManifestChecker(currentVersion, url, binary string) *ManifestChecker {
	return &ManifestChecker{
		currentVersion: currentVersion,
		url:            url,
		binary:         binary,
		platform:       Detect(),
		client: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

// CheckForUpdate fetches the descriptor and compares it to the current version
func (c *ManifestChecker) CheckForUpdate(ctx context.Context) (*Info, error) {
	manifest, err := c.fetch(ctx)
	if err != nil {
		return nil, err
	}

	if manifest.Version == "" {
		return nil, fmt.Errorf("manifest has no version")
	}

	info := newInfo(c.currentVersion, manifest.Version)
	info.ReleaseNotes = manifest.Notes
	info.AssetName = c.platform.BinaryName(c.binary)
	info.AssetURL = manifest.URL
	info.Checksum = manifest.SHA256

	// A platform entry overrides the generic artifact
	if artifact, ok := manifest.Platforms[c.platform.Key()]; ok && artifact.URL != "" {
		info.AssetURL = artifact.URL
		info.Checksum = artifact.SHA256
	}

	return info, nil
}

func (c *ManifestChecker) fetch(ctx context.Context) (*Manifest, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.url, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch manifest: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("manifest server returned status %d", resp.StatusCode)
	}

	var manifest Manifest
	if err := json.NewDecoder(io.LimitReader(resp.Body, maxDescriptorSize)).Decode(&manifest); err != nil {
		return nil, fmt.Errorf("failed to decode manifest: %w", err)
	}

	return &manifest, nil
}
