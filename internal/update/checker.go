package update

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

// GitHubChecker checks for updates via GitHub API
type GitHubChecker struct {
	currentVersion string
	githubToken    string // Optional, for rate limiting
	owner          string // Repository owner
	repo           string // Repository name
	binary         string // Asset name prefix
	platform       Platform
	client         *http.Client
	baseURL        string // Base URL for GitHub API (for testing)
}

// GitHubRelease represents a GitHub release response
type GitHubRelease struct {
	TagName    string `json:"tag_name"`
	Name       string `json:"name"`
	Body       string `json:"body"`
	HTMLURL    string `json:"html_url"`
	Prerelease bool   `json:"prerelease"`
	Assets     []struct {
		Name               string `json:"name"`
		BrowserDownloadURL string `json:"browser_download_url"`
	} `json:"assets"`
}

// NewGitHubChecker creates a new GitHub checker
func NewGitHubChecker(currentVersion, owner, repo, binary string) *GitHubChecker {
	return &GitHubChecker{
		currentVersion: currentVersion,
		owner:          owner,
		repo:           repo,
		binary:         binary,
		platform:       Detect(),
		client: &http.Client{
			Timeout: 30 * time.Second,
		},
		baseURL: "https://api.github.com",
	}
}

// WithToken sets an optional GitHub token for authentication
func (c *GitHubChecker) WithToken(token string) *GitHubChecker {
	c.githubToken = token
	return c
}

// CheckForUpdate fetches the latest release and compares it to the current version
func (c *GitHubChecker) CheckForUpdate(ctx context.Context) (*Info, error) {
	release, err := c.getLatestRelease(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get latest release: %w", err)
	}

	if release.TagName == "" {
		return nil, fmt.Errorf("latest release has no tag")
	}

	info := newInfo(c.currentVersion, release.TagName)
	info.ReleaseURL = release.HTMLURL
	info.ReleaseNotes = release.Body
	info.AssetName = c.platform.BinaryName(c.binary)
	info.AssetURL, info.ChecksumURL = c.findAssetURLs(release, info.AssetName)

	return info, nil
}

// getLatestRelease fetches the latest release from GitHub API
func (c *GitHubChecker) getLatestRelease(ctx context.Context) (*GitHubRelease, error) {
	url := fmt.Sprintf("%s/repos/%s/%s/releases/latest", c.baseURL, c.owner, c.repo)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}

	req.Header.Set("Accept", "application/vnd.github+json")
	if c.githubToken != "" {
		req.Header.Set("Authorization", "Bearer "+c.githubToken)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("GitHub API returned status %d", resp.StatusCode)
	}

	var release GitHubRelease
	if err := json.NewDecoder(io.LimitReader(resp.Body, maxDescriptorSize)).Decode(&release); err != nil {
		return nil, fmt.Errorf("failed to decode response: %w", err)
	}

	return &release, nil
}

// findAssetURLs finds the binary and checksum URLs for the given asset name
func (c *GitHubChecker) findAssetURLs(release *GitHubRelease, binaryName string) (string, string) {
	var assetURL, checksumURL string

	for _, asset := range release.Assets {
		if asset.Name == binaryName {
			assetURL = asset.BrowserDownloadURL
		}
		if asset.Name == "checksums.txt" {
			checksumURL = asset.BrowserDownloadURL
		}
	}

	return assetURL, checksumURL
}
