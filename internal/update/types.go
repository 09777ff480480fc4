package update

import "context"

// Info describes the version offered by a remote source
type Info struct {
	Available      bool      `json:"available" yaml:"available"`           // Whether the update policy says to install it
	Direction      Direction `json:"direction" yaml:"direction"`           // upgrade, downgrade, changed or none
	CurrentVersion string    `json:"current_version" yaml:"current_version"` // Currently running version
	LatestVersion  string    `json:"latest_version" yaml:"latest_version"` // Version offered by the source
	ReleaseURL     string    `json:"release_url,omitempty" yaml:"release_url,omitempty"`
	ReleaseNotes   string    `json:"release_notes,omitempty" yaml:"release_notes,omitempty"`
	AssetName      string    `json:"asset_name,omitempty" yaml:"asset_name,omitempty"`     // File name used for staging and checksum lookup
	AssetURL       string    `json:"asset_url,omitempty" yaml:"asset_url,omitempty"`       // Direct download URL for the binary
	Checksum       string    `json:"sha256,omitempty" yaml:"sha256,omitempty"`             // Inline SHA-256, hex
	ChecksumURL    string    `json:"checksum_url,omitempty" yaml:"checksum_url,omitempty"` // URL to a checksums.txt file
}

// Platform describes the current system platform
type Platform struct {
	OS   string // Operating system (darwin, linux, windows)
	Arch string // Architecture (amd64, arm64)
}

// Progress is the byte accounting of one download.
type Progress struct {
	Received int64 // Bytes written so far
	Total    int64 // Content length, -1 when unknown
	Chunks   int   // Number of chunks delivered
}

// Fraction returns the completed share in [0,1], or -1 if the total is unknown.
func (p Progress) Fraction() float64 {
	if p.Total <= 0 {
		return -1
	}
	return float64(p.Received) / float64(p.Total)
}

func (p *Progress) add(n int) {
	p.Received += int64(n)
	p.Chunks++
}

// ChunkFunc observes each downloaded chunk. total is -1 when unknown.
type ChunkFunc func(n int64, total int64)

// Checker queries a remote source for the version it offers
type Checker interface {
	CheckForUpdate(ctx context.Context) (*Info, error)
}

// Downloader fetches and verifies update artifacts
type Downloader interface {
	Download(ctx context.Context, url string, dst string, onChunk ChunkFunc) (Progress, error)
	Verify(ctx context.Context, file string, info *Info) error
}

// Installer puts a downloaded artifact in place of the running binary
type Installer interface {
	Install(ctx context.Context, artifact string) error
}

// Restarter relaunches the host process
type Restarter interface {
	Restart() error
}

// RestarterFunc adapts a function to the Restarter interface.
type RestarterFunc func() error

// Restart calls f.
func (f RestarterFunc) Restart() error {
	return f()
}
