package update

import (
	"bufio"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"runtime"
	"strings"
)

const defaultChunkSize = 32 * 1024

// HTTPDownloader downloads binaries over HTTP
type HTTPDownloader struct {
	client    *http.Client
	chunkSize int
}

// NewHTTPDownloader creates a new HTTP downloader.
// The client has no timeout; cancel the context to abort a transfer.
func NewHTTPDownloader() *HTTPDownloader {
	return &HTTPDownloader{
		client:    &http.Client{},
		chunkSize: defaultChunkSize,
	}
}

// WithChunkSize sets the read buffer size, which bounds each chunk
func (d *HTTPDownloader) WithChunkSize(n int) *HTTPDownloader {
	if n > 0 {
		d.chunkSize = n
	}
	return d
}

// Download streams url into dst, calling onChunk after each chunk is written.
// On any failure dst is removed so a partial artifact is never left behind.
func (d *HTTPDownloader) Download(ctx context.Context, url string, dst string, onChunk ChunkFunc) (Progress, error) {
	progress := Progress{Total: -1}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return progress, fmt.Errorf("failed to create HTTP request: %w", err)
	}

	resp, err := d.client.Do(req)
	if err != nil {
		return progress, fmt.Errorf("failed to perform HTTP request: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return progress, fmt.Errorf("unexpected HTTP status: %d", resp.StatusCode)
	}

	if resp.ContentLength >= 0 {
		progress.Total = resp.ContentLength
	}

	out, err := os.Create(dst)
	if err != nil {
		return progress, fmt.Errorf("failed to create destination file %q: %w", dst, err)
	}

	fail := func(err error) (Progress, error) {
		_ = out.Close()
		_ = os.Remove(dst)
		return progress, err
	}

	buf := make([]byte, d.chunkSize)
	for {
		n, readErr := resp.Body.Read(buf)
		if n > 0 {
			if _, err := out.Write(buf[:n]); err != nil {
				return fail(fmt.Errorf("failed to write %q: %w", dst, err))
			}
			progress.add(n)
			if onChunk != nil {
				onChunk(int64(n), progress.Total)
			}
		}
		if readErr == io.EOF {
			break
		}
		if readErr != nil {
			return fail(fmt.Errorf("transfer interrupted after %d bytes: %w", progress.Received, readErr))
		}
	}

	if progress.Total >= 0 && progress.Received != progress.Total {
		return fail(fmt.Errorf("transfer incomplete: got %d of %d bytes", progress.Received, progress.Total))
	}

	if err := out.Close(); err != nil {
		_ = os.Remove(dst)
		return progress, fmt.Errorf("failed to close %q: %w", dst, err)
	}

	if runtime.GOOS != "windows" {
		if err := os.Chmod(dst, 0755); err != nil {
			_ = os.Remove(dst)
			return progress, fmt.Errorf("failed to set permissions: %w", err)
		}
	}

	return progress, nil
}

// Verify checks file against the inline checksum or the checksum file named
// by info. It is a no-op when info carries neither.
func (d *HTTPDownloader) Verify(ctx context.Context, file string, info *Info) error {
	switch {
	case info.Checksum != "":
		return VerifySHA256(file, info.Checksum)
	case info.ChecksumURL != "":
		return d.VerifyChecksum(ctx, file, info.ChecksumURL)
	default:
		return nil
	}
}

// VerifyChecksum verifies the downloaded file against a checksums.txt entry
// for its file name
func (d *HTTPDownloader) VerifyChecksum(ctx context.Context, file, checksumURL string) error {
	checksums, err := d.downloadChecksums(ctx, checksumURL)
	if err != nil {
		return fmt.Errorf("failed to download checksums: %w", err)
	}

	name := getFilename(file)
	expected, ok := checksums[name]
	if !ok {
		return fmt.Errorf("checksum for %s not found in checksums file", name)
	}

	return VerifySHA256(file, expected)
}

// VerifySHA256 compares the file's SHA-256 with the expected hex digest
func VerifySHA256(file, expected string) error {
	actual, err := calculateSHA256(file)
	if err != nil {
		return err
	}

	if !strings.EqualFold(actual, strings.TrimSpace(expected)) {
		return fmt.Errorf("checksum mismatch for %s: got %s, want %s", getFilename(file), actual, expected)
	}

	return nil
}

// downloadChecksums fetches a "<sha256>  <file>" list
func (d *HTTPDownloader) downloadChecksums(ctx context.Context, url string) (map[string]string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}

	resp, err := d.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("unexpected HTTP status: %d", resp.StatusCode)
	}

	checksums := make(map[string]string)
	scanner := bufio.NewScanner(io.LimitReader(resp.Body, maxDescriptorSize))
	for scanner.Scan() {
		fields := strings.Fields(scanner.Text())
		if len(fields) != 2 {
			continue
		}
		checksums[strings.TrimPrefix(fields[1], "*")] = fields[0]
	}

	return checksums, scanner.Err()
}

// calculateSHA256 returns the hex SHA-256 of a file
func calculateSHA256(path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", fmt.Errorf("failed to open %s: %w", path, err)
	}
	defer func() { _ = f.Close() }()

	hash := sha256.New()
	if _, err := io.Copy(hash, f); err != nil {
		return "", fmt.Errorf("failed to hash %s: %w", path, err)
	}

	return hex.EncodeToString(hash.Sum(nil)), nil
}

func getFilename(path string) string {
	return filepath.Base(path)
}
