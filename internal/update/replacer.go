package update

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"

	"github.com/hashicorp/go-multierror"
)

// BinaryReplacer safely replaces the binary with rollback support
type BinaryReplacer struct {
	currentPath string
	backupPath  string
	verifyArgs  []string
}

// NewBinaryReplacer creates a new binary replacer
func NewBinaryReplacer(currentPath string) *BinaryReplacer {
	return &BinaryReplacer{
		currentPath: currentPath,
		backupPath:  currentPath + ".backup",
		verifyArgs:  []string{"--version"},
	}
}

// NewSelfReplacer creates a replacer for the running executable
func NewSelfReplacer() (*BinaryReplacer, error) {
	path, err := Executable()
	if err != nil {
		return nil, err
	}
	return NewBinaryReplacer(path), nil
}

// Target returns the path of the binary being replaced
func (r *BinaryReplacer) Target() string {
	return r.currentPath
}

// Install implements Installer
func (r *BinaryReplacer) Install(ctx context.Context, artifact string) error {
	return r.replace(ctx, artifact)
}

// Replace replaces the current binary with the new one
func (r *BinaryReplacer) Replace(newBinary string) error {
	return r.replace(context.Background(), newBinary)
}

func (r *BinaryReplacer) replace(ctx context.Context, newBinary string) error {
	// 1. Back up the current binary
	if err := r.createBackup(); err != nil {
		return fmt.Errorf("failed to create backup: %w", err)
	}

	// 2. Replace with new binary (atomic rename)
	if err := os.Rename(newBinary, r.currentPath); err != nil {
		return r.rollbackAfter(ctx, fmt.Errorf("failed to replace binary: %w", err))
	}

	// 3. Set executable permissions
	if err := os.Chmod(r.currentPath, 0755); err != nil {
		return r.rollbackAfter(ctx, fmt.Errorf("failed to set permissions: %w", err))
	}

	// 4. Verify new binary works
	if err := r.verifyBinary(ctx, r.currentPath); err != nil {
		return r.rollbackAfter(ctx, fmt.Errorf("new binary verification failed: %w", err))
	}

	// 5. Remove backup on success. Windows keeps the moved-aside running
	// image locked until exit; Sweep clears it on the next start.
	_ = os.Remove(r.backupPath)

	return nil
}

// rollbackAfter restores the backup and reports both failures if that fails too.
func (r *BinaryReplacer) rollbackAfter(ctx context.Context, cause error) error {
	if err := r.rollback(ctx); err != nil {
		return multierror.Append(cause, fmt.Errorf("rollback failed: %w", err))
	}
	return cause
}

// Rollback restores the backup if update fails
func (r *BinaryReplacer) Rollback() error {
	return r.rollback(context.Background())
}

func (r *BinaryReplacer) rollback(ctx context.Context) error {
	// 1. Check if backup exists
	if _, err := os.Stat(r.backupPath); os.IsNotExist(err) {
		return fmt.Errorf("backup not found: %s", r.backupPath)
	}

	// 2. Restore from backup
	if err := os.Rename(r.backupPath, r.currentPath); err != nil {
		return fmt.Errorf("failed to restore from backup: %w", err)
	}

	// 3. Set permissions
	if err := os.Chmod(r.currentPath, 0755); err != nil {
		return fmt.Errorf("failed to set permissions on restored binary: %w", err)
	}

	// 4. Verify restored binary works
	if err := r.verifyBinary(ctx, r.currentPath); err != nil {
		return fmt.Errorf("restored binary verification failed: %w", err)
	}

	return nil
}

// createBackup keeps a copy of the current binary at backupPath
func (r *BinaryReplacer) createBackup() error {
	// A running executable cannot be overwritten on Windows, but it can be renamed
	if runtime.GOOS == "windows" {
		if err := os.Rename(r.currentPath, r.backupPath); err != nil {
			return fmt.Errorf("failed to move current binary aside: %w", err)
		}
		return nil
	}

	src, err := os.Open(r.currentPath)
	if err != nil {
		return fmt.Errorf("failed to open current binary: %w", err)
	}
	defer func() { _ = src.Close() }()

	srcInfo, err := src.Stat()
	if err != nil {
		return fmt.Errorf("failed to stat current binary: %w", err)
	}

	dst, err := os.OpenFile(r.backupPath, os.O_RDWR|os.O_CREATE|os.O_TRUNC, srcInfo.Mode())
	if err != nil {
		return fmt.Errorf("failed to create backup file: %w", err)
	}
	defer func() { _ = dst.Close() }()

	if _, err := io.Copy(dst, src); err != nil {
		_ = os.Remove(r.backupPath) // Clean up partial backup
		return fmt.Errorf("failed to copy binary to backup: %w", err)
	}

	return nil
}

// verifyBinary verifies a binary works by running it with --version
func (r *BinaryReplacer) verifyBinary(ctx context.Context, path string) error {
	cmd := exec.CommandContext(ctx, path, r.verifyArgs...)
	if err := cmd.Run(); err != nil {
		return fmt.Errorf("binary verification failed: %w", err)
	}
	return nil
}

// Executable returns the running binary's path with symlinks resolved
func Executable() (string, error) {
	path, err := os.Executable()
	if err != nil {
		return "", fmt.Errorf("failed to get current binary path: %w", err)
	}

	path, err = filepath.EvalSymlinks(path)
	if err != nil {
		return "", fmt.Errorf("failed to resolve binary path: %w", err)
	}

	return path, nil
}
