package sidecar

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
)

var (
	// ErrSpawn wraps every failure to locate or start the sidecar.
	ErrSpawn = errors.New("failed to spawn sidecar")

	// ErrAlreadyLaunched is returned by a second Launch on the same Launcher.
	ErrAlreadyLaunched = errors.New("sidecar already launched")
)

// Candidates lists the paths tried for name in dir, most specific first.
func Candidates(name, dir string) []string {
	return candidates(name, dir, runtime.GOOS, runtime.GOARCH)
}

func candidates(name, dir, goos, goarch string) []string {
	ext := ""
	if goos == "windows" {
		ext = ".exe"
	}
	return []string{
		filepath.Join(dir, fmt.Sprintf("%s-%s-%s%s", name, goos, goarch, ext)),
		filepath.Join(dir, name+ext),
	}
}

// Resolve locates the sidecar binary. An empty dir means the directory of
// the running executable.
func Resolve(name, dir string) (string, error) {
	if name == "" {
		return "", fmt.Errorf("%w: no sidecar name", ErrSpawn)
	}

	if dir == "" {
		exeDir, err := ExecutableDir()
		if err != nil {
			return "", fmt.Errorf("%w: %w", ErrSpawn, err)
		}
		dir = exeDir
	}

	var problems []string
	for _, path := range Candidates(name, dir) {
		err := checkExecutable(path)
		if err == nil {
			return path, nil
		}
		if !os.IsNotExist(err) {
			problems = append(problems, err.Error())
		}
	}

	if len(problems) > 0 {
		return "", fmt.Errorf("%w: %s", ErrSpawn, problems[0])
	}
	return "", fmt.Errorf("%w: %q not found in %s", ErrSpawn, name, dir)
}

// ExecutableDir returns the directory holding the running binary, with
// symlinks resolved.
func ExecutableDir() (string, error) {
	exe, err := os.Executable()
	if err != nil {
		return "", fmt.Errorf("failed to get executable path: %w", err)
	}
	exe, err = filepath.EvalSymlinks(exe)
	if err != nil {
		return "", fmt.Errorf("failed to resolve executable path: %w", err)
	}
	return filepath.Dir(exe), nil
}

func checkExecutable(path string) error {
	info, err := os.Stat(path)
	if err != nil {
		return err
	}
	if !info.Mode().IsRegular() {
		return fmt.Errorf("%s is not a regular file", path)
	}
	if runtime.GOOS != "windows" && info.Mode().Perm()&0111 == 0 {
		return fmt.Errorf("%s is not executable", path)
	}
	return nil
}
