//go:build windows

package update

import (
	"fmt"
	"os"
	"path/filepath"
)

// restartProcess starts a new instance and exits the current one.
func restartProcess(path string, args, env []string) error {
	_, err := os.StartProcess(path, args, &os.ProcAttr{
		Dir:   filepath.Dir(path),
		Env:   env,
		Files: []*os.File{os.Stdin, os.Stdout, os.Stderr},
	})
	if err != nil {
		return fmt.Errorf("start %s: %w", path, err)
	}

	os.Exit(0)
	return nil
}
