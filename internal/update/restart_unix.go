//go:build unix

package update

import (
	"fmt"

	"golang.org/x/sys/unix"
)

// restartProcess execs path in place: same pid, same arguments.
func restartProcess(path string, args, env []string) error {
	if err := unix.Exec(path, args, env); err != nil {
		return fmt.Errorf("exec %s: %w", path, err)
	}
	return nil
}
