//go:build !unix && !windows

package update

import (
	"fmt"
	"runtime"
)

func restartProcess(path string, args, env []string) error {
	return fmt.Errorf("restart not supported on %s", runtime.GOOS)
}
