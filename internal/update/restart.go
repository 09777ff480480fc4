package update

import (
	"os"
)

// ExecRestarter relaunches a binary with the arguments and environment the
// host was started with
type ExecRestarter struct {
	path string
	args []string
	env  []string
}

// NewExecRestarter creates a restarter for the running executable
func NewExecRestarter() (*ExecRestarter, error) {
	path, err := Executable()
	if err != nil {
		return nil, err
	}
	return &ExecRestarter{
		path: path,
		args: os.Args,
		env:  os.Environ(),
	}, nil
}

// Restart replaces the current process. It only returns on failure.
func (r *ExecRestarter) Restart() error {
	return restartProcess(r.path, r.args, r.env)
}
