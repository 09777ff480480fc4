package sidecar

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"path/filepath"
	"sync"
	"sync/atomic"
	"time"

	log "github.com/sirupsen/logrus"

	"github.com/adamancini/tether/internal/config"
	"github.com/adamancini/tether/internal/types"
)

const (
	releaseTimeout = 5 * time.Second

	// maxLineLength caps one forwarded output line. Longer lines are cut
	// and the pipe keeps draining.
	maxLineLength = 64 * 1024
)

// Launcher starts the bundled sidecar once per host session.
type Launcher struct {
	cfg    config.SidecarConfig
	logger *log.Entry

	launched atomic.Bool
}

// New creates a launcher for the configured sidecar.
func New(cfg config.SidecarConfig) *Launcher {
	if cfg.Name == "" {
		cfg.Name = config.DefaultSidecarName
	}
	cfg.Streams = cfg.Streams.Default()
	cfg.Policy = cfg.Policy.Default()

	return &Launcher{
		cfg:    cfg,
		logger: log.WithField("sidecar", cfg.Name),
	}
}

// WithLogger replaces the log entry used for lifecycle and output lines.
func (l *Launcher) WithLogger(entry *log.Entry) *Launcher {
	l.logger = entry
	return l
}

// Launch resolves and starts the sidecar. It returns once the child is
// running; it does not wait for it to exit.
func (l *Launcher) Launch(ctx context.Context) (*Process, error) {
	if !l.launched.CompareAndSwap(false, true) {
		return nil, ErrAlreadyLaunched
	}

	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrSpawn, err)
	}

	path, err := Resolve(l.cfg.Name, l.cfg.Dir)
	if err != nil {
		return nil, err
	}

	// The child outlives ctx unless its policy says otherwise
	cmd := exec.Command(path, l.cfg.Args...)
	cmd.Dir = filepath.Dir(path)

	p := &Process{
		cmd:    cmd,
		path:   path,
		policy: l.cfg.Policy,
		logger: l.logger,
		done:   make(chan struct{}),
	}

	if err := p.attachStreams(l.cfg.Streams); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrSpawn, err)
	}

	if err := cmd.Start(); err != nil {
		return nil, fmt.Errorf("%w: start %s: %w", ErrSpawn, path, err)
	}

	p.logger = p.logger.WithField("pid", cmd.Process.Pid)
	p.logger.WithFields(log.Fields{
		"path":    path,
		"streams": l.cfg.Streams,
		"policy":  l.cfg.Policy,
	}).Info("sidecar started")

	p.forward()
	if p.policy.Waits() {
		p.watch()
	}

	return p, nil
}

// Process is a running sidecar.
type Process struct {
	cmd    *exec.Cmd
	path   string
	policy types.HandlePolicy
	logger *log.Entry

	pipes   []io.ReadCloser
	readers sync.WaitGroup

	done    chan struct{}
	exitErr error

	watchOnce   sync.Once
	releaseOnce sync.Once
}

// PID returns the child's process id.
func (p *Process) PID() int {
	return p.cmd.Process.Pid
}

// Path returns the resolved sidecar binary.
func (p *Process) Path() string {
	return p.path
}

// Done is closed once the child's exit has been observed. Under the
// ignore policy nobody waits on the child, so it only closes after Terminate.
func (p *Process) Done() <-chan struct{} {
	return p.done
}

// ExitErr returns the child's exit error. Only valid after Done is closed.
func (p *Process) ExitErr() error {
	return p.exitErr
}

// Release applies the handle policy at host shutdown. Safe to call more than once.
func (p *Process) Release() {
	p.releaseOnce.Do(func() {
		switch {
		case p.policy.Kills():
			p.Terminate()
		case p.policy.Waits():
			p.logger.Debug("leaving sidecar running")
		default:
			if err := p.cmd.Process.Release(); err != nil {
				p.logger.Debugf("release sidecar handle: %v", err)
			}
		}
	})
}

// Terminate kills the child regardless of policy and waits for it to exit.
func (p *Process) Terminate() {
	select {
	case <-p.done:
		return
	default:
	}

	p.watch()

	if err := p.cmd.Process.Kill(); err != nil && !errors.Is(err, os.ErrProcessDone) {
		p.logger.Warnf("failed to kill sidecar: %v", err)
	}

	select {
	case <-p.done:
		p.logger.Debug("sidecar terminated")
	case <-time.After(releaseTimeout):
		p.logger.Warnf("sidecar did not terminate within %s", releaseTimeout)
	}
}

func (p *Process) attachStreams(mode types.StreamMode) error {
	switch mode {
	case types.StreamInherit:
		p.cmd.Stdout = os.Stdout
		p.cmd.Stderr = os.Stderr
	case types.StreamLog:
		stdout, err := p.cmd.StdoutPipe()
		if err != nil {
			return fmt.Errorf("stdout pipe: %w", err)
		}
		stderr, err := p.cmd.StderrPipe()
		if err != nil {
			return fmt.Errorf("stderr pipe: %w", err)
		}
		p.pipes = []io.ReadCloser{stdout, stderr}
	default:
		// nil Stdout and Stderr go to the null device
	}
	return nil
}

// forward logs every output line when streams are in log mode.
func (p *Process) forward() {
	if len(p.pipes) != 2 {
		return
	}
	p.readers.Add(2)
	go p.scan(p.pipes[0], log.InfoLevel, "stdout")
	go p.scan(p.pipes[1], log.WarnLevel, "stderr")
}

func (p *Process) scan(r io.Reader, level log.Level, stream string) {
	defer p.readers.Done()

	logger := p.logger.WithField("stream", stream)
	reader := bufio.NewReaderSize(r, maxLineLength)
	for {
		line, isPrefix, err := reader.ReadLine()
		if err != nil {
			logStreamEnd(logger, err)
			return
		}
		logger.Log(level, string(line))

		if !isPrefix {
			continue
		}
		logger.Warnf("sidecar output line longer than %d bytes, rest of the line dropped", maxLineLength)
		for isPrefix {
			if _, isPrefix, err = reader.ReadLine(); err != nil {
				logStreamEnd(logger, err)
				return
			}
		}
	}
}

func logStreamEnd(logger *log.Entry, err error) {
	if !errors.Is(err, io.EOF) && !errors.Is(err, os.ErrClosed) {
		logger.Debugf("stopped reading sidecar output: %v", err)
	}
}

// watch starts the goroutine that waits on the child.
func (p *Process) watch() {
	p.watchOnce.Do(func() { go p.wait() })
}

func (p *Process) wait() {
	// Wait closes the pipes, so all output must be read first
	p.readers.Wait()
	p.exitErr = p.cmd.Wait()

	if p.exitErr != nil {
		p.logger.Warnf("sidecar exited: %v", p.exitErr)
	} else {
		p.logger.Info("sidecar exited")
	}
	close(p.done)
}
