// Package app wires the sidecar launcher and the update supervisor into one
// host session.
package app

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	log "github.com/sirupsen/logrus"

	"github.com/adamancini/tether/internal/config"
	"github.com/adamancini/tether/internal/sidecar"
	"github.com/adamancini/tether/internal/update"
)

var (
	// ErrSessionStarted is returned by a second Start.
	ErrSessionStarted = errors.New("session already started")
	// ErrSessionClosed is returned when an update tries to restart a host
	// that is already shutting down.
	ErrSessionClosed = errors.New("session closed")
)

// Updater bundles the supervisor's collaborators.
type Updater struct {
	Checker    update.Checker
	Downloader update.Downloader
	Installer  update.Installer
	Restarter  update.Restarter
}

// Session is one run of the host: the sidecar plus at most one update.
type Session struct {
	version   string
	updateCfg config.UpdateConfig
	launcher  *sidecar.Launcher
	updater   *Updater
	opts      []update.Option
	logger    *log.Entry

	started atomic.Bool

	// life orders Close against the restart wrapper
	life   sync.Mutex
	closed bool

	mu      sync.Mutex
	process *sidecar.Process
	results <-chan update.Result
	last    *update.Result
}

// SessionOption configures a Session.
type SessionOption func(*Session)

// WithUpdater replaces the collaborators built from the config.
func WithUpdater(u *Updater) SessionOption {
	return func(s *Session) { s.updater = u }
}

// WithUpdateOptions appends supervisor options, such as observers.
func WithUpdateOptions(opts ...update.Option) SessionOption {
	return func(s *Session) { s.opts = append(s.opts, opts...) }
}

// WithLauncher replaces the sidecar launcher built from the config.
func WithLauncher(l *sidecar.Launcher) SessionOption {
	return func(s *Session) { s.launcher = l }
}

// NewSession prepares a session for the running version. Nothing is started
// and nothing update related is built until the sidecar is running.
func NewSession(version string, cfg *config.Config, opts ...SessionOption) *Session {
	s := &Session{
		version:   version,
		updateCfg: cfg.Update,
		logger:    log.WithField("component", "session"),
	}
	for _, opt := range opts {
		opt(s)
	}

	if s.launcher == nil {
		s.launcher = sidecar.New(cfg.Sidecar)
	}

	return s
}

func defaultUpdater(version string, cfg config.UpdateConfig) (*Updater, error) {
	checker, err := NewChecker(version, cfg)
	if err != nil {
		return nil, err
	}
	installer, err := update.NewSelfReplacer()
	if err != nil {
		return nil, err
	}
	restarter, err := update.NewExecRestarter()
	if err != nil {
		return nil, err
	}
	return &Updater{
		Checker:    checker,
		Downloader: update.NewHTTPDownloader(),
		Installer:  installer,
		Restarter:  restarter,
	}, nil
}

// Start launches the sidecar and, when updates are enabled, schedules the
// update in the background. Only a launch failure is returned; an update that
// cannot be set up is recorded and the host runs without it.
func (s *Session) Start(ctx context.Context) error {
	if !s.started.CompareAndSwap(false, true) {
		return ErrSessionStarted
	}

	process, err := s.launcher.Launch(ctx)
	if err != nil {
		return fmt.Errorf("launch sidecar: %w", err)
	}

	s.mu.Lock()
	s.process = process
	s.mu.Unlock()

	if !s.updateCfg.Enabled {
		s.logger.Debug("updates disabled")
		return nil
	}

	supervisor, err := s.newSupervisor()
	if err != nil {
		s.record(update.Result{State: update.StateFailed, Err: fmt.Errorf("set up update: %w", err)})
		return nil
	}

	s.sweepLeftovers()

	s.mu.Lock()
	s.results = supervisor.Start(ctx)
	s.mu.Unlock()

	return nil
}

func (s *Session) newSupervisor() (*update.Supervisor, error) {
	updateOpts, err := SupervisorOptions(s.updateCfg)
	if err != nil {
		return nil, err
	}

	if s.updater == nil {
		u, err := defaultUpdater(s.version, s.updateCfg)
		if err != nil {
			return nil, err
		}
		s.updater = u
	}

	return update.New(s.version,
		s.updater.Checker,
		s.updater.Downloader,
		s.updater.Installer,
		update.RestarterFunc(s.restart),
		append(updateOpts, s.opts...)...,
	), nil
}

// Wait blocks until ctx is done. An update result arriving in the meantime
// is logged; a failed update never stops the host.
func (s *Session) Wait(ctx context.Context) error {
	s.mu.Lock()
	results := s.results
	s.mu.Unlock()

	for {
		select {
		case <-ctx.Done():
			return nil
		case res, ok := <-results:
			if !ok {
				results = nil
				continue
			}
			s.record(res)
		}
	}
}

// LastUpdate returns the update result once it has been observed by Wait.
func (s *Session) LastUpdate() (update.Result, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.last == nil {
		return update.Result{}, false
	}
	return *s.last, true
}

// Close releases the sidecar according to its handle policy. Once closed,
// a pending update no longer restarts the host.
func (s *Session) Close() {
	s.life.Lock()
	defer s.life.Unlock()

	if s.closed {
		return
	}
	s.closed = true

	if process := s.currentProcess(); process != nil {
		process.Release()
	}
}

func (s *Session) currentProcess() *sidecar.Process {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.process
}

func (s *Session) record(res update.Result) {
	s.mu.Lock()
	s.last = &res
	s.mu.Unlock()

	logger := s.logger.WithFields(log.Fields{"run": res.RunID, "state": res.State})
	switch {
	case res.Err != nil:
		logger.Errorf("update failed, continuing with %s: %v", s.version, res.Err)
	case res.State == update.StateUpToDate:
		logger.Debug("no update applied")
	default:
		logger.Info("update finished")
	}
}

// restart stops the sidecar so the relaunched host starts the only copy.
func (s *Session) restart() error {
	s.life.Lock()
	if s.closed {
		s.life.Unlock()
		return ErrSessionClosed
	}
	s.closed = true
	if process := s.currentProcess(); process != nil {
		process.Terminate()
	}
	s.life.Unlock()

	return s.updater.Restarter.Restart()
}

// sweepLeftovers clears staging directories and backups an earlier update
// could not delete, such as a Windows binary still locked at install time.
func (s *Session) sweepLeftovers() {
	sweeper, ok := s.updater.Installer.(interface {
		Sweep(minAge time.Duration) (*update.SweepResult, error)
	})
	if !ok {
		return
	}
	res, err := sweeper.Sweep(0)
	if err != nil {
		s.logger.Warnf("failed to remove update leftovers: %v", err)
	}
	if res != nil && len(res.Removed) > 0 {
		s.logger.Debugf("removed %d update leftovers", len(res.Removed))
	}
}
