package update

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"
)

// State is a step of the update sequence.
type State int

const (
	StateIdle State = iota
	StateChecking
	StateUpToDate
	StateDownloading
	StateInstalling
	StateRestarting
	StateFailed
)

var stateNames = map[State]string{
	StateIdle:        "idle",
	StateChecking:    "checking",
	StateUpToDate:    "up-to-date",
	StateDownloading: "downloading",
	StateInstalling:  "installing",
	StateRestarting:  "restarting",
	StateFailed:      "failed",
}

func (s State) String() string {
	if name, ok := stateNames[s]; ok {
		return name
	}
	return fmt.Sprintf("state(%d)", int(s))
}

// Terminal reports whether a run ends in this state.
func (s State) Terminal() bool {
	return s == StateUpToDate || s == StateRestarting || s == StateFailed
}

// Result is the outcome of one update run.
type Result struct {
	RunID    string
	State    State // Terminal state reached
	Info     *Info // nil if the check failed
	Progress Progress
	Err      error // Set when State is StateFailed
}

// Option configures a Supervisor.
type Option func(*Supervisor)

// WithChunkObserver registers a callback invoked for every downloaded chunk.
func WithChunkObserver(fn ChunkFunc) Option {
	return func(s *Supervisor) { s.onChunk = fn }
}

// WithDownloadComplete registers a callback invoked once after the last chunk,
// before installation.
func WithDownloadComplete(fn func()) Option {
	return func(s *Supervisor) { s.onComplete = fn }
}

// WithStateObserver registers a callback invoked on every state transition.
func WithStateObserver(fn func(from, to State)) Option {
	return func(s *Supervisor) { s.onState = fn }
}

// WithConfirm registers a gate consulted after a successful check. Returning
// false ends the run as up to date.
func WithConfirm(fn func(*Info) bool) Option {
	return func(s *Supervisor) { s.confirm = fn }
}

// WithTimeout bounds the whole run. Zero, the default, means no bound.
func WithTimeout(d time.Duration) Option {
	return func(s *Supervisor) { s.timeout = d }
}

// WithStagingDir sets where artifacts are downloaded. It defaults to the
// installer's target directory when the installer exposes one.
func WithStagingDir(dir string) Option {
	return func(s *Supervisor) { s.stagingDir = dir }
}

// WithAllowDev lets dev builds check for updates.
func WithAllowDev(allow bool) Option {
	return func(s *Supervisor) { s.allowDev = allow }
}

// WithLogger sets the log entry runs derive from.
func WithLogger(entry *log.Entry) Option {
	return func(s *Supervisor) { s.logger = entry }
}

// Supervisor runs the check, download, install, restart sequence at most
// once per session.
type Supervisor struct {
	current    string
	checker    Checker
	downloader Downloader
	installer  Installer
	restarter  Restarter

	onChunk    ChunkFunc
	onComplete func()
	onState    func(from, to State)
	confirm    func(*Info) bool
	timeout    time.Duration
	stagingDir string
	allowDev   bool
	logger     *log.Entry

	started atomic.Bool
	mu      sync.Mutex
	state   State
}

// New creates a supervisor for the running version current.
func New(current string, checker Checker, downloader Downloader, installer Installer, restarter Restarter, opts ...Option) *Supervisor {
	s := &Supervisor{
		current:    current,
		checker:    checker,
		downloader: downloader,
		installer:  installer,
		restarter:  restarter,
		logger:     log.WithField("component", "update"),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// State returns the current state.
func (s *Supervisor) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Start dispatches the run in the background. The channel receives exactly
// one Result and is then closed. Only the first Start or Run of a
// Supervisor does any work.
func (s *Supervisor) Start(ctx context.Context) <-chan Result {
	results := make(chan Result, 1)

	if !s.started.CompareAndSwap(false, true) {
		results <- Result{State: StateFailed, Err: ErrAlreadyStarted}
		close(results)
		return results
	}

	go func() {
		defer close(results)
		results <- s.run(ctx)
	}()

	return results
}

// Run executes the sequence in the caller's goroutine.
func (s *Supervisor) Run(ctx context.Context) Result {
	if !s.started.CompareAndSwap(false, true) {
		return Result{State: StateFailed, Err: ErrAlreadyStarted}
	}
	return s.run(ctx)
}

func (s *Supervisor) run(ctx context.Context) Result {
	res := Result{RunID: uuid.NewString()}
	logger := s.logger.WithField("run", res.RunID)

	if s.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.timeout)
		defer cancel()
	}

	fail := func(kind, err error) Result {
		failed := s.State()
		res.State = StateFailed
		res.Err = &StageError{State: failed, Kind: kind, Err: err}
		s.transition(StateFailed)
		logger.WithField("state", failed).Warnf("update aborted: %v", res.Err)
		return res
	}

	// Checking
	s.transition(StateChecking)

	if s.current == DevVersion && !s.allowDev {
		logger.Debug("dev build, skipping update check")
		res.State = StateUpToDate
		s.transition(StateUpToDate)
		return res
	}

	info, err := s.checker.CheckForUpdate(ctx)
	if err != nil {
		return fail(ErrVersionCheck, err)
	}
	res.Info = info

	if info == nil || !ShouldUpdate(s.current, info.LatestVersion) {
		logger.Infof("running version %s is current", s.current)
		res.State = StateUpToDate
		s.transition(StateUpToDate)
		return res
	}

	logger = logger.WithFields(log.Fields{
		"current":   s.current,
		"candidate": info.LatestVersion,
		"direction": Classify(s.current, info.LatestVersion),
	})
	logger.Info("new version available")

	if info.AssetURL == "" {
		return fail(ErrVersionCheck, fmt.Errorf("no artifact for %s in version %s", Detect().Key(), info.LatestVersion))
	}

	if s.confirm != nil && !s.confirm(info) {
		logger.Info("update declined")
		res.State = StateUpToDate
		s.transition(StateUpToDate)
		return res
	}

	// Downloading
	s.transition(StateDownloading)

	staging, err := os.MkdirTemp(s.stagingBase(), stagingPrefix)
	if err != nil {
		return fail(ErrDownload, fmt.Errorf("failed to create staging directory: %w", err))
	}
	defer func() { _ = os.RemoveAll(staging) }()

	name := info.AssetName
	if name == "" {
		name = "artifact"
	}
	artifact := filepath.Join(staging, name)

	res.Progress, err = s.downloader.Download(ctx, info.AssetURL, artifact, s.observeChunk(logger))
	if err != nil {
		return fail(ErrDownload, err)
	}
	logger.WithField("bytes", res.Progress.Received).Info("download complete")
	if s.onComplete != nil {
		s.onComplete()
	}

	if info.Checksum == "" && info.ChecksumURL == "" {
		logger.Warn("no checksum published, skipping verification")
	}
	if err := s.downloader.Verify(ctx, artifact, info); err != nil {
		return fail(ErrDownload, err)
	}

	// Installing
	s.transition(StateInstalling)

	if err := s.installer.Install(ctx, artifact); err != nil {
		return fail(ErrInstall, err)
	}
	logger.Info("update installed")

	// Restarting. The process is usually replaced here, so clean up first.
	s.transition(StateRestarting)
	_ = os.RemoveAll(staging)

	if err := s.restarter.Restart(); err != nil {
		return fail(ErrRestart, err)
	}

	res.State = StateRestarting
	return res
}

// observeChunk logs progress and forwards each chunk to the registered observer.
func (s *Supervisor) observeChunk(logger *log.Entry) ChunkFunc {
	var received int64
	return func(n, total int64) {
		received += n
		logger.WithFields(log.Fields{"received": received, "total": total}).Trace("chunk")
		if s.onChunk != nil {
			s.onChunk(n, total)
		}
	}
}

// stagingBase keeps the artifact on the target's filesystem so the final
// rename does not cross devices.
func (s *Supervisor) stagingBase() string {
	if s.stagingDir != "" {
		return s.stagingDir
	}
	if t, ok := s.installer.(interface{ Target() string }); ok {
		return filepath.Dir(t.Target())
	}
	return ""
}

func (s *Supervisor) transition(to State) {
	s.mu.Lock()
	from := s.state
	s.state = to
	s.mu.Unlock()

	if s.onState != nil && from != to {
		s.onState(from, to)
	}
}
