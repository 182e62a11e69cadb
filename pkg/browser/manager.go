// Package browser owns the lifecycle of the Playwright automation runtime and
// the sessions launched from it. Adapters never touch Playwright directly;
// they acquire scoped pages through a Session and drive them through the
// platform.Page contract.
package browser

import (
	"io"
	"sync"

	"github.com/cockroachdb/errors"
	"github.com/google/uuid"
	"github.com/playwright-community/playwright-go"
	"go.uber.org/zap"

	"github.com/entrhq/prospect/pkg/logging"
	"github.com/entrhq/prospect/pkg/platform"
)

// Manager wraps the Playwright driver and tracks the sessions launched from
// it. Start must be called before NewSession; Stop tears everything down.
type Manager struct {
	mu       sync.Mutex
	pw       *playwright.Playwright
	sessions map[string]*Session
	log      *zap.SugaredLogger
	started  bool
}

// NewManager creates an idle manager.
func NewManager(log *zap.SugaredLogger) *Manager {
	return &Manager{
		sessions: make(map[string]*Session),
		log:      logging.OrNop(log),
	}
}

// Start installs and launches the Playwright driver. Failure here is fatal to
// the whole run and wraps platform.ErrSessionStart.
func (m *Manager) Start() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.started {
		return nil
	}

	// Discard driver output so it does not interleave with our own logs.
	opts := &playwright.RunOptions{
		Verbose: false,
		Stdout:  io.Discard,
		Stderr:  io.Discard,
	}

	if err := playwright.Install(opts); err != nil {
		return errors.Wrapf(platform.ErrSessionStart, "installing playwright: %v", err)
	}

	pw, err := playwright.Run(opts)
	if err != nil {
		return errors.Wrapf(platform.ErrSessionStart, "starting playwright: %v", err)
	}

	m.pw = pw
	m.started = true
	m.log.Infow("automation runtime started")
	return nil
}

// NewSession launches a browser and an isolated context. The caller owns the
// returned session and must Close it; Stop also closes any that remain.
func (m *Manager) NewSession(opts SessionOptions) (*Session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if !m.started {
		return nil, errors.Wrap(platform.ErrSessionStart, "manager not started")
	}

	if opts.Viewport == nil {
		opts.Viewport = &Viewport{Width: DefaultViewportWidth, Height: DefaultViewportHeight}
	}
	if opts.Timeout <= 0 {
		opts.Timeout = DefaultTimeout
	}

	launchOpts := playwright.BrowserTypeLaunchOptions{
		Headless: &opts.Headless,
	}
	b, err := m.pw.Chromium.Launch(launchOpts)
	if err != nil {
		return nil, errors.Wrapf(platform.ErrSessionStart, "launching browser: %v", err)
	}

	contextOpts := playwright.BrowserNewContextOptions{
		Viewport: &playwright.Size{
			Width:  opts.Viewport.Width,
			Height: opts.Viewport.Height,
		},
	}
	bctx, err := b.NewContext(contextOpts)
	if err != nil {
		b.Close()
		return nil, errors.Wrapf(platform.ErrSessionStart, "creating context: %v", err)
	}

	id := uuid.NewString()
	session := &Session{
		id:      id,
		browser: b,
		bctx:    bctx,
		timeout: opts.Timeout,
		log:     m.log.With("session", id[:8]),
	}

	m.sessions[session.id] = session
	m.log.Infow("session opened", "session", session.id[:8], "headless", opts.Headless)
	return session, nil
}

// Stop closes all sessions and stops the driver. Safe to call more than once.
func (m *Manager) Stop() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	var errs []error
	for id, s := range m.sessions {
		if err := s.Close(); err != nil {
			errs = append(errs, err)
		}
		delete(m.sessions, id)
	}

	if m.started && m.pw != nil {
		if err := m.pw.Stop(); err != nil {
			errs = append(errs, errors.Wrap(err, "stopping playwright"))
		}
		m.pw = nil
		m.started = false
	}

	if len(errs) > 0 {
		return errors.Newf("shutdown errors: %v", errs)
	}
	return nil
}
