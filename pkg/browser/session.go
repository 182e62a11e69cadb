package browser

import (
	"context"
	"sync"

	"github.com/cockroachdb/errors"
	"github.com/playwright-community/playwright-go"
	"go.uber.org/zap"

	"github.com/entrhq/prospect/pkg/platform"
)

// Session is one live automation context. It owns a browser and an isolated
// browser context; pages are acquired per operation through WithPage and never
// outlive the session.
type Session struct {
	id      string
	browser playwright.Browser
	bctx    playwright.BrowserContext
	timeout float64
	log     *zap.SugaredLogger

	mu     sync.Mutex
	closed bool
}

// ID returns the session's unique identifier.
func (s *Session) ID() string {
	return s.id
}

// WithPage opens a fresh page, hands it to fn and closes it on every return
// path. The page is exclusively owned by fn; it is never shared across
// concurrent operations.
func (s *Session) WithPage(ctx context.Context, fn func(platform.Page) error) error {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return errors.New("session already closed")
	}
	pwPage, err := s.bctx.NewPage()
	s.mu.Unlock()
	if err != nil {
		return errors.Wrap(err, "opening page")
	}

	pwPage.SetDefaultTimeout(s.timeout)
	defer func() {
		if cerr := pwPage.Close(); cerr != nil {
			s.log.Debugw("page close failed", "error", cerr)
		}
	}()

	if err := ctx.Err(); err != nil {
		return err
	}
	return fn(&Page{pw: pwPage})
}

// Close releases the session's context and browser. Idempotent: closing an
// already-closed session is a no-op.
func (s *Session) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return nil
	}
	s.closed = true

	var errs []error
	if s.bctx != nil {
		if err := s.bctx.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	if s.browser != nil {
		if err := s.browser.Close(); err != nil {
			errs = append(errs, err)
		}
	}

	s.log.Infow("session closed")
	if len(errs) > 0 {
		return errors.Newf("errors closing session: %v", errs)
	}
	return nil
}
