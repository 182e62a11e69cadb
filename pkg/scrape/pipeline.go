// Package scrape implements the scroll-paginate-extract loop shared by every
// scraping adapter. Adapters supply a Source describing where to look and how
// to map one record container to a Lead; the pipeline owns waiting, scrolling,
// capping and per-record failure isolation.
package scrape

import (
	"context"
	"strings"
	"time"

	"github.com/cockroachdb/errors"
	"go.uber.org/zap"

	"github.com/entrhq/prospect/pkg/logging"
	"github.com/entrhq/prospect/pkg/platform"
)

// Defaults applied when a Source leaves tuning fields zero.
const (
	DefaultScrollBudget = 3
	DefaultSettleDelay  = 2 * time.Second
	DefaultWaitTimeout  = 15 * time.Second
)

// Source describes one platform's listing surface.
type Source struct {
	// Platform the extracted leads belong to.
	Platform platform.Platform

	// URL is the computed search or listing URL.
	URL string

	// ContainerSelector matches one element per candidate record.
	ContainerSelector string

	// ScrollBudget is the maximum number of scroll passes.
	ScrollBudget int

	// SettleDelay is the pause after each scroll so asynchronously loaded
	// content can render.
	SettleDelay time.Duration

	// WaitTimeout bounds the wait for the first containers to appear.
	WaitTimeout time.Duration

	// ScrollSelector, when non-empty, scrolls the matching element instead
	// of the window (listing panels that paginate independently).
	ScrollSelector string

	// LoginWallHint, when non-empty and found in the page URL after
	// navigation, marks the page as an unexpected login wall.
	LoginWallHint string

	// Extract maps one container to a Lead. A returned error skips that
	// container only.
	Extract func(platform.Element) (platform.Lead, error)
}

// Run navigates to the source's listing and extracts up to maxResults leads.
// A non-positive maxResults yields no leads without touching the page.
// Per-container failures are logged and skipped; Run fails only when the page
// never reaches a usable state. Whatever was successfully extracted before a
// scroll budget ran out is returned without error.
func Run(ctx context.Context, log *zap.SugaredLogger, doc platform.Document, src Source, maxResults int) ([]platform.Lead, error) {
	if maxResults <= 0 {
		return nil, nil
	}
	log = logging.OrNop(log).With("platform", src.Platform)

	if src.ScrollBudget <= 0 {
		src.ScrollBudget = DefaultScrollBudget
	}
	if src.SettleDelay <= 0 {
		src.SettleDelay = DefaultSettleDelay
	}
	if src.WaitTimeout <= 0 {
		src.WaitTimeout = DefaultWaitTimeout
	}

	if err := doc.Navigate(ctx, src.URL); err != nil {
		return nil, errors.Wrapf(platform.ErrNavigation, "loading %s: %v", src.URL, err)
	}
	if src.LoginWallHint != "" && strings.Contains(doc.URL(), src.LoginWallHint) {
		return nil, errors.Wrapf(platform.ErrNavigation, "redirected to login wall at %s", doc.URL())
	}

	// Condition-based wait for the first batch of containers rather than a
	// fixed sleep. If nothing ever appears the page is not in a usable state.
	if err := doc.WaitVisible(ctx, src.ContainerSelector, src.WaitTimeout); err != nil {
		if src.LoginWallHint != "" && strings.Contains(doc.URL(), src.LoginWallHint) {
			return nil, errors.Wrapf(platform.ErrNavigation, "redirected to login wall at %s", doc.URL())
		}
		return nil, errors.Wrapf(platform.ErrNavigation, "no %q containers appeared: %v", src.ContainerSelector, err)
	}

	var out []platform.Lead
	processed := 0
	for pass := 0; ; pass++ {
		containers, err := doc.Containers(src.ContainerSelector)
		if err != nil {
			return out, errors.Wrapf(platform.ErrNavigation, "querying containers: %v", err)
		}

		// Containers accumulate across scrolls; only the tail is new.
		for _, el := range containers[min(processed, len(containers)):] {
			processed++
			lead, err := src.Extract(el)
			if err != nil {
				log.Warnw("skipping malformed record", "error", err)
				continue
			}
			if !lead.Valid() {
				log.Warnw("skipping record with empty identity")
				continue
			}
			out = append(out, lead)
			if len(out) >= maxResults {
				return out, nil
			}
		}

		if pass >= src.ScrollBudget {
			break
		}
		if err := doc.Scroll(ctx, src.ScrollSelector); err != nil {
			log.Warnw("scroll failed, stopping pagination", "error", err)
			break
		}
		if err := settle(ctx, src.SettleDelay); err != nil {
			return out, err
		}
	}

	log.Infow("extraction finished", "leads", len(out), "containers", processed)
	return out, nil
}

// settle sleeps for d, honoring cancellation.
func settle(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
