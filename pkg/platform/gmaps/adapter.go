// Package gmaps implements the local-business-directory adapter. It only
// extracts: Google Maps listings need no login, and the engine never posts
// there.
package gmaps

import (
	"context"
	"net/url"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/entrhq/prospect/pkg/logging"
	"github.com/entrhq/prospect/pkg/platform"
	"github.com/entrhq/prospect/pkg/scrape"
)

const (
	searchURL = "https://www.google.com/maps/search/"

	containerSelector = `[role="article"]`
	feedSelector      = `[role="feed"]`
	nameSelector      = `.fontHeadlineSmall`
	ratingSelector    = `[role="img"]`
	addressSelector   = `.fontBodyMedium`
)

// Adapter extracts local businesses from Google Maps search results.
type Adapter struct {
	session platform.Pager
	log     *zap.SugaredLogger

	// SettleDelay overrides the pause after each scroll pass during
	// extraction. Zero keeps the pipeline default.
	SettleDelay time.Duration
}

// New constructs the adapter. No credentials are consumed.
func New(session platform.Pager, log *zap.SugaredLogger) *Adapter {
	return &Adapter{
		session: session,
		log:     logging.OrNop(log).With("platform", platform.GoogleMaps),
	}
}

// Platform returns platform.GoogleMaps.
func (a *Adapter) Platform() platform.Platform {
	return platform.GoogleMaps
}

// ExtractLeads searches for query.Terms near query.Location and extracts up
// to maxResults business records. The results feed paginates by scrolling its
// own panel, not the window.
func (a *Adapter) ExtractLeads(ctx context.Context, query platform.Query, maxResults int) ([]platform.Lead, error) {
	var out []platform.Lead
	err := a.session.WithPage(ctx, func(page platform.Page) error {
		res, err := scrape.Run(ctx, a.log, page, a.source(query), maxResults)
		out = res
		return err
	})
	return out, err
}

func (a *Adapter) source(query platform.Query) scrape.Source {
	terms := strings.TrimSpace(query.Terms + " " + query.Location)
	return scrape.Source{
		Platform:          platform.GoogleMaps,
		URL:               searchURL + url.PathEscape(terms),
		ContainerSelector: containerSelector,
		ScrollSelector:    feedSelector,
		ScrollBudget:      5,
		SettleDelay:       a.SettleDelay,
		Extract: func(el platform.Element) (platform.Lead, error) {
			return extractBusiness(el, query)
		},
	}
}

// extractBusiness maps one listing card to a lead. Rating and address are
// best-effort; only the business name is required.
func extractBusiness(el platform.Element, query platform.Query) (platform.Lead, error) {
	name, err := el.Text(nameSelector)
	if err != nil {
		return platform.Lead{}, &platform.FieldError{Platform: platform.GoogleMaps, Field: "name", Err: err}
	}

	attrs := map[string]string{
		"search_query": query.Terms,
		"location":     query.Location,
	}
	if rating, err := el.Attr(ratingSelector, "aria-label"); err == nil && rating != "" {
		attrs["rating"] = rating
	}
	if address, err := el.Text(addressSelector); err == nil && address != "" {
		attrs["address"] = strings.TrimSpace(address)
	}

	return platform.Lead{
		Platform:     platform.GoogleMaps,
		Identity:     strings.TrimSpace(name),
		Attributes:   attrs,
		DiscoveredAt: time.Now().UTC(),
	}, nil
}
