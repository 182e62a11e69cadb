// Package linkedin implements the professional-network adapter: credentialed
// login, people-search extraction and feed publishing, all through the
// browser.
package linkedin

import (
	"context"
	"net/url"
	"strings"
	"time"

	"github.com/cockroachdb/errors"
	"go.uber.org/zap"

	"github.com/entrhq/prospect/pkg/credentials"
	"github.com/entrhq/prospect/pkg/logging"
	"github.com/entrhq/prospect/pkg/platform"
	"github.com/entrhq/prospect/pkg/scrape"
)

const (
	loginURL  = "https://www.linkedin.com/login"
	feedURL   = "https://www.linkedin.com/feed/"
	searchURL = "https://www.linkedin.com/search/results/people/?keywords="

	emailSelector     = `input[name="session_key"]`
	passwordSelector  = `input[name="session_password"]`
	submitSelector    = `button[type="submit"]`
	navSelector       = `#global-nav`
	containerSelector = `.entity-result`

	startPostSelector = `button:has-text("Start a post")`
	editorSelector    = `[role="textbox"]`
	imageButton       = `button[aria-label*="image"]`
	fileInputSelector = `input[type="file"]`
	postSelector      = `button:has-text("Post")`

	authTimeout = 30 * time.Second
)

// Adapter drives LinkedIn through a browser session.
type Adapter struct {
	session  platform.Pager
	email    string
	password string
	log      *zap.SugaredLogger

	// SettleDelay overrides the pause after each scroll pass during
	// extraction. Zero keeps the pipeline default.
	SettleDelay time.Duration
}

// New constructs the adapter. Missing credentials fail here, at construction
// time, so a misconfigured platform never reaches the browser.
func New(session platform.Pager, creds *credentials.Set, log *zap.SugaredLogger) (*Adapter, error) {
	vals, err := creds.Require(credentials.LinkedInEmail, credentials.LinkedInPassword)
	if err != nil {
		return nil, errors.Wrapf(platform.ErrAuthentication, "linkedin: %v", err)
	}
	return &Adapter{
		session:  session,
		email:    vals[0],
		password: vals[1],
		log:      logging.OrNop(log).With("platform", platform.LinkedIn),
	}, nil
}

// Platform returns platform.LinkedIn.
func (a *Adapter) Platform() platform.Platform {
	return platform.LinkedIn
}

// Authenticate logs in and waits for the authenticated navigation chrome to
// appear. Terminal on failure; the caller must not retry.
func (a *Adapter) Authenticate(ctx context.Context, page platform.Page) error {
	if a.email == "" || a.password == "" {
		return errors.Wrap(platform.ErrAuthentication, "linkedin: credentials not set")
	}

	if err := page.Navigate(ctx, loginURL); err != nil {
		return errors.Wrapf(platform.ErrAuthentication, "opening login page: %v", err)
	}
	if err := page.Fill(emailSelector, a.email); err != nil {
		return errors.Wrapf(platform.ErrAuthentication, "%v", err)
	}
	if err := page.Fill(passwordSelector, a.password); err != nil {
		return errors.Wrapf(platform.ErrAuthentication, "%v", err)
	}
	if err := page.Click(submitSelector); err != nil {
		return errors.Wrapf(platform.ErrAuthentication, "%v", err)
	}

	if err := page.WaitVisible(ctx, navSelector, authTimeout); err != nil {
		if strings.Contains(page.URL(), "/login") || strings.Contains(page.URL(), "checkpoint") {
			return errors.Wrap(platform.ErrAuthentication, "linkedin rejected the credentials")
		}
		return errors.Wrapf(platform.ErrAuthentication, "no authenticated signal: %v", err)
	}

	a.log.Infow("authenticated")
	return nil
}

// ExtractLeads searches people for the query terms and extracts up to
// maxResults profile records.
func (a *Adapter) ExtractLeads(ctx context.Context, query platform.Query, maxResults int) ([]platform.Lead, error) {
	var out []platform.Lead
	err := a.session.WithPage(ctx, func(page platform.Page) error {
		if err := a.Authenticate(ctx, page); err != nil {
			return err
		}
		res, err := scrape.Run(ctx, a.log, page, a.source(query), maxResults)
		out = res
		return err
	})
	return out, err
}

func (a *Adapter) source(query platform.Query) scrape.Source {
	return scrape.Source{
		Platform:          platform.LinkedIn,
		URL:               searchURL + url.QueryEscape(query.Terms),
		ContainerSelector: containerSelector,
		ScrollBudget:      3,
		SettleDelay:       a.SettleDelay,
		LoginWallHint:     "/login",
		Extract:           extractProfile,
	}
}

func extractProfile(el platform.Element) (platform.Lead, error) {
	name, err := el.Text(".entity-result__title-text")
	if err != nil {
		return platform.Lead{}, &platform.FieldError{Platform: platform.LinkedIn, Field: "name", Err: err}
	}

	attrs := make(map[string]string)
	if headline, err := el.Text(".entity-result__primary-subtitle"); err == nil {
		attrs["headline"] = strings.TrimSpace(headline)
	}
	if location, err := el.Text(".entity-result__secondary-subtitle"); err == nil {
		attrs["location"] = strings.TrimSpace(location)
	}
	sourceURL, _ := el.Attr("a.app-aware-link", "href")

	return platform.Lead{
		Platform:     platform.LinkedIn,
		Identity:     strings.TrimSpace(name),
		Attributes:   attrs,
		SourceURL:    sourceURL,
		DiscoveredAt: time.Now().UTC(),
	}, nil
}

// Publish posts content to the feed: open the composer, type the message,
// optionally attach media, submit. Sub-steps run in fixed order with no
// rollback on failure.
func (a *Adapter) Publish(ctx context.Context, req platform.PostRequest) (platform.PostResult, error) {
	result := platform.PostResult{Platform: platform.LinkedIn, Timestamp: time.Now().UTC()}

	err := a.session.WithPage(ctx, func(page platform.Page) error {
		if err := a.Authenticate(ctx, page); err != nil {
			return err
		}

		steps := []platform.Step{
			{Name: "open feed", Do: func() error { return page.Navigate(ctx, feedURL) }},
			{Name: "open composer", Do: func() error { return page.Click(startPostSelector) }},
			{Name: "wait for editor", Do: func() error { return page.WaitVisible(ctx, editorSelector, 10*time.Second) }},
			{Name: "type message", Do: func() error { return page.Fill(editorSelector, req.Field(platform.FieldMessage)) }},
		}
		if req.MediaRef != "" {
			steps = append(steps,
				platform.Step{Name: "open media picker", Do: func() error { return page.Click(imageButton) }},
				platform.Step{Name: "attach media", Do: func() error { return page.Upload(fileInputSelector, req.MediaRef) }},
			)
		}
		steps = append(steps, platform.Step{Name: "submit post", Do: func() error { return page.Click(postSelector) }})

		return platform.RunSteps(platform.LinkedIn, steps)
	})
	if err != nil {
		result.Error = err.Error()
		return result, err
	}

	result.Success = true
	return result, nil
}
