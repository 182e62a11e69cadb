// Package twitter implements the micro-blog adapter: hashtag search
// extraction from the public live feed and credentialed tweet publishing.
package twitter

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
	loginURL  = "https://twitter.com/i/flow/login"
	searchURL = "https://twitter.com/search?f=live&q="

	usernameSelector = `input[autocomplete="username"]`
	nextSelector     = `button:has-text("Next")`
	passwordSelector = `input[name="password"]`
	loginSelector    = `button[data-testid="LoginForm_Login_Button"]`
	composeSelector  = `a[data-testid="SideNav_NewTweet_Button"]`

	tweetSelector     = `[data-testid="tweet"]`
	userNameSelector  = `[data-testid="User-Name"]`
	tweetTextSelector = `[data-testid="tweetText"]`

	textareaSelector  = `[data-testid="tweetTextarea_0"]`
	fileInputSelector = `input[data-testid="fileInput"]`
	sendSelector      = `button[data-testid="tweetButtonInline"]`

	authTimeout = 30 * time.Second

	// Tweet text stored on a lead is capped to keep attribute cells small.
	maxTweetPreview = 200
)

// Adapter drives Twitter/X through a browser session.
type Adapter struct {
	session  platform.Pager
	email    string
	password string
	log      *zap.SugaredLogger

	// SettleDelay overrides the pause after each scroll pass during
	// extraction. Zero keeps the pipeline default.
	SettleDelay time.Duration
}

// New constructs the adapter. Missing credentials fail at construction time.
func New(session platform.Pager, creds *credentials.Set, log *zap.SugaredLogger) (*Adapter, error) {
	vals, err := creds.Require(credentials.TwitterEmail, credentials.TwitterPassword)
	if err != nil {
		return nil, errors.Wrapf(platform.ErrAuthentication, "twitter: %v", err)
	}
	return &Adapter{
		session:  session,
		email:    vals[0],
		password: vals[1],
		log:      logging.OrNop(log).With("platform", platform.Twitter),
	}, nil
}

// Platform returns platform.Twitter.
func (a *Adapter) Platform() platform.Platform {
	return platform.Twitter
}

// Authenticate walks the two-stage login flow and waits for the compose
// button that only renders for signed-in accounts.
func (a *Adapter) Authenticate(ctx context.Context, page platform.Page) error {
	if a.email == "" || a.password == "" {
		return errors.Wrap(platform.ErrAuthentication, "twitter: credentials not set")
	}

	steps := []struct {
		name string
		do   func() error
	}{
		{"open login", func() error { return page.Navigate(ctx, loginURL) }},
		{"enter username", func() error { return page.Fill(usernameSelector, a.email) }},
		{"advance", func() error { return page.Click(nextSelector) }},
		{"enter password", func() error { return page.Fill(passwordSelector, a.password) }},
		{"submit", func() error { return page.Click(loginSelector) }},
	}
	for _, s := range steps {
		if err := s.do(); err != nil {
			return errors.Wrapf(platform.ErrAuthentication, "%s: %v", s.name, err)
		}
	}

	if err := page.WaitVisible(ctx, composeSelector, authTimeout); err != nil {
		return errors.Wrapf(platform.ErrAuthentication, "no authenticated signal: %v", err)
	}

	a.log.Infow("authenticated")
	return nil
}

// ExtractLeads searches the live feed for the hashtag in query.Terms and
// extracts up to maxResults tweet authors. The public search surface needs no
// login.
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
	hashtag := query.Terms
	return scrape.Source{
		Platform:          platform.Twitter,
		URL:               searchURL + url.QueryEscape(hashtag),
		ContainerSelector: tweetSelector,
		ScrollBudget:      5,
		SettleDelay:       a.SettleDelay,
		LoginWallHint:     "/i/flow/login",
		Extract: func(el platform.Element) (platform.Lead, error) {
			return extractTweet(el, hashtag)
		},
	}
}

// extractTweet maps one tweet container to a lead. The User-Name block holds
// the display name and the @handle separated by a newline.
func extractTweet(el platform.Element, hashtag string) (platform.Lead, error) {
	userBlock, err := el.Text(userNameSelector)
	if err != nil {
		return platform.Lead{}, &platform.FieldError{Platform: platform.Twitter, Field: "user", Err: err}
	}

	name := userBlock
	handle := ""
	if before, after, found := strings.Cut(userBlock, "\n"); found {
		name = before
		handle = strings.TrimSpace(after)
	}

	attrs := map[string]string{"hashtag": hashtag}
	if handle != "" {
		attrs["handle"] = handle
	}
	if text, err := el.Text(tweetTextSelector); err == nil {
		attrs["tweet_text"] = clip(strings.TrimSpace(text), maxTweetPreview)
	}

	identity := handle
	if identity == "" {
		identity = strings.TrimSpace(name)
	}

	return platform.Lead{
		Platform:     platform.Twitter,
		Identity:     identity,
		Attributes:   attrs,
		DiscoveredAt: time.Now().UTC(),
	}, nil
}

// clip truncates s to at most n characters without splitting a multi-byte
// rune.
func clip(s string, n int) string {
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[:n])
}

// Publish posts a tweet: open the composer, type the message, optionally
// attach media, send.
func (a *Adapter) Publish(ctx context.Context, req platform.PostRequest) (platform.PostResult, error) {
	result := platform.PostResult{Platform: platform.Twitter, Timestamp: time.Now().UTC()}

	err := a.session.WithPage(ctx, func(page platform.Page) error {
		if err := a.Authenticate(ctx, page); err != nil {
			return err
		}

		steps := []platform.Step{
			{Name: "open composer", Do: func() error { return page.Click(composeSelector) }},
			{Name: "wait for composer", Do: func() error { return page.WaitVisible(ctx, textareaSelector, 10*time.Second) }},
			{Name: "type message", Do: func() error { return page.Fill(textareaSelector, req.Field(platform.FieldMessage)) }},
		}
		if req.MediaRef != "" {
			steps = append(steps, platform.Step{Name: "attach media", Do: func() error { return page.Upload(fileInputSelector, req.MediaRef) }})
		}
		steps = append(steps, platform.Step{Name: "send tweet", Do: func() error { return page.Click(sendSelector) }})

		return platform.RunSteps(platform.Twitter, steps)
	})
	if err != nil {
		result.Error = err.Error()
		return result, err
	}

	result.Success = true
	return result, nil
}
