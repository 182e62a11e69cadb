package meta

import (
	"context"
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
	postSelector    = `[data-testid="post"]`
	messageSelector = `[data-ad-comet-preview="message"]`

	// Group post author snippets are long; identity keeps a bounded prefix.
	maxAuthorLen  = 100
	maxPreviewLen = 200
)

// Facebook extracts leads from group feeds through the browser and publishes
// page posts through the Graph API.
type Facebook struct {
	session platform.Pager
	graph   *GraphClient
	log     *zap.SugaredLogger

	// SettleDelay overrides the pause after each scroll pass during
	// extraction. Zero keeps the pipeline default.
	SettleDelay time.Duration
}

// NewFacebook constructs the adapter. A missing access token fails at
// construction time. session may be nil for publish-only use.
func NewFacebook(session platform.Pager, creds *credentials.Set, graphURL string, log *zap.SugaredLogger) (*Facebook, error) {
	vals, err := creds.Require(credentials.MetaAccessToken)
	if err != nil {
		return nil, errors.Wrapf(platform.ErrAuthentication, "facebook: %v", err)
	}
	return &Facebook{
		session: session,
		graph:   NewGraphClient(vals[0], graphURL),
		log:     logging.OrNop(log).With("platform", platform.Facebook),
	}, nil
}

// Platform returns platform.Facebook.
func (a *Facebook) Platform() platform.Platform {
	return platform.Facebook
}

// ExtractLeads scrapes the group feed at query.Terms (a group URL the signed
// -in profile is a member of) and extracts up to maxResults post authors.
func (a *Facebook) ExtractLeads(ctx context.Context, query platform.Query, maxResults int) ([]platform.Lead, error) {
	if a.session == nil {
		return nil, errors.New("facebook: no browser session configured for extraction")
	}

	groupURL := query.Terms
	src := scrape.Source{
		Platform:          platform.Facebook,
		URL:               groupURL,
		ContainerSelector: postSelector,
		ScrollBudget:      3,
		SettleDelay:       a.SettleDelay,
		LoginWallHint:     "login",
		Extract: func(el platform.Element) (platform.Lead, error) {
			return extractGroupPost(el, groupURL)
		},
	}

	var out []platform.Lead
	err := a.session.WithPage(ctx, func(page platform.Page) error {
		res, err := scrape.Run(ctx, a.log, page, src, maxResults)
		out = res
		return err
	})
	return out, err
}

func extractGroupPost(el platform.Element, groupURL string) (platform.Lead, error) {
	message, err := el.Text(messageSelector)
	if err != nil {
		return platform.Lead{}, &platform.FieldError{Platform: platform.Facebook, Field: "message", Err: err}
	}
	message = strings.TrimSpace(message)

	identity := clip(message, maxAuthorLen)
	preview := clip(message, maxPreviewLen)

	return platform.Lead{
		Platform: platform.Facebook,
		Identity: identity,
		Attributes: map[string]string{
			"post_preview": preview,
			"group_url":    groupURL,
		},
		SourceURL:    groupURL,
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

// Publish posts the payload message to the first page the token manages,
// resolving the page and its token first. Two API sub-steps, no rollback.
func (a *Facebook) Publish(ctx context.Context, req platform.PostRequest) (platform.PostResult, error) {
	result := platform.PostResult{Platform: platform.Facebook, Timestamp: time.Now().UTC()}

	pageID, pageToken, err := a.graph.PageAccount(ctx)
	if err != nil {
		stepErr := &platform.PublishStepError{Platform: platform.Facebook, Step: "resolve page", Err: err}
		result.Error = stepErr.Error()
		return result, stepErr
	}

	link := req.Field(platform.FieldLink)
	if link == "" {
		link = req.Field(platform.FieldImageURL)
	}
	postID, err := a.graph.PostFeed(ctx, pageID, pageToken, req.Field(platform.FieldMessage), link)
	if err != nil {
		stepErr := &platform.PublishStepError{Platform: platform.Facebook, Step: "post to feed", Err: err}
		result.Error = stepErr.Error()
		return result, stepErr
	}

	a.log.Infow("posted to page feed", "post_id", postID)
	result.Success = true
	result.RemoteID = postID
	return result, nil
}
